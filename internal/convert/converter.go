// Package convert orchestrates adapter resolution around one canonical
// model and caches package-native handles per (package, observer, origin).
package convert

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/banshee-data/microlens/internal/adapters"
	"github.com/banshee-data/microlens/internal/ephem"
	"github.com/banshee-data/microlens/internal/frames"
	"github.com/banshee-data/microlens/internal/model"
)

// HandleNotFoundError reports a handle request for a package never
// materialized on this converter.
type HandleNotFoundError struct {
	Package string
	Cached  []string
}

func (e *HandleNotFoundError) Error() string {
	if len(e.Cached) == 0 {
		return fmt.Sprintf("no handle materialized for package %q (cache empty)", e.Package)
	}
	return fmt.Sprintf("no handle materialized for package %q (cached: %s)",
		e.Package, strings.Join(e.Cached, ", "))
}

type handleKey struct {
	pkg      string
	observer string
	origin   string
}

// Converter owns exactly one canonical model and an append-only cache of
// package handles. A converter is single-use: there is no unload.
type Converter struct {
	sessionID string
	logger    *log.Logger
	registry  *adapters.Registry
	provider  ephem.Provider

	model  *model.BaseModel
	source string

	// mu guards the check-then-insert on handles so an uncached key is
	// dumped at most once even under contention.
	mu      sync.Mutex
	handles map[handleKey]*PackageHandle
	latest  map[string]*PackageHandle
}

// Option configures a Converter at load time.
type Option func(*Converter)

// WithLogger sets the converter's logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Converter) { c.logger = l }
}

// WithEphemeris wires an observer ephemeris provider, enabling projection
// transforms in accessors and dumps.
func WithEphemeris(p ephem.Provider) Option {
	return func(c *Converter) { c.provider = p }
}

// WithRegistry overrides the default adapter registry.
func WithRegistry(r *adapters.Registry) Option {
	return func(c *Converter) { c.registry = r }
}

// Load resolves the source adapter, converts params into the canonical
// model and seeds the cache with the source handle under the adapter's
// native frame.
func Load(source string, params map[string]any, observer string, epochs []float64, opts ...Option) (*Converter, error) {
	c := &Converter{
		sessionID: uuid.New().String(),
		registry:  adapters.Default(),
		handles:   make(map[handleKey]*PackageHandle),
		latest:    make(map[string]*PackageHandle),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.Default()
	}

	adapter, err := c.registry.Resolve(source)
	if err != nil {
		return nil, err
	}
	m, err := adapter.Load(params, observer, epochs)
	if err != nil {
		return nil, err
	}
	m.SetTransformer(frames.Deriver{Provider: c.provider})
	c.model = m
	c.source = source

	// Seed the cache with the adapter's echo of its input under the
	// native frame.
	frame := model.FrameConfig{
		Observer:   observer,
		Origin:     m.Meta.Origin,
		Rest:       model.RestSource,
		Coords:     model.CoordsTauBeta,
		Projection: adapter.NativeProjection(observer),
	}
	h := newHandle(source, frame, params)
	key := handleKey{pkg: source, observer: observer, origin: m.Meta.Origin}
	c.handles[key] = h
	c.latest[source] = h

	c.logger.Printf("converter %s: loaded %s model from %s (observer=%s origin=%s)",
		c.sessionID, m.Kind(), source, observer, m.Meta.Origin)
	return c, nil
}

// SessionID identifies this conversion session in logs.
func (c *Converter) SessionID() string { return c.sessionID }

// Model returns the canonical model the converter owns.
func (c *Converter) Model() *model.BaseModel { return c.model }

// Source names the package the model was loaded from.
func (c *Converter) Source() string { return c.source }

// ToPackage returns the native handle for (target, observer, origin),
// dumping through the target adapter on first request and serving the
// cached handle unchanged afterwards.
func (c *Converter) ToPackage(target, observer, origin string) (*PackageHandle, error) {
	key := handleKey{pkg: target, observer: observer, origin: origin}

	c.mu.Lock()
	defer c.mu.Unlock()
	if h, ok := c.handles[key]; ok {
		return h, nil
	}

	adapter, err := c.registry.Resolve(target)
	if err != nil {
		return nil, err
	}
	params, err := adapter.Dump(c.model, observer, origin)
	if err != nil {
		return nil, err
	}
	frame := model.FrameConfig{
		Observer:   observer,
		Origin:     origin,
		Rest:       model.RestSource,
		Coords:     model.CoordsTauBeta,
		Projection: adapter.NativeProjection(observer),
	}
	h := newHandle(target, frame, params)
	c.handles[key] = h
	c.latest[target] = h

	c.logger.Printf("converter %s: materialized %s handle (observer=%s origin=%s)",
		c.sessionID, target, observer, origin)
	return h, nil
}

// DumpParams returns just the native payload for the requested frame.
func (c *Converter) DumpParams(target, observer, origin string) (map[string]any, error) {
	h, err := c.ToPackage(target, observer, origin)
	if err != nil {
		return nil, err
	}
	return h.Params(), nil
}

// Handle returns the most recently materialized handle for a package.
func (c *Converter) Handle(pkg string) (*PackageHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.latest[pkg]
	if !ok {
		cached := make([]string, 0, len(c.latest))
		for name := range c.latest {
			cached = append(cached, name)
		}
		return nil, &HandleNotFoundError{Package: pkg, Cached: cached}
	}
	return h, nil
}

// Convenience accessors for the packages the default registry knows.

// Bagle returns the latest BAGLE handle.
func (c *Converter) Bagle() (*PackageHandle, error) { return c.Handle("bagle") }

// Gulls returns the latest GULLS handle.
func (c *Converter) Gulls() (*PackageHandle, error) { return c.Handle("gulls") }

// VBM returns the latest VBMicrolensing handle.
func (c *Converter) VBM() (*PackageHandle, error) { return c.Handle("vbm") }

// MulensModel returns the latest MulensModel handle.
func (c *Converter) MulensModel() (*PackageHandle, error) { return c.Handle("mulensmodel") }

// PyLIMA returns the latest pyLIMA handle.
func (c *Converter) PyLIMA() (*PackageHandle, error) { return c.Handle("pylima") }
