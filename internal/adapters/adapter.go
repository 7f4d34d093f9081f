// Package adapters maps package-native microlensing parameterizations to
// and from the canonical model. Each supported package is one Adapter
// variant registered in a name lookup. No adapter calls another: all
// cross-package consistency goes through the canonical model and the
// frame transforms.
package adapters

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/banshee-data/microlens/internal/model"
)

// Adapter is the bidirectional mapping between one package's native
// representation and the canonical model. Implementations declare
// statically which observers and origins they can serve and fail closed
// on anything else.
type Adapter interface {
	Package() string
	Observers() []string
	Origins() []string

	// NativeProjection names the projection convention the package's
	// parameters follow for the given observer.
	NativeProjection(observer string) string

	// Load converts already-parsed native params into a canonical model.
	Load(params map[string]any, observer string, epochs []float64) (*model.BaseModel, error)

	// Dump emits package-native parameters for the requested frame.
	Dump(m *model.BaseModel, observer, origin string) (map[string]any, error)
}

// UnknownPackageError reports a package name with no registered adapter.
type UnknownPackageError struct {
	Package string
	Known   []string
}

func (e *UnknownPackageError) Error() string {
	return fmt.Sprintf("no adapter registered for package %q (registered: %s)",
		e.Package, strings.Join(e.Known, ", "))
}

// Registry is a name -> Adapter lookup.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter. Re-registering a package name is a
// programming error.
func (r *Registry) Register(a Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := a.Package()
	if _, exists := r.adapters[name]; exists {
		return fmt.Errorf("adapter for package %q already registered", name)
	}
	r.adapters[name] = a
	return nil
}

// Resolve returns the adapter for a package name.
func (r *Registry) Resolve(name string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[name]
	if !ok {
		return nil, &UnknownPackageError{Package: name, Known: r.packagesLocked()}
	}
	return a, nil
}

// Packages lists registered package names, sorted.
func (r *Registry) Packages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.packagesLocked()
}

func (r *Registry) packagesLocked() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

// Register adds an adapter to the default registry, panicking on
// duplicates. Called from adapter init functions.
func Register(a Adapter) {
	if err := defaultRegistry.Register(a); err != nil {
		panic(err)
	}
}

// Resolve looks up an adapter in the default registry.
func Resolve(name string) (Adapter, error) { return defaultRegistry.Resolve(name) }

// Packages lists the default registry's package names.
func Packages() []string { return defaultRegistry.Packages() }

// Default returns the process-wide registry populated by adapter init
// functions.
func Default() *Registry { return defaultRegistry }
