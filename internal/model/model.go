package model

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// Canonical scalar key groups. Presence of the binary pair upgrades the
// inferred kind from PSPL to PSBL; a partial pair is an error, never a
// guess. Parallax and proper-motion pairs follow the same rule.
var (
	CanonicalScalars = []string{"t0", "tE", "u0_amp", "u0_sign"}
	BinaryFields     = []string{"sep", "q"}
	ParallaxFields   = []string{"piEE", "piEN"}
	MuFields         = []string{"mu_rel_e", "mu_rel_n"}
)

// Kind is the inferred lens model family.
type Kind string

const (
	KindPSPL Kind = "PSPL" // point-source point-lens
	KindPSBL Kind = "PSBL" // point-source binary-lens
)

// Meta holds static identifiers and derived constants of the event.
type Meta struct {
	EventID string
	Package string // package the model was loaded from

	// Sky position (ICRS, degrees) and the reference epoch defining the
	// geocentric projection. Required for projection transforms.
	RA    float64
	Dec   float64
	T0Par float64

	// Native frame the source adapter loaded under.
	Observer string
	Origin   string

	// Reference epoch set (MJD). When empty, the first canonical series
	// loaded becomes the reference.
	Epochs []float64
}

// PhotParams are the five photometric parameters that swap together when
// changing projection frames.
type PhotParams struct {
	T0   float64
	U0   float64
	TE   float64
	PiEE float64
	PiEN float64
}

// Transformer is the frame-primitive capability GetSeries and the
// frame-dependent scalar accessors call through. The frames package
// provides the implementation; keeping it behind an interface keeps this
// package a pure physical record.
type Transformer interface {
	// DeriveSeries produces ts re-expressed under target, or wraps
	// ErrNoDerivationPath when it cannot.
	DeriveSeries(m *BaseModel, ts TimeSeries, target FrameConfig) (TimeSeries, error)

	// ConvertPhot converts the canonical geocentric photometric parameters
	// to the requested projection for the named observer.
	ConvertPhot(m *BaseModel, projection, observer string) (PhotParams, error)
}

type photKey struct {
	projection string
	observer   string
}

// BaseModel is the canonical event representation. It is logically
// immutable after construction: derived series produced by frame
// transforms live in a separate registry and canonical entries are never
// replaced.
type BaseModel struct {
	Meta Meta

	kind    Kind
	scalars map[string]float64
	series  map[string][]TimeSeries

	mu          sync.Mutex
	derived     map[string][]TimeSeries
	photCache   map[photKey]PhotParams
	transformer Transformer
}

// InferKind determines the lens model family from the scalar key set.
// A fixed minimal key set determines each kind; partial pairs fail with
// a MissingParameterError rather than guessing.
func InferKind(scalars map[string]float64) (Kind, error) {
	var missing []string
	for _, key := range CanonicalScalars {
		if _, ok := scalars[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return "", &MissingParameterError{Package: "canonical", Keys: missing}
	}
	for _, pair := range [][]string{BinaryFields, ParallaxFields, MuFields} {
		if err := requirePair(scalars, pair); err != nil {
			return "", err
		}
	}
	if _, ok := scalars[BinaryFields[0]]; ok {
		return KindPSBL, nil
	}
	return KindPSPL, nil
}

func requirePair(scalars map[string]float64, pair []string) error {
	_, hasA := scalars[pair[0]]
	_, hasB := scalars[pair[1]]
	if hasA != hasB {
		missing := pair[0]
		if hasA {
			missing = pair[1]
		}
		return &MissingParameterError{Package: "canonical", Keys: []string{missing}}
	}
	return nil
}

// New validates and constructs a canonical model. The scalar set must
// satisfy the inferred kind, every scalar must be finite, u0_sign must be
// ±1, no two series under one observable may share a FrameConfig, and
// every series must sample a subset of the reference epoch set.
func New(meta Meta, scalars map[string]float64, series map[string][]TimeSeries) (*BaseModel, error) {
	kind, err := InferKind(scalars)
	if err != nil {
		return nil, err
	}
	for name, v := range scalars {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("scalar %q is not finite", name)
		}
	}
	if sign := scalars["u0_sign"]; sign != 1 && sign != -1 {
		return nil, fmt.Errorf("u0_sign must be +1 or -1, got %v", sign)
	}

	m := &BaseModel{
		Meta:      meta,
		kind:      kind,
		scalars:   make(map[string]float64, len(scalars)),
		series:    make(map[string][]TimeSeries, len(series)),
		derived:   make(map[string][]TimeSeries),
		photCache: make(map[photKey]PhotParams),
	}
	for k, v := range scalars {
		m.scalars[k] = v
	}

	reference := meta.Epochs
	for _, name := range sortedKeys(series) {
		list := series[name]
		seen := make(map[FrameConfig]bool, len(list))
		for _, ts := range list {
			if seen[ts.Frame()] {
				return nil, fmt.Errorf("series %q: duplicate frame %s", name, ts.Frame())
			}
			seen[ts.Frame()] = true
			if len(reference) == 0 {
				reference = ts.Epochs()
			} else if err := checkEpochSubset(name, ts, reference); err != nil {
				return nil, err
			}
		}
		m.series[name] = append([]TimeSeries(nil), list...)
	}
	if len(m.Meta.Epochs) == 0 {
		m.Meta.Epochs = reference
	}
	return m, nil
}

// checkEpochSubset enforces the subset-compatible sampling rule: every
// epoch of ts must appear in the reference set.
func checkEpochSubset(name string, ts TimeSeries, reference []float64) error {
	ref := make(map[float64]bool, len(reference))
	for _, e := range reference {
		ref[e] = true
	}
	for _, e := range ts.Epochs() {
		if !ref[e] {
			return &InconsistentEpochsError{
				Observable: name,
				Reason:     fmt.Sprintf("epoch %v not in the model reference epoch set (%d epochs)", e, len(reference)),
			}
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetTransformer wires the frame-primitive implementation used for
// derived-series resolution and projection conversions. This is
// infrastructure wiring, not model data; the Converter sets it after load.
func (m *BaseModel) SetTransformer(t Transformer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transformer = t
}

// Kind returns the inferred model family.
func (m *BaseModel) Kind() Kind { return m.kind }

// Scalar returns one canonical scalar by name.
func (m *BaseModel) Scalar(name string) (float64, bool) {
	v, ok := m.scalars[name]
	return v, ok
}

// Scalars returns a copy of the canonical scalar mapping.
func (m *BaseModel) Scalars() map[string]float64 {
	out := make(map[string]float64, len(m.scalars))
	for k, v := range m.scalars {
		out[k] = v
	}
	return out
}

// T0 is the epoch of closest approach (MJD). Frame-independent.
func (m *BaseModel) T0() float64 { return m.scalars["t0"] }

// TE is the Einstein crossing time in days. Frame-independent.
func (m *BaseModel) TE() float64 { return m.scalars["tE"] }

// U0 is the signed impact parameter in Einstein radii.
func (m *BaseModel) U0() float64 {
	return m.scalars["u0_amp"] * m.scalars["u0_sign"]
}

// HasParallax reports whether the parallax vector is populated.
func (m *BaseModel) HasParallax() bool {
	_, ok := m.scalars["piEE"]
	return ok
}

// HasAstrometry reports whether the relative proper motion is populated.
func (m *BaseModel) HasAstrometry() bool {
	_, ok := m.scalars["mu_rel_e"]
	return ok
}

// PiEVector returns the stored (geocentric-projected) parallax vector as
// (E, N).
func (m *BaseModel) PiEVector() ([2]float64, bool) {
	if !m.HasParallax() {
		return [2]float64{}, false
	}
	return [2]float64{m.scalars["piEE"], m.scalars["piEN"]}, true
}

// MuRelVector returns the relative proper motion vector as (E, N) in
// mas/yr.
func (m *BaseModel) MuRelVector() ([2]float64, bool) {
	if !m.HasAstrometry() {
		return [2]float64{}, false
	}
	return [2]float64{m.scalars["mu_rel_e"], m.scalars["mu_rel_n"]}, true
}

// Phot returns the photometric parameter set in the requested projection
// for the named observer. The canonical scalars are geocentric-projected
// for Earth; other projections convert through the Transformer and are
// cached per (projection, observer).
func (m *BaseModel) Phot(projection, observer string) (PhotParams, error) {
	canonical := PhotParams{
		T0:   m.T0(),
		U0:   m.U0(),
		TE:   m.TE(),
		PiEE: m.scalars["piEE"],
		PiEN: m.scalars["piEN"],
	}
	if projection == ProjectionGeocentric && observer == ObserverEarth {
		return canonical, nil
	}
	if !m.HasParallax() {
		// Without a parallax vector the parameters carry no projection
		// dependence.
		return canonical, nil
	}

	key := photKey{projection: projection, observer: observer}
	m.mu.Lock()
	if cached, ok := m.photCache[key]; ok {
		m.mu.Unlock()
		return cached, nil
	}
	t := m.transformer
	m.mu.Unlock()

	if t == nil {
		return PhotParams{}, fmt.Errorf("no frame transformer wired; cannot convert to projection %q", projection)
	}
	out, err := t.ConvertPhot(m, projection, observer)
	if err != nil {
		return PhotParams{}, err
	}
	m.mu.Lock()
	m.photCache[key] = out
	m.mu.Unlock()
	return out, nil
}

// SeriesNames lists observables with at least one canonical series.
func (m *BaseModel) SeriesNames() []string {
	return sortedKeys(m.series)
}

// Frames returns every FrameConfig populated on the model, canonical and
// derived, in a deterministic order.
func (m *BaseModel) Frames() []FrameConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[FrameConfig]bool)
	var out []FrameConfig
	collect := func(lists map[string][]TimeSeries) {
		for _, name := range sortedKeys(lists) {
			for _, ts := range lists[name] {
				if !seen[ts.Frame()] {
					seen[ts.Frame()] = true
					out = append(out, ts.Frame())
				}
			}
		}
	}
	collect(m.series)
	collect(m.derived)
	return out
}

// framesFor lists frames populated for one observable. Caller holds m.mu.
func (m *BaseModel) framesFor(observable string) []FrameConfig {
	var out []FrameConfig
	for _, ts := range m.series[observable] {
		out = append(out, ts.Frame())
	}
	for _, ts := range m.derived[observable] {
		out = append(out, ts.Frame())
	}
	return out
}

// GetSeries returns the observable under exactly the requested frame. All
// frame fields are mandatory; there is no current or default frame.
// Resolution order: exact canonical match, exact derived match, then a
// single-field derivation (coords rotation or projection transform)
// through the Transformer. Derived series are cached on the model. When
// no path exists the error enumerates the frames that do exist.
func (m *BaseModel) GetSeries(observable string, target FrameConfig) (TimeSeries, error) {
	if err := target.Validate(); err != nil {
		return TimeSeries{}, err
	}

	m.mu.Lock()
	canonical := append([]TimeSeries(nil), m.series[observable]...)
	derived := append([]TimeSeries(nil), m.derived[observable]...)
	t := m.transformer
	m.mu.Unlock()

	for _, ts := range canonical {
		if ts.Frame() == target {
			return ts, nil
		}
	}
	for _, ts := range derived {
		if ts.Frame() == target {
			return ts, nil
		}
	}

	if t != nil {
		for _, ts := range append(canonical, derived...) {
			if !derivableFrom(ts.Frame(), target) {
				continue
			}
			out, err := t.DeriveSeries(m, ts, target)
			if err != nil {
				if isNoPath(err) {
					continue
				}
				return TimeSeries{}, err
			}
			if err := m.AddDerivedSeries(observable, out); err != nil {
				return TimeSeries{}, err
			}
			return out, nil
		}
	}

	m.mu.Lock()
	available := m.framesFor(observable)
	m.mu.Unlock()
	return TimeSeries{}, &FrameNotFoundError{
		Observable: observable,
		Requested:  target,
		Available:  available,
	}
}

// derivableFrom reports whether target differs from have in exactly one of
// coords or projection, the two fields a Transformer can change.
func derivableFrom(have, target FrameConfig) bool {
	if have.Observer != target.Observer || have.Origin != target.Origin || have.Rest != target.Rest {
		return false
	}
	coordsDiffer := have.Coords != target.Coords
	projDiffer := have.Projection != target.Projection
	return coordsDiffer != projDiffer
}

func isNoPath(err error) bool {
	for err != nil {
		if err == ErrNoDerivationPath {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// AddDerivedSeries attaches a frame-transform product to the derived
// registry. The canonical series map is never mutated. Duplicate frames
// under the same observable are rejected, as is an epoch set outside the
// model reference.
func (m *BaseModel) AddDerivedSeries(observable string, ts TimeSeries) error {
	if len(m.Meta.Epochs) > 0 {
		if err := checkEpochSubset(observable, ts, m.Meta.Epochs); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.series[observable] {
		if existing.Frame() == ts.Frame() {
			return fmt.Errorf("series %q: frame %s already populated", observable, ts.Frame())
		}
	}
	for _, existing := range m.derived[observable] {
		if existing.Frame() == ts.Frame() {
			return fmt.Errorf("series %q: frame %s already populated", observable, ts.Frame())
		}
	}
	m.derived[observable] = append(m.derived[observable], ts)
	return nil
}
