// Package ephem supplies observer position/velocity lookups for projection
// transforms. The core treats a Provider as an injected boundary: it never
// fetches ephemerides itself and fails closed when coverage is incomplete.
package ephem

import "fmt"

// State is an observer's barycentric state at one epoch.
type State struct {
	MJD float64    // epoch, MJD TDB
	Pos [3]float64 // barycentric position, AU
	Vel [3]float64 // barycentric velocity, km/s
}

// Provider resolves an observer's state at a requested epoch. Lookups must
// be deterministic; implementations interpolate between stored samples but
// never extrapolate past their coverage.
type Provider interface {
	State(observer string, mjd float64) (State, error)
	Covers(observer string, mjd float64) bool
}

// EphemerisUnavailableError reports a projection transform epoch outside
// the provider's coverage for an observer. Start/End are the coverage
// bounds; both zero when the observer is unknown entirely.
type EphemerisUnavailableError struct {
	Observer string
	Epoch    float64
	Start    float64
	End      float64
}

func (e *EphemerisUnavailableError) Error() string {
	if e.Start == 0 && e.End == 0 {
		return fmt.Sprintf("no ephemeris for observer %q", e.Observer)
	}
	return fmt.Sprintf("ephemeris for observer %q does not cover MJD %v (coverage %v to %v)",
		e.Observer, e.Epoch, e.Start, e.End)
}
