package ephem

import (
	"fmt"
	"sort"
)

// Table is an in-memory Provider backed by per-observer sorted samples.
// Lookups linearly interpolate between the bracketing samples. A Table is
// read-only once populated.
type Table struct {
	samples map[string][]State
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{samples: make(map[string][]State)}
}

// Add appends samples for an observer. Samples may arrive in any order;
// duplicates by epoch are rejected.
func (t *Table) Add(observer string, states ...State) error {
	existing := t.samples[observer]
	merged := append(append([]State(nil), existing...), states...)
	sort.Slice(merged, func(i, j int) bool { return merged[i].MJD < merged[j].MJD })
	for i := 1; i < len(merged); i++ {
		if merged[i].MJD == merged[i-1].MJD {
			return fmt.Errorf("duplicate ephemeris sample for %q at MJD %v", observer, merged[i].MJD)
		}
	}
	t.samples[observer] = merged
	return nil
}

// Observers lists observers with at least one sample.
func (t *Table) Observers() []string {
	names := make([]string, 0, len(t.samples))
	for name := range t.samples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Covers reports whether mjd falls inside the observer's sampled range.
func (t *Table) Covers(observer string, mjd float64) bool {
	s := t.samples[observer]
	return len(s) > 0 && mjd >= s[0].MJD && mjd <= s[len(s)-1].MJD
}

// State returns the interpolated state at mjd.
func (t *Table) State(observer string, mjd float64) (State, error) {
	s := t.samples[observer]
	if len(s) == 0 {
		return State{}, &EphemerisUnavailableError{Observer: observer, Epoch: mjd}
	}
	if mjd < s[0].MJD || mjd > s[len(s)-1].MJD {
		return State{}, &EphemerisUnavailableError{
			Observer: observer,
			Epoch:    mjd,
			Start:    s[0].MJD,
			End:      s[len(s)-1].MJD,
		}
	}
	// First sample at or after mjd.
	i := sort.Search(len(s), func(i int) bool { return s[i].MJD >= mjd })
	if s[i].MJD == mjd {
		return s[i], nil
	}
	return lerp(s[i-1], s[i], mjd), nil
}

func lerp(a, b State, mjd float64) State {
	f := (mjd - a.MJD) / (b.MJD - a.MJD)
	out := State{MJD: mjd}
	for c := 0; c < 3; c++ {
		out.Pos[c] = a.Pos[c] + f*(b.Pos[c]-a.Pos[c])
		out.Vel[c] = a.Vel[c] + f*(b.Vel[c]-a.Vel[c])
	}
	return out
}
