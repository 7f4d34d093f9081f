package testutil

import (
	"math"
	"testing"

	"github.com/banshee-data/microlens/internal/ephem"
)

// auPerDayToKmS matches the conversion the projection math uses, so
// synthetic velocities stay consistent with synthetic positions.
const auPerDayToKmS = 1731.45683

// CircularOrbitTable builds a synthetic ephemeris for one observer on a
// circular barycentric orbit in the equatorial plane: radiusAU at phaseDeg
// from +x at startMJD, one revolution per Julian year, sampled every
// stepDays from startMJD through endMJD. Velocities are the analytic
// derivative of the positions, in km/s.
func CircularOrbitTable(t *testing.T, observer string, startMJD, endMJD, stepDays, radiusAU, phaseDeg float64) *ephem.Table {
	t.Helper()
	tbl := ephem.NewTable()
	AddCircularOrbit(t, tbl, observer, startMJD, endMJD, stepDays, radiusAU, phaseDeg)
	return tbl
}

// AddCircularOrbit appends a circular-orbit sample set for one observer to
// an existing table, so tests can stack multiple observers.
func AddCircularOrbit(t *testing.T, tbl *ephem.Table, observer string, startMJD, endMJD, stepDays, radiusAU, phaseDeg float64) {
	t.Helper()
	const yearDays = 365.25
	omega := 2 * math.Pi / yearDays

	var states []ephem.State
	for mjd := startMJD; mjd <= endMJD; mjd += stepDays {
		theta := phaseDeg*math.Pi/180 + omega*(mjd-startMJD)
		speed := radiusAU * omega * auPerDayToKmS
		states = append(states, ephem.State{
			MJD: mjd,
			Pos: [3]float64{radiusAU * math.Cos(theta), radiusAU * math.Sin(theta), 0},
			Vel: [3]float64{-speed * math.Sin(theta), speed * math.Cos(theta), 0},
		})
	}
	if err := tbl.Add(observer, states...); err != nil {
		t.Fatalf("populate synthetic ephemeris for %q: %v", observer, err)
	}
}
