package frames

import (
	"errors"
	"math"
	"testing"

	"github.com/banshee-data/microlens/internal/ephem"
	"github.com/banshee-data/microlens/internal/model"
	"github.com/banshee-data/microlens/internal/testutil"
)

// testEvent holds the photometric fixture shared by the projection tests:
// a bulge-ish sightline with a healthy parallax signal.
var testEvent = struct {
	ra, dec           float64
	t0, u0, tE        float64
	piEE, piEN, t0par float64
}{
	ra: 268.5, dec: -29.0,
	t0: 55775, u0: 0.1, tE: 20,
	piEE: 0.2, piEN: -0.1, t0par: 55770,
}

func earthTable(t *testing.T) *ephem.Table {
	t.Helper()
	return testutil.CircularOrbitTable(t, model.ObserverEarth, 55000, 56500, 5, 1.0, 30)
}

func TestProjectedPositionAndVelocity(t *testing.T) {
	tbl := earthTable(t)

	pos, err := ProjectedPosition(tbl, model.ObserverEarth, testEvent.ra, testEvent.dec, 55775)
	testutil.AssertNoError(t, err)
	if math.Hypot(pos[0], pos[1]) > 1.0+1e-9 {
		t.Errorf("projected position %v exceeds the orbital radius", pos)
	}

	vel, err := ProjectedVelocity(tbl, model.ObserverEarth, testEvent.ra, testEvent.dec, 55775)
	testutil.AssertNoError(t, err)
	orbital := 2 * math.Pi / 365.25 * AUPerDayToKmS
	if math.Hypot(vel[0], vel[1]) > orbital+1e-6 {
		t.Errorf("projected velocity %v exceeds the orbital speed %v", vel, orbital)
	}
}

func TestConvertPiEVecTEPreservesMagnitude(t *testing.T) {
	tbl := earthTable(t)
	ev := testEvent

	piEEOut, piENOut, tEOut, err := ConvertPiEVecTE(tbl, model.ObserverEarth,
		ev.ra, ev.dec, ev.t0par, ev.piEE, ev.piEN, ev.tE, InFrameGeo)
	testutil.AssertNoError(t, err)

	wantPiE := math.Hypot(ev.piEE, ev.piEN)
	testutil.AssertInDelta(t, math.Hypot(piEEOut, piENOut), wantPiE, 1e-12)
	if tEOut <= 0 || math.IsNaN(tEOut) {
		t.Errorf("tE out = %v, want positive", tEOut)
	}
}

func TestConvertPiEVecTERejectsBadInputs(t *testing.T) {
	tbl := earthTable(t)
	if _, _, _, err := ConvertPiEVecTE(tbl, model.ObserverEarth, 0, 0, 55770, 0, 0, 20, InFrameGeo); err == nil {
		t.Error("expected error for zero parallax vector")
	}
	if _, _, _, err := ConvertPiEVecTE(tbl, model.ObserverEarth, 0, 0, 55770, 0.1, 0.1, 20, "barycentric"); err == nil {
		t.Error("expected error for unknown input frame tag")
	}
}

func TestConvertHelioGeoPhotRoundTrip(t *testing.T) {
	tbl := earthTable(t)
	ev := testEvent

	helio, err := ConvertHelioGeoPhot(tbl, model.ObserverEarth, ev.ra, ev.dec,
		ev.t0, ev.u0, ev.tE, ev.piEE, ev.piEN, ev.t0par, InFrameGeo, PhotConvertOptions{})
	testutil.AssertNoError(t, err)

	back, err := ConvertHelioGeoPhot(tbl, model.ObserverEarth, ev.ra, ev.dec,
		helio.T0, helio.U0, helio.TE, helio.PiEE, helio.PiEN, ev.t0par, InFrameHelio, PhotConvertOptions{})
	testutil.AssertNoError(t, err)

	testutil.AssertInDelta(t, back.T0, ev.t0, 1e-6)
	testutil.AssertInDelta(t, back.U0, ev.u0, 1e-6)
	testutil.AssertInDelta(t, back.TE, ev.tE, 1e-6)
	testutil.AssertInDelta(t, back.PiEE, ev.piEE, 1e-9)
	testutil.AssertInDelta(t, back.PiEN, ev.piEN, 1e-9)
}

func TestConvertHelioGeoPhotActuallyMoves(t *testing.T) {
	tbl := earthTable(t)
	ev := testEvent

	helio, err := ConvertHelioGeoPhot(tbl, model.ObserverEarth, ev.ra, ev.dec,
		ev.t0, ev.u0, ev.tE, ev.piEE, ev.piEN, ev.t0par, InFrameGeo, PhotConvertOptions{})
	testutil.AssertNoError(t, err)
	if helio.TE == ev.tE && helio.T0 == ev.t0 {
		t.Error("heliocentric parameters identical to geocentric input; conversion is a no-op")
	}
}

func TestConvertHelioGeoPhotRejectsNonFinite(t *testing.T) {
	tbl := earthTable(t)
	_, err := ConvertHelioGeoPhot(tbl, model.ObserverEarth, 0, 0,
		math.NaN(), 0.1, 20, 0.2, -0.1, 55770, InFrameGeo, PhotConvertOptions{})
	testutil.AssertError(t, err)
}

func projectionFixture(t *testing.T, projection string) model.TimeSeries {
	t.Helper()
	frame := model.FrameConfig{
		Observer:   model.ObserverEarth,
		Origin:     model.OriginLens1AtT0,
		Rest:       model.RestSource,
		Coords:     model.CoordsICRS,
		Projection: projection,
	}
	epochs := []float64{55765, 55770, 55775, 55780, 55785}
	values := make([][2]float64, len(epochs))
	for i, e := range epochs {
		tau := (e - testEvent.t0) / testEvent.tE
		values[i] = [2]float64{tau * 0.9, testEvent.u0 + tau*0.1}
	}
	ts, err := model.NewTimeSeries(epochs, values, frame)
	testutil.AssertNoError(t, err)
	return ts
}

func TestProjectSeriesRoundTrip(t *testing.T) {
	tbl := earthTable(t)
	ev := testEvent
	ts := projectionFixture(t, model.ProjectionHeliocentric)

	target := ts.Frame()
	target.Projection = model.ProjectionGeocentric
	geo, err := ProjectSeries(tbl, ts, ev.ra, ev.dec, ev.piEE, ev.piEN, target)
	testutil.AssertNoError(t, err)
	if geo.Frame() != target {
		t.Fatalf("frame = %v, want %v", geo.Frame(), target)
	}

	back, err := ProjectSeries(tbl, geo, ev.ra, ev.dec, ev.piEE, ev.piEN, ts.Frame())
	testutil.AssertNoError(t, err)
	for i := 0; i < ts.Len(); i++ {
		_, want := ts.At(i)
		_, got := back.At(i)
		testutil.AssertVec2InDelta(t, got, want, 1e-12)
	}
}

func TestProjectSeriesSameProjectionRetags(t *testing.T) {
	tbl := earthTable(t)
	ts := projectionFixture(t, model.ProjectionHeliocentric)
	out, err := ProjectSeries(tbl, ts, testEvent.ra, testEvent.dec, testEvent.piEE, testEvent.piEN, ts.Frame())
	testutil.AssertNoError(t, err)
	_, want := ts.At(2)
	_, got := out.At(2)
	testutil.AssertVec2InDelta(t, got, want, 0)
}

func TestProjectSeriesNeedsHeliocentricHub(t *testing.T) {
	tbl := earthTable(t)
	ts := projectionFixture(t, model.ProjectionGeocentric)
	target := ts.Frame()
	target.Observer = model.ObserverRomanL2
	target.Projection = model.ProjectionSpacecraft

	_, err := ProjectSeries(tbl, ts, testEvent.ra, testEvent.dec, testEvent.piEE, testEvent.piEN, target)
	if !errors.Is(err, model.ErrNoDerivationPath) {
		t.Fatalf("err = %v, want ErrNoDerivationPath for a geo->spacecraft hop", err)
	}
}

func TestProjectSeriesRequiresParallax(t *testing.T) {
	tbl := earthTable(t)
	ts := projectionFixture(t, model.ProjectionHeliocentric)
	target := ts.Frame()
	target.Projection = model.ProjectionGeocentric

	_, err := ProjectSeries(tbl, ts, testEvent.ra, testEvent.dec, 0, 0, target)
	if !errors.Is(err, model.ErrNoDerivationPath) {
		t.Fatalf("err = %v, want ErrNoDerivationPath without a parallax vector", err)
	}
}

func TestProjectSeriesCoverageGap(t *testing.T) {
	// Coverage ends well before the series epochs.
	tbl := testutil.CircularOrbitTable(t, model.ObserverEarth, 50000, 51000, 5, 1.0, 0)
	ts := projectionFixture(t, model.ProjectionHeliocentric)
	target := ts.Frame()
	target.Projection = model.ProjectionGeocentric

	_, err := ProjectSeries(tbl, ts, testEvent.ra, testEvent.dec, testEvent.piEE, testEvent.piEN, target)
	var eu *ephem.EphemerisUnavailableError
	if !errors.As(err, &eu) {
		t.Fatalf("err = %v, want EphemerisUnavailableError", err)
	}
	if eu.Observer != model.ObserverEarth {
		t.Errorf("observer = %q, want earth", eu.Observer)
	}
	if eu.End != 51000 {
		t.Errorf("coverage end = %v, want 51000", eu.End)
	}
}
