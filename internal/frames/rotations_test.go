package frames

import (
	"math"
	"testing"

	"pgregory.net/rapid"

	"github.com/banshee-data/microlens/internal/model"
	"github.com/banshee-data/microlens/internal/testutil"
)

func TestRotationXYToTUKnownAngles(t *testing.T) {
	// alpha = 0 with positive impact sign is the identity.
	r := RotationXYToTU(0, 1)
	got := Rotate([2]float64{1, 2}, r)
	testutil.AssertVec2InDelta(t, got, [2]float64{1, 2}, 1e-15)

	// alpha = 90 deg sends x-hat to (0, -sgn).
	r = RotationXYToTU(90, 1)
	got = Rotate([2]float64{1, 0}, r)
	testutil.AssertVec2InDelta(t, got, [2]float64{0, -1}, 1e-12)

	// Flipping the impact sign mirrors the cross-track component.
	r = RotationXYToTU(90, -1)
	got = Rotate([2]float64{1, 0}, r)
	testutil.AssertVec2InDelta(t, got, [2]float64{0, 1}, 1e-12)
}

func TestRotationXYToTURoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		alpha := rapid.Float64Range(-180, 180).Draw(rt, "alpha")
		sgn := rapid.SampledFrom([]float64{1, -1}).Draw(rt, "sgn")
		v := [2]float64{
			rapid.Float64Range(-10, 10).Draw(rt, "x"),
			rapid.Float64Range(-10, 10).Draw(rt, "y"),
		}

		fwd := RotationXYToTU(alpha, sgn)
		inv, err := RotationTUToXY(alpha, sgn)
		if err != nil {
			rt.Fatal(err)
		}
		back := Rotate(Rotate(v, fwd), inv)
		for c := 0; c < 2; c++ {
			if math.Abs(back[c]-v[c]) > 1e-12 {
				rt.Fatalf("round trip drift: %v -> %v", v, back)
			}
		}
	})
}

func TestRotationTUToNEAlignsWithProperMotion(t *testing.T) {
	// Proper motion due East: along-track maps to East.
	r, err := RotationTUToNE(5, 0, 1)
	testutil.AssertNoError(t, err)
	got := Rotate([2]float64{1, 0}, r)
	testutil.AssertVec2InDelta(t, got, [2]float64{1, 0}, 1e-12)

	// Cross-track for positive sign points (hatT rotated -90 deg).
	got = Rotate([2]float64{0, 1}, r)
	testutil.AssertVec2InDelta(t, got, [2]float64{0, -1}, 1e-12)
}

func TestRotationTUToNEZeroMu(t *testing.T) {
	if _, err := RotationTUToNE(0, 0, 1); err == nil {
		t.Fatal("expected error for zero proper motion")
	}
	if _, err := RotationTUToNE(math.NaN(), 1, 1); err == nil {
		t.Fatal("expected error for non-finite proper motion")
	}
}

func TestRotationXYToNEOrthonormal(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		alpha := rapid.Float64Range(-360, 360).Draw(rt, "alpha")
		sgn := rapid.SampledFrom([]float64{1, -1}).Draw(rt, "sgn")
		phi := rapid.Float64Range(0, 2*math.Pi).Draw(rt, "phi")
		muNorm := rapid.Float64Range(0.5, 12).Draw(rt, "muNorm")
		muE := muNorm * math.Cos(phi)
		muN := muNorm * math.Sin(phi)

		r, diag, err := RotationXYToNE(muE, muN, alpha, sgn)
		if err != nil {
			rt.Fatal(err)
		}
		if diag.AlphaDeg != alpha {
			rt.Fatalf("diag alpha = %v, want %v", diag.AlphaDeg, alpha)
		}

		inv, _, err := RotationNEToXY(muE, muN, alpha, sgn)
		if err != nil {
			rt.Fatal(err)
		}
		v := [2]float64{
			rapid.Float64Range(-5, 5).Draw(rt, "x"),
			rapid.Float64Range(-5, 5).Draw(rt, "y"),
		}
		back := Rotate(Rotate(v, r), inv)
		for c := 0; c < 2; c++ {
			if math.Abs(back[c]-v[c]) > 1e-10 {
				rt.Fatalf("round trip drift: %v -> %v", v, back)
			}
		}

		// Rotations preserve length.
		in := math.Hypot(v[0], v[1])
		out := Rotate(v, r)
		if math.Abs(math.Hypot(out[0], out[1])-in) > 1e-10 {
			rt.Fatalf("rotation changed vector length: %v -> %v", in, out)
		}
	})
}

func TestRotationXYToNENonFiniteAlpha(t *testing.T) {
	if _, _, err := RotationXYToNE(1, 2, math.Inf(1), 1); err == nil {
		t.Fatal("expected error for non-finite alpha")
	}
}

func TestRotateSeries(t *testing.T) {
	frame := model.FrameConfig{
		Observer:   model.ObserverEarth,
		Origin:     model.OriginLens1AtT0,
		Rest:       model.RestSource,
		Coords:     model.CoordsLensXY,
		Projection: model.ProjectionHeliocentric,
	}
	ts, err := model.NewTimeSeries([]float64{1, 2}, [][2]float64{{1, 0}, {0, 1}}, frame)
	testutil.AssertNoError(t, err)

	out, err := RotateSeries(ts, RotationXYToTU(0, 1), model.CoordsTauBeta)
	testutil.AssertNoError(t, err)
	if out.Frame().Coords != model.CoordsTauBeta {
		t.Errorf("coords = %q, want %q", out.Frame().Coords, model.CoordsTauBeta)
	}
	if ts.Frame().Coords != model.CoordsLensXY {
		t.Error("RotateSeries mutated the input series frame")
	}
	_, v := out.At(0)
	testutil.AssertVec2InDelta(t, v, [2]float64{1, 0}, 1e-15)
}

func TestRotateSeriesRejectsScalars(t *testing.T) {
	frame := model.FrameConfig{
		Observer: model.ObserverEarth,
		Origin:   model.OriginLens1AtT0,
		Rest:     model.RestSource,
		Coords:   model.CoordsTauBeta,
	}
	ts, err := model.NewScalarSeries([]float64{1, 2}, []float64{3, 4}, frame)
	testutil.AssertNoError(t, err)
	if _, err := RotateSeries(ts, RotationXYToTU(0, 1), model.CoordsICRS); err == nil {
		t.Fatal("expected error rotating a scalar series")
	}
}
