package frames

import (
	"fmt"
	"math"

	"github.com/banshee-data/microlens/internal/ephem"
	"github.com/banshee-data/microlens/internal/model"
	"github.com/banshee-data/microlens/internal/units"
)

// AUPerDayToKmS converts a velocity expressed in AU/day to km/s.
const AUPerDayToKmS = 1731.45683

// Projection frame tags accepted by the scalar conversion functions.
const (
	InFrameHelio = "helio"
	InFrameGeo   = "geo"
)

// basisVectors returns the East and North unit vectors of the sky plane at
// the given ICRS position (degrees).
func basisVectors(raDeg, decDeg float64) (east, north [3]float64) {
	ra := units.DegToRad(raDeg)
	dec := units.DegToRad(decDeg)
	dir := [3]float64{
		math.Cos(dec) * math.Cos(ra),
		math.Cos(dec) * math.Sin(ra),
		math.Sin(dec),
	}
	pole := [3]float64{0, 0, 1}
	east = normalize(cross(pole, dir))
	north = normalize(cross(dir, east))
	return east, north
}

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func normalize(v [3]float64) [3]float64 {
	n := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	return [3]float64{v[0] / n, v[1] / n, v[2] / n}
}

func dot3(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// ProjectedPosition returns the observer's barycentric position projected
// onto the sky-plane (East, North) basis at the target position, in AU.
func ProjectedPosition(p ephem.Provider, observer string, raDeg, decDeg, mjd float64) ([2]float64, error) {
	st, err := p.State(observer, mjd)
	if err != nil {
		return [2]float64{}, err
	}
	east, north := basisVectors(raDeg, decDeg)
	return [2]float64{dot3(st.Pos, east), dot3(st.Pos, north)}, nil
}

// ProjectedVelocity returns the observer's barycentric velocity projected
// onto the sky-plane (East, North) basis, in km/s.
func ProjectedVelocity(p ephem.Provider, observer string, raDeg, decDeg, mjd float64) ([2]float64, error) {
	st, err := p.State(observer, mjd)
	if err != nil {
		return [2]float64{}, err
	}
	east, north := basisVectors(raDeg, decDeg)
	return [2]float64{dot3(st.Vel, east), dot3(st.Vel, north)}, nil
}

// ConvertPiEVecTE converts the parallax vector and Einstein time between
// the heliocentric frame and the frame projected for the named observer,
// using the observer's projected velocity at t0par. inFrame names the
// frame of the inputs; outputs are in the opposite frame.
func ConvertPiEVecTE(p ephem.Provider, observer string, raDeg, decDeg, t0par, piEEIn, piENIn, tEIn float64, inFrame string) (piEEOut, piENOut, tEOut float64, err error) {
	if inFrame != InFrameHelio && inFrame != InFrameGeo {
		return 0, 0, 0, fmt.Errorf("inFrame must be %q or %q", InFrameHelio, InFrameGeo)
	}
	piE := math.Hypot(piEEIn, piENIn)
	if piE == 0 {
		return 0, 0, 0, fmt.Errorf("piE vector cannot be zero-length")
	}
	piE2 := piE * piE
	vtildeEIn := piEEIn / (tEIn * piE2) * AUPerDayToKmS
	vtildeNIn := piENIn / (tEIn * piE2) * AUPerDayToKmS

	vObs, err := ProjectedVelocity(p, observer, raDeg, decDeg, t0par)
	if err != nil {
		return 0, 0, 0, err
	}

	var vtildeEOut, vtildeNOut float64
	if inFrame == InFrameHelio {
		vtildeEOut = -vtildeEIn - vObs[0]
		vtildeNOut = -vtildeNIn - vObs[1]
	} else {
		vtildeEOut = -vtildeEIn + vObs[0]
		vtildeNOut = -vtildeNIn + vObs[1]
	}

	vtildeIn := math.Hypot(vtildeEIn, vtildeNIn)
	vtildeOut := math.Hypot(vtildeEOut, vtildeNOut)
	piEEOut = piE * -vtildeEOut / vtildeOut
	piENOut = piE * -vtildeNOut / vtildeOut
	tEOut = vtildeIn / vtildeOut * tEIn
	return piEEOut, piENOut, tEOut, nil
}

// ConvertU0VecT0 converts the impact-parameter vector and peak time
// between frames, given the track unit vectors in both frames. Returns
// the converted peak time and the (E, N) u0 vector in Einstein radii.
func ConvertU0VecT0(p ephem.Provider, observer string, raDeg, decDeg, t0par, t0In, u0In, tEIn, tEOut, piE float64,
	tauhatIn, u0hatIn, tauhatOut [2]float64, inFrame string) (float64, [2]float64, error) {

	parVec, err := ProjectedPosition(p, observer, raDeg, decDeg, t0par)
	if err != nil {
		return 0, [2]float64{}, err
	}

	u0vecIn := scale(u0hatIn, math.Abs(u0In))

	var t0Out float64
	var u0vecOut [2]float64
	switch inFrame {
	case InFrameHelio:
		dpdt := scale(sub(scale(tauhatIn, 1/tEIn), scale(tauhatOut, 1/tEOut)), 1/piE)
		vec := sub(sub(u0vecIn, scale(parVec, piE)), scale(dpdt, (t0In-t0par)*piE))
		t0Out = t0In - tEOut*dot2(tauhatOut, vec)
		u0vecOut = sub(add(u0vecIn, sub(scale(tauhatIn, (t0par-t0In)/tEIn), scale(tauhatOut, (t0par-t0Out)/tEOut))), scale(parVec, piE))
	case InFrameGeo:
		dpdt := scale(sub(scale(tauhatIn, 1/tEIn), scale(tauhatOut, 1/tEOut)), -1/piE)
		vec := add(add(u0vecIn, scale(parVec, piE)), scale(dpdt, (t0In-t0par)*piE))
		t0Out = t0In - tEOut*dot2(tauhatOut, vec)
		u0vecOut = add(add(u0vecIn, sub(scale(tauhatIn, (t0par-t0In)/tEIn), scale(tauhatOut, (t0par-t0Out)/tEOut))), scale(parVec, piE))
	default:
		return 0, [2]float64{}, fmt.Errorf("inFrame must be %q or %q", InFrameHelio, InFrameGeo)
	}
	return t0Out, u0vecOut, nil
}

// PhotConvertOptions selects sign and basis conventions for
// ConvertHelioGeoPhot. The zero value is the source-minus-lens (SL)
// convention with fixed East/North bases on both sides.
type PhotConvertOptions struct {
	MuRelInLS  bool // input parallax follows lens-minus-source
	MuRelOutLS bool // flip output parallax to lens-minus-source
	CoordInTB  bool // input u0 sign follows the tau/beta basis
	CoordOutTB bool // output u0 sign follows the tau/beta basis
}

// ConvertHelioGeoPhot converts the photometric parameter set between the
// heliocentric frame and the projected frame of the named observer.
// inFrame names the frame of the inputs.
func ConvertHelioGeoPhot(p ephem.Provider, observer string, raDeg, decDeg float64,
	t0In, u0In, tEIn, piEEIn, piENIn, t0par float64, inFrame string, opts PhotConvertOptions) (model.PhotParams, error) {

	for i, v := range []float64{t0In, u0In, tEIn, piEEIn, piENIn, t0par} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return model.PhotParams{}, fmt.Errorf("conversion input %d is not finite", i)
		}
	}
	if opts.MuRelInLS {
		piEEIn, piENIn = -piEEIn, -piENIn
	}

	piEEOut, piENOut, tEOut, err := ConvertPiEVecTE(p, observer, raDeg, decDeg, t0par, piEEIn, piENIn, tEIn, inFrame)
	if err != nil {
		return model.PhotParams{}, err
	}

	piE := math.Hypot(piEEIn, piENIn)
	tauhatIn := [2]float64{piEEIn / piE, piENIn / piE}
	tauhatOut := [2]float64{piEEOut / piE, piENOut / piE}

	u0hatIn := u0Hat(u0In, tauhatIn, piEEIn, piENIn, opts.CoordInTB)

	t0Out, u0vecOut, err := ConvertU0VecT0(p, observer, raDeg, decDeg, t0par,
		t0In, u0In, tEIn, tEOut, piE, tauhatIn, u0hatIn, tauhatOut, inFrame)
	if err != nil {
		return model.PhotParams{}, err
	}

	u0Out := math.Hypot(u0vecOut[0], u0vecOut[1])
	if u0vecOut[0] < 0 {
		u0Out = -u0Out
	}
	if opts.CoordOutTB {
		u0Out = math.Hypot(u0vecOut[0], u0vecOut[1])
		if tauhatOut[0]*u0vecOut[1]-tauhatOut[1]*u0vecOut[0] < 0 {
			u0Out = -u0Out
		}
	}
	if opts.MuRelOutLS {
		piEEOut, piENOut = -piEEOut, -piENOut
	}

	return model.PhotParams{T0: t0Out, U0: u0Out, TE: tEOut, PiEE: piEEOut, PiEN: piENOut}, nil
}

// u0Hat picks the impact-parameter direction consistent with the stored
// sign convention.
func u0Hat(u0 float64, tauhat [2]float64, piEE, piEN float64, coordTB bool) [2]float64 {
	if coordTB {
		if u0 > 0 {
			return [2]float64{tauhat[1], -tauhat[0]}
		}
		return [2]float64{-tauhat[1], tauhat[0]}
	}
	signTerm := sign(u0 * piEN)
	if signTerm == 0 {
		signTerm = -sign(u0 * piEE)
	}
	if signTerm < 0 {
		return [2]float64{-tauhat[1], tauhat[0]}
	}
	return [2]float64{tauhat[1], -tauhat[0]}
}

// ProjectSeries re-expresses a 2-vector sky series between the
// heliocentric projection and an observer-tied projection by applying the
// per-epoch parallax shift. The parallax vector (piEE, piEN) must be in
// the same frame the shift basis is built from; the round trip is exact by
// construction. Projection pairs not reachable through the heliocentric
// frame wrap model.ErrNoDerivationPath.
func ProjectSeries(p ephem.Provider, ts model.TimeSeries, raDeg, decDeg, piEE, piEN float64, target model.FrameConfig) (model.TimeSeries, error) {
	if ts.Dim() != 2 {
		return model.TimeSeries{}, fmt.Errorf("project: series must carry 2-vector values, got dim %d", ts.Dim())
	}
	from := ts.Frame().Projection
	to := target.Projection
	if from == to {
		return ts.Retagged(target)
	}

	var shiftObserver string
	var subtract bool
	switch {
	case from == model.ProjectionHeliocentric:
		shiftObserver = projectionObserver(to, target.Observer)
		subtract = true
	case to == model.ProjectionHeliocentric:
		shiftObserver = projectionObserver(from, ts.Frame().Observer)
		subtract = false
	default:
		return model.TimeSeries{}, fmt.Errorf("projection %q to %q: %w", from, to, model.ErrNoDerivationPath)
	}
	if shiftObserver == "" {
		return model.TimeSeries{}, fmt.Errorf("projection %q to %q: %w", from, to, model.ErrNoDerivationPath)
	}

	piE := math.Hypot(piEE, piEN)
	if piE == 0 {
		return model.TimeSeries{}, fmt.Errorf("parallax vector required for projection transform: %w", model.ErrNoDerivationPath)
	}
	tauhat := [2]float64{piEE / piE, piEN / piE}
	betahat := [2]float64{-tauhat[1], tauhat[0]}

	epochs := ts.Epochs()
	values := ts.Values()
	for i, e := range epochs {
		s, err := ProjectedPosition(p, shiftObserver, raDeg, decDeg, e)
		if err != nil {
			return model.TimeSeries{}, err
		}
		dTau := piEE*s[0] + piEN*s[1]
		dBeta := piEE*s[1] - piEN*s[0]
		shift := add(scale(tauhat, dTau), scale(betahat, dBeta))
		if subtract {
			values[i] = sub(values[i], shift)
		} else {
			values[i] = add(values[i], shift)
		}
	}
	return model.NewTimeSeries(epochs, values, target)
}

// projectionObserver names the observer whose ephemeris defines a
// projection. The geocentric projection is always Earth's; a spacecraft
// projection is tied to the frame's observer.
func projectionObserver(projection, frameObserver string) string {
	switch projection {
	case model.ProjectionGeocentric:
		return model.ObserverEarth
	case model.ProjectionSpacecraft:
		return frameObserver
	}
	return ""
}

func add(a, b [2]float64) [2]float64   { return [2]float64{a[0] + b[0], a[1] + b[1]} }
func sub(a, b [2]float64) [2]float64   { return [2]float64{a[0] - b[0], a[1] - b[1]} }
func scale(a [2]float64, f float64) [2]float64 { return [2]float64{a[0] * f, a[1] * f} }
func dot2(a, b [2]float64) float64     { return a[0]*b[0] + a[1]*b[1] }

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
