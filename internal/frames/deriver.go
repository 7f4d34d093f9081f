package frames

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/microlens/internal/ephem"
	"github.com/banshee-data/microlens/internal/model"
)

// Deriver implements model.Transformer on top of the rotation and
// projection primitives. A nil Provider disables projection derivations;
// rotation paths need only model scalars.
type Deriver struct {
	Provider ephem.Provider
}

// DeriveSeries re-expresses ts under target when exactly one of coords or
// projection differs. Any other mismatch, and any transform whose required
// scalars are absent from the model, wraps model.ErrNoDerivationPath.
func (d Deriver) DeriveSeries(m *model.BaseModel, ts model.TimeSeries, target model.FrameConfig) (model.TimeSeries, error) {
	have := ts.Frame()
	coordsDiffer := have.Coords != target.Coords
	projDiffer := have.Projection != target.Projection
	switch {
	case coordsDiffer && !projDiffer:
		return d.rotateSeries(m, ts, target)
	case projDiffer && !coordsDiffer:
		return d.projectSeries(m, ts, target)
	}
	return model.TimeSeries{}, fmt.Errorf("frames differ in more than coords or projection: %w", model.ErrNoDerivationPath)
}

func (d Deriver) rotateSeries(m *model.BaseModel, ts model.TimeSeries, target model.FrameConfig) (model.TimeSeries, error) {
	r, err := d.rotationFor(m, ts.Frame().Coords, target.Coords)
	if err != nil {
		return model.TimeSeries{}, err
	}
	out, err := RotateSeries(ts, r, target.Coords)
	if err != nil {
		return model.TimeSeries{}, err
	}
	return out.Retagged(target)
}

// rotationFor builds the rotation between two coordinate bases from model
// scalars. Bases with no defined rotation (e.g. galactic) have no path.
func (d Deriver) rotationFor(m *model.BaseModel, from, to string) (*mat.Dense, error) {
	alpha, hasAlpha := m.Scalar("alpha")
	sgn, _ := m.Scalar("u0_sign")
	mu, hasMu := m.MuRelVector()

	switch {
	case from == model.CoordsLensXY && to == model.CoordsTauBeta:
		if !hasAlpha {
			return nil, fmt.Errorf("scalar alpha required for %s->%s: %w", from, to, model.ErrNoDerivationPath)
		}
		return RotationXYToTU(alpha, sgn), nil

	case from == model.CoordsTauBeta && to == model.CoordsLensXY:
		if !hasAlpha {
			return nil, fmt.Errorf("scalar alpha required for %s->%s: %w", from, to, model.ErrNoDerivationPath)
		}
		return RotationTUToXY(alpha, sgn)

	case from == model.CoordsLensXY && to == model.CoordsICRS:
		if !hasAlpha || !hasMu {
			return nil, fmt.Errorf("scalars alpha and mu_rel required for %s->%s: %w", from, to, model.ErrNoDerivationPath)
		}
		r, _, err := RotationXYToNE(mu[0], mu[1], alpha, sgn)
		return r, err

	case from == model.CoordsICRS && to == model.CoordsLensXY:
		if !hasAlpha || !hasMu {
			return nil, fmt.Errorf("scalars alpha and mu_rel required for %s->%s: %w", from, to, model.ErrNoDerivationPath)
		}
		r, _, err := RotationNEToXY(mu[0], mu[1], alpha, sgn)
		return r, err

	case from == model.CoordsTauBeta && to == model.CoordsICRS:
		if !hasMu {
			return nil, fmt.Errorf("scalar mu_rel required for %s->%s: %w", from, to, model.ErrNoDerivationPath)
		}
		return RotationTUToNE(mu[0], mu[1], sgn)

	case from == model.CoordsICRS && to == model.CoordsTauBeta:
		if !hasMu {
			return nil, fmt.Errorf("scalar mu_rel required for %s->%s: %w", from, to, model.ErrNoDerivationPath)
		}
		r, err := RotationTUToNE(mu[0], mu[1], sgn)
		if err != nil {
			return nil, err
		}
		var inv mat.Dense
		if err := inv.Inverse(r); err != nil {
			return nil, fmt.Errorf("invert tu->ne rotation: %w", err)
		}
		return &inv, nil
	}
	return nil, fmt.Errorf("no rotation between coords %q and %q: %w", from, to, model.ErrNoDerivationPath)
}

func (d Deriver) projectSeries(m *model.BaseModel, ts model.TimeSeries, target model.FrameConfig) (model.TimeSeries, error) {
	if d.Provider == nil {
		return model.TimeSeries{}, fmt.Errorf("no ephemeris provider wired: %w", model.ErrNoDerivationPath)
	}
	piE, ok := m.PiEVector()
	if !ok {
		return model.TimeSeries{}, fmt.Errorf("model has no parallax vector: %w", model.ErrNoDerivationPath)
	}
	return ProjectSeries(d.Provider, ts, m.Meta.RA, m.Meta.Dec, piE[0], piE[1], target)
}

// ConvertPhot converts the canonical geocentric (Earth) photometric
// parameters to the requested projection. Geocentric and spacecraft
// targets route through the heliocentric frame.
func (d Deriver) ConvertPhot(m *model.BaseModel, projection, observer string) (model.PhotParams, error) {
	if d.Provider == nil {
		return model.PhotParams{}, fmt.Errorf("no ephemeris provider wired; cannot convert photometric parameters")
	}
	canonical := model.PhotParams{
		T0: m.T0(), U0: m.U0(), TE: m.TE(),
	}
	if piE, ok := m.PiEVector(); ok {
		canonical.PiEE, canonical.PiEN = piE[0], piE[1]
	}
	ra, dec, t0par := m.Meta.RA, m.Meta.Dec, m.Meta.T0Par

	helio, err := ConvertHelioGeoPhot(d.Provider, model.ObserverEarth, ra, dec,
		canonical.T0, canonical.U0, canonical.TE, canonical.PiEE, canonical.PiEN,
		t0par, InFrameGeo, PhotConvertOptions{})
	if err != nil {
		return model.PhotParams{}, err
	}

	switch projection {
	case model.ProjectionHeliocentric:
		return helio, nil
	case model.ProjectionGeocentric, model.ProjectionSpacecraft:
		shiftObserver := projectionObserver(projection, observer)
		if shiftObserver == "" {
			return model.PhotParams{}, &model.UnsupportedFrameError{
				Package: "frames", Field: "projection", Value: projection,
				Supported: []string{model.ProjectionHeliocentric, model.ProjectionGeocentric, model.ProjectionSpacecraft},
			}
		}
		return ConvertHelioGeoPhot(d.Provider, shiftObserver, ra, dec,
			helio.T0, helio.U0, helio.TE, helio.PiEE, helio.PiEN,
			t0par, InFrameHelio, PhotConvertOptions{})
	}
	return model.PhotParams{}, &model.UnsupportedFrameError{
		Package: "frames", Field: "projection", Value: projection,
		Supported: []string{model.ProjectionHeliocentric, model.ProjectionGeocentric, model.ProjectionSpacecraft},
	}
}
