package adapters

import (
	"github.com/banshee-data/microlens/internal/model"
)

// VBMAdapter maps VBMicrolensing parameter payloads: signed impact
// parameter, s/q binary geometry, geocentric parallax convention.
type VBMAdapter struct{}

func init() { Register(VBMAdapter{}) }

func (VBMAdapter) Package() string { return "vbm" }

func (VBMAdapter) Observers() []string {
	return []string{model.ObserverEarth, model.ObserverRomanL2}
}

func (VBMAdapter) Origins() []string {
	return []string{model.OriginLens1AtT0}
}

func (VBMAdapter) NativeProjection(observer string) string {
	return model.ProjectionGeocentric
}

var vbmRequired = []string{"t0", "tE", "u0"}

func (a VBMAdapter) Load(params map[string]any, observer string, epochs []float64) (*model.BaseModel, error) {
	if err := ensureObserver(a.Package(), observer, a.Observers()); err != nil {
		return nil, err
	}
	native, err := requireFloats(a.Package(), params, vbmRequired...)
	if err != nil {
		return nil, err
	}
	scalars := map[string]float64{
		"t0": native["t0"],
		"tE": native["tE"],
	}
	scalars["u0_amp"], scalars["u0_sign"] = signedAmp(native["u0"])
	copyOptionalFloats(scalars, params, "piEE", "piEN", "alpha", "thetaE")
	if s, ok := floatFrom(params, "s"); ok {
		scalars["sep"] = s
	}
	if q, ok := floatFrom(params, "q"); ok {
		scalars["q"] = q
	}

	meta := model.Meta{
		Package:  a.Package(),
		Observer: observer,
		Origin:   model.OriginLens1AtT0,
		Epochs:   epochs,
	}
	if ra, ok := floatFrom(params, "ra"); ok {
		meta.RA = ra
	}
	if dec, ok := floatFrom(params, "dec"); ok {
		meta.Dec = dec
	}
	if t0par, ok := floatFrom(params, "t0par"); ok {
		meta.T0Par = t0par
	}

	series := make(map[string][]model.TimeSeries)
	if len(epochs) > 0 {
		traj, err := buildTrajectory(scalars, observer, meta.Origin, epochs)
		if err != nil {
			return nil, err
		}
		series[model.SeriesSourceTraj] = []model.TimeSeries{traj}
	}
	return model.New(meta, scalars, series)
}

func (a VBMAdapter) Dump(m *model.BaseModel, observer, origin string) (map[string]any, error) {
	if err := ensureObserver(a.Package(), observer, a.Observers()); err != nil {
		return nil, err
	}
	if err := ensureOrigin(a.Package(), origin, a.Origins()); err != nil {
		return nil, err
	}
	if err := ensureModelFrame(a.Package(), m, observer, origin); err != nil {
		return nil, err
	}

	payload := map[string]any{
		"t0":       m.T0(),
		"tE":       m.TE(),
		"u0":       m.U0(),
		"observer": observer,
		"origin":   origin,
	}
	if piE, ok := m.PiEVector(); ok {
		payload["piEE"] = piE[0]
		payload["piEN"] = piE[1]
	}
	if alpha, ok := m.Scalar("alpha"); ok {
		payload["alpha"] = alpha
	}
	if m.Kind() == model.KindPSBL {
		sep, _ := m.Scalar("sep")
		q, _ := m.Scalar("q")
		payload["s"] = sep
		payload["q"] = q
	}
	return payload, nil
}
