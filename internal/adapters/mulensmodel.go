package adapters

import (
	"github.com/banshee-data/microlens/internal/model"
)

// MulensModelAdapter maps MulensModel parameter payloads. MulensModel
// names parameters with underscored subscripts (t_0, u_0, t_E) and uses
// the geocentric parallax convention referenced to t_0_par.
type MulensModelAdapter struct{}

func init() { Register(MulensModelAdapter{}) }

func (MulensModelAdapter) Package() string { return "mulensmodel" }

func (MulensModelAdapter) Observers() []string {
	return []string{model.ObserverEarth}
}

func (MulensModelAdapter) Origins() []string {
	return []string{model.OriginLens1AtT0}
}

func (MulensModelAdapter) NativeProjection(observer string) string {
	return model.ProjectionGeocentric
}

var mulensRequired = []string{"t_0", "t_E", "u_0"}

func (a MulensModelAdapter) Load(params map[string]any, observer string, epochs []float64) (*model.BaseModel, error) {
	if err := ensureObserver(a.Package(), observer, a.Observers()); err != nil {
		return nil, err
	}
	native, err := requireFloats(a.Package(), params, mulensRequired...)
	if err != nil {
		return nil, err
	}
	scalars := map[string]float64{
		"t0": native["t_0"],
		"tE": native["t_E"],
	}
	scalars["u0_amp"], scalars["u0_sign"] = signedAmp(native["u_0"])
	if piEE, ok := floatFrom(params, "pi_E_E"); ok {
		scalars["piEE"] = piEE
	}
	if piEN, ok := floatFrom(params, "pi_E_N"); ok {
		scalars["piEN"] = piEN
	}
	if alpha, ok := floatFrom(params, "alpha"); ok {
		scalars["alpha"] = alpha
	}
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
	if t0par, ok := floatFrom(params, "t_0_par"); ok {
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

func (a MulensModelAdapter) Dump(m *model.BaseModel, observer, origin string) (map[string]any, error) {
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
		"t_0":      m.T0(),
		"t_E":      m.TE(),
		"u_0":      m.U0(),
		"observer": observer,
		"origin":   origin,
	}
	if piE, ok := m.PiEVector(); ok {
		payload["pi_E_E"] = piE[0]
		payload["pi_E_N"] = piE[1]
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
	if m.Meta.T0Par != 0 {
		payload["t_0_par"] = m.Meta.T0Par
	}
	return payload, nil
}
