package adapters

import (
	"math"

	"github.com/banshee-data/microlens/internal/model"
)

// PyLIMAAdapter maps pyLIMA parameter payloads: to/uo/tE naming and
// log10-scaled binary geometry (logs, logq).
type PyLIMAAdapter struct{}

func init() { Register(PyLIMAAdapter{}) }

func (PyLIMAAdapter) Package() string { return "pylima" }

func (PyLIMAAdapter) Observers() []string {
	return []string{model.ObserverEarth}
}

func (PyLIMAAdapter) Origins() []string {
	return []string{model.OriginLens1AtT0}
}

func (PyLIMAAdapter) NativeProjection(observer string) string {
	return model.ProjectionGeocentric
}

var pylimaRequired = []string{"to", "tE", "uo"}

func (a PyLIMAAdapter) Load(params map[string]any, observer string, epochs []float64) (*model.BaseModel, error) {
	if err := ensureObserver(a.Package(), observer, a.Observers()); err != nil {
		return nil, err
	}
	native, err := requireFloats(a.Package(), params, pylimaRequired...)
	if err != nil {
		return nil, err
	}
	scalars := map[string]float64{
		"t0": native["to"],
		"tE": native["tE"],
	}
	scalars["u0_amp"], scalars["u0_sign"] = signedAmp(native["uo"])
	copyOptionalFloats(scalars, params, "piEE", "piEN", "alpha", "thetaE")
	if logs, ok := floatFrom(params, "logs"); ok {
		scalars["sep"] = math.Pow(10, logs)
	}
	if logq, ok := floatFrom(params, "logq"); ok {
		scalars["q"] = math.Pow(10, logq)
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

func (a PyLIMAAdapter) Dump(m *model.BaseModel, observer, origin string) (map[string]any, error) {
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
		"to":       m.T0(),
		"tE":       m.TE(),
		"uo":       m.U0(),
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
		payload["logs"] = math.Log10(sep)
		payload["logq"] = math.Log10(q)
	}
	return payload, nil
}
