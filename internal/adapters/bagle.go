package adapters

import (
	"github.com/banshee-data/microlens/internal/model"
)

// BagleAdapter maps BAGLE parameter payloads. BAGLE's parameterization is
// closest to the canonical model: amplitude/sign impact parameter,
// geocentric-projected parallax referenced to t0par.
type BagleAdapter struct{}

func init() { Register(BagleAdapter{}) }

func (BagleAdapter) Package() string { return "bagle" }

func (BagleAdapter) Observers() []string {
	return []string{model.ObserverEarth, model.ObserverRomanL2}
}

func (BagleAdapter) Origins() []string {
	return []string{model.OriginLens1AtT0, model.OriginBarycenter}
}

func (BagleAdapter) NativeProjection(observer string) string {
	return model.ProjectionGeocentric
}

// bagleRequired is the minimal PSPL scalar set; binary, parallax and
// proper-motion pairs are optional but must arrive complete.
var bagleRequired = []string{"t0", "tE", "u0_amp", "u0_sign"}

var bagleOptional = []string{
	"piEE", "piEN", "mu_rel_e", "mu_rel_n", "sep", "q", "alpha", "thetaE",
}

func (a BagleAdapter) Load(params map[string]any, observer string, epochs []float64) (*model.BaseModel, error) {
	if err := ensureObserver(a.Package(), observer, a.Observers()); err != nil {
		return nil, err
	}
	scalars, err := requireFloats(a.Package(), params, bagleRequired...)
	if err != nil {
		return nil, err
	}
	copyOptionalFloats(scalars, params, bagleOptional...)

	meta := model.Meta{
		Package:  a.Package(),
		Observer: observer,
		Origin:   model.OriginLens1AtT0,
		Epochs:   epochs,
	}
	if id, ok := params["event_id"].(string); ok {
		meta.EventID = id
	}
	if origin, ok := params["origin"].(string); ok {
		if err := ensureOrigin(a.Package(), origin, a.Origins()); err != nil {
			return nil, err
		}
		meta.Origin = origin
	}
	if ra, ok := floatFrom(params, "raL"); ok {
		meta.RA = ra
	}
	if dec, ok := floatFrom(params, "decL"); ok {
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

func (a BagleAdapter) Dump(m *model.BaseModel, observer, origin string) (map[string]any, error) {
	if err := ensureObserver(a.Package(), observer, a.Observers()); err != nil {
		return nil, err
	}
	if err := ensureOrigin(a.Package(), origin, a.Origins()); err != nil {
		return nil, err
	}
	if err := ensureModelFrame(a.Package(), m, observer, origin); err != nil {
		return nil, err
	}

	payload := make(map[string]any)
	for name, v := range m.Scalars() {
		payload[name] = v
	}
	payload["observer"] = observer
	payload["origin"] = origin
	if m.Meta.EventID != "" {
		payload["event_id"] = m.Meta.EventID
	}
	if m.Meta.T0Par != 0 {
		payload["raL"] = m.Meta.RA
		payload["decL"] = m.Meta.Dec
		payload["t0par"] = m.Meta.T0Par
	}
	return payload, nil
}
