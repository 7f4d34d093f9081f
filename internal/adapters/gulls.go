package adapters

import (
	"github.com/banshee-data/microlens/internal/model"
)

// GullsAdapter maps GULLS simulation payloads. GULLS parameters follow the
// projection of whichever observer the simulation ran for: geocentric for
// ground, spacecraft for Roman at L2. Dump therefore re-projects the
// photometric set when the model carries parallax.
type GullsAdapter struct{}

func init() { Register(GullsAdapter{}) }

func (GullsAdapter) Package() string { return "gulls" }

func (GullsAdapter) Observers() []string {
	return []string{model.ObserverEarth, model.ObserverRomanL2}
}

func (GullsAdapter) Origins() []string {
	return []string{model.OriginLens1AtT0, model.OriginSolarBarycenter}
}

func (GullsAdapter) NativeProjection(observer string) string {
	if observer == model.ObserverEarth {
		return model.ProjectionGeocentric
	}
	return model.ProjectionSpacecraft
}

var gullsRequired = []string{"t0", "tE", "u0"}

var gullsOptional = []string{"piEE", "piEN", "alpha", "thetaE", "mu_rel_e", "mu_rel_n"}

func (a GullsAdapter) Load(params map[string]any, observer string, epochs []float64) (*model.BaseModel, error) {
	if err := ensureObserver(a.Package(), observer, a.Observers()); err != nil {
		return nil, err
	}
	native, err := requireFloats(a.Package(), params, gullsRequired...)
	if err != nil {
		return nil, err
	}
	scalars := map[string]float64{
		"t0": native["t0"],
		"tE": native["tE"],
	}
	scalars["u0_amp"], scalars["u0_sign"] = signedAmp(native["u0"])
	copyOptionalFloats(scalars, params, gullsOptional...)
	// Spacecraft-projected parallax cannot be normalized to the canonical
	// geocentric storage without ephemeris data, which load never receives.
	if _, hasPiE := scalars["piEE"]; hasPiE && observer != model.ObserverEarth {
		return nil, &model.UnsupportedFrameError{
			Package: a.Package(), Field: "observer", Value: observer,
			Supported: []string{model.ObserverEarth},
		}
	}
	// GULLS names the binary geometry s/q.
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

func (a GullsAdapter) Dump(m *model.BaseModel, observer, origin string) (map[string]any, error) {
	if err := ensureObserver(a.Package(), observer, a.Observers()); err != nil {
		return nil, err
	}
	if err := ensureOrigin(a.Package(), origin, a.Origins()); err != nil {
		return nil, err
	}
	if err := ensureModelFrame(a.Package(), m, observer, origin); err != nil {
		return nil, err
	}

	ph, err := m.Phot(a.NativeProjection(observer), observer)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"t0":       ph.T0,
		"tE":       ph.TE,
		"u0":       ph.U0,
		"observer": observer,
		"origin":   origin,
	}
	if m.HasParallax() {
		payload["piEE"] = ph.PiEE
		payload["piEN"] = ph.PiEN
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
