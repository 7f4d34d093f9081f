package adapters

import (
	"fmt"
	"math"
	"slices"

	"github.com/banshee-data/microlens/internal/model"
)

// floatFrom reads a numeric parameter, accepting the types JSON decoding
// and literal Go maps produce.
func floatFrom(params map[string]any, key string) (float64, bool) {
	v, ok := params[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// requireFloats extracts mandatory keys, collecting every absent key into
// one MissingParameterError so the caller can fix the payload in one pass.
func requireFloats(pkg string, params map[string]any, keys ...string) (map[string]float64, error) {
	out := make(map[string]float64, len(keys))
	var missing []string
	for _, key := range keys {
		v, ok := floatFrom(params, key)
		if !ok {
			missing = append(missing, key)
			continue
		}
		out[key] = v
	}
	if len(missing) > 0 {
		return nil, &model.MissingParameterError{Package: pkg, Keys: missing}
	}
	return out, nil
}

// copyOptionalFloats copies any of the listed keys that are present.
func copyOptionalFloats(dst map[string]float64, params map[string]any, keys ...string) {
	for _, key := range keys {
		if v, ok := floatFrom(params, key); ok {
			dst[key] = v
		}
	}
}

// ensureObserver rejects observers the adapter does not declare.
func ensureObserver(pkg, observer string, supported []string) error {
	if !slices.Contains(supported, observer) {
		return &model.UnsupportedFrameError{
			Package: pkg, Field: "observer", Value: observer, Supported: supported,
		}
	}
	return nil
}

// ensureOrigin rejects origins the adapter does not declare.
func ensureOrigin(pkg, origin string, supported []string) error {
	if !slices.Contains(supported, origin) {
		return &model.UnsupportedFrameError{
			Package: pkg, Field: "origin", Value: origin, Supported: supported,
		}
	}
	return nil
}

// ensureModelFrame verifies the requested observer/origin pair is actually
// populated (natively or derivably) on the model before dumping into it.
// The error lists the frames the model does have, to aid debugging.
func ensureModelFrame(pkg string, m *model.BaseModel, observer, origin string) error {
	if m.Meta.Observer == observer && m.Meta.Origin == origin {
		return nil
	}
	frames := m.Frames()
	supported := make([]string, 0, len(frames)+1)
	supported = append(supported, fmt.Sprintf("%s/%s (native)", m.Meta.Observer, m.Meta.Origin))
	for _, fc := range frames {
		if fc.Observer == observer && fc.Origin == origin {
			return nil
		}
		supported = append(supported, fc.String())
	}
	// A parallax model can re-project its parameters for a declared
	// observer even when no series carries that observer yet.
	if m.HasParallax() && origin == m.Meta.Origin {
		return nil
	}
	return &model.UnsupportedFrameError{
		Package: pkg, Field: "frame", Value: observer + "/" + origin, Supported: supported,
	}
}

// signedAmp splits a signed impact parameter into the canonical
// amplitude/sign pair. A zero value keeps the positive branch.
func signedAmp(u0 float64) (amp, sign float64) {
	if u0 < 0 {
		return -u0, -1
	}
	return u0, 1
}

// buildTrajectory materializes the rectilinear source trajectory series
// from the canonical scalars over the supplied epochs: tau runs along the
// relative motion direction, the signed impact parameter offsets cross
// track. Without a motion direction (no mu_rel and no parallax vector)
// the series is expressed in the tau/beta basis.
func buildTrajectory(scalars map[string]float64, observer, origin string, epochs []float64) (model.TimeSeries, error) {
	t0 := scalars["t0"]
	tE := scalars["tE"]
	u0 := scalars["u0_amp"] * scalars["u0_sign"]

	frame := model.FrameConfig{
		Observer:   observer,
		Origin:     origin,
		Rest:       model.RestSource,
		Coords:     model.CoordsTauBeta,
		Projection: model.ProjectionHeliocentric,
	}

	var tauhat, betahat [2]float64
	if muE, ok := scalars["mu_rel_e"]; ok {
		muN := scalars["mu_rel_n"]
		norm := math.Hypot(muE, muN)
		if norm == 0 {
			return model.TimeSeries{}, fmt.Errorf("relative proper motion vector is zero; cannot orient trajectory")
		}
		tauhat = [2]float64{muE / norm, muN / norm}
		frame.Coords = model.CoordsICRS
	} else if piEE, ok := scalars["piEE"]; ok {
		piEN := scalars["piEN"]
		norm := math.Hypot(piEE, piEN)
		if norm == 0 {
			return model.TimeSeries{}, fmt.Errorf("parallax vector is zero; cannot orient trajectory")
		}
		tauhat = [2]float64{piEE / norm, piEN / norm}
		frame.Coords = model.CoordsICRS
	}

	values := make([][2]float64, len(epochs))
	if frame.Coords == model.CoordsICRS {
		betahat = [2]float64{-tauhat[1], tauhat[0]}
		for i, e := range epochs {
			tau := (e - t0) / tE
			values[i] = [2]float64{
				tau*tauhat[0] + u0*betahat[0],
				tau*tauhat[1] + u0*betahat[1],
			}
		}
	} else {
		for i, e := range epochs {
			values[i] = [2]float64{(e - t0) / tE, u0}
		}
	}
	return model.NewTimeSeries(epochs, values, frame)
}
