// Package model defines the canonical representation of one microlensing
// event: frame-tagged time series, scalar parameters and the frame-aware
// accessors adapters convert through. Every frame-dependent quantity
// carries an explicit FrameConfig; nothing is ever defaulted.
package model

import (
	"fmt"
	"strings"
)

// Observer identifiers shared across adapters.
const (
	ObserverEarth   = "earth"
	ObserverRomanL2 = "roman_l2"
)

// Origin identifiers.
const (
	OriginLens1AtT0      = "lens1@t0"
	OriginBarycenter     = "barycenter"
	OriginSolarBarycenter = "solar_barycenter"
)

// Rest-frame identifiers.
const (
	RestSource = "source"
	RestLens   = "lens"
)

// Coordinate-basis identifiers. ICRS is the fixed East/North sky basis,
// LensXY the lens-axis frame, TauBeta the trajectory along/cross basis.
const (
	CoordsICRS    = "icrs"
	CoordsLensXY  = "lens_xy"
	CoordsTauBeta = "tau_beta"
)

// Observable names shared across adapters.
const (
	SeriesSourceTraj    = "source_traj"
	SeriesCentroid      = "centroid"
	SeriesMagnification = "magnification"
)

// Projection identifiers. An empty projection means none applies.
const (
	ProjectionHeliocentric = "heliocentric"
	ProjectionGeocentric   = "geocentric"
	ProjectionSpacecraft   = "spacecraft"
)

// FrameConfig pins down the meaning of a frame-dependent quantity. Two
// configs are equal iff all fields match exactly; the zero Projection
// means the quantity has no projection convention.
type FrameConfig struct {
	Observer   string
	Origin     string
	Rest       string
	Coords     string
	Projection string
}

// Validate rejects configs with empty mandatory fields. Projection is the
// only optional field.
func (f FrameConfig) Validate() error {
	var missing []string
	if f.Observer == "" {
		missing = append(missing, "observer")
	}
	if f.Origin == "" {
		missing = append(missing, "origin")
	}
	if f.Rest == "" {
		missing = append(missing, "rest")
	}
	if f.Coords == "" {
		missing = append(missing, "coords")
	}
	if len(missing) > 0 {
		return fmt.Errorf("frame config missing field(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

func (f FrameConfig) String() string {
	proj := f.Projection
	if proj == "" {
		proj = "none"
	}
	return fmt.Sprintf("(observer=%s origin=%s rest=%s coords=%s projection=%s)",
		f.Observer, f.Origin, f.Rest, f.Coords, proj)
}
