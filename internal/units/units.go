// Package units provides shared unit constants and conversions for
// microlensing parameters. Canonical scalars are stored in the units
// returned by ScalarUnit; angles are degrees unless noted.
package units

import "math"

// Unit constants
const (
	Day      = "day"
	MJD      = "mjd"
	Mas      = "mas"
	MasPerYr = "mas/yr"
	Deg      = "deg"
	ThetaE   = "thetaE"
	Unitless = "unitless"
	KmPerSec = "km/s"
)

// scalarUnits maps canonical scalar names to their storage units.
var scalarUnits = map[string]string{
	"t0":       MJD,
	"t0par":    MJD,
	"tE":       Day,
	"u0_amp":   ThetaE,
	"u0_sign":  Unitless,
	"thetaE":   Mas,
	"piEE":     ThetaE,
	"piEN":     ThetaE,
	"mu_rel_e": MasPerYr,
	"mu_rel_n": MasPerYr,
	"alpha":    Deg,
	"sep":      ThetaE,
	"q":        Unitless,
}

// ScalarUnit returns the storage unit for a canonical scalar name.
// Unknown names are unitless.
func ScalarUnit(name string) string {
	if u, ok := scalarUnits[name]; ok {
		return u
	}
	return Unitless
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 { return deg * math.Pi / 180.0 }

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 { return rad * 180.0 / math.Pi }

// MasToDeg converts milliarcseconds to degrees.
func MasToDeg(mas float64) float64 { return mas / 3.6e6 }

// DegToMas converts degrees to milliarcseconds.
func DegToMas(deg float64) float64 { return deg * 3.6e6 }

// ThetaEToMas converts a value in Einstein radii to milliarcseconds given
// the angular Einstein radius in mas.
func ThetaEToMas(value, thetaEMas float64) float64 { return value * thetaEMas }

// MasToThetaE converts a value in milliarcseconds to Einstein radii given
// the angular Einstein radius in mas. Returns NaN when thetaE is zero.
func MasToThetaE(valueMas, thetaEMas float64) float64 {
	if thetaEMas == 0 {
		return math.NaN()
	}
	return valueMas / thetaEMas
}
