// Package frames implements the stateless coordinate rotation and
// projection primitives adapters and accessors convert through. All
// functions are pure: they allocate new outputs, touch no shared state and
// are safe to call concurrently.
package frames

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/microlens/internal/model"
	"github.com/banshee-data/microlens/internal/units"
)

// RotationDiag carries the position angles behind a derived rotation, for
// debugging sign-convention disputes.
type RotationDiag struct {
	PhiMuDeg  float64 // position angle of the proper motion vector
	AlphaDeg  float64 // lens-axis position angle used
	PhiEstDeg float64 // angle recovered from the derived matrix
}

// RotationXYToTU returns the rotation mapping lens-frame (x, y) offsets to
// trajectory (tau, beta) offsets for lens-axis angle alpha and impact sign
// sgn (±1).
func RotationXYToTU(alphaDeg, sgn float64) *mat.Dense {
	ca := math.Cos(units.DegToRad(alphaDeg))
	sa := math.Sin(units.DegToRad(alphaDeg))
	return mat.NewDense(2, 2, []float64{
		ca, sa,
		-sgn * sa, sgn * ca,
	})
}

// RotationTUToXY returns the inverse of RotationXYToTU.
func RotationTUToXY(alphaDeg, sgn float64) (*mat.Dense, error) {
	var inv mat.Dense
	if err := inv.Inverse(RotationXYToTU(alphaDeg, sgn)); err != nil {
		return nil, fmt.Errorf("invert xy->tu rotation: %w", err)
	}
	return &inv, nil
}

// RotationTUToNE returns the rotation mapping trajectory (tau, beta)
// offsets to sky (East, North) offsets. The along-track axis follows the
// relative proper motion direction. Sky vectors are (E, N) ordered
// throughout this package, matching the parallax-vector convention.
func RotationTUToNE(muRelE, muRelN, sgn float64) (*mat.Dense, error) {
	hatT, hatU, err := trackAxes(muRelE, muRelN, sgn)
	if err != nil {
		return nil, err
	}
	return mat.NewDense(2, 2, []float64{
		hatT[0], hatU[0],
		hatT[1], hatU[1],
	}), nil
}

// trackAxes returns the along-track and cross-track unit vectors as (E, N)
// components.
func trackAxes(muRelE, muRelN, sgn float64) (hatT, hatU [2]float64, err error) {
	if !isFinite(muRelE) || !isFinite(muRelN) {
		return hatT, hatU, fmt.Errorf("relative proper motion components must be finite")
	}
	norm := math.Hypot(muRelE, muRelN)
	if norm == 0 {
		return hatT, hatU, fmt.Errorf("relative proper motion vector is zero; cannot define along-track axis")
	}
	hatT = [2]float64{muRelE / norm, muRelN / norm}
	hatU = [2]float64{sgn * hatT[1], -sgn * hatT[0]}
	return hatT, hatU, nil
}

// RotationXYToNE maps lens-frame (x, y) offsets to sky (East, North)
// offsets, composing the lens-axis rotation with the proper-motion track
// direction. The result is checked for orthonormality to 1e-10.
func RotationXYToNE(muRelE, muRelN, alphaDeg, sgn float64) (*mat.Dense, RotationDiag, error) {
	var diag RotationDiag
	if !isFinite(alphaDeg) {
		return nil, diag, fmt.Errorf("alpha must be finite to construct the lens-frame rotation")
	}
	rTUToNE, err := RotationTUToNE(muRelE, muRelN, sgn)
	if err != nil {
		return nil, diag, err
	}

	var r mat.Dense
	r.Mul(rTUToNE, RotationXYToTU(alphaDeg, sgn))

	var check mat.Dense
	check.Mul(&r, r.T())
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(check.At(i, j)-want) > 1e-10 {
				return nil, diag, fmt.Errorf("derived lens->NE rotation is not orthonormal within tolerance")
			}
		}
	}

	diag = RotationDiag{
		PhiMuDeg:  units.RadToDeg(math.Atan2(muRelE, muRelN)),
		AlphaDeg:  alphaDeg,
		PhiEstDeg: units.RadToDeg(math.Atan2(r.At(0, 0), r.At(1, 0))),
	}
	return &r, diag, nil
}

// RotationNEToXY returns the inverse of RotationXYToNE.
func RotationNEToXY(muRelE, muRelN, alphaDeg, sgn float64) (*mat.Dense, RotationDiag, error) {
	r, diag, err := RotationXYToNE(muRelE, muRelN, alphaDeg, sgn)
	if err != nil {
		return nil, diag, err
	}
	var inv mat.Dense
	if err := inv.Inverse(r); err != nil {
		return nil, diag, fmt.Errorf("invert xy->ne rotation: %w", err)
	}
	return &inv, diag, nil
}

// Rotate applies a 2x2 rotation to one vector.
func Rotate(v [2]float64, r *mat.Dense) [2]float64 {
	return [2]float64{
		r.At(0, 0)*v[0] + r.At(0, 1)*v[1],
		r.At(1, 0)*v[0] + r.At(1, 1)*v[1],
	}
}

// RotateSeries applies a rotation per epoch and retags the coords field.
// The input series is unchanged.
func RotateSeries(ts model.TimeSeries, r *mat.Dense, toCoords string) (model.TimeSeries, error) {
	if ts.Dim() != 2 {
		return model.TimeSeries{}, fmt.Errorf("rotate: series must carry 2-vector values, got dim %d", ts.Dim())
	}
	values := ts.Values()
	for i, v := range values {
		values[i] = Rotate(v, r)
	}
	frame := ts.Frame()
	frame.Coords = toCoords
	return model.NewTimeSeries(ts.Epochs(), values, frame)
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
