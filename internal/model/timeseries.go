package model

import (
	"fmt"
	"math"
)

// TimeSeries holds one frame-tagged observable sampled at epochs. Values
// are scalars (Dim 1) or 2-vectors (Dim 2). A TimeSeries is immutable
// after construction: transforms produce new instances.
type TimeSeries struct {
	epochs []float64
	values [][2]float64
	dim    int
	frame  FrameConfig
}

// NewTimeSeries builds a 2-vector series. Inputs are copied. Epochs must
// be strictly increasing with one value per epoch; all numbers must be
// finite; the frame must validate.
func NewTimeSeries(epochs []float64, values [][2]float64, frame FrameConfig) (TimeSeries, error) {
	return newSeries(epochs, values, 2, frame)
}

// NewScalarSeries builds a scalar series (Dim 1).
func NewScalarSeries(epochs, values []float64, frame FrameConfig) (TimeSeries, error) {
	vecs := make([][2]float64, len(values))
	for i, v := range values {
		vecs[i] = [2]float64{v, 0}
	}
	return newSeries(epochs, vecs, 1, frame)
}

func newSeries(epochs []float64, values [][2]float64, dim int, frame FrameConfig) (TimeSeries, error) {
	if err := frame.Validate(); err != nil {
		return TimeSeries{}, fmt.Errorf("timeseries: %w", err)
	}
	if len(epochs) == 0 {
		return TimeSeries{}, fmt.Errorf("timeseries: epochs must be non-empty")
	}
	if len(values) != len(epochs) {
		return TimeSeries{}, fmt.Errorf("timeseries: %d values for %d epochs", len(values), len(epochs))
	}
	for i, e := range epochs {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return TimeSeries{}, fmt.Errorf("timeseries: epoch %d is not finite", i)
		}
		if i > 0 && e <= epochs[i-1] {
			return TimeSeries{}, fmt.Errorf("timeseries: epochs not strictly increasing at index %d (%v <= %v)", i, e, epochs[i-1])
		}
	}
	for i, v := range values {
		for c := 0; c < dim; c++ {
			if math.IsNaN(v[c]) || math.IsInf(v[c], 0) {
				return TimeSeries{}, fmt.Errorf("timeseries: value %d component %d is not finite", i, c)
			}
		}
	}
	ts := TimeSeries{
		epochs: make([]float64, len(epochs)),
		values: make([][2]float64, len(values)),
		dim:    dim,
		frame:  frame,
	}
	copy(ts.epochs, epochs)
	copy(ts.values, values)
	return ts, nil
}

// Len returns the number of epochs.
func (ts TimeSeries) Len() int { return len(ts.epochs) }

// Dim is 1 for scalar observables, 2 for vector observables.
func (ts TimeSeries) Dim() int { return ts.dim }

// Frame returns the FrameConfig the series is tagged with.
func (ts TimeSeries) Frame() FrameConfig { return ts.frame }

// Epochs returns a copy of the epoch array.
func (ts TimeSeries) Epochs() []float64 {
	out := make([]float64, len(ts.epochs))
	copy(out, ts.epochs)
	return out
}

// Values returns a copy of the value array.
func (ts TimeSeries) Values() [][2]float64 {
	out := make([][2]float64, len(ts.values))
	copy(out, ts.values)
	return out
}

// At returns the epoch and value at index i.
func (ts TimeSeries) At(i int) (float64, [2]float64) {
	return ts.epochs[i], ts.values[i]
}

// Retagged returns a copy of the series carrying a different frame. Used
// by frame transforms, which never change a series in place.
func (ts TimeSeries) Retagged(frame FrameConfig) (TimeSeries, error) {
	return newSeries(ts.epochs, ts.values, ts.dim, frame)
}
