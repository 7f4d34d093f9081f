// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"errors"
	"math"
	"testing"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertErrorAs fails the test unless err matches the target error type,
// and returns the matched value.
func AssertErrorAs[T error](t *testing.T, err error) T {
	t.Helper()
	var target T
	if !errors.As(err, &target) {
		t.Fatalf("error %v (%T) does not match %T", err, err, target)
	}
	return target
}

// AssertInDelta checks that got is within tol of want.
func AssertInDelta(t *testing.T, got, want, tol float64) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > tol {
		t.Errorf("got %v, want %v (tolerance %v)", got, want, tol)
	}
}

// AssertVec2InDelta checks both components of a 2-vector.
func AssertVec2InDelta(t *testing.T, got, want [2]float64, tol float64) {
	t.Helper()
	for c := 0; c < 2; c++ {
		if math.IsNaN(got[c]) || math.Abs(got[c]-want[c]) > tol {
			t.Errorf("component %d: got %v, want %v (tolerance %v)", c, got[c], want[c], tol)
		}
	}
}
