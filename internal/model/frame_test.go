package model

import (
	"strings"
	"testing"
)

func validFrame() FrameConfig {
	return FrameConfig{
		Observer:   ObserverEarth,
		Origin:     OriginLens1AtT0,
		Rest:       RestSource,
		Coords:     CoordsTauBeta,
		Projection: ProjectionGeocentric,
	}
}

func TestFrameConfigValidate(t *testing.T) {
	if err := validFrame().Validate(); err != nil {
		t.Fatalf("valid frame rejected: %v", err)
	}

	// Projection is the only optional field.
	fc := validFrame()
	fc.Projection = ""
	if err := fc.Validate(); err != nil {
		t.Fatalf("frame without projection rejected: %v", err)
	}

	fc = FrameConfig{Rest: RestSource}
	err := fc.Validate()
	if err == nil {
		t.Fatal("expected error for frame with empty mandatory fields")
	}
	for _, field := range []string{"observer", "origin", "coords"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q does not name missing field %q", err, field)
		}
	}
}

func TestFrameConfigEquality(t *testing.T) {
	a := validFrame()
	b := validFrame()
	if a != b {
		t.Fatal("identical frame configs compare unequal")
	}
	b.Coords = CoordsICRS
	if a == b {
		t.Fatal("frame configs differing in coords compare equal")
	}

	// Comparable structs must work as map keys.
	seen := map[FrameConfig]int{a: 1, b: 2}
	if seen[a] != 1 || seen[b] != 2 {
		t.Fatal("frame configs do not behave as distinct map keys")
	}
}

func TestFrameConfigString(t *testing.T) {
	fc := validFrame()
	fc.Projection = ""
	s := fc.String()
	if !strings.Contains(s, "projection=none") {
		t.Errorf("String() = %q, want empty projection rendered as none", s)
	}
	if !strings.Contains(s, "observer=earth") {
		t.Errorf("String() = %q, want observer named", s)
	}
}
