package ephem

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "ephem.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreImportAndState(t *testing.T) {
	store := openTestStore(t)

	states := []State{sample(55000, 1), sample(55010, 2), sample(55020, 3)}
	importID, err := store.Import("earth", states)
	if err != nil {
		t.Fatal(err)
	}
	if importID == "" {
		t.Fatal("import returned empty batch id")
	}

	// The store must agree with the in-memory table on every lookup.
	tbl := NewTable()
	if err := tbl.Add("earth", states...); err != nil {
		t.Fatal(err)
	}
	for _, mjd := range []float64{55000, 55003.5, 55010, 55017, 55020} {
		want, err := tbl.State("earth", mjd)
		if err != nil {
			t.Fatal(err)
		}
		got, err := store.State("earth", mjd)
		if err != nil {
			t.Fatalf("store State(%v): %v", mjd, err)
		}
		for c := 0; c < 3; c++ {
			if math.Abs(got.Pos[c]-want.Pos[c]) > 1e-12 || math.Abs(got.Vel[c]-want.Vel[c]) > 1e-12 {
				t.Errorf("State(%v) = %+v, want %+v", mjd, got, want)
			}
		}
	}
}

func TestStoreImportBatchIDs(t *testing.T) {
	store := openTestStore(t)

	first, err := store.Import("earth", []State{sample(55000, 1)})
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.Import("roman_l2", []State{sample(55000, 1)})
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Error("two imports share one batch id")
	}

	if _, err := store.Import("earth", nil); err == nil {
		t.Error("expected error importing an empty batch")
	}
}

func TestStoreCoverage(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.Import("earth", []State{sample(55000, 1), sample(55010, 2)}); err != nil {
		t.Fatal(err)
	}

	if !store.Covers("earth", 55005) {
		t.Error("in-range epoch reported uncovered")
	}
	if store.Covers("earth", 55011) {
		t.Error("out-of-range epoch reported covered")
	}
	if store.Covers("roman_l2", 55005) {
		t.Error("unknown observer reported covered")
	}

	_, err := store.State("earth", 54000)
	var eu *EphemerisUnavailableError
	if !errors.As(err, &eu) {
		t.Fatalf("err = %v, want EphemerisUnavailableError", err)
	}
	if eu.Start != 55000 || eu.End != 55010 {
		t.Errorf("coverage bounds = (%v, %v), want (55000, 55010)", eu.Start, eu.End)
	}

	_, err = store.State("roman_l2", 55005)
	if !errors.As(err, &eu) {
		t.Fatalf("err = %v, want EphemerisUnavailableError for unknown observer", err)
	}
}

func TestStoreRejectsDuplicateEpochs(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.Import("earth", []State{sample(55000, 1)}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Import("earth", []State{sample(55000, 2)}); err == nil {
		t.Fatal("expected primary key violation for duplicate (observer, mjd)")
	}
}
