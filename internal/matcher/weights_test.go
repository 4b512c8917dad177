package matcher

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCalibrationMissingFileFallsBack(t *testing.T) {
	w, err := LoadCalibration("/nonexistent/calibration.json")
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if w == nil || w.Ride != DefaultWeights().Ride {
		t.Fatalf("expected default weights on failure, got %+v", w)
	}
}

func TestLoadCalibrationEmptyPath(t *testing.T) {
	w, err := LoadCalibration("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *w != *DefaultWeights() {
		t.Fatalf("expected defaults, got %+v", w)
	}
}

func TestLoadCalibrationPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.json")
	payload := `{
		"version": "2026-08-01",
		"weights": {
			"ride": {"location": 0.6, "time": 0.2},
			"roommate": {"budget": 40}
		}
	}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := LoadCalibration(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Ride.Location != 0.6 || w.Ride.Time != 0.2 {
		t.Fatalf("overrides not applied: %+v", w.Ride)
	}
	// untouched fields keep their defaults
	if w.Ride.Seats != 0.1 || w.Ride.Popularity != 0.05 {
		t.Fatalf("defaults clobbered: %+v", w.Ride)
	}
	if w.Roommate.Budget != 40 || w.Roommate.Sleep != 15 {
		t.Fatalf("roommate merge wrong: %+v", w.Roommate)
	}
	if w.Sublease != DefaultWeights().Sublease {
		t.Fatalf("sublease weights should be untouched: %+v", w.Sublease)
	}
}

func TestLoadCalibrationMalformedFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := LoadCalibration(path)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if *w != *DefaultWeights() {
		t.Fatalf("expected defaults on parse failure, got %+v", w)
	}
}
