package matcher

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// Scoring thresholds and caps shared by the scorers.
const (
	// MinScore is the floor below which a candidate is dropped from results.
	MinScore = 0.1
	// popularityCap is the interest count at which the popularity component saturates.
	popularityCap = 5
	// recencyHorizonDays is the window over which the recency component decays.
	recencyHorizonDays = 30
	// HotInterestCount marks a ride as "hot" in enriched results.
	HotInterestCount = 3
)

// RideWeights are the component weights of the ride match score. They sum
// to 1.0 so the total stays in [0, 1].
type RideWeights struct {
	Location   float64 `json:"location"`
	Time       float64 `json:"time"`
	Seats      float64 `json:"seats"`
	Popularity float64 `json:"popularity"`
	Recency    float64 `json:"recency"`
}

// SubleaseWeights are the component weights of the sublease match score.
type SubleaseWeights struct {
	Date      float64 `json:"date"`
	Time      float64 `json:"time"`
	Location  float64 `json:"location"`
	Rent      float64 `json:"rent"`
	Amenities float64 `json:"amenities"`
}

// CompatibilityPoints are the per-dimension point budgets of the roommate
// compatibility score. They sum to 100.
type CompatibilityPoints struct {
	Budget      float64 `json:"budget"`
	Cleanliness float64 `json:"cleanliness"`
	Sleep       float64 `json:"sleep"`
	Guests      float64 `json:"guests"`
	Study       float64 `json:"study"`
	Habits      float64 `json:"habits"`
}

// Total is the maximum attainable compatibility score.
func (p CompatibilityPoints) Total() float64 {
	return p.Budget + p.Cleanliness + p.Sleep + p.Guests + p.Study + p.Habits
}

// Weights bundles all scoring configurations.
type Weights struct {
	Ride     RideWeights         `json:"ride"`
	Sublease SubleaseWeights     `json:"sublease"`
	Roommate CompatibilityPoints `json:"roommate"`
}

// calibrationFile is the JSON structure of an optional calibration file.
type calibrationFile struct {
	Version string  `json:"version"`
	Weights Weights `json:"weights"`
}

// DefaultWeights returns the stock scoring configuration.
//
// Ride: location 0.5, time 0.3, seats 0.1, popularity 0.05, recency 0.05.
// Sublease: date 0.4, time 0.1, location 0.3, rent 0.15, amenities 0.05.
// Roommate: budget 25 + five lifestyle dimensions at 15 points each.
func DefaultWeights() *Weights {
	return &Weights{
		Ride: RideWeights{
			Location:   0.5,
			Time:       0.3,
			Seats:      0.1,
			Popularity: 0.05,
			Recency:    0.05,
		},
		Sublease: SubleaseWeights{
			Date:      0.4,
			Time:      0.1,
			Location:  0.3,
			Rent:      0.15,
			Amenities: 0.05,
		},
		Roommate: CompatibilityPoints{
			Budget:      25,
			Cleanliness: 15,
			Sleep:       15,
			Guests:      15,
			Study:       15,
			Habits:      15,
		},
	}
}

// LoadCalibration loads weight overrides from a JSON file. Missing or
// malformed files fall back to defaults so a bad deploy never takes search
// down; the error is returned for logging. Zero-valued fields in the file
// keep their defaults, allowing partial overrides.
func LoadCalibration(path string) (*Weights, error) {
	if path == "" {
		return DefaultWeights(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultWeights(), fmt.Errorf("read calibration file: %w", err)
	}

	var cfg calibrationFile
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultWeights(), fmt.Errorf("parse calibration file: %w", err)
	}

	merged := mergeWeights(DefaultWeights(), &cfg.Weights)
	slog.Info("loaded scoring calibration", "path", path, "version", cfg.Version)
	return merged, nil
}

// mergeWeights applies non-zero override values on top of base.
func mergeWeights(base, override *Weights) *Weights {
	if base == nil {
		base = DefaultWeights()
	}
	if override == nil {
		out := *base
		return &out
	}

	out := *base
	mergeNonzero(&out.Ride.Location, override.Ride.Location)
	mergeNonzero(&out.Ride.Time, override.Ride.Time)
	mergeNonzero(&out.Ride.Seats, override.Ride.Seats)
	mergeNonzero(&out.Ride.Popularity, override.Ride.Popularity)
	mergeNonzero(&out.Ride.Recency, override.Ride.Recency)

	mergeNonzero(&out.Sublease.Date, override.Sublease.Date)
	mergeNonzero(&out.Sublease.Time, override.Sublease.Time)
	mergeNonzero(&out.Sublease.Location, override.Sublease.Location)
	mergeNonzero(&out.Sublease.Rent, override.Sublease.Rent)
	mergeNonzero(&out.Sublease.Amenities, override.Sublease.Amenities)

	mergeNonzero(&out.Roommate.Budget, override.Roommate.Budget)
	mergeNonzero(&out.Roommate.Cleanliness, override.Roommate.Cleanliness)
	mergeNonzero(&out.Roommate.Sleep, override.Roommate.Sleep)
	mergeNonzero(&out.Roommate.Guests, override.Roommate.Guests)
	mergeNonzero(&out.Roommate.Study, override.Roommate.Study)
	mergeNonzero(&out.Roommate.Habits, override.Roommate.Habits)
	return &out
}

func mergeNonzero(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}
