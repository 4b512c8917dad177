package matcher

import (
	"context"
	"time"

	"github.com/example/campus-match/internal/location"
	"github.com/example/campus-match/internal/models"
)

// RideScorer computes the match score of a ride against search criteria.
// Scoring is pure: the interest count is supplied by the caller so the
// function touches no store.
type RideScorer struct {
	Resolver *location.Resolver
	Weights  RideWeights
	Now      func() time.Time
}

// Score returns a value in [0, 1]. The caller must already have applied
// the hard time-overlap filter (PassesTimeFilter); a ride with zero
// overlap still gets a numeric score here, it just never reaches scoring
// in the search path.
func (s *RideScorer) Score(ctx context.Context, ride models.RideListing, c models.RideCriteria, interestCount int) (float64, error) {
	score := s.locationScore(ctx, ride, c) * s.Weights.Location

	if c.HasTimePreference() {
		ratio, err := overlapRatio(
			ride.DepartureStartTime, ride.DepartureEndTime,
			c.PreferredStartTime, c.PreferredEndTime,
		)
		if err != nil {
			return 0, err
		}
		score += ratio * s.Weights.Time
	} else {
		score += s.Weights.Time
	}

	if ride.AvailableSeats > 0 {
		seatRatio := float64(ride.SeatsRemaining) / float64(ride.AvailableSeats)
		if seatRatio > 1 {
			seatRatio = 1
		}
		score += seatRatio * s.Weights.Seats
	}

	popularity := float64(interestCount) / popularityCap
	if popularity > 1 {
		popularity = 1
	}
	score += popularity * s.Weights.Popularity

	score += s.recencyScore(ride.TravelDate) * s.Weights.Recency

	return score, nil
}

// PassesTimeFilter applies the hard exclusion: when the searcher gave a
// preferred window, rides whose departure range shares no minute with it
// are removed before scoring.
func (s *RideScorer) PassesTimeFilter(ride models.RideListing, c models.RideCriteria) (bool, error) {
	if !c.HasTimePreference() {
		return true, nil
	}
	return hasOverlap(
		ride.DepartureStartTime, ride.DepartureEndTime,
		c.PreferredStartTime, c.PreferredEndTime,
	)
}

// locationScore averages the starting and destination leg scores. A leg
// scores 1.0 on an exact string match, 0.9 when only the variant sets
// intersect (city-level match), and 0 otherwise. An empty search side is
// treated as a match. Both legs must pass or the whole component is 0.
func (s *RideScorer) locationScore(ctx context.Context, ride models.RideListing, c models.RideCriteria) float64 {
	start := s.legScore(ctx, c.StartingFrom, ride.StartingFrom)
	dest := s.legScore(ctx, c.GoingTo, ride.GoingTo)
	if start == 0 || dest == 0 {
		return 0
	}
	return (start + dest) / 2
}

func (s *RideScorer) legScore(ctx context.Context, searchLoc, rideLoc string) float64 {
	if searchLoc == "" {
		return 1.0
	}
	searchVars := s.Resolver.Variations(ctx, searchLoc)
	rideVars := s.Resolver.Variations(ctx, rideLoc)
	if !location.Intersects(searchVars, rideVars) {
		return 0
	}
	if rideLoc == searchLoc {
		return 1.0
	}
	return 0.9
}

// recencyScore favors rides departing soon: 1.0 today, decaying to 0 at
// the horizon. Past or unparsable travel dates degrade to a neutral half
// score instead of failing the search.
func (s *RideScorer) recencyScore(travelDate string) float64 {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	d, err := time.Parse("2006-01-02", travelDate)
	if err != nil {
		return 0.5
	}
	y, m, day := now().Date()
	today := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	days := int(d.Sub(today).Hours() / 24)
	if days < 0 {
		return 0.5
	}
	score := 1 - float64(days)/recencyHorizonDays
	if score < 0 {
		return 0
	}
	return score
}
