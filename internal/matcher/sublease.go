package matcher

import (
	"math"
	"time"

	"github.com/example/campus-match/internal/models"
)

// SubleaseScorer computes the match score of a sublease against search
// criteria. Pure; safe to call concurrently.
type SubleaseScorer struct {
	Weights SubleaseWeights
}

// Score returns a value in [0, 1].
func (s *SubleaseScorer) Score(sub models.SubleaseListing, c models.SubleaseCriteria) (float64, error) {
	dateScore, err := dateCoverageScore(sub.StartDate, sub.EndDate, c.StartDate, c.EndDate)
	if err != nil {
		return 0, err
	}
	score := dateScore * s.Weights.Date

	// Time coverage only applies when both sides state move-in/out times.
	if sub.MoveInTime != "" && sub.MoveOutTime != "" && c.MoveInTime != "" && c.MoveOutTime != "" {
		timeScore, err := timeCoverageScore(sub.MoveInTime, sub.MoveOutTime, c.MoveInTime, c.MoveOutTime)
		if err != nil {
			return 0, err
		}
		score += timeScore * s.Weights.Time
	} else {
		score += s.Weights.Time
	}

	if sub.Location == c.Location {
		score += s.Weights.Location
	}

	score += rentScore(sub.MonthlyRent, c.MaxRent) * s.Weights.Rent

	score += amenityScore(sub.Amenities, c.RequiredAmenities) * s.Weights.Amenities

	return math.Min(score, 1.0), nil
}

// dateCoverageScore rates how well the sublease interval covers the
// requested one. Full coverage earns the requested/offered day ratio with
// a 20% bonus (so an exact-length match scores 1.0); partial overlap earns
// the covered fraction of the request at a 20% discount; disjoint
// intervals score 0.
func dateCoverageScore(subStart, subEnd, userStart, userEnd string) (float64, error) {
	ss, err := parseDay(subStart)
	if err != nil {
		return 0, err
	}
	se, err := parseDay(subEnd)
	if err != nil {
		return 0, err
	}
	us, err := parseDay(userStart)
	if err != nil {
		return 0, err
	}
	ue, err := parseDay(userEnd)
	if err != nil {
		return 0, err
	}

	userDays := daysBetween(us, ue)
	subDays := daysBetween(ss, se)

	if !ss.After(us) && !se.Before(ue) {
		if subDays <= 0 {
			return 0, nil
		}
		return math.Min(1.0, float64(userDays)/float64(subDays)*1.2), nil
	}

	overlapStart := maxDay(ss, us)
	overlapEnd := minDay(se, ue)
	if overlapStart.Before(overlapEnd) {
		if userDays <= 0 {
			return 0, nil
		}
		overlapDays := daysBetween(overlapStart, overlapEnd)
		return float64(overlapDays) / float64(userDays) * 0.8, nil
	}

	return 0, nil
}

// timeCoverageScore applies the same full/partial coverage rule to
// move-in/out minute-of-day intervals.
func timeCoverageScore(subIn, subOut, userIn, userOut string) (float64, error) {
	si, err := minuteOfDay(subIn)
	if err != nil {
		return 0, err
	}
	so, err := minuteOfDay(subOut)
	if err != nil {
		return 0, err
	}
	ui, err := minuteOfDay(userIn)
	if err != nil {
		return 0, err
	}
	uo, err := minuteOfDay(userOut)
	if err != nil {
		return 0, err
	}

	if si <= ui && so >= uo {
		subLen := so - si
		if subLen <= 0 {
			return 1.0, nil
		}
		return math.Min(1.0, float64(uo-ui)/float64(subLen)*1.2), nil
	}

	overlapStart := max(si, ui)
	overlapEnd := min(so, uo)
	if overlapStart < overlapEnd {
		userLen := uo - ui
		if userLen <= 0 {
			return 0, nil
		}
		return float64(overlapEnd-overlapStart) / float64(userLen) * 0.8, nil
	}

	return 0, nil
}

// rentScore rewards listings under budget (up to a 30% bonus for the
// cheapest) and applies a graduated penalty above it, flooring at half
// the component.
func rentScore(rent, maxRent float64) float64 {
	if maxRent <= 0 {
		return 0
	}
	if rent <= maxRent {
		return 1.0 - (rent/maxRent)*0.3
	}
	penalty := math.Min(0.5, (rent-maxRent)/maxRent)
	return 1.0 - penalty
}

// amenityScore is the fraction of required amenities present, plus a bonus
// of 0.1 per extra amenity capped at 0.3, capped at 1.0 overall. No
// requirements is a perfect match; requirements against a bare listing
// score 0.
func amenityScore(have, required []string) float64 {
	if len(required) == 0 {
		return 1.0
	}
	if len(have) == 0 {
		return 0
	}

	haveSet := make(map[string]struct{}, len(have))
	for _, a := range have {
		haveSet[a] = struct{}{}
	}
	requiredSet := make(map[string]struct{}, len(required))
	for _, a := range required {
		requiredSet[a] = struct{}{}
	}

	present := 0
	for a := range requiredSet {
		if _, ok := haveSet[a]; ok {
			present++
		}
	}

	base := float64(present) / float64(len(requiredSet))
	bonus := math.Min(float64(len(haveSet)-len(requiredSet))*0.1, 0.3)
	if bonus < 0 {
		bonus = 0
	}
	return math.Min(base+bonus, 1.0)
}

func parseDay(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, &FormatError{Value: s}
	}
	return d, nil
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

func maxDay(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minDay(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
