package matcher

import (
	"math"

	"github.com/example/campus-match/internal/models"
)

// Deal-breaker reasons surfaced to the searcher.
const (
	ReasonRoomMismatch     = "Room preference mismatch"
	ReasonBathroomMismatch = "Bathroom preference mismatch"
	ReasonDietary          = "Dietary preference incompatibility"
	ReasonReligionMismatch = "Religion preference mismatch"
	ReasonCasteMismatch    = "Caste preference mismatch"
	ReasonPetMismatch      = "Pet compatibility mismatch"
)

// dietaryRank orders dietary preferences from most to least restrictive.
// Unknown values rank 0 and never trigger the dietary deal-breaker.
var dietaryRank = map[string]int{
	models.DietPureVegetarian: 1,
	models.DietVegetarian:     2,
	models.DietEggetarian:     3,
	models.DietOkayNonVeg:     4,
}

// guestRank orders guest frequency answers. Unknown values rank as
// "sometimes" so a missing answer never dominates the score.
var guestRank = map[string]int{
	"rarely":    1,
	"sometimes": 2,
	"often":     3,
}

// DealBreakers returns every hard incompatibility between the searcher's
// request and another. Any non-empty result removes the candidate from
// ranked consideration. Absent optional fields (religion, caste) are "not
// applicable", never a mismatch, so this function cannot fail.
func DealBreakers(user, other models.RoommateRequest) []string {
	var reasons []string

	if user.RoomPreference != models.PrefFlexible &&
		other.RoomPreference != models.PrefFlexible &&
		user.RoomPreference != other.RoomPreference {
		reasons = append(reasons, ReasonRoomMismatch)
	}

	if user.BathroomPreference != models.PrefFlexible &&
		other.BathroomPreference != models.PrefFlexible &&
		user.BathroomPreference != other.BathroomPreference {
		reasons = append(reasons, ReasonBathroomMismatch)
	}

	// Asymmetric: a searcher ranked more permissive than the candidate is
	// incompatible, so a pure_vegetarian never gets matched with an
	// okay_non_veg searcher. The stricter searcher is never blocked.
	if dietaryRank[user.DietaryPreference] > dietaryRank[other.DietaryPreference] {
		reasons = append(reasons, ReasonDietary)
	}

	if user.Religion != "" && other.Religion != "" && user.Religion != other.Religion {
		reasons = append(reasons, ReasonReligionMismatch)
	}

	if user.Caste != "" && other.Caste != "" && user.Caste != other.Caste {
		reasons = append(reasons, ReasonCasteMismatch)
	}

	if user.PetFriendly != other.PetFriendly {
		reasons = append(reasons, ReasonPetMismatch)
	}

	return reasons
}

// CompatibilityScore rates two deal-breaker-free requests on a 0-100 scale.
func CompatibilityScore(user, other models.RoommateRequest, pts CompatibilityPoints) float64 {
	score := budgetScore(user.RentBudget, other.RentBudget, pts.Budget)

	ul, ol := user.Lifestyle, other.Lifestyle

	// Cleanliness: lose a fifth of the budget per level of difference.
	cleanDiff := math.Abs(float64(ul.CleanlinessLevel - ol.CleanlinessLevel))
	score += math.Max(0, pts.Cleanliness-cleanDiff*(pts.Cleanliness/5))

	score += triLevel(ul.SleepSchedule, ol.SleepSchedule, pts.Sleep)

	// Guests: lose a third of the budget per level of difference.
	uGuest := guestLevel(ul.GuestFrequency)
	oGuest := guestLevel(ol.GuestFrequency)
	guestDiff := math.Abs(float64(uGuest - oGuest))
	score += math.Max(0, pts.Guests-guestDiff*(pts.Guests/3))

	score += triLevel(ul.StudyEnvironment, ol.StudyEnvironment, pts.Study)

	score += habitsScore(ul, ol, pts.Habits)

	return math.Min(score, pts.Total())
}

// budgetScore rewards overlapping rent ranges: the overlap width relative
// to the average of the two range widths. Disjoint or zero-width ranges
// contribute nothing.
func budgetScore(user, other models.RentBudget, points float64) float64 {
	overlapMin := math.Max(user.Min, other.Min)
	overlapMax := math.Min(user.Max, other.Max)
	if overlapMin > overlapMax {
		return 0
	}
	avgRange := ((user.Max - user.Min) + (other.Max - other.Min)) / 2
	if avgRange <= 0 {
		return 0
	}
	return (overlapMax - overlapMin) / avgRange * points
}

// triLevel scores exact match at full points, a "flexible" answer on
// either side at two thirds, and anything else at one third.
func triLevel(a, b string, points float64) float64 {
	switch {
	case a == b:
		return points
	case a == models.PrefFlexible || b == models.PrefFlexible:
		return points * 2 / 3
	default:
		return points / 3
	}
}

// habitsScore combines smoking and alcohol: both matching earns full
// points, one matching two thirds, neither one third.
func habitsScore(a, b models.Lifestyle, points float64) float64 {
	smoking := a.Smoking == b.Smoking
	alcohol := a.Alcohol == b.Alcohol
	switch {
	case smoking && alcohol:
		return points
	case smoking || alcohol:
		return points * 2 / 3
	default:
		return points / 3
	}
}

func guestLevel(s string) int {
	if lvl, ok := guestRank[s]; ok {
		return lvl
	}
	return guestRank["sometimes"]
}
