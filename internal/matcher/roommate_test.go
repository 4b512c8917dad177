package matcher

import (
	"math"
	"testing"

	"github.com/example/campus-match/internal/models"
)

func baseRequest(userID string) models.RoommateRequest {
	return models.RoommateRequest{
		ID:                 "req-" + userID,
		UserID:             userID,
		RoomPreference:     "shared",
		BathroomPreference: "shared",
		DietaryPreference:  models.DietVegetarian,
		PetFriendly:        false,
		RentBudget:         models.RentBudget{Min: 500, Max: 800},
		Lifestyle: models.Lifestyle{
			CleanlinessLevel: 4,
			SleepSchedule:    "early_bird",
			GuestFrequency:   "rarely",
			StudyEnvironment: "quiet",
			Smoking:          "never",
			Alcohol:          "never",
		},
		Status: models.StatusActive,
	}
}

func TestDealBreakersNone(t *testing.T) {
	if reasons := DealBreakers(baseRequest("u1"), baseRequest("u2")); len(reasons) != 0 {
		t.Fatalf("identical requests should have no deal-breakers, got %v", reasons)
	}
}

func TestDealBreakersFlexibleWildcard(t *testing.T) {
	user := baseRequest("u1")
	other := baseRequest("u2")
	user.RoomPreference = models.PrefFlexible
	other.RoomPreference = "private"
	other.BathroomPreference = models.PrefFlexible
	user.BathroomPreference = "private"
	if reasons := DealBreakers(user, other); len(reasons) != 0 {
		t.Fatalf("flexible on either side should never mismatch, got %v", reasons)
	}
}

func TestDealBreakersRoomAndBathroom(t *testing.T) {
	user := baseRequest("u1")
	other := baseRequest("u2")
	user.RoomPreference = "private"
	other.RoomPreference = "shared"
	user.BathroomPreference = "private"
	other.BathroomPreference = "shared"

	reasons := DealBreakers(user, other)
	if len(reasons) != 2 {
		t.Fatalf("expected 2 reasons, got %v", reasons)
	}
	if reasons[0] != ReasonRoomMismatch || reasons[1] != ReasonBathroomMismatch {
		t.Fatalf("unexpected reasons: %v", reasons)
	}
}

func TestDealBreakersDietaryAsymmetry(t *testing.T) {
	strict := baseRequest("u1")
	strict.DietaryPreference = models.DietPureVegetarian
	permissive := baseRequest("u2")
	permissive.DietaryPreference = models.DietOkayNonVeg

	// the permissive searcher is blocked from the stricter candidate
	reasons := DealBreakers(permissive, strict)
	if len(reasons) != 1 || reasons[0] != ReasonDietary {
		t.Fatalf("expected dietary deal-breaker, got %v", reasons)
	}

	// the stricter searcher is not
	if reasons := DealBreakers(strict, permissive); len(reasons) != 0 {
		t.Fatalf("strict searcher should not be blocked, got %v", reasons)
	}
}

func TestDealBreakersReligionCasteOnlyWhenBothSet(t *testing.T) {
	user := baseRequest("u1")
	other := baseRequest("u2")
	user.Religion = "hindu"
	if reasons := DealBreakers(user, other); len(reasons) != 0 {
		t.Fatalf("one-sided religion should not mismatch, got %v", reasons)
	}
	other.Religion = "christian"
	reasons := DealBreakers(user, other)
	if len(reasons) != 1 || reasons[0] != ReasonReligionMismatch {
		t.Fatalf("expected religion deal-breaker, got %v", reasons)
	}

	user.Religion, other.Religion = "", ""
	user.Caste = "a"
	other.Caste = "b"
	reasons = DealBreakers(user, other)
	if len(reasons) != 1 || reasons[0] != ReasonCasteMismatch {
		t.Fatalf("expected caste deal-breaker, got %v", reasons)
	}
}

func TestDealBreakersPets(t *testing.T) {
	user := baseRequest("u1")
	other := baseRequest("u2")
	other.PetFriendly = true
	reasons := DealBreakers(user, other)
	if len(reasons) != 1 || reasons[0] != ReasonPetMismatch {
		t.Fatalf("expected pet deal-breaker, got %v", reasons)
	}
}

func TestCompatibilityScorePerfectMatch(t *testing.T) {
	pts := DefaultWeights().Roommate
	score := CompatibilityScore(baseRequest("u1"), baseRequest("u2"), pts)
	if score != pts.Total() {
		t.Fatalf("identical requests should max out, got %v want %v", score, pts.Total())
	}
	if pts.Total() != 100 {
		t.Fatalf("default point budgets should sum to 100, got %v", pts.Total())
	}
}

func TestCompatibilityBudgetOverlap(t *testing.T) {
	pts := DefaultWeights().Roommate
	user := models.RentBudget{Min: 500, Max: 800}
	other := models.RentBudget{Min: 700, Max: 1000}

	// 100 of overlap against an average range of 300 earns a third of
	// the budget points
	got := budgetScore(user, other, pts.Budget)
	if math.Abs(got-25.0/3) > 1e-9 {
		t.Fatalf("got %v want %v", got, 25.0/3)
	}

	if got := budgetScore(models.RentBudget{Min: 500, Max: 600}, models.RentBudget{Min: 700, Max: 800}, pts.Budget); got != 0 {
		t.Fatalf("disjoint budgets should score 0, got %v", got)
	}
	if got := budgetScore(models.RentBudget{Min: 500, Max: 500}, models.RentBudget{Min: 500, Max: 500}, pts.Budget); got != 0 {
		t.Fatalf("zero-width budgets should score 0, got %v", got)
	}
}

func TestCompatibilityLifestyleGradients(t *testing.T) {
	pts := DefaultWeights().Roommate
	user := baseRequest("u1")
	other := baseRequest("u2")

	other.Lifestyle.CleanlinessLevel = 1 // diff of 3 loses 3/5 of the points
	other.Lifestyle.SleepSchedule = "night_owl"
	other.Lifestyle.GuestFrequency = "often" // diff of 2 loses 2/3 of the points
	other.Lifestyle.StudyEnvironment = models.PrefFlexible
	other.Lifestyle.Smoking = "socially"

	got := CompatibilityScore(user, other, pts)
	want := 25.0 + // identical budgets overlap fully
		(15 - 3*3.0) + // cleanliness
		15.0/3 + // sleep mismatch
		(15 - 2*5.0) + // guests
		15*2/3 + // study flexible
		15*2/3 // one habit matches
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestCompatibilityUnknownGuestFrequency(t *testing.T) {
	pts := DefaultWeights().Roommate
	user := baseRequest("u1")
	other := baseRequest("u2")
	user.Lifestyle.GuestFrequency = ""
	// an unanswered guest question ranks as "sometimes", one level away
	// from the other side's "rarely"
	got := CompatibilityScore(user, other, pts)
	want := pts.Total() - 5
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("got %v want %v", got, want)
	}
}
