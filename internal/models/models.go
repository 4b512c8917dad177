package models

import "time"

// Listing status values shared by rides, roommate requests, and subleases.
const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
)

// RideListing is a posted ride offer. Dates are YYYY-MM-DD strings and
// departure times are HH:MM 24-hour strings, matching what the API accepts.
type RideListing struct {
	ID                    string    `json:"id"`
	UserID                string    `json:"user_id"`
	StartingFrom          string    `json:"starting_from"`
	GoingTo               string    `json:"going_to"`
	TravelDate            string    `json:"travel_date"`
	DepartureStartTime    string    `json:"departure_start_time"`
	DepartureEndTime      string    `json:"departure_end_time"`
	AvailableSeats        int       `json:"available_seats"`
	SeatsRemaining        int       `json:"seats_remaining"`
	SuggestedContribution int64     `json:"suggested_contribution"` // cents, USD
	Status                string    `json:"status"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// Dietary preference levels, least to most permissive.
const (
	DietPureVegetarian = "pure_vegetarian"
	DietVegetarian     = "vegetarian"
	DietEggetarian     = "eggetarian"
	DietOkayNonVeg     = "okay_non_veg"
)

// PrefFlexible is the wildcard value for room/bathroom/sleep/study preferences.
const PrefFlexible = "flexible"

// RentBudget is a monthly rent range in dollars.
type RentBudget struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Lifestyle holds the questionnaire answers used for compatibility scoring.
type Lifestyle struct {
	CleanlinessLevel int    `json:"cleanliness_level"` // 1..5
	SleepSchedule    string `json:"sleep_schedule"`
	GuestFrequency   string `json:"guest_frequency"` // rarely, sometimes, often
	StudyEnvironment string `json:"study_environment"`
	Smoking          string `json:"smoking"`
	Alcohol          string `json:"alcohol"`
}

// RoommateRequest is a user's active search for a roommate. Matching is
// symmetric: the request doubles as the search criteria.
type RoommateRequest struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"user_id"`
	RoomPreference     string     `json:"room_preference"`
	BathroomPreference string     `json:"bathroom_preference"`
	DietaryPreference  string     `json:"dietary_preference"`
	Religion           string     `json:"religion,omitempty"`
	Caste              string     `json:"caste,omitempty"`
	PetFriendly        bool       `json:"pet_friendly"`
	RentBudget         RentBudget `json:"rent_budget"`
	Lifestyle          Lifestyle  `json:"lifestyle"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// SubleaseListing is a posted sublease. Location is a display string chosen
// from the locations directory, so matching on it is exact.
type SubleaseListing struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Location     string    `json:"location"`
	Address      string    `json:"address"`
	MonthlyRent  float64   `json:"monthly_rent"`
	StartDate    string    `json:"start_date"`
	EndDate      string    `json:"end_date"`
	MoveInTime   string    `json:"move_in_time,omitempty"`
	MoveOutTime  string    `json:"move_out_time,omitempty"`
	Bedrooms     int       `json:"bedrooms"`
	Bathrooms    int       `json:"bathrooms"`
	PropertyType string    `json:"property_type"`
	Amenities    []string  `json:"amenities"`
	Description  string    `json:"description,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LocationRecord is one row of the zip-code directory. A city usually has
// several records, one per zip.
type LocationRecord struct {
	ZipCode   string `json:"zip_code"` // 5 digits, zero-padded
	City      string `json:"city"`
	State     string `json:"state"` // two-letter code
	StateName string `json:"state_name"`
}

// DisplayName is the zip-specific form, e.g. "Boulder, Colorado 80301".
func (l LocationRecord) DisplayName() string {
	return l.City + ", " + l.StateName + " " + l.ZipCode
}

// CityDisplayName is the city-level form, e.g. "Boulder, Colorado".
func (l LocationRecord) CityDisplayName() string {
	return l.City + ", " + l.StateName
}

// Interest records one user's interest in one ride. Unique per (ride, user).
type Interest struct {
	RideID        string    `json:"ride_id"`
	UserID        string    `json:"user_id"`
	Status        string    `json:"status"` // interested
	PaymentHoldID string    `json:"payment_hold_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Notification types produced by the interest/update/cancel flows.
const (
	NotifyRideInterest        = "ride_interest"
	NotifyRideInterestRemoved = "ride_interest_removed"
	NotifyRideUpdate          = "ride_update"
	NotifyRideCancelled       = "ride_cancelled"
)

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	RelatedID string    `json:"related_id,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// RideCriteria is a rider's search. Empty location fields match anything;
// time preferences are optional but must be given as a pair.
type RideCriteria struct {
	TravelDate         string `json:"travel_date"`
	StartingFrom       string `json:"starting_from,omitempty"`
	GoingTo            string `json:"going_to,omitempty"`
	PreferredStartTime string `json:"preferred_start_time,omitempty"`
	PreferredEndTime   string `json:"preferred_end_time,omitempty"`
	SearcherID         string `json:"-"`
}

// HasTimePreference reports whether both ends of the preferred window are set.
func (c RideCriteria) HasTimePreference() bool {
	return c.PreferredStartTime != "" && c.PreferredEndTime != ""
}

// SubleaseCriteria is a sublease search.
type SubleaseCriteria struct {
	StartDate         string   `json:"start_date"`
	EndDate           string   `json:"end_date"`
	MaxRent           float64  `json:"max_rent"`
	Location          string   `json:"location"`
	RequiredAmenities []string `json:"required_amenities,omitempty"`
	MinBedrooms       int      `json:"min_bedrooms,omitempty"`
	MinBathrooms      int      `json:"min_bathrooms,omitempty"`
	MoveInTime        string   `json:"move_in_time,omitempty"`
	MoveOutTime       string   `json:"move_out_time,omitempty"`
}

// ContactCard is the poster contact info attached to enriched results.
type ContactCard struct {
	Name           string `json:"name"`
	PhoneNumber    string `json:"phone_number,omitempty"`
	WhatsappNumber string `json:"whatsapp_number,omitempty"`
}

// ScoredRide is a ride candidate that survived filtering, with its match
// score and page-only enrichment.
type ScoredRide struct {
	Ride          RideListing  `json:"ride"`
	Score         float64      `json:"match_score"`
	Driver        *ContactCard `json:"driver,omitempty"`
	InterestCount int          `json:"interest_count"`
	IsHot         bool         `json:"is_hot"`
}

// ScoredSublease is a sublease candidate with its match score.
type ScoredSublease struct {
	Sublease  SubleaseListing `json:"sublease"`
	Score     float64         `json:"match_score"`
	Subleaser *ContactCard    `json:"subleaser,omitempty"`
}

// RoommateMatch is one other request evaluated against the searcher's.
// Compatible matches carry a 0-100 score and empty DealBreakers;
// incompatible ones carry score 0 and the reasons.
type RoommateMatch struct {
	Request            RoommateRequest `json:"request"`
	User               *ContactCard    `json:"user,omitempty"`
	CompatibilityScore float64         `json:"compatibility_score"`
	DealBreakers       []string        `json:"deal_breakers"`
}
