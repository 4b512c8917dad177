package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/example/campus-match/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateInterest is returned when a user expresses interest in
	// the same ride twice. Enforced at the store so concurrent attempts
	// conflict instead of racing.
	ErrDuplicateInterest = errors.New("interest already exists")
	// ErrActiveRequestExists is returned when a user with an active
	// roommate request tries to create another.
	ErrActiveRequestExists = errors.New("user already has an active roommate request")
)

// RideFilter is the coarse pre-scoring query over ride listings. Zero
// values mean "no constraint". Date comparisons are string-exact on the
// YYYY-MM-DD form.
type RideFilter struct {
	Status            string
	TravelDate        string
	MinSeatsRemaining int
	ExcludeUserID     string
	StartingFromIn    []string
	GoingToIn         []string
}

// SubleaseFilter is the coarse pre-scoring query over sublease listings.
type SubleaseFilter struct {
	Status           string
	StartsOnOrBefore string // listing must begin on or before this date
	EndsOnOrAfter    string // listing must end on or after this date
	MaxRent          float64
	Location         string
	MinBedrooms      int
	MinBathrooms     int
}

// RideStore persists ride listings.
type RideStore interface {
	CreateRide(ctx context.Context, r *models.RideListing) error
	GetRide(ctx context.Context, id string) (*models.RideListing, error)
	UpdateRide(ctx context.Context, r *models.RideListing) error
	FindRides(ctx context.Context, f RideFilter) ([]models.RideListing, error)
	ListUserRides(ctx context.Context, userID string) ([]models.RideListing, error)
	// CancelRide flips the listing to cancelled and removes its dependent
	// interest records as one logical unit, so no interest is left
	// pointing at a dead listing.
	CancelRide(ctx context.Context, id string) error
}

// SubleaseStore persists sublease listings.
type SubleaseStore interface {
	CreateSublease(ctx context.Context, s *models.SubleaseListing) error
	GetSublease(ctx context.Context, id string) (*models.SubleaseListing, error)
	UpdateSublease(ctx context.Context, s *models.SubleaseListing) error
	FindSubleases(ctx context.Context, f SubleaseFilter) ([]models.SubleaseListing, error)
	ListUserSubleases(ctx context.Context, userID string) ([]models.SubleaseListing, error)
	DeleteSublease(ctx context.Context, id string) error
}

// RoommateStore persists roommate requests. A user may hold at most one
// active request.
type RoommateStore interface {
	CreateRequest(ctx context.Context, r *models.RoommateRequest) error
	GetActiveForUser(ctx context.Context, userID string) (*models.RoommateRequest, error)
	FindActiveExcluding(ctx context.Context, userID string) ([]models.RoommateRequest, error)
	UpdateRequest(ctx context.Context, r *models.RoommateRequest) error
	CancelRequest(ctx context.Context, id, userID string) error
}

// LocationStore is the zip-code directory backing the location resolver.
type LocationStore interface {
	FindByCityState(ctx context.Context, city, state string) ([]models.LocationRecord, error)
	Search(ctx context.Context, query string, limit int) ([]models.LocationRecord, error)
	GetByZip(ctx context.Context, zip string) (*models.LocationRecord, error)
	ListAll(ctx context.Context, limit int) ([]models.LocationRecord, error)
	LoadLocations(ctx context.Context, recs []models.LocationRecord) error
}

// InterestRegistry tracks expressions of interest, unique per (ride, user).
type InterestRegistry interface {
	Exists(ctx context.Context, rideID, userID string) (bool, error)
	CreateInterest(ctx context.Context, in *models.Interest) error
	GetInterest(ctx context.Context, rideID, userID string) (*models.Interest, error)
	CountFor(ctx context.Context, rideID string) (int, error)
	ListForRide(ctx context.Context, rideID string) ([]models.Interest, error)
	ListForUser(ctx context.Context, userID string) ([]models.Interest, error)
	DeleteInterest(ctx context.Context, rideID, userID string) error
	DeleteAllFor(ctx context.Context, rideID string) error
}

// NotificationStore persists user notifications.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID string, page, perPage int, unreadOnly bool) ([]models.Notification, int, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
	DeleteNotification(ctx context.Context, id, userID string) error
}

// UserDirectory supplies poster contact details for page enrichment. User
// management itself lives outside this service.
type UserDirectory interface {
	Contact(ctx context.Context, userID string) (*models.ContactCard, error)
}

// NewID returns a random 16-hex-char identifier.
func NewID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
