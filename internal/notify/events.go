package notify

import (
	"fmt"
	"time"

	"github.com/example/campus-match/internal/models"
)

// Event is a notification request flowing from the API to the notifier.
// One Notification record is created per recipient.
type Event struct {
	Type       string    `json:"type"`
	RideID     string    `json:"ride_id"`
	ActorID    string    `json:"actor_id,omitempty"`
	Recipients []string  `json:"recipients"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

// Notifications returns the per-recipient records for the event.
func (e Event) Notifications() []models.Notification {
	out := make([]models.Notification, 0, len(e.Recipients))
	for _, userID := range e.Recipients {
		out = append(out, models.Notification{
			UserID:    userID,
			Type:      e.Type,
			Title:     e.Title,
			Message:   e.Message,
			RelatedID: e.RideID,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}

func rideLeg(r models.RideListing) string {
	return fmt.Sprintf("%s to %s on %s", r.StartingFrom, r.GoingTo, r.TravelDate)
}

// RideInterestEvent notifies the poster that someone wants a seat.
func RideInterestEvent(ride models.RideListing, actorID, actorName string) Event {
	return Event{
		Type:       models.NotifyRideInterest,
		RideID:     ride.ID,
		ActorID:    actorID,
		Recipients: []string{ride.UserID},
		Title:      "New interest in your ride",
		Message:    fmt.Sprintf("%s is interested in your ride from %s", actorName, rideLeg(ride)),
		CreatedAt:  time.Now(),
	}
}

// RideInterestRemovedEvent notifies the poster that a rider backed out.
func RideInterestRemovedEvent(ride models.RideListing, actorID, actorName string) Event {
	return Event{
		Type:       models.NotifyRideInterestRemoved,
		RideID:     ride.ID,
		ActorID:    actorID,
		Recipients: []string{ride.UserID},
		Title:      "Interest withdrawn",
		Message:    fmt.Sprintf("%s is no longer interested in your ride from %s", actorName, rideLeg(ride)),
		CreatedAt:  time.Now(),
	}
}

// RideUpdateEvent notifies every interested rider that details changed.
func RideUpdateEvent(ride models.RideListing, recipients []string) Event {
	return Event{
		Type:       models.NotifyRideUpdate,
		RideID:     ride.ID,
		Recipients: recipients,
		Title:      "Ride updated",
		Message:    fmt.Sprintf("A ride you're interested in was updated: %s", rideLeg(ride)),
		CreatedAt:  time.Now(),
	}
}

// RideCancelledEvent notifies every interested rider that the ride is off.
func RideCancelledEvent(ride models.RideListing, recipients []string) Event {
	return Event{
		Type:       models.NotifyRideCancelled,
		RideID:     ride.ID,
		Recipients: recipients,
		Title:      "Ride cancelled",
		Message:    fmt.Sprintf("A ride you were interested in was cancelled: %s", rideLeg(ride)),
		CreatedAt:  time.Now(),
	}
}
