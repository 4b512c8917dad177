package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/campus-match/internal/models"
)

func TestInterestUniquePerRideAndUser(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	in := models.Interest{RideID: "r1", UserID: "u1", Status: "interested", CreatedAt: time.Now()}
	if err := store.CreateInterest(ctx, &in); err != nil {
		t.Fatalf("first interest: %v", err)
	}
	dup := in
	if err := store.CreateInterest(ctx, &dup); !errors.Is(err, ErrDuplicateInterest) {
		t.Fatalf("expected ErrDuplicateInterest, got %v", err)
	}
	// same user, different ride is fine
	other := models.Interest{RideID: "r2", UserID: "u1", Status: "interested"}
	if err := store.CreateInterest(ctx, &other); err != nil {
		t.Fatalf("different ride: %v", err)
	}
}

func TestCancelRideCascadesInterests(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	ride := models.RideListing{ID: "r1", UserID: "d1", Status: models.StatusActive}
	if err := store.CreateRide(ctx, &ride); err != nil {
		t.Fatal(err)
	}
	for _, u := range []string{"u1", "u2"} {
		if err := store.CreateInterest(ctx, &models.Interest{RideID: "r1", UserID: u}); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.CreateInterest(ctx, &models.Interest{RideID: "r2", UserID: "u1"}); err != nil {
		t.Fatal(err)
	}

	if err := store.CancelRide(ctx, "r1"); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetRide(ctx, "r1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.StatusCancelled {
		t.Fatalf("expected cancelled status, got %s", got.Status)
	}
	if n, _ := store.CountFor(ctx, "r1"); n != 0 {
		t.Fatalf("expected interests removed with the ride, found %d", n)
	}
	// interests in other rides are untouched
	if n, _ := store.CountFor(ctx, "r2"); n != 1 {
		t.Fatalf("unrelated interest lost, count=%d", n)
	}
}

func TestCancelRideNotFound(t *testing.T) {
	store := NewMemoryStore()
	if err := store.CancelRide(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOneActiveRoommateRequestPerUser(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first := models.RoommateRequest{ID: "q1", UserID: "u1", Status: models.StatusActive}
	if err := store.CreateRequest(ctx, &first); err != nil {
		t.Fatal(err)
	}
	second := models.RoommateRequest{ID: "q2", UserID: "u1", Status: models.StatusActive}
	if err := store.CreateRequest(ctx, &second); !errors.Is(err, ErrActiveRequestExists) {
		t.Fatalf("expected ErrActiveRequestExists, got %v", err)
	}

	// cancelling frees the slot
	if err := store.CancelRequest(ctx, "q1", "u1"); err != nil {
		t.Fatal(err)
	}
	if err := store.CreateRequest(ctx, &second); err != nil {
		t.Fatalf("expected create after cancel to succeed, got %v", err)
	}
}

func TestCancelRequestChecksOwner(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	req := models.RoommateRequest{ID: "q1", UserID: "u1", Status: models.StatusActive}
	if err := store.CreateRequest(ctx, &req); err != nil {
		t.Fatal(err)
	}
	if err := store.CancelRequest(ctx, "q1", "intruder"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for wrong owner, got %v", err)
	}
}

func TestFindRidesFilter(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	rides := []models.RideListing{
		{ID: "a", UserID: "d1", StartingFrom: "Boulder, Colorado 80301", GoingTo: "Denver, Colorado 80202",
			TravelDate: "2026-09-01", SeatsRemaining: 2, Status: models.StatusActive, CreatedAt: base},
		{ID: "b", UserID: "d2", StartingFrom: "Boulder, Colorado 80302", GoingTo: "Denver, Colorado 80202",
			TravelDate: "2026-09-01", SeatsRemaining: 0, Status: models.StatusActive, CreatedAt: base.Add(time.Minute)},
		{ID: "c", UserID: "d3", StartingFrom: "Boulder, Colorado 80301", GoingTo: "Denver, Colorado 80202",
			TravelDate: "2026-09-02", SeatsRemaining: 3, Status: models.StatusActive, CreatedAt: base.Add(2 * time.Minute)},
		{ID: "d", UserID: "d4", StartingFrom: "Boulder, Colorado 80301", GoingTo: "Denver, Colorado 80202",
			TravelDate: "2026-09-01", SeatsRemaining: 1, Status: models.StatusCancelled, CreatedAt: base.Add(3 * time.Minute)},
	}
	for i := range rides {
		if err := store.CreateRide(ctx, &rides[i]); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.FindRides(ctx, RideFilter{
		Status:            models.StatusActive,
		TravelDate:        "2026-09-01",
		MinSeatsRemaining: 1,
		StartingFromIn:    []string{"Boulder, Colorado 80301", "Boulder, Colorado 80302"},
	})
	if err != nil {
		t.Fatal(err)
	}
	// b has no seats, c is another day, d is cancelled
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected only ride a, got %+v", got)
	}
}

func TestFindSubleasesDateWindow(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	subs := []models.SubleaseListing{
		{ID: "covers", Location: "Boulder, Colorado 80301", StartDate: "2026-05-15", EndDate: "2026-09-15",
			MonthlyRent: 800, Status: models.StatusActive},
		{ID: "late", Location: "Boulder, Colorado 80301", StartDate: "2026-07-01", EndDate: "2026-09-15",
			MonthlyRent: 800, Status: models.StatusActive},
		{ID: "short", Location: "Boulder, Colorado 80301", StartDate: "2026-05-15", EndDate: "2026-07-01",
			MonthlyRent: 800, Status: models.StatusActive},
	}
	for i := range subs {
		if err := store.CreateSublease(ctx, &subs[i]); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.FindSubleases(ctx, SubleaseFilter{
		Status:           models.StatusActive,
		StartsOnOrBefore: "2026-06-01",
		EndsOnOrAfter:    "2026-08-31",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "covers" {
		t.Fatalf("expected only the covering listing, got %+v", got)
	}
}

func TestNotificationsLifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		n := models.Notification{
			UserID:    "u1",
			Type:      models.NotifyRideInterest,
			Title:     "New interest in your ride",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.CreateNotification(ctx, &n); err != nil {
			t.Fatal(err)
		}
	}

	items, total, err := store.ListNotifications(ctx, "u1", 1, 2, false)
	if err != nil {
		t.Fatal(err)
	}
	if total != 5 || len(items) != 2 {
		t.Fatalf("expected total 5 page of 2, got total=%d len=%d", total, len(items))
	}
	// newest first
	if !items[0].CreatedAt.After(items[1].CreatedAt) {
		t.Fatalf("expected newest first, got %v then %v", items[0].CreatedAt, items[1].CreatedAt)
	}

	if n, _ := store.UnreadCount(ctx, "u1"); n != 5 {
		t.Fatalf("expected 5 unread, got %d", n)
	}
	if err := store.MarkRead(ctx, items[0].ID, "u1"); err != nil {
		t.Fatal(err)
	}
	if n, _ := store.UnreadCount(ctx, "u1"); n != 4 {
		t.Fatalf("expected 4 unread after MarkRead, got %d", n)
	}

	unread, total, err := store.ListNotifications(ctx, "u1", 1, 10, true)
	if err != nil {
		t.Fatal(err)
	}
	if total != 4 || len(unread) != 4 {
		t.Fatalf("unread filter wrong: total=%d len=%d", total, len(unread))
	}

	if err := store.MarkAllRead(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	if n, _ := store.UnreadCount(ctx, "u1"); n != 0 {
		t.Fatalf("expected 0 unread after MarkAllRead, got %d", n)
	}

	if err := store.MarkRead(ctx, items[0].ID, "someone-else"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign notification, got %v", err)
	}
}
