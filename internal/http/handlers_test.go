package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/campus-match/internal/config"
	"github.com/example/campus-match/internal/logging"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.ServerConfig{DefaultPerPage: 10, MinScore: 0.1}
	srv, err := NewServer(cfg, logging.NewLogger("error"))
	if err != nil {
		t.Fatalf("building server: %v", err)
	}
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func validRide() map[string]any {
	return map[string]any{
		"starting_from":        "Boulder, Colorado 80301",
		"going_to":             "Denver, Colorado 80202",
		"travel_date":          "2026-09-06",
		"departure_start_time": "09:00",
		"departure_end_time":   "11:00",
		"available_seats":      3,
	}
}

func TestMissingUserIDUnauthorized(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/rides/search", "", map[string]any{"travel_date": "2026-09-06"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRideCreateValidation(t *testing.T) {
	srv := newTestServer(t)

	ride := validRide()
	ride["departure_start_time"] = "9am"
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/rides", "u1", ride)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad time should be rejected, got %d", rec.Code)
	}

	ride = validRide()
	ride["departure_start_time"] = "11:00"
	ride["departure_end_time"] = "09:00"
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/rides", "u1", ride)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("inverted range should be rejected, got %d", rec.Code)
	}

	ride = validRide()
	ride["travel_date"] = "06/09/2026"
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/rides", "u1", ride)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad date should be rejected, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/rides", "u1", validRide())
	if rec.Code != http.StatusCreated {
		t.Fatalf("valid ride should be created, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestInterestFlow(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/rides", "driver1", validRide())
	if rec.Code != http.StatusCreated {
		t.Fatalf("creating ride: %d", rec.Code)
	}
	var ride struct {
		ID string `json:"id"`
	}
	decode(t, rec, &ride)

	// the poster cannot raise a hand for their own ride
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/rides/"+ride.ID+"/interest", "driver1", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("own-ride interest should be rejected, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/rides/"+ride.ID+"/interest", "rider1", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/rides/"+ride.ID+"/interest", "rider1", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate interest should conflict, got %d", rec.Code)
	}

	// only the poster sees the interested list
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/rides/"+ride.ID+"/interested-users", "rider1", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-owner should be forbidden, got %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/rides/"+ride.ID+"/interested-users", "driver1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner list failed: %d", rec.Code)
	}
	var list struct {
		Count int `json:"count"`
	}
	decode(t, rec, &list)
	if list.Count != 1 {
		t.Fatalf("expected 1 interested user, got %d", list.Count)
	}

	// the poster got notified
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/notifications/unread-count", "driver1", nil)
	var unread struct {
		UnreadCount int `json:"unread_count"`
	}
	decode(t, rec, &unread)
	if unread.UnreadCount != 1 {
		t.Fatalf("expected 1 unread notification, got %d", unread.UnreadCount)
	}

	// withdraw
	rec = doJSON(t, srv, http.MethodDelete, "/api/v1/rides/"+ride.ID+"/interest", "rider1", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("withdraw failed: %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodDelete, "/api/v1/rides/"+ride.ID+"/interest", "rider1", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second withdraw should 404, got %d", rec.Code)
	}
}

func TestRideSearchEndpoint(t *testing.T) {
	srv := newTestServer(t)

	if rec := doJSON(t, srv, http.MethodPost, "/api/v1/rides", "driver1", validRide()); rec.Code != http.StatusCreated {
		t.Fatalf("creating ride: %d", rec.Code)
	}

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/rides/search", "u1", map[string]any{
		"travel_date":   "2026-09-06",
		"starting_from": "Boulder, Colorado 80301",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("search failed: %d: %s", rec.Code, rec.Body.String())
	}
	var res struct {
		Rides []struct {
			Ride struct {
				ID string `json:"id"`
			} `json:"ride"`
			Score float64 `json:"match_score"`
		} `json:"rides"`
		Page struct {
			Page  int `json:"page"`
			Total int `json:"total"`
		} `json:"pagination"`
	}
	decode(t, rec, &res)
	if len(res.Rides) != 1 || res.Rides[0].Score <= 0 {
		t.Fatalf("expected one scored ride, got %+v", res)
	}
	if res.Page.Page != 1 || res.Page.Total != 1 {
		t.Fatalf("unexpected pagination: %+v", res.Page)
	}

	// a lone time bound is rejected at the boundary
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/rides/search", "u1", map[string]any{
		"travel_date":          "2026-09-06",
		"preferred_start_time": "09:00",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("half a time window should be rejected, got %d", rec.Code)
	}
}

func TestRoommateSearchRequiresRequest(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/roommates/search", "u1", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without an active request, got %d", rec.Code)
	}
}

func TestRoommateCreateConflict(t *testing.T) {
	srv := newTestServer(t)
	req := map[string]any{
		"room_preference":     "shared",
		"bathroom_preference": "shared",
		"dietary_preference":  "vegetarian",
		"rent_budget":         map[string]any{"min": 500, "max": 800},
		"lifestyle":           map[string]any{"cleanliness_level": 4},
	}
	if rec := doJSON(t, srv, http.MethodPost, "/api/v1/roommates", "u1", req); rec.Code != http.StatusCreated {
		t.Fatalf("creating request: %d: %s", rec.Code, rec.Body.String())
	}
	if rec := doJSON(t, srv, http.MethodPost, "/api/v1/roommates", "u1", req); rec.Code != http.StatusConflict {
		t.Fatalf("second active request should conflict, got %d", rec.Code)
	}
}

func TestRideCancelNotifiesInterested(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/rides", "driver1", validRide())
	var ride struct {
		ID string `json:"id"`
	}
	decode(t, rec, &ride)

	if rec := doJSON(t, srv, http.MethodPost, "/api/v1/rides/"+ride.ID+"/interest", "rider1", nil); rec.Code != http.StatusCreated {
		t.Fatalf("interest failed: %d", rec.Code)
	}

	if rec := doJSON(t, srv, http.MethodDelete, "/api/v1/rides/"+ride.ID, "rider1", nil); rec.Code != http.StatusForbidden {
		t.Fatalf("non-owner cancel should be forbidden, got %d", rec.Code)
	}
	if rec := doJSON(t, srv, http.MethodDelete, "/api/v1/rides/"+ride.ID, "driver1", nil); rec.Code != http.StatusOK {
		t.Fatalf("owner cancel failed: %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/notifications?unread_only=true", "rider1", nil)
	var res struct {
		Notifications []struct {
			Type string `json:"type"`
		} `json:"notifications"`
	}
	decode(t, rec, &res)
	if len(res.Notifications) != 1 || res.Notifications[0].Type != "ride_cancelled" {
		t.Fatalf("expected a cancellation notice, got %+v", res.Notifications)
	}

	// a cancelled ride no longer accepts interest
	if rec := doJSON(t, srv, http.MethodPost, "/api/v1/rides/"+ride.ID+"/interest", "rider2", nil); rec.Code != http.StatusGone {
		t.Fatalf("expected 410 for cancelled ride, got %d", rec.Code)
	}
}
