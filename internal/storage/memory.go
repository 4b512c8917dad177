package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/campus-match/internal/models"
)

// MemoryStore is a mutex-guarded in-memory implementation of every store
// contract. It backs local runs and is the test double for the search
// service.
type MemoryStore struct {
	mu            sync.RWMutex
	rides         map[string]models.RideListing
	subleases     map[string]models.SubleaseListing
	roommates     map[string]models.RoommateRequest
	locations     []models.LocationRecord
	interests     map[string]models.Interest // key rideID+"/"+userID
	notifications map[string]models.Notification
	contacts      map[string]models.ContactCard
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rides:         make(map[string]models.RideListing),
		subleases:     make(map[string]models.SubleaseListing),
		roommates:     make(map[string]models.RoommateRequest),
		interests:     make(map[string]models.Interest),
		notifications: make(map[string]models.Notification),
		contacts:      make(map[string]models.ContactCard),
	}
}

// --- RideStore ---

func (m *MemoryStore) CreateRide(_ context.Context, r *models.RideListing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = NewID()
	}
	m.rides[r.ID] = *r
	return nil
}

func (m *MemoryStore) GetRide(_ context.Context, id string) (*models.RideListing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rides[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *MemoryStore) UpdateRide(_ context.Context, r *models.RideListing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rides[r.ID]; !ok {
		return ErrNotFound
	}
	m.rides[r.ID] = *r
	return nil
}

func (m *MemoryStore) FindRides(_ context.Context, f RideFilter) ([]models.RideListing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.RideListing
	for _, r := range m.rides {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.TravelDate != "" && r.TravelDate != f.TravelDate {
			continue
		}
		if r.SeatsRemaining < f.MinSeatsRemaining {
			continue
		}
		if f.ExcludeUserID != "" && r.UserID == f.ExcludeUserID {
			continue
		}
		if len(f.StartingFromIn) > 0 && !contains(f.StartingFromIn, r.StartingFrom) {
			continue
		}
		if len(f.GoingToIn) > 0 && !contains(f.GoingToIn, r.GoingTo) {
			continue
		}
		out = append(out, r)
	}
	// map iteration order is random; creation order keeps searches stable
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) ListUserRides(_ context.Context, userID string) ([]models.RideListing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.RideListing
	for _, r := range m.rides {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) CancelRide(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return ErrNotFound
	}
	r.Status = models.StatusCancelled
	r.UpdatedAt = time.Now()
	m.rides[id] = r
	for k, in := range m.interests {
		if in.RideID == id {
			delete(m.interests, k)
		}
	}
	return nil
}

// --- SubleaseStore ---

func (m *MemoryStore) CreateSublease(_ context.Context, s *models.SubleaseListing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = NewID()
	}
	m.subleases[s.ID] = *s
	return nil
}

func (m *MemoryStore) GetSublease(_ context.Context, id string) (*models.SubleaseListing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.subleases[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) UpdateSublease(_ context.Context, s *models.SubleaseListing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subleases[s.ID]; !ok {
		return ErrNotFound
	}
	m.subleases[s.ID] = *s
	return nil
}

func (m *MemoryStore) FindSubleases(_ context.Context, f SubleaseFilter) ([]models.SubleaseListing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.SubleaseListing
	for _, s := range m.subleases {
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		// YYYY-MM-DD strings compare correctly as text
		if f.StartsOnOrBefore != "" && s.StartDate > f.StartsOnOrBefore {
			continue
		}
		if f.EndsOnOrAfter != "" && s.EndDate < f.EndsOnOrAfter {
			continue
		}
		if f.MaxRent > 0 && s.MonthlyRent > f.MaxRent {
			continue
		}
		if f.Location != "" && s.Location != f.Location {
			continue
		}
		if s.Bedrooms < f.MinBedrooms {
			continue
		}
		if s.Bathrooms < f.MinBathrooms {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) ListUserSubleases(_ context.Context, userID string) ([]models.SubleaseListing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.SubleaseListing
	for _, s := range m.subleases {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) DeleteSublease(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subleases[id]; !ok {
		return ErrNotFound
	}
	delete(m.subleases, id)
	return nil
}

// --- RoommateStore ---

func (m *MemoryStore) CreateRequest(_ context.Context, r *models.RoommateRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.roommates {
		if existing.UserID == r.UserID && existing.Status == models.StatusActive {
			return ErrActiveRequestExists
		}
	}
	if r.ID == "" {
		r.ID = NewID()
	}
	m.roommates[r.ID] = *r
	return nil
}

func (m *MemoryStore) GetActiveForUser(_ context.Context, userID string) (*models.RoommateRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.roommates {
		if r.UserID == userID && r.Status == models.StatusActive {
			req := r
			return &req, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) FindActiveExcluding(_ context.Context, userID string) ([]models.RoommateRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.RoommateRequest
	for _, r := range m.roommates {
		if r.Status == models.StatusActive && r.UserID != userID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) UpdateRequest(_ context.Context, r *models.RoommateRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.roommates[r.ID]; !ok {
		return ErrNotFound
	}
	m.roommates[r.ID] = *r
	return nil
}

func (m *MemoryStore) CancelRequest(_ context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.roommates[id]
	if !ok || r.UserID != userID {
		return ErrNotFound
	}
	r.Status = models.StatusCancelled
	r.UpdatedAt = time.Now()
	m.roommates[id] = r
	return nil
}

// --- LocationStore ---

func (m *MemoryStore) FindByCityState(_ context.Context, city, state string) ([]models.LocationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.LocationRecord
	for _, l := range m.locations {
		if strings.EqualFold(l.City, city) &&
			(strings.EqualFold(l.State, state) || strings.EqualFold(l.StateName, state)) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *MemoryStore) Search(_ context.Context, query string, limit int) ([]models.LocationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q := strings.ToLower(query)
	var out []models.LocationRecord
	for _, l := range m.locations {
		if strings.Contains(strings.ToLower(l.ZipCode), q) ||
			strings.Contains(strings.ToLower(l.City), q) ||
			strings.Contains(strings.ToLower(l.State), q) ||
			strings.Contains(strings.ToLower(l.StateName), q) {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].City != out[j].City {
			return out[i].City < out[j].City
		}
		return out[i].State < out[j].State
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) GetByZip(_ context.Context, zip string) (*models.LocationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.locations {
		if l.ZipCode == zip {
			rec := l
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) ListAll(_ context.Context, limit int) ([]models.LocationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.LocationRecord, len(m.locations))
	copy(out, m.locations)
	sort.SliceStable(out, func(i, j int) bool { return out[i].City < out[j].City })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) LoadLocations(_ context.Context, recs []models.LocationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations = append(m.locations, recs...)
	return nil
}

// --- InterestRegistry ---

func interestKey(rideID, userID string) string { return rideID + "/" + userID }

func (m *MemoryStore) Exists(_ context.Context, rideID, userID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.interests[interestKey(rideID, userID)]
	return ok, nil
}

func (m *MemoryStore) CreateInterest(_ context.Context, in *models.Interest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := interestKey(in.RideID, in.UserID)
	if _, ok := m.interests[k]; ok {
		return ErrDuplicateInterest
	}
	m.interests[k] = *in
	return nil
}

func (m *MemoryStore) GetInterest(_ context.Context, rideID, userID string) (*models.Interest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	in, ok := m.interests[interestKey(rideID, userID)]
	if !ok {
		return nil, ErrNotFound
	}
	return &in, nil
}

func (m *MemoryStore) CountFor(_ context.Context, rideID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, in := range m.interests {
		if in.RideID == rideID {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) ListForRide(_ context.Context, rideID string) ([]models.Interest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Interest
	for _, in := range m.interests {
		if in.RideID == rideID {
			out = append(out, in)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) ListForUser(_ context.Context, userID string) ([]models.Interest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Interest
	for _, in := range m.interests {
		if in.UserID == userID {
			out = append(out, in)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) DeleteInterest(_ context.Context, rideID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := interestKey(rideID, userID)
	if _, ok := m.interests[k]; !ok {
		return ErrNotFound
	}
	delete(m.interests, k)
	return nil
}

func (m *MemoryStore) DeleteAllFor(_ context.Context, rideID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, in := range m.interests {
		if in.RideID == rideID {
			delete(m.interests, k)
		}
	}
	return nil
}

// --- NotificationStore ---

func (m *MemoryStore) CreateNotification(_ context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.ID == "" {
		n.ID = NewID()
	}
	m.notifications[n.ID] = *n
	return nil
}

func (m *MemoryStore) ListNotifications(_ context.Context, userID string, page, perPage int, unreadOnly bool) ([]models.Notification, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var all []models.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		all = append(all, n)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	start := (page - 1) * perPage
	if start >= len(all) {
		return nil, len(all), nil
	}
	end := start + perPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (m *MemoryStore) UnreadCount(_ context.Context, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, notif := range m.notifications {
		if notif.UserID == userID && !notif.Read {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) MarkRead(_ context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}
	n.Read = true
	m.notifications[id] = n
	return nil
}

func (m *MemoryStore) MarkAllRead(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, n := range m.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			m.notifications[id] = n
		}
	}
	return nil
}

func (m *MemoryStore) DeleteNotification(_ context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}
	delete(m.notifications, id)
	return nil
}

// --- UserDirectory ---

// RegisterContact seeds contact info, mirroring the external user service.
func (m *MemoryStore) RegisterContact(userID string, c models.ContactCard) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contacts[userID] = c
}

func (m *MemoryStore) Contact(_ context.Context, userID string) (*models.ContactCard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.contacts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
