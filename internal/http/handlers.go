package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/campus-match/internal/config"
	"github.com/example/campus-match/internal/location"
	"github.com/example/campus-match/internal/logging"
	"github.com/example/campus-match/internal/matcher"
	"github.com/example/campus-match/internal/models"
	"github.com/example/campus-match/internal/notify"
	"github.com/example/campus-match/internal/payments"
	"github.com/example/campus-match/internal/storage"
)

// Store is everything the API needs from persistence. Both MemoryStore
// and PostgresStore satisfy it.
type Store interface {
	storage.RideStore
	storage.SubleaseStore
	storage.RoommateStore
	storage.LocationStore
	storage.InterestRegistry
	storage.NotificationStore
	storage.UserDirectory
}

type Server struct {
	Store    Store
	Matcher  *matcher.Service
	Resolver *location.Resolver
	Notifier *notify.Service
	Payments *payments.StripeClient
	WSReg    *notify.WSRegistry

	cfg    config.ServerConfig
	logger *slog.Logger
	mux    *mux.Router
}

// NewServerFromEnv wires the full service from environment configuration
// with sensible fallbacks: in-memory store without PG_DSN, local variant
// cache without REDIS_ADDR, direct notification persistence without
// KAFKA_BROKERS.
func NewServerFromEnv() (*Server, error) {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return nil, err
	}
	return NewServer(cfg, logging.NewLogger(cfg.LogLevel))
}

func NewServer(cfg config.ServerConfig, logger *slog.Logger) (*Server, error) {
	var store Store
	if cfg.PGDSN != "" {
		ps, err := storage.NewPostgresStore(cfg.PGDSN)
		if err != nil {
			return nil, err
		}
		store = ps
	} else {
		store = storage.NewMemoryStore()
	}

	var cache location.Cache
	if cfg.RedisAddr != "" {
		cache = location.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.LocationCacheTTL)
	} else {
		cache = location.NewMemoryCache(cfg.LocationCacheTTL)
	}
	resolver := location.NewResolver(store, cache, logging.ForComponent(logger, "location"))

	weights := matcher.DefaultWeights()
	if cfg.CalibrationPath != "" {
		w, err := matcher.LoadCalibration(cfg.CalibrationPath)
		if err != nil {
			logger.Warn("calibration load failed, using defaults", "path", cfg.CalibrationPath, "error", err)
		} else {
			weights = w
		}
	}

	m := &matcher.Service{
		Rides:     store,
		Subleases: store,
		Roommates: store,
		Interests: store,
		Users:     store,
		Resolver:  resolver,
		Weights:   weights,
		MinScore:  cfg.MinScore,
		PerPage:   cfg.DefaultPerPage,
		Logger:    logging.ForComponent(logger, "matcher"),
	}

	wsreg := notify.NewWSRegistry()
	notifier := &notify.Service{
		Store:  store,
		WS:     wsreg,
		Logger: logging.ForComponent(logger, "notify"),
	}
	if len(cfg.KafkaBrokers) > 0 {
		notifier.Producer = notify.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	}
	if cfg.WebhookEndpoint != "" {
		notifier.Webhook = notify.NewWebhookSender(cfg.WebhookEndpoint, cfg.WebhookKey)
	}

	s := &Server{
		Store:    store,
		Matcher:  m,
		Resolver: resolver,
		Notifier: notifier,
		Payments: payments.NewStripeClient(cfg.StripeAPIKey),
		WSReg:    wsreg,
		cfg:      cfg,
		logger:   logger,
		mux:      mux.NewRouter(),
	}
	s.registerMiddleware()
	s.routes()
	return s, nil
}

func (s *Server) Config() config.ServerConfig { return s.cfg }

func (s *Server) routes() {
	api := s.mux.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/rides/search", s.handleRideSearch).Methods("POST")
	api.HandleFunc("/rides", s.handleRideCreate).Methods("POST")
	api.HandleFunc("/rides/mine", s.handleRideMine).Methods("GET")
	api.HandleFunc("/rides/interested", s.handleRideInterested).Methods("GET")
	api.HandleFunc("/rides/{id}", s.handleRideUpdate).Methods("PUT")
	api.HandleFunc("/rides/{id}", s.handleRideCancel).Methods("DELETE")
	api.HandleFunc("/rides/{id}/interest", s.handleInterestCreate).Methods("POST")
	api.HandleFunc("/rides/{id}/interest", s.handleInterestDelete).Methods("DELETE")
	api.HandleFunc("/rides/{id}/interested-users", s.handleInterestedUsers).Methods("GET")

	api.HandleFunc("/subleases/search", s.handleSubleaseSearch).Methods("POST")
	api.HandleFunc("/subleases", s.handleSubleaseCreate).Methods("POST")
	api.HandleFunc("/subleases/mine", s.handleSubleaseMine).Methods("GET")
	api.HandleFunc("/subleases/{id}", s.handleSubleaseDelete).Methods("DELETE")

	api.HandleFunc("/roommates/search", s.handleRoommateSearch).Methods("POST")
	api.HandleFunc("/roommates", s.handleRoommateCreate).Methods("POST")
	api.HandleFunc("/roommates/mine", s.handleRoommateMine).Methods("GET")
	api.HandleFunc("/roommates/{id}", s.handleRoommateUpdate).Methods("PUT")
	api.HandleFunc("/roommates/{id}", s.handleRoommateCancel).Methods("DELETE")

	api.HandleFunc("/locations", s.handleLocationList).Methods("GET")
	api.HandleFunc("/locations/search", s.handleLocationSearch).Methods("GET")

	api.HandleFunc("/notifications", s.handleNotificationList).Methods("GET")
	api.HandleFunc("/notifications/unread-count", s.handleUnreadCount).Methods("GET")
	api.HandleFunc("/notifications/read-all", s.handleMarkAllRead).Methods("POST")
	api.HandleFunc("/notifications/{id}/read", s.handleMarkRead).Methods("POST")
	api.HandleFunc("/notifications/{id}", s.handleNotificationDelete).Methods("DELETE")

	s.mux.HandleFunc("/ws/{user_id}", s.handleWS)
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")
	s.mux.Handle("/metrics", promhttp.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

// --- rides ---

func (s *Server) handleRideSearch(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var c models.RideCriteria
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !isValidDate(c.TravelDate) {
		writeError(w, http.StatusBadRequest, "travel_date must be YYYY-MM-DD")
		return
	}
	if (c.PreferredStartTime == "") != (c.PreferredEndTime == "") {
		writeError(w, http.StatusBadRequest, "preferred times must be given as a pair")
		return
	}
	if c.HasTimePreference() && !matcher.IsValidRange(c.PreferredStartTime, c.PreferredEndTime) {
		writeError(w, http.StatusBadRequest, "preferred times must be HH:MM with start before end")
		return
	}
	c.SearcherID = userID

	res, err := s.Matcher.SearchRides(r.Context(), c, pageRequest(r))
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRideCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var ride models.RideListing
	if err := json.NewDecoder(r.Body).Decode(&ride); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if ride.StartingFrom == "" || ride.GoingTo == "" {
		writeError(w, http.StatusBadRequest, "starting_from and going_to are required")
		return
	}
	if !isValidDate(ride.TravelDate) {
		writeError(w, http.StatusBadRequest, "travel_date must be YYYY-MM-DD")
		return
	}
	if !matcher.IsValidRange(ride.DepartureStartTime, ride.DepartureEndTime) {
		writeError(w, http.StatusBadRequest, "departure times must be HH:MM with start before end")
		return
	}
	if ride.AvailableSeats < 1 {
		writeError(w, http.StatusBadRequest, "available_seats must be at least 1")
		return
	}

	now := time.Now()
	ride.ID = storage.NewID()
	ride.UserID = userID
	ride.SeatsRemaining = ride.AvailableSeats
	ride.Status = models.StatusActive
	ride.CreatedAt = now
	ride.UpdatedAt = now

	if err := s.Store.CreateRide(r.Context(), &ride); err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ride)
}

func (s *Server) handleRideMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	rides, err := s.Store.ListUserRides(r.Context(), userID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rides": rides})
}

// handleRideInterested lists the rides the caller has raised a hand for.
func (s *Server) handleRideInterested(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	interests, err := s.Store.ListForUser(r.Context(), userID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	rides := make([]models.RideListing, 0, len(interests))
	for _, in := range interests {
		ride, err := s.Store.GetRide(r.Context(), in.RideID)
		if err != nil {
			continue
		}
		rides = append(rides, *ride)
	}
	writeJSON(w, http.StatusOK, map[string]any{"rides": rides})
}

func (s *Server) handleRideUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	ride, ok := s.ownedRide(w, r, userID)
	if !ok {
		return
	}
	var in models.RideListing
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.TravelDate != "" && !isValidDate(in.TravelDate) {
		writeError(w, http.StatusBadRequest, "travel_date must be YYYY-MM-DD")
		return
	}
	if in.DepartureStartTime != "" || in.DepartureEndTime != "" {
		if !matcher.IsValidRange(in.DepartureStartTime, in.DepartureEndTime) {
			writeError(w, http.StatusBadRequest, "departure times must be HH:MM with start before end")
			return
		}
		ride.DepartureStartTime = in.DepartureStartTime
		ride.DepartureEndTime = in.DepartureEndTime
	}
	if in.StartingFrom != "" {
		ride.StartingFrom = in.StartingFrom
	}
	if in.GoingTo != "" {
		ride.GoingTo = in.GoingTo
	}
	if in.TravelDate != "" {
		ride.TravelDate = in.TravelDate
	}
	if in.AvailableSeats > 0 {
		taken := ride.AvailableSeats - ride.SeatsRemaining
		if in.AvailableSeats < taken {
			writeError(w, http.StatusBadRequest, "available_seats below seats already taken")
			return
		}
		ride.AvailableSeats = in.AvailableSeats
		ride.SeatsRemaining = in.AvailableSeats - taken
	}
	if in.SuggestedContribution > 0 {
		ride.SuggestedContribution = in.SuggestedContribution
	}
	ride.UpdatedAt = time.Now()

	if err := s.Store.UpdateRide(r.Context(), ride); err != nil {
		s.serverError(w, r, err)
		return
	}
	if recipients := s.interestedUserIDs(r, ride.ID); len(recipients) > 0 {
		s.Notifier.Notify(r.Context(), notify.RideUpdateEvent(*ride, recipients))
	}
	writeJSON(w, http.StatusOK, ride)
}

func (s *Server) handleRideCancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	ride, ok := s.ownedRide(w, r, userID)
	if !ok {
		return
	}

	// Holds are released before the cascade removes the interest records.
	interests, err := s.Store.ListForRide(r.Context(), ride.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	recipients := make([]string, 0, len(interests))
	for _, in := range interests {
		recipients = append(recipients, in.UserID)
		if err := s.Payments.Release(r.Context(), in.PaymentHoldID); err != nil {
			s.logger.Warn("releasing hold failed", "ride_id", ride.ID, "user_id", in.UserID, "error", err)
		}
	}

	if err := s.Store.CancelRide(r.Context(), ride.ID); err != nil {
		s.serverError(w, r, err)
		return
	}
	if len(recipients) > 0 {
		s.Notifier.Notify(r.Context(), notify.RideCancelledEvent(*ride, recipients))
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": models.StatusCancelled})
}

// --- ride interest ---

func (s *Server) handleInterestCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	ride, ok := s.activeRide(w, r)
	if !ok {
		return
	}
	if ride.UserID == userID {
		writeError(w, http.StatusBadRequest, "cannot express interest in your own ride")
		return
	}

	holdID, err := s.Payments.Hold(r.Context(), ride.SuggestedContribution, ride.ID, userID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	in := models.Interest{
		RideID:        ride.ID,
		UserID:        userID,
		Status:        "interested",
		PaymentHoldID: holdID,
		CreatedAt:     time.Now(),
	}
	if err := s.Store.CreateInterest(r.Context(), &in); err != nil {
		if relErr := s.Payments.Release(r.Context(), holdID); relErr != nil {
			s.logger.Warn("releasing hold failed", "ride_id", ride.ID, "user_id", userID, "error", relErr)
		}
		if errors.Is(err, storage.ErrDuplicateInterest) {
			writeError(w, http.StatusConflict, "interest already expressed")
			return
		}
		s.serverError(w, r, err)
		return
	}

	s.Notifier.Notify(r.Context(), notify.RideInterestEvent(*ride, userID, s.contactName(r, userID)))
	writeJSON(w, http.StatusCreated, in)
}

func (s *Server) handleInterestDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	rideID := mux.Vars(r)["id"]
	in, err := s.Store.GetInterest(r.Context(), rideID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "interest not found")
			return
		}
		s.serverError(w, r, err)
		return
	}
	if err := s.Payments.Release(r.Context(), in.PaymentHoldID); err != nil {
		s.logger.Warn("releasing hold failed", "ride_id", rideID, "user_id", userID, "error", err)
	}
	if err := s.Store.DeleteInterest(r.Context(), rideID, userID); err != nil {
		s.serverError(w, r, err)
		return
	}
	if ride, err := s.Store.GetRide(r.Context(), rideID); err == nil {
		s.Notifier.Notify(r.Context(), notify.RideInterestRemovedEvent(*ride, userID, s.contactName(r, userID)))
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleInterestedUsers shows a poster who raised a hand, with contact
// details. Only the poster may see the list.
func (s *Server) handleInterestedUsers(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	ride, ok := s.ownedRide(w, r, userID)
	if !ok {
		return
	}
	interests, err := s.Store.ListForRide(r.Context(), ride.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	type interestedUser struct {
		UserID       string              `json:"user_id"`
		Contact      *models.ContactCard `json:"contact,omitempty"`
		InterestedAt time.Time           `json:"interested_at"`
	}
	users := make([]interestedUser, 0, len(interests))
	for _, in := range interests {
		iu := interestedUser{UserID: in.UserID, InterestedAt: in.CreatedAt}
		if contact, err := s.Store.Contact(r.Context(), in.UserID); err == nil {
			iu.Contact = contact
		}
		users = append(users, iu)
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users, "count": len(users)})
}

// --- subleases ---

func (s *Server) handleSubleaseSearch(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.userID(w, r); !ok {
		return
	}
	var c models.SubleaseCriteria
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !isValidDate(c.StartDate) || !isValidDate(c.EndDate) {
		writeError(w, http.StatusBadRequest, "start_date and end_date must be YYYY-MM-DD")
		return
	}
	if c.EndDate < c.StartDate {
		writeError(w, http.StatusBadRequest, "end_date before start_date")
		return
	}
	for _, t := range []string{c.MoveInTime, c.MoveOutTime} {
		if t != "" && !matcher.IsValidTime(t) {
			writeError(w, http.StatusBadRequest, "move times must be HH:MM")
			return
		}
	}

	res, err := s.Matcher.SearchSubleases(r.Context(), c, pageRequest(r))
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSubleaseCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var sub models.SubleaseListing
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if sub.Location == "" {
		writeError(w, http.StatusBadRequest, "location is required")
		return
	}
	if !isValidDate(sub.StartDate) || !isValidDate(sub.EndDate) {
		writeError(w, http.StatusBadRequest, "start_date and end_date must be YYYY-MM-DD")
		return
	}
	if sub.EndDate < sub.StartDate {
		writeError(w, http.StatusBadRequest, "end_date before start_date")
		return
	}
	if sub.MonthlyRent <= 0 {
		writeError(w, http.StatusBadRequest, "monthly_rent must be positive")
		return
	}
	for _, t := range []string{sub.MoveInTime, sub.MoveOutTime} {
		if t != "" && !matcher.IsValidTime(t) {
			writeError(w, http.StatusBadRequest, "move times must be HH:MM")
			return
		}
	}

	now := time.Now()
	sub.ID = storage.NewID()
	sub.UserID = userID
	sub.Status = models.StatusActive
	sub.CreatedAt = now
	sub.UpdatedAt = now

	if err := s.Store.CreateSublease(r.Context(), &sub); err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleSubleaseMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	subs, err := s.Store.ListUserSubleases(r.Context(), userID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subleases": subs})
}

func (s *Server) handleSubleaseDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	sub, err := s.Store.GetSublease(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "sublease not found")
			return
		}
		s.serverError(w, r, err)
		return
	}
	if sub.UserID != userID {
		writeError(w, http.StatusForbidden, "not your sublease")
		return
	}
	if err := s.Store.DeleteSublease(r.Context(), id); err != nil {
		s.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- roommates ---

func (s *Server) handleRoommateSearch(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	res, err := s.Matcher.SearchRoommates(r.Context(), userID, pageRequest(r))
	if err != nil {
		if errors.Is(err, matcher.ErrNoActiveRequest) {
			writeError(w, http.StatusNotFound, "create a roommate request before searching")
			return
		}
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRoommateCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req models.RoommateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg, ok := validateRoommateRequest(req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	now := time.Now()
	req.ID = storage.NewID()
	req.UserID = userID
	req.Status = models.StatusActive
	req.CreatedAt = now
	req.UpdatedAt = now

	if err := s.Store.CreateRequest(r.Context(), &req); err != nil {
		if errors.Is(err, storage.ErrActiveRequestExists) {
			writeError(w, http.StatusConflict, "an active roommate request already exists")
			return
		}
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (s *Server) handleRoommateMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	req, err := s.Store.GetActiveForUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no active roommate request")
			return
		}
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleRoommateUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	own, err := s.Store.GetActiveForUser(r.Context(), userID)
	if err != nil || own.ID != id {
		writeError(w, http.StatusNotFound, "roommate request not found")
		return
	}
	var req models.RoommateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg, ok := validateRoommateRequest(req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	req.ID = own.ID
	req.UserID = userID
	req.Status = own.Status
	req.CreatedAt = own.CreatedAt
	req.UpdatedAt = time.Now()

	if err := s.Store.UpdateRequest(r.Context(), &req); err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleRoommateCancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	if err := s.Store.CancelRequest(r.Context(), id, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "roommate request not found")
			return
		}
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": models.StatusCancelled})
}

// --- locations ---

func (s *Server) handleLocationList(w http.ResponseWriter, r *http.Request) {
	limit := intQuery(r, "limit", 100)
	recs, err := s.Store.ListAll(r.Context(), limit)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	names := make([]string, 0, len(recs))
	for _, rec := range recs {
		names = append(names, rec.DisplayName())
	}
	writeJSON(w, http.StatusOK, map[string]any{"locations": names})
}

func (s *Server) handleLocationSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	recs, err := s.Resolver.Search(r.Context(), q, intQuery(r, "limit", 20))
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"locations": recs})
}

// --- notifications ---

func (s *Server) handleNotificationList(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	pr := pageRequest(r)
	if pr.Page < 1 {
		pr.Page = 1
	}
	perPage := pr.PerPage
	if perPage <= 0 {
		perPage = s.cfg.DefaultPerPage
	}
	unreadOnly := r.URL.Query().Get("unread_only") == "true"

	items, total, err := s.Store.ListNotifications(r.Context(), userID, pr.Page, perPage, unreadOnly)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": items,
		"pagination": matcher.Page{
			Page:       pr.Page,
			PerPage:    perPage,
			Total:      total,
			TotalPages: (total + perPage - 1) / perPage,
		},
	})
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	count, err := s.Store.UnreadCount(r.Context(), userID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"unread_count": count})
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	if err := s.Store.MarkRead(r.Context(), mux.Vars(r)["id"], userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "notification not found")
			return
		}
		s.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	if err := s.Store.MarkAllRead(r.Context(), userID); err != nil {
		s.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNotificationDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	if err := s.Store.DeleteNotification(r.Context(), mux.Vars(r)["id"], userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "notification not found")
			return
		}
		s.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- websocket ---

var upgrader = websocket.Upgrader{}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "upgrade failed", http.StatusBadRequest)
		return
	}
	s.WSReg.Add(userID, conn)
}

// --- helpers ---

// userID reads the caller identity set by the auth gateway in front of
// this service.
func (s *Server) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get("X-User-ID")
	if id == "" {
		writeError(w, http.StatusUnauthorized, "missing X-User-ID")
		return "", false
	}
	return id, true
}

func (s *Server) ownedRide(w http.ResponseWriter, r *http.Request, userID string) (*models.RideListing, bool) {
	ride, ok := s.activeRide(w, r)
	if !ok {
		return nil, false
	}
	if ride.UserID != userID {
		writeError(w, http.StatusForbidden, "not your ride")
		return nil, false
	}
	return ride, true
}

func (s *Server) activeRide(w http.ResponseWriter, r *http.Request) (*models.RideListing, bool) {
	ride, err := s.Store.GetRide(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "ride not found")
			return nil, false
		}
		s.serverError(w, r, err)
		return nil, false
	}
	if ride.Status != models.StatusActive {
		writeError(w, http.StatusGone, "ride is no longer active")
		return nil, false
	}
	return ride, true
}

func (s *Server) interestedUserIDs(r *http.Request, rideID string) []string {
	interests, err := s.Store.ListForRide(r.Context(), rideID)
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(interests))
	for _, in := range interests {
		ids = append(ids, in.UserID)
	}
	return ids
}

func (s *Server) contactName(r *http.Request, userID string) string {
	if contact, err := s.Store.Contact(r.Context(), userID); err == nil && contact.Name != "" {
		return contact.Name
	}
	return "A rider"
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func validateRoommateRequest(req models.RoommateRequest) (string, bool) {
	if req.RoomPreference == "" || req.BathroomPreference == "" {
		return "room_preference and bathroom_preference are required", false
	}
	switch req.DietaryPreference {
	case models.DietPureVegetarian, models.DietVegetarian, models.DietEggetarian, models.DietOkayNonVeg:
	default:
		return "dietary_preference is not a recognized value", false
	}
	if req.RentBudget.Min < 0 || req.RentBudget.Max < req.RentBudget.Min {
		return "rent_budget must satisfy 0 <= min <= max", false
	}
	if l := req.Lifestyle.CleanlinessLevel; l < 1 || l > 5 {
		return "cleanliness_level must be between 1 and 5", false
	}
	return "", true
}

func isValidDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func pageRequest(r *http.Request) matcher.PageRequest {
	return matcher.PageRequest{
		Page:    intQuery(r, "page", 0),
		PerPage: intQuery(r, "per_page", 0),
	}
}

func intQuery(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
