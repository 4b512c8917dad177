package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/example/campus-match/internal/models"
)

// PostgresStore implements every store contract over a single database.
// The (ride_id, user_id) primary key on interests backs
// ErrDuplicateInterest, and the partial unique index on active roommate
// requests backs ErrActiveRequestExists, so both invariants hold under
// concurrent writers.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

// DB exposes the handle for migrations.
func (p *PostgresStore) DB() *sql.DB { return p.db }

func (p *PostgresStore) Close() error { return p.db.Close() }

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// --- RideStore ---

func (p *PostgresStore) CreateRide(ctx context.Context, r *models.RideListing) error {
	if r.ID == "" {
		r.ID = NewID()
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO rides (id, user_id, starting_from, going_to, travel_date,
			departure_start_time, departure_end_time, available_seats,
			seats_remaining, suggested_contribution, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		r.ID, r.UserID, r.StartingFrom, r.GoingTo, r.TravelDate,
		r.DepartureStartTime, r.DepartureEndTime, r.AvailableSeats,
		r.SeatsRemaining, r.SuggestedContribution, r.Status, r.CreatedAt, r.UpdatedAt)
	return err
}

const rideColumns = `id, user_id, starting_from, going_to, travel_date,
	departure_start_time, departure_end_time, available_seats,
	seats_remaining, suggested_contribution, status, created_at, updated_at`

func scanRide(row interface{ Scan(...any) error }) (models.RideListing, error) {
	var r models.RideListing
	err := row.Scan(&r.ID, &r.UserID, &r.StartingFrom, &r.GoingTo, &r.TravelDate,
		&r.DepartureStartTime, &r.DepartureEndTime, &r.AvailableSeats,
		&r.SeatsRemaining, &r.SuggestedContribution, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (p *PostgresStore) GetRide(ctx context.Context, id string) (*models.RideListing, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+rideColumns+` FROM rides WHERE id = $1`, id)
	r, err := scanRide(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (p *PostgresStore) UpdateRide(ctx context.Context, r *models.RideListing) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE rides SET starting_from=$1, going_to=$2, travel_date=$3,
			departure_start_time=$4, departure_end_time=$5, available_seats=$6,
			seats_remaining=$7, suggested_contribution=$8, status=$9, updated_at=$10
		WHERE id=$11`,
		r.StartingFrom, r.GoingTo, r.TravelDate, r.DepartureStartTime,
		r.DepartureEndTime, r.AvailableSeats, r.SeatsRemaining,
		r.SuggestedContribution, r.Status, time.Now(), r.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (p *PostgresStore) FindRides(ctx context.Context, f RideFilter) ([]models.RideListing, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.TravelDate != "" {
		add("travel_date = $%d", f.TravelDate)
	}
	if f.MinSeatsRemaining > 0 {
		add("seats_remaining >= $%d", f.MinSeatsRemaining)
	}
	if f.ExcludeUserID != "" {
		add("user_id <> $%d", f.ExcludeUserID)
	}
	if len(f.StartingFromIn) > 0 {
		add("starting_from = ANY($%d)", pq.Array(f.StartingFromIn))
	}
	if len(f.GoingToIn) > 0 {
		add("going_to = ANY($%d)", pq.Array(f.GoingToIn))
	}

	q := `SELECT ` + rideColumns + ` FROM rides`
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY created_at`

	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.RideListing
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *PostgresStore) ListUserRides(ctx context.Context, userID string) ([]models.RideListing, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+rideColumns+` FROM rides WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.RideListing
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *PostgresStore) CancelRide(ctx context.Context, id string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE rides SET status=$1, updated_at=$2 WHERE id=$3`,
		models.StatusCancelled, time.Now(), id)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM interests WHERE ride_id = $1`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// --- SubleaseStore ---

const subleaseColumns = `id, user_id, location, address, monthly_rent,
	start_date, end_date, move_in_time, move_out_time, bedrooms, bathrooms,
	property_type, amenities, description, status, created_at, updated_at`

func scanSublease(row interface{ Scan(...any) error }) (models.SubleaseListing, error) {
	var s models.SubleaseListing
	err := row.Scan(&s.ID, &s.UserID, &s.Location, &s.Address, &s.MonthlyRent,
		&s.StartDate, &s.EndDate, &s.MoveInTime, &s.MoveOutTime, &s.Bedrooms,
		&s.Bathrooms, &s.PropertyType, pq.Array(&s.Amenities), &s.Description,
		&s.Status, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (p *PostgresStore) CreateSublease(ctx context.Context, s *models.SubleaseListing) error {
	if s.ID == "" {
		s.ID = NewID()
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO subleases (id, user_id, location, address, monthly_rent,
			start_date, end_date, move_in_time, move_out_time, bedrooms,
			bathrooms, property_type, amenities, description, status,
			created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		s.ID, s.UserID, s.Location, s.Address, s.MonthlyRent, s.StartDate,
		s.EndDate, s.MoveInTime, s.MoveOutTime, s.Bedrooms, s.Bathrooms,
		s.PropertyType, pq.Array(s.Amenities), s.Description, s.Status,
		s.CreatedAt, s.UpdatedAt)
	return err
}

func (p *PostgresStore) GetSublease(ctx context.Context, id string) (*models.SubleaseListing, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+subleaseColumns+` FROM subleases WHERE id = $1`, id)
	s, err := scanSublease(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (p *PostgresStore) UpdateSublease(ctx context.Context, s *models.SubleaseListing) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE subleases SET location=$1, address=$2, monthly_rent=$3,
			start_date=$4, end_date=$5, move_in_time=$6, move_out_time=$7,
			bedrooms=$8, bathrooms=$9, property_type=$10, amenities=$11,
			description=$12, status=$13, updated_at=$14
		WHERE id=$15`,
		s.Location, s.Address, s.MonthlyRent, s.StartDate, s.EndDate,
		s.MoveInTime, s.MoveOutTime, s.Bedrooms, s.Bathrooms, s.PropertyType,
		pq.Array(s.Amenities), s.Description, s.Status, time.Now(), s.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (p *PostgresStore) FindSubleases(ctx context.Context, f SubleaseFilter) ([]models.SubleaseListing, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.StartsOnOrBefore != "" {
		add("start_date <= $%d", f.StartsOnOrBefore)
	}
	if f.EndsOnOrAfter != "" {
		add("end_date >= $%d", f.EndsOnOrAfter)
	}
	if f.MaxRent > 0 {
		add("monthly_rent <= $%d", f.MaxRent)
	}
	if f.Location != "" {
		add("location = $%d", f.Location)
	}
	if f.MinBedrooms > 0 {
		add("bedrooms >= $%d", f.MinBedrooms)
	}
	if f.MinBathrooms > 0 {
		add("bathrooms >= $%d", f.MinBathrooms)
	}

	q := `SELECT ` + subleaseColumns + ` FROM subleases`
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY created_at`

	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SubleaseListing
	for rows.Next() {
		s, err := scanSublease(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *PostgresStore) ListUserSubleases(ctx context.Context, userID string) ([]models.SubleaseListing, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+subleaseColumns+` FROM subleases WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SubleaseListing
	for rows.Next() {
		s, err := scanSublease(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *PostgresStore) DeleteSublease(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM subleases WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// --- RoommateStore ---

const roommateColumns = `id, user_id, room_preference, bathroom_preference,
	dietary_preference, religion, caste, pet_friendly, rent_min, rent_max,
	cleanliness_level, sleep_schedule, guest_frequency, study_environment,
	smoking, alcohol, status, created_at, updated_at`

func scanRoommate(row interface{ Scan(...any) error }) (models.RoommateRequest, error) {
	var r models.RoommateRequest
	err := row.Scan(&r.ID, &r.UserID, &r.RoomPreference, &r.BathroomPreference,
		&r.DietaryPreference, &r.Religion, &r.Caste, &r.PetFriendly,
		&r.RentBudget.Min, &r.RentBudget.Max, &r.Lifestyle.CleanlinessLevel,
		&r.Lifestyle.SleepSchedule, &r.Lifestyle.GuestFrequency,
		&r.Lifestyle.StudyEnvironment, &r.Lifestyle.Smoking,
		&r.Lifestyle.Alcohol, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (p *PostgresStore) CreateRequest(ctx context.Context, r *models.RoommateRequest) error {
	if r.ID == "" {
		r.ID = NewID()
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO roommate_requests (id, user_id, room_preference,
			bathroom_preference, dietary_preference, religion, caste,
			pet_friendly, rent_min, rent_max, cleanliness_level,
			sleep_schedule, guest_frequency, study_environment, smoking,
			alcohol, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		r.ID, r.UserID, r.RoomPreference, r.BathroomPreference,
		r.DietaryPreference, r.Religion, r.Caste, r.PetFriendly,
		r.RentBudget.Min, r.RentBudget.Max, r.Lifestyle.CleanlinessLevel,
		r.Lifestyle.SleepSchedule, r.Lifestyle.GuestFrequency,
		r.Lifestyle.StudyEnvironment, r.Lifestyle.Smoking,
		r.Lifestyle.Alcohol, r.Status, r.CreatedAt, r.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrActiveRequestExists
	}
	return err
}

func (p *PostgresStore) GetActiveForUser(ctx context.Context, userID string) (*models.RoommateRequest, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+roommateColumns+` FROM roommate_requests WHERE user_id = $1 AND status = $2`,
		userID, models.StatusActive)
	r, err := scanRoommate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (p *PostgresStore) FindActiveExcluding(ctx context.Context, userID string) ([]models.RoommateRequest, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+roommateColumns+` FROM roommate_requests
		 WHERE status = $1 AND user_id <> $2 ORDER BY created_at`,
		models.StatusActive, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.RoommateRequest
	for rows.Next() {
		r, err := scanRoommate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *PostgresStore) UpdateRequest(ctx context.Context, r *models.RoommateRequest) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE roommate_requests SET room_preference=$1, bathroom_preference=$2,
			dietary_preference=$3, religion=$4, caste=$5, pet_friendly=$6,
			rent_min=$7, rent_max=$8, cleanliness_level=$9, sleep_schedule=$10,
			guest_frequency=$11, study_environment=$12, smoking=$13,
			alcohol=$14, status=$15, updated_at=$16
		WHERE id=$17`,
		r.RoomPreference, r.BathroomPreference, r.DietaryPreference,
		r.Religion, r.Caste, r.PetFriendly, r.RentBudget.Min, r.RentBudget.Max,
		r.Lifestyle.CleanlinessLevel, r.Lifestyle.SleepSchedule,
		r.Lifestyle.GuestFrequency, r.Lifestyle.StudyEnvironment,
		r.Lifestyle.Smoking, r.Lifestyle.Alcohol, r.Status, time.Now(), r.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (p *PostgresStore) CancelRequest(ctx context.Context, id, userID string) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE roommate_requests SET status=$1, updated_at=$2 WHERE id=$3 AND user_id=$4`,
		models.StatusCancelled, time.Now(), id, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// --- LocationStore ---

func (p *PostgresStore) FindByCityState(ctx context.Context, city, state string) ([]models.LocationRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT zip_code, city, state, state_name FROM locations
		WHERE lower(city) = lower($1) AND (lower(state) = lower($2) OR lower(state_name) = lower($2))`,
		city, state)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLocations(rows)
}

func (p *PostgresStore) Search(ctx context.Context, query string, limit int) ([]models.LocationRecord, error) {
	pattern := "%" + query + "%"
	rows, err := p.db.QueryContext(ctx, `
		SELECT zip_code, city, state, state_name FROM locations
		WHERE zip_code ILIKE $1 OR city ILIKE $1 OR state ILIKE $1 OR state_name ILIKE $1
		ORDER BY city, state LIMIT $2`,
		pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLocations(rows)
}

func (p *PostgresStore) GetByZip(ctx context.Context, zip string) (*models.LocationRecord, error) {
	var l models.LocationRecord
	err := p.db.QueryRowContext(ctx,
		`SELECT zip_code, city, state, state_name FROM locations WHERE zip_code = $1`, zip).
		Scan(&l.ZipCode, &l.City, &l.State, &l.StateName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (p *PostgresStore) ListAll(ctx context.Context, limit int) ([]models.LocationRecord, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT zip_code, city, state, state_name FROM locations ORDER BY city LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLocations(rows)
}

func (p *PostgresStore) LoadLocations(ctx context.Context, recs []models.LocationRecord) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, l := range recs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO locations (zip_code, city, state, state_name)
			VALUES ($1,$2,$3,$4) ON CONFLICT (zip_code) DO NOTHING`,
			l.ZipCode, l.City, l.State, l.StateName); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func collectLocations(rows *sql.Rows) ([]models.LocationRecord, error) {
	var out []models.LocationRecord
	for rows.Next() {
		var l models.LocationRecord
		if err := rows.Scan(&l.ZipCode, &l.City, &l.State, &l.StateName); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// --- InterestRegistry ---

func (p *PostgresStore) Exists(ctx context.Context, rideID, userID string) (bool, error) {
	var n int
	err := p.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM interests WHERE ride_id = $1 AND user_id = $2`,
		rideID, userID).Scan(&n)
	return n > 0, err
}

func (p *PostgresStore) CreateInterest(ctx context.Context, in *models.Interest) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO interests (ride_id, user_id, status, payment_hold_id, created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		in.RideID, in.UserID, in.Status, in.PaymentHoldID, in.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateInterest
	}
	return err
}

func (p *PostgresStore) GetInterest(ctx context.Context, rideID, userID string) (*models.Interest, error) {
	var in models.Interest
	err := p.db.QueryRowContext(ctx, `
		SELECT ride_id, user_id, status, payment_hold_id, created_at
		FROM interests WHERE ride_id = $1 AND user_id = $2`, rideID, userID).
		Scan(&in.RideID, &in.UserID, &in.Status, &in.PaymentHoldID, &in.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func (p *PostgresStore) CountFor(ctx context.Context, rideID string) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM interests WHERE ride_id = $1`, rideID).Scan(&n)
	return n, err
}

func (p *PostgresStore) ListForRide(ctx context.Context, rideID string) ([]models.Interest, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT ride_id, user_id, status, payment_hold_id, created_at
		FROM interests WHERE ride_id = $1 ORDER BY created_at`, rideID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInterests(rows)
}

func (p *PostgresStore) ListForUser(ctx context.Context, userID string) ([]models.Interest, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT ride_id, user_id, status, payment_hold_id, created_at
		FROM interests WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInterests(rows)
}

func (p *PostgresStore) DeleteInterest(ctx context.Context, rideID, userID string) error {
	res, err := p.db.ExecContext(ctx,
		`DELETE FROM interests WHERE ride_id = $1 AND user_id = $2`, rideID, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (p *PostgresStore) DeleteAllFor(ctx context.Context, rideID string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM interests WHERE ride_id = $1`, rideID)
	return err
}

func collectInterests(rows *sql.Rows) ([]models.Interest, error) {
	var out []models.Interest
	for rows.Next() {
		var in models.Interest
		if err := rows.Scan(&in.RideID, &in.UserID, &in.Status, &in.PaymentHoldID, &in.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// --- NotificationStore ---

func (p *PostgresStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = NewID()
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, type, title, message, related_id, read, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.RelatedID, n.Read, n.CreatedAt)
	return err
}

func (p *PostgresStore) ListNotifications(ctx context.Context, userID string, page, perPage int, unreadOnly bool) ([]models.Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}

	cond := `user_id = $1`
	if unreadOnly {
		cond += ` AND read = FALSE`
	}

	var total int
	if err := p.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE `+cond, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, type, title, message, related_id, read, created_at
		FROM notifications WHERE `+cond+`
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message,
			&n.RelatedID, &n.Read, &n.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

func (p *PostgresStore) UnreadCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE`, userID).Scan(&n)
	return n, err
}

func (p *PostgresStore) MarkRead(ctx context.Context, id, userID string) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (p *PostgresStore) MarkAllRead(ctx context.Context, userID string) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`, userID)
	return err
}

func (p *PostgresStore) DeleteNotification(ctx context.Context, id, userID string) error {
	res, err := p.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// --- UserDirectory ---

func (p *PostgresStore) Contact(ctx context.Context, userID string) (*models.ContactCard, error) {
	var c models.ContactCard
	err := p.db.QueryRowContext(ctx,
		`SELECT name, phone_number, whatsapp_number FROM users WHERE id = $1`, userID).
		Scan(&c.Name, &c.PhoneNumber, &c.WhatsappNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
