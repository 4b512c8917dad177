package matcher

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/example/campus-match/internal/location"
	"github.com/example/campus-match/internal/models"
	"github.com/example/campus-match/internal/observability"
	"github.com/example/campus-match/internal/storage"
)

// ErrNoActiveRequest is returned by SearchRoommates when the searcher has
// not created a roommate request yet.
var ErrNoActiveRequest = errors.New("no active roommate request for user")

// Page describes one slice of a result set. Pages are 1-indexed.
type Page struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// PageRequest selects which page a search returns.
type PageRequest struct {
	Page    int
	PerPage int
}

type RideSearchResult struct {
	Rides []models.ScoredRide `json:"rides"`
	Page  Page                `json:"pagination"`
}

type SubleaseSearchResult struct {
	Subleases []models.ScoredSublease `json:"subleases"`
	Page      Page                    `json:"pagination"`
}

type RoommateSearchResult struct {
	Matches           []models.RoommateMatch `json:"matches"`
	Page              Page                   `json:"pagination"`
	IncompatibleCount int                    `json:"incompatible_count"`
	// Incompatible carries the deal-breaker reasons for diagnostics; it is
	// never ranked and only its count is surfaced to searchers.
	Incompatible []models.RoommateMatch `json:"-"`
}

// Service runs searches end to end: coarse store query, per-candidate
// scoring, threshold, stable descending sort, pagination, and page-only
// enrichment. Every search is a fresh stateless computation; the service
// holds no mutable state and is safe for concurrent use.
type Service struct {
	Rides     storage.RideStore
	Subleases storage.SubleaseStore
	Roommates storage.RoommateStore
	Interests storage.InterestRegistry
	Users     storage.UserDirectory
	Resolver  *location.Resolver
	Weights   *Weights
	MinScore  float64
	PerPage   int
	Now       func() time.Time
	Logger    *slog.Logger
}

func (s *Service) weights() *Weights {
	if s.Weights == nil {
		return DefaultWeights()
	}
	return s.Weights
}

func (s *Service) minScore() float64 {
	if s.MinScore == 0 {
		return MinScore
	}
	return s.MinScore
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// SearchRides scores active rides on the requested date against the
// criteria. Rides with zero overlap against a stated time preference are
// excluded outright; the rest are ranked descending by score.
func (s *Service) SearchRides(ctx context.Context, c models.RideCriteria, pr PageRequest) (*RideSearchResult, error) {
	start := time.Now()
	observability.SearchesTotal.WithLabelValues("ride").Inc()
	defer func() {
		observability.SearchLatency.WithLabelValues("ride").Observe(time.Since(start).Seconds())
	}()

	filter := storage.RideFilter{
		Status:            models.StatusActive,
		TravelDate:        c.TravelDate,
		MinSeatsRemaining: 1,
		ExcludeUserID:     c.SearcherID,
		StartingFromIn:    s.Resolver.Variations(ctx, c.StartingFrom),
		GoingToIn:         s.Resolver.Variations(ctx, c.GoingTo),
	}
	candidates, err := s.Rides.FindRides(ctx, filter)
	if err != nil {
		return nil, err
	}

	// Rides the searcher already raised a hand for are not shown again.
	already := make(map[string]struct{})
	if c.SearcherID != "" {
		interests, err := s.Interests.ListForUser(ctx, c.SearcherID)
		if err != nil {
			return nil, err
		}
		for _, in := range interests {
			already[in.RideID] = struct{}{}
		}
	}

	scorer := &RideScorer{Resolver: s.Resolver, Weights: s.weights().Ride, Now: s.Now}

	var scored []models.ScoredRide
	for _, ride := range candidates {
		if _, ok := already[ride.ID]; ok {
			continue
		}

		pass, err := scorer.PassesTimeFilter(ride, c)
		if err != nil {
			s.skip(ctx, "ride", ride.ID, err)
			continue
		}
		if !pass {
			observability.CandidatesDropped.WithLabelValues("ride").Inc()
			continue
		}

		count, err := s.Interests.CountFor(ctx, ride.ID)
		if err != nil {
			count = 0
		}

		score, err := scorer.Score(ctx, ride, c, count)
		if err != nil {
			s.skip(ctx, "ride", ride.ID, err)
			continue
		}
		observability.CandidatesScored.WithLabelValues("ride").Inc()
		if score <= s.minScore() {
			observability.CandidatesDropped.WithLabelValues("ride").Inc()
			continue
		}
		scored = append(scored, models.ScoredRide{Ride: ride, Score: score, InterestCount: count})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	pageItems, page := paginate(scored, pr, s.PerPage)
	for i := range pageItems {
		pageItems[i].IsHot = pageItems[i].InterestCount >= HotInterestCount
		if contact, err := s.Users.Contact(ctx, pageItems[i].Ride.UserID); err == nil {
			pageItems[i].Driver = contact
		}
	}

	return &RideSearchResult{Rides: pageItems, Page: page}, nil
}

// SearchSubleases scores active subleases matching the coarse filter and
// ranks them descending.
func (s *Service) SearchSubleases(ctx context.Context, c models.SubleaseCriteria, pr PageRequest) (*SubleaseSearchResult, error) {
	start := time.Now()
	observability.SearchesTotal.WithLabelValues("sublease").Inc()
	defer func() {
		observability.SearchLatency.WithLabelValues("sublease").Observe(time.Since(start).Seconds())
	}()

	filter := storage.SubleaseFilter{
		Status:           models.StatusActive,
		StartsOnOrBefore: c.EndDate,
		EndsOnOrAfter:    c.StartDate,
		MaxRent:          c.MaxRent,
		Location:         c.Location,
		MinBedrooms:      c.MinBedrooms,
		MinBathrooms:     c.MinBathrooms,
	}
	candidates, err := s.Subleases.FindSubleases(ctx, filter)
	if err != nil {
		return nil, err
	}

	scorer := &SubleaseScorer{Weights: s.weights().Sublease}

	var scored []models.ScoredSublease
	for _, sub := range candidates {
		score, err := scorer.Score(sub, c)
		if err != nil {
			s.skip(ctx, "sublease", sub.ID, err)
			continue
		}
		observability.CandidatesScored.WithLabelValues("sublease").Inc()
		if score <= s.minScore() {
			observability.CandidatesDropped.WithLabelValues("sublease").Inc()
			continue
		}
		scored = append(scored, models.ScoredSublease{Sublease: sub, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	pageItems, page := paginate(scored, pr, s.PerPage)
	for i := range pageItems {
		if contact, err := s.Users.Contact(ctx, pageItems[i].Sublease.UserID); err == nil {
			pageItems[i].Subleaser = contact
		}
	}

	return &SubleaseSearchResult{Subleases: pageItems, Page: page}, nil
}

// SearchRoommates evaluates every other active request against the
// searcher's. Requests with deal-breakers land in the incompatible bucket
// with score 0 and are never ranked; the rest are scored 0-100, sorted
// descending, and paginated.
func (s *Service) SearchRoommates(ctx context.Context, searcherID string, pr PageRequest) (*RoommateSearchResult, error) {
	start := time.Now()
	observability.SearchesTotal.WithLabelValues("roommate").Inc()
	defer func() {
		observability.SearchLatency.WithLabelValues("roommate").Observe(time.Since(start).Seconds())
	}()

	own, err := s.Roommates.GetActiveForUser(ctx, searcherID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoActiveRequest
		}
		return nil, err
	}

	others, err := s.Roommates.FindActiveExcluding(ctx, searcherID)
	if err != nil {
		return nil, err
	}

	pts := s.weights().Roommate
	var compatible, incompatible []models.RoommateMatch
	for _, other := range others {
		reasons := DealBreakers(*own, other)
		observability.CandidatesScored.WithLabelValues("roommate").Inc()
		if len(reasons) > 0 {
			observability.CandidatesDropped.WithLabelValues("roommate").Inc()
			incompatible = append(incompatible, models.RoommateMatch{
				Request:      other,
				DealBreakers: reasons,
			})
			continue
		}
		score := CompatibilityScore(*own, other, pts)
		compatible = append(compatible, models.RoommateMatch{
			Request:            other,
			CompatibilityScore: math.Round(score*10) / 10,
			DealBreakers:       []string{},
		})
	}

	sort.SliceStable(compatible, func(i, j int) bool {
		return compatible[i].CompatibilityScore > compatible[j].CompatibilityScore
	})

	pageItems, page := paginate(compatible, pr, s.PerPage)
	for i := range pageItems {
		if contact, err := s.Users.Contact(ctx, pageItems[i].Request.UserID); err == nil {
			pageItems[i].User = contact
		}
	}

	return &RoommateSearchResult{
		Matches:           pageItems,
		Page:              page,
		IncompatibleCount: len(incompatible),
		Incompatible:      incompatible,
	}, nil
}

func (s *Service) skip(_ context.Context, domain, id string, err error) {
	observability.CandidatesSkipped.WithLabelValues(domain).Inc()
	s.logger().Warn("skipping candidate", "domain", domain, "id", id, "error", err)
}

// paginate slices items for the requested 1-indexed page. A page past the
// end yields an empty slice, never an error.
func paginate[T any](items []T, pr PageRequest, defaultPerPage int) ([]T, Page) {
	page := pr.Page
	if page < 1 {
		page = 1
	}
	perPage := pr.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage <= 0 {
		perPage = 10
	}

	total := len(items)
	meta := Page{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	}

	start := (page - 1) * perPage
	if start >= total {
		return []T{}, meta
	}
	end := start + perPage
	if end > total {
		end = total
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out, meta
}
