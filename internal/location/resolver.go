package location

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/example/campus-match/internal/models"
)

// Directory is the slice of the location store the resolver needs.
type Directory interface {
	// FindByCityState returns every record whose city and state match
	// case-insensitively. State matches either the two-letter code or the
	// full state name.
	FindByCityState(ctx context.Context, city, state string) ([]models.LocationRecord, error)
	Search(ctx context.Context, query string, limit int) ([]models.LocationRecord, error)
}

// Cache stores resolved variant sets keyed by the normalized input string.
type Cache interface {
	Get(ctx context.Context, key string) ([]string, bool)
	Set(ctx context.Context, key string, variants []string)
}

// locationPattern accepts "City, State" with an optional trailing 5-digit
// zip, separated from the state by a comma and/or spaces.
var locationPattern = regexp.MustCompile(`^\s*([^,]+?)\s*,\s*([A-Za-z .]+?)(?:[,\s]+(\d{5}))?\s*$`)

// Parse splits a location string into city, state, and optional zip.
// ok is false when the string does not look like "City, State[ Zip]".
func Parse(s string) (city, state, zip string, ok bool) {
	m := locationPattern.FindStringSubmatch(s)
	if m == nil {
		return "", "", "", false
	}
	return m[1], m[2], m[3], true
}

// Resolver expands location strings into their equivalent display forms so
// that a search for "Boulder, CO" matches listings keyed to any Boulder zip.
type Resolver struct {
	dir    Directory
	cache  Cache
	logger *slog.Logger
}

func NewResolver(dir Directory, cache Cache, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{dir: dir, cache: cache, logger: logger}
}

// Variations returns the set of textual variants equivalent to s, always
// starting with s itself. If s does not parse, or the directory lookup
// fails, the caller degrades to exact-match semantics on {s}. The empty
// string has no variants.
func (r *Resolver) Variations(ctx context.Context, s string) []string {
	if s == "" {
		return nil
	}

	key := cacheKey(s)
	if r.cache != nil {
		if v, ok := r.cache.Get(ctx, key); ok {
			return v
		}
	}

	variants := []string{s}
	city, state, _, ok := Parse(s)
	if ok {
		recs, err := r.dir.FindByCityState(ctx, city, state)
		if err != nil {
			r.logger.Warn("location lookup failed, falling back to exact match",
				"location", s, "error", err)
			return variants
		}
		for _, rec := range recs {
			variants = append(variants, rec.CityDisplayName(), rec.DisplayName())
		}
	}

	variants = dedupe(variants)
	if r.cache != nil {
		r.cache.Set(ctx, key, variants)
	}
	return variants
}

// Search runs a free-text lookup over the directory, used by the location
// autocomplete endpoint.
func (r *Resolver) Search(ctx context.Context, query string, limit int) ([]models.LocationRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	return r.dir.Search(ctx, strings.TrimSpace(query), limit)
}

// Intersects reports whether two variant sets share any string.
func Intersects(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	for _, s := range b {
		if _, ok := set[s]; ok {
			return true
		}
	}
	return false
}

func cacheKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// dedupe removes duplicates preserving first-seen order.
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
