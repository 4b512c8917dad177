package location

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/example/campus-match/internal/models"
)

type stubDirectory struct {
	records map[string][]models.LocationRecord
	err     error
	lookups int
}

func (s *stubDirectory) FindByCityState(_ context.Context, city, state string) ([]models.LocationRecord, error) {
	s.lookups++
	if s.err != nil {
		return nil, s.err
	}
	return s.records[strings.ToLower(city)+"|"+strings.ToLower(state)], nil
}

func (s *stubDirectory) Search(_ context.Context, query string, limit int) ([]models.LocationRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.LocationRecord
	for _, recs := range s.records {
		out = append(out, recs...)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func boulderDir() *stubDirectory {
	recs := []models.LocationRecord{
		{ZipCode: "80301", City: "Boulder", State: "CO", StateName: "Colorado"},
		{ZipCode: "80302", City: "Boulder", State: "CO", StateName: "Colorado"},
	}
	return &stubDirectory{records: map[string][]models.LocationRecord{
		"boulder|co":       recs,
		"boulder|colorado": recs,
	}}
}

func TestParse(t *testing.T) {
	cases := []struct {
		in               string
		city, state, zip string
		ok               bool
	}{
		{"Boulder, CO", "Boulder", "CO", "", true},
		{"Boulder, Colorado 80301", "Boulder", "Colorado", "80301", true},
		{"Boulder, Colorado, 80301", "Boulder", "Colorado", "80301", true},
		{"  Boulder ,  CO  ", "Boulder", "CO", "", true},
		{"Salt Lake City, Utah 84101", "Salt Lake City", "Utah", "84101", true},
		{"Boulder", "", "", "", false},
		{"", "", "", "", false},
		{"80301", "", "", "", false},
	}
	for _, tc := range cases {
		city, state, zip, ok := Parse(tc.in)
		if ok != tc.ok || city != tc.city || state != tc.state || zip != tc.zip {
			t.Errorf("Parse(%q) = (%q, %q, %q, %v), want (%q, %q, %q, %v)",
				tc.in, city, state, zip, ok, tc.city, tc.state, tc.zip, tc.ok)
		}
	}
}

func TestVariationsEmpty(t *testing.T) {
	r := NewResolver(boulderDir(), nil, nil)
	if got := r.Variations(context.Background(), ""); got != nil {
		t.Fatalf("empty input should have no variants, got %v", got)
	}
}

func TestVariationsStartsWithInput(t *testing.T) {
	r := NewResolver(boulderDir(), nil, nil)
	got := r.Variations(context.Background(), "Boulder, CO")
	if len(got) == 0 || got[0] != "Boulder, CO" {
		t.Fatalf("variants must start with the input, got %v", got)
	}
}

func TestVariationsExpansion(t *testing.T) {
	r := NewResolver(boulderDir(), nil, nil)
	got := r.Variations(context.Background(), "Boulder, CO")

	want := []string{
		"Boulder, CO",
		"Boulder, Colorado",
		"Boulder, Colorado 80301",
		"Boulder, Colorado 80302",
	}
	set := make(map[string]struct{}, len(got))
	for _, v := range got {
		if _, dup := set[v]; dup {
			t.Fatalf("duplicate variant %q in %v", v, got)
		}
		set[v] = struct{}{}
	}
	for _, w := range want {
		if _, ok := set[w]; !ok {
			t.Fatalf("missing variant %q in %v", w, got)
		}
	}
}

func TestVariationsDedupesCityForm(t *testing.T) {
	r := NewResolver(boulderDir(), nil, nil)
	// the input equals the city-level display form, so it appears once
	got := r.Variations(context.Background(), "Boulder, Colorado")
	count := 0
	for _, v := range got {
		if v == "Boulder, Colorado" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one city-form variant, got %v", got)
	}
}

func TestVariationsUnparsableInput(t *testing.T) {
	r := NewResolver(boulderDir(), nil, nil)
	got := r.Variations(context.Background(), "the dorms")
	if len(got) != 1 || got[0] != "the dorms" {
		t.Fatalf("free-text input should fall back to itself, got %v", got)
	}
}

func TestVariationsDirectoryFailure(t *testing.T) {
	dir := &stubDirectory{err: errors.New("db down")}
	r := NewResolver(dir, NewMemoryCache(time.Minute), nil)
	got := r.Variations(context.Background(), "Boulder, CO")
	if len(got) != 1 || got[0] != "Boulder, CO" {
		t.Fatalf("lookup failure should degrade to exact match, got %v", got)
	}
}

func TestVariationsCached(t *testing.T) {
	dir := boulderDir()
	r := NewResolver(dir, NewMemoryCache(time.Minute), nil)
	ctx := context.Background()

	first := r.Variations(ctx, "Boulder, CO")
	second := r.Variations(ctx, "boulder, co") // key is case-insensitive
	if dir.lookups != 1 {
		t.Fatalf("expected one directory lookup, got %d", dir.lookups)
	}
	if len(first) != len(second) {
		t.Fatalf("cache returned different variants: %v vs %v", first, second)
	}
}

func TestIntersects(t *testing.T) {
	a := []string{"Boulder, CO", "Boulder, Colorado"}
	b := []string{"Boulder, Colorado 80301", "Boulder, Colorado"}
	if !Intersects(a, b) {
		t.Fatal("expected intersection")
	}
	if Intersects(a, []string{"Denver, Colorado"}) {
		t.Fatal("expected no intersection")
	}
	if Intersects(nil, b) || Intersects(a, nil) {
		t.Fatal("empty sets never intersect")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(10 * time.Millisecond)
	ctx := context.Background()
	c.Set(ctx, "k", []string{"v"})
	if _, ok := c.Get(ctx, "k"); !ok {
		t.Fatal("expected cache hit")
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("expected entry to expire")
	}
}
