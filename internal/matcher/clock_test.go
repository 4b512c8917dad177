package matcher

import (
	"errors"
	"testing"
)

func TestIsValidTime(t *testing.T) {
	valid := []string{"00:00", "9:30", "09:30", "23:59", "19:05"}
	for _, v := range valid {
		if !IsValidTime(v) {
			t.Errorf("expected %q to be valid", v)
		}
	}
	invalid := []string{"", "24:00", "12:60", "9:5", "noon", "09-30", "9:30am"}
	for _, v := range invalid {
		if IsValidTime(v) {
			t.Errorf("expected %q to be invalid", v)
		}
	}
}

func TestIsValidRange(t *testing.T) {
	if !IsValidRange("09:00", "11:00") {
		t.Fatal("expected valid range")
	}
	if IsValidRange("11:00", "09:00") {
		t.Fatal("start after end should be invalid")
	}
	if IsValidRange("09:00", "09:00") {
		t.Fatal("zero-length range should be invalid")
	}
	if IsValidRange("bad", "09:00") {
		t.Fatal("unparsable start should be invalid")
	}
}

func TestHasOverlap(t *testing.T) {
	ok, err := hasOverlap("09:00", "11:00", "10:00", "12:00")
	if err != nil || !ok {
		t.Fatalf("expected overlap, got ok=%v err=%v", ok, err)
	}
	ok, err = hasOverlap("08:00", "09:00", "10:00", "11:00")
	if err != nil || ok {
		t.Fatalf("expected no overlap, got ok=%v err=%v", ok, err)
	}
	// ranges touching at an endpoint count as overlapping
	ok, err = hasOverlap("09:00", "10:00", "10:00", "11:00")
	if err != nil || !ok {
		t.Fatalf("expected touching ranges to overlap, got ok=%v err=%v", ok, err)
	}
}

func TestHasOverlapUnparsable(t *testing.T) {
	_, err := hasOverlap("9am", "11:00", "10:00", "12:00")
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestOverlapRatio(t *testing.T) {
	cases := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd string
		want                       float64
	}{
		{"identical", "09:00", "11:00", "09:00", "11:00", 1.0},
		{"half of shorter", "09:00", "11:00", "10:00", "12:00", 0.5},
		{"contained uses shorter", "09:00", "13:00", "10:00", "11:00", 1.0},
		{"disjoint", "08:00", "09:00", "10:00", "11:00", 0},
		{"touching", "09:00", "10:00", "10:00", "11:00", 0},
	}
	for _, tc := range cases {
		got, err := overlapRatio(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestOverlapRatioZeroLength(t *testing.T) {
	got, err := overlapRatio("09:00", "09:00", "09:00", "11:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Fatalf("zero-length range should score 0, got %v", got)
	}
}
