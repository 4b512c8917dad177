package matcher

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FormatError reports a time or date string the scorers could not parse.
// Callers are expected to validate input with IsValidTime/IsValidRange
// before scoring; the error exists so a bad stored document surfaces as a
// skippable per-candidate failure instead of a panic.
type FormatError struct {
	Value string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unparsable time value %q", e.Value)
}

var timePattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

// IsValidTime reports whether s is an HH:MM 24-hour clock time.
func IsValidTime(s string) bool {
	return timePattern.MatchString(s)
}

// IsValidRange reports whether start and end are valid clock times with
// start strictly before end.
func IsValidRange(start, end string) bool {
	if !IsValidTime(start) || !IsValidTime(end) {
		return false
	}
	s, _ := minuteOfDay(start)
	e, _ := minuteOfDay(end)
	return s < e
}

// minuteOfDay converts HH:MM to minutes since midnight.
func minuteOfDay(s string) (int, error) {
	if !timePattern.MatchString(s) {
		return 0, &FormatError{Value: s}
	}
	parts := strings.SplitN(s, ":", 2)
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return h*60 + m, nil
}

// hasOverlap reports whether two clock-time ranges share any minute.
// Ranges touching at an endpoint count as overlapping.
func hasOverlap(aStart, aEnd, bStart, bEnd string) (bool, error) {
	as, err := minuteOfDay(aStart)
	if err != nil {
		return false, err
	}
	ae, err := minuteOfDay(aEnd)
	if err != nil {
		return false, err
	}
	bs, err := minuteOfDay(bStart)
	if err != nil {
		return false, err
	}
	be, err := minuteOfDay(bEnd)
	if err != nil {
		return false, err
	}
	return as <= be && bs <= ae, nil
}

// overlapRatio returns the overlap duration of two clock-time ranges
// divided by the shorter range's length, clamped to [0, 1]. Zero-length
// ranges contribute 0 rather than dividing by zero.
func overlapRatio(aStart, aEnd, bStart, bEnd string) (float64, error) {
	as, err := minuteOfDay(aStart)
	if err != nil {
		return 0, err
	}
	ae, err := minuteOfDay(aEnd)
	if err != nil {
		return 0, err
	}
	bs, err := minuteOfDay(bStart)
	if err != nil {
		return 0, err
	}
	be, err := minuteOfDay(bEnd)
	if err != nil {
		return 0, err
	}

	overlapStart := max(as, bs)
	overlapEnd := min(ae, be)
	if overlapStart >= overlapEnd {
		return 0, nil
	}

	shorter := min(ae-as, be-bs)
	if shorter <= 0 {
		return 0, nil
	}
	ratio := float64(overlapEnd-overlapStart) / float64(shorter)
	if ratio > 1 {
		ratio = 1
	}
	return ratio, nil
}
