// Package schedule provides time range arithmetic and calendar conflict
// detection for appointment scheduling.
package schedule

import (
	"errors"
	"time"
)

var (
	ErrInvalidTimeRange = errors.New("invalid time range")
	ErrSlotDuration     = errors.New("slot duration must be positive")
)

// TimeRange represents the interval [Start, End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// NewTimeRange creates a range with basic validation.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if start.IsZero() || end.IsZero() {
		return TimeRange{}, ErrInvalidTimeRange
	}
	return TimeRange{Start: start, End: end}, nil
}

// NormalizeTimeRange normalizes an interval:
//   - swaps the bounds if they are reversed;
//   - converts both bounds to loc when given;
//   - clamps the interval to start+maxDuration when it is longer.
//
// A maxDuration <= 0 disables the duration clamp.
func NormalizeTimeRange(start, end time.Time, loc *time.Location, maxDuration time.Duration) (TimeRange, error) {
	if start.IsZero() || end.IsZero() {
		return TimeRange{}, ErrInvalidTimeRange
	}
	if end.Before(start) {
		start, end = end, start
	}
	if loc != nil {
		start = start.In(loc)
		end = end.In(loc)
	}
	if maxDuration > 0 && end.Sub(start) > maxDuration {
		end = start.Add(maxDuration)
	}
	if !end.After(start) {
		return TimeRange{}, ErrInvalidTimeRange
	}
	return TimeRange{Start: start, End: end}, nil
}

// SplitToTimeSlots splits a range into fixed-duration slots. alignMinutes > 0
// aligns the first slot start to the next multiple of alignMinutes. A tail
// shorter than slotDuration is dropped.
func SplitToTimeSlots(tr TimeRange, slotDuration time.Duration, alignMinutes int) ([]TimeRange, error) {
	if slotDuration <= 0 {
		return nil, ErrSlotDuration
	}
	if !tr.End.After(tr.Start) {
		return []TimeRange{}, nil
	}

	start := tr.Start
	if alignMinutes > 0 {
		min := start.Minute()
		if rem := min % alignMinutes; rem != 0 {
			delta := alignMinutes - rem
			start = time.Date(
				start.Year(), start.Month(), start.Day(),
				start.Hour(), min+delta, 0, 0,
				start.Location(),
			)
			if !start.Before(tr.End) {
				return []TimeRange{}, nil
			}
		}
	}

	var slots []TimeRange
	for cur := start; ; cur = cur.Add(slotDuration) {
		slotEnd := cur.Add(slotDuration)
		if slotEnd.After(tr.End) {
			break
		}
		slots = append(slots, TimeRange{Start: cur, End: slotEnd})
	}
	return slots, nil
}

// HasOverlap reports whether newRange overlaps any of existing, returning
// the conflicting ranges. inclusive = true counts touching endpoints as an
// overlap.
func HasOverlap(newRange TimeRange, existing []TimeRange, inclusive bool) (bool, []TimeRange) {
	var conflicts []TimeRange
	for _, tr := range existing {
		if rangesOverlap(newRange, tr, inclusive) {
			conflicts = append(conflicts, tr)
		}
	}
	return len(conflicts) > 0, conflicts
}

func rangesOverlap(a, b TimeRange, inclusive bool) bool {
	if inclusive {
		// Closed intervals overlap when a.Start <= b.End && b.Start <= a.End.
		return !a.Start.After(b.End) && !b.Start.After(a.End)
	}
	// Half-open intervals [Start, End) overlap when
	// a.Start < b.End && b.Start < a.End.
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}
