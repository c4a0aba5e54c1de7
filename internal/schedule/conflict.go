package schedule

import (
	"log/slog"
	"strings"
	"time"
)

const (
	// DateLayout is the wire format for calendar dates, e.g. "2025-03-15".
	DateLayout = "2006-01-02"
	// ClockLayout is the wire format for clock times, e.g. "9:00 AM".
	ClockLayout = "3:04 PM"
)

// ParseDate parses a calendar date in DateLayout.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// ParseClock parses a 12-hour clock time in ClockLayout.
func ParseClock(s string) (time.Time, error) {
	return time.Parse(ClockLayout, strings.ToUpper(strings.TrimSpace(s)))
}

// CalendarEvent is a personal calendar entry that can block appointment
// slots. Multi-day events span [StartDate, EndDate]. Timed events block the
// clock window [StartTime, EndTime] on each covered day; all-day events
// block every slot on covered days.
type CalendarEvent struct {
	Title     string
	StartDate string
	EndDate   string
	AllDay    bool
	StartTime string
	EndTime   string
}

// Blocks reports whether the event blocks a slot on slotDate at slotTime.
// Both endpoints of the event's date and time windows are inclusive. Events
// with malformed dates or times are logged and treated as non-blocking.
func (e CalendarEvent) Blocks(slotDate, slotTime string) bool {
	date, err := ParseDate(slotDate)
	if err != nil {
		slog.Warn("unparseable slot date", "date", slotDate, "error", err)
		return false
	}
	start, err := ParseDate(e.StartDate)
	if err != nil {
		slog.Warn("unparseable event start date", "event", e.Title, "date", e.StartDate, "error", err)
		return false
	}
	end, err := ParseDate(e.EndDate)
	if err != nil {
		slog.Warn("unparseable event end date", "event", e.Title, "date", e.EndDate, "error", err)
		return false
	}
	if date.Before(start) || date.After(end) {
		return false
	}
	if e.AllDay {
		return true
	}
	clock, err := ParseClock(slotTime)
	if err != nil {
		slog.Warn("unparseable slot time", "time", slotTime, "error", err)
		return false
	}
	from, err := ParseClock(e.StartTime)
	if err != nil {
		slog.Warn("unparseable event start time", "event", e.Title, "time", e.StartTime, "error", err)
		return false
	}
	to, err := ParseClock(e.EndTime)
	if err != nil {
		slog.Warn("unparseable event end time", "event", e.Title, "time", e.EndTime, "error", err)
		return false
	}
	return !clock.Before(from) && !clock.After(to)
}

// FindConflicts returns the events that block a slot on slotDate at
// slotTime.
func FindConflicts(events []CalendarEvent, slotDate, slotTime string) []CalendarEvent {
	var conflicts []CalendarEvent
	for _, event := range events {
		if event.Blocks(slotDate, slotTime) {
			conflicts = append(conflicts, event)
		}
	}
	return conflicts
}
