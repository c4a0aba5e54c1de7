package health

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/nimbusworks/nimbus/internal/schedule"
)

// DemoToday is the fixed "current date" for the demo dataset. Production
// deployments set Service.Now instead.
var DemoToday = time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)

// Service implements the scheduling operations exposed to the assistant.
type Service struct {
	repo *Repository
	// Now returns the current date for past/upcoming partitioning.
	Now func() time.Time
}

// NewService creates a Service pinned to the demo date.
func NewService(repo *Repository) *Service {
	return &Service{
		repo: repo,
		Now:  func() time.Time { return DemoToday },
	}
}

// RecommendedSlot is an available slot annotated with the reason it is
// suggested.
type RecommendedSlot struct {
	Appointment
	Recommended bool   `json:"recommended"`
	Reason      string `json:"reason"`
}

// BookingConfirmation summarizes a successful booking.
type BookingConfirmation struct {
	SlotID          string         `json:"slot_id"`
	Date            string         `json:"date"`
	Time            string         `json:"time"`
	Doctor          string         `json:"doctor"`
	UserID          string         `json:"user_id"`
	SymptomsSummary map[string]any `json:"symptoms_summary,omitempty"`
	BookedAt        string         `json:"booking_timestamp"`
	Status          string         `json:"status"`
}

// Doctors lists all doctors with appointment slots.
func (s *Service) Doctors(ctx context.Context) ([]string, error) {
	return s.repo.Doctors(ctx)
}

// NonClashingSlots returns available slots for the doctor that do not
// conflict with any personal calendar event. unavailableDate, when set,
// excludes slots on that date.
func (s *Service) NonClashingSlots(ctx context.Context, doctorName, unavailableDate string) ([]Appointment, error) {
	slots, err := s.repo.AvailableSlots(ctx, doctorName, unavailableDate)
	if err != nil {
		return nil, err
	}
	events, err := s.repo.Events(ctx)
	if err != nil {
		return nil, err
	}
	blockers := make([]schedule.CalendarEvent, len(events))
	for i, event := range events {
		blockers[i] = event.blocker()
	}
	clear := make([]Appointment, 0, len(slots))
	for _, slot := range slots {
		if conflicts := schedule.FindConflicts(blockers, slot.Date, slot.Time); len(conflicts) > 0 {
			slog.Debug("slot blocked by calendar event",
				"slot", slot.ID,
				"event", conflicts[0].Title,
			)
			continue
		}
		clear = append(clear, slot)
	}
	slog.Info("found non-clashing slots", "doctor", doctorName, "count", len(clear))
	return clear, nil
}

// RecommendedSlots suggests slots with doctors the user has seen before,
// based on past medical calendar entries. One slot is recommended per
// doctor.
func (s *Service) RecommendedSlots(ctx context.Context, available []Appointment) ([]RecommendedSlot, error) {
	past, err := s.repo.EventsByType(ctx, EventTypeMedical)
	if err != nil {
		return nil, err
	}
	var recommended []RecommendedSlot
	seen := map[string]bool{}
	for _, event := range past {
		doctor := doctorFromTitle(event.Title)
		if doctor == "" || seen[doctor] {
			continue
		}
		for _, slot := range available {
			if strings.Contains(slot.Doctor, doctor) {
				recommended = append(recommended, RecommendedSlot{
					Appointment: slot,
					Recommended: true,
					Reason:      "Previous appointment with " + doctor,
				})
				seen[doctor] = true
				break
			}
		}
	}
	return recommended, nil
}

// doctorFromTitle extracts a doctor name from titles like
// "Checkup with Dr. Smith".
func doctorFromTitle(title string) string {
	if !strings.Contains(title, "Dr.") {
		return ""
	}
	_, after, found := strings.Cut(title, "with ")
	if !found {
		return ""
	}
	return strings.TrimSpace(after)
}

// Book reserves the slot for the user and returns a confirmation.
func (s *Service) Book(ctx context.Context, slotID, userID string, symptoms map[string]any) (*BookingConfirmation, error) {
	if userID == "" {
		userID = "demo_user"
	}
	slot, err := s.repo.Book(ctx, slotID, userID)
	if err != nil {
		return nil, err
	}
	slog.Info("appointment booked", "slot", slotID, "user", userID)
	return &BookingConfirmation{
		SlotID:          slot.ID,
		Date:            slot.Date,
		Time:            slot.Time,
		Doctor:          slot.Doctor,
		UserID:          userID,
		SymptomsSummary: symptoms,
		BookedAt:        s.Now().Format("2006-01-02 15:04:05"),
		Status:          "confirmed",
	}, nil
}

// CalendarSummary describes the user's past and upcoming events, used to
// seed the assistant's instructions.
type CalendarSummary struct {
	Past     []CalendarEvent `json:"past_events"`
	Upcoming []CalendarEvent `json:"upcoming_events"`
}

// Summary partitions calendar events around the current date.
func (s *Service) Summary(ctx context.Context) (*CalendarSummary, error) {
	today := s.Now().Format(schedule.DateLayout)
	past, err := s.repo.PastEvents(ctx, today)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.repo.UpcomingEvents(ctx, today)
	if err != nil {
		return nil, err
	}
	return &CalendarSummary{Past: past, Upcoming: upcoming}, nil
}
