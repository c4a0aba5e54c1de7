package health

import (
	"context"
	"errors"
	"testing"

	"github.com/nimbusworks/nimbus/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := store.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	repo, err := NewRepository(db)
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	if err := Seed(db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return NewService(repo)
}

func TestDoctors(t *testing.T) {
	service := newTestService(t)
	doctors, err := service.Doctors(context.Background())
	if err != nil {
		t.Fatalf("doctors: %v", err)
	}
	if len(doctors) != 5 {
		t.Fatalf("expected 5 doctors, got %d: %v", len(doctors), doctors)
	}
	if doctors[0] != "Dr. Davis" {
		t.Fatalf("expected sorted doctors, got %v", doctors)
	}
}

func TestNonClashingSlotsFiltersCalendar(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	// Dr. Smith's only open slot (10:30 AM on 2025-06-10) falls inside the
	// family brunch window, so nothing remains.
	slots, err := service.NonClashingSlots(ctx, "Smith", "")
	if err != nil {
		t.Fatalf("non-clashing slots: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected brunch to block all Smith slots, got %v", slots)
	}

	// Dr. Johnson's slots sit outside the brunch window and stay available.
	slots, err = service.NonClashingSlots(ctx, "Johnson", "")
	if err != nil {
		t.Fatalf("non-clashing slots: %v", err)
	}
	if len(slots) != 5 {
		t.Fatalf("expected 5 open Johnson slots, got %d", len(slots))
	}
}

func TestSeededBookedSlotStaysUnavailable(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	// slot1 is seeded as already booked; inserting it must not resurrect it
	// as available, so a second booking attempt fails.
	if _, err := service.Book(ctx, "slot1", "other_user", nil); !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable for seeded booked slot, got %v", err)
	}

	// And it never shows up among Dr. Smith's open slots.
	slots, err := service.NonClashingSlots(ctx, "Smith", "")
	if err != nil {
		t.Fatalf("non-clashing slots: %v", err)
	}
	for _, slot := range slots {
		if slot.ID == "slot1" {
			t.Fatalf("expected booked slot1 to stay hidden, got %v", slots)
		}
	}
}

func TestNonClashingSlotsExcludesDate(t *testing.T) {
	service := newTestService(t)
	slots, err := service.NonClashingSlots(context.Background(), "Wilson", "2025-06-12")
	if err != nil {
		t.Fatalf("non-clashing slots: %v", err)
	}
	for _, slot := range slots {
		if slot.Date == "2025-06-12" {
			t.Fatalf("expected excluded date to be filtered, got %v", slots)
		}
	}
}

func TestRecommendedSlots(t *testing.T) {
	service := newTestService(t)
	available := []Appointment{
		{ID: "a1", Date: "2025-06-14", Time: "09:00 AM", Doctor: "Dr. Smith", Available: true},
		{ID: "a2", Date: "2025-06-14", Time: "10:00 AM", Doctor: "Dr. Wilson", Available: true},
	}
	recommended, err := service.RecommendedSlots(context.Background(), available)
	if err != nil {
		t.Fatalf("recommended slots: %v", err)
	}
	// The seed calendar has a past "Checkup with Dr. Smith" entry.
	if len(recommended) != 1 {
		t.Fatalf("expected one recommendation, got %v", recommended)
	}
	if recommended[0].Reason != "Previous appointment with Dr. Smith" {
		t.Fatalf("unexpected reason: %q", recommended[0].Reason)
	}
}

func TestBookFlipsAvailability(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	confirmation, err := service.Book(ctx, "slot2", "user-42", map[string]any{"symptoms": "cough"})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if confirmation.Status != "confirmed" || confirmation.Doctor != "Dr. Smith" {
		t.Fatalf("unexpected confirmation: %+v", confirmation)
	}

	// A second booking of the same slot must fail.
	if _, err := service.Book(ctx, "slot2", "user-43", nil); !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable, got %v", err)
	}
}

func TestBookUnknownSlot(t *testing.T) {
	service := newTestService(t)
	if _, err := service.Book(context.Background(), "missing", "user", nil); !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable, got %v", err)
	}
}

func TestSummaryPartitionsEvents(t *testing.T) {
	service := newTestService(t)
	summary, err := service.Summary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	// Demo date 2025-06-05: both vacations, the 2024 checkup, and the
	// planning offsite are past; dental cleaning and brunch are upcoming.
	if len(summary.Past) != 4 {
		t.Fatalf("expected 4 past events, got %d", len(summary.Past))
	}
	if len(summary.Upcoming) != 2 {
		t.Fatalf("expected 2 upcoming events, got %d", len(summary.Upcoming))
	}
}

func TestDoctorFromTitle(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Checkup with Dr. Smith", "Dr. Smith"},
		{"Dental Cleaning", ""},
		{"Consultation with Dr. Jones", "Dr. Jones"},
	}
	for _, tc := range cases {
		if got := doctorFromTitle(tc.title); got != tc.want {
			t.Fatalf("doctorFromTitle(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}
