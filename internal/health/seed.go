package health

import (
	"fmt"

	"gorm.io/gorm"
)

func strptr(s string) *string { return &s }

// Seed loads the demo dataset: a week of appointment slots across five
// doctors and a personal calendar with vacations, past checkups, and
// upcoming commitments. Safe to call once on an empty database.
func Seed(db *gorm.DB) error {
	appointments := []Appointment{
		{ID: "slot1", Date: "2025-06-10", Time: "09:00 AM", Doctor: "Dr. Smith", Available: false, UserID: strptr("demo_user")},
		{ID: "slot2", Date: "2025-06-10", Time: "10:30 AM", Doctor: "Dr. Smith", Available: true},
		{ID: "slot3", Date: "2025-06-10", Time: "02:00 PM", Doctor: "Dr. Johnson", Available: true},
		{ID: "slot4", Date: "2025-06-11", Time: "11:00 AM", Doctor: "Dr. Williams", Available: true},
		{ID: "slot5", Date: "2025-06-11", Time: "03:30 PM", Doctor: "Dr. Davis", Available: true},
		{ID: "slot6", Date: "2025-06-12", Time: "01:00 PM", Doctor: "Dr. Wilson", Available: true},
		{ID: "slot7", Date: "2025-06-10", Time: "09:00 AM", Doctor: "Dr. Johnson", Available: true},
		{ID: "slot8", Date: "2025-06-10", Time: "11:30 AM", Doctor: "Dr. Johnson", Available: true},
		{ID: "slot9", Date: "2025-06-11", Time: "10:00 AM", Doctor: "Dr. Johnson", Available: true},
		{ID: "slot10", Date: "2025-06-12", Time: "02:30 PM", Doctor: "Dr. Johnson", Available: true},
		{ID: "slot11", Date: "2025-06-10", Time: "08:30 AM", Doctor: "Dr. Williams", Available: true},
		{ID: "slot12", Date: "2025-06-11", Time: "01:30 PM", Doctor: "Dr. Williams", Available: true},
		{ID: "slot13", Date: "2025-06-12", Time: "09:30 AM", Doctor: "Dr. Williams", Available: true},
		{ID: "slot14", Date: "2025-06-12", Time: "03:00 PM", Doctor: "Dr. Williams", Available: true},
		{ID: "slot15", Date: "2025-06-10", Time: "04:00 PM", Doctor: "Dr. Davis", Available: true},
		{ID: "slot16", Date: "2025-06-11", Time: "09:30 AM", Doctor: "Dr. Davis", Available: true},
		{ID: "slot17", Date: "2025-06-12", Time: "11:00 AM", Doctor: "Dr. Davis", Available: true},
		{ID: "slot18", Date: "2025-06-12", Time: "04:30 PM", Doctor: "Dr. Davis", Available: true},
		{ID: "slot19", Date: "2025-06-10", Time: "01:00 PM", Doctor: "Dr. Wilson", Available: true},
		{ID: "slot20", Date: "2025-06-11", Time: "02:30 PM", Doctor: "Dr. Wilson", Available: true},
		{ID: "slot21", Date: "2025-06-12", Time: "10:30 AM", Doctor: "Dr. Wilson", Available: true},
		{ID: "slot22", Date: "2025-06-13", Time: "09:00 AM", Doctor: "Dr. Wilson", Available: true},
	}
	events := []CalendarEvent{
		{
			ID: "event1", Title: "Paris Vacation",
			StartDate: "2025-05-25", EndDate: "2025-06-04", AllDay: true,
			Location: "Paris", Details: "10-day vacation in Paris", EventType: EventTypeVacation,
		},
		{
			ID: "event2", Title: "NZ Vacation",
			StartDate: "2025-04-01", EndDate: "2025-04-05", AllDay: true,
			Location: "New Zealand", Details: "4-day vacation touring Queenstown", EventType: EventTypeVacation,
		},
		{
			ID: "event3", Title: "Checkup with Dr. Smith",
			StartDate: "2024-03-11", EndDate: "2024-03-11",
			StartTime: "02:00 PM", EndTime: "03:00 PM",
			Location: "Sunshine Medical Clinic", Details: "Annual physical examination", EventType: EventTypeMedical,
		},
		{
			ID: "event4", Title: "Dental Cleaning",
			StartDate: "2025-06-10", EndDate: "2025-06-10",
			StartTime: "05:00 PM", EndTime: "05:30 PM",
			Location: "Bright Smile Dental", Details: "Regular teeth cleaning and checkup", EventType: EventTypeMedical,
		},
		{
			ID: "event5", Title: "Brunch with family",
			StartDate: "2025-06-10", EndDate: "2025-06-10",
			StartTime: "10:00 AM", EndTime: "11:00 AM",
			Location: "The Brunch Club", Details: "Monthly brunch with family", EventType: EventTypePersonal,
		},
		{
			ID: "event6", Title: "Quarterly Planning Offsite",
			StartDate: "2025-05-15", EndDate: "2025-05-15",
			StartTime: "09:00 AM", EndTime: "05:00 PM",
			Location: "Lakeside Conference Center", Details: "Q3 planning with the whole team", EventType: EventTypeWork,
		},
	}
	if err := db.Create(&appointments).Error; err != nil {
		return fmt.Errorf("seed appointments: %w", err)
	}
	if err := db.Create(&events).Error; err != nil {
		return fmt.Errorf("seed calendar events: %w", err)
	}
	return nil
}
