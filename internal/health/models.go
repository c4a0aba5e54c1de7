// Package health implements the appointment scheduling assistant: doctors,
// bookable slots, and conflict detection against a personal calendar.
package health

import "github.com/nimbusworks/nimbus/internal/schedule"

// Appointment is a bookable appointment slot.
type Appointment struct {
	ID        string  `gorm:"primaryKey" json:"id"`
	Date      string  `gorm:"not null" json:"date"` // YYYY-MM-DD
	Time      string  `gorm:"not null" json:"time"` // HH:MM AM/PM
	Doctor    string  `gorm:"not null" json:"doctor"`
	// No column default: gorm would omit a false value on insert and let
	// the default overwrite it, resurrecting booked slots.
	Available bool    `gorm:"not null" json:"available"`
	UserID    *string `json:"user_id,omitempty"`
}

func (Appointment) TableName() string { return "appointments" }

// EventType classifies personal calendar entries.
const (
	EventTypeMedical  = "medical"
	EventTypePersonal = "personal"
	EventTypeVacation = "vacation"
	EventTypeWork     = "work"
)

// CalendarEvent is a personal calendar entry used for conflict detection and
// appointment recommendations.
type CalendarEvent struct {
	ID        string `gorm:"primaryKey" json:"id"`
	Title     string `gorm:"not null" json:"title"`
	StartDate string `gorm:"not null" json:"start_date"` // YYYY-MM-DD
	EndDate   string `gorm:"not null" json:"end_date"`   // YYYY-MM-DD
	AllDay    bool   `gorm:"default:false" json:"all_day"`
	StartTime string `json:"start_time,omitempty"` // HH:MM AM/PM
	EndTime   string `json:"end_time,omitempty"`   // HH:MM AM/PM
	Location  string `json:"location,omitempty"`
	Details   string `json:"details,omitempty"`
	EventType string `gorm:"not null" json:"event_type"`
}

func (CalendarEvent) TableName() string { return "personal_calendar" }

// blocker converts the stored event into the conflict-detection shape.
func (e CalendarEvent) blocker() schedule.CalendarEvent {
	return schedule.CalendarEvent{
		Title:     e.Title,
		StartDate: e.StartDate,
		EndDate:   e.EndDate,
		AllDay:    e.AllDay,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
	}
}
