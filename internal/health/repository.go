package health

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrSlotUnavailable indicates a booking attempt on a slot that does not
// exist or is already taken.
var ErrSlotUnavailable = errors.New("appointment slot is not available")

// Repository provides data access for appointments and calendar events.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a Repository and migrates its tables.
func NewRepository(db *gorm.DB) (*Repository, error) {
	if err := db.AutoMigrate(&Appointment{}, &CalendarEvent{}); err != nil {
		return nil, fmt.Errorf("migrate health tables: %w", err)
	}
	return &Repository{db: db}, nil
}

// Doctors returns the distinct doctor names that have appointment slots.
func (r *Repository) Doctors(ctx context.Context) ([]string, error) {
	var doctors []string
	err := r.db.WithContext(ctx).
		Model(&Appointment{}).
		Distinct("doctor").
		Order("doctor").
		Pluck("doctor", &doctors).Error
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return doctors, nil
}

// AvailableSlots returns open slots for doctors whose name contains
// doctorName, optionally excluding a date, ordered by date and time.
func (r *Repository) AvailableSlots(ctx context.Context, doctorName, excludeDate string) ([]Appointment, error) {
	q := r.db.WithContext(ctx).
		Where("available = ?", true).
		Where("doctor LIKE ?", "%"+doctorName+"%")
	if excludeDate != "" {
		q = q.Where("date != ?", excludeDate)
	}
	var slots []Appointment
	if err := q.Order("date, time").Find(&slots).Error; err != nil {
		return nil, fmt.Errorf("available slots: %w", err)
	}
	return slots, nil
}

// Book marks the slot as taken by userID. It fails with ErrSlotUnavailable
// when the slot does not exist or was already booked.
func (r *Repository) Book(ctx context.Context, slotID, userID string) (*Appointment, error) {
	var booked Appointment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var slot Appointment
		if err := tx.Where("id = ? AND available = ?", slotID, true).First(&slot).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSlotUnavailable
			}
			return err
		}
		updates := map[string]any{"available": false, "user_id": userID}
		if err := tx.Model(&Appointment{}).Where("id = ?", slotID).Updates(updates).Error; err != nil {
			return err
		}
		slot.Available = false
		slot.UserID = &userID
		booked = slot
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booked, nil
}

// Events returns all personal calendar events.
func (r *Repository) Events(ctx context.Context) ([]CalendarEvent, error) {
	var events []CalendarEvent
	if err := r.db.WithContext(ctx).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// EventsByType returns calendar events of one type, most recent first.
func (r *Repository) EventsByType(ctx context.Context, eventType string) ([]CalendarEvent, error) {
	var events []CalendarEvent
	err := r.db.WithContext(ctx).
		Where("event_type = ?", eventType).
		Order("start_date DESC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list %s events: %w", eventType, err)
	}
	return events, nil
}

// PastEvents returns events ending before the given date, most recent first.
func (r *Repository) PastEvents(ctx context.Context, today string) ([]CalendarEvent, error) {
	var events []CalendarEvent
	err := r.db.WithContext(ctx).
		Where("end_date < ?", today).
		Order("end_date DESC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("past events: %w", err)
	}
	return events, nil
}

// UpcomingEvents returns events starting on or after the given date.
func (r *Repository) UpcomingEvents(ctx context.Context, today string) ([]CalendarEvent, error) {
	var events []CalendarEvent
	err := r.db.WithContext(ctx).
		Where("start_date >= ?", today).
		Order("start_date ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("upcoming events: %w", err)
	}
	return events, nil
}
