package travel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound indicates a lookup for a city, flight, hotel, or booking that
// does not exist.
var ErrNotFound = errors.New("travel: not found")

// Repository provides data access for the travel schema.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a Repository and migrates the travel tables.
func NewRepository(db *gorm.DB) (*Repository, error) {
	err := db.AutoMigrate(
		&City{}, &Airline{}, &FlightRoute{}, &Flight{},
		&Hotel{}, &HotelAvailability{}, &Activity{},
		&Booking{}, &TravelPlan{},
	)
	if err != nil {
		return nil, fmt.Errorf("migrate travel tables: %w", err)
	}
	return &Repository{db: db}, nil
}

// CityInfo returns the city for an airport code.
func (r *Repository) CityInfo(ctx context.Context, code string) (*City, error) {
	var city City
	err := r.db.WithContext(ctx).Where("code = ?", strings.ToUpper(code)).First(&city).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("city %s: %w", code, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("city info: %w", err)
	}
	return &city, nil
}

// SearchRoutes returns the routes between two cities with the airlines that
// serve them.
func (r *Repository) SearchRoutes(ctx context.Context, origin, destination string) ([]FlightRoute, error) {
	var routes []FlightRoute
	err := r.db.WithContext(ctx).
		Where("origin_code = ? AND destination_code = ?", strings.ToUpper(origin), strings.ToUpper(destination)).
		Limit(10).
		Find(&routes).Error
	if err != nil {
		return nil, fmt.Errorf("search routes: %w", err)
	}
	return routes, nil
}

// SearchFlights returns scheduled flights between two cities, optionally on
// a specific date, cheapest economy fare first.
func (r *Repository) SearchFlights(ctx context.Context, origin, destination, date string) ([]Flight, error) {
	q := r.db.WithContext(ctx).
		Where("origin_code = ? AND destination_code = ?", strings.ToUpper(origin), strings.ToUpper(destination)).
		Where("status = ?", "scheduled")
	if date != "" {
		q = q.Where("departure_date = ?", date)
	}
	var flights []Flight
	if err := q.Order("economy_price").Limit(10).Find(&flights).Error; err != nil {
		return nil, fmt.Errorf("search flights: %w", err)
	}
	return flights, nil
}

// FlightByID returns one flight.
func (r *Repository) FlightByID(ctx context.Context, id uint) (*Flight, error) {
	var flight Flight
	err := r.db.WithContext(ctx).First(&flight, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("flight %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("flight by id: %w", err)
	}
	return &flight, nil
}

// SearchHotels returns hotels in a city, best rated first.
func (r *Repository) SearchHotels(ctx context.Context, cityCode string) ([]Hotel, error) {
	var hotels []Hotel
	err := r.db.WithContext(ctx).
		Where("city_code = ?", strings.ToUpper(cityCode)).
		Order("star_rating DESC").
		Limit(20).
		Find(&hotels).Error
	if err != nil {
		return nil, fmt.Errorf("search hotels: %w", err)
	}
	return hotels, nil
}

// HotelByID returns one hotel.
func (r *Repository) HotelByID(ctx context.Context, id uint) (*Hotel, error) {
	var hotel Hotel
	err := r.db.WithContext(ctx).First(&hotel, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("hotel %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("hotel by id: %w", err)
	}
	return &hotel, nil
}

// SearchActivities returns activities in a city, cheapest first, optionally
// filtered by category.
func (r *Repository) SearchActivities(ctx context.Context, cityCode, category string) ([]Activity, error) {
	q := r.db.WithContext(ctx).Where("city_code = ?", strings.ToUpper(cityCode))
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var activities []Activity
	if err := q.Order("price_adult").Limit(20).Find(&activities).Error; err != nil {
		return nil, fmt.Errorf("search activities: %w", err)
	}
	return activities, nil
}

// BookingByReference returns one booking.
func (r *Repository) BookingByReference(ctx context.Context, reference string) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("booking %s: %w", reference, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("booking by reference: %w", err)
	}
	return &booking, nil
}

// BookingsByPlan returns the bookings attached to a travel plan.
func (r *Repository) BookingsByPlan(ctx context.Context, planID string) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("plan_id = ?", planID).
		Order("created_at").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("bookings by plan: %w", err)
	}
	return bookings, nil
}
