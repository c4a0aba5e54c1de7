package travel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Cabin classes.
const (
	CabinEconomy  = "economy"
	CabinBusiness = "business"
	CabinFirst    = "first"
)

// Room types.
const (
	RoomStandard = "standard"
	RoomDeluxe   = "deluxe"
	RoomSuite    = "suite"
)

// DateLayout is the wire format for travel dates.
const DateLayout = "2006-01-02"

var (
	// ErrInsufficientSeats indicates the requested cabin cannot seat all
	// passengers.
	ErrInsufficientSeats = errors.New("travel: insufficient seats")
	// ErrNoAvailability indicates a night in the stay has no rooms of the
	// requested type.
	ErrNoAvailability = errors.New("travel: no room availability")
	// ErrAlreadyCancelled indicates a cancel attempt on a cancelled booking.
	ErrAlreadyCancelled = errors.New("travel: booking already cancelled")
)

// Passenger identifies one traveler on a flight booking.
type Passenger struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	DateOfBirth    string `json:"date_of_birth,omitempty"`
	PassportNumber string `json:"passport_number,omitempty"`
	Email          string `json:"email,omitempty"`
}

// FlightBooking confirms a flight reservation.
type FlightBooking struct {
	Reference  string      `json:"reference"`
	Flight     *Flight     `json:"flight"`
	Cabin      string      `json:"cabin_class"`
	Passengers []Passenger `json:"passengers"`
	TotalPrice float64     `json:"total_price"`
	Status     string      `json:"status"`
}

// HotelBooking confirms a hotel reservation.
type HotelBooking struct {
	Reference  string   `json:"reference"`
	Hotel      *Hotel   `json:"hotel"`
	CheckIn    string   `json:"check_in"`
	CheckOut   string   `json:"check_out"`
	RoomType   string   `json:"room_type"`
	Rooms      int      `json:"rooms"`
	Guests     []string `json:"guests,omitempty"`
	Nights     int      `json:"nights"`
	TotalPrice float64  `json:"total_price"`
	Status     string   `json:"status"`
}

// Cancellation confirms a cancelled booking and its refund.
type Cancellation struct {
	Reference    string  `json:"reference"`
	RefundAmount float64 `json:"refund_amount"`
	RefundStatus string  `json:"refund_status"`
	Reason       string  `json:"reason,omitempty"`
}

// flightDetails is the Details payload of a flight booking, kept so a
// cancellation can restore the seat inventory.
type flightDetails struct {
	FlightNumber string      `json:"flight_number"`
	Cabin        string      `json:"cabin_class"`
	Passengers   []Passenger `json:"passengers"`
}

// hotelDetails is the Details payload of a hotel booking.
type hotelDetails struct {
	CheckIn  string   `json:"check_in"`
	CheckOut string   `json:"check_out"`
	RoomType string   `json:"room_type"`
	Rooms    int      `json:"rooms"`
	Guests   []string `json:"guests,omitempty"`
	Requests string   `json:"special_requests,omitempty"`
}

// Service implements travel search and booking over the repository.
type Service struct {
	db   *gorm.DB
	repo *Repository
}

// NewService creates a Service over a migrated repository.
func NewService(db *gorm.DB, repo *Repository) *Service {
	return &Service{db: db, repo: repo}
}

// Repo exposes the underlying repository for read-only searches.
func (s *Service) Repo() *Repository { return s.repo }

// newReference mints a booking reference like NBK-3F2A91C4.
func newReference() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "NBK-" + id[:8]
}

// cabinInventory returns the seat count and per-seat price of a cabin.
func cabinInventory(f *Flight, cabin string) (int, float64, error) {
	switch cabin {
	case CabinEconomy:
		return f.EconomySeats, f.EconomyPrice, nil
	case CabinBusiness:
		return f.BusinessSeats, f.BusinessPrice, nil
	case CabinFirst:
		return f.FirstSeats, f.FirstPrice, nil
	default:
		return 0, 0, fmt.Errorf("travel: unknown cabin class %q", cabin)
	}
}

func cabinSeatColumn(cabin string) string {
	switch cabin {
	case CabinBusiness:
		return "business_seats"
	case CabinFirst:
		return "first_seats"
	default:
		return "economy_seats"
	}
}

// stayNights expands [checkIn, checkOut) into nightly dates.
func stayNights(checkIn, checkOut string) ([]string, error) {
	in, err := time.Parse(DateLayout, checkIn)
	if err != nil {
		return nil, fmt.Errorf("travel: parse check-in date %q: %w", checkIn, err)
	}
	out, err := time.Parse(DateLayout, checkOut)
	if err != nil {
		return nil, fmt.Errorf("travel: parse check-out date %q: %w", checkOut, err)
	}
	if !out.After(in) {
		return nil, fmt.Errorf("travel: check-out %s must be after check-in %s", checkOut, checkIn)
	}
	var nights []string
	for d := in; d.Before(out); d = d.AddDate(0, 0, 1) {
		nights = append(nights, d.Format(DateLayout))
	}
	return nights, nil
}

// roomInventory returns the available rooms and nightly price for a room
// type on one availability row.
func roomInventory(a *HotelAvailability, roomType string) (int, float64, error) {
	switch roomType {
	case RoomStandard:
		return a.StandardRooms, a.StandardPrice, nil
	case RoomDeluxe:
		return a.DeluxeRooms, a.DeluxePrice, nil
	case RoomSuite:
		return a.SuiteRooms, a.SuitePrice, nil
	default:
		return 0, 0, fmt.Errorf("travel: unknown room type %q", roomType)
	}
}

func roomColumn(roomType string) string {
	switch roomType {
	case RoomDeluxe:
		return "deluxe_rooms"
	case RoomSuite:
		return "suite_rooms"
	default:
		return "standard_rooms"
	}
}

// BookFlight reserves seats for the passengers in the given cabin. The
// whole reservation is transactional: seats are decremented and the booking
// row is created together.
func (s *Service) BookFlight(ctx context.Context, flightID uint, passengers []Passenger, cabin, planID string) (*FlightBooking, error) {
	if len(passengers) == 0 {
		return nil, errors.New("travel: at least one passenger is required")
	}
	if cabin == "" {
		cabin = CabinEconomy
	}
	var confirmation *FlightBooking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var flight Flight
		if err := tx.First(&flight, flightID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("flight %d: %w", flightID, ErrNotFound)
			}
			return err
		}
		seats, price, err := cabinInventory(&flight, cabin)
		if err != nil {
			return err
		}
		if seats < len(passengers) {
			return fmt.Errorf("only %d %s seats left for flight %s: %w",
				seats, cabin, flight.FlightNumber, ErrInsufficientSeats)
		}
		column := cabinSeatColumn(cabin)
		err = tx.Model(&Flight{}).Where("id = ?", flight.ID).
			UpdateColumn(column, gorm.Expr(column+" - ?", len(passengers))).Error
		if err != nil {
			return err
		}
		details, err := json.Marshal(flightDetails{
			FlightNumber: flight.FlightNumber,
			Cabin:        cabin,
			Passengers:   passengers,
		})
		if err != nil {
			return err
		}
		booking := Booking{
			Reference:  newReference(),
			PlanID:     planID,
			Type:       BookingTypeFlight,
			ItemID:     flight.ID,
			Status:     BookingConfirmed,
			Details:    datatypes.JSON(details),
			TotalPrice: price * float64(len(passengers)),
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		confirmation = &FlightBooking{
			Reference:  booking.Reference,
			Flight:     &flight,
			Cabin:      cabin,
			Passengers: passengers,
			TotalPrice: booking.TotalPrice,
			Status:     booking.Status,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("flight booked",
		"reference", confirmation.Reference,
		"flight", confirmation.Flight.FlightNumber,
		"cabin", cabin,
		"passengers", len(passengers),
	)
	return confirmation, nil
}

// BookHotel reserves rooms for every night of the stay. Each night must
// have enough rooms of the requested type; the reservation fails as a whole
// otherwise.
func (s *Service) BookHotel(ctx context.Context, hotelID uint, checkIn, checkOut, roomType string, rooms int, guests []string, planID string) (*HotelBooking, error) {
	if rooms < 1 {
		rooms = 1
	}
	if roomType == "" {
		roomType = RoomStandard
	}
	nights, err := stayNights(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	var confirmation *HotelBooking
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var hotel Hotel
		if err := tx.First(&hotel, hotelID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("hotel %d: %w", hotelID, ErrNotFound)
			}
			return err
		}
		column := roomColumn(roomType)
		var total float64
		for _, night := range nights {
			var avail HotelAvailability
			err := tx.Where("hotel_id = ? AND date = ?", hotel.ID, night).First(&avail).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("hotel %s has no inventory on %s: %w", hotel.Name, night, ErrNoAvailability)
			}
			if err != nil {
				return err
			}
			free, price, err := roomInventory(&avail, roomType)
			if err != nil {
				return err
			}
			if free < rooms {
				return fmt.Errorf("hotel %s has %d %s rooms on %s, need %d: %w",
					hotel.Name, free, roomType, night, rooms, ErrNoAvailability)
			}
			err = tx.Model(&HotelAvailability{}).Where("id = ?", avail.ID).
				UpdateColumn(column, gorm.Expr(column+" - ?", rooms)).Error
			if err != nil {
				return err
			}
			total += price * float64(rooms)
		}
		details, err := json.Marshal(hotelDetails{
			CheckIn:  checkIn,
			CheckOut: checkOut,
			RoomType: roomType,
			Rooms:    rooms,
			Guests:   guests,
		})
		if err != nil {
			return err
		}
		booking := Booking{
			Reference:  newReference(),
			PlanID:     planID,
			Type:       BookingTypeHotel,
			ItemID:     hotel.ID,
			Status:     BookingConfirmed,
			Details:    datatypes.JSON(details),
			TotalPrice: total,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		confirmation = &HotelBooking{
			Reference:  booking.Reference,
			Hotel:      &hotel,
			CheckIn:    checkIn,
			CheckOut:   checkOut,
			RoomType:   roomType,
			Rooms:      rooms,
			Guests:     guests,
			Nights:     len(nights),
			TotalPrice: total,
			Status:     booking.Status,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("hotel booked",
		"reference", confirmation.Reference,
		"hotel", confirmation.Hotel.Name,
		"nights", confirmation.Nights,
		"rooms", rooms,
	)
	return confirmation, nil
}

// CancelBooking cancels a booking and restores the seat or room inventory
// it held. The full booking amount is refunded.
func (s *Service) CancelBooking(ctx context.Context, reference, reason string) (*Cancellation, error) {
	var cancellation *Cancellation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking Booking
		err := tx.Where("reference = ?", reference).First(&booking).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("booking %s: %w", reference, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if booking.Status == BookingCancelled {
			return fmt.Errorf("booking %s: %w", reference, ErrAlreadyCancelled)
		}
		switch booking.Type {
		case BookingTypeFlight:
			var details flightDetails
			if err := json.Unmarshal(booking.Details, &details); err != nil {
				return fmt.Errorf("decode flight booking details: %w", err)
			}
			column := cabinSeatColumn(details.Cabin)
			err = tx.Model(&Flight{}).Where("id = ?", booking.ItemID).
				UpdateColumn(column, gorm.Expr(column+" + ?", len(details.Passengers))).Error
			if err != nil {
				return err
			}
		case BookingTypeHotel:
			var details hotelDetails
			if err := json.Unmarshal(booking.Details, &details); err != nil {
				return fmt.Errorf("decode hotel booking details: %w", err)
			}
			nights, err := stayNights(details.CheckIn, details.CheckOut)
			if err != nil {
				return err
			}
			column := roomColumn(details.RoomType)
			for _, night := range nights {
				err = tx.Model(&HotelAvailability{}).
					Where("hotel_id = ? AND date = ?", booking.ItemID, night).
					UpdateColumn(column, gorm.Expr(column+" + ?", details.Rooms)).Error
				if err != nil {
					return err
				}
			}
		}
		err = tx.Model(&Booking{}).Where("reference = ?", reference).
			Update("status", BookingCancelled).Error
		if err != nil {
			return err
		}
		cancellation = &Cancellation{
			Reference:    reference,
			RefundAmount: booking.TotalPrice,
			RefundStatus: "processed",
			Reason:       reason,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("booking cancelled", "reference", reference, "refund", cancellation.RefundAmount)
	return cancellation, nil
}

// TripFlight selects one flight of a trip booking.
type TripFlight struct {
	FlightID uint   `json:"flight_id"`
	Cabin    string `json:"cabin_class,omitempty"`
}

// TripHotel selects one hotel stay of a trip booking.
type TripHotel struct {
	HotelID  uint   `json:"hotel_id"`
	CheckIn  string `json:"check_in_date"`
	CheckOut string `json:"check_out_date"`
	RoomType string `json:"room_type,omitempty"`
	Rooms    int    `json:"rooms,omitempty"`
}

// TripBooking aggregates the outcome of booking a complete trip. Partial
// failures are reported per item rather than rolling back the trip.
type TripBooking struct {
	Status     string   `json:"status"`
	References []string `json:"references"`
	TotalCost  float64  `json:"total_cost"`
	Currency   string   `json:"currency"`
	Errors     []string `json:"errors,omitempty"`
	Flights    int      `json:"flights_booked"`
	Hotels     int      `json:"hotels_booked"`
}

// BookTrip books all flights and hotels of a plan. Guests on hotel bookings
// default to the passenger names.
func (s *Service) BookTrip(ctx context.Context, planID string, flights []TripFlight, hotels []TripHotel, passengers []Passenger) (*TripBooking, error) {
	trip := &TripBooking{Currency: "USD"}
	for _, f := range flights {
		booking, err := s.BookFlight(ctx, f.FlightID, passengers, f.Cabin, planID)
		if err != nil {
			trip.Errors = append(trip.Errors, fmt.Sprintf("flight %d: %v", f.FlightID, err))
			continue
		}
		trip.References = append(trip.References, booking.Reference)
		trip.TotalCost += booking.TotalPrice
		trip.Flights++
	}
	guests := make([]string, 0, len(passengers))
	for _, p := range passengers {
		guests = append(guests, strings.TrimSpace(p.FirstName+" "+p.LastName))
	}
	for _, h := range hotels {
		rooms := h.Rooms
		if rooms < 1 {
			rooms = 1
		}
		stayGuests := guests
		if len(stayGuests) > rooms {
			stayGuests = stayGuests[:rooms]
		}
		booking, err := s.BookHotel(ctx, h.HotelID, h.CheckIn, h.CheckOut, h.RoomType, rooms, stayGuests, planID)
		if err != nil {
			trip.Errors = append(trip.Errors, fmt.Sprintf("hotel %d: %v", h.HotelID, err))
			continue
		}
		trip.References = append(trip.References, booking.Reference)
		trip.TotalCost += booking.TotalPrice
		trip.Hotels++
	}
	switch {
	case len(trip.Errors) == 0:
		trip.Status = "success"
	case trip.Flights+trip.Hotels == 0:
		trip.Status = "failed"
	default:
		trip.Status = "partial_success"
	}
	return trip, nil
}
