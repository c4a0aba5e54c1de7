package travel

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nimbusworks/nimbus/internal/store"
	"gorm.io/gorm"
)

var testStart = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) (*gorm.DB, *Service) {
	t.Helper()
	db, err := store.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	repo, err := NewRepository(db)
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	if err := Seed(db, SeedOptions{Start: testStart, Days: 5, Seed: 1}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return db, NewService(db, repo)
}

func TestSeedCreatesNetwork(t *testing.T) {
	db, service := newTestEnv(t)
	ctx := context.Background()

	var cities int64
	db.Model(&City{}).Count(&cities)
	if cities != 7 {
		t.Fatalf("expected 7 cities, got %d", cities)
	}

	// Full mesh over 7 cities.
	var routes int64
	db.Model(&FlightRoute{}).Count(&routes)
	if routes != 42 {
		t.Fatalf("expected 42 routes, got %d", routes)
	}

	flights, err := service.Repo().SearchFlights(ctx, "syd", "cdg", testStart.Format(DateLayout))
	if err != nil {
		t.Fatalf("search flights: %v", err)
	}
	if len(flights) == 0 {
		t.Fatal("expected seeded flights from SYD to CDG")
	}
	for i := 1; i < len(flights); i++ {
		if flights[i].EconomyPrice < flights[i-1].EconomyPrice {
			t.Fatalf("expected flights ordered by economy price, got %v then %v",
				flights[i-1].EconomyPrice, flights[i].EconomyPrice)
		}
	}
}

func TestCityInfo(t *testing.T) {
	_, service := newTestEnv(t)
	ctx := context.Background()

	city, err := service.Repo().CityInfo(ctx, "nrt")
	if err != nil {
		t.Fatalf("city info: %v", err)
	}
	if city.Name != "Tokyo" {
		t.Fatalf("expected Tokyo, got %q", city.Name)
	}

	if _, err := service.Repo().CityInfo(ctx, "XXX"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBookFlightDecrementsSeats(t *testing.T) {
	_, service := newTestEnv(t)
	ctx := context.Background()

	flights, err := service.Repo().SearchFlights(ctx, "SYD", "CDG", "")
	if err != nil || len(flights) == 0 {
		t.Fatalf("search flights: %v (%d found)", err, len(flights))
	}
	flight := flights[0]
	passengers := []Passenger{
		{FirstName: "John", LastName: "Doe", Email: "john@example.com"},
		{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"},
	}

	booking, err := service.BookFlight(ctx, flight.ID, passengers, CabinEconomy, "plan-1")
	if err != nil {
		t.Fatalf("book flight: %v", err)
	}
	if !strings.HasPrefix(booking.Reference, "NBK-") || len(booking.Reference) != 12 {
		t.Fatalf("unexpected reference format: %q", booking.Reference)
	}
	if want := flight.EconomyPrice * 2; booking.TotalPrice != want {
		t.Fatalf("expected total %v, got %v", want, booking.TotalPrice)
	}

	after, err := service.Repo().FlightByID(ctx, flight.ID)
	if err != nil {
		t.Fatalf("flight by id: %v", err)
	}
	if after.EconomySeats != flight.EconomySeats-2 {
		t.Fatalf("expected %d economy seats, got %d", flight.EconomySeats-2, after.EconomySeats)
	}
}

func TestBookFlightInsufficientSeats(t *testing.T) {
	db, service := newTestEnv(t)
	ctx := context.Background()

	tiny := Flight{
		FlightNumber: "QF1", AirlineCode: "QF",
		OriginCode: "SYD", DestinationCode: "NRT",
		DepartureDate: "2025-07-02", DepartureTime: "09:00",
		EconomySeats: 1, EconomyPrice: 500, Status: "scheduled",
	}
	if err := db.Create(&tiny).Error; err != nil {
		t.Fatalf("create flight: %v", err)
	}
	passengers := []Passenger{{FirstName: "A"}, {FirstName: "B"}}
	if _, err := service.BookFlight(ctx, tiny.ID, passengers, CabinEconomy, ""); !errors.Is(err, ErrInsufficientSeats) {
		t.Fatalf("expected ErrInsufficientSeats, got %v", err)
	}
}

func TestBookFlightUnknownCabin(t *testing.T) {
	_, service := newTestEnv(t)
	flights, _ := service.Repo().SearchFlights(context.Background(), "SYD", "CDG", "")
	_, err := service.BookFlight(context.Background(), flights[0].ID, []Passenger{{FirstName: "A"}}, "premium", "")
	if err == nil || !strings.Contains(err.Error(), "unknown cabin class") {
		t.Fatalf("expected unknown cabin error, got %v", err)
	}
}

func seedSmallHotel(t *testing.T, db *gorm.DB) Hotel {
	t.Helper()
	hotel := Hotel{Name: "Test Lodge", CityCode: "SYD", StarRating: 3, HotelType: "boutique", BasePriceMin: 100}
	if err := db.Create(&hotel).Error; err != nil {
		t.Fatalf("create hotel: %v", err)
	}
	availability := []HotelAvailability{
		{HotelID: hotel.ID, Date: "2025-08-01", StandardRooms: 2, StandardPrice: 100, DeluxeRooms: 1, DeluxePrice: 150},
		{HotelID: hotel.ID, Date: "2025-08-02", StandardRooms: 2, StandardPrice: 120, DeluxeRooms: 1, DeluxePrice: 180},
	}
	if err := db.Create(&availability).Error; err != nil {
		t.Fatalf("create availability: %v", err)
	}
	return hotel
}

func TestBookHotelAcrossNights(t *testing.T) {
	db, service := newTestEnv(t)
	ctx := context.Background()
	hotel := seedSmallHotel(t, db)

	booking, err := service.BookHotel(ctx, hotel.ID, "2025-08-01", "2025-08-03", RoomStandard, 1, []string{"John Doe"}, "plan-2")
	if err != nil {
		t.Fatalf("book hotel: %v", err)
	}
	if booking.Nights != 2 {
		t.Fatalf("expected 2 nights, got %d", booking.Nights)
	}
	if booking.TotalPrice != 220 {
		t.Fatalf("expected total 220, got %v", booking.TotalPrice)
	}

	var night HotelAvailability
	if err := db.Where("hotel_id = ? AND date = ?", hotel.ID, "2025-08-01").First(&night).Error; err != nil {
		t.Fatalf("load availability: %v", err)
	}
	if night.StandardRooms != 1 {
		t.Fatalf("expected 1 standard room left, got %d", night.StandardRooms)
	}

	// Two more rooms exceed the single room left on each night.
	if _, err := service.BookHotel(ctx, hotel.ID, "2025-08-01", "2025-08-03", RoomStandard, 2, nil, ""); !errors.Is(err, ErrNoAvailability) {
		t.Fatalf("expected ErrNoAvailability, got %v", err)
	}
}

func TestBookHotelMissingNight(t *testing.T) {
	db, service := newTestEnv(t)
	hotel := seedSmallHotel(t, db)

	// 2025-08-03 has no inventory row.
	_, err := service.BookHotel(context.Background(), hotel.ID, "2025-08-02", "2025-08-04", RoomStandard, 1, nil, "")
	if !errors.Is(err, ErrNoAvailability) {
		t.Fatalf("expected ErrNoAvailability, got %v", err)
	}

	// A failed stay must not leave partial decrements behind.
	var night HotelAvailability
	if err := db.Where("hotel_id = ? AND date = ?", hotel.ID, "2025-08-02").First(&night).Error; err != nil {
		t.Fatalf("load availability: %v", err)
	}
	if night.StandardRooms != 2 {
		t.Fatalf("expected rollback to 2 standard rooms, got %d", night.StandardRooms)
	}
}

func TestBookHotelRejectsReversedDates(t *testing.T) {
	db, service := newTestEnv(t)
	hotel := seedSmallHotel(t, db)
	_, err := service.BookHotel(context.Background(), hotel.ID, "2025-08-03", "2025-08-01", RoomStandard, 1, nil, "")
	if err == nil || !strings.Contains(err.Error(), "must be after") {
		t.Fatalf("expected reversed date error, got %v", err)
	}
}

func TestCancelBookingRestoresInventory(t *testing.T) {
	db, service := newTestEnv(t)
	ctx := context.Background()
	hotel := seedSmallHotel(t, db)

	booking, err := service.BookHotel(ctx, hotel.ID, "2025-08-01", "2025-08-03", RoomDeluxe, 1, nil, "")
	if err != nil {
		t.Fatalf("book hotel: %v", err)
	}

	cancellation, err := service.CancelBooking(ctx, booking.Reference, "change of plans")
	if err != nil {
		t.Fatalf("cancel booking: %v", err)
	}
	if cancellation.RefundAmount != booking.TotalPrice {
		t.Fatalf("expected refund %v, got %v", booking.TotalPrice, cancellation.RefundAmount)
	}

	var night HotelAvailability
	if err := db.Where("hotel_id = ? AND date = ?", hotel.ID, "2025-08-01").First(&night).Error; err != nil {
		t.Fatalf("load availability: %v", err)
	}
	if night.DeluxeRooms != 1 {
		t.Fatalf("expected deluxe inventory restored to 1, got %d", night.DeluxeRooms)
	}

	if _, err := service.CancelBooking(ctx, booking.Reference, ""); !errors.Is(err, ErrAlreadyCancelled) {
		t.Fatalf("expected ErrAlreadyCancelled, got %v", err)
	}
}

func TestCancelFlightBookingRestoresSeats(t *testing.T) {
	_, service := newTestEnv(t)
	ctx := context.Background()

	flights, _ := service.Repo().SearchFlights(ctx, "NYC", "CDG", "")
	flight := flights[0]
	booking, err := service.BookFlight(ctx, flight.ID, []Passenger{{FirstName: "A"}, {FirstName: "B"}}, CabinBusiness, "")
	if err != nil {
		t.Fatalf("book flight: %v", err)
	}
	if _, err := service.CancelBooking(ctx, booking.Reference, ""); err != nil {
		t.Fatalf("cancel booking: %v", err)
	}
	after, _ := service.Repo().FlightByID(ctx, flight.ID)
	if after.BusinessSeats != flight.BusinessSeats {
		t.Fatalf("expected business seats restored to %d, got %d", flight.BusinessSeats, after.BusinessSeats)
	}
}

func TestBookTripPartialFailure(t *testing.T) {
	db, service := newTestEnv(t)
	ctx := context.Background()
	hotel := seedSmallHotel(t, db)

	flights, _ := service.Repo().SearchFlights(ctx, "SYD", "DPS", "")
	trip, err := service.BookTrip(ctx, "plan-3",
		[]TripFlight{{FlightID: flights[0].ID, Cabin: CabinEconomy}},
		[]TripHotel{
			{HotelID: hotel.ID, CheckIn: "2025-08-01", CheckOut: "2025-08-03"},
			{HotelID: 999999, CheckIn: "2025-08-01", CheckOut: "2025-08-03"},
		},
		[]Passenger{{FirstName: "John", LastName: "Doe"}},
	)
	if err != nil {
		t.Fatalf("book trip: %v", err)
	}
	if trip.Status != "partial_success" {
		t.Fatalf("expected partial_success, got %q", trip.Status)
	}
	if trip.Flights != 1 || trip.Hotels != 1 || len(trip.Errors) != 1 {
		t.Fatalf("unexpected trip summary: %+v", trip)
	}

	bookings, err := service.Repo().BookingsByPlan(ctx, "plan-3")
	if err != nil {
		t.Fatalf("bookings by plan: %v", err)
	}
	if len(bookings) != 2 {
		t.Fatalf("expected 2 bookings on plan, got %d", len(bookings))
	}
}

func TestBookTripAllFailures(t *testing.T) {
	_, service := newTestEnv(t)
	ctx := context.Background()

	trip, err := service.BookTrip(ctx, "plan-4",
		[]TripFlight{{FlightID: 999999, Cabin: CabinEconomy}},
		[]TripHotel{{HotelID: 999999, CheckIn: "2025-08-01", CheckOut: "2025-08-03"}},
		[]Passenger{{FirstName: "John", LastName: "Doe"}},
	)
	if err != nil {
		t.Fatalf("book trip: %v", err)
	}
	if trip.Status != "failed" {
		t.Fatalf("expected failed status when nothing books, got %q", trip.Status)
	}
	if trip.Flights != 0 || trip.Hotels != 0 || len(trip.Errors) != 2 {
		t.Fatalf("unexpected trip summary: %+v", trip)
	}
	if len(trip.References) != 0 {
		t.Fatalf("expected no references, got %v", trip.References)
	}
}
