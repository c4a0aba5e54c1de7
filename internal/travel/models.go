package travel

import (
	"time"

	"gorm.io/datatypes"
)

// City is a destination reachable by the flight network. Code is the
// 3-letter IATA airport code of the primary airport.
type City struct {
	Code        string  `gorm:"primaryKey;size:3" json:"code"`
	Name        string  `json:"name"`
	Country     string  `json:"country"`
	Continent   string  `json:"continent"`
	Timezone    string  `json:"timezone"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Description string  `json:"description"`
	Tags        datatypes.JSON `json:"tags"`
}

func (City) TableName() string { return "cities" }

// Airline is a carrier operating on the flight network.
type Airline struct {
	Code      string         `gorm:"primaryKey;size:2" json:"code"`
	Name      string         `json:"name"`
	HubCities datatypes.JSON `json:"hub_cities"`
}

func (Airline) TableName() string { return "airlines" }

// FlightRoute is a city pair served by one or more airlines.
type FlightRoute struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	OriginCode      string         `gorm:"size:3;index:idx_route,priority:1" json:"origin_code"`
	DestinationCode string         `gorm:"size:3;index:idx_route,priority:2" json:"destination_code"`
	Airlines        datatypes.JSON `json:"airlines"`
	DurationMinutes int            `json:"flight_duration_minutes"`
	DistanceKM      int            `json:"distance_km"`
	TypicalAircraft datatypes.JSON `json:"typical_aircraft"`
}

func (FlightRoute) TableName() string { return "flight_routes" }

// Flight is a dated departure on a route with per-cabin inventory.
type Flight struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	FlightNumber    string  `json:"flight_number"`
	AirlineCode     string  `gorm:"size:2" json:"airline_code"`
	OriginCode      string  `gorm:"size:3;index:idx_flight_search,priority:1" json:"origin_code"`
	DestinationCode string  `gorm:"size:3;index:idx_flight_search,priority:2" json:"destination_code"`
	DepartureDate   string  `gorm:"index:idx_flight_search,priority:3" json:"departure_date"`
	DepartureTime   string  `json:"departure_time"`
	ArrivalDate     string  `json:"arrival_date"`
	ArrivalTime     string  `json:"arrival_time"`
	DurationMinutes int     `json:"duration_minutes"`
	AircraftType    string  `json:"aircraft_type"`
	EconomySeats    int     `json:"economy_seats_available"`
	EconomyPrice    float64 `json:"economy_price"`
	BusinessSeats   int     `json:"business_seats_available"`
	BusinessPrice   float64 `json:"business_price"`
	FirstSeats      int     `json:"first_seats_available"`
	FirstPrice      float64 `json:"first_price"`
	Status          string  `gorm:"default:scheduled" json:"status"`
}

func (Flight) TableName() string { return "flights" }

// Hotel is a property in a city with a price band and room types.
type Hotel struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `json:"name"`
	CityCode     string         `gorm:"size:3;index" json:"city_code"`
	Address      string         `json:"address"`
	Latitude     float64        `json:"latitude"`
	Longitude    float64        `json:"longitude"`
	StarRating   int            `json:"star_rating"`
	HotelType    string         `json:"hotel_type"`
	Amenities    datatypes.JSON `json:"amenities"`
	RoomTypes    datatypes.JSON `json:"room_types"`
	Tags         datatypes.JSON `json:"tags"`
	Description  string         `json:"description"`
	Neighborhood string         `json:"neighborhood_description"`
	BasePriceMin float64        `json:"base_price_min"`
	BasePriceMax float64        `json:"base_price_max"`
}

func (Hotel) TableName() string { return "hotels" }

// HotelAvailability is the nightly room inventory and pricing for a hotel.
type HotelAvailability struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	HotelID       uint    `gorm:"index:idx_hotel_date,priority:1" json:"hotel_id"`
	Date          string  `gorm:"index:idx_hotel_date,priority:2" json:"date"`
	StandardRooms int     `json:"standard_rooms_available"`
	StandardPrice float64 `json:"standard_room_price"`
	DeluxeRooms   int     `json:"deluxe_rooms_available"`
	DeluxePrice   float64 `json:"deluxe_room_price"`
	SuiteRooms    int     `json:"suite_rooms_available"`
	SuitePrice    float64 `json:"suite_room_price"`
	OccupancyRate float64 `json:"occupancy_rate"`
}

func (HotelAvailability) TableName() string { return "hotel_availability" }

// Activity is a bookable experience in a city.
type Activity struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `json:"name"`
	CityCode      string         `gorm:"size:3;index" json:"city_code"`
	Category      string         `json:"category"`
	Description   string         `json:"description"`
	DurationHours float64        `json:"duration_hours"`
	PriceAdult    float64        `json:"price_adult"`
	PriceChild    float64        `json:"price_child"`
	Rating        float64        `json:"rating"`
	Tags          datatypes.JSON `json:"tags"`
	Includes      datatypes.JSON `json:"includes"`
	AvailableDays datatypes.JSON `json:"available_days"`
	TimeSlots     datatypes.JSON `json:"time_slots"`
}

func (Activity) TableName() string { return "activities" }

// Booking statuses.
const (
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// Booking types.
const (
	BookingTypeFlight = "flight"
	BookingTypeHotel  = "hotel"
)

// Booking records a confirmed or cancelled reservation. Details carries the
// type-specific payload (passengers and cabin for flights, stay dates and
// rooms for hotels).
type Booking struct {
	Reference  string         `gorm:"primaryKey" json:"reference"`
	PlanID     string         `gorm:"index" json:"plan_id"`
	Type       string         `json:"type"`
	ItemID     uint           `json:"item_id"`
	Status     string         `json:"status"`
	Details    datatypes.JSON `json:"details"`
	TotalPrice float64        `json:"total_price"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (Booking) TableName() string { return "bookings" }

// TravelPlan groups the bookings of one trip.
type TravelPlan struct {
	ID        string  `gorm:"primaryKey" json:"id"`
	Title     string  `json:"title"`
	Travelers int     `json:"travelers"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Budget    float64 `json:"budget"`
	Status    string  `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (TravelPlan) TableName() string { return "travel_plans" }
