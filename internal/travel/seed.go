package travel

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SeedOptions controls the generated dataset. Zero values fall back to a
// 30-day window starting today with a fixed random seed, so test datasets
// are reproducible.
type SeedOptions struct {
	Start time.Time
	Days  int
	Seed  int64
}

func (o *SeedOptions) defaults() {
	if o.Start.IsZero() {
		o.Start = time.Now().UTC().Truncate(24 * time.Hour)
	}
	if o.Days <= 0 {
		o.Days = 30
	}
	if o.Seed == 0 {
		o.Seed = 1
	}
}

type cityTemplate struct {
	City
	tags []string
}

func mustJSON(v any) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return datatypes.JSON(b)
}

var demoCities = []cityTemplate{
	{City{Code: "NYC", Name: "New York", Country: "United States", Continent: "North America", Timezone: "America/New_York", Latitude: 40.7128, Longitude: -74.0060,
		Description: "The city that never sleeps, known for its iconic skyline, Broadway shows, world-class museums, and diverse culinary scene."},
		[]string{"urban", "cultural", "business", "shopping", "nightlife", "broadway"}},
	{City{Code: "GIG", Name: "Rio de Janeiro", Country: "Brazil", Continent: "South America", Timezone: "America/Sao_Paulo", Latitude: -22.9068, Longitude: -43.1729,
		Description: "Cidade Maravilhosa with stunning beaches, Christ the Redeemer, vibrant carnival culture, and breathtaking mountain views."},
		[]string{"beach", "cultural", "party", "nature", "adventure", "carnival"}},
	{City{Code: "CDG", Name: "Paris", Country: "France", Continent: "Europe", Timezone: "Europe/Paris", Latitude: 48.8566, Longitude: 2.3522,
		Description: "The City of Light, renowned for romance, art, fashion, gastronomy, and iconic landmarks like the Eiffel Tower and Louvre."},
		[]string{"romantic", "cultural", "art", "gourmet", "fashion", "historic"}},
	{City{Code: "CPT", Name: "Cape Town", Country: "South Africa", Continent: "Africa", Timezone: "Africa/Johannesburg", Latitude: -33.9249, Longitude: 18.4241,
		Description: "Mother City featuring Table Mountain, pristine beaches, wine regions, and a perfect blend of natural beauty and urban sophistication."},
		[]string{"nature", "beach", "wine", "adventure", "scenic", "wildlife"}},
	{City{Code: "NRT", Name: "Tokyo", Country: "Japan", Continent: "Asia", Timezone: "Asia/Tokyo", Latitude: 35.6762, Longitude: 139.6503,
		Description: "A fascinating blend of ancient traditions and cutting-edge technology, offering temples, gardens, cuisine, and neon-lit streets."},
		[]string{"cultural", "technology", "gourmet", "shopping", "traditional", "modern"}},
	{City{Code: "SYD", Name: "Sydney", Country: "Australia", Continent: "Oceania", Timezone: "Australia/Sydney", Latitude: -33.8688, Longitude: 151.2093,
		Description: "Harbor city famous for its Opera House, Harbour Bridge, beautiful beaches, and laid-back lifestyle."},
		[]string{"beach", "urban", "nature", "harbor", "outdoor", "cosmopolitan"}},
	{City{Code: "DPS", Name: "Bali (Denpasar)", Country: "Indonesia", Continent: "Asia", Timezone: "Asia/Makassar", Latitude: -8.65, Longitude: 115.2167,
		Description: "Island paradise known for stunning beaches, ancient temples, terraced rice fields, and spiritual culture."},
		[]string{"beach", "spiritual", "romantic", "nature", "cultural", "tropical"}},
}

var demoAirlines = []struct {
	code string
	name string
	hubs []string
}{
	{"AA", "American Airlines", []string{"NYC", "DFW", "MIA"}},
	{"UA", "United Airlines", []string{"NYC", "SFO", "ORD"}},
	{"DL", "Delta Air Lines", []string{"NYC", "ATL", "LAX"}},
	{"AF", "Air France", []string{"CDG", "ORY"}},
	{"JL", "Japan Airlines", []string{"NRT", "HND"}},
	{"NH", "All Nippon Airways", []string{"NRT", "HND"}},
	{"QF", "Qantas", []string{"SYD", "MEL"}},
	{"SA", "South African Airways", []string{"JNB", "CPT"}},
	{"GA", "Garuda Indonesia", []string{"CGK", "DPS"}},
	{"LA", "LATAM Airlines", []string{"GRU", "SCL", "GIG"}},
}

var aircraftByRange = map[string][]string{
	"short":  {"A320", "B737", "A319", "E190"},
	"medium": {"A321", "B737-900", "A320neo", "B757"},
	"long":   {"A350", "B787", "A330", "B777", "A380"},
}

type hotelTemplate struct {
	hotelType string
	names     []string
	priceMin  float64
	priceMax  float64
	stars     int
	amenities []string
	roomTypes []string
	tags      []string
	count     int
}

var hotelTemplates = []hotelTemplate{
	{"luxury", []string{"Grand %s", "The %s Palace", "Mandarin Oriental %s"}, 400, 1200, 5,
		[]string{"spa", "pool", "gym", "restaurant", "bar", "concierge", "room-service"},
		[]string{"deluxe", "suite"}, []string{"luxury", "elegant", "upscale"}, 2},
	{"boutique", []string{"Hotel %s Boutique", "The %s House", "Artisan %s"}, 200, 600, 4,
		[]string{"restaurant", "bar", "gym", "concierge", "wifi"},
		[]string{"standard", "deluxe", "suite"}, []string{"boutique", "stylish", "romantic"}, 3},
	{"business", []string{"Hilton %s", "Marriott %s", "Hyatt %s"}, 150, 400, 4,
		[]string{"business-center", "meeting-rooms", "gym", "restaurant", "wifi"},
		[]string{"standard", "deluxe", "suite"}, []string{"business", "convenient", "central"}, 3},
	{"budget", []string{"Comfort Inn %s", "%s Budget Hotel", "EasyStay %s"}, 50, 150, 2,
		[]string{"wifi", "breakfast", "parking"},
		[]string{"standard"}, []string{"budget", "affordable", "value"}, 3},
}

type activityTemplate struct {
	city     string
	name     string
	category string
	desc     string
	hours    float64
	adult    float64
	child    float64
	tags     []string
	includes []string
}

var demoActivities = []activityTemplate{
	{"NYC", "Statue of Liberty & Ellis Island Tour", "sightseeing", "Visit the iconic Statue of Liberty and explore the Immigration Museum at Ellis Island.", 4, 25, 15, []string{"iconic", "historical"}, []string{"Ferry tickets", "Audio guide"}},
	{"NYC", "Broadway Show Experience", "cultural", "Enjoy a world-class Broadway performance in the Theater District.", 3, 150, 100, []string{"theater", "nightlife"}, []string{"Premium seating"}},
	{"CDG", "Eiffel Tower Skip-the-Line", "sightseeing", "Fast-track access to the Paris icon with summit views.", 2, 35, 20, []string{"iconic", "must-see"}, []string{"Skip-the-line tickets"}},
	{"CDG", "Louvre Museum Tour", "cultural", "Guided tour of the world-famous art museum.", 3, 65, 40, []string{"art", "historical"}, []string{"Guide", "Museum entry"}},
	{"CDG", "Seine River Dinner Cruise", "dining", "Romantic dinner cruise with city views.", 2.5, 120, 80, []string{"romantic", "gourmet"}, []string{"Three-course dinner"}},
	{"NRT", "Tsukiji Fish Market Tour", "food", "Early morning market tour with sushi breakfast.", 3, 80, 50, []string{"gourmet", "local"}, []string{"Guide", "Sushi breakfast"}},
	{"NRT", "Mt. Fuji Day Trip", "nature", "Full day excursion to the iconic mountain.", 12, 150, 100, []string{"scenic", "nature"}, []string{"Transport", "Lunch"}},
	{"DPS", "Ubud Rice Terrace Trek", "nature", "Guided walk through scenic rice paddies.", 4, 45, 25, []string{"nature", "scenic"}, []string{"Guide", "Water"}},
	{"DPS", "Surf Lesson Seminyak", "sport", "Beginner-friendly surf instruction on the beach.", 2, 50, 35, []string{"beach", "active"}, []string{"Board rental", "Instructor"}},
	{"SYD", "Sydney Harbour Bridge Climb", "adventure", "Climb the iconic bridge for panoramic harbor views.", 3.5, 180, 120, []string{"iconic", "adventure"}, []string{"Safety gear", "Photos"}},
	{"SYD", "Bondi to Coogee Coastal Walk", "nature", "Guided coastal walk past Sydney's famous beaches.", 3, 30, 15, []string{"beach", "scenic"}, []string{"Guide"}},
	{"CPT", "Table Mountain Cableway", "sightseeing", "Ride the rotating cable car to the summit of Table Mountain.", 2, 28, 14, []string{"scenic", "iconic"}, []string{"Return ticket"}},
	{"CPT", "Cape Winelands Tour", "food", "Full-day wine tasting across Stellenbosch estates.", 8, 95, 0, []string{"wine", "gourmet"}, []string{"Transport", "Tastings", "Lunch"}},
	{"GIG", "Christ the Redeemer & Sugarloaf", "sightseeing", "Visit Rio's two most famous viewpoints in one day.", 6, 85, 55, []string{"iconic", "scenic"}, []string{"Transport", "Entry tickets"}},
	{"GIG", "Copacabana Beach Volleyball", "sport", "Join a beach volleyball session with local players.", 2, 20, 10, []string{"beach", "active"}, []string{"Equipment"}},
}

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Seed populates the travel schema with the demo dataset: seven destination
// cities, an airline roster, a full route mesh, dated flights and hotel
// availability over the window, and curated activities.
func Seed(db *gorm.DB, opts SeedOptions) error {
	opts.defaults()
	rng := rand.New(rand.NewSource(opts.Seed))

	cities := make([]City, len(demoCities))
	for i, c := range demoCities {
		city := c.City
		city.Tags = mustJSON(c.tags)
		cities[i] = city
	}
	if err := db.Create(&cities).Error; err != nil {
		return fmt.Errorf("seed cities: %w", err)
	}

	airlines := make([]Airline, len(demoAirlines))
	for i, a := range demoAirlines {
		airlines[i] = Airline{Code: a.code, Name: a.name, HubCities: mustJSON(a.hubs)}
	}
	if err := db.Create(&airlines).Error; err != nil {
		return fmt.Errorf("seed airlines: %w", err)
	}

	routes, err := seedRoutes(db, rng)
	if err != nil {
		return err
	}
	if err := seedFlights(db, rng, routes, opts); err != nil {
		return err
	}
	hotels, err := seedHotels(db, rng)
	if err != nil {
		return err
	}
	if err := seedAvailability(db, rng, hotels, opts); err != nil {
		return err
	}
	return seedActivities(db, rng)
}

// haversineKM returns the great-circle distance between two coordinates.
func haversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKM = 6371
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func aircraftForDistance(km float64) []string {
	switch {
	case km < 2000:
		return aircraftByRange["short"]
	case km < 5000:
		return aircraftByRange["medium"]
	default:
		return aircraftByRange["long"]
	}
}

// routeAirlines picks carriers for a route: hub carriers first, then a
// couple of fillers so every route has at least two.
func routeAirlines(origin, destination string, rng *rand.Rand) []string {
	var picked []string
	for _, a := range demoAirlines {
		for _, hub := range a.hubs {
			if hub == origin || hub == destination {
				picked = append(picked, a.code)
				break
			}
		}
	}
	for len(picked) < 2 {
		candidate := demoAirlines[rng.Intn(len(demoAirlines))].code
		duplicate := false
		for _, c := range picked {
			if c == candidate {
				duplicate = true
				break
			}
		}
		if !duplicate {
			picked = append(picked, candidate)
		}
	}
	return picked
}

func seedRoutes(db *gorm.DB, rng *rand.Rand) ([]FlightRoute, error) {
	var routes []FlightRoute
	for _, origin := range demoCities {
		for _, dest := range demoCities {
			if origin.Code == dest.Code {
				continue
			}
			distance := haversineKM(origin.Latitude, origin.Longitude, dest.Latitude, dest.Longitude)
			duration := int(distance/500*60 + 45)
			routes = append(routes, FlightRoute{
				OriginCode:      origin.Code,
				DestinationCode: dest.Code,
				Airlines:        mustJSON(routeAirlines(origin.Code, dest.Code, rng)),
				DurationMinutes: duration,
				DistanceKM:      int(distance),
				TypicalAircraft: mustJSON(aircraftForDistance(distance)),
			})
		}
	}
	if err := db.Create(&routes).Error; err != nil {
		return nil, fmt.Errorf("seed flight routes: %w", err)
	}
	return routes, nil
}

func seedFlights(db *gorm.DB, rng *rand.Rand, routes []FlightRoute, opts SeedOptions) error {
	minuteChoices := []int{0, 15, 30, 45}
	var batch []Flight
	for day := 0; day < opts.Days; day++ {
		date := opts.Start.AddDate(0, 0, day)
		for _, route := range routes {
			var airlines []string
			if err := json.Unmarshal(route.Airlines, &airlines); err != nil {
				return fmt.Errorf("decode route airlines: %w", err)
			}
			var aircraft []string
			if err := json.Unmarshal(route.TypicalAircraft, &aircraft); err != nil {
				return fmt.Errorf("decode route aircraft: %w", err)
			}
			flights := 2 + rng.Intn(2)
			for i := 0; i < flights; i++ {
				hour := (6 + i*5 + rng.Intn(3)) % 24
				departure := time.Date(date.Year(), date.Month(), date.Day(),
					hour, minuteChoices[rng.Intn(len(minuteChoices))], 0, 0, time.UTC)
				arrival := departure.Add(time.Duration(route.DurationMinutes) * time.Minute)
				airline := airlines[rng.Intn(len(airlines))]
				economy := basePrice(route.DistanceKM, departure, rng)
				batch = append(batch, Flight{
					FlightNumber:    fmt.Sprintf("%s%d", airline, 100+rng.Intn(900)),
					AirlineCode:     airline,
					OriginCode:      route.OriginCode,
					DestinationCode: route.DestinationCode,
					DepartureDate:   departure.Format(DateLayout),
					DepartureTime:   departure.Format("15:04"),
					ArrivalDate:     arrival.Format(DateLayout),
					ArrivalTime:     arrival.Format("15:04"),
					DurationMinutes: route.DurationMinutes,
					AircraftType:    aircraft[rng.Intn(len(aircraft))],
					EconomySeats:    50 + rng.Intn(131),
					EconomyPrice:    round2(economy),
					BusinessSeats:   10 + rng.Intn(31),
					BusinessPrice:   round2(economy * 2.5),
					FirstSeats:      4 + rng.Intn(9),
					FirstPrice:      round2(economy * 4),
					Status:          "scheduled",
				})
			}
		}
	}
	if err := db.CreateInBatches(&batch, 500).Error; err != nil {
		return fmt.Errorf("seed flights: %w", err)
	}
	return nil
}

// basePrice estimates an economy fare from route distance with weekend and
// demand variation.
func basePrice(distanceKM int, departure time.Time, rng *rand.Rand) float64 {
	price := 60 + float64(distanceKM)*0.09
	switch departure.Weekday() {
	case time.Friday, time.Sunday:
		price *= 1.2
	case time.Tuesday, time.Wednesday:
		price *= 0.9
	}
	return price * (0.9 + rng.Float64()*0.3)
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }

func seedHotels(db *gorm.DB, rng *rand.Rand) ([]Hotel, error) {
	var hotels []Hotel
	for _, city := range demoCities {
		for _, tmpl := range hotelTemplates {
			for i := 0; i < tmpl.count; i++ {
				name := fmt.Sprintf(tmpl.names[i%len(tmpl.names)], city.Name)
				tags := append(append([]string{}, tmpl.tags...), city.tags[:2]...)
				hotels = append(hotels, Hotel{
					Name:         name,
					CityCode:     city.Code,
					Address:      fmt.Sprintf("%d Central Street, %s", 1+rng.Intn(999), city.Name),
					Latitude:     city.Latitude + (rng.Float64()-0.5)*0.2,
					Longitude:    city.Longitude + (rng.Float64()-0.5)*0.2,
					StarRating:   tmpl.stars,
					HotelType:    tmpl.hotelType,
					Amenities:    mustJSON(tmpl.amenities),
					RoomTypes:    mustJSON(tmpl.roomTypes),
					Tags:         mustJSON(tags),
					Description:  fmt.Sprintf("A %s hotel in the heart of %s, offering exceptional service and comfort.", tmpl.hotelType, city.Name),
					BasePriceMin: tmpl.priceMin,
					BasePriceMax: tmpl.priceMax,
				})
			}
		}
	}
	if err := db.CreateInBatches(&hotels, 200).Error; err != nil {
		return nil, fmt.Errorf("seed hotels: %w", err)
	}
	return hotels, nil
}

func seedAvailability(db *gorm.DB, rng *rand.Rand, hotels []Hotel, opts SeedOptions) error {
	const (
		standardRooms = 30
		deluxeRooms   = 15
		suiteRooms    = 5
	)
	var batch []HotelAvailability
	for _, hotel := range hotels {
		for day := 0; day < opts.Days; day++ {
			date := opts.Start.AddDate(0, 0, day)
			occupancy := baseOccupancy(date, rng)
			free := 1 - occupancy/100
			multiplier := 1 + (occupancy/100)*0.5
			batch = append(batch, HotelAvailability{
				HotelID:       hotel.ID,
				Date:          date.Format(DateLayout),
				StandardRooms: max(1, int(standardRooms*free)),
				StandardPrice: round2(hotel.BasePriceMin * multiplier),
				DeluxeRooms:   max(0, int(deluxeRooms*free)),
				DeluxePrice:   round2(hotel.BasePriceMin * 1.5 * multiplier),
				SuiteRooms:    max(0, int(suiteRooms*free)),
				SuitePrice:    round2(hotel.BasePriceMin * 2.5 * multiplier),
				OccupancyRate: round2(occupancy),
			})
		}
	}
	if err := db.CreateInBatches(&batch, 500).Error; err != nil {
		return fmt.Errorf("seed hotel availability: %w", err)
	}
	return nil
}

// baseOccupancy models weekend peaks on top of a 40-70% baseline.
func baseOccupancy(date time.Time, rng *rand.Rand) float64 {
	occupancy := 40 + rng.Float64()*30
	if date.Weekday() == time.Friday || date.Weekday() == time.Saturday {
		occupancy += 15
	}
	if occupancy > 95 {
		occupancy = 95
	}
	return occupancy
}

func seedActivities(db *gorm.DB, rng *rand.Rand) error {
	var batch []Activity
	for _, tmpl := range demoActivities {
		batch = append(batch, Activity{
			Name:          tmpl.name,
			CityCode:      tmpl.city,
			Category:      tmpl.category,
			Description:   tmpl.desc,
			DurationHours: tmpl.hours,
			PriceAdult:    tmpl.adult,
			PriceChild:    tmpl.child,
			Rating:        round2(3.8 + rng.Float64()*1.2),
			Tags:          mustJSON(tmpl.tags),
			Includes:      mustJSON(tmpl.includes),
			AvailableDays: mustJSON(weekdays),
			TimeSlots:     mustJSON([]string{"09:00", "14:00"}),
		})
	}
	if err := db.Create(&batch).Error; err != nil {
		return fmt.Errorf("seed activities: %w", err)
	}
	return nil
}
