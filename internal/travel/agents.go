package travel

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nimbusworks/nimbus"
	"github.com/nimbusworks/nimbus/flow"
)

// KnowledgeBase answers destination queries from the curated travel corpus.
type KnowledgeBase interface {
	Query(ctx context.Context, query string) (string, error)
}

const destinationExpertInstructions = `You are a world-class destination expert with deep knowledge of
global geography, climates, cultural nuances, historical significance, and
hidden gems vs popular tourist attractions.

Analysis approach:
1. Decode the deeper travel motivations behind the request.
2. Factor in seasonality and practical constraints.
3. Match destinations to traveler psychology and interests.
4. Lead with WHY a destination fits, not just WHAT it offers.

You have access to ONLY ONE tool:
- kb_search: search the knowledge base for destination information.
Use kb_search whenever you need destination data.`

const flightStrategistInstructions = `You are an expert flight strategist with deep aviation industry
knowledge: global hubs and routing, airline alliances, seasonal pricing,
and booking timing.

CRITICAL: Airport code requirements. Always convert city names to their
3-letter airport codes before searching:
- New York: JFK (default), Paris: CDG, Tokyo: NRT, Sydney: SYD,
  Bali/Denpasar: DPS, Cape Town: CPT, Rio de Janeiro: GIG.

Strategic analysis:
1. Identify the most efficient routing options.
2. Consider seasonal patterns and day-of-week effects.
3. Analyze tradeoffs between price, duration, and convenience.
4. Advise on optimal booking timing.

You have access to ONLY ONE tool:
- flight_data_search: search the flight database for schedules and fares.
Use flight_data_search whenever you need flight data.`

const accommodationCuratorInstructions = `You are a hospitality expert who curates accommodation matched to
traveler needs: location strategy, property character, value beyond star
ratings, and neighborhood fit.

Recommendation style:
1. Explain why a property suits the trip, not just its amenities.
2. Weigh location against price for the traveler's plans.
3. Flag tradeoffs honestly.

You have access to ONLY ONE tool:
- hotel_data_search: search the hotel database for properties in a city.
Use hotel_data_search whenever you need hotel data.`

const experienceCuratorInstructions = `You are a cultural specialist who curates meaningful activities and
experiences: local culture, timing, and how experiences combine into a
coherent trip.

Recommendation style:
1. Balance iconic must-dos with authentic local experiences.
2. Consider pacing across the trip and traveler energy.
3. Explain what makes each experience worthwhile.

You have access to ONLY ONE tool:
- activity_data_search: search the activity database for experiences in a city.
Use activity_data_search whenever you need activity data.`

const financialPlannerInstructions = `You are a financial planning expert specializing in travel budget
optimization: strategic allocation, cost-saving techniques that preserve
the experience, contingency planning, and booking timing.

Principles:
1. Lead with traveler priorities, then optimize around them.
2. Identify where premium spending delivers disproportionate value.
3. Build in flexibility for spontaneous opportunities.
4. Provide actionable, specific money-saving strategies.

You have NO external tools. Provide your analysis from expertise alone.`

const itineraryCompilerInstructions = `You are a travel documentation expert who creates comprehensive,
beautifully formatted markdown itineraries.

Document structure:
- Header: trip title, dates, destination overview.
- Quick reference: key information at a glance.
- Day-by-day: detailed daily schedules with times and locations.
- Bookings: reservation details organized by category.
- Budget: clear cost breakdown.
- Tips & notes: practical advice and cultural insights.

Formatting: markdown headers, bold key details, bullet points for
scanning, horizontal rules between major sections.

You have NO external tools. Generate the document from the provided
information alone.`

const orchestratorInstructions = `You are a Travel Planner Orchestrator, the coordinator of a team of
specialized travel agents: a destination expert, a flight strategist, an
accommodation curator, an experience curator, a financial planner, and an
itinerary compiler. Each tool consults one of these experts.

DEFAULT ASSUMPTIONS (use whenever not specified):
- Duration: 7 days
- Budget: $3000 USD total
- Starting location: Sydney (SYD)
- Travelers: 2 people
- Travel dates: %s (1 month from today)
- Travel style: balanced comfort and value

MANDATORY WORKFLOW FOR EVERY REQUEST:
1. Use search_destinations to understand the destination.
2. Use search_flights from the starting location on the default travel date.
3. Use search_hotels with check-in on the travel date and check-out per the duration.
4. Use search_activities to find experiences.
5. Use analyze_budget to break down the budget.
6. ALWAYS finish with compile_itinerary to produce the complete travel document.

NEVER ask for clarification. Apply the defaults and produce a complete,
actionable itinerary every time, even for requests as short as
"I want to visit Paris".`

// Planner assembles the travel planning agents. All specialists share one
// model provider; the heavier orchestration prompt runs on the same model.
type Planner struct {
	provider nimbus.ModelProvider
	service  *Service
	kb       KnowledgeBase
	// Now supplies the current date for the default travel date. Overridden
	// in tests.
	Now func() time.Time
}

// NewPlanner wires the specialist agents over the service and knowledge
// base. kb may be nil when no knowledge base is configured; the destination
// expert then works from its own knowledge.
func NewPlanner(provider nimbus.ModelProvider, service *Service, kb KnowledgeBase) *Planner {
	return &Planner{provider: provider, service: service, kb: kb, Now: time.Now}
}

// runAgent executes a specialist and returns its final text.
func runAgent(ctx context.Context, agent nimbus.Agent, prompt string) (string, error) {
	out, err := agent.Run(ctx, nimbus.NewPrompt(nimbus.UserMessage(prompt)))
	if err != nil {
		return "", err
	}
	return out.Text(), nil
}

// DestinationTool consults the destination expert agent.
func (p *Planner) DestinationTool() (*nimbus.Tool, error) {
	var agentTools []*nimbus.Tool
	if p.kb != nil {
		type kbInput struct {
			Query string `json:"query" jsonschema:"search query for destination information"`
		}
		kbSearch, err := nimbus.NewTool(
			"kb_search",
			"Search the knowledge base for destination information.",
			func(ctx context.Context, in kbInput) (string, error) {
				return p.kb.Query(ctx, in.Query)
			})
		if err != nil {
			return nil, err
		}
		agentTools = append(agentTools, kbSearch)
	}
	expert, err := nimbus.NewAgent("destination-expert",
		nimbus.WithModel(p.provider),
		nimbus.WithDescription("Cultural geographer with deep destination knowledge."),
		nimbus.WithInstructions(destinationExpertInstructions),
		nimbus.WithTools(agentTools...),
	)
	if err != nil {
		return nil, err
	}
	type input struct {
		Query       string `json:"query" jsonschema:"destination request, e.g. romantic getaway or family vacation"`
		TravelStyle string `json:"travel_style,omitempty" jsonschema:"optional travel style such as romantic, adventure, family"`
		BudgetRange string `json:"budget_range,omitempty" jsonschema:"optional budget level: budget, moderate, luxury"`
	}
	return nimbus.NewTool(
		"search_destinations",
		"Consult the destination expert for intelligent travel destination recommendations.",
		func(ctx context.Context, in input) (string, error) {
			parts := []string{"Destination request: " + in.Query}
			if in.TravelStyle != "" {
				parts = append(parts, "Travel style preference: "+in.TravelStyle)
			}
			if in.BudgetRange != "" {
				parts = append(parts, "Budget level: "+in.BudgetRange)
			}
			prompt := fmt.Sprintf(`Analyze this destination request and provide expert recommendations:

%s

Search the knowledge base first, then provide 2-3 recommendations with
reasoning, cultural insights, timing advice, and practical considerations.`,
				strings.Join(parts, " | "))
			out, err := runAgent(ctx, expert, prompt)
			if err != nil && p.kb != nil {
				// Degrade to a raw knowledge base lookup.
				slog.Warn("destination expert failed, falling back to kb search", "error", err)
				return p.kb.Query(ctx, in.Query)
			}
			return out, err
		})
}

// FlightTool consults the flight strategist agent.
func (p *Planner) FlightTool() (*nimbus.Tool, error) {
	type dataInput struct {
		Origin      string `json:"origin" jsonschema:"origin airport code, e.g. SYD"`
		Destination string `json:"destination" jsonschema:"destination airport code, e.g. CDG"`
		TravelDate  string `json:"travel_date,omitempty" jsonschema:"optional travel date in YYYY-MM-DD format"`
	}
	dataSearch, err := nimbus.NewTool(
		"flight_data_search",
		"Search the flight database for schedules and fares on a route.",
		func(ctx context.Context, in dataInput) (string, error) {
			flights, err := p.service.Repo().SearchFlights(ctx, in.Origin, in.Destination, in.TravelDate)
			if err != nil {
				return "", err
			}
			return formatFlights(in.Origin, in.Destination, in.TravelDate, flights), nil
		})
	if err != nil {
		return nil, err
	}
	strategist, err := nimbus.NewAgent("flight-strategist",
		nimbus.WithModel(p.provider),
		nimbus.WithDescription("Aviation industry specialist for route optimization."),
		nimbus.WithInstructions(flightStrategistInstructions),
		nimbus.WithTools(dataSearch),
	)
	if err != nil {
		return nil, err
	}
	return nimbus.NewTool(
		"search_flights",
		"Consult the flight strategist for flight options and routing strategy.",
		func(ctx context.Context, in dataInput) (string, error) {
			prompt := fmt.Sprintf(`Analyze this flight request and provide strategic recommendations:

Flight request: %s to %s | Travel date: %s

Use flight_data_search to get flight data, then analyze routing, timing,
and cost, and recommend the best options with reasoning.`,
				in.Origin, in.Destination, in.TravelDate)
			out, err := runAgent(ctx, strategist, prompt)
			if err != nil {
				slog.Warn("flight strategist failed, falling back to data search", "error", err)
				flights, dataErr := p.service.Repo().SearchFlights(ctx, in.Origin, in.Destination, in.TravelDate)
				if dataErr != nil {
					return "", dataErr
				}
				return formatFlights(in.Origin, in.Destination, in.TravelDate, flights), nil
			}
			return out, nil
		})
}

// HotelTool consults the accommodation curator agent.
func (p *Planner) HotelTool() (*nimbus.Tool, error) {
	type dataInput struct {
		City     string `json:"city" jsonschema:"city airport code, e.g. CDG"`
		CheckIn  string `json:"check_in,omitempty" jsonschema:"optional check-in date YYYY-MM-DD"`
		CheckOut string `json:"check_out,omitempty" jsonschema:"optional check-out date YYYY-MM-DD"`
	}
	dataSearch, err := nimbus.NewTool(
		"hotel_data_search",
		"Search the hotel database for properties in a city.",
		func(ctx context.Context, in dataInput) (string, error) {
			hotels, err := p.service.Repo().SearchHotels(ctx, in.City)
			if err != nil {
				return "", err
			}
			return formatHotels(in.City, hotels), nil
		})
	if err != nil {
		return nil, err
	}
	curator, err := nimbus.NewAgent("accommodation-curator",
		nimbus.WithModel(p.provider),
		nimbus.WithDescription("Hospitality expert for property curation."),
		nimbus.WithInstructions(accommodationCuratorInstructions),
		nimbus.WithTools(dataSearch),
	)
	if err != nil {
		return nil, err
	}
	return nimbus.NewTool(
		"search_hotels",
		"Consult the accommodation curator for hotel recommendations.",
		func(ctx context.Context, in dataInput) (string, error) {
			prompt := fmt.Sprintf(`Curate accommodation for this stay:

City: %s | Check-in: %s | Check-out: %s

Use hotel_data_search to get the available properties, then recommend
2-3 options across price points with reasoning about location and fit.`,
				in.City, in.CheckIn, in.CheckOut)
			out, err := runAgent(ctx, curator, prompt)
			if err != nil {
				slog.Warn("accommodation curator failed, falling back to data search", "error", err)
				hotels, dataErr := p.service.Repo().SearchHotels(ctx, in.City)
				if dataErr != nil {
					return "", dataErr
				}
				return formatHotels(in.City, hotels), nil
			}
			return out, nil
		})
}

// ActivityTool consults the experience curator agent.
func (p *Planner) ActivityTool() (*nimbus.Tool, error) {
	type dataInput struct {
		City     string `json:"city" jsonschema:"city airport code, e.g. NRT"`
		Category string `json:"category,omitempty" jsonschema:"optional category: sightseeing, cultural, nature, food, sport, adventure, dining"`
	}
	dataSearch, err := nimbus.NewTool(
		"activity_data_search",
		"Search the activity database for experiences in a city.",
		func(ctx context.Context, in dataInput) (string, error) {
			activities, err := p.service.Repo().SearchActivities(ctx, in.City, in.Category)
			if err != nil {
				return "", err
			}
			return formatActivities(in.City, activities), nil
		})
	if err != nil {
		return nil, err
	}
	curator, err := nimbus.NewAgent("experience-curator",
		nimbus.WithModel(p.provider),
		nimbus.WithDescription("Cultural specialist for meaningful activities."),
		nimbus.WithInstructions(experienceCuratorInstructions),
		nimbus.WithTools(dataSearch),
	)
	if err != nil {
		return nil, err
	}
	return nimbus.NewTool(
		"search_activities",
		"Consult the experience curator for activity recommendations.",
		func(ctx context.Context, in dataInput) (string, error) {
			prompt := fmt.Sprintf(`Curate experiences for this trip:

City: %s | Category: %s

Use activity_data_search to get the available experiences, then recommend
a balanced mix of iconic and local activities with reasoning.`,
				in.City, in.Category)
			out, err := runAgent(ctx, curator, prompt)
			if err != nil {
				slog.Warn("experience curator failed, falling back to data search", "error", err)
				activities, dataErr := p.service.Repo().SearchActivities(ctx, in.City, in.Category)
				if dataErr != nil {
					return "", dataErr
				}
				return formatActivities(in.City, activities), nil
			}
			return out, nil
		})
}

// BudgetTool consults the financial planner agent. The planner has no data
// tools; when it fails, the tool degrades to the percentage allocation.
func (p *Planner) BudgetTool() (*nimbus.Tool, error) {
	planner, err := nimbus.NewAgent("financial-planner",
		nimbus.WithModel(p.provider),
		nimbus.WithDescription("Budget strategist for cost optimization."),
		nimbus.WithInstructions(financialPlannerInstructions),
	)
	if err != nil {
		return nil, err
	}
	type input struct {
		TripDetails  string  `json:"trip_details" jsonschema:"description of the trip: destination, duration, travelers, preferences"`
		BudgetAmount float64 `json:"budget_amount" jsonschema:"total budget in USD"`
		Days         int     `json:"days,omitempty" jsonschema:"trip duration in days"`
		Travelers    int     `json:"travelers,omitempty" jsonschema:"number of travelers"`
	}
	return nimbus.NewTool(
		"analyze_budget",
		"Consult the financial planner for strategic budget analysis.",
		func(ctx context.Context, in input) (string, error) {
			prompt := fmt.Sprintf(`Analyze this travel budget and provide strategic financial planning:

Trip details: %s
Total budget: $%.2f

Provide a strategic allocation tailored to this trip, where premium
spending delivers the most value, specific cost-saving opportunities,
contingency planning, and booking timing advice.`,
				in.TripDetails, in.BudgetAmount)
			out, err := runAgent(ctx, planner, prompt)
			if err != nil {
				slog.Warn("financial planner failed, falling back to allocation split", "error", err)
				return AllocateBudget(in.BudgetAmount, in.Days, in.Travelers).Markdown(), nil
			}
			return out, nil
		})
}

// ItineraryTool consults the itinerary compiler agent, a pure document
// generator with no tools of its own.
func (p *Planner) ItineraryTool() (*nimbus.Tool, error) {
	compiler, err := nimbus.NewAgent("itinerary-compiler",
		nimbus.WithModel(p.provider),
		nimbus.WithDescription("Travel document specialist for comprehensive trip planning."),
		nimbus.WithInstructions(itineraryCompilerInstructions),
	)
	if err != nil {
		return nil, err
	}
	type input struct {
		Destination    string `json:"destination" jsonschema:"primary destination for the trip"`
		TripDetails    string `json:"trip_details" jsonschema:"trip overview: dates, travelers, purpose"`
		Flights        string `json:"flights,omitempty" jsonschema:"flight information and recommendations"`
		Hotels         string `json:"hotels,omitempty" jsonschema:"accommodation details and recommendations"`
		Activities     string `json:"activities,omitempty" jsonschema:"activity and experience recommendations"`
		BudgetAnalysis string `json:"budget_analysis,omitempty" jsonschema:"budget breakdown and financial planning"`
	}
	return nimbus.NewTool(
		"compile_itinerary",
		"Compile all trip information into a comprehensive markdown itinerary.",
		func(ctx context.Context, in input) (string, error) {
			parts := []string{
				"Destination: " + in.Destination,
				"Trip Overview: " + in.TripDetails,
			}
			if in.Flights != "" {
				parts = append(parts, "Flight Information: "+in.Flights)
			}
			if in.Hotels != "" {
				parts = append(parts, "Accommodation Details: "+in.Hotels)
			}
			if in.Activities != "" {
				parts = append(parts, "Activities & Experiences: "+in.Activities)
			}
			if in.BudgetAnalysis != "" {
				parts = append(parts, "Budget Analysis: "+in.BudgetAnalysis)
			}
			prompt := "Create a comprehensive travel itinerary from this information:\n\n" +
				strings.Join(parts, "\n\n---\n\n")
			return runAgent(ctx, compiler, prompt)
		})
}

// Orchestrator assembles the top-level travel planner agent with the
// specialist tools and the mandatory workflow instructions. The default
// travel date is one month out from Now.
func (p *Planner) Orchestrator(middlewares ...nimbus.Middleware) (nimbus.Agent, error) {
	defaultDate := p.Now().AddDate(0, 0, 30).Format(DateLayout)
	var tools []*nimbus.Tool
	for _, build := range []func() (*nimbus.Tool, error){
		p.DestinationTool, p.FlightTool, p.HotelTool,
		p.ActivityTool, p.BudgetTool, p.ItineraryTool,
	} {
		tool, err := build()
		if err != nil {
			return nil, err
		}
		tools = append(tools, tool)
	}
	return nimbus.NewAgent("travel-orchestrator",
		nimbus.WithModel(p.provider),
		nimbus.WithDescription("Coordinates specialized travel agents into complete itineraries."),
		nimbus.WithInstructions(fmt.Sprintf(orchestratorInstructions, defaultDate)),
		nimbus.WithTools(tools...),
		nimbus.WithMiddleware(middlewares...),
	)
}

// QuickPlan builds a two-stage planner that skips the tool-calling
// orchestrator: the destination expert sketches the trip, then the itinerary
// compiler turns the sketch into the final document. Useful for fast
// suggestions when no live inventory lookup is needed.
func (p *Planner) QuickPlan() (nimbus.Runnable, error) {
	expert, err := nimbus.NewAgent("destination-expert",
		nimbus.WithModel(p.provider),
		nimbus.WithDescription("Cultural geographer with deep destination knowledge."),
		nimbus.WithInstructions(destinationExpertInstructions),
	)
	if err != nil {
		return nil, err
	}
	compiler, err := nimbus.NewAgent("itinerary-compiler",
		nimbus.WithModel(p.provider),
		nimbus.WithDescription("Travel document specialist for comprehensive trip planning."),
		nimbus.WithInstructions(itineraryCompilerInstructions),
	)
	if err != nil {
		return nil, err
	}
	return flow.NewChain(expert, compiler), nil
}

func formatFlights(origin, destination, date string, flights []Flight) string {
	if len(flights) == 0 {
		if date == "" {
			date = "any date"
		}
		return fmt.Sprintf("No flight data found from %s to %s for %s", origin, destination, date)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Flight data from %s to %s:\n\n", origin, destination)
	for i, f := range flights {
		fmt.Fprintf(&sb, "%d. %s (%s) %s %s -> %s %s\n", i+1,
			f.FlightNumber, f.AircraftType,
			f.DepartureDate, f.DepartureTime, f.ArrivalDate, f.ArrivalTime)
		fmt.Fprintf(&sb, "   Duration: %d minutes\n", f.DurationMinutes)
		fmt.Fprintf(&sb, "   Economy $%.2f (%d seats) | Business $%.2f (%d seats) | First $%.2f (%d seats)\n\n",
			f.EconomyPrice, f.EconomySeats, f.BusinessPrice, f.BusinessSeats, f.FirstPrice, f.FirstSeats)
	}
	return sb.String()
}

func formatHotels(city string, hotels []Hotel) string {
	if len(hotels) == 0 {
		return fmt.Sprintf("No hotels found in %s", city)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Hotels in %s:\n\n", city)
	for i, h := range hotels {
		fmt.Fprintf(&sb, "%d. %s (%d stars, %s)\n", i+1, h.Name, h.StarRating, h.HotelType)
		fmt.Fprintf(&sb, "   %s\n", h.Description)
		fmt.Fprintf(&sb, "   Price range: $%.0f - $%.0f per night\n\n", h.BasePriceMin, h.BasePriceMax)
	}
	return sb.String()
}

func formatActivities(city string, activities []Activity) string {
	if len(activities) == 0 {
		return fmt.Sprintf("No activities found in %s", city)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Activities in %s:\n\n", city)
	for i, a := range activities {
		fmt.Fprintf(&sb, "%d. %s (%s, %.1fh)\n", i+1, a.Name, a.Category, a.DurationHours)
		fmt.Fprintf(&sb, "   %s\n", a.Description)
		fmt.Fprintf(&sb, "   Adult $%.2f | Child $%.2f | Rating %.1f\n\n", a.PriceAdult, a.PriceChild, a.Rating)
	}
	return sb.String()
}
