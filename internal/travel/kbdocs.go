package travel

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Destination is the knowledge base view of a city: the searchable travel
// profile ingested into the Bedrock Knowledge Base.
type Destination struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	Country     string   `json:"country"`
	Continent   string   `json:"continent"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	BestFor     []string `json:"best_for"`
	Highlights  []string `json:"highlights"`
}

// Destinations returns the curated destination profiles.
func Destinations() []Destination {
	return []Destination{
		{
			Code: "CDG", Name: "Paris", Country: "France", Continent: "Europe",
			Latitude: 48.8566, Longitude: 2.3522,
			Description: "The City of Light captivates with iconic landmarks, world-class art, exquisite cuisine, and timeless romance. From the Eiffel Tower to charming cafés, Paris offers unforgettable experiences.",
			Tags:        []string{"romantic", "cultural", "art", "gourmet", "fashion", "historic", "museums", "nightlife", "shopping"},
			BestFor:     []string{"couples", "art lovers", "food enthusiasts", "fashionistas"},
			Highlights:  []string{"Eiffel Tower", "Louvre Museum", "Notre-Dame", "Champs-Élysées", "Montmartre", "Seine River"},
		},
		{
			Code: "NRT", Name: "Tokyo", Country: "Japan", Continent: "Asia",
			Latitude: 35.6762, Longitude: 139.6503,
			Description: "Ultra-modern metropolis where ancient traditions meet cutting-edge technology. Experience serene temples, bustling markets, innovative cuisine, and neon-lit streets.",
			Tags:        []string{"modern", "cultural", "technology", "gourmet", "shopping", "traditional", "urban", "anime"},
			BestFor:     []string{"tech enthusiasts", "foodies", "culture seekers", "shoppers"},
			Highlights:  []string{"Senso-ji Temple", "Shibuya Crossing", "Mt. Fuji views", "Tsukiji Market", "Cherry blossoms"},
		},
		{
			Code: "DPS", Name: "Bali", Country: "Indonesia", Continent: "Asia",
			Latitude: -8.4095, Longitude: 115.1889,
			Description: "Island paradise offering pristine beaches, ancient temples, terraced rice fields, yoga retreats, and spiritual experiences. Perfect blend of relaxation and adventure.",
			Tags:        []string{"beach", "spiritual", "romantic", "nature", "cultural", "tropical", "wellness", "surfing"},
			BestFor:     []string{"honeymooners", "surfers", "spiritual seekers", "nature lovers"},
			Highlights:  []string{"Uluwatu Temple", "Ubud rice terraces", "Seminyak beaches", "Mount Batur", "Tanah Lot"},
		},
		{
			Code: "NYC", Name: "New York", Country: "USA", Continent: "North America",
			Latitude: 40.7128, Longitude: -74.0060,
			Description: "The city that never sleeps offers world-class museums, Broadway shows, diverse neighborhoods, incredible dining, and iconic landmarks. The ultimate urban adventure.",
			Tags:        []string{"urban", "cultural", "shopping", "nightlife", "museums", "theater", "business", "diverse"},
			BestFor:     []string{"urban enthusiasts", "culture seekers", "foodies", "theater lovers"},
			Highlights:  []string{"Statue of Liberty", "Central Park", "Times Square", "Broadway", "Metropolitan Museum"},
		},
		{
			Code: "SYD", Name: "Sydney", Country: "Australia", Continent: "Oceania",
			Latitude: -33.8688, Longitude: 151.2093,
			Description: "Harbor city featuring iconic Opera House, beautiful beaches, cosmopolitan culture, and outdoor lifestyle. Where urban sophistication meets beach culture.",
			Tags:        []string{"beach", "urban", "harbor", "outdoor", "cosmopolitan", "surfing", "nature"},
			BestFor:     []string{"beach lovers", "urban explorers", "outdoor enthusiasts", "surfers"},
			Highlights:  []string{"Opera House", "Harbour Bridge", "Bondi Beach", "Blue Mountains", "Darling Harbour"},
		},
		{
			Code: "CPT", Name: "Cape Town", Country: "South Africa", Continent: "Africa",
			Latitude: -33.9249, Longitude: 18.4241,
			Description: "Mother City where mountains meet ocean, offering world-class wine, diverse culture, stunning landscapes, and adventure activities in a cosmopolitan setting.",
			Tags:        []string{"nature", "beach", "wine", "adventure", "cultural", "scenic", "outdoor"},
			BestFor:     []string{"nature lovers", "wine enthusiasts", "adventure seekers", "beach lovers"},
			Highlights:  []string{"Table Mountain", "Cape of Good Hope", "V&A Waterfront", "Robben Island", "Wine estates"},
		},
		{
			Code: "GIG", Name: "Rio de Janeiro", Country: "Brazil", Continent: "South America",
			Latitude: -22.9068, Longitude: -43.1729,
			Description: "Marvelous city combining stunning beaches, samba rhythms, carnival celebrations, and dramatic mountain landscapes. Experience Brazilian passion and natural beauty.",
			Tags:        []string{"beach", "party", "cultural", "nature", "carnival", "music", "outdoor"},
			BestFor:     []string{"beach lovers", "party enthusiasts", "nature lovers", "culture seekers"},
			Highlights:  []string{"Christ the Redeemer", "Copacabana Beach", "Sugarloaf Mountain", "Carnival", "Ipanema"},
		},
	}
}

// Document renders the destination as a markdown knowledge base document.
// The headings and tag lists give the vector index distinct passages to
// match travel-style queries against.
func (d Destination) Document() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s, %s\n\n", d.Name, d.Country)
	sb.WriteString("## Overview\n")
	sb.WriteString(d.Description)
	sb.WriteString("\n\n## Destination Details\n")
	fmt.Fprintf(&sb, "- **Location**: %s\n", d.Continent)
	fmt.Fprintf(&sb, "- **Coordinates**: %.4f, %.4f\n", d.Latitude, d.Longitude)
	fmt.Fprintf(&sb, "- **Airport Code**: %s\n", d.Code)
	fmt.Fprintf(&sb, "\n## What Makes %s Special\n", d.Name)
	fmt.Fprintf(&sb, "This destination is perfect for %s.\n", strings.Join(d.BestFor, ", "))
	fmt.Fprintf(&sb, "Known for its %s atmosphere.\n", strings.Join(d.Tags[:min(3, len(d.Tags))], ", "))
	sb.WriteString("\n## Top Attractions\n")
	for _, h := range d.Highlights {
		fmt.Fprintf(&sb, "- %s\n", h)
	}
	sb.WriteString("\n## Travel Style Tags\n")
	sb.WriteString(strings.Join(d.Tags, ", "))
	sb.WriteString("\n\n## Best For\n")
	sb.WriteString(strings.Join(d.BestFor, ", "))
	sb.WriteString("\n")
	return sb.String()
}

// WriteKnowledgeBaseDocs writes one markdown document per destination under
// dir, named by lowercase airport code, ready for Knowledge Base ingestion.
func WriteKnowledgeBaseDocs(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create kb docs dir: %w", err)
	}
	for _, d := range Destinations() {
		path := filepath.Join(dir, strings.ToLower(d.Code)+".md")
		if err := os.WriteFile(path, []byte(d.Document()), 0o644); err != nil {
			return fmt.Errorf("write kb doc %s: %w", path, err)
		}
	}
	return nil
}
