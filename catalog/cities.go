// Package catalog holds the static table of supported US cities and the
// reference airports used to locate a traveller's home airport.
package catalog

import (
	"slices"
	"strings"
	"time"
)

// City describes a weekend destination.
type City struct {
	Name        string   `json:"name"`
	AirportCode string   `json:"airport_code"`
	AltAirports []string `json:"alt_airports"`
	BestMonths  []int    `json:"best_months"`
	AvoidMonths []int    `json:"avoid_months"`
	Attractions []string `json:"attractions"`
	CentralArea string   `json:"central_area"`
	Lat         float64  `json:"lat"`
	Lon         float64  `json:"lon"`
}

// IsOptimal reports whether month is one of the city's best months.
func (c City) IsOptimal(month time.Month) bool {
	return slices.Contains(c.BestMonths, int(month))
}

// IsAvoided reports whether month is one of the months to stay away.
func (c City) IsAvoided(month time.Month) bool {
	return slices.Contains(c.AvoidMonths, int(month))
}

// SeasonReason explains the seasonal recommendation for visiting c in month.
func SeasonReason(c City, month time.Month) string {
	switch {
	case c.IsOptimal(month):
		return "Ideal weather and events"
	case c.IsAvoided(month):
		switch month {
		case time.December, time.January, time.February, time.March:
			return "Cold weather"
		case time.June, time.July, time.August, time.September:
			return "Hot/humid or hurricane season"
		default:
			return "Not optimal season"
		}
	default:
		return "Acceptable weather"
	}
}

var cities = []City{
	{
		Name:        "New York City, NY",
		AirportCode: "JFK",
		AltAirports: []string{"LGA", "EWR"},
		BestMonths:  []int{4, 5, 9, 10},
		AvoidMonths: []int{1, 2, 7, 8},
		Attractions: []string{"Times Square", "Central Park", "Empire State Building", "Statue of Liberty", "Metropolitan Museum of Art"},
		CentralArea: "Midtown Manhattan",
		Lat:         40.7128,
		Lon:         -74.0060,
	},
	{
		Name:        "Los Angeles, CA",
		AirportCode: "LAX",
		AltAirports: []string{"BUR", "SNA"},
		BestMonths:  []int{3, 4, 5, 9, 10, 11},
		Attractions: []string{"Hollywood Walk of Fame", "Griffith Observatory", "Santa Monica Pier", "Getty Center", "Universal Studios"},
		CentralArea: "Downtown LA",
		Lat:         34.0522,
		Lon:         -118.2437,
	},
	{
		Name:        "Chicago, IL",
		AirportCode: "ORD",
		AltAirports: []string{"MDW"},
		BestMonths:  []int{5, 6, 9, 10},
		AvoidMonths: []int{12, 1, 2},
		Attractions: []string{"Millennium Park", "Navy Pier", "Art Institute of Chicago", "Willis Tower", "Magnificent Mile"},
		CentralArea: "The Loop",
		Lat:         41.8781,
		Lon:         -87.6298,
	},
	{
		Name:        "San Francisco, CA",
		AirportCode: "SFO",
		AltAirports: []string{"OAK", "SJC"},
		BestMonths:  []int{9, 10, 11},
		AvoidMonths: []int{6, 7, 8},
		Attractions: []string{"Golden Gate Bridge", "Fisherman's Wharf", "Alcatraz Island", "Cable Cars", "Chinatown"},
		CentralArea: "Union Square",
		Lat:         37.7749,
		Lon:         -122.4194,
	},
	{
		Name:        "Miami, FL",
		AirportCode: "MIA",
		AltAirports: []string{"FLL"},
		BestMonths:  []int{12, 1, 2, 3, 4},
		AvoidMonths: []int{6, 7, 8, 9},
		Attractions: []string{"South Beach", "Art Deco Historic District", "Vizcaya Museum", "Wynwood Walls", "Bayside Marketplace"},
		CentralArea: "Miami Beach",
		Lat:         25.7617,
		Lon:         -80.1918,
	},
	{
		Name:        "Las Vegas, NV",
		AirportCode: "LAS",
		BestMonths:  []int{3, 4, 5, 10, 11},
		AvoidMonths: []int{7, 8},
		Attractions: []string{"The Strip", "Fremont Street", "Bellagio Fountains", "High Roller Observation Wheel", "Red Rock Canyon"},
		CentralArea: "The Strip",
		Lat:         36.1699,
		Lon:         -115.1398,
	},
	{
		Name:        "Seattle, WA",
		AirportCode: "SEA",
		BestMonths:  []int{6, 7, 8, 9},
		AvoidMonths: []int{11, 12, 1},
		Attractions: []string{"Pike Place Market", "Space Needle", "Chihuly Garden and Glass", "Seattle Waterfront", "Museum of Pop Culture"},
		CentralArea: "Downtown Seattle",
		Lat:         47.6062,
		Lon:         -122.3321,
	},
	{
		Name:        "Boston, MA",
		AirportCode: "BOS",
		BestMonths:  []int{5, 6, 9, 10},
		AvoidMonths: []int{1, 2, 3},
		Attractions: []string{"Freedom Trail", "Fenway Park", "Boston Common", "Museum of Fine Arts", "New England Aquarium"},
		CentralArea: "Back Bay",
		Lat:         42.3601,
		Lon:         -71.0589,
	},
	{
		Name:        "Washington, DC",
		AirportCode: "DCA",
		AltAirports: []string{"IAD", "BWI"},
		BestMonths:  []int{4, 5, 9, 10},
		AvoidMonths: []int{7, 8},
		Attractions: []string{"National Mall", "Smithsonian Museums", "White House", "Lincoln Memorial", "US Capitol"},
		CentralArea: "Downtown DC",
		Lat:         38.9072,
		Lon:         -77.0369,
	},
	{
		Name:        "New Orleans, LA",
		AirportCode: "MSY",
		BestMonths:  []int{2, 3, 4, 10, 11},
		AvoidMonths: []int{6, 7, 8, 9},
		Attractions: []string{"French Quarter", "Bourbon Street", "Jackson Square", "Garden District", "St. Louis Cathedral"},
		CentralArea: "French Quarter",
		Lat:         29.9511,
		Lon:         -90.0715,
	},
	{
		Name:        "Austin, TX",
		AirportCode: "AUS",
		BestMonths:  []int{3, 4, 5, 10, 11},
		AvoidMonths: []int{7, 8},
		Attractions: []string{"6th Street", "Texas State Capitol", "Lady Bird Lake", "South Congress", "Zilker Park"},
		CentralArea: "Downtown Austin",
		Lat:         30.2672,
		Lon:         -97.7431,
	},
	{
		Name:        "Nashville, TN",
		AirportCode: "BNA",
		BestMonths:  []int{4, 5, 9, 10},
		AvoidMonths: []int{7, 8},
		Attractions: []string{"Broadway", "Country Music Hall of Fame", "Ryman Auditorium", "Grand Ole Opry", "Parthenon"},
		CentralArea: "Downtown Nashville",
		Lat:         36.1627,
		Lon:         -86.7816,
	},
	{
		Name:        "Denver, CO",
		AirportCode: "DEN",
		BestMonths:  []int{5, 6, 9, 10},
		AvoidMonths: []int{12, 1, 2},
		Attractions: []string{"Red Rocks Park", "16th Street Mall", "Denver Art Museum", "Larimer Square", "Union Station"},
		CentralArea: "Downtown Denver",
		Lat:         39.7392,
		Lon:         -104.9903,
	},
	{
		Name:        "Portland, OR",
		AirportCode: "PDX",
		BestMonths:  []int{6, 7, 8, 9},
		AvoidMonths: []int{11, 12, 1},
		Attractions: []string{"Powell's City of Books", "Washington Park", "Portland Japanese Garden", "Food Carts", "Pittock Mansion"},
		CentralArea: "Downtown Portland",
		Lat:         45.5152,
		Lon:         -122.6784,
	},
	{
		Name:        "San Diego, CA",
		AirportCode: "SAN",
		BestMonths:  []int{4, 5, 6, 9, 10},
		Attractions: []string{"Balboa Park", "San Diego Zoo", "USS Midway Museum", "Gaslamp Quarter", "La Jolla Cove"},
		CentralArea: "Gaslamp Quarter",
		Lat:         32.7157,
		Lon:         -117.1611,
	},
}

// All returns the catalog in its fixed order. The slice is a copy.
func All() []City {
	return slices.Clone(cities)
}

// Names returns the catalog city names in catalog order.
func Names() []string {
	names := make([]string, 0, len(cities))
	for _, c := range cities {
		names = append(names, c.Name)
	}
	return names
}

// Lookup finds a catalog city by name, ignoring case and surrounding space.
func Lookup(name string) (City, bool) {
	name = strings.TrimSpace(name)
	for _, c := range cities {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return City{}, false
}

// BestIn returns the cities whose best months include month, in catalog order.
func BestIn(month time.Month) []City {
	var out []City
	for _, c := range cities {
		if c.IsOptimal(month) {
			out = append(out, c)
		}
	}
	return out
}
