package catalog

import (
	"math"
	"sort"
)

// Airport is a reference airport used for nearest-airport lookups.
type Airport struct {
	Code string  `json:"code"`
	Name string  `json:"name"`
	City string  `json:"city"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// earthRadiusMiles matches the constant used for every distance in this package.
const earthRadiusMiles = 3956

var airports = map[string]Airport{
	"JFK": {"JFK", "New York JFK", "New York, NY", 40.6413, -73.7781},
	"LAX": {"LAX", "Los Angeles", "Los Angeles, CA", 33.9416, -118.4085},
	"ORD": {"ORD", "Chicago O'Hare", "Chicago, IL", 41.9742, -87.9073},
	"DFW": {"DFW", "Dallas/Fort Worth", "Dallas, TX", 32.8998, -97.0403},
	"DEN": {"DEN", "Denver", "Denver, CO", 39.8561, -104.6737},
	"ATL": {"ATL", "Atlanta", "Atlanta, GA", 33.6407, -84.4277},
	"SFO": {"SFO", "San Francisco", "San Francisco, CA", 37.6213, -122.3790},
	"SEA": {"SEA", "Seattle-Tacoma", "Seattle, WA", 47.4502, -122.3088},
	"LAS": {"LAS", "Las Vegas", "Las Vegas, NV", 36.0840, -115.1537},
	"MCO": {"MCO", "Orlando", "Orlando, FL", 28.4312, -81.3081},
	"MIA": {"MIA", "Miami", "Miami, FL", 25.7959, -80.2870},
	"PHX": {"PHX", "Phoenix", "Phoenix, AZ", 33.4352, -112.0101},
	"BOS": {"BOS", "Boston Logan", "Boston, MA", 42.3656, -71.0096},
	"IAH": {"IAH", "Houston", "Houston, TX", 29.9902, -95.3368},
	"DCA": {"DCA", "Washington Reagan", "Washington, DC", 38.8512, -77.0402},
	"EWR": {"EWR", "Newark", "Newark, NJ", 40.6895, -74.1745},
	"MSY": {"MSY", "New Orleans", "New Orleans, LA", 29.9902, -90.2580},
	"DTW": {"DTW", "Detroit", "Detroit, MI", 42.2162, -83.3554},
	"PHL": {"PHL", "Philadelphia", "Philadelphia, PA", 39.8744, -75.2424},
	"LGA": {"LGA", "New York LaGuardia", "New York, NY", 40.7769, -73.8740},
	"MDW": {"MDW", "Chicago Midway", "Chicago, IL", 41.7868, -87.7522},
	"SAN": {"SAN", "San Diego", "San Diego, CA", 32.7338, -117.1933},
	"PDX": {"PDX", "Portland", "Portland, OR", 45.5898, -122.5951},
	"BNA": {"BNA", "Nashville", "Nashville, TN", 36.1245, -86.6782},
	"AUS": {"AUS", "Austin", "Austin, TX", 30.1945, -97.6699},
}

// AirportByCode returns the reference airport with the given IATA code.
func AirportByCode(code string) (Airport, bool) {
	a, ok := airports[code]
	return a, ok
}

// Airports returns every reference airport sorted by code.
func Airports() []Airport {
	out := make([]Airport, 0, len(airports))
	for _, a := range airports {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Distance returns the great-circle distance in miles between two points.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	lat1, lon1, lat2, lon2 = toRad(lat1), toRad(lon1), toRad(lat2), toRad(lon2)

	dlat := lat2 - lat1
	dlon := lon2 - lon1
	a := math.Pow(math.Sin(dlat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)
	return 2 * math.Asin(math.Sqrt(a)) * earthRadiusMiles
}

// NearestAirport finds the reference airport closest to the given point and
// the distance to it in miles. Ties resolve to the lowest code.
func NearestAirport(lat, lon float64) (Airport, float64) {
	var (
		best     Airport
		bestDist = math.Inf(1)
	)
	for _, a := range Airports() {
		if d := Distance(lat, lon, a.Lat, a.Lon); d < bestDist {
			best, bestDist = a, d
		}
	}
	return best, bestDist
}

// AirportDistance returns the distance in miles between two reference
// airports. ok is false when either code is unknown.
func AirportDistance(from, to string) (miles float64, ok bool) {
	a, okA := airports[from]
	b, okB := airports[to]
	if !okA || !okB {
		return 0, false
	}
	return Distance(a.Lat, a.Lon, b.Lat, b.Lon), true
}
