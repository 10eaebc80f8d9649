package catalog

import "fmt"

// SeasonsByLatitude is the climate heuristic used for cities outside the
// catalog: it returns (best months, avoid months).
func SeasonsByLatitude(lat float64) ([]int, []int) {
	switch {
	case lat > 45:
		return []int{6, 7, 8, 9}, []int{11, 12, 1, 2}
	case lat > 40:
		return []int{4, 5, 9, 10}, []int{12, 1, 2}
	case lat > 35:
		return []int{3, 4, 5, 9, 10, 11}, []int{7, 8}
	default:
		return []int{11, 12, 1, 2, 3, 4}, []int{6, 7, 8, 9}
	}
}

// DefaultAttractions is the generic attraction list for a city we have no
// curated data for.
func DefaultAttractions(city string) []string {
	return []string{
		"Downtown " + city,
		city + " Museum of Art",
		"City Park",
		"Historic District",
		"Waterfront",
	}
}

// BuildCity assembles a city record for a place outside the catalog from its
// coordinates. state may be empty.
func BuildCity(name, state string, lat, lon float64) City {
	label := name
	if state != "" {
		label = fmt.Sprintf("%s, %s", name, state)
	}
	airport, _ := NearestAirport(lat, lon)
	best, avoid := SeasonsByLatitude(lat)

	return City{
		Name:        label,
		AirportCode: airport.Code,
		AltAirports: []string{},
		BestMonths:  best,
		AvoidMonths: avoid,
		Attractions: DefaultAttractions(name),
		CentralArea: "Downtown " + name,
		Lat:         lat,
		Lon:         lon,
	}
}
