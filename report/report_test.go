package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripplanner/planner"
	"tripplanner/services"
)

func sampleTrip() planner.Trip {
	return planner.Trip{
		City:   "Boston, MA",
		Origin: "LAX",
		TravelDates: &planner.TravelDates{
			Departure: "2027-05-13",
			Return:    "2027-05-16",
			Duration:  planner.DurationLabel,
		},
		Season:      &planner.SeasonInfo{Month: "May", Optimal: true, Reason: "Ideal weather and events"},
		Attractions: []string{"Freedom Trail", "Fenway Park"},
		CentralArea: "Back Bay",
		Flights: &services.FlightResult{
			Success:       true,
			Source:        services.SourceLive,
			Origin:        "LAX",
			Destination:   "BOS",
			DepartureDate: "2027-05-13",
			ReturnDate:    "2027-05-16",
			Offers: []services.FlightOffer{
				{
					Price: services.Price{Total: 412.5, Currency: "USD"},
					Outbound: &services.Itinerary{
						Departure: services.Endpoint{Airport: "LAX", Time: "2027-05-13T07:00:00"},
						Arrival:   services.Endpoint{Airport: "BOS", Time: "2027-05-13T15:25:00"},
						Duration:  "5h 25m",
						Carriers:  []string{"B6"},
					},
				},
				{Price: services.Price{Total: 356, Currency: "USD"}},
				{Price: services.Price{Total: 380, Currency: "USD"}},
				{Price: services.Price{Total: 390, Currency: "USD"}},
			},
		},
		Hotels: &services.HotelResult{
			Success:  true,
			Source:   services.SourceLive,
			CheckIn:  "2027-05-13",
			CheckOut: "2027-05-16",
			Offers: []services.HotelOffer{
				{
					Name:    "The Lenox",
					Rating:  4,
					Address: services.Address{Lines: []string{"61 Exeter St"}, CityName: "BOSTON"},
					Price:   services.Price{Total: 899.97, Currency: "USD", PerNight: 299.99},
					Room:    services.Room{Type: "DELUXE"},
				},
				{
					Name:  "Copley Inn",
					Price: services.Price{Total: 950, Currency: "USD"},
					Room:  services.Room{Type: "STANDARD"},
				},
			},
		},
	}
}

func TestSummary(t *testing.T) {
	out := Summary(sampleTrip())

	assert.Contains(t, out, "TRIP TO BOSTON, MA")
	assert.Contains(t, out, "Dates: 2027-05-13 to 2027-05-16")
	assert.Contains(t, out, "Duration: 3 nights, 4 days (Thu-Sun)")
	assert.Contains(t, out, "✓ Optimal time to visit!")
	assert.Contains(t, out, "  • Freedom Trail")
	assert.Contains(t, out, "Recommended Area: Back Bay")
	assert.Contains(t, out, "--- FLIGHT OPTIONS ---")
	assert.Contains(t, out, "Option 1: $412.50 USD")
	assert.Contains(t, out, "Option 3: $380.00 USD")
	assert.NotContains(t, out, "Option 4")
	assert.Contains(t, out, "--- HOTEL OPTIONS (4+ Stars) ---")
	assert.Contains(t, out, "1. The Lenox")
	assert.Contains(t, out, "($299.99/night)")
	assert.Contains(t, out, "Rating: unrated")
	assert.NotContains(t, out, "estimates")
}

func TestSummarySeasonsAndFailures(t *testing.T) {
	trip := sampleTrip()
	trip.Season = &planner.SeasonInfo{Month: "January", Avoid: true, Reason: "Cold weather"}
	trip.Flights = &services.FlightResult{Error: "Error searching flights: boom", Offers: []services.FlightOffer{}}
	trip.Hotels = &services.HotelResult{Success: true, Source: services.SourceEstimated, Offers: []services.HotelOffer{}}

	out := Summary(trip)
	assert.Contains(t, out, "⚠ Not recommended - Cold weather")
	assert.Contains(t, out, "--- FLIGHTS ---\nError: Error searching flights: boom")
	assert.Contains(t, out, "--- HOTELS ---\nError: No hotels found")
	assert.Contains(t, out, "Prices are estimates")

	trip.Season = &planner.SeasonInfo{Month: "July"}
	assert.Contains(t, Summary(trip), "○ Decent time to visit")

	failed := Summary(planner.Trip{City: "Atlantis", Error: "City Atlantis not found"})
	assert.Contains(t, failed, "TRIP TO ATLANTIS")
	assert.Contains(t, failed, "Error: City Atlantis not found")
	assert.NotContains(t, failed, "Dates:")
}

func TestWriteTour(t *testing.T) {
	tour := planner.Tour{TotalCities: 3, StartDate: "May 2027", Trips: []planner.Trip{sampleTrip(), sampleTrip(), sampleTrip()}}

	var buf bytes.Buffer
	require.NoError(t, WriteTour(&buf, tour, 2))
	out := buf.String()
	assert.Contains(t, out, "Total cities planned: 3")
	assert.Contains(t, out, "Starting: May 2027")
	assert.Equal(t, 2, strings.Count(out, "TRIP TO"))
	assert.Contains(t, out, "and 1 more")

	buf.Reset()
	require.NoError(t, WriteTour(&buf, tour, 0))
	assert.Equal(t, 3, strings.Count(buf.String(), "TRIP TO"))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleTrip()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "Boston, MA", decoded["city"])
	assert.Contains(t, decoded, "travel_dates")
	assert.Contains(t, decoded, "season_info")
	assert.NotContains(t, decoded, "error")
}

func TestWriteTourCSV(t *testing.T) {
	failed := planner.Trip{City: "Atlantis", Error: "City Atlantis not found"}
	tour := planner.Tour{TotalCities: 2, Trips: []planner.Trip{sampleTrip(), failed}}

	var buf bytes.Buffer
	require.NoError(t, WriteTourCSV(&buf, tour))
	assert.True(t, strings.HasPrefix(buf.String(), "city,month,departure,return,optimal"))

	var rows []TourRow
	require.NoError(t, csvutil.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Boston, MA", rows[0].City)
	assert.Equal(t, "BOS", rows[0].Destination)
	assert.Equal(t, 356.0, rows[0].CheapestFlight)
	assert.Equal(t, 899.97, rows[0].CheapestHotel)
	assert.True(t, rows[0].Optimal)
	assert.Equal(t, "City Atlantis not found", rows[1].Error)

	buf.Reset()
	require.NoError(t, WriteTourCSV(&buf, planner.Tour{}))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestPDF(t *testing.T) {
	data, err := PDF(sampleTrip(), PDFOptions{TravelerName: "Sam", Generated: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	_, err = PDF(planner.Trip{City: "Atlantis", Error: "City Atlantis not found"}, PDFOptions{})
	assert.ErrorIs(t, err, ErrIncompleteTrip)
}

func TestTourPDF(t *testing.T) {
	failed := planner.Trip{City: "Atlantis", Error: "City Atlantis not found"}
	tour := planner.Tour{TotalCities: 3, StartDate: "May 2027", Trips: []planner.Trip{sampleTrip(), failed, sampleTrip()}}

	data, err := TourPDF(tour, PDFOptions{TravelerName: "Sam"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	// Overview page plus one page per planned trip.
	assert.Contains(t, string(data), "/Count 3")

	single, err := PDF(sampleTrip(), PDFOptions{})
	require.NoError(t, err)
	assert.Contains(t, string(single), "/Count 1")

	_, err = TourPDF(planner.Tour{Trips: []planner.Trip{failed}}, PDFOptions{})
	assert.ErrorIs(t, err, ErrEmptyTour)
	_, err = TourPDF(planner.Tour{}, PDFOptions{})
	assert.ErrorIs(t, err, ErrEmptyTour)
}

func TestFormatFlightLeg(t *testing.T) {
	leg := &services.Itinerary{
		Departure: services.Endpoint{Airport: "LAX", Time: "2027-05-13T07:00:00"},
		Arrival:   services.Endpoint{Airport: "BOS", Time: "2027-05-13T15:25:00"},
		Duration:  "5h 25m",
	}
	assert.Equal(t, "LAX 13 May 07:00 - BOS 13 May 15:25 (5h 25m)", formatFlightLeg(leg))
	assert.Equal(t, "N/A", formatFlightLeg(&services.Itinerary{}))
	assert.Equal(t, "13 May 2027 (Thu)", fmtDateReadable("2027-05-13"))
	assert.Equal(t, "Direct", stopsLabel(0))
	assert.Equal(t, "61 Exeter St, BOSTON", hotelLocation(services.Address{Lines: []string{"61 Exeter St"}, CityName: "BOSTON"}))
}
