// Package report renders trip plans as text, JSON, CSV and PDF.
package report

import (
	"fmt"
	"io"
	"strings"

	"tripplanner/planner"
	"tripplanner/services"
)

const (
	maxFlightOptions = 3
	maxHotelOptions  = 5
	ruleWidth        = 80
)

// Summary is the human-readable rendering of one trip.
func Summary(trip planner.Trip) string {
	var b strings.Builder
	rule := strings.Repeat("=", ruleWidth)

	fmt.Fprintf(&b, "\n%s\nTRIP TO %s\n%s\n", rule, strings.ToUpper(trip.City), rule)
	if !trip.OK() {
		fmt.Fprintf(&b, "\nError: %s\n\n%s\n", trip.Error, rule)
		return b.String()
	}

	if d := trip.TravelDates; d != nil {
		fmt.Fprintf(&b, "\nDates: %s to %s\n", d.Departure, d.Return)
		fmt.Fprintf(&b, "Duration: %s\n", d.Duration)
	}
	if trip.Origin != "" {
		fmt.Fprintf(&b, "From: %s\n", trip.Origin)
	}

	if s := trip.Season; s != nil {
		fmt.Fprintf(&b, "\nSeason: %s\n", s.Month)
		switch {
		case s.Optimal:
			b.WriteString("✓ Optimal time to visit!\n")
		case s.Avoid:
			fmt.Fprintf(&b, "⚠ Not recommended - %s\n", s.Reason)
		default:
			b.WriteString("○ Decent time to visit\n")
		}
	}

	b.WriteString("\nMain Attractions:\n")
	for _, a := range trip.Attractions {
		fmt.Fprintf(&b, "  • %s\n", a)
	}
	fmt.Fprintf(&b, "\nRecommended Area: %s\n", trip.CentralArea)

	writeFlights(&b, trip.Flights)
	writeHotels(&b, trip.Hotels)

	if trip.Estimated() {
		b.WriteString("\nPrices are estimates. Configure Amadeus credentials for live offers.\n")
	}
	fmt.Fprintf(&b, "\n%s\n", rule)
	return b.String()
}

func writeFlights(b *strings.Builder, res *services.FlightResult) {
	if res == nil || !res.Success || len(res.Offers) == 0 {
		b.WriteString("\n--- FLIGHTS ---\n")
		msg := "No flights found"
		if res != nil && res.Error != "" {
			msg = res.Error
		}
		fmt.Fprintf(b, "Error: %s\n", msg)
		return
	}

	b.WriteString("\n--- FLIGHT OPTIONS ---\n")
	for i, o := range res.Offers[:min(len(res.Offers), maxFlightOptions)] {
		fmt.Fprintf(b, "\nOption %d: $%.2f %s\n", i+1, o.Price.Total, o.Price.Currency)
		if o.Outbound != nil {
			fmt.Fprintf(b, "  Outbound: %s → %s\n", o.Outbound.Departure.Time, o.Outbound.Arrival.Time)
			fmt.Fprintf(b, "  Stops: %d\n", o.Outbound.Stops)
		}
		if o.Return != nil {
			fmt.Fprintf(b, "  Return: %s → %s\n", o.Return.Departure.Time, o.Return.Arrival.Time)
		}
	}
}

func writeHotels(b *strings.Builder, res *services.HotelResult) {
	if res == nil || !res.Success || len(res.Offers) == 0 {
		b.WriteString("\n--- HOTELS ---\n")
		msg := "No hotels found"
		if res != nil && res.Error != "" {
			msg = res.Error
		}
		fmt.Fprintf(b, "Error: %s\n", msg)
		return
	}

	fmt.Fprintf(b, "\n--- HOTEL OPTIONS (%d+ Stars) ---\n", planner.MinHotelRating)
	for i, h := range res.Offers[:min(len(res.Offers), maxHotelOptions)] {
		fmt.Fprintf(b, "\n%d. %s\n", i+1, h.Name)
		fmt.Fprintf(b, "   Rating: %s\n", stars(h.Rating))
		fmt.Fprintf(b, "   Price: $%.2f %s total\n", h.Price.Total, h.Price.Currency)
		if h.Price.PerNight > 0 {
			fmt.Fprintf(b, "   ($%.2f/night)\n", h.Price.PerNight)
		}
		fmt.Fprintf(b, "   Room: %s\n", h.Room.Type)
	}
}

func stars(rating int) string {
	if rating <= 0 {
		return "unrated"
	}
	return fmt.Sprintf("%d stars", rating)
}

// WriteTour prints the tour header followed by the summary of each trip.
// limit caps the number of trips printed; zero prints them all.
func WriteTour(w io.Writer, tour planner.Tour, limit int) error {
	if _, err := fmt.Fprintf(w, "\nTotal cities planned: %d\nStarting: %s\n", tour.TotalCities, tour.StartDate); err != nil {
		return err
	}
	trips := tour.Trips
	if limit > 0 && limit < len(trips) {
		trips = trips[:limit]
	}
	for _, trip := range trips {
		if _, err := io.WriteString(w, Summary(trip)); err != nil {
			return err
		}
	}
	if len(trips) < len(tour.Trips) {
		_, err := fmt.Fprintf(w, "\n... and %d more. Use --all to print every trip.\n", len(tour.Trips)-len(trips))
		return err
	}
	return nil
}
