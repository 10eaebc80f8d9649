package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"tripplanner/dates"
	"tripplanner/planner"
	"tripplanner/services"
)

// ErrIncompleteTrip is returned when a trip has no dates to print.
var ErrIncompleteTrip = errors.New("trip has no travel dates")

type PDFOptions struct {
	TravelerName string
	Generated    time.Time
}

// ErrEmptyTour is returned when a tour has no planned trips to print.
var ErrEmptyTour = errors.New("tour has no planned trips")

// PDF renders a one-page itinerary for the trip using its cheapest flight and
// hotel offers.
func PDF(trip planner.Trip, opts PDFOptions) ([]byte, error) {
	if !trip.OK() || trip.TravelDates == nil {
		return nil, ErrIncompleteTrip
	}
	if opts.Generated.IsZero() {
		opts.Generated = time.Now()
	}

	pdf := newDocument()
	writeTripPage(pdf, trip, opts)
	return output(pdf)
}

// TourPDF renders an overview page listing every stop, followed by one
// itinerary page per planned trip. Trips that could not be planned appear
// only in the overview.
func TourPDF(tour planner.Tour, opts PDFOptions) ([]byte, error) {
	planned := 0
	for _, t := range tour.Trips {
		if t.OK() && t.TravelDates != nil {
			planned++
		}
	}
	if planned == 0 {
		return nil, ErrEmptyTour
	}
	if opts.Generated.IsZero() {
		opts.Generated = time.Now()
	}

	pdf := newDocument()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	headerBar(pdf, "Weekend Tour", fmt.Sprintf("%d cities, starting %s", tour.TotalCities, tour.StartDate))

	pdf.SetY(35)
	sectionHeader(pdf, "Stops")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(100, 100, 100)
	for _, col := range tourColumns {
		pdf.CellFormat(col.width, 7, col.title, "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	var total float64
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(20, 20, 20)
	for i, t := range tour.Trips {
		cells := []string{fmt.Sprint(i + 1), tr(t.City), "", "", "", ""}
		if !t.OK() || t.TravelDates == nil {
			cells[2] = tr(t.Error)
		} else {
			cells[2] = fmtDateReadable(t.TravelDates.Departure)
			f, fok := cheapestFlight(t.Flights)
			h, hok := cheapestHotel(t.Hotels)
			if fok {
				cells[3] = fmt.Sprintf("$%.0f", f.Price.Total)
				total += f.Price.Total
			}
			if hok {
				cells[4] = fmt.Sprintf("$%.0f", h.Price.Total)
				total += h.Price.Total
			}
			if fok || hok {
				cells[5] = fmt.Sprintf("$%.0f", f.Price.Total+h.Price.Total)
			}
		}
		for j, col := range tourColumns {
			pdf.CellFormat(col.width, 6, cells[j], "", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(3)
	pdf.SetFillColor(212, 168, 67)
	pdf.SetTextColor(13, 24, 37)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(55, 9, "TOUR ESTIMATE", "", 0, "L", true, 0, "")
	pdf.CellFormat(115, 9, fmt.Sprintf("$%.0f", total), "", 1, "L", true, 0, "")
	pdf.SetTextColor(0, 0, 0)

	for _, t := range tour.Trips {
		if t.OK() && t.TravelDates != nil {
			writeTripPage(pdf, t, opts)
		}
	}
	return output(pdf)
}

var tourColumns = []struct {
	title string
	width float64
}{
	{"#", 8}, {"City", 52}, {"Departure", 50}, {"Flight", 20}, {"Hotel", 20}, {"Total", 20},
}

func newDocument() *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-22)
		pdf.SetDrawColor(200, 200, 200)
		pdf.SetLineWidth(0.3)
		pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(150, 150, 150)
		pdf.CellFormat(0, 8,
			"Weekend trip planner - Not a booking confirmation - Prices subject to change",
			"", 0, "C", false, 0, "")
	})
	return pdf
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF output failed: %w", err)
	}
	return buf.Bytes(), nil
}

func headerBar(pdf *gofpdf.Fpdf, title, subtitle string) {
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFillColor(13, 24, 37)
	pdf.Rect(0, 0, 210, 28, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(20, 8)
	pdf.CellFormat(170, 10, tr(title), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(212, 168, 67)
	pdf.SetXY(20, 18)
	pdf.CellFormat(170, 6, tr(subtitle), "", 1, "L", false, 0, "")
}

func sectionHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFillColor(13, 24, 37)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(170, 8, "  "+title, "", 1, "L", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(2)
}

// writeTripPage adds a page with the trip's itinerary.
func writeTripPage(pdf *gofpdf.Fpdf, trip planner.Trip, opts PDFOptions) {
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// ── Watermark ────────────────────────────────────────────
	pdf.SetTextColor(230, 230, 230)
	pdf.SetFont("Helvetica", "B", 55)
	pdf.TransformBegin()
	pdf.TransformRotate(42, 60, 200)
	pdf.Text(60, 200, "PLAN")
	pdf.TransformEnd()
	pdf.SetTextColor(0, 0, 0)

	headerBar(pdf, "Weekend in "+trip.City, trip.TravelDates.Duration)

	pdf.SetY(35)
	pdf.SetTextColor(0, 0, 0)

	// ── Disclaimer ───────────────────────────────────────────
	pdf.SetFillColor(255, 248, 225)
	pdf.SetDrawColor(212, 168, 67)
	pdf.SetTextColor(130, 90, 20)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetLineWidth(0.4)
	y := pdf.GetY()
	pdf.Rect(20, y, 170, 12, "FD")
	pdf.SetXY(23, y+2)
	disclaimer := "This is NOT a booking confirmation. Prices change quickly. Verify with providers before booking."
	if trip.Estimated() {
		disclaimer = "ESTIMATED PRICES. Live search was not available. This is NOT a booking confirmation."
	}
	pdf.MultiCell(164, 4, disclaimer, "", "C", false)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
	pdf.Ln(6)

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(55, 7, label, "", 0, "L", false, 0, "")
		pdf.SetTextColor(20, 20, 20)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(115, 7, tr(value), "", 1, "L", false, 0, "")
	}

	// ── Traveler Info ─────────────────────────────────────────
	sectionHeader(pdf, "Traveler")
	name := opts.TravelerName
	if name == "" {
		name = "Guest Traveler"
	}
	row("Name", name)
	row("Generated", opts.Generated.UTC().Format("02 Jan 2006, 15:04 UTC"))
	pdf.Ln(4)

	// ── Trip Overview ─────────────────────────────────────────
	sectionHeader(pdf, "Trip Overview")
	if trip.Flights != nil {
		row("Route", fmt.Sprintf("%s - %s - %s", trip.Flights.Origin, trip.Flights.Destination, trip.Flights.Origin))
	}
	row("Departure", fmtDateReadable(trip.TravelDates.Departure))
	row("Return", fmtDateReadable(trip.TravelDates.Return))
	if s := trip.Season; s != nil {
		row("Season", fmt.Sprintf("%s: %s", s.Month, s.Reason))
	}
	row("Stay in", trip.CentralArea)
	pdf.Ln(4)

	var flightCost, hotelCost float64

	// ── Selected Flight ───────────────────────────────────────
	sectionHeader(pdf, "Selected Flight")
	if f, ok := cheapestFlight(trip.Flights); ok {
		flightCost = f.Price.Total
		if f.Outbound != nil {
			row("Airline", carriers(f.Outbound.Carriers))
			row("Outbound", formatFlightLeg(f.Outbound))
			row("Stops", stopsLabel(f.Outbound.Stops))
		}
		if f.Return != nil {
			row("Return", formatFlightLeg(f.Return))
		}
		row("Price", fmt.Sprintf("$%.0f per person (round-trip)", f.Price.Total))
	} else {
		row("Flights", unavailable(trip.Flights))
	}
	pdf.Ln(4)

	// ── Selected Hotel ────────────────────────────────────────
	sectionHeader(pdf, "Selected Hotel")
	if h, ok := cheapestHotel(trip.Hotels); ok {
		hotelCost = h.Price.Total
		row("Hotel", h.Name)
		if loc := hotelLocation(h.Address); loc != "" {
			row("Location", loc)
		}
		if h.Rating > 0 {
			row("Rating", fmt.Sprintf("%d / 5", h.Rating))
		}
		row("Check-in", fmtDateReadable(trip.TravelDates.Departure))
		row("Check-out", fmtDateReadable(trip.TravelDates.Return))
		row("Price", fmt.Sprintf("$%.0f/night x %d nights = $%.0f", h.Price.PerNight, dates.Nights, h.Price.Total))
	} else {
		row("Hotels", unavailableHotels(trip.Hotels))
	}
	pdf.Ln(4)

	// ── Cost Summary ──────────────────────────────────────────
	sectionHeader(pdf, "Cost Estimate")
	row("Flight (per person)", fmt.Sprintf("$%.0f", flightCost))
	row("Hotel total", fmt.Sprintf("$%.0f", hotelCost))

	pdf.SetFillColor(212, 168, 67)
	pdf.SetTextColor(13, 24, 37)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(55, 9, "TOTAL ESTIMATE", "", 0, "L", true, 0, "")
	pdf.CellFormat(115, 9, fmt.Sprintf("$%.0f", flightCost+hotelCost), "", 1, "L", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	// ── Attractions ───────────────────────────────────────────
	if len(trip.Attractions) > 0 {
		sectionHeader(pdf, "Things To Do")
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(40, 40, 40)
		for _, a := range trip.Attractions {
			pdf.CellFormat(170, 6, tr("- "+a), "", 1, "L", false, 0, "")
		}
	}
}

func cheapestFlight(res *services.FlightResult) (services.FlightOffer, bool) {
	var (
		best  services.FlightOffer
		found bool
	)
	if res == nil {
		return best, false
	}
	for _, o := range res.Offers {
		if o.Price.Total > 0 && (!found || o.Price.Total < best.Price.Total) {
			best, found = o, true
		}
	}
	return best, found
}

func cheapestHotel(res *services.HotelResult) (services.HotelOffer, bool) {
	if res == nil || len(res.Offers) == 0 {
		return services.HotelOffer{}, false
	}
	return res.Offers[0], true
}

func unavailable(res *services.FlightResult) string {
	if res == nil || res.Error == "" {
		return "No flights found"
	}
	return res.Error
}

func unavailableHotels(res *services.HotelResult) string {
	if res == nil || res.Error == "" {
		return "No hotels found"
	}
	return res.Error
}

func hotelLocation(a services.Address) string {
	parts := make([]string, 0, len(a.Lines)+1)
	for _, p := range append(a.Lines[:len(a.Lines):len(a.Lines)], a.CityName) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func carriers(codes []string) string {
	names := make([]string, 0, len(codes))
	for _, c := range codes {
		names = append(names, services.AirlineName(c))
	}
	if len(names) == 0 {
		return "N/A"
	}
	return strings.Join(names, ", ")
}

func stopsLabel(n int) string {
	if n == 0 {
		return "Direct"
	}
	return fmt.Sprintf("%d stop(s)", n)
}

func fmtDateReadable(iso string) string {
	t, err := time.Parse(dates.Layout, iso)
	if err != nil {
		return iso
	}
	return t.Format("02 Jan 2006 (Mon)")
}

// Amadeus reports local times without a zone.
var legLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"}

func parseLegTime(s string) (time.Time, bool) {
	for _, layout := range legLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func formatFlightLeg(it *services.Itinerary) string {
	dep, ok1 := parseLegTime(it.Departure.Time)
	arr, ok2 := parseLegTime(it.Arrival.Time)
	if !ok1 || !ok2 {
		if it.Departure.Time != "" && it.Arrival.Time != "" {
			return it.Departure.Time + " - " + it.Arrival.Time
		}
		return "N/A"
	}
	result := fmt.Sprintf("%s %s - %s %s",
		it.Departure.Airport, dep.Format("02 Jan 15:04"),
		it.Arrival.Airport, arr.Format("02 Jan 15:04"))
	if it.Duration != "" {
		result += fmt.Sprintf(" (%s)", it.Duration)
	}
	return result
}
