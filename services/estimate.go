package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"tripplanner/catalog"
)

// ─── Estimates (when Amadeus is not configured) ──────────────────────────────

// Estimator produces plausible flight and hotel offers without an API key.
// Every result it backs is labelled "estimated".
type Estimator struct{}

func NewEstimator() *Estimator { return &Estimator{} }

func (e *Estimator) Source() string { return SourceEstimated }

// defaultRouteMiles is assumed when either airport is missing from the
// reference table.
const defaultRouteMiles = 1000

// SearchFlights returns five carrier options priced by route distance.
func (e *Estimator) SearchFlights(ctx context.Context, q FlightQuery) ([]FlightOffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	origin := strings.ToUpper(q.Origin)
	destination := strings.ToUpper(q.Destination)
	if origin == destination {
		return nil, fmt.Errorf("origin and destination are both %s", origin)
	}

	depDate, err := time.Parse("2006-01-02", q.DepartureDate)
	if err != nil {
		return nil, fmt.Errorf("invalid departure date: %w", err)
	}
	var retDate time.Time
	if q.ReturnDate != "" {
		if retDate, err = time.Parse("2006-01-02", q.ReturnDate); err != nil {
			return nil, fmt.Errorf("invalid return date: %w", err)
		}
	}

	miles, ok := catalog.AirportDistance(origin, destination)
	if !ok {
		miles = defaultRouteMiles
	}
	basePrice := 79 + miles*0.12
	airMinutes := int(miles/500*60) + 30

	adults := q.Adults
	if adults <= 0 {
		adults = 1
	}

	type carrierOption struct {
		code     string
		priceMod float64
		stops    int
	}
	options := []carrierOption{
		{"DL", 1.15, 0},
		{"UA", 1.10, 0},
		{"AA", 1.05, 0},
		{"WN", 0.85, 1},
		{"NK", 0.65, 1},
	}

	offers := make([]FlightOffer, 0, len(options))
	for i, opt := range options {
		price := math.Round(basePrice*opt.priceMod/5) * 5 * float64(adults)

		dur := airMinutes
		if opt.stops > 0 {
			dur += 90
		}

		depTime := time.Date(depDate.Year(), depDate.Month(), depDate.Day(), 6+i*3, 0, 0, 0, time.UTC)
		offer := FlightOffer{
			Price:    Price{Total: price, Currency: "USD"},
			Outbound: estimatedLeg(origin, destination, opt.code, depTime, dur, opt.stops),
		}
		if !retDate.IsZero() {
			retTime := time.Date(retDate.Year(), retDate.Month(), retDate.Day(), 8+i*2, 0, 0, 0, time.UTC)
			offer.Return = estimatedLeg(destination, origin, opt.code, retTime, dur, opt.stops)
		}
		offers = append(offers, offer)
	}
	return offers, nil
}

func estimatedLeg(from, to, carrier string, dep time.Time, minutes, stops int) *Itinerary {
	carriers := make([]string, stops+1)
	for i := range carriers {
		carriers[i] = carrier
	}
	return &Itinerary{
		Departure: Endpoint{Airport: from, Time: dep.Format("2006-01-02T15:04:05")},
		Arrival:   Endpoint{Airport: to, Time: dep.Add(time.Duration(minutes) * time.Minute).Format("2006-01-02T15:04:05")},
		Duration:  formatDurationMin(minutes),
		Stops:     stops,
		Carriers:  carriers,
	}
}

// SearchHotelsByGeocode returns generic hotels for the searched area that
// meet the minimum rating, cheapest first.
func (e *Estimator) SearchHotelsByGeocode(ctx context.Context, q HotelQuery) ([]HotelOffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	nights := stayNights(q.CheckIn, q.CheckOut)
	if nights == 0 {
		return nil, fmt.Errorf("check-out %q must be after check-in %q", q.CheckOut, q.CheckIn)
	}
	area := q.Area
	if area == "" {
		area = "City Center"
	}

	templates := []struct {
		name     string
		rating   int
		perNight float64
		room     string
	}{
		{"Grand " + area + " Hotel", 5, 320, "DELUXE_ROOM"},
		{area + " Marriott", 4, 245, "STANDARD_ROOM"},
		{"Boutique Residence " + area, 4, 210, "SUPERIOR_ROOM"},
		{"Hilton Garden Inn " + area, 3, 165, "STANDARD_ROOM"},
		{"Economy Suites " + area, 2, 95, "STANDARD_ROOM"},
	}

	hotels := make([]HotelOffer, 0, len(templates))
	for i, t := range templates {
		if t.rating < q.MinRating {
			continue
		}
		hotels = append(hotels, HotelOffer{
			HotelID: fmt.Sprintf("EST%03d", i+1),
			Name:    t.name,
			Rating:  t.rating,
			Address: Address{CityName: area},
			Price: Price{
				Total:    t.perNight * float64(nights),
				Currency: "USD",
				PerNight: t.perNight,
			},
			Room: Room{Type: t.room, Beds: 1},
		})
	}
	if len(hotels) == 0 {
		return nil, ErrNoHotels
	}
	SortHotelsByPrice(hotels)
	return hotels, nil
}
