package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ─── Flight Search ────────────────────────────────────────────────────────────

// maxFlightOffers caps how many offers Amadeus returns per search.
const maxFlightOffers = 10

// SearchFlights searches real-time flights via Amadeus Flight Offers Search API
func (c *AmadeusClient) SearchFlights(ctx context.Context, q FlightQuery) ([]FlightOffer, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if q.Adults <= 0 {
		q.Adults = 1
	}

	params := url.Values{}
	params.Set("originLocationCode", strings.ToUpper(q.Origin))
	params.Set("destinationLocationCode", strings.ToUpper(q.Destination))
	params.Set("departureDate", q.DepartureDate)
	if q.ReturnDate != "" {
		params.Set("returnDate", q.ReturnDate)
	}
	params.Set("adults", strconv.Itoa(q.Adults))
	params.Set("currencyCode", "USD")
	params.Set("max", strconv.Itoa(maxFlightOffers))

	body, err := c.get(ctx, "flight_offers", "/v2/shopping/flight-offers", params)
	if err != nil {
		return nil, fmt.Errorf("flight search failed: %w", err)
	}
	return parseFlightOffers(body)
}

type amadeusSegment struct {
	Departure struct {
		IataCode string `json:"iataCode"`
		At       string `json:"at"`
	} `json:"departure"`
	Arrival struct {
		IataCode string `json:"iataCode"`
		At       string `json:"at"`
	} `json:"arrival"`
	CarrierCode string `json:"carrierCode"`
	Number      string `json:"number"`
}

type amadeusItinerary struct {
	Duration string           `json:"duration"`
	Segments []amadeusSegment `json:"segments"`
}

// Amadeus flight offers response structures
type amadeusFlightOffersResponse struct {
	Data []amadeusFlightOffer `json:"data"`
}

type amadeusFlightOffer struct {
	Self struct {
		Href string `json:"href"`
	} `json:"self"`
	NumberOfBookableSeats int `json:"numberOfBookableSeats"`
	Price                 struct {
		Total      string `json:"total"`
		GrandTotal string `json:"grandTotal"`
		Base       string `json:"base"`
		Currency   string `json:"currency"`
	} `json:"price"`
	Itineraries []amadeusItinerary `json:"itineraries"`
}

func parseFlightOffers(data []byte) ([]FlightOffer, error) {
	var resp amadeusFlightOffersResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse flight offers: %w", err)
	}

	offers := make([]FlightOffer, 0, len(resp.Data))
	for _, o := range resp.Data {
		total := o.Price.Total
		if total == "" {
			total = o.Price.GrandTotal
		}
		currency := o.Price.Currency
		if currency == "" {
			currency = "USD"
		}

		offer := FlightOffer{
			Price: Price{
				Total:    parsePrice(total),
				Currency: currency,
				Base:     parsePrice(o.Price.Base),
			},
			BookingLink:    o.Self.Href,
			SeatsAvailable: o.NumberOfBookableSeats,
		}
		if len(o.Itineraries) > 0 {
			offer.Outbound = toItinerary(o.Itineraries[0])
		}
		if len(o.Itineraries) > 1 {
			offer.Return = toItinerary(o.Itineraries[1])
		}
		offers = append(offers, offer)
	}
	return offers, nil
}

// toItinerary summarises an itinerary by its first departure and last
// arrival. It returns nil for an itinerary without segments.
func toItinerary(it amadeusItinerary) *Itinerary {
	if len(it.Segments) == 0 {
		return nil
	}
	first := it.Segments[0]
	last := it.Segments[len(it.Segments)-1]

	carriers := make([]string, 0, len(it.Segments))
	for _, s := range it.Segments {
		carriers = append(carriers, s.CarrierCode)
	}
	return &Itinerary{
		Departure: Endpoint{Airport: first.Departure.IataCode, Time: first.Departure.At},
		Arrival:   Endpoint{Airport: last.Arrival.IataCode, Time: last.Arrival.At},
		Duration:  parseDuration(it.Duration),
		Stops:     len(it.Segments) - 1,
		Carriers:  carriers,
	}
}
