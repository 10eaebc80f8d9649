package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ─── Hotel Search ─────────────────────────────────────────────────────────────

// maxHotelIDs limits how many hotels are priced per search to stay inside
// the Amadeus rate limits.
const maxHotelIDs = 20

// ErrNoHotels is returned when the hotel list for an area is empty.
var ErrNoHotels = errors.New("no hotels found matching criteria")

// SearchHotelsByGeocode lists hotels around a point and prices them for the stay.
func (c *AmadeusClient) SearchHotelsByGeocode(ctx context.Context, q HotelQuery) ([]HotelOffer, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if q.RadiusMiles <= 0 {
		q.RadiusMiles = 2
	}

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(q.Latitude, 'f', 4, 64))
	params.Set("longitude", strconv.FormatFloat(q.Longitude, 'f', 4, 64))
	params.Set("radius", strconv.Itoa(q.RadiusMiles))
	params.Set("radiusUnit", "MILE")
	if r := ratingsParam(q.MinRating); r != "" {
		params.Set("ratings", r)
	}
	params.Set("hotelSource", "ALL")

	ids, err := c.hotelIDs(ctx, "hotel_list_geocode", "/v1/reference-data/locations/hotels/by-geocode", params)
	if err != nil {
		return nil, err
	}
	return c.getHotelOffers(ctx, ids, q.CheckIn, q.CheckOut, q.Adults)
}

// SearchHotelsByCity lists hotels within five miles of an IATA city code and
// prices them for the stay.
func (c *AmadeusClient) SearchHotelsByCity(ctx context.Context, cityCode string, q HotelQuery) ([]HotelOffer, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("cityCode", airportToCity(strings.ToUpper(cityCode)))
	params.Set("radius", "5")
	params.Set("radiusUnit", "MILE")
	if r := ratingsParam(q.MinRating); r != "" {
		params.Set("ratings", r)
	}
	params.Set("amenities", "WIFI,PARKING")
	params.Set("hotelSource", "ALL")

	ids, err := c.hotelIDs(ctx, "hotel_list_city", "/v1/reference-data/locations/hotels/by-city", params)
	if err != nil {
		return nil, err
	}
	return c.getHotelOffers(ctx, ids, q.CheckIn, q.CheckOut, q.Adults)
}

// ratingsParam renders "4,5" for a minimum of four stars.
func ratingsParam(minRating int) string {
	if minRating < 1 || minRating > 5 {
		return ""
	}
	parts := make([]string, 0, 6-minRating)
	for r := minRating; r <= 5; r++ {
		parts = append(parts, strconv.Itoa(r))
	}
	return strings.Join(parts, ",")
}

type amadeusHotelListResponse struct {
	Data []struct {
		HotelID string `json:"hotelId"`
		Name    string `json:"name"`
	} `json:"data"`
}

func (c *AmadeusClient) hotelIDs(ctx context.Context, operation, path string, params url.Values) ([]string, error) {
	body, err := c.get(ctx, operation, path, params)
	if err != nil {
		return nil, fmt.Errorf("hotel list failed: %w", err)
	}

	var resp amadeusHotelListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse hotel list: %w", err)
	}

	ids := make([]string, 0, len(resp.Data))
	for _, h := range resp.Data {
		if h.HotelID != "" {
			ids = append(ids, h.HotelID)
		}
	}
	if len(ids) == 0 {
		return nil, ErrNoHotels
	}
	if len(ids) > maxHotelIDs {
		ids = ids[:maxHotelIDs]
	}
	return ids, nil
}

type amadeusHotelOffersResponse struct {
	Data []struct {
		Hotel struct {
			HotelID string `json:"hotelId"`
			Name    string `json:"name"`
			Rating  string `json:"rating"`
			Address struct {
				Lines      []string `json:"lines"`
				CityName   string   `json:"cityName"`
				PostalCode string   `json:"postalCode"`
			} `json:"address"`
			Amenities []string `json:"amenities"`
		} `json:"hotel"`
		Available *bool `json:"available"`
		Offers    []struct {
			Price struct {
				Total    string `json:"total"`
				Base     string `json:"base"`
				Currency string `json:"currency"`
			} `json:"price"`
			Room struct {
				TypeEstimated struct {
					Category string `json:"category"`
					Beds     int    `json:"beds"`
					BedType  string `json:"bedType"`
				} `json:"typeEstimated"`
				Description struct {
					Text string `json:"text"`
				} `json:"description"`
			} `json:"room"`
			Policies struct {
				Cancellations []struct {
					Deadline    string `json:"deadline"`
					Description struct {
						Text string `json:"text"`
					} `json:"description"`
				} `json:"cancellations"`
			} `json:"policies"`
		} `json:"offers"`
	} `json:"data"`
}

func (c *AmadeusClient) getHotelOffers(ctx context.Context, hotelIDs []string, checkIn, checkOut string, adults int) ([]HotelOffer, error) {
	if adults <= 0 {
		adults = 1
	}
	params := url.Values{}
	params.Set("hotelIds", strings.Join(hotelIDs, ","))
	params.Set("checkInDate", checkIn)
	params.Set("checkOutDate", checkOut)
	params.Set("adults", strconv.Itoa(adults))
	params.Set("roomQuantity", "1")
	params.Set("currency", "USD")
	params.Set("bestRateOnly", "true")

	body, err := c.get(ctx, "hotel_offers", "/v3/shopping/hotel-offers", params)
	if err != nil {
		return nil, fmt.Errorf("hotel offers failed: %w", err)
	}
	return parseHotelOffers(body, stayNights(checkIn, checkOut))
}

func parseHotelOffers(data []byte, nights int) ([]HotelOffer, error) {
	var resp amadeusHotelOffersResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse hotel offers: %w", err)
	}

	hotels := make([]HotelOffer, 0, len(resp.Data))
	for _, item := range resp.Data {
		if (item.Available != nil && !*item.Available) || len(item.Offers) == 0 {
			continue
		}
		best := item.Offers[0]

		currency := best.Price.Currency
		if currency == "" {
			currency = "USD"
		}
		price := Price{
			Total:    parsePrice(best.Price.Total),
			Base:     parsePrice(best.Price.Base),
			Currency: currency,
		}
		if nights > 0 && price.Total > 0 {
			price.PerNight = roundCents(price.Total / float64(nights))
		}

		name := item.Hotel.Name
		if name == "" {
			name = "Unknown Hotel"
		}
		roomType := best.Room.TypeEstimated.Category
		if roomType == "" {
			roomType = "Standard"
		}

		offer := HotelOffer{
			HotelID: item.Hotel.HotelID,
			Name:    name,
			Rating:  parseRating(item.Hotel.Rating),
			Address: Address{
				Lines:      item.Hotel.Address.Lines,
				CityName:   item.Hotel.Address.CityName,
				PostalCode: item.Hotel.Address.PostalCode,
			},
			Price: price,
			Room: Room{
				Type:        roomType,
				Beds:        best.Room.TypeEstimated.Beds,
				BedType:     best.Room.TypeEstimated.BedType,
				Description: strings.TrimSpace(best.Room.Description.Text),
			},
			Amenities: item.Hotel.Amenities,
		}
		if cs := best.Policies.Cancellations; len(cs) > 0 {
			offer.Cancellation = cs[0].Description.Text
			if offer.Cancellation == "" && cs[0].Deadline != "" {
				offer.Cancellation = "Free cancellation until " + cs[0].Deadline
			}
		}
		hotels = append(hotels, offer)
	}

	SortHotelsByPrice(hotels)
	return hotels, nil
}

// SortHotelsByPrice orders offers cheapest first; offers without a price go last.
func SortHotelsByPrice(hotels []HotelOffer) {
	sort.SliceStable(hotels, func(i, j int) bool {
		pi, pj := hotels[i].Price.Total, hotels[j].Price.Total
		if pi <= 0 {
			return false
		}
		if pj <= 0 {
			return true
		}
		return pi < pj
	})
}

// parseRating reads the Amadeus star rating; 0 means unknown.
func parseRating(s string) int {
	r, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || r < 0 {
		return 0
	}
	if r > 5 {
		r = 5
	}
	return r
}

func stayNights(checkIn, checkOut string) int {
	in, err1 := time.Parse("2006-01-02", checkIn)
	out, err2 := time.Parse("2006-01-02", checkOut)
	if err1 != nil || err2 != nil || !out.After(in) {
		return 0
	}
	return int(out.Sub(in).Hours() / 24)
}

func roundCents(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

// airportToCity maps airport IATA codes to city codes for hotel search
func airportToCity(airport string) string {
	mapping := map[string]string{
		"JFK": "NYC", "LGA": "NYC", "EWR": "NYC",
		"ORD": "CHI", "MDW": "CHI",
		"DCA": "WAS", "IAD": "WAS", "BWI": "WAS",
		"SFO": "SFO", "OAK": "SFO",
		"LAX": "LAX", "BUR": "LAX",
		"MIA": "MIA", "FLL": "MIA",
		"IAH": "HOU", "HOU": "HOU",
		"DTW": "DTT",
	}
	if city, ok := mapping[airport]; ok {
		return city
	}
	return airport // fallback: use as-is
}
