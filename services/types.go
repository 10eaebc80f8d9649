package services

// ─── Types ────────────────────────────────────────────────────────────────────

const (
	SourceLive      = "live"
	SourceEstimated = "estimated"
)

type FlightQuery struct {
	Origin        string
	Destination   string
	DepartureDate string
	ReturnDate    string // empty for one-way
	Adults        int
}

type Endpoint struct {
	Airport string `json:"airport"`
	Time    string `json:"time"`
}

type Itinerary struct {
	Departure Endpoint `json:"departure"`
	Arrival   Endpoint `json:"arrival"`
	Duration  string   `json:"duration"`
	Stops     int      `json:"stops"`
	Carriers  []string `json:"carriers"`
}

type Price struct {
	Total    float64 `json:"total"`
	Currency string  `json:"currency"`
	Base     float64 `json:"base,omitempty"`
	PerNight float64 `json:"per_night,omitempty"`
}

type FlightOffer struct {
	Price          Price      `json:"price"`
	Outbound       *Itinerary `json:"outbound"`
	Return         *Itinerary `json:"return"`
	BookingLink    string     `json:"booking_link,omitempty"`
	SeatsAvailable int        `json:"seats_available,omitempty"`
}

// FlightResult is the outcome of one flight search as reported to callers.
type FlightResult struct {
	Success       bool          `json:"success"`
	Error         string        `json:"error,omitempty"`
	Source        string        `json:"source,omitempty"`
	Origin        string        `json:"origin"`
	Destination   string        `json:"destination"`
	DepartureDate string        `json:"departure_date"`
	ReturnDate    string        `json:"return_date,omitempty"`
	Offers        []FlightOffer `json:"offers"`
}

type HotelQuery struct {
	Latitude    float64
	Longitude   float64
	CheckIn     string
	CheckOut    string
	Adults      int
	MinRating   int
	RadiusMiles int
	// Area names the neighbourhood searched; only used to label estimates.
	Area string
}

type Address struct {
	Lines      []string `json:"lines,omitempty"`
	CityName   string   `json:"city_name,omitempty"`
	PostalCode string   `json:"postal_code,omitempty"`
}

type Room struct {
	Type        string `json:"type"`
	Beds        int    `json:"beds,omitempty"`
	BedType     string `json:"bed_type,omitempty"`
	Description string `json:"description,omitempty"`
}

type HotelOffer struct {
	HotelID      string   `json:"hotel_id"`
	Name         string   `json:"name"`
	Rating       int      `json:"rating,omitempty"` // stars, 0 when unknown
	Address      Address  `json:"address"`
	Price        Price    `json:"price"`
	Room         Room     `json:"room"`
	Cancellation string   `json:"cancellation,omitempty"`
	Amenities    []string `json:"amenities,omitempty"`
}

// HotelResult is the outcome of one hotel search as reported to callers.
// Offers are sorted by total price, cheapest first.
type HotelResult struct {
	Success  bool         `json:"success"`
	Error    string       `json:"error,omitempty"`
	Source   string       `json:"source,omitempty"`
	CheckIn  string       `json:"check_in"`
	CheckOut string       `json:"check_out"`
	Offers   []HotelOffer `json:"offers"`
}
