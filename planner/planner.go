// Package planner turns catalog cities and candidate weekends into trip
// plans backed by flight and hotel searches.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"tripplanner/catalog"
	"tripplanner/dates"
	"tripplanner/metrics"
	"tripplanner/services"
)

// Search parameters applied to every trip.
const (
	Adults         = 1
	MinHotelRating = 4
	HotelRadius    = 2 // miles
	DurationLabel  = "3 nights, 4 days (Thu-Sun)"
)

// ErrCityNotFound is returned when a city is neither in the catalog nor
// resolvable dynamically.
var ErrCityNotFound = errors.New("city not found")

type FlightSearcher interface {
	SearchFlights(ctx context.Context, q services.FlightQuery) ([]services.FlightOffer, error)
	Source() string
}

type HotelSearcher interface {
	SearchHotelsByGeocode(ctx context.Context, q services.HotelQuery) ([]services.HotelOffer, error)
	Source() string
}

// CityHotelSearcher is implemented by hotel sources that can also search
// around a city's airport code.
type CityHotelSearcher interface {
	SearchHotelsByCity(ctx context.Context, cityCode string, q services.HotelQuery) ([]services.HotelOffer, error)
}

// CityResolver finds cities outside the static catalog.
type CityResolver interface {
	Resolve(ctx context.Context, name string) (catalog.City, error)
}

type TravelDates struct {
	Departure string `json:"departure"`
	Return    string `json:"return"`
	Duration  string `json:"duration"`
}

type SeasonInfo struct {
	Month   string `json:"month"`
	Optimal bool   `json:"optimal"`
	Avoid   bool   `json:"avoid"`
	Reason  string `json:"reason"`
}

// Trip is one planned weekend. When planning fails only City and Error are set.
type Trip struct {
	City        string                 `json:"city"`
	Error       string                 `json:"error,omitempty"`
	Origin      string                 `json:"origin,omitempty"`
	TravelDates *TravelDates           `json:"travel_dates,omitempty"`
	Season      *SeasonInfo            `json:"season_info,omitempty"`
	Attractions []string               `json:"attractions,omitempty"`
	CentralArea string                 `json:"central_area,omitempty"`
	Flights     *services.FlightResult `json:"flights,omitempty"`
	Hotels      *services.HotelResult  `json:"hotels,omitempty"`
}

// OK reports whether the trip was planned.
func (t Trip) OK() bool { return t.Error == "" }

// Estimated reports whether any search behind the trip used estimates.
func (t Trip) Estimated() bool {
	return (t.Flights != nil && t.Flights.Source == services.SourceEstimated) ||
		(t.Hotels != nil && t.Hotels.Source == services.SourceEstimated)
}

// TripRequest selects what to plan. Thursday, when set, overrides the month.
type TripRequest struct {
	City     string
	Year     int
	Month    time.Month
	Thursday time.Time
	// Origin overrides the planner's home airport.
	Origin string
}

type Planner struct {
	home     string
	flights  FlightSearcher
	hotels   HotelSearcher
	resolver CityResolver
	now      func() time.Time
	logger   *slog.Logger
}

type Option func(*Planner)

// WithResolver lets the planner plan cities outside the catalog.
func WithResolver(r CityResolver) Option { return func(p *Planner) { p.resolver = r } }

// WithClock replaces time.Now, which decides which Thursdays are in the past.
func WithClock(now func() time.Time) Option { return func(p *Planner) { p.now = now } }

func WithLogger(l *slog.Logger) Option { return func(p *Planner) { p.logger = l } }

func New(homeAirport string, flights FlightSearcher, hotels HotelSearcher, opts ...Option) *Planner {
	p := &Planner{
		home:    strings.ToUpper(strings.TrimSpace(homeAirport)),
		flights: flights,
		hotels:  hotels,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// HomeAirport is the default origin of every trip.
func (p *Planner) HomeAirport() string { return p.home }

// Now is the planner's clock.
func (p *Planner) Now() time.Time { return p.now() }

// City looks a city up in the catalog, then through the resolver.
func (p *Planner) City(ctx context.Context, name string) (catalog.City, error) {
	if c, ok := catalog.Lookup(name); ok {
		return c, nil
	}
	if p.resolver == nil {
		return catalog.City{}, fmt.Errorf("%q: %w", name, ErrCityNotFound)
	}
	c, err := p.resolver.Resolve(ctx, name)
	if err != nil {
		return catalog.City{}, fmt.Errorf("%q: %w: %v", name, ErrCityNotFound, err)
	}
	return c, nil
}

// PlanTrip plans one weekend. Planning problems are reported in the Trip's
// Error and its flight and hotel results; the returned error is only set
// when ctx ends.
func (p *Planner) PlanTrip(ctx context.Context, req TripRequest) (Trip, error) {
	city, err := p.City(ctx, req.City)
	if err != nil {
		p.logger.Warn("City lookup failed", slog.String("city", req.City), slog.Any("error", err))
		metrics.TripPlanned(false)
		return Trip{City: req.City, Error: fmt.Sprintf("City %s not found", req.City)}, ctx.Err()
	}
	return p.planCity(ctx, city, req)
}

func (p *Planner) planCity(ctx context.Context, city catalog.City, req TripRequest) (Trip, error) {
	var (
		weekend dates.Weekend
		ok      bool
	)
	if !req.Thursday.IsZero() {
		w, err := dates.Starting(req.Thursday)
		if err != nil {
			metrics.TripPlanned(false)
			return Trip{City: city.Name, Error: err.Error()}, nil
		}
		weekend, ok = w, true
		req.Year, req.Month = w.Depart.Year(), w.Depart.Month()
	} else {
		weekend, ok = dates.Best(req.Year, req.Month, p.now())
	}
	if !ok {
		metrics.TripPlanned(false)
		return Trip{City: city.Name, Error: "No suitable Thursday found in this month"}, nil
	}

	origin := p.home
	if req.Origin != "" {
		origin = strings.ToUpper(strings.TrimSpace(req.Origin))
	}

	trip := Trip{
		City:   city.Name,
		Origin: origin,
		TravelDates: &TravelDates{
			Departure: weekend.DepartDate(),
			Return:    weekend.ReturnDate(),
			Duration:  DurationLabel,
		},
		Season: &SeasonInfo{
			Month:   req.Month.String(),
			Optimal: city.IsOptimal(req.Month),
			Avoid:   city.IsAvoided(req.Month),
			Reason:  catalog.SeasonReason(city, req.Month),
		},
		Attractions: city.Attractions,
		CentralArea: city.CentralArea,
	}

	var g errgroup.Group
	g.Go(func() error {
		p.logger.Info("Searching flights", slog.String("from", origin), slog.String("to", city.AirportCode), slog.String("dates", weekend.String()))
		trip.Flights = p.searchFlights(ctx, origin, city.AirportCode, weekend)
		return ctx.Err()
	})
	g.Go(func() error {
		p.logger.Info("Searching hotels", slog.String("area", city.CentralArea), slog.Int("min_rating", MinHotelRating))
		trip.Hotels = p.searchHotels(ctx, city, weekend)
		return ctx.Err()
	})
	if err := g.Wait(); err != nil {
		return trip, err
	}

	metrics.TripPlanned(trip.Flights.Success && trip.Hotels.Success)
	return trip, nil
}

func (p *Planner) searchFlights(ctx context.Context, origin, destination string, w dates.Weekend) *services.FlightResult {
	res := &services.FlightResult{
		Source:        p.flights.Source(),
		Origin:        origin,
		Destination:   destination,
		DepartureDate: w.DepartDate(),
		ReturnDate:    w.ReturnDate(),
		Offers:        []services.FlightOffer{},
	}
	if origin == "" {
		res.Error = "No home airport set"
		return res
	}

	offers, err := p.flights.SearchFlights(ctx, services.FlightQuery{
		Origin:        origin,
		Destination:   destination,
		DepartureDate: w.DepartDate(),
		ReturnDate:    w.ReturnDate(),
		Adults:        Adults,
	})
	if err != nil {
		p.logger.Warn("Flight search failed", slog.String("to", destination), slog.Any("error", err))
		res.Error = fmt.Sprintf("Error searching flights: %v", err)
		return res
	}
	res.Success = true
	res.Offers = offers
	return res
}

func (p *Planner) searchHotels(ctx context.Context, city catalog.City, w dates.Weekend) *services.HotelResult {
	res := &services.HotelResult{
		Source:   p.hotels.Source(),
		CheckIn:  w.DepartDate(),
		CheckOut: w.ReturnDate(),
		Offers:   []services.HotelOffer{},
	}

	q := services.HotelQuery{
		Latitude:    city.Lat,
		Longitude:   city.Lon,
		CheckIn:     w.DepartDate(),
		CheckOut:    w.ReturnDate(),
		Adults:      Adults,
		MinRating:   MinHotelRating,
		RadiusMiles: HotelRadius,
		Area:        city.CentralArea,
	}
	offers, err := p.hotels.SearchHotelsByGeocode(ctx, q)
	if bc, ok := p.hotels.(CityHotelSearcher); ok && err != nil && ctx.Err() == nil {
		p.logger.Info("No hotels near the center, widening to the city",
			slog.String("city", city.Name), slog.Any("error", err))
		if wider, cerr := bc.SearchHotelsByCity(ctx, city.AirportCode, q); cerr == nil {
			offers, err = wider, nil
		}
	}
	if err != nil {
		p.logger.Warn("Hotel search failed", slog.String("city", city.Name), slog.Any("error", err))
		res.Error = fmt.Sprintf("Error searching hotels: %v", err)
		return res
	}
	res.Success = true
	res.Offers = offers
	return res
}

// NextOptimalTrip plans the city's first best month after the current one.
func (p *Planner) NextOptimalTrip(ctx context.Context, name, origin string) (Trip, error) {
	city, err := p.City(ctx, name)
	if err != nil {
		metrics.TripPlanned(false)
		return Trip{City: name, Error: fmt.Sprintf("City %s not found", name)}, ctx.Err()
	}
	year, month, ok := dates.NextOptimal(city.BestMonths, p.now())
	if !ok {
		metrics.TripPlanned(false)
		return Trip{City: city.Name, Error: "City has no recommended months"}, nil
	}
	return p.planCity(ctx, city, TripRequest{City: city.Name, Year: year, Month: month, Origin: origin})
}

// CheapestWeekend searches every upcoming weekend of the month and returns
// the one with the cheapest round-trip flight.
func (p *Planner) CheapestWeekend(ctx context.Context, name string, year int, month time.Month) (dates.Weekend, services.FlightOffer, error) {
	city, err := p.City(ctx, name)
	if err != nil {
		return dates.Weekend{}, services.FlightOffer{}, err
	}

	var (
		best      dates.Weekend
		bestOffer services.FlightOffer
		found     bool
	)
	for _, w := range dates.Upcoming(year, month, p.now()) {
		res := p.searchFlights(ctx, p.home, city.AirportCode, w)
		if err := ctx.Err(); err != nil {
			return dates.Weekend{}, services.FlightOffer{}, err
		}
		if !res.Success {
			continue
		}
		for _, o := range res.Offers {
			if o.Price.Total <= 0 {
				continue
			}
			if !found || o.Price.Total < bestOffer.Price.Total {
				best, bestOffer, found = w, o, true
			}
		}
	}
	if !found {
		return dates.Weekend{}, services.FlightOffer{}, fmt.Errorf("no flights found to %s in %s", city.Name, dates.MonthLabel(year, month))
	}
	return best, bestOffer, nil
}
