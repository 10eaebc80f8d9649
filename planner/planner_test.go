package planner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tripplanner/catalog"
	"tripplanner/services"
)

// MockFlights is a mock implementation of FlightSearcher
type MockFlights struct {
	mock.Mock
}

func (m *MockFlights) SearchFlights(ctx context.Context, q services.FlightQuery) ([]services.FlightOffer, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.FlightOffer), args.Error(1)
}

func (m *MockFlights) Source() string { return services.SourceLive }

// MockHotels is a mock implementation of HotelSearcher
type MockHotels struct {
	mock.Mock
}

func (m *MockHotels) SearchHotelsByGeocode(ctx context.Context, q services.HotelQuery) ([]services.HotelOffer, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.HotelOffer), args.Error(1)
}

func (m *MockHotels) Source() string { return services.SourceLive }

// MockCityHotels also answers by-city searches, like the Amadeus client.
type MockCityHotels struct {
	MockHotels
}

func (m *MockCityHotels) SearchHotelsByCity(ctx context.Context, cityCode string, q services.HotelQuery) ([]services.HotelOffer, error) {
	args := m.Called(ctx, cityCode, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.HotelOffer), args.Error(1)
}

var testNow = time.Date(2026, time.October, 19, 9, 30, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPlanner(flights FlightSearcher, hotels HotelSearcher, opts ...Option) *Planner {
	opts = append([]Option{WithClock(func() time.Time { return testNow }), WithLogger(quietLogger())}, opts...)
	return New("lax", flights, hotels, opts...)
}

func offer(total float64) services.FlightOffer {
	return services.FlightOffer{Price: services.Price{Total: total, Currency: "USD"}}
}

func TestPlanTrip(t *testing.T) {
	flights := new(MockFlights)
	hotels := new(MockHotels)

	flights.On("SearchFlights", mock.Anything, services.FlightQuery{
		Origin: "LAX", Destination: "BOS", DepartureDate: "2027-05-13", ReturnDate: "2027-05-16", Adults: 1,
	}).Return([]services.FlightOffer{offer(320)}, nil).Once()

	hotels.On("SearchHotelsByGeocode", mock.Anything, mock.MatchedBy(func(q services.HotelQuery) bool {
		return q.CheckIn == "2027-05-13" && q.CheckOut == "2027-05-16" &&
			q.MinRating == MinHotelRating && q.RadiusMiles == HotelRadius && q.Area == "Back Bay"
	})).Return([]services.HotelOffer{{Name: "The Lenox", Rating: 4}}, nil).Once()

	p := newTestPlanner(flights, hotels)
	assert.Equal(t, "LAX", p.HomeAirport())

	trip, err := p.PlanTrip(context.Background(), TripRequest{City: "boston, ma", Year: 2027, Month: time.May})
	require.NoError(t, err)

	assert.True(t, trip.OK())
	assert.Equal(t, "Boston, MA", trip.City)
	assert.Equal(t, "LAX", trip.Origin)
	require.NotNil(t, trip.TravelDates)
	assert.Equal(t, "2027-05-13", trip.TravelDates.Departure)
	assert.Equal(t, "2027-05-16", trip.TravelDates.Return)
	assert.Equal(t, DurationLabel, trip.TravelDates.Duration)

	require.NotNil(t, trip.Season)
	assert.Equal(t, "May", trip.Season.Month)
	assert.True(t, trip.Season.Optimal)
	assert.False(t, trip.Season.Avoid)
	assert.Equal(t, "Ideal weather and events", trip.Season.Reason)
	assert.Equal(t, "Back Bay", trip.CentralArea)
	assert.NotEmpty(t, trip.Attractions)

	require.NotNil(t, trip.Flights)
	assert.True(t, trip.Flights.Success)
	assert.Len(t, trip.Flights.Offers, 1)
	require.NotNil(t, trip.Hotels)
	assert.True(t, trip.Hotels.Success)
	assert.Equal(t, "2027-05-13", trip.Hotels.CheckIn)
	assert.False(t, trip.Estimated())

	flights.AssertExpectations(t)
	hotels.AssertExpectations(t)
}

func TestPlanTripSearchFailuresAreRecorded(t *testing.T) {
	flights := new(MockFlights)
	hotels := new(MockHotels)
	flights.On("SearchFlights", mock.Anything, mock.Anything).Return(nil, errors.New("amadeus api error (status 500)"))
	hotels.On("SearchHotelsByGeocode", mock.Anything, mock.Anything).Return(nil, services.ErrNoHotels)

	trip, err := newTestPlanner(flights, hotels).PlanTrip(context.Background(), TripRequest{City: "Miami, FL", Year: 2027, Month: time.January})
	require.NoError(t, err)

	assert.True(t, trip.OK())
	assert.False(t, trip.Flights.Success)
	assert.Contains(t, trip.Flights.Error, "status 500")
	assert.NotNil(t, trip.Flights.Offers)
	assert.False(t, trip.Hotels.Success)
	assert.Contains(t, trip.Hotels.Error, "no hotels")
}

func TestPlanTripWidensHotelSearchToCity(t *testing.T) {
	flights := new(MockFlights)
	hotels := new(MockCityHotels)
	flights.On("SearchFlights", mock.Anything, mock.Anything).Return([]services.FlightOffer{offer(210)}, nil)
	hotels.On("SearchHotelsByGeocode", mock.Anything, mock.Anything).Return(nil, services.ErrNoHotels).Once()
	hotels.On("SearchHotelsByCity", mock.Anything, "MIA", mock.MatchedBy(func(q services.HotelQuery) bool {
		return q.CheckIn == "2027-01-14" && q.MinRating == MinHotelRating
	})).Return([]services.HotelOffer{{Name: "Kimpton Surfcomber", Rating: 4}}, nil).Once()

	trip, err := newTestPlanner(flights, hotels).PlanTrip(context.Background(), TripRequest{City: "Miami, FL", Year: 2027, Month: time.January})
	require.NoError(t, err)

	require.True(t, trip.Hotels.Success)
	assert.Equal(t, "Kimpton Surfcomber", trip.Hotels.Offers[0].Name)
	hotels.AssertExpectations(t)
}

func TestPlanTripOnThursday(t *testing.T) {
	flights := new(MockFlights)
	hotels := new(MockHotels)
	flights.On("SearchFlights", mock.Anything, mock.MatchedBy(func(q services.FlightQuery) bool {
		return q.Origin == "SFO" && q.DepartureDate == "2026-12-31" && q.ReturnDate == "2027-01-03"
	})).Return([]services.FlightOffer{}, nil)
	hotels.On("SearchHotelsByGeocode", mock.Anything, mock.Anything).Return([]services.HotelOffer{}, nil)

	p := newTestPlanner(flights, hotels)
	trip, err := p.PlanTrip(context.Background(), TripRequest{
		City:     "Miami, FL",
		Thursday: time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
		Origin:   "sfo",
	})
	require.NoError(t, err)
	assert.Equal(t, "2027-01-03", trip.TravelDates.Return)
	assert.Equal(t, "December", trip.Season.Month)
	assert.True(t, trip.Season.Optimal)
	flights.AssertExpectations(t)

	trip, err = p.PlanTrip(context.Background(), TripRequest{
		City:     "Miami, FL",
		Thursday: time.Date(2026, time.December, 30, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.False(t, trip.OK())
	assert.Nil(t, trip.Flights)
}

func TestPlanTripErrors(t *testing.T) {
	p := newTestPlanner(new(MockFlights), new(MockHotels))

	trip, err := p.PlanTrip(context.Background(), TripRequest{City: "Atlantis", Year: 2027, Month: time.May})
	require.NoError(t, err)
	assert.False(t, trip.OK())
	assert.Equal(t, "City Atlantis not found", trip.Error)
	assert.Nil(t, trip.TravelDates)

	// September 2026 is already over.
	trip, err = p.PlanTrip(context.Background(), TripRequest{City: "Boston, MA", Year: 2026, Month: time.September})
	require.NoError(t, err)
	assert.Equal(t, "No suitable Thursday found in this month", trip.Error)
}

func TestPlanTripWithoutHomeAirport(t *testing.T) {
	hotels := new(MockHotels)
	hotels.On("SearchHotelsByGeocode", mock.Anything, mock.Anything).Return([]services.HotelOffer{}, nil)

	p := New("", new(MockFlights), hotels, WithClock(func() time.Time { return testNow }), WithLogger(quietLogger()))
	trip, err := p.PlanTrip(context.Background(), TripRequest{City: "Denver, CO", Year: 2027, Month: time.June})
	require.NoError(t, err)
	assert.False(t, trip.Flights.Success)
	assert.Equal(t, "No home airport set", trip.Flights.Error)
	assert.True(t, trip.Hotels.Success)
}

func TestPlanTripCancelled(t *testing.T) {
	flights := new(MockFlights)
	hotels := new(MockHotels)
	flights.On("SearchFlights", mock.Anything, mock.Anything).Return(nil, context.Canceled)
	hotels.On("SearchHotelsByGeocode", mock.Anything, mock.Anything).Return(nil, context.Canceled)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestPlanner(flights, hotels).PlanTrip(ctx, TripRequest{City: "Austin, TX", Year: 2027, Month: time.March})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNextOptimalTrip(t *testing.T) {
	flights := new(MockFlights)
	hotels := new(MockHotels)
	flights.On("SearchFlights", mock.Anything, mock.Anything).Return([]services.FlightOffer{}, nil)
	hotels.On("SearchHotelsByGeocode", mock.Anything, mock.Anything).Return([]services.HotelOffer{}, nil)

	trip, err := newTestPlanner(flights, hotels).NextOptimalTrip(context.Background(), "Boston, MA", "")
	require.NoError(t, err)
	assert.Equal(t, "May", trip.Season.Month)
	assert.Equal(t, "2027-05-13", trip.TravelDates.Departure)
}

// flightsByDate prices each departure date from a table.
type flightsByDate map[string]float64

func (f flightsByDate) SearchFlights(_ context.Context, q services.FlightQuery) ([]services.FlightOffer, error) {
	total, ok := f[q.DepartureDate]
	if !ok {
		return nil, errors.New("no availability")
	}
	return []services.FlightOffer{offer(total + 50), offer(total)}, nil
}

func (f flightsByDate) Source() string { return services.SourceLive }

func TestCheapestWeekend(t *testing.T) {
	flights := flightsByDate{
		"2027-07-01": 410,
		"2027-07-08": 380,
		"2027-07-15": 295,
		"2027-07-29": 300,
	}
	p := newTestPlanner(flights, new(MockHotels))

	w, o, err := p.CheapestWeekend(context.Background(), "Seattle, WA", 2027, time.July)
	require.NoError(t, err)
	assert.Equal(t, "2027-07-15", w.DepartDate())
	assert.Equal(t, "2027-07-18", w.ReturnDate())
	assert.Equal(t, 295.0, o.Price.Total)

	_, _, err = p.CheapestWeekend(context.Background(), "Seattle, WA", 2027, time.August)
	assert.Error(t, err)

	_, _, err = p.CheapestWeekend(context.Background(), "Atlantis", 2027, time.July)
	assert.ErrorIs(t, err, ErrCityNotFound)
}

// stubResolver resolves a single dynamic city.
type stubResolver struct{}

func (stubResolver) Resolve(_ context.Context, name string) (catalog.City, error) {
	if name == "Memphis, TN" {
		return catalog.BuildCity("Memphis", "TN", 35.1495, -90.0490), nil
	}
	return catalog.City{}, services.ErrPlaceNotFound
}

func TestPlanTripWithResolver(t *testing.T) {
	memphis, _ := stubResolver{}.Resolve(context.Background(), "Memphis, TN")

	flights := new(MockFlights)
	hotels := new(MockHotels)
	flights.On("SearchFlights", mock.Anything, mock.MatchedBy(func(q services.FlightQuery) bool {
		return q.Destination == memphis.AirportCode
	})).Return([]services.FlightOffer{offer(250)}, nil)
	hotels.On("SearchHotelsByGeocode", mock.Anything, mock.MatchedBy(func(q services.HotelQuery) bool {
		return q.Area == "Downtown Memphis"
	})).Return([]services.HotelOffer{}, nil)

	p := newTestPlanner(flights, hotels, WithResolver(stubResolver{}))
	trip, err := p.PlanTrip(context.Background(), TripRequest{City: "Memphis, TN", Year: 2027, Month: time.April})
	require.NoError(t, err)
	assert.True(t, trip.OK())
	assert.Equal(t, "Memphis, TN", trip.City)
	assert.True(t, trip.Season.Optimal)

	_, err = p.City(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, ErrCityNotFound)
}
