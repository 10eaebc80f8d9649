package planner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tripplanner/catalog"
	"tripplanner/services"
)

func TestScheduleCoversEveryCity(t *testing.T) {
	cities := catalog.All()
	slots := Schedule(cities, 2027, time.January, testNow)
	require.Len(t, slots, len(cities))

	seen := map[string]bool{}
	prev := time.Time{}
	for _, s := range slots {
		assert.False(t, seen[s.City.Name], "%s scheduled twice", s.City.Name)
		seen[s.City.Name] = true
		assert.True(t, s.City.IsOptimal(s.Month), "%s in %s", s.City.Name, s.Month)

		at := time.Date(s.Year, s.Month, 1, 0, 0, 0, 0, time.UTC)
		assert.True(t, at.After(prev), "months must increase")
		prev = at
	}

	assert.Equal(t, "Miami, FL", slots[0].City.Name)
	assert.Equal(t, time.January, slots[0].Month)
	assert.Equal(t, "New Orleans, LA", slots[1].City.Name)
	assert.Equal(t, "Los Angeles, CA", slots[2].City.Name)
	assert.Equal(t, "San Diego, CA", slots[14].City.Name)
	assert.Equal(t, 2028, slots[14].Year)
	assert.Equal(t, time.October, slots[14].Month)
}

func TestScheduleSkipsPastMonths(t *testing.T) {
	// The whole of September 2026 is behind testNow; October still has the
	// 22nd and 29th.
	slots := Schedule(catalog.All(), 2026, time.September, testNow)
	require.Len(t, slots, 15)
	assert.Equal(t, time.October, slots[0].Month)
	assert.Equal(t, 2026, slots[0].Year)
	assert.Equal(t, "New York City, NY", slots[0].City.Name)
}

func TestScheduleClampsPastStart(t *testing.T) {
	for _, year := range []int{2000, 2010, 2011, 2025} {
		slots := Schedule(catalog.All(), year, time.January, testNow)
		require.Len(t, slots, 15, "start %d", year)
		assert.Equal(t, 2026, slots[0].Year, "start %d", year)
		assert.Equal(t, time.October, slots[0].Month, "start %d", year)
	}
}

func TestPlanAnnualTour(t *testing.T) {
	flights := new(MockFlights)
	hotels := new(MockHotels)
	flights.On("SearchFlights", mock.Anything, mock.Anything).Return([]services.FlightOffer{offer(199)}, nil)
	hotels.On("SearchHotelsByGeocode", mock.Anything, mock.Anything).Return([]services.HotelOffer{}, nil)

	tour, err := newTestPlanner(flights, hotels).PlanAnnualTour(context.Background(), 0, 0)
	require.NoError(t, err)

	assert.Equal(t, len(catalog.All()), tour.TotalCities)
	assert.Len(t, tour.Trips, tour.TotalCities)
	assert.Equal(t, "October 2026", tour.StartDate)

	first := tour.Trips[0]
	assert.Equal(t, "New York City, NY", first.City)
	assert.Equal(t, "2026-10-29", first.TravelDates.Departure)
	for _, trip := range tour.Trips {
		assert.True(t, trip.OK(), trip.City)
		assert.True(t, trip.Season.Optimal, trip.City)
	}
	flights.AssertNumberOfCalls(t, "SearchFlights", 15)
	hotels.AssertNumberOfCalls(t, "SearchHotelsByGeocode", 15)
}

func TestPlanAnnualTourInvalidMonth(t *testing.T) {
	_, err := newTestPlanner(new(MockFlights), new(MockHotels)).PlanAnnualTour(context.Background(), 2027, 13)
	assert.Error(t, err)
}

func TestPlanAnnualTourRejectsPastStart(t *testing.T) {
	flights := new(MockFlights)
	hotels := new(MockHotels)
	p := newTestPlanner(flights, hotels)

	for _, start := range []struct {
		year  int
		month time.Month
	}{{2000, time.January}, {2011, time.January}, {2026, time.September}} {
		tour, err := p.PlanAnnualTour(context.Background(), start.year, start.month)
		assert.ErrorIs(t, err, ErrStartInPast, "%d-%02d", start.year, start.month)
		assert.Empty(t, tour.Trips)
	}
	flights.AssertNotCalled(t, "SearchFlights", mock.Anything, mock.Anything)

	// The current month is still a valid start.
	flights.On("SearchFlights", mock.Anything, mock.Anything).Return([]services.FlightOffer{offer(199)}, nil)
	hotels.On("SearchHotelsByGeocode", mock.Anything, mock.Anything).Return([]services.HotelOffer{}, nil)
	tour, err := p.PlanAnnualTour(context.Background(), 2026, time.October)
	require.NoError(t, err)
	assert.Len(t, tour.Trips, len(catalog.All()))
}

func TestPlanAnnualTourCancelled(t *testing.T) {
	flights := new(MockFlights)
	hotels := new(MockHotels)
	flights.On("SearchFlights", mock.Anything, mock.Anything).Return(nil, context.Canceled)
	hotels.On("SearchHotelsByGeocode", mock.Anything, mock.Anything).Return(nil, context.Canceled)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tour, err := newTestPlanner(flights, hotels).PlanAnnualTour(ctx, 2027, time.January)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, tour.Trips)
}
