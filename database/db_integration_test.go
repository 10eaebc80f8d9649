//go:build integration

package database

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripplanner/catalog"
	"tripplanner/planner"
	"tripplanner/services"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	_ = godotenv.Load("../.env.test")

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	s, err := Open(context.Background(), dsn, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTrip(city string) planner.Trip {
	return planner.Trip{
		City:   city,
		Origin: "LAX",
		TravelDates: &planner.TravelDates{
			Departure: "2027-05-13",
			Return:    "2027-05-16",
			Duration:  planner.DurationLabel,
		},
		Flights: &services.FlightResult{Success: true, Source: services.SourceLive, Offers: []services.FlightOffer{}},
		Hotels:  &services.HotelResult{Success: true, Source: services.SourceLive, Offers: []services.HotelOffer{}},
	}
}

func TestTripRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.SaveTrip(ctx, sampleTrip("Boston, MA"))
	require.NoError(t, err)

	rec, err := s.GetTrip(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Boston, MA", rec.City)
	assert.Equal(t, "2027-05-13", rec.DepartureDate)
	assert.Equal(t, "Boston, MA", rec.Trip.City)
	assert.Empty(t, rec.PDFData)

	require.NoError(t, s.UpdateTripPDF(ctx, id, []byte("%PDF-1.3"), "Sam"))
	rec, err = s.GetTrip(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Sam", rec.TravelerName)
	assert.Equal(t, []byte("%PDF-1.3"), rec.PDFData)

	_, err = s.GetTrip(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.ErrorIs(t, s.UpdateTripPDF(ctx, "missing", nil, ""), ErrNotFound)
}

func TestSaveTour(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tour := planner.Tour{
		TotalCities: 2,
		StartDate:   "May 2027",
		Trips:       []planner.Trip{sampleTrip("Boston, MA"), sampleTrip("Chicago, IL")},
	}
	tourID, ids, err := s.SaveTour(ctx, tour)
	require.NoError(t, err)
	require.Len(t, ids, 2)

	rec, err := s.GetTrip(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, tourID, rec.TourID)
	assert.Equal(t, "Chicago, IL", rec.City)
}

func TestCityCache(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.GetCity(ctx, "no such city")
	assert.ErrorIs(t, err, planner.ErrCityNotCached)

	phoenix := catalog.BuildCity("Phoenix", "AZ", 33.4484, -112.0740)
	require.NoError(t, s.PutCity(ctx, "phoenix, az", phoenix))
	require.NoError(t, s.PutCity(ctx, "phoenix, az", phoenix))

	got, err := s.GetCity(ctx, "phoenix, az")
	require.NoError(t, err)
	assert.Equal(t, phoenix, got)
}
