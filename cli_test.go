package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripplanner/catalog"
	"tripplanner/config"
	"tripplanner/planner"
	"tripplanner/report"
	"tripplanner/services"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    options
		wantErr string
	}{
		{
			name: "tour by default",
			args: nil,
			want: options{},
		},
		{
			name: "multi-word city",
			args: []string{"New", "York,", "NY", "--airport", "sfo"},
			want: options{City: "New York, NY", Airport: "SFO"},
		},
		{
			name: "tour start month",
			args: []string{"--year", "2027", "--month", "3", "--csv"},
			want: options{Year: 2027, Month: 3, CSV: true},
		},
		{
			name: "depart with pdf",
			args: []string{"Boston, MA", "--depart", "2027-05-13", "--pdf", "boston.pdf", "--traveler", "Sam"},
			want: options{City: "Boston, MA", Depart: "2027-05-13", PDF: "boston.pdf", Traveler: "Sam"},
		},
		{
			name: "tour pdf",
			args: []string{"--pdf", "tour.pdf", "--year", "2027"},
			want: options{PDF: "tour.pdf", Year: 2027},
		},
		{
			name: "year with depart",
			args: []string{"Boston, MA", "--year", "2027", "--depart", "2027-05-13"},
			want: options{City: "Boston, MA", Year: 2027, Depart: "2027-05-13"},
		},
		{
			name: "short airport flag",
			args: []string{"-a", "jfk", "--all"},
			want: options{Airport: "JFK", All: true},
		},
		{name: "bad airport", args: []string{"--airport", "LAXX"}, wantErr: "3-letter"},
		{name: "bad month", args: []string{"--month", "13"}, wantErr: "from 1 to 12"},
		{name: "bad depart", args: []string{"Boston, MA", "--depart", "13/05/2027"}, wantErr: "YYYY-MM-DD"},
		{name: "depart without city", args: []string{"--depart", "2027-05-13"}, wantErr: "needs a city"},
		{name: "cheapest without city", args: []string{"--cheapest"}, wantErr: "needs a city"},
		{name: "year without month for a city", args: []string{"Boston, MA", "--year", "2027"}, wantErr: "--year needs --month"},
		{name: "csv for a city", args: []string{"Denver, CO", "--csv"}, wantErr: "only available for tours"},
		{name: "json and csv", args: []string{"--json", "--csv"}, wantErr: "mutually exclusive"},
		{name: "unknown flag", args: []string{"--nope"}, wantErr: "unknown flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseArgs(tt.args, io.Discard)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseArgsHelp(t *testing.T) {
	var buf bytes.Buffer
	_, err := parseArgs([]string{"--help"}, &buf)
	assert.True(t, errors.Is(err, pflag.ErrHelp))
	assert.Contains(t, buf.String(), "Usage: tripplanner")
	assert.Contains(t, buf.String(), "--cheapest")
}

func TestStartMonth(t *testing.T) {
	now := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		opts      options
		wantYear  int
		wantMonth time.Month
	}{
		{options{}, 0, 0},
		{options{Year: 2027}, 2027, time.January},
		{options{Month: 4}, 2026, time.April},
		{options{Year: 2028, Month: 9}, 2028, time.September},
	}
	for _, tt := range tests {
		y, m := tt.opts.startMonth(now)
		assert.Equal(t, tt.wantYear, y, "%+v", tt.opts)
		assert.Equal(t, tt.wantMonth, m, "%+v", tt.opts)
	}
}

var cliNow = time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)

// newTestApp wires an app around the estimator so runs need no network.
func newTestApp(t *testing.T, opts options) (*app, *bytes.Buffer) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	est := services.NewEstimator()
	p := planner.New("LAX", est, est,
		planner.WithClock(func() time.Time { return cliNow }),
		planner.WithLogger(logger))

	var out bytes.Buffer
	return &app{opts: opts, out: &out, logger: logger, planner: p}, &out
}

func TestRunPlansTourWithoutCity(t *testing.T) {
	a, out := newTestApp(t, options{})
	require.NoError(t, a.run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Planning annual tour")
	assert.Contains(t, text, "Total cities planned: 15")
	assert.Contains(t, text, "Starting: October 2026")
	assert.Equal(t, tourPreview, strings.Count(text, "TRIP TO"))
	assert.Contains(t, text, "and 12 more")

	a, out = newTestApp(t, options{All: true})
	require.NoError(t, a.run(context.Background()))
	assert.Equal(t, len(catalog.All()), strings.Count(out.String(), "TRIP TO"))
}

func TestRunTourJSON(t *testing.T) {
	a, out := newTestApp(t, options{JSON: true, Year: 2027})
	require.NoError(t, a.run(context.Background()))

	var tour planner.Tour
	require.NoError(t, json.Unmarshal(out.Bytes(), &tour), out.String())
	assert.Len(t, tour.Trips, len(catalog.All()))
	assert.Equal(t, "January 2027", tour.StartDate)
	assert.Equal(t, "Miami, FL", tour.Trips[0].City)
}

func TestRunTourCSVAndPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tour.pdf")
	a, out := newTestApp(t, options{CSV: true, PDF: path})
	require.NoError(t, a.run(context.Background()))

	var rows []report.TourRow
	require.NoError(t, csvutil.Unmarshal(out.Bytes(), &rows))
	assert.Len(t, rows, len(catalog.All()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestRunTourInPast(t *testing.T) {
	a, out := newTestApp(t, options{Year: 2000, JSON: true})
	err := a.run(context.Background())
	assert.ErrorIs(t, err, planner.ErrStartInPast)
	assert.Empty(t, out.String())
}

func TestRunPlansSingleCity(t *testing.T) {
	a, out := newTestApp(t, options{City: "Boston, MA", Year: 2027, Month: 5})
	require.NoError(t, a.run(context.Background()))

	text := out.String()
	assert.Equal(t, 1, strings.Count(text, "TRIP TO"))
	assert.Contains(t, text, "TRIP TO BOSTON, MA")
	assert.Contains(t, text, "Dates: 2027-05-13 to 2027-05-16")
	assert.Contains(t, text, "Prices are estimates")
	assert.NotContains(t, text, "Total cities planned")
}

func TestRunCityJSONWithPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "denver.pdf")
	a, out := newTestApp(t, options{City: "Denver, CO", Depart: "2027-06-10", JSON: true, PDF: path, Traveler: "Sam"})
	require.NoError(t, a.run(context.Background()))

	var trip planner.Trip
	require.NoError(t, json.Unmarshal(out.Bytes(), &trip), out.String())
	assert.Equal(t, "Denver, CO", trip.City)
	assert.Equal(t, "2027-06-10", trip.TravelDates.Departure)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestRunCheapestWeekend(t *testing.T) {
	a, out := newTestApp(t, options{City: "Seattle, WA", Year: 2027, Month: 7, Cheapest: true})
	require.NoError(t, a.run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Cheapest weekend in July 2027")
	assert.Contains(t, text, "TRIP TO SEATTLE, WA")
}

func TestRunUnknownCityListsCatalog(t *testing.T) {
	a, out := newTestApp(t, options{City: "Atlantis"})
	require.NoError(t, a.run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Error: City Atlantis not found")
	assert.Contains(t, text, "Available cities: ")
	assert.Contains(t, text, "Boston, MA")
}

func TestNewAppSaveNeedsDatabase(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := newApp(context.Background(), config.Config{}, options{Airport: "LAX", Save: true}, io.Discard, logger)
	assert.ErrorContains(t, err, "--save needs DATABASE_URL")
}
