package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tripplanner/catalog"
	"tripplanner/dates"
)

// ErrStartInPast is returned for a tour that would start before the current
// month.
var ErrStartInPast = errors.New("tour cannot start before the current month")

// Tour is one trip per catalog city, one city per month.
type Tour struct {
	TotalCities int    `json:"total_cities"`
	StartDate   string `json:"start_date"`
	Trips       []Trip `json:"trips"`
}

// Slot pairs a city with the month it is visited in.
type Slot struct {
	City  catalog.City
	Year  int
	Month time.Month
}

// Schedule assigns every catalog city a month starting at the given one.
// Each month takes the first unvisited city, in catalog order, that is in
// season then and still has an upcoming Thursday. Months where no city fits
// are skipped, so the schedule may run past twelve months. A start before
// now's month begins at now's month.
func Schedule(cities []catalog.City, startYear int, startMonth time.Month, now time.Time) []Slot {
	visited := make([]bool, len(cities))
	slots := make([]Slot, 0, len(cities))

	cursor := time.Date(startYear, startMonth, 1, 0, 0, 0, 0, time.UTC)
	if current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC); cursor.Before(current) {
		cursor = current
	}
	// Every city has a best month, so each city is placed within a year of
	// the previous one.
	limit := 12 * (len(cities) + 1)
	for i := 0; i < limit && len(slots) < len(cities); i++ {
		year, month := cursor.Year(), cursor.Month()
		cursor = cursor.AddDate(0, 1, 0)

		if _, ok := dates.Best(year, month, now); !ok {
			continue
		}
		for j, c := range cities {
			if visited[j] || !c.IsOptimal(month) {
				continue
			}
			visited[j] = true
			slots = append(slots, Slot{City: c, Year: year, Month: month})
			break
		}
	}
	return slots
}

// PlanAnnualTour plans one weekend in every catalog city. A zero year starts
// at the current month; a start before the current month is rejected with
// ErrStartInPast.
func (p *Planner) PlanAnnualTour(ctx context.Context, startYear int, startMonth time.Month) (Tour, error) {
	now := p.now()
	if startYear == 0 {
		startYear, startMonth = now.Year(), now.Month()
	}
	if startMonth < time.January || startMonth > time.December {
		return Tour{}, fmt.Errorf("invalid start month %d", startMonth)
	}
	if startYear < now.Year() || (startYear == now.Year() && startMonth < now.Month()) {
		return Tour{}, fmt.Errorf("%s: %w", dates.MonthLabel(startYear, startMonth), ErrStartInPast)
	}

	cities := catalog.All()
	slots := Schedule(cities, startYear, startMonth, now)
	if len(slots) < len(cities) {
		p.logger.Warn("Some cities could not be scheduled", slog.Int("scheduled", len(slots)), slog.Int("cities", len(cities)))
	}

	tour := Tour{
		TotalCities: len(slots),
		StartDate:   dates.MonthLabel(startYear, startMonth),
		Trips:       make([]Trip, 0, len(slots)),
	}
	for i, s := range slots {
		p.logger.Info("Planning tour stop",
			slog.Int("stop", i+1),
			slog.Int("of", len(slots)),
			slog.String("city", s.City.Name),
			slog.String("month", dates.MonthLabel(s.Year, s.Month)),
		)
		trip, err := p.planCity(ctx, s.City, TripRequest{City: s.City.Name, Year: s.Year, Month: s.Month})
		if err != nil {
			return tour, err
		}
		tour.Trips = append(tour.Trips, trip)
	}
	return tour, nil
}
