// Package dates picks Thursday-to-Sunday weekends.
package dates

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the wire format for every date exchanged with the search APIs.
const Layout = "2006-01-02"

// Nights is the length of every weekend trip.
const Nights = 3

// ErrNotThursday is returned when a weekend is anchored on another weekday.
var ErrNotThursday = errors.New("departure must be a Thursday")

// Weekend is a Thursday departure and the Sunday return three days later.
type Weekend struct {
	Depart time.Time
	Return time.Time
}

// DepartDate returns the departure as YYYY-MM-DD.
func (w Weekend) DepartDate() string { return w.Depart.Format(Layout) }

// ReturnDate returns the return as YYYY-MM-DD.
func (w Weekend) ReturnDate() string { return w.Return.Format(Layout) }

func (w Weekend) String() string {
	return fmt.Sprintf("%s to %s", w.DepartDate(), w.ReturnDate())
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Starting builds the weekend that departs on thursday.
func Starting(thursday time.Time) (Weekend, error) {
	d := date(thursday.Year(), thursday.Month(), thursday.Day())
	if d.Weekday() != time.Thursday {
		return Weekend{}, fmt.Errorf("%s is a %s: %w", d.Format(Layout), d.Weekday(), ErrNotThursday)
	}
	return Weekend{Depart: d, Return: d.AddDate(0, 0, Nights)}, nil
}

// Thursdays returns every Thursday of the month in order.
func Thursdays(year int, month time.Month) []time.Time {
	first := date(year, month, 1)
	offset := (int(time.Thursday) - int(first.Weekday()) + 7) % 7

	var out []time.Time
	for d := first.AddDate(0, 0, offset); d.Month() == month; d = d.AddDate(0, 0, 7) {
		out = append(out, d)
	}
	return out
}

// Weekends returns every Thursday-to-Sunday span departing in the month. The
// last one may return in the following month or year.
func Weekends(year int, month time.Month) []Weekend {
	thursdays := Thursdays(year, month)
	out := make([]Weekend, 0, len(thursdays))
	for _, t := range thursdays {
		out = append(out, Weekend{Depart: t, Return: t.AddDate(0, 0, Nights)})
	}
	return out
}

// Upcoming returns the weekends of the month departing strictly after now's
// calendar date.
func Upcoming(year int, month time.Month, now time.Time) []Weekend {
	today := date(now.Year(), now.Month(), now.Day())
	var out []Weekend
	for _, w := range Weekends(year, month) {
		if w.Depart.After(today) {
			out = append(out, w)
		}
	}
	return out
}

// Best picks the preferred weekend of the month: the second upcoming
// Thursday, or the only one left. ok is false when the month has no upcoming
// Thursday.
func Best(year int, month time.Month, now time.Time) (Weekend, bool) {
	upcoming := Upcoming(year, month, now)
	switch len(upcoming) {
	case 0:
		return Weekend{}, false
	case 1:
		return upcoming[0], true
	default:
		return upcoming[1], true
	}
}

// NextOptimal returns the first month, starting with the month after now and
// looking twelve months ahead, that is one of bestMonths.
func NextOptimal(bestMonths []int, now time.Time) (int, time.Month, bool) {
	start := date(now.Year(), now.Month(), 1).AddDate(0, 1, 0)
	for i := 0; i < 12; i++ {
		m := start.AddDate(0, i, 0)
		for _, b := range bestMonths {
			if int(m.Month()) == b {
				return m.Year(), m.Month(), true
			}
		}
	}
	return 0, 0, false
}

// Parse reads a YYYY-MM-DD date.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

// MonthLabel formats a month as "January 2026".
func MonthLabel(year int, month time.Month) string {
	return date(year, month, 1).Format("January 2006")
}
