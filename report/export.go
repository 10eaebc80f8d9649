package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jszwec/csvutil"

	"tripplanner/planner"
)

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// TourRow is one line of the tour CSV export.
type TourRow struct {
	City           string  `csv:"city"`
	Month          string  `csv:"month"`
	Departure      string  `csv:"departure"`
	Return         string  `csv:"return"`
	Optimal        bool    `csv:"optimal"`
	Origin         string  `csv:"origin"`
	Destination    string  `csv:"destination"`
	CheapestFlight float64 `csv:"cheapest_flight,omitempty"`
	CheapestHotel  float64 `csv:"cheapest_hotel,omitempty"`
	Currency       string  `csv:"currency"`
	Source         string  `csv:"source"`
	Error          string  `csv:"error,omitempty"`
}

// Rows flattens a tour for export.
func Rows(tour planner.Tour) []TourRow {
	rows := make([]TourRow, 0, len(tour.Trips))
	for _, t := range tour.Trips {
		row := TourRow{City: t.City, Origin: t.Origin, Error: t.Error, Currency: "USD"}
		if t.TravelDates != nil {
			row.Departure, row.Return = t.TravelDates.Departure, t.TravelDates.Return
		}
		if t.Season != nil {
			row.Month, row.Optimal = t.Season.Month, t.Season.Optimal
		}
		if f := t.Flights; f != nil {
			row.Destination = f.Destination
			row.Source = f.Source
			if !f.Success && row.Error == "" {
				row.Error = f.Error
			}
			for _, o := range f.Offers {
				if o.Price.Total > 0 && (row.CheapestFlight == 0 || o.Price.Total < row.CheapestFlight) {
					row.CheapestFlight = o.Price.Total
				}
			}
		}
		if h := t.Hotels; h != nil {
			// Offers arrive sorted by total.
			if len(h.Offers) > 0 {
				row.CheapestHotel = h.Offers[0].Price.Total
			}
			if !h.Success && row.Error == "" {
				row.Error = h.Error
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteTourCSV writes one CSV row per tour stop with a header line.
func WriteTourCSV(w io.Writer, tour planner.Tour) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	rows := Rows(tour)
	if len(rows) == 0 {
		if err := enc.EncodeHeader(TourRow{}); err != nil {
			return err
		}
	} else if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encode tour csv: %w", err)
	}

	cw.Flush()
	return cw.Error()
}
