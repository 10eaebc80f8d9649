package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"tripplanner/catalog"
	"tripplanner/config"
	"tripplanner/database"
	"tripplanner/dates"
	"tripplanner/planner"
	"tripplanner/report"
	"tripplanner/services"
)

// tourPreview is how many tour trips are printed without --all.
const tourPreview = 3

type options struct {
	City     string
	Airport  string
	Year     int
	Month    int
	Depart   string
	Cheapest bool
	JSON     bool
	CSV      bool
	PDF      string
	Traveler string
	Save     bool
	Serve    bool
	All      bool
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := pflag.NewFlagSet("tripplanner", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: tripplanner [flags] [city]\n\n")
		fmt.Fprintf(stderr, "Plans Thursday-to-Sunday weekends. With a city, plans one trip in its next\n")
		fmt.Fprintf(stderr, "recommended month; without one, plans a tour of every catalog city.\n\n")
		fs.PrintDefaults()
	}

	fs.StringVarP(&o.Airport, "airport", "a", "", "home airport code (detected from your IP when empty)")
	fs.IntVar(&o.Year, "year", 0, "year to travel or start the tour in")
	fs.IntVar(&o.Month, "month", 0, "month to travel or start the tour in (1-12)")
	fs.StringVar(&o.Depart, "depart", "", "exact Thursday to depart, YYYY-MM-DD")
	fs.BoolVar(&o.Cheapest, "cheapest", false, "search every weekend of the month for the cheapest flight")
	fs.BoolVar(&o.JSON, "json", false, "print JSON instead of text")
	fs.BoolVar(&o.CSV, "csv", false, "print the tour as CSV")
	fs.StringVar(&o.PDF, "pdf", "", "write a PDF itinerary of the trip or tour to this file")
	fs.StringVar(&o.Traveler, "traveler", "", "traveler name printed on the PDF")
	fs.BoolVar(&o.Save, "save", false, "store the plan in the database")
	fs.BoolVar(&o.Serve, "serve", false, "run the HTTP API instead of planning")
	fs.BoolVar(&o.All, "all", false, "print every trip of a tour")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	o.City = strings.TrimSpace(strings.Join(fs.Args(), " "))
	o.Airport = strings.ToUpper(strings.TrimSpace(o.Airport))

	if o.Airport != "" && len(o.Airport) != 3 {
		return options{}, fmt.Errorf("--airport must be a 3-letter airport code, got %q", o.Airport)
	}
	if o.Month < 0 || o.Month > 12 {
		return options{}, fmt.Errorf("--month must be from 1 to 12, got %d", o.Month)
	}
	if o.Depart != "" {
		if o.City == "" {
			return options{}, errors.New("--depart needs a city")
		}
		if _, err := dates.Parse(o.Depart); err != nil {
			return options{}, err
		}
	}
	if o.Cheapest && o.City == "" {
		return options{}, errors.New("--cheapest needs a city")
	}
	if o.City != "" && o.Year != 0 && o.Month == 0 && o.Depart == "" {
		return options{}, errors.New("--year needs --month when planning a city")
	}
	if o.CSV && o.City != "" {
		return options{}, errors.New("--csv is only available for tours")
	}
	if o.JSON && o.CSV {
		return options{}, errors.New("--json and --csv are mutually exclusive")
	}
	return o, nil
}

// startMonth picks where planning starts. A year on its own starts in
// January; a month on its own is in the current year.
func (o options) startMonth(now time.Time) (int, time.Month) {
	switch {
	case o.Year == 0 && o.Month == 0:
		return 0, 0
	case o.Month == 0:
		return o.Year, time.January
	case o.Year == 0:
		return now.Year(), time.Month(o.Month)
	default:
		return o.Year, time.Month(o.Month)
	}
}

// app holds everything built from config for one run.
type app struct {
	cfg     config.Config
	opts    options
	out     io.Writer
	logger  *slog.Logger
	planner *planner.Planner
	geo     *services.Geolocator
	store   *database.Store
}

func newApp(ctx context.Context, cfg config.Config, opts options, out io.Writer, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, opts: opts, out: out, logger: logger}

	var (
		flights planner.FlightSearcher
		hotels  planner.HotelSearcher
	)
	amadeus := services.NewAmadeusClient(cfg.Amadeus(), logger)
	if amadeus.Configured() {
		flights, hotels = amadeus, amadeus
		if err := amadeus.Warm(ctx); err != nil {
			logger.Warn("Amadeus authentication failed, searches will report errors", slog.Any("error", err))
		} else {
			logger.Info("Amadeus client ready", slog.String("env", cfg.AmadeusEnv))
		}
	} else {
		est := services.NewEstimator()
		flights, hotels = est, est
		logger.Warn("Amadeus credentials not set, prices will be estimated")
	}

	a.geo = services.NewGeolocator(cfg.GeolocationURL, logger)

	if dsn := cfg.DatabaseDSN(); dsn != "" && (opts.Save || opts.Serve) {
		store, err := database.Open(ctx, dsn, logger)
		if err != nil {
			return nil, err
		}
		a.store = store
	} else if opts.Save {
		return nil, errors.New("--save needs DATABASE_URL or DB_HOST")
	}

	var cities planner.CityStore = planner.NewFileStore(cfg.CityCacheFile)
	if a.store != nil {
		cities = a.store
	}
	resolver := planner.NewResolver(services.NewNominatim(cfg.NominatimURL), cities, logger)

	home := opts.Airport
	if home == "" && !opts.Serve {
		detected := a.geo.DetectHomeAirport(ctx, "")
		home = detected.Airport.Code
		if !opts.JSON && !opts.CSV {
			fmt.Fprintf(out, "\nDetected location: %s, %s\n", detected.Location.City, detected.Location.Region)
			fmt.Fprintf(out, "Nearest airport: %s (%s)\n", detected.Airport.Name, detected.Airport.Code)
			fmt.Fprintf(out, "Distance: %.1f miles\n", detected.Miles)
		}
	}
	if opts.Serve && home == "" {
		home = a.geo.DetectHomeAirport(ctx, "").Airport.Code
	}

	a.planner = planner.New(home, flights, hotels, planner.WithResolver(resolver), planner.WithLogger(logger))
	return a, nil
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

func (a *app) run(ctx context.Context) error {
	switch {
	case a.opts.Serve:
		return serve(ctx, a)
	case a.opts.City != "":
		return a.planCity(ctx)
	default:
		return a.planTour(ctx)
	}
}

func (a *app) planCity(ctx context.Context) error {
	o := a.opts
	req := planner.TripRequest{City: o.City}
	year, month := o.startMonth(a.planner.Now())

	var (
		trip planner.Trip
		err  error
	)
	switch {
	case o.Depart != "":
		req.Thursday, _ = dates.Parse(o.Depart)
		trip, err = a.planner.PlanTrip(ctx, req)
	case o.Cheapest:
		if year == 0 {
			city, cerr := a.planner.City(ctx, o.City)
			if cerr != nil {
				return cerr
			}
			var ok bool
			if year, month, ok = dates.NextOptimal(city.BestMonths, a.planner.Now()); !ok {
				return fmt.Errorf("%s has no recommended months", city.Name)
			}
		}
		w, offer, cerr := a.planner.CheapestWeekend(ctx, o.City, year, month)
		if cerr != nil {
			return cerr
		}
		fmt.Fprintf(a.out, "\nCheapest weekend in %s: %s ($%.2f %s)\n",
			dates.MonthLabel(year, month), w, offer.Price.Total, offer.Price.Currency)
		req.Thursday = w.Depart
		trip, err = a.planner.PlanTrip(ctx, req)
	case year != 0:
		req.Year, req.Month = year, month
		trip, err = a.planner.PlanTrip(ctx, req)
	default:
		trip, err = a.planner.NextOptimalTrip(ctx, o.City, "")
	}
	if err != nil {
		return err
	}

	if o.JSON {
		if err := report.WriteJSON(a.out, trip); err != nil {
			return err
		}
	} else {
		fmt.Fprint(a.out, report.Summary(trip))
	}
	if !trip.OK() {
		if _, ok := catalog.Lookup(o.City); !ok {
			fmt.Fprintf(a.out, "\nAvailable cities: %s\n", strings.Join(catalog.Names(), "; "))
		}
		return nil
	}

	var pdfData []byte
	if o.PDF != "" {
		if pdfData, err = report.PDF(trip, report.PDFOptions{TravelerName: o.Traveler}); err != nil {
			return err
		}
		if err := a.writePDF(pdfData); err != nil {
			return err
		}
	}

	if o.Save {
		id, err := a.store.SaveTrip(ctx, trip)
		if err != nil {
			return err
		}
		if pdfData != nil {
			if err := a.store.UpdateTripPDF(ctx, id, pdfData, o.Traveler); err != nil {
				return err
			}
		}
		a.logger.Info("Saved trip", slog.String("id", id), slog.String("city", trip.City))
	}
	return nil
}

func (a *app) planTour(ctx context.Context) error {
	o := a.opts
	year, month := o.startMonth(a.planner.Now())

	if !o.JSON && !o.CSV {
		fmt.Fprintln(a.out, "Planning annual tour of major US cities...")
		fmt.Fprintln(a.out, "This will find optimal times to visit each city.")
	}
	tour, err := a.planner.PlanAnnualTour(ctx, year, month)
	if err != nil {
		return err
	}

	switch {
	case o.JSON:
		err = report.WriteJSON(a.out, tour)
	case o.CSV:
		err = report.WriteTourCSV(a.out, tour)
	default:
		limit := tourPreview
		if o.All {
			limit = 0
		}
		err = report.WriteTour(a.out, tour, limit)
	}
	if err != nil {
		return err
	}

	if o.PDF != "" {
		data, err := report.TourPDF(tour, report.PDFOptions{TravelerName: o.Traveler})
		if err != nil {
			return err
		}
		if err := a.writePDF(data); err != nil {
			return err
		}
	}

	if o.Save {
		id, _, err := a.store.SaveTour(ctx, tour)
		if err != nil {
			return err
		}
		a.logger.Info("Saved tour", slog.String("id", id), slog.Int("trips", len(tour.Trips)))
	}
	return nil
}

func (a *app) writePDF(data []byte) error {
	if err := os.WriteFile(a.opts.PDF, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", a.opts.PDF, err)
	}
	a.logger.Info("Itinerary written", slog.String("file", a.opts.PDF))
	return nil
}
