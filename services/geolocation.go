package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"tripplanner/catalog"
	"tripplanner/metrics"
)

// ─── IP Geolocation ───────────────────────────────────────────────────────────

const DefaultGeolocationURL = "https://ipapi.co"

// Location is where an IP address resolves to.
type Location struct {
	IP        string  `json:"ip,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city"`
	Region    string  `json:"region"`
	Country   string  `json:"country"`
}

// DefaultLocation is used whenever the lookup fails.
var DefaultLocation = Location{
	Latitude:  34.0522,
	Longitude: -118.2437,
	City:      "Los Angeles",
	Region:    "California",
	Country:   "United States",
}

// HomeAirport is the outcome of resolving a caller to an airport.
type HomeAirport struct {
	Location Location        `json:"location"`
	Airport  catalog.Airport `json:"airport"`
	Miles    float64         `json:"distance_miles"`
	Fallback bool            `json:"fallback"`
}

// Geolocator resolves IP addresses with ipapi.co. Results are memoised for
// an hour per IP.
type Geolocator struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.Cache
	logger     *slog.Logger
}

func NewGeolocator(baseURL string, logger *slog.Logger) *Geolocator {
	if baseURL == "" {
		baseURL = DefaultGeolocationURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Geolocator{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Second},
		cache:      cache.New(time.Hour, 10*time.Minute),
		logger:     logger,
	}
}

type ipapiResponse struct {
	IP          string   `json:"ip"`
	City        string   `json:"city"`
	Region      string   `json:"region"`
	CountryName string   `json:"country_name"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Error       bool     `json:"error"`
	Reason      string   `json:"reason"`
}

// Lookup resolves ip, or the caller's own public address when ip is empty.
func (g *Geolocator) Lookup(ctx context.Context, ip string) (loc Location, err error) {
	key := ip
	if key == "" {
		key = "self"
	}
	if v, ok := g.cache.Get(key); ok {
		return v.(Location), nil
	}

	start := time.Now()
	defer func() { metrics.ObserveRequest("ipapi", "lookup", start, err) }()

	target := g.baseURL + "/json/"
	if ip != "" {
		target = g.baseURL + "/" + url.PathEscape(ip) + "/json/"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Location{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("geolocation request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("geolocation error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var data ipapiResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return Location{}, fmt.Errorf("failed to parse geolocation response: %w", err)
	}
	if data.Error {
		return Location{}, fmt.Errorf("geolocation error: %s", data.Reason)
	}
	if data.Latitude == nil || data.Longitude == nil {
		return Location{}, fmt.Errorf("geolocation response has no coordinates")
	}

	loc = Location{
		IP:        data.IP,
		Latitude:  *data.Latitude,
		Longitude: *data.Longitude,
		City:      orUnknown(data.City),
		Region:    orUnknown(data.Region),
		Country:   orUnknown(data.CountryName),
	}
	g.cache.Set(key, loc, cache.DefaultExpiration)
	return loc, nil
}

// DetectHomeAirport finds the reference airport nearest to ip. A failed
// lookup falls back to DefaultLocation and is reported via Fallback.
func (g *Geolocator) DetectHomeAirport(ctx context.Context, ip string) HomeAirport {
	loc, err := g.Lookup(ctx, ip)
	fallback := false
	if err != nil {
		g.logger.Warn("Location detection failed, using default location",
			slog.String("default", DefaultLocation.City+", "+DefaultLocation.Region),
			slog.Any("error", err))
		loc = DefaultLocation
		fallback = true
	}

	airport, miles := catalog.NearestAirport(loc.Latitude, loc.Longitude)
	g.logger.Info("Home airport detected",
		slog.String("location", loc.City+", "+loc.Region),
		slog.String("airport", airport.Code),
		slog.String("airport_name", airport.Name),
		slog.String("distance", fmt.Sprintf("%.1f miles", miles)))

	return HomeAirport{Location: loc, Airport: airport, Miles: miles, Fallback: fallback}
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
