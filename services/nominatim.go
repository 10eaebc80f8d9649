package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tripplanner/metrics"
)

// ─── Geocoding (OpenStreetMap Nominatim) ──────────────────────────────────────

const (
	DefaultNominatimURL = "https://nominatim.openstreetmap.org"
	nominatimUserAgent  = "tripplanner/1.0 (weekend trip planner)"
)

// ErrPlaceNotFound is returned when geocoding yields no result.
var ErrPlaceNotFound = errors.New("place not found")

// Place is a geocoded location.
type Place struct {
	Lat         float64
	Lon         float64
	DisplayName string
	// State is taken from the display name, e.g. "Arizona".
	State string
}

type Nominatim struct {
	baseURL    string
	httpClient *http.Client
}

func NewNominatim(baseURL string) *Nominatim {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	return &Nominatim{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Geocode resolves a free-form US place query to its first match.
func (n *Nominatim) Geocode(ctx context.Context, query string) (place Place, err error) {
	start := time.Now()
	defer func() { metrics.ObserveRequest("nominatim", "search", start, err) }()

	params := url.Values{}
	params.Set("q", query)
	params.Set("countrycodes", "us")
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return Place{}, err
	}
	req.Header.Set("User-Agent", nominatimUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return Place{}, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return Place{}, fmt.Errorf("geocoding error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var results []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
	}
	if err := json.Unmarshal(body, &results); err != nil {
		return Place{}, fmt.Errorf("failed to parse geocoding response: %w", err)
	}
	if len(results) == 0 {
		return Place{}, fmt.Errorf("%q: %w", query, ErrPlaceNotFound)
	}

	r := results[0]
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return Place{}, fmt.Errorf("bad latitude %q: %w", r.Lat, err)
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return Place{}, fmt.Errorf("bad longitude %q: %w", r.Lon, err)
	}

	return Place{Lat: lat, Lon: lon, DisplayName: r.DisplayName, State: stateFromDisplayName(r.DisplayName)}, nil
}

// stateFromDisplayName picks the part before the country, skipping a postcode
// ("Phoenix, Maricopa County, Arizona, 85003, United States" → "Arizona").
func stateFromDisplayName(name string) string {
	parts := strings.Split(name, ",")
	for i := len(parts) - 2; i >= 1; i-- {
		p := strings.TrimSpace(parts[i])
		if _, err := strconv.Atoi(p); err == nil || p == "" {
			continue
		}
		return p
	}
	return ""
}
