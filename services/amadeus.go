package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"tripplanner/metrics"
)

// ─── Amadeus Client ───────────────────────────────────────────────────────────

const (
	AmadeusTestURL       = "https://test.api.amadeus.com"
	AmadeusProductionURL = "https://api.amadeus.com"
)

// ErrNotConfigured is returned by API clients that have no credentials.
var ErrNotConfigured = errors.New("amadeus not configured")

// AmadeusConfig holds the credentials and endpoint of the Amadeus API.
type AmadeusConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	Timeout      time.Duration
}

// AmadeusClient searches flights and hotels. It is safe for concurrent use;
// the OAuth2 token is shared between callers.
type AmadeusClient struct {
	clientID     string
	clientSecret string
	baseURL      string
	accessToken  string
	tokenExpiry  time.Time
	mu           sync.Mutex
	httpClient   *http.Client
	logger       *slog.Logger
}

func NewAmadeusClient(cfg AmadeusConfig, logger *slog.Logger) *AmadeusClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = AmadeusTestURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AmadeusClient{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		logger:       logger,
	}
}

// Configured reports whether credentials are present.
func (c *AmadeusClient) Configured() bool {
	return c.clientID != "" && c.clientSecret != ""
}

// Source labels results produced by this client.
func (c *AmadeusClient) Source() string { return SourceLive }

// Warm fetches a token up front so credential problems show at startup.
func (c *AmadeusClient) Warm(ctx context.Context) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	return c.refreshToken(ctx)
}

// ─── OAuth2 Token ─────────────────────────────────────────────────────────────

func (c *AmadeusClient) refreshToken(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveRequest("amadeus", "token", start, err) }()

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/security/oauth2/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token request failed (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse token response: %w", err)
	}
	if result.AccessToken == "" {
		return errors.New("token response carried no access_token")
	}
	if result.ExpiresIn == 0 {
		result.ExpiresIn = 1800
	}

	c.mu.Lock()
	c.accessToken = result.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(result.ExpiresIn-30) * time.Second)
	c.mu.Unlock()

	c.logger.Debug("Amadeus token refreshed", slog.Int("expires_in", result.ExpiresIn))
	return nil
}

func (c *AmadeusClient) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	expired := time.Now().After(c.tokenExpiry)
	token := c.accessToken
	c.mu.Unlock()

	if expired || token == "" {
		if err := c.refreshToken(ctx); err != nil {
			return "", err
		}
		c.mu.Lock()
		token = c.accessToken
		c.mu.Unlock()
	}
	return token, nil
}

func (c *AmadeusClient) get(ctx context.Context, operation, path string, query url.Values) (body []byte, err error) {
	token, err := c.getToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth failed: %w", err)
	}

	start := time.Now()
	defer func() { metrics.ObserveRequest("amadeus", operation, start, err) }()

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("amadeus error (%d): %s", resp.StatusCode, apiErrorDetail(respBody))
	}
	return respBody, nil
}

// apiErrorDetail extracts the first error detail from an Amadeus error body,
// falling back to the raw body.
func apiErrorDetail(body []byte) string {
	var e struct {
		Errors []struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		} `json:"errors"`
	}
	if json.Unmarshal(body, &e) == nil && len(e.Errors) > 0 {
		if e.Errors[0].Detail != "" {
			return e.Errors[0].Title + ": " + e.Errors[0].Detail
		}
		return e.Errors[0].Title
	}
	return strings.TrimSpace(string(body))
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

// parseDuration converts ISO 8601 duration (PT5H30M) to human readable (5h 30m)
func parseDuration(iso string) string {
	if iso == "" {
		return ""
	}
	iso = strings.TrimPrefix(iso, "PT")
	result := ""
	if hIdx := strings.Index(iso, "H"); hIdx >= 0 {
		result += iso[:hIdx] + "h"
		iso = iso[hIdx+1:]
	}
	if mIdx := strings.Index(iso, "M"); mIdx >= 0 {
		if result != "" {
			result += " "
		}
		result += iso[:mIdx] + "m"
	}
	return result
}

func formatDurationMin(minutes int) string {
	h := minutes / 60
	m := minutes % 60
	if m > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dh", h)
}

func parsePrice(s string) float64 {
	var price float64
	fmt.Sscanf(s, "%f", &price)
	return price
}

// AirlineName returns the full airline name for an IATA carrier code.
func AirlineName(code string) string {
	names := map[string]string{
		"AA": "American Airlines",
		"AS": "Alaska Airlines",
		"B6": "JetBlue",
		"DL": "Delta Air Lines",
		"F9": "Frontier Airlines",
		"G4": "Allegiant Air",
		"HA": "Hawaiian Airlines",
		"NK": "Spirit Airlines",
		"SY": "Sun Country Airlines",
		"UA": "United Airlines",
		"WN": "Southwest Airlines",
		"AC": "Air Canada",
		"AM": "Aeromexico",
	}
	if name, ok := names[code]; ok {
		return name
	}
	if code != "" {
		return code + " Airlines"
	}
	return "Unknown Airline"
}
