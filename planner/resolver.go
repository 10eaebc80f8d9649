package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"tripplanner/catalog"
	"tripplanner/services"
)

// CityTTL is how long a resolved city stays valid in a CityStore.
const CityTTL = 30 * 24 * time.Hour

// ErrCityNotCached is returned by a CityStore that has no fresh entry.
var ErrCityNotCached = errors.New("city not cached")

type Geocoder interface {
	Geocode(ctx context.Context, query string) (services.Place, error)
}

// CityStore persists resolved cities between runs.
type CityStore interface {
	GetCity(ctx context.Context, key string) (catalog.City, error)
	PutCity(ctx context.Context, key string, city catalog.City) error
}

// Resolver builds catalog entries for cities that are not in the catalog by
// geocoding them. Lookups go memory, then store, then geocoder.
type Resolver struct {
	geocoder Geocoder
	store    CityStore
	mem      *cache.Cache
	logger   *slog.Logger
}

// NewResolver returns a Resolver. store may be nil.
func NewResolver(geocoder Geocoder, store CityStore, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		geocoder: geocoder,
		store:    store,
		mem:      cache.New(time.Hour, 10*time.Minute),
		logger:   logger,
	}
}

func cityKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// splitCityState splits "Memphis, TN" into its parts.
func splitCityState(name string) (string, string) {
	city, state, found := strings.Cut(name, ",")
	if !found {
		return strings.TrimSpace(name), ""
	}
	return strings.TrimSpace(city), strings.TrimSpace(state)
}

func (r *Resolver) Resolve(ctx context.Context, name string) (catalog.City, error) {
	key := cityKey(name)
	if key == "" {
		return catalog.City{}, errors.New("empty city name")
	}

	if v, ok := r.mem.Get(key); ok {
		return v.(catalog.City), nil
	}

	if r.store != nil {
		c, err := r.store.GetCity(ctx, key)
		if err == nil {
			r.mem.SetDefault(key, c)
			return c, nil
		}
		if !errors.Is(err, ErrCityNotCached) {
			r.logger.Warn("City cache read failed", slog.String("city", name), slog.Any("error", err))
		}
	}

	city, state := splitCityState(name)
	query := city
	if state != "" {
		query = city + ", " + state
	}
	place, err := r.geocoder.Geocode(ctx, query+", USA")
	if err != nil {
		return catalog.City{}, err
	}
	if state == "" {
		state = place.State
	}

	c := catalog.BuildCity(city, state, place.Lat, place.Lon)
	r.logger.Info("Resolved city", slog.String("city", c.Name), slog.String("airport", c.AirportCode))

	r.mem.SetDefault(key, c)
	if r.store != nil {
		if err := r.store.PutCity(ctx, key, c); err != nil {
			r.logger.Warn("City cache write failed", slog.String("city", name), slog.Any("error", err))
		}
	}
	return c, nil
}

// ─── File-backed store ────────────────────────────────────────────────────────

type fileEntry struct {
	City     catalog.City `json:"city"`
	CachedAt time.Time    `json:"cached_at"`
}

// FileStore keeps resolved cities in a JSON file.
type FileStore struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

func (s *FileStore) load() (map[string]fileEntry, error) {
	entries := map[string]fileEntry{}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return entries, nil
}

func (s *FileStore) GetCity(_ context.Context, key string) (catalog.City, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return catalog.City{}, err
	}
	e, ok := entries[key]
	if !ok || s.now().Sub(e.CachedAt) > CityTTL {
		return catalog.City{}, ErrCityNotCached
	}
	return e.City, nil
}

func (s *FileStore) PutCity(_ context.Context, key string, city catalog.City) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		// A corrupt file is replaced rather than blocking new entries.
		entries = map[string]fileEntry{}
	}
	entries[key] = fileEntry{City: city, CachedAt: s.now()}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, data, 0o644)
}
