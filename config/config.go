// Package config loads runtime settings from the environment and an optional
// .env file.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"tripplanner/services"
)

type Postgres struct {
	URL      string `mapstructure:"database_url"`
	Host     string `mapstructure:"db_host"`
	Port     string `mapstructure:"db_port"`
	User     string `mapstructure:"db_user"`
	Password string `mapstructure:"db_password"`
	Name     string `mapstructure:"db_name"`
	SSLMode  string `mapstructure:"db_sslmode"`
}

type Config struct {
	AppEnv string `mapstructure:"app_env"`

	AmadeusClientID     string        `mapstructure:"amadeus_client_id"`
	AmadeusClientSecret string        `mapstructure:"amadeus_client_secret"`
	AmadeusEnv          string        `mapstructure:"amadeus_env"`
	HTTPTimeout         time.Duration `mapstructure:"http_timeout"`

	GeolocationURL string `mapstructure:"geolocation_url"`
	NominatimURL   string `mapstructure:"nominatim_url"`
	CityCacheFile  string `mapstructure:"city_cache_file"`

	Port        string `mapstructure:"port"`
	FrontendURL string `mapstructure:"frontend_url"`
	GinMode     string `mapstructure:"gin_mode"`

	// TrustedProxies is a comma-separated list of proxy IPs or CIDRs whose
	// X-Forwarded-For header is believed. Empty trusts none.
	TrustedProxies string `mapstructure:"trusted_proxies"`

	Postgres Postgres `mapstructure:",squash"`
}

// keys lists every setting read from the environment. Unmarshal only sees
// keys viper knows about, so each one is bound explicitly.
var keys = []string{
	"app_env",
	"amadeus_client_id", "amadeus_client_secret", "amadeus_env", "http_timeout",
	"geolocation_url", "nominatim_url", "city_cache_file",
	"port", "frontend_url", "gin_mode", "trusted_proxies",
	"database_url", "db_host", "db_port", "db_user", "db_password", "db_name", "db_sslmode",
}

func defaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")
	v.SetDefault("amadeus_env", "test")
	v.SetDefault("http_timeout", 30*time.Second)
	v.SetDefault("geolocation_url", services.DefaultGeolocationURL)
	v.SetDefault("nominatim_url", services.DefaultNominatimURL)
	v.SetDefault("city_cache_file", "city_cache.json")
	v.SetDefault("port", "8080")
	v.SetDefault("frontend_url", "http://localhost:5173")
	v.SetDefault("gin_mode", "debug")
}

// Load reads dotenv (a missing file is fine) and then the process
// environment, which wins over .env.
func Load(dotenv ...string) (Config, error) {
	// godotenv never overrides variables that are already set.
	_ = godotenv.Load(dotenv...)
	return fromViper(viper.New())
}

func fromViper(v *viper.Viper) (Config, error) {
	defaults(v)
	v.AutomaticEnv()
	for _, k := range keys {
		if err := v.BindEnv(k, strings.ToUpper(k)); err != nil {
			return Config{}, err
		}
	}
	// Older deployments use the API key naming.
	if err := v.BindEnv("amadeus_client_id", "AMADEUS_CLIENT_ID", "AMADEUS_API_KEY"); err != nil {
		return Config{}, err
	}
	if err := v.BindEnv("amadeus_client_secret", "AMADEUS_CLIENT_SECRET", "AMADEUS_API_SECRET"); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.AmadeusEnv = strings.ToLower(strings.TrimSpace(cfg.AmadeusEnv))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.AmadeusEnv {
	case "test", "production":
	default:
		return fmt.Errorf("AMADEUS_ENV must be test or production, got %q", c.AmadeusEnv)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	for name, raw := range map[string]string{"GEOLOCATION_URL": c.GeolocationURL, "NOMINATIM_URL": c.NominatimURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}
	return nil
}

// Production reports whether APP_ENV asks for production behaviour.
func (c Config) Production() bool {
	return c.AppEnv == "production" || c.AppEnv == "prod"
}

// Amadeus builds the client settings for the selected environment.
func (c Config) Amadeus() services.AmadeusConfig {
	base := services.AmadeusTestURL
	if c.AmadeusEnv == "production" {
		base = services.AmadeusProductionURL
	}
	return services.AmadeusConfig{
		ClientID:     c.AmadeusClientID,
		ClientSecret: c.AmadeusClientSecret,
		BaseURL:      base,
		Timeout:      c.HTTPTimeout,
	}
}

// DatabaseDSN returns DATABASE_URL, or a DSN assembled from the DB_*
// variables. It is empty when no database is configured.
func (c Config) DatabaseDSN() string {
	p := c.Postgres
	if p.URL != "" {
		return p.URL
	}
	if p.Host == "" {
		return ""
	}

	port := orDefault(p.Port, "5432")
	user := orDefault(p.User, "postgres")
	name := orDefault(p.Name, "tripplanner")
	sslmode := orDefault(p.SSLMode, "disable")

	dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s",
		dsnValue(p.Host), dsnValue(port), dsnValue(user), dsnValue(name), dsnValue(sslmode))
	if p.Password != "" {
		dsn += " password=" + dsnValue(p.Password)
	}
	return dsn
}

// dsnValue quotes a key/value connection string value when it holds spaces,
// quotes or backslashes, escaping the latter two as libpq expects.
func dsnValue(v string) string {
	if !strings.ContainsAny(v, " \t'\\") {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
