package handlers

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var defaultOrigins = []string{"http://localhost:5173", "http://localhost:3000"}

// AllowedOrigins merges the local development origins with a comma-separated
// FRONTEND_URL value.
func AllowedOrigins(frontendURLs string) []string {
	return appendList(append([]string{}, defaultOrigins...), frontendURLs)
}

// TrustedProxies parses a comma-separated TRUSTED_PROXIES value. An empty
// value yields nil, which trusts no proxy.
func TrustedProxies(list string) []string {
	return appendList(nil, list)
}

func appendList(dst []string, list string) []string {
	for _, u := range strings.Split(list, ",") {
		u = strings.TrimSpace(u)
		if u != "" && !slices.Contains(dst, u) {
			dst = append(dst, u)
		}
	}
	return dst
}

// NewRouter wires the API routes, CORS and the Prometheus endpoint. Client
// IPs come from X-Forwarded-For only when the request arrives through one of
// proxies.
func NewRouter(h *Handler, origins, proxies []string) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery(), gin.Logger())

	if err := r.SetTrustedProxies(proxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/cities", h.Cities)
		api.GET("/location", h.Location)
		api.POST("/trips", h.PlanTrip)
		api.GET("/trips/:id", h.GetTrip)
		api.POST("/tours", h.PlanTour)
		api.GET("/download/:id", h.Download)
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r, nil
}
