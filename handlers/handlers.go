// Package handlers exposes the planner over HTTP.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tripplanner/catalog"
	"tripplanner/database"
	"tripplanner/dates"
	"tripplanner/planner"
	"tripplanner/report"
	"tripplanner/services"
)

// TripStore persists plans. *database.Store implements it.
type TripStore interface {
	SaveTrip(ctx context.Context, trip planner.Trip) (string, error)
	GetTrip(ctx context.Context, id string) (*database.TripRecord, error)
	UpdateTripPDF(ctx context.Context, id string, pdfData []byte, travelerName string) error
	SaveTour(ctx context.Context, tour planner.Tour) (string, []string, error)
	Ping(ctx context.Context) error
}

type Locator interface {
	DetectHomeAirport(ctx context.Context, ip string) services.HomeAirport
}

type Handler struct {
	planner *planner.Planner
	store   TripStore
	locator Locator
	logger  *slog.Logger
}

// New returns a Handler. store may be nil, in which case plans are returned
// but not kept.
func New(p *planner.Planner, store TripStore, locator Locator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{planner: p, store: store, locator: locator, logger: logger}
}

// ─── Health & reference data ─────────────────────────────────────────────────

func (h *Handler) Health(c *gin.Context) {
	dbStatus := "ok"
	if h.store == nil {
		dbStatus = "not configured"
	} else if err := h.store.Ping(c.Request.Context()); err != nil {
		dbStatus = "error: " + err.Error()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"service":      "Weekend Trip Planner API",
		"database":     dbStatus,
		"home_airport": h.planner.HomeAirport(),
	})
}

func (h *Handler) Cities(c *gin.Context) {
	raw := c.Query("month")
	if raw == "" {
		c.JSON(http.StatusOK, gin.H{"cities": catalog.All()})
		return
	}

	m, err := strconv.Atoi(raw)
	if err != nil || m < 1 || m > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be a number from 1 to 12"})
		return
	}
	cities := catalog.BestIn(time.Month(m))
	if cities == nil {
		cities = []catalog.City{}
	}
	c.JSON(http.StatusOK, gin.H{"month": time.Month(m).String(), "cities": cities})
}

// Location resolves the caller's home airport. Private addresses are looked
// up as the server's own public address.
func (h *Handler) Location(c *gin.Context) {
	ip := c.ClientIP()
	if addr := net.ParseIP(ip); addr == nil || addr.IsLoopback() || addr.IsPrivate() {
		ip = ""
	}
	c.JSON(http.StatusOK, h.locator.DetectHomeAirport(c.Request.Context(), ip))
}

// ─── Trips ────────────────────────────────────────────────────────────────────

type TripRequest struct {
	City         string `json:"city" binding:"required"`
	Year         int    `json:"year"`
	Month        int    `json:"month"`
	Depart       string `json:"depart"`
	Origin       string `json:"origin"`
	TravelerName string `json:"traveler_name"`
	PDF          bool   `json:"pdf"`
}

type TripResponse struct {
	ID     string       `json:"id,omitempty"`
	PDFURL string       `json:"pdf_url,omitempty"`
	Trip   planner.Trip `json:"trip"`
}

func (h *Handler) PlanTrip(c *gin.Context) {
	var req TripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	pr := planner.TripRequest{City: strings.TrimSpace(req.City), Origin: req.Origin}
	if req.Year != 0 && req.Month == 0 && req.Depart == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year needs a month or a depart date"})
		return
	}
	switch {
	case req.Depart != "":
		d, err := dates.Parse(req.Depart)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		pr.Thursday = d
	case req.Month != 0:
		if req.Month < 1 || req.Month > 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "month must be from 1 to 12"})
			return
		}
		pr.Year, pr.Month = req.Year, time.Month(req.Month)
		if pr.Year == 0 {
			pr.Year = h.planner.Now().Year()
		}
	}
	if req.Origin != "" && len(strings.TrimSpace(req.Origin)) != 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Airport codes must be exactly 3 characters (e.g. LAX, JFK)"})
		return
	}

	ctx := c.Request.Context()
	var (
		trip planner.Trip
		err  error
	)
	if pr.Thursday.IsZero() && pr.Month == 0 {
		trip, err = h.planner.NextOptimalTrip(ctx, pr.City, pr.Origin)
	} else {
		trip, err = h.planner.PlanTrip(ctx, pr)
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Planning was interrupted"})
		return
	}
	if !trip.OK() {
		c.JSON(http.StatusUnprocessableEntity, TripResponse{Trip: trip})
		return
	}

	resp := TripResponse{Trip: trip}
	if h.store == nil {
		c.JSON(http.StatusOK, resp)
		return
	}

	id, err := h.store.SaveTrip(ctx, trip)
	if err != nil {
		h.logger.Error("Failed to save trip", slog.String("city", trip.City), slog.Any("error", err))
		c.JSON(http.StatusOK, resp)
		return
	}
	resp.ID = id

	if req.PDF {
		if err := h.attachPDF(ctx, id, trip, req.TravelerName); err != nil {
			h.logger.Error("Failed to build itinerary PDF", slog.String("id", id), slog.Any("error", err))
		} else {
			resp.PDFURL = fmt.Sprintf("/api/download/%s", id)
		}
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) attachPDF(ctx context.Context, id string, trip planner.Trip, traveler string) error {
	data, err := report.PDF(trip, report.PDFOptions{TravelerName: traveler})
	if err != nil {
		return err
	}
	return h.store.UpdateTripPDF(ctx, id, data, traveler)
}

func (h *Handler) GetTrip(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Trip storage is not configured"})
		return
	}
	rec, err := h.store.GetTrip(c.Request.Context(), c.Param("id"))
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to load trip", slog.String("id", c.Param("id")), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load trip"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         rec.ID,
		"tour_id":    rec.TourID,
		"created_at": rec.CreatedAt,
		"has_pdf":    len(rec.PDFData) > 0,
		"trip":       rec.Trip,
	})
}

// ─── Tours ────────────────────────────────────────────────────────────────────

type TourRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type TourResponse struct {
	ID      string       `json:"id,omitempty"`
	TripIDs []string     `json:"trip_ids,omitempty"`
	Tour    planner.Tour `json:"tour"`
}

func (h *Handler) PlanTour(c *gin.Context) {
	var req TourRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
	}
	if req.Month < 0 || req.Month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be from 1 to 12"})
		return
	}
	if req.Year != 0 && req.Month == 0 {
		req.Month = 1
	}
	if req.Year == 0 && req.Month != 0 {
		req.Year = h.planner.Now().Year()
	}

	ctx := c.Request.Context()
	tour, err := h.planner.PlanAnnualTour(ctx, req.Year, time.Month(req.Month))
	if errors.Is(err, planner.ErrStartInPast) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Planning was interrupted"})
		return
	}

	resp := TourResponse{Tour: tour}
	if h.store != nil {
		id, ids, err := h.store.SaveTour(ctx, tour)
		if err != nil {
			h.logger.Error("Failed to save tour", slog.Any("error", err))
		} else {
			resp.ID, resp.TripIDs = id, ids
		}
	}
	c.JSON(http.StatusOK, resp)
}

// ─── Download ─────────────────────────────────────────────────────────────────

// Download serves the itinerary PDF, rendering it on first request.
func (h *Handler) Download(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Trip storage is not configured"})
		return
	}
	id := c.Param("id")
	ctx := c.Request.Context()

	rec, err := h.store.GetTrip(ctx, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
		return
	}

	data := rec.PDFData
	if len(data) == 0 {
		data, err = report.PDF(rec.Trip, report.PDFOptions{TravelerName: rec.TravelerName})
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "No itinerary can be generated for this trip"})
			return
		}
		if err := h.store.UpdateTripPDF(ctx, id, data, rec.TravelerName); err != nil {
			h.logger.Warn("Failed to store itinerary PDF", slog.String("id", id), slog.Any("error", err))
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", pdfFilename(rec.Trip)))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", data)
}

func pdfFilename(trip planner.Trip) string {
	name := strings.ToLower(trip.City)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, name)
	name = strings.Join(strings.FieldsFunc(name, func(r rune) bool { return r == '-' }), "-")
	if trip.TravelDates != nil {
		name += "-" + trip.TravelDates.Departure
	}
	return "weekend-" + name + ".pdf"
}
