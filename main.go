package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"

	"tripplanner/config"
	"tripplanner/handlers"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}

	logger := setupLogger(cfg, os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, opts, os.Stdout, logger)
	if err != nil {
		logger.Error("Startup failed", slog.Any("error", err))
		return 1
	}
	defer a.Close()

	if err := a.run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("Interrupted")
			return 130
		}
		logger.Error("Planning failed", slog.Any("error", err))
		return 1
	}
	return 0
}

// setupLogger returns colored logs in development and JSON elsewhere. Logs go
// to w so plans printed on stdout stay clean.
func setupLogger(cfg config.Config, w io.Writer) *slog.Logger {
	if !cfg.Production() {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      slog.LevelInfo,
			TimeFormat: time.Kitchen,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// serve runs the HTTP API until ctx is cancelled.
func serve(ctx context.Context, a *app) error {
	if a.cfg.GinMode == gin.ReleaseMode || a.cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	var store handlers.TripStore
	if a.store != nil {
		store = a.store
	} else {
		a.logger.Warn("Database not configured, trips will not be stored")
	}
	h := handlers.New(a.planner, store, a.geo, a.logger)
	router, err := handlers.NewRouter(h,
		handlers.AllowedOrigins(a.cfg.FrontendURL),
		handlers.TrustedProxies(a.cfg.TrustedProxies))
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      5 * time.Minute, // tours make dozens of upstream calls
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(a.logger.Handler(), slog.LevelError),
	}

	errc := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server",
			slog.String("address", srv.Addr),
			slog.String("home_airport", a.planner.HomeAirport()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("Shutdown signal received, starting graceful shutdown...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	a.logger.Info("HTTP server gracefully stopped")
	return nil
}
