// Package server exposes station lists, render plans and nearest-neighbor
// rankings over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/httprate"
	"github.com/patrickmn/go-cache"

	"github.com/rubiojr/stationmap/internal/geocode"
	"github.com/rubiojr/stationmap/internal/station"
	"github.com/rubiojr/stationmap/internal/stationdb"
)

const (
	DefaultRateLimit  = 60 // requests per minute and IP
	DefaultSelectPath = "/api/plan"

	stationsCacheExpiration = time.Minute
	stationsCacheCleanup    = 5 * time.Minute
	shutdownTimeout         = 10 * time.Second
)

// Upstream is the RPC endpoint the server reads stations from and sends
// location submissions to.
type Upstream interface {
	station.Source
	station.Caller
}

type Config struct {
	Upstream Upstream
	// Storage is optional. When set, submissions are logged and the last
	// snapshot is served while upstream is unreachable.
	Storage *stationdb.Storage
	// Geocoder is optional. It enables the location parameter of
	// /api/nearest.
	Geocoder *geocode.Geocoder
	Logger   *httplog.Logger
	// RateLimit is in requests per minute and IP. Negative disables it.
	RateLimit int
	// SelectPath is where /select/{id} redirects to.
	SelectPath string
	// AllowedOrigins enables CORS for browser clients on other origins.
	AllowedOrigins []string
}

type Server struct {
	upstream   Upstream
	storage    *stationdb.Storage
	geocoder   *geocode.Geocoder
	logger     *httplog.Logger
	log        *slog.Logger
	cache      *cache.Cache
	rateLimit  int
	selectPath string
	origins    []string
}

func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = httplog.NewLogger("stationmap", httplog.Options{
			LogLevel: slog.LevelInfo,
			Concise:  true,
		})
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.SelectPath == "" {
		cfg.SelectPath = DefaultSelectPath
	}

	return &Server{
		upstream:   cfg.Upstream,
		storage:    cfg.Storage,
		geocoder:   cfg.Geocoder,
		logger:     cfg.Logger,
		log:        cfg.Logger.Logger,
		cache:      cache.New(stationsCacheExpiration, stationsCacheCleanup),
		rateLimit:  cfg.RateLimit,
		selectPath: cfg.SelectPath,
		origins:    cfg.AllowedOrigins,
	}
}

// Handler returns the router with every route mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	if len(s.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}
	if s.rateLimit > 0 {
		r.Use(httprate.LimitByIP(s.rateLimit, time.Minute))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/select/{id}", s.handleSelect)

	r.Route("/api", func(r chi.Router) {
		r.Get("/stations", s.handleStations)
		r.Get("/categories", s.handleCategories)
		r.Get("/nearest", s.handleNearest)
		r.Get("/plan", s.handlePlan)
		r.Get("/plan.geojson", s.handlePlanGeoJSON)
		r.Get("/plan.gpx", s.handlePlanGPX)
		r.Post("/stations/{id}/location", s.handleSubmitLocation)
		r.Get("/stations/{id}/submissions", s.handleSubmissions)
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("Starting server", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("error serving http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down: %w", err)
	}
	return nil
}
