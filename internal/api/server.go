// Package api serves the insights engine over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/theramap/insights-cli/internal/config"
	"github.com/theramap/insights-cli/internal/coverage"
	"github.com/theramap/insights-cli/internal/dedupe"
	"github.com/theramap/insights-cli/internal/export"
	"github.com/theramap/insights-cli/internal/insights"
	"github.com/theramap/insights-cli/internal/model"
	"github.com/theramap/insights-cli/internal/store"
)

// Server serves coverage insights, retention rankings, and duplicate
// reports over HTTP.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	store      store.Store
	cache      *insights.Cache
	detector   *dedupe.Detector
}

// NewServer builds the router and handlers.
func NewServer(cfg config.ServerConfig, st store.Store, cache *insights.Cache, detector *dedupe.Detector) *Server {
	s := &Server{
		store:    st,
		cache:    cache,
		detector: detector,
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(rateLimit(cfg.RateLimitPerSec, cfg.RateLimitBurst))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/health", s.handleHealth)
	router.Route("/api", func(r chi.Router) {
		r.Get("/insights", s.handleInsights)
		r.Get("/insights.geojson", s.handleInsightsGeoJSON)
		r.Get("/retention", s.handleRetention)
		r.Get("/clinics", s.handleClinics)
		r.Get("/clinics.geojson", s.handleClinicsGeoJSON)
		r.Get("/duplicates", s.handleDuplicates)
		r.Get("/cache/stats", s.handleCacheStats)
	})

	s.router = router
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// rateLimit applies a global token bucket across all requests.
func rateLimit(perSec, burst int) func(http.Handler) http.Handler {
	if burst <= 0 {
		burst = perSec
	}
	limiter := rate.NewLimiter(rate.Limit(perSec), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Router exposes the router for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	zap.L().Info("api: listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.Get())
}

func (s *Server) handleInsightsGeoJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/geo+json")
	if err := export.Write(w, export.InsightFeatures(s.cache.Get())); err != nil {
		zap.L().Error("api: write insights geojson", zap.Error(err))
	}
}

func (s *Server) handleRetention(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")

	clinics, err := s.store.ListClinics(r.Context(), store.ClinicFilter{VerifiedOnly: true})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, coverage.TopRetention(clinics, state))
}

func (s *Server) handleClinics(w http.ResponseWriter, r *http.Request) {
	filter := store.ClinicFilter{
		State:        r.URL.Query().Get("state"),
		VerifiedOnly: r.URL.Query().Get("verified") == "true",
	}
	clinics, err := s.store.ListClinics(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if clinics == nil {
		clinics = []model.ClinicRecord{}
	}
	writeJSON(w, http.StatusOK, clinics)
}

func (s *Server) handleClinicsGeoJSON(w http.ResponseWriter, r *http.Request) {
	clinics, err := s.store.ListClinics(r.Context(), store.ClinicFilter{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	if err := export.Write(w, export.ClinicFeatures(clinics)); err != nil {
		zap.L().Error("api: write clinics geojson", zap.Error(err))
	}
}

func (s *Server) handleDuplicates(w http.ResponseWriter, r *http.Request) {
	clinics, err := s.store.ListClinics(r.Context(), store.ClinicFilter{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	candidates := s.detector.Find(clinics)
	if candidates == nil {
		candidates = []model.DuplicateCandidate{}
	}
	writeJSON(w, http.StatusOK, candidates)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.Stats())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	zap.L().Error("api: request failed", zap.Error(err))
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
