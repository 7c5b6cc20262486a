package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/Afrawles/onboardtracker/internal/asana"
	"github.com/Afrawles/onboardtracker/internal/config"
	"github.com/Afrawles/onboardtracker/internal/metrics"
	"github.com/Afrawles/onboardtracker/internal/onboarding"
)

const missingConfigMessage = "Configuration file not found. Please copy onboarding.example.yaml to onboarding.yaml and configure it."

// ConfigLoader is called on every onboarding request so configuration edits
// apply without a restart.
type ConfigLoader func() (*config.Config, error)

type Server struct {
	loadConfig    ConfigLoader
	limiter       *rate.Limiter
	logger        *slog.Logger
	allowedOrigin string

	// Now overrides the clock used for start date checks.
	Now func() time.Time
}

func New(load ConfigLoader, limiter *rate.Limiter, allowedOrigin string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return &Server{
		loadConfig:    load,
		limiter:       limiter,
		logger:        logger,
		allowedOrigin: allowedOrigin,
		Now:           time.Now,
	}
}

type successResponse struct {
	Success bool                `json:"success"`
	Data    []onboarding.Record `json:"data"`
	Count   int                 `json:"count"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/onboarding", s.handleOnboarding)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		s.handleOnboarding(w, r)
	})
	return mux
}

func (s *Server) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	logger := s.logger.With("request_id", requestID)

	w.Header().Set("X-Request-ID", requestID)
	w.Header().Set("Access-Control-Allow-Origin", s.allowedOrigin)
	w.Header().Set("Access-Control-Allow-Methods", "GET")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	switch r.Method {
	case http.MethodGet:
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	default:
		metrics.HTTPRequestsTotal.WithLabelValues("method_not_allowed").Inc()
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	cfg, err := s.loadConfig()
	if err != nil {
		metrics.HTTPRequestsTotal.WithLabelValues("config_error").Inc()
		msg := err.Error()
		if errors.Is(err, config.ErrNotFound) {
			msg = missingConfigMessage
		}
		logger.Error("failed to load configuration", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msg})
		return
	}

	records, err := s.generate(r.Context(), cfg, logger)
	if err != nil {
		metrics.HTTPRequestsTotal.WithLabelValues("upstream_error").Inc()
		logger.Error("failed to build onboarding data", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	metrics.HTTPRequestsTotal.WithLabelValues("success").Inc()
	metrics.RecordsServed.Set(float64(len(records)))
	logger.Info("onboarding data served", "count", len(records))

	writeJSON(w, http.StatusOK, successResponse{
		Success: true,
		Data:    records,
		Count:   len(records),
	})
}

func (s *Server) generate(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]onboarding.Record, error) {
	client := asana.NewClient(cfg.Asana.Token,
		asana.WithBaseURL(cfg.Asana.BaseURL),
		asana.WithTimeout(cfg.Asana.Timeout),
		asana.WithLimiter(s.limiter),
	)

	agg, err := onboarding.NewAggregator(client, cfg, logger)
	if err != nil {
		return nil, err
	}
	agg.Now = s.Now

	return agg.Generate(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		s.logger.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}
