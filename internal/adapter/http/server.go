// Package http exposes the assessment service over HTTP: health, readiness
// and metrics endpoints plus the JSON/chart/report assessment API.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/cattlecomfort/thi-service/internal/assessment"
	"github.com/cattlecomfort/thi-service/internal/domain"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// AssessmentService runs assessments and renders their artifacts.
type AssessmentService interface {
	ReadinessChecker
	Assess(ctx context.Context, req assessment.Request) (*assessment.Result, error)
	RenderChart(result *assessment.Result, w io.Writer) error
	ExportReport(result *assessment.Result, w io.Writer) error
}

// Server exposes the assessment API plus health, readiness, and metrics
// HTTP endpoints.
type Server struct {
	httpServer *http.Server
	service    AssessmentService
	logger     *slog.Logger
}

// NewServer creates the HTTP server and its routes. allowedOrigins feeds
// the CORS layer; the API is consumed by a browser frontend.
func NewServer(addr string, service AssessmentService, allowedOrigins []string, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		service: service,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(service))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/index", s.handleIndex)
	mux.HandleFunc("POST /api/v1/assessments", s.handleAssess)
	mux.HandleFunc("POST /api/v1/assessments/chart", s.handleChart)
	mux.HandleFunc("POST /api/v1/assessments/report", s.handleReport)

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	s.httpServer.Handler = c.Handler(mux)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeAssessmentRequest(w, r)
	if !ok {
		return
	}

	result, err := s.service.Assess(r.Context(), req)
	if err != nil {
		s.writeAssessError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newAssessmentResponse(result))
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeAssessmentRequest(w, r)
	if !ok {
		return
	}

	result, err := s.service.Assess(r.Context(), req)
	if err != nil {
		s.writeAssessError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := s.service.RenderChart(result, &buf); err != nil {
		s.logger.Error("chart render failed", "error", err)
		writeError(w, http.StatusInternalServerError, "chart rendering failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck // response already committed
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeAssessmentRequest(w, r)
	if !ok {
		return
	}

	result, err := s.service.Assess(r.Context(), req)
	if err != nil {
		s.writeAssessError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := s.service.ExportReport(result, &buf); err != nil {
		s.logger.Error("report export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "report export failed")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="thermal-comfort-report.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck // response already committed
}

// handleIndex is the manual single-reading mode: THI for one temperature
// and humidity pair, no weather fetch involved.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	temp, ok := parseFloatParam(w, r, "temperature")
	if !ok {
		return
	}
	humidity, ok := parseFloatParam(w, r, "humidity")
	if !ok {
		return
	}
	if humidity < 0 || humidity > 100 {
		writeError(w, http.StatusBadRequest, "humidity must be between 0 and 100")
		return
	}

	index := domain.ComputeIndex(temp, humidity)
	category := domain.Classify(index)
	writeJSON(w, http.StatusOK, indexResponse{
		IndexValue:     index,
		Category:       category.String(),
		Color:          domain.ColorFor(category),
		Recommendation: domain.RecommendationFor(category),
	})
}

func (s *Server) writeAssessError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRange),
		errors.Is(err, assessment.ErrDataNotYetAvailable):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, assessment.ErrNoData):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error("assessment failed", "error", err)
		writeError(w, http.StatusBadGateway, "weather data retrieval failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
