// Package chi exposes the query engine over HTTP: one QA endpoint plus a
// small REST surface for direct catalog access, health and metrics.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tonehall/catalogqa/internal/domain"
	"github.com/tonehall/catalogqa/internal/logger"
	"github.com/tonehall/catalogqa/internal/metrics"
	healthuc "github.com/tonehall/catalogqa/internal/usecase/health"
)

const defaultSimilarLimit = 5

// engine is the consumer interface over the query pipeline.
type engine interface {
	Answer(ctx context.Context, query string) domain.AnswerResult
	Similar(ctx context.Context, model string, limit int) domain.AnswerResult
}

// catalog is the consumer interface for direct store access.
type catalog interface {
	Lookup(ctx context.Context, model string) (domain.Product, error)
	Search(ctx context.Context, query string, filters domain.SearchFilters) ([]domain.RetrievalCandidate, error)
}

// healthChecker aggregates component health.
type healthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server is the HTTP API server.
type Server struct {
	engine  engine
	catalog catalog
	health  healthChecker
	logger  *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(eng engine, cat catalog, health healthChecker, logger *zap.Logger) *Server {
	return &Server{
		engine:  eng,
		catalog: cat,
		health:  health,
		logger:  logger,
	}
}

// Routes builds the router with the standard middleware chain.
func (s *Server) Routes() http.Handler {
	r := chirouter.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(metrics.Middleware())

	r.Post("/query", s.Query)
	r.Get("/products/{model}", s.GetProduct)
	r.Get("/search", s.SearchProducts)
	r.Get("/similar/{model}", s.SimilarProducts)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	return r
}

// Query handles POST /query. It always answers 200 with a structured
// AnswerResult; failures inside the pipeline surface as coded abstentions,
// not HTTP errors.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Query text is required")
		return
	}

	result := s.engine.Answer(r.Context(), req.Query)
	writeJSON(w, http.StatusOK, result)
}

// GetProduct handles GET /products/{model}.
func (s *Server) GetProduct(w http.ResponseWriter, r *http.Request) {
	model := chirouter.URLParam(r, "model")

	p, err := s.catalog.Lookup(r.Context(), model)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, productToDTO(&p))
}

// SearchProducts handles GET /search with structured filters in the query
// string: q, category, series, voltage, min_watts, max_watts.
func (s *Server) SearchProducts(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	var q string
	if err := runtime.BindQueryParameter("form", true, false, "q", params, &q); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid q parameter")
		return
	}
	if q == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Search text q is required")
		return
	}

	var filters domain.SearchFilters
	if err := bindFilters(params, &filters); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	candidates, err := s.catalog.Search(r.Context(), q, filters)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]SearchResultItem, len(candidates))
	for i := range candidates {
		items[i] = candidateToDTO(&candidates[i])
	}
	writeJSON(w, http.StatusOK, SearchResponse{Items: items})
}

// SimilarProducts handles GET /similar/{model}. An unknown reference model
// maps to 404; all other outcomes answer 200 with the composed result.
func (s *Server) SimilarProducts(w http.ResponseWriter, r *http.Request) {
	model := chirouter.URLParam(r, "model")

	var limitPtr *int
	if err := runtime.BindQueryParameter(
		"form", true, false, "limit", r.URL.Query(), &limitPtr); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid limit parameter")
		return
	}
	limit := defaultSimilarLimit
	if limitPtr != nil && *limitPtr > 0 {
		limit = *limitPtr
	}

	result := s.engine.Similar(r.Context(), model, limit)
	if result.Code == domain.CodeInvalidModel {
		writeError(w, http.StatusNotFound, string(domain.CodeInvalidModel), safeDomainMessage(domain.ErrProductNotFound))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// requestLogger stores a request-scoped logger in the context so that
// deeper handlers log with the request ID attached.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := s.logger
		if id := middleware.GetReqID(r.Context()); id != "" {
			l = l.With(zap.String("request_id", id))
		}
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context(), l)))
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// bindFilters binds the optional structured filter parameters.
func bindFilters(params map[string][]string, f *domain.SearchFilters) error {
	if err := runtime.BindQueryParameter("form", true, false, "category", params, &f.Category); err != nil {
		return errors.New("invalid category parameter")
	}
	if err := runtime.BindQueryParameter("form", true, false, "series", params, &f.Series); err != nil {
		return errors.New("invalid series parameter")
	}
	if err := runtime.BindQueryParameter("form", true, false, "voltage", params, &f.VoltageClass); err != nil {
		return errors.New("invalid voltage parameter")
	}
	if err := runtime.BindQueryParameter("form", true, false, "min_watts", params, &f.MinWatts); err != nil {
		return errors.New("invalid min_watts parameter")
	}
	if err := runtime.BindQueryParameter("form", true, false, "max_watts", params, &f.MaxWatts); err != nil {
		return errors.New("invalid max_watts parameter")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrProductNotFound,
		domain.ErrNoEvidence,
		domain.ErrUpstreamTimeout,
		domain.ErrProviderError,
		domain.ErrVectorDimMismatch,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	l := logger.FromContext(r.Context())
	l.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)

	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		writeError(w, http.StatusNotFound, string(domain.CodeInvalidModel), msg)
	case errors.Is(err, domain.ErrUpstreamTimeout):
		writeError(w, http.StatusGatewayTimeout, string(domain.CodeUpstreamTimeout), msg)
	case errors.Is(err, domain.ErrProviderError):
		writeError(w, http.StatusBadGateway, "PROVIDER_ERROR", msg)
	default:
		l.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
	}
}
