// Package chi implements the HTTP API on the chi router.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/corvusec/newsdex/internal/domain"
	"github.com/corvusec/newsdex/internal/domain/search/filter"
	"github.com/corvusec/newsdex/internal/domain/search/mode"
	"github.com/corvusec/newsdex/internal/domain/search/request"
	logpkg "github.com/corvusec/newsdex/internal/logger"
	fulltextuc "github.com/corvusec/newsdex/internal/usecase/fulltext"
	healthuc "github.com/corvusec/newsdex/internal/usecase/health"
	queryuc "github.com/corvusec/newsdex/internal/usecase/query"
	schemauc "github.com/corvusec/newsdex/internal/usecase/schema"
	valuesuc "github.com/corvusec/newsdex/internal/usecase/values"
)

// ErrorCode is a machine-readable error discriminator.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest        ErrorCode = "bad_request"
	CodeValidationFailed  ErrorCode = "validation_failed"
	CodeFieldNotFound     ErrorCode = "field_not_found"
	CodeArticleNotFound   ErrorCode = "article_not_found"
	CodeSourceUnavailable ErrorCode = "source_unavailable"
	CodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the error body shape.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the search operations over HTTP.
type Server struct {
	schema        *schemauc.Service
	values        *valuesuc.Service
	query         *queryuc.Service
	fulltext      *fulltextuc.Service
	health         *healthuc.Service
	logger         *zap.Logger
	metricsHandler http.Handler
	errorHandlers  []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	schema *schemauc.Service,
	values *valuesuc.Service,
	query *queryuc.Service,
	fulltext *fulltextuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		schema:         schema,
		values:         values,
		query:          query,
		fulltext:       fulltext,
		health:         health,
		logger:         logger,
		metricsHandler: promhttp.Handler(),
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrFieldNotFound, http.StatusNotFound, CodeFieldNotFound),
		sentinelHandler(domain.ErrArticleNotFound, http.StatusNotFound, CodeArticleNotFound),
		sentinelHandler(domain.ErrInvalidSince, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrSourceUnavailable, http.StatusServiceUnavailable, CodeSourceUnavailable),
	}
	return s
}

// Routes registers all endpoints on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Get("/show_searchable_fields", s.ShowSearchableFields)
	r.Get("/get_field_values/{field}", s.GetFieldValues)
	r.Post("/query_articles", s.QueryArticles)
	// Article ids are storage paths containing slashes, so the id segment
	// is a wildcard.
	r.Get("/get_article_details/*", s.GetArticleDetails)
	r.Post("/search_full_text", s.SearchFullText)
}

// ShowSearchableFields handles GET /show_searchable_fields.
func (s *Server) ShowSearchableFields(w http.ResponseWriter, r *http.Request) {
	report, err := s.schema.ListFields(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GetFieldValues handles GET /get_field_values/{field}.
func (s *Server) GetFieldValues(w http.ResponseWriter, r *http.Request) {
	field := chi.URLParam(r, "field")
	if field == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "field name is required")
		return
	}
	report, err := s.values.FieldValues(r.Context(), field, r.URL.Query().Get("search_term"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// QueryArticles handles POST /query_articles.
func (s *Server) QueryArticles(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	filters, err := decodeFilters(req.Filters)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	q, err := request.NewQuery(filter.New(filters), req.SinceDate, req.Limit, boolOr(req.SummaryMode, true))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp, err := s.query.Search(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetArticleDetails handles GET /get_article_details/{id...}.
func (s *Server) GetArticleDetails(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "*")
	if unescaped, err := url.PathUnescape(id); err == nil {
		id = unescaped
	}

	a, err := s.query.Details(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// SearchFullText handles POST /search_full_text.
func (s *Server) SearchFullText(w http.ResponseWriter, r *http.Request) {
	var req fulltextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	filters, err := decodeFilters(req.Filters)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	t, err := request.NewText(
		req.Query,
		mode.Mode(req.SearchMode),
		filter.New(filters),
		req.SinceDate,
		req.CaseSensitive,
		req.WholeWord,
		req.Limit,
		boolOr(req.Highlight, true),
	)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSince) {
			s.handleDomainError(w, r, err)
			return
		}
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	resp, err := s.fulltext.Search(r.Context(), t)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.StatusOK {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	s.metricsHandler.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrFieldNotFound,
		domain.ErrArticleNotFound,
		domain.ErrInvalidSince,
		domain.ErrSourceUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel
// error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	// The request-scoped logger carries request_id; fall back to the
	// server logger outside the middleware chain.
	log := logpkg.FromContextOr(r.Context(), s.logger)

	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
