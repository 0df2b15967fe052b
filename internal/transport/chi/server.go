// Package chi exposes the catalog over HTTP: public search plus the
// auth-protected ingest and index-status admin surface.
package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/biblioteca-labs/acervo/internal/domain"
	"github.com/biblioteca-labs/acervo/internal/domain/search/criteria"
	"github.com/biblioteca-labs/acervo/internal/domain/search/result"
	healthuc "github.com/biblioteca-labs/acervo/internal/usecase/health"
	ingestuc "github.com/biblioteca-labs/acervo/internal/usecase/ingest"
	searchuc "github.com/biblioteca-labs/acervo/internal/usecase/search"
	statusuc "github.com/biblioteca-labs/acervo/internal/usecase/status"
)

// maxPayloadBytes bounds an ingest request body.
const maxPayloadBytes = 10 << 20 // 10MB

// Error response codes.
const (
	codeUnauthorized  = "unauthorized"
	codeParseError    = "parse_error"
	codeNoCredentials = "missing_credentials"
	codeUnavailable   = "backend_unavailable"
	codeInternalError = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server wires the usecase services to HTTP handlers.
type Server struct {
	search        *searchuc.Service
	ingest        *ingestuc.Service
	status        *statusuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	ingest *ingestuc.Service,
	status *statusuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search: search,
		ingest: ingest,
		status: status,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		verbatimHandler(domain.ErrParse, http.StatusBadRequest, codeParseError),
		verbatimHandler(domain.ErrMissingCredentials, http.StatusServiceUnavailable, codeNoCredentials),
		verbatimHandler(domain.ErrConnectionUnavailable, http.StatusServiceUnavailable, codeUnavailable),
	}
	return s
}

// Register mounts all routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Get("/api/v1/search", s.SearchRecords)
	r.Post("/api/v1/records", s.IngestRecords)
	r.Get("/api/v1/status", s.IndexStatus)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

type searchResultItem struct {
	ID       string  `json:"id"`
	Score    float64 `json:"score"`
	Title    string  `json:"titulo"`
	Author   string  `json:"autor"`
	Year     *int    `json:"anio,omitempty"`
	Category string  `json:"categoria,omitempty"`
	Summary  string  `json:"resumen,omitempty"`
}

type searchResponse struct {
	Total   int64              `json:"total"`
	Results []searchResultItem `json:"results"`
	Error   string             `json:"error,omitempty"`
}

// SearchRecords handles GET /api/v1/search. Backend failures degrade to an
// empty result set with the cause reported in the body, so this endpoint
// never answers 5xx.
func (s *Server) SearchRecords(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	size := 0
	if v := params.Get("size"); v != "" {
		size, _ = strconv.Atoi(v)
	}

	crit := criteria.Criteria{
		FreeText: firstParam(params.Get("q"), params.Get("termino"), params.Get("query")),
		Author:   params.Get("autor"),
		YearFrom: params.Get("anio_desde"),
		YearTo:   params.Get("anio_hasta"),
		PageSize: size,
	}

	records, total, err := s.search.Search(r.Context(), crit)
	if err != nil {
		s.logger.Warn("search degraded", zap.Error(err))
		writeJSON(w, http.StatusOK, searchResponse{
			Results: []searchResultItem{},
			Error:   err.Error(),
		})
		return
	}

	items := make([]searchResultItem, len(records))
	for i := range records {
		items[i] = resultToItem(&records[i])
	}
	writeJSON(w, http.StatusOK, searchResponse{Total: total, Results: items})
}

type rejectionItem struct {
	Offset int    `json:"offset"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

type ingestResponse struct {
	Accepted int             `json:"accepted"`
	Rejected []rejectionItem `json:"rejected"`
}

// IngestRecords handles POST /api/v1/records.
func (s *Server) IngestRecords(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeParseError, "read request body: "+err.Error())
		return
	}

	report, err := s.ingest.Ingest(r.Context(), payload)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	rejected := make([]rejectionItem, len(report.Rejected()))
	for i, rej := range report.Rejected() {
		rejected[i] = rejectionItem{
			Offset: rej.Offset(),
			Reason: string(rej.Reason()),
			Detail: rej.Detail(),
		}
	}
	writeJSON(w, http.StatusOK, ingestResponse{
		Accepted: report.Accepted(),
		Rejected: rejected,
	})
}

type statusResponse struct {
	Index  string `json:"index"`
	Exists bool   `json:"exists"`
	Count  int64  `json:"count"`
	Error  string `json:"error,omitempty"`
}

// IndexStatus handles GET /api/v1/status. A connectivity failure is part of
// the payload (the admin banner), not an HTTP error.
func (s *Server) IndexStatus(w http.ResponseWriter, r *http.Request) {
	ov := s.status.Overview(r.Context())

	resp := statusResponse{Index: ov.Index, Exists: ov.Exists, Count: ov.Count}
	if ov.Err != nil {
		s.logger.Warn("index status degraded", zap.Error(ov.Err))
		resp.Error = ov.Err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func resultToItem(rec *result.Record) searchResultItem {
	item := searchResultItem{
		ID:       rec.ID(),
		Score:    rec.Score(),
		Title:    rec.Title(),
		Author:   rec.Author(),
		Category: rec.Category(),
		Summary:  rec.Summary(),
	}
	if y, ok := rec.Year(); ok {
		item.Year = &y
	}
	return item
}

// firstParam returns the first non-empty value; the search box historically
// arrived under several parameter names.
func firstParam(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// verbatimHandler returns an errorHandler that matches a single sentinel
// error and reports its message verbatim.
func verbatimHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
