// Package chi is the HTTP presentation layer over the analysis pipeline.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nomen-research/nomen/internal/domain"
	"github.com/nomen-research/nomen/internal/domain/schema"
	"github.com/nomen-research/nomen/internal/metrics"
	"github.com/nomen-research/nomen/internal/usecase/pipeline"
	"github.com/nomen-research/nomen/internal/version"
)

// SchemaReader exposes stored domain declarations.
type SchemaReader interface {
	Schema(ctx context.Context, domainTag string) (schema.Schema, error)
	Domains(ctx context.Context) ([]string, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves analysis runs and domain metadata over HTTP.
type Server struct {
	runner        pipeline.Runner
	schemas       SchemaReader
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates the HTTP API server.
func NewServer(runner pipeline.Runner, schemas SchemaReader, logger *zap.Logger) *Server {
	s := &Server{runner: runner, schemas: schemas, logger: logger}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrDomainNotFound, http.StatusNotFound, "domain_not_found"),
		sentinelHandler(domain.ErrEntityNotFound, http.StatusNotFound, "entity_not_found"),
		sentinelHandler(domain.ErrInsufficientSample, http.StatusBadRequest, "insufficient_sample"),
		sentinelHandler(domain.ErrSchemaMismatch, http.StatusBadRequest, "schema_mismatch"),
		sentinelHandler(domain.ErrSchemaCollision, http.StatusBadRequest, "schema_collision"),
		sentinelHandler(domain.ErrInvalidSchema, http.StatusBadRequest, "invalid_schema"),
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, "invalid_input"),
	}
	return s
}

// Router builds the chi router with logging and metrics middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/v1", func(r chi.Router) {
		r.Get("/domains", s.handleDomains)
		r.Get("/domains/{tag}/schema", s.handleSchema)
		r.Post("/domains/{tag}/analyze", s.handleAnalyze)
	})
	return r
}

// --- Request/response DTOs ---

type analyzeEntity struct {
	Name    string  `json:"name"`
	ID      string  `json:"id,omitempty"`
	Outcome float64 `json:"outcome"`
}

type analyzeRequest struct {
	Entities []analyzeEntity `json:"entities"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type domainsResponse struct {
	Domains []string `json:"domains"`
}

type schemaField struct {
	Name     string  `json:"name"`
	Fallback float64 `json:"fallback"`
}

type schemaResponse struct {
	Domain string        `json:"domain"`
	Fields []schemaField `json:"fields"`
}

// --- Handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: version.Version})
}

func (s *Server) handleDomains(w http.ResponseWriter, r *http.Request) {
	tags, err := s.schemas.Domains(r.Context())
	if err != nil {
		s.writeError(w, err, "list domains")
		return
	}
	s.writeJSON(w, http.StatusOK, domainsResponse{Domains: tags})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	sch, err := s.schemas.Schema(r.Context(), tag)
	if err != nil {
		s.writeError(w, err, "load schema")
		return
	}

	fields := sch.Fields()
	resp := schemaResponse{Domain: sch.Tag(), Fields: make([]schemaField, len(fields))}
	for i, f := range fields {
		resp.Fields[i] = schemaField{Name: f.Name(), Fallback: f.Fallback()}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			Code: "invalid_body", Message: "malformed JSON body",
		})
		return
	}

	inputs := make([]pipeline.Input, 0, len(req.Entities))
	for _, e := range req.Entities {
		entity, err := domain.NewEntity(e.Name, tag, e.ID)
		if err != nil {
			s.writeError(w, err, "build entity")
			return
		}
		inputs = append(inputs, pipeline.Input{Entity: entity, Outcome: e.Outcome})
	}

	rep, err := s.runner.Run(r.Context(), tag, inputs)
	if err != nil {
		s.writeError(w, err, "run analysis")
		return
	}
	s.writeJSON(w, http.StatusOK, rep)
}

// --- Error mapping ---

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeJSONRaw(w, status, errorResponse{Code: code, Message: err.Error()})
		return true
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error, op string) {
	for _, handle := range s.errorHandlers {
		if handle(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.String("op", op), zap.Error(err))
	writeJSONRaw(w, http.StatusInternalServerError, errorResponse{
		Code: "internal", Message: fmt.Sprintf("%s failed", op),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	writeJSONRaw(w, status, v)
}

func writeJSONRaw(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
