// Package http serves run reports over a read-only JSON API.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/aretw0/roadtest/internal/logging"
	"github.com/aretw0/roadtest/pkg/domain"
	"github.com/aretw0/roadtest/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultListLimit caps /reports when no limit is given.
const DefaultListLimit = 100

// Server implements ServerInterface over a ReportStore.
type Server struct {
	Store   ports.ReportStore
	Version string
	Logger  *slog.Logger
}

var _ ServerInterface = (*Server)(nil)

// Option configures the handler.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	version  string
	gatherer prometheus.Gatherer
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithVersion sets the version reported by /info.
func WithVersion(v string) Option {
	return func(o *options) { o.version = v }
}

// WithMetrics exposes g on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(o *options) { o.gatherer = g }
}

// NewHandler creates the HTTP handler serving reports from store.
func NewHandler(store ports.ReportStore, opts ...Option) (http.Handler, error) {
	o := options{logger: logging.NewNop(), version: "dev"}
	for _, opt := range opts {
		opt(&o)
	}

	doc, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	validate, err := requestValidator(doc, o.logger)
	if err != nil {
		return nil, err
	}

	server := &Server{Store: store, Version: o.version, Logger: o.logger}
	r := chi.NewRouter()
	r.Use(enableCORS, validate)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	if o.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(o.gatherer, promhttp.HandlerOpts{}))
	}

	return HandlerFromMux(server, r, func(w http.ResponseWriter, r *http.Request, err error) {
		writeError(w, http.StatusBadRequest, err.Error())
	}), nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.Version})
}

// ListReports handles GET /reports.
func (s *Server) ListReports(w http.ResponseWriter, r *http.Request, params ListReportsParams) {
	reports, err := LoadReports(r.Context(), s.Store)
	if err != nil {
		s.Logger.Error("ListReports: store failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}

	limit := DefaultListLimit
	if params.Limit != nil {
		limit = *params.Limit
	}
	out := make([]*domain.Report, 0, len(reports))
	for _, rep := range reports {
		if params.Scenario != nil && rep.Scenario != *params.Scenario {
			continue
		}
		if params.Outcome != nil && string(rep.Outcome) != *params.Outcome {
			continue
		}
		out = append(out, rep)
		if len(out) == limit {
			break
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// GetReport handles GET /reports/{id}.
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request, id string) {
	rep, err := s.Store.Load(r.Context(), id)
	if errors.Is(err, domain.ErrReportNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.Logger.Error("GetReport: store failed", "report_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load report")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// sortNewestFirst orders reports by start time, newest first, breaking ties by ID.
func sortNewestFirst(reports []*domain.Report) {
	sort.Slice(reports, func(i, j int) bool {
		a, b := reports[i], reports[j]
		if !a.StartedAt.Equal(b.StartedAt) {
			return a.StartedAt.After(b.StartedAt)
		}
		return a.ID < b.ID
	})
}
