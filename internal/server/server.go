// Package server exposes search, lookup and URL migration over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Digital-Shane/media-resolver/internal/media"
	"github.com/Digital-Shane/media-resolver/internal/migrate"
	"github.com/Digital-Shane/media-resolver/internal/provider"
	"github.com/Digital-Shane/media-resolver/internal/search"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxQueryLength = 500

type Searcher interface {
	Search(ctx context.Context, q search.Query) ([]media.Record, error)
}

type Migrator interface {
	Convert(ctx context.Context, raw string) (string, bool, error)
}

type Lookup interface {
	LookupID(ctx context.Context, id, seasonID string) (*media.Record, bool, error)
}

// Server routes requests to the resolver components.
type Server struct {
	search   Searcher
	migrate  Migrator
	lookup   Lookup
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGatherer selects the registry /metrics serves. The default registry is
// used otherwise.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

func New(searcher Searcher, migrator Migrator, lookup Lookup, opts ...Option) *Server {
	s := &Server{
		search:   searcher,
		migrate:  migrator,
		lookup:   lookup,
		logger:   slog.Default(),
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// record is a media.Record with its canonical id alongside.
type record struct {
	CanonicalID media.ID `json:"canonical_id"`
	media.Record
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware, s.loggingMiddleware, metricsMiddleware)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	r.HandleFunc("/migrate", s.handleMigrate).Methods(http.MethodGet)
	r.HandleFunc("/media/{id}", s.handleMedia).Methods(http.MethodGet)

	traced := otelhttp.NewHandler(r, "media-resolver",
		otelhttp.WithFilter(func(r *http.Request) bool {
			p := r.URL.Path
			return p != "/metrics" && p != "/healthz"
		}),
	)
	return recoveryMiddleware(s.logger, traced)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "query parameter q is required")
		return
	}
	if len(q) > maxQueryLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "query is too long")
		return
	}

	records, err := s.search.Search(r.Context(), search.Query{SearchQuery: q})
	if err != nil {
		s.logger.Warn("search failed", "query", q, "error", err)
		writeError(w, http.StatusBadGateway, "upstream_error", "catalog search failed")
		return
	}

	out := make([]record, 0, len(records))
	for _, rec := range records {
		id, err := rec.CanonicalID()
		if err != nil {
			continue
		}
		out = append(out, record{CanonicalID: id, Record: rec})
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": out})
}

func (s *Server) handleMigrate(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if strings.TrimSpace(raw) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "query parameter url is required")
		return
	}

	target, ok, err := s.migrate.Convert(r.Context(), raw)
	if err != nil {
		s.logger.Warn("migration failed", "url", raw, "error", err)
		writeError(w, http.StatusBadGateway, "upstream_error", "migration lookup failed")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "not_migratable", migrate.ErrNotMigratable.Error())
		return
	}

	if r.URL.Query().Get("redirect") == "1" {
		http.Redirect(w, r, target, http.StatusPermanentRedirect)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": target})
}

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, ok, err := s.lookup.LookupID(r.Context(), id, r.URL.Query().Get("season"))
	switch {
	case !ok:
		writeError(w, http.StatusNotFound, "invalid_id", "id is not a canonical media id")
		return
	case provider.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", "media not found")
		return
	case errors.Is(err, media.ErrUnsupportedType):
		writeError(w, http.StatusUnprocessableEntity, "unsupported_type", err.Error())
		return
	case err != nil:
		s.logger.Warn("lookup failed", "id", id, "error", err)
		writeError(w, http.StatusBadGateway, "upstream_error", "catalog lookup failed")
		return
	}

	canonical, err := rec.CanonicalID()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, record{CanonicalID: canonical, Record: *rec})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
