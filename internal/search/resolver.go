// Package search resolves free text and id shaped queries to media records.
package search

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/Digital-Shane/media-resolver/internal/cache"
	"github.com/Digital-Shane/media-resolver/internal/media"
	"github.com/Digital-Shane/media-resolver/internal/metadata"
	"github.com/Digital-Shane/media-resolver/internal/metrics"
	"github.com/Digital-Shane/media-resolver/internal/provider/tmdb"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	resultTTL  = time.Hour
	tracerName = "github.com/Digital-Shane/media-resolver/internal/search"
)

var (
	// tmdb:27205 or tmdb:1396:tv
	idQueryRe = regexp.MustCompile(`(?i)^tmdb:(\d+)(?::(movie|tv))?$`)

	// "Dune year:2021"
	yearQueryRe = regexp.MustCompile(`(?i)(.+?)\s+year:(\d{4})$`)
)

// Query is a single search request.
type Query struct {
	SearchQuery string `json:"searchQuery"`
}

// SameQuery reports whether two queries share a cache entry: equal after
// trimming surrounding whitespace, case sensitive otherwise.
func SameQuery(a, b Query) bool {
	return strings.TrimSpace(a.SearchQuery) == strings.TrimSpace(b.SearchQuery)
}

// Catalog is the subset of *tmdb.Client the resolver needs.
type Catalog interface {
	Details(ctx context.Context, t media.Type, id string) (tmdb.Details, error)
	SearchMulti(ctx context.Context, query string) (*tmdb.SearchResults, error)
}

// Resolver runs searches and memoizes their results for an hour.
type Resolver struct {
	catalog   Catalog
	assembler *metadata.Assembler
	results   *cache.Query[Query, []media.Record]
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewResolver creates a Resolver with an empty result cache.
func NewResolver(c Catalog, a *metadata.Assembler, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	results := cache.New[Query, []media.Record]()
	results.SetCompare(SameQuery)
	return &Resolver{
		catalog:   c,
		assembler: a,
		results:   results,
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
	}
}

// Search resolves q. An id shaped query ("tmdb:27205:movie") is looked up
// directly and, if that fails, searched as text. A trailing "year:2021"
// keeps only results released that year. Results with a poster come first.
// Search errors are returned as is.
func (r *Resolver) Search(ctx context.Context, q Query) ([]media.Record, error) {
	ctx, span := r.tracer.Start(ctx, "search.Search",
		trace.WithAttributes(attribute.String("search.query", q.SearchQuery)))
	defer span.End()

	if cached, ok := r.results.Get(q); ok {
		metrics.SearchCacheTotal.WithLabelValues("hit").Inc()
		span.SetAttributes(attribute.Bool("search.cache_hit", true))
		return cloneRecords(cached), nil
	}
	metrics.SearchCacheTotal.WithLabelValues("miss").Inc()

	text := strings.TrimSpace(q.SearchQuery)

	if m := idQueryRe.FindStringSubmatch(text); m != nil {
		rec, err := r.lookupID(ctx, m[1], m[2])
		if err == nil {
			metrics.SearchShortCircuitTotal.WithLabelValues("resolved").Inc()
			records := []media.Record{*rec}
			r.results.Set(q, records, resultTTL)
			return cloneRecords(records), nil
		}
		metrics.SearchShortCircuitTotal.WithLabelValues("demoted").Inc()
		r.logger.Warn("id lookup failed, searching as text",
			"query", text,
			"error", err)
	}

	var year string
	if m := yearQueryRe.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
		year = m[2]
	}

	page, err := r.catalog.SearchMulti(ctx, text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	records := make([]media.Record, 0, len(page.Results))
	for _, row := range page.Results {
		rec, ok := r.assembler.AssembleResult(row)
		if !ok {
			continue
		}
		if year != "" && rec.Year != year {
			continue
		}
		records = append(records, *rec)
	}
	records = PosterFirst(records)

	span.SetAttributes(attribute.Int("search.results", len(records)))
	r.results.Set(q, records, resultTTL)
	return cloneRecords(records), nil
}

func (r *Resolver) lookupID(ctx context.Context, id, kind string) (*media.Record, error) {
	t := media.Movie
	if kind != "" {
		parsed, err := media.ParseProviderType(strings.ToLower(kind))
		if err != nil {
			return nil, err
		}
		t = parsed
	}
	details, err := r.catalog.Details(ctx, t, id)
	if err != nil {
		return nil, err
	}
	return r.assembler.Assemble(details, t, nil)
}

// cloneRecords keeps callers from reaching into cached records.
func cloneRecords(records []media.Record) []media.Record {
	out := make([]media.Record, len(records))
	for i, rec := range records {
		out[i] = rec.Clone()
	}
	return out
}

// PosterFirst stably moves records with a poster ahead of those without.
func PosterFirst(records []media.Record) []media.Record {
	out := make([]media.Record, 0, len(records))
	for _, rec := range records {
		if rec.Poster != "" {
			out = append(out, rec)
		}
	}
	for _, rec := range records {
		if rec.Poster == "" {
			out = append(out, rec)
		}
	}
	return out
}
