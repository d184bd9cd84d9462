package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Digital-Shane/media-resolver/internal/media"
	"github.com/Digital-Shane/media-resolver/internal/provider"
	"github.com/Digital-Shane/media-resolver/internal/search"
	"github.com/prometheus/client_golang/prometheus"
)

type mockSearcher struct {
	search func(q search.Query) ([]media.Record, error)
}

func (m *mockSearcher) Search(_ context.Context, q search.Query) ([]media.Record, error) {
	return m.search(q)
}

type mockMigrator struct {
	convert func(raw string) (string, bool, error)
}

func (m *mockMigrator) Convert(_ context.Context, raw string) (string, bool, error) {
	return m.convert(raw)
}

type mockLookup struct {
	lookup func(id, season string) (*media.Record, bool, error)
}

func (m *mockLookup) LookupID(_ context.Context, id, season string) (*media.Record, bool, error) {
	return m.lookup(id, season)
}

func newTestServer(s Searcher, m Migrator, l Lookup) http.Handler {
	if s == nil {
		s = &mockSearcher{search: func(search.Query) ([]media.Record, error) { return nil, nil }}
	}
	if m == nil {
		m = &mockMigrator{convert: func(string) (string, bool, error) { return "", false, nil }}
	}
	if l == nil {
		l = &mockLookup{lookup: func(string, string) (*media.Record, bool, error) { return nil, false, nil }}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(s, m, l, WithLogger(logger), WithGatherer(prometheus.NewRegistry())).Handler()
}

func do(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not JSON: %s", rec.Body.String())
	}
	return body.Error.Code
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(nil, nil, nil), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestSearch(t *testing.T) {
	var got search.Query
	s := &mockSearcher{search: func(q search.Query) ([]media.Record, error) {
		got = q
		return []media.Record{
			{Title: "Inception", ID: "27205", Type: media.Movie, Year: "2010"},
			{Title: "Broken", ID: "", Type: media.Movie},
		}, nil
	}}

	rec := do(t, newTestServer(s, nil, nil), "/search?q=inception")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if got.SearchQuery != "inception" {
		t.Errorf("query = %q, want inception", got.SearchQuery)
	}

	var body struct {
		Results []struct {
			CanonicalID string `json:"canonical_id"`
			Title       string `json:"title"`
			Type        string `json:"type"`
		} `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Results) != 1 {
		t.Fatalf("results = %d, want 1 (record without id dropped)", len(body.Results))
	}
	if body.Results[0].CanonicalID != "tmdb-movie-27205-inception" {
		t.Errorf("canonical_id = %q", body.Results[0].CanonicalID)
	}
}

func TestSearchErrors(t *testing.T) {
	tests := map[string]struct {
		target     string
		err        error
		wantStatus int
		wantCode   string
	}{
		"missing query": {target: "/search", wantStatus: http.StatusBadRequest, wantCode: "invalid_request"},
		"blank query":   {target: "/search?q=%20%20", wantStatus: http.StatusBadRequest, wantCode: "invalid_request"},
		"too long":      {target: "/search?q=" + strings.Repeat("a", maxQueryLength+1), wantStatus: http.StatusBadRequest, wantCode: "invalid_request"},
		"upstream":      {target: "/search?q=dune", err: errors.New("down"), wantStatus: http.StatusBadGateway, wantCode: "upstream_error"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := &mockSearcher{search: func(search.Query) ([]media.Record, error) { return nil, tt.err }}
			rec := do(t, newTestServer(s, nil, nil), tt.target)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if code := errorCode(t, rec); code != tt.wantCode {
				t.Errorf("code = %q, want %q", code, tt.wantCode)
			}
		})
	}
}

func TestMigrate(t *testing.T) {
	m := &mockMigrator{convert: func(raw string) (string, bool, error) {
		switch raw {
		case "/media/tmdb-show-1396":
			return "/media/tmdb-tv-1396-breaking-bad", true, nil
		case "/media/JW-movie-9":
			return "", false, errors.New("legacy down")
		}
		return "", false, nil
	}}
	h := newTestServer(nil, m, nil)

	tests := map[string]struct {
		target     string
		wantStatus int
		wantBody   string
		wantLoc    string
	}{
		"converted":   {target: "/migrate?url=/media/tmdb-show-1396", wantStatus: http.StatusOK, wantBody: `"url":"/media/tmdb-tv-1396-breaking-bad"`},
		"redirect":    {target: "/migrate?url=/media/tmdb-show-1396&redirect=1", wantStatus: http.StatusPermanentRedirect, wantLoc: "/media/tmdb-tv-1396-breaking-bad"},
		"unknown":     {target: "/migrate?url=/about", wantStatus: http.StatusNotFound, wantBody: "not_migratable"},
		"upstream":    {target: "/migrate?url=/media/JW-movie-9", wantStatus: http.StatusBadGateway, wantBody: "upstream_error"},
		"missing url": {target: "/migrate", wantStatus: http.StatusBadRequest, wantBody: "invalid_request"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rec := do(t, h, tt.target)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %s, want it to contain %s", rec.Body.String(), tt.wantBody)
			}
			if tt.wantLoc != "" && rec.Header().Get("Location") != tt.wantLoc {
				t.Errorf("Location = %q, want %q", rec.Header().Get("Location"), tt.wantLoc)
			}
		})
	}
}

func TestMedia(t *testing.T) {
	type call struct{ id, season string }
	var calls []call
	l := &mockLookup{lookup: func(id, season string) (*media.Record, bool, error) {
		calls = append(calls, call{id, season})
		switch id {
		case "tmdb-tv-1396-breaking-bad":
			return &media.Record{Title: "Breaking Bad", ID: "1396", Type: media.Series}, true, nil
		case "tmdb-movie-404":
			return nil, true, &provider.ProviderError{Code: provider.CodeNotFound, Message: "missing"}
		case "tmdb-movie-500":
			return nil, true, errors.New("down")
		}
		return nil, false, nil
	}}
	h := newTestServer(nil, nil, l)

	tests := map[string]struct {
		target     string
		wantStatus int
		wantBody   string
	}{
		"found":     {target: "/media/tmdb-tv-1396-breaking-bad?season=3572", wantStatus: http.StatusOK, wantBody: `"canonical_id":"tmdb-tv-1396-breaking-bad"`},
		"malformed": {target: "/media/JW-movie-9", wantStatus: http.StatusNotFound, wantBody: "invalid_id"},
		"not found": {target: "/media/tmdb-movie-404", wantStatus: http.StatusNotFound, wantBody: "not_found"},
		"upstream":  {target: "/media/tmdb-movie-500", wantStatus: http.StatusBadGateway, wantBody: "upstream_error"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rec := do(t, h, tt.target)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %s, want it to contain %s", rec.Body.String(), tt.wantBody)
			}
		})
	}

	if want := (call{"tmdb-tv-1396-breaking-bad", "3572"}); calls[0] != want {
		t.Errorf("first lookup = %+v, want %+v", calls[0], want)
	}
}

func TestRequestID(t *testing.T) {
	h := newTestServer(nil, nil, nil)

	rec := do(t, h, "/healthz")
	if id := rec.Header().Get(requestIDHeader); len(id) != 36 {
		t.Errorf("generated request id = %q, want a uuid", id)
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if id := rec.Header().Get(requestIDHeader); id != "abc-123" {
		t.Errorf("request id = %q, want caller supplied abc-123", id)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(nil, nil, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/search?q=x", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := recoveryMiddleware(logger, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestPickRequestLogLevel(t *testing.T) {
	tests := []struct {
		path   string
		status int
		want   slog.Level
	}{
		{"/search", 200, slog.LevelInfo},
		{"/healthz", 200, slog.LevelDebug},
		{"/media/x", 404, slog.LevelWarn},
		{"/search", 502, slog.LevelError},
	}
	for _, tt := range tests {
		if got := pickRequestLogLevel(tt.path, tt.status); got != tt.want {
			t.Errorf("pickRequestLogLevel(%q, %d) = %v, want %v", tt.path, tt.status, got, tt.want)
		}
	}
}
