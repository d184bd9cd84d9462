package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/Digital-Shane/media-resolver/internal/config"
	"github.com/Digital-Shane/media-resolver/internal/log"
	"github.com/Digital-Shane/media-resolver/internal/media"
	"github.com/Digital-Shane/media-resolver/internal/provider"
	"github.com/google/go-cmp/cmp"
)

func TestReadURLs(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		stdin string
		want  []string
	}{
		{
			name:  "args win over stdin",
			args:  []string{"/media/JW-movie-1", "  ", " /embed/tmdb-movie-2 "},
			stdin: "/ignored\n",
			want:  []string{"/media/JW-movie-1", "/embed/tmdb-movie-2"},
		},
		{
			name:  "stdin lines",
			stdin: "# bookmarks\n/media/tmdb-show-1396\n\n  /about  \n",
			want:  []string{"/media/tmdb-show-1396", "/about"},
		},
		{
			name:  "empty stdin",
			stdin: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readURLs(tt.args, strings.NewReader(tt.stdin))
			if err != nil {
				t.Fatalf("readURLs() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("readURLs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMigrateURLs(t *testing.T) {
	convert := func(_ context.Context, raw string) (string, bool, error) {
		switch raw {
		case "/media/tmdb-show-1396":
			return "/media/tmdb-tv-1396-breaking-bad", true, nil
		case "/media/JW-movie-9":
			return "", false, errors.New("legacy catalog down")
		}
		return "", false, nil
	}

	dir := t.TempDir()
	j, err := log.NewJournal(dir, 0)
	if err != nil {
		t.Fatalf("NewJournal() error = %v", err)
	}
	j.Start("migrate", nil)

	var out bytes.Buffer
	res := migrateURLs(context.Background(), &out, convert, j, []string{
		"/media/tmdb-show-1396",
		"/about",
		"/media/JW-movie-9",
	})

	want := batchResult{Total: 3, Converted: 1, Skipped: 1, Failed: 1}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("migrateURLs() mismatch (-want +got):\n%s", diff)
	}
	if res.err() == nil {
		t.Error("err() = nil with a failed url")
	}
	if !strings.Contains(out.String(), "/media/tmdb-tv-1396-breaking-bad") {
		t.Errorf("output missing converted target:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "legacy catalog down") {
		t.Errorf("output missing failure:\n%s", out.String())
	}

	path, err := j.End()
	if err != nil {
		t.Fatalf("End() error = %v", err)
	}
	s, err := log.ReadSession(path)
	if err != nil {
		t.Fatalf("ReadSession() error = %v", err)
	}
	if s.Metadata.Converted != 1 || s.Metadata.Failed != 1 || len(s.Entries) != 3 {
		t.Errorf("journal metadata = %+v", s.Metadata)
	}
}

func TestMigrateURLsWithoutJournal(t *testing.T) {
	convert := func(context.Context, string) (string, bool, error) { return "/media/x", true, nil }

	res := migrateURLs(context.Background(), io.Discard, convert, nil, []string{"/a", "/b"})
	if res.Converted != 2 || res.err() != nil {
		t.Errorf("migrateURLs() = %+v", res)
	}
}

func TestDecodeIDs(t *testing.T) {
	var out bytes.Buffer
	if err := decodeIDs(&out, []string{"tmdb-tv-1396-breaking-bad", "JW-movie-9"}); err != nil {
		t.Fatalf("decodeIDs() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("decodeIDs() printed %d lines, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "tmdb show 1396") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "not a canonical id") {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestDecodeIDsJSON(t *testing.T) {
	jsonOutput = true
	t.Cleanup(func() { jsonOutput = false })

	var out bytes.Buffer
	if err := decodeIDs(&out, []string{"tmdb-movie-27205-inception", "nope"}); err != nil {
		t.Fatalf("decodeIDs() error = %v", err)
	}
	var got []decodedID
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %s", out.String())
	}
	want := []decodedID{
		{ID: "tmdb-movie-27205-inception", Valid: true, Provider: "tmdb", Type: "movie", NumericID: "27205"},
		{ID: "nope"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("decodeIDs() mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderRecords(t *testing.T) {
	out := renderRecords([]media.Record{
		{Title: "Inception", ID: "27205", Type: media.Movie, Year: "2010"},
		{Title: "Breaking Bad", ID: "1396", Type: media.Series},
		{Title: "No id", Type: media.Movie},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("renderRecords() = %d lines, want header plus 2 rows:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[1], "tmdb-movie-27205-inception") || !strings.Contains(lines[1], "2010") {
		t.Errorf("movie row = %q", lines[1])
	}
	if !strings.Contains(lines[2], "tmdb-tv-1396-breaking-bad") || !strings.Contains(lines[2], "----") {
		t.Errorf("show row = %q", lines[2])
	}

	if got := renderRecords(nil); !strings.Contains(got, "No results") {
		t.Errorf("renderRecords(nil) = %q", got)
	}
}

func TestRenderRecordSeason(t *testing.T) {
	out := renderRecord(&media.Record{
		Title: "Breaking Bad",
		ID:    "1396",
		Type:  media.Series,
		Seasons: []media.Season{
			{ID: "3572", Number: 1, Title: "Season 1"},
		},
		SeasonData: &media.SeasonData{
			ID:     "3572",
			Number: 1,
			Title:  "Season 1",
			Episodes: []media.Episode{
				{Season: 1, Number: 1, Title: "Pilot"},
			},
		},
	})
	for _, want := range []string{"tmdb-tv-1396-breaking-bad", "Season 1", "S01E01", "Pilot"} {
		if !strings.Contains(out, want) {
			t.Errorf("renderRecord() missing %q:\n%s", want, out)
		}
	}
}

func TestTruncateTitle(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"Dune", 10, "Dune"},
		{"The Lord of the Rings", 10, "The Lord …"},
		{"千と千尋の神隠し", 6, "千と…"},
	}
	for _, tt := range tests {
		if got := truncateTitle(tt.in, tt.width); got != tt.want {
			t.Errorf("truncateTitle(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestPrintHistory(t *testing.T) {
	var empty bytes.Buffer
	printHistory(&empty, nil, false)
	if !strings.Contains(empty.String(), "No migration runs") {
		t.Errorf("printHistory(nil) = %q", empty.String())
	}

	sessions := []*log.Session{{
		Metadata: log.SessionMetadata{SessionID: "20261017_101500_000", Total: 2, Converted: 1, Failed: 1},
		Entries: []log.Entry{
			{Source: "/media/tmdb-show-1396", Target: "/media/tmdb-tv-1396-breaking-bad", Converted: true},
			{Source: "/media/JW-movie-9", Error: "legacy catalog down"},
		},
	}}

	var brief, verbose bytes.Buffer
	printHistory(&brief, sessions, false)
	printHistory(&verbose, sessions, true)

	if !strings.Contains(brief.String(), "2 urls: 1 converted, 0 unchanged, 1 failed") {
		t.Errorf("brief history = %q", brief.String())
	}
	if strings.Contains(brief.String(), "legacy catalog down") {
		t.Error("brief history lists entries")
	}
	if !strings.Contains(verbose.String(), "/media/tmdb-tv-1396-breaking-bad") || !strings.Contains(verbose.String(), "legacy catalog down") {
		t.Errorf("verbose history = %q", verbose.String())
	}
}

func TestNewApp(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := config.DefaultConfig()
	if _, err := newApp(cfg, logger); !errors.Is(err, provider.ErrInvalidAPIKey) {
		t.Errorf("newApp() without token error = %v, want ErrInvalidAPIKey", err)
	}

	cfg.TMDBAPIToken = "token"
	a, err := newApp(cfg, logger)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	if a.metadata == nil || a.resolver == nil || a.migrator == nil {
		t.Errorf("newApp() left components unset: %+v", a)
	}
	if err := a.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestCommandsRegistered(t *testing.T) {
	var got []string
	for _, c := range rootCmd.Commands() {
		got = append(got, c.Name())
	}
	for _, want := range []string{"config", "decode", "embed", "history", "lookup", "migrate", "search", "serve"} {
		found := false
		for _, name := range got {
			if name == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("command %q not registered, have %v", want, got)
		}
	}
}

func TestMaskSecret(t *testing.T) {
	tests := map[string]string{
		"":                 "",
		"abc":              "***",
		"eyJhbGciOiJIUzI1": "********UzI1",
	}
	for in, want := range tests {
		if got := maskSecret(in); got != want {
			t.Errorf("maskSecret(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPrintConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.TMDBAPIToken = "supersecrettoken"
	cfg.Locale = "pt_br"
	cfg.Proxies = []string{"https://p1.example", "https://p2.example"}

	var out bytes.Buffer
	if err := printConfig(&out, cfg); err != nil {
		t.Fatalf("printConfig() error = %v", err)
	}
	s := out.String()
	if strings.Contains(s, "supersecrettoken") {
		t.Error("printConfig() leaked the token")
	}
	for _, want := range []string{"********oken", "pt-BR", "https://p1.example, https://p2.example"} {
		if !strings.Contains(s, want) {
			t.Errorf("printConfig() missing %q:\n%s", want, s)
		}
	}
	if cfg.TMDBAPIToken != "supersecrettoken" {
		t.Error("printConfig() modified the config")
	}
}
