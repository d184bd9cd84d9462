package log

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestJournalSession(t *testing.T) {
	dir := t.TempDir()
	j, err := NewJournal(dir, 30)
	if err != nil {
		t.Fatalf("NewJournal() error = %v", err)
	}

	j.Start("migrate", []string{"bookmarks.txt"})
	j.Record("/media/JW-movie-122", "/media/tmdb-movie-27205-inception", true, nil)
	j.Record("/about", "", false, nil)
	j.Record("/media/JW-movie-9", "", false, errors.New("legacy catalog down"))

	path, err := j.End()
	if err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("session written to %q, want inside %q", path, dir)
	}

	s, err := ReadSession(path)
	if err != nil {
		t.Fatalf("ReadSession() error = %v", err)
	}

	wantMeta := SessionMetadata{
		CommandArgs: []string{"migrate", "bookmarks.txt"},
		Total:       3,
		Converted:   1,
		Skipped:     1,
		Failed:      1,
	}
	if diff := cmp.Diff(wantMeta, s.Metadata, cmpopts.IgnoreFields(SessionMetadata{}, "Timestamp", "SessionID")); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}

	wantEntries := []Entry{
		{Source: "/media/JW-movie-122", Target: "/media/tmdb-movie-27205-inception", Converted: true},
		{Source: "/about"},
		{Source: "/media/JW-movie-9", Error: "legacy catalog down"},
	}
	if diff := cmp.Diff(wantEntries, s.Entries, cmpopts.IgnoreFields(Entry{}, "ID", "Timestamp")); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestJournalRecordWithoutSession(t *testing.T) {
	j, _ := NewJournal(t.TempDir(), 0)
	j.Record("/a", "/b", true, nil)

	path, err := j.End()
	if err != nil || path != "" {
		t.Errorf("End() without Start = %q, %v; want empty, nil", path, err)
	}
}

func TestJournalSessionsNewestFirst(t *testing.T) {
	dir := t.TempDir()
	j, _ := NewJournal(dir, 0)

	for _, arg := range []string{"first", "second"} {
		j.Start("migrate", []string{arg})
		if _, err := j.End(); err != nil {
			t.Fatalf("End() error = %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}

	sessions, err := j.Sessions(0)
	if err != nil {
		t.Fatalf("Sessions() error = %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("Sessions() = %d, want 2 (corrupt file skipped)", len(sessions))
	}
	if sessions[0].Metadata.CommandArgs[1] != "second" {
		t.Errorf("newest session = %v, want second", sessions[0].Metadata.CommandArgs)
	}

	limited, _ := j.Sessions(1)
	if len(limited) != 1 {
		t.Errorf("Sessions(1) = %d, want 1", len(limited))
	}
}

func TestJournalRetention(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.json")
	fresh := filepath.Join(dir, "fresh.json")
	for _, p := range []string{old, fresh} {
		if err := os.WriteFile(p, []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().AddDate(0, 0, -10)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	if _, err := NewJournal(dir, 7); err != nil {
		t.Fatalf("NewJournal() error = %v", err)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("old session survived retention cleanup")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("fresh session was removed")
	}
}

func TestJournalMissingDir(t *testing.T) {
	j, err := NewJournal(filepath.Join(t.TempDir(), "none"), 5)
	if err != nil {
		t.Fatalf("NewJournal() error = %v", err)
	}
	sessions, err := j.Sessions(0)
	if err != nil || len(sessions) != 0 {
		t.Errorf("Sessions() = %v, %v; want empty", sessions, err)
	}
}

func TestRelativeTime(t *testing.T) {
	tests := map[string]struct {
		ago  time.Duration
		want string
	}{
		"now":     {ago: 10 * time.Second, want: "just now"},
		"minute":  {ago: 90 * time.Second, want: "1 minute ago"},
		"minutes": {ago: 5 * time.Minute, want: "5 minutes ago"},
		"hours":   {ago: 3 * time.Hour, want: "3 hours ago"},
		"day":     {ago: 30 * time.Hour, want: "1 day ago"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := RelativeTime(time.Now().Add(-tt.ago)); got != tt.want {
				t.Errorf("RelativeTime() = %q, want %q", got, tt.want)
			}
		})
	}
}
