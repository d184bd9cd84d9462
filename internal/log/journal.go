package log

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Entry records a single URL migration.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Target    string    `json:"target,omitempty"`
	Converted bool      `json:"converted"`
	Error     string    `json:"error,omitempty"`
}

type SessionMetadata struct {
	CommandArgs []string  `json:"command_args"`
	Timestamp   time.Time `json:"timestamp"`
	SessionID   string    `json:"session_id"`
	Total       int       `json:"total"`
	Converted   int       `json:"converted"`
	Skipped     int       `json:"skipped"`
	Failed      int       `json:"failed"`
}

// Session is one run of a batch migration.
type Session struct {
	Metadata SessionMetadata `json:"metadata"`
	Entries  []Entry         `json:"entries"`
}

// Journal writes sessions as JSON files under a directory.
type Journal struct {
	dir string

	mu      sync.Mutex
	current *Session
}

// DefaultJournalDir is ~/.media-resolver/journal.
func DefaultJournalDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".media-resolver", "journal"), nil
}

// NewJournal creates a journal rooted at dir and removes sessions older than
// retentionDays. A non-positive retention keeps everything.
func NewJournal(dir string, retentionDays int) (*Journal, error) {
	j := &Journal{dir: dir}
	if retentionDays > 0 {
		if err := j.cleanup(retentionDays); err != nil {
			return nil, err
		}
	}
	return j, nil
}

// Start begins a new session, discarding any unfinished one.
func (j *Journal) Start(command string, args []string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := time.Now()
	j.current = &Session{
		Metadata: SessionMetadata{
			CommandArgs: append([]string{command}, args...),
			Timestamp:   now,
			SessionID:   fmt.Sprintf("%s_%03d", now.Format("20060102_150405"), now.Nanosecond()/int(time.Millisecond)),
		},
		Entries: []Entry{},
	}
}

// Record appends a migration result to the current session. It is a no-op
// when no session is open.
func (j *Journal) Record(source, target string, converted bool, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.current == nil {
		return
	}
	e := Entry{
		ID:        fmt.Sprintf("%s_%d", j.current.Metadata.SessionID, len(j.current.Entries)),
		Timestamp: time.Now(),
		Source:    source,
		Target:    target,
		Converted: converted,
	}
	if err != nil {
		e.Error = err.Error()
	}
	j.current.Entries = append(j.current.Entries, e)
}

// End writes the current session to disk and returns its path.
func (j *Journal) End() (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.current == nil {
		return "", nil
	}
	s := j.current
	j.current = nil

	m := &s.Metadata
	m.Total = len(s.Entries)
	for _, e := range s.Entries {
		switch {
		case e.Error != "":
			m.Failed++
		case e.Converted:
			m.Converted++
		default:
			m.Skipped++
		}
	}

	if err := os.MkdirAll(j.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create journal directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}
	path := filepath.Join(j.dir, s.Metadata.SessionID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write journal file: %w", err)
	}
	return path, nil
}

// ReadSession loads one session file.
func ReadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal file: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// Sessions returns up to limit sessions, newest first. Unreadable files are
// skipped.
func (j *Journal) Sessions(limit int) ([]*Session, error) {
	files, err := j.files()
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(files)))

	sessions := make([]*Session, 0, len(files))
	for _, file := range files {
		if limit > 0 && len(sessions) == limit {
			break
		}
		s, err := ReadSession(file)
		if err != nil {
			continue
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func (j *Journal) files() ([]string, error) {
	if _, err := os.Stat(j.dir); os.IsNotExist(err) {
		return nil, nil
	}
	files, err := filepath.Glob(filepath.Join(j.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list journal files: %w", err)
	}
	return files, nil
}

func (j *Journal) cleanup(retentionDays int) error {
	files, err := j.files()
	if err != nil {
		return err
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(file)
		}
	}
	return nil
}

// RelativeTime renders t the way the history listing shows it.
func RelativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		return fmt.Sprintf("%d minute%s ago", mins, plural(mins))
	case d < 24*time.Hour:
		hours := int(d.Hours())
		return fmt.Sprintf("%d hour%s ago", hours, plural(hours))
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		return fmt.Sprintf("%d day%s ago", days, plural(days))
	default:
		return t.Format("Jan 2, 2006")
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
