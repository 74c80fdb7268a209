// Package report keeps a history of check runs as a JSONL log under the XDG
// state directory. Each run appends one record; the history command reads
// the most recent entries back.
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Record is the outcome of one check run.
type Record struct {
	Time       time.Time `json:"time"`
	File       string    `json:"file"`
	Result     string    `json:"result"` // "ok", "parse_error", "invalid"
	Violations int       `json:"violations"`
	Tabs       int       `json:"tabs"`
	DurationMs int64     `json:"duration_ms"`
}

// DefaultPath returns the history log location: $XDG_STATE_HOME/layout-lens/
// history.jsonl, falling back to ~/.local/state.
func DefaultPath() string {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			stateDir = filepath.Join(home, ".local", "state")
		} else {
			stateDir = os.TempDir()
		}
	}
	return filepath.Join(stateDir, "layout-lens", "history.jsonl")
}

// Log appends and reads check-run records at a fixed path.
type Log struct {
	path string
}

// NewLog creates a log at the given path. An empty path uses DefaultPath.
func NewLog(path string) *Log {
	if path == "" {
		path = DefaultPath()
	}
	return &Log{path: path}
}

// Path returns the log file location.
func (l *Log) Path() string {
	return l.path
}

// Append writes one record to the log, creating the directory as needed.
func (l *Log) Append(r Record) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening history log: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding history record: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing history record: %w", err)
	}
	return nil
}

// Recent returns the last n records, oldest first. Malformed lines are
// skipped: a partially written tail must not make history unreadable.
func (l *Log) Recent(n int) ([]Record, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening history log: %w", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var r Record
		if err := json.Unmarshal(line, &r); err != nil {
			continue
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading history log: %w", err)
	}

	if n > 0 && len(records) > n {
		records = records[len(records)-n:]
	}
	return records, nil
}
