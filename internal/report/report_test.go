package report

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAppendAndRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.jsonl")
	log := NewLog(path)

	for i := 1; i <= 5; i++ {
		err := log.Append(Record{
			Time:   time.Date(2026, 8, i, 12, 0, 0, 0, time.UTC),
			File:   fmt.Sprintf("layout-%d.kdl", i),
			Result: "ok",
			Tabs:   i,
		})
		if err != nil {
			t.Fatalf("Append() error: %v", err)
		}
	}

	records, err := log.Recent(3)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records: got %d, want 3", len(records))
	}
	// Oldest first, window anchored at the tail.
	for i, want := range []string{"layout-3.kdl", "layout-4.kdl", "layout-5.kdl"} {
		if records[i].File != want {
			t.Errorf("records[%d]: got %q, want %q", i, records[i].File, want)
		}
	}
}

func TestRecentMissingLog(t *testing.T) {
	log := NewLog(filepath.Join(t.TempDir(), "history.jsonl"))
	records, err := log.Recent(10)
	if err != nil {
		t.Fatalf("Recent() on missing log: %v", err)
	}
	if records != nil {
		t.Errorf("records: got %v, want nil", records)
	}
}

func TestRecentSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	log := NewLog(path)

	if err := log.Append(Record{File: "good.kdl", Result: "ok"}); err != nil {
		t.Fatal(err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("{truncated\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()
	if err := log.Append(Record{File: "after.kdl", Result: "invalid", Violations: 2}); err != nil {
		t.Fatal(err)
	}

	records, err := log.Recent(10)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records: got %d, want 2 (malformed line skipped)", len(records))
	}
	if records[0].File != "good.kdl" || records[1].File != "after.kdl" {
		t.Errorf("records: got %+v", records)
	}
}

func TestDefaultPathUsesStateDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)
	want := filepath.Join(dir, "layout-lens", "history.jsonl")
	if got := DefaultPath(); got != want {
		t.Errorf("DefaultPath(): got %q, want %q", got, want)
	}
}
