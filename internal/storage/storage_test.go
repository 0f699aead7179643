package storage

import (
	"fmt"
	"path/filepath"
	"testing"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "datastore.json"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndReadBack(t *testing.T) {
	s := newTestStorage(t)

	if err := s.RecordCommand("g1", "u1", "ana", "queue"); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordCommand("g1", "u2", "bo", "skip"); err != nil {
		t.Fatal(err)
	}

	history, err := s.CommandHistory("g1")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 {
		t.Fatalf("history len = %d, want 2", len(history))
	}
	if history[0].Command != "queue" || history[1].Username != "bo" {
		t.Fatalf("history = %+v", history)
	}
}

func TestHistoryIsBounded(t *testing.T) {
	s := newTestStorage(t)

	for n := 0; n < commandHistoryLimit+5; n++ {
		if err := s.RecordCommand("g1", "u1", "ana", fmt.Sprintf("cmd-%d", n)); err != nil {
			t.Fatal(err)
		}
	}

	history, err := s.CommandHistory("g1")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != commandHistoryLimit {
		t.Fatalf("history len = %d, want %d", len(history), commandHistoryLimit)
	}
	// The oldest entries are the ones dropped.
	if history[0].Command != "cmd-5" {
		t.Fatalf("oldest kept = %q, want cmd-5", history[0].Command)
	}
}

func TestGuildsAreIsolated(t *testing.T) {
	s := newTestStorage(t)

	if err := s.RecordCommand("g1", "u1", "ana", "queue"); err != nil {
		t.Fatal(err)
	}

	history, err := s.CommandHistory("g2")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 0 {
		t.Fatalf("fresh guild has history: %+v", history)
	}
}
