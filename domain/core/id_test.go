package core

import (
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 1000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}
}

func TestRunIDString(t *testing.T) {
	id := RunID("run-1")
	if id.String() != "run-1" {
		t.Errorf("Expected 'run-1', got '%s'", id.String())
	}
	if NewRunID().String() == "" {
		t.Error("Expected non-empty run ID")
	}
}

func TestHashDeterministic(t *testing.T) {
	a := NewHash([]byte("AMA,gput\n"))
	b := NewHash([]byte("AMA,gput\n"))
	if a != b {
		t.Errorf("Hashes differ for identical input: %s vs %s", a, b)
	}
	if len(a.String()) != 64 {
		t.Errorf("Expected 64 hex characters, got %d", len(a.String()))
	}
	if a.Short() != a.String()[:12] {
		t.Errorf("Short hash mismatch: %s", a.Short())
	}
}
