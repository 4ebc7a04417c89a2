package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/ootlogic/internal/search"
	"github.com/roach88/ootlogic/internal/testutil"
)

// testEpoch is the fixed base time for test clocks.
var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// stepClock returns a clock that advances one second per call.
func stepClock() func() time.Time {
	return testutil.NewDeterministicClock(testEpoch, time.Second).Now
}

// createTestLog creates a small two-sphere log.
func createTestLog() *search.SphereLog {
	return &search.SphereLog{Entries: []search.SphereEntry{
		{Kind: search.KindLocation, World: 0, Name: "Links Pocket", Item: "Kokiri Sword", Sphere: -1},
		{Kind: search.KindLocation, World: 0, Name: "Start Chest", Item: "Slingshot", Sphere: 0},
		{Kind: search.KindEntrance, World: 0, Name: "Root -> Cellar", Sphere: 1},
		{Kind: search.KindLocation, World: 1, Name: "Prize", Item: "Triforce", Sphere: 1},
	}}
}
