package store

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/roach88/ootlogic/internal/ir"
	"github.com/roach88/ootlogic/internal/search"
	"github.com/roach88/ootlogic/internal/testutil"
)

func TestSaveRun_LoadRun_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t, WithGenerator(NewFixedGenerator("run-1")), WithClock(stepClock()))

	settings := []ir.Object{
		{"shuffle_interior_entrances": ir.String("simple")},
		{"open_forest": ir.String("open"), "starting_hearts": ir.Int(3)},
	}
	log := createTestLog()

	saved, err := s.SaveRun(ctx, Run{Label: "mini", Settings: settings}, log)
	if err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}
	if saved.ID != "run-1" {
		t.Errorf("ID = %q, want %q", saved.ID, "run-1")
	}
	if !saved.CreatedAt.Equal(testEpoch.Add(time.Second)) {
		t.Errorf("CreatedAt = %v, want %v", saved.CreatedAt, testEpoch.Add(time.Second))
	}
	if saved.WorldCount != 2 {
		t.Errorf("WorldCount = %d, want 2", saved.WorldCount)
	}
	if want := ir.MustSnapshotHash(log.Snapshot()); saved.SnapshotHash != want {
		t.Errorf("SnapshotHash = %q, want %q", saved.SnapshotHash, want)
	}
	if saved.SettingsHash == "" {
		t.Error("SettingsHash is empty")
	}

	run, loaded, err := s.LoadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("LoadRun() failed: %v", err)
	}
	if !reflect.DeepEqual(run, saved) {
		t.Errorf("LoadRun() run = %+v, want %+v", run, saved)
	}
	if !reflect.DeepEqual(loaded.Entries, log.Entries) {
		t.Errorf("LoadRun() entries = %+v, want %+v", loaded.Entries, log.Entries)
	}
}

func TestSaveRun_EmptyLog(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t, WithGenerator(NewFixedGenerator("run-1")))

	saved, err := s.SaveRun(ctx, Run{}, nil)
	if err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}
	if saved.WorldCount != 0 {
		t.Errorf("WorldCount = %d, want 0", saved.WorldCount)
	}

	run, log, err := s.LoadRun(ctx, saved.ID)
	if err != nil {
		t.Fatalf("LoadRun() failed: %v", err)
	}
	if len(log.Entries) != 0 {
		t.Errorf("entries = %d, want 0", len(log.Entries))
	}
	if len(run.Settings) != 0 {
		t.Errorf("settings = %v, want empty", run.Settings)
	}
}

func TestSaveRun_DuplicateID(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	if _, err := s.SaveRun(ctx, Run{ID: "dup"}, createTestLog()); err != nil {
		t.Fatalf("first SaveRun() failed: %v", err)
	}
	if _, err := s.SaveRun(ctx, Run{ID: "dup"}, createTestLog()); err == nil {
		t.Error("expected error saving a duplicate run id")
	}

	_, log, err := s.LoadRun(ctx, "dup")
	if err != nil {
		t.Fatalf("LoadRun() failed: %v", err)
	}
	if len(log.Entries) != len(createTestLog().Entries) {
		t.Errorf("entries = %d after duplicate save, want %d", len(log.Entries), len(createTestLog().Entries))
	}
}

func TestSaveRun_UUIDv7Default(t *testing.T) {
	s := createTestStore(t)

	saved, err := s.SaveRun(context.Background(), Run{}, createTestLog())
	if err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}
	if len(saved.ID) != 36 || saved.ID[14] != '7' {
		t.Errorf("ID = %q, want a UUIDv7", saved.ID)
	}
}

func TestLoadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, _, err := s.LoadRun(context.Background(), "missing")
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("LoadRun() error = %v, want ErrRunNotFound", err)
	}
}

func TestListRuns_Ordering(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t, WithGenerator(NewFixedGenerator("c", "a", "b")))

	same := testEpoch.Add(time.Minute)
	runs := []Run{
		{CreatedAt: testEpoch.Add(2 * time.Minute), Label: "last"},
		{CreatedAt: same, Label: "tie-a"},
		{CreatedAt: same, Label: "tie-b"},
	}
	for _, r := range runs {
		if _, err := s.SaveRun(ctx, r, createTestLog()); err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}

	got, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	var ids []string
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("ListRuns() ids = %v, want %v", ids, want)
	}
}

func TestListRuns_Empty(t *testing.T) {
	s := createTestStore(t)

	runs, err := s.ListRuns(context.Background())
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if runs == nil || len(runs) != 0 {
		t.Errorf("ListRuns() = %v, want empty non-nil slice", runs)
	}
}

func TestLatestRunByHash(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t, WithGenerator(NewFixedGenerator("old", "other", "new")), WithClock(stepClock()))

	log := createTestLog()
	other := &search.SphereLog{Entries: log.Entries[:1]}

	if _, err := s.SaveRun(ctx, Run{}, log); err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}
	if _, err := s.SaveRun(ctx, Run{}, other); err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}
	newest, err := s.SaveRun(ctx, Run{}, log)
	if err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}

	got, err := s.LatestRunByHash(ctx, newest.SnapshotHash)
	if err != nil {
		t.Fatalf("LatestRunByHash() failed: %v", err)
	}
	if got.ID != "new" {
		t.Errorf("LatestRunByHash() = %q, want %q", got.ID, "new")
	}

	if _, err := s.LatestRunByHash(ctx, "no-such-hash"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("LatestRunByHash() error = %v, want ErrRunNotFound", err)
	}
}

func TestFixedGenerator_Exhausted(t *testing.T) {
	g := NewFixedGenerator("only")
	if got := g.Generate(); got != "only" {
		t.Fatalf("Generate() = %q, want %q", got, "only")
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic when ids are exhausted")
		}
	}()
	g.Generate()
}

func TestSaveRun_ManyRunsWithSequenceIDs(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t,
		WithGenerator(testutil.NewSequenceGenerator("snap")),
		WithClock(testutil.NewDeterministicClock(testEpoch, time.Minute).Now),
	)

	log := createTestLog()
	for i := 0; i < 3; i++ {
		if _, err := s.SaveRun(ctx, Run{}, log); err != nil {
			t.Fatalf("SaveRun() #%d failed: %v", i, err)
		}
	}

	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	want := []string{"snap-0001", "snap-0002", "snap-0003"}
	if len(runs) != len(want) {
		t.Fatalf("ListRuns() returned %d runs, want %d", len(runs), len(want))
	}
	for i, r := range runs {
		if r.ID != want[i] {
			t.Errorf("runs[%d].ID = %q, want %q", i, r.ID, want[i])
		}
		if wantAt := testEpoch.Add(time.Duration(i+1) * time.Minute); !r.CreatedAt.Equal(wantAt) {
			t.Errorf("runs[%d].CreatedAt = %v, want %v", i, r.CreatedAt, wantAt)
		}
	}
}
