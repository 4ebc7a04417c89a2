package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/ootlogic/internal/ir"
	"github.com/roach88/ootlogic/internal/search"
)

// ErrRunNotFound is returned when no run matches.
var ErrRunNotFound = errors.New("run not found")

// Run is the header of a saved sphere log.
type Run struct {
	ID           string      `json:"id"`
	CreatedAt    time.Time   `json:"created_at"`
	Label        string      `json:"label,omitempty"`
	SnapshotHash string      `json:"snapshot_hash"`
	SettingsHash string      `json:"settings_hash,omitempty"`
	Settings     []ir.Object `json:"-"`
	WorldCount   int         `json:"world_count"`
}

// SaveRun stores a sphere log and returns the completed run header.
// ID, CreatedAt, SnapshotHash and SettingsHash are filled in when empty;
// WorldCount defaults to the number of settings entries, or to the highest
// world in the log.
func (s *Store) SaveRun(ctx context.Context, run Run, log *search.SphereLog) (Run, error) {
	if log == nil {
		log = &search.SphereLog{}
	}
	if run.ID == "" {
		run.ID = s.ids.Generate()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.clock()
	}
	run.CreatedAt = run.CreatedAt.UTC().Truncate(time.Millisecond)

	hash, err := ir.SnapshotHash(log.Snapshot())
	if err != nil {
		return Run{}, fmt.Errorf("save run: %w", err)
	}
	run.SnapshotHash = hash

	if run.WorldCount == 0 {
		run.WorldCount = len(run.Settings)
		for _, e := range log.Entries {
			if e.World+1 > run.WorldCount {
				run.WorldCount = e.World + 1
			}
		}
	}
	settingsJSON, err := marshalSettings(run.Settings)
	if err != nil {
		return Run{}, fmt.Errorf("save run: %w", err)
	}
	if len(run.Settings) > 0 && run.SettingsHash == "" {
		if run.SettingsHash, err = settingsHash(run.Settings); err != nil {
			return Run{}, fmt.Errorf("save run: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("save run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, created_at, label, snapshot_hash, settings_hash, settings, world_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.CreatedAt.UnixMilli(),
		run.Label,
		run.SnapshotHash,
		run.SettingsHash,
		settingsJSON,
		run.WorldCount,
	)
	if err != nil {
		return Run{}, fmt.Errorf("save run: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return Run{}, fmt.Errorf("save run: %w", err)
	} else if n == 0 {
		return Run{}, fmt.Errorf("save run: run %s already exists", run.ID)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_spheres (run_id, seq, world, kind, name, item, sphere)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return Run{}, fmt.Errorf("save run: prepare: %w", err)
	}
	defer stmt.Close()

	for seq, e := range log.Entries {
		if _, err := stmt.ExecContext(ctx, run.ID, seq, e.World, string(e.Kind), e.Name, e.Item, e.Sphere); err != nil {
			return Run{}, fmt.Errorf("save run: entry %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("save run: commit: %w", err)
	}
	return run, nil
}

// LoadRun returns a run header and its sphere log in saved order.
func (s *Store) LoadRun(ctx context.Context, id string) (Run, *search.SphereLog, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx, `
		SELECT id, created_at, label, snapshot_hash, settings_hash, settings, world_count
		FROM runs
		WHERE id = ?
	`, id))
	if err != nil {
		return Run{}, nil, fmt.Errorf("load run %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT world, kind, name, item, sphere
		FROM run_spheres
		WHERE run_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return Run{}, nil, fmt.Errorf("load run %s: %w", id, err)
	}
	defer rows.Close()

	log := &search.SphereLog{}
	for rows.Next() {
		var e search.SphereEntry
		var kind string
		if err := rows.Scan(&e.World, &kind, &e.Name, &e.Item, &e.Sphere); err != nil {
			return Run{}, nil, fmt.Errorf("load run %s: scan: %w", id, err)
		}
		e.Kind = search.EntryKind(kind)
		log.Entries = append(log.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return Run{}, nil, fmt.Errorf("load run %s: iterate: %w", id, err)
	}
	return run, log, nil
}

// ListRuns returns every run header, oldest first.
// Returns an empty slice (not nil) when the store has no runs.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, label, snapshot_hash, settings_hash, settings, world_count
		FROM runs
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: iterate: %w", err)
	}
	return runs, nil
}

// LatestRunByHash returns the newest run with the given snapshot hash.
func (s *Store) LatestRunByHash(ctx context.Context, hash string) (Run, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx, `
		SELECT id, created_at, label, snapshot_hash, settings_hash, settings, world_count
		FROM runs
		WHERE snapshot_hash = ?
		ORDER BY created_at DESC, id COLLATE BINARY DESC
		LIMIT 1
	`, hash))
	if err != nil {
		return Run{}, fmt.Errorf("latest run by hash: %w", err)
	}
	return run, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var createdAt int64
	var settingsJSON string
	err := row.Scan(&run.ID, &createdAt, &run.Label, &run.SnapshotHash, &run.SettingsHash, &settingsJSON, &run.WorldCount)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.CreatedAt = time.UnixMilli(createdAt).UTC()
	if run.Settings, err = unmarshalSettings(settingsJSON); err != nil {
		return Run{}, err
	}
	return run, nil
}
