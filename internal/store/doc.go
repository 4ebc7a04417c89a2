// Package store provides SQLite-backed storage for sphere runs.
//
// A run is one saved CollectSpheres result:
//   - runs: header with id, creation time, label, snapshot hash, settings
//   - run_spheres: the log entries, one row each, keyed by (run_id, seq)
//
// # Identity
//
// Run ids are UUIDv7 strings, so ids sort by creation time. The snapshot
// hash is computed from the canonical JSON of the log (see ir.SnapshotHash),
// so two runs over the same world and items share a hash and
// LatestRunByHash can find an earlier identical result.
//
// # Deterministic Query Results
//
// Entries are read back ORDER BY seq, the order CollectSpheres produced.
// Run listings are ordered by created_at, then id COLLATE BINARY.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
