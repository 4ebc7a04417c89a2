// Package ir provides the value model shared by settings, derived world fields,
// and compiled rule expressions.
//
// Settings files, region descriptions and rule literals all decode into the
// sealed Value interface. Values are also the unit of canonical serialization:
// sphere snapshots are hashed from their canonical JSON form so identical runs
// get identical snapshot hashes.
//
// ir imports nothing internal. Every other internal package may import it.
//
// Key design constraints:
//   - NO float types anywhere; numbers are int64
//   - Object iteration goes through SortedKeys for determinism
//   - Canonical JSON is the only encoding used for hashing
package ir
