// Package world holds the per-player logic graph and the predicate runtime.
//
// A World is an arena of regions, entrances and locations addressed by stable
// integer ids. Entrances carry their reverse, alternate and replaces links as
// ids, so rewiring and dungeon variant swaps never chase pointers.
//
// Rules attached to entrances and locations are compiled by a RuleCompiler
// bound at Build time (see internal/rules). Compiled predicates read the
// State, which holds the progression and inventory ledgers for one player.
//
// Worlds are single-threaded: nothing here locks.
package world
