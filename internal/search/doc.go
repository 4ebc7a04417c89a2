// Package search answers logical reachability over built worlds.
//
// A Search runs one worklist per age (child, adult) across every player's
// world. Expanding a worklist evaluates entrance rules against the players'
// states until nothing new is reached; the visited regions of each age carry
// a time-of-day bitmask that only grows. CanReach answers region queries,
// running a secondary time-of-day expansion over already-visited regions
// when a specific time is requested.
//
// On top of the reachability engine, CollectSpheres computes the progression
// order: each sphere is the set of progression locations reachable with the
// items of every earlier sphere. CollectLocations is the incremental pass a
// tracker runs as the player checks locations.
//
// A Search records the world and state versions it was built against. A
// structural world change or a shrinking ledger resets it, rolling back every
// item the search itself collected. Collecting items only re-runs expansion.
//
// A Search is not safe for concurrent use.
package search
