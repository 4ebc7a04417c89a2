// Package harness runs logic scenarios against real world builds.
//
// A scenario builds one world per player, drives a search through tracker
// steps, and asserts on reachability and spheres.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: sword_gate
//	description: "The goal opens once the sword is found"
//	world:
//	  dir: ../worlds/mini          # or an inline region list:
//	  # regions:
//	  #   - region_name: Root
//	  #     exits: [{name: Goal, rule: Sword}]
//	settings: { open_forest: open }
//	players: 1
//	steps:
//	  - collect: [Sword]
//	  - connect: { entrance: "Root -> Cellar", region: Goal }
//	  - spheres: true
//	assertions:
//	  - type: can_reach
//	    region: Goal
//	    age: child
//	  - type: sphere
//	    location: Prize
//	    sphere: 0
//
// Inline worlds also take items, helpers and entrances at the top level.
//
// # Steps
//
// Each step sets exactly one of collect, uncollect, place, skip, check,
// connect, disconnect, swap_dungeon, spheres or locations. Tracker edits
// are applied through data.TrackerState. A step with expect_error must fail
// with a matching error.
//
// # Assertion Types
//
//   - visited / not_visited: a location's item was (not) logically obtained
//   - sphere / entrance_sphere: sphere of a location or entrance in the
//     last spheres step; -1 when never reached
//   - can_reach / cannot_reach: region reachability for an age and time
//
// # Golden Files
//
// RunWithGolden compares the canonical JSON of the trace and sphere log to
// testdata/golden/<name>.golden. Regenerate with -update.
package harness
