// Package data loads game data from disk and builds worlds from it.
//
// Region and helper files are JSON with # comments. They are compiled as
// CUE after the comments are stripped, which keeps the declaration order of
// events, locations and exits. Item, location and entrance tables, settings
// and tracker state are strict YAML.
//
// A world directory is loaded once; BuildWorlds then builds one world per
// player concurrently, each with its own settings and derived fields.
package data
