// Package rules compiles logic rule text into world predicates.
//
// A rule is a small boolean expression over item names, events, settings,
// derived world fields and state queries:
//
//	Slingshot or (Hookshot and is_adult)
//	(Gold_Skulltula_Token, 10) and at_night
//	here(can_use(Dins_Fire)) or 'Deku Tree' in dungeon_shortcuts
//
// Compilation has three stages. The lexer (built on the CUE scanner) and the
// recursive-descent parser produce a tree; the rewriter resolves every name,
// expands aliases from the helper table, folds literals and groups plain item
// checks; the emitter turns the rewritten tree into closures over
// *world.State. Three caches keep repeated work down: raw rule text, rule
// fragments, and printed rewritten trees. Rewrites that depend on the spot
// being compiled bypass the first two.
//
// here() and at() move a sub-expression into a synthetic event location of
// the target region. Those locations are created by CreateDelayedRules once
// every region rule is compiled.
package rules
