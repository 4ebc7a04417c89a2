package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/ootlogic/internal/ir"
	"github.com/roach88/ootlogic/internal/rules"
	"github.com/roach88/ootlogic/internal/world"
)

// Discard is a logger that drops everything.
var Discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool { return &b }

// MiniHelpers are the helper macros MiniDescription uses.
var MiniHelpers = map[string]string{
	"is_adult": "age == 'adult'",
	"is_child": "age == 'child'",
}

// MiniDescription is a small world with one dungeon:
//
//	Root -> Field [Slingshot], Root -> Cellar, Root -> Goal [Sword]
//	Field (time passes) -> Market, Dungeon Lobby [Hookshot]
//	Goal holds Prize; Cellar holds a night-only pot, Market a child-only pot.
//
// It matches testdata/worlds/mini.
func MiniDescription() *world.Description {
	return &world.Description{
		Regions: []world.RegionDesc{
			{
				Name:      "Root",
				Locations: []world.RuleEntry{{Name: "Start Chest", Rule: "True"}},
				Exits: []world.RuleEntry{
					{Name: "Field", Rule: "Slingshot"},
					{Name: "Cellar", Rule: "True"},
					{Name: "Goal", Rule: "Sword"},
				},
			},
			{
				Name:       "Field",
				TimePasses: true,
				Locations:  []world.RuleEntry{{Name: "Field Chest", Rule: "True"}},
				Exits: []world.RuleEntry{
					{Name: "Root", Rule: "True"},
					{Name: "Market", Rule: "True"},
					{Name: "Dungeon Lobby", Rule: "Hookshot"},
				},
			},
			{
				Name:      "Goal",
				Locations: []world.RuleEntry{{Name: "Prize", Rule: "True"}},
				Exits:     []world.RuleEntry{{Name: "Root", Rule: "True"}},
			},
			{
				Name:      "Cellar",
				Locations: []world.RuleEntry{{Name: "Cellar Night Pot", Rule: "at_night"}},
				Exits:     []world.RuleEntry{{Name: "Root", Rule: "True"}},
			},
			{
				Name:      "Market",
				Locations: []world.RuleEntry{{Name: "Market Child Pot", Rule: "is_child"}},
				Exits:     []world.RuleEntry{{Name: "Field", Rule: "True"}},
			},
		},
		Dungeons: []world.DungeonDesc{{
			Name: "Deku Tree",
			Vanilla: []world.RegionDesc{{
				Name:      "Dungeon Lobby",
				Locations: []world.RuleEntry{{Name: "Lobby Chest", Rule: "True"}},
				Exits:     []world.RuleEntry{{Name: "Field", Rule: "True"}},
			}},
			MQ: []world.RegionDesc{{
				Name:      "Dungeon Lobby",
				Locations: []world.RuleEntry{{Name: "MQ Lobby Chest", Rule: "Bow"}},
				Exits:     []world.RuleEntry{{Name: "Field", Rule: "True"}},
			}},
		}},
		Items: []world.ItemDef{
			{Name: "Sword", Type: "Item", Progressive: BoolPtr(true)},
			{Name: "Slingshot", Type: "Item", Progressive: BoolPtr(true)},
			{Name: "Hookshot", Type: "Item", Progressive: BoolPtr(true)},
			{Name: "Bow", Type: "Item", Progressive: BoolPtr(true)},
			{Name: "Triforce", Type: "Item", Progressive: BoolPtr(true)},
			{Name: "Ocarina", Type: "Item", Progressive: BoolPtr(true)},
			{Name: "Suns Song", Type: "Song", Progressive: BoolPtr(true)},
			{Name: "Rupees (5)", Type: "Item"},
		},
		Locations: []world.LocationDef{
			{Name: "Start Chest", Type: "Chest", VanillaItem: "Sword"},
			{Name: "Field Chest", Type: "Chest", VanillaItem: "Hookshot"},
			{Name: "Prize", Type: "Chest", VanillaItem: "Triforce"},
			{Name: "Cellar Night Pot", Type: "Pot", VanillaItem: "Bow"},
			{Name: "Market Child Pot", Type: "Pot", VanillaItem: "Rupees (5)"},
			{Name: "Lobby Chest", Type: "Chest", VanillaItem: "Slingshot"},
			{Name: "MQ Lobby Chest", Type: "Chest", VanillaItem: "Slingshot"},
		},
		Entrances: []world.EntranceDef{
			{Type: "Dungeon", Forward: "Field -> Dungeon Lobby", Return: "Dungeon Lobby -> Field"},
		},
		Settings: ir.Object{},
		Fields:   ir.Object{"ensure_tod_access": ir.Bool(true)},
	}
}

// TimeGateDescription is a world whose first root exit needs daytime:
//
//	Root -> Garden [at_day], Root -> Field
//	Field (time passes); Garden holds Garden Flower.
//
// The garden edge fails before Field gives the root its time of day.
func TimeGateDescription() *world.Description {
	return &world.Description{
		Regions: []world.RegionDesc{
			{
				Name: "Root",
				Exits: []world.RuleEntry{
					{Name: "Garden", Rule: "at_day"},
					{Name: "Field", Rule: "True"},
				},
			},
			{
				Name:       "Field",
				TimePasses: true,
				Exits:      []world.RuleEntry{{Name: "Root", Rule: "True"}},
			},
			{
				Name:      "Garden",
				Locations: []world.RuleEntry{{Name: "Garden Flower", Rule: "True"}},
				Exits:     []world.RuleEntry{{Name: "Root", Rule: "True"}},
			},
		},
		Items: []world.ItemDef{
			{Name: "Ocarina", Type: "Item", Progressive: BoolPtr(true)},
			{Name: "Suns Song", Type: "Song", Progressive: BoolPtr(true)},
			{Name: "Rupees (5)", Type: "Item"},
		},
		Locations: []world.LocationDef{
			{Name: "Garden Flower", Type: "Pot", VanillaItem: "Rupees (5)"},
		},
		Settings: ir.Object{},
		Fields:   ir.Object{"ensure_tod_access": ir.Bool(true)},
	}
}

// BuildWorld builds desc as world id with the rule compiler and helpers,
// then places every vanilla item.
func BuildWorld(t testing.TB, desc *world.Description, helpers map[string]string, id int) *world.World {
	t.Helper()
	macros, err := rules.ParseMacros(helpers)
	require.NoError(t, err)
	w, err := world.Build(desc,
		world.WithID(id),
		world.WithCompiler(rules.Factory(macros, rules.WithLogger(Discard))),
		world.WithLogger(Discard),
	)
	require.NoError(t, err)
	_, err = w.PushVanillaItems()
	require.NoError(t, err)
	return w
}
