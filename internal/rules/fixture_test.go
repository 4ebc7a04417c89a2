package rules_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/ootlogic/internal/ir"
	"github.com/roach88/ootlogic/internal/rules"
	"github.com/roach88/ootlogic/internal/world"
)

func boolPtr(b bool) *bool { return &b }

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

var testHelpers = map[string]string{
	"is_adult":       "age == 'adult'",
	"is_child":       "age == 'child'",
	"can_use(item)":  "(item == Slingshot and is_child) or (item == Hookshot and is_adult)",
	"can_play(song)": "Ocarina and song",
	"can_see_night":  "at_night or Lens_of_Truth",
}

func ruleDescription() *world.Description {
	return &world.Description{
		Regions: []world.RegionDesc{
			{Name: "Root", Exits: []world.RuleEntry{{Name: "Field", Rule: "True"}}},
			{
				Name:       "Field",
				TimePasses: true,
				Events:     []world.RuleEntry{{Name: "Gate Open", Rule: "Slingshot"}},
				Locations: []world.RuleEntry{
					{Name: "Field Chest", Rule: "True"},
					{Name: "Dead Chest", Rule: "here(False)"},
					{Name: "GS Field Tree", Rule: "at_night"},
				},
				Exits: []world.RuleEntry{
					{Name: "Root", Rule: "True"},
					{Name: "Temple", Rule: "Gate_Open and can_use(Hookshot)"},
				},
			},
			{
				Name:      "Temple",
				Locations: []world.RuleEntry{{Name: "Temple Chest", Rule: "at('Field', Hookshot or Bow)"}},
				Exits:     []world.RuleEntry{{Name: "Field", Rule: "True"}},
			},
		},
		Items: []world.ItemDef{
			{Name: "Slingshot", Type: "Item", Progressive: boolPtr(true)},
			{Name: "Hookshot", Type: "Item", Progressive: boolPtr(true)},
			{Name: "Bow", Type: "Item", Progressive: boolPtr(true)},
			{Name: "Ocarina", Type: "Item", Progressive: boolPtr(true)},
			{Name: "Suns Song", Type: "Song", Progressive: boolPtr(true)},
			{Name: "Lens of Truth", Type: "Item", Progressive: boolPtr(true)},
			{Name: "Piece of Heart", Type: "Item", Progressive: boolPtr(true)},
			{Name: "Gold Skulltula Token", Type: "Token", Progressive: boolPtr(true)},
			{Name: "Bottle", Type: "Item", Progressive: boolPtr(true), Special: world.ItemSpecial{Bottle: true}},
		},
		Locations: []world.LocationDef{
			{Name: "Field Chest", Type: "Chest"},
			{Name: "GS Field Tree", Type: "GS Token"},
		},
		Settings: ir.Object{
			"bridge":            ir.String("medallions"),
			"big_poe_count":     ir.Int(3),
			"dungeon_shortcuts": ir.Strings("Deku Tree"),
			"damage_multiplier": ir.String("normal"),

			"logic_no_night_tokens_without_suns_song": ir.Bool(false),
		},
		Fields: ir.Object{
			"ensure_tod_access": ir.Bool(true),
			"dungeon_mq":        ir.Object{"Deku Tree": ir.Bool(false)},
		},
	}
}

func buildRuleWorld(t *testing.T, desc *world.Description, opts ...rules.Option) *world.World {
	t.Helper()
	w, err := tryBuild(desc, opts...)
	require.NoError(t, err)
	return w
}

func tryBuild(desc *world.Description, opts ...rules.Option) (*world.World, error) {
	macros, err := rules.ParseMacros(testHelpers)
	if err != nil {
		return nil, err
	}
	opts = append([]rules.Option{rules.WithLogger(discard)}, opts...)
	return world.Build(desc,
		world.WithCompiler(rules.Factory(macros, opts...)),
		world.WithLogger(discard),
	)
}

func compilerOf(t *testing.T, w *world.World) *rules.Compiler {
	t.Helper()
	c, ok := w.Compiler().(*rules.Compiler)
	require.True(t, ok)
	return c
}

func spotOf(t *testing.T, w *world.World, location string) world.Spot {
	t.Helper()
	l, err := w.Location(location)
	require.NoError(t, err)
	return world.LocationSpot(l.ID)
}

func collect(t *testing.T, w *world.World, s *world.State, names ...string) {
	t.Helper()
	for _, n := range names {
		item, err := w.Items.Make(n, w.ID)
		require.NoError(t, err)
		s.Collect(item, world.LedgerBoth)
	}
}

// fixedReacher answers every reachability query with the same value.
type fixedReacher bool

func (r fixedReacher) CanReach(world.RegionRef, world.Age, world.TimeOfDay) bool { return bool(r) }

var (
	adult = world.Context{Age: world.AgeAdult, Spot: world.NoSpot}
	child = world.Context{Age: world.AgeChild, Spot: world.NoSpot}
)
