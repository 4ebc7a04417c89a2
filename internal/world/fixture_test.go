package world_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/ootlogic/internal/ir"
	"github.com/roach88/ootlogic/internal/world"
)

// itemCompiler treats every rule other than True/False as the name of a
// required item.
type itemCompiler struct{}

func (itemCompiler) Compile(source string, _ world.Spot) (world.Rule, error) {
	switch source {
	case "", "True":
		return world.AlwaysRule(source), nil
	case "False":
		return world.NeverRule(source), nil
	}
	return world.NewRule(source, source, func(s *world.State, _ world.Context) bool {
		return s.Has(source, 1)
	}), nil
}

func (itemCompiler) CreateDelayedRules() error { return nil }
func (itemCompiler) CheckEvents() error         { return nil }
func (itemCompiler) Reset()                     {}

func itemCompilerFactory(*world.World) (world.RuleCompiler, error) {
	return itemCompiler{}, nil
}

func boolPtr(b bool) *bool { return &b }
func intPtr(n int) *int    { return &n }

func miniDescription() *world.Description {
	return &world.Description{
		Regions: []world.RegionDesc{
			{Name: "Root", Exits: []world.RuleEntry{{Name: "Field", Rule: "True"}}},
			{
				Name:       "Field",
				TimePasses: true,
				Events:     []world.RuleEntry{{Name: "Open Gate", Rule: "Slingshot"}, {Name: "Never Gate", Rule: "False"}},
				Locations:  []world.RuleEntry{{Name: "Field Chest", Rule: "True"}},
				Exits: []world.RuleEntry{
					{Name: "Root", Rule: "True"},
					{Name: "Dungeon Lobby", Rule: "Hookshot"},
					{Name: "Shop", Rule: "True"},
				},
			},
			{
				Name:      "Shop",
				Locations: []world.RuleEntry{{Name: "Shop Item 1", Rule: "True"}},
				Exits:     []world.RuleEntry{{Name: "Field", Rule: "True"}},
			},
		},
		Dungeons: []world.DungeonDesc{{
			Name: "Deku Tree",
			Vanilla: []world.RegionDesc{
				{
					Name:      "Dungeon Lobby",
					Locations: []world.RuleEntry{{Name: "Lobby Chest", Rule: "True"}},
					Exits: []world.RuleEntry{
						{Name: "Field", Rule: "True"},
						{Name: "Dungeon Boss", Rule: "Slingshot"},
					},
				},
				{
					Name:       "Dungeon Boss",
					IsBossRoom: true,
					Locations:  []world.RuleEntry{{Name: "Boss Heart", Rule: "True"}},
				},
			},
			MQ: []world.RegionDesc{
				{
					Name:      "Dungeon Lobby",
					Locations: []world.RuleEntry{{Name: "MQ Lobby Chest", Rule: "Hookshot"}},
					Exits:     []world.RuleEntry{{Name: "Field", Rule: "True"}},
				},
			},
		}},
		Items: []world.ItemDef{
			{Name: "Slingshot", Type: "Item", Progressive: boolPtr(true)},
			{Name: "Hookshot", Type: "Item", Progressive: boolPtr(true)},
			{Name: "Progressive Wallet", Type: "Item", Progressive: boolPtr(true)},
			{Name: "Bottle", Type: "Item", Progressive: boolPtr(true), Special: world.ItemSpecial{Bottle: true}},
			{Name: "Rutos Letter", Type: "Item", Progressive: boolPtr(true)},
			{Name: "Piece of Heart", Type: "Item", Progressive: boolPtr(true)},
			{Name: "Gold Skulltula Token", Type: "Token", Progressive: boolPtr(true)},
			{Name: "Small Key Ring (Forest Temple)", Type: "SmallKey", Progressive: boolPtr(true)},
			{Name: "Triforce", Type: "Item", Progressive: boolPtr(true)},
			{Name: "Rupees (5)", Type: "Item"},
			{Name: "Deku Nuts (10)", Type: "Item", Special: world.ItemSpecial{Alias: &world.Alias{Target: "Deku Nuts", Count: 10}}},
			{Name: "Buy Goron Tunic", Type: "Shop", Progressive: boolPtr(false), Special: world.ItemSpecial{Price: intPtr(200)}},
			{Name: "Buy Deku Shield", Type: "Shop", Special: world.ItemSpecial{Price: intPtr(40)}},
			{Name: "Ocarina A Button", Type: "Item", Progressive: boolPtr(true), Special: world.ItemSpecial{OcarinaButton: true}},
			{Name: "Ocarina C up Button", Type: "Item", Progressive: boolPtr(true), Special: world.ItemSpecial{OcarinaButton: true}},
		},
		Locations: []world.LocationDef{
			{Name: "Field Chest", Type: "Chest", VanillaItem: "Slingshot"},
			{Name: "Shop Item 1", Type: "Shop", VanillaItem: "Buy Goron Tunic"},
			{Name: "Lobby Chest", Type: "Chest", VanillaItem: "Hookshot"},
			{Name: "Boss Heart", Type: "BossHeart", VanillaItem: "Piece of Heart"},
		},
		Entrances: []world.EntranceDef{
			{Type: "Dungeon", Forward: "Field -> Dungeon Lobby", Return: "Dungeon Lobby -> Field"},
			{Type: "Interior", Forward: "Field -> Shop", Return: "Shop -> Field"},
		},
		Settings: ir.Object{
			"starting_tod": ir.String("default"),
		},
	}
}

func buildMini(t *testing.T, opts ...world.Option) *world.World {
	t.Helper()
	opts = append([]world.Option{
		world.WithCompiler(itemCompilerFactory),
		world.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	w, err := world.Build(miniDescription(), opts...)
	require.NoError(t, err)
	return w
}

func mustItem(t *testing.T, w *world.World, name string) world.Item {
	t.Helper()
	item, err := w.Items.Make(name, w.ID)
	require.NoError(t, err)
	return item
}

func mustEntrance(t *testing.T, w *world.World, name string) *world.Entrance {
	t.Helper()
	e, err := w.Entrance(name)
	require.NoError(t, err)
	return e
}

func mustRegion(t *testing.T, w *world.World, name string) *world.Region {
	t.Helper()
	r, err := w.Region(name)
	require.NoError(t, err)
	return r
}

func mustLocation(t *testing.T, w *world.World, name string) *world.Location {
	t.Helper()
	l, err := w.Location(name)
	require.NoError(t, err)
	return l
}
