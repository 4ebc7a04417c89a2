package world_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/ootlogic/internal/world"
)

func codes(errs []world.ValidationError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Code)
	}
	return out
}

func TestValidate_Valid(t *testing.T) {
	assert.Empty(t, world.Validate(miniDescription()))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*world.Description)
		code   string
		field  string
	}{
		{
			name:   "missing region name",
			modify: func(d *world.Description) { d.Regions[0].Name = "" },
			code:   world.ErrFieldRequired,
			field:  "Regions[0].Name",
		},
		{
			name:   "bad provides_time",
			modify: func(d *world.Description) { d.Regions[1].ProvidesTime = "NIGHT" },
			code:   world.ErrFieldInvalid,
			field:  "Regions[1].ProvidesTime",
		},
		{
			name:   "malformed savewarp",
			modify: func(d *world.Description) { d.Regions[2].Savewarp = "Root" },
			code:   world.ErrBadSavewarp,
			field:  "Regions[2].Savewarp",
		},
		{
			name:   "malformed entrance table name",
			modify: func(d *world.Description) { d.Entrances[0].Forward = "Field to Lobby" },
			code:   world.ErrBadExitName,
			field:  "Entrances[0].Forward",
		},
		{
			name: "unknown exit target",
			modify: func(d *world.Description) {
				d.Regions[0].Exits = append(d.Regions[0].Exits, world.RuleEntry{Name: "Nowhere", Rule: "True"})
			},
			code:  world.ErrUnknownExitTarget,
			field: "regions[0].exits[1]",
		},
		{
			name:   "dungeon tag mismatch",
			modify: func(d *world.Description) { d.Dungeons[0].MQ[0].Dungeon = "Fire Temple" },
			code:   world.ErrDungeonMismatch,
			field:  "dungeons[0].mq[0].dungeon",
		},
		{
			name:   "unknown vanilla item",
			modify: func(d *world.Description) { d.Locations[0].VanillaItem = "Master Sword" },
			code:   world.ErrUnknownVanillaItem,
			field:  "locations[0].vanilla_item",
		},
		{
			name:   "unknown entrance table exit",
			modify: func(d *world.Description) { d.Entrances[1].Return = "Shop -> Root" },
			code:   world.ErrUnknownTableEntry,
			field:  "entrances[1].return",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := miniDescription()
			tt.modify(desc)
			errs := world.Validate(desc)
			assert.Contains(t, codes(errs), tt.code)
			for _, e := range errs {
				if e.Code == tt.code {
					assert.Equal(t, tt.field, e.Field)
				}
			}
		})
	}
}
