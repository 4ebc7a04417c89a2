package world

import (
	"github.com/roach88/ootlogic/internal/ir"
)

// RuleEntry is one named rule of a region: an event, location or exit.
// Entries keep the order they had in the region file.
type RuleEntry struct {
	Name string `yaml:"name" json:"name" validate:"required"`
	Rule string `yaml:"rule" json:"rule"`
}

// RegionDesc describes one region as read from a region file.
type RegionDesc struct {
	Name         string      `yaml:"region_name" json:"region_name" validate:"required"`
	Dungeon      string      `yaml:"dungeon,omitempty" json:"dungeon,omitempty"`
	Scene        string      `yaml:"scene,omitempty" json:"scene,omitempty"`
	Hint         string      `yaml:"hint,omitempty" json:"hint,omitempty"`
	AltHint      string      `yaml:"alt_hint,omitempty" json:"alt_hint,omitempty"`
	TimePasses   bool        `yaml:"time_passes,omitempty" json:"time_passes,omitempty"`
	ProvidesTime string      `yaml:"provides_time,omitempty" json:"provides_time,omitempty" validate:"omitempty,oneof=NONE DAY DAMPE ALL"`
	IsBossRoom   bool        `yaml:"is_boss_room,omitempty" json:"is_boss_room,omitempty"`
	Savewarp     string      `yaml:"savewarp,omitempty" json:"savewarp,omitempty" validate:"omitempty,savewarp"`
	Events       []RuleEntry `yaml:"events,omitempty" json:"events,omitempty" validate:"dive"`
	Locations    []RuleEntry `yaml:"locations,omitempty" json:"locations,omitempty" validate:"dive"`
	Exits        []RuleEntry `yaml:"exits,omitempty" json:"exits,omitempty" validate:"dive"`
}

// DungeonDesc holds the two variants of a dungeon. Exactly one is live.
type DungeonDesc struct {
	Name    string       `yaml:"name" json:"name" validate:"required"`
	Vanilla []RegionDesc `yaml:"vanilla" json:"vanilla" validate:"required,min=1,dive"`
	MQ      []RegionDesc `yaml:"mq" json:"mq" validate:"required,min=1,dive"`
}

// VariantName returns "<Dungeon>" or "<Dungeon> MQ".
func VariantName(dungeon string, mq bool) string {
	if mq {
		return dungeon + " MQ"
	}
	return dungeon
}

// LocationDef is one row of the location table.
type LocationDef struct {
	Name        string   `yaml:"name" json:"name" validate:"required"`
	Type        string   `yaml:"type" json:"type" validate:"required"`
	Scene       string   `yaml:"scene,omitempty" json:"scene,omitempty"`
	VanillaItem string   `yaml:"vanilla_item,omitempty" json:"vanilla_item,omitempty"`
	Categories  []string `yaml:"categories,omitempty" json:"categories,omitempty"`
}

// EntranceDef is one entry of the entrance table: a typed forward entrance
// and, for two-way entrances, its return.
type EntranceDef struct {
	Type    string `yaml:"type" json:"type" validate:"required"`
	Forward string `yaml:"forward" json:"forward" validate:"required,exitname"`
	Return  string `yaml:"return,omitempty" json:"return,omitempty" validate:"omitempty,exitname"`
}

// Description is everything Build needs to construct a world.
type Description struct {
	Regions   []RegionDesc  `yaml:"regions" json:"regions" validate:"required,min=1,dive"`
	Dungeons  []DungeonDesc `yaml:"dungeons,omitempty" json:"dungeons,omitempty" validate:"dive"`
	Items     []ItemDef     `yaml:"items" json:"items" validate:"dive"`
	Locations []LocationDef `yaml:"locations,omitempty" json:"locations,omitempty" validate:"dive"`
	Entrances []EntranceDef `yaml:"entrances,omitempty" json:"entrances,omitempty" validate:"dive"`

	// Settings are the player's settings; Fields are values derived from them.
	Settings ir.Object `yaml:"-" json:"-"`
	Fields   ir.Object `yaml:"-" json:"-"`
}
