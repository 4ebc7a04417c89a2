package world

import (
	"fmt"
	"slices"
	"sort"
)

// Alias makes an item also count as N copies of another item.
type Alias struct {
	Target string `yaml:"target" json:"target" validate:"required"`
	Count  int    `yaml:"count" json:"count" validate:"gte=1"`
}

// ItemSpecial carries the optional per-item attributes of the item table.
type ItemSpecial struct {
	Price         *int   `yaml:"price,omitempty" json:"price,omitempty"`
	Bottle        bool   `yaml:"bottle,omitempty" json:"bottle,omitempty"`
	Medallion     bool   `yaml:"medallion,omitempty" json:"medallion,omitempty"`
	Stone         bool   `yaml:"stone,omitempty" json:"stone,omitempty"`
	OcarinaButton bool   `yaml:"ocarina_button,omitempty" json:"ocarina_button,omitempty"`
	Alias         *Alias `yaml:"alias,omitempty" json:"alias,omitempty" validate:"omitempty"`
	Junk          *int   `yaml:"junk,omitempty" json:"junk,omitempty"`
	Trade         bool   `yaml:"trade,omitempty" json:"trade,omitempty"`
}

// ItemDef is one row of the item table. Progressive true marks an
// advancement item, false a priority item, nil neither.
type ItemDef struct {
	Name        string      `yaml:"name" json:"name" validate:"required"`
	Type        string      `yaml:"type" json:"type" validate:"required"`
	Progressive *bool       `yaml:"progressive" json:"progressive"`
	Index       *int        `yaml:"index,omitempty" json:"index,omitempty"`
	Special     ItemSpecial `yaml:"special,omitempty" json:"special,omitempty"`
}

// ItemInfo is the shared, immutable description of an item name.
type ItemInfo struct {
	Name          string
	Type          string
	Advancement   bool
	Priority      bool
	Index         int
	HasIndex      bool
	Price         int
	HasPrice      bool
	Bottle        bool
	Medallion     bool
	Stone         bool
	OcarinaButton bool
	Alias         *Alias
	Junk          *int
	Trade         bool
	Event         bool
}

// Item is one instance of an item owned by a world. The zero Item is "no item".
type Item struct {
	Info  *ItemInfo
	World int
	Price int
}

// IsZero reports whether the item is empty.
func (i Item) IsZero() bool { return i.Info == nil }

// Name returns the item name, or "" for the zero item.
func (i Item) Name() string {
	if i.Info == nil {
		return ""
	}
	return i.Info.Name
}

// Advancement reports whether the item counts toward logical progress.
func (i Item) Advancement() bool { return i.Info != nil && i.Info.Advancement }

// Priority reports the priority flag.
func (i Item) Priority() bool { return i.Info != nil && i.Info.Priority }

// Event reports whether the item is an event item.
func (i Item) Event() bool { return i.Info != nil && i.Info.Event }

// Alias returns the item's alias, if any.
func (i Item) Alias() *Alias {
	if i.Info == nil {
		return nil
	}
	return i.Info.Alias
}

func (i Item) String() string {
	if i.Info == nil {
		return "<none>"
	}
	return fmt.Sprintf("%s (world %d)", i.Info.Name, i.World)
}

// ItemTable maps item names to their info for one world. Event items are
// registered on the table as event locations are created.
type ItemTable struct {
	items  map[string]*ItemInfo
	events map[string]*ItemInfo

	bottles    []string
	medallions []string
	stones     []string
	buttons    []string
}

// NewItemTable builds a table from item definitions. Duplicate names are an
// error.
func NewItemTable(defs []ItemDef) (*ItemTable, error) {
	t := &ItemTable{
		items:  make(map[string]*ItemInfo, len(defs)),
		events: make(map[string]*ItemInfo),
	}
	for _, d := range defs {
		if _, dup := t.items[d.Name]; dup {
			return nil, NewInvalidDescriptionError(d.Name, "duplicate item definition")
		}
		info := &ItemInfo{
			Name:          d.Name,
			Type:          d.Type,
			Bottle:        d.Special.Bottle,
			Medallion:     d.Special.Medallion,
			Stone:         d.Special.Stone,
			OcarinaButton: d.Special.OcarinaButton,
			Alias:         d.Special.Alias,
			Junk:          d.Special.Junk,
			Trade:         d.Special.Trade,
		}
		if d.Progressive != nil {
			info.Advancement = *d.Progressive
			info.Priority = !*d.Progressive
		}
		if d.Index != nil {
			info.Index, info.HasIndex = *d.Index, true
		}
		if d.Special.Price != nil {
			info.Price, info.HasPrice = *d.Special.Price, true
		}
		t.items[d.Name] = info
		if info.Bottle {
			t.bottles = append(t.bottles, d.Name)
		}
		if info.Medallion {
			t.medallions = append(t.medallions, d.Name)
		}
		if info.Stone {
			t.stones = append(t.stones, d.Name)
		}
		if info.OcarinaButton {
			t.buttons = append(t.buttons, d.Name)
		}
	}
	sort.Strings(t.bottles)
	sort.Strings(t.medallions)
	sort.Strings(t.stones)
	sort.Strings(t.buttons)
	return t, nil
}

// Contains reports whether name is a real item (events excluded).
func (t *ItemTable) Contains(name string) bool {
	_, ok := t.items[name]
	return ok
}

// Info returns the info for an item or registered event.
func (t *ItemTable) Info(name string) (*ItemInfo, bool) {
	if info, ok := t.items[name]; ok {
		return info, true
	}
	info, ok := t.events[name]
	return info, ok
}

// Make returns a new instance of a real item.
func (t *ItemTable) Make(name string, world int) (Item, error) {
	info, ok := t.items[name]
	if !ok {
		return Item{}, NewNotFoundError(ErrCodeItemNotFound, world, name)
	}
	return Item{Info: info, World: world, Price: info.Price}, nil
}

// MakeEvent returns an event item, registering its info on first use.
// Event items are always advancement.
func (t *ItemTable) MakeEvent(name string, world int) Item {
	info, ok := t.events[name]
	if !ok {
		info = &ItemInfo{Name: name, Type: "Event", Advancement: true, Event: true}
		t.events[name] = info
	}
	return Item{Info: info, World: world}
}

// Names returns every real item name, sorted.
func (t *ItemTable) Names() []string {
	names := make([]string, 0, len(t.items))
	for n := range t.items {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Bottles lists the items flagged as bottles.
func (t *ItemTable) Bottles() []string { return t.bottles }

// Medallions lists the medallion items.
func (t *ItemTable) Medallions() []string { return t.medallions }

// Stones lists the spiritual stone items.
func (t *ItemTable) Stones() []string { return t.stones }

// DungeonRewards lists medallions followed by stones.
func (t *ItemTable) DungeonRewards() []string {
	return append(slices.Clone(t.medallions), t.stones...)
}

// OcarinaButtons lists the ocarina button items.
func (t *ItemTable) OcarinaButtons() []string { return t.buttons }
