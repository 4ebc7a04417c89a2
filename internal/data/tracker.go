package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ootlogic/internal/search"
	"github.com/roach88/ootlogic/internal/world"
)

// TrackerState is what a tracker knows about a run: items found, items seen
// at locations, checked and skipped locations, discovered entrances and
// dungeon variants. World defaults to 0 everywhere.
type TrackerState struct {
	Collected    []ItemRef    `yaml:"collected,omitempty"`
	Placements   []Placement  `yaml:"placements,omitempty"`
	Checked      []NameRef    `yaml:"checked,omitempty"`
	Skipped      []NameRef    `yaml:"skipped,omitempty"`
	Connections  []Connection `yaml:"connections,omitempty"`
	Disconnected []NameRef    `yaml:"disconnected,omitempty"`
	DungeonMQ    []Variant    `yaml:"dungeon_mq,omitempty"`
}

// ItemRef names an item belonging to a world.
type ItemRef struct {
	World int    `yaml:"world,omitempty"`
	Item  string `yaml:"item"`
}

// NameRef names a location or entrance of a world.
type NameRef struct {
	World int    `yaml:"world,omitempty"`
	Name  string `yaml:"name"`
}

// Placement puts an item (owned by ItemWorld) at a location of World.
type Placement struct {
	World     int    `yaml:"world,omitempty"`
	Location  string `yaml:"location"`
	Item      string `yaml:"item"`
	ItemWorld *int   `yaml:"item_world,omitempty"`
}

// Connection links an entrance either into another entrance's slot or
// straight to a region.
type Connection struct {
	World    int    `yaml:"world,omitempty"`
	Entrance string `yaml:"entrance"`
	Replaces string `yaml:"replaces,omitempty"`
	Region   string `yaml:"region,omitempty"`
}

// Variant selects a dungeon's variant.
type Variant struct {
	World   int    `yaml:"world,omitempty"`
	Dungeon string `yaml:"dungeon"`
	MQ      bool   `yaml:"mq"`
}

// LoadTrackerState reads a tracker state file.
func LoadTrackerState(path string) (*TrackerState, error) {
	var ts TrackerState
	if err := loadYAML(path, &ts); err != nil {
		return nil, err
	}
	return &ts, nil
}

// Save writes the state as YAML.
func (ts *TrackerState) Save(path string) error {
	b, err := yaml.Marshal(ts)
	if err != nil {
		return fmt.Errorf("encode tracker state: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return &LoadError{Code: ErrCodeRead, Path: path, Message: err.Error()}
	}
	return nil
}

// Apply replays the state onto worlds: dungeon variants first, then
// entrances, placements, skipped and checked locations, and finally the
// collected items through s. A nil search skips the collected items.
func (ts *TrackerState) Apply(worlds []*world.World, s *search.Search) error {
	get := func(id int) (*world.World, error) {
		if id < 0 || id >= len(worlds) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("world %d does not exist", id)}
		}
		return worlds[id], nil
	}

	for _, v := range ts.DungeonMQ {
		w, err := get(v.World)
		if err != nil {
			return err
		}
		if err := w.SwapDungeon(v.Dungeon, v.MQ); err != nil {
			return notFound(err)
		}
	}

	for _, d := range ts.Disconnected {
		w, err := get(d.World)
		if err != nil {
			return err
		}
		e, err := w.Entrance(d.Name)
		if err != nil {
			return notFound(err)
		}
		if !e.IsConnected() {
			continue
		}
		if err := w.DisconnectPair(e.ID); err != nil {
			return err
		}
	}

	for _, c := range ts.Connections {
		if err := applyConnection(get, c); err != nil {
			return err
		}
	}

	for _, p := range ts.Placements {
		w, err := get(p.World)
		if err != nil {
			return err
		}
		l, err := w.Location(p.Location)
		if err != nil {
			return notFound(err)
		}
		owner := p.World
		if p.ItemWorld != nil {
			owner = *p.ItemWorld
		}
		ow, err := get(owner)
		if err != nil {
			return err
		}
		item, err := ow.Items.Make(p.Item, owner)
		if err != nil {
			return notFound(err)
		}
		if err := w.PushItem(l.ID, item); err != nil {
			return err
		}
	}

	for _, sk := range ts.Skipped {
		w, err := get(sk.World)
		if err != nil {
			return err
		}
		l, err := w.Location(sk.Name)
		if err != nil {
			return notFound(err)
		}
		if err := w.SkipLocation(l.ID); err != nil {
			return err
		}
	}

	for _, c := range ts.Checked {
		w, err := get(c.World)
		if err != nil {
			return err
		}
		l, err := w.Location(c.Name)
		if err != nil {
			return notFound(err)
		}
		if err := w.SetChecked(l.ID, true); err != nil {
			return err
		}
	}

	if s == nil {
		return nil
	}
	for _, ref := range ts.Collected {
		w, err := get(ref.World)
		if err != nil {
			return err
		}
		item, err := w.Items.Make(ref.Item, ref.World)
		if err != nil {
			return notFound(err)
		}
		if err := s.Collect(item); err != nil {
			return err
		}
	}
	return nil
}

func applyConnection(get func(int) (*world.World, error), c Connection) error {
	w, err := get(c.World)
	if err != nil {
		return err
	}
	e, err := w.Entrance(c.Entrance)
	if err != nil {
		return notFound(err)
	}
	if e.IsConnected() {
		if err := w.DisconnectPair(e.ID); err != nil {
			return err
		}
	}
	switch {
	case c.Replaces != "":
		target, err := w.Entrance(c.Replaces)
		if err != nil {
			return notFound(err)
		}
		return w.ConnectPair(e.ID, target.ID)
	case c.Region != "":
		r, err := w.Region(c.Region)
		if err != nil {
			return notFound(err)
		}
		return w.Connect(e.ID, r.ID)
	}
	return &LoadError{Code: ErrCodeSchema, Message: fmt.Sprintf("connection for %q needs replaces or region", c.Entrance)}
}

func notFound(err error) error {
	if world.IsNotFound(err) {
		return &LoadError{Code: ErrCodeNotFound, Message: err.Error(), Err: err}
	}
	return err
}
