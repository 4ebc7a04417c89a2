package world

// Region is a node of the logic graph.
type Region struct {
	ID    RegionID
	Name  string
	World int

	// Entrances are incoming edges; Exits are outgoing edges owned by the region.
	Entrances []EntranceID
	Exits     []EntranceID
	Locations []LocationID

	// Dungeon is the dungeon the region belongs to, if any. Variant is "" for
	// overworld regions, "<Dungeon>" or "<Dungeon> MQ" for dungeon regions.
	Dungeon string
	Variant string

	Scene        string
	Hint         string
	AltHint      string
	TimePasses   bool
	ProvidesTime TimeOfDay
	IsBossRoom   bool
	Savewarp     EntranceID

	live bool
}

// Live reports whether the region is part of the current graph.
func (r *Region) Live() bool { return r.live }

// Entrance is a directed edge. Parent is fixed; Connected changes with
// rewiring and may be NoRegion.
type Entrance struct {
	ID    EntranceID
	Name  string
	World int

	Parent       RegionID
	Connected    RegionID
	OriginalName string
	Original     RegionID

	Replaces  EntranceID
	Reverse   EntranceID
	Alternate EntranceID

	Type         string
	TypePriority int
	OneWay       bool
	Coupled      bool
	Primary      bool
	Secondary    bool
	Shuffled     bool
	Warp         bool
	IsSavewarp   bool

	Rule   Rule
	Sphere int
}

// IsConnected reports whether the entrance has a live target.
func (e *Entrance) IsConnected() bool { return e.Connected.Valid() }

// Location is a leaf of the logic graph holding at most one item.
type Location struct {
	ID    LocationID
	Name  string
	World int
	Type  string
	Scene string

	Parent      RegionID
	Item        Item
	// Event is the event item name an event location provides.
	Event       string
	VanillaItem string
	Price       int
	HasPrice    bool

	Rule Rule
	// BaseRule is the compiled region-file rule before shop rules are added.
	BaseRule Rule

	Checked   bool
	Internal  bool
	Shuffled  bool
	Skipped   bool
	Locked    bool
	Synthetic bool
	Sphere    int

	attached bool
}

// Attached reports whether the location is listed on its parent region.
// Events whose rule folded to false are never attached.
func (l *Location) Attached() bool { return l.attached }

// HasProgression reports whether the location holds an advancement item.
func (l *Location) HasProgression() bool { return l.Item.Advancement() }

// isInternalType reports the location types that are never shuffled.
func isInternalType(typ, name string) bool {
	return typ == "Event" || name == "Gift from Sages"
}
