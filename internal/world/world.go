package world

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/ootlogic/internal/ir"
)

// RuleCompiler compiles rule text for one World. Implemented by
// internal/rules.Compiler.
type RuleCompiler interface {
	// Compile turns rule text into a Rule for the given spot.
	Compile(source string, spot Spot) (Rule, error)
	// CreateDelayedRules builds the synthetic subrule locations queued by
	// here() and at() during Compile.
	CreateDelayedRules() error
	// CheckEvents fails when a rule references an event nothing provides.
	CheckEvents() error
	// Reset drops every cache and pending subrule.
	Reset()
}

// CompilerFactory binds a RuleCompiler to a World during Build.
type CompilerFactory func(*World) (RuleCompiler, error)

// World is one player's logic graph.
//
// Regions, entrances and locations live in arenas and are never freed; a
// dungeon swap only changes which regions are live. Name lookups see live
// regions only.
type World struct {
	ID       int
	Settings ir.Object
	Fields   ir.Object
	Items    *ItemTable

	// CollectCheckedOnly makes searches collect items only from checked
	// locations, the way a tracker follows the player.
	CollectCheckedOnly bool

	regions   []*Region
	entrances []*Entrance
	locations []*Location

	overworld []RegionID
	live      []RegionID
	variants  map[string][]RegionID
	dungeons  []string

	locationTable map[string]LocationDef
	entranceTable []EntranceDef
	skipped       []LocationID
	eventItems    map[string]bool
	subrules      map[subruleKey]LocationID

	regionIdx   map[string]RegionID
	entranceIdx map[string]EntranceID
	locationIdx map[string]LocationID

	version         uint64
	compiler        RuleCompiler
	compilerFactory CompilerFactory
	deriver         func(ir.Object) ir.Object
	logger          *slog.Logger
}

// Option configures Build.
type Option func(*World)

// WithID sets the world (player) id. Default: 0.
func WithID(id int) Option {
	return func(w *World) { w.ID = id }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(w *World) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithCompiler sets the rule compiler factory. Required.
func WithCompiler(f CompilerFactory) Option {
	return func(w *World) { w.compilerFactory = f }
}

// WithDeriver sets the function that computes derived fields from settings.
// It runs at Build when the description has no fields, and on every
// UpdateSettings.
func WithDeriver(f func(ir.Object) ir.Object) Option {
	return func(w *World) { w.deriver = f }
}

// WithCollectCheckedOnly sets the CollectCheckedOnly flag.
func WithCollectCheckedOnly(v bool) Option {
	return func(w *World) { w.CollectCheckedOnly = v }
}

// Build constructs a World from a description: regions, locations, events
// and exits, then the live region set, entrance links, compiled rules,
// delayed subrules and entrance metadata.
func Build(desc *Description, opts ...Option) (*World, error) {
	if desc == nil {
		return nil, NewInvalidDescriptionError("", "nil description")
	}
	w := &World{
		variants:      make(map[string][]RegionID),
		locationTable: make(map[string]LocationDef, len(desc.Locations)),
		eventItems:    make(map[string]bool),
		subrules:      make(map[subruleKey]LocationID),
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.compilerFactory == nil {
		return nil, NewInvalidDescriptionError("", "no rule compiler configured")
	}

	items, err := NewItemTable(desc.Items)
	if err != nil {
		return nil, fmt.Errorf("build world %d: %w", w.ID, err)
	}
	w.Items = items

	w.Settings = ir.Object{}
	if desc.Settings != nil {
		w.Settings = desc.Settings.Clone()
	}
	switch {
	case desc.Fields != nil:
		w.Fields = desc.Fields.Clone()
	case w.deriver != nil:
		w.Fields = w.deriver(w.Settings)
	default:
		w.Fields = ir.Object{}
	}

	for _, l := range desc.Locations {
		w.locationTable[l.Name] = l
	}
	w.entranceTable = slices.Clone(desc.Entrances)

	if err := w.loadRegions(desc.Regions, "", ""); err != nil {
		return nil, fmt.Errorf("build world %d: %w", w.ID, err)
	}
	for _, d := range desc.Dungeons {
		w.dungeons = append(w.dungeons, d.Name)
		if err := w.loadRegions(d.Vanilla, d.Name, VariantName(d.Name, false)); err != nil {
			return nil, fmt.Errorf("build world %d: %w", w.ID, err)
		}
		if err := w.loadRegions(d.MQ, d.Name, VariantName(d.Name, true)); err != nil {
			return nil, fmt.Errorf("build world %d: %w", w.ID, err)
		}
	}

	for _, id := range w.overworld {
		w.setLive(id, true)
	}
	for _, d := range w.dungeons {
		for _, id := range w.variants[VariantName(d, w.DungeonMQ(d))] {
			w.setLive(id, true)
		}
	}

	if err := w.initializeEntrances(); err != nil {
		return nil, fmt.Errorf("build world %d: %w", w.ID, err)
	}

	compiler, err := w.compilerFactory(w)
	if err != nil {
		return nil, fmt.Errorf("build world %d: %w", w.ID, err)
	}
	w.compiler = compiler
	if err := w.compileRules(); err != nil {
		return nil, fmt.Errorf("build world %d: %w", w.ID, err)
	}

	if err := w.ApplyEntranceTable(w.entranceTable); err != nil {
		return nil, fmt.Errorf("build world %d: %w", w.ID, err)
	}
	if types, ok := w.Fields["shuffled_entrance_types"].(ir.List); ok && len(types) > 0 {
		if err := w.ShuffleEntranceTypes(listStrings(types)...); err != nil {
			return nil, fmt.Errorf("build world %d: %w", w.ID, err)
		}
	}

	w.logger.Info("world built",
		"world", w.ID,
		"regions", len(w.regions),
		"live_regions", len(w.live),
		"entrances", len(w.entrances),
		"locations", len(w.locations),
	)
	return w, nil
}

// loadRegions creates regions from descriptions. Duplicate region names in
// one list are merged; duplicate entries within a region are skipped.
func (w *World) loadRegions(descs []RegionDesc, dungeon, variant string) error {
	byName := make(map[string]*Region, len(descs))
	for _, rd := range descs {
		r, dup := byName[rd.Name]
		if dup {
			w.logger.Warn("duplicate region definition, appending", "region", rd.Name)
		} else {
			r = w.newRegion(rd.Name, variant)
			byName[rd.Name] = r
		}
		if rd.Scene != "" {
			r.Scene = rd.Scene
		}
		if rd.Hint != "" {
			r.Hint = rd.Hint
		}
		if rd.AltHint != "" {
			r.AltHint = rd.AltHint
		}
		switch {
		case rd.Dungeon != "":
			r.Dungeon = rd.Dungeon
		case dungeon != "" && r.Dungeon == "":
			r.Dungeon = dungeon
		}
		if rd.IsBossRoom {
			r.IsBossRoom = true
		}
		if rd.TimePasses {
			r.TimePasses = true
			r.ProvidesTime = TODAll
		}
		if rd.ProvidesTime != "" {
			tod, err := ParseTimeOfDay(rd.ProvidesTime)
			if err != nil {
				return NewInvalidDescriptionError(rd.Name, err.Error())
			}
			r.ProvidesTime = tod
		}

		for _, le := range rd.Locations {
			if w.regionHasLocation(r, le.Name) {
				w.logger.Warn("skipping duplicate location definition", "region", r.Name, "location", le.Name)
				continue
			}
			w.newLocation(le.Name, r, le.Rule, "")
		}
		for _, ev := range rd.Events {
			name := ev.Name + " from " + r.Name
			if w.regionHasLocation(r, name) {
				w.logger.Warn("skipping duplicate event definition", "region", r.Name, "event", name)
				continue
			}
			loc := w.newLocation(name, r, ev.Rule, "Event")
			loc.Event = ev.Name
		}
		for _, ex := range rd.Exits {
			name := r.Name + " -> " + ex.Name
			if w.regionHasExit(r, name) != NoEntrance {
				w.logger.Warn("skipping duplicate exit definition", "exit", name)
				continue
			}
			w.newEntrance(name, r, ex.Name, ex.Rule)
		}
		if rd.Savewarp != "" {
			_, target, ok := strings.Cut(rd.Savewarp, " -> ")
			if !ok {
				return NewInvalidDescriptionError(rd.Name, fmt.Sprintf("malformed savewarp %q", rd.Savewarp))
			}
			name := r.Name + " -> " + target
			id := w.regionHasExit(r, name)
			if id == NoEntrance {
				e := w.newEntrance(name, r, target, "True")
				e.OneWay = true
				id = e.ID
			}
			w.entrances[id].IsSavewarp = true
			r.Savewarp = id
		}
	}
	return nil
}

func (w *World) newRegion(name, variant string) *Region {
	r := &Region{
		ID:       RegionID(len(w.regions)),
		Name:     name,
		World:    w.ID,
		Variant:  variant,
		Savewarp: NoEntrance,
	}
	w.regions = append(w.regions, r)
	if variant == "" {
		w.overworld = append(w.overworld, r.ID)
	} else {
		w.variants[variant] = append(w.variants[variant], r.ID)
	}
	return r
}

func (w *World) newLocation(name string, parent *Region, source, typ string) *Location {
	l := &Location{
		ID:     LocationID(len(w.locations)),
		Name:   name,
		World:  w.ID,
		Type:   "Chest",
		Parent: parent.ID,
		Rule:   Rule{Source: source},
		Sphere: -1,
	}
	if def, ok := w.locationTable[name]; ok {
		l.Type = def.Type
		l.Scene = def.Scene
		l.VanillaItem = def.VanillaItem
	}
	if typ != "" {
		l.Type = typ
	}
	l.Internal = isInternalType(l.Type, l.Name)
	l.Shuffled = !l.Internal
	w.locations = append(w.locations, l)
	w.attachLocation(l)
	return l
}

func (w *World) newEntrance(name string, parent *Region, target, source string) *Entrance {
	e := &Entrance{
		ID:           EntranceID(len(w.entrances)),
		Name:         name,
		World:        w.ID,
		Parent:       parent.ID,
		Connected:    NoRegion,
		OriginalName: target,
		Original:     NoRegion,
		Replaces:     NoEntrance,
		Reverse:      NoEntrance,
		Alternate:    NoEntrance,
		Rule:         Rule{Source: source},
		Sphere:       -1,
	}
	w.entrances = append(w.entrances, e)
	parent.Exits = append(parent.Exits, e.ID)
	return e
}

func (w *World) attachLocation(l *Location) {
	if l.attached {
		return
	}
	r := w.regions[l.Parent]
	r.Locations = append(r.Locations, l.ID)
	l.attached = true
	w.locationIdx = nil
}

func (w *World) detachLocation(l *Location) {
	if !l.attached {
		return
	}
	r := w.regions[l.Parent]
	if i := slices.Index(r.Locations, l.ID); i >= 0 {
		r.Locations = slices.Delete(r.Locations, i, i+1)
	}
	l.attached = false
	w.locationIdx = nil
}

func (w *World) regionHasLocation(r *Region, name string) bool {
	for _, id := range r.Locations {
		if w.locations[id].Name == name {
			return true
		}
	}
	return false
}

func (w *World) regionHasExit(r *Region, name string) EntranceID {
	for _, id := range r.Exits {
		if w.entrances[id].Name == name {
			return id
		}
	}
	return NoEntrance
}

func (w *World) setLive(id RegionID, live bool) {
	r := w.regions[id]
	if r.live == live {
		return
	}
	r.live = live
	if live {
		w.live = append(w.live, id)
	} else if i := slices.Index(w.live, id); i >= 0 {
		w.live = slices.Delete(w.live, i, i+1)
	}
	w.dropIndices()
}

// initializeEntrances connects every exit to its original target and links
// dungeon interface exits to their twin in the sibling variant.
func (w *World) initializeEntrances() error {
	variantRegion := make(map[RegionID]bool)
	for _, ids := range w.variants {
		for _, id := range ids {
			variantRegion[id] = true
		}
	}

	for _, rid := range slices.Clone(w.live) {
		r := w.regions[rid]
		for _, eid := range r.Exits {
			e := w.entrances[eid]
			target, err := w.Region(e.OriginalName)
			if err != nil {
				return fmt.Errorf("exit %q: %w", e.Name, err)
			}
			w.connect(e, target.ID)
			e.Original = target.ID
			if !variantRegion[rid] || variantRegion[target.ID] {
				continue
			}
			if r.Dungeon == "" {
				return NewInvalidDescriptionError(r.Name, "dungeon variant region without a dungeon")
			}
			altVariant := VariantName(r.Dungeon, !w.DungeonMQ(r.Dungeon))
			altRegion, err := w.VariantRegion(r.Name, altVariant)
			if err != nil {
				w.logger.Warn("no sibling region for dungeon interface exit", "exit", e.Name, "variant", altVariant)
				continue
			}
			if alt := w.regionHasExit(altRegion, e.Name); alt != NoEntrance {
				e.Alternate = alt
				w.entrances[alt].Alternate = e.ID
			}
		}
	}

	for _, d := range w.dungeons {
		for _, variant := range []string{VariantName(d, false), VariantName(d, true)} {
			for _, rid := range w.variants[variant] {
				for _, eid := range w.regions[rid].Exits {
					e := w.entrances[eid]
					if e.IsConnected() {
						continue
					}
					target, err := w.VariantRegion(e.OriginalName, variant)
					if err != nil {
						target, err = w.Region(e.OriginalName)
						if err != nil {
							return fmt.Errorf("exit %q: %w", e.Name, err)
						}
					}
					e.Original = target.ID
					if e.Alternate.Valid() {
						continue
					}
					w.connect(e, target.ID)
				}
			}
		}
	}
	return nil
}

// compileRules compiles every location, event and exit rule in the arena,
// then builds delayed subrules and checks events.
func (w *World) compileRules() error {
	for _, l := range w.locations {
		if l.Synthetic {
			continue
		}
		if err := w.compileLocation(l); err != nil {
			return err
		}
	}
	for _, r := range w.regions {
		for _, eid := range r.Exits {
			e := w.entrances[eid]
			if e.IsSavewarp && e.Rule.Source == "True" {
				e.Rule = AlwaysRule("True")
				continue
			}
			rule, err := w.compiler.Compile(e.Rule.Source, EntranceSpot(eid))
			if err != nil {
				return fmt.Errorf("compile exit %q: %w", e.Name, err)
			}
			e.Rule = rule
		}
	}
	if err := w.compiler.CreateDelayedRules(); err != nil {
		return fmt.Errorf("create subrules: %w", err)
	}
	if err := w.compiler.CheckEvents(); err != nil {
		return err
	}
	for _, l := range w.locations {
		if l.attached {
			w.applyShopRule(l)
		}
	}
	return nil
}

func (w *World) compileLocation(l *Location) error {
	rule, err := w.compiler.Compile(l.Rule.Source, LocationSpot(l.ID))
	if err != nil {
		return fmt.Errorf("compile location %q: %w", l.Name, err)
	}
	l.Rule = rule
	l.BaseRule = rule
	if l.Event == "" {
		return nil
	}
	if rule.Never {
		w.detachLocation(l)
		w.logger.Debug("event never reachable, dropped", "event", l.Name)
		return nil
	}
	w.attachLocation(l)
	w.makeEventItem(l, l.Event)
	return nil
}

// NewSubruleLocation creates a detached synthetic event location in a
// region. AttachEventLocation finishes it once its rule is compiled.
// Locations dropped by UpdateSettings are reused by name.
func (w *World) NewSubruleLocation(region RegionID, name, source string) LocationID {
	key := subruleKey{region: region, name: name}
	if id, ok := w.subrules[key]; ok {
		l := w.locations[id]
		w.detachLocation(l)
		l.Rule = Rule{Source: source}
		return id
	}
	l := w.newLocation(name, w.regions[region], source, "Event")
	w.detachLocation(l)
	l.Synthetic = true
	l.Event = name
	w.subrules[key] = l.ID
	return l.ID
}

// MarkNever replaces a spot's rule with one that never passes. Event
// locations marked never are removed from their region.
func (w *World) MarkNever(s Spot) {
	switch s.Kind {
	case SpotEntrance:
		e := w.entrances[s.ID]
		e.Rule = NeverRule(e.Rule.Source)
	case SpotLocation:
		l := w.locations[s.ID]
		l.Rule = NeverRule(l.Rule.Source)
		l.BaseRule = l.Rule
		if l.Event != "" {
			w.detachLocation(l)
		}
	}
}

type subruleKey struct {
	region RegionID
	name   string
}

// AttachEventLocation sets an event location's rule, adds it to its region
// and gives it its event item.
func (w *World) AttachEventLocation(id LocationID, rule Rule) {
	l := w.locations[id]
	l.Rule = rule
	l.BaseRule = rule
	w.attachLocation(l)
	w.makeEventItem(l, l.Event)
}

func (w *World) makeEventItem(l *Location, name string) {
	l.Item = w.Items.MakeEvent(name, w.ID)
	l.Locked = true
	if !w.Items.Contains(name) {
		l.Internal = true
	}
	w.eventItems[name] = true
}

// HasEventItem reports whether some event location provides name.
func (w *World) HasEventItem(name string) bool {
	return w.eventItems[name]
}

// DeclaredEvents returns every event name some region description declares,
// including events whose rule folded to False and events of inactive dungeon
// variants.
func (w *World) DeclaredEvents() map[string]bool {
	out := make(map[string]bool, len(w.eventItems))
	for _, l := range w.locations {
		if l.Event != "" {
			out[l.Event] = true
		}
	}
	for n := range w.eventItems {
		out[n] = true
	}
	return out
}

// EventItems lists every provided event name, sorted.
func (w *World) EventItems() []string {
	names := make([]string, 0, len(w.eventItems))
	for n := range w.eventItems {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Compiler returns the bound rule compiler.
func (w *World) Compiler() RuleCompiler { return w.compiler }

// Logger returns the world's logger.
func (w *World) Logger() *slog.Logger { return w.logger }

// Version changes whenever the graph, placements or settings change.
func (w *World) Version() uint64 { return w.version }

func (w *World) bump() { w.version++ }

// DungeonMQ reports whether the MQ variant of dungeon is selected by the
// derived field (or setting) dungeon_mq.
func (w *World) DungeonMQ(dungeon string) bool {
	for _, src := range []ir.Object{w.Fields, w.Settings} {
		if m, ok := src["dungeon_mq"].(ir.Object); ok {
			return m.Bool(dungeon)
		}
	}
	return false
}

// ActiveVariant returns the live variant name of dungeon.
func (w *World) ActiveVariant(dungeon string) string {
	for _, variant := range []string{VariantName(dungeon, false), VariantName(dungeon, true)} {
		ids := w.variants[variant]
		if len(ids) > 0 && w.regions[ids[0]].live {
			return variant
		}
	}
	return ""
}

// Dungeons lists dungeon names in description order.
func (w *World) Dungeons() []string { return w.dungeons }

func listStrings(l ir.List) []string {
	out := make([]string, 0, len(l))
	for _, v := range l {
		if s, ok := v.(ir.String); ok {
			out = append(out, string(s))
		}
	}
	return out
}
