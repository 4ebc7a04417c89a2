package world

import (
	"fmt"
	"slices"
	"strings"
)

var oneWayEntranceTypes = map[string]bool{
	"OverworldOneWay": true,
	"OwlDrop":         true,
	"Spawn":           true,
	"ChildSpawn":      true,
	"AdultSpawn":      true,
	"WarpSong":        true,
	"BlueWarp":        true,
	"Extra":           true,
}

// Boss rooms mostly have no usable exit door, so they never decouple.
var alwaysCoupledEntranceTypes = map[string]bool{
	"GraphGanonsTower": true,
	"ChildBoss":        true,
	"AdultBoss":        true,
}

var warpEntranceTypes = map[string]bool{
	"Spawn":      true,
	"ChildSpawn": true,
	"AdultSpawn": true,
	"WarpSong":   true,
}

var entranceTypePriority = map[string]int{
	"Overworld":        1,
	"OverworldOneWay":  1,
	"OwlDrop":          2,
	"Spawn":            3,
	"ChildSpawn":       3,
	"AdultSpawn":       3,
	"WarpSong":         4,
	"Dungeon":          5,
	"DungeonSpecial":   5,
	"GraphGanonsTower": 5,
	"Interior":         6,
	"SpecialInterior":  6,
	"Hideout":          6,
	"Grotto":           7,
	"Grave":            7,
	"ChildBoss":        8,
	"AdultBoss":        8,
	"SpecialBoss":      8,
	"BlueWarp":         9,
	"Extra":            10,
}

// connect sets the live target, detaching from any previous target first so
// incoming lists never hold stale entries.
func (w *World) connect(e *Entrance, target RegionID) {
	if e.IsConnected() {
		w.detach(e)
	}
	e.Connected = target
	r := w.regions[target]
	r.Entrances = append(r.Entrances, e.ID)
}

func (w *World) detach(e *Entrance) RegionID {
	prev := e.Connected
	r := w.regions[prev]
	if i := slices.Index(r.Entrances, e.ID); i >= 0 {
		r.Entrances = slices.Delete(r.Entrances, i, i+1)
	}
	e.Connected = NoRegion
	return prev
}

// Connect sets an entrance's live target, which must be a live region. The
// reverse entrance is untouched; use ConnectPair to rewire both directions.
func (w *World) Connect(e EntranceID, target RegionID) error {
	if !w.validEntrance(e) {
		return newGraphError(ErrCodeEntranceNotFound, w.ID, "", "entrance id %d out of range", e)
	}
	if !w.validRegion(target) {
		return newGraphError(ErrCodeRegionNotFound, w.ID, "", "region id %d out of range", target)
	}
	if r := w.regions[target]; !r.live {
		return newGraphError(ErrCodeDanglingEdge, w.ID, w.entrances[e].Name,
			"cannot connect to non-live region %q", r.Name)
	}
	w.connect(w.entrances[e], target)
	w.bump()
	return nil
}

// Disconnect clears an entrance's live target and returns it.
func (w *World) Disconnect(e EntranceID) (RegionID, error) {
	if !w.validEntrance(e) {
		return NoRegion, newGraphError(ErrCodeEntranceNotFound, w.ID, "", "entrance id %d out of range", e)
	}
	ent := w.entrances[e]
	if !ent.IsConnected() {
		return NoRegion, newGraphError(ErrCodeNotConnected, w.ID, ent.Name, "entrance is already disconnected")
	}
	prev := w.detach(ent)
	w.bump()
	return prev, nil
}

// BindTwoWay makes a and b each other's reverse.
func (w *World) BindTwoWay(a, b EntranceID) {
	w.entrances[a].Reverse = b
	w.entrances[b].Reverse = a
}

// ConnectPair shuffles e into target's slot: e leads to target's original
// region and replaces target. When e is coupled and both have reverses,
// target's reverse is sent back to e's reverse's original region.
func (w *World) ConnectPair(e, target EntranceID) error {
	if !w.validEntrance(e) || !w.validEntrance(target) {
		return newGraphError(ErrCodeEntranceNotFound, w.ID, "", "entrance id out of range")
	}
	src, dst := w.entrances[e], w.entrances[target]
	if !src.Original.Valid() || !dst.Original.Valid() {
		return newGraphError(ErrCodeDanglingEdge, w.ID, src.Name,
			"cannot connect entrances without original connections: %s to %s", src.Name, dst.Name)
	}
	w.connect(src, dst.Original)
	src.Replaces = dst.ID
	if src.Coupled && src.Reverse.Valid() && dst.Reverse.Valid() {
		srcRev, dstRev := w.entrances[src.Reverse], w.entrances[dst.Reverse]
		if srcRev.Original.Valid() {
			w.connect(dstRev, srcRev.Original)
			dstRev.Replaces = srcRev.ID
		}
	}
	w.bump()
	return nil
}

// DisconnectPair undoes ConnectPair: e is disconnected, and when coupled the
// reverse of the entrance it replaced is disconnected too.
func (w *World) DisconnectPair(e EntranceID) error {
	if !w.validEntrance(e) {
		return newGraphError(ErrCodeEntranceNotFound, w.ID, "", "entrance id %d out of range", e)
	}
	ent := w.entrances[e]
	if !ent.IsConnected() {
		return newGraphError(ErrCodeNotConnected, w.ID, ent.Name, "entrance is already disconnected")
	}
	if ent.Coupled && ent.Replaces.Valid() {
		if rev := w.entrances[ent.Replaces].Reverse; rev.Valid() && w.entrances[rev].IsConnected() {
			w.detach(w.entrances[rev])
			w.entrances[rev].Replaces = NoEntrance
		}
	}
	w.detach(ent)
	ent.Replaces = NoEntrance
	w.bump()
	return nil
}

// ApplyEntranceTable sets shuffle metadata from the entrance table and binds
// forward/return pairs. The sibling variant's twin of a dungeon entrance
// copies the metadata.
func (w *World) ApplyEntranceTable(defs []EntranceDef) error {
	decoupled := w.Settings.Bool("decouple_entrances")
	for _, def := range defs {
		fwd, err := w.Entrance(def.Forward)
		if err != nil {
			return fmt.Errorf("entrance table %s: %w", def.Type, err)
		}
		w.setMetadata(fwd, def.Type, decoupled)
		fwd.Primary = true
		w.copyToSibling(fwd)

		if def.Return == "" {
			continue
		}
		ret, err := w.Entrance(def.Return)
		if err != nil {
			return fmt.Errorf("entrance table %s: %w", def.Type, err)
		}
		w.setMetadata(ret, def.Type, decoupled)
		ret.Secondary = true
		w.copyToSibling(ret)
		w.BindTwoWay(fwd.ID, ret.ID)
	}
	w.entranceTable = slices.Clone(defs)
	w.bump()
	return nil
}

func (w *World) setMetadata(e *Entrance, typ string, decoupled bool) {
	e.Type = typ
	e.TypePriority = entranceTypePriority[typ]
	e.OneWay = e.OneWay || oneWayEntranceTypes[typ]
	e.Warp = warpEntranceTypes[typ]
	e.Coupled = !decoupled || alwaysCoupledEntranceTypes[typ]
}

func (w *World) copyToSibling(e *Entrance) {
	parent := w.regions[e.Parent]
	if parent.Dungeon == "" || parent.Variant == "" {
		return
	}
	sibling := VariantName(parent.Dungeon, !strings.HasSuffix(parent.Variant, " MQ"))
	twin, err := w.VariantEntrance(e.Name, sibling)
	if err != nil {
		return
	}
	twin.Type = e.Type
	twin.TypePriority = e.TypePriority
	twin.OneWay = e.OneWay
	twin.Warp = e.Warp
	twin.Coupled = e.Coupled
	twin.Primary = e.Primary
	twin.Secondary = e.Secondary
	twin.Shuffled = e.Shuffled
}

// ShuffleEntranceTypes disconnects every typed live entrance whose type is
// listed and marks it shuffled; other typed entrances are reset to their
// original targets.
func (w *World) ShuffleEntranceTypes(types ...string) error {
	shuffled := make(map[string]bool, len(types))
	for _, t := range types {
		shuffled[t] = true
	}
	decoupled := w.Settings.Bool("decouple_entrances")
	for _, eid := range w.Entrances() {
		e := w.entrances[eid]
		if e.Type == "" {
			continue
		}
		if e.IsConnected() {
			w.detach(e)
		}
		e.Coupled = !decoupled || alwaysCoupledEntranceTypes[e.Type]
		e.Replaces = NoEntrance
		e.Shuffled = shuffled[e.Type]
		if !e.Shuffled {
			if !e.Original.Valid() {
				return newGraphError(ErrCodeDanglingEdge, w.ID, e.Name, "cannot reset entrance without original connection")
			}
			w.connect(e, e.Original)
		}
	}
	w.bump()
	return nil
}

// EntrancePool lists live typed entrances of the given types that are primary
// (or any direction when decoupled), ordered by type priority then name.
func (w *World) EntrancePool(types ...string) []EntranceID {
	want := make(map[string]bool, len(types))
	for _, t := range types {
		want[t] = true
	}
	var pool []EntranceID
	for _, eid := range w.Entrances() {
		e := w.entrances[eid]
		if e.Type == "" || (len(want) > 0 && !want[e.Type]) {
			continue
		}
		if e.Primary || !e.Coupled {
			pool = append(pool, eid)
		}
	}
	slices.SortStableFunc(pool, func(a, b EntranceID) int {
		ea, eb := w.entrances[a], w.entrances[b]
		if ea.TypePriority != eb.TypePriority {
			return ea.TypePriority - eb.TypePriority
		}
		return strings.Compare(ea.Name, eb.Name)
	})
	return pool
}

// CheckConsistency verifies that no live entrance leads out of the live set
// and that reverse and alternate links are symmetric.
func (w *World) CheckConsistency() error {
	for _, eid := range w.Entrances() {
		e := w.entrances[eid]
		if e.IsConnected() && !w.regions[e.Connected].live {
			return newGraphError(ErrCodeDanglingEdge, w.ID, e.Name,
				"live entrance targets non-live region %q", w.regions[e.Connected].Name)
		}
		if e.Reverse.Valid() && w.entrances[e.Reverse].Reverse != eid {
			return newGraphError(ErrCodeReverseMismatch, w.ID, e.Name,
				"reverse %q does not point back", w.entrances[e.Reverse].Name)
		}
		if e.Alternate.Valid() && w.entrances[e.Alternate].Alternate != eid {
			return newGraphError(ErrCodeAlternateMismatch, w.ID, e.Name,
				"alternate %q does not point back", w.entrances[e.Alternate].Name)
		}
	}
	for _, rid := range w.live {
		for _, eid := range w.regions[rid].Entrances {
			if w.entrances[eid].Connected != rid {
				return newGraphError(ErrCodeDanglingEdge, w.ID, w.entrances[eid].Name,
					"region %q lists an entrance that leads elsewhere", w.regions[rid].Name)
			}
		}
	}
	return nil
}

func (w *World) validEntrance(id EntranceID) bool { return id >= 0 && int(id) < len(w.entrances) }
func (w *World) validRegion(id RegionID) bool     { return id >= 0 && int(id) < len(w.regions) }
