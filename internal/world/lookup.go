package world

// Name indices cover live regions only. They are dropped on every structural
// change and rebuilt on the next lookup.

func (w *World) dropIndices() {
	w.regionIdx = nil
	w.entranceIdx = nil
	w.locationIdx = nil
}

func (w *World) buildIndices() {
	if w.regionIdx != nil && w.entranceIdx != nil && w.locationIdx != nil {
		return
	}
	w.regionIdx = make(map[string]RegionID, len(w.live))
	w.entranceIdx = make(map[string]EntranceID)
	w.locationIdx = make(map[string]LocationID)
	for _, rid := range w.live {
		r := w.regions[rid]
		if prev, dup := w.regionIdx[r.Name]; dup && prev != rid {
			w.logger.Warn("duplicate live region name", "region", r.Name)
		}
		w.regionIdx[r.Name] = rid
		for _, eid := range r.Exits {
			w.entranceIdx[w.entrances[eid].Name] = eid
		}
		for _, lid := range r.Locations {
			w.locationIdx[w.locations[lid].Name] = lid
		}
	}
}

// Region looks up a live region by name.
func (w *World) Region(name string) (*Region, error) {
	w.buildIndices()
	if id, ok := w.regionIdx[name]; ok {
		return w.regions[id], nil
	}
	return nil, NewNotFoundError(ErrCodeRegionNotFound, w.ID, name)
}

// VariantRegion looks up a region inside one dungeon variant, live or not.
// An empty variant searches the live set.
func (w *World) VariantRegion(name, variant string) (*Region, error) {
	if variant == "" {
		return w.Region(name)
	}
	for _, id := range w.variants[variant] {
		if w.regions[id].Name == name {
			return w.regions[id], nil
		}
	}
	return nil, NewNotFoundError(ErrCodeRegionNotFound, w.ID, name)
}

// Entrance looks up a live entrance by name.
func (w *World) Entrance(name string) (*Entrance, error) {
	w.buildIndices()
	if id, ok := w.entranceIdx[name]; ok {
		return w.entrances[id], nil
	}
	return nil, NewNotFoundError(ErrCodeEntranceNotFound, w.ID, name)
}

// VariantEntrance looks up an entrance owned by a region of one dungeon
// variant, live or not. An empty variant searches the live set.
func (w *World) VariantEntrance(name, variant string) (*Entrance, error) {
	if variant == "" {
		return w.Entrance(name)
	}
	for _, rid := range w.variants[variant] {
		if id := w.regionHasExit(w.regions[rid], name); id != NoEntrance {
			return w.entrances[id], nil
		}
	}
	return nil, NewNotFoundError(ErrCodeEntranceNotFound, w.ID, name)
}

// Location looks up a live location by name.
func (w *World) Location(name string) (*Location, error) {
	w.buildIndices()
	if id, ok := w.locationIdx[name]; ok {
		return w.locations[id], nil
	}
	return nil, NewNotFoundError(ErrCodeLocationNotFound, w.ID, name)
}

// RegionByID returns the arena region. The id must be valid.
func (w *World) RegionByID(id RegionID) *Region { return w.regions[id] }

// EntranceByID returns the arena entrance. The id must be valid.
func (w *World) EntranceByID(id EntranceID) *Entrance { return w.entrances[id] }

// LocationByID returns the arena location. The id must be valid.
func (w *World) LocationByID(id LocationID) *Location { return w.locations[id] }

// LiveRegions lists live regions in activation order.
func (w *World) LiveRegions() []RegionID { return w.live }

// Locations lists the attached locations of live regions.
func (w *World) Locations() []LocationID {
	var out []LocationID
	for _, rid := range w.live {
		out = append(out, w.regions[rid].Locations...)
	}
	return out
}

// Entrances lists the exits of live regions.
func (w *World) Entrances() []EntranceID {
	var out []EntranceID
	for _, rid := range w.live {
		out = append(out, w.regions[rid].Exits...)
	}
	return out
}

// RegionCount, EntranceCount and LocationCount size the arenas.
func (w *World) RegionCount() int   { return len(w.regions) }
func (w *World) EntranceCount() int { return len(w.entrances) }
func (w *World) LocationCount() int { return len(w.locations) }

// SpotRegion returns the region that owns a spot.
func (w *World) SpotRegion(s Spot) RegionID {
	switch s.Kind {
	case SpotEntrance:
		return w.entrances[s.ID].Parent
	case SpotLocation:
		return w.locations[s.ID].Parent
	}
	return NoRegion
}

// SpotName returns the entrance or location name of a spot.
func (w *World) SpotName(s Spot) string {
	switch s.Kind {
	case SpotEntrance:
		return w.entrances[s.ID].Name
	case SpotLocation:
		return w.locations[s.ID].Name
	}
	return ""
}

// SpotRule returns the rule attached to a spot.
func (w *World) SpotRule(s Spot) *Rule {
	switch s.Kind {
	case SpotEntrance:
		return &w.entrances[s.ID].Rule
	case SpotLocation:
		return &w.locations[s.ID].Rule
	}
	return nil
}

// RootName is the region every search starts from.
const RootName = "Root"

// Root returns the live root region.
func (w *World) Root() (*Region, error) { return w.Region(RootName) }
