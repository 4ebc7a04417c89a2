package search

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/ootlogic/internal/ir"
	"github.com/roach88/ootlogic/internal/world"
)

// EntryKind tells what a sphere log entry tags.
type EntryKind string

const (
	KindLocation EntryKind = "location"
	KindEntrance EntryKind = "entrance"
)

// SphereEntry is one tagged location or entrance.
type SphereEntry struct {
	Kind   EntryKind `json:"kind" yaml:"kind"`
	World  int       `json:"world" yaml:"world"`
	Name   string    `json:"name" yaml:"name"`
	Item   string    `json:"item,omitempty" yaml:"item,omitempty"`
	Sphere int       `json:"sphere" yaml:"sphere"`
}

// SphereLog is the ordered result of CollectSpheres: pseudo-starting
// locations in sphere -1 first, then each sphere's locations followed by the
// entrances that became accessible in it.
type SphereLog struct {
	Entries []SphereEntry `json:"entries" yaml:"entries"`
}

func (l *SphereLog) add(kind EntryKind, worldID int, name, item string, sphere int) {
	l.Entries = append(l.Entries, SphereEntry{Kind: kind, World: worldID, Name: name, Item: item, Sphere: sphere})
}

// Lookup returns the sphere of a named location or entrance.
func (l *SphereLog) Lookup(kind EntryKind, worldID int, name string) (int, bool) {
	for _, e := range l.Entries {
		if e.Kind == kind && e.World == worldID && e.Name == name {
			return e.Sphere, true
		}
	}
	return 0, false
}

// Count returns the number of spheres, not counting sphere -1.
func (l *SphereLog) Count() int {
	n := 0
	for _, e := range l.Entries {
		if e.Sphere+1 > n {
			n = e.Sphere + 1
		}
	}
	return n
}

// Snapshot returns the log as an ir value for canonical hashing.
func (l *SphereLog) Snapshot() ir.Object {
	entries := make(ir.List, len(l.Entries))
	for i, e := range l.Entries {
		entries[i] = ir.Object{
			"kind":   ir.String(string(e.Kind)),
			"world":  ir.Int(e.World),
			"name":   ir.String(e.Name),
			"item":   ir.String(e.Item),
			"sphere": ir.Int(e.Sphere),
		}
	}
	return ir.Object{"entries": entries}
}

// String renders one entry per line.
func (l *SphereLog) String() string {
	var b strings.Builder
	for _, e := range l.Entries {
		fmt.Fprintf(&b, "%3d %-8s w%d %s", e.Sphere, e.Kind, e.World, e.Name)
		if e.Item != "" {
			fmt.Fprintf(&b, " [%s]", e.Item)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// visitReachable marks every location of locs whose region is reached and
// whose rule passes, expanding again after each pass that obtained an item.
// fn runs once for each location whose item is obtained.
func (s *Search) visitReachable(locs []world.LocationRef, fn func(world.LocationRef, *world.Location)) {
	for more := true; more; {
		s.expand()
		more = false
		for _, ref := range locs {
			if s.visitedLocations[ref] || ref.World < 0 || ref.World >= len(s.states) {
				continue
			}
			w := s.worldOf(ref.World)
			l := w.LocationByID(ref.ID)
			if !l.Parent.Valid() || !s.locationAccess(ref, l) {
				continue
			}
			s.accessible[ref] = true
			if l.Item.IsZero() || (w.CollectCheckedOnly && !l.Checked && !l.Internal) {
				continue
			}
			s.visitedLocations[ref] = true
			more = true
			if fn != nil {
				fn(ref, l)
			}
		}
	}
}

func (s *Search) locationAccess(ref world.LocationRef, l *world.Location) bool {
	region := world.RegionRef{World: ref.World, ID: l.Parent}
	st := s.states[ref.World]
	spot := world.LocationSpot(ref.ID)
	for _, c := range []*ageCache{s.adult, s.child} {
		if c.reached(region) && s.eval(&l.Rule, st, world.Context{Age: c.age, Spot: spot}) {
			return true
		}
	}
	return false
}

// VisitLocations marks reachable locations visited without collecting their
// items. Nil locs means every progression location.
func (s *Search) VisitLocations(locs []world.LocationRef) {
	s.sync()
	if locs == nil {
		locs = s.ProgressionLocations()
	}
	s.visitReachable(locs, nil)
	s.record()
}

// CollectLocations is the incremental tracker pass. It collects pending
// pseudo-starting items, then the items of every reachable location, then
// puts the items of checked but unreachable locations into the inventory
// ledger only. Nil locs means every progression location.
func (s *Search) CollectLocations(locs []world.LocationRef) {
	s.sync()
	s.collectPendingStarting()
	if locs == nil {
		locs = s.ProgressionLocations()
	}
	s.visitReachable(locs, func(ref world.LocationRef, l *world.Location) {
		locationsCollectedTotal.Inc()
		if s.pendingInventory[ref] {
			s.collect(l.Item, world.LedgerProgress)
			delete(s.pendingInventory, ref)
			return
		}
		s.collect(l.Item, world.LedgerBoth)
	})
	for _, ref := range locs {
		if s.visitedLocations[ref] || s.pendingInventory[ref] {
			continue
		}
		if l := s.location(ref); l.Checked && !l.Item.IsZero() {
			s.collect(l.Item, world.LedgerInventory)
			s.pendingInventory[ref] = true
		}
	}
	s.record()
}

// CollectSpheres recomputes the progression order from scratch: it resets,
// collects pseudo-starting items, then repeatedly collects every reachable
// location of locs as one sphere. Locations and entrances get their Sphere
// field set; anything never reached keeps -1. Nil locs means every
// progression location.
func (s *Search) CollectSpheres(locs []world.LocationRef) *SphereLog {
	start := time.Now()
	s.reset(resetExplicit)
	s.clearSpheres()

	log := &SphereLog{}
	for _, ref := range s.pseudo {
		l := s.location(ref)
		log.add(KindLocation, ref.World, l.Name, l.Item.Name(), -1)
	}
	s.collectPendingStarting()
	if locs == nil {
		locs = s.ProgressionLocations()
	}

	var remaining []world.EntranceRef
	for _, st := range s.states {
		w := st.World()
		for _, id := range w.Entrances() {
			remaining = append(remaining, world.EntranceRef{World: w.ID, ID: id})
		}
	}

	for {
		var collected []world.LocationRef
		s.visitReachable(locs, func(ref world.LocationRef, _ *world.Location) {
			collected = append(collected, ref)
		})
		if len(collected) == 0 {
			break
		}

		var entered, unaccessed []world.EntranceRef
		for _, ref := range remaining {
			if s.spotAccess(ref.World, world.EntranceSpot(ref.ID), world.AgeAny, world.TODNone) {
				s.worldOf(ref.World).EntranceByID(ref.ID).Sphere = s.sphere
				entered = append(entered, ref)
			} else {
				unaccessed = append(unaccessed, ref)
			}
		}
		remaining = unaccessed

		for _, ref := range collected {
			l := s.location(ref)
			l.Sphere = s.sphere
			log.add(KindLocation, ref.World, l.Name, l.Item.Name(), s.sphere)
			s.collect(l.Item, world.LedgerBoth)
			locationsCollectedTotal.Inc()
		}
		for _, ref := range entered {
			log.add(KindEntrance, ref.World, s.worldOf(ref.World).EntranceByID(ref.ID).Name, "", s.sphere)
		}
		s.sphere++
	}
	s.record()

	sphereDuration.Observe(time.Since(start).Seconds())
	sphereCount.Set(float64(s.sphere))
	s.logger.Info("spheres collected", "spheres", s.sphere, "entries", len(log.Entries))
	return log
}

func (s *Search) clearSpheres() {
	for _, st := range s.states {
		w := st.World()
		for _, id := range w.Locations() {
			if l := w.LocationByID(id); !l.Skipped {
				l.Sphere = -1
			}
		}
		for _, id := range w.Entrances() {
			w.EntranceByID(id).Sphere = -1
		}
	}
}
