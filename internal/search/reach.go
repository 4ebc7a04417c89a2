package search

import (
	"github.com/roach88/ootlogic/internal/world"
)

// Expand runs both worklists to a fixed point for the current ledgers.
func (s *Search) Expand() {
	s.sync()
	s.expand()
	s.record()
}

func (s *Search) expand() {
	s.expandRegions(s.adult)
	s.expandRegions(s.child)
}

// expandRegions drains an age's worklist. An entrance stays queued until its
// rule has passed and its target is reached. When a newly reached region
// adds time bits to its world root, every entrance that failed so far in this
// pass is retried, since rules may depend on the time known at the root.
func (s *Search) expandRegions(c *ageCache) {
	age := c.age.String()
	expansionsTotal.WithLabelValues(age).Inc()

	var failed []world.EntranceRef
	queue := c.queue
	if s.regionsOnly {
		queue = s.seedVisibleRegions(c, queue)
	}
	for i := 0; i < len(queue); i++ {
		ref := queue[i]
		w := s.worldOf(ref.World)
		e := w.EntranceByID(ref.ID)
		st := s.states[ref.World]
		ctx := world.Context{Age: c.age, Spot: world.EntranceSpot(ref.ID)}
		target := world.RegionRef{World: ref.World, ID: e.Connected}

		if e.IsConnected() && !c.reached(target) {
			if !s.eval(&e.Rule, st, ctx) {
				edgeChecksTotal.WithLabelValues(age, "fail").Inc()
				failed = append(failed, ref)
				if s.regionsOnly && (e.Shuffled || e.Warp) && w.Settings.Bool("visit_all_connected_entrances") {
					c.reach(target, w.RegionByID(e.Connected).ProvidesTime)
					queue = append(queue, s.exitsOf(target)...)
				}
				continue
			}
			edgeChecksTotal.WithLabelValues(age, "pass").Inc()
			region := w.RegionByID(e.Connected)
			root := s.roots[ref.World]
			if provides := region.ProvidesTime; provides != world.TODNone && c.tod[root]&provides != provides {
				queue = append(queue, failed...)
				failed = nil
				c.tod[root] |= provides
			}
			s.visitedEntrances[ref] = true
			c.reach(target, region.ProvidesTime)
			queue = append(queue, s.exitsOf(target)...)
			continue
		}

		if s.visitedEntrances[ref] {
			continue
		}
		if s.eval(&e.Rule, st, ctx) {
			edgeChecksTotal.WithLabelValues(age, "pass").Inc()
			s.visitedEntrances[ref] = true
			continue
		}
		edgeChecksTotal.WithLabelValues(age, "fail").Inc()
		failed = append(failed, ref)
	}
	c.queue = failed
}

// seedVisibleRegions marks the regions a regions-only search shows without
// checking entrance rules, and queues the exits of connected ones. No time
// bits are added since a found entrance does not grant access.
func (s *Search) seedVisibleRegions(c *ageCache, queue []world.EntranceRef) []world.EntranceRef {
	for _, st := range s.states {
		w := st.World()
		switch {
		case w.Settings.Bool("visit_all_entrances"):
			for _, id := range w.LiveRegions() {
				c.reach(world.RegionRef{World: w.ID, ID: id}, world.TODNone)
			}
		case w.Settings.Bool("visit_all_connected_entrances"):
			for _, id := range w.LiveRegions() {
				ref := world.RegionRef{World: w.ID, ID: id}
				if c.reached(ref) || !hasShuffledExit(w, id) {
					continue
				}
				c.reach(ref, world.TODNone)
				queue = append(queue, s.exitsOf(ref)...)
			}
		}
	}
	return queue
}

func hasShuffledExit(w *world.World, id world.RegionID) bool {
	for _, eid := range w.RegionByID(id).Exits {
		if e := w.EntranceByID(eid); e.IsConnected() && e.Shuffled {
			return true
		}
	}
	return false
}

// expandTOD spreads the time bits tod from the visited regions that already
// have them, over entrances between visited regions only. It reports whether
// the bits reached goal.
func (s *Search) expandTOD(c *ageCache, goal world.RegionRef, tod world.TimeOfDay) bool {
	var queue []world.EntranceRef
	for _, r := range c.regions {
		if r.World == goal.World && c.tod[r]&tod != 0 {
			queue = append(queue, s.exitsOf(r)...)
		}
	}
	for i := 0; i < len(queue); i++ {
		ref := queue[i]
		e := s.worldOf(ref.World).EntranceByID(ref.ID)
		if !e.IsConnected() {
			continue
		}
		target := world.RegionRef{World: ref.World, ID: e.Connected}
		have, ok := c.tod[target]
		if !ok || tod&^have == 0 {
			continue
		}
		ctx := world.Context{Age: c.age, Spot: world.EntranceSpot(ref.ID), TOD: tod}
		if !s.eval(&e.Rule, s.states[ref.World], ctx) {
			continue
		}
		c.tod[target] |= tod
		if target == goal {
			todExpansionsTotal.WithLabelValues("hit").Inc()
			return true
		}
		queue = append(queue, s.exitsOf(target)...)
	}
	todExpansionsTotal.WithLabelValues("miss").Inc()
	return false
}

// CanReach reports whether a region is reached. AgeBoth needs both ages,
// AgeAny either. A non-zero tod also requires those time bits at the region.
func (s *Search) CanReach(region world.RegionRef, age world.Age, tod world.TimeOfDay) bool {
	s.sync()
	return s.canReach(region, age, tod)
}

func (s *Search) canReach(region world.RegionRef, age world.Age, tod world.TimeOfDay) bool {
	switch age {
	case world.AgeChild, world.AgeAdult:
		c := s.cache(age)
		have, ok := c.tod[region]
		if !ok {
			return false
		}
		if tod == world.TODNone {
			return true
		}
		return have&tod == tod || s.expandTOD(c, region, tod)
	case world.AgeBoth:
		return s.canReach(region, world.AgeAdult, tod) && s.canReach(region, world.AgeChild, tod)
	}
	return s.canReach(region, world.AgeAdult, tod) || s.canReach(region, world.AgeChild, tod)
}

// SpotAccess reports whether a spot's region is reached and the spot's own
// rule passes, for the given age and time.
func (s *Search) SpotAccess(worldID int, spot world.Spot, age world.Age, tod world.TimeOfDay) bool {
	s.sync()
	return s.spotAccess(worldID, spot, age, tod)
}

func (s *Search) spotAccess(worldID int, spot world.Spot, age world.Age, tod world.TimeOfDay) bool {
	if worldID < 0 || worldID >= len(s.states) {
		return false
	}
	w := s.worldOf(worldID)
	parent := w.SpotRegion(spot)
	if !parent.Valid() {
		return false
	}
	region := world.RegionRef{World: worldID, ID: parent}
	rule := w.SpotRule(spot)
	st := s.states[worldID]
	passes := func(a world.Age) bool {
		return s.eval(rule, st, world.Context{Age: a, Spot: spot, TOD: tod})
	}
	switch age {
	case world.AgeChild, world.AgeAdult:
		return s.canReach(region, age, tod) && passes(age)
	case world.AgeBoth:
		return s.canReach(region, world.AgeBoth, tod) && passes(world.AgeAdult) && passes(world.AgeChild)
	}
	return (s.canReach(region, world.AgeAdult, tod) && passes(world.AgeAdult)) ||
		(s.canReach(region, world.AgeChild, tod) && passes(world.AgeChild))
}
