package search

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/ootlogic/internal/world"
)

// ErrNoStates is returned by New when no player state is given.
var ErrNoStates = errors.New("search: no states")

// ageCache is the reachability state of one age across all worlds.
type ageCache struct {
	age world.Age

	// queue holds entrances not yet resolved.
	queue []world.EntranceRef

	// regions lists visited regions in visit order; tod holds the time bits
	// known at each of them. A region is visited iff it has a tod entry.
	regions []world.RegionRef
	tod     map[world.RegionRef]world.TimeOfDay
}

func (c *ageCache) reached(r world.RegionRef) bool {
	_, ok := c.tod[r]
	return ok
}

func (c *ageCache) reach(r world.RegionRef, bits world.TimeOfDay) {
	if _, ok := c.tod[r]; !ok {
		c.regions = append(c.regions, r)
	}
	c.tod[r] |= bits
}

// owned is an item collection made by the search itself.
type owned struct {
	item    world.Item
	ledgers world.Ledger
}

// Search is the reachability and sphere engine over one state per player.
// States are indexed by world id.
type Search struct {
	states []*world.State
	roots  []world.RegionRef
	logger *slog.Logger

	child *ageCache
	adult *ageCache

	visitedLocations map[world.LocationRef]bool
	visitedEntrances map[world.EntranceRef]bool
	accessible       map[world.LocationRef]bool

	sphere           int
	pseudo           []world.LocationRef
	pendingSkipped   []world.LocationRef
	pendingInventory map[world.LocationRef]bool
	owned            []owned

	worldVersions []uint64
	stateVersions []uint64
	removals      []uint64

	// busy is set while rules are evaluated; rules that query reachability
	// must not trigger a resync.
	busy bool

	regionsOnly bool
}

// Option configures a Search.
type Option func(*Search)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Search) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRegionsOnly makes the search compute region visibility for trackers.
// A world with setting visit_all_entrances sees every live region. A world
// with visit_all_connected_entrances sees every region that has a shuffled
// exit connected, and any region behind a found shuffled or warp entrance
// whether or not its rule passes. Location logic is not affected for other
// worlds.
func WithRegionsOnly() Option {
	return func(s *Search) { s.regionsOnly = true }
}

// New returns a search over states, binding itself as each state's reacher.
// states[i] must belong to the world with id i.
func New(states []*world.State, opts ...Option) (*Search, error) {
	if len(states) == 0 {
		return nil, ErrNoStates
	}
	s := &Search{
		states: states,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	for i, st := range states {
		if st == nil {
			return nil, fmt.Errorf("search: state %d is nil", i)
		}
		if id := st.World().ID; id != i {
			return nil, fmt.Errorf("search: state %d belongs to world %d", i, id)
		}
	}
	s.worldVersions = make([]uint64, len(states))
	s.stateVersions = make([]uint64, len(states))
	s.removals = make([]uint64, len(states))
	if err := s.findRoots(); err != nil {
		return nil, err
	}
	for _, st := range states {
		st.SetReacher(s)
	}
	s.reset(resetExplicit)
	return s, nil
}

// MaxExplore collects items, then every location that holds or will hold an
// item, the way a tracker computes everything the player could reach.
func MaxExplore(states []*world.State, items []world.Item, opts ...Option) (*Search, error) {
	s, err := New(states, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.CollectAll(items); err != nil {
		return nil, err
	}
	var locs []world.LocationRef
	for _, st := range states {
		w := st.World()
		for _, id := range w.Locations() {
			if l := w.LocationByID(id); !l.Item.IsZero() || l.Shuffled {
				locs = append(locs, world.LocationRef{World: w.ID, ID: id})
			}
		}
	}
	s.CollectLocations(locs)
	return s, nil
}

// WithItems collects items and expands once.
func WithItems(states []*world.State, items []world.Item, opts ...Option) (*Search, error) {
	s, err := New(states, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.CollectAll(items); err != nil {
		return nil, err
	}
	s.Expand()
	return s, nil
}

func (s *Search) findRoots() error {
	s.roots = s.roots[:0]
	for _, st := range s.states {
		root, err := st.World().Root()
		if err != nil {
			return fmt.Errorf("search: world %d: %w", st.World().ID, err)
		}
		s.roots = append(s.roots, world.RegionRef{World: root.World, ID: root.ID})
	}
	return nil
}

// Reset rolls back the items the search collected and rebuilds every cache
// from the roots.
func (s *Search) Reset() {
	s.reset(resetExplicit)
}

func (s *Search) reset(reason string) {
	resetsTotal.WithLabelValues(reason).Inc()
	s.logger.Debug("search reset", "reason", reason, "rollback", len(s.owned))

	for i := len(s.owned) - 1; i >= 0; i-- {
		o := s.owned[i]
		s.states[o.item.World].Remove(o.item, o.ledgers)
	}
	s.owned = nil

	if reason == resetWorld {
		// A dungeon swap may have replaced the root's arena slot.
		if err := s.findRoots(); err != nil {
			s.logger.Warn("search root lookup failed", "error", err)
		}
	}

	s.sphere = 0
	s.child = s.newAgeCache(world.AgeChild)
	s.adult = s.newAgeCache(world.AgeAdult)
	s.visitedLocations = make(map[world.LocationRef]bool)
	s.visitedEntrances = make(map[world.EntranceRef]bool)
	s.accessible = make(map[world.LocationRef]bool)
	s.pendingInventory = make(map[world.LocationRef]bool)
	s.visitPseudoStarting()
	s.expand()
	s.record()
}

func (s *Search) newAgeCache(age world.Age) *ageCache {
	c := &ageCache{age: age, tod: make(map[world.RegionRef]world.TimeOfDay)}
	for _, root := range s.roots {
		c.reach(root, world.TODNone)
		c.queue = append(c.queue, s.exitsOf(root)...)
	}
	return c
}

// visitPseudoStarting marks skipped locations visited in sphere -1. Their
// items are collected by collectPendingStarting once they are placed.
func (s *Search) visitPseudoStarting() {
	s.pseudo = nil
	s.pendingSkipped = nil
	for _, st := range s.states {
		w := st.World()
		for _, id := range w.SkippedLocations() {
			ref := world.LocationRef{World: w.ID, ID: id}
			w.LocationByID(id).Sphere = -1
			s.visitedLocations[ref] = true
			s.accessible[ref] = true
			s.pseudo = append(s.pseudo, ref)
			s.pendingSkipped = append(s.pendingSkipped, ref)
		}
	}
}

func (s *Search) collectPendingStarting() {
	var pending []world.LocationRef
	for _, ref := range s.pendingSkipped {
		l := s.location(ref)
		if l.Item.IsZero() {
			pending = append(pending, ref)
			continue
		}
		s.collect(l.Item, world.LedgerBoth)
	}
	s.pendingSkipped = pending
}

// record stores the versions the caches now reflect.
func (s *Search) record() {
	for i, st := range s.states {
		s.worldVersions[i] = st.World().Version()
		s.stateVersions[i] = st.Version()
		s.removals[i] = st.Removals()
	}
}

// sync brings the caches up to date with the worlds and states: a structural
// change or a shrunk ledger resets, new items re-run expansion.
func (s *Search) sync() {
	if s.busy {
		return
	}
	for i, st := range s.states {
		if st.World().Version() != s.worldVersions[i] {
			s.reset(resetWorld)
			return
		}
	}
	for i, st := range s.states {
		if st.Removals() != s.removals[i] {
			s.reset(resetLedger)
			return
		}
	}
	for i, st := range s.states {
		if st.Version() != s.stateVersions[i] {
			s.expand()
			s.record()
			return
		}
	}
}

// Collect credits an item to the ledgers of the world that owns it.
func (s *Search) Collect(item world.Item) error {
	st, err := s.stateOf(item)
	if err != nil {
		return err
	}
	st.Collect(item, world.LedgerBoth)
	return nil
}

// CollectAll collects every item.
func (s *Search) CollectAll(items []world.Item) error {
	for _, item := range items {
		if err := s.Collect(item); err != nil {
			return err
		}
	}
	return nil
}

// Uncollect removes an item from the ledgers of the world that owns it. The
// next query resets the search.
func (s *Search) Uncollect(item world.Item) error {
	st, err := s.stateOf(item)
	if err != nil {
		return err
	}
	st.Remove(item, world.LedgerBoth)
	return nil
}

func (s *Search) stateOf(item world.Item) (*world.State, error) {
	if item.World < 0 || item.World >= len(s.states) {
		return nil, world.NewNotFoundError(world.ErrCodeItemNotFound, item.World, item.Name())
	}
	return s.states[item.World], nil
}

// collect is a collection the search owns and rolls back on reset.
func (s *Search) collect(item world.Item, ledgers world.Ledger) {
	st, err := s.stateOf(item)
	if err != nil {
		s.logger.Warn("item for unknown world", "item", item.Name(), "world", item.World)
		return
	}
	st.Collect(item, ledgers)
	s.owned = append(s.owned, owned{item: item, ledgers: ledgers})
}

// Sphere returns the index of the next sphere CollectSpheres would tag.
func (s *Search) Sphere() int { return s.sphere }

// States returns the player states.
func (s *Search) States() []*world.State { return s.states }

// Visited reports whether a location's item has been logically obtained.
func (s *Search) Visited(ref world.LocationRef) bool {
	s.sync()
	return s.visitedLocations[ref]
}

// Accessible reports whether a location was found reachable, whether or not
// its item was collected.
func (s *Search) Accessible(ref world.LocationRef) bool {
	s.sync()
	return s.accessible[ref]
}

// EntranceVisited reports whether an entrance's rule passed from a reached
// region.
func (s *Search) EntranceVisited(ref world.EntranceRef) bool {
	s.sync()
	return s.visitedEntrances[ref]
}

// VisitedRegions lists the regions reached by a real age in visit order.
func (s *Search) VisitedRegions(age world.Age) []world.RegionRef {
	s.sync()
	c := s.cache(age)
	if c == nil {
		return nil
	}
	return append([]world.RegionRef(nil), c.regions...)
}

// ProgressionLocations lists every live location holding an advancement item.
func (s *Search) ProgressionLocations() []world.LocationRef {
	var out []world.LocationRef
	for _, st := range s.states {
		w := st.World()
		for _, id := range w.Locations() {
			if w.LocationByID(id).HasProgression() {
				out = append(out, world.LocationRef{World: w.ID, ID: id})
			}
		}
	}
	return out
}

func (s *Search) cache(age world.Age) *ageCache {
	switch age {
	case world.AgeChild:
		return s.child
	case world.AgeAdult:
		return s.adult
	}
	return nil
}

func (s *Search) worldOf(id int) *world.World { return s.states[id].World() }

func (s *Search) location(ref world.LocationRef) *world.Location {
	return s.worldOf(ref.World).LocationByID(ref.ID)
}

func (s *Search) exitsOf(r world.RegionRef) []world.EntranceRef {
	region := s.worldOf(r.World).RegionByID(r.ID)
	out := make([]world.EntranceRef, len(region.Exits))
	for i, e := range region.Exits {
		out[i] = world.EntranceRef{World: r.World, ID: e}
	}
	return out
}

// eval runs a spot's rule with reachability queries marked as nested.
func (s *Search) eval(rule *world.Rule, st *world.State, ctx world.Context) bool {
	prev := s.busy
	s.busy = true
	ok := rule.Eval(st, ctx)
	s.busy = prev
	return ok
}
