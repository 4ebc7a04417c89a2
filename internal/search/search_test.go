package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ootlogic/internal/ir"
	"github.com/roach88/ootlogic/internal/testutil"
	"github.com/roach88/ootlogic/internal/world"
)

func TestNew_Errors(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNoStates)

	w := buildSearchWorld(t, 1)
	_, err = New([]*world.State{world.NewState(w)})
	assert.ErrorContains(t, err, "belongs to world 1")
}

func TestCollectSpheres_SwordScenario(t *testing.T) {
	w := buildSearchWorld(t, 0)
	s := newSearch(t, w)
	prize := locRef(t, w, "Prize")

	assert.False(t, s.Visited(prize))

	log := s.CollectSpheres(nil)
	sphere, ok := log.Lookup(KindLocation, 0, "Start Chest")
	require.True(t, ok)
	assert.Equal(t, 0, sphere)
	sphere, ok = log.Lookup(KindLocation, 0, "Prize")
	require.True(t, ok)
	assert.Equal(t, 1, sphere)
	assert.Equal(t, 1, w.LocationByID(prize.ID).Sphere)
	assert.True(t, s.Visited(prize))

	// Entrances are tagged with the sphere they first became usable in.
	assert.Equal(t, 0, entrance(t, w, "Root -> Cellar").Sphere)
	assert.Equal(t, 1, entrance(t, w, "Root -> Goal").Sphere)
	sphere, ok = log.Lookup(KindEntrance, 0, "Root -> Goal")
	require.True(t, ok)
	assert.Equal(t, 1, sphere)

	// Field needs the Slingshot, which sits behind Field.
	assert.Equal(t, -1, entrance(t, w, "Root -> Field").Sphere)
	_, ok = log.Lookup(KindLocation, 0, "Lobby Chest")
	assert.False(t, ok)
	assert.Equal(t, 2, log.Count())
}

func TestCollectSpheres_PseudoStartingItem(t *testing.T) {
	w := buildSearchWorld(t, 0)
	require.NoError(t, w.SkipLocation(locRef(t, w, "Start Chest").ID))
	s := newSearch(t, w)

	log := s.CollectSpheres(nil)
	require.NotEmpty(t, log.Entries)
	assert.Equal(t, SphereEntry{Kind: KindLocation, World: 0, Name: "Start Chest", Item: "Sword", Sphere: -1}, log.Entries[0])

	sphere, ok := log.Lookup(KindLocation, 0, "Prize")
	require.True(t, ok)
	assert.Equal(t, 0, sphere)
	assert.True(t, s.Visited(locRef(t, w, "Start Chest")))
}

func TestCollectSpheres_Idempotent(t *testing.T) {
	w := buildSearchWorld(t, 0)
	s := newSearch(t, w)
	st := s.States()[0]

	first := s.CollectSpheres(nil)
	progress := st.Progress()
	second := s.CollectSpheres(nil)

	assert.Equal(t, first, second)
	assert.Equal(t, progress, st.Progress())
	assert.Equal(t, 1, st.ItemCount("Sword"))
}

func TestSearch_ResetRollsBackOwnCollections(t *testing.T) {
	w := buildSearchWorld(t, 0)
	s := newSearch(t, w)
	st := s.States()[0]

	require.NoError(t, s.Collect(item(t, w, "Bow")))
	s.CollectLocations(nil)
	assert.True(t, st.Has("Sword", 1))
	assert.True(t, st.Has("Triforce", 1))

	s.Reset()
	assert.False(t, st.Has("Sword", 1))
	assert.False(t, st.Has("Triforce", 1))
	assert.True(t, st.Has("Bow", 1), "caller collections survive a reset")
	assert.False(t, s.Visited(locRef(t, w, "Prize")))
}

func TestSearch_Rewiring(t *testing.T) {
	w := buildSearchWorld(t, 0)
	s := newSearch(t, w)
	prize := locRef(t, w, "Prize")
	goal := regionRef(t, w, "Goal")
	toGoal := entrance(t, w, "Root -> Goal")

	require.NoError(t, s.Collect(item(t, w, "Sword")))
	s.VisitLocations(nil)
	require.True(t, s.Visited(prize))
	require.True(t, s.CanReach(goal, world.AgeAny, world.TODNone))

	_, err := w.Disconnect(toGoal.ID)
	require.NoError(t, err)
	assert.False(t, s.Visited(prize))
	s.VisitLocations(nil)
	assert.False(t, s.Visited(prize))
	assert.False(t, s.CanReach(goal, world.AgeAny, world.TODNone))

	require.NoError(t, w.Connect(toGoal.ID, goal.ID))
	s.VisitLocations(nil)
	assert.True(t, s.Visited(prize))
}

func TestSearch_DungeonSwap(t *testing.T) {
	w := buildSearchWorld(t, 0)
	s := newSearch(t, w)
	require.NoError(t, s.CollectAll([]world.Item{item(t, w, "Slingshot"), item(t, w, "Hookshot")}))

	lobby := locRef(t, w, "Lobby Chest")
	s.VisitLocations([]world.LocationRef{lobby})
	assert.True(t, s.Accessible(lobby))

	require.NoError(t, w.SwapDungeon("Deku Tree", true))
	mq := locRef(t, w, "MQ Lobby Chest")
	assert.False(t, s.Accessible(lobby))
	assert.True(t, s.CanReach(regionRef(t, w, "Dungeon Lobby"), world.AgeAdult, world.TODNone))

	s.VisitLocations([]world.LocationRef{mq})
	assert.False(t, s.Accessible(mq))
	require.NoError(t, s.Collect(item(t, w, "Bow")))
	s.VisitLocations([]world.LocationRef{mq})
	assert.True(t, s.Accessible(mq))
}

func TestSearch_TimeOfDay(t *testing.T) {
	w := buildSearchWorld(t, 0)
	s := newSearch(t, w)
	cellar := regionRef(t, w, "Cellar")
	pot := locRef(t, w, "Cellar Night Pot")

	assert.True(t, s.CanReach(cellar, world.AgeAdult, world.TODNone))
	assert.False(t, s.CanReach(cellar, world.AgeAny, world.TODDampe))
	s.VisitLocations([]world.LocationRef{pot})
	assert.False(t, s.Accessible(pot))

	// Reaching a region where time passes gives the root every time of day,
	// and the secondary expansion carries it to the cellar.
	require.NoError(t, s.Collect(item(t, w, "Slingshot")))
	assert.True(t, s.CanReach(regionRef(t, w, "Field"), world.AgeBoth, world.TODAll))
	assert.True(t, s.CanReach(cellar, world.AgeChild, world.TODDampe))
	s.VisitLocations([]world.LocationRef{pot})
	assert.True(t, s.Accessible(pot))
}

func TestSearch_RootTimeRequeuesFailedEdges(t *testing.T) {
	w := testutil.BuildWorld(t, testutil.TimeGateDescription(), nil, 0)
	s := newSearch(t, w)
	garden := regionRef(t, w, "Garden")

	// New runs a single expansion pass. The garden edge fails first and is
	// only retried because Field adds time bits at the root.
	assert.True(t, s.CanReach(garden, world.AgeBoth, world.TODNone))
	assert.True(t, s.visitedEntrances[world.EntranceRef{World: w.ID, ID: entrance(t, w, "Root -> Garden").ID}])
	assert.Empty(t, s.child.queue)
	assert.Empty(t, s.adult.queue)
}

func TestSearch_RegionsOnlyVisitAll(t *testing.T) {
	w := buildSearchWorld(t, 0)
	lobby := regionRef(t, w, "Dungeon Lobby")

	plain := newSearch(t, w)
	assert.NotContains(t, plain.VisitedRegions(world.AgeChild), lobby)

	w.Settings["visit_all_entrances"] = ir.Bool(true)
	s, err := New([]*world.State{world.NewState(w)}, WithLogger(discard), WithRegionsOnly())
	require.NoError(t, err)
	visible := s.VisitedRegions(world.AgeChild)
	assert.Contains(t, visible, lobby)
	assert.Contains(t, visible, regionRef(t, w, "Market"))
	assert.Len(t, visible, len(w.LiveRegions()))

	// Without the regions-only option the setting changes nothing.
	assert.NotContains(t, newSearch(t, w).VisitedRegions(world.AgeChild), lobby)
}

func TestSearch_RegionsOnlyConnectedEntrances(t *testing.T) {
	w := buildSearchWorld(t, 0)
	require.NoError(t, w.ShuffleEntranceTypes("Dungeon"))
	toLobby := entrance(t, w, "Field -> Dungeon Lobby")
	require.True(t, toLobby.Shuffled)
	require.NoError(t, w.Connect(toLobby.ID, regionRef(t, w, "Dungeon Lobby").ID))
	w.Settings["visit_all_connected_entrances"] = ir.Bool(true)

	s, err := New([]*world.State{world.NewState(w)}, WithLogger(discard), WithRegionsOnly())
	require.NoError(t, err)
	visible := s.VisitedRegions(world.AgeAdult)
	assert.Contains(t, visible, regionRef(t, w, "Field"), "has a connected shuffled exit")
	assert.Contains(t, visible, regionRef(t, w, "Market"), "reached from Field by its rule")
	assert.Contains(t, visible, regionRef(t, w, "Dungeon Lobby"), "found entrance shows its region")
	assert.NotContains(t, visible, regionRef(t, w, "Goal"), "unshuffled edges keep their rules")
	assert.False(t, s.CanReach(regionRef(t, w, "Field"), world.AgeAdult, world.TODDay), "no time is granted")

	plain := newSearch(t, w)
	assert.NotContains(t, plain.VisitedRegions(world.AgeAdult), regionRef(t, w, "Dungeon Lobby"))
}

func TestSearch_SunsSongSkipsNight(t *testing.T) {
	w := buildSearchWorld(t, 0)
	s := newSearch(t, w)
	pot := locRef(t, w, "Cellar Night Pot")

	require.NoError(t, s.CollectAll([]world.Item{item(t, w, "Ocarina"), item(t, w, "Suns Song")}))
	s.VisitLocations([]world.LocationRef{pot})
	assert.True(t, s.Accessible(pot))
	assert.False(t, s.CanReach(regionRef(t, w, "Cellar"), world.AgeAny, world.TODDampe))
}

func TestSearch_Ages(t *testing.T) {
	w := buildSearchWorld(t, 0)
	s := newSearch(t, w)
	require.NoError(t, s.Collect(item(t, w, "Slingshot")))
	pot := locRef(t, w, "Market Child Pot")
	spot := world.LocationSpot(pot.ID)

	assert.True(t, s.SpotAccess(0, spot, world.AgeChild, world.TODNone))
	assert.False(t, s.SpotAccess(0, spot, world.AgeAdult, world.TODNone))
	assert.False(t, s.SpotAccess(0, spot, world.AgeBoth, world.TODNone))
	assert.True(t, s.SpotAccess(0, spot, world.AgeAny, world.TODNone))
	assert.False(t, s.SpotAccess(5, spot, world.AgeAny, world.TODNone))

	// Rupees are not progression: the pot is reachable but its item is not
	// obtained logically unless it is asked for.
	s.VisitLocations(nil)
	assert.False(t, s.Accessible(pot))
	s.VisitLocations([]world.LocationRef{pot})
	assert.True(t, s.Accessible(pot))
	assert.True(t, s.Visited(pot))
}

func TestSearch_Monotonic(t *testing.T) {
	w := buildSearchWorld(t, 0)
	s := newSearch(t, w)

	before := s.VisitedRegions(world.AgeAdult)
	require.NoError(t, s.Collect(item(t, w, "Sword")))
	after := s.VisitedRegions(world.AgeAdult)
	assert.Subset(t, after, before)
	assert.Greater(t, len(after), len(before))
	assert.Nil(t, s.VisitedRegions(world.AgeAny))
}

func TestSearch_UncollectInvalidates(t *testing.T) {
	w := buildSearchWorld(t, 0)
	s := newSearch(t, w)
	field := regionRef(t, w, "Field")
	sling := item(t, w, "Slingshot")

	require.NoError(t, s.Collect(sling))
	assert.True(t, s.CanReach(field, world.AgeAny, world.TODNone))
	assert.True(t, s.EntranceVisited(world.EntranceRef{World: 0, ID: entrance(t, w, "Root -> Field").ID}))

	require.NoError(t, s.Uncollect(sling))
	assert.False(t, s.CanReach(field, world.AgeAny, world.TODNone))
	assert.False(t, s.EntranceVisited(world.EntranceRef{World: 0, ID: entrance(t, w, "Root -> Field").ID}))

	err := s.Collect(world.Item{Info: sling.Info, World: 3})
	assert.True(t, world.IsNotFound(err))
}

func TestCollectLocations_CheckedOnly(t *testing.T) {
	w := buildSearchWorld(t, 0)
	w.CollectCheckedOnly = true
	s := newSearch(t, w)
	st := s.States()[0]

	s.CollectLocations(nil)
	assert.False(t, st.Has("Sword", 1), "unchecked locations are not collected")

	require.NoError(t, w.SetChecked(locRef(t, w, "Start Chest").ID, true))
	require.NoError(t, w.SetChecked(locRef(t, w, "Lobby Chest").ID, true))
	s.CollectLocations(nil)
	assert.True(t, st.Has("Sword", 1))

	// The lobby is out of logic: its item reaches the inventory only.
	assert.False(t, st.Has("Slingshot", 1))
	assert.Equal(t, 1, st.InventoryCount("Slingshot"))
	s.CollectLocations(nil)
	assert.Equal(t, 1, st.InventoryCount("Slingshot"))
}

func TestSearch_Multiworld(t *testing.T) {
	w0 := buildSearchWorld(t, 0)
	w1 := buildSearchWorld(t, 1)
	start := locRef(t, w0, "Start Chest")
	_, err := w0.PopItem(start.ID)
	require.NoError(t, err)
	require.NoError(t, w0.PushItem(start.ID, item(t, w1, "Slingshot")))

	s := newSearch(t, w0, w1)
	s.CollectLocations(nil)

	assert.False(t, s.States()[0].Has("Slingshot", 1))
	assert.True(t, s.States()[1].Has("Slingshot", 1))
	assert.True(t, s.CanReach(regionRef(t, w1, "Field"), world.AgeAny, world.TODNone))
	assert.False(t, s.CanReach(regionRef(t, w0, "Field"), world.AgeAny, world.TODNone))
}

func TestMaxExploreAndWithItems(t *testing.T) {
	w := buildSearchWorld(t, 0)
	s, err := WithItems([]*world.State{world.NewState(w)}, []world.Item{item(t, w, "Sword")}, WithLogger(discard))
	require.NoError(t, err)
	assert.True(t, s.CanReach(regionRef(t, w, "Goal"), world.AgeAny, world.TODNone))
	assert.False(t, s.Visited(locRef(t, w, "Prize")))

	w = buildSearchWorld(t, 0)
	s, err = MaxExplore([]*world.State{world.NewState(w)}, []world.Item{item(t, w, "Slingshot")}, WithLogger(discard))
	require.NoError(t, err)
	assert.True(t, s.Visited(locRef(t, w, "Lobby Chest")))
	assert.True(t, s.Visited(locRef(t, w, "Cellar Night Pot")))
	assert.True(t, s.Visited(locRef(t, w, "Market Child Pot")))
}

func TestSphereLog_Render(t *testing.T) {
	log := &SphereLog{}
	log.add(KindLocation, 0, "Start Chest", "Sword", -1)
	log.add(KindEntrance, 1, "Root -> Goal", "", 2)

	assert.Equal(t, " -1 location w0 Start Chest [Sword]\n  2 entrance w1 Root -> Goal\n", log.String())
	assert.Equal(t, 3, log.Count())
	snap := log.Snapshot()
	assert.Len(t, snap["entries"], 2)
}
