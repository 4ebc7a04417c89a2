package world_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ootlogic/internal/ir"
	"github.com/roach88/ootlogic/internal/world"
)

func TestBuild_LoadsLiveGraph(t *testing.T) {
	w := buildMini(t)

	for _, name := range []string{"Root", "Field", "Shop", "Dungeon Lobby", "Dungeon Boss"} {
		r := mustRegion(t, w, name)
		assert.True(t, r.Live(), name)
	}
	assert.Equal(t, "Deku Tree", w.ActiveVariant("Deku Tree"))
	assert.Equal(t, world.TODAll, mustRegion(t, w, "Field").ProvidesTime)
	assert.True(t, mustRegion(t, w, "Dungeon Boss").IsBossRoom)
	assert.Equal(t, "Deku Tree", mustRegion(t, w, "Dungeon Lobby").Dungeon)

	_, err := w.Location("MQ Lobby Chest")
	assert.True(t, world.IsNotFound(err))
	assert.True(t, world.HasCode(err, world.ErrCodeLocationNotFound))
}

func TestBuild_RequiresCompiler(t *testing.T) {
	_, err := world.Build(miniDescription())
	require.Error(t, err)
	assert.True(t, world.HasCode(err, world.ErrCodeInvalidDescription))
}

func TestBuild_NilDescription(t *testing.T) {
	_, err := world.Build(nil, world.WithCompiler(itemCompilerFactory))
	require.Error(t, err)
}

func TestBuild_UnknownExitTarget(t *testing.T) {
	desc := miniDescription()
	desc.Regions[0].Exits = append(desc.Regions[0].Exits, world.RuleEntry{Name: "Nowhere", Rule: "True"})

	_, err := world.Build(desc, world.WithCompiler(itemCompilerFactory))
	require.Error(t, err)
	assert.True(t, world.HasCode(err, world.ErrCodeRegionNotFound))
}

func TestBuild_Events(t *testing.T) {
	w := buildMini(t)

	ev := mustLocation(t, w, "Open Gate from Field")
	assert.Equal(t, "Event", ev.Type)
	assert.True(t, ev.Locked)
	assert.True(t, ev.Internal)
	assert.False(t, ev.Shuffled)
	assert.True(t, ev.Item.Event())
	assert.True(t, ev.Item.Advancement())
	assert.Equal(t, "Open Gate", ev.Item.Name())
	assert.True(t, w.HasEventItem("Open Gate"))

	// A rule that folds to False never provides its event.
	_, err := w.Location("Never Gate from Field")
	assert.True(t, world.IsNotFound(err))
	assert.False(t, w.HasEventItem("Never Gate"))
	assert.Equal(t, []string{"Open Gate"}, w.EventItems())
}

func TestBuild_DuplicateRegionsMerge(t *testing.T) {
	desc := miniDescription()
	desc.Regions = append(desc.Regions, world.RegionDesc{
		Name:      "Shop",
		Locations: []world.RuleEntry{{Name: "Shop Item 1", Rule: "False"}, {Name: "Shop Item 2", Rule: "True"}},
	})

	w, err := world.Build(desc, world.WithCompiler(itemCompilerFactory))
	require.NoError(t, err)

	shop := mustRegion(t, w, "Shop")
	assert.Len(t, shop.Locations, 2)
	assert.True(t, mustLocation(t, w, "Shop Item 1").Rule.Always)
}

func TestBuild_Savewarp(t *testing.T) {
	desc := miniDescription()
	desc.Regions[2].Savewarp = "Shop -> Root"

	w, err := world.Build(desc, world.WithCompiler(itemCompilerFactory))
	require.NoError(t, err)

	shop := mustRegion(t, w, "Shop")
	require.True(t, shop.Savewarp.Valid())
	sw := w.EntranceByID(shop.Savewarp)
	assert.Equal(t, "Shop -> Root", sw.Name)
	assert.True(t, sw.IsSavewarp)
	assert.True(t, sw.OneWay)
	assert.True(t, sw.Rule.Always)
	assert.Equal(t, mustRegion(t, w, "Root").ID, sw.Connected)
}

func TestBuild_EntranceMetadata(t *testing.T) {
	w := buildMini(t)

	fwd := mustEntrance(t, w, "Field -> Dungeon Lobby")
	ret := mustEntrance(t, w, "Dungeon Lobby -> Field")
	assert.Equal(t, "Dungeon", fwd.Type)
	assert.Equal(t, 5, fwd.TypePriority)
	assert.True(t, fwd.Primary)
	assert.True(t, ret.Secondary)
	assert.True(t, fwd.Coupled)
	assert.False(t, fwd.OneWay)
	assert.Equal(t, ret.ID, fwd.Reverse)
	assert.Equal(t, fwd.ID, ret.Reverse)

	shop := mustEntrance(t, w, "Field -> Shop")
	assert.Equal(t, 6, shop.TypePriority)

	// The MQ twin of the interface exit shares the metadata.
	mqRet, err := w.VariantEntrance("Dungeon Lobby -> Field", "Deku Tree MQ")
	require.NoError(t, err)
	assert.Equal(t, "Dungeon", mqRet.Type)
	assert.True(t, mqRet.Secondary)
	assert.Equal(t, ret.ID, mqRet.Alternate)
	assert.Equal(t, mqRet.ID, ret.Alternate)
	assert.False(t, mqRet.IsConnected())

	require.NoError(t, w.CheckConsistency())
}

func TestBuild_DecoupledEntrances(t *testing.T) {
	desc := miniDescription()
	desc.Settings["decouple_entrances"] = ir.Bool(false)

	w, err := world.Build(desc, world.WithCompiler(itemCompilerFactory))
	require.NoError(t, err)
	assert.True(t, mustEntrance(t, w, "Field -> Shop").Coupled)

	settings := w.Settings.Clone()
	settings["decouple_entrances"] = ir.Bool(true)
	require.NoError(t, w.UpdateSettings(settings))
	assert.False(t, mustEntrance(t, w, "Field -> Shop").Coupled)
}

func TestUpdateSettings_KeepsConnectionsWithoutShuffledTypes(t *testing.T) {
	derive := func(ir.Object) ir.Object {
		return ir.Object{"shuffled_entrance_types": ir.List{}}
	}
	w := buildMini(t, world.WithDeriver(derive))
	e := mustEntrance(t, w, "Field -> Shop")
	root := mustRegion(t, w, "Root")
	require.NoError(t, w.Connect(e.ID, root.ID))

	require.NoError(t, w.UpdateSettings(w.Settings.Clone()))
	assert.Equal(t, root.ID, e.Connected)
	assert.Equal(t, "Interior", e.Type)
}

func TestConnectDisconnect(t *testing.T) {
	w := buildMini(t)
	e := mustEntrance(t, w, "Field -> Shop")
	shop := mustRegion(t, w, "Shop")
	v := w.Version()

	prev, err := w.Disconnect(e.ID)
	require.NoError(t, err)
	assert.Equal(t, shop.ID, prev)
	assert.False(t, e.IsConnected())
	assert.NotContains(t, shop.Entrances, e.ID)
	assert.Greater(t, w.Version(), v)

	_, err = w.Disconnect(e.ID)
	assert.True(t, world.HasCode(err, world.ErrCodeNotConnected))

	root := mustRegion(t, w, "Root")
	require.NoError(t, w.Connect(e.ID, root.ID))
	assert.Equal(t, root.ID, e.Connected)
	assert.Contains(t, root.Entrances, e.ID)

	// Connecting again moves the entrance instead of duplicating it.
	require.NoError(t, w.Connect(e.ID, shop.ID))
	assert.NotContains(t, root.Entrances, e.ID)
	assert.Contains(t, shop.Entrances, e.ID)
	require.NoError(t, w.CheckConsistency())
}

func TestConnect_RejectsInactiveVariant(t *testing.T) {
	w := buildMini(t)
	e := mustEntrance(t, w, "Field -> Shop")
	shop := mustRegion(t, w, "Shop")
	mqLobby, err := w.VariantRegion("Dungeon Lobby", world.VariantName("Deku Tree", true))
	require.NoError(t, err)
	v := w.Version()

	err = w.Connect(e.ID, mqLobby.ID)
	assert.True(t, world.HasCode(err, world.ErrCodeDanglingEdge))
	assert.Equal(t, shop.ID, e.Connected, "failed connect leaves the entrance alone")
	assert.NotContains(t, mqLobby.Entrances, e.ID)
	assert.Equal(t, v, w.Version())
	require.NoError(t, w.CheckConsistency())

	require.NoError(t, w.SwapDungeon("Deku Tree", true))
	require.NoError(t, w.Connect(e.ID, mqLobby.ID))
	assert.Contains(t, mqLobby.Entrances, e.ID)
}

func TestShuffleAndConnectPair(t *testing.T) {
	w := buildMini(t)
	require.NoError(t, w.ShuffleEntranceTypes("Dungeon", "Interior"))

	toShop := mustEntrance(t, w, "Field -> Shop")
	toLobby := mustEntrance(t, w, "Field -> Dungeon Lobby")
	fromShop := mustEntrance(t, w, "Shop -> Field")
	fromLobby := mustEntrance(t, w, "Dungeon Lobby -> Field")
	for _, e := range []*world.Entrance{toShop, toLobby, fromShop, fromLobby} {
		assert.False(t, e.IsConnected(), e.Name)
		assert.True(t, e.Shuffled, e.Name)
	}
	// Untyped exits keep their vanilla connection.
	assert.True(t, mustEntrance(t, w, "Root -> Field").IsConnected())

	pool := w.EntrancePool()
	require.Len(t, pool, 2)
	assert.Equal(t, toLobby.ID, pool[0])
	assert.Equal(t, toShop.ID, pool[1])
	assert.Equal(t, []world.EntranceID{toShop.ID}, w.EntrancePool("Interior"))

	require.NoError(t, w.ConnectPair(toShop.ID, toLobby.ID))
	assert.Equal(t, mustRegion(t, w, "Dungeon Lobby").ID, toShop.Connected)
	assert.Equal(t, toLobby.ID, toShop.Replaces)
	assert.Equal(t, mustRegion(t, w, "Field").ID, fromLobby.Connected)
	assert.Equal(t, fromShop.ID, fromLobby.Replaces)

	require.NoError(t, w.DisconnectPair(toShop.ID))
	assert.False(t, toShop.IsConnected())
	assert.False(t, fromLobby.IsConnected())
	assert.False(t, toShop.Replaces.Valid())
	assert.False(t, fromLobby.Replaces.Valid())

	err := w.DisconnectPair(toShop.ID)
	assert.True(t, world.HasCode(err, world.ErrCodeNotConnected))

	require.NoError(t, w.ShuffleEntranceTypes())
	assert.Equal(t, mustRegion(t, w, "Shop").ID, toShop.Connected)
	assert.False(t, toShop.Shuffled)
}

func TestSwapDungeon(t *testing.T) {
	w := buildMini(t)
	toLobby := mustEntrance(t, w, "Field -> Dungeon Lobby")
	field := mustRegion(t, w, "Field")

	require.NoError(t, w.SwapDungeon("Deku Tree", true))
	assert.Equal(t, "Deku Tree MQ", w.ActiveVariant("Deku Tree"))
	assert.True(t, w.DungeonMQ("Deku Tree"))

	lobby := mustRegion(t, w, "Dungeon Lobby")
	assert.Equal(t, "Deku Tree MQ", lobby.Variant)
	assert.Equal(t, lobby.ID, toLobby.Connected)
	assert.Equal(t, lobby.ID, toLobby.Original)

	mqRet := mustEntrance(t, w, "Dungeon Lobby -> Field")
	assert.Equal(t, field.ID, mqRet.Connected)
	assert.Equal(t, toLobby.ID, mqRet.Reverse)
	assert.Equal(t, mqRet.ID, toLobby.Reverse)

	mustLocation(t, w, "MQ Lobby Chest")
	_, err := w.Location("Lobby Chest")
	assert.True(t, world.IsNotFound(err))
	_, err = w.Region("Dungeon Boss")
	assert.True(t, world.IsNotFound(err))

	// Swapping to the live variant changes nothing.
	v := w.Version()
	require.NoError(t, w.SwapDungeon("Deku Tree", true))
	assert.Equal(t, v, w.Version())

	require.NoError(t, w.SwapDungeon("Deku Tree", false))
	assert.Equal(t, "Deku Tree", w.ActiveVariant("Deku Tree"))
	mustLocation(t, w, "Lobby Chest")
	assert.Equal(t, mustRegion(t, w, "Dungeon Lobby").ID, toLobby.Connected)
	require.NoError(t, w.CheckConsistency())
}

func TestSwapDungeon_KeepsShuffledConnection(t *testing.T) {
	w := buildMini(t)
	require.NoError(t, w.ShuffleEntranceTypes("Dungeon", "Interior"))

	toShop := mustEntrance(t, w, "Field -> Shop")
	toLobby := mustEntrance(t, w, "Field -> Dungeon Lobby")
	require.NoError(t, w.ConnectPair(toShop.ID, toLobby.ID))

	require.NoError(t, w.SwapDungeon("Deku Tree", true))
	lobby := mustRegion(t, w, "Dungeon Lobby")
	assert.Equal(t, lobby.ID, toShop.Connected)

	mqRet := mustEntrance(t, w, "Dungeon Lobby -> Field")
	assert.Equal(t, mustRegion(t, w, "Field").ID, mqRet.Connected)
	assert.Equal(t, mustEntrance(t, w, "Shop -> Field").ID, mqRet.Replaces)
}

func TestSwapDungeon_UnknownDungeon(t *testing.T) {
	w := buildMini(t)
	err := w.SwapDungeon("Fire Temple", true)
	assert.True(t, world.HasCode(err, world.ErrCodeRegionNotFound))
}
