package world_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ootlogic/internal/world"
)

func TestPushItem_ShopRules(t *testing.T) {
	w := buildMini(t)
	loc := mustLocation(t, w, "Shop Item 1")
	require.True(t, loc.Rule.Always)

	require.NoError(t, w.PushItem(loc.ID, mustItem(t, w, "Buy Goron Tunic")))
	assert.True(t, loc.HasPrice)
	assert.Equal(t, 200, loc.Price)
	assert.Equal(t, 200, loc.Item.Price)
	assert.False(t, loc.Rule.Always)
	assert.Equal(t, 2, loc.Rule.Len())

	s := world.NewState(w)
	adult := world.Context{Age: world.AgeAdult, Spot: world.LocationSpot(loc.ID)}
	child := world.Context{Age: world.AgeChild, Spot: world.LocationSpot(loc.ID)}
	assert.False(t, loc.Rule.Eval(s, adult))

	s.Collect(mustItem(t, w, "Progressive Wallet"), world.LedgerBoth)
	assert.True(t, loc.Rule.Eval(s, adult))
	assert.False(t, loc.Rule.Eval(s, child))

	item, err := w.PopItem(loc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy Goron Tunic", item.Name())
	assert.True(t, loc.Item.IsZero())
	assert.False(t, loc.HasPrice)
	assert.True(t, loc.Rule.Always)
}

func TestPushItem_CheapShopItemKeepsRule(t *testing.T) {
	w := buildMini(t)
	loc := mustLocation(t, w, "Shop Item 1")

	require.NoError(t, w.PushItem(loc.ID, mustItem(t, w, "Buy Deku Shield")))
	assert.Equal(t, 40, loc.Price)
	assert.True(t, loc.Rule.Always)
}

func TestPushItem_LocationPriceWins(t *testing.T) {
	w := buildMini(t)
	loc := mustLocation(t, w, "Shop Item 1")
	loc.Price, loc.HasPrice = 600, true

	require.NoError(t, w.PushItem(loc.ID, mustItem(t, w, "Buy Deku Shield")))
	assert.Equal(t, 600, loc.Item.Price)

	s := world.NewState(w)
	ctx := world.Context{Age: world.AgeChild}
	wallet := mustItem(t, w, "Progressive Wallet")
	s.Collect(wallet, world.LedgerBoth)
	s.Collect(wallet, world.LedgerBoth)
	assert.False(t, loc.Rule.Eval(s, ctx))
	s.Collect(wallet, world.LedgerBoth)
	assert.True(t, loc.Rule.Eval(s, ctx))
}

func TestPushItem_Errors(t *testing.T) {
	w := buildMini(t)

	err := w.PushItem(world.LocationID(9999), mustItem(t, w, "Slingshot"))
	assert.True(t, world.HasCode(err, world.ErrCodeLocationNotFound))

	err = w.PushItem(mustLocation(t, w, "Field Chest").ID, world.Item{})
	assert.True(t, world.HasCode(err, world.ErrCodeItemNotFound))

	_, err = w.PopItem(mustLocation(t, w, "Open Gate from Field").ID)
	assert.True(t, world.HasCode(err, world.ErrCodeInvalidDescription))
}

func TestPushVanillaItems(t *testing.T) {
	w := buildMini(t)

	n, err := w.PushVanillaItems()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	chest := mustLocation(t, w, "Field Chest")
	assert.Equal(t, "Slingshot", chest.Item.Name())
	assert.False(t, chest.Shuffled)

	// A second pass finds nothing left to fill.
	n, err = w.PushVanillaItems()
	require.NoError(t, err)
	assert.Zero(t, n)

	err = w.PushVanillaItem(mustLocation(t, w, "Open Gate from Field").ID)
	assert.True(t, world.HasCode(err, world.ErrCodeItemNotFound))
}

func TestSkippedAndChecked(t *testing.T) {
	w := buildMini(t)
	chest := mustLocation(t, w, "Field Chest")
	heart := mustLocation(t, w, "Boss Heart")

	require.NoError(t, w.SkipLocation(heart.ID))
	require.NoError(t, w.SkipLocation(chest.ID))
	require.NoError(t, w.SkipLocation(heart.ID))
	assert.Equal(t, []world.LocationID{heart.ID, chest.ID}, w.SkippedLocations())
	assert.True(t, heart.Skipped)

	w.ClearSkippedLocations()
	assert.Empty(t, w.SkippedLocations())
	assert.False(t, heart.Skipped)

	v := w.Version()
	require.NoError(t, w.SetChecked(chest.ID, true))
	assert.True(t, chest.Checked)
	assert.Greater(t, w.Version(), v)

	v = w.Version()
	require.NoError(t, w.SetChecked(chest.ID, true))
	assert.Equal(t, v, w.Version())
}
