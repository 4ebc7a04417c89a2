package search

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/ootlogic/internal/testutil"
	"github.com/roach88/ootlogic/internal/world"
)

var discard = testutil.Discard

// buildSearchWorld builds the mini world with vanilla items placed.
func buildSearchWorld(t *testing.T, id int) *world.World {
	t.Helper()
	return testutil.BuildWorld(t, testutil.MiniDescription(), testutil.MiniHelpers, id)
}

func newSearch(t *testing.T, worlds ...*world.World) *Search {
	t.Helper()
	states := make([]*world.State, len(worlds))
	for i, w := range worlds {
		states[i] = world.NewState(w)
	}
	s, err := New(states, WithLogger(discard))
	require.NoError(t, err)
	return s
}

func locRef(t *testing.T, w *world.World, name string) world.LocationRef {
	t.Helper()
	l, err := w.Location(name)
	require.NoError(t, err)
	return world.LocationRef{World: w.ID, ID: l.ID}
}

func regionRef(t *testing.T, w *world.World, name string) world.RegionRef {
	t.Helper()
	r, err := w.Region(name)
	require.NoError(t, err)
	return world.RegionRef{World: w.ID, ID: r.ID}
}

func entrance(t *testing.T, w *world.World, name string) *world.Entrance {
	t.Helper()
	e, err := w.Entrance(name)
	require.NoError(t, err)
	return e
}

func item(t *testing.T, w *world.World, name string) world.Item {
	t.Helper()
	it, err := w.Items.Make(name, w.ID)
	require.NoError(t, err)
	return it
}
