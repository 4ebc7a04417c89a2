package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotHashDeterministic(t *testing.T) {
	a := Object{"spheres": List{Strings("Kokiri Sword Chest")}, "unreached": Strings()}
	b := Object{"unreached": Strings(), "spheres": List{Strings("Kokiri Sword Chest")}}

	ha, err := SnapshotHash(a)
	require.NoError(t, err)
	hb, err := SnapshotHash(b)
	require.NoError(t, err)

	assert.Equal(t, ha, hb)
	assert.Len(t, ha, 64)
}

func TestSnapshotHashDomainSeparation(t *testing.T) {
	obj := Object{"x": Int(1)}
	snap := MustSnapshotHash(obj)
	settings, err := SettingsHash(obj)
	require.NoError(t, err)
	assert.NotEqual(t, snap, settings)
}

func TestSnapshotHashChangesWithContent(t *testing.T) {
	a := MustSnapshotHash(Object{"x": Int(1)})
	b := MustSnapshotHash(Object{"x": Int(2)})
	assert.NotEqual(t, a, b)
}

func TestSnapshotHashRejectsNull(t *testing.T) {
	_, err := SnapshotHash(Object{"x": Null{}})
	assert.Error(t, err)
	assert.Panics(t, func() { MustSnapshotHash(Object{"x": Null{}}) })
}
