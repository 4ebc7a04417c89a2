package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ootlogic/internal/ir"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadItemTable(t *testing.T) {
	path := writeFile(t, t.TempDir(), "items.yaml", `
- name: Bottle
  type: Item
  progressive: true
  special:
    bottle: true
- name: Rupee
  type: Item
  progressive: null
- name: Gold Skulltula Token
  type: Token
  progressive: true
  special:
    alias: {target: Token, count: 1}
`)
	defs, err := LoadItemTable(path)
	require.NoError(t, err)
	require.Len(t, defs, 3)
	assert.True(t, defs[0].Special.Bottle)
	assert.Nil(t, defs[1].Progressive)
	require.NotNil(t, defs[2].Special.Alias)
	assert.Equal(t, "Token", defs[2].Special.Alias.Target)
}

func TestLoadItemTable_UnknownField(t *testing.T) {
	path := writeFile(t, t.TempDir(), "items.yaml", "- name: Sword\n  type: Item\n  progresive: true\n")
	_, err := LoadItemTable(path)
	require.Error(t, err)
	assert.True(t, HasCode(err, ErrCodeParse))
	assert.Contains(t, err.Error(), "progresive")
}

func TestLoadLocationAndEntranceTables(t *testing.T) {
	dir := t.TempDir()
	locs, err := LoadLocationTable(writeFile(t, dir, "locations.yaml",
		"- {name: Start Chest, type: Chest, vanilla_item: Sword, categories: [Forest]}\n"))
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, "Sword", locs[0].VanillaItem)
	assert.Equal(t, []string{"Forest"}, locs[0].Categories)

	ents, err := LoadEntranceTable(writeFile(t, dir, "entrances.yaml",
		"- {type: Interior, forward: Market -> Shop, return: Shop -> Market}\n- {type: OwlDrop, forward: Hill -> Lake}\n"))
	require.NoError(t, err)
	require.Len(t, ents, 2)
	assert.Equal(t, "Shop -> Market", ents[0].Return)
	assert.Empty(t, ents[1].Return)

	empty, err := LoadEntranceTable(writeFile(t, dir, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestParseSettings(t *testing.T) {
	s, err := ParseSettings("world.yaml", []byte(`
shuffle_interior_entrances: simple
triforce_goal_per_world: 20
dungeon_shortcuts: [Deku Tree]
songs:
  Suns Song: "^>v"
`))
	require.NoError(t, err)
	assert.Equal(t, ir.String("simple"), s["shuffle_interior_entrances"])
	assert.Equal(t, ir.Int(20), s["triforce_goal_per_world"])
	assert.Equal(t, ir.Strings("Deku Tree"), s["dungeon_shortcuts"])
	assert.Equal(t, ir.Object{"Suns Song": ir.String("^>v")}, s["songs"])

	_, err = ParseSettings("world.yaml", []byte("damage: 1.5\n"))
	assert.True(t, HasCode(err, ErrCodeSchema))

	empty, err := ParseSettings("world.yaml", nil)
	require.NoError(t, err)
	assert.Equal(t, ir.Object{}, empty)
}
