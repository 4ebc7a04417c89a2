package data

import (
	"slices"

	"github.com/roach88/ootlogic/internal/ir"
)

// Dungeons lists the dungeons that have a Master Quest variant.
var Dungeons = []string{
	"Deku Tree",
	"Dodongos Cavern",
	"Jabu Jabus Belly",
	"Bottom of the Well",
	"Ice Cavern",
	"Gerudo Training Ground",
	"Forest Temple",
	"Fire Temple",
	"Water Temple",
	"Spirit Temple",
	"Shadow Temple",
	"Ganons Castle",
}

// Trials lists the Ganon's Castle trials.
var Trials = []string{"Forest", "Fire", "Water", "Spirit", "Shadow", "Light"}

// Songs lists the songs whose melodies can be shuffled.
var Songs = []string{
	"Zeldas Lullaby",
	"Eponas Song",
	"Sarias Song",
	"Suns Song",
	"Song of Time",
	"Song of Storms",
	"Minuet of Forest",
	"Bolero of Fire",
	"Serenade of Water",
	"Requiem of Spirit",
	"Nocturne of Shadow",
	"Prelude of Light",
	"ZR Frogs Ocarina Game",
}

// AllNotes is the melody assumed for a song whose notes are unknown.
const AllNotes = "<^>vA"

var keyringBossKeyDungeons = []string{"Forest Temple", "Fire Temple", "Water Temple", "Shadow Temple", "Spirit Temple"}

// DeriveFields computes the world fields the logic files read from the
// player's settings. It is passed to world.Build via world.WithDeriver and
// runs again on every settings update.
func DeriveFields(settings ir.Object) ir.Object {
	d := deriver{settings: settings}

	shuffleInterior := d.oneOf("shuffle_interior_entrances", "simple", "all")
	shuffleSpecialInterior := d.is("shuffle_interior_entrances", "all")
	shuffleDungeon := d.oneOf("shuffle_dungeon_entrances", "simple", "all")
	shuffleSpecialDungeon := d.is("shuffle_dungeon_entrances", "all")
	spawnShuffle := d.nonEmpty("spawn_positions")
	spawnPositions := d.oneOf("shuffle_child_spawn", "balanced", "full") || d.oneOf("shuffle_adult_spawn", "balanced", "full")
	overworld := d.truthy("shuffle_overworld_entrances")

	fields := ir.Object{
		"ensure_tod_access":                  ir.Bool(shuffleInterior || overworld || spawnShuffle || spawnPositions),
		"disable_trade_revert":               ir.Bool(shuffleInterior || overworld || d.truthy("adult_trade_shuffle")),
		"shuffle_interior_entrances":         ir.Bool(shuffleInterior),
		"shuffle_special_interior_entrances": ir.Bool(shuffleSpecialInterior),
		"shuffle_dungeon_entrances":          ir.Bool(shuffleDungeon),
		"shuffle_special_dungeon_entrances":  ir.Bool(shuffleSpecialDungeon),
		"shuffle_enemy_spawns":               ir.Bool(settings.Has("shuffle_enemy_spawns") && d.enabled("shuffle_enemy_spawns")),
		"skipped_trials":                     d.skippedTrials(),
		"dungeon_mq":                         d.dungeonMQ(),
		"song_notes":                         d.songNotes(),
		"keyring_give_bk_dungeons":           d.keyringGiveBK(),
		"triforce_goal":                      ir.Int(d.triforceGoal()),
	}

	var types []string
	if shuffleDungeon {
		types = append(types, "Dungeon")
	}
	if shuffleSpecialDungeon {
		types = append(types, "DungeonSpecial")
	}
	if d.enabled("shuffle_bosses") {
		types = append(types, "ChildBoss", "AdultBoss")
		if d.truthy("shuffle_ganon_tower") {
			types = append(types, "SpecialBoss")
		}
	}
	if shuffleInterior {
		types = append(types, "Interior")
	}
	if shuffleSpecialInterior {
		types = append(types, "SpecialInterior")
	}
	if d.enabled("shuffle_hideout_entrances") {
		types = append(types, "Hideout")
	}
	if d.truthy("shuffle_grotto_entrances") {
		types = append(types, "Grotto", "Grave")
	}
	if overworld {
		types = append(types, "Overworld")
	}
	if d.enabled("shuffle_gerudo_valley_river_exit") {
		types = append(types, "OverworldOneWay")
	}
	if d.enabled("owl_drops") {
		types = append(types, "OwlDrop")
	}
	if d.enabled("warp_songs") {
		types = append(types, "WarpSong")
	}
	if d.enabled("shuffle_child_spawn") {
		types = append(types, "ChildSpawn")
	}
	if d.enabled("shuffle_adult_spawn") {
		types = append(types, "AdultSpawn")
	}
	if d.truthy("blue_warps") && !d.oneOf("blue_warps", "dungeon", "vanilla") {
		types = append(types, "BlueWarp")
	}
	fields["shuffled_entrance_types"] = ir.Strings(types...)
	return fields
}

type deriver struct {
	settings ir.Object
}

func (d deriver) truthy(name string) bool { return ir.Truthy(d.settings[name]) }

func (d deriver) is(name, want string) bool { return d.settings.Str(name) == want }

func (d deriver) oneOf(name string, want ...string) bool {
	return slices.Contains(want, d.settings.Str(name))
}

// enabled treats a boolean setting as itself and a string setting as on
// unless it is "off".
func (d deriver) enabled(name string) bool {
	switch v := d.settings[name].(type) {
	case ir.Bool:
		return bool(v)
	case ir.String:
		return v != "" && v != "off"
	}
	return false
}

func (d deriver) nonEmpty(name string) bool {
	switch v := d.settings[name].(type) {
	case ir.List:
		return len(v) > 0
	case nil, ir.Null:
		return false
	}
	return d.truthy(name)
}

func (d deriver) list(name string) []string {
	l, _ := d.settings[name].(ir.List)
	out := make([]string, 0, len(l))
	for _, v := range l {
		if s, ok := v.(ir.String); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// skippedTrials reads a "trials" object of trial: active|inactive when one
// is given. Otherwise every trial is skipped except those in trials_specific.
func (d deriver) skippedTrials() ir.Object {
	out := make(ir.Object, len(Trials))
	if plando, ok := d.settings["trials"].(ir.Object); ok {
		for _, t := range Trials {
			out[t] = ir.Bool(false)
		}
		for t, state := range plando {
			out[t] = ir.Bool(ir.Equal(state, ir.String("inactive")))
		}
		return out
	}
	active := d.list("trials_specific")
	for _, t := range Trials {
		out[t] = ir.Bool(!slices.Contains(active, t))
	}
	return out
}

// dungeonMQ reads a "dungeons" object of dungeon: mq|vanilla when one is
// given, and mq_dungeons_specific otherwise.
func (d deriver) dungeonMQ() ir.Object {
	out := make(ir.Object, len(Dungeons))
	for _, name := range Dungeons {
		out[name] = ir.Bool(false)
	}
	if plando, ok := d.settings["dungeons"].(ir.Object); ok {
		for name, kind := range plando {
			out[name] = ir.Bool(ir.Equal(kind, ir.String("mq")))
		}
		return out
	}
	for _, name := range d.list("mq_dungeons_specific") {
		out[name] = ir.Bool(true)
	}
	return out
}

// songNotes assumes every note for every song unless melodies are shuffled,
// then overlays the melodies the player knows.
func (d deriver) songNotes() ir.Object {
	out := ir.Object{}
	shuffled := d.enabled("ocarina_songs")
	if l, ok := d.settings["ocarina_songs"].(ir.List); ok {
		shuffled = len(l) > 0
	}
	if !shuffled {
		for _, song := range Songs {
			out[song] = ir.String(AllNotes)
		}
	}
	if known, ok := d.settings["song_melodies"].(ir.Object); ok {
		for song, melody := range known {
			out[song] = melody
		}
	}
	if known, ok := d.settings["songs"].(ir.Object); ok {
		for song, melody := range known {
			out[song] = melody
		}
	}
	return out
}

func (d deriver) keyringGiveBK() ir.Object {
	out := make(ir.Object, len(keyringBossKeyDungeons))
	rings := d.list("key_rings")
	for _, name := range keyringBossKeyDungeons {
		out[name] = ir.Bool(d.truthy("keyring_give_bk") &&
			slices.Contains(rings, name) &&
			!d.is("shuffle_smallkeys", "vanilla"))
	}
	return out
}

func (d deriver) triforceGoal() int64 {
	goal, _ := d.settings.Int("triforce_goal_per_world")
	if goal == 0 {
		return 0
	}
	switch d.settings.Str("triforce_hunt_mode") {
	case "ice_percent":
		return 1
	case "blitz":
		return 3
	}
	return goal
}
