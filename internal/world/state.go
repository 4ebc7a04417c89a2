package world

import (
	"strings"

	"github.com/roach88/ootlogic/internal/ir"
)

// Ledger selects which item ledgers a collect or remove touches.
type Ledger uint8

const (
	// LedgerProgress holds the counts rules see.
	LedgerProgress Ledger = 1 << iota
	// LedgerInventory holds what the player actually carries.
	LedgerInventory

	LedgerBoth = LedgerProgress | LedgerInventory
)

// Reacher answers region reachability for rules that depend on it.
// Implemented by search.Search.
type Reacher interface {
	CanReach(region RegionRef, age Age, tod TimeOfDay) bool
}

// State is one player's predicate runtime: two item ledgers plus read access
// to the world's settings and fields. Items never collected count as zero.
type State struct {
	world     *World
	prog      map[string]int
	inventory map[string]int
	reacher   Reacher

	version  uint64
	removals uint64
}

// NewState returns an empty state for a world.
func NewState(w *World) *State {
	return &State{
		world:     w,
		prog:      make(map[string]int),
		inventory: make(map[string]int),
	}
}

// World returns the state's world.
func (s *State) World() *World { return s.world }

// SetReacher binds the search that answers CanReach.
func (s *State) SetReacher(r Reacher) { s.reacher = r }

// Version changes on every ledger mutation.
func (s *State) Version() uint64 { return s.version }

// Removals changes whenever a ledger shrinks.
func (s *State) Removals() uint64 { return s.removals }

// Has reports whether the progression ledger holds at least count of name.
func (s *State) Has(name string, count int) bool {
	n, ok := s.prog[name]
	return ok && n > 0 && n >= count
}

// HasAnyOf reports whether any name has a positive count.
func (s *State) HasAnyOf(names []string) bool {
	for _, n := range names {
		if s.prog[n] > 0 {
			return true
		}
	}
	return false
}

// HasAllOf reports whether every name has a positive count.
func (s *State) HasAllOf(names []string) bool {
	for _, n := range names {
		if s.prog[n] <= 0 {
			return false
		}
	}
	return true
}

// CountOf sums the counts of names.
func (s *State) CountOf(names []string) int {
	total := 0
	for _, n := range names {
		total += s.prog[n]
	}
	return total
}

// CountDistinct counts names with a positive count.
func (s *State) CountDistinct(names []string) int {
	total := 0
	for _, n := range names {
		if s.prog[n] > 0 {
			total++
		}
	}
	return total
}

// ItemCount returns the progression count of name.
func (s *State) ItemCount(name string) int { return s.prog[name] }

// InventoryCount returns the inventory count of name.
func (s *State) InventoryCount(name string) int { return s.inventory[name] }

// Progress returns a copy of the progression ledger.
func (s *State) Progress() map[string]int { return cloneCounts(s.prog) }

// Inventory returns a copy of the inventory ledger.
func (s *State) Inventory() map[string]int { return cloneCounts(s.inventory) }

// HasBottle reports any bottle, or two Ruto's Letters.
func (s *State) HasBottle() bool {
	return s.HasAnyOf(s.world.Items.Bottles()) || s.Has("Rutos Letter", 2)
}

// HeartCount is 3 plus one per four pieces of heart.
func (s *State) HeartCount() int {
	return s.ItemCount("Piece of Heart")/4 + 3
}

// HasHearts reports at least count hearts.
func (s *State) HasHearts(count int) bool { return s.HeartCount() >= count }

// HasMedallions reports at least count medallions.
func (s *State) HasMedallions(count int) bool {
	return s.CountOf(s.world.Items.Medallions()) >= count
}

// HasStones reports at least count spiritual stones.
func (s *State) HasStones(count int) bool {
	return s.CountOf(s.world.Items.Stones()) >= count
}

// HasDungeonRewards reports at least count medallions and stones combined.
func (s *State) HasDungeonRewards(count int) bool {
	return s.CountOf(s.world.Items.Medallions())+s.CountOf(s.world.Items.Stones()) >= count
}

// HasOcarinaButtons reports at least count ocarina buttons.
func (s *State) HasOcarinaButtons(count int) bool {
	return s.CountOf(s.world.Items.OcarinaButtons()) >= count
}

var noteButtons = []struct {
	note   string
	button string
}{
	{"A", "Ocarina A Button"},
	{"<", "Ocarina C left Button"},
	{"^", "Ocarina C up Button"},
	{"v", "Ocarina C down Button"},
	{">", "Ocarina C right Button"},
}

// HasAllNotesForSong reports whether every button the song's notes use is
// collected. The Scarecrow Song needs any two buttons.
func (s *State) HasAllNotesForSong(song string) bool {
	if song == "Scarecrow Song" {
		return s.HasOcarinaButtons(2)
	}
	notes := ""
	if m, ok := s.world.Fields["song_notes"].(ir.Object); ok {
		notes = m.Str(song)
	}
	for _, nb := range noteButtons {
		if strings.Contains(notes, nb.note) && !s.Has(nb.button, 1) {
			return false
		}
	}
	return true
}

// HadNightStart reports a starting time outside 6:30-18:00.
func (s *State) HadNightStart() bool {
	switch s.world.Settings.Str("starting_tod") {
	case "sunset", "evening", "midnight", "witching-hour":
		return true
	}
	return false
}

// CanLiveDmg reports whether the damage multiplier lets the player survive a
// hit of the given number of hearts (quarter-heart units below 3).
func (s *State) CanLiveDmg(hearts float64) bool {
	mult := s.world.Settings.Str("damage_multiplier")
	if hearts*4 >= 3 {
		return mult != "ohko" && mult != "quadruple"
	}
	return mult != "ohko"
}

// HasSoul reports the enemy soul, or true when souls are not shuffled.
func (s *State) HasSoul(enemy string) bool {
	if !ir.Truthy(s.Field("shuffle_enemy_spawns")) && !s.SettingBool("shuffle_enemy_spawns") {
		return true
	}
	return s.Has(enemy+" Soul", 1)
}

// RegionHasShortcuts reports whether the region's dungeon is listed in the
// dungeon_shortcuts setting. Unknown regions have none.
func (s *State) RegionHasShortcuts(region string) bool {
	r, err := s.world.Region(region)
	if err != nil || r.Dungeon == "" {
		return false
	}
	shortcuts, _ := s.world.Settings["dungeon_shortcuts"].(ir.List)
	return ir.Contains(shortcuts, ir.String(r.Dungeon))
}

// Won reports the game goal: the Triforce, or enough pieces in triforce hunt.
func (s *State) Won() bool {
	if s.SettingBool("triforce_hunt") {
		goal, _ := s.world.Fields.Int("triforce_goal")
		if goal == 0 {
			goal, _ = s.world.Settings.Int("triforce_goal_per_world")
		}
		return s.Has("Triforce Piece", int(goal))
	}
	return s.Has("Triforce", 1)
}

// Setting reads a setting. Missing settings are Null.
func (s *State) Setting(name string) ir.Value {
	if v, ok := s.world.Settings[name]; ok {
		return v
	}
	return ir.Null{}
}

// SettingBool reads a setting's truthiness.
func (s *State) SettingBool(name string) bool { return s.world.Settings.Bool(name) }

// Field reads a derived world field. Missing fields are Null.
func (s *State) Field(name string) ir.Value {
	if v, ok := s.world.Fields[name]; ok {
		return v
	}
	return ir.Null{}
}

// CanReach asks the bound search whether a region of this world is reached.
// Without a search nothing is reachable.
func (s *State) CanReach(region RegionID, age Age, tod TimeOfDay) bool {
	if s.reacher == nil || !region.Valid() {
		return false
	}
	return s.reacher.CanReach(RegionRef{World: s.world.ID, ID: region}, age, tod)
}

// Collect credits an item to the selected ledgers.
func (s *State) Collect(item Item, ledgers Ledger) {
	if item.IsZero() {
		return
	}
	if ledgers&LedgerProgress != 0 {
		s.credit(item, s.prog)
	}
	if ledgers&LedgerInventory != 0 {
		s.credit(item, s.inventory)
	}
	s.version++
}

// Remove debits an item from the selected ledgers. Counts never go below
// zero; entries reaching zero are deleted.
func (s *State) Remove(item Item, ledgers Ledger) {
	if item.IsZero() {
		return
	}
	if ledgers&LedgerProgress != 0 {
		s.debit(item, s.prog)
	}
	if ledgers&LedgerInventory != 0 {
		s.debit(item, s.inventory)
	}
	s.version++
	s.removals++
}

var keyringBossKeyDungeons = map[string]bool{
	"Forest Temple": true,
	"Fire Temple":   true,
	"Water Temple":  true,
	"Shadow Temple": true,
	"Spirit Temple": true,
}

// ledgerName maps item names to the names rules use. The logic files spell
// the Like-like soul without its hyphen.
func ledgerName(name string) string {
	if name == "Like-like Soul" {
		return "Likelike Soul"
	}
	return name
}

func (s *State) keyringDungeon(item Item) (string, bool) {
	name := item.Name()
	if !strings.HasPrefix(name, "Small Key Ring (") || !s.SettingBool("keyring_give_bk") {
		return "", false
	}
	dungeon := strings.TrimSuffix(strings.TrimPrefix(name, "Small Key Ring ("), ")")
	if m, ok := s.world.Fields["keyring_give_bk_dungeons"].(ir.Object); ok {
		return dungeon, m.Bool(dungeon)
	}
	return dungeon, keyringBossKeyDungeons[dungeon]
}

func (s *State) credit(item Item, ledger map[string]int) {
	if d, ok := s.keyringDungeon(item); ok {
		ledger["Boss Key ("+d+")"] = 1
	}
	name := ledgerName(item.Name())
	alias := item.Alias()
	if alias != nil {
		ledger[alias.Target] += alias.Count
		if alias.Target == name {
			return
		}
	}
	if item.Advancement() {
		ledger[name]++
	}
}

func (s *State) debit(item Item, ledger map[string]int) {
	if d, ok := s.keyringDungeon(item); ok {
		delete(ledger, "Boss Key ("+d+")")
	}
	name := ledgerName(item.Name())
	if alias := item.Alias(); alias != nil {
		if ledger[alias.Target] > 0 {
			decrement(ledger, alias.Target, alias.Count)
		}
		if alias.Target == name {
			return
		}
	}
	if item.Advancement() && ledger[name] > 0 {
		decrement(ledger, name, 1)
	}
}

func decrement(ledger map[string]int, name string, n int) {
	ledger[name] -= n
	if ledger[name] <= 0 {
		delete(ledger, name)
	}
}

// CollectStartingItems applies the starting_items setting. Gold Skulltula
// Tokens skip the progression ledger when tokensanity is off.
func (s *State) CollectStartingItems() error {
	start, ok := s.world.Settings["starting_items"].(ir.Object)
	if !ok {
		return nil
	}
	for _, name := range start.SortedKeys() {
		count, _ := start.Int(name)
		itemName := name
		if itemName == "Bottle with Milk (Half)" {
			itemName = "Bottle"
		}
		item, err := s.world.Items.Make(itemName, s.world.ID)
		if err != nil {
			return err
		}
		ledgers := LedgerBoth
		if name == "Gold Skulltula Token" && s.world.Settings.Str("tokensanity") == "off" {
			ledgers = LedgerInventory
		}
		for i := int64(0); i < count; i++ {
			s.Collect(item, ledgers)
		}
	}
	return nil
}

// Reset clears both ledgers.
func (s *State) Reset() {
	s.prog = make(map[string]int)
	s.inventory = make(map[string]int)
	s.version++
	s.removals++
}

func cloneCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
