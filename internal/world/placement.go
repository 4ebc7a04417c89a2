package world

import (
	"slices"
	"strconv"
)

var (
	adultShopItems = []string{
		"Buy Goron Tunic",
		"Buy Zora Tunic",
	}
	bottleShopItems = []string{
		"Buy Blue Fire",
		"Buy Blue Potion",
		"Buy Bottle Bug",
		"Buy Fish",
		"Buy Green Potion",
		"Buy Poe",
		"Buy Red Potion for 30 Rupees",
		"Buy Red Potion for 40 Rupees",
		"Buy Red Potion for 50 Rupees",
		"Buy Fairy's Spirit",
	}
	bombchuShopItems = []string{
		"Buy Bombchu (10)",
		"Buy Bombchu (20)",
		"Buy Bombchu (5)",
	}
	bombchuItems = []string{"Bombchus", "Bombchus (5)", "Bombchus (10)", "Bombchus (20)"}
)

func (w *World) location(id LocationID) (*Location, error) {
	if id < 0 || int(id) >= len(w.locations) {
		return nil, newGraphError(ErrCodeLocationNotFound, w.ID, "", "location id %d out of range", id)
	}
	return w.locations[id], nil
}

// PushItem places an item at a location. A location price wins over the
// item's own price.
func (w *World) PushItem(id LocationID, item Item) error {
	l, err := w.location(id)
	if err != nil {
		return err
	}
	if item.IsZero() {
		return newGraphError(ErrCodeItemNotFound, w.ID, l.Name, "cannot place an empty item")
	}
	switch {
	case l.HasPrice:
		item.Price = l.Price
	case item.Info.HasPrice:
		l.Price, l.HasPrice = item.Price, true
	}
	l.Item = item
	w.applyShopRule(l)
	w.bump()
	return nil
}

// PushVanillaItem places the location's vanilla item and marks it unshuffled.
func (w *World) PushVanillaItem(id LocationID) error {
	l, err := w.location(id)
	if err != nil {
		return err
	}
	if l.VanillaItem == "" {
		return newGraphError(ErrCodeItemNotFound, w.ID, l.Name, "location has no vanilla item")
	}
	item, err := w.Items.Make(l.VanillaItem, w.ID)
	if err != nil {
		return err
	}
	if err := w.PushItem(id, item); err != nil {
		return err
	}
	l.Shuffled = false
	return nil
}

// PushVanillaItems places vanilla items at every live, empty, unlocked
// location that has one, and returns how many were placed.
func (w *World) PushVanillaItems() (int, error) {
	n := 0
	for _, id := range w.Locations() {
		l := w.locations[id]
		if l.VanillaItem == "" || !l.Item.IsZero() || l.Locked {
			continue
		}
		if err := w.PushVanillaItem(id); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// PopItem clears a location's item and returns it.
func (w *World) PopItem(id LocationID) (Item, error) {
	l, err := w.location(id)
	if err != nil {
		return Item{}, err
	}
	if l.Locked {
		return Item{}, newGraphError(ErrCodeInvalidDescription, w.ID, l.Name, "location is locked")
	}
	item := l.Item
	l.Item = Item{}
	l.Price, l.HasPrice = 0, false
	l.Shuffled = true
	w.applyShopRule(l)
	w.bump()
	return item, nil
}

// SkipLocation marks a location as pseudo-starting: its item is collected
// before sphere 0.
func (w *World) SkipLocation(id LocationID) error {
	l, err := w.location(id)
	if err != nil {
		return err
	}
	if !l.Skipped {
		l.Skipped = true
		w.skipped = append(w.skipped, id)
		w.bump()
	}
	return nil
}

// ClearSkippedLocations unmarks every pseudo-starting location.
func (w *World) ClearSkippedLocations() {
	for _, id := range w.skipped {
		w.locations[id].Skipped = false
	}
	w.skipped = nil
	w.bump()
}

// SkippedLocations lists pseudo-starting locations in the order they were
// skipped.
func (w *World) SkippedLocations() []LocationID { return w.skipped }

// SetChecked records whether the player has checked a location.
func (w *World) SetChecked(id LocationID, checked bool) error {
	l, err := w.location(id)
	if err != nil {
		return err
	}
	if l.Checked != checked {
		l.Checked = checked
		w.bump()
	}
	return nil
}

// applyShopRule resets a location to its compiled rule and adds the wallet,
// age, bottle and bombchu requirements of priced shop items.
func (w *World) applyShopRule(l *Location) {
	if !l.attached || l.Event != "" {
		return
	}
	l.Rule = l.BaseRule
	if l.HasPrice {
		switch {
		case l.Price > 500:
			l.Rule.AddRule(walletRule(3))
		case l.Price > 200:
			l.Rule.AddRule(walletRule(2))
		case l.Price > 99:
			l.Rule.AddRule(walletRule(1))
		}
	}
	name := l.Item.Name()
	if name == "" {
		return
	}
	if slices.Contains(adultShopItems, name) {
		l.Rule.AddRule(NewRule("is_adult", "is_adult", func(_ *State, ctx Context) bool {
			return ctx.Age == AgeAdult
		}))
	}
	if slices.Contains(bottleShopItems, name) {
		l.Rule.AddRule(NewRule("has_bottle", "has_bottle()", func(s *State, _ Context) bool {
			return s.HasBottle()
		}))
	}
	if slices.Contains(bombchuShopItems, name) {
		l.Rule.AddRule(NewRule("found_bombchus", "found_bombchus", func(s *State, _ Context) bool {
			if s.SettingBool("bombchus_in_logic") {
				return s.HasAnyOf(bombchuItems)
			}
			return s.Has("Bomb Bag", 1)
		}))
	}
}

func walletRule(n int) Rule {
	count := strconv.Itoa(n)
	return NewRule("(Progressive_Wallet, "+count+")", `has("Progressive Wallet", `+count+`)`, func(s *State, _ Context) bool {
		return s.Has("Progressive Wallet", n)
	})
}
