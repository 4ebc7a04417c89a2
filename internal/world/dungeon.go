package world

import (
	"fmt"

	"github.com/roach88/ootlogic/internal/ir"
)

// SwapDungeon makes the requested variant of a dungeon live.
//
// Interface exits of the activated variant take over the reverse binding, any
// live connection and the Replaces link of their alternate. Overworld exits
// and original connections pointing into the deactivated variant move to the
// same-named region of the activated one. Swapping to the live variant is a
// no-op.
func (w *World) SwapDungeon(dungeon string, mq bool) error {
	on, off := VariantName(dungeon, mq), VariantName(dungeon, !mq)
	if len(w.variants[on]) == 0 {
		return newGraphError(ErrCodeRegionNotFound, w.ID, on, "no such dungeon variant")
	}
	if w.ActiveVariant(dungeon) == on {
		return nil
	}
	if err := w.swapVariant(on, off); err != nil {
		return fmt.Errorf("swap %s: %w", dungeon, err)
	}

	selected := ir.Object{}
	if m, ok := w.Fields["dungeon_mq"].(ir.Object); ok {
		selected = m.Clone()
	}
	selected[dungeon] = ir.Bool(mq)
	w.Fields["dungeon_mq"] = selected

	w.logger.Info("dungeon swapped", "world", w.ID, "dungeon", dungeon, "active", on)
	return w.CheckConsistency()
}

func (w *World) swapVariant(on, off string) error {
	offSet := make(map[RegionID]bool, len(w.variants[off]))
	for _, rid := range w.variants[off] {
		offSet[rid] = true
	}

	for _, rid := range w.variants[on] {
		w.setLive(rid, true)
		for _, eid := range w.regions[rid].Exits {
			e := w.entrances[eid]
			if !e.Alternate.Valid() {
				continue
			}
			alt := w.entrances[e.Alternate]
			if alt.Reverse.Valid() {
				w.BindTwoWay(eid, alt.Reverse)
				rev := w.entrances[e.Reverse]
				if rev.OriginalName != "" {
					if r, err := w.VariantRegion(rev.OriginalName, on); err == nil {
						rev.Original = r.ID
					}
				}
			}
			if alt.IsConnected() {
				target := w.detach(alt)
				w.connect(e, target)
				e.Replaces = alt.Replaces
				alt.Replaces = NoEntrance
			}
		}
	}

	for _, rid := range w.overworld {
		for _, eid := range w.regions[rid].Exits {
			e := w.entrances[eid]
			if e.IsConnected() && offSet[e.Connected] {
				name := w.regions[e.Connected].Name
				r, err := w.VariantRegion(name, on)
				if err != nil {
					return fmt.Errorf("retarget %q: %w", e.Name, err)
				}
				w.connect(e, r.ID)
			}
			if e.Original.Valid() && offSet[e.Original] {
				r, err := w.VariantRegion(w.regions[e.Original].Name, on)
				if err != nil {
					return fmt.Errorf("retarget original of %q: %w", e.Name, err)
				}
				e.Original = r.ID
			}
		}
	}

	for _, rid := range w.variants[off] {
		w.setLive(rid, false)
	}
	w.dropIndices()
	w.bump()
	return nil
}
