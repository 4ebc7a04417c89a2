package world

import (
	"fmt"

	"github.com/roach88/ootlogic/internal/ir"
)

// UpdateSettings replaces the settings, recomputes derived fields, moves each
// dungeon to the variant the new fields select, and recompiles every rule.
// Synthetic subrule locations are dropped and rebuilt.
func (w *World) UpdateSettings(settings ir.Object) error {
	w.Settings = settings.Clone()
	if w.deriver != nil {
		w.Fields = w.deriver(w.Settings)
	}

	for _, d := range w.dungeons {
		want := VariantName(d, w.DungeonMQ(d))
		if active := w.ActiveVariant(d); active != "" && active != want {
			if err := w.swapVariant(want, active); err != nil {
				return fmt.Errorf("update settings: %w", err)
			}
		}
	}

	for _, l := range w.locations {
		if l.Synthetic {
			w.detachLocation(l)
		}
	}
	w.eventItems = make(map[string]bool)
	w.compiler.Reset()
	if err := w.compileRules(); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	if err := w.ApplyEntranceTable(w.entranceTable); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	if types, ok := w.Fields["shuffled_entrance_types"].(ir.List); ok && len(types) > 0 {
		if err := w.ShuffleEntranceTypes(listStrings(types)...); err != nil {
			return fmt.Errorf("update settings: %w", err)
		}
	}
	w.dropIndices()
	w.bump()
	w.logger.Info("settings updated", "world", w.ID, "settings", len(w.Settings))
	return nil
}
