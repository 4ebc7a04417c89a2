package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/ootlogic/internal/data"
	"github.com/roach88/ootlogic/internal/ir"
	"github.com/roach88/ootlogic/internal/rules"
	"github.com/roach88/ootlogic/internal/search"
	"github.com/roach88/ootlogic/internal/world"
)

// Harness is the scenario execution engine.
// It owns the worlds and the search for one scenario run.
type Harness struct {
	worlds []*world.World
	search *search.Search
	logger *slog.Logger
}

// Option configures Run.
type Option func(*Harness)

// WithLogger sets the logger passed to world builds and the search.
// Default: a discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		if l != nil {
			h.logger = l
		}
	}
}

// Run executes a test scenario and returns the result.
//
// Each scenario builds fresh worlds, so runs are isolated and repeatable.
//
// Execution flow:
// 1. Build one world per player from the directory or inline description
// 2. Create a search over all players
// 3. Execute steps in order
// 4. Evaluate assertions
//
// A step that fails without expect_error aborts the run with an error.
// Mismatched expectations and failed assertions are reported in Result.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(h)
	}

	worlds, err := buildWorlds(ctx, scenario, h.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build worlds: %w", err)
	}
	h.worlds = worlds

	states := make([]*world.State, len(worlds))
	for i, w := range worlds {
		states[i] = world.NewState(w)
	}
	if h.search, err = search.New(states, search.WithLogger(h.logger)); err != nil {
		return nil, fmt.Errorf("failed to create search: %w", err)
	}

	result := NewResult()
	result.Worlds = h.worlds
	result.Search = h.search

	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ev := traceEvent(i, step)
		err := h.execute(step, result)
		switch {
		case step.ExpectError != "":
			if err == nil {
				result.AddError(fmt.Sprintf("steps[%d]: expected error containing %q, got none", i, step.ExpectError))
			} else if !strings.Contains(err.Error(), step.ExpectError) {
				result.AddError(fmt.Sprintf("steps[%d]: expected error containing %q, got %q", i, step.ExpectError, err.Error()))
			} else {
				ev.Error = err.Error()
			}
		case err != nil:
			return nil, fmt.Errorf("step %d (%s): %w", i, ev.Op, err)
		}
		if ev.Op == OpSpheres && result.Spheres != nil {
			ev.Entries = len(result.Spheres.Entries)
		}
		result.AddTrace(ev)

		h.logger.Debug("step completed",
			"step", i,
			"op", ev.Op,
			"world", ev.World,
		)
	}

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"steps", len(scenario.Steps),
		"pass", result.Pass,
	)
	return result, nil
}

// buildWorlds builds one world per player with the scenario settings
// layered over the world's defaults.
func buildWorlds(ctx context.Context, sc *Scenario, logger *slog.Logger) ([]*world.World, error) {
	settings, err := ir.ObjectFromAny(sc.Settings)
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}

	var wd *data.WorldDir
	if sc.World.Dir != "" {
		wd, err = data.LoadWorldDir(sc.World.Dir)
	} else {
		wd, err = inlineWorldDir(sc)
	}
	if err != nil {
		return nil, err
	}

	list := make([]ir.Object, max(sc.Players, 1))
	for i := range list {
		list[i] = settings
	}
	return wd.BuildAll(ctx, list, data.WithLogger(logger))
}

// inlineWorldDir turns the scenario's inline description into a WorldDir.
func inlineWorldDir(sc *Scenario) (*data.WorldDir, error) {
	desc := world.Description{
		Regions:   sc.World.Regions,
		Dungeons:  sc.World.Dungeons,
		Items:     sc.Items,
		Locations: sc.World.Locations,
		Entrances: sc.Entrances,
	}
	if verrs := world.Validate(&desc); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, v := range verrs {
			errs[i] = v
		}
		return nil, errors.Join(errs...)
	}
	macros, err := rules.ParseMacros(sc.Helpers)
	if err != nil {
		return nil, fmt.Errorf("helpers: %w", err)
	}
	return &data.WorldDir{Path: sc.Name, Settings: ir.Object{}, Desc: desc, Macros: macros}, nil
}

// execute runs one step. Tracker edits go through data.TrackerState so
// scenarios and tracker state files share one code path.
func (h *Harness) execute(step Step, result *Result) error {
	var ts data.TrackerState
	switch step.Op() {
	case OpCollect:
		for _, name := range step.Collect {
			ts.Collected = append(ts.Collected, data.ItemRef{World: step.World, Item: name})
		}
	case OpUncollect:
		w := h.worlds[step.World]
		for _, name := range step.Uncollect {
			item, err := w.Items.Make(name, step.World)
			if err != nil {
				return err
			}
			if err := h.search.Uncollect(item); err != nil {
				return err
			}
		}
		return nil
	case OpPlace:
		ts.Placements = []data.Placement{*step.Place}
	case OpSkip:
		ts.Skipped = nameRefs(step.World, step.Skip)
	case OpCheck:
		ts.Checked = nameRefs(step.World, step.Check)
	case OpConnect:
		ts.Connections = []data.Connection{*step.Connect}
	case OpDisconnect:
		ts.Disconnected = nameRefs(step.World, step.Disconnect)
	case OpSwapDungeon:
		ts.DungeonMQ = []data.Variant{*step.SwapDungeon}
	case OpSpheres:
		result.Spheres = h.search.CollectSpheres(nil)
		return nil
	case OpLocations:
		h.search.CollectLocations(nil)
		return nil
	default:
		return fmt.Errorf("step has no single operation")
	}
	return ts.Apply(h.worlds, h.search)
}

func nameRefs(worldID int, names []string) []data.NameRef {
	refs := make([]data.NameRef, len(names))
	for i, n := range names {
		refs[i] = data.NameRef{World: worldID, Name: n}
	}
	return refs
}

// traceEvent describes a step before it runs.
func traceEvent(i int, step Step) TraceEvent {
	ev := TraceEvent{Step: i, Op: step.Op(), World: step.World}
	switch ev.Op {
	case OpCollect:
		ev.Args = step.Collect
	case OpUncollect:
		ev.Args = step.Uncollect
	case OpSkip:
		ev.Args = step.Skip
	case OpCheck:
		ev.Args = step.Check
	case OpDisconnect:
		ev.Args = step.Disconnect
	case OpPlace:
		ev.World = step.Place.World
		ev.Args = []string{step.Place.Location, step.Place.Item}
	case OpConnect:
		ev.World = step.Connect.World
		target := step.Connect.Region
		if step.Connect.Replaces != "" {
			target = step.Connect.Replaces
		}
		ev.Args = []string{step.Connect.Entrance, target}
	case OpSwapDungeon:
		ev.World = step.SwapDungeon.World
		ev.Args = []string{world.VariantName(step.SwapDungeon.Dungeon, step.SwapDungeon.MQ)}
	}
	return ev
}
