package data

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/ootlogic/internal/ir"
	"github.com/roach88/ootlogic/internal/rules"
	"github.com/roach88/ootlogic/internal/world"
)

// File names inside a world directory.
const (
	SettingsFile  = "world.yaml"
	ItemsFile     = "items.yaml"
	LocationsFile = "locations.yaml"
	EntrancesFile = "entrances.yaml"
	HelpersFile   = "helpers.json"
	RegionsDir    = "regions"
	DungeonsDir   = "dungeons"
)

// WorldDir is a loaded world directory: the static description shared by
// every player plus the default settings from world.yaml.
type WorldDir struct {
	Path     string
	Settings ir.Object
	Desc     world.Description
	Macros   *rules.Macros
}

// LoadWorldDir reads and validates a world directory:
//
//	world.yaml           default settings
//	items.yaml           item table
//	locations.yaml       location table (optional)
//	entrances.yaml       entrance table (optional)
//	helpers.json         macro table (optional)
//	regions/*.json       overworld region files
//	dungeons/<Name>.json and dungeons/<Name> MQ.json
func LoadWorldDir(dir string) (*WorldDir, error) {
	wd := &WorldDir{Path: dir, Settings: ir.Object{}}

	var err error
	if exists(filepath.Join(dir, SettingsFile)) {
		if wd.Settings, err = LoadSettings(filepath.Join(dir, SettingsFile)); err != nil {
			return nil, err
		}
	}
	if wd.Desc.Items, err = LoadItemTable(filepath.Join(dir, ItemsFile)); err != nil {
		return nil, err
	}
	if exists(filepath.Join(dir, LocationsFile)) {
		if wd.Desc.Locations, err = LoadLocationTable(filepath.Join(dir, LocationsFile)); err != nil {
			return nil, err
		}
	}
	if exists(filepath.Join(dir, EntrancesFile)) {
		if wd.Desc.Entrances, err = LoadEntranceTable(filepath.Join(dir, EntrancesFile)); err != nil {
			return nil, err
		}
	}

	helpers := map[string]string{}
	if exists(filepath.Join(dir, HelpersFile)) {
		if helpers, err = LoadHelpers(filepath.Join(dir, HelpersFile)); err != nil {
			return nil, err
		}
	}
	if wd.Macros, err = rules.ParseMacros(helpers); err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Join(dir, HelpersFile), err)
	}

	regionFiles, err := filepath.Glob(filepath.Join(dir, RegionsDir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(regionFiles)
	for _, path := range regionFiles {
		regions, err := LoadRegions(path)
		if err != nil {
			return nil, err
		}
		wd.Desc.Regions = append(wd.Desc.Regions, regions...)
	}

	if wd.Desc.Dungeons, err = loadDungeons(filepath.Join(dir, DungeonsDir)); err != nil {
		return nil, err
	}

	if errs := world.Validate(&wd.Desc); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, &LoadError{Code: ErrCodeInvalid, Path: dir, Message: strings.Join(msgs, "; "), Issues: errs}
	}
	return wd, nil
}

// loadDungeons pairs every dungeons/<Name>.json with its "<Name> MQ.json".
// A missing directory means the world has no dungeons.
func loadDungeons(dir string) ([]world.DungeonDesc, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	var out []world.DungeonDesc
	for _, path := range files {
		name := strings.TrimSuffix(filepath.Base(path), ".json")
		if strings.HasSuffix(name, " MQ") {
			continue
		}
		vanilla, err := LoadRegions(path)
		if err != nil {
			return nil, err
		}
		mqPath := filepath.Join(dir, world.VariantName(name, true)+".json")
		if !exists(mqPath) {
			return nil, &LoadError{Code: ErrCodeNotFound, Path: mqPath, Message: fmt.Sprintf("dungeon %q has no MQ variant", name)}
		}
		mq, err := LoadRegions(mqPath)
		if err != nil {
			return nil, err
		}
		out = append(out, world.DungeonDesc{Name: name, Vanilla: vanilla, MQ: mq})
	}
	return out, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

// BuildOption configures WorldDir.Build.
type BuildOption func(*buildConfig)

type buildConfig struct {
	logger      *slog.Logger
	checkedOnly bool
	skipVanilla bool
	maxParallel int
}

// WithLogger sets the logger for built worlds and their compilers.
func WithLogger(l *slog.Logger) BuildOption {
	return func(c *buildConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCollectCheckedOnly builds worlds that collect only checked locations.
func WithCollectCheckedOnly(v bool) BuildOption {
	return func(c *buildConfig) { c.checkedOnly = v }
}

// WithoutVanillaItems leaves every location empty after Build.
func WithoutVanillaItems() BuildOption {
	return func(c *buildConfig) { c.skipVanilla = true }
}

// WithMaxParallel bounds the number of worlds BuildWorlds builds at once.
// Default: GOMAXPROCS.
func WithMaxParallel(n int) BuildOption {
	return func(c *buildConfig) { c.maxParallel = n }
}

func newBuildConfig(opts []BuildOption) buildConfig {
	c := buildConfig{logger: slog.Default(), maxParallel: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Build builds world id with settings layered over the directory defaults,
// then places each location's vanilla item.
func (wd *WorldDir) Build(settings ir.Object, id int, opts ...BuildOption) (*world.World, error) {
	cfg := newBuildConfig(opts)
	return wd.build(settings, id, cfg)
}

func (wd *WorldDir) build(settings ir.Object, id int, cfg buildConfig) (*world.World, error) {
	desc := wd.Desc
	desc.Settings = wd.MergeSettings(settings)
	w, err := world.Build(&desc,
		world.WithID(id),
		world.WithLogger(cfg.logger),
		world.WithCompiler(rules.Factory(wd.Macros, rules.WithLogger(cfg.logger))),
		world.WithDeriver(DeriveFields),
		world.WithCollectCheckedOnly(cfg.checkedOnly),
	)
	if err != nil {
		return nil, err
	}
	if !cfg.skipVanilla {
		if _, err := w.PushVanillaItems(); err != nil {
			return nil, fmt.Errorf("world %d: %w", id, err)
		}
	}
	return w, nil
}

// MergeSettings returns the directory defaults overlaid with settings.
func (wd *WorldDir) MergeSettings(settings ir.Object) ir.Object {
	out := wd.Settings.Clone()
	if out == nil {
		out = ir.Object{}
	}
	for k, v := range settings {
		out[k] = v
	}
	return out
}

// BuildWorlds loads dir once and builds one world per settings entry
// concurrently. World i gets id i. An empty list builds a single world
// from the directory defaults.
func BuildWorlds(ctx context.Context, dir string, settingsList []ir.Object, opts ...BuildOption) ([]*world.World, error) {
	wd, err := LoadWorldDir(dir)
	if err != nil {
		return nil, err
	}
	return wd.BuildAll(ctx, settingsList, opts...)
}

// BuildAll builds one world per settings entry concurrently.
func (wd *WorldDir) BuildAll(ctx context.Context, settingsList []ir.Object, opts ...BuildOption) ([]*world.World, error) {
	if len(settingsList) == 0 {
		settingsList = []ir.Object{nil}
	}
	cfg := newBuildConfig(opts)
	worlds := make([]*world.World, len(settingsList))

	g, ctx := errgroup.WithContext(ctx)
	if cfg.maxParallel > 0 {
		g.SetLimit(cfg.maxParallel)
	}
	for i, settings := range settingsList {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			w, err := wd.build(settings, i, cfg)
			if err != nil {
				return err
			}
			worlds[i] = w
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	cfg.logger.Info("worlds built", "dir", wd.Path, "worlds", len(worlds))
	return worlds, nil
}
