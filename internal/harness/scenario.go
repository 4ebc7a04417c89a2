package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/roach88/ootlogic/internal/data"
	"github.com/roach88/ootlogic/internal/world"
)

// Scenario defines a logic test scenario: a world, a sequence of tracker
// steps run against a search, and assertions on what is reachable.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name" validate:"required"`

	// Description explains what this scenario validates.
	Description string `yaml:"description" validate:"required"`

	// World is either a world directory or an inline region list.
	World WorldSpec `yaml:"world"`

	// Items is the inline item table. Not allowed with World.Dir.
	Items []world.ItemDef `yaml:"items,omitempty"`

	// Settings are applied to every player, over any directory defaults.
	Settings map[string]any `yaml:"settings,omitempty"`

	// Players is the number of worlds to build. Zero means one.
	Players int `yaml:"players,omitempty" validate:"gte=0,lte=16"`

	// Helpers is the inline macro table. Not allowed with World.Dir.
	Helpers map[string]string `yaml:"helpers,omitempty"`

	// Entrances is the inline entrance table. Not allowed with World.Dir.
	Entrances []world.EntranceDef `yaml:"entrances,omitempty"`

	// Steps run in order against one search over all players.
	Steps []Step `yaml:"steps" validate:"required,min=1,dive"`

	// Assertions are checked after the last step.
	Assertions []Assertion `yaml:"assertions" validate:"required,min=1,dive"`
}

// WorldSpec selects the world a scenario runs on.
type WorldSpec struct {
	// Dir is a world directory, relative to the scenario file.
	Dir string `yaml:"dir,omitempty"`

	// Regions, Dungeons and Locations describe an inline world; they are
	// checked by world.Validate when the scenario runs.
	Regions   []world.RegionDesc  `yaml:"regions,omitempty"`
	Dungeons  []world.DungeonDesc `yaml:"dungeons,omitempty"`
	Locations []world.LocationDef `yaml:"locations,omitempty"`
}

// Step is one tracker action. Exactly one operation field is set. World
// selects the player for the name-list operations.
type Step struct {
	World int `yaml:"world,omitempty" validate:"gte=0"`

	Collect     []string         `yaml:"collect,omitempty"`
	Uncollect   []string         `yaml:"uncollect,omitempty"`
	Place       *data.Placement  `yaml:"place,omitempty"`
	Skip        []string         `yaml:"skip,omitempty"`
	Check       []string         `yaml:"check,omitempty"`
	Connect     *data.Connection `yaml:"connect,omitempty"`
	Disconnect  []string         `yaml:"disconnect,omitempty"`
	SwapDungeon *data.Variant    `yaml:"swap_dungeon,omitempty"`
	Spheres     bool             `yaml:"spheres,omitempty"`
	Locations   bool             `yaml:"locations,omitempty"`

	// ExpectError makes the step pass only if it fails with an error
	// containing this text.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Step operation names, as they appear in the trace.
const (
	OpCollect     = "collect"
	OpUncollect   = "uncollect"
	OpPlace       = "place"
	OpSkip        = "skip"
	OpCheck       = "check"
	OpConnect     = "connect"
	OpDisconnect  = "disconnect"
	OpSwapDungeon = "swap_dungeon"
	OpSpheres     = "spheres"
	OpLocations   = "locations"
)

// Op returns the step's operation, or "" if none or several are set.
func (s Step) Op() string {
	var ops []string
	if len(s.Collect) > 0 {
		ops = append(ops, OpCollect)
	}
	if len(s.Uncollect) > 0 {
		ops = append(ops, OpUncollect)
	}
	if s.Place != nil {
		ops = append(ops, OpPlace)
	}
	if len(s.Skip) > 0 {
		ops = append(ops, OpSkip)
	}
	if len(s.Check) > 0 {
		ops = append(ops, OpCheck)
	}
	if s.Connect != nil {
		ops = append(ops, OpConnect)
	}
	if len(s.Disconnect) > 0 {
		ops = append(ops, OpDisconnect)
	}
	if s.SwapDungeon != nil {
		ops = append(ops, OpSwapDungeon)
	}
	if s.Spheres {
		ops = append(ops, OpSpheres)
	}
	if s.Locations {
		ops = append(ops, OpLocations)
	}
	if len(ops) != 1 {
		return ""
	}
	return ops[0]
}

// Assertion checks the search after the last step.
type Assertion struct {
	// Type specifies the assertion type:
	// - "visited": Location's item was logically obtained
	// - "not_visited": Location's item was not obtained
	// - "sphere": Location is in the given sphere of the last spheres step
	// - "entrance_sphere": Entrance is in the given sphere
	// - "can_reach": Region is reached for Age and TOD
	// - "cannot_reach": Region is not reached for Age and TOD
	Type string `yaml:"type" validate:"required"`

	World    int    `yaml:"world,omitempty" validate:"gte=0"`
	Location string `yaml:"location,omitempty"`
	Entrance string `yaml:"entrance,omitempty"`
	Region   string `yaml:"region,omitempty"`

	// Age is child, adult, both or either. Default: either.
	Age string `yaml:"age,omitempty"`

	// TOD is NONE, DAY, DAMPE or ALL. Default: NONE.
	TOD string `yaml:"tod,omitempty"`

	// Sphere is the expected sphere; -1 means never reached or
	// pseudo-starting.
	Sphere *int `yaml:"sphere,omitempty"`
}

// Assertion type constants.
const (
	AssertVisited        = "visited"
	AssertNotVisited     = "not_visited"
	AssertSphere         = "sphere"
	AssertEntranceSphere = "entrance_sphere"
	AssertCanReach       = "can_reach"
	AssertCannotReach    = "cannot_reach"
)

var scenarioValidate = validator.New(validator.WithRequiredStructEnabled())

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// World directories resolve relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the world directory relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(src, basePath)
}

// ParseScenario parses scenario YAML. A relative world.dir is joined to
// basePath before validation.
func ParseScenario(src []byte, basePath string) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(src))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if dir := scenario.World.Dir; dir != "" && !filepath.IsAbs(dir) && basePath != "" {
		scenario.World.Dir = filepath.Join(basePath, dir)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks struct tags, then the rules tags cannot express.
func validateScenario(s *Scenario) error {
	if err := scenarioValidate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s: failed %q", fe.Namespace(), fe.Tag())
		}
		return err
	}

	hasDir := s.World.Dir != ""
	hasInline := len(s.World.Regions) > 0
	switch {
	case hasDir && hasInline:
		return fmt.Errorf("world: dir and regions are mutually exclusive")
	case !hasDir && !hasInline:
		return fmt.Errorf("world: dir or regions is required")
	case hasDir && (len(s.Items) > 0 || len(s.Helpers) > 0 || len(s.Entrances) > 0 ||
		len(s.World.Dungeons) > 0 || len(s.World.Locations) > 0):
		return fmt.Errorf("world: items, helpers, entrances, dungeons and locations come from %s", s.World.Dir)
	}
	if hasDir {
		if info, err := os.Stat(s.World.Dir); err != nil || !info.IsDir() {
			return fmt.Errorf("world directory not found: %s", s.World.Dir)
		}
	}

	players := max(s.Players, 1)
	for i, step := range s.Steps {
		if step.Op() == "" {
			return fmt.Errorf("steps[%d]: exactly one operation is required", i)
		}
		if step.World >= players {
			return fmt.Errorf("steps[%d]: world %d out of range (players: %d)", i, step.World, players)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a, players); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, players int) error {
	if a.World >= players {
		return fmt.Errorf("assertions[%d]: world %d out of range (players: %d)", index, a.World, players)
	}

	switch a.Type {
	case AssertVisited, AssertNotVisited:
		if a.Location == "" {
			return fmt.Errorf("assertions[%d]: location is required for %s", index, a.Type)
		}
	case AssertSphere:
		if a.Location == "" {
			return fmt.Errorf("assertions[%d]: location is required for sphere", index)
		}
		if a.Sphere == nil {
			return fmt.Errorf("assertions[%d]: sphere is required for sphere", index)
		}
	case AssertEntranceSphere:
		if a.Entrance == "" {
			return fmt.Errorf("assertions[%d]: entrance is required for entrance_sphere", index)
		}
		if a.Sphere == nil {
			return fmt.Errorf("assertions[%d]: sphere is required for entrance_sphere", index)
		}
	case AssertCanReach, AssertCannotReach:
		if a.Region == "" {
			return fmt.Errorf("assertions[%d]: region is required for %s", index, a.Type)
		}
		if _, err := world.ParseAge(a.Age); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if _, err := world.ParseTimeOfDay(a.TOD); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
