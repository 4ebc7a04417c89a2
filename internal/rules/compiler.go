package rules

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/ootlogic/internal/world"
)

// DefaultMaxAliasDepth bounds nested alias expansion.
const DefaultMaxAliasDepth = 64

// Compiler turns rule text into predicates for one World. It is not safe for
// concurrent use; each World owns its own Compiler.
type Compiler struct {
	world         *world.World
	macros        *Macros
	logger        *slog.Logger
	maxAliasDepth int

	escaped map[string]string

	rawCache  map[string]Node
	fragCache map[string]Node
	predCache map[string]world.Predicate

	subrules     map[subruleKey]string
	subruleCount map[world.RegionID]int
	delayed      []delayedRule

	required     []requiredEvent
	requiredSeen map[string]bool

	stats Stats
}

// Stats counts compiler work since the last Reset.
type Stats struct {
	Compiled  int
	RawHits   int
	FragHits  int
	PredHits  int
	Subrules  int
	Events    int
	NeverSubs int
}

type subruleKey struct {
	region  world.RegionID
	printed string
}

type delayedRule struct {
	region world.RegionID
	name   string
	node   Node
}

type requiredEvent struct {
	name string
	rule string
	spot string
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxAliasDepth sets the alias expansion depth guard.
func WithMaxAliasDepth(n int) Option {
	return func(c *Compiler) {
		if n > 0 {
			c.maxAliasDepth = n
		}
	}
}

// New creates a Compiler bound to w. A nil macro table means no aliases.
func New(w *world.World, macros *Macros, opts ...Option) *Compiler {
	if macros == nil {
		macros = EmptyMacros()
	}
	c := &Compiler{
		world:         w,
		macros:        macros,
		logger:        slog.Default(),
		maxAliasDepth: DefaultMaxAliasDepth,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Reset()
	return c
}

// Factory returns a world.CompilerFactory that binds a new Compiler to each
// World built with it.
func Factory(macros *Macros, opts ...Option) world.CompilerFactory {
	return func(w *world.World) (world.RuleCompiler, error) {
		return New(w, macros, opts...), nil
	}
}

// Reset drops every cache, pending subrule and required event.
func (c *Compiler) Reset() {
	c.escaped = make(map[string]string)
	for _, name := range c.world.Items.Names() {
		c.escaped[EscapeName(name)] = name
	}
	c.rawCache = make(map[string]Node)
	c.fragCache = make(map[string]Node)
	c.predCache = make(map[string]world.Predicate)
	c.subrules = make(map[subruleKey]string)
	c.subruleCount = make(map[world.RegionID]int)
	c.delayed = nil
	c.required = nil
	c.requiredSeen = make(map[string]bool)
	c.stats = Stats{}
}

// Stats returns counters since the last Reset.
func (c *Compiler) Stats() Stats { return c.stats }

// Compile compiles rule text for a spot. here() and at() subrules it
// references are queued until CreateDelayedRules.
func (c *Compiler) Compile(source string, spot world.Spot) (world.Rule, error) {
	c.stats.Compiled++
	sc := &scope{spot: spot, source: source}
	node, err := c.rewriteSource(source, sc)
	if err != nil {
		return world.Rule{}, annotate(err, source, c.world.SpotName(spot))
	}
	return c.makeRule(source, node)
}

func (c *Compiler) rewriteSource(source string, sc *scope) (Node, error) {
	if n, ok := c.rawCache[source]; ok {
		c.stats.RawHits++
		return n, nil
	}
	parsed, err := Parse(source)
	if err != nil {
		return nil, err
	}
	n, err := c.visit(parsed, sc)
	if err != nil {
		return nil, err
	}
	if !sc.contextual {
		c.rawCache[source] = n
	}
	return n, nil
}

func (c *Compiler) makeRule(source string, n Node) (world.Rule, error) {
	if b, ok := n.(*Bool); ok {
		if b.Value {
			return world.AlwaysRule(source), nil
		}
		return world.NeverRule(source), nil
	}
	printed := Print(n)
	if p, ok := c.predCache[printed]; ok {
		c.stats.PredHits++
		return world.NewRule(source, printed, p), nil
	}
	p, err := c.emitBool(n)
	if err != nil {
		return world.Rule{}, annotate(err, source, "")
	}
	c.predCache[printed] = p
	return world.NewRule(source, printed, p), nil
}

// CreateDelayedRules builds the subrule event locations queued by here() and
// at(). Subrules may queue further subrules; the loop runs until none are
// pending. A subrule that folds to False gets no location, and every spot
// whose whole rule is that subrule is marked never.
func (c *Compiler) CreateDelayedRules() error {
	for len(c.delayed) > 0 {
		d := c.delayed[0]
		c.delayed = c.delayed[1:]

		source := Print(d.node)
		id := c.world.NewSubruleLocation(d.region, d.name, source)
		spot := world.LocationSpot(id)
		sc := &scope{spot: spot, source: source}
		n, err := c.visit(d.node, sc)
		if err != nil {
			return annotate(err, source, d.name)
		}
		if b, ok := n.(*Bool); ok && !b.Value {
			c.stats.NeverSubs++
			c.markNeverReferences(d.name)
			c.logger.Debug("subrule never reachable", "subrule", d.name)
			continue
		}
		rule, err := c.makeRule(source, n)
		if err != nil {
			return annotate(err, source, d.name)
		}
		c.world.AttachEventLocation(id, rule)
		c.logger.Debug("subrule created", "subrule", d.name, "rule", rule.Printed)
	}
	return nil
}

func (c *Compiler) markNeverReferences(name string) {
	printed := Print(hasQuery(name))
	for i := 0; i < c.world.LocationCount(); i++ {
		spot := world.LocationSpot(world.LocationID(i))
		if c.world.SpotRule(spot).Printed == printed {
			c.world.MarkNever(spot)
		}
	}
	for i := 0; i < c.world.EntranceCount(); i++ {
		spot := world.EntranceSpot(world.EntranceID(i))
		if c.world.SpotRule(spot).Printed == printed {
			c.world.MarkNever(spot)
		}
	}
}

// CheckEvents fails on the first implicit event that no region declares.
func (c *Compiler) CheckEvents() error {
	declared := c.world.DeclaredEvents()
	var missing []requiredEvent
	for _, ev := range c.required {
		if !declared[ev.name] {
			missing = append(missing, ev)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	for _, ev := range missing[1:] {
		c.logger.Warn("undefined event", "event", ev.name, "spot", ev.spot)
	}
	first := missing[0]
	msg := fmt.Sprintf("event %q is required but never provided", first.name)
	if len(missing) > 1 {
		msg += fmt.Sprintf(" (and %d more)", len(missing)-1)
	}
	return &CompileError{Code: ErrCodeUndefinedEvent, Message: msg, Rule: first.rule, Spot: first.spot}
}

// RequiredEvents lists implicit event names in the order rules first
// referenced them.
func (c *Compiler) RequiredEvents() []string {
	out := make([]string, len(c.required))
	for i, ev := range c.required {
		out[i] = ev.name
	}
	return out
}

// CompileRule compiles one rule against a built World with its own compiler
// and creates any subrules it needs.
func CompileRule(w *world.World, source string, spot world.Spot) (world.Rule, error) {
	c, ok := w.Compiler().(*Compiler)
	if !ok {
		return world.Rule{}, fmt.Errorf("world %d has no rule compiler", w.ID)
	}
	rule, err := c.Compile(source, spot)
	if err != nil {
		return world.Rule{}, err
	}
	if err := c.CreateDelayedRules(); err != nil {
		return world.Rule{}, err
	}
	return rule, nil
}

// EscapeName turns an item name into the identifier rules use for it:
// whitespace becomes '_' and the characters '()[]- are dropped.
func EscapeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n':
			return '_'
		case '\'', '(', ')', '[', ']', '-':
			return -1
		}
		return r
	}, name)
}
