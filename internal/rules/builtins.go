package rules

import (
	"fmt"
	"strconv"

	"github.com/roach88/ootlogic/internal/ir"
	"github.com/roach88/ootlogic/internal/world"
)

// builtin is a state query rules may call. Boolean queries set pred; counting
// queries set value.
type builtin struct {
	minArgs, maxArgs int

	pred  func(c *Compiler, args []Node) (world.Predicate, error)
	value func(c *Compiler, args []Node) (valueFn, error)
}

func (b builtin) arity() string {
	switch {
	case b.minArgs == b.maxArgs && b.minArgs == 1:
		return "1 argument"
	case b.minArgs == b.maxArgs:
		return fmt.Sprintf("%d arguments", b.minArgs)
	}
	return fmt.Sprintf("%d to %d arguments", b.minArgs, b.maxArgs)
}

var builtins map[string]builtin

func init() {
	builtins = map[string]builtin{
		"has":                    {minArgs: 1, maxArgs: 2, pred: buildHas},
		"has_any_of":             {minArgs: 1, maxArgs: 1, pred: namesPred((*world.State).HasAnyOf)},
		"has_all_of":             {minArgs: 1, maxArgs: 1, pred: namesPred((*world.State).HasAllOf)},
		"count_of":               {minArgs: 1, maxArgs: 1, value: namesCount((*world.State).CountOf)},
		"count_distinct":         {minArgs: 1, maxArgs: 1, value: namesCount((*world.State).CountDistinct)},
		"item_count":             {minArgs: 1, maxArgs: 1, value: buildItemCount},
		"has_bottle":             {pred: statePred((*world.State).HasBottle)},
		"heart_count":            {value: buildHeartCount},
		"has_hearts":             {minArgs: 1, maxArgs: 1, pred: countPred((*world.State).HasHearts)},
		"has_medallions":         {minArgs: 1, maxArgs: 1, pred: countPred((*world.State).HasMedallions)},
		"has_stones":             {minArgs: 1, maxArgs: 1, pred: countPred((*world.State).HasStones)},
		"has_dungeon_rewards":    {minArgs: 1, maxArgs: 1, pred: countPred((*world.State).HasDungeonRewards)},
		"has_ocarina_buttons":    {minArgs: 1, maxArgs: 1, pred: countPred((*world.State).HasOcarinaButtons)},
		"has_all_notes_for_song": {minArgs: 1, maxArgs: 1, pred: namePred((*world.State).HasAllNotesForSong)},
		"had_night_start":        {pred: statePred((*world.State).HadNightStart)},
		"can_live_dmg":           {minArgs: 1, maxArgs: 1, pred: buildCanLiveDmg},
		"region_has_shortcuts":   {minArgs: 1, maxArgs: 1, pred: namePred((*world.State).RegionHasShortcuts)},
		"has_soul":               {minArgs: 1, maxArgs: 1, pred: namePred((*world.State).HasSoul)},
		"won":                    {pred: statePred((*world.State).Won)},
	}
}

// QueryNames lists the state queries rules may call.
func QueryNames() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	return names
}

func (c *Compiler) emitQueryBool(q *Query) (world.Predicate, error) {
	b, ok := builtins[q.Name]
	if !ok {
		return nil, newError(ErrCodeUnknownFunction, "unknown function %s", q.Name)
	}
	if b.pred != nil {
		return b.pred(c, q.Args)
	}
	val, err := b.value(c, q.Args)
	if err != nil {
		return nil, err
	}
	return func(s *world.State, ctx world.Context) bool { return ir.Truthy(val(s, ctx)) }, nil
}

func buildHas(c *Compiler, args []Node) (world.Predicate, error) {
	count := 1
	if len(args) == 2 {
		n, ok := args[1].(*Num)
		if !ok {
			return hasDynamic(c, args)
		}
		count = int(n.Value)
	}
	if s, ok := args[0].(*Str); ok {
		name := s.Value
		return func(st *world.State, _ world.Context) bool { return st.Has(name, count) }, nil
	}
	return hasDynamic(c, args)
}

func hasDynamic(c *Compiler, args []Node) (world.Predicate, error) {
	name, err := c.strArg(args[0])
	if err != nil {
		return nil, err
	}
	count := func(*world.State, world.Context) int { return 1 }
	if len(args) == 2 {
		if count, err = c.intArg(args[1]); err != nil {
			return nil, err
		}
	}
	return func(s *world.State, ctx world.Context) bool { return s.Has(name(s, ctx), count(s, ctx)) }, nil
}

func namesPred(fn func(*world.State, []string) bool) func(*Compiler, []Node) (world.Predicate, error) {
	return func(c *Compiler, args []Node) (world.Predicate, error) {
		names, err := c.namesArg(args[0])
		if err != nil {
			return nil, err
		}
		return func(s *world.State, ctx world.Context) bool { return fn(s, names(s, ctx)) }, nil
	}
}

func namesCount(fn func(*world.State, []string) int) func(*Compiler, []Node) (valueFn, error) {
	return func(c *Compiler, args []Node) (valueFn, error) {
		names, err := c.namesArg(args[0])
		if err != nil {
			return nil, err
		}
		return func(s *world.State, ctx world.Context) ir.Value { return ir.Int(fn(s, names(s, ctx))) }, nil
	}
}

func buildItemCount(c *Compiler, args []Node) (valueFn, error) {
	name, err := c.strArg(args[0])
	if err != nil {
		return nil, err
	}
	return func(s *world.State, ctx world.Context) ir.Value { return ir.Int(s.ItemCount(name(s, ctx))) }, nil
}

func buildHeartCount(*Compiler, []Node) (valueFn, error) {
	return func(s *world.State, _ world.Context) ir.Value { return ir.Int(s.HeartCount()) }, nil
}

func statePred(fn func(*world.State) bool) func(*Compiler, []Node) (world.Predicate, error) {
	return func(*Compiler, []Node) (world.Predicate, error) {
		return func(s *world.State, _ world.Context) bool { return fn(s) }, nil
	}
}

func countPred(fn func(*world.State, int) bool) func(*Compiler, []Node) (world.Predicate, error) {
	return func(c *Compiler, args []Node) (world.Predicate, error) {
		n, err := c.intArg(args[0])
		if err != nil {
			return nil, err
		}
		return func(s *world.State, ctx world.Context) bool { return fn(s, n(s, ctx)) }, nil
	}
}

func namePred(fn func(*world.State, string) bool) func(*Compiler, []Node) (world.Predicate, error) {
	return func(c *Compiler, args []Node) (world.Predicate, error) {
		name, err := c.strArg(args[0])
		if err != nil {
			return nil, err
		}
		return func(s *world.State, ctx world.Context) bool { return fn(s, name(s, ctx)) }, nil
	}
}

func buildCanLiveDmg(c *Compiler, args []Node) (world.Predicate, error) {
	var hearts float64
	switch v := args[0].(type) {
	case *Float:
		hearts = v.Value
	case *Num:
		hearts = float64(v.Value)
	default:
		n, err := c.intArg(v)
		if err != nil {
			return nil, err
		}
		return func(s *world.State, ctx world.Context) bool { return s.CanLiveDmg(float64(n(s, ctx))) }, nil
	}
	return func(s *world.State, _ world.Context) bool { return s.CanLiveDmg(hearts) }, nil
}

func (c *Compiler) strArg(n Node) (func(*world.State, world.Context) string, error) {
	if s, ok := n.(*Str); ok {
		v := s.Value
		return func(*world.State, world.Context) string { return v }, nil
	}
	val, err := c.emitValue(n)
	if err != nil {
		return nil, err
	}
	return func(s *world.State, ctx world.Context) string { return stringOf(val(s, ctx)) }, nil
}

func (c *Compiler) intArg(n Node) (func(*world.State, world.Context) int, error) {
	if num, ok := n.(*Num); ok {
		v := int(num.Value)
		return func(*world.State, world.Context) int { return v }, nil
	}
	val, err := c.emitValue(n)
	if err != nil {
		return nil, err
	}
	return func(s *world.State, ctx world.Context) int { return intOf(val(s, ctx)) }, nil
}

func (c *Compiler) namesArg(n Node) (func(*world.State, world.Context) []string, error) {
	switch v := n.(type) {
	case *Str:
		names := []string{v.Value}
		return func(*world.State, world.Context) []string { return names }, nil
	case *List:
		if names, ok := literalNames(v); ok {
			return func(*world.State, world.Context) []string { return names }, nil
		}
	}
	val, err := c.emitValue(n)
	if err != nil {
		return nil, err
	}
	return func(s *world.State, ctx world.Context) []string { return stringsOf(val(s, ctx)) }, nil
}

func literalNames(l *List) ([]string, bool) {
	out := make([]string, 0, len(l.Elems))
	for _, e := range l.Elems {
		s, ok := e.(*Str)
		if !ok {
			return nil, false
		}
		out = append(out, s.Value)
	}
	return out, true
}

func stringOf(v ir.Value) string {
	switch x := v.(type) {
	case ir.String:
		return string(x)
	case ir.Int:
		return strconv.FormatInt(int64(x), 10)
	}
	return ir.Format(v)
}

func intOf(v ir.Value) int {
	switch x := v.(type) {
	case ir.Int:
		return int(x)
	case ir.Bool:
		if x {
			return 1
		}
	case ir.String:
		n, _ := strconv.Atoi(string(x))
		return n
	}
	return 0
}

func stringsOf(v ir.Value) []string {
	switch x := v.(type) {
	case ir.List:
		out := make([]string, 0, len(x))
		for _, e := range x {
			out = append(out, stringOf(e))
		}
		return out
	case ir.String:
		return []string{string(x)}
	}
	return nil
}
