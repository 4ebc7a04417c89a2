package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/ootlogic/internal/ir"
	"github.com/roach88/ootlogic/internal/world"
)

// scope is the state of one rewrite pass.
type scope struct {
	spot   world.Spot
	source string
	depth  int

	// contextual is set when the rewrite depended on the spot being
	// compiled, so the result must not be cached.
	contextual bool
}

var wordRe = regexp.MustCompile(`^\w+$`)

var timeOfDayConstants = map[string]world.TimeOfDay{
	"NONE":  world.TODNone,
	"DAY":   world.TODDay,
	"DAMPE": world.TODDampe,
	"ALL":   world.TODAll,
}

var subruleNameOverrides = map[string]string{
	"at_night":      "Night",
	"at_day":        "Day",
	"at_dampe_time": "Dampe Time",
}

func (c *Compiler) visit(n Node, sc *scope) (Node, error) {
	switch v := n.(type) {
	case *Ident:
		return c.visitName(v.Name, sc)
	case *Str:
		return hasQuery(v.Value), nil
	case *Num, *Bool:
		return v, nil
	case *Float:
		return nil, newError(ErrCodeSyntax, "fractional number %v outside a query argument", v.Value)
	case *Not:
		x, err := c.visit(v.X, sc)
		if err != nil {
			return nil, err
		}
		return &Not{X: x}, nil
	case *BoolOp:
		return c.cachedFragment(v, sc, c.visitBoolOp)
	case *Compare:
		return c.cachedFragment(v, sc, c.visitCompare)
	case *Call:
		return c.cachedFragment(v, sc, c.visitCall)
	case *Tuple:
		return c.visitTuple(v, sc)
	case *List:
		elems := make([]Node, len(v.Elems))
		for i, e := range v.Elems {
			x, err := c.escapeOrString(e, sc)
			if err != nil {
				return nil, err
			}
			elems[i] = x
		}
		return &List{Elems: elems}, nil
	case *Subscript:
		return c.visitSubscript(v)
	case *Attr:
		if obj, ok := v.Obj.(*Ident); ok && obj.Name == "TimeOfDay" {
			if tod, ok := timeOfDayConstants[v.Name]; ok {
				return &Num{Value: int64(tod)}, nil
			}
		}
		return nil, newError(ErrCodeUnknownIdentifier, "unknown attribute %s", Print(v))
	}
	return nil, newError(ErrCodeSyntax, "unexpected expression %s", Print(n))
}

// cachedFragment rewrites a compound node through the fragment cache. A
// rewrite that depended on the current spot is neither served from nor
// stored in the cache.
func (c *Compiler) cachedFragment(n Node, sc *scope, rewrite func(Node, *scope) (Node, error)) (Node, error) {
	key := Print(n)
	if hit, ok := c.fragCache[key]; ok {
		c.stats.FragHits++
		return hit, nil
	}
	outer := sc.contextual
	sc.contextual = false
	out, err := rewrite(n, sc)
	if err != nil {
		return nil, err
	}
	if !sc.contextual {
		c.fragCache[key] = out
	}
	sc.contextual = sc.contextual || outer
	return out, nil
}

func (c *Compiler) visitName(name string, sc *scope) (Node, error) {
	switch name {
	case "here", "at":
		return nil, newError(ErrCodeBadSubrule, "%s must be called", name)
	case "at_day", "at_night", "at_dampe_time":
		return c.timeIntrinsic(name, sc)
	}
	if mac, ok := c.macros.Lookup(name); ok {
		if len(mac.Params) > 0 {
			return nil, newError(ErrCodeArity, "alias %s takes %d arguments, used without any", name, len(mac.Params))
		}
		return c.expand(mac, nil, sc)
	}
	if item, ok := c.escaped[name]; ok {
		return hasQuery(item), nil
	}
	if _, ok := c.world.Fields[name]; ok {
		return &FieldRef{Name: name}, nil
	}
	if _, ok := c.world.Settings[name]; ok {
		return &SettingRef{Name: name}, nil
	}
	if b, ok := builtins[name]; ok && b.minArgs == 0 {
		return &Query{Name: name}, nil
	}
	switch name {
	case "age", "spot", "tod":
		if name == "spot" {
			sc.contextual = true
		}
		return &CtxRef{Name: name}, nil
	}
	if !wordRe.MatchString(name) {
		return nil, newError(ErrCodeUnknownIdentifier, "unknown identifier %q", name)
	}
	event := strings.ReplaceAll(name, "_", " ")
	c.requireEvent(event, sc)
	return hasQuery(event), nil
}

func (c *Compiler) requireEvent(name string, sc *scope) {
	if c.requiredSeen[name] {
		return
	}
	c.requiredSeen[name] = true
	c.stats.Events++
	c.required = append(c.required, requiredEvent{name: name, rule: sc.source, spot: c.world.SpotName(sc.spot)})
}

func (c *Compiler) expand(mac *Macro, args []Node, sc *scope) (Node, error) {
	if sc.depth >= c.maxAliasDepth {
		return nil, newError(ErrCodeAliasRecursion, "alias %s nests deeper than %d", mac.Name, c.maxAliasDepth)
	}
	body := mac.Body
	if len(mac.Params) > 0 {
		params := make(map[string]Node, len(mac.Params))
		for i, p := range mac.Params {
			params[p] = args[i]
		}
		body = substitute(body, params)
	}
	sc.depth++
	defer func() { sc.depth-- }()
	return c.visit(body, sc)
}

func (c *Compiler) timeIntrinsic(name string, sc *scope) (Node, error) {
	// Night tokens need Suns Song even when time of day is not enforced.
	if name == "at_night" &&
		sc.spot.Kind == world.SpotLocation &&
		c.world.LocationByID(world.LocationID(sc.spot.ID)).Type == "GS Token" &&
		c.world.Settings.Bool("logic_no_night_tokens_without_suns_song") {
		sc.contextual = true
		return c.visit(&Call{Name: "can_play", Args: []Node{&Ident{Name: "Suns_Song"}}}, sc)
	}
	if !ir.Truthy(c.world.Fields["ensure_tod_access"]) {
		return &Bool{Value: true}, nil
	}
	sc.contextual = true
	switch name {
	case "at_day":
		return &TimeCheck{Bit: world.TODDay, SunsSong: true}, nil
	case "at_dampe_time":
		return &TimeCheck{Bit: world.TODDampe}, nil
	}
	return &TimeCheck{Bit: world.TODDampe, SunsSong: true}, nil
}

func (c *Compiler) visitCall(n Node, sc *scope) (Node, error) {
	call := n.(*Call)
	switch call.Name {
	case "here":
		if len(call.Args) != 1 {
			return nil, newError(ErrCodeBadSubrule, "here() takes one argument, got %d", len(call.Args))
		}
		region := c.world.SpotRegion(sc.spot)
		if !region.Valid() {
			return nil, newError(ErrCodeBadSubrule, "here() used outside a region")
		}
		sc.contextual = true
		return c.replaceSubrule(region, call.Args[0]), nil
	case "at":
		if len(call.Args) != 2 {
			return nil, newError(ErrCodeBadSubrule, "at() takes two arguments, got %d", len(call.Args))
		}
		target, ok := call.Args[0].(*Str)
		if !ok {
			return nil, newError(ErrCodeBadSubrule, "at() region must be a string, got %s", Print(call.Args[0]))
		}
		region, err := c.subruleRegion(target.Value, sc)
		if err != nil {
			return nil, err
		}
		sc.contextual = true
		return c.replaceSubrule(region, call.Args[1]), nil
	}

	if mac, ok := c.macros.Lookup(call.Name); ok {
		if len(call.Args) != len(mac.Params) {
			return nil, newError(ErrCodeArity, "alias %s takes %d arguments, got %d", mac.Name, len(mac.Params), len(call.Args))
		}
		for _, a := range call.Args {
			switch a.(type) {
			case *Ident, *Str:
			default:
				return nil, newError(ErrCodeSyntax, "alias %s argument %s must be a name or a string", mac.Name, Print(a))
			}
		}
		return c.expand(mac, call.Args, sc)
	}

	b, ok := builtins[call.Name]
	if !ok {
		return nil, newError(ErrCodeUnknownFunction, "unknown function %s", call.Name)
	}
	if len(call.Args) < b.minArgs || len(call.Args) > b.maxArgs {
		return nil, newError(ErrCodeArity, "%s takes %s, got %d", call.Name, b.arity(), len(call.Args))
	}
	args := make([]Node, len(call.Args))
	for i, a := range call.Args {
		x, err := c.queryArg(a, sc)
		if err != nil {
			return nil, err
		}
		args[i] = x
	}
	return &Query{Name: call.Name, Args: args}, nil
}

// queryArg resolves a state query argument: a name becomes a field, a
// setting, an expanded alias, an item name or an event name, in that order.
// Event names used as arguments are not required events.
func (c *Compiler) queryArg(n Node, sc *scope) (Node, error) {
	switch v := n.(type) {
	case *Ident:
		if _, ok := c.world.Fields[v.Name]; ok {
			return &FieldRef{Name: v.Name}, nil
		}
		if _, ok := c.world.Settings[v.Name]; ok {
			return &SettingRef{Name: v.Name}, nil
		}
		if mac, ok := c.macros.Lookup(v.Name); ok && len(mac.Params) == 0 {
			return c.expand(mac, nil, sc)
		}
		if item, ok := c.escaped[v.Name]; ok {
			return &Str{Value: item}, nil
		}
		return &Str{Value: strings.ReplaceAll(v.Name, "_", " ")}, nil
	case *Str, *Num, *Float:
		return v, nil
	}
	return c.visit(n, sc)
}

func (c *Compiler) subruleRegion(name string, sc *scope) (world.RegionID, error) {
	if here := c.world.SpotRegion(sc.spot); here.Valid() {
		if variant := c.world.RegionByID(here).Variant; variant != "" {
			if r, err := c.world.VariantRegion(name, variant); err == nil {
				return r.ID, nil
			}
		}
	}
	r, err := c.world.Region(name)
	if err != nil {
		return world.NoRegion, newError(ErrCodeUnknownRegion, "at() names unknown region %q", name)
	}
	return r.ID, nil
}

// replaceSubrule queues expr as a synthetic event in region and returns the
// has() call that stands in for it. Identical expressions in one region
// share a subrule.
func (c *Compiler) replaceSubrule(region world.RegionID, expr Node) Node {
	printed := Print(expr)
	key := subruleKey{region: region, printed: printed}
	if name, ok := c.subrules[key]; ok {
		return hasQuery(name)
	}
	regionName := c.world.RegionByID(region).Name
	var name string
	if id, ok := expr.(*Ident); ok && subruleNameOverrides[id.Name] != "" {
		name = regionName + " " + subruleNameOverrides[id.Name]
	} else {
		c.subruleCount[region]++
		name = fmt.Sprintf("%s Subrule %d", regionName, c.subruleCount[region])
	}
	c.subrules[key] = name
	c.delayed = append(c.delayed, delayedRule{region: region, name: name, node: expr})
	c.stats.Subrules++
	return hasQuery(name)
}

func (c *Compiler) visitTuple(t *Tuple, sc *scope) (Node, error) {
	if len(t.Elems) != 2 {
		return nil, newError(ErrCodeBadTuple, "tuple %s must have two elements", Print(t))
	}
	var item string
	switch v := t.Elems[0].(type) {
	case *Ident:
		item = v.Name
	case *Str:
		item = v.Value
	default:
		return nil, newError(ErrCodeBadTuple, "tuple item %s must be a name or a string", Print(v))
	}
	if name, ok := c.escaped[item]; ok {
		item = name
	}
	var count int64
	switch v := t.Elems[1].(type) {
	case *Num:
		count = v.Value
	case *Ident:
		n, ok := c.world.Settings.Int(v.Name)
		if !ok || n <= 0 {
			return nil, newError(ErrCodeBadTuple, "tuple count %s must be a setting holding a positive integer", v.Name)
		}
		count = n
	default:
		return nil, newError(ErrCodeBadTuple, "tuple count %s must be an integer or a setting", Print(v))
	}
	if !c.world.Items.Contains(item) {
		c.requireEvent(item, sc)
	}
	return &Query{Name: "has", Args: []Node{&Str{Value: item}, &Num{Value: count}}}, nil
}

func (c *Compiler) visitSubscript(s *Subscript) (Node, error) {
	obj, ok := s.Obj.(*Ident)
	if !ok {
		return nil, newError(ErrCodeSyntax, "cannot subscript %s", Print(s.Obj))
	}
	var key string
	switch k := s.Key.(type) {
	case *Ident:
		key = strings.ReplaceAll(k.Name, "_", " ")
	case *Str:
		key = k.Value
	default:
		return nil, newError(ErrCodeSyntax, "subscript key %s must be a name or a string", Print(s.Key))
	}
	if _, ok := c.world.Fields[obj.Name]; ok {
		return &IndexRef{Obj: obj.Name, Key: key}, nil
	}
	if _, ok := c.world.Settings[obj.Name]; ok {
		return &IndexRef{Obj: obj.Name, Key: key, Setting: true}, nil
	}
	return nil, newError(ErrCodeUnknownIdentifier, "cannot subscript unknown name %q", obj.Name)
}

// escapeOrString turns an item name into its string and keeps string
// literals; anything else is rewritten.
func (c *Compiler) escapeOrString(n Node, sc *scope) (Node, error) {
	switch v := n.(type) {
	case *Ident:
		if item, ok := c.escaped[v.Name]; ok {
			return &Str{Value: item}, nil
		}
	case *Str:
		return v, nil
	}
	return c.visit(n, sc)
}

func (c *Compiler) visitCompare(n Node, sc *scope) (Node, error) {
	cmp := n.(*Compare)
	if cmp.Op == OpEq {
		l, lok := cmp.Left.(*Ident)
		r, rok := cmp.Right.(*Ident)
		if lok && rok && !c.isValueName(l.Name) && !c.isValueName(r.Name) {
			return &Bool{Value: l.Name == r.Name}, nil
		}
	}
	var left Node
	var err error
	if _, nested := cmp.Left.(*Compare); nested {
		left, err = c.visit(cmp.Left, sc)
	} else {
		left, err = c.escapeOrString(cmp.Left, sc)
	}
	if err != nil {
		return nil, err
	}
	right, err := c.escapeOrString(cmp.Right, sc)
	if err != nil {
		return nil, err
	}
	return &Compare{Op: cmp.Op, Left: left, Right: right}, nil
}

func (c *Compiler) isValueName(name string) bool {
	_, field := c.world.Fields[name]
	_, setting := c.world.Settings[name]
	return field || setting
}

// visitBoolOp flattens a same-operator chain and groups plain item checks
// into one has_any_of or has_all_of call. A literal equal to the
// short-circuit value ends the rewrite early.
func (c *Compiler) visitBoolOp(n Node, sc *scope) (Node, error) {
	op := n.(*BoolOp).Op
	short := op == OpOr
	group := "has_all_of"
	if short {
		group = "has_any_of"
	}

	var names []string
	seen := make(map[string]bool)
	addName := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	var terms []Node

	// addCompiled returns true when the chain collapsed.
	var addCompiled func(Node) bool
	addCompiled = func(x Node) bool {
		switch v := x.(type) {
		case *Bool:
			return v.Value == short
		case *BoolOp:
			if v.Op == op {
				for _, t := range v.Terms {
					if addCompiled(t) {
						return true
					}
				}
				return false
			}
		case *Query:
			if strs, ok := groupable(v, group); ok {
				for _, s := range strs {
					addName(s)
				}
				return false
			}
		}
		terms = append(terms, x)
		return false
	}

	var walk func(Node) (bool, error)
	walk = func(x Node) (bool, error) {
		switch v := x.(type) {
		case *BoolOp:
			if v.Op == op {
				for _, t := range v.Terms {
					if collapsed, err := walk(t); collapsed || err != nil {
						return collapsed, err
					}
				}
				return false, nil
			}
		case *Str:
			addName(v.Value)
			return false, nil
		case *Ident:
			if item, ok := c.escaped[v.Name]; ok {
				if _, alias := c.macros.Lookup(v.Name); !alias {
					addName(item)
					return false, nil
				}
			}
		}
		compiled, err := c.visit(x, sc)
		if err != nil {
			return false, err
		}
		return addCompiled(compiled), nil
	}

	for _, t := range n.(*BoolOp).Terms {
		collapsed, err := walk(t)
		if err != nil {
			return nil, err
		}
		if collapsed {
			return &Bool{Value: short}, nil
		}
	}

	if len(names) > 0 {
		elems := make([]Node, len(names))
		for i, name := range names {
			elems[i] = &Str{Value: name}
		}
		grouped := &Query{Name: group, Args: []Node{&List{Elems: elems}}}
		terms = append([]Node{grouped}, terms...)
	}
	switch len(terms) {
	case 0:
		return &Bool{Value: !short}, nil
	case 1:
		return terms[0], nil
	}
	return &BoolOp{Op: op, Terms: terms}, nil
}

// groupable returns the literal names of a single-argument has() call or a
// grouping call of the chain's kind.
func groupable(q *Query, group string) ([]string, bool) {
	if len(q.Args) != 1 {
		return nil, false
	}
	switch q.Name {
	case "has":
		if s, ok := q.Args[0].(*Str); ok {
			return []string{s.Value}, true
		}
	case group:
		l, ok := q.Args[0].(*List)
		if !ok {
			return nil, false
		}
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
	return nil, false
}
