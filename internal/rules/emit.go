package rules

import (
	"github.com/roach88/ootlogic/internal/ir"
	"github.com/roach88/ootlogic/internal/world"
)

// valueFn evaluates a rewritten non-boolean expression.
type valueFn func(*world.State, world.Context) ir.Value

func (c *Compiler) emitBool(n Node) (world.Predicate, error) {
	switch v := n.(type) {
	case *Bool:
		b := v.Value
		return func(*world.State, world.Context) bool { return b }, nil
	case *Not:
		x, err := c.emitBool(v.X)
		if err != nil {
			return nil, err
		}
		return func(s *world.State, ctx world.Context) bool { return !x(s, ctx) }, nil
	case *BoolOp:
		return c.emitChain(v)
	case *Query:
		return c.emitQueryBool(v)
	case *Compare:
		return c.emitCompare(v)
	case *TimeCheck:
		return c.emitTimeCheck(v), nil
	}
	val, err := c.emitValue(n)
	if err != nil {
		return nil, err
	}
	return func(s *world.State, ctx world.Context) bool { return ir.Truthy(val(s, ctx)) }, nil
}

func (c *Compiler) emitChain(op *BoolOp) (world.Predicate, error) {
	preds := make([]world.Predicate, len(op.Terms))
	for i, t := range op.Terms {
		p, err := c.emitBool(t)
		if err != nil {
			return nil, err
		}
		preds[i] = p
	}
	if op.Op == OpOr {
		return func(s *world.State, ctx world.Context) bool {
			for _, p := range preds {
				if p(s, ctx) {
					return true
				}
			}
			return false
		}, nil
	}
	return func(s *world.State, ctx world.Context) bool {
		for _, p := range preds {
			if !p(s, ctx) {
				return false
			}
		}
		return true
	}, nil
}

func (c *Compiler) emitCompare(cmp *Compare) (world.Predicate, error) {
	left, err := c.emitValue(cmp.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.emitValue(cmp.Right)
	if err != nil {
		return nil, err
	}
	switch cmp.Op {
	case OpEq:
		return func(s *world.State, ctx world.Context) bool { return ir.Equal(left(s, ctx), right(s, ctx)) }, nil
	case OpNotEq:
		return func(s *world.State, ctx world.Context) bool { return !ir.Equal(left(s, ctx), right(s, ctx)) }, nil
	case OpIn:
		return func(s *world.State, ctx world.Context) bool { return ir.Contains(right(s, ctx), left(s, ctx)) }, nil
	case OpNotIn:
		return func(s *world.State, ctx world.Context) bool { return !ir.Contains(right(s, ctx), left(s, ctx)) }, nil
	}
	op := cmp.Op
	return func(s *world.State, ctx world.Context) bool {
		n, ok := ir.Compare(left(s, ctx), right(s, ctx))
		if !ok {
			return false
		}
		switch op {
		case OpLess:
			return n < 0
		case OpLessEq:
			return n <= 0
		case OpGreater:
			return n > 0
		}
		return n >= 0
	}, nil
}

// emitTimeCheck checks a forced time of day directly; otherwise the bit is
// granted by Sun's Song or by reaching the spot's region at that time.
func (c *Compiler) emitTimeCheck(tc *TimeCheck) world.Predicate {
	w := c.world
	bit := tc.Bit
	suns := tc.SunsSong
	return func(s *world.State, ctx world.Context) bool {
		if ctx.TOD != world.TODNone {
			return ctx.TOD&bit != 0
		}
		if suns && s.HasAllOf(sunsSongItems) {
			return true
		}
		return s.CanReach(w.SpotRegion(ctx.Spot), ctx.Age, bit)
	}
}

var sunsSongItems = []string{"Ocarina", "Suns Song"}

func (c *Compiler) emitValue(n Node) (valueFn, error) {
	switch v := n.(type) {
	case *Str:
		val := ir.String(v.Value)
		return constant(val), nil
	case *Num:
		return constant(ir.Int(v.Value)), nil
	case *Bool:
		return constant(ir.Bool(v.Value)), nil
	case *Float:
		return nil, newError(ErrCodeSyntax, "fractional number %v outside a query argument", v.Value)
	case *List:
		elems := make([]valueFn, len(v.Elems))
		for i, e := range v.Elems {
			fn, err := c.emitValue(e)
			if err != nil {
				return nil, err
			}
			elems[i] = fn
		}
		return func(s *world.State, ctx world.Context) ir.Value {
			out := make(ir.List, len(elems))
			for i, fn := range elems {
				out[i] = fn(s, ctx)
			}
			return out
		}, nil
	case *FieldRef:
		name := v.Name
		return func(s *world.State, _ world.Context) ir.Value { return s.Field(name) }, nil
	case *SettingRef:
		name := v.Name
		return func(s *world.State, _ world.Context) ir.Value { return s.Setting(name) }, nil
	case *IndexRef:
		obj, key, setting := v.Obj, ir.String(v.Key), v.Setting
		return func(s *world.State, _ world.Context) ir.Value {
			if setting {
				return ir.Index(s.Setting(obj), key)
			}
			return ir.Index(s.Field(obj), key)
		}, nil
	case *CtxRef:
		return c.emitCtx(v.Name), nil
	case *Query:
		if b := builtins[v.Name]; b.value != nil {
			return b.value(c, v.Args)
		}
	}
	p, err := c.emitBool(n)
	if err != nil {
		return nil, err
	}
	return func(s *world.State, ctx world.Context) ir.Value { return ir.Bool(p(s, ctx)) }, nil
}

func (c *Compiler) emitCtx(name string) valueFn {
	w := c.world
	switch name {
	case "age":
		return func(_ *world.State, ctx world.Context) ir.Value { return ir.String(ctx.Age.String()) }
	case "tod":
		return func(_ *world.State, ctx world.Context) ir.Value { return ir.Int(ctx.TOD) }
	}
	return func(_ *world.State, ctx world.Context) ir.Value { return ir.String(w.SpotName(ctx.Spot)) }
}

func constant(v ir.Value) valueFn {
	return func(*world.State, world.Context) ir.Value { return v }
}
