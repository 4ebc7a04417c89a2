package rules

import (
	"strconv"
	"strings"

	"github.com/roach88/ootlogic/internal/ir"
	"github.com/roach88/ootlogic/internal/world"
)

// Node is a rule expression. The parser produces Ident, Str, Num, Float, Bool,
// Not, BoolOp, Compare, Call, Tuple, List, Subscript and Attr nodes; the
// rewriter replaces names with Query, FieldRef, SettingRef, IndexRef, CtxRef
// and TimeCheck nodes. Nodes are never mutated once built.
type Node interface {
	node()
}

type (
	// Ident is a bare name.
	Ident struct{ Name string }

	// Str is a quoted string.
	Str struct{ Value string }

	// Num is an integer literal.
	Num struct{ Value int64 }

	// Float is a fractional literal, only accepted as a query argument.
	Float struct{ Value float64 }

	// Bool is a boolean literal.
	Bool struct{ Value bool }

	// Not negates its operand.
	Not struct{ X Node }

	// BoolOp joins two or more terms with one operator.
	BoolOp struct {
		Op    BoolOperator
		Terms []Node
	}

	// Compare is a binary comparison or membership test.
	Compare struct {
		Op          CompareOperator
		Left, Right Node
	}

	// Call is a call of a macro, a state query or an intrinsic.
	Call struct {
		Name   string
		Args   []Node
		Kwargs []Kwarg
	}

	// Kwarg is a name=value call argument. Keyword arguments are parsed and
	// ignored.
	Kwarg struct {
		Name  string
		Value Node
	}

	// Tuple is a parenthesized, comma-separated list.
	Tuple struct{ Elems []Node }

	// List is a bracketed list literal.
	List struct{ Elems []Node }

	// Subscript is obj[key].
	Subscript struct{ Obj, Key Node }

	// Attr is obj.name.
	Attr struct {
		Obj  Node
		Name string
	}

	// Query calls a state query.
	Query struct {
		Name string
		Args []Node
	}

	// FieldRef reads a derived world field when evaluated.
	FieldRef struct{ Name string }

	// SettingRef reads a setting when evaluated.
	SettingRef struct{ Name string }

	// IndexRef reads one key of a field or setting object.
	IndexRef struct {
		Obj, Key string
		Setting  bool
	}

	// CtxRef reads age, spot or tod from the evaluation context.
	CtxRef struct{ Name string }

	// TimeCheck passes when the given time of day holds: the context time
	// if one is set, otherwise Sun's Song (when allowed) or reachability of
	// the spot's region at that time.
	TimeCheck struct {
		Bit      world.TimeOfDay
		SunsSong bool
	}
)

func (*Ident) node()      {}
func (*Str) node()        {}
func (*Num) node()        {}
func (*Float) node()      {}
func (*Bool) node()       {}
func (*Not) node()        {}
func (*BoolOp) node()     {}
func (*Compare) node()    {}
func (*Call) node()       {}
func (*Tuple) node()      {}
func (*List) node()       {}
func (*Subscript) node()  {}
func (*Attr) node()       {}
func (*Query) node()      {}
func (*FieldRef) node()   {}
func (*SettingRef) node() {}
func (*IndexRef) node()   {}
func (*CtxRef) node()     {}
func (*TimeCheck) node()  {}

// BoolOperator is "and" or "or".
type BoolOperator uint8

const (
	OpAnd BoolOperator = iota
	OpOr
)

func (op BoolOperator) String() string {
	if op == OpOr {
		return "or"
	}
	return "and"
}

// CompareOperator is a comparison or membership operator.
type CompareOperator uint8

const (
	OpEq CompareOperator = iota
	OpNotEq
	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq
	OpIn
	OpNotIn
)

var compareOperatorNames = [...]string{
	OpEq:        "==",
	OpNotEq:     "!=",
	OpLess:      "<",
	OpLessEq:    "<=",
	OpGreater:   ">",
	OpGreaterEq: ">=",
	OpIn:        "in",
	OpNotIn:     "not in",
}

func (op CompareOperator) String() string { return compareOperatorNames[op] }

func hasQuery(name string) *Query {
	return &Query{Name: "has", Args: []Node{&Str{Value: name}}}
}

// Print renders a node in rule syntax. The printed form of a parsed tree keys
// the fragment cache and subrule deduplication; the printed form of a
// rewritten tree keys the predicate cache.
func Print(n Node) string {
	var b strings.Builder
	printNode(&b, n, precLowest)
	return b.String()
}

const (
	precLowest = iota
	precOr
	precAnd
	precNot
	precCompare
	precPostfix
)

func precedence(n Node) int {
	switch v := n.(type) {
	case *BoolOp:
		if v.Op == OpOr {
			return precOr
		}
		return precAnd
	case *Not:
		return precNot
	case *Compare:
		return precCompare
	}
	return precPostfix
}

func printNode(b *strings.Builder, n Node, outer int) {
	if p := precedence(n); p < precPostfix && p <= outer {
		b.WriteByte('(')
		printNode(b, n, precLowest)
		b.WriteByte(')')
		return
	}
	switch v := n.(type) {
	case *Ident:
		b.WriteString(v.Name)
	case *Str:
		b.WriteString(strconv.Quote(v.Value))
	case *Num:
		b.WriteString(strconv.FormatInt(v.Value, 10))
	case *Float:
		b.WriteString(strconv.FormatFloat(v.Value, 'g', -1, 64))
	case *Bool:
		b.WriteString(ir.Format(ir.Bool(v.Value)))
	case *Not:
		b.WriteString("not ")
		printNode(b, v.X, precNot)
	case *BoolOp:
		sep := " " + v.Op.String() + " "
		for i, t := range v.Terms {
			if i > 0 {
				b.WriteString(sep)
			}
			printNode(b, t, precedence(v))
		}
	case *Compare:
		printNode(b, v.Left, precCompare)
		b.WriteString(" " + v.Op.String() + " ")
		printNode(b, v.Right, precCompare)
	case *Call:
		b.WriteString(v.Name)
		b.WriteByte('(')
		printList(b, v.Args)
		for i, kw := range v.Kwargs {
			if i > 0 || len(v.Args) > 0 {
				b.WriteString(", ")
			}
			b.WriteString(kw.Name + "=")
			printNode(b, kw.Value, precLowest)
		}
		b.WriteByte(')')
	case *Tuple:
		b.WriteByte('(')
		printList(b, v.Elems)
		b.WriteByte(')')
	case *List:
		b.WriteByte('[')
		printList(b, v.Elems)
		b.WriteByte(']')
	case *Subscript:
		printNode(b, v.Obj, precPostfix)
		b.WriteByte('[')
		printNode(b, v.Key, precLowest)
		b.WriteByte(']')
	case *Attr:
		printNode(b, v.Obj, precPostfix)
		b.WriteString("." + v.Name)
	case *Query:
		b.WriteString(v.Name)
		b.WriteByte('(')
		printList(b, v.Args)
		b.WriteByte(')')
	case *FieldRef:
		b.WriteString("world." + v.Name)
	case *SettingRef:
		b.WriteString("settings." + v.Name)
	case *IndexRef:
		if v.Setting {
			b.WriteString("settings.")
		} else {
			b.WriteString("world.")
		}
		b.WriteString(v.Obj + "[" + strconv.Quote(v.Key) + "]")
	case *CtxRef:
		b.WriteString(v.Name)
	case *TimeCheck:
		b.WriteString("tod_check(" + v.Bit.String())
		if v.SunsSong {
			b.WriteString(", suns_song")
		}
		b.WriteByte(')')
	}
}

func printList(b *strings.Builder, nodes []Node) {
	for i, n := range nodes {
		if i > 0 {
			b.WriteString(", ")
		}
		printNode(b, n, precLowest)
	}
}

// substitute returns a copy of n with every identifier named in params
// replaced by a copy of its argument.
func substitute(n Node, params map[string]Node) Node {
	switch v := n.(type) {
	case *Ident:
		if arg, ok := params[v.Name]; ok {
			return arg
		}
		return v
	case *Not:
		return &Not{X: substitute(v.X, params)}
	case *BoolOp:
		return &BoolOp{Op: v.Op, Terms: substituteAll(v.Terms, params)}
	case *Compare:
		return &Compare{Op: v.Op, Left: substitute(v.Left, params), Right: substitute(v.Right, params)}
	case *Call:
		out := &Call{Name: v.Name, Args: substituteAll(v.Args, params)}
		for _, kw := range v.Kwargs {
			out.Kwargs = append(out.Kwargs, Kwarg{Name: kw.Name, Value: substitute(kw.Value, params)})
		}
		return out
	case *Tuple:
		return &Tuple{Elems: substituteAll(v.Elems, params)}
	case *List:
		return &List{Elems: substituteAll(v.Elems, params)}
	case *Subscript:
		return &Subscript{Obj: substitute(v.Obj, params), Key: substitute(v.Key, params)}
	case *Attr:
		return &Attr{Obj: substitute(v.Obj, params), Name: v.Name}
	}
	return n
}

func substituteAll(nodes []Node, params map[string]Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = substitute(n, params)
	}
	return out
}

// walkNames calls fn for every identifier and call name in n.
func walkNames(n Node, fn func(string)) {
	switch v := n.(type) {
	case *Ident:
		fn(v.Name)
	case *Not:
		walkNames(v.X, fn)
	case *BoolOp:
		for _, t := range v.Terms {
			walkNames(t, fn)
		}
	case *Compare:
		walkNames(v.Left, fn)
		walkNames(v.Right, fn)
	case *Call:
		fn(v.Name)
		for _, a := range v.Args {
			walkNames(a, fn)
		}
	case *Tuple:
		for _, e := range v.Elems {
			walkNames(e, fn)
		}
	case *List:
		for _, e := range v.Elems {
			walkNames(e, fn)
		}
	case *Subscript:
		walkNames(v.Obj, fn)
		walkNames(v.Key, fn)
	case *Attr:
		walkNames(v.Obj, fn)
	}
}
