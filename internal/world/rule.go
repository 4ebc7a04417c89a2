package world

// Predicate is a compiled access rule. Predicates are pure functions of the
// state and the context; they never mutate either.
type Predicate func(*State, Context) bool

// Rule is the compiled access rule of a spot.
type Rule struct {
	// Source is the rule text as written.
	Source string
	// Printed is the rewritten form, used as the predicate cache key.
	Printed string
	// Always and Never mark rules that folded to a literal at compile time.
	Always bool
	Never  bool

	preds []Predicate
}

// NewRule wraps a predicate.
func NewRule(source, printed string, p Predicate) Rule {
	return Rule{Source: source, Printed: printed, preds: []Predicate{p}}
}

// AlwaysRule is a rule that folded to true.
func AlwaysRule(source string) Rule {
	return Rule{Source: source, Printed: "True", Always: true}
}

// NeverRule is a rule that folded to false.
func NeverRule(source string) Rule {
	return Rule{Source: source, Printed: "False", Never: true}
}

// Eval runs every predicate of the rule.
func (r *Rule) Eval(s *State, ctx Context) bool {
	if r.Never {
		return false
	}
	if r.Always {
		return true
	}
	for _, p := range r.preds {
		if !p(s, ctx) {
			return false
		}
	}
	return true
}

// AddRule appends another rule that must also pass. On an Always rule the
// added rule replaces it; on a Never rule it is a no-op.
func (r *Rule) AddRule(other Rule) {
	switch {
	case r.Never || other.Always:
		return
	case other.Never:
		src := r.Source
		*r = NeverRule(src)
	case r.Always:
		src := r.Source
		*r = other
		r.preds = append([]Predicate(nil), other.preds...)
		r.Source = src
	default:
		r.preds = append(r.preds, other.preds...)
		r.Printed = "(" + r.Printed + ") and (" + other.Printed + ")"
	}
}

// Len returns the number of predicates the rule runs.
func (r *Rule) Len() int {
	return len(r.preds)
}
