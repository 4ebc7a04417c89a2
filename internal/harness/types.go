package harness

import (
	"github.com/roach88/ootlogic/internal/ir"
	"github.com/roach88/ootlogic/internal/search"
	"github.com/roach88/ootlogic/internal/world"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Step  int      `json:"step"`
	Op    string   `json:"op"`
	World int      `json:"world"`
	Args  []string `json:"args,omitempty"`

	// Error is the error text of a step that was expected to fail.
	Error string `json:"error,omitempty"`

	// Entries is the sphere log length after a spheres step.
	Entries int `json:"entries,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every step behaved as expected and all assertions hold.
	Pass bool `json:"pass"`

	// Trace contains every executed step in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains step and assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Spheres is the log of the last spheres step, or nil if none ran.
	Spheres *search.SphereLog `json:"spheres,omitempty"`

	// Worlds and Search are the final state, for callers that want to
	// inspect more than the assertions do.
	Worlds []*world.World `json:"-"`
	Search *search.Search `json:"-"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step to the trace.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}

// Snapshot returns the trace and sphere log as an ir value for canonical
// serialization.
func (r *Result) Snapshot(name string) ir.Object {
	trace := make(ir.List, len(r.Trace))
	for i, ev := range r.Trace {
		obj := ir.Object{
			"step":  ir.Int(ev.Step),
			"op":    ir.String(ev.Op),
			"world": ir.Int(ev.World),
		}
		if len(ev.Args) > 0 {
			obj["args"] = ir.Strings(ev.Args...)
		}
		if ev.Error != "" {
			obj["error"] = ir.String(ev.Error)
		}
		if ev.Entries > 0 {
			obj["entries"] = ir.Int(ev.Entries)
		}
		trace[i] = obj
	}

	snap := ir.Object{
		"scenario_name": ir.String(name),
		"trace":         trace,
	}
	if r.Spheres != nil {
		snap["spheres"] = r.Spheres.Snapshot()["entries"]
	}
	return snap
}
