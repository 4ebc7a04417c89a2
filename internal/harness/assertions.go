package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/ootlogic/internal/search"
	"github.com/roach88/ootlogic/internal/world"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s w%d %s\n", event.Step, event.Op, event.World, strings.Join(event.Args, ", "))
	}

	return buf.String()
}

func (r *Result) locationRef(worldID int, name string) (world.LocationRef, error) {
	if worldID < 0 || worldID >= len(r.Worlds) {
		return world.LocationRef{}, fmt.Errorf("world %d does not exist", worldID)
	}
	l, err := r.Worlds[worldID].Location(name)
	if err != nil {
		return world.LocationRef{}, err
	}
	return world.LocationRef{World: worldID, ID: l.ID}, nil
}

// assertVisited checks whether a location's item was obtained.
func assertVisited(r *Result, a Assertion, want bool) error {
	ref, err := r.locationRef(a.World, a.Location)
	if err != nil {
		return err
	}
	if got := r.Search.Visited(ref); got != want {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s (world %d) visited=%t", a.Location, a.World, want),
			Actual:   fmt.Sprintf("visited=%t", got),
			Trace:    r.Trace,
		}
	}
	return nil
}

// assertSphere checks a sphere log entry. Names missing from the log are
// in sphere -1.
func assertSphere(r *Result, a Assertion, kind search.EntryKind, name string) error {
	if r.Spheres == nil {
		return fmt.Errorf("%s: no spheres step ran", a.Type)
	}
	got, ok := r.Spheres.Lookup(kind, a.World, name)
	if !ok {
		got = -1
	}
	if got != *a.Sphere {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s %q (world %d) in sphere %d", kind, name, a.World, *a.Sphere),
			Actual:   fmt.Sprintf("sphere %d", got),
			Trace:    r.Trace,
		}
	}
	return nil
}

// assertReach checks region reachability for an age and time of day.
func assertReach(r *Result, a Assertion, want bool) error {
	if a.World < 0 || a.World >= len(r.Worlds) {
		return fmt.Errorf("world %d does not exist", a.World)
	}
	region, err := r.Worlds[a.World].Region(a.Region)
	if err != nil {
		return err
	}
	age, err := world.ParseAge(a.Age)
	if err != nil {
		return err
	}
	tod, err := world.ParseTimeOfDay(a.TOD)
	if err != nil {
		return err
	}

	r.Search.Expand()
	got := r.Search.CanReach(world.RegionRef{World: a.World, ID: region.ID}, age, tod)
	if got != want {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s (world %d) reachable=%t as %s at %s", a.Region, a.World, want, age, tod),
			Actual:   fmt.Sprintf("reachable=%t", got),
			Trace:    r.Trace,
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertVisited:
			err = assertVisited(result, assertion, true)
		case AssertNotVisited:
			err = assertVisited(result, assertion, false)
		case AssertSphere:
			err = assertSphere(result, assertion, search.KindLocation, assertion.Location)
		case AssertEntranceSphere:
			err = assertSphere(result, assertion, search.KindEntrance, assertion.Entrance)
		case AssertCanReach:
			err = assertReach(result, assertion, true)
		case AssertCannotReach:
			err = assertReach(result, assertion, false)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
