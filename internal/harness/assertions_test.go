package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{
		Type:     AssertCanReach,
		Expected: "Goal reachable",
		Actual:   "unreachable",
		Trace: []TraceEvent{
			{Step: 0, Op: OpCollect, Args: []string{"Sword", "Bow"}},
			{Step: 1, Op: OpSpheres, World: 1},
		},
	}

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: can_reach")
	assert.Contains(t, msg, "Expected: Goal reachable")
	assert.Contains(t, msg, "Actual: unreachable")
	assert.Contains(t, msg, "[0] collect w0 Sword, Bow")
	assert.Contains(t, msg, "[1] spheres w1")
}

func TestEvaluateAssertions_UnknownType(t *testing.T) {
	errs := EvaluateAssertions(NewResult(), []Assertion{{Type: "final_state"}})
	assert.Len(t, errs, 1)
	assert.Contains(t, errs[0], `unknown assertion type "final_state"`)
}

func TestEvaluateAssertions_WorldOutOfRange(t *testing.T) {
	errs := EvaluateAssertions(NewResult(), []Assertion{
		{Type: AssertVisited, World: 2, Location: "Prize"},
		{Type: AssertCanReach, World: 2, Region: "Goal"},
	})
	assert.Len(t, errs, 2)
	for _, e := range errs {
		assert.Contains(t, e, "world 2 does not exist")
	}
}
