package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReach_RegionNeedsItem(t *testing.T) {
	out, err := execute(t, "--format", "json", "reach", miniWorld, "--region", "Goal")
	require.NoError(t, err)

	var result ReachResult
	decodeData(t, out, &result)
	assert.Equal(t, "Goal", result.Region)
	assert.Equal(t, "either", result.Age)
	assert.Equal(t, "NONE", result.TOD)
	assert.False(t, result.Reachable, "reach does not collect the sword")
	assert.Contains(t, result.Regions, "Root")
	assert.Contains(t, result.Regions, "Cellar")
	assert.NotContains(t, result.Regions, "Goal")
}

func TestReach_WithState(t *testing.T) {
	state := writeFile(t, t.TempDir(), "tracker.yaml", "collected:\n  - item: Sword\n")

	out, err := execute(t, "--format", "json", "reach", miniWorld, "--region", "Goal", "--age", "both", "--state", state)
	require.NoError(t, err)

	var result ReachResult
	decodeData(t, out, &result)
	assert.Equal(t, "both", result.Age)
	assert.True(t, result.Reachable)
	assert.Contains(t, result.Regions, "Goal")
}

func TestReach_RewiredEntrance(t *testing.T) {
	state := writeFile(t, t.TempDir(), "tracker.yaml", `disconnected:
  - name: "Root -> Goal"
connections:
  - entrance: "Root -> Cellar"
    region: Goal
`)

	out, err := execute(t, "--format", "json", "reach", miniWorld, "--region", "Goal", "--state", state)
	require.NoError(t, err)

	var result ReachResult
	decodeData(t, out, &result)
	assert.True(t, result.Reachable)
	assert.NotContains(t, result.Regions, "Cellar")
}

func TestReach_Text(t *testing.T) {
	out, err := execute(t, "reach", miniWorld, "--region", "Root", "--age", "child")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Root (child, NONE)")

	out, err = execute(t, "reach", miniWorld, "--region", "Goal")
	require.NoError(t, err)
	assert.Contains(t, out, "✗ Goal")
}

func TestReach_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown region", []string{"reach", miniWorld, "--region", "Nowhere"}},
		{"bad age", []string{"reach", miniWorld, "--region", "Root", "--age", "elder"}},
		{"bad tod", []string{"reach", miniWorld, "--region", "Root", "--tod", "dusk"}},
		{"missing dir", []string{"reach", "/nonexistent/world", "--region", "Root"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}
