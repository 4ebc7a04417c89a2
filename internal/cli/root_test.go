package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "ootlogic", cmd.Use)
	assert.Contains(t, cmd.Long, "world directory")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"compile", "validate", "spheres", "reach", "runs", "test", "watch"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		command string
		flag    string
		def     string
	}{
		{"compile", "world", ""},
		{"compile", "spot", ""},
		{"spheres", "state", ""},
		{"spheres", "db", ""},
		{"spheres", "label", ""},
		{"reach", "region", ""},
		{"reach", "age", "either"},
		{"reach", "tod", "NONE"},
		{"runs", "db", ""},
		{"test", "update", "false"},
		{"test", "filter", ""},
		{"watch", "state", ""},
		{"watch", "debounce", "200ms"},
	}

	cmd := NewRootCommand()
	for _, tt := range tests {
		t.Run(tt.command+"/"+tt.flag, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{tt.command})
			require.NoError(t, err)
			f := sub.Flags().Lookup(tt.flag)
			require.NotNil(t, f)
			assert.Equal(t, tt.def, f.DefValue)
		})
	}
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "validate", miniWorld)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRequiredFlags(t *testing.T) {
	_, err := execute(t, "reach", miniWorld)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "region")

	_, err = execute(t, "compile", "True")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "world")
}

func TestVerboseLogger(t *testing.T) {
	opts := &RootOptions{Verbose: true}
	buf := &syncBuffer{}
	opts.Logger(buf).Debug("building world", "id", 0)
	assert.Contains(t, buf.String(), "building world")

	opts.Verbose = false
	buf = &syncBuffer{}
	opts.Logger(buf).Info("dropped")
	assert.Empty(t, buf.String())
}
