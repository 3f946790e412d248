package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var modelDir = filepath.Join("..", "schema", "testdata", "model")

// execute runs the root command with args and returns stdout, stderr and
// the command error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "sqlcore", cmd.Use)
	assert.Contains(t, cmd.Long, "dialects")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"dialects", "check", "persist"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
}

func TestPersistCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	persist, _, err := cmd.Find([]string{"persist"})
	require.NoError(t, err)

	for flag, def := range map[string]string{
		"type":      "",
		"op":        "insert",
		"changed":   "",
		"available": "all",
		"validate":  "false",
		"dialect":   "postgres",
		"deferred":  "false",
	} {
		f := persist.Flags().Lookup(flag)
		require.NotNil(t, f, flag)
		assert.Equal(t, def, f.DefValue, flag)
	}
	assert.Equal(t, "d", persist.Flags().Lookup("dialect").Shorthand)
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := execute(t, "--format", "xml", "dialects")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestVerboseLogsToStderr(t *testing.T) {
	stdout, stderr, err := execute(t, "--verbose", "persist", modelDir, "--type", "Document")
	require.NoError(t, err)
	assert.Contains(t, stdout, `INSERT INTO "documents"`)
	assert.Contains(t, stderr, "requests built")
	assert.NotContains(t, stdout, "requests built")

	_, stderr, err = execute(t, "persist", modelDir, "--type", "Document")
	require.NoError(t, err)
	assert.Empty(t, stderr)
}
