package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_Valid(t *testing.T) {
	stdout, _, err := execute(t, "check", modelDir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "\u2713 Model valid: 2 type(s)")
	assert.Contains(t, stdout, "Invoice (id 2, 6 fields) -> [documents invoices]")
}

func TestCheck_ValidJSON(t *testing.T) {
	stdout, _, err := execute(t, "--format", "json", "check", modelDir)
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   CheckResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.NotEmpty(t, resp.Data.Hash)
	require.Len(t, resp.Data.Types, 2)
	assert.Equal(t, TypeSummary{Name: "Invoice", Parent: "Document", TypeID: 2, Tables: []string{"documents", "invoices"}, Fields: 6}, resp.Data.Types[1])
}

func TestCheck_Invalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(`types:
  - name: Orphan
    parent: Missing
    table: orphans
    fields:
      - {name: n, type: int64}
  - name: Keyless
    table: keyless
    fields:
      - {name: n, type: int64}
`), 0644))

	stdout, _, err := execute(t, "check", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "\u2717 Validation failed")
	assert.Contains(t, stdout, "E203")
	assert.Contains(t, stdout, "E204")
	assert.Contains(t, stdout, filepath.Join(dir, "bad.yaml")+":2")

	stdout, _, err = execute(t, "--format", "json", "check", dir)
	require.Error(t, err)
	var resp struct {
		Status string      `json:"status"`
		Data   CheckResult `json:"data"`
		Error  *CLIError   `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	assert.Len(t, resp.Data.Errors, 2)
	assert.Equal(t, "E203", resp.Error.Code)
}

func TestCheck_LoadErrors(t *testing.T) {
	stdout, _, err := execute(t, "check", "/nonexistent/model/dir")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E005")
	assert.Contains(t, stdout, "Error [E005]")

	_, _, err = execute(t, "check", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E003")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("types: [\n"), 0644))
	stdout, _, err = execute(t, "check", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "E008")
}
