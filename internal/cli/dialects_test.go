package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialects_Text(t *testing.T) {
	stdout, _, err := execute(t, "dialects")
	require.NoError(t, err)
	assert.Contains(t, stdout, "DIALECT")
	for _, name := range []string{"mysql", "postgres", "sqlite", "sqlserver"} {
		assert.Contains(t, stdout, name)
	}
}

func TestDialects_JSON(t *testing.T) {
	stdout, _, err := execute(t, "--format", "json", "dialects")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   []DialectInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 4)

	byName := make(map[string]DialectInfo)
	for _, d := range resp.Data {
		byName[d.Name] = d
	}
	assert.Equal(t, "ordinal", byName["postgres"].Parameters)
	assert.Equal(t, "positional", byName["mysql"].Parameters)
	assert.True(t, byName["sqlite"].Batches)
	assert.True(t, byName["sqlite"].BooleanLiterals)
	assert.False(t, byName["mysql"].Intersect)
	assert.False(t, byName["mysql"].Except)
}
