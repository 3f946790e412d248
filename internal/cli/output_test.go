package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Success(map[string]string{"result": "success"}, nil))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]any{"result": "success"}, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Error("E005", "model directory not found", map[string]string{"dir": "x"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E005", resp.Error.Code)
	assert.Equal(t, "model directory not found", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_Text(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, f.Success("plain", nil))
	require.NoError(t, f.Success(nil, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, "custom")
		return err
	}))
	assert.Equal(t, "plain\ncustom\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		details bool
	}{
		{"quiet", false, false},
		{"verbose", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			f := &OutputFormatter{Format: "text", Writer: buf, Verbose: tt.verbose}

			require.NoError(t, f.Error("E001", "failed", "extra"))
			assert.Contains(t, buf.String(), "Error [E001]: failed")
			if tt.details {
				assert.Contains(t, buf.String(), "Details: extra")
			} else {
				assert.NotContains(t, buf.String(), "Details:")
			}
		})
	}
}

func TestOutputFormatter_Logger(t *testing.T) {
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: out, ErrWriter: diag}

	f.Logger().Debug("hidden")
	f.Logger().Warn("shown")
	assert.NotContains(t, diag.String(), "hidden")
	assert.Contains(t, diag.String(), "shown")
	assert.Empty(t, out.String())

	f.Verbose = true
	f.Logger().Debug("now visible")
	assert.Contains(t, diag.String(), "now visible")

	noErr := &OutputFormatter{Writer: out}
	assert.Same(t, out, noErr.ErrOutput())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))

	err := fmt.Errorf("outer: %w", WrapExitError(ExitCommandError, "load", errors.New("missing")))
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, "outer: load: missing", err.Error())
	assert.Equal(t, "bad", NewExitError(ExitFailure, "bad").Error())
}
