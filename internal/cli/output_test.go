package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))

	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitFailure, "submit", errors.New("disk full")))
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
}

func TestExitErrorMessage(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapExitError(ExitFailure, "submit", cause)
	assert.Equal(t, "submit: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "", NewExitError(ExitFailure, "").Error())
}

func TestOutputFormatterJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Success(map[string]string{"id": "r-1"}, "ignored"))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]any{"id": "r-1"}, resp.Data)

	buf.Reset()
	require.NoError(t, f.Failure("submission rejected", []string{"a"}, []string{"a"}))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "submission rejected", resp.Error)
}

func TestOutputFormatterText(t *testing.T) {
	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf, ErrWriter: errBuf}

	require.NoError(t, f.Success(nil, "deleted r-1"))
	require.NoError(t, f.Failure("submission rejected", []string{"Name must not be empty"}, nil))
	assert.Equal(t, "deleted r-1\nError: submission rejected\n  - Name must not be empty\n", buf.String())

	f.VerboseLog("quiet %d", 1)
	assert.Empty(t, errBuf.String())
	f.Verbose = true
	f.VerboseLog("loud %d", 2)
	assert.Equal(t, "loud 2\n", errBuf.String())
}
