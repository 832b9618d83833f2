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

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitFailure, GetExitCode(NewExitError(ExitFailure, "business failure")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad path")))
	assert.Equal(t, ExitCommandError,
		GetExitCode(fmt.Errorf("wrapped: %w", NewExitError(ExitCommandError, "inner"))))
}

func TestExitError_Messages(t *testing.T) {
	plain := NewExitError(ExitFailure, "scenario failed")
	assert.Equal(t, "scenario failed", plain.Error())

	wrapped := WrapExitError(ExitCommandError, "failed to open ledger database", errors.New("no such file"))
	assert.Equal(t, "failed to open ledger database: no such file", wrapped.Error())
	assert.EqualError(t, errors.Unwrap(wrapped), "no such file")
}

func TestOutputFormatter_Text(t *testing.T) {
	var buf bytes.Buffer
	f := NewOutputFormatter("text", &buf)

	err := f.Print(map[string]any{"ignored": true}, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, "human readable")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "human readable\n", buf.String())
}

func TestOutputFormatter_JSON(t *testing.T) {
	var buf bytes.Buffer
	f := NewOutputFormatter("json", &buf)

	err := f.Print(map[string]any{"stock": 200}, func(w io.Writer) error {
		t.Fatal("text renderer must not run in json mode")
		return nil
	})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, float64(200), decoded["stock"])
}
