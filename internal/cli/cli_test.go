package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePipeline(t *testing.T) string {
	t.Helper()
	dir := testutil.WriteFiles(t, map[string]string{"linear.hcl": `
		node "add2" {
		  action = "increment"
		  init   = { by = 2 }
		}

		node "double" {
		  action = "multiply"
		}

		node "add1" {
		  action = "increment"
		}

		connect {
		  path = ["add2", "double", "add1"]
		}
	`})
	return filepath.Join(dir, "linear.hcl")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	err := Execute(context.Background(), args, &out, &logs)
	if err != nil {
		t.Logf("logs:\n%s", logs.String())
	}
	return out.String(), err
}

func requireExitCode(t *testing.T, err error, code int) *ExitError {
	t.Helper()
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "expected an ExitError, got %v", err)
	assert.Equal(t, code, exitErr.Code)
	return exitErr
}

func TestRun(t *testing.T) {
	path := writePipeline(t)

	t.Run("yaml output", func(t *testing.T) {
		out, err := execute(t, "run", path, "--input", `{"value": 1}`)
		require.NoError(t, err)
		assert.Equal(t, "value: 7\n", out)
	})

	t.Run("parameters", func(t *testing.T) {
		out, err := execute(t, "run", path, "-i", "value: 1", "-p", "add2: {by: 10}")
		require.NoError(t, err)
		assert.Equal(t, "value: 23\n", out)
	})

	t.Run("table output", func(t *testing.T) {
		out, err := execute(t, "run", path, "-i", `{"value": 1}`, "--table")
		require.NoError(t, err)
		assert.Contains(t, out, `{"value":7}`)
		assert.Contains(t, out, "completed")
	})

	t.Run("batch", func(t *testing.T) {
		out, err := execute(t, "run", path, "--batch", `[{"data": {"value": 1}}, {"data": {"value": 2}}]`, "-w", "2")
		require.NoError(t, err)
		assert.Equal(t, "# run 0\nvalue: 7\n# run 1\nvalue: 9\n", out)
	})

	t.Run("max loops override reaches the run", func(t *testing.T) {
		_, err := execute(t, "--log-level", "debug", "run", path, "-i", `{"value": 1}`, "--max-loops", "1")
		require.NoError(t, err)
	})

	t.Run("runtime failure is not a usage error", func(t *testing.T) {
		_, err := execute(t, "run", path, "-i", `{"other": 1}`)
		require.Error(t, err)
		var exitErr *ExitError
		assert.False(t, errors.As(err, &exitErr))
		assert.ErrorContains(t, err, "node 'add2' failed")
	})
}

func TestUsageErrors(t *testing.T) {
	path := writePipeline(t)

	testCases := []struct {
		name    string
		args    []string
		errText string
	}{
		{name: "unknown flag", args: []string{"run", path, "--bogus"}, errText: "unknown flag: --bogus"},
		{name: "missing argument", args: []string{"run"}, errText: "run expects 1 argument(s): <pipeline>, got 0"},
		{name: "bad input", args: []string{"run", path, "-i", "[1"}, errText: "invalid --input"},
		{name: "bad log level", args: []string{"--log-level", "loud", "validate", path}, errText: "unknown log level 'loud'"},
		{name: "negative workers", args: []string{"run", path, "-w", "-1"}, errText: "workers must be at least 1"},
		{name: "unknown command", args: []string{"launch"}, errText: "unknown command \"launch\""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := execute(t, tc.args...)
			exitErr := requireExitCode(t, err, 2)
			assert.Contains(t, exitErr.Message, tc.errText)
		})
	}
}

func TestValidate(t *testing.T) {
	path := writePipeline(t)
	out, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Equal(t, "Pipeline '"+path+"' is valid.\n", out)

	_, err = execute(t, "validate", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to load pipeline")
}

func TestConvert(t *testing.T) {
	path := writePipeline(t)
	target := filepath.Join(t.TempDir(), "linear.yaml")

	out, err := execute(t, "convert", path, target)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved '")

	out, err = execute(t, "run", target, "-i", `{"value": 1}`)
	require.NoError(t, err)
	assert.Equal(t, "value: 7\n", out)
}

func TestInspectAndActions(t *testing.T) {
	out, err := execute(t, "inspect", writePipeline(t), "--max-loops", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "multiply")
	assert.Contains(t, out, "max loops: 5\n")

	out, err = execute(t, "actions")
	require.NoError(t, err)
	assert.Contains(t, out, "merge_last")
	assert.Contains(t, out, "socketio_request")
}

func TestHelp(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "inspect")
}
