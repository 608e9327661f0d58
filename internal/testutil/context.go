// Package testutil holds helpers shared by the test suites.
package testutil

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/ctxlog"
)

// LogsEnv is the environment variable that makes tests print their logs.
const LogsEnv = "PIPE_TEST_LOGS"

// NewContext returns a context carrying a debug logger that writes to the
// returned buffer. The logs are printed at the end of the test when it
// failed or when PIPE_TEST_LOGS=true.
func NewContext(t *testing.T) (context.Context, *SafeBuffer) {
	t.Helper()

	logs := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	t.Cleanup(func() {
		if t.Failed() || os.Getenv(LogsEnv) == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})

	return ctxlog.WithLogger(context.Background(), logger), logs
}
