package app

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("level filters records", func(t *testing.T) {
		logs := &testutil.SafeBuffer{}
		logger := newLogger(&Config{PipelinePath: "p.hcl", LogLevel: "warn", LogFormat: "text"}, logs)
		logger.Info("Hidden.")
		logger.Warn("Shown.")
		assert.NotContains(t, logs.String(), "Hidden.")
		assert.Contains(t, logs.String(), "msg=Shown. pipeline=p.hcl")
	})

	t.Run("json", func(t *testing.T) {
		logs := &testutil.SafeBuffer{}
		logger := newLogger(&Config{PipelinePath: "p.hcl", LogLevel: "debug", LogFormat: "json"}, logs)
		logger.Debug("Load: Done.", "nodes", 3)

		var record map[string]any
		require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(logs.String())), &record))
		assert.Equal(t, "DEBUG", record["level"])
		assert.Equal(t, "Load: Done.", record["msg"])
		assert.Equal(t, "p.hcl", record["pipeline"])
		assert.EqualValues(t, 3, record["nodes"])
	})
}
