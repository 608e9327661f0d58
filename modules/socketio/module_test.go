package socketio

import (
	"testing"
	"time"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/node"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/registry"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/testutil"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry() *registry.Registry {
	r := registry.New()
	(&Module{}).Register(r)
	return r
}

func TestRegister(t *testing.T) {
	n, err := newRegistry().New("socketio_request", value.Map{
		"url":        value.String("ws://localhost:3000/socket.io/"),
		"emit_event": value.String("ask"),
		"on_event":   value.String("answer"),
	})
	require.NoError(t, err)

	d, ok := n.(node.Describer)
	require.True(t, ok)
	assert.Equal(t, value.Map{
		"url":                  value.String("ws://localhost:3000/socket.io/"),
		"namespace":            value.String("/"),
		"emit_event":           value.String("ask"),
		"on_event":             value.String("answer"),
		"reply_key":            value.String("response"),
		"timeout":              value.String("10s"),
		"insecure_skip_verify": value.Bool(false),
	}, d.Init())

	testCases := []struct {
		name    string
		init    value.Map
		errText string
	}{
		{
			name:    "missing events",
			init:    value.Map{"url": value.String("ws://localhost:3000")},
			errText: "missing required parameter 'emit_event'",
		},
		{
			name: "bad timeout",
			init: value.Map{
				"url":        value.String("ws://localhost:3000"),
				"emit_event": value.String("ask"),
				"on_event":   value.String("answer"),
				"timeout":    value.String("soon"),
			},
			errText: "invalid timeout",
		},
		{
			name: "relative url",
			init: value.Map{
				"url":        value.String("/socket.io/"),
				"emit_event": value.String("ask"),
				"on_event":   value.String("answer"),
			},
			errText: "must be absolute",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newRegistry().New("socketio_request", tc.init)
			assert.ErrorContains(t, err, tc.errText)
		})
	}
}

func TestNewRequest(t *testing.T) {
	_, err := NewRequest(Config{URL: "ws://localhost:1", EmitEvent: "a", OnEvent: "b"})
	assert.ErrorContains(t, err, "timeout must be positive")

	_, err = NewRequest(Config{URL: "ws://localhost:1", EmitEvent: "a", Timeout: time.Second})
	assert.ErrorContains(t, err, "both emit_event and on_event are required")
}

func TestRequest_Unreachable(t *testing.T) {
	ctx, _ := testutil.NewContext(t)
	req, err := NewRequest(Config{
		URL:       "ws://127.0.0.1:1/socket.io/",
		Namespace: "/",
		EmitEvent: "ask",
		OnEvent:   "answer",
		ReplyKey:  "response",
		Timeout:   500 * time.Millisecond,
	})
	require.NoError(t, err)

	_, err = req.Run(ctx, &node.Call{Name: "remote", Data: value.Map{"value": value.Int(1)}})
	require.Error(t, err)
}
