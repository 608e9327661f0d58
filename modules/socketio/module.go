// Package socketio provides a node that sends its data to a socket.io server
// and waits for the reply.
package socketio

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/ctxlog"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/node"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/registry"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Scope is the registry scope of the socketio action.
const Scope = "socketio"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Config holds the connection settings of a Request node.
type Config struct {
	URL                string
	Namespace          string
	EmitEvent          string
	OnEvent            string
	ReplyKey           string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// Request connects on every run, emits the merged data on EmitEvent and
// stores the first payload received on OnEvent under ReplyKey.
type Request struct {
	cfg Config
}

// NewRequest checks cfg and returns a node for it.
func NewRequest(cfg Config) (*Request, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("url '%s' must be absolute", cfg.URL)
	}
	if cfg.EmitEvent == "" || cfg.OnEvent == "" {
		return nil, errors.New("both emit_event and on_event are required")
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}
	return &Request{cfg: cfg}, nil
}

type opResult struct {
	reply any
	err   error
}

func (r *Request) Run(ctx context.Context, call *node.Call) (node.Output, error) {
	cfg := r.cfg
	logger := ctxlog.FromContext(ctx).With("url", cfg.URL, "emitEvent", cfg.EmitEvent, "onEvent", cfg.OnEvent)
	logger.Debug("SocketIO: Request started.")
	defer logger.Debug("SocketIO: Request finished.")

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return node.Output{}, fmt.Errorf("failed to parse URL: %w", err)
	}
	payload := value.ToGo(call.Data)

	var isConnected atomic.Bool
	done := make(chan opResult, 1)
	send := func(res opResult) {
		select {
		case done <- res:
		default:
		}
	}

	opCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if cfg.InsecureSkipVerify {
		logger.Warn("SocketIO: Skipping TLS certificate verification.")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)
	defer func() {
		logger.Debug("SocketIO: Disconnecting.")
		io.Disconnect()
	}()

	io.Once(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		if logger.Enabled(ctx, slog.LevelDebug) {
			encoded, _ := json.Marshal(payload)
			logger.Debug("SocketIO: Connected, emitting.", "sid", io.Id(), "data", string(encoded))
		}
		io.Emit(cfg.EmitEvent, payload)
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connection failed")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = fmt.Errorf("connection failed: %w", e)
			}
		}
		send(opResult{err: err})
	})
	io.Once(types.EventName(cfg.OnEvent), func(data ...any) {
		var reply any
		if len(data) > 0 {
			reply = data[0]
		}
		send(opResult{reply: reply})
	})

	io.Connect()

	select {
	case <-opCtx.Done():
		if isConnected.Load() {
			return node.Output{}, fmt.Errorf("timed out after %s waiting for event '%s'", cfg.Timeout, cfg.OnEvent)
		}
		return node.Output{}, fmt.Errorf("timed out after %s waiting for the connection", cfg.Timeout)
	case res := <-done:
		if res.err != nil {
			return node.Output{}, res.err
		}
		reply, err := value.FromGo(res.reply)
		if err != nil {
			return node.Output{}, fmt.Errorf("failed to convert reply of event '%s': %w", cfg.OnEvent, err)
		}
		logger.Info("SocketIO: Reply received.")
		return node.Emit(call.Data.With(cfg.ReplyKey, reply), call.Parameters), nil
	}
}

func (r *Request) Action() string { return "socketio_request" }

func (r *Request) Init() value.Map {
	return value.Map{
		"url":                  value.String(r.cfg.URL),
		"namespace":            value.String(r.cfg.Namespace),
		"emit_event":           value.String(r.cfg.EmitEvent),
		"on_event":             value.String(r.cfg.OnEvent),
		"reply_key":            value.String(r.cfg.ReplyKey),
		"timeout":              value.String(r.cfg.Timeout.String()),
		"insecure_skip_verify": value.Bool(r.cfg.InsecureSkipVerify),
	}
}

var stringKind = []value.Kind{value.KindString}

// Register registers the socketio_request action.
func (m *Module) Register(r *registry.Registry) {
	r.Register(Scope, registry.Entry{
		Name:        "socketio_request",
		Description: "Emits the data to a socket.io server and stores the reply.",
		Schema: []registry.Param{
			{Name: "url", Kinds: stringKind, Required: true},
			{Name: "namespace", Kinds: stringKind, Default: value.String("/")},
			{Name: "emit_event", Kinds: stringKind, Required: true},
			{Name: "on_event", Kinds: stringKind, Required: true},
			{Name: "reply_key", Kinds: stringKind, Default: value.String("response")},
			{Name: "timeout", Kinds: stringKind, Default: value.String("10s")},
			{Name: "insecure_skip_verify", Kinds: []value.Kind{value.KindBool}, Default: value.Bool(false)},
		},
		Validate: func(init value.Map) error {
			raw, _ := init.Str("timeout")
			if _, err := time.ParseDuration(raw); err != nil {
				return fmt.Errorf("invalid timeout: %w", err)
			}
			return nil
		},
		Factory: func(init value.Map) (node.Node, error) {
			timeout, _ := init.Str("timeout")
			d, _ := time.ParseDuration(timeout)
			insecure, _ := init["insecure_skip_verify"].(value.Bool)
			cfg := Config{Timeout: d, InsecureSkipVerify: bool(insecure)}
			cfg.URL, _ = init.Str("url")
			cfg.Namespace, _ = init.Str("namespace")
			cfg.EmitEvent, _ = init.Str("emit_event")
			cfg.OnEvent, _ = init.Str("on_event")
			cfg.ReplyKey, _ = init.Str("reply_key")
			req, err := NewRequest(cfg)
			if err != nil {
				return nil, err
			}
			return req, nil
		},
	})
}
