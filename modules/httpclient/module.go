// Package httpclient provides a node that sends its data to an HTTP
// endpoint and stores the response.
package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/ctxlog"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/node"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/registry"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
)

// Scope is the registry scope of the http_request action.
const Scope = "http"

// StoreName is the store a shared *http.Client may be connected under.
const StoreName = "http_client"

// Module implements the registry.Module interface for this package.
type Module struct{}

// NewClient returns a client with pooled connections.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// Request sends the merged data as a JSON body (for methods that carry one)
// and stores {status_code, body} under its reply key. JSON responses are
// decoded, anything else is kept as a string. Statuses of 400 and above are
// errors.
type Request struct {
	url      string
	method   string
	replyKey string
	timeout  time.Duration

	mu     sync.Mutex
	client *http.Client
}

// WarmUp builds the node's own client the first time it is needed.
func (r *Request) WarmUp(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		r.client = NewClient(r.timeout)
		ctxlog.FromContext(ctx).Debug("HTTP: Client created.", "timeout", r.timeout)
	}
	return nil
}

func (r *Request) clientFor(ctx context.Context, stores node.Stores) (*http.Client, error) {
	if store, err := stores.Get(StoreName); err == nil {
		client, ok := store.(*http.Client)
		if !ok {
			return nil, fmt.Errorf("store '%s' holds %T, not *http.Client", StoreName, store)
		}
		return client, nil
	}
	if err := r.WarmUp(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.client, nil
}

func hasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

func (r *Request) Run(ctx context.Context, call *node.Call) (node.Output, error) {
	logger := ctxlog.FromContext(ctx).With("method", r.method, "url", r.url)

	client, err := r.clientFor(ctx, call.Stores)
	if err != nil {
		return node.Output{}, err
	}

	var body io.Reader
	if hasBody(r.method) {
		encoded, err := value.EncodeJSON(call.Data)
		if err != nil {
			return node.Output{}, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return node.Output{}, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger.Info("HTTP: Making request.")
	resp, err := client.Do(req)
	if err != nil {
		return node.Output{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return node.Output{}, fmt.Errorf("failed to read response body: %w", err)
	}
	logger.Info("HTTP: Received response.", "status", resp.Status, "bytes", len(raw))

	if resp.StatusCode >= 400 {
		return node.Output{}, fmt.Errorf("unexpected status %s from %s %s", resp.Status, r.method, r.url)
	}

	var payload value.Value = value.String(string(raw))
	if mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mediaType == "application/json" && len(raw) > 0 {
		if payload, err = value.DecodeJSON(raw); err != nil {
			return node.Output{}, fmt.Errorf("failed to decode response body: %w", err)
		}
	}

	reply := value.Map{
		"status_code": value.Int(resp.StatusCode),
		"body":        payload,
	}
	return node.Emit(call.Data.With(r.replyKey, reply), call.Parameters), nil
}

func (r *Request) Action() string { return "http_request" }

func (r *Request) Init() value.Map {
	return value.Map{
		"url":       value.String(r.url),
		"method":    value.String(r.method),
		"reply_key": value.String(r.replyKey),
		"timeout":   value.String(r.timeout.String()),
	}
}

var stringKind = []value.Kind{value.KindString}

// Register registers the http_request action.
func (m *Module) Register(r *registry.Registry) {
	r.Register(Scope, registry.Entry{
		Name:        "http_request",
		Description: "Sends the data to an HTTP endpoint and stores the response.",
		Schema: []registry.Param{
			{Name: "url", Kinds: stringKind, Required: true},
			{Name: "method", Kinds: stringKind, Default: value.String(http.MethodGet)},
			{Name: "reply_key", Kinds: stringKind, Default: value.String("response")},
			{Name: "timeout", Kinds: stringKind, Default: value.String("30s")},
		},
		Validate: func(init value.Map) error {
			raw, _ := init.Str("url")
			u, err := url.Parse(raw)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("url '%s' must be absolute", raw)
			}
			timeout, _ := init.Str("timeout")
			if d, err := time.ParseDuration(timeout); err != nil || d <= 0 {
				return fmt.Errorf("invalid timeout '%s'", timeout)
			}
			return nil
		},
		Factory: func(init value.Map) (node.Node, error) {
			req := &Request{}
			req.url, _ = init.Str("url")
			method, _ := init.Str("method")
			req.method = strings.ToUpper(method)
			req.replyKey, _ = init.Str("reply_key")
			timeout, _ := init.Str("timeout")
			req.timeout, _ = time.ParseDuration(timeout)
			return req, nil
		},
	})
}
