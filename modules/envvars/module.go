// Package envvars provides a node that adds the process environment to the
// data flowing through it.
package envvars

import (
	"context"
	"os"
	"strings"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/ctxlog"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/node"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/registry"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
)

// Scope is the registry scope of the env_vars action.
const Scope = "envvars"

// Module implements the registry.Module interface for this package.
type Module struct{}

// EnvVars overlays environment variables onto its data. With a key the
// variables are nested under it, otherwise each becomes a top-level key.
type EnvVars struct {
	prefix      string
	key         string
	stripPrefix bool
}

// Environ returns the variables whose name starts with prefix.
func (e *EnvVars) Environ() value.Map {
	out := value.Map{}
	for _, kv := range os.Environ() {
		name, val, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, e.prefix) {
			continue
		}
		if e.stripPrefix {
			name = strings.TrimPrefix(name, e.prefix)
			if name == "" {
				continue
			}
		}
		out[name] = value.String(val)
	}
	return out
}

func (e *EnvVars) Run(ctx context.Context, call *node.Call) (node.Output, error) {
	env := e.Environ()
	ctxlog.FromContext(ctx).Debug("EnvVars: Collected variables.", "count", len(env), "prefix", e.prefix)

	data := call.Data.Clone()
	if data == nil {
		data = value.Map{}
	}
	if e.key != "" {
		data[e.key] = env
	} else {
		for k, v := range env {
			data[k] = v
		}
	}
	return node.Emit(data, call.Parameters), nil
}

func (e *EnvVars) Action() string { return "env_vars" }

func (e *EnvVars) Init() value.Map {
	return value.Map{
		"prefix":       value.String(e.prefix),
		"key":          value.String(e.key),
		"strip_prefix": value.Bool(e.stripPrefix),
	}
}

// Register registers the env_vars action.
func (m *Module) Register(r *registry.Registry) {
	r.Register(Scope, registry.Entry{
		Name:        "env_vars",
		Description: "Adds environment variables, optionally filtered by prefix, to the data.",
		Schema: []registry.Param{
			{Name: "prefix", Kinds: []value.Kind{value.KindString}, Default: value.String("")},
			{Name: "key", Kinds: []value.Kind{value.KindString}, Default: value.String("env")},
			{Name: "strip_prefix", Kinds: []value.Kind{value.KindBool}, Default: value.Bool(false)},
		},
		Factory: func(init value.Map) (node.Node, error) {
			prefix, _ := init.Str("prefix")
			key, _ := init.Str("key")
			strip, _ := init["strip_prefix"].(value.Bool)
			return &EnvVars{prefix: prefix, key: key, stripPrefix: bool(strip)}, nil
		},
	})
}
