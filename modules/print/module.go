// Package print provides a node that writes the data it receives, one key
// per line, and forwards it unchanged.
package print

import (
	"context"
	"fmt"
	"io"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/ctxlog"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/node"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/registry"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
)

// Scope is the registry scope of the print action.
const Scope = "print"

// StoreName is the store the node writes to when it is an io.Writer.
const StoreName = "stdout"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Printer writes its merged data. Without a writer store the lines go to the
// logger instead.
type Printer struct {
	keys []string
}

func (p *Printer) Run(ctx context.Context, call *node.Call) (node.Output, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Print: Printing data.")

	keys := p.keys
	if len(keys) == 0 {
		keys = call.Data.Keys()
	}

	var w io.Writer
	if store, err := call.Stores.Get(StoreName); err == nil {
		w, _ = store.(io.Writer)
	}

	if w != nil {
		if _, err := fmt.Fprintf(w, "[%s]\n", call.Name); err != nil {
			return node.Output{}, fmt.Errorf("failed to write to '%s': %w", StoreName, err)
		}
	}
	if len(call.Data) == 0 && w != nil {
		fmt.Fprintln(w, "      (empty)")
	}
	for _, k := range keys {
		v, ok := call.Data[k]
		if !ok {
			continue
		}
		if w == nil {
			logger.Info("Print: Value.", "key", k, "value", value.Format(v))
			continue
		}
		if _, err := fmt.Fprintf(w, "      %s = %s\n", k, value.Format(v)); err != nil {
			return node.Output{}, fmt.Errorf("failed to write to '%s': %w", StoreName, err)
		}
	}

	return node.Emit(call.Data, call.Parameters), nil
}

func (p *Printer) Action() string { return "print" }

func (p *Printer) Init() value.Map {
	keys := make(value.List, len(p.keys))
	for i, k := range p.keys {
		keys[i] = value.String(k)
	}
	return value.Map{"keys": keys}
}

// Register registers the print action.
func (m *Module) Register(r *registry.Registry) {
	r.Register(Scope, registry.Entry{
		Name:        "print",
		Description: "Writes the data to the 'stdout' store or the log and forwards it.",
		Schema: []registry.Param{
			{Name: "keys", Kinds: []value.Kind{value.KindList}, Default: value.List{}},
		},
		Factory: func(init value.Map) (node.Node, error) {
			list, _ := init["keys"].(value.List)
			keys := make([]string, 0, len(list))
			for _, item := range list {
				s, ok := item.(value.String)
				if !ok {
					return nil, fmt.Errorf("keys must be strings, got %s", item.Kind())
				}
				keys = append(keys, string(s))
			}
			return &Printer{keys: keys}, nil
		},
	})
}
