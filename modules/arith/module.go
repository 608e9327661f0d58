// Package arith provides small integer nodes: arithmetic, routing on a
// threshold or on parity, merging and counting. They are enough to build
// linear, branching, merging and looping pipelines.
package arith

import (
	"errors"
	"fmt"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/node"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/registry"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
)

// Scope is the registry scope of every action in this package.
const Scope = "arith"

var (
	intKind    = []value.Kind{value.KindInt}
	stringKind = []value.Kind{value.KindString}
)

// Module implements the registry.Module interface for this package.
type Module struct{}

func str(init value.Map, key string) string {
	s, _ := init.Str(key)
	return s
}

func num(init value.Map, key string) int64 {
	i, _ := init.Int(key)
	return i
}

func positive(key string) func(value.Map) error {
	return func(init value.Map) error {
		if num(init, key) < 1 {
			return fmt.Errorf("'%s' must be at least 1", key)
		}
		return nil
	}
}

// Register registers every arithmetic action.
func (m *Module) Register(r *registry.Registry) {
	r.Register(Scope, registry.Entry{
		Name:        "add_value",
		Description: "Adds a constant to 'value'.",
		Contract:    node.Contract{Inputs: []string{"value"}, Outputs: []string{"value"}},
		Schema: []registry.Param{
			{Name: "add", Kinds: intKind, Default: value.Int(1)},
			{Name: "input", Kinds: stringKind, Default: value.String("value")},
			{Name: "output", Kinds: stringKind, Default: value.String("value")},
		},
		Factory: func(init value.Map) (node.Node, error) {
			return &AddValue{add: num(init, "add"), input: str(init, "input"), output: str(init, "output")}, nil
		},
	})

	r.Register(Scope, registry.Entry{
		Name:        "increment",
		Description: "Adds to 'value'; the 'by' parameter overrides the amount per run.",
		Schema:      []registry.Param{{Name: "by", Kinds: intKind, Default: value.Int(1)}},
		Factory: func(init value.Map) (node.Node, error) {
			return &Increment{by: num(init, "by")}, nil
		},
	})

	r.Register(Scope, registry.Entry{
		Name:        "multiply",
		Description: "Multiplies 'value'.",
		Schema:      []registry.Param{{Name: "by", Kinds: intKind, Default: value.Int(2)}},
		Factory: func(init value.Map) (node.Node, error) {
			return &Multiply{by: num(init, "by")}, nil
		},
	})

	r.Register(Scope, registry.Entry{
		Name:        "sum",
		Description: "Sums 'value' over every input edge.",
		Contract:    node.Contract{Inputs: []string{"value", "value"}, Outputs: []string{"sum"}},
		Schema: []registry.Param{
			{Name: "inputs", Kinds: intKind, Default: value.Int(2)},
			{Name: "label", Kinds: stringKind, Default: value.String("value")},
			{Name: "output", Kinds: stringKind, Default: value.String("sum")},
		},
		Validate: positive("inputs"),
		Factory: func(init value.Map) (node.Node, error) {
			return &Sum{inputs: num(init, "inputs"), label: str(init, "label"), output: str(init, "output")}, nil
		},
	})

	r.Register(Scope, registry.Entry{
		Name:        "below",
		Description: "Routes on 'below' while 'value' is under the threshold, on 'above' otherwise.",
		Contract:    node.Contract{Inputs: []string{"value"}, Outputs: []string{"above", "below"}},
		Schema: []registry.Param{
			{Name: "threshold", Kinds: intKind, Default: value.Int(10)},
			{Name: "input", Kinds: stringKind, Default: value.String("value")},
			{Name: "above", Kinds: stringKind, Default: value.String("above")},
			{Name: "below", Kinds: stringKind, Default: value.String("below")},
		},
		Validate: func(init value.Map) error {
			if str(init, "above") == str(init, "below") {
				return errors.New("'above' and 'below' must be different edges")
			}
			return nil
		},
		Factory: func(init value.Map) (node.Node, error) {
			return &Below{
				threshold: num(init, "threshold"),
				input:     str(init, "input"),
				above:     str(init, "above"),
				below:     str(init, "below"),
			}, nil
		},
	})

	r.Register(Scope, registry.Entry{
		Name:        "merge_last",
		Description: "Forwards the last input that arrived.",
		Contract:    node.Contract{Inputs: []string{"value", "value"}, Outputs: []string{"value"}},
		Schema: []registry.Param{
			{Name: "inputs", Kinds: intKind, Default: value.Int(2)},
			{Name: "label", Kinds: stringKind, Default: value.String("value")},
			{Name: "output", Kinds: stringKind, Default: value.String("value")},
		},
		Validate: positive("inputs"),
		Factory: func(init value.Map) (node.Node, error) {
			return &MergeLast{inputs: num(init, "inputs"), label: str(init, "label"), output: str(init, "output")}, nil
		},
	})

	r.Register(Scope, registry.Entry{
		Name:        "count",
		Description: "Counts its runs and forwards the data.",
		Contract:    node.Contract{Inputs: []string{"value"}, Outputs: []string{"value"}},
		Schema:      []registry.Param{{Name: "edge", Kinds: stringKind, Default: value.String("value")}},
		Factory: func(init value.Map) (node.Node, error) {
			return &Count{edge: str(init, "edge")}, nil
		},
	})

	r.Register(Scope, registry.Entry{
		Name:        "noop",
		Description: "Forwards the data on the given edges.",
		Contract:    node.Contract{Inputs: []string{"value"}, Outputs: []string{"value"}},
		Schema: []registry.Param{
			{Name: "edges", Kinds: []value.Kind{value.KindList, value.KindSet}, Default: value.List{value.String("value")}},
		},
		Factory: func(init value.Map) (node.Node, error) {
			var items []value.Value
			switch edges := init["edges"].(type) {
			case value.List:
				items = edges
			case value.Set:
				items = edges.Items()
			}
			labels := make([]string, 0, len(items))
			for _, item := range items {
				label, ok := item.(value.String)
				if !ok {
					return nil, fmt.Errorf("edge names must be strings, got %s", item.Kind())
				}
				labels = append(labels, string(label))
			}
			return &NoOp{edges: labels}, nil
		},
	})

	r.Register(Scope, registry.Entry{
		Name:        "parity",
		Description: "Routes on 'even' or 'odd' depending on 'value'.",
		Contract:    node.Contract{Outputs: []string{"even", "odd"}},
		Schema: []registry.Param{
			{Name: "even", Kinds: stringKind, Default: value.String("even")},
			{Name: "odd", Kinds: stringKind, Default: value.String("odd")},
		},
		Factory: func(init value.Map) (node.Node, error) {
			return &Parity{even: str(init, "even"), odd: str(init, "odd")}, nil
		},
	})

	r.Register(Scope, registry.Entry{
		Name:        "add_message",
		Description: "Copies its 'message' parameter into the data.",
		Schema:      []registry.Param{},
		Factory: func(init value.Map) (node.Node, error) {
			return NewAddMessage(), nil
		},
	})
}
