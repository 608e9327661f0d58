package node

import (
	"context"
	"fmt"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
)

// RunFunc is the signature of a bare function node.
type RunFunc func(ctx context.Context, call *Call) (Output, error)

// Func adapts a RunFunc into a Node.
type Func struct {
	action   string
	contract Contract
	fn       RunFunc
}

// FuncOption configures a Func.
type FuncOption func(*Func)

// WithContract declares the input and output slots of a Func.
func WithContract(inputs, outputs []string) FuncOption {
	return func(f *Func) {
		f.contract = Contract{Inputs: inputs, Outputs: outputs}
	}
}

// NewFunc wraps fn under the given action name.
func NewFunc(action string, fn RunFunc, opts ...FuncOption) *Func {
	f := &Func{action: action, fn: fn}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Func) Run(ctx context.Context, call *Call) (Output, error) {
	return f.fn(ctx, call)
}

func (f *Func) Contract() Contract { return f.contract }
func (f *Func) Action() string     { return f.action }
func (f *Func) Init() value.Map    { return nil }

// SimpleFunc receives the keys a simple node asked for and returns the keys
// it wants to add or overwrite.
type SimpleFunc func(ctx context.Context, args value.Map) (value.Map, error)

// Simple adapts a SimpleFunc into a Node. The arguments are the requested
// keys of the merged data, overlaid with the node's own parameters. The
// returned map is overlaid onto the incoming data and emitted, together with
// the unchanged parameters, on the default edge.
type Simple struct {
	action string
	keys   []string
	fn     SimpleFunc
}

// NewSimple wraps fn. A nil keys slice passes the whole merged data.
func NewSimple(action string, keys []string, fn SimpleFunc) *Simple {
	return &Simple{action: action, keys: keys, fn: fn}
}

func (s *Simple) Run(ctx context.Context, call *Call) (Output, error) {
	labels := make(map[string]struct{}, len(call.OutgoingEdges))
	for _, label := range call.OutgoingEdges {
		labels[label] = struct{}{}
	}
	if len(labels) > 1 {
		return Output{}, fmt.Errorf("simple node '%s' can only output to one edge, got %v", s.action, call.OutgoingEdges)
	}

	args := value.Map{}
	if s.keys == nil {
		for k, v := range call.Data {
			args[k] = v
		}
	} else {
		for _, key := range s.keys {
			if v, ok := call.Data[key]; ok {
				args[key] = v
			}
		}
	}
	for k, v := range call.Params() {
		args[k] = v
	}

	out, err := s.fn(ctx, args)
	if err != nil {
		return Output{}, err
	}

	data := call.Data.Clone()
	if data == nil {
		data = value.Map{}
	}
	for k, v := range out {
		data[k] = v
	}
	return Emit(data, call.Parameters), nil
}

func (s *Simple) Action() string  { return s.action }
func (s *Simple) Init() value.Map { return nil }
