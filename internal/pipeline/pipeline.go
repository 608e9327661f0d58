package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/ctxlog"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/graph"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/inmemorystore"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/inmemorytopology"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/node"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/registry"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/scheduler"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/topologystore"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
)

// DefaultMaxLoops is the visit limit applied when none is configured.
const DefaultMaxLoops = scheduler.DefaultMaxLoops

// Pipeline owns a graph, the registry its nodes come from and the stores
// passed to every node call.
type Pipeline struct {
	graph    graph.Graph
	registry *registry.Registry
	maxLoops int
	logger   *slog.Logger

	skipValidation bool

	mu     sync.RWMutex
	stores node.Stores
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMaxLoops bounds how many times a node may run in one pipeline run.
func WithMaxLoops(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxLoops = n
		}
	}
}

// WithLogger sets the logger used when the context carries none.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithoutValidation makes Load skip Validate.
func WithoutValidation() Option {
	return func(p *Pipeline) {
		p.skipValidation = true
	}
}

// New creates an empty pipeline. A nil registry is replaced by an empty one.
func New(reg *registry.Registry, opts ...Option) *Pipeline {
	if reg == nil {
		reg = registry.New()
	}
	p := &Pipeline{
		graph:    graph.New(inmemorytopology.New(), inmemorystore.New()),
		registry: reg,
		maxLoops: DefaultMaxLoops,
		stores:   node.Stores{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// MaxLoops returns the configured visit limit.
func (p *Pipeline) MaxLoops() int { return p.maxLoops }

// Registry returns the registry used to resolve actions.
func (p *Pipeline) Registry() *registry.Registry { return p.registry }

// withLogger attaches the pipeline logger to ctx unless it already carries
// one.
func (p *Pipeline) withLogger(ctx context.Context) context.Context {
	if p.logger == nil {
		return ctx
	}
	if ctxlog.FromContext(ctx) != slog.Default() {
		return ctx
	}
	return ctxlog.WithLogger(ctx, p.logger)
}

func (p *Pipeline) log() *slog.Logger {
	if p.logger != nil {
		return p.logger
	}
	return slog.Default()
}

type nodeOptions struct {
	parameters value.Map
	input      bool
	output     bool
	err        error
}

// NodeOption configures a node added with AddNode or AddAction.
type NodeOption func(*nodeOptions)

// WithParameters sets the default parameters of the node. They are merged
// below whatever a run passes for the node.
func WithParameters(params value.Map) NodeOption {
	return func(o *nodeOptions) {
		o.parameters = params.Clone()
	}
}

// WithParametersFrom is like WithParameters for plain Go data. Anything but
// a mapping is a construction error.
func WithParametersFrom(params any) NodeOption {
	return func(o *nodeOptions) {
		if params == nil {
			o.parameters = nil
			return
		}
		v, err := value.FromGo(params)
		if err != nil {
			o.err = fmt.Errorf("invalid parameters: %w", err)
			return
		}
		m, ok := v.(value.Map)
		if !ok {
			o.err = fmt.Errorf("parameters must be a mapping, got %s", v.Kind())
			return
		}
		o.parameters = m
	}
}

// AsInputNode flags the node as an input of the pipeline.
func AsInputNode() NodeOption {
	return func(o *nodeOptions) { o.input = true }
}

// AsOutputNode flags the node as an output of the pipeline.
func AsOutputNode() NodeOption {
	return func(o *nodeOptions) { o.output = true }
}

// AddNode registers n, disconnected, under name. The same instance may be
// added under several names; it is then shared by those positions.
func (p *Pipeline) AddNode(ctx context.Context, name string, n node.Node, opts ...NodeOption) error {
	ctx = p.withLogger(ctx)
	logger := ctxlog.FromContext(ctx)

	if err := checkName(name); err != nil {
		return &NodeError{Node: name, Kind: ErrConstruction, Err: err}
	}
	if n == nil {
		return &NodeError{Node: name, Kind: ErrConstruction, Err: errors.New("node is nil")}
	}
	var o nodeOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return &NodeError{Node: name, Kind: ErrConstruction, Err: o.err}
	}

	record := &topologystore.Node{
		Name:       name,
		Instance:   n,
		Parameters: o.parameters,
		InputNode:  o.input,
		OutputNode: o.output,
	}
	if d, ok := n.(node.Describer); ok {
		record.Action = d.Action()
		record.Init = d.Init()
	}
	if err := p.graph.AddNode(ctx, record); err != nil {
		return &NodeError{Node: name, Kind: ErrConstruction, Err: err}
	}
	logger.Debug("Pipeline: Node added.", "node", name, "action", record.Action)
	return nil
}

// AddAction builds a node from a registered action and adds it under name.
func (p *Pipeline) AddAction(ctx context.Context, name, action string, init value.Map, opts ...NodeOption) error {
	n, err := p.registry.New(action, init)
	if err != nil {
		return &NodeError{Node: name, Kind: ErrConstruction, Err: err}
	}
	return p.AddNode(ctx, name, n, opts...)
}

// AddShared adds name as another position of the instance already added
// under owner.
func (p *Pipeline) AddShared(ctx context.Context, name, owner string, opts ...NodeOption) error {
	record, ok := p.graph.Node(ctx, owner)
	if !ok {
		return &NodeError{Node: name, Kind: ErrConstruction, Err: fmt.Errorf("%w: cannot share the instance of '%s'", ErrNodeNotFound, owner)}
	}
	if record.Instance == nil {
		return &NodeError{Node: name, Kind: ErrConstruction, Err: fmt.Errorf("node '%s' has not been instantiated", owner)}
	}
	return p.AddNode(ctx, name, record.Instance, opts...)
}

// GetNode returns a copy of the record stored under name.
func (p *Pipeline) GetNode(ctx context.Context, name string) (*topologystore.Node, error) {
	record, ok := p.graph.Node(ctx, name)
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrNodeNotFound, name)
	}
	return record.Copy(), nil
}

func checkName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.New("node name cannot be empty")
	case strings.Contains(name, "."):
		return fmt.Errorf("node name '%s' cannot contain '.', it separates node names from edge labels", name)
	}
	return nil
}
