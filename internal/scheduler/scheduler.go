package scheduler

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/ctxlog"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/graph"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/node"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/topologystore"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
)

// DefaultMaxLoops bounds how many times a single node may be visited in one
// run.
const DefaultMaxLoops = 100

// Scheduler runs a pipeline graph once. A Scheduler must be bound to a
// run-scoped graph (see graph.Graph.ForRun) and is not reusable.
type Scheduler struct {
	graph    graph.Graph
	maxLoops int
	stores   node.Stores
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithMaxLoops overrides DefaultMaxLoops.
func WithMaxLoops(n int) Option {
	return func(s *Scheduler) {
		s.maxLoops = n
	}
}

// WithStores sets the resources passed to every node call.
func WithStores(stores node.Stores) Option {
	return func(s *Scheduler) {
		s.stores = stores
	}
}

// New creates a scheduler over g.
func New(g graph.Graph, opts ...Option) *Scheduler {
	s := &Scheduler{graph: g, maxLoops: DefaultMaxLoops}
	for _, opt := range opts {
		opt(s)
	}
	if s.stores == nil {
		s.stores = node.Stores{}
	}
	return s
}

// Run executes the graph over data and the per-node parameters. On error the
// partial results are discarded.
func (s *Scheduler) Run(ctx context.Context, data, params value.Map) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	buf := newBuffer()
	for _, name := range s.graph.EntryNodes(ctx) {
		buf.push(name, Contribution{Data: data.Clone(), Params: params.Clone(), Weight: topologystore.DefaultWeight})
	}
	if buf.len() == 0 {
		return nil, ErrNoEntryNodes
	}
	logger.Debug("Scheduler: Entry nodes seeded.", "nodes", buf.names())

	result := newResult()
	idle := 0
	for buf.len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run interrupted: %w", err)
		}

		name, contributions := buf.pop()
		logger.Debug("Scheduler: Popped node.", "node", name, "queue", buf.names())

		inputs, ready := s.collect(ctx, name, contributions)
		if !ready {
			buf.requeue(name, contributions)
			idle++
			if idle >= buf.len() {
				return nil, fmt.Errorf("%w: nodes %v wait on inputs that can no longer arrive", ErrStalled, buf.names())
			}
			continue
		}
		idle = 0

		if len(contributions) == 0 {
			if err := s.skip(ctx, buf, name); err != nil {
				return nil, err
			}
			continue
		}

		out, err := s.invoke(ctx, name, contributions, inputs)
		if err != nil {
			return nil, err
		}
		s.route(ctx, buf, result, name, out)
	}

	result.report(ctx, s.graph)
	logger.Info("Scheduler: Run completed.", "terminals", result.Terminals())
	return result, nil
}

// collect decides whether name can run with the given contributions. When
// it can, it returns the node inputs in arrival order followed by the
// pruned wait-set edges.
func (s *Scheduler) collect(ctx context.Context, name string, contributions []Contribution) ([]node.Input, bool) {
	logger := ctxlog.FromContext(ctx)

	type edgeKey struct{ from, label string }
	received := make(map[edgeKey]int, len(contributions))
	inputs := make([]node.Input, 0, len(contributions))
	for _, c := range contributions {
		received[edgeKey{c.From, c.Edge}]++
		inputs = append(inputs, node.Input{From: c.From, Edge: c.Edge, Data: c.Data})
	}

	var waitSet, missing []topologystore.Edge
	for _, e := range s.graph.InEdges(ctx, name) {
		if s.graph.HasPath(ctx, name, e.From) {
			continue
		}
		waitSet = append(waitSet, e)
		key := edgeKey{e.From, e.Label}
		if received[key] > 0 {
			received[key]--
			continue
		}
		missing = append(missing, e)
	}
	if len(missing) == 0 {
		return inputs, true
	}

	for _, e := range waitSet {
		if s.graph.Visits(ctx, e.From) == 0 {
			logger.Debug("Scheduler: Inputs missing, putting node back in the queue.", "node", name, "waiting_on", e.From)
			return nil, false
		}
	}

	logger.Debug("Scheduler: Upstream nodes pruned some edges, running with missing inputs.", "node", name, "missing", len(missing))
	for _, e := range missing {
		inputs = append(inputs, node.Input{From: e.From, Edge: e.Label, Missing: true})
	}
	return inputs, true
}

// skip counts a visit without invoking the node and propagates the pruning
// downstream.
func (s *Scheduler) skip(ctx context.Context, buf *buffer, name string) error {
	if _, err := s.visit(ctx, name); err != nil {
		return err
	}
	if err := s.graph.MarkSkipped(ctx, name); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Scheduler: No inputs received, skipping node.", "node", name)
	for _, e := range s.graph.OutEdges(ctx, name) {
		buf.touch(e.To)
	}
	return nil
}

func (s *Scheduler) visit(ctx context.Context, name string) (int, error) {
	visits, err := s.graph.Visit(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to count visit of '%s': %w", name, err)
	}
	if visits > s.maxLoops {
		return visits, &MaxLoopsError{Node: name, MaxLoops: s.maxLoops}
	}
	return visits, nil
}

func (s *Scheduler) invoke(ctx context.Context, name string, contributions []Contribution, inputs []node.Input) (node.Output, error) {
	logger := ctxlog.FromContext(ctx)

	record, ok := s.graph.Node(ctx, name)
	if !ok {
		return node.Output{}, fmt.Errorf("node '%s' not found in topology", name)
	}
	if record.Instance == nil {
		return node.Output{}, fmt.Errorf("node '%s' has not been warmed up", name)
	}

	data := make([]value.Weighted, len(contributions))
	params := make([]value.Weighted, len(contributions))
	for i, c := range contributions {
		data[i] = value.Weighted{Map: c.Data, Weight: c.Weight}
		params[i] = value.Weighted{Map: c.Params, Weight: c.Weight}
	}
	mergedData := value.MergeWeighted(data)
	mergedParams := value.MergeWeighted(params)
	if len(record.Parameters) > 0 {
		own, _ := mergedParams.Sub(name)
		mergedParams[name] = value.Merge(own, record.Parameters)
	}

	visits, err := s.visit(ctx, name)
	if err != nil {
		return node.Output{}, err
	}

	outEdges := s.graph.OutEdges(ctx, name)
	labels := make([]string, len(outEdges))
	for i, e := range outEdges {
		labels[i] = e.Label
	}

	call := &node.Call{
		Name:          name,
		Data:          mergedData,
		Inputs:        inputs,
		Parameters:    mergedParams,
		OutgoingEdges: labels,
		Stores:        s.stores,
	}
	snapshot := snapshotInputs(inputs)
	paramsSnapshot := mergedParams.Clone()

	if err := s.graph.MarkRunning(ctx, name); err != nil {
		return node.Output{}, err
	}
	logger.Info("Scheduler: Running node.", "node", name, "visits", visits)

	out, err := record.Instance.Run(ctxlog.ForNode(ctx, name, visits), call)
	if err == nil && out.IsSingle() {
		if distinct := distinctLabels(labels); len(distinct) > 1 {
			err = fmt.Errorf("emitted on every edge but its outgoing edges carry several labels (%s), route the output instead",
				strings.Join(distinct, ", "))
		}
	}
	if err != nil {
		_ = s.graph.MarkFailed(ctx, name, err)
		return node.Output{}, &RuntimeError{Node: name, Inputs: snapshot, Parameters: paramsSnapshot, Err: err}
	}
	if err := s.graph.MarkCompleted(ctx, name, out.Payload()); err != nil {
		return node.Output{}, err
	}
	return out, nil
}

func distinctLabels(labels []string) []string {
	var out []string
	for _, l := range labels {
		if !slices.Contains(out, l) {
			out = append(out, l)
		}
	}
	return out
}

// route delivers out along the outgoing edges of name.
func (s *Scheduler) route(ctx context.Context, buf *buffer, result *Result, name string, out node.Output) {
	logger := ctxlog.FromContext(ctx)

	outEdges := s.graph.OutEdges(ctx, name)
	if len(outEdges) == 0 {
		result.add(name, out.Payload())
		return
	}

	loopDecision := false
	if len(outEdges) > 1 {
		for _, e := range outEdges {
			if s.graph.HasPath(ctx, e.To, name) {
				loopDecision = true
				break
			}
		}
	}

	for _, e := range outEdges {
		emission, ok := out.On(e.Label)
		if !ok && loopDecision {
			if s.graph.HasPath(ctx, e.To, name) {
				logger.Debug("Scheduler: Leaving the loop.", "node", name, "not_buffered", e.To)
			} else {
				logger.Debug("Scheduler: Staying in the loop.", "node", name, "not_buffered", e.To)
			}
			continue
		}
		if !ok {
			buf.touch(e.To)
			continue
		}
		buf.push(e.To, Contribution{
			From:   name,
			Edge:   e.Label,
			Data:   emission.Data,
			Params: emission.Parameters,
			Weight: e.Weight,
		})
	}
}

func snapshotInputs(inputs []node.Input) []node.Input {
	out := make([]node.Input, len(inputs))
	for i, in := range inputs {
		out[i] = in
		out[i].Data = in.Data.Clone()
	}
	return out
}
