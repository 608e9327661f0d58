package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/ctxlog"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/inmemorystore"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/node"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/scheduler"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var errCold = errors.New("node has not been instantiated")

// Run executes the pipeline once over data. params is keyed by node name;
// values given for a node override its default parameters.
func (p *Pipeline) Run(ctx context.Context, data, params value.Map) (*Result, error) {
	return p.run(ctx, data, params, true)
}

func (p *Pipeline) run(ctx context.Context, data, params value.Map, warmUp bool) (*Result, error) {
	runID := uuid.NewString()
	ctx = ctxlog.With(p.withLogger(ctx), "runID", runID)
	logger := ctxlog.FromContext(ctx)

	if data == nil {
		data = value.Map{}
	}
	for _, name := range params.Keys() {
		if _, ok := p.graph.Node(ctx, name); !ok {
			logger.Warn("Run: Parameters given for a node that is not in the pipeline.", "node", name)
		}
	}

	if warmUp {
		if err := p.warmUpNodes(ctx); err != nil {
			return nil, err
		}
	}

	sched := scheduler.New(
		p.graph.ForRun(inmemorystore.New()),
		scheduler.WithMaxLoops(p.maxLoops),
		scheduler.WithStores(p.storesSnapshot()),
	)

	logger.Info("Run: Starting.", "nodes", len(p.graph.Nodes(ctx)), "max_loops", p.maxLoops)
	start := time.Now()
	result, err := sched.Run(ctx, data, params)
	if err != nil {
		logger.Error("Run: Pipeline failed.", "error", err, "duration", time.Since(start))
		return nil, err
	}
	logger.Info("Run: Finished.", "duration", time.Since(start), "terminals", result.Terminals())
	return result, nil
}

// warmUpNodes calls the warm-up hook of every distinct instance once.
func (p *Pipeline) warmUpNodes(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	var done []node.WarmUpper
	for _, n := range p.graph.Nodes(ctx) {
		if n.Instance == nil {
			return &NodeError{Node: n.Name, Kind: ErrValidation, Err: errCold}
		}
		w, ok := n.Instance.(node.WarmUpper)
		if !ok || containsInstance(done, w) {
			continue
		}
		logger.Debug("Run: Warming up node.", "node", n.Name)
		if err := w.WarmUp(ctx); err != nil {
			return &RuntimeError{Node: n.Name, Err: fmt.Errorf("warm up failed: %w", err)}
		}
		done = append(done, w)
	}
	return nil
}

func containsInstance(items []node.WarmUpper, w node.WarmUpper) bool {
	for _, item := range items {
		if sameNode(item, w) {
			return true
		}
	}
	return false
}

// Input is one item of a batch.
type Input struct {
	Data       value.Map
	Parameters value.Map
}

// RunBatch runs the pipeline once per input with at most workers runs in
// flight. Results keep the order of inputs. The first failure cancels the
// remaining runs.
//
// Nodes are warmed up once, before any run starts. Runs share node
// instances; stateful nodes must synchronize their own state.
func (p *Pipeline) RunBatch(ctx context.Context, inputs []Input, workers int) ([]*Result, error) {
	if workers < 1 {
		workers = 1
	}
	ctx = p.withLogger(ctx)
	logger := ctxlog.FromContext(ctx)
	logger.Info("RunBatch: Starting.", "runs", len(inputs), "workers", workers)

	if err := p.warmUpNodes(ctx); err != nil {
		return nil, err
	}

	results := make([]*Result, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, in := range inputs {
		g.Go(func() error {
			res, err := p.run(gctx, in.Data, in.Parameters, false)
			if err != nil {
				return fmt.Errorf("batch item %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Info("RunBatch: Finished.", "runs", len(inputs))
	return results, nil
}
