package graph

import (
	"context"
	"fmt"
	"sync"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/ctxlog"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/nodestore"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/topologystore"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
)

type pathKey struct {
	from string
	to   string
}

// Manager provides a thread-safe interface to a pipeline graph by composing
// a topology store and a node state store.
type Manager struct {
	topology topologystore.Store
	state    nodestore.Store

	mu    sync.Mutex
	paths map[pathKey]bool
}

// New creates a new graph manager.
func New(ts topologystore.Store, ns nodestore.Store) Graph {
	return &Manager{
		topology: ts,
		state:    ns,
		paths:    make(map[pathKey]bool),
	}
}

// ForRun returns a manager over the same topology with its own state.
func (m *Manager) ForRun(ns nodestore.Store) Graph {
	return New(m.topology, ns)
}

func (m *Manager) invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths = make(map[pathKey]bool)
}

func (m *Manager) AddNode(ctx context.Context, n *topologystore.Node) error {
	if err := m.topology.AddNode(ctx, n); err != nil {
		return err
	}
	m.invalidate()
	return nil
}

func (m *Manager) ReplaceNode(ctx context.Context, n *topologystore.Node) error {
	return m.topology.ReplaceNode(ctx, n)
}

func (m *Manager) AddEdge(ctx context.Context, e topologystore.Edge) (bool, error) {
	added, err := m.topology.AddEdge(ctx, e)
	if err != nil {
		return false, err
	}
	if added {
		m.invalidate()
	}
	return added, nil
}

func (m *Manager) Node(ctx context.Context, name string) (*topologystore.Node, bool) {
	return m.topology.GetNode(ctx, name)
}

func (m *Manager) Nodes(ctx context.Context) []*topologystore.Node {
	return m.topology.Nodes(ctx)
}

func (m *Manager) Edges(ctx context.Context) []topologystore.Edge {
	return m.topology.Edges(ctx)
}

func (m *Manager) InEdges(ctx context.Context, name string) []topologystore.Edge {
	return m.topology.InEdges(ctx, name)
}

func (m *Manager) OutEdges(ctx context.Context, name string) []topologystore.Edge {
	return m.topology.OutEdges(ctx, name)
}

func (m *Manager) Visit(ctx context.Context, name string) (int, error) {
	return m.state.Visit(ctx, name)
}

func (m *Manager) Visits(ctx context.Context, name string) int {
	visits, err := m.state.Visits(ctx, name)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Graph: Failed to read visit counter.", "node", name, "error", err)
		return 0
	}
	return visits
}

func (m *Manager) NodeStatus(ctx context.Context, name string) nodestore.Status {
	status, err := m.state.GetStatus(ctx, name)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Graph: Failed to read node status.", "node", name, "error", err)
		return nodestore.StatusPending
	}
	return status
}

func (m *Manager) MarkRunning(ctx context.Context, name string) error {
	return m.state.SetStatus(ctx, name, nodestore.StatusRunning)
}

func (m *Manager) MarkCompleted(ctx context.Context, name string, output value.Map) error {
	if err := m.state.SetOutput(ctx, name, output); err != nil {
		return fmt.Errorf("failed to record output of '%s': %w", name, err)
	}
	return m.state.SetStatus(ctx, name, nodestore.StatusCompleted)
}

func (m *Manager) MarkFailed(ctx context.Context, name string, nodeErr error) error {
	if err := m.state.SetError(ctx, name, nodeErr); err != nil {
		return fmt.Errorf("failed to record error of '%s': %w", name, err)
	}
	return m.state.SetStatus(ctx, name, nodestore.StatusFailed)
}

func (m *Manager) MarkSkipped(ctx context.Context, name string) error {
	return m.state.SetStatus(ctx, name, nodestore.StatusSkipped)
}
