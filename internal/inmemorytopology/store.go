package inmemorytopology

import (
	"context"
	"fmt"
	"sync"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/topologystore"
)

// Store implements the topologystore.Store interface using maps, slices for
// insertion order, and a mutex for thread-safe concurrent access.
type Store struct {
	mu    sync.RWMutex
	order []string
	nodes map[string]*topologystore.Node
	edges []topologystore.Edge
	in    map[string][]int // Key: node name, Value: indexes into edges
	out   map[string][]int
}

// New creates a new, empty in-memory topology store.
func New() topologystore.Store {
	return &Store{
		nodes: make(map[string]*topologystore.Node),
		in:    make(map[string][]int),
		out:   make(map[string][]int),
	}
}

// AddNode adds a new node to the store.
func (s *Store) AddNode(ctx context.Context, n *topologystore.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[n.Name]; exists {
		return fmt.Errorf("%w: '%s'", topologystore.ErrNodeExists, n.Name)
	}
	s.nodes[n.Name] = n
	s.order = append(s.order, n.Name)
	return nil
}

// ReplaceNode overwrites the record of an existing node.
func (s *Store) ReplaceNode(ctx context.Context, n *topologystore.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[n.Name]; !exists {
		return fmt.Errorf("%w: '%s'", topologystore.ErrNodeNotFound, n.Name)
	}
	s.nodes[n.Name] = n
	return nil
}

// AddEdge creates a directed edge between two existing nodes.
func (s *Store) AddEdge(ctx context.Context, e topologystore.Edge) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[e.From]; !exists {
		return false, fmt.Errorf("%w: edge source '%s'", topologystore.ErrNodeNotFound, e.From)
	}
	if _, exists := s.nodes[e.To]; !exists {
		return false, fmt.Errorf("%w: edge target '%s'", topologystore.ErrNodeNotFound, e.To)
	}
	for _, idx := range s.out[e.From] {
		existing := s.edges[idx]
		if existing.To == e.To && existing.Label == e.Label {
			return false, nil
		}
	}

	idx := len(s.edges)
	s.edges = append(s.edges, e)
	s.out[e.From] = append(s.out[e.From], idx)
	s.in[e.To] = append(s.in[e.To], idx)
	return true, nil
}

// GetNode retrieves a single node by its name.
func (s *Store) GetNode(ctx context.Context, name string) (*topologystore.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[name]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (s *Store) Nodes(ctx context.Context) []*topologystore.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]*topologystore.Node, 0, len(s.order))
	for _, name := range s.order {
		nodes = append(nodes, s.nodes[name])
	}
	return nodes
}

// Edges returns all edges in insertion order.
func (s *Store) Edges(ctx context.Context) []topologystore.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	edges := make([]topologystore.Edge, len(s.edges))
	copy(edges, s.edges)
	return edges
}

// InEdges returns the edges pointing at the named node.
func (s *Store) InEdges(ctx context.Context, name string) []topologystore.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(s.in[name])
}

// OutEdges returns the edges leaving the named node.
func (s *Store) OutEdges(ctx context.Context, name string) []topologystore.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(s.out[name])
}

// collect must be called with the read lock held.
func (s *Store) collect(indexes []int) []topologystore.Edge {
	edges := make([]topologystore.Edge, 0, len(indexes))
	for _, idx := range indexes {
		edges = append(edges, s.edges[idx])
	}
	return edges
}
