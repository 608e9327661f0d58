// Package topologystore defines the interface for storing and retrieving the
// static structure of a pipeline graph.
//
// # Why Topology Store Exists
//
// The topology store isolates the **graph structure** (named nodes, labeled
// and weighted edges, default parameters) from the **per-run state** (visit
// counters, statuses) managed by nodestore. A pipeline graph is built once,
// saved and loaded many times, and run many times; only the per-run state is
// thrown away after each run.
//
// # Lifecycle and Usage
//
// The topology store is:
//  1. **Populated** by Pipeline.AddNode and Pipeline.Connect, or by loading a
//     saved document.
//  2. **Rewritten** in place when a cold graph is warmed up (string action
//     references are swapped for live instances).
//  3. **Read-only** during a run: the scheduler queries in/out edges and
//     node records, never mutating them.
//
// Node and edge listings preserve insertion order. The scheduler relies on
// that to make execution order of independent branches deterministic.
package topologystore

import (
	"context"
	"errors"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/node"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
)

var (
	// ErrNodeExists is returned when adding a node whose name is taken.
	ErrNodeExists = errors.New("node already exists")
	// ErrNodeNotFound is returned when a name does not match any node.
	ErrNodeNotFound = errors.New("node not found")
)

// DefaultWeight is the weight of edges created without an explicit one.
const DefaultWeight = 1

// Node is the record kept for every vertex of the graph.
type Node struct {
	Name string
	// Instance is the live implementation. It is nil while the node is cold.
	Instance node.Node
	// Action is the registry key the node was built from.
	Action string
	// Init holds the construction parameters reported by the instance.
	Init value.Map
	// SharedWith names the first node holding the same instance, if any.
	SharedWith string
	// Parameters are the node's default run parameters.
	Parameters value.Map
	InputNode  bool
	OutputNode bool
}

// Cold reports whether the node still references its implementation by name.
func (n *Node) Cold() bool {
	return n.Instance == nil
}

// Copy returns a shallow copy of the record with its maps cloned.
func (n *Node) Copy() *Node {
	c := *n
	c.Init = n.Init.Clone()
	c.Parameters = n.Parameters.Clone()
	return &c
}

// Edge is a directed, labeled, weighted connection between two nodes.
type Edge struct {
	From   string
	To     string
	Label  string
	Weight int
}

// Store is the interface for managing the topology of a pipeline graph.
//
// # Thread-Safety Requirements
//
// Implementations MUST be safe for concurrent use: batch runs read the same
// topology from several goroutines.
//
// # Typical Implementation
//
// See internal/inmemorytopology for the reference in-memory implementation.
type Store interface {
	// AddNode registers a new node. Names are unique: adding a node whose
	// name is taken returns ErrNodeExists.
	AddNode(ctx context.Context, n *Node) error

	// ReplaceNode overwrites the record of an existing node, keeping its
	// position and edges. Returns ErrNodeNotFound for unknown names.
	ReplaceNode(ctx context.Context, n *Node) error

	// AddEdge creates a directed edge. Both endpoints must exist. An edge
	// with the same endpoints and label as an existing one is ignored and
	// reported as not added.
	AddEdge(ctx context.Context, e Edge) (added bool, err error)

	// GetNode retrieves a single node by name.
	GetNode(ctx context.Context, name string) (*Node, bool)

	// Nodes returns every node in insertion order. The slice is a snapshot.
	Nodes(ctx context.Context) []*Node

	// Edges returns every edge in insertion order.
	Edges(ctx context.Context) []Edge

	// InEdges returns the edges pointing at name, in insertion order.
	InEdges(ctx context.Context, name string) []Edge

	// OutEdges returns the edges leaving name, in insertion order.
	OutEdges(ctx context.Context, name string) []Edge
}
