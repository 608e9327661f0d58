package graph

import (
	"context"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/nodestore"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/topologystore"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
)

// Graph is a unified interface for interacting with a pipeline graph.
type Graph interface {
	// AddNode registers a disconnected node.
	AddNode(ctx context.Context, n *topologystore.Node) error

	// ReplaceNode overwrites an existing node record, keeping its edges.
	ReplaceNode(ctx context.Context, n *topologystore.Node) error

	// AddEdge creates an edge. It reports false when the same edge exists.
	AddEdge(ctx context.Context, e topologystore.Edge) (bool, error)

	// Node retrieves a node record by name.
	Node(ctx context.Context, name string) (*topologystore.Node, bool)

	// Nodes returns every node in insertion order.
	Nodes(ctx context.Context) []*topologystore.Node

	// Edges returns every edge in insertion order.
	Edges(ctx context.Context) []topologystore.Edge

	// InEdges returns the edges pointing at a node.
	InEdges(ctx context.Context, name string) []topologystore.Edge

	// OutEdges returns the edges leaving a node.
	OutEdges(ctx context.Context, name string) []topologystore.Edge

	// HasPath reports whether a directed path leads from one node to another.
	// Every node has a path to itself.
	HasPath(ctx context.Context, from, to string) bool

	// WeaklyConnected reports whether the graph forms a single component
	// when edge direction is ignored. An empty graph is not connected.
	WeaklyConnected(ctx context.Context) bool

	// EntryNodes returns the nodes without incoming edges.
	EntryNodes(ctx context.Context) []string

	// TerminalNodes returns the nodes without outgoing edges.
	TerminalNodes(ctx context.Context) []string

	// FreeInputs returns the declared input slots of a node not yet taken by
	// an incoming edge. Nil when the node declares no inputs.
	FreeInputs(ctx context.Context, name string) []string

	// FreeOutputs returns the declared output slots of a node not yet taken
	// by an outgoing edge. Nil when the node declares no outputs.
	FreeOutputs(ctx context.Context, name string) []string

	// ForRun returns a Graph sharing this topology and bound to fresh
	// per-run state.
	ForRun(ns nodestore.Store) Graph

	// Visit increments and returns the visit counter of a node.
	Visit(ctx context.Context, name string) (int, error)

	// Visits returns the visit counter of a node.
	Visits(ctx context.Context, name string) int

	// NodeStatus retrieves the run status of a node.
	NodeStatus(ctx context.Context, name string) nodestore.Status

	// MarkRunning transitions a node to Running.
	MarkRunning(ctx context.Context, name string) error

	// MarkCompleted transitions a node to Completed and records its payload.
	MarkCompleted(ctx context.Context, name string, output value.Map) error

	// MarkFailed transitions a node to Failed and records the error.
	MarkFailed(ctx context.Context, name string, nodeErr error) error

	// MarkSkipped transitions a node to Skipped.
	MarkSkipped(ctx context.Context, name string) error
}
