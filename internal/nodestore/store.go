// Package nodestore defines the interface for storing and retrieving the
// dynamic, mutable state of nodes during a single pipeline run.
//
// # Why Node Store Exists
//
// The node store isolates **per-run state** (visit counters, statuses, last
// outputs, errors) from the **static graph structure** (nodes, edges,
// defaults) managed by topologystore. A pipeline can run many times, and
// several times concurrently in a batch, over the same topology: every run
// gets a fresh node store and nothing leaks from one run into the next.
//
// # Lifecycle and Usage
//
// The node store is:
//  1. **Created** once per run (ephemeral, never persisted)
//  2. **Mutated** by the scheduler every time a node is visited or skipped
//  3. **Queried** by the scheduler to enforce the loop limit and to decide
//     whether a waiting node will ever receive its missing inputs
//  4. **Reported** to callers through the run result, then discarded
//
// # State Transitions
//
// Nodes follow this lifecycle within a run:
//
//	Pending → Running → Completed (with output) OR Failed (with error)
//	Pending → Skipped (no input arrived)
//
// Nodes inside a loop go back to Running on every visit.
package nodestore

import (
	"context"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
)

// Status is the state of a node within a single run.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusCompleted
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Store is the interface for managing the mutable state of nodes during a run.
//
// This interface does NOT manage static graph structure. That responsibility
// belongs to topologystore.Store.
//
// # Thread-Safety Requirements
//
// Implementations MUST be safe for concurrent use. A single run is driven by
// one goroutine, but reports may be read while the run is in progress.
//
// # Typical Implementation
//
// See internal/inmemorystore for the reference in-memory implementation using
// sync.Map for fine-grained concurrent access.
type Store interface {
	// Visit increments the visit counter of a node and returns the new value.
	// Both executions and skips count as visits.
	Visit(ctx context.Context, name string) (int, error)

	// Visits returns how many times a node was visited. Zero if never.
	Visits(ctx context.Context, name string) (int, error)

	// SetStatus updates the status of a node.
	SetStatus(ctx context.Context, name string, status Status) error

	// GetStatus returns StatusPending if no status has been set yet.
	GetStatus(ctx context.Context, name string) (Status, error)

	// SetOutput records the payload of the latest successful execution.
	SetOutput(ctx context.Context, name string, output value.Map) error

	// GetOutput returns nil if the node has not completed yet.
	GetOutput(ctx context.Context, name string) (value.Map, error)

	// SetError records the failure of a node.
	SetError(ctx context.Context, name string, nodeErr error) error

	// GetError returns nil if the node has not failed.
	GetError(ctx context.Context, name string) (error, error)
}
