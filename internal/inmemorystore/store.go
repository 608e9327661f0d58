package inmemorystore

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/nodestore"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
)

// Store is an in-memory implementation of nodestore.Store.
//
// The store maintains independent sync.Maps:
//   - visits: node name to *atomic.Int64
//   - states: node name to nodestore.Status
//   - outputs: node name to value.Map
//   - errors: node name to error
type Store struct {
	visits  sync.Map
	states  sync.Map
	outputs sync.Map
	errors  sync.Map
}

// New creates a new, empty in-memory node state store.
func New() nodestore.Store {
	return &Store{}
}

// Visit increments and returns the visit counter of a node.
func (s *Store) Visit(ctx context.Context, name string) (int, error) {
	counter, _ := s.visits.LoadOrStore(name, new(atomic.Int64))
	return int(counter.(*atomic.Int64).Add(1)), nil
}

// Visits returns the visit counter of a node.
func (s *Store) Visits(ctx context.Context, name string) (int, error) {
	counter, ok := s.visits.Load(name)
	if !ok {
		return 0, nil
	}
	return int(counter.(*atomic.Int64).Load()), nil
}

// SetStatus updates the status of a specific node.
func (s *Store) SetStatus(ctx context.Context, name string, status nodestore.Status) error {
	s.states.Store(name, status)
	return nil
}

// GetStatus retrieves the status of a specific node.
// If a status has not been set, it returns StatusPending.
func (s *Store) GetStatus(ctx context.Context, name string) (nodestore.Status, error) {
	status, ok := s.states.Load(name)
	if !ok {
		return nodestore.StatusPending, nil
	}
	return status.(nodestore.Status), nil
}

// SetOutput records the latest payload of a node.
func (s *Store) SetOutput(ctx context.Context, name string, output value.Map) error {
	s.outputs.Store(name, output)
	return nil
}

// GetOutput retrieves the latest payload of a node.
func (s *Store) GetOutput(ctx context.Context, name string) (value.Map, error) {
	output, ok := s.outputs.Load(name)
	if !ok {
		return nil, nil
	}
	return output.(value.Map), nil
}

// SetError records the failure of a node.
func (s *Store) SetError(ctx context.Context, name string, nodeErr error) error {
	s.errors.Store(name, nodeErr)
	return nil
}

// GetError retrieves the recorded failure of a node.
func (s *Store) GetError(ctx context.Context, name string) (error, error) {
	err, ok := s.errors.Load(name)
	if !ok {
		return nil, nil
	}
	return err.(error), nil
}
