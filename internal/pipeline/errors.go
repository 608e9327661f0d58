package pipeline

import (
	"errors"
	"fmt"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/coldgraph"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/node"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/scheduler"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/topologystore"
)

// Error kinds, matched with errors.Is.
var (
	ErrConstruction    = errors.New("pipeline construction error")
	ErrConnection      = errors.New("pipeline connection error")
	ErrValidation      = errors.New("pipeline validation error")
	ErrSerialization   = coldgraph.ErrSerialization
	ErrDeserialization = coldgraph.ErrDeserialization
	ErrRuntime         = scheduler.ErrRuntime
	ErrMaxLoops        = scheduler.ErrMaxLoops
	ErrStalled         = scheduler.ErrStalled
	ErrNoSuchStore     = node.ErrNoSuchStore
	ErrNodeNotFound    = topologystore.ErrNodeNotFound
)

type (
	// RuntimeError carries the failing node, its inputs and the cause.
	RuntimeError = scheduler.RuntimeError
	// MaxLoopsError names the node that exceeded the loop limit.
	MaxLoopsError = scheduler.MaxLoopsError
	// Result holds the payloads of the terminal nodes.
	Result = scheduler.Result
)

// NodeError ties a construction or validation failure to a node.
type NodeError struct {
	Node string
	// Kind is ErrConstruction or ErrValidation.
	Kind error
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("%v: node '%s': %v", e.Kind, e.Node, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }

func (e *NodeError) Is(target error) bool { return target == e.Kind }

// ConnectError reports why an edge could not be created. Slots describes the
// declared slots of both endpoints when the failure is about contracts.
type ConnectError struct {
	From  string
	To    string
	Label string
	Err   error
	Slots string
}

func (e *ConnectError) Error() string {
	msg := fmt.Sprintf("%v: cannot connect '%s.%s' to '%s': %v", ErrConnection, e.From, e.Label, e.To, e.Err)
	if e.Label == "" {
		msg = fmt.Sprintf("%v: cannot connect '%s' to '%s': %v", ErrConnection, e.From, e.To, e.Err)
	}
	if e.Slots != "" {
		msg += "\n" + e.Slots
	}
	return msg
}

func (e *ConnectError) Unwrap() error { return e.Err }

func (e *ConnectError) Is(target error) bool { return target == ErrConnection }
