package scheduler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/node"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
)

var (
	// ErrRuntime is matched by every failure raised by a node.
	ErrRuntime = errors.New("pipeline runtime error")
	// ErrMaxLoops is matched when a node exceeds the loop limit.
	ErrMaxLoops = errors.New("maximum loops exceeded")
	// ErrStalled is returned when every buffered node waits on inputs that
	// can no longer arrive.
	ErrStalled = errors.New("pipeline stalled")
	// ErrNoEntryNodes is returned when there is nothing to seed.
	ErrNoEntryNodes = errors.New("pipeline has no entry nodes")
)

// RuntimeError wraps a node failure with the exact inputs the node received.
type RuntimeError struct {
	Node       string
	Inputs     []node.Input
	Parameters value.Map
	Err        error
}

func (e *RuntimeError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "node '%s' failed: %v", e.Node, e.Err)
	sb.WriteString("\ninputs=[")
	for i, in := range e.Inputs {
		if i > 0 {
			sb.WriteString(", ")
		}
		switch {
		case in.Missing:
			fmt.Fprintf(&sb, "%s.%s: <missing>", in.From, in.Edge)
		case in.From == "":
			fmt.Fprintf(&sb, "<input>: %s", value.Format(in.Data))
		default:
			fmt.Fprintf(&sb, "%s.%s: %s", in.From, in.Edge, value.Format(in.Data))
		}
	}
	sb.WriteString("]\nparameters=")
	sb.WriteString(value.Format(e.Parameters))
	return sb.String()
}

func (e *RuntimeError) Unwrap() error { return e.Err }

func (e *RuntimeError) Is(target error) bool { return target == ErrRuntime }

// MaxLoopsError names the node that exceeded the loop limit.
type MaxLoopsError struct {
	Node     string
	MaxLoops int
}

func (e *MaxLoopsError) Error() string {
	return fmt.Sprintf("maximum loops count (%d) exceeded for node '%s'", e.MaxLoops, e.Node)
}

func (e *MaxLoopsError) Is(target error) bool { return target == ErrMaxLoops }
