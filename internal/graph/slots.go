package graph

import (
	"context"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/node"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/topologystore"
)

// FreeInputs subtracts the labels of incoming edges from the declared
// inputs, one slot per edge.
func (m *Manager) FreeInputs(ctx context.Context, name string) []string {
	n, ok := m.topology.GetNode(ctx, name)
	if !ok || n.Instance == nil {
		return nil
	}
	declared := node.ContractOf(n.Instance).Inputs
	if declared == nil {
		return nil
	}
	return subtractSlots(declared, m.topology.InEdges(ctx, name))
}

// FreeOutputs subtracts the labels of outgoing edges from the declared
// outputs, one slot per edge.
func (m *Manager) FreeOutputs(ctx context.Context, name string) []string {
	n, ok := m.topology.GetNode(ctx, name)
	if !ok || n.Instance == nil {
		return nil
	}
	declared := node.ContractOf(n.Instance).Outputs
	if declared == nil {
		return nil
	}
	return subtractSlots(declared, m.topology.OutEdges(ctx, name))
}

func subtractSlots(declared []string, taken []topologystore.Edge) []string {
	free := make([]string, len(declared))
	copy(free, declared)
	for _, e := range taken {
		for i, slot := range free {
			if slot == e.Label {
				free = append(free[:i], free[i+1:]...)
				break
			}
		}
	}
	return free
}
