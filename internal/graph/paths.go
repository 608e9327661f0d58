package graph

import (
	"context"
)

// HasPath runs a depth-first search along outgoing edges. Results are cached
// until the next mutation.
func (m *Manager) HasPath(ctx context.Context, from, to string) bool {
	if from == to {
		return true
	}
	key := pathKey{from: from, to: to}

	m.mu.Lock()
	cached, ok := m.paths[key]
	m.mu.Unlock()
	if ok {
		return cached
	}

	visited := map[string]bool{from: true}
	stack := []string{from}
	found := false
	for len(stack) > 0 && !found {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range m.topology.OutEdges(ctx, current) {
			if e.To == to {
				found = true
				break
			}
			if !visited[e.To] {
				visited[e.To] = true
				stack = append(stack, e.To)
			}
		}
	}

	m.mu.Lock()
	m.paths[key] = found
	m.mu.Unlock()
	return found
}

// WeaklyConnected walks the graph ignoring edge direction from the first
// node and checks every node was reached.
func (m *Manager) WeaklyConnected(ctx context.Context) bool {
	nodes := m.topology.Nodes(ctx)
	if len(nodes) == 0 {
		return false
	}

	neighbours := make(map[string][]string, len(nodes))
	for _, e := range m.topology.Edges(ctx) {
		neighbours[e.From] = append(neighbours[e.From], e.To)
		neighbours[e.To] = append(neighbours[e.To], e.From)
	}

	start := nodes[0].Name
	seen := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range neighbours[current] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return len(seen) == len(nodes)
}

func (m *Manager) EntryNodes(ctx context.Context) []string {
	var names []string
	for _, n := range m.topology.Nodes(ctx) {
		if len(m.topology.InEdges(ctx, n.Name)) == 0 {
			names = append(names, n.Name)
		}
	}
	return names
}

func (m *Manager) TerminalNodes(ctx context.Context) []string {
	var names []string
	for _, n := range m.topology.Nodes(ctx) {
		if len(m.topology.OutEdges(ctx, n.Name)) == 0 {
			names = append(names, n.Name)
		}
	}
	return names
}
