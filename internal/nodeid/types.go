// internal/nodeid/types.go
package nodeid

// Ref points at a node and, optionally, at one of its output labels.
type Ref struct {
	Node string
	Edge string // Empty when the reference names no output.
}

// HasEdge returns true if the reference names an output label explicitly.
func (r Ref) HasEdge() bool {
	return r.Edge != ""
}

// String serializes the Ref into its canonical `node[.edge]` form.
func (r Ref) String() string {
	if r.Edge == "" {
		return r.Node
	}
	return r.Node + "." + r.Edge
}

// Names returns the node names of refs, in order.
func Names(refs []Ref) []string {
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.Node
	}
	return names
}
