// internal/nodeid/parser.go
package nodeid

import (
	"fmt"
	"strings"
)

// Parse creates a Ref from its canonical string representation.
func Parse(raw string) (Ref, error) {
	if strings.TrimSpace(raw) == "" {
		return Ref{}, fmt.Errorf("node reference cannot be empty")
	}

	name, edge, hasEdge := strings.Cut(raw, ".")
	if name == "" {
		return Ref{}, fmt.Errorf("node reference %q has an empty node name", raw)
	}
	if hasEdge && edge == "" {
		return Ref{}, fmt.Errorf("node reference %q has an empty edge label", raw)
	}
	return Ref{Node: name, Edge: edge}, nil
}

// ParseAll parses every reference of a connect path.
func ParseAll(raws []string) ([]Ref, error) {
	refs := make([]Ref, 0, len(raws))
	for _, raw := range raws {
		ref, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
