package coldgraph

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

var (
	// ErrSerialization is matched by every failure to cool a graph down.
	ErrSerialization = errors.New("pipeline serialization error")
	// ErrDeserialization is matched by every failure to rebuild a graph.
	ErrDeserialization = errors.New("pipeline deserialization error")
)

// Document is the node-link form of a pipeline graph.
type Document struct {
	Directed   bool       `yaml:"directed"`
	Multigraph bool       `yaml:"multigraph"`
	Graph      Attributes `yaml:"graph"`
	Nodes      []Node     `yaml:"nodes"`
	Links      []Link     `yaml:"links"`
}

// Attributes are graph-level settings saved alongside the topology.
type Attributes struct {
	MaxLoops int `yaml:"max_loops_allowed,omitempty"`
}

// Node is one cold node.
type Node struct {
	ID     string         `yaml:"id"`
	Action string         `yaml:"action"`
	Init   map[string]any `yaml:"init,omitempty"`
	// Parameters holds the default parameters as a JSON object.
	Parameters string `yaml:"parameters,omitempty"`
	InstanceID string `yaml:"instance_id,omitempty"`
	InputNode  bool   `yaml:"input_node,omitempty"`
	OutputNode bool   `yaml:"output_node,omitempty"`
}

// Link is one cold edge.
type Link struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
	Label  string `yaml:"label"`
	Weight int    `yaml:"weight"`
}

// Encode writes doc as YAML.
func Encode(w io.Writer, doc *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("%w: failed to encode document: %w", ErrSerialization, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("%w: failed to flush document: %w", ErrSerialization, err)
	}
	return nil
}

// Decode reads a YAML document. Unknown keys are rejected.
func Decode(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: document is empty", ErrDeserialization)
		}
		return nil, fmt.Errorf("%w: failed to decode document: %w", ErrDeserialization, err)
	}
	return &doc, nil
}
