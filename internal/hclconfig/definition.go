package hclconfig

import (
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
	"github.com/hashicorp/hcl/v2"
)

// Definition is a decoded pipeline definition.
type Definition struct {
	// Files lists the files the definition was read from, in load order.
	Files []string
	// MaxLoops is zero when no pipeline block sets it.
	MaxLoops    int
	Nodes       []Node
	Connections []Connection
}

// Node is one node block.
type Node struct {
	Name string
	// Action names a registered action. Empty when Shares is set.
	Action string
	// Shares names an earlier node whose instance this node reuses.
	Shares     string
	Init       value.Map
	Parameters value.Map
	Input      bool
	Output     bool
	Range      hcl.Range
}

// Connection is one connect block.
type Connection struct {
	Path    []string
	Weights []int
	Range   hcl.Range
}

type fileRoot struct {
	Pipelines []*pipelineBlock `hcl:"pipeline,block"`
	Nodes     []*nodeBlock     `hcl:"node,block"`
	Connects  []*connectBlock  `hcl:"connect,block"`
}

type pipelineBlock struct {
	MaxLoops *int      `hcl:"max_loops,optional"`
	DefRange hcl.Range `hcl:",def_range"`
}

type nodeBlock struct {
	Name       string         `hcl:"name,label"`
	Action     string         `hcl:"action,optional"`
	Shares     string         `hcl:"shares,optional"`
	Init       hcl.Expression `hcl:"init,optional"`
	Parameters hcl.Expression `hcl:"parameters,optional"`
	Input      bool           `hcl:"input,optional"`
	Output     bool           `hcl:"output,optional"`
	DefRange   hcl.Range      `hcl:",def_range"`
}

type connectBlock struct {
	Path     []string  `hcl:"path"`
	Weights  []int     `hcl:"weights,optional"`
	DefRange hcl.Range `hcl:",def_range"`
}
