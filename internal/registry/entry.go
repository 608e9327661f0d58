package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/node"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
)

// ErrInvalidInit is wrapped by every schema violation.
var ErrInvalidInit = errors.New("invalid init parameters")

// Factory builds a node from checked init parameters.
type Factory func(init value.Map) (node.Node, error)

// Entry describes one registered action.
type Entry struct {
	Name string
	// Description is shown by the CLI.
	Description string
	// Contract is informational; built nodes report their own.
	Contract node.Contract
	Schema   []Param
	Factory  Factory
	// Validate runs after the schema check, before the factory.
	Validate func(init value.Map) error
}

// Param declares one init parameter.
type Param struct {
	Name string
	// Kinds lists the accepted kinds. Empty accepts anything. Int values are
	// accepted where Float is.
	Kinds    []value.Kind
	Required bool
	// Default is filled in when the parameter is absent.
	Default value.Value
}

func (p Param) accepts(v value.Value) bool {
	if len(p.Kinds) == 0 {
		return true
	}
	for _, k := range p.Kinds {
		if v.Kind() == k || (k == value.KindFloat && v.Kind() == value.KindInt) {
			return true
		}
	}
	return false
}

// Check fills defaults and validates init against the schema. Entries
// without a schema accept any parameters.
func (e *Entry) Check(init value.Map) (value.Map, error) {
	checked := init.Clone()
	if checked == nil {
		checked = value.Map{}
	}

	if e.Schema != nil {
		known := make(map[string]Param, len(e.Schema))
		for _, p := range e.Schema {
			known[p.Name] = p
		}

		var problems []string
		for _, key := range checked.Keys() {
			p, ok := known[key]
			if !ok {
				problems = append(problems, fmt.Sprintf("unknown parameter '%s'", key))
				continue
			}
			if !p.accepts(checked[key]) {
				problems = append(problems, fmt.Sprintf("parameter '%s' must be %s, got %s", key, kindList(p.Kinds), checked[key].Kind()))
			}
		}
		for _, p := range e.Schema {
			if _, ok := checked[p.Name]; ok {
				continue
			}
			switch {
			case p.Default != nil:
				checked[p.Name] = value.Clone(p.Default)
			case p.Required:
				problems = append(problems, fmt.Sprintf("missing required parameter '%s'", p.Name))
			}
		}
		if len(problems) > 0 {
			sort.Strings(problems)
			return nil, fmt.Errorf("%w: %s", ErrInvalidInit, strings.Join(problems, "; "))
		}
	}

	if e.Validate != nil {
		if err := e.Validate(checked); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInit, err)
		}
	}
	return checked, nil
}

func kindList(kinds []value.Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return strings.Join(names, " or ")
}
