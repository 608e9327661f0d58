package hclconfig

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/ctxlog"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/fsutil"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// Extension is the file extension of definition files.
const Extension = ".hcl"

type loader struct {
	parser   *hclparse.Parser
	evalCtx  *hcl.EvalContext
	def      *Definition
	nodes    map[string]hcl.Range
	settings *hcl.Range
}

func newLoader() *loader {
	return &loader{
		parser:  hclparse.NewParser(),
		evalCtx: newEvalContext(),
		def:     &Definition{},
		nodes:   make(map[string]hcl.Range),
	}
}

// Load reads every definition file found under paths. Directories are
// walked recursively; files are read in lexical order.
func Load(ctx context.Context, paths ...string) (*Definition, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL: Loader started.", "paths", paths)

	files, err := findFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files found in %v", Extension, paths)
	}
	logger.Debug("HCL: Discovered files.", "count", len(files))

	l := newLoader()
	for _, file := range files {
		hclFile, diags := l.parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		if err := l.decode(hclFile, file); err != nil {
			return nil, err
		}
	}

	logger.Debug("HCL: Loading complete.", "nodes", len(l.def.Nodes), "connections", len(l.def.Connections))
	return l.def, nil
}

// Parse decodes a single definition held in memory. filename is only used
// in diagnostics.
func Parse(ctx context.Context, filename string, src []byte) (*Definition, error) {
	l := newLoader()
	hclFile, diags := l.parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	if err := l.decode(hclFile, filename); err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("HCL: Parsed definition.", "file", filename, "nodes", len(l.def.Nodes))
	return l.def, nil
}

func (l *loader) decode(file *hcl.File, filename string) error {
	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, l.evalCtx, &root); diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}
	l.def.Files = append(l.def.Files, filename)

	var diags hcl.Diagnostics
	for _, p := range root.Pipelines {
		if l.settings != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  `Duplicate "pipeline" block`,
				Detail:   fmt.Sprintf("Only one \"pipeline\" block is allowed, the first one is at %s.", l.settings),
				Subject:  p.DefRange.Ptr(),
			})
			continue
		}
		l.settings = p.DefRange.Ptr()
		if p.MaxLoops != nil {
			if *p.MaxLoops < 1 {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid max_loops",
					Detail:   "max_loops must be at least 1.",
					Subject:  p.DefRange.Ptr(),
				})
				continue
			}
			l.def.MaxLoops = *p.MaxLoops
		}
	}

	for _, n := range root.Nodes {
		node, nodeDiags := l.translateNode(n)
		diags = append(diags, nodeDiags...)
		if nodeDiags.HasErrors() {
			continue
		}
		l.def.Nodes = append(l.def.Nodes, node)
	}

	for _, c := range root.Connects {
		if len(c.Path) < 2 {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid connect path",
				Detail:   "A connect path needs at least two nodes.",
				Subject:  c.DefRange.Ptr(),
			})
			continue
		}
		l.def.Connections = append(l.def.Connections, Connection{Path: c.Path, Weights: c.Weights, Range: c.DefRange})
	}

	if diags.HasErrors() {
		return fmt.Errorf("invalid definition in %s: %w", filename, diags)
	}
	return nil
}

func (l *loader) translateNode(n *nodeBlock) (Node, hcl.Diagnostics) {
	var diags hcl.Diagnostics

	if first, ok := l.nodes[n.Name]; ok {
		return Node{}, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Duplicate node",
			Detail:   fmt.Sprintf("Node %q is already defined at %s.", n.Name, first),
			Subject:  n.DefRange.Ptr(),
		})
	}
	l.nodes[n.Name] = n.DefRange

	switch {
	case n.Action == "" && n.Shares == "":
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing action",
			Detail:   fmt.Sprintf("Node %q needs either an action or a shares attribute.", n.Name),
			Subject:  n.DefRange.Ptr(),
		})
	case n.Shares != "" && (n.Action != "" || isExprDefined(n.Init)):
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Conflicting attributes",
			Detail:   fmt.Sprintf("Node %q shares another instance and cannot set action or init.", n.Name),
			Subject:  n.DefRange.Ptr(),
		})
	}

	init, initDiags := mapAttribute(n.Init, l.evalCtx, "init")
	diags = append(diags, initDiags...)
	params, paramDiags := mapAttribute(n.Parameters, l.evalCtx, "parameters")
	diags = append(diags, paramDiags...)

	return Node{
		Name:       n.Name,
		Action:     n.Action,
		Shares:     n.Shares,
		Init:       init,
		Parameters: params,
		Input:      n.Input,
		Output:     n.Output,
		Range:      n.DefRange,
	}, diags
}

// isExprDefined reports whether an optional attribute was written in the
// source. Omitted attributes decode to zero-width placeholder expressions.
func isExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	return r.End.Byte > r.Start.Byte
}

func mapAttribute(expr hcl.Expression, evalCtx *hcl.EvalContext, name string) (value.Map, hcl.Diagnostics) {
	if !isExprDefined(expr) {
		return value.Map{}, nil
	}
	v, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, diags
	}
	m, err := value.MapFromCty(v)
	if err != nil {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  fmt.Sprintf("Invalid %s", name),
			Detail:   err.Error(),
			Subject:  expr.Range().Ptr(),
		}}
	}
	return m, nil
}

func newEvalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !hclsyntax.ValidIdentifier(k) {
			continue
		}
		env[k] = cty.StringVal(v)
	}
	envVal := cty.EmptyObjectVal
	if len(env) > 0 {
		envVal = cty.ObjectVal(env)
	}
	return &hcl.EvalContext{Variables: map[string]cty.Value{"env": envVal}}
}

func findFiles(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	add := func(f string) {
		if _, ok := seen[f]; ok {
			return
		}
		seen[f] = struct{}{}
		files = append(files, f)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if !info.IsDir() {
			if filepath.Ext(path) != Extension {
				return nil, fmt.Errorf("%s is not a %s file", path, Extension)
			}
			add(path)
			continue
		}
		found, err := fsutil.FindFiles(path, Extension)
		if err != nil {
			return nil, fmt.Errorf("error walking %s: %w", path, err)
		}
		for _, f := range found {
			add(f)
		}
	}
	return files, nil
}
