package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/coldgraph"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/ctxlog"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/hclconfig"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/registry"
)

// Document cools the pipeline down into its serializable form.
func (p *Pipeline) Document(ctx context.Context) (*coldgraph.Document, error) {
	doc, err := coldgraph.CoolDown(p.withLogger(ctx), p.graph)
	if err != nil {
		return nil, err
	}
	doc.Graph.MaxLoops = p.maxLoops
	return doc, nil
}

// Save writes the pipeline to path as a YAML document.
func (p *Pipeline) Save(ctx context.Context, path string) error {
	ctx = p.withLogger(ctx)
	doc, err := p.Document(ctx)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: failed to create '%s': %w", ErrSerialization, path, err)
	}
	if err := coldgraph.Encode(f, doc); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: failed to write '%s': %w", ErrSerialization, path, err)
	}
	ctxlog.FromContext(ctx).Info("Save: Pipeline saved.", "path", path, "nodes", len(doc.Nodes))
	return nil
}

// Load builds a pipeline from a YAML document (.yaml, .yml) or from an HCL
// definition (.hcl file or a directory of them). The result is validated
// unless WithoutValidation is given.
func Load(ctx context.Context, path string, reg *registry.Registry, opts ...Option) (*Pipeline, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeserialization, err)
	}
	if info.IsDir() {
		return loadHCL(ctx, reg, opts, path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return loadDocument(ctx, path, reg, opts)
	case hclconfig.Extension:
		return loadHCL(ctx, reg, opts, path)
	default:
		return nil, fmt.Errorf("%w: unsupported file type '%s', expected .yaml, .yml or .hcl", ErrDeserialization, filepath.Ext(path))
	}
}

func loadDocument(ctx context.Context, path string, reg *registry.Registry, opts []Option) (*Pipeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeserialization, err)
	}
	defer f.Close()

	doc, err := coldgraph.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("'%s': %w", path, err)
	}
	return FromDocument(ctx, doc, reg, opts...)
}

// FromDocument rebuilds a pipeline from a cold document. Edge labels are
// checked against the node contracts once the nodes are warm, with or
// without validation.
func FromDocument(ctx context.Context, doc *coldgraph.Document, reg *registry.Registry, opts ...Option) (*Pipeline, error) {
	p := New(reg, append([]Option{WithMaxLoops(doc.Graph.MaxLoops)}, opts...)...)
	ctx = p.withLogger(ctx)
	logger := ctxlog.FromContext(ctx)

	g, err := coldgraph.FromDocument(ctx, doc)
	if err != nil {
		return nil, err
	}
	p.graph = g

	if p.skipValidation {
		logger.Info("Load: Skipping validation.")
	} else if err := p.Validate(ctx); err != nil {
		return nil, err
	}

	if err := coldgraph.WarmUp(ctx, p.graph, p.registry); err != nil {
		return nil, err
	}
	if err := p.checkEdges(ctx); err != nil {
		return nil, err
	}
	logger.Debug("Load: Pipeline warmed up.", "nodes", len(doc.Nodes), "links", len(doc.Links))
	return p, nil
}

func loadHCL(ctx context.Context, reg *registry.Registry, opts []Option, paths ...string) (*Pipeline, error) {
	def, err := hclconfig.Load(ctx, paths...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeserialization, err)
	}
	return FromDefinition(ctx, def, reg, opts...)
}

// FromDefinition builds a pipeline from a decoded HCL definition.
func FromDefinition(ctx context.Context, def *hclconfig.Definition, reg *registry.Registry, opts ...Option) (*Pipeline, error) {
	p := New(reg, append([]Option{WithMaxLoops(def.MaxLoops)}, opts...)...)
	ctx = p.withLogger(ctx)
	logger := ctxlog.FromContext(ctx)

	for _, n := range def.Nodes {
		nodeOpts := []NodeOption{WithParameters(n.Parameters)}
		if n.Input {
			nodeOpts = append(nodeOpts, AsInputNode())
		}
		if n.Output {
			nodeOpts = append(nodeOpts, AsOutputNode())
		}

		var err error
		if n.Shares != "" {
			err = p.AddShared(ctx, n.Name, n.Shares, nodeOpts...)
		} else {
			err = p.AddAction(ctx, n.Name, n.Action, n.Init, nodeOpts...)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", n.Range, err)
		}
	}
	for _, c := range def.Connections {
		if err := p.Connect(ctx, c.Path, c.Weights...); err != nil {
			return nil, fmt.Errorf("%s: %w", c.Range, err)
		}
	}

	if p.skipValidation {
		logger.Info("Load: Skipping validation.")
	} else if err := p.Validate(ctx); err != nil {
		return nil, err
	}
	logger.Debug("Load: Pipeline built from definition.", "files", def.Files, "nodes", len(def.Nodes))
	return p, nil
}
