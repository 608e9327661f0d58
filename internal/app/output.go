package app

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/pipeline"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/registry"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

func newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	if title != "" {
		t.SetTitle(title)
	}
	return t
}

// WriteResult renders a run result. As YAML it is the unwrapped result; as
// tables it lists every terminal payload and then every node with its
// status and visit count.
func WriteResult(w io.Writer, res *pipeline.Result, asTable bool) error {
	if !asTable {
		out, err := yaml.Marshal(value.ToGo(res.Unwrap()))
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		_, err = w.Write(out)
		return err
	}

	outputs := newTable("Outputs")
	outputs.AppendHeader(table.Row{"Node", "#", "Payload"})
	for _, name := range res.Terminals() {
		for i, payload := range res.Get(name) {
			outputs.AppendRow(table.Row{name, i, value.Format(payload)})
		}
	}

	nodes := newTable("Nodes")
	nodes.AppendHeader(table.Row{"Node", "Status", "Visits"})
	for _, n := range res.Nodes {
		nodes.AppendRow(table.Row{n.Name, n.Status.String(), n.Visits})
	}

	_, err := fmt.Fprintf(w, "%s\n%s\n", outputs.Render(), nodes.Render())
	return err
}

// WriteResults renders batch results one after the other.
func WriteResults(w io.Writer, results []*pipeline.Result, asTable bool) error {
	for i, res := range results {
		if _, err := fmt.Fprintf(w, "# run %d\n", i); err != nil {
			return err
		}
		if err := WriteResult(w, res, asTable); err != nil {
			return err
		}
	}
	return nil
}

// WriteDescription renders the nodes and edges of a pipeline as tables.
func WriteDescription(w io.Writer, d *pipeline.Description) error {
	nodes := newTable("Nodes")
	nodes.AppendHeader(table.Row{"Node", "Action", "Inputs", "Outputs", "Role", "Shares"})
	for _, n := range d.Nodes {
		nodes.AppendRow(table.Row{
			n.Name,
			n.Action,
			slots(n.Inputs),
			slots(n.Outputs),
			role(n),
			n.SharedWith,
		})
	}

	edges := newTable("Edges")
	edges.AppendHeader(table.Row{"From", "Label", "To", "Weight"})
	for _, e := range d.Edges {
		edges.AppendRow(table.Row{e.From, e.Label, e.To, e.Weight})
	}

	_, err := fmt.Fprintf(w, "%s\n%s\nmax loops: %s\nstores: %s\n",
		nodes.Render(), edges.Render(), strconv.Itoa(d.MaxLoops), slots(d.Stores))
	return err
}

// WriteActions renders the registered actions with their parameters. A
// qualified name is listed only when its bare name resolves elsewhere.
func WriteActions(w io.Writer, reg *registry.Registry) error {
	t := newTable("Actions")
	t.AppendHeader(table.Row{"Action", "Parameters", "Description"})
	for _, name := range reg.Names() {
		e, _ := reg.Lookup(name)
		if _, bare, ok := strings.Cut(name, "."); ok {
			if alias, found := reg.Lookup(bare); found && alias == e {
				continue
			}
		}
		params := make([]string, 0, len(e.Schema))
		for _, p := range e.Schema {
			if p.Required {
				params = append(params, p.Name+"*")
			} else {
				params = append(params, p.Name)
			}
		}
		t.AppendRow(table.Row{name, slots(params), e.Description})
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func slots(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func role(n pipeline.NodeInfo) string {
	var roles []string
	if n.Entry {
		roles = append(roles, "entry")
	}
	if n.Terminal {
		roles = append(roles, "terminal")
	}
	if n.InputNode {
		roles = append(roles, "input")
	}
	if n.OutputNode {
		roles = append(roles, "output")
	}
	return slots(roles)
}
