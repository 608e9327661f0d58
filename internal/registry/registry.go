package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/ctxlog"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/node"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
)

// ErrUnknownAction is returned when a name does not resolve to an entry.
var ErrUnknownAction = errors.New("unknown action")

// Module is the interface that all node modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

type scoped struct {
	scope string
	entry *Entry
}

// Registry holds every registered entry for a single application instance.
type Registry struct {
	mu       sync.RWMutex
	scopes   []string
	byScope  map[string][]*Entry
	extra    []*Entry
	resolved map[string]scoped
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		byScope: make(map[string][]*Entry),
	}
}

// Register adds an entry under a scope. Registering the same name twice in
// one scope, an empty name, or an entry without a factory panics.
func (r *Registry) Register(scope string, e Entry) {
	if e.Name == "" {
		panic(fmt.Sprintf("registry entry in scope '%s' has no name", scope))
	}
	if e.Factory == nil {
		panic(fmt.Sprintf("registry entry '%s' in scope '%s' has no factory", e.Name, scope))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries, known := r.byScope[scope]
	for _, existing := range entries {
		if existing.Name == e.Name {
			panic(fmt.Sprintf("action '%s' already registered in scope '%s'", e.Name, scope))
		}
	}
	if !known {
		r.scopes = append(r.scopes, scope)
	}
	slog.Debug("Registering action.", "scope", scope, "name", e.Name)
	entry := e
	r.byScope[scope] = append(entries, &entry)
	r.resolved = nil
}

// Build resolves the name table. Extra entries are merged last and win over
// scoped entries with the same name. Build is called implicitly by the
// lookup methods; calling it explicitly surfaces collision warnings on the
// logger carried by ctx.
func (r *Registry) Build(ctx context.Context, extra ...Entry) {
	logger := ctxlog.FromContext(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range extra {
		entry := e
		r.extra = append(r.extra, &entry)
	}
	r.resolved = r.resolve(logger)
}

// resolve must be called with the write lock held.
func (r *Registry) resolve(logger *slog.Logger) map[string]scoped {
	table := make(map[string]scoped)
	seenIn := make(map[string][]string)

	for _, scope := range r.scopes {
		for _, e := range r.byScope[scope] {
			owners := append(seenIn[e.Name], scope)
			seenIn[e.Name] = owners

			switch {
			case len(owners) == 1:
				table[e.Name] = scoped{scope: scope, entry: e}
			case len(owners) == 2:
				first := owners[0]
				if prev, ok := table[e.Name]; ok {
					table[first+"."+e.Name] = prev
				}
				table[e.Name] = scoped{scope: scope, entry: e}
				logger.Warn("Registry: Action name registered by more than one scope, use the qualified names.",
					"name", e.Name, "scopes", owners)
			default:
				delete(table, e.Name)
				logger.Warn("Registry: Action name is ambiguous and is only reachable through qualified names.",
					"name", e.Name, "scopes", owners)
			}
			table[scope+"."+e.Name] = scoped{scope: scope, entry: e}
		}
	}

	for _, e := range r.extra {
		table[e.Name] = scoped{entry: e}
	}
	return table
}

func (r *Registry) table() map[string]scoped {
	r.mu.RLock()
	resolved := r.resolved
	r.mu.RUnlock()
	if resolved != nil {
		return resolved
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resolved == nil {
		r.resolved = r.resolve(slog.Default())
	}
	return r.resolved
}

// Lookup returns the entry registered under name, qualified or not.
func (r *Registry) Lookup(name string) (*Entry, bool) {
	s, ok := r.table()[name]
	if !ok {
		return nil, false
	}
	return s.entry, true
}

// Names returns every resolvable name, sorted.
func (r *Registry) Names() []string {
	table := r.table()
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check validates init against the schema and validation hook of an action
// without building anything. The returned map has defaults filled in.
func (r *Registry) Check(action string, init value.Map) (value.Map, error) {
	e, ok := r.Lookup(action)
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownAction, action)
	}
	checked, err := e.Check(init)
	if err != nil {
		return nil, fmt.Errorf("action '%s': %w", action, err)
	}
	return checked, nil
}

// New checks init and builds a node for the given action.
func (r *Registry) New(action string, init value.Map) (node.Node, error) {
	e, ok := r.Lookup(action)
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownAction, action)
	}
	checked, err := e.Check(init)
	if err != nil {
		return nil, fmt.Errorf("action '%s': %w", action, err)
	}
	n, err := e.Factory(checked)
	if err != nil {
		return nil, fmt.Errorf("action '%s': failed to build node: %w", action, err)
	}
	if n == nil {
		return nil, fmt.Errorf("action '%s': factory returned no node", action)
	}
	return n, nil
}
