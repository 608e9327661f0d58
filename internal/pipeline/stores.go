package pipeline

import (
	"fmt"
	"sort"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/node"
)

// AddStore attaches an external resource under name. Every node call
// receives it. Adding a name twice replaces the previous store.
func (p *Pipeline) AddStore(name string, store any) error {
	if name == "" {
		return fmt.Errorf("%w: store name cannot be empty", ErrConstruction)
	}
	if store == nil {
		return fmt.Errorf("%w: store '%s' is nil", ErrConstruction, name)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.stores[name]; ok {
		p.log().Warn("Stores: Replacing store.", "store", name)
	}
	p.stores[name] = store
	return nil
}

// ListStores returns the names of the attached stores, sorted.
func (p *Pipeline) ListStores() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.stores))
	for name := range p.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetStore returns the store attached under name.
func (p *Pipeline) GetStore(name string) (any, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.stores.Get(name)
}

func (p *Pipeline) storesSnapshot() node.Stores {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(node.Stores, len(p.stores))
	for name, s := range p.stores {
		out[name] = s
	}
	return out
}
