package scheduler

import (
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
)

// Contribution is one delivery waiting in a node's buffer entry.
type Contribution struct {
	From   string
	Edge   string
	Data   value.Map
	Params value.Map
	Weight int
}

// buffer is an insertion-ordered map of node name to contributions.
type buffer struct {
	order   []string
	entries map[string][]Contribution
}

func newBuffer() *buffer {
	return &buffer{entries: make(map[string][]Contribution)}
}

func (b *buffer) len() int {
	return len(b.order)
}

func (b *buffer) has(name string) bool {
	_, ok := b.entries[name]
	return ok
}

// touch makes sure name has an entry, appending an empty one at the back.
func (b *buffer) touch(name string) {
	if b.has(name) {
		return
	}
	b.entries[name] = nil
	b.order = append(b.order, name)
}

// push appends c to the entry of name, creating it at the back if needed.
func (b *buffer) push(name string, c Contribution) {
	b.touch(name)
	b.entries[name] = append(b.entries[name], c)
}

// requeue puts a popped entry back at the end of the buffer.
func (b *buffer) requeue(name string, contributions []Contribution) {
	b.entries[name] = contributions
	b.order = append(b.order, name)
}

// pop removes and returns the oldest entry.
func (b *buffer) pop() (string, []Contribution) {
	name := b.order[0]
	b.order = b.order[1:]
	contributions := b.entries[name]
	delete(b.entries, name)
	return name, contributions
}

// names returns the buffered node names in order.
func (b *buffer) names() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}
