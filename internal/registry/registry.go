// Package registry tracks the set of instruments currently being streamed.
// The query service activates symbols lazily as clients ask about them; the
// ingestion worker polls the set over HTTP and reconciles its subscriptions.
package registry

import (
	"sync"
)

// Registry is the in-memory active-symbol set. Symbols are never removed
// during the process lifetime. Safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	known   map[string]struct{}
	ordered []string
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		known: make(map[string]struct{}),
	}
}

// Activate adds a symbol to the active set. It reports whether the symbol
// was newly added; activating an already-active symbol is a no-op.
func (r *Registry) Activate(symbol string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.known[symbol]; ok {
		return false
	}
	r.known[symbol] = struct{}{}
	r.ordered = append(r.ordered, symbol)
	return true
}

// ListActive returns a copy of the active set in first-seen order. The lock
// is held only for the copy, never across any I/O the caller performs.
func (r *Registry) ListActive() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.ordered))
	copy(out, r.ordered)
	return out
}
