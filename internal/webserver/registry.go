package webserver

import (
	"errors"
	"sync"
)

var ErrNilHandler = errors.New("webserver: handler is nil")

// Binding ties one exact URL to its handler.
type Binding struct {
	URL     string
	Handler Handler
}

// Registry holds URL bindings. Lookup is an exact, case-sensitive match
// and the most recent registration wins.
type Registry struct {
	mu sync.RWMutex
	// newest last; scans run back to front
	bindings []Binding
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register replaces any binding for url with h.
func (r *Registry) Register(url string, h Handler) error {
	if h == nil {
		return ErrNilHandler
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(url)
	r.bindings = append(r.bindings, Binding{URL: url, Handler: h})
	return nil
}

// Unregister removes every binding for url and reports how many it removed.
func (r *Registry) Unregister(url string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(url)
}

func (r *Registry) removeLocked(url string) int {
	kept := r.bindings[:0]
	for _, b := range r.bindings {
		if b.URL != url {
			kept = append(kept, b)
		}
	}
	removed := len(r.bindings) - len(kept)
	clear(r.bindings[len(kept):])
	r.bindings = kept
	return removed
}

// Lookup returns the handler bound to url.
func (r *Registry) Lookup(url string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := len(r.bindings) - 1; i >= 0; i-- {
		if r.bindings[i].URL == url {
			return r.bindings[i].Handler, true
		}
	}
	return nil, false
}

// URLs lists bound URLs in lookup order.
func (r *Registry) URLs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.bindings))
	for i := len(r.bindings) - 1; i >= 0; i-- {
		out = append(out, r.bindings[i].URL)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bindings)
}
