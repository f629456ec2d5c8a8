package generation

import "sync"

// Canceller is an in-flight generation that can be aborted.
type Canceller interface {
	Cancel()
}

// Registry maps a work day key to its in-flight generation.
type Registry struct {
	mu      sync.Mutex
	entries map[string]Canceller
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Canceller)}
}

// Register stores h under key. A previous entry is replaced without being cancelled.
func (r *Registry) Register(key string, h Canceller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = h
}

// Unregister removes the entry for key without cancelling it.
func (r *Registry) Unregister(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
}

// UnregisterIf removes the entry for key only if it is still h, so a finished generation
// does not drop a newer one registered under the same key.
func (r *Registry) UnregisterIf(key string, h Canceller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries[key] == h {
		delete(r.entries, key)
	}
}

// Cancel cancels and removes the entry for key. It reports whether one existed.
func (r *Registry) Cancel(key string) bool {
	r.mu.Lock()
	h, ok := r.entries[key]
	delete(r.entries, key)
	r.mu.Unlock()

	if ok {
		h.Cancel()
	}
	return ok
}

func (r *Registry) IsGenerating(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[key]
	return ok
}

// Keys returns the keys with an in-flight generation.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	return keys
}
