// Package preview hands out revocable handles for uploaded image bytes so the
// page can display a selection before anything is generated from it.
package preview

import (
	"sync"

	"github.com/google/uuid"
)

// Entry is the payload addressed by a handle.
type Entry struct {
	MIMEType string
	Data     []byte
}

// Registry maps handle ids to preview payloads.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
	prefix  string
}

// NewRegistry returns an empty registry whose URLs start with prefix.
func NewRegistry(prefix string) *Registry {
	return &Registry{entries: make(map[string]Entry), prefix: prefix}
}

// Put stores data under a fresh handle and returns the handle id and URL.
func (r *Registry) Put(mimeType string, data []byte) (id, url string) {
	id = uuid.NewString()
	r.mu.Lock()
	r.entries[id] = Entry{MIMEType: mimeType, Data: data}
	r.mu.Unlock()
	return id, r.URL(id)
}

// URL returns the public address for id.
func (r *Registry) URL(id string) string {
	return r.prefix + "/" + id
}

// Get resolves a handle. Revoked or unknown handles report false.
func (r *Registry) Get(id string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return e, ok
}

// Revoke releases a handle. It reports whether the handle was live.
func (r *Registry) Revoke(id string) bool {
	if id == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	return true
}

// Len reports the number of live handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
