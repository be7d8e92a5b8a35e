package live

import (
	"fmt"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Registry maps stream ids to open views so a filter change can reach the
// stream it belongs to.
type Registry struct {
	mu    sync.RWMutex
	views map[string]*View
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{views: make(map[string]*View)}
}

// Add stores v under a new random id.
func (r *Registry) Add(v *View) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("live.Registry.Add: %w", err)
	}
	r.mu.Lock()
	r.views[id] = v
	r.mu.Unlock()
	return id, nil
}

// Get returns the view stored under id.
func (r *Registry) Get(id string) (*View, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.views[id]
	return v, ok
}

// Remove forgets id. It does not close the view.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.views, id)
	r.mu.Unlock()
}

// Len returns the number of registered views.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views)
}

// CloseAll closes and forgets every view. Used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	views := r.views
	r.views = make(map[string]*View)
	r.mu.Unlock()

	for _, v := range views {
		v.Close()
	}
}
