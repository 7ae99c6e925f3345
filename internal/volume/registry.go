package volume

import (
	"fmt"
	"strings"
	"sync"
)

// Registry routes tokens to volumes by their ID prefix. IDs must not overlap,
// so at most one volume can claim any token.
type Registry struct {
	mu      sync.RWMutex
	volumes []Volume
	byID    map[string]Volume
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Volume)}
}

// Register adds v. The first registered volume becomes the default.
func (r *Registry) Register(v Volume) error {
	id := v.ID()
	if id == "" {
		return fmt.Errorf("volume id cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; exists {
		return fmt.Errorf("volume %q already registered", id)
	}
	for _, other := range r.volumes {
		if overlaps(id, other.ID()) {
			return fmt.Errorf("volume id %q overlaps %q", id, other.ID())
		}
	}

	r.volumes = append(r.volumes, v)
	r.byID[id] = v
	return nil
}

// Lookup returns the volume owning token.
func (r *Registry) Lookup(token string) (Volume, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, v := range r.volumes {
		id := v.ID()
		if len(token) >= len(id) && strings.EqualFold(token[:len(id)], id) {
			return v, nil
		}
	}
	return nil, ErrNotFound
}

// Get returns a volume by exact ID.
func (r *Registry) Get(id string) (Volume, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.byID[id]
	return v, ok
}

// Default returns the first registered volume.
func (r *Registry) Default() (Volume, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.volumes) == 0 {
		return nil, ErrUnavailable
	}
	return r.volumes[0], nil
}

// All returns volumes in registration order.
func (r *Registry) All() []Volume {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Volume, len(r.volumes))
	copy(out, r.volumes)
	return out
}

func overlaps(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	return strings.HasPrefix(a, b) || strings.HasPrefix(b, a)
}
