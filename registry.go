package lightbox

import (
	"fmt"
	"sync"
)

// registry holds the components of one kind keyed by id, remembering
// registration order. Lookups that miss can create the component through
// the registry's factory.
type registry[T comparable] struct {
	mu     sync.RWMutex
	items  map[string]T
	order  []string
	create func(id string) T
}

func newRegistry[T comparable](create func(id string) T) *registry[T] {
	return &registry[T]{
		items:  make(map[string]T),
		create: create,
	}
}

// Add registers v under id. Ids must be unique.
func (r *registry[T]) Add(id string, v T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[id]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicate, id)
	}
	r.items[id] = v
	r.order = append(r.order, id)
	return nil
}

// Get returns the component registered under id.
func (r *registry[T]) Get(id string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[id]
	return v, ok
}

// Ensure returns the component registered under id, creating and
// registering it when missing. It reports false when there is no factory.
func (r *registry[T]) Ensure(id string) (T, bool) {
	if v, ok := r.Get(id); ok {
		return v, true
	}
	var zero T
	if r.create == nil || id == "" {
		return zero, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.items[id]; ok {
		return v, true
	}
	v := r.create(id)
	r.items[id] = v
	r.order = append(r.order, id)
	return v, true
}

// First returns the earliest registered component.
func (r *registry[T]) First() (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var zero T
	if len(r.order) == 0 {
		return zero, false
	}
	return r.items[r.order[0]], true
}

// List returns the components in registration order.
func (r *registry[T]) List() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]T, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}
	return out
}

// Len returns the number of registered components.
func (r *registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// resolver finds a related component in three tiers: an explicit
// reference, then an id read from an attribute (which includes the bound
// element's data attributes), then a controller default.
type resolver[T comparable] struct {
	explicit T
	attr     string
	lookup   func(id string) (T, bool)
	fallback func() (T, bool)
}

func (r resolver[T]) resolve(c *Component) (T, bool) {
	var zero T
	if r.explicit != zero {
		return r.explicit, true
	}
	if r.attr != "" && r.lookup != nil {
		if id := c.AttrString(r.attr, ""); id != "" {
			if v, ok := r.lookup(id); ok {
				return v, true
			}
		}
	}
	if r.fallback != nil {
		return r.fallback()
	}
	return zero, false
}
