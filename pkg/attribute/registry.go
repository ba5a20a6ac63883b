package attribute

import (
	"fmt"
	"sync"
)

// Registry holds one prototype attribute per id. Lookups hand out copies so
// callers can never mutate a prototype they did not create themselves.
type Registry struct {
	mu     sync.RWMutex
	protos map[int]*Attribute
	order  []int // registration order, used by ByName and All
	frozen bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{protos: make(map[int]*Attribute)}
}

// Add builds a prototype and stores it at id, replacing any previous one.
// The stored prototype itself is returned so the caller can tune it further;
// callers that want an independent instance must Clone it.
func (r *Registry) Add(id int, name string, min, max, def float64, syncable bool) (*Attribute, error) {
	a, err := New(id, name, min, max, def, syncable)
	if err != nil {
		return nil, fmt.Errorf("add attribute %d (%s): %w", id, name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return nil, fmt.Errorf("add attribute %d (%s): %w", id, name, ErrFrozen)
	}
	if _, ok := r.protos[id]; !ok {
		r.order = append(r.order, id)
	}
	r.protos[id] = a
	return a, nil
}

// AddDefinitions adds defs in order and stops at the first invalid one.
func (r *Registry) AddDefinitions(defs []Definition) error {
	for _, d := range defs {
		if _, err := r.Add(d.ID, d.Name, d.Min, d.Max, d.Default, d.IsSyncable()); err != nil {
			return err
		}
	}
	return nil
}

// ByID returns a copy of the prototype registered at id.
func (r *Registry) ByID(id int) (*Attribute, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.protos[id]
	if !ok {
		return nil, false
	}
	return a.Clone(), true
}

// ByName returns a copy of the first prototype, in registration order,
// whose name matches.
func (r *Registry) ByName(name string) (*Attribute, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if a := r.protos[id]; a.name == name {
			return a.Clone(), true
		}
	}
	return nil, false
}

// All returns copies of every prototype in registration order.
func (r *Registry) All() []*Attribute {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Attribute, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.protos[id].Clone())
	}
	return out
}

// Len returns the number of registered prototypes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Freeze makes the registry read-only. Later calls to Add fail with ErrFrozen.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Frozen reports whether Freeze was called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

var (
	defaultRegistry = NewRegistry()
	initOnce        sync.Once
)

// Init fills the process-wide registry with the builtin attributes. It is
// safe to call more than once; only the first call has an effect.
func Init() {
	initOnce.Do(func() {
		if err := RegisterBuiltins(defaultRegistry); err != nil {
			panic(fmt.Sprintf("register builtin attributes: %v", err))
		}
	})
}

// Default returns the process-wide registry. Call Init before the first lookup.
func Default() *Registry { return defaultRegistry }

// ByID looks id up in the process-wide registry.
func ByID(id int) (*Attribute, bool) { return defaultRegistry.ByID(id) }

// ByName looks name up in the process-wide registry.
func ByName(name string) (*Attribute, bool) { return defaultRegistry.ByName(name) }
