package entity

import (
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Manager tracks all entities in the world.
type Manager struct {
	mu           sync.RWMutex
	entities     map[int32]*Entity   // entityID → Entity
	byUUID       map[uuid.UUID]int32 // UUID → entityID
	nextEntityID atomic.Int32
}

// NewManager creates an empty entity manager.
func NewManager() *Manager {
	return &Manager{
		entities: make(map[int32]*Entity),
		byUUID:   make(map[uuid.UUID]int32),
	}
}

// AllocateEntityID returns the next unique entity ID.
func (m *Manager) AllocateEntityID() int32 {
	return m.nextEntityID.Add(1)
}

// Add registers an entity and marks it spawned.
func (m *Manager) Add(e *Entity) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entities[e.ID] = e
	m.byUUID[e.UUID] = e.ID

	// Keep allocation ahead of restored IDs.
	for {
		cur := m.nextEntityID.Load()
		if cur >= e.ID || m.nextEntityID.CompareAndSwap(cur, e.ID) {
			break
		}
	}
	e.Spawn()
}

// Remove unregisters an entity and closes it.
func (m *Manager) Remove(e *Entity) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entities, e.ID)
	delete(m.byUUID, e.UUID)
	e.Close()
}

// GetByEntityID returns the entity with the given ID, or nil.
func (m *Manager) GetByEntityID(id int32) *Entity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entities[id]
}

// GetByUUID returns the entity with the given UUID, or nil.
func (m *Manager) GetByUUID(id uuid.UUID) *Entity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	eid, ok := m.byUUID[id]
	if !ok {
		return nil
	}
	return m.entities[eid]
}

// Resolve finds an entity by numeric entity ID or UUID string.
func (m *Manager) Resolve(ref string) *Entity {
	if id, err := strconv.ParseInt(ref, 10, 32); err == nil {
		return m.GetByEntityID(int32(id))
	}
	if u, err := uuid.Parse(ref); err == nil {
		return m.GetByUUID(u)
	}
	return nil
}

// ForEach calls fn for every entity in ascending entity ID order.
func (m *Manager) ForEach(fn func(*Entity)) {
	for _, e := range m.All() {
		fn(e)
	}
}

// All returns the entities in ascending entity ID order.
func (m *Manager) All() []*Entity {
	m.mu.RLock()
	out := make([]*Entity, 0, len(m.entities))
	for _, e := range m.entities {
		out = append(out, e)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns the number of entities.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entities)
}
