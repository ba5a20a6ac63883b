package attribute

import "sort"

// Map is the attribute set owned by a single entity, keyed by id.
// It is not safe for concurrent use.
type Map struct {
	attrs map[int]*Attribute
}

// NewMap returns an empty attribute set.
func NewMap() *Map {
	return &Map{attrs: make(map[int]*Attribute)}
}

// Add stores a under its id, replacing any attribute with the same id.
func (m *Map) Add(a *Attribute) {
	m.attrs[a.ID()] = a
}

// Get returns the attribute stored under id.
func (m *Map) Get(id int) (*Attribute, bool) {
	a, ok := m.attrs[id]
	return a, ok
}

// Len returns the number of attributes in the set.
func (m *Map) Len() int { return len(m.attrs) }

// All returns the attributes ordered by id.
func (m *Map) All() []*Attribute {
	out := make([]*Attribute, 0, len(m.attrs))
	for _, a := range m.attrs {
		out = append(out, a)
	}
	sortByID(out)
	return out
}

// Desynchronized returns the attributes that need to be sent, ordered by id.
func (m *Map) Desynchronized() []*Attribute {
	var out []*Attribute
	for _, a := range m.attrs {
		if a.Desynchronized() {
			out = append(out, a)
		}
	}
	sortByID(out)
	return out
}

func sortByID(attrs []*Attribute) {
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].ID() < attrs[j].ID() })
}
