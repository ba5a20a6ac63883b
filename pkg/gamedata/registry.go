package gamedata

type AttributeRegistry interface {
	ByName(name string) (Attribute, bool)
	ByResource(resource string) (Attribute, bool)
	All() []Attribute
}

type attributeTable struct {
	entries    []Attribute
	byName     map[string]int
	byResource map[string]int
}

func newAttributeTable(entries []Attribute) *attributeTable {
	t := &attributeTable{
		entries:    entries,
		byName:     make(map[string]int, len(entries)),
		byResource: make(map[string]int, len(entries)),
	}
	for i, a := range entries {
		t.byName[a.Name] = i
		t.byResource[a.Resource] = i
	}
	return t
}

func (t *attributeTable) ByName(name string) (Attribute, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Attribute{}, false
	}
	return t.entries[i], true
}

func (t *attributeTable) ByResource(resource string) (Attribute, bool) {
	i, ok := t.byResource[resource]
	if !ok {
		return Attribute{}, false
	}
	return t.entries[i], true
}

func (t *attributeTable) All() []Attribute {
	out := make([]Attribute, len(t.entries))
	copy(out, t.entries)
	return out
}
