package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateEntityID(t *testing.T) {
	m := NewManager()
	id1 := m.AllocateEntityID()
	id2 := m.AllocateEntityID()
	assert.NotEqual(t, id1, id2)
	assert.Greater(t, id2, id1)
}

func TestManagerAddRemove(t *testing.T) {
	reg := newTestRegistry(t)
	m := NewManager()

	p, err := NewPlayer(m.AllocateEntityID(), "steve", reg)
	require.NoError(t, err)
	m.Add(p)

	assert.True(t, p.IsSpawned())
	assert.Equal(t, 1, m.Count())
	assert.Same(t, p, m.GetByEntityID(p.ID))
	assert.Same(t, p, m.GetByUUID(p.UUID))

	m.Remove(p)
	assert.True(t, p.IsClosed())
	assert.Equal(t, 0, m.Count())
	assert.Nil(t, m.GetByEntityID(p.ID))
	assert.Nil(t, m.GetByUUID(p.UUID))
}

func TestManagerAddBumpsAllocator(t *testing.T) {
	reg := newTestRegistry(t)
	m := NewManager()

	e, err := NewPlayer(50, "restored", reg)
	require.NoError(t, err)
	m.Add(e)

	assert.Equal(t, int32(51), m.AllocateEntityID())
}

func TestManagerResolve(t *testing.T) {
	reg := newTestRegistry(t)
	m := NewManager()

	p, err := NewPlayer(m.AllocateEntityID(), "steve", reg)
	require.NoError(t, err)
	m.Add(p)

	assert.Same(t, p, m.Resolve("1"))
	assert.Same(t, p, m.Resolve(p.UUID.String()))
	assert.Nil(t, m.Resolve("2"))
	assert.Nil(t, m.Resolve("steve"))
}

func TestManagerAllOrdered(t *testing.T) {
	reg := newTestRegistry(t)
	m := NewManager()

	for _, id := range []int32{3, 1, 2} {
		e, err := NewPlayer(id, "", reg)
		require.NoError(t, err)
		m.Add(e)
	}

	var ids []int32
	m.ForEach(func(e *Entity) { ids = append(ids, e.ID) })
	assert.Equal(t, []int32{1, 2, 3}, ids)
}
