package attribute_test

import (
	"testing"

	"github.com/OCharnyshevich/mc-attributes/pkg/attribute"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap(t *testing.T) {
	r := attribute.NewRegistry()
	require.NoError(t, attribute.RegisterBuiltins(r))

	m := attribute.NewMap()
	for _, id := range []int{attribute.Health, attribute.Exhaustion, attribute.Absorption} {
		a, ok := r.ByID(id)
		require.True(t, ok)
		m.Add(a)
	}

	assert.Equal(t, 3, m.Len())

	all := m.All()
	require.Len(t, all, 3)
	assert.Equal(t, attribute.Absorption, all[0].ID())
	assert.Equal(t, attribute.Exhaustion, all[1].ID())
	assert.Equal(t, attribute.Health, all[2].ID())

	desync := m.Desynchronized()
	require.Len(t, desync, 2, "exhaustion is not syncable")
	assert.Equal(t, attribute.Absorption, desync[0].ID())
	assert.Equal(t, attribute.Health, desync[1].ID())

	for _, a := range desync {
		a.MarkSynchronized(true)
	}
	assert.Empty(t, m.Desynchronized())

	health, ok := m.Get(attribute.Health)
	require.True(t, ok)
	require.NoError(t, health.SetValue(3))
	desync = m.Desynchronized()
	require.Len(t, desync, 1)
	assert.Same(t, health, desync[0])

	_, ok = m.Get(attribute.Hunger)
	assert.False(t, ok)
}
