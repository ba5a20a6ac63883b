package packet

import (
	"bytes"
	"math"
	"testing"

	"github.com/OCharnyshevich/mc-attributes/pkg/attribute"
	"github.com/OCharnyshevich/mc-attributes/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeAttributeEntries(t *testing.T) {
	r := attribute.NewRegistry()
	require.NoError(t, attribute.RegisterBuiltins(r))

	health, _ := r.ByID(attribute.Health)
	require.NoError(t, health.SetValue(12.5))
	absorption, _ := r.ByID(attribute.Absorption)

	data := EncodeAttributeEntries([]*attribute.Attribute{health, absorption})

	entries, err := DecodeAttributeEntries(data)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, AttributeEntry{Min: 0, Max: 20, Value: 12.5, Default: 20, Name: "minecraft:health"}, entries[0])
	assert.Equal(t, float32(math.MaxFloat32), entries[1].Max)
	assert.Equal(t, "minecraft:absorption", entries[1].Name)
}

func TestEncodeAttributeEntriesLayout(t *testing.T) {
	a, err := attribute.New(1, "x", 0, 1, 0.5, true)
	require.NoError(t, err)

	data := EncodeAttributeEntries([]*attribute.Attribute{a})
	// count(1) + 4*f32(16) + name length(1) + name(1)
	assert.Len(t, data, 19)
	assert.Equal(t, byte(1), data[0])
	assert.Equal(t, "x", string(data[len(data)-1:]))
}

func TestDecodeAttributeEntries_Truncated(t *testing.T) {
	a, err := attribute.New(1, "minecraft:health", 0, 20, 20, true)
	require.NoError(t, err)
	data := EncodeAttributeEntries([]*attribute.Attribute{a})

	_, err = DecodeAttributeEntries(data[:len(data)-3])
	assert.Error(t, err)

	_, err = DecodeAttributeEntries(append(data, 0x00))
	assert.Error(t, err)
}

func TestUpdateAttributesFraming(t *testing.T) {
	a, err := attribute.New(attribute.Health, "minecraft:health", 0, 20, 20, true)
	require.NoError(t, err)

	var buf bytes.Buffer
	out := &UpdateAttributes{EntityID: 300, Entries: EncodeAttributeEntries([]*attribute.Attribute{a})}
	require.NoError(t, protocol.WritePacket(&buf, out))

	in := &UpdateAttributes{}
	require.NoError(t, protocol.ReadPacket(&buf, in))
	assert.Equal(t, int64(300), in.EntityID)

	entries, err := DecodeAttributeEntries(in.Entries)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, float32(20), entries[0].Value)
}
