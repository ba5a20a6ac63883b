package packet

import (
	"bytes"
	"fmt"

	"github.com/OCharnyshevich/mc-attributes/pkg/attribute"
	"github.com/OCharnyshevich/mc-attributes/pkg/protocol"
)

// UpdateAttributes carries the attribute values of one entity (clientbound 0x1D).
// Entries is produced by EncodeAttributeEntries.
type UpdateAttributes struct {
	EntityID int64  `mc:"varlong"`
	Entries  []byte `mc:"rest"`
}

func (UpdateAttributes) PacketID() int32 { return 0x1D }

// AttributeEntry is the wire form of one attribute.
type AttributeEntry struct {
	Min     float32
	Max     float32
	Value   float32
	Default float32
	Name    string
}

// maxEntries bounds the entry count accepted by DecodeAttributeEntries.
const maxEntries = 1024

// EncodeAttributeEntries writes a VarInt count followed by min, max,
// value, default (f32) and name for every attribute.
func EncodeAttributeEntries(attrs []*attribute.Attribute) []byte {
	var buf bytes.Buffer
	_, _ = protocol.WriteVarInt(&buf, int32(len(attrs)))
	for _, a := range attrs {
		_ = protocol.WriteF32(&buf, float32(a.Min()))
		_ = protocol.WriteF32(&buf, float32(a.Max()))
		_ = protocol.WriteF32(&buf, float32(a.Value()))
		_ = protocol.WriteF32(&buf, float32(a.Default()))
		_, _ = protocol.WriteString(&buf, a.Name())
	}
	return buf.Bytes()
}

// DecodeAttributeEntries parses the Entries field of UpdateAttributes.
func DecodeAttributeEntries(data []byte) ([]AttributeEntry, error) {
	r := bytes.NewReader(data)
	count, _, err := protocol.ReadVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("read attribute count: %w", err)
	}
	if count < 0 || count > maxEntries {
		return nil, fmt.Errorf("attribute count out of range: %d", count)
	}

	entries := make([]AttributeEntry, 0, count)
	for i := range int(count) {
		var e AttributeEntry
		for _, dst := range []*float32{&e.Min, &e.Max, &e.Value, &e.Default} {
			if *dst, err = protocol.ReadF32(r); err != nil {
				return nil, fmt.Errorf("read attribute %d: %w", i, err)
			}
		}
		if e.Name, err = protocol.ReadString(r); err != nil {
			return nil, fmt.Errorf("read attribute %d name: %w", i, err)
		}
		entries = append(entries, e)
	}
	if r.Len() > 0 {
		return nil, fmt.Errorf("read attributes: %d trailing bytes", r.Len())
	}
	return entries, nil
}
