package attrsync

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCharnyshevich/mc-attributes/internal/server/entity"
	"github.com/OCharnyshevich/mc-attributes/internal/server/packet"
	"github.com/OCharnyshevich/mc-attributes/pkg/attribute"
	"github.com/OCharnyshevich/mc-attributes/pkg/protocol"
)

// packetCollector records packets sent to a subscriber.
type packetCollector struct {
	mu      sync.Mutex
	packets []protocol.Packet
	fail    bool
}

func (pc *packetCollector) writePacket(p protocol.Packet) error {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.fail {
		return errors.New("broken pipe")
	}
	pc.packets = append(pc.packets, p)
	return nil
}

func (pc *packetCollector) get() []protocol.Packet {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	cp := make([]protocol.Packet, len(pc.packets))
	copy(cp, pc.packets)
	return cp
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPlayer(t *testing.T, id int32) *entity.Entity {
	t.Helper()
	r := attribute.NewRegistry()
	require.NoError(t, attribute.RegisterBuiltins(r))
	p, err := entity.NewPlayer(id, "p", r)
	require.NoError(t, err)
	return p
}

func decode(t *testing.T, p protocol.Packet) (int64, []packet.AttributeEntry) {
	t.Helper()
	ua, ok := p.(*packet.UpdateAttributes)
	require.True(t, ok, "expected UpdateAttributes, got %T", p)
	entries, err := packet.DecodeAttributeEntries(ua.Entries)
	require.NoError(t, err)
	return ua.EntityID, entries
}

func TestSyncSendsOnlyDesynchronized(t *testing.T) {
	s := New(newTestLogger())
	pc := &packetCollector{}
	s.Subscribe(pc.writePacket)

	p := newTestPlayer(t, 1)

	// First pass sends every syncable attribute (new attributes are dirty).
	assert.Equal(t, 1, s.Sync([]*entity.Entity{p}))
	pkts := pc.get()
	require.Len(t, pkts, 1)
	eid, entries := decode(t, pkts[0])
	assert.Equal(t, int64(1), eid)
	assert.Len(t, entries, 8, "exhaustion, follow range and attack damage are not syncable")

	// Nothing changed: nothing to send.
	assert.Equal(t, 0, s.Sync([]*entity.Entity{p}))
	assert.Len(t, pc.get(), 1)

	require.NoError(t, p.SetHealth(15))
	assert.Equal(t, 1, s.Sync([]*entity.Entity{p}))
	pkts = pc.get()
	require.Len(t, pkts, 2)
	_, entries = decode(t, pkts[1])
	require.Len(t, entries, 1)
	assert.Equal(t, "minecraft:health", entries[0].Name)
	assert.Equal(t, float32(15), entries[0].Value)

	h, _ := p.Attribute(attribute.Health)
	assert.False(t, h.Desynchronized())
}

func TestSyncWithoutSubscribersMarksSynchronized(t *testing.T) {
	s := New(newTestLogger())
	p := newTestPlayer(t, 1)

	assert.Equal(t, 1, s.Sync([]*entity.Entity{p}))
	assert.Empty(t, p.Attributes().Desynchronized())
}

func TestSyncFailedWriteKeepsDirtyAndDropsSubscriber(t *testing.T) {
	s := New(newTestLogger())
	good := &packetCollector{}
	bad := &packetCollector{fail: true}
	s.Subscribe(good.writePacket)
	s.Subscribe(bad.writePacket)

	p := newTestPlayer(t, 1)
	s.Sync([]*entity.Entity{p})

	assert.Equal(t, 1, s.Subscribers())
	assert.NotEmpty(t, p.Attributes().Desynchronized(), "attributes stay pending after a failed delivery")

	s.Sync([]*entity.Entity{p})
	assert.Empty(t, p.Attributes().Desynchronized())
	assert.Len(t, good.get(), 2)
}

func TestSyncFailedSubscriberSkippedForRestOfPass(t *testing.T) {
	s := New(newTestLogger())
	good := &packetCollector{}
	bad := &packetCollector{fail: true}
	s.Subscribe(good.writePacket)
	s.Subscribe(bad.writePacket)

	p1 := newTestPlayer(t, 1)
	p2 := newTestPlayer(t, 2)
	entities := []*entity.Entity{p1, p2}

	assert.Equal(t, 2, s.Sync(entities))
	assert.NotEmpty(t, p1.Attributes().Desynchronized(), "the failed entity is retried")
	assert.Empty(t, p2.Attributes().Desynchronized(), "later entities only go to live subscribers")
	assert.Len(t, good.get(), 2)

	assert.Equal(t, 1, s.Sync(entities))
	assert.Empty(t, p1.Attributes().Desynchronized())

	pkts := good.get()
	require.Len(t, pkts, 3, "p2 is not delivered twice")
	id, _ := decode(t, pkts[2])
	assert.Equal(t, int64(1), id)
}

func TestSyncSkipsClosedEntities(t *testing.T) {
	s := New(newTestLogger())
	pc := &packetCollector{}
	s.Subscribe(pc.writePacket)

	p := newTestPlayer(t, 1)
	p.Close()

	assert.Equal(t, 0, s.Sync([]*entity.Entity{p}))
	assert.Empty(t, pc.get())
}

func TestUnsubscribe(t *testing.T) {
	s := New(newTestLogger())
	pc := &packetCollector{}
	id := s.Subscribe(pc.writePacket)
	s.Unsubscribe(id)
	s.Unsubscribe(999)

	s.Sync([]*entity.Entity{newTestPlayer(t, 1)})
	assert.Empty(t, pc.get())
	assert.Equal(t, 0, s.Subscribers())
}

func TestSnapshotLeavesFlagsUntouched(t *testing.T) {
	s := New(newTestLogger())
	p := newTestPlayer(t, 4)
	for _, a := range p.Attributes().All() {
		a.MarkSynchronized(true)
	}

	pkts := s.Snapshot([]*entity.Entity{p})
	require.Len(t, pkts, 1)
	eid, entries := decode(t, pkts[0])
	assert.Equal(t, int64(4), eid)
	assert.Len(t, entries, 8)
	assert.Empty(t, p.Attributes().Desynchronized())
}
