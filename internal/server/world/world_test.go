package world

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCharnyshevich/mc-attributes/internal/server/attrsync"
	"github.com/OCharnyshevich/mc-attributes/internal/server/config"
	"github.com/OCharnyshevich/mc-attributes/internal/server/entity"
	"github.com/OCharnyshevich/mc-attributes/internal/server/mob"
	"github.com/OCharnyshevich/mc-attributes/internal/server/packet"
	"github.com/OCharnyshevich/mc-attributes/internal/server/storage"
	"github.com/OCharnyshevich/mc-attributes/pkg/attribute"
	"github.com/OCharnyshevich/mc-attributes/pkg/protocol"
)

type sentPackets struct {
	mu      sync.Mutex
	packets []protocol.Packet
}

func (s *sentPackets) write(p protocol.Packet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packets = append(s.packets, p)
	return nil
}

func (s *sentPackets) get() []protocol.Packet {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]protocol.Packet, len(s.packets))
	copy(cp, s.packets)
	return cp
}

func newTestWorld(t *testing.T, store storage.Store) *World {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := attribute.NewRegistry()
	require.NoError(t, attribute.RegisterBuiltins(reg))
	cfg := config.DefaultConfig()
	cfg.TickRate = 100
	return New(cfg, log, reg, attrsync.New(log), store)
}

func newFileStore(t *testing.T, dir string) storage.Store {
	t.Helper()
	s, err := storage.NewFileStore(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return s
}

func TestLoadSpawnsOcelotsWhenEmpty(t *testing.T) {
	w := newTestWorld(t, newFileStore(t, t.TempDir()))
	w.ocelots = 2

	require.NoError(t, w.Load(context.Background()))
	assert.Equal(t, 2, w.Entities().Count())
	for _, e := range w.Entities().All() {
		assert.Equal(t, mob.Ocelot.Kind(), e.Kind)
		assert.Equal(t, 10.0, e.Health())
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	w := newTestWorld(t, newFileStore(t, dir))
	p, err := w.SpawnPlayer("steve")
	require.NoError(t, err)
	require.NoError(t, p.SetHealth(4))
	require.NoError(t, w.Save(ctx))

	w2 := newTestWorld(t, newFileStore(t, dir))
	require.NoError(t, w2.Load(ctx))
	require.Equal(t, 1, w2.Entities().Count())

	got := w2.Entities().GetByUUID(p.UUID)
	require.NotNil(t, got)
	assert.Equal(t, 4.0, got.Health())
	assert.Equal(t, "steve", got.Name)
}

func TestWorldWithoutStore(t *testing.T) {
	w := newTestWorld(t, nil)
	w.ocelots = 0
	require.NoError(t, w.Load(context.Background()))
	assert.Equal(t, 0, w.Entities().Count())
	assert.NoError(t, w.Save(context.Background()))
}

func TestTickSyncsAndReapsDeadMobs(t *testing.T) {
	w := newTestWorld(t, nil)
	sp := &sentPackets{}
	_, err := w.Subscribe(sp.write)
	require.NoError(t, err)

	o, err := w.SpawnMob(mob.Ocelot)
	require.NoError(t, err)
	p, err := w.SpawnPlayer("steve")
	require.NoError(t, err)

	w.Tick(context.Background())
	assert.Len(t, sp.get(), 2, "one update per new entity")

	require.NoError(t, o.Kill())
	require.NoError(t, p.Kill())
	w.Tick(context.Background())

	pkts := sp.get()
	require.Len(t, pkts, 4)
	ua := pkts[2].(*packet.UpdateAttributes)
	assert.Equal(t, int64(o.ID), ua.EntityID)
	entries, err := packet.DecodeAttributeEntries(ua.Entries)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, float32(0), entries[0].Value)

	assert.Nil(t, w.Entities().GetByEntityID(o.ID), "dead mob removed after its final sync")
	assert.NotNil(t, w.Entities().GetByEntityID(p.ID), "dead players stay")
}

func TestSubscribeSendsSnapshot(t *testing.T) {
	w := newTestWorld(t, nil)
	_, err := w.SpawnPlayer("a")
	require.NoError(t, err)
	w.Tick(context.Background())

	sp := &sentPackets{}
	id, err := w.Subscribe(sp.write)
	require.NoError(t, err)
	assert.NotZero(t, id)
	require.Len(t, sp.get(), 1, "snapshot of the existing entity")
	assert.Equal(t, 1, w.Syncer().Subscribers())
}

func TestSyncInterval(t *testing.T) {
	w := newTestWorld(t, nil)
	w.syncInterval = 3
	sp := &sentPackets{}
	_, err := w.Subscribe(sp.write)
	require.NoError(t, err)
	_, err = w.SpawnPlayer("a")
	require.NoError(t, err)

	w.Tick(context.Background())
	w.Tick(context.Background())
	assert.Empty(t, sp.get())
	w.Tick(context.Background())
	assert.Len(t, sp.get(), 1)
}

func TestRunAndDo(t *testing.T) {
	dir := t.TempDir()
	w := newTestWorld(t, newFileStore(t, dir))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	var (
		spawned  *entity.Entity
		spawnErr error
	)
	err := w.Do(ctx, func(w *World) {
		spawned, spawnErr = w.SpawnPlayer("steve")
	})
	require.NoError(t, err)
	require.NoError(t, spawnErr)
	require.NotNil(t, spawned)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("world did not stop")
	}

	// Run saves on shutdown.
	loaded, err := newFileStore(t, dir).LoadEntities(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, spawned.UUID.String(), loaded[0].UUID)
}

func TestDoCancelled(t *testing.T) {
	w := newTestWorld(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.Do(ctx, func(*World) {}), context.Canceled)
}
