// Package world runs the simulation loop. The goroutine running World.Run
// is the only one that reads or mutates entity attributes; other
// goroutines hand work to it through Do.
package world

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/OCharnyshevich/mc-attributes/internal/server/attrsync"
	"github.com/OCharnyshevich/mc-attributes/internal/server/config"
	"github.com/OCharnyshevich/mc-attributes/internal/server/entity"
	"github.com/OCharnyshevich/mc-attributes/internal/server/mob"
	"github.com/OCharnyshevich/mc-attributes/internal/server/storage"
	"github.com/OCharnyshevich/mc-attributes/pkg/attribute"
)

type op struct {
	fn   func(*World)
	done chan struct{}
}

// World owns the entities and drives attribute synchronization and saving.
type World struct {
	log      *slog.Logger
	reg      *attribute.Registry
	entities *entity.Manager
	syncer   *attrsync.Syncer
	store    storage.Store

	tickRate     int
	syncInterval int
	saveInterval int
	ocelots      int

	ops  chan op
	tick int64
}

// New creates a World. store may be nil, in which case nothing is persisted.
func New(cfg *config.Config, log *slog.Logger, reg *attribute.Registry, syncer *attrsync.Syncer, store storage.Store) *World {
	return &World{
		log:          log.With("component", "world"),
		reg:          reg,
		entities:     entity.NewManager(),
		syncer:       syncer,
		store:        store,
		tickRate:     cfg.TickRate,
		syncInterval: cfg.SyncInterval,
		saveInterval: cfg.SaveInterval,
		ocelots:      cfg.Ocelots,
		ops:          make(chan op),
	}
}

func (w *World) Entities() *entity.Manager     { return w.entities }
func (w *World) Registry() *attribute.Registry { return w.reg }
func (w *World) Syncer() *attrsync.Syncer      { return w.syncer }

// CurrentTick returns the number of ticks run so far. Only meaningful on
// the world goroutine.
func (w *World) CurrentTick() int64 { return w.tick }

// Run ticks the world until ctx is cancelled, then saves once more.
func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.tickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.log.Info("world started", "tickRate", w.tickRate, "entities", w.entities.Count())

	for {
		select {
		case <-ctx.Done():
			// The run context is gone; give the final save its own deadline.
			saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := w.Save(saveCtx); err != nil {
				return fmt.Errorf("final save: %w", err)
			}
			w.log.Info("world stopped", "ticks", w.tick)
			return nil
		case o := <-w.ops:
			o.fn(w)
			close(o.done)
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Do runs fn on the world goroutine and waits for it to finish.
func (w *World) Do(ctx context.Context, fn func(*World)) error {
	o := op{fn: fn, done: make(chan struct{})}
	select {
	case w.ops <- o:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-o.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Tick advances the world by one tick.
func (w *World) Tick(ctx context.Context) {
	w.tick++

	if w.tick%int64(w.syncInterval) == 0 {
		w.syncer.Sync(w.entities.All())
		w.reapDead()
	}

	if w.saveInterval > 0 && w.tick%int64(w.saveInterval) == 0 {
		if err := w.Save(ctx); err != nil {
			w.log.Error("periodic save", "error", err)
		}
	}
}

// reapDead removes dead mobs once their final health was synchronized.
func (w *World) reapDead() {
	for _, e := range w.entities.All() {
		if e.IsPlayer() || e.IsAlive() {
			continue
		}
		w.entities.Remove(e)
		w.log.Info("entity died", "entity", e.String())
	}
}

// Subscribe sends a full snapshot of every entity to write and registers
// it for future updates.
func (w *World) Subscribe(write attrsync.WriteFunc) (int, error) {
	for _, p := range w.syncer.Snapshot(w.entities.All()) {
		if err := write(p); err != nil {
			return 0, fmt.Errorf("send attribute snapshot: %w", err)
		}
	}
	return w.syncer.Subscribe(write), nil
}

// SpawnMob creates a mob of the given definition and adds it to the world.
func (w *World) SpawnMob(d *mob.Definition) (*entity.Entity, error) {
	e, err := mob.Spawn(d, w.entities.AllocateEntityID(), w.reg)
	if err != nil {
		return nil, err
	}
	w.entities.Add(e)
	w.log.Info("entity spawned", "entity", e.String(), "uuid", e.UUID)
	return e, nil
}

// SpawnPlayer creates a player entity and adds it to the world.
func (w *World) SpawnPlayer(name string) (*entity.Entity, error) {
	e, err := entity.NewPlayer(w.entities.AllocateEntityID(), name, w.reg)
	if err != nil {
		return nil, err
	}
	w.entities.Add(e)
	w.log.Info("entity spawned", "entity", e.String(), "uuid", e.UUID)
	return e, nil
}

// Load restores entities from storage. An empty store gets the configured
// number of ocelots instead.
func (w *World) Load(ctx context.Context) error {
	var saved []*storage.EntityData
	if w.store != nil {
		var err error
		if saved, err = w.store.LoadEntities(ctx); err != nil {
			return fmt.Errorf("load entities: %w", err)
		}
	}

	for _, ed := range saved {
		e, skipped, err := storage.RestoreEntity(ed, w.reg)
		if err != nil {
			return err
		}
		if len(skipped) > 0 {
			w.log.Warn("dropped unknown attributes", "entity", e.String(), "ids", skipped)
		}
		w.entities.Add(e)
	}
	if len(saved) > 0 {
		w.log.Info("loaded entities", "count", len(saved))
		return nil
	}

	for range w.ocelots {
		if _, err := w.SpawnMob(mob.Ocelot); err != nil {
			return fmt.Errorf("spawn initial ocelot: %w", err)
		}
	}
	return nil
}

// Save persists every entity.
func (w *World) Save(ctx context.Context) error {
	if w.store == nil {
		return nil
	}
	var data []*storage.EntityData
	w.entities.ForEach(func(e *entity.Entity) {
		data = append(data, storage.EntityDataFromEntity(e))
	})
	if err := w.store.SaveEntities(ctx, data); err != nil {
		return fmt.Errorf("save entities: %w", err)
	}
	w.log.Info("saved entities", "count", len(data))
	return nil
}
