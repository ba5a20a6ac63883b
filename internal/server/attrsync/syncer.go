// Package attrsync pushes changed entity attributes to subscribed observers.
package attrsync

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/OCharnyshevich/mc-attributes/internal/server/entity"
	"github.com/OCharnyshevich/mc-attributes/internal/server/packet"
	"github.com/OCharnyshevich/mc-attributes/pkg/attribute"
	"github.com/OCharnyshevich/mc-attributes/pkg/protocol"
)

// WriteFunc delivers one packet to an observer.
type WriteFunc func(protocol.Packet) error

// Syncer broadcasts UpdateAttributes packets for desynchronized attributes.
//
// Sync and Snapshot read entity state and must run on the goroutine that
// owns the entities. Subscribe and Unsubscribe may be called from anywhere.
type Syncer struct {
	log *slog.Logger

	mu     sync.Mutex
	subs   map[int]WriteFunc
	nextID int
}

// New creates a Syncer with no subscribers.
func New(log *slog.Logger) *Syncer {
	return &Syncer{
		log:  log.With("component", "attrsync"),
		subs: make(map[int]WriteFunc),
	}
}

// Subscribe registers an observer and returns its subscription ID.
func (s *Syncer) Subscribe(write WriteFunc) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.subs[s.nextID] = write
	return s.nextID
}

// Unsubscribe removes an observer. Unknown IDs are ignored.
func (s *Syncer) Unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

// Subscribers returns the number of registered observers.
func (s *Syncer) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

type subscriber struct {
	id    int
	write WriteFunc
}

func (s *Syncer) snapshotSubs() []subscriber {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]subscriber, 0, len(s.subs))
	for id, w := range s.subs {
		out = append(out, subscriber{id: id, write: w})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Sync sends one UpdateAttributes packet per entity that has
// desynchronized attributes and marks them synchronized once every
// observer received it. An observer whose write fails is dropped for the
// rest of the pass and unsubscribed; the entity it failed on stays pending
// for the next pass. It returns the number of packets built.
func (s *Syncer) Sync(entities []*entity.Entity) int {
	subs := s.snapshotSubs()
	dropped := make(map[int]bool)
	sent := 0

	for _, e := range entities {
		if e.IsClosed() {
			continue
		}
		pending := e.Attributes().Desynchronized()
		if len(pending) == 0 {
			continue
		}

		p := updateFor(e, pending)
		sent++

		delivered := true
		for _, sub := range subs {
			if dropped[sub.id] {
				continue
			}
			if err := sub.write(p); err != nil {
				s.log.Warn("drop subscriber", "subscriber", sub.id, "entity", e.ID, "error", err)
				s.Unsubscribe(sub.id)
				dropped[sub.id] = true
				delivered = false
			}
		}
		if !delivered {
			continue
		}

		for _, a := range pending {
			a.MarkSynchronized(true)
		}
		s.log.Debug("sync attributes", "entity", e.ID, "count", len(pending), "subscribers", len(subs)-len(dropped))
	}
	return sent
}

// Snapshot builds packets carrying every syncable attribute of the given
// entities, for an observer that just subscribed. Dirty flags are untouched.
func (s *Syncer) Snapshot(entities []*entity.Entity) []protocol.Packet {
	var out []protocol.Packet
	for _, e := range entities {
		if e.IsClosed() {
			continue
		}
		var attrs []*attribute.Attribute
		for _, a := range e.Attributes().All() {
			if a.Syncable() {
				attrs = append(attrs, a)
			}
		}
		if len(attrs) == 0 {
			continue
		}
		out = append(out, updateFor(e, attrs))
	}
	return out
}

func updateFor(e *entity.Entity, attrs []*attribute.Attribute) *packet.UpdateAttributes {
	return &packet.UpdateAttributes{
		EntityID: int64(e.ID),
		Entries:  packet.EncodeAttributeEntries(attrs),
	}
}
