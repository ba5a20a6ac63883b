package entity

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/OCharnyshevich/mc-attributes/pkg/attribute"
)

// KindPlayer is the kind of player-controlled entities.
const KindPlayer = "player"

// LivingAttributes are attached to every living entity.
var LivingAttributes = []int{
	attribute.Health,
	attribute.MovementSpeed,
	attribute.KnockbackResistance,
	attribute.Absorption,
	attribute.FollowRange,
	attribute.AttackDamage,
}

// PlayerAttributes are attached to players on top of LivingAttributes.
var PlayerAttributes = []int{
	attribute.Hunger,
	attribute.Saturation,
	attribute.Exhaustion,
	attribute.ExperienceLevel,
	attribute.Experience,
}

// Entity is a simulated entity and the attribute set it owns.
//
// Entities are not safe for concurrent use; the world goroutine owns them.
type Entity struct {
	ID   int32
	UUID uuid.UUID
	Kind string
	Name string

	attrs    *attribute.Map
	spawned  bool
	closed   bool
	heldItem int
}

// New creates an entity holding private copies of the given registry attributes.
func New(id int32, kind, name string, reg *attribute.Registry, attrIDs ...[]int) (*Entity, error) {
	e := &Entity{
		ID:    id,
		UUID:  uuid.New(),
		Kind:  kind,
		Name:  name,
		attrs: attribute.NewMap(),
	}
	for _, ids := range attrIDs {
		for _, aid := range ids {
			a, ok := reg.ByID(aid)
			if !ok {
				return nil, fmt.Errorf("create %s entity: attribute %d not registered", kind, aid)
			}
			e.attrs.Add(a)
		}
	}
	return e, nil
}

// NewPlayer creates a player entity with the living and player attribute sets.
func NewPlayer(id int32, name string, reg *attribute.Registry) (*Entity, error) {
	return New(id, KindPlayer, name, reg, LivingAttributes, PlayerAttributes)
}

// Attributes returns the entity's attribute set.
func (e *Entity) Attributes() *attribute.Map { return e.attrs }

// Attribute returns one attribute of the entity.
func (e *Entity) Attribute(id int) (*attribute.Attribute, bool) { return e.attrs.Get(id) }

func (e *Entity) IsPlayer() bool { return e.Kind == KindPlayer }

func (e *Entity) Spawn()          { e.spawned = true }
func (e *Entity) IsSpawned() bool { return e.spawned }

// Close marks the entity as removed from the world.
func (e *Entity) Close()         { e.closed = true }
func (e *Entity) IsClosed() bool { return e.closed }

func (e *Entity) HeldItem() int        { return e.heldItem }
func (e *Entity) SetHeldItem(item int) { e.heldItem = item }

// Health returns the current health, or 0 for entities without health.
func (e *Entity) Health() float64 {
	if h, ok := e.attrs.Get(attribute.Health); ok {
		return h.Value()
	}
	return 0
}

// MaxHealth returns the upper bound of the health attribute.
func (e *Entity) MaxHealth() float64 {
	if h, ok := e.attrs.Get(attribute.Health); ok {
		return h.Max()
	}
	return 0
}

// SetHealth sets health, clamping into [0, MaxHealth].
func (e *Entity) SetHealth(v float64) error {
	h, ok := e.attrs.Get(attribute.Health)
	if !ok {
		return fmt.Errorf("set health on %s: entity has no health", e)
	}
	if err := h.SetValue(v, attribute.WithFit()); err != nil {
		return fmt.Errorf("set health on %s: %w", e, err)
	}
	return nil
}

// SetMaxHealth changes the health maximum and makes it the default as well,
// so a reset restores full health.
func (e *Entity) SetMaxHealth(v float64) error {
	h, ok := e.attrs.Get(attribute.Health)
	if !ok {
		return fmt.Errorf("set max health on %s: entity has no health", e)
	}
	if err := h.SetMax(v); err != nil {
		return fmt.Errorf("set max health: %w", err)
	}
	if err := h.SetDefault(v); err != nil {
		return fmt.Errorf("set max health: %w", err)
	}
	return nil
}

// Damage subtracts amount from health and returns the new health.
func (e *Entity) Damage(amount float64) (float64, error) {
	if amount < 0 || math.IsNaN(amount) {
		return e.Health(), fmt.Errorf("damage %g: %w", amount, attribute.ErrInvalidArgument)
	}
	if err := e.SetHealth(e.Health() - amount); err != nil {
		return e.Health(), err
	}
	return e.Health(), nil
}

// Heal adds amount to health and returns the new health.
func (e *Entity) Heal(amount float64) (float64, error) {
	if amount < 0 || math.IsNaN(amount) {
		return e.Health(), fmt.Errorf("heal %g: %w", amount, attribute.ErrInvalidArgument)
	}
	if err := e.SetHealth(e.Health() + amount); err != nil {
		return e.Health(), err
	}
	return e.Health(), nil
}

// Kill drops health to zero.
func (e *Entity) Kill() error { return e.SetHealth(0) }

// IsAlive reports whether the entity has health left.
func (e *Entity) IsAlive() bool { return e.Health() > 0 }

func (e *Entity) String() string {
	if e.Name != "" {
		return fmt.Sprintf("%s#%d(%s)", e.Kind, e.ID, e.Name)
	}
	return fmt.Sprintf("%s#%d", e.Kind, e.ID)
}
