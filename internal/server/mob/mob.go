// Package mob holds the static definitions of non-player entities.
package mob

import (
	"fmt"
	"sort"

	"github.com/OCharnyshevich/mc-attributes/internal/server/entity"
	"github.com/OCharnyshevich/mc-attributes/pkg/attribute"
	"github.com/OCharnyshevich/mc-attributes/pkg/gamedata"
)

// Target is the read-only view of another entity a mob may pick as a target.
type Target interface {
	IsPlayer() bool
	IsSpawned() bool
	IsAlive() bool
	IsClosed() bool
	HeldItem() int
}

// Drop is one item stack dropped on death.
type Drop struct {
	ItemID int
	Count  int
}

// Definition describes a mob type.
type Definition struct {
	Info      gamedata.Entity
	Speed     float64
	MaxHealth float64

	// TargetOption decides whether target, at the given distance, is worth chasing.
	TargetOption func(target Target, distance float64) bool

	Drops func() []Drop
}

// Kind is the entity kind used for mobs of this definition.
func (d *Definition) Kind() string { return d.Info.Name }

// Spawn builds a mob entity at full health.
func Spawn(d *Definition, id int32, reg *attribute.Registry) (*entity.Entity, error) {
	e, err := entity.New(id, d.Kind(), d.Info.DisplayName, reg, entity.LivingAttributes)
	if err != nil {
		return nil, fmt.Errorf("spawn %s: %w", d.Kind(), err)
	}
	if d.MaxHealth > 0 {
		if err := e.SetMaxHealth(d.MaxHealth); err != nil {
			return nil, fmt.Errorf("spawn %s: %w", d.Kind(), err)
		}
	}
	if h, ok := e.Attribute(attribute.Health); ok {
		h.ResetToDefault()
	}
	return e, nil
}

var registry = map[string]*Definition{}

func register(d *Definition) *Definition {
	registry[d.Kind()] = d
	return d
}

// Lookup returns the definition registered for kind.
func Lookup(kind string) (*Definition, bool) {
	d, ok := registry[kind]
	return d, ok
}

// Kinds returns the registered mob kinds in sorted order.
func Kinds() []string {
	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
