package storage

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/OCharnyshevich/mc-attributes/internal/server/entity"
	"github.com/OCharnyshevich/mc-attributes/internal/server/mob"
	"github.com/OCharnyshevich/mc-attributes/pkg/attribute"
)

// EntityData is the serializable representation of an entity's state.
type EntityData struct {
	UUID       string          `json:"uuid" cbor:"1,keyasint"`
	EntityID   int32           `json:"entity_id" cbor:"2,keyasint"`
	Kind       string          `json:"kind" cbor:"3,keyasint"`
	Name       string          `json:"name,omitempty" cbor:"4,keyasint,omitempty"`
	HeldItem   int             `json:"held_item,omitempty" cbor:"5,keyasint,omitempty"`
	Attributes []AttributeData `json:"attributes" cbor:"6,keyasint"`
}

// AttributeData holds one attribute of an entity.
type AttributeData struct {
	ID      int     `json:"id" cbor:"1,keyasint"`
	Name    string  `json:"name" cbor:"2,keyasint"`
	Min     float64 `json:"min" cbor:"3,keyasint"`
	Max     float64 `json:"max" cbor:"4,keyasint"`
	Default float64 `json:"default" cbor:"5,keyasint"`
	Value   float64 `json:"value" cbor:"6,keyasint"`
}

// EntityDataFromEntity extracts serializable data from a runtime Entity.
func EntityDataFromEntity(e *entity.Entity) *EntityData {
	ed := &EntityData{
		UUID:     e.UUID.String(),
		EntityID: e.ID,
		Kind:     e.Kind,
		Name:     e.Name,
		HeldItem: e.HeldItem(),
	}
	for _, a := range e.Attributes().All() {
		ed.Attributes = append(ed.Attributes, AttributeData{
			ID:      a.ID(),
			Name:    a.Name(),
			Min:     a.Min(),
			Max:     a.Max(),
			Default: a.Default(),
			Value:   a.Value(),
		})
	}
	return ed
}

// RestoreEntity rebuilds a runtime Entity from saved data. Attribute kinds
// are taken from reg; saved attributes whose id is no longer registered are
// returned in skipped rather than failing the restore.
func RestoreEntity(ed *EntityData, reg *attribute.Registry) (e *entity.Entity, skipped []int, err error) {
	id, err := uuid.Parse(ed.UUID)
	if err != nil {
		return nil, nil, fmt.Errorf("restore entity %d: parse uuid: %w", ed.EntityID, err)
	}

	switch d, ok := mob.Lookup(ed.Kind); {
	case ed.Kind == entity.KindPlayer:
		e, err = entity.NewPlayer(ed.EntityID, ed.Name, reg)
	case ok:
		e, err = mob.Spawn(d, ed.EntityID, reg)
	default:
		e, err = entity.New(ed.EntityID, ed.Kind, ed.Name, reg)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("restore entity %d: %w", ed.EntityID, err)
	}
	e.UUID = id
	e.Name = ed.Name
	e.SetHeldItem(ed.HeldItem)

	for _, ad := range ed.Attributes {
		proto, ok := reg.ByID(ad.ID)
		if !ok {
			skipped = append(skipped, ad.ID)
			continue
		}
		a, err := attribute.New(ad.ID, proto.Name(), ad.Min, ad.Max, ad.Default, proto.Syncable())
		if err != nil {
			return nil, nil, fmt.Errorf("restore entity %d attribute %d: %w", ed.EntityID, ad.ID, err)
		}
		if err := a.SetValue(ad.Value, attribute.WithFit()); err != nil {
			return nil, nil, fmt.Errorf("restore entity %d attribute %d: %w", ed.EntityID, ad.ID, err)
		}
		e.Attributes().Add(a)
	}
	return e, skipped, nil
}
