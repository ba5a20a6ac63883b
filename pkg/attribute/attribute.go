// Package attribute implements range-bounded entity attributes (health,
// movement speed, hunger, ...) with dirty tracking for network
// synchronization, plus the registry of attribute prototypes entities copy
// their own instances from.
package attribute

import "math"

// Attribute is one bounded numeric property of an entity.
//
// The zero value is not usable; create attributes with New or obtain copies
// from a Registry. An Attribute is not safe for concurrent use: it belongs to
// the goroutine that simulates its entity.
type Attribute struct {
	id       int
	name     string
	min      float64
	max      float64
	def      float64
	value    float64
	syncable bool
	dirty    bool
}

// New validates the range and returns an attribute whose current value is
// def. New attributes start out desynchronized.
func New(id int, name string, min, max, def float64, syncable bool) (*Attribute, error) {
	if err := checkBounds(min, max); err != nil {
		return nil, err
	}
	if err := checkInRange("default", def, min, max); err != nil {
		return nil, err
	}
	return &Attribute{
		id:       id,
		name:     name,
		min:      min,
		max:      max,
		def:      def,
		value:    def,
		syncable: syncable,
		dirty:    true,
	}, nil
}

func (a *Attribute) ID() int          { return a.id }
func (a *Attribute) Name() string     { return a.name }
func (a *Attribute) Min() float64     { return a.min }
func (a *Attribute) Max() float64     { return a.max }
func (a *Attribute) Default() float64 { return a.def }
func (a *Attribute) Value() float64   { return a.value }

// Syncable reports whether this attribute kind is ever sent to observers.
func (a *Attribute) Syncable() bool { return a.syncable }

// Clone returns an independent copy of a.
func (a *Attribute) Clone() *Attribute {
	c := *a
	return &c
}

// SetMin lowers or raises the minimum. The current and default values are
// pulled up to the new minimum if they fall below it.
func (a *Attribute) SetMin(v float64) error {
	if !isFinite(v) || v > a.max {
		return &RangeError{Op: "min", Value: v, Min: a.min, Max: a.max}
	}
	if a.min != v {
		a.min = v
		a.dirty = true
		a.refit()
	}
	return nil
}

// SetMax lowers or raises the maximum. The current and default values are
// pulled down to the new maximum if they exceed it.
func (a *Attribute) SetMax(v float64) error {
	if !isFinite(v) || v < a.min {
		return &RangeError{Op: "max", Value: v, Min: a.min, Max: a.max}
	}
	if a.max != v {
		a.max = v
		a.dirty = true
		a.refit()
	}
	return nil
}

// SetDefault changes the default value, which must lie within [Min, Max].
func (a *Attribute) SetDefault(v float64) error {
	if err := checkInRange("default", v, a.min, a.max); err != nil {
		return err
	}
	if a.def != v {
		a.def = v
		a.dirty = true
	}
	return nil
}

// SetOption tunes a single SetValue call.
type SetOption func(*setOptions)

type setOptions struct {
	fit        bool
	forceDirty bool
}

// WithFit clamps an out-of-range value into [Min, Max] instead of failing.
func WithFit() SetOption {
	return func(o *setOptions) { o.fit = true }
}

// WithForceSync marks the attribute desynchronized even if the value does
// not change, so it is resent on the next sync pass.
func WithForceSync() SetOption {
	return func(o *setOptions) { o.forceDirty = true }
}

// SetValue updates the current value. Values outside [Min, Max] fail with
// ErrInvalidArgument unless WithFit is given.
func (a *Attribute) SetValue(v float64, opts ...SetOption) error {
	var o setOptions
	for _, opt := range opts {
		opt(&o)
	}

	if math.IsNaN(v) {
		return &RangeError{Op: "value", Value: v, Min: a.min, Max: a.max}
	}
	if v < a.min || v > a.max {
		if !o.fit {
			return &RangeError{Op: "value", Value: v, Min: a.min, Max: a.max}
		}
		v = clamp(v, a.min, a.max)
	}

	if a.value != v {
		a.value = v
		a.dirty = true
	} else if o.forceDirty {
		a.dirty = true
	}
	return nil
}

// ResetToDefault restores the default value and always leaves the attribute
// pending synchronization.
func (a *Attribute) ResetToDefault() {
	_ = a.SetValue(a.def, WithFit(), WithForceSync())
}

// Desynchronized reports whether the attribute must be sent to observers.
// Attributes that are not syncable are never desynchronized.
func (a *Attribute) Desynchronized() bool {
	return a.syncable && a.dirty
}

// MarkSynchronized is called by the sync layer once the value was
// transmitted. MarkSynchronized(false) queues the attribute for a resend.
func (a *Attribute) MarkSynchronized(synced bool) {
	a.dirty = !synced
}

// refit keeps the default and current values inside the bounds after a
// bound moved.
func (a *Attribute) refit() {
	a.def = clamp(a.def, a.min, a.max)
	a.value = clamp(a.value, a.min, a.max)
}

// Bounds and defaults must be finite; only SetValue with WithFit accepts
// infinities, and clamps them.
func checkBounds(min, max float64) error {
	if !isFinite(min) || min > max {
		return &RangeError{Op: "min", Value: min, Min: min, Max: max}
	}
	if !isFinite(max) {
		return &RangeError{Op: "max", Value: max, Min: min, Max: max}
	}
	return nil
}

func checkInRange(op string, v, min, max float64) error {
	if !isFinite(v) || v < min || v > max {
		return &RangeError{Op: op, Value: v, Min: min, Max: max}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, min, max float64) float64 {
	return math.Min(math.Max(v, min), max)
}
