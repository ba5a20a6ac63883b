package attribute

import "math"

// Builtin attribute ids.
const (
	Absorption          = 0
	Saturation          = 1
	Exhaustion          = 2
	KnockbackResistance = 3
	Health              = 4
	MovementSpeed       = 5
	FollowRange         = 6
	Hunger              = 7
	Food                = Hunger
	AttackDamage        = 8
	ExperienceLevel     = 9
	Experience          = 10
)

// maxFloat is the largest value the client accepts for unbounded attributes.
const maxFloat = math.MaxFloat32

// builtins is the fixed set of attributes every server registers at startup.
var builtins = []Definition{
	{ID: Absorption, Name: "minecraft:absorption", Min: 0, Max: maxFloat, Default: 0},
	{ID: Saturation, Name: "minecraft:player.saturation", Min: 0, Max: 20, Default: 20},
	{ID: Exhaustion, Name: "minecraft:player.exhaustion", Min: 0, Max: 5, Default: 0, Syncable: boolPtr(false)},
	{ID: KnockbackResistance, Name: "minecraft:knockback_resistance", Min: 0, Max: 1, Default: 0},
	{ID: Health, Name: "minecraft:health", Min: 0, Max: 20, Default: 20},
	{ID: MovementSpeed, Name: "minecraft:movement", Min: 0, Max: maxFloat, Default: 0.1},
	{ID: FollowRange, Name: "minecraft:follow_range", Min: 0, Max: 2048, Default: 16, Syncable: boolPtr(false)},
	{ID: Hunger, Name: "minecraft:player.hunger", Min: 0, Max: 20, Default: 20},
	{ID: AttackDamage, Name: "minecraft:attack_damage", Min: 0, Max: maxFloat, Default: 1, Syncable: boolPtr(false)},
	{ID: ExperienceLevel, Name: "minecraft:player.level", Min: 0, Max: 24791, Default: 0},
	{ID: Experience, Name: "minecraft:player.experience", Min: 0, Max: 1, Default: 0},
}

// Builtins returns a copy of the builtin attribute definitions.
func Builtins() []Definition {
	out := make([]Definition, len(builtins))
	copy(out, builtins)
	for i := range out {
		if out[i].Syncable != nil {
			out[i].Syncable = boolPtr(*out[i].Syncable)
		}
	}
	return out
}

// RegisterBuiltins adds every builtin attribute to r.
func RegisterBuiltins(r *Registry) error {
	return r.AddDefinitions(builtins)
}

func boolPtr(b bool) *bool { return &b }
