package mob

import "github.com/OCharnyshevich/mc-attributes/pkg/gamedata"

// ItemRawFish is the item id ocelots are attracted to.
const ItemRawFish = 349

var Ocelot = register(&Definition{
	Info: gamedata.Entity{
		ID:          22,
		Name:        "ocelot",
		DisplayName: "Ocelot",
		Type:        "animal",
		Width:       0.72,
		Height:      0.9,
		Category:    "Passive mobs",
	},
	Speed:     1.4,
	MaxHealth: 10,
	TargetOption: func(target Target, distance float64) bool {
		if !target.IsPlayer() {
			return false
		}
		return target.IsSpawned() && target.IsAlive() && !target.IsClosed() &&
			target.HeldItem() == ItemRawFish && distance <= 39
	},
	Drops: func() []Drop { return nil },
})
