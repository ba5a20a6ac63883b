package conn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompleteCommandName(t *testing.T) {
	w := newTestWorld(t)

	tests := []struct {
		text string
		want []string
	}{
		{"s", []string{"spawn", "set", "save"}},
		{"/he", []string{"help", "heal"}},
		{"res", []string{"reset"}},
		{"zzz", nil},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, computeCompletions(tt.text, w))
		})
	}
}

func TestCompleteEmptyListsAllCommands(t *testing.T) {
	w := newTestWorld(t)
	assert.Len(t, computeCompletions("", w), len(commands))
}

func TestCompleteSpawnKinds(t *testing.T) {
	w := newTestWorld(t)
	assert.Equal(t, []string{"player", "ocelot"}, computeCompletions("spawn ", w))
	assert.Equal(t, []string{"ocelot"}, computeCompletions("spawn oc", w))
}

func TestCompleteEntities(t *testing.T) {
	w := newTestWorld(t)
	for range 11 {
		spawnPlayer(t, w, "p")
	}

	assert.Len(t, computeCompletions("kill ", w), 11)
	assert.Equal(t, []string{"1", "10", "11"}, computeCompletions("get 1", w))
	assert.Equal(t, []string{"2"}, computeCompletions("damage 2", w))
}

func TestCompleteAttributeNames(t *testing.T) {
	w := newTestWorld(t)
	spawnPlayer(t, w, "steve")

	got := computeCompletions("set 1 minecraft:player.", w)
	assert.ElementsMatch(t, []string{
		"minecraft:player.saturation",
		"minecraft:player.exhaustion",
		"minecraft:player.hunger",
		"minecraft:player.level",
		"minecraft:player.experience",
	}, got)

	assert.Equal(t, []string{"minecraft:health"}, computeCompletions("get 1 minecraft:he", w))
}

func TestCompleteSetFit(t *testing.T) {
	w := newTestWorld(t)
	assert.Equal(t, []string{"fit"}, computeCompletions("set 1 health 30 ", w))
	assert.Nil(t, computeCompletions("set 1 health ", w))
}

func TestCompleteNoArguments(t *testing.T) {
	w := newTestWorld(t)
	assert.Nil(t, computeCompletions("list ", w))
	assert.Nil(t, computeCompletions("nosuch ", w))
}
