package conn

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/OCharnyshevich/mc-attributes/internal/server/entity"
	"github.com/OCharnyshevich/mc-attributes/internal/server/mob"
	"github.com/OCharnyshevich/mc-attributes/internal/server/packet"
	"github.com/OCharnyshevich/mc-attributes/internal/server/world"
	"github.com/OCharnyshevich/mc-attributes/pkg/attribute"
	"github.com/OCharnyshevich/mc-attributes/pkg/protocol"
)

// computeCompletions returns tab-completion matches for the given input
// text. It only reads the entity index and the registry, both of which are
// safe to use off the world goroutine.
func computeCompletions(text string, w *world.World) []string {
	return complete(text, w.Entities(), w.Registry())
}

func complete(text string, entities *entity.Manager, reg *attribute.Registry) []string {
	parts := strings.Fields(text)
	// If text ends with space, we're completing the next argument.
	trailingSpace := strings.HasSuffix(text, " ")

	if len(parts) == 0 {
		return completeCommandName("")
	}
	if len(parts) == 1 && !trailingSpace {
		return completeCommandName(strings.ToLower(strings.TrimPrefix(parts[0], "/")))
	}

	cmdName := strings.ToLower(strings.TrimPrefix(parts[0], "/"))
	var argPartial string
	if !trailingSpace {
		argPartial = parts[len(parts)-1]
	}
	argIndex := len(parts) - 1
	if trailingSpace {
		argIndex = len(parts)
	}

	switch cmdName {
	case "spawn":
		if argIndex == 1 {
			return filterStrings(argPartial, append([]string{entity.KindPlayer}, mob.Kinds()...))
		}
	case "attributes", "kill", "damage", "heal":
		if argIndex == 1 {
			return matchEntities(argPartial, entities)
		}
	case "get", "set", "reset":
		switch argIndex {
		case 1:
			return matchEntities(argPartial, entities)
		case 2:
			return matchAttributeNames(argPartial, reg)
		case 4:
			if cmdName == "set" {
				return filterStrings(argPartial, []string{"fit"})
			}
		}
	case "help", "list", "save":
		// No arguments to complete.
	}

	return nil
}

func completeCommandName(partial string) []string {
	var matches []string
	for _, cmd := range commands {
		if strings.HasPrefix(cmd.name, partial) {
			matches = append(matches, cmd.name)
		}
	}
	return matches
}

func matchEntities(partial string, entities *entity.Manager) []string {
	var matches []string
	entities.ForEach(func(e *entity.Entity) {
		id := strconv.Itoa(int(e.ID))
		if strings.HasPrefix(id, partial) {
			matches = append(matches, id)
		}
	})
	return matches
}

func matchAttributeNames(partial string, reg *attribute.Registry) []string {
	names := make([]string, 0, reg.Len())
	for _, a := range reg.All() {
		names = append(names, a.Name())
	}
	return filterStrings(partial, names)
}

func filterStrings(partial string, options []string) []string {
	partial = strings.ToLower(partial)
	var matches []string
	for _, opt := range options {
		if strings.HasPrefix(strings.ToLower(opt), partial) {
			matches = append(matches, opt)
		}
	}
	return matches
}

func (c *Connection) sendTabCompleteResponse(matches []string) error {
	var buf bytes.Buffer
	_, _ = protocol.WriteVarInt(&buf, int32(len(matches)))
	for _, m := range matches {
		_, _ = protocol.WriteString(&buf, m)
	}
	return c.writePacket(&packet.TabCompleteResponse{Data: buf.Bytes()})
}
