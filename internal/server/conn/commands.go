package conn

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/OCharnyshevich/mc-attributes/internal/server/entity"
	"github.com/OCharnyshevich/mc-attributes/internal/server/mob"
	"github.com/OCharnyshevich/mc-attributes/internal/server/packet"
	"github.com/OCharnyshevich/mc-attributes/internal/server/world"
	"github.com/OCharnyshevich/mc-attributes/pkg/attribute"
)

// output collects the reply lines of a command. Handlers run on the world
// goroutine; the lines are written after they return.
type output struct {
	msgs []packet.Message
}

func (o *output) printf(format string, args ...any) {
	o.msgs = append(o.msgs, packet.Message{Text: fmt.Sprintf(format, args...)})
}

func (o *output) errorf(format string, args ...any) {
	o.msgs = append(o.msgs, packet.Message{Text: fmt.Sprintf(format, args...), Error: true})
}

type command struct {
	name    string
	usage   string
	desc    string
	handler func(w *world.World, out *output, args []string)
}

var commands []command

func init() {
	commands = []command{
		{name: "help", usage: "help", desc: "Show available commands", handler: cmdHelp},
		{name: "list", usage: "list", desc: "Show all entities", handler: cmdList},
		{name: "spawn", usage: "spawn <player|" + strings.Join(mob.Kinds(), "|") + "> [name]", desc: "Spawn an entity", handler: cmdSpawn},
		{name: "attributes", usage: "attributes [entity]", desc: "Show registered attributes or those of an entity", handler: cmdAttributes},
		{name: "get", usage: "get <entity> <attribute>", desc: "Show one attribute of an entity", handler: cmdGet},
		{name: "set", usage: "set <entity> <attribute> <value> [fit]", desc: "Set an attribute value, clamping with fit", handler: cmdSet},
		{name: "reset", usage: "reset <entity> [attribute]", desc: "Reset attributes to their defaults", handler: cmdReset},
		{name: "damage", usage: "damage <entity> <amount>", desc: "Reduce an entity's health", handler: cmdDamage},
		{name: "heal", usage: "heal <entity> <amount>", desc: "Restore an entity's health", handler: cmdHeal},
		{name: "kill", usage: "kill <entity>", desc: "Set an entity's health to zero", handler: cmdKill},
		{name: "save", usage: "save", desc: "Save all entities", handler: cmdSave},
	}
}

// runCommand parses line and executes the matching command on w. It must
// run on the world goroutine.
func runCommand(w *world.World, line string) []packet.Message {
	out := &output{}
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	name := strings.ToLower(strings.TrimPrefix(parts[0], "/"))
	for _, cmd := range commands {
		if cmd.name == name {
			cmd.handler(w, out, parts[1:])
			return out.msgs
		}
	}

	out.errorf("Unknown command: %s. Type help for a list of commands.", name)
	return out.msgs
}

// handleCommand runs line on the world goroutine and writes the replies.
func (c *Connection) handleCommand(line string) error {
	var msgs []packet.Message
	if err := c.world.Do(c.ctx, func(w *world.World) {
		msgs = runCommand(w, line)
	}); err != nil {
		return err
	}
	for i := range msgs {
		if err := c.writePacket(&msgs[i]); err != nil {
			return fmt.Errorf("write reply: %w", err)
		}
	}
	return nil
}

func resolveEntity(w *world.World, out *output, ref string) *entity.Entity {
	e := w.Entities().Resolve(ref)
	if e == nil {
		out.errorf("Entity %q not found.", ref)
	}
	return e
}

// lookupAttribute resolves ref as an attribute id or name. Short names
// such as "health" or "hunger" are tried with the minecraft prefixes.
func lookupAttribute(reg *attribute.Registry, ref string) (int, bool) {
	if id, err := strconv.Atoi(ref); err == nil {
		_, ok := reg.ByID(id)
		return id, ok
	}
	for _, name := range []string{ref, "minecraft:" + ref, "minecraft:player." + ref} {
		if a, ok := reg.ByName(name); ok {
			return a.ID(), true
		}
	}
	return 0, false
}

func resolveAttribute(w *world.World, out *output, e *entity.Entity, ref string) *attribute.Attribute {
	id, ok := lookupAttribute(w.Registry(), ref)
	if !ok {
		out.errorf("Unknown attribute %q.", ref)
		return nil
	}
	a, ok := e.Attribute(id)
	if !ok {
		out.errorf("%s has no attribute %q.", e, ref)
		return nil
	}
	return a
}

func parseAmount(out *output, s, usage string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		out.errorf("Usage: %s (%q is not a number)", usage, s)
		return 0, false
	}
	return v, true
}

func describe(a *attribute.Attribute) string {
	s := fmt.Sprintf("%s = %g (%g - %g, default %g)", a.Name(), a.Value(), a.Min(), a.Max(), a.Default())
	if !a.Syncable() {
		s += " [local]"
	} else if a.Desynchronized() {
		s += " [pending]"
	}
	return s
}

func cmdHelp(_ *world.World, out *output, _ []string) {
	out.printf("--- Available Commands ---")
	for _, cmd := range commands {
		out.printf("%s - %s", cmd.usage, cmd.desc)
	}
}

func cmdList(w *world.World, out *output, _ []string) {
	var names []string
	w.Entities().ForEach(func(e *entity.Entity) {
		names = append(names, e.String())
	})
	out.printf("Entities (%d): %s", len(names), strings.Join(names, ", "))
}

func cmdSpawn(w *world.World, out *output, args []string) {
	if len(args) < 1 || len(args) > 2 {
		out.errorf("Usage: spawn <player|%s> [name]", strings.Join(mob.Kinds(), "|"))
		return
	}

	kind := strings.ToLower(args[0])
	var (
		e   *entity.Entity
		err error
	)
	if kind == entity.KindPlayer {
		name := "player"
		if len(args) == 2 {
			name = args[1]
		}
		e, err = w.SpawnPlayer(name)
	} else {
		d, ok := mob.Lookup(kind)
		if !ok {
			out.errorf("Unknown entity kind %q.", args[0])
			return
		}
		e, err = w.SpawnMob(d)
		if err == nil && len(args) == 2 {
			e.Name = args[1]
		}
	}
	if err != nil {
		out.errorf("Spawn failed: %v", err)
		return
	}
	out.printf("Spawned %s with UUID %s.", e, e.UUID)
}

func cmdAttributes(w *world.World, out *output, args []string) {
	switch len(args) {
	case 0:
		all := w.Registry().All()
		out.printf("Registered attributes (%d):", len(all))
		for _, a := range all {
			mode := "synced"
			if !a.Syncable() {
				mode = "local"
			}
			out.printf("%d %s (%g - %g, default %g, %s)", a.ID(), a.Name(), a.Min(), a.Max(), a.Default(), mode)
		}
	case 1:
		e := resolveEntity(w, out, args[0])
		if e == nil {
			return
		}
		out.printf("Attributes of %s:", e)
		for _, a := range e.Attributes().All() {
			out.printf("%s", describe(a))
		}
	default:
		out.errorf("Usage: attributes [entity]")
	}
}

func cmdGet(w *world.World, out *output, args []string) {
	if len(args) != 2 {
		out.errorf("Usage: get <entity> <attribute>")
		return
	}
	e := resolveEntity(w, out, args[0])
	if e == nil {
		return
	}
	a := resolveAttribute(w, out, e, args[1])
	if a == nil {
		return
	}
	out.printf("%s", describe(a))
}

func cmdSet(w *world.World, out *output, args []string) {
	const usage = "set <entity> <attribute> <value> [fit]"
	if len(args) < 3 || len(args) > 4 || (len(args) == 4 && strings.ToLower(args[3]) != "fit") {
		out.errorf("Usage: %s", usage)
		return
	}
	e := resolveEntity(w, out, args[0])
	if e == nil {
		return
	}
	a := resolveAttribute(w, out, e, args[1])
	if a == nil {
		return
	}
	v, ok := parseAmount(out, args[2], usage)
	if !ok {
		return
	}

	var opts []attribute.SetOption
	if len(args) == 4 {
		opts = append(opts, attribute.WithFit())
	}
	if err := a.SetValue(v, opts...); err != nil {
		out.errorf("Cannot set %s: %v", a.Name(), err)
		return
	}
	out.printf("%s", describe(a))
}

func cmdReset(w *world.World, out *output, args []string) {
	if len(args) < 1 || len(args) > 2 {
		out.errorf("Usage: reset <entity> [attribute]")
		return
	}
	e := resolveEntity(w, out, args[0])
	if e == nil {
		return
	}
	if len(args) == 2 {
		a := resolveAttribute(w, out, e, args[1])
		if a == nil {
			return
		}
		a.ResetToDefault()
		out.printf("%s", describe(a))
		return
	}
	for _, a := range e.Attributes().All() {
		a.ResetToDefault()
	}
	out.printf("Reset %d attributes of %s.", e.Attributes().Len(), e)
}

func cmdDamage(w *world.World, out *output, args []string) {
	changeHealth(w, out, args, "damage", (*entity.Entity).Damage)
}

func cmdHeal(w *world.World, out *output, args []string) {
	changeHealth(w, out, args, "heal", (*entity.Entity).Heal)
}

func changeHealth(w *world.World, out *output, args []string, verb string, fn func(*entity.Entity, float64) (float64, error)) {
	usage := verb + " <entity> <amount>"
	if len(args) != 2 {
		out.errorf("Usage: %s", usage)
		return
	}
	e := resolveEntity(w, out, args[0])
	if e == nil {
		return
	}
	amount, ok := parseAmount(out, args[1], usage)
	if !ok {
		return
	}
	health, err := fn(e, amount)
	if err != nil {
		out.errorf("Cannot %s %s: %v", verb, e, err)
		return
	}
	out.printf("%s health is now %g/%g.", e, health, e.MaxHealth())
}

func cmdKill(w *world.World, out *output, args []string) {
	if len(args) != 1 {
		out.errorf("Usage: kill <entity>")
		return
	}
	e := resolveEntity(w, out, args[0])
	if e == nil {
		return
	}
	if err := e.Kill(); err != nil {
		out.errorf("Cannot kill %s: %v", e, err)
		return
	}
	out.printf("Killed %s.", e)
}

func cmdSave(w *world.World, out *output, _ []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := w.Save(ctx); err != nil {
		out.errorf("Save failed: %v", err)
		return
	}
	out.printf("Saved %d entities.", w.Entities().Count())
}
