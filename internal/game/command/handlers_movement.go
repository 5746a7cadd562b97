package command

import (
	"fmt"
	"sort"
	"strings"

	"github.com/thornvale/mud/internal/game/character"
	"github.com/thornvale/mud/internal/game/content"
	"github.com/thornvale/mud/internal/game/event"
	"github.com/thornvale/mud/internal/game/session"
)

var directions = map[string]bool{
	"north": true, "south": true, "east": true, "west": true,
	"up": true, "down": true,
}

func handleMove(r *Router, s *session.Session, in Input) []event.Event {
	return r.move(s, in.Verb)
}

func handleGo(r *Router, s *session.Session, in Input) []event.Event {
	if len(in.Args) == 0 {
		return warn(s.Name(), "Go where? Try 'go north'.")
	}
	dir := strings.ToLower(in.Args[0])
	// Accept the single-letter forms here too.
	switch dir {
	case "n":
		dir = "north"
	case "s":
		dir = "south"
	case "e":
		dir = "east"
	case "w":
		dir = "west"
	case "u":
		dir = "up"
	case "d":
		dir = "down"
	}
	if !directions[dir] {
		return warn(s.Name(), fmt.Sprintf("%q is not a direction.", in.Args[0]))
	}
	return r.move(s, dir)
}

// move walks a character through an exit. Ordering contract: departure room
// event, then arrival room event, then the auto-look for the mover.
func (r *Router) move(s *session.Session, dir string) []event.Event {
	c := s.Character
	if r.deps.Combat.InCombat(c.Name) {
		return warn(c.Name, "You can't leave while in combat.")
	}
	room, ok := r.deps.Content.Room(c.RoomID())
	if !ok {
		return warn(c.Name, "You are nowhere. This should not happen.")
	}
	dest, ok := room.ExitTo(dir)
	if !ok {
		return warn(c.Name, "You can't go that way.")
	}
	area, roomName, ok := strings.Cut(dest, ".")
	if !ok {
		return warn(c.Name, "You can't go that way.")
	}

	from := c.RoomID()
	evs := []event.Event{
		event.ToRoomExcept(from, c.Name, event.KindNormal, fmt.Sprintf("%s leaves %s.", c.Name, dir)),
	}
	c.MoveTo(character.Location{Area: area, Room: roomName})
	evs = append(evs,
		event.ToRoomExcept(c.RoomID(), c.Name, event.KindNormal, fmt.Sprintf("%s arrives.", c.Name)))
	evs = append(evs, r.lookAround(s)...)

	r.deps.Quests.RecordProgress(c, content.ObjectiveVisit, c.RoomID(), 1)
	r.save(c)
	return evs
}

// lookAround builds the full room view for the session's character.
func (r *Router) lookAround(s *session.Session) []event.Event {
	c := s.Character
	room, ok := r.deps.Content.Room(c.RoomID())
	if !ok {
		return warn(c.Name, "There is nothing here.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n", room.Name, room.Description)

	if dirs := room.ExitDirections(); len(dirs) > 0 {
		fmt.Fprintf(&b, "Exits: %s\n", strings.Join(dirs, ", "))
	} else {
		b.WriteString("There are no obvious exits.\n")
	}

	for _, npcID := range room.NPCs {
		if npc, ok := r.deps.Content.NPC(npcID); ok {
			fmt.Fprintf(&b, "%s is here.\n", npc.Name)
		}
	}
	for _, inst := range r.deps.World.VisibleEnemies(c.RoomID(), c) {
		fmt.Fprintf(&b, "A %s is here (%s).\n", inst.Name, inst.HealthDescription())
	}
	for _, gi := range r.deps.World.VisibleItems(c.RoomID(), c) {
		name := r.itemName(gi.ItemID)
		if gi.Quantity > 1 {
			fmt.Fprintf(&b, "%d x %s lie here.\n", gi.Quantity, name)
		} else {
			fmt.Fprintf(&b, "%s lies here.\n", name)
		}
	}

	others := r.deps.Sessions.NamesInRoom(c.RoomID())
	sort.Strings(others)
	for _, other := range others {
		if other != c.Name {
			fmt.Fprintf(&b, "%s is here.\n", other)
		}
	}

	return []event.Event{event.ToCharacter(c.Name, event.KindNormal, strings.TrimRight(b.String(), "\n"))}
}

// itemName resolves an item id to its display name, falling back to the id.
func (r *Router) itemName(itemID string) string {
	if item, ok := r.deps.Content.Item(itemID); ok {
		return item.Name
	}
	return itemID
}
