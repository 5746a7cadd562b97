package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/thornvale/mud/internal/game/event"
	"github.com/thornvale/mud/internal/game/inventory"
	"github.com/thornvale/mud/internal/game/session"
)

func handleInventory(r *Router, s *session.Session, in Input) []event.Event {
	c := s.Character
	if len(c.Inventory) == 0 {
		return []event.Event{event.ToCharacter(c.Name, event.KindNormal, "You are carrying nothing.")}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are carrying (%d/%d slots):", len(c.Inventory), r.deps.Inventory.Capacity())
	for _, entry := range c.Inventory {
		name := r.itemName(entry.ItemID)
		if entry.Quantity > 1 {
			fmt.Fprintf(&b, "\n  %d x %s", entry.Quantity, name)
		} else {
			fmt.Fprintf(&b, "\n  %s", name)
		}
		if c.IsEquipped(entry.ItemID) {
			b.WriteString(" (equipped)")
		}
	}
	fmt.Fprintf(&b, "\nGold: %d", c.Gold)
	return []event.Event{event.ToCharacter(c.Name, event.KindNormal, b.String())}
}

func handleTake(r *Router, s *session.Session, in Input) []event.Event {
	if len(in.Args) == 0 {
		return warn(s.Name(), "Take what?")
	}
	c := s.Character
	roomID := c.RoomID()

	m, ok := BestMatch(in.Raw, r.groundCandidates(s))
	if !ok {
		return warn(c.Name, fmt.Sprintf("You don't see %q here.", in.Raw))
	}
	itemID := m.Candidate.ID
	once := r.deps.World.IsOnceItem(roomID, itemID)

	got, err := r.deps.World.Take(roomID, c, itemID, 1)
	if err != nil {
		return warn(c.Name, "You can't take that.")
	}
	if err := r.deps.Inventory.Add(c, itemID, got); err != nil {
		r.deps.World.UndoTake(roomID, c, itemID, got, once)
		return warn(c.Name, "Your hands are full.")
	}

	evs := echoMatch(c.Name, m)
	name := m.Candidate.Name
	if got > 1 {
		evs = append(evs, event.ToCharacter(c.Name, event.KindSuccess, fmt.Sprintf("You take %d x %s.", got, name)))
	} else {
		evs = append(evs, event.ToCharacter(c.Name, event.KindSuccess, fmt.Sprintf("You take %s.", name)))
	}
	evs = append(evs, event.ToRoomExcept(roomID, c.Name, event.KindNormal, fmt.Sprintf("%s picks up %s.", c.Name, name)))
	r.save(c)
	return evs
}

func handleDrop(r *Router, s *session.Session, in Input) []event.Event {
	if len(in.Args) == 0 {
		return warn(s.Name(), "Drop what?")
	}
	c := s.Character

	m, ok := BestMatch(in.Raw, r.carriedCandidates(s))
	if !ok {
		return warn(c.Name, fmt.Sprintf("You aren't carrying %q.", in.Raw))
	}
	itemID := m.Candidate.ID

	if err := r.deps.Inventory.Remove(c, itemID, 1); err != nil {
		if errors.Is(err, inventory.ErrItemEquipped) {
			return warn(c.Name, fmt.Sprintf("Unequip %s first.", m.Candidate.Name))
		}
		return warn(c.Name, "You can't drop that.")
	}
	r.deps.World.Drop(c.RoomID(), itemID, 1)

	evs := echoMatch(c.Name, m)
	evs = append(evs, event.ToCharacter(c.Name, event.KindSuccess, fmt.Sprintf("You drop %s.", m.Candidate.Name)))
	evs = append(evs, event.ToRoomExcept(c.RoomID(), c.Name, event.KindNormal, fmt.Sprintf("%s drops %s.", c.Name, m.Candidate.Name)))
	r.save(c)
	return evs
}

func handleUse(r *Router, s *session.Session, in Input) []event.Event {
	if len(in.Args) == 0 {
		return warn(s.Name(), "Use what?")
	}
	c := s.Character

	m, ok := BestMatch(in.Raw, r.carriedCandidates(s))
	if !ok {
		return warn(c.Name, fmt.Sprintf("You aren't carrying %q.", in.Raw))
	}

	healed, err := r.deps.Inventory.Consume(c, m.Candidate.ID)
	if err != nil {
		return warn(c.Name, fmt.Sprintf("You can't use %s.", m.Candidate.Name))
	}

	evs := echoMatch(c.Name, m)
	evs = append(evs, event.ToCharacter(c.Name, event.KindSuccess,
		fmt.Sprintf("You use %s and recover %d health (%d/%d).", m.Candidate.Name, healed, c.Health, r.deps.Inventory.EffectiveMaxHealth(c))))
	r.save(c)
	return evs
}
