package command

import (
	"fmt"
	"strings"

	"github.com/thornvale/mud/internal/game/event"
	"github.com/thornvale/mud/internal/game/inventory"
	"github.com/thornvale/mud/internal/game/session"
)

func handleLook(r *Router, s *session.Session, in Input) []event.Event {
	if len(in.Args) == 0 {
		return r.lookAround(s)
	}
	return r.describeTarget(s, in.Raw)
}

func handleExamine(r *Router, s *session.Session, in Input) []event.Event {
	if len(in.Args) == 0 {
		return warn(s.Name(), "Examine what?")
	}
	return r.describeTarget(s, in.Raw)
}

// describeTarget fuzzy-resolves a look/examine target across room NPCs,
// enemies, ground items, and carried items, in that priority.
func (r *Router) describeTarget(s *session.Session, query string) []event.Event {
	c := s.Character
	roomID := c.RoomID()

	if m, ok := BestMatch(query, r.npcCandidates(roomID)); ok {
		npc, _ := r.deps.Content.NPC(m.Candidate.ID)
		evs := echoMatch(c.Name, m)
		return append(evs, event.ToCharacter(c.Name, event.KindNormal, npc.Description))
	}

	if m, ok := BestMatch(query, r.enemyCandidates(s)); ok {
		inst, found := r.deps.World.Enemies().Get(m.Candidate.ID)
		if found {
			evs := echoMatch(c.Name, m)
			return append(evs, event.ToCharacter(c.Name, event.KindNormal,
				fmt.Sprintf("The %s looks %s.", inst.Name, inst.HealthDescription())))
		}
	}

	if m, ok := BestMatch(query, r.groundCandidates(s)); ok {
		evs := echoMatch(c.Name, m)
		return append(evs, r.itemDetail(c.Name, m.Candidate.ID)...)
	}

	if m, ok := BestMatch(query, r.carriedCandidates(s)); ok {
		evs := echoMatch(c.Name, m)
		return append(evs, r.itemDetail(c.Name, m.Candidate.ID)...)
	}

	return warn(c.Name, fmt.Sprintf("You don't see %q here.", query))
}

// itemDetail renders an item template, including stat deltas for gear.
func (r *Router) itemDetail(name, itemID string) []event.Event {
	item, ok := r.deps.Content.Item(itemID)
	if !ok {
		return warn(name, "You can't make anything of it.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s", item.Name, item.Description)
	if item.IsEquippable() {
		fmt.Fprintf(&b, "\nSlot: %s", inventory.SlotDisplayName(item.Slot))
		var parts []string
		if item.Stats.Damage != 0 {
			parts = append(parts, fmt.Sprintf("damage %+d", item.Stats.Damage))
		}
		if item.Stats.Defense != 0 {
			parts = append(parts, fmt.Sprintf("defense %+d", item.Stats.Defense))
		}
		if item.Stats.Speed != 0 {
			parts = append(parts, fmt.Sprintf("speed %+d", item.Stats.Speed))
		}
		if item.Stats.Health != 0 {
			parts = append(parts, fmt.Sprintf("health %+d", item.Stats.Health))
		}
		if len(parts) > 0 {
			fmt.Fprintf(&b, "\nStats: %s", strings.Join(parts, ", "))
		}
	}
	if item.Effect != nil && item.Effect.Heal > 0 {
		fmt.Fprintf(&b, "\nRestores %d health when used.", item.Effect.Heal)
	}
	return []event.Event{event.ToCharacter(name, event.KindNormal, b.String())}
}

// npcCandidates lists the NPCs in a room for fuzzy matching.
func (r *Router) npcCandidates(roomID string) []Candidate {
	room, ok := r.deps.Content.Room(roomID)
	if !ok {
		return nil
	}
	var out []Candidate
	for _, id := range room.NPCs {
		if npc, ok := r.deps.Content.NPC(id); ok {
			out = append(out, Candidate{ID: id, Name: npc.Name})
		}
	}
	return out
}

// enemyCandidates lists the visible live enemies; IDs are instance ids.
func (r *Router) enemyCandidates(s *session.Session) []Candidate {
	var out []Candidate
	for _, inst := range r.deps.World.VisibleEnemies(s.Character.RoomID(), s.Character) {
		out = append(out, Candidate{ID: inst.ID, Name: inst.Name})
	}
	return out
}

// groundCandidates lists the takeable items in the character's room.
func (r *Router) groundCandidates(s *session.Session) []Candidate {
	var out []Candidate
	for _, gi := range r.deps.World.VisibleItems(s.Character.RoomID(), s.Character) {
		out = append(out, Candidate{ID: gi.ItemID, Name: r.itemName(gi.ItemID)})
	}
	return out
}

// carriedCandidates lists the character's inventory for fuzzy matching,
// deduplicated by item id in inventory order.
func (r *Router) carriedCandidates(s *session.Session) []Candidate {
	seen := make(map[string]bool)
	var out []Candidate
	for _, e := range s.Character.Inventory {
		if seen[e.ItemID] {
			continue
		}
		seen[e.ItemID] = true
		out = append(out, Candidate{ID: e.ItemID, Name: r.itemName(e.ItemID)})
	}
	return out
}
