package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/thornvale/mud/internal/game/content"
	"github.com/thornvale/mud/internal/game/event"
	"github.com/thornvale/mud/internal/game/inventory"
	"github.com/thornvale/mud/internal/game/session"
)

func handleEquip(r *Router, s *session.Session, in Input) []event.Event {
	if len(in.Args) == 0 {
		return warn(s.Name(), "Equip what?")
	}
	c := s.Character

	m, ok := BestMatch(in.Raw, r.carriedCandidates(s))
	if !ok {
		return warn(c.Name, fmt.Sprintf("You aren't carrying %q.", in.Raw))
	}

	slot, err := r.deps.Inventory.Equip(c, m.Candidate.ID)
	if err != nil {
		switch {
		case errors.Is(err, inventory.ErrNotEquippable):
			return warn(c.Name, fmt.Sprintf("You can't equip %s.", m.Candidate.Name))
		case errors.Is(err, inventory.ErrSlotOccupied):
			return warn(c.Name, "Something already occupies that slot. Unequip it first.")
		default:
			return warn(c.Name, fmt.Sprintf("You can't equip %s.", m.Candidate.Name))
		}
	}

	evs := echoMatch(c.Name, m)
	evs = append(evs, event.ToCharacter(c.Name, event.KindSuccess,
		fmt.Sprintf("You equip %s (%s).", m.Candidate.Name, inventory.SlotDisplayName(slot))))
	r.save(c)
	return evs
}

func handleUnequip(r *Router, s *session.Session, in Input) []event.Event {
	if len(in.Args) == 0 {
		return warn(s.Name(), "Unequip what?")
	}
	c := s.Character

	// Prefer matching an equipped item by name; fall back to a slot id.
	var equipped []Candidate
	for _, itemID := range c.Equipment {
		equipped = append(equipped, Candidate{ID: itemID, Name: r.itemName(itemID)})
	}
	if m, ok := BestMatch(in.Raw, equipped); ok {
		slot, err := r.deps.Inventory.UnequipItem(c, m.Candidate.ID)
		if err != nil {
			return warn(c.Name, "Nothing like that is equipped.")
		}
		evs := echoMatch(c.Name, m)
		evs = append(evs, event.ToCharacter(c.Name, event.KindSuccess,
			fmt.Sprintf("You unequip %s (%s).", m.Candidate.Name, inventory.SlotDisplayName(slot))))
		r.save(c)
		return evs
	}

	slot := strings.ToLower(strings.ReplaceAll(in.Raw, " ", "_"))
	itemID, err := r.deps.Inventory.Unequip(c, slot)
	if err != nil {
		return warn(c.Name, "Nothing like that is equipped.")
	}
	r.save(c)
	return []event.Event{event.ToCharacter(c.Name, event.KindSuccess,
		fmt.Sprintf("You unequip %s (%s).", r.itemName(itemID), inventory.SlotDisplayName(slot)))}
}

func handleEquipment(r *Router, s *session.Session, in Input) []event.Event {
	c := s.Character

	var b strings.Builder
	b.WriteString("Equipment:")
	empty := true
	for _, slot := range content.Slots {
		itemID, ok := c.Equipment[slot]
		if !ok || itemID == "" {
			continue
		}
		empty = false
		fmt.Fprintf(&b, "\n  %-10s %s", inventory.SlotDisplayName(slot)+":", r.itemName(itemID))
	}
	if empty {
		return []event.Event{event.ToCharacter(c.Name, event.KindNormal, "You have nothing equipped.")}
	}

	stats := r.deps.Inventory.DerivedStats(c)
	fmt.Fprintf(&b, "\nDerived stats: damage %d, defense %d, speed %d, max health %d",
		stats.Damage, stats.Defense, stats.Speed, r.deps.Inventory.EffectiveMaxHealth(c))
	return []event.Event{event.ToCharacter(c.Name, event.KindNormal, b.String())}
}
