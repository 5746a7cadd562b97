package inventory

import (
	"errors"
	"fmt"

	"github.com/thornvale/mud/internal/game/character"
	"github.com/thornvale/mud/internal/game/content"
)

var (
	// ErrNotEquippable indicates the item has no equipment slot.
	ErrNotEquippable = errors.New("item cannot be equipped")
	// ErrSlotOccupied indicates the item's slot already holds another item.
	ErrSlotOccupied = errors.New("slot is occupied")
	// ErrNotEquipped indicates an unequip of an empty slot.
	ErrNotEquipped = errors.New("nothing equipped in that slot")
)

// slotDisplayNames maps slot identifiers to player-facing labels.
var slotDisplayNames = map[string]string{
	content.SlotMainHand:  "Main Hand",
	content.SlotOffHand:   "Off Hand",
	content.SlotHead:      "Head",
	content.SlotChest:     "Chest",
	content.SlotLegs:      "Legs",
	content.SlotFeet:      "Feet",
	content.SlotHands:     "Hands",
	content.SlotAccessory: "Accessory",
	content.SlotRing:      "Ring",
	content.SlotNecklace:  "Necklace",
}

// SlotDisplayName returns the player-facing label for a slot identifier.
//
// Postcondition: Returns the registered label, or the identifier itself.
func SlotDisplayName(slot string) string {
	if label, ok := slotDisplayNames[slot]; ok {
		return label
	}
	return slot
}

// Equip moves a carried item into its equipment slot. The item stays in the
// inventory; the slot holds a reference to it.
//
// Precondition: the character must carry at least one unit of the item.
// Postcondition: on success, c.Equipment[item.Slot] == itemID and the
// previous contents of the slot, if any, were untouched (the equip fails
// instead).
func (s *Service) Equip(c *character.Character, itemID string) (slot string, err error) {
	item, ok := s.content.Item(itemID)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownItem, itemID)
	}
	if !item.IsEquippable() {
		return "", fmt.Errorf("%w: %q", ErrNotEquippable, itemID)
	}
	if c.InventoryCount(itemID) < 1 {
		return "", fmt.Errorf("%w: %q", ErrNotEnoughItems, itemID)
	}
	if occupied, ok := c.Equipment[item.Slot]; ok && occupied != "" {
		if occupied == itemID {
			return item.Slot, nil
		}
		return "", fmt.Errorf("%w: %s holds %q", ErrSlotOccupied, SlotDisplayName(item.Slot), occupied)
	}
	if c.Equipment == nil {
		c.Equipment = make(map[string]string)
	}
	c.Equipment[item.Slot] = itemID
	return item.Slot, nil
}

// Unequip clears an equipment slot. The item remains in the inventory.
//
// Postcondition: on success, the slot is empty and the returned id is the
// item that occupied it.
func (s *Service) Unequip(c *character.Character, slot string) (itemID string, err error) {
	itemID, ok := c.Equipment[slot]
	if !ok || itemID == "" {
		return "", fmt.Errorf("%w: %s", ErrNotEquipped, SlotDisplayName(slot))
	}
	delete(c.Equipment, slot)
	return itemID, nil
}

// UnequipItem clears whichever slot holds the given item.
func (s *Service) UnequipItem(c *character.Character, itemID string) (slot string, err error) {
	for slot, id := range c.Equipment {
		if id == itemID {
			delete(c.Equipment, slot)
			return slot, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrNotEquipped, itemID)
}

// DerivedStats computes the character's effective stats: base stats plus
// the sum of the stat deltas of every equipped item. Unknown item ids in
// equipment slots contribute nothing.
//
// Postcondition: Returns base stats when nothing is equipped.
func (s *Service) DerivedStats(c *character.Character) character.Stats {
	stats := c.BaseStats
	for _, itemID := range c.Equipment {
		item, ok := s.content.Item(itemID)
		if !ok {
			continue
		}
		stats = stats.Add(character.Stats{
			Damage:  item.Stats.Damage,
			Defense: item.Stats.Defense,
			Speed:   item.Stats.Speed,
			Health:  item.Stats.Health,
		})
	}
	return stats
}

// EffectiveMaxHealth returns max health including equipment health deltas.
//
// Postcondition: Returns >= 1 for any living character.
func (s *Service) EffectiveMaxHealth(c *character.Character) int {
	return c.MaxHealth + s.DerivedStats(c).Health
}
