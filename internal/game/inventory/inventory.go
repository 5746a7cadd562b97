// Package inventory implements carried-item and equipment management for
// characters: stacking, capacity, equip slots, and derived stats.
package inventory

import (
	"errors"
	"fmt"

	"github.com/thornvale/mud/internal/game/character"
	"github.com/thornvale/mud/internal/game/content"
)

var (
	// ErrUnknownItem indicates an item id with no template.
	ErrUnknownItem = errors.New("unknown item")
	// ErrInventoryFull indicates the add would exceed the slot capacity.
	ErrInventoryFull = errors.New("inventory is full")
	// ErrNotEnoughItems indicates a removal larger than the carried quantity.
	ErrNotEnoughItems = errors.New("not enough of that item")
	// ErrItemEquipped indicates a removal of an item occupying an equipment
	// slot; it must be unequipped first.
	ErrItemEquipped = errors.New("item is equipped")
)

// Service manages character inventories against the loaded item templates.
// Stackable items merge into a single entry; non-stackable items occupy one
// entry per unit. Entries count against the slot capacity.
type Service struct {
	content  *content.Store
	capacity int
}

// NewService creates an inventory service.
//
// Precondition: store must be non-nil and capacity > 0.
func NewService(store *content.Store, capacity int) *Service {
	return &Service{content: store, capacity: capacity}
}

// Capacity returns the configured slot capacity.
func (s *Service) Capacity() int {
	return s.capacity
}

// Add places quantity units of an item into the character's inventory. The
// add is atomic: if the capacity would be exceeded, nothing changes.
//
// Precondition: quantity > 0.
// Postcondition: on success, InventoryCount(itemID) grew by quantity; on
// error, the inventory is unchanged.
func (s *Service) Add(c *character.Character, itemID string, quantity int) error {
	item, ok := s.content.Item(itemID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownItem, itemID)
	}
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	if item.IsStackable() {
		for i := range c.Inventory {
			if c.Inventory[i].ItemID == itemID {
				c.Inventory[i].Quantity += quantity
				return nil
			}
		}
		if len(c.Inventory)+1 > s.capacity {
			return fmt.Errorf("%w: %d of %d slots used", ErrInventoryFull, len(c.Inventory), s.capacity)
		}
		c.Inventory = append(c.Inventory, character.InventoryEntry{ItemID: itemID, Quantity: quantity})
		return nil
	}

	if len(c.Inventory)+quantity > s.capacity {
		return fmt.Errorf("%w: %d of %d slots used", ErrInventoryFull, len(c.Inventory), s.capacity)
	}
	for i := 0; i < quantity; i++ {
		c.Inventory = append(c.Inventory, character.InventoryEntry{ItemID: itemID, Quantity: 1})
	}
	return nil
}

// Remove takes quantity units of an item out of the character's inventory.
// The removal is atomic and refuses to remove items occupying an equipment
// slot unless enough unequipped copies exist.
//
// Precondition: quantity > 0.
// Postcondition: on success, InventoryCount(itemID) shrank by quantity; on
// error, the inventory is unchanged.
func (s *Service) Remove(c *character.Character, itemID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	have := c.InventoryCount(itemID)
	if have < quantity {
		return fmt.Errorf("%w: have %d, need %d of %q", ErrNotEnoughItems, have, quantity, itemID)
	}
	// An equipped item pins one copy in the inventory.
	if c.IsEquipped(itemID) && have-quantity < 1 {
		return fmt.Errorf("%w: %q", ErrItemEquipped, itemID)
	}

	remaining := quantity
	kept := c.Inventory[:0]
	for _, e := range c.Inventory {
		if remaining > 0 && e.ItemID == itemID {
			take := remaining
			if take > e.Quantity {
				take = e.Quantity
			}
			e.Quantity -= take
			remaining -= take
			if e.Quantity == 0 {
				continue
			}
		}
		kept = append(kept, e)
	}
	c.Inventory = kept
	return nil
}

// Has reports whether the character carries at least quantity of an item.
func (s *Service) Has(c *character.Character, itemID string, quantity int) bool {
	return c.InventoryCount(itemID) >= quantity
}

// UsedSlots returns the number of occupied inventory slots.
func (s *Service) UsedSlots(c *character.Character) int {
	return len(c.Inventory)
}

// Consume applies a consumable item's effect and removes one unit.
//
// Postcondition: on success, health is raised by the heal amount capped at
// max health and one unit is removed.
func (s *Service) Consume(c *character.Character, itemID string) (healed int, err error) {
	item, ok := s.content.Item(itemID)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownItem, itemID)
	}
	if item.Kind != content.KindConsumable || item.Effect == nil {
		return 0, fmt.Errorf("%q cannot be consumed", itemID)
	}
	if c.InventoryCount(itemID) < 1 {
		return 0, fmt.Errorf("%w: %q", ErrNotEnoughItems, itemID)
	}

	max := s.EffectiveMaxHealth(c)
	healed = item.Effect.Heal
	if c.Health+healed > max {
		healed = max - c.Health
	}
	c.Health += healed
	if err := s.Remove(c, itemID, 1); err != nil {
		return 0, err
	}
	return healed, nil
}
