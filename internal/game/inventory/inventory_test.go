package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/thornvale/mud/internal/game/character"
	"github.com/thornvale/mud/internal/game/content"
	"github.com/thornvale/mud/internal/game/inventory"
	"github.com/thornvale/mud/internal/testutil"
)

func fixtureService(t *testing.T, capacity int) *inventory.Service {
	t.Helper()
	store, err := content.Load(testutil.ContentFixture(t))
	require.NoError(t, err)
	return inventory.NewService(store, capacity)
}

func newCharacter() *character.Character {
	return character.New("Alice", character.Location{Area: "town", Room: "square"})
}

func TestAddStackableMergesIntoOneSlot(t *testing.T) {
	svc := fixtureService(t, 30)
	c := newCharacter()

	require.NoError(t, svc.Add(c, "thyme", 2))
	require.NoError(t, svc.Add(c, "thyme", 3))

	assert.Equal(t, 5, c.InventoryCount("thyme"))
	assert.Equal(t, 1, svc.UsedSlots(c))
}

func TestAddNonStackableUsesOneSlotPerUnit(t *testing.T) {
	svc := fixtureService(t, 30)
	c := newCharacter()

	require.NoError(t, svc.Add(c, "rusty_sword", 2))
	assert.Equal(t, 2, c.InventoryCount("rusty_sword"))
	assert.Equal(t, 2, svc.UsedSlots(c))
}

func TestAddRejectsUnknownItemAndBadQuantity(t *testing.T) {
	svc := fixtureService(t, 30)
	c := newCharacter()

	assert.ErrorIs(t, svc.Add(c, "excalibur", 1), inventory.ErrUnknownItem)
	assert.Error(t, svc.Add(c, "thyme", 0))
	assert.Empty(t, c.Inventory)
}

func TestAddAtCapacityIsAtomic(t *testing.T) {
	svc := fixtureService(t, 2)
	c := newCharacter()

	require.NoError(t, svc.Add(c, "rusty_sword", 1))
	err := svc.Add(c, "rusty_sword", 2)
	assert.ErrorIs(t, err, inventory.ErrInventoryFull)
	assert.Equal(t, 1, c.InventoryCount("rusty_sword"), "failed add changed nothing")

	// A stack still fits: it only needs one slot.
	require.NoError(t, svc.Add(c, "thyme", 10))
	assert.Equal(t, 2, svc.UsedSlots(c))
}

func TestRemoveSpansEntries(t *testing.T) {
	svc := fixtureService(t, 30)
	c := newCharacter()
	c.Inventory = []character.InventoryEntry{
		{ItemID: "thyme", Quantity: 2},
		{ItemID: "bread", Quantity: 1},
		{ItemID: "thyme", Quantity: 3},
	}

	require.NoError(t, svc.Remove(c, "thyme", 4))
	assert.Equal(t, 1, c.InventoryCount("thyme"))
	assert.Equal(t, 1, c.InventoryCount("bread"), "other items untouched")
}

func TestRemoveRefusesMoreThanCarried(t *testing.T) {
	svc := fixtureService(t, 30)
	c := newCharacter()
	require.NoError(t, svc.Add(c, "thyme", 2))

	err := svc.Remove(c, "thyme", 3)
	assert.ErrorIs(t, err, inventory.ErrNotEnoughItems)
	assert.Equal(t, 2, c.InventoryCount("thyme"), "failed remove changed nothing")
}

func TestRemoveRefusesEquippedItem(t *testing.T) {
	svc := fixtureService(t, 30)
	c := newCharacter()
	require.NoError(t, svc.Add(c, "rusty_sword", 1))
	_, err := svc.Equip(c, "rusty_sword")
	require.NoError(t, err)

	err = svc.Remove(c, "rusty_sword", 1)
	assert.ErrorIs(t, err, inventory.ErrItemEquipped)

	_, err = svc.UnequipItem(c, "rusty_sword")
	require.NoError(t, err)
	assert.NoError(t, svc.Remove(c, "rusty_sword", 1))
}

func TestEquipRequiresCarriedEquippable(t *testing.T) {
	svc := fixtureService(t, 30)
	c := newCharacter()

	_, err := svc.Equip(c, "rusty_sword")
	assert.ErrorIs(t, err, inventory.ErrNotEnoughItems, "not carried")

	require.NoError(t, svc.Add(c, "thyme", 1))
	_, err = svc.Equip(c, "thyme")
	assert.ErrorIs(t, err, inventory.ErrNotEquippable)
}

func TestEquipOccupiedSlot(t *testing.T) {
	dir := testutil.ContentFixture(t)
	testutil.WriteContentFile(t, dir, "items/iron_helm.yaml", `
name: Iron Helm
description: Dented but solid.
kind: armor
slot: head
stats:
  defense: 4
value: 20
weight: 2.0
stackable: false
`)
	store, err := content.Load(dir)
	require.NoError(t, err)
	svc := inventory.NewService(store, 30)

	c := newCharacter()
	require.NoError(t, svc.Add(c, "leather_cap", 1))
	require.NoError(t, svc.Add(c, "iron_helm", 1))

	slot, err := svc.Equip(c, "leather_cap")
	require.NoError(t, err)
	assert.Equal(t, content.SlotHead, slot)

	// Re-equipping the same item is a no-op.
	_, err = svc.Equip(c, "leather_cap")
	assert.NoError(t, err)

	// A second head item is refused until the slot is cleared.
	_, err = svc.Equip(c, "iron_helm")
	assert.ErrorIs(t, err, inventory.ErrSlotOccupied)

	_, err = svc.Unequip(c, content.SlotHead)
	require.NoError(t, err)
	_, err = svc.Equip(c, "iron_helm")
	assert.NoError(t, err)
}

func TestUnequipEmptySlot(t *testing.T) {
	svc := fixtureService(t, 30)
	c := newCharacter()

	_, err := svc.Unequip(c, content.SlotHead)
	assert.ErrorIs(t, err, inventory.ErrNotEquipped)
}

func TestDerivedStatsSumEquipmentDeltas(t *testing.T) {
	svc := fixtureService(t, 30)
	c := newCharacter()
	require.NoError(t, svc.Add(c, "rusty_sword", 1))
	require.NoError(t, svc.Add(c, "leather_cap", 1))

	base := svc.DerivedStats(c)
	assert.Equal(t, c.BaseStats, base, "nothing equipped")

	_, err := svc.Equip(c, "rusty_sword")
	require.NoError(t, err)
	_, err = svc.Equip(c, "leather_cap")
	require.NoError(t, err)

	stats := svc.DerivedStats(c)
	assert.Equal(t, c.BaseStats.Damage+5, stats.Damage)
	assert.Equal(t, c.BaseStats.Defense+2, stats.Defense)

	_, err = svc.Unequip(c, content.SlotHead)
	require.NoError(t, err)
	stats = svc.DerivedStats(c)
	assert.Equal(t, c.BaseStats.Defense, stats.Defense, "unequip reverts the delta")
}

func TestConsumeHealsAndRemovesOne(t *testing.T) {
	svc := fixtureService(t, 30)
	c := newCharacter()
	c.Health = 30
	require.NoError(t, svc.Add(c, "bread", 2))

	healed, err := svc.Consume(c, "bread")
	require.NoError(t, err)
	assert.Equal(t, 10, healed)
	assert.Equal(t, 40, c.Health)
	assert.Equal(t, 1, c.InventoryCount("bread"))

	// Healing caps at max health.
	c.Health = 45
	healed, err = svc.Consume(c, "bread")
	require.NoError(t, err)
	assert.Equal(t, 5, healed)
	assert.Equal(t, c.MaxHealth, c.Health)

	_, err = svc.Consume(c, "bread")
	assert.ErrorIs(t, err, inventory.ErrNotEnoughItems)
}

func TestConsumeRejectsNonConsumable(t *testing.T) {
	svc := fixtureService(t, 30)
	c := newCharacter()
	require.NoError(t, svc.Add(c, "thyme", 1))

	_, err := svc.Consume(c, "thyme")
	assert.Error(t, err)
	assert.Equal(t, 1, c.InventoryCount("thyme"))
}

// Add-then-remove leaves total counts unchanged for any interleaving.
func TestAddRemoveRoundTripProperty(t *testing.T) {
	svc := fixtureService(t, 100)

	rapid.Check(t, func(t *rapid.T) {
		c := newCharacter()
		ids := []string{"thyme", "bread", "wolf_pelt"}
		want := map[string]int{}

		steps := rapid.IntRange(1, 20).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			id := rapid.SampledFrom(ids).Draw(t, "item")
			qty := rapid.IntRange(1, 5).Draw(t, "qty")
			if rapid.Bool().Draw(t, "add") {
				if err := svc.Add(c, id, qty); err == nil {
					want[id] += qty
				}
			} else {
				if err := svc.Remove(c, id, qty); err == nil {
					want[id] -= qty
				}
			}
		}
		for _, id := range ids {
			if got := c.InventoryCount(id); got != want[id] {
				t.Fatalf("%s: count %d, want %d", id, got, want[id])
			}
			if want[id] < 0 {
				t.Fatalf("%s: negative expected count, removal accounting broken", id)
			}
		}
	})
}
