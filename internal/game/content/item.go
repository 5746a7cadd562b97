package content

import (
	"fmt"
)

// Item kind constants.
const (
	KindWeapon     = "weapon"
	KindArmor      = "armor"
	KindShield     = "shield"
	KindAccessory  = "accessory"
	KindConsumable = "consumable"
	KindMisc       = "misc"
)

// validKinds is the set of accepted item kinds.
var validKinds = map[string]bool{
	KindWeapon:     true,
	KindArmor:      true,
	KindShield:     true,
	KindAccessory:  true,
	KindConsumable: true,
	KindMisc:       true,
}

// Equipment slot constants.
const (
	SlotMainHand  = "main_hand"
	SlotOffHand   = "off_hand"
	SlotHead      = "head"
	SlotChest     = "chest"
	SlotLegs      = "legs"
	SlotFeet      = "feet"
	SlotHands     = "hands"
	SlotAccessory = "accessory"
	SlotRing      = "ring"
	SlotNecklace  = "necklace"
)

// Slots lists every equipment slot in display order.
var Slots = []string{
	SlotMainHand, SlotOffHand, SlotHead, SlotChest, SlotLegs,
	SlotFeet, SlotHands, SlotAccessory, SlotRing, SlotNecklace,
}

// validSlots is the set of accepted equipment slots.
var validSlots = func() map[string]bool {
	m := make(map[string]bool, len(Slots))
	for _, s := range Slots {
		m[s] = true
	}
	return m
}()

// StatDeltas are the additive stat contributions of an item.
type StatDeltas struct {
	Damage  int `yaml:"damage"`
	Defense int `yaml:"defense"`
	Speed   int `yaml:"speed"`
	Health  int `yaml:"health"`
}

// ConsumableEffect describes what happens when a consumable item is used.
type ConsumableEffect struct {
	// Heal is the number of health points restored.
	Heal int `yaml:"heal"`
}

// Item is an immutable item template. ID is assigned by the loader from the
// file base name.
type Item struct {
	ID          string            `yaml:"-"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Kind        string            `yaml:"kind"`
	Slot        string            `yaml:"slot"`
	Stats       StatDeltas        `yaml:"stats"`
	Effect      *ConsumableEffect `yaml:"effect"`
	Value       int               `yaml:"value"`
	Weight      float64           `yaml:"weight"`
	// Stackable defaults to true when absent from the file.
	Stackable *bool `yaml:"stackable"`
}

// IsStackable reports whether instances of the item merge into one entry.
//
// Postcondition: Returns true when the template omits the stackable flag.
func (i *Item) IsStackable() bool {
	return i.Stackable == nil || *i.Stackable
}

// IsEquippable reports whether the item occupies an equipment slot.
func (i *Item) IsEquippable() bool {
	return i.Slot != ""
}

// Validate checks item template invariants.
//
// Precondition: i must not be nil and must have ID assigned.
// Postcondition: Returns nil iff the template is well formed.
func (i *Item) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("item: id must not be empty")
	}
	if i.Name == "" {
		return fmt.Errorf("item %q: name must not be empty", i.ID)
	}
	if !validKinds[i.Kind] {
		return fmt.Errorf("item %q: kind must be one of [weapon, armor, shield, accessory, consumable, misc], got %q", i.ID, i.Kind)
	}
	if i.Slot != "" && !validSlots[i.Slot] {
		return fmt.Errorf("item %q: unknown slot %q", i.ID, i.Slot)
	}
	if i.Kind == KindConsumable && i.Effect == nil {
		return fmt.Errorf("item %q: consumable requires an effect", i.ID)
	}
	if i.Value < 0 {
		return fmt.Errorf("item %q: value must be >= 0", i.ID)
	}
	if i.Weight < 0 {
		return fmt.Errorf("item %q: weight must be >= 0", i.ID)
	}
	return nil
}
