package content

import (
	"fmt"
)

// Attack is one entry in an enemy's attack table.
type Attack struct {
	// Name is the flavor name used in combat messages ("bite", "claw").
	Name string `yaml:"name"`
	// Damage is the inclusive damage range.
	Damage Range `yaml:"damage"`
	// Accuracy is the hit chance in percent; nil means always hits.
	Accuracy *int `yaml:"accuracy"`
}

// LootEntry is one drop chance in an enemy's loot table.
type LootEntry struct {
	// ItemID references an item template.
	ItemID string `yaml:"item"`
	// Chance is the drop probability in percent (0–100].
	Chance float64 `yaml:"chance"`
	// Quantity is the inclusive drop quantity range.
	Quantity Range `yaml:"quantity"`
}

// Enemy is an immutable enemy template. ID is assigned by the loader from
// the file base name.
type Enemy struct {
	ID          string      `yaml:"-"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	MaxHealth   int         `yaml:"max_health"`
	Attacks     []Attack    `yaml:"attacks"`
	Defense     int         `yaml:"defense"`
	Experience  int         `yaml:"experience"`
	Gold        Range       `yaml:"gold"`
	Loot        []LootEntry `yaml:"loot"`
	Stats       StatDeltas  `yaml:"stats"`
}

// Validate checks enemy template invariants.
//
// Precondition: e must not be nil and must have ID assigned.
// Postcondition: Returns nil iff the template is well formed; attack damage
// ranges are positive and loot chances are in (0, 100].
func (e *Enemy) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("enemy: id must not be empty")
	}
	if e.Name == "" {
		return fmt.Errorf("enemy %q: name must not be empty", e.ID)
	}
	if e.MaxHealth < 1 {
		return fmt.Errorf("enemy %q: max_health must be >= 1", e.ID)
	}
	if len(e.Attacks) == 0 {
		return fmt.Errorf("enemy %q: must define at least one attack", e.ID)
	}
	for i, atk := range e.Attacks {
		if atk.Damage.Min < 0 {
			return fmt.Errorf("enemy %q: attack[%d] damage min must be >= 0", e.ID, i)
		}
		if atk.Damage.Max < 1 {
			return fmt.Errorf("enemy %q: attack[%d] damage max must be >= 1", e.ID, i)
		}
		if atk.Accuracy != nil && (*atk.Accuracy < 0 || *atk.Accuracy > 100) {
			return fmt.Errorf("enemy %q: attack[%d] accuracy must be 0-100, got %d", e.ID, i, *atk.Accuracy)
		}
	}
	if e.Defense < 0 {
		return fmt.Errorf("enemy %q: defense must be >= 0", e.ID)
	}
	if e.Experience < 0 {
		return fmt.Errorf("enemy %q: experience must be >= 0", e.ID)
	}
	if e.Gold.Min < 0 {
		return fmt.Errorf("enemy %q: gold min must be >= 0", e.ID)
	}
	for i, entry := range e.Loot {
		if entry.ItemID == "" {
			return fmt.Errorf("enemy %q: loot[%d] must reference an item", e.ID, i)
		}
		if entry.Chance <= 0 || entry.Chance > 100 {
			return fmt.Errorf("enemy %q: loot[%d] chance must be in (0, 100], got %g", e.ID, i, entry.Chance)
		}
		if entry.Quantity.Min < 1 && !entry.Quantity.IsZero() {
			return fmt.Errorf("enemy %q: loot[%d] quantity min must be >= 1", e.ID, i)
		}
	}
	return nil
}

// QuantityFor returns the effective quantity range for a loot entry,
// defaulting to exactly one when the template omits it.
func (l LootEntry) QuantityFor() Range {
	if l.Quantity.IsZero() {
		return Range{Min: 1, Max: 1}
	}
	return l.Quantity
}
