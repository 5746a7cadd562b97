// Package content loads and owns the immutable game content templates:
// items, enemies, NPCs, quests, and rooms.
package content

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Range is an inclusive integer interval parsed from YAML as either a
// scalar (min == max) or a two-element sequence [min, max].
type Range struct {
	Min int
	Max int
}

// UnmarshalYAML implements yaml.Unmarshaler for the scalar-or-pair form.
//
// Postcondition: Min <= Max, or an error is returned.
func (r *Range) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var n int
		if err := value.Decode(&n); err != nil {
			return fmt.Errorf("range: %w", err)
		}
		r.Min, r.Max = n, n
	case yaml.SequenceNode:
		var pair []int
		if err := value.Decode(&pair); err != nil {
			return fmt.Errorf("range: %w", err)
		}
		if len(pair) != 2 {
			return fmt.Errorf("range: expected [min, max], got %d elements", len(pair))
		}
		r.Min, r.Max = pair[0], pair[1]
	default:
		return fmt.Errorf("range: expected scalar or [min, max] sequence")
	}
	if r.Min > r.Max {
		return fmt.Errorf("range: min (%d) must be <= max (%d)", r.Min, r.Max)
	}
	return nil
}

// IsZero reports whether the range is the zero interval [0, 0].
func (r Range) IsZero() bool {
	return r.Min == 0 && r.Max == 0
}
