package content

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Direction names accepted as room exits.
var validDirections = map[string]bool{
	"north": true, "south": true, "east": true, "west": true,
	"up": true, "down": true,
}

// RoomItem is an item placed in a room, parsed from YAML as either a bare
// item id or a map with id, quantity, and a one-time flag.
type RoomItem struct {
	ItemID   string
	Quantity int
	// Once marks items that a character may take only once, tracked on the
	// character as "area.room.item".
	Once bool
}

// UnmarshalYAML implements yaml.Unmarshaler for the scalar-or-map form.
//
// Postcondition: Quantity >= 1.
func (ri *RoomItem) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var id string
		if err := value.Decode(&id); err != nil {
			return fmt.Errorf("room item: %w", err)
		}
		ri.ItemID = id
		ri.Quantity = 1
	case yaml.MappingNode:
		var aux struct {
			Item     string `yaml:"item"`
			Quantity int    `yaml:"quantity"`
			Once     bool   `yaml:"once"`
		}
		if err := value.Decode(&aux); err != nil {
			return fmt.Errorf("room item: %w", err)
		}
		if aux.Item == "" {
			return fmt.Errorf("room item: item id must not be empty")
		}
		if aux.Quantity == 0 {
			aux.Quantity = 1
		}
		if aux.Quantity < 1 {
			return fmt.Errorf("room item %q: quantity must be >= 1", aux.Item)
		}
		ri.ItemID = aux.Item
		ri.Quantity = aux.Quantity
		ri.Once = aux.Once
	default:
		return fmt.Errorf("room item: expected id or {item, quantity, once}")
	}
	return nil
}

// RoomEnemy is an enemy spawn in a room, parsed like RoomItem.
type RoomEnemy struct {
	EnemyID string
	// Once marks enemies each character can defeat only once.
	Once bool
}

// UnmarshalYAML implements yaml.Unmarshaler for the scalar-or-map form.
func (re *RoomEnemy) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var id string
		if err := value.Decode(&id); err != nil {
			return fmt.Errorf("room enemy: %w", err)
		}
		re.EnemyID = id
	case yaml.MappingNode:
		var aux struct {
			Enemy string `yaml:"enemy"`
			Once  bool   `yaml:"once"`
		}
		if err := value.Decode(&aux); err != nil {
			return fmt.Errorf("room enemy: %w", err)
		}
		if aux.Enemy == "" {
			return fmt.Errorf("room enemy: enemy id must not be empty")
		}
		re.EnemyID = aux.Enemy
		re.Once = aux.Once
	default:
		return fmt.Errorf("room enemy: expected id or {enemy, once}")
	}
	return nil
}

// GridSize is the width and height of an area's coordinate grid.
type GridSize struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Room is an immutable room template. ID is "area.file-base-name", assigned
// by the loader.
type Room struct {
	ID          string `yaml:"-"`
	Area        string `yaml:"-"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Exits maps a direction to a fully qualified "area.room" id.
	Exits   map[string]string `yaml:"exits"`
	Items   []RoomItem        `yaml:"items"`
	NPCs    []string          `yaml:"npcs"`
	Enemies []RoomEnemy       `yaml:"enemies"`
	// X and Y are optional grid coordinates within the area.
	X *int `yaml:"x"`
	Y *int `yaml:"y"`
	// GridSize, when present, declares the area grid; the first room file
	// in an area that carries one wins.
	GridSize *GridSize `yaml:"grid_size"`
}

// Validate checks room template invariants that do not require the full
// store (cross-references are checked by Store.Load).
//
// Precondition: r must not be nil and must have ID and Area assigned.
// Postcondition: Returns nil iff the room is locally well formed.
func (r *Room) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("room: id must not be empty")
	}
	if r.Name == "" {
		return fmt.Errorf("room %q: name must not be empty", r.ID)
	}
	if r.Description == "" {
		return fmt.Errorf("room %q: description must not be empty", r.ID)
	}
	for dir, target := range r.Exits {
		if !validDirections[dir] {
			return fmt.Errorf("room %q: unknown exit direction %q", r.ID, dir)
		}
		if !strings.Contains(target, ".") {
			return fmt.Errorf("room %q: exit %q target %q is not an area.room id", r.ID, dir, target)
		}
	}
	return nil
}

// ExitTo returns the destination room id for a direction.
//
// Postcondition: Returns (roomID, true) if the exit exists, or ("", false).
func (r *Room) ExitTo(dir string) (string, bool) {
	target, ok := r.Exits[dir]
	return target, ok
}

// ExitDirections returns the room's exit directions in a stable order.
func (r *Room) ExitDirections() []string {
	ordered := []string{"north", "south", "east", "west", "up", "down"}
	var out []string
	for _, d := range ordered {
		if _, ok := r.Exits[d]; ok {
			out = append(out, d)
		}
	}
	return out
}
