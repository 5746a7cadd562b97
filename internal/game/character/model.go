// Package character defines the character domain model: stats, inventory
// entries, quest logs, and the name policy.
package character

import (
	"encoding/json"
	"time"
)

// Stats holds the four derived-stat contributors shared by characters and
// equipment.
type Stats struct {
	Damage  int `json:"damage"`
	Defense int `json:"defense"`
	Speed   int `json:"speed"`
	Health  int `json:"health"`
}

// Add returns the component-wise sum of two stat blocks.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Damage:  s.Damage + o.Damage,
		Defense: s.Defense + o.Defense,
		Speed:   s.Speed + o.Speed,
		Health:  s.Health + o.Health,
	}
}

// InventoryEntry is one stack (or single item) in a character's inventory.
// Order is preserved across saves.
type InventoryEntry struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// ObjectiveProgress tracks one quest objective on a character.
//
// Invariant: 0 <= Current <= Quantity.
type ObjectiveProgress struct {
	Type     string `json:"type"`
	Target   string `json:"target"`
	Quantity int    `json:"quantity"`
	Current  int    `json:"current"`
	// GivenByQuestGiver is copied from the template so abandon can reclaim
	// starter items without re-resolving the quest.
	GivenByQuestGiver bool `json:"givenByQuestGiver,omitempty"`
}

// Satisfied reports whether the objective has reached its quantity.
func (o ObjectiveProgress) Satisfied() bool {
	return o.Current >= o.Quantity
}

// ActiveQuest is one accepted, not-yet-turned-in quest.
type ActiveQuest struct {
	QuestID    string              `json:"questId"`
	Objectives []ObjectiveProgress `json:"objectives"`
}

// Complete reports whether every objective is satisfied.
func (a *ActiveQuest) Complete() bool {
	for _, o := range a.Objectives {
		if !o.Satisfied() {
			return false
		}
	}
	return true
}

// Location is an area-qualified room reference.
type Location struct {
	Area string `json:"area"`
	Room string `json:"room"`
}

// RoomID returns the fully qualified "area.room" id.
func (l Location) RoomID() string {
	return l.Area + "." + l.Room
}

// Character is a player character's durable state. It is owned by the file
// store; a live session borrows a reference under the game-loop invariant.
type Character struct {
	Name         string `json:"name"`
	PasswordHash string `json:"passwordHash"`
	Salt         string `json:"salt"`

	Level      int `json:"level"`
	Experience int `json:"experience"`
	Health     int `json:"health"`
	MaxHealth  int `json:"maxHealth"`
	Gold       int `json:"gold"`

	CurrentArea string `json:"currentArea"`
	CurrentRoom string `json:"currentRoom"`
	X           int    `json:"x"`
	Y           int    `json:"y"`

	Inventory []InventoryEntry  `json:"inventory"`
	Equipment map[string]string `json:"equipment"`
	BaseStats Stats             `json:"baseStats"`

	ActiveQuests    []*ActiveQuest `json:"activeQuests"`
	CompletedQuests []string       `json:"completedQuests"`

	TakenOneTimeItems      map[string]bool `json:"takenOneTimeItems"`
	DefeatedOneTimeEnemies map[string]bool `json:"defeatedOneTimeEnemies"`

	Friends     []string          `json:"friends"`
	FriendNotes map[string]string `json:"friendNotes"`

	Homestone *Location `json:"homestone,omitempty"`
	InCombat  bool      `json:"inCombat"`
	LastSaved time.Time `json:"lastSaved"`

	// Extra preserves unknown fields across load/save for forward
	// compatibility with newer record versions.
	Extra map[string]json.RawMessage `json:"-"`
}

// New returns a fresh level-1 character at the given location.
//
// Precondition: name must already be canonical.
// Postcondition: Health == MaxHealth; all collections are initialised.
func New(name string, loc Location) *Character {
	return &Character{
		Name:                   name,
		Level:                  1,
		Experience:             0,
		Health:                 50,
		MaxHealth:              50,
		Gold:                   0,
		CurrentArea:            loc.Area,
		CurrentRoom:            loc.Room,
		Inventory:              nil,
		Equipment:              make(map[string]string),
		BaseStats:              Stats{Damage: 2, Defense: 0, Speed: 1, Health: 0},
		TakenOneTimeItems:      make(map[string]bool),
		DefeatedOneTimeEnemies: make(map[string]bool),
		FriendNotes:            make(map[string]string),
	}
}

// Location returns the character's current area-qualified location.
func (c *Character) Location() Location {
	return Location{Area: c.CurrentArea, Room: c.CurrentRoom}
}

// RoomID returns the character's current "area.room" id.
func (c *Character) RoomID() string {
	return c.Location().RoomID()
}

// MoveTo updates the character's location.
//
// Precondition: roomID must be a valid "area.room" id.
func (c *Character) MoveTo(loc Location) {
	c.CurrentArea = loc.Area
	c.CurrentRoom = loc.Room
}

// InventoryCount totals quantities across all entries with the given item id.
//
// Postcondition: Returns >= 0.
func (c *Character) InventoryCount(itemID string) int {
	total := 0
	for _, e := range c.Inventory {
		if e.ItemID == itemID {
			total += e.Quantity
		}
	}
	return total
}

// IsEquipped reports whether the item occupies any equipment slot.
func (c *Character) IsEquipped(itemID string) bool {
	for _, id := range c.Equipment {
		if id == itemID {
			return true
		}
	}
	return false
}

// ActiveQuest returns the active quest entry for a quest id.
//
// Postcondition: Returns (quest, true) if active, or (nil, false).
func (c *Character) ActiveQuest(questID string) (*ActiveQuest, bool) {
	for _, aq := range c.ActiveQuests {
		if aq.QuestID == questID {
			return aq, true
		}
	}
	return nil, false
}

// HasCompleted reports whether the quest id is in the completed list.
func (c *Character) HasCompleted(questID string) bool {
	for _, id := range c.CompletedQuests {
		if id == questID {
			return true
		}
	}
	return false
}
