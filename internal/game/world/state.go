// Package world owns the mutable world state layered over the immutable
// content templates: ground items per room, one-time pickups, and the live
// enemy population. It is mutated only on the game-loop goroutine.
package world

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/thornvale/mud/internal/game/character"
	"github.com/thornvale/mud/internal/game/content"
	"github.com/thornvale/mud/internal/game/enemy"
)

var (
	// ErrItemNotHere indicates a take of an item absent from the room.
	ErrItemNotHere = errors.New("there is nothing like that here")
	// ErrAlreadyTaken indicates a one-time item this character already took.
	ErrAlreadyTaken = errors.New("already taken")
)

// groundStack is one pile of a shared room item.
type groundStack struct {
	itemID   string
	quantity int
}

// State is the live world: shared ground items, per-character one-time
// items, and enemy instances. Template state comes from the content store;
// everything here is what diverges from it at runtime.
type State struct {
	content *content.Store
	enemies *enemy.Manager
	logger  *zap.Logger

	// ground holds the shared, takeable item piles per room id. Seeded from
	// the room templates; mutated by take and drop.
	ground map[string][]groundStack
	// onceItems holds the one-time items per room id, visible only to
	// characters that have not taken them yet.
	onceItems map[string][]content.RoomItem
}

// NewState builds the live world from loaded content: ground piles are
// seeded from room templates and every non-one-time room enemy is spawned.
// One-time enemies spawn lazily per room visit, filtered per character.
//
// Precondition: store must be a successfully loaded content store.
func NewState(store *content.Store, enemies *enemy.Manager, logger *zap.Logger) *State {
	s := &State{
		content:   store,
		enemies:   enemies,
		logger:    logger,
		ground:    make(map[string][]groundStack),
		onceItems: make(map[string][]content.RoomItem),
	}
	for _, area := range store.Areas() {
		for _, roomID := range store.RoomsInArea(area) {
			room, ok := store.Room(roomID)
			if !ok {
				continue
			}
			s.seedRoom(room)
		}
	}
	return s
}

func (s *State) seedRoom(room *content.Room) {
	for _, ri := range room.Items {
		if ri.Once {
			s.onceItems[room.ID] = append(s.onceItems[room.ID], ri)
			continue
		}
		s.addGround(room.ID, ri.ItemID, ri.Quantity)
	}
	for _, re := range room.Enemies {
		tmpl, ok := s.content.Enemy(re.EnemyID)
		if !ok {
			continue
		}
		s.enemies.Add(enemy.NewInstance(tmpl, room.ID, re.Once))
	}
}

// Enemies returns the live enemy manager.
func (s *State) Enemies() *enemy.Manager {
	return s.enemies
}

// GroundItem is one visible, takeable pile in a room.
type GroundItem struct {
	ItemID   string
	Quantity int
	// Once marks a per-character one-time item.
	Once bool
}

// VisibleItems returns the items a specific character can see in a room:
// every shared ground pile plus the one-time items they have not yet taken.
//
// Postcondition: the returned slice is a snapshot.
func (s *State) VisibleItems(roomID string, c *character.Character) []GroundItem {
	var out []GroundItem
	for _, g := range s.ground[roomID] {
		out = append(out, GroundItem{ItemID: g.itemID, Quantity: g.quantity})
	}
	for _, ri := range s.onceItems[roomID] {
		if c.TakenOneTimeItems[onceItemKey(roomID, ri.ItemID)] {
			continue
		}
		out = append(out, GroundItem{ItemID: ri.ItemID, Quantity: ri.Quantity, Once: true})
	}
	return out
}

// Take removes up to quantity of an item from the room for a character.
// One-time items are recorded on the character and yield their full
// quantity exactly once.
//
// Precondition: quantity > 0.
// Postcondition: Returns the quantity actually taken, which the caller adds
// to the inventory; on error nothing changed.
func (s *State) Take(roomID string, c *character.Character, itemID string, quantity int) (int, error) {
	// Shared piles first; one-time copies only when no pile matches.
	for i := range s.ground[roomID] {
		g := &s.ground[roomID][i]
		if g.itemID != itemID {
			continue
		}
		take := quantity
		if take > g.quantity {
			take = g.quantity
		}
		g.quantity -= take
		if g.quantity == 0 {
			s.ground[roomID] = append(s.ground[roomID][:i], s.ground[roomID][i+1:]...)
		}
		return take, nil
	}

	for _, ri := range s.onceItems[roomID] {
		if ri.ItemID != itemID {
			continue
		}
		key := onceItemKey(roomID, itemID)
		if c.TakenOneTimeItems[key] {
			return 0, fmt.Errorf("%w: %q", ErrAlreadyTaken, itemID)
		}
		c.TakenOneTimeItems[key] = true
		return ri.Quantity, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrItemNotHere, itemID)
}

// UndoTake reverts a Take whose inventory add failed, restoring the room
// pile or the one-time flag.
func (s *State) UndoTake(roomID string, c *character.Character, itemID string, quantity int, once bool) {
	if once {
		delete(c.TakenOneTimeItems, onceItemKey(roomID, itemID))
		return
	}
	s.addGround(roomID, itemID, quantity)
}

// Drop adds a quantity of an item to the room's shared ground pile.
//
// Precondition: quantity > 0.
func (s *State) Drop(roomID, itemID string, quantity int) {
	s.addGround(roomID, itemID, quantity)
}

func (s *State) addGround(roomID, itemID string, quantity int) {
	for i := range s.ground[roomID] {
		if s.ground[roomID][i].itemID == itemID {
			s.ground[roomID][i].quantity += quantity
			return
		}
	}
	s.ground[roomID] = append(s.ground[roomID], groundStack{itemID: itemID, quantity: quantity})
}

// IsOnceItem reports whether an item in a room is a one-time pickup.
func (s *State) IsOnceItem(roomID, itemID string) bool {
	for _, g := range s.ground[roomID] {
		if g.itemID == itemID {
			return false
		}
	}
	for _, ri := range s.onceItems[roomID] {
		if ri.ItemID == itemID {
			return true
		}
	}
	return false
}

// Respawn mints a fresh instance for a due respawn. Templates removed by a
// content reload drop silently.
//
// Postcondition: Returns the new instance, or nil when the template is gone.
func (s *State) Respawn(sp enemy.Spawn) *enemy.Instance {
	tmpl, ok := s.content.Enemy(sp.EnemyID)
	if !ok {
		s.logger.Warn("dropping respawn for removed enemy template",
			zap.String("enemy", sp.EnemyID),
			zap.String("room", sp.RoomID),
		)
		return nil
	}
	inst := enemy.NewInstance(tmpl, sp.RoomID, false)
	s.enemies.Add(inst)
	return inst
}

// VisibleEnemies returns the live enemies a character can see in a room:
// one-time enemies they have already defeated are hidden.
func (s *State) VisibleEnemies(roomID string, c *character.Character) []*enemy.Instance {
	var out []*enemy.Instance
	for _, inst := range s.enemies.InstancesInRoom(roomID) {
		if inst.Once && c.DefeatedOneTimeEnemies[inst.OnceKey()] {
			continue
		}
		out = append(out, inst)
	}
	return out
}

// onceItemKey builds the per-character tracking key "area.room.item".
func onceItemKey(roomID, itemID string) string {
	return roomID + "." + itemID
}
