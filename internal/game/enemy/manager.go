package enemy

import (
	"fmt"
	"sync"
)

// Manager tracks live enemy instances by id and by room. Mutations happen
// on the game-loop goroutine; the lock guards read-mostly access from
// elsewhere.
type Manager struct {
	mu     sync.RWMutex
	byID   map[string]*Instance
	byRoom map[string][]*Instance
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{
		byID:   make(map[string]*Instance),
		byRoom: make(map[string][]*Instance),
	}
}

// Add registers a live instance in its room.
//
// Precondition: inst.ID must not already be registered.
func (m *Manager) Add(inst *Instance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[inst.ID] = inst
	m.byRoom[inst.RoomID] = append(m.byRoom[inst.RoomID], inst)
}

// Remove unregisters an instance, typically on defeat.
//
// Postcondition: the instance is gone from both indexes.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("enemy instance %q not found", id)
	}
	delete(m.byID, id)

	room := m.byRoom[inst.RoomID]
	for i, other := range room {
		if other.ID == id {
			m.byRoom[inst.RoomID] = append(room[:i], room[i+1:]...)
			break
		}
	}
	if len(m.byRoom[inst.RoomID]) == 0 {
		delete(m.byRoom, inst.RoomID)
	}
	return nil
}

// Get returns the instance with the given runtime id.
func (m *Manager) Get(id string) (*Instance, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inst, ok := m.byID[id]
	return inst, ok
}

// InstancesInRoom returns a snapshot of the live instances in a room, in
// spawn order.
//
// Postcondition: the returned slice is a copy; instances are shared.
func (m *Manager) InstancesInRoom(roomID string) []*Instance {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*Instance(nil), m.byRoom[roomID]...)
}

// CountInRoom counts live instances of one template in a room.
func (m *Manager) CountInRoom(roomID, enemyID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, inst := range m.byRoom[roomID] {
		if inst.EnemyID == enemyID {
			count++
		}
	}
	return count
}
