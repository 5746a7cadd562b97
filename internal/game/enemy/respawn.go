package enemy

import (
	"sync"
	"time"
)

// respawnEntry is one pending respawn.
type respawnEntry struct {
	enemyID string
	roomID  string
	readyAt time.Time
}

// Spawn identifies a template due to reappear in a room.
type Spawn struct {
	EnemyID string
	RoomID  string
}

// RespawnQueue schedules defeated enemies to reappear after a delay. The
// tick driver drains it; templates that vanished in a content reload are
// silently dropped by the caller.
type RespawnQueue struct {
	mu      sync.Mutex
	pending []respawnEntry
}

// NewRespawnQueue creates an empty queue.
func NewRespawnQueue() *RespawnQueue {
	return &RespawnQueue{}
}

// Schedule enqueues a respawn to fire at now+delay. No-op when delay <= 0.
//
// Precondition: enemyID and roomID must be non-empty.
func (q *RespawnQueue) Schedule(enemyID, roomID string, now time.Time, delay time.Duration) {
	if delay <= 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, respawnEntry{
		enemyID: enemyID,
		roomID:  roomID,
		readyAt: now.Add(delay),
	})
}

// Due drains and returns every entry whose readyAt has passed, in schedule
// order.
//
// Postcondition: returned entries are no longer pending.
func (q *RespawnQueue) Due(now time.Time) []Spawn {
	q.mu.Lock()
	defer q.mu.Unlock()

	var ready []Spawn
	var future []respawnEntry
	for _, e := range q.pending {
		if !e.readyAt.After(now) {
			ready = append(ready, Spawn{EnemyID: e.enemyID, RoomID: e.roomID})
		} else {
			future = append(future, e)
		}
	}
	q.pending = future
	return ready
}

// Len returns the number of pending respawns.
func (q *RespawnQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
