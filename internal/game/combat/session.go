// Package combat implements the shared tick-based combat engine: one
// session per room groups every fighting character and enemy, advanced in
// two phases per combat tick.
package combat

import (
	"time"

	"github.com/thornvale/mud/internal/game/enemy"
)

// Session is one ongoing fight in one room.
type Session struct {
	// RoomID is the "area.room" the fight occupies.
	RoomID string
	// Players lists participating character names in join order.
	Players []string
	// Enemies lists the live enemy instances in the fight.
	Enemies []*enemy.Instance
	// Round counts completed P1/P2 cycles.
	Round int
	// StartTime is when the session was created.
	StartTime time.Time
}

// HasPlayer reports whether a character participates in the session.
func (s *Session) HasPlayer(name string) bool {
	for _, p := range s.Players {
		if p == name {
			return true
		}
	}
	return false
}

// HasEnemy reports whether an enemy instance is part of the session.
func (s *Session) HasEnemy(id string) bool {
	for _, e := range s.Enemies {
		if e.ID == id {
			return true
		}
	}
	return false
}

// removePlayer drops a character and erases their threat from every enemy.
func (s *Session) removePlayer(name string) {
	for i, p := range s.Players {
		if p == name {
			s.Players = append(s.Players[:i], s.Players[i+1:]...)
			break
		}
	}
	for _, e := range s.Enemies {
		e.ClearThreat(name)
	}
}

// removeEnemy drops a defeated enemy instance from the session.
func (s *Session) removeEnemy(id string) {
	for i, e := range s.Enemies {
		if e.ID == id {
			s.Enemies = append(s.Enemies[:i], s.Enemies[i+1:]...)
			return
		}
	}
}

// over reports whether either side is empty.
func (s *Session) over() bool {
	return len(s.Players) == 0 || len(s.Enemies) == 0
}
