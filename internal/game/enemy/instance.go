// Package enemy manages live enemy instances: spawning from templates,
// per-room tracking, threat tables, and respawn scheduling.
package enemy

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/thornvale/mud/internal/game/content"
)

// Instance is a live enemy occupying a room. It copies everything combat
// needs from its template, so a content reload never changes a fight in
// progress.
type Instance struct {
	// ID uniquely identifies this runtime instance.
	ID string
	// EnemyID is the source template's id.
	EnemyID string
	// Name is copied from the template for display.
	Name string
	// RoomID is the "area.room" this instance occupies.
	RoomID string

	CurrentHealth int
	MaxHealth     int
	Defense       int

	// Attacks is a copy of the template's attack table.
	Attacks []content.Attack
	// Experience and Gold are the per-participant base rewards.
	Experience int
	Gold       content.Range
	// Loot is a copy of the template's loot table.
	Loot []content.LootEntry

	// Threat maps character name to cumulative damage dealt to this
	// instance. It drives target selection.
	Threat map[string]int

	// Once marks an instance seeded from a one-time room entry; it never
	// respawns, and its defeat is recorded per character.
	Once bool
}

// NewInstance mints a live instance from a template at full health.
//
// Precondition: tmpl must be non-nil and validated; roomID must be a valid
// "area.room" id.
// Postcondition: CurrentHealth == MaxHealth and the threat table is empty.
func NewInstance(tmpl *content.Enemy, roomID string, once bool) *Instance {
	return &Instance{
		ID:            uuid.NewString(),
		EnemyID:       tmpl.ID,
		Name:          tmpl.Name,
		RoomID:        roomID,
		CurrentHealth: tmpl.MaxHealth,
		MaxHealth:     tmpl.MaxHealth,
		Defense:       tmpl.Defense,
		Attacks:       append([]content.Attack(nil), tmpl.Attacks...),
		Experience:    tmpl.Experience,
		Gold:          tmpl.Gold,
		Loot:          append([]content.LootEntry(nil), tmpl.Loot...),
		Threat:        make(map[string]int),
		Once:          once,
	}
}

// IsDead reports whether the instance has zero or fewer health points.
func (i *Instance) IsDead() bool {
	return i.CurrentHealth <= 0
}

// AddThreat records damage dealt by a character.
//
// Precondition: amount >= 0.
func (i *Instance) AddThreat(characterName string, amount int) {
	i.Threat[characterName] += amount
}

// ClearThreat erases a character's threat entry, typically when they leave
// the fight.
func (i *Instance) ClearThreat(characterName string) {
	delete(i.Threat, characterName)
}

// PickAttack selects a uniformly random attack from the table.
//
// Precondition: the instance has at least one attack (validated templates do).
func (i *Instance) PickAttack(rng *rand.Rand) content.Attack {
	return i.Attacks[rng.Intn(len(i.Attacks))]
}

// PickTarget selects a character name weighted by threat: each candidate is
// chosen with probability proportional to its threat entry. When no
// candidate has accrued threat, selection is uniform.
//
// Precondition: candidates must be non-empty.
// Postcondition: Returns one of candidates.
func (i *Instance) PickTarget(candidates []string, rng *rand.Rand) string {
	total := 0
	for _, name := range candidates {
		total += i.Threat[name]
	}
	if total <= 0 {
		return candidates[rng.Intn(len(candidates))]
	}
	roll := rng.Intn(total)
	for _, name := range candidates {
		roll -= i.Threat[name]
		if roll < 0 {
			return name
		}
	}
	return candidates[len(candidates)-1]
}

// HealthDescription returns a visible health state string for look output.
//
// Postcondition: Returns a non-empty string.
func (i *Instance) HealthDescription() string {
	if i.CurrentHealth <= 0 {
		return "dead"
	}
	pct := float64(i.CurrentHealth) / float64(i.MaxHealth)
	switch {
	case pct >= 1.0:
		return "unharmed"
	case pct >= 0.75:
		return "lightly wounded"
	case pct >= 0.50:
		return "wounded"
	case pct >= 0.25:
		return "heavily wounded"
	default:
		return "near death"
	}
}

// OnceKey returns the per-character defeat key for a one-time enemy, of the
// form "area.room.enemyId".
func (i *Instance) OnceKey() string {
	return i.RoomID + "." + i.EnemyID
}
