package combat

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/thornvale/mud/internal/config"
	"github.com/thornvale/mud/internal/game/character"
	"github.com/thornvale/mud/internal/game/content"
	"github.com/thornvale/mud/internal/game/enemy"
	"github.com/thornvale/mud/internal/game/event"
	"github.com/thornvale/mud/internal/game/inventory"
	"github.com/thornvale/mud/internal/game/quest"
	"github.com/thornvale/mud/internal/game/world"
)

var (
	// ErrAlreadyInCombat indicates an attack by a character already fighting.
	ErrAlreadyInCombat = errors.New("already in combat")
	// ErrNotInCombat indicates a combat action outside any session.
	ErrNotInCombat = errors.New("not in combat")
	// ErrTargetDead indicates an attack on a defeated enemy.
	ErrTargetDead = errors.New("target is already dead")
)

// Resolver finds the live character bound to a playing session.
type Resolver interface {
	Character(name string) (*character.Character, bool)
}

// Saver persists a character after combat mutates durable state.
type Saver interface {
	Save(c *character.Character) error
}

// Engine owns every combat session and advances them on combat ticks. It
// runs entirely on the game-loop goroutine; a session tick never
// interleaves with command processing.
type Engine struct {
	store    *content.Store
	world    *world.State
	inv      *inventory.Service
	quests   *quest.Service
	respawns *enemy.RespawnQueue
	resolver Resolver
	saver    Saver
	cfg      config.GameConfig
	rng      *rand.Rand
	logger   *zap.Logger

	sessions map[string]*Session // room id -> session
	byPlayer map[string]*Session // character name -> session
}

// NewEngine creates a combat engine. The rng is injectable so scenario
// tests can seed it.
//
// Precondition: every dependency must be non-nil.
func NewEngine(
	store *content.Store,
	w *world.State,
	inv *inventory.Service,
	quests *quest.Service,
	respawns *enemy.RespawnQueue,
	resolver Resolver,
	saver Saver,
	cfg config.GameConfig,
	rng *rand.Rand,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		store:    store,
		world:    w,
		inv:      inv,
		quests:   quests,
		respawns: respawns,
		resolver: resolver,
		saver:    saver,
		cfg:      cfg,
		rng:      rng,
		logger:   logger,
		sessions: make(map[string]*Session),
		byPlayer: make(map[string]*Session),
	}
}

// SessionFor returns the session a character participates in.
func (e *Engine) SessionFor(name string) (*Session, bool) {
	s, ok := e.byPlayer[name]
	return s, ok
}

// InCombat reports whether a character is in any session.
func (e *Engine) InCombat(name string) bool {
	_, ok := e.byPlayer[name]
	return ok
}

// SessionInRoom returns the session occupying a room, if any.
func (e *Engine) SessionInRoom(roomID string) (*Session, bool) {
	s, ok := e.sessions[roomID]
	return s, ok
}

// Attack puts a character into combat with an enemy instance: joining the
// room's existing session when it already contains that enemy, otherwise
// creating a new one.
//
// Precondition: target must be alive and in the character's room.
// Postcondition: the character is a session participant with inCombat set;
// damage is only dealt on subsequent ticks.
func (e *Engine) Attack(c *character.Character, target *enemy.Instance, now time.Time) ([]event.Event, error) {
	if target.IsDead() {
		return nil, fmt.Errorf("%w: %s", ErrTargetDead, target.Name)
	}
	if _, fighting := e.byPlayer[c.Name]; fighting {
		return nil, fmt.Errorf("%w", ErrAlreadyInCombat)
	}
	roomID := c.RoomID()

	s, ok := e.sessions[roomID]
	if ok {
		if !s.HasEnemy(target.ID) {
			s.Enemies = append(s.Enemies, target)
		}
		s.Players = append(s.Players, c.Name)
	} else {
		s = &Session{
			RoomID:    roomID,
			Players:   []string{c.Name},
			Enemies:   []*enemy.Instance{target},
			StartTime: now,
		}
		e.sessions[roomID] = s
	}
	e.byPlayer[c.Name] = s
	c.InCombat = true

	evs := []event.Event{
		event.ToCharacter(c.Name, event.KindCombat, fmt.Sprintf("You attack the %s!", target.Name)),
		event.ToRoomExcept(roomID, c.Name, event.KindCombat, fmt.Sprintf("%s attacks the %s!", c.Name, target.Name)),
	}
	return evs, nil
}

// Flee attempts to escape combat. Success removes the character from the
// session and moves them through a random exit; failure grants one enemy a
// free strike before the next regular round.
//
// Postcondition: Returns fled == true iff the character left the session.
func (e *Engine) Flee(c *character.Character, now time.Time) (fled bool, evs []event.Event, err error) {
	s, ok := e.byPlayer[c.Name]
	if !ok {
		return false, nil, fmt.Errorf("%w", ErrNotInCombat)
	}

	if e.rng.Float64() >= e.cfg.FleeSuccessChance {
		evs = append(evs, event.ToCharacter(c.Name, event.KindCombat, "You fail to escape!"))
		evs = append(evs, event.ToRoomExcept(s.RoomID, c.Name, event.KindCombat,
			fmt.Sprintf("%s tries to flee but fails!", c.Name)))
		if len(s.Enemies) > 0 {
			striker := s.Enemies[e.rng.Intn(len(s.Enemies))]
			evs = append(evs, e.enemyStrike(s, striker, c, now)...)
		}
		return false, evs, nil
	}

	roomID := s.RoomID
	e.leave(s, c.Name)
	c.InCombat = false

	room, hasRoom := e.store.Room(roomID)
	exitDir := ""
	if hasRoom {
		dirs := room.ExitDirections()
		if len(dirs) > 0 {
			exitDir = dirs[e.rng.Intn(len(dirs))]
		}
	}
	if exitDir != "" {
		dest, _ := room.ExitTo(exitDir)
		area, roomName, ok := strings.Cut(dest, ".")
		if ok {
			c.MoveTo(character.Location{Area: area, Room: roomName})
		}
		evs = append(evs, event.ToCharacter(c.Name, event.KindCombat, fmt.Sprintf("You flee %s!", exitDir)))
		evs = append(evs, event.ToRoomExcept(roomID, c.Name, event.KindCombat, fmt.Sprintf("%s flees %s!", c.Name, exitDir)))
	} else {
		// No exits: the escape still breaks off the fight in place.
		evs = append(evs, event.ToCharacter(c.Name, event.KindCombat, "You break away from the fight!"))
		evs = append(evs, event.ToRoomExcept(roomID, c.Name, event.KindCombat, fmt.Sprintf("%s breaks away from the fight!", c.Name)))
	}
	evs = append(evs, e.endCheck(s, now)...)
	e.save(c)
	return true, evs, nil
}

// Leave removes a character from their session for an external reason:
// disconnect, supersede, or room change.
//
// Postcondition: the character holds no threat in any enemy of the session.
func (e *Engine) Leave(name, reason string, now time.Time) []event.Event {
	s, ok := e.byPlayer[name]
	if !ok {
		return nil
	}
	e.leave(s, name)
	if c, ok := e.resolver.Character(name); ok {
		c.InCombat = false
	}
	evs := []event.Event{event.ToRoomExcept(s.RoomID, name, event.KindCombat,
		fmt.Sprintf("%s leaves the fight (%s).", name, reason))}
	return append(evs, e.endCheck(s, now)...)
}

// Tick advances every session one round: phase one resolves player strikes,
// phase two enemy strikes. Sessions advance in room-id order so a single
// tick is deterministic under a seeded rng.
//
// Postcondition: no defeated enemy remains in any session and no removed
// participant holds threat (invariant over both phases).
func (e *Engine) Tick(now time.Time) []event.Event {
	roomIDs := make([]string, 0, len(e.sessions))
	for id := range e.sessions {
		roomIDs = append(roomIDs, id)
	}
	sort.Strings(roomIDs)

	var evs []event.Event
	for _, roomID := range roomIDs {
		s, ok := e.sessions[roomID]
		if !ok {
			continue
		}
		evs = append(evs, e.tickSession(s, now)...)
	}
	return evs
}

func (e *Engine) tickSession(s *Session, now time.Time) []event.Event {
	var evs []event.Event

	// Phase one: player strikes, in join order.
	for _, name := range append([]string(nil), s.Players...) {
		if len(s.Enemies) == 0 {
			break
		}
		c, ok := e.resolver.Character(name)
		if !ok {
			continue
		}
		target := s.Enemies[e.rng.Intn(len(s.Enemies))]
		damage := e.variedRound(e.inv.DerivedStats(c).Damage)
		target.CurrentHealth -= damage
		target.AddThreat(name, damage)

		evs = append(evs, event.ToCharacter(name, event.KindCombat,
			fmt.Sprintf("You hit the %s for %d damage.", target.Name, damage)))
		evs = append(evs, event.ToRoomExcept(s.RoomID, name, event.KindCombat,
			fmt.Sprintf("%s hits the %s for %d damage.", name, target.Name, damage)))

		if target.IsDead() {
			evs = append(evs, e.defeat(s, target, now)...)
		}
	}

	// Phase two: enemy strikes.
	for _, inst := range append([]*enemy.Instance(nil), s.Enemies...) {
		if inst.IsDead() || len(s.Players) == 0 {
			continue
		}
		targetName := inst.PickTarget(s.Players, e.rng)
		c, ok := e.resolver.Character(targetName)
		if !ok {
			continue
		}
		evs = append(evs, e.enemyStrike(s, inst, c, now)...)
	}

	if end := e.endCheck(s, now); end != nil {
		evs = append(evs, end...)
	} else {
		s.Round++
	}
	return evs
}

// enemyStrike resolves one enemy attack against a character, including the
// accuracy check, defense reduction, and death handling.
func (e *Engine) enemyStrike(s *Session, inst *enemy.Instance, c *character.Character, now time.Time) []event.Event {
	atk := inst.PickAttack(e.rng)
	if atk.Accuracy != nil && e.rng.Intn(100) >= *atk.Accuracy {
		return []event.Event{
			event.ToCharacter(c.Name, event.KindCombat, fmt.Sprintf("The %s's %s misses you.", inst.Name, atk.Name)),
			event.ToRoomExcept(s.RoomID, c.Name, event.KindCombat,
				fmt.Sprintf("The %s's %s misses %s.", inst.Name, atk.Name, c.Name)),
		}
	}

	raw := e.variedRound(e.rollRange(atk.Damage))
	damage := raw - e.inv.DerivedStats(c).Defense
	if damage < 1 {
		damage = 1
	}
	c.Health -= damage

	evs := []event.Event{
		event.ToCharacter(c.Name, event.KindCombat, fmt.Sprintf("The %s's %s hits you for %d damage.", inst.Name, atk.Name, damage)),
		event.ToRoomExcept(s.RoomID, c.Name, event.KindCombat,
			fmt.Sprintf("The %s's %s hits %s for %d damage.", inst.Name, atk.Name, c.Name, damage)),
	}
	if c.Health <= 0 {
		evs = append(evs, e.death(s, c)...)
	}
	return evs
}

// defeat removes a dead enemy from session and world, grants rewards, and
// schedules its respawn.
func (e *Engine) defeat(s *Session, inst *enemy.Instance, now time.Time) []event.Event {
	s.removeEnemy(inst.ID)
	if err := e.world.Enemies().Remove(inst.ID); err != nil {
		e.logger.Warn("defeated enemy missing from world", zap.String("id", inst.ID), zap.Error(err))
	}

	evs := []event.Event{event.ToRoom(s.RoomID, event.KindCombat, fmt.Sprintf("The %s dies!", inst.Name))}

	participants := append([]string(nil), s.Players...)
	for _, name := range participants {
		c, ok := e.resolver.Character(name)
		if !ok {
			continue
		}
		gold := e.rollRange(inst.Gold)
		c.Gold += gold
		levels := c.GrantExperience(inst.Experience)
		e.quests.RecordProgress(c, content.ObjectiveKill, inst.EnemyID, 1)
		if inst.Once {
			c.DefeatedOneTimeEnemies[inst.OnceKey()] = true
		}

		switch {
		case gold > 0:
			evs = append(evs, event.ToCharacter(name, event.KindSuccess,
				fmt.Sprintf("You gain %d experience and %d gold.", inst.Experience, gold)))
		default:
			evs = append(evs, event.ToCharacter(name, event.KindSuccess,
				fmt.Sprintf("You gain %d experience.", inst.Experience)))
		}
		if levels > 0 {
			evs = append(evs, event.ToCharacter(name, event.KindSuccess,
				fmt.Sprintf("You are now level %d!", c.Level)))
		}
	}

	// One Bernoulli trial per loot entry; the drop goes to one random
	// participant.
	for _, entry := range inst.Loot {
		if e.rng.Float64()*100 >= entry.Chance || len(participants) == 0 {
			continue
		}
		recipient := participants[e.rng.Intn(len(participants))]
		c, ok := e.resolver.Character(recipient)
		if !ok {
			continue
		}
		qty := e.rollRange(entry.QuantityFor())
		itemName := entry.ItemID
		if item, ok := e.store.Item(entry.ItemID); ok {
			itemName = item.Name
		}
		if err := e.inv.Add(c, entry.ItemID, qty); err != nil {
			e.world.Drop(s.RoomID, entry.ItemID, qty)
			evs = append(evs, event.ToCharacter(recipient, event.KindLoot,
				fmt.Sprintf("The %s drops %d x %s, but your hands are full; it falls to the ground.", inst.Name, qty, itemName)))
			continue
		}
		evs = append(evs, event.ToCharacter(recipient, event.KindLoot,
			fmt.Sprintf("You receive %d x %s.", qty, itemName)))
	}

	for _, name := range participants {
		if c, ok := e.resolver.Character(name); ok {
			e.save(c)
		}
	}

	if !inst.Once {
		e.respawns.Schedule(inst.EnemyID, inst.RoomID, now, e.cfg.EnemyRespawnInterval)
	}
	return evs
}

// death handles a character reaching zero health: removal from the
// session, full heal, and teleport to the homestone or the configured
// default respawn room.
func (e *Engine) death(s *Session, c *character.Character) []event.Event {
	e.leave(s, c.Name)
	c.InCombat = false
	c.Health = c.MaxHealth

	dest := e.respawnLocation(c)
	fromRoom := s.RoomID
	c.MoveTo(dest)
	e.save(c)

	return []event.Event{
		event.ToRoomExcept(fromRoom, c.Name, event.KindCombat, fmt.Sprintf("%s collapses!", c.Name)),
		event.ToCharacter(c.Name, event.KindSystem, "You have been defeated. You awaken somewhere safe."),
	}
}

func (e *Engine) respawnLocation(c *character.Character) character.Location {
	if c.Homestone != nil {
		return *c.Homestone
	}
	area, room, ok := strings.Cut(e.cfg.DefaultRespawnRoom, ".")
	if !ok {
		return c.Location()
	}
	return character.Location{Area: area, Room: room}
}

// endCheck tears the session down when either side is empty.
//
// Postcondition: Returns nil when the session continues.
func (e *Engine) endCheck(s *Session, now time.Time) []event.Event {
	if !s.over() {
		return nil
	}
	var evs []event.Event
	for _, name := range append([]string(nil), s.Players...) {
		if c, ok := e.resolver.Character(name); ok {
			c.InCombat = false
			e.save(c)
		}
		delete(e.byPlayer, name)
		evs = append(evs, event.ToCharacter(name, event.KindSystem, "The fight is over."))
	}
	delete(e.sessions, s.RoomID)
	return evs
}

// leave removes one player and their threat, and unbinds the index.
func (e *Engine) leave(s *Session, name string) {
	s.removePlayer(name)
	delete(e.byPlayer, name)
}

// variedRound applies the configured uniform damage variance and rounds,
// with a floor of 1.
func (e *Engine) variedRound(base int) int {
	v := e.cfg.DamageVariance
	m := 1 - v + e.rng.Float64()*2*v
	out := int(math.Round(float64(base) * m))
	if out < 1 {
		out = 1
	}
	return out
}

// rollRange resolves a scalar-or-range value to a uniform sample.
func (e *Engine) rollRange(r content.Range) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + e.rng.Intn(r.Max-r.Min+1)
}

// save reconciles collect objectives against the inventory, then persists.
// Looted quest items advance their objectives in the same round they drop.
func (e *Engine) save(c *character.Character) {
	e.quests.Reconcile(c)
	if err := e.saver.Save(c); err != nil {
		e.logger.Error("saving character after combat", zap.String("character", c.Name), zap.Error(err))
	}
}
