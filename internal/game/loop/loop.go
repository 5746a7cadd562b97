// Package loop runs the single game-loop goroutine. All mutable game state
// (characters, world, combat, quests) is touched only from this goroutine;
// transports hand work in through Submit and read results from session
// outboxes.
package loop

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/thornvale/mud/internal/config"
	"github.com/thornvale/mud/internal/game/character"
	"github.com/thornvale/mud/internal/game/combat"
	"github.com/thornvale/mud/internal/game/command"
	"github.com/thornvale/mud/internal/game/enemy"
	"github.com/thornvale/mud/internal/game/event"
	"github.com/thornvale/mud/internal/game/inventory"
	"github.com/thornvale/mud/internal/game/session"
	"github.com/thornvale/mud/internal/game/world"
)

// ErrStopped is returned by Submit after the loop has shut down.
var ErrStopped = errors.New("game loop stopped")

// inboxSize bounds pending work so a flood of input back-pressures the
// transports instead of growing without bound.
const inboxSize = 256

// Deps carries the loop's collaborators.
type Deps struct {
	Router     *command.Router
	Bus        *event.Bus
	Sessions   *session.Registry
	Engine     *combat.Engine
	World      *world.State
	Respawns   *enemy.RespawnQueue
	Inventory  *inventory.Service
	Characters command.Persistence
	Cfg        config.GameConfig
	Logger     *zap.Logger
}

// Loop owns the game goroutine.
type Loop struct {
	deps  Deps
	inbox chan func()
	done  chan struct{}
}

// New creates a Loop. Run must be called before ticks fire; Submit may be
// called immediately.
func New(deps Deps) *Loop {
	return &Loop{
		deps:  deps,
		inbox: make(chan func(), inboxSize),
		done:  make(chan struct{}),
	}
}

// Run drives the loop until ctx is cancelled. It owns the tick clocks: the
// game tick (regeneration and enemy respawns) and the combat tick.
//
// Postcondition: after Run returns, Submit fails with ErrStopped.
func (l *Loop) Run(ctx context.Context) error {
	gameTick := time.NewTicker(l.deps.Cfg.TickInterval)
	defer gameTick.Stop()
	combatTick := time.NewTicker(l.deps.Cfg.CombatTickInterval)
	defer combatTick.Stop()
	defer close(l.done)

	l.deps.Logger.Info("game loop started",
		zap.Duration("tickInterval", l.deps.Cfg.TickInterval),
		zap.Duration("combatTickInterval", l.deps.Cfg.CombatTickInterval),
	)

	for {
		select {
		case <-ctx.Done():
			l.deps.Logger.Info("game loop stopping")
			return nil
		case fn := <-l.inbox:
			fn()
		case now := <-gameTick.C:
			l.GameTick(now)
		case now := <-combatTick.C:
			l.CombatTick(now)
		}
	}
}

// Submit queues fn to run on the game goroutine. It blocks when the inbox
// is full, back-pressuring the caller.
func (l *Loop) Submit(fn func()) error {
	select {
	case <-l.done:
		return ErrStopped
	default:
	}
	select {
	case l.inbox <- fn:
		return nil
	case <-l.done:
		return ErrStopped
	}
}

// HandleLine queues one input line from a playing session.
func (l *Loop) HandleLine(s *session.Session, line string) error {
	return l.Submit(func() {
		if !s.Playing() {
			return
		}
		l.deps.Bus.PublishAll(l.deps.Router.Dispatch(s, line, time.Now()))
	})
}

// StartPlaying binds an authenticated session to its character on the game
// goroutine. A previous session for the same character is superseded: it is
// told why and its transport is closed.
func (l *Loop) StartPlaying(s *session.Session, c *character.Character) error {
	return l.Submit(func() {
		s.Character = c
		old := l.deps.Sessions.SetPlaying(s, c.Name)
		if old != nil {
			_ = old.Outbox().Push(event.ToCharacter(c.Name, event.KindSystem,
				"Your character has logged in from another connection."))
			if old.CloseTransport != nil {
				old.CloseTransport()
			}
			// The superseded session is already past Playing, so its
			// transport teardown will not leave combat for it. Do it here.
			l.deps.Bus.PublishAll(l.deps.Engine.Leave(c.Name, "disconnect", time.Now()))
		}

		// A character that disconnected mid-fight comes back out of combat.
		if c.InCombat && !l.deps.Engine.InCombat(c.Name) {
			c.InCombat = false
		}

		l.deps.Bus.Publish(event.ToRoomExcept(c.RoomID(), c.Name, event.KindNormal,
			fmt.Sprintf("%s appears.", c.Name)))
		l.deps.Bus.PublishAll(l.deps.Router.Dispatch(s, "look", time.Now()))
	})
}

// Disconnect tears a session down: combat is left (enemies keep their
// threat for the fight, minus this character), the character is saved, and
// the session is removed from the registry.
func (l *Loop) Disconnect(s *session.Session) {
	err := l.Submit(func() {
		if s.Playing() {
			c := s.Character
			l.deps.Bus.PublishAll(l.deps.Engine.Leave(c.Name, "disconnect", time.Now()))
			if err := l.deps.Characters.Save(c); err != nil {
				l.deps.Logger.Error("saving character on disconnect",
					zap.String("character", c.Name), zap.Error(err))
			}
			l.deps.Bus.Publish(event.ToRoomExcept(c.RoomID(), c.Name, event.KindNormal,
				fmt.Sprintf("%s vanishes.", c.Name)))
		}
		l.deps.Sessions.Remove(s.ID)
	})
	if err != nil {
		// Loop already stopped; just drop the registry entry.
		l.deps.Sessions.Remove(s.ID)
	}
}

// GameTick runs one base game tick: out-of-combat health regeneration and
// due enemy respawns.
func (l *Loop) GameTick(now time.Time) {
	for _, s := range l.deps.Sessions.Sessions() {
		if !s.Playing() {
			continue
		}
		c := s.Character
		if c.InCombat {
			continue
		}
		max := l.deps.Inventory.EffectiveMaxHealth(c)
		if c.Health >= max {
			continue
		}
		heal := int(math.Ceil(float64(max) * l.deps.Cfg.RegenRatePerTick))
		if heal < 1 {
			heal = 1
		}
		c.Health += heal
		if c.Health >= max {
			c.Health = max
			l.deps.Bus.Publish(event.ToCharacter(c.Name, event.KindNormal, "You feel fully refreshed."))
		}
	}

	for _, sp := range l.deps.Respawns.Due(now) {
		inst := l.deps.World.Respawn(sp)
		if inst == nil {
			continue
		}
		l.deps.Bus.Publish(event.ToRoom(inst.RoomID, event.KindNormal,
			fmt.Sprintf("A %s prowls in.", inst.Name)))
	}
}

// CombatTick runs one combat round across all active sessions.
func (l *Loop) CombatTick(now time.Time) {
	l.deps.Bus.PublishAll(l.deps.Engine.Tick(now))
}
