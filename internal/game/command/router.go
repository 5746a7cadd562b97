package command

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/thornvale/mud/internal/config"
	"github.com/thornvale/mud/internal/game/character"
	"github.com/thornvale/mud/internal/game/combat"
	"github.com/thornvale/mud/internal/game/content"
	"github.com/thornvale/mud/internal/game/event"
	"github.com/thornvale/mud/internal/game/inventory"
	"github.com/thornvale/mud/internal/game/quest"
	"github.com/thornvale/mud/internal/game/session"
	"github.com/thornvale/mud/internal/game/world"
)

// Persistence is the slice of the character store handlers need.
type Persistence interface {
	// Save persists the character, retrying per configuration.
	Save(c *character.Character) error
	// SetPassword re-derives and stores the password hash, then saves.
	SetPassword(c *character.Character, newPassword string) error
}

// Deps carries every collaborator the handlers touch. All of it is used
// only on the game-loop goroutine.
type Deps struct {
	Content    *content.Store
	World      *world.State
	Inventory  *inventory.Service
	Quests     *quest.Service
	Combat     *combat.Engine
	Sessions   *session.Registry
	Characters Persistence
	Cfg        config.GameConfig
	Logger     *zap.Logger
	// OnQuit tears the session down after a quit command; wired by the
	// game loop.
	OnQuit func(s *session.Session)
}

// Input is one parsed command heading into a handler.
type Input struct {
	// Verb is the canonical verb after alias resolution.
	Verb string
	// Alias is the verb as typed, for direction verbs.
	Alias string
	Args  []string
	Raw   string
	Now   time.Time
}

// HandlerFunc executes one verb. Handlers are all-or-nothing: on any
// validation failure they return a warning event and mutate nothing.
type HandlerFunc func(r *Router, s *session.Session, in Input) []event.Event

// Router parses input lines, resolves verbs against the closed set, and
// dispatches to handlers with panic isolation.
type Router struct {
	deps     Deps
	registry *Registry
}

// NewRouter creates a Router over the built-in verb set.
func NewRouter(deps Deps) (*Router, error) {
	reg, err := NewRegistry(builtinCommands())
	if err != nil {
		return nil, fmt.Errorf("building command registry: %w", err)
	}
	return &Router{deps: deps, registry: reg}, nil
}

// Registry exposes the verb set for help output and tests.
func (r *Router) Registry() *Registry {
	return r.registry
}

// Dispatch runs one input line for a playing session and returns the
// events to publish. A handler panic is contained: the player sees a
// generic error and the game loop keeps running.
//
// Precondition: s must be playing with a bound character.
// Postcondition: on any handler failure, durable state is unchanged.
func (r *Router) Dispatch(s *session.Session, line string, now time.Time) (evs []event.Event) {
	parsed := Parse(line)
	if parsed.Verb == "" {
		return nil
	}

	cmd, ok := r.registry.Resolve(parsed.Verb)
	if !ok {
		return []event.Event{event.ToCharacter(s.Name(), event.KindWarning,
			fmt.Sprintf("Unknown command %q. Try 'help'.", parsed.Verb))}
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.deps.Logger.Error("command handler panicked",
				zap.String("verb", cmd.Name),
				zap.String("character", s.Name()),
				zap.Any("panic", rec),
			)
			evs = []event.Event{event.ToCharacter(s.Name(), event.KindError, "An error occurred.")}
		}
	}()

	s.ClearStaleContext(cmd.Name)
	return cmd.Handler(r, s, Input{
		Verb:  cmd.Name,
		Alias: parsed.Verb,
		Args:  parsed.Args,
		Raw:   parsed.Raw,
		Now:   now,
	})
}

// warn builds the standard validation-failure event.
func warn(name, text string) []event.Event {
	return []event.Event{event.ToCharacter(name, event.KindWarning, text)}
}

// save persists durable state after a mutating handler, reconciling quest
// progress first. Save failures reach the operator via logs; the in-memory
// character stays intact and the next mutation re-saves.
func (r *Router) save(c *character.Character) {
	r.deps.Quests.Reconcile(c)
	if err := r.deps.Characters.Save(c); err != nil {
		r.deps.Logger.Error("saving character", zap.String("character", c.Name), zap.Error(err))
	}
}

// echoMatch emits the canonical-name echo for non-exact fuzzy matches.
func echoMatch(name string, m Match) []event.Event {
	if m.Exact() {
		return nil
	}
	return []event.Event{event.ToCharacter(name, event.KindNormal, fmt.Sprintf("(%s)", m.Candidate.Name))}
}
