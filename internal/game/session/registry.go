package session

import (
	"sync"

	"go.uber.org/zap"

	"github.com/thornvale/mud/internal/game/character"
	"github.com/thornvale/mud/internal/game/event"
)

// Registry tracks live sessions by id and maps each playing character name
// to its single playing session. It is the event bus's directory.
type Registry struct {
	mu     sync.RWMutex
	byID   map[string]*Session
	byName map[string]*Session
	logger *zap.Logger
}

// NewRegistry creates an empty registry.
//
// Precondition: logger must be non-nil.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		byID:   make(map[string]*Session),
		byName: make(map[string]*Session),
		logger: logger,
	}
}

// Add registers a session by id.
//
// Precondition: the session id must not already be registered.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[s.ID] = s
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	return s, ok
}

// FindByName returns the playing session bound to a character name.
//
// Precondition: name must be canonical.
func (r *Registry) FindByName(name string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byName[name]
	return s, ok
}

// Character returns the live character bound to a playing session.
func (r *Registry) Character(name string) (*character.Character, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byName[name]
	if !ok || !s.Playing() {
		return nil, false
	}
	return s.Character, true
}

// SetPlaying binds a session to a character name and marks it playing. If
// another session already plays that character, it is superseded: unbound,
// moved to StateDisconnecting, and returned so the caller can notify and
// close it. The new login always wins.
//
// Precondition: name must be canonical and s.Character must be set.
// Postcondition: FindByName(name) returns s; the returned session, if any,
// is no longer reachable by name.
func (r *Registry) SetPlaying(s *Session, name string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.byName[name]
	if old == s {
		old = nil
	}
	if old != nil {
		old.State = StateDisconnecting
		r.logger.Info("session superseded by new login",
			zap.String("character", name),
			zap.String("oldSession", old.ID),
			zap.String("newSession", s.ID),
		)
	}
	s.State = StatePlaying
	r.byName[name] = s
	return old
}

// Remove unregisters a session. If it was the playing session for its
// character, the name binding is dropped too.
//
// Postcondition: the session's outbox is closed.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	s, ok := r.byID[id]
	if ok {
		delete(r.byID, id)
		if name := s.Name(); name != "" && r.byName[name] == s {
			delete(r.byName, name)
		}
	}
	r.mu.Unlock()

	if ok {
		s.State = StateDisconnecting
		s.Outbox().Close()
	}
}

// Deliver enqueues an event on the named character's playing session. It is
// a no-op for unknown names; a full outbox drops the event with a log line.
func (r *Registry) Deliver(characterName string, ev event.Event) {
	r.mu.RLock()
	s, ok := r.byName[characterName]
	r.mu.RUnlock()
	if !ok {
		return
	}
	if err := s.Outbox().Push(ev); err != nil {
		r.logger.Warn("dropping event for character",
			zap.String("character", characterName),
			zap.String("kind", string(ev.Kind)),
			zap.Error(err),
		)
	}
}

// NamesInRoom returns the names of playing characters in the given room.
func (r *Registry) NamesInRoom(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for name, s := range r.byName {
		if s.Playing() && s.Character.RoomID() == roomID {
			names = append(names, name)
		}
	}
	return names
}

// PlayingNames returns the names of all playing characters.
func (r *Registry) PlayingNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name, s := range r.byName {
		if s.Playing() {
			names = append(names, name)
		}
	}
	return names
}

// Sessions returns a snapshot of every registered session.
func (r *Registry) Sessions() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Session, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	return out
}
