package session

import (
	"github.com/google/uuid"

	"github.com/thornvale/mud/internal/game/character"
)

// State tracks where a session is in its lifecycle.
type State string

const (
	// StateUnauthenticated is a fresh connection before any login attempt.
	StateUnauthenticated State = "unauthenticated"
	// StateAuthenticating is a connection mid login or character creation.
	StateAuthenticating State = "authenticating"
	// StatePlaying is an authenticated session bound to a character.
	StatePlaying State = "playing"
	// StateDisconnecting marks a session being torn down.
	StateDisconnecting State = "disconnecting"
)

// Session is the live state of one connection. Field access after the
// session reaches StatePlaying happens on the game-loop goroutine; the
// registry's lock only guards membership.
type Session struct {
	ID    string
	State State

	// Character is non-nil once State is StatePlaying.
	Character *character.Character

	// LastWhisperFrom is the name of the last character who sent this
	// session a tell, for the reply verb. Ephemeral.
	LastWhisperFrom string

	// CloseTransport, when set, asks the transport to close the underlying
	// connection. Used when a login supersedes an older session.
	CloseTransport func()

	outbox *Outbox
	ctx    map[string]*contextEntry
}

// New creates an unauthenticated session with an outbox of the given
// buffer size.
//
// Postcondition: Returns a session with a fresh unique id and an open outbox.
func New(outboxSize int) *Session {
	return &Session{
		ID:     uuid.NewString(),
		State:  StateUnauthenticated,
		outbox: NewOutbox(outboxSize),
		ctx:    make(map[string]*contextEntry),
	}
}

// Outbox returns the session's outbox.
func (s *Session) Outbox() *Outbox {
	return s.outbox
}

// Playing reports whether the session is bound to a character and playing.
func (s *Session) Playing() bool {
	return s.State == StatePlaying && s.Character != nil
}

// Name returns the bound character's name, or "" before play starts.
func (s *Session) Name() string {
	if s.Character == nil {
		return ""
	}
	return s.Character.Name
}
