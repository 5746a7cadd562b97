// Package event defines game events and the fan-out bus that routes them to
// the characters that should observe them.
package event

// Audience selects who receives an event.
type Audience int

const (
	// AudienceCharacter targets a single character by name.
	AudienceCharacter Audience = iota
	// AudienceRoom targets every playing character in a room.
	AudienceRoom
	// AudienceWorld targets every playing character.
	AudienceWorld
)

// Kind categorizes outbound events for client rendering.
type Kind string

// Event kinds forming the outbound category contract.
const (
	KindNormal  Kind = "normal"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
	KindCombat  Kind = "combat"
	KindChat    Kind = "chat"
	KindWhisper Kind = "whisper"
	KindSystem  Kind = "system"
	KindLoot    Kind = "loot"
)

// Event is a single unit of output addressed to one character, one room, or
// the world. Events are transient; they are never persisted.
type Event struct {
	Audience Audience
	// Target is a character name for AudienceCharacter or an "area.room" id
	// for AudienceRoom. Unused for AudienceWorld.
	Target string
	// Exclude omits one character from a room or world fan-out, typically
	// the actor who triggered it.
	Exclude string
	Kind    Kind
	Text    string
}

// ToCharacter builds a single-character event.
func ToCharacter(name string, kind Kind, text string) Event {
	return Event{Audience: AudienceCharacter, Target: name, Kind: kind, Text: text}
}

// ToRoom builds a room event observed by everyone present.
func ToRoom(roomID string, kind Kind, text string) Event {
	return Event{Audience: AudienceRoom, Target: roomID, Kind: kind, Text: text}
}

// ToRoomExcept builds a room event that skips one character.
func ToRoomExcept(roomID, exclude string, kind Kind, text string) Event {
	return Event{Audience: AudienceRoom, Target: roomID, Exclude: exclude, Kind: kind, Text: text}
}

// ToWorld builds a world-wide event.
func ToWorld(kind Kind, text string) Event {
	return Event{Audience: AudienceWorld, Kind: kind, Text: text}
}
