package event

import "go.uber.org/zap"

// Directory resolves event audiences to concrete recipients. The session
// registry implements it.
type Directory interface {
	// Deliver enqueues an event for a single playing character; it is a
	// no-op for unknown or non-playing names.
	Deliver(characterName string, ev Event)
	// NamesInRoom returns the names of playing characters in a room.
	NamesInRoom(roomID string) []string
	// PlayingNames returns the names of all playing characters.
	PlayingNames() []string
}

// Bus fans events out to the sessions that should observe them. Delivery to
// each character preserves emission order; the bus itself is only used from
// the game loop, so no locking is needed here.
type Bus struct {
	dir    Directory
	logger *zap.Logger
}

// NewBus creates a Bus over the given directory.
//
// Precondition: dir and logger must be non-nil.
func NewBus(dir Directory, logger *zap.Logger) *Bus {
	return &Bus{dir: dir, logger: logger}
}

// Publish routes one event to its audience.
//
// Postcondition: For each recipient, events published earlier for that
// recipient are enqueued before this one.
func (b *Bus) Publish(ev Event) {
	switch ev.Audience {
	case AudienceCharacter:
		b.dir.Deliver(ev.Target, ev)
	case AudienceRoom:
		for _, name := range b.dir.NamesInRoom(ev.Target) {
			if name == ev.Exclude {
				continue
			}
			b.dir.Deliver(name, ev)
		}
	case AudienceWorld:
		for _, name := range b.dir.PlayingNames() {
			if name == ev.Exclude {
				continue
			}
			b.dir.Deliver(name, ev)
		}
	default:
		b.logger.Error("event with unknown audience dropped",
			zap.Int("audience", int(ev.Audience)),
			zap.String("kind", string(ev.Kind)),
		)
	}
}

// PublishAll routes a batch of events in order.
func (b *Bus) PublishAll(evs []Event) {
	for _, ev := range evs {
		b.Publish(ev)
	}
}
