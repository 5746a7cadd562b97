package postgres

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/thornvale/mud/internal/game/character"
	"github.com/thornvale/mud/internal/storage/file"
)

// mirrorWriteTimeout bounds each background mirror write.
const mirrorWriteTimeout = 5 * time.Second

// MirroredStore wraps the file store and shadows every successful save into
// PostgreSQL. Mirror failures are logged and never surface to gameplay.
type MirroredStore struct {
	*file.Store
	mirror *CharacterMirror
	logger *zap.Logger
}

// NewMirroredStore creates a MirroredStore over an open file store and a
// migrated mirror.
func NewMirroredStore(files *file.Store, mirror *CharacterMirror, logger *zap.Logger) *MirroredStore {
	return &MirroredStore{Store: files, mirror: mirror, logger: logger}
}

// Save persists to the file store, then mirrors in the background. The
// snapshot is encoded before this call returns, so later mutations on the
// game loop cannot race the mirror write.
func (s *MirroredStore) Save(c *character.Character) error {
	if err := s.Store.Save(c); err != nil {
		return err
	}
	s.shadow(c)
	return nil
}

// SetPassword rotates credentials in the file store, then mirrors.
func (s *MirroredStore) SetPassword(c *character.Character, newPassword string) error {
	if err := s.Store.SetPassword(c, newPassword); err != nil {
		return err
	}
	s.shadow(c)
	return nil
}

// Create makes the character in the file store, then mirrors.
func (s *MirroredStore) Create(name, password string, loc character.Location) (*character.Character, error) {
	c, err := s.Store.Create(name, password, loc)
	if err != nil {
		return nil, err
	}
	s.shadow(c)
	return c, nil
}

func (s *MirroredStore) shadow(c *character.Character) {
	payload, err := json.Marshal(c)
	if err != nil {
		s.logger.Error("encoding character for mirror",
			zap.String("character", c.Name), zap.Error(err))
		return
	}
	name, level, room := c.Name, c.Level, c.RoomID()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mirrorWriteTimeout)
		defer cancel()
		if err := s.mirror.UpsertRaw(ctx, name, level, room, payload); err != nil {
			s.logger.Warn("mirroring character",
				zap.String("character", name), zap.Error(err))
		}
	}()
}
