// Package file provides the file-backed character store: one JSON document
// per character, written atomically. It is the source of truth for durable
// character state; the optional PostgreSQL mirror only shadows it.
package file

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/thornvale/mud/internal/game/character"
)

// Store errors.
var (
	// ErrNotFound is returned when no record exists for a character name.
	ErrNotFound = errors.New("character not found")
	// ErrExists is returned when creating a character whose name is taken.
	ErrExists = errors.New("character already exists")
	// ErrCorruptRecord is returned when a character file cannot be decoded.
	ErrCorruptRecord = errors.New("corrupt character record")
	// ErrInvalidCredentials is returned when authentication fails.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// knownKeys lists the JSON keys owned by the character schema. Anything else
// found in a record is preserved verbatim across load/save.
var knownKeys = map[string]bool{
	"name": true, "passwordHash": true, "salt": true,
	"level": true, "experience": true, "health": true, "maxHealth": true, "gold": true,
	"currentArea": true, "currentRoom": true, "x": true, "y": true,
	"inventory": true, "equipment": true, "baseStats": true,
	"activeQuests": true, "completedQuests": true,
	"takenOneTimeItems": true, "defeatedOneTimeEnemies": true,
	"friends": true, "friendNotes": true,
	"homestone": true, "inCombat": true, "lastSaved": true,
}

// Store persists characters as JSON files, one per character, keyed by the
// lower-cased canonical name.
type Store struct {
	dir     string
	retries int
	logger  *zap.Logger

	mu sync.Mutex
}

// NewStore creates a Store rooted at dir, creating it if needed.
//
// Precondition: retries must be >= 0.
func NewStore(dir string, retries int, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating character directory: %w", err)
	}
	return &Store{dir: dir, retries: retries, logger: logger}, nil
}

// path maps a character name to its record file. Names are canonical, so
// lower-casing makes lookups case-insensitive on case-sensitive filesystems.
func (s *Store) path(name string) string {
	return filepath.Join(s.dir, strings.ToLower(name)+".json")
}

// Exists reports whether a record exists for the name.
func (s *Store) Exists(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := os.Stat(s.path(name))
	return err == nil
}

// Load reads one character record.
//
// Postcondition: Returns ErrNotFound for a missing record and
// ErrCorruptRecord for one that cannot be decoded; unknown JSON keys are
// preserved on the returned character.
func (s *Store) Load(name string) (*character.Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(name)
}

func (s *Store) load(name string) (*character.Character, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return nil, fmt.Errorf("reading character %q: %w", name, err)
	}

	var c character.Character
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrCorruptRecord, name, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrCorruptRecord, name, err)
	}
	for key := range raw {
		if knownKeys[key] {
			delete(raw, key)
		}
	}
	if len(raw) > 0 {
		c.Extra = raw
	}

	ensureCollections(&c)
	return &c, nil
}

// Save writes one character record atomically (temp file and rename),
// retrying transient failures.
//
// Postcondition: On success LastSaved is updated and the on-disk record
// carries every unknown key loaded earlier.
func (s *Store) Save(c *character.Character) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(c)
}

func (s *Store) save(c *character.Character) error {
	c.LastSaved = time.Now().UTC()

	data, err := s.encode(c)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		if lastErr = s.writeAtomic(s.path(c.Name), data); lastErr == nil {
			return nil
		}
		s.logger.Warn("character save failed",
			zap.String("character", c.Name),
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr),
		)
	}
	return fmt.Errorf("saving character %q: %w", c.Name, lastErr)
}

// encode marshals the character, merging preserved unknown keys back in.
func (s *Store) encode(c *character.Character) ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding character %q: %w", c.Name, err)
	}
	if len(c.Extra) == 0 {
		return indent(data)
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, fmt.Errorf("encoding character %q: %w", c.Name, err)
	}
	for key, val := range c.Extra {
		if _, owned := merged[key]; !owned {
			merged[key] = val
		}
	}
	data, err = json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("encoding character %q: %w", c.Name, err)
	}
	return indent(data)
}

func indent(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Store) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// Create makes a brand-new character record with a hashed password.
//
// Precondition: name must already be canonical.
// Postcondition: Returns ErrExists without touching disk when the name is
// taken (case-insensitively).
func (s *Store) Create(name, password string, loc character.Location) (*character.Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path(name)); err == nil {
		return nil, fmt.Errorf("%w: %q", ErrExists, name)
	}

	hash, salt, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	c := character.New(name, loc)
	c.PasswordHash = hash
	c.Salt = salt

	if err := s.save(c); err != nil {
		return nil, err
	}
	s.logger.Info("character created", zap.String("character", name))
	return c, nil
}

// Authenticate loads a character and verifies the password.
//
// Postcondition: Returns ErrNotFound for unknown names and
// ErrInvalidCredentials for a wrong password; timing does not reveal which
// characters of the hash matched.
func (s *Store) Authenticate(name, password string) (*character.Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load(name)
	if err != nil {
		return nil, err
	}
	if !VerifyPassword(password, c.Salt, c.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return c, nil
}

// SetPassword re-derives the hash with a fresh salt and saves.
func (s *Store) SetPassword(c *character.Character, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash, salt, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	c.PasswordHash = hash
	c.Salt = salt
	return s.save(c)
}

// ensureCollections re-initialises nil maps after decoding older records.
func ensureCollections(c *character.Character) {
	if c.Equipment == nil {
		c.Equipment = make(map[string]string)
	}
	if c.TakenOneTimeItems == nil {
		c.TakenOneTimeItems = make(map[string]bool)
	}
	if c.DefeatedOneTimeEnemies == nil {
		c.DefeatedOneTimeEnemies = make(map[string]bool)
	}
	if c.FriendNotes == nil {
		c.FriendNotes = make(map[string]string)
	}
}
