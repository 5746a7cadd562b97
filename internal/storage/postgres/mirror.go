package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thornvale/mud/internal/game/character"
)

// ErrCharacterNotFound is returned when a mirror lookup yields no row.
var ErrCharacterNotFound = errors.New("character not found")

// CharacterMirror shadows character records into PostgreSQL for reporting
// and recovery. The file store stays the source of truth; mirror writes are
// best-effort and never block gameplay.
type CharacterMirror struct {
	db *pgxpool.Pool
}

// NewCharacterMirror creates a CharacterMirror backed by the given pool.
//
// Precondition: db must be a valid, open connection pool whose schema has
// been migrated.
func NewCharacterMirror(db *pgxpool.Pool) *CharacterMirror {
	return &CharacterMirror{db: db}
}

// Upsert writes one character snapshot, replacing any previous row.
//
// Postcondition: the mirror row carries the full JSON payload, including
// unknown keys preserved by the file store.
func (m *CharacterMirror) Upsert(ctx context.Context, c *character.Character) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding character %q: %w", c.Name, err)
	}
	return m.UpsertRaw(ctx, c.Name, c.Level, c.RoomID(), payload)
}

// UpsertRaw writes a pre-encoded snapshot. Callers that must not hold a
// reference to live character state encode on their own goroutine and hand
// the payload here.
func (m *CharacterMirror) UpsertRaw(ctx context.Context, name string, level int, room string, payload []byte) error {
	_, err := m.db.Exec(ctx, `
		INSERT INTO characters (name, level, room, payload, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (name) DO UPDATE
		SET level = EXCLUDED.level,
		    room = EXCLUDED.room,
		    payload = EXCLUDED.payload,
		    updated_at = NOW()`,
		name, level, room, payload,
	)
	if err != nil {
		return fmt.Errorf("upserting character %q: %w", name, err)
	}
	return nil
}

// Load reads one character snapshot back out of the mirror.
//
// Postcondition: Returns the decoded character or ErrCharacterNotFound.
func (m *CharacterMirror) Load(ctx context.Context, name string) (*character.Character, error) {
	var payload []byte
	err := m.db.QueryRow(ctx,
		`SELECT payload FROM characters WHERE name = $1`,
		name,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", ErrCharacterNotFound, name)
		}
		return nil, fmt.Errorf("querying character %q: %w", name, err)
	}

	var c character.Character
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, fmt.Errorf("decoding character %q: %w", name, err)
	}
	return &c, nil
}

// Names lists all mirrored character names ordered by recency.
func (m *CharacterMirror) Names(ctx context.Context) ([]string, error) {
	rows, err := m.db.Query(ctx,
		`SELECT name FROM characters ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning character name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete removes a mirrored snapshot.
//
// Postcondition: Returns ErrCharacterNotFound if no row was removed.
func (m *CharacterMirror) Delete(ctx context.Context, name string) error {
	tag, err := m.db.Exec(ctx, `DELETE FROM characters WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("deleting character %q: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %q", ErrCharacterNotFound, name)
	}
	return nil
}
