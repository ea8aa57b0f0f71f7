package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// EmoteStore provides methods for the emote catalog.
type EmoteStore struct {
	db *DB
}

// NewEmoteStore creates a new EmoteStore.
func NewEmoteStore(db *DB) *EmoteStore {
	return &EmoteStore{db: db}
}

// CreateEmote adds an emote and returns its ID.
func (s *EmoteStore) CreateEmote(ctx context.Context, e *Emote) (int64, error) {
	return insertEmote(ctx, s.db, e)
}

func insertEmote(ctx context.Context, ex execer, e *Emote) (int64, error) {
	if e.Key == "" || e.ImageURL == "" {
		return 0, fmt.Errorf("CreateEmote: key and image URL are required")
	}
	if e.Size != nil && *e.Size <= 0 {
		return 0, fmt.Errorf("CreateEmote: size must be positive, got %d", *e.Size)
	}
	res, err := ex.ExecContext(ctx, `INSERT INTO emotes (key, image_url, size) VALUES (?, ?, ?)`, e.Key, e.ImageURL, e.Size)
	if err != nil {
		return 0, fmt.Errorf("CreateEmote exec: %w", err)
	}
	return res.LastInsertId()
}

// GetEmoteByKey retrieves an emote by key. It returns nil, nil when no emote matches.
func (s *EmoteStore) GetEmoteByKey(ctx context.Context, key string) (*Emote, error) {
	query := `SELECT id, key, image_url, size, created_at, updated_at FROM emotes WHERE key = ?`
	e := &Emote{}
	err := s.db.QueryRowContext(ctx, query, key).Scan(&e.ID, &e.Key, &e.ImageURL, &e.Size, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("GetEmoteByKey scan: %w", err)
	}
	return e, nil
}

// ListEmotes retrieves all emotes ordered by key.
func (s *EmoteStore) ListEmotes(ctx context.Context) ([]*Emote, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, key, image_url, size, created_at, updated_at FROM emotes ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("ListEmotes query: %w", err)
	}
	defer rows.Close()

	var emotes []*Emote
	for rows.Next() {
		e := &Emote{}
		if err := rows.Scan(&e.ID, &e.Key, &e.ImageURL, &e.Size, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ListEmotes scan: %w", err)
		}
		emotes = append(emotes, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListEmotes rows error: %w", err)
	}
	return emotes, nil
}

// DeleteEmote removes an emote by key.
func (s *EmoteStore) DeleteEmote(ctx context.Context, key string) error {
	return deleteOne(ctx, s.db, "DeleteEmote", `DELETE FROM emotes WHERE key = ?`, key)
}
