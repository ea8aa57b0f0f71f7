package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/haytac/message-formatter/internal/formatter"
)

// Catalog is a point-in-time copy of everything the formatter consults.
type Catalog struct {
	Rooms        []formatter.Room
	Emotes       []formatter.Emote
	Replacements []formatter.ReplacementRule
}

// CatalogStore reads and writes the catalog as a whole.
type CatalogStore struct {
	db     *DB
	rooms  *RoomStore
	emotes *EmoteStore
	rules  *ReplacementRuleStore
}

// NewCatalogStore creates a new CatalogStore.
func NewCatalogStore(db *DB) *CatalogStore {
	return &CatalogStore{
		db:     db,
		rooms:  NewRoomStore(db),
		emotes: NewEmoteStore(db),
		rules:  NewReplacementRuleStore(db),
	}
}

// Snapshot loads rooms, emotes and rules converted to formatter types.
// Rooms is never nil, so room linking stays enabled for an empty directory.
func (s *CatalogStore) Snapshot(ctx context.Context) (*Catalog, error) {
	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot rooms: %w", err)
	}
	emotes, err := s.emotes.ListEmotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot emotes: %w", err)
	}
	rules, err := s.rules.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot rules: %w", err)
	}

	cat := &Catalog{
		Rooms:        make([]formatter.Room, 0, len(rooms)),
		Emotes:       make([]formatter.Emote, 0, len(emotes)),
		Replacements: make([]formatter.ReplacementRule, 0, len(rules)),
	}
	for _, r := range rooms {
		cat.Rooms = append(cat.Rooms, r.FormatterRoom())
	}
	for _, e := range emotes {
		cat.Emotes = append(cat.Emotes, e.FormatterEmote())
	}
	for _, r := range rules {
		cat.Replacements = append(cat.Replacements, r.FormatterRule())
	}
	return cat, nil
}

// Import inserts all entries in one transaction. Any failure, such as a
// duplicate slug or an invalid pattern, leaves the catalog unchanged.
func (s *CatalogStore) Import(ctx context.Context, rooms []*Room, emotes []*Emote, rules []*ReplacementRule) error {
	return s.db.withTx(ctx, func(tx *sql.Tx) error {
		for _, r := range rooms {
			if _, err := insertRoom(ctx, tx, r); err != nil {
				return fmt.Errorf("import room %q: %w", r.Slug, err)
			}
		}
		for _, e := range emotes {
			if _, err := insertEmote(ctx, tx, e); err != nil {
				return fmt.Errorf("import emote %q: %w", e.Key, err)
			}
		}
		for i, r := range rules {
			if _, err := insertRule(ctx, tx, r); err != nil {
				return fmt.Errorf("import rule %d: %w", i, err)
			}
		}
		return nil
	})
}
