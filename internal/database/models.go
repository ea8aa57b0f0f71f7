package database

import (
	"strconv"
	"time"

	"github.com/haytac/message-formatter/internal/formatter"
)

// Room is a chat room referenced by #slug in messages.
type Room struct {
	ID        int64     `db:"id"`
	Slug      string    `db:"slug"`
	Name      *string   `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Emote is an image substituted for :key: tokens.
type Emote struct {
	ID        int64     `db:"id"`
	Key       string    `db:"key"`
	ImageURL  string    `db:"image_url"`
	Size      *int      `db:"size"` // nil means the formatter default
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ReplacementRule is an operator-defined pattern/template pair. Rules apply
// ordered by Position, then ID.
type ReplacementRule struct {
	ID        int64     `db:"id"`
	Position  int       `db:"position"`
	Pattern   string    `db:"pattern"`
	Template  string    `db:"template"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// FormatterRoom converts r into the formatter's room directory entry.
func (r *Room) FormatterRoom() formatter.Room {
	return formatter.Room{ID: strconv.FormatInt(r.ID, 10), Slug: r.Slug}
}

// FormatterEmote converts e into the formatter's catalog entry.
func (e *Emote) FormatterEmote() formatter.Emote {
	fe := formatter.Emote{Key: e.Key, ImageURL: e.ImageURL}
	if e.Size != nil {
		fe.Size = *e.Size
	}
	return fe
}

// FormatterRule converts r into the formatter's replacement rule.
func (r *ReplacementRule) FormatterRule() formatter.ReplacementRule {
	return formatter.ReplacementRule{Pattern: r.Pattern, Template: r.Template}
}
