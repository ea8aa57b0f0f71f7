package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// RoomStore provides methods for the room directory.
type RoomStore struct {
	db *DB
}

// NewRoomStore creates a new RoomStore.
func NewRoomStore(db *DB) *RoomStore {
	return &RoomStore{db: db}
}

// CreateRoom adds a room and returns its ID.
func (s *RoomStore) CreateRoom(ctx context.Context, r *Room) (int64, error) {
	return insertRoom(ctx, s.db, r)
}

func insertRoom(ctx context.Context, ex execer, r *Room) (int64, error) {
	if r.Slug == "" {
		return 0, fmt.Errorf("CreateRoom: slug is required")
	}
	res, err := ex.ExecContext(ctx, `INSERT INTO rooms (slug, name) VALUES (?, ?)`, r.Slug, r.Name)
	if err != nil {
		return 0, fmt.Errorf("CreateRoom exec: %w", err)
	}
	return res.LastInsertId()
}

// GetRoomBySlug retrieves a room by its slug. It returns nil, nil when no room matches.
func (s *RoomStore) GetRoomBySlug(ctx context.Context, slug string) (*Room, error) {
	query := `SELECT id, slug, name, created_at, updated_at FROM rooms WHERE slug = ?`
	r := &Room{}
	err := s.db.QueryRowContext(ctx, query, slug).Scan(&r.ID, &r.Slug, &r.Name, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("GetRoomBySlug scan: %w", err)
	}
	return r, nil
}

// ListRooms retrieves all rooms ordered by ID.
func (s *RoomStore) ListRooms(ctx context.Context) ([]*Room, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, slug, name, created_at, updated_at FROM rooms ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ListRooms query: %w", err)
	}
	defer rows.Close()

	var rooms []*Room
	for rows.Next() {
		r := &Room{}
		if err := rows.Scan(&r.ID, &r.Slug, &r.Name, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ListRooms scan: %w", err)
		}
		rooms = append(rooms, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListRooms rows error: %w", err)
	}
	return rooms, nil
}

// DeleteRoom removes a room by slug.
func (s *RoomStore) DeleteRoom(ctx context.Context, slug string) error {
	return deleteOne(ctx, s.db, "DeleteRoom", `DELETE FROM rooms WHERE slug = ?`, slug)
}

func deleteOne(ctx context.Context, ex execer, op, query string, arg any) error {
	res, err := ex.ExecContext(ctx, query, arg)
	if err != nil {
		return fmt.Errorf("%s exec: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %v: %w", op, arg, ErrNotFound)
	}
	return nil
}
