package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"roombooking/internal/db"
)

// RoomRepository reads the rooms table. Apart from SeedRooms, rooms are
// maintained outside this service.
type RoomRepository struct {
	DB *sql.DB
}

func NewRoomRepository(conn *sql.DB) *RoomRepository {
	return &RoomRepository{DB: conn}
}

func (r *RoomRepository) ListRooms(ctx context.Context) ([]db.Room, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, name, capacity FROM rooms ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error querying rooms: %w", err)
	}
	defer rows.Close()

	rooms := []db.Room{}
	for rows.Next() {
		var room db.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.Capacity); err != nil {
			return nil, fmt.Errorf("error scanning room: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rooms: %w", err)
	}
	return rooms, nil
}

func (r *RoomRepository) GetRoom(ctx context.Context, id int) (*db.Room, error) {
	var room db.Room
	err := r.DB.QueryRowContext(ctx, `SELECT id, name, capacity FROM rooms WHERE id = $1`, id).
		Scan(&room.ID, &room.Name, &room.Capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("room %d: %w", id, ErrRoomNotFound)
		}
		return nil, fmt.Errorf("error querying room %d: %w", id, err)
	}
	return &room, nil
}

// SeedRooms inserts rooms when the rooms table is empty and reports how many
// were written.
func (r *RoomRepository) SeedRooms(ctx context.Context, rooms []db.Room) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting rooms: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	for _, room := range rooms {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO rooms (id, name, capacity) VALUES ($1, $2, $3)`,
			room.ID, room.Name, room.Capacity)
		if err != nil {
			return 0, fmt.Errorf("error inserting room %d: %w", room.ID, err)
		}
	}
	if len(rooms) > 0 {
		// keep SERIAL ahead of the explicit ids
		if _, err := tx.ExecContext(ctx, `SELECT setval(pg_get_serial_sequence('rooms', 'id'), (SELECT MAX(id) FROM rooms))`); err != nil {
			return 0, fmt.Errorf("error advancing room id sequence: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing rooms: %w", err)
	}
	return len(rooms), nil
}
