package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRoomRepo(t *testing.T) (*RoomRepository, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewRoomRepository(conn), mock
}

func TestRoomRepository_ListAndGet(t *testing.T) {
	repo, mock := newMockRoomRepo(t)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, capacity FROM rooms ORDER BY id`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "capacity"}).
			AddRow(1, "Room 101", 4).
			AddRow(2, "Room 102", 6))
	rooms, err := repo.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "Room 102", rooms[1].Name)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, capacity FROM rooms WHERE id = $1`)).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "capacity"}))
	_, err = repo.GetRoom(ctx, 9)
	assert.True(t, errors.Is(err, ErrRoomNotFound))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepository_SeedRooms(t *testing.T) {
	repo, mock := newMockRoomRepo(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM rooms`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO rooms (id, name, capacity) VALUES ($1, $2, $3)`)).
		WithArgs(1, "Room 101", 4).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO rooms (id, name, capacity) VALUES ($1, $2, $3)`)).
		WithArgs(2, "Room 102", 6).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec(regexp.QuoteMeta(`SELECT setval(`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	n, err := repo.SeedRooms(ctx, DefaultRooms(2))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepository_SeedRoomsSkipsPopulatedTable(t *testing.T) {
	repo, mock := newMockRoomRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM rooms`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectRollback()

	n, err := repo.SeedRooms(context.Background(), DefaultRooms(2))
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
