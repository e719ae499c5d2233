package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombooking/internal/repository"
)

func TestRoomService(t *testing.T) {
	ctx := context.Background()
	svc := NewRoomService(repository.NewMemoryStore(repository.DefaultRooms(3)...))

	rooms, err := svc.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 3)
	assert.Equal(t, "Room 101", rooms[0].Name)

	ids, err := svc.RoomIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ids)

	room, err := svc.GetRoom(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, room.ID)

	_, err = svc.GetRoom(ctx, 9)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}
