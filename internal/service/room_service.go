package service

import (
	"context"
	"errors"

	"roombooking/internal/db"
	"roombooking/internal/repository"
)

type RoomService struct {
	catalog repository.RoomCatalog
}

func NewRoomService(catalog repository.RoomCatalog) *RoomService {
	return &RoomService{catalog: catalog}
}

func (s *RoomService) ListRooms(ctx context.Context) ([]db.Room, error) {
	return s.catalog.ListRooms(ctx)
}

func (s *RoomService) GetRoom(ctx context.Context, id int) (*db.Room, error) {
	room, err := s.catalog.GetRoom(ctx, id)
	if errors.Is(err, repository.ErrRoomNotFound) {
		return nil, ErrRoomNotFound
	}
	return room, err
}

// RoomIDs returns every room id in the catalog; availability uses it when the
// caller names no rooms.
func (s *RoomService) RoomIDs(ctx context.Context) ([]int, error) {
	rooms, err := s.catalog.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}
	return ids, nil
}
