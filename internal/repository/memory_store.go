package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"roombooking/internal/db"
)

// MemoryStore is an in-process BookingStore and RoomCatalog for local runs and
// tests. Transactions are serialised by a single mutex and rolled back by
// restoring a snapshot.
type MemoryStore struct {
	mu       sync.Mutex
	rooms    []db.Room
	bookings map[int]db.Booking
	nextID   int
}

func NewMemoryStore(rooms ...db.Room) *MemoryStore {
	rs := make([]db.Room, len(rooms))
	copy(rs, rooms)
	sort.Slice(rs, func(i, j int) bool { return rs[i].ID < rs[j].ID })
	return &MemoryStore{
		rooms:    rs,
		bookings: make(map[int]db.Booking),
		nextID:   1,
	}
}

// DefaultRooms returns n rooms with ids 1..n.
func DefaultRooms(n int) []db.Room {
	rooms := make([]db.Room, n)
	for i := 0; i < n; i++ {
		rooms[i] = db.Room{
			ID:       i + 1,
			Name:     fmt.Sprintf("Room %03d", 101+i),
			Capacity: 4 + 2*(i%4),
		}
	}
	return rooms
}

func (s *MemoryStore) InTx(ctx context.Context, fn func(q BookingQueries) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make(map[int]db.Booking, len(s.bookings))
	for id, b := range s.bookings {
		snapshot[id] = b
	}
	nextID := s.nextID

	if err := fn(&memQueries{s: s, inTx: true}); err != nil {
		s.bookings = snapshot
		s.nextID = nextID
		return err
	}
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

func (s *MemoryStore) LockRoom(ctx context.Context, roomID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&memQueries{s: s}).LockRoom(ctx, roomID)
}

func (s *MemoryStore) GetBooking(ctx context.Context, id int) (*db.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&memQueries{s: s}).GetBooking(ctx, id)
}

func (s *MemoryStore) ActiveBookingsForSlot(ctx context.Context, roomID int, startSec int64) ([]db.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&memQueries{s: s}).ActiveBookingsForSlot(ctx, roomID, startSec)
}

func (s *MemoryStore) ActiveBookingsInFrame(ctx context.Context, roomIDs []int, from, to int64) ([]db.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&memQueries{s: s}).ActiveBookingsInFrame(ctx, roomIDs, from, to)
}

func (s *MemoryStore) InsertBooking(ctx context.Context, b *db.Booking) error {
	return ErrNoTransaction
}

func (s *MemoryStore) UpdateBooking(ctx context.Context, id int, u BookingUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&memQueries{s: s}).UpdateBooking(ctx, id, u)
}

func (s *MemoryStore) CancelBookings(ctx context.Context, seen []db.Booking, at int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&memQueries{s: s}).CancelBookings(ctx, seen, at)
}

func (s *MemoryStore) CancelStaleReservations(ctx context.Context, before, at int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&memQueries{s: s}).CancelStaleReservations(ctx, before, at)
}

func (s *MemoryStore) ListRooms(ctx context.Context) ([]db.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rooms := make([]db.Room, len(s.rooms))
	copy(rooms, s.rooms)
	return rooms, nil
}

func (s *MemoryStore) GetRoom(ctx context.Context, id int) (*db.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rooms {
		if r.ID == id {
			room := r
			return &room, nil
		}
	}
	return nil, fmt.Errorf("room %d: %w", id, ErrRoomNotFound)
}

// memQueries operates on a MemoryStore whose mutex the caller holds.
type memQueries struct {
	s    *MemoryStore
	inTx bool
}

func (q *memQueries) LockRoom(ctx context.Context, roomID int) error {
	for _, r := range q.s.rooms {
		if r.ID == roomID {
			return nil
		}
	}
	return fmt.Errorf("room %d: %w", roomID, ErrRoomNotFound)
}

func (q *memQueries) GetBooking(ctx context.Context, id int) (*db.Booking, error) {
	b, ok := q.s.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %d: %w", id, ErrBookingNotFound)
	}
	b = cloneBooking(b)
	return &b, nil
}

func (q *memQueries) ActiveBookingsForSlot(ctx context.Context, roomID int, startSec int64) ([]db.Booking, error) {
	return q.filter(func(b db.Booking) bool {
		return b.RoomID == roomID && b.StartSec == startSec
	}), nil
}

func (q *memQueries) ActiveBookingsInFrame(ctx context.Context, roomIDs []int, from, to int64) ([]db.Booking, error) {
	wanted := make(map[int]bool, len(roomIDs))
	for _, id := range roomIDs {
		wanted[id] = true
	}
	return q.filter(func(b db.Booking) bool {
		if !wanted[b.RoomID] {
			return false
		}
		startsInside := b.StartSec >= from && b.StartSec <= to
		endsInside := b.EndSec >= from && b.EndSec <= to
		spans := b.StartSec <= from && b.EndSec >= to
		return startsInside || endsInside || spans
	}), nil
}

func (q *memQueries) InsertBooking(ctx context.Context, b *db.Booking) error {
	if !q.inTx {
		return ErrNoTransaction
	}
	if err := q.LockRoom(ctx, b.RoomID); err != nil {
		return err
	}
	b.ID = q.s.nextID
	q.s.nextID++
	q.s.bookings[b.ID] = cloneBooking(*b)
	return nil
}

func (q *memQueries) UpdateBooking(ctx context.Context, id int, u BookingUpdate) error {
	b, ok := q.s.bookings[id]
	if !ok {
		return fmt.Errorf("booking %d: %w", id, ErrBookingNotFound)
	}
	if u.Status != nil {
		b.Status = *u.Status
	}
	if u.ReservationName != nil {
		name := *u.ReservationName
		b.ReservationName = &name
	}
	b.UpdatedAt = u.UpdatedAt
	q.s.bookings[id] = b
	return nil
}

func (q *memQueries) CancelBookings(ctx context.Context, seen []db.Booking, at int64) (int64, error) {
	var n int64
	for _, old := range seen {
		b, ok := q.s.bookings[old.ID]
		if !ok || b.Status == db.StatusCancelled {
			continue
		}
		if b.Status != old.Status || b.UpdatedAt != old.UpdatedAt {
			continue
		}
		b.Status = db.StatusCancelled
		b.UpdatedAt = at
		q.s.bookings[old.ID] = b
		n++
	}
	return n, nil
}

func (q *memQueries) CancelStaleReservations(ctx context.Context, before, at int64) (int64, error) {
	var n int64
	for id, b := range q.s.bookings {
		if b.Status != db.StatusReserved || b.UpdatedAt >= before {
			continue
		}
		b.Status = db.StatusCancelled
		b.UpdatedAt = at
		q.s.bookings[id] = b
		n++
	}
	return n, nil
}

func (q *memQueries) filter(match func(db.Booking) bool) []db.Booking {
	var out []db.Booking
	for _, b := range q.s.bookings {
		if b.Status != db.StatusCancelled && match(b) {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func cloneBooking(b db.Booking) db.Booking {
	if b.ReservationName != nil {
		name := *b.ReservationName
		b.ReservationName = &name
	}
	return b
}
