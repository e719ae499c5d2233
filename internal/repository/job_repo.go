package repository

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"roombooking/internal/db"
)

// CancelBookings cancels the given bookings in one statement and refreshes
// their updated_at. A row is only touched while it still has the status and
// updated_at it was read with.
func (r *pgQueries) CancelBookings(ctx context.Context, seen []db.Booking, at int64) (int64, error) {
	if len(seen) == 0 {
		return 0, nil
	}
	ids := make([]int64, len(seen))
	statuses := make([]string, len(seen))
	updated := make([]int64, len(seen))
	for i, b := range seen {
		ids[i], statuses[i], updated[i] = int64(b.ID), string(b.Status), b.UpdatedAt
	}

	query := `
	UPDATE bookings AS b
	SET status = 'cancelled', updated_at = $1
	FROM unnest($2::bigint[], $3::text[], $4::bigint[]) AS seen(id, status, updated_at)
	WHERE b.id = seen.id
		AND b.status = seen.status
		AND b.updated_at = seen.updated_at
		AND b.status <> 'cancelled'`
	result, err := r.q.ExecContext(ctx, query, at, pq.Array(ids), pq.Array(statuses), pq.Array(updated))
	if err != nil {
		return 0, fmt.Errorf("error cancelling bookings %v: %w", ids, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading rows affected: %w", err)
	}
	return n, nil
}

// CancelStaleReservations cancels every reserved booking last touched before
// the given unix second.
func (r *pgQueries) CancelStaleReservations(ctx context.Context, before, at int64) (int64, error) {
	query := `UPDATE bookings SET status = 'cancelled', updated_at = $1 WHERE status = 'reserved' AND updated_at < $2`
	result, err := r.q.ExecContext(ctx, query, at, before)
	if err != nil {
		return 0, fmt.Errorf("error cancelling stale reservations: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading rows affected: %w", err)
	}
	return n, nil
}
