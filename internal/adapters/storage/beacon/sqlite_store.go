package beacon

import (
	"context"
	"time"

	"tunelingo/internal/adapters/storage"
	domain "tunelingo/internal/domain/beacon"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new beacon store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists an Event. Beacons are append-only; there is no update path.
// PRE: entity has been validated
// POST: Entity is persisted
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO beacon_event (id, kind, path, device_hash, user_id, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entity.ID,
		entity.Kind,
		entity.Path,
		entity.DeviceHash,
		entity.UserID,
		entity.OccurredAt.Format(dateLayout),
	)
	return err
}

// ListByKind returns the most recent events of one kind.
// PRE: kind is valid, limit > 0
// POST: Returns up to limit events, newest first
func (s *SQLiteStore) ListByKind(ctx context.Context, kind string, limit int) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, path, device_hash, user_id, occurred_at
		 FROM beacon_event WHERE kind = ? ORDER BY occurred_at DESC LIMIT ?`,
		kind, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Event
	for rows.Next() {
		var e domain.Event
		var occurredAt string
		if err := rows.Scan(&e.ID, &e.Kind, &e.Path, &e.DeviceHash, &e.UserID, &occurredAt); err != nil {
			return nil, err
		}
		e.OccurredAt, _ = time.Parse(dateLayout, occurredAt)
		results = append(results, e)
	}
	return results, rows.Err()
}

// CountSince returns the number of events of one kind since the cutoff.
// PRE: kind is valid
func (s *SQLiteStore) CountSince(ctx context.Context, kind string, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM beacon_event WHERE kind = ? AND occurred_at >= ?",
		kind, since.Format(dateLayout)).Scan(&count)
	return count, err
}

// DeleteOlderThan removes events older than the cutoff. Used by the
// retention sweep so the local table stays bounded.
// POST: Returns the number of rows removed
func (s *SQLiteStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM beacon_event WHERE occurred_at < ?", cutoff.Format(dateLayout))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
