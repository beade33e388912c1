package newsletter

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"tunelingo/internal/adapters/storage"
	domain "tunelingo/internal/domain/newsletter"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new newsletter store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Subscriber by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Subscriber, error) {
	query := "SELECT id, email, status, source, subscribed_at, unsubscribed_at FROM newsletter_subscriber WHERE id = ?"
	row := s.db.QueryRowContext(ctx, query, id)

	entity, err := scanSubscriber(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Subscriber{}, fmt.Errorf("subscriber not found: %w", err)
	}
	return entity, err
}

// GetByEmail retrieves a Subscriber by email.
// PRE: email is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Subscriber, error) {
	query := "SELECT id, email, status, source, subscribed_at, unsubscribed_at FROM newsletter_subscriber WHERE email = ?"
	row := s.db.QueryRowContext(ctx, query, email)

	entity, err := scanSubscriber(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Subscriber{}, fmt.Errorf("subscriber not found: %w", err)
	}
	return entity, err
}

// Save persists a Subscriber to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Subscriber) error {
	var unsubscribedAt interface{}
	if !entity.UnsubscribedAt.IsZero() {
		unsubscribedAt = entity.UnsubscribedAt.Format(dateLayout)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO newsletter_subscriber (id, email, status, source, subscribed_at, unsubscribed_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   email=excluded.email, status=excluded.status, source=excluded.source,
		   unsubscribed_at=excluded.unsubscribed_at`,
		entity.ID,
		entity.Email,
		entity.Status,
		entity.Source,
		entity.SubscribedAt.Format(dateLayout),
		unsubscribedAt,
	)
	return err
}

// Delete removes a Subscriber from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM newsletter_subscriber WHERE id = ?", id)
	return err
}

// List retrieves Subscribers based on the filter.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Subscriber, error) {
	var queryBuilder strings.Builder
	var args []interface{}

	queryBuilder.WriteString("SELECT id, email, status, source, subscribed_at, unsubscribed_at FROM newsletter_subscriber")

	if filter.Status != "" {
		queryBuilder.WriteString(" WHERE status = ?")
		args = append(args, filter.Status)
	}

	queryBuilder.WriteString(" ORDER BY subscribed_at DESC LIMIT ? OFFSET ?")
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Subscriber
	for rows.Next() {
		entity, err := scanSubscriber(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the number of subscribers, optionally filtered by status.
// PRE: none
// POST: Returns the count
func (s *SQLiteStore) Count(ctx context.Context, status string) (int, error) {
	var count int
	var err error
	if status != "" {
		err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM newsletter_subscriber WHERE status = ?", status).Scan(&count)
	} else {
		err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM newsletter_subscriber").Scan(&count)
	}
	return count, err
}

// scanSubscriber extracts a Subscriber from a row scanner function.
func scanSubscriber(scan func(dest ...interface{}) error) (domain.Subscriber, error) {
	var entity domain.Subscriber
	var subscribedAt string
	var unsubscribedAt sql.NullString
	err := scan(
		&entity.ID,
		&entity.Email,
		&entity.Status,
		&entity.Source,
		&subscribedAt,
		&unsubscribedAt,
	)
	if err != nil {
		return domain.Subscriber{}, err
	}
	entity.SubscribedAt, _ = time.Parse(dateLayout, subscribedAt)
	if unsubscribedAt.Valid && unsubscribedAt.String != "" {
		entity.UnsubscribedAt, _ = time.Parse(dateLayout, unsubscribedAt.String)
	}
	return entity, nil
}
