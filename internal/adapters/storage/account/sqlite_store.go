package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tunelingo/internal/adapters/storage"
	domain "tunelingo/internal/domain/account"
)

// accountColumns is the column list every account query selects, in the
// order scanAccount expects them.
const accountColumns = `id, email, password_hash, role, created_at, failed_logins, locked_until`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new AccountStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Account by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	return s.getBy(ctx, "id", id)
}

// GetByEmail retrieves an Account by email.
// PRE: email is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	return s.getBy(ctx, "email", email)
}

func (s *SQLiteStore) getBy(ctx context.Context, column, value string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM account WHERE `+column+` = ?`, value)
	acct, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, fmt.Errorf("account not found: %w", err)
	}
	return acct, err
}

// Save persists an Account to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Account) error {
	var lockedUntil any
	if !entity.LockedUntil.IsZero() {
		lockedUntil = entity.LockedUntil.Format(time.RFC3339Nano)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO account (`+accountColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   email=excluded.email, password_hash=excluded.password_hash, role=excluded.role,
		   failed_logins=excluded.failed_logins, locked_until=excluded.locked_until`,
		entity.ID, entity.Email, entity.PasswordHash, entity.Role,
		entity.CreatedAt.Format(time.RFC3339Nano), entity.FailedLogins, lockedUntil)
	return err
}

// Delete removes an Account from the database. The admin surface must
// stay reachable, so removing the last admin account is refused.
// PRE: id is non-empty
// POST: Entity with given id is removed, or ErrLastAdmin
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var role string
	err = tx.QueryRowContext(ctx, `SELECT role FROM account WHERE id = ?`, id).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("account not found: %w", err)
	}
	if err != nil {
		return err
	}

	if role == domain.RoleAdmin {
		var admins int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM account WHERE role = ?`, domain.RoleAdmin).Scan(&admins); err != nil {
			return err
		}
		if admins <= 1 {
			return domain.ErrLastAdmin
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM account WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// List retrieves Accounts based on the filter.
// PRE: filter has valid parameters
// POST: Returns matching entities, newest first
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM account`
	var args []any
	if filter.Role != "" {
		query += ` WHERE role = ?`
		args = append(args, filter.Role)
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, acct)
	}
	return results, rows.Err()
}

// Count returns the total number of accounts.
// POST: Returns total account count
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM account`).Scan(&count)
	return count, err
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var acct domain.Account
	var createdAt string
	var lockedUntil sql.NullString
	err := row.Scan(&acct.ID, &acct.Email, &acct.PasswordHash, &acct.Role,
		&createdAt, &acct.FailedLogins, &lockedUntil)
	if err != nil {
		return domain.Account{}, err
	}
	acct.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	if lockedUntil.Valid && lockedUntil.String != "" {
		acct.LockedUntil, _ = time.Parse(time.RFC3339Nano, lockedUntil.String)
	}
	return acct, nil
}
