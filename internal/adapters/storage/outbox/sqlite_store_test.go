package outbox

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"tunelingo/internal/adapters/storage"
	domain "tunelingo/internal/domain/outbox"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	return NewSQLiteStore(db)
}

func testEntry(id, actionType, status string, createdAt time.Time) domain.Entry {
	return domain.Entry{
		ID:          id,
		ActionType:  actionType,
		Payload:     `{"to":"member@example.com"}`,
		Status:      status,
		MaxAttempts: 5,
		CreatedAt:   createdAt,
	}
}

func TestOutboxStore_SaveAndGetByID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	e := testEntry("o1", domain.ActionTypeEmail, domain.StatusPending, base)
	e.Attempts = 2
	e.LastAttemptedAt = base.Add(time.Minute)
	e.ErrorMessage = "smtp timeout"
	if err := store.Save(ctx, e); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.GetByID(ctx, "o1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.ActionType != domain.ActionTypeEmail || got.Attempts != 2 {
		t.Errorf("entry = %+v", got)
	}
	if !got.LastAttemptedAt.Equal(base.Add(time.Minute)) {
		t.Errorf("LastAttemptedAt = %v, want %v", got.LastAttemptedAt, base.Add(time.Minute))
	}

	// Save again is an upsert, not a duplicate row.
	got.Status = domain.StatusDone
	got.ExternalID = "resend-123"
	if err := store.Save(ctx, got); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	again, err := store.GetByID(ctx, "o1")
	if err != nil {
		t.Fatalf("GetByID after update failed: %v", err)
	}
	if again.Status != domain.StatusDone || again.ExternalID != "resend-123" {
		t.Errorf("updated entry = %+v", again)
	}
}

func TestOutboxStore_ListPendingOldestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	entries := []domain.Entry{
		testEntry("o1", domain.ActionTypeEmail, domain.StatusPending, base.Add(2*time.Minute)),
		testEntry("o2", domain.ActionTypeBeacon, domain.StatusRetrying, base),
		testEntry("o3", domain.ActionTypeEmail, domain.StatusDone, base.Add(time.Minute)),
	}
	for _, e := range entries {
		if err := store.Save(ctx, e); err != nil {
			t.Fatalf("Save %s failed: %v", e.ID, err)
		}
	}

	pending, err := store.ListPending(ctx, 10)
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("ListPending returned %d, want 2", len(pending))
	}
	// Oldest first, done entries excluded.
	if pending[0].ID != "o2" || pending[1].ID != "o1" {
		t.Errorf("order = %s, %s", pending[0].ID, pending[1].ID)
	}
}

func TestOutboxStore_ListFailedRequiresExhaustedRetries(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	exhausted := testEntry("o1", domain.ActionTypeEmail, domain.StatusFailed, base)
	exhausted.Attempts = 5
	exhausted.LastAttemptedAt = base.Add(time.Hour)
	underBudget := testEntry("o2", domain.ActionTypeEmail, domain.StatusFailed, base)
	underBudget.Attempts = 1
	for _, e := range []domain.Entry{exhausted, underBudget} {
		if err := store.Save(ctx, e); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	failed, err := store.ListFailed(ctx, 10)
	if err != nil {
		t.Fatalf("ListFailed failed: %v", err)
	}
	if len(failed) != 1 || failed[0].ID != "o1" {
		t.Errorf("failed = %+v", failed)
	}
}

func TestOutboxStore_CountByStatus(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	entries := []domain.Entry{
		testEntry("o1", domain.ActionTypeEmail, domain.StatusPending, base),
		testEntry("o2", domain.ActionTypeBeacon, domain.StatusPending, base),
		testEntry("o3", domain.ActionTypeEmail, domain.StatusDone, base),
	}
	exhausted := testEntry("o4", domain.ActionTypeEmail, domain.StatusFailed, base)
	exhausted.Attempts = 5
	underBudget := testEntry("o5", domain.ActionTypeBeacon, domain.StatusFailed, base)
	underBudget.Attempts = 1
	entries = append(entries, exhausted, underBudget)
	for _, e := range entries {
		if err := store.Save(ctx, e); err != nil {
			t.Fatalf("Save %s failed: %v", e.ID, err)
		}
	}

	counts, err := store.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus failed: %v", err)
	}
	if counts[domain.StatusPending] != 2 {
		t.Errorf("pending = %d, want 2", counts[domain.StatusPending])
	}
	if counts[domain.StatusDone] != 1 {
		t.Errorf("done = %d, want 1", counts[domain.StatusDone])
	}
	// o5 still has retries left, so it counts as retrying, not failed.
	if counts[domain.StatusFailed] != 1 {
		t.Errorf("failed = %d, want 1", counts[domain.StatusFailed])
	}
	if counts[domain.StatusRetrying] != 1 {
		t.Errorf("retrying = %d, want 1", counts[domain.StatusRetrying])
	}
}

func TestOutboxStore_Delete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	e := testEntry("o1", domain.ActionTypeEmail, domain.StatusAbandoned, time.Now().UTC())
	if err := store.Save(ctx, e); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Delete(ctx, "o1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.GetByID(ctx, "o1"); err == nil {
		t.Error("GetByID after Delete should fail")
	}
}
