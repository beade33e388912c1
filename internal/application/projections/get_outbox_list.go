package projections

import (
	"context"

	domainOutbox "tunelingo/internal/domain/outbox"
)

// GetOutboxListResult carries the query result for the admin outbox screen.
type GetOutboxListResult struct {
	Pending []domainOutbox.Entry
	Failed  []domainOutbox.Entry
}

// GetOutboxListDeps holds dependencies for GetOutboxList.
type GetOutboxListDeps struct {
	Outbox OutboxStore
}

// QueryGetOutboxList retrieves the entries an admin can retry or abandon.
// POST: Pending includes retrying entries; Failed holds terminal failures
func QueryGetOutboxList(ctx context.Context, deps GetOutboxListDeps) (GetOutboxListResult, error) {
	pending, err := deps.Outbox.ListPending(ctx, 100)
	if err != nil {
		return GetOutboxListResult{}, err
	}
	failed, err := deps.Outbox.ListFailed(ctx, 100)
	if err != nil {
		return GetOutboxListResult{}, err
	}
	return GetOutboxListResult{Pending: pending, Failed: failed}, nil
}
