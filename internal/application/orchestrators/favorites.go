package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tunelingo/internal/domain/favorites"
)

// FavoritesClient is the backend surface the favorites orchestrators use.
type FavoritesClient interface {
	FetchLists(ctx context.Context, token string) ([]favorites.List, error)
	CreateList(ctx context.Context, token, name string) (string, error)
	AddToList(ctx context.Context, token, listID, activityID string) (favorites.AddOutcome, error)
	RemoveFromList(ctx context.Context, token, listID, activityID string) error
}

// ErrFavoritesUnavailable is returned when the backend cannot serve
// favorites at all.
var ErrFavoritesUnavailable = errors.New("favorites are temporarily unavailable")

// AddFavoriteInput carries input for adding to an existing list.
type AddFavoriteInput struct {
	ListID     string
	ActivityID string
}

// AddFavoriteDeps holds dependencies for the favorites orchestrators.
type AddFavoriteDeps struct {
	Client FavoritesClient
}

// ExecuteAddFavorite adds an activity to one list.
// PRE: caller is an authenticated subscriber; IDs are non-empty
// POST: Returns Added or AlreadyPresent; both are success outcomes
func ExecuteAddFavorite(ctx context.Context, token string, input AddFavoriteInput, deps AddFavoriteDeps) (favorites.AddOutcome, error) {
	if input.ListID == "" || input.ActivityID == "" {
		return "", errors.New("list and activity are required")
	}

	outcome, err := deps.Client.AddToList(ctx, token, input.ListID, input.ActivityID)
	if err != nil {
		slog.Warn("favorites_event", "event", "add_failed", "list_id", input.ListID, "activity_id", input.ActivityID, "error", err)
		return "", fmt.Errorf("%w: %v", ErrFavoritesUnavailable, err)
	}

	slog.Info("favorites_event", "event", "favorite_added", "list_id", input.ListID, "activity_id", input.ActivityID, "outcome", outcome)
	return outcome, nil
}

// CreateListAndAddInput carries input for the create-and-add flow.
type CreateListAndAddInput struct {
	Name       string
	ActivityID string
}

// CreateListAndAddResult reports the new list and the add outcome.
type CreateListAndAddResult struct {
	ListID  string
	Outcome favorites.AddOutcome
}

// ExecuteCreateListAndAdd creates a list and immediately adds an
// activity to it. If the add fails the list still exists; the caller is
// told so the UI can retry the add alone.
// PRE: caller is an authenticated subscriber
// POST: List exists; Outcome reflects the add attempt
func ExecuteCreateListAndAdd(ctx context.Context, token string, input CreateListAndAddInput, deps AddFavoriteDeps) (CreateListAndAddResult, error) {
	if err := favorites.ValidateName(input.Name); err != nil {
		return CreateListAndAddResult{}, err
	}
	if input.ActivityID == "" {
		return CreateListAndAddResult{}, errors.New("activity is required")
	}

	listID, err := deps.Client.CreateList(ctx, token, input.Name)
	if err != nil {
		slog.Warn("favorites_event", "event", "create_list_failed", "name", input.Name, "error", err)
		return CreateListAndAddResult{}, fmt.Errorf("%w: %v", ErrFavoritesUnavailable, err)
	}

	outcome, err := deps.Client.AddToList(ctx, token, listID, input.ActivityID)
	if err != nil {
		slog.Warn("favorites_event", "event", "add_after_create_failed", "list_id", listID, "activity_id", input.ActivityID, "error", err)
		return CreateListAndAddResult{ListID: listID}, fmt.Errorf("list created but add failed: %w", err)
	}

	slog.Info("favorites_event", "event", "list_created", "list_id", listID, "name", input.Name)
	return CreateListAndAddResult{ListID: listID, Outcome: outcome}, nil
}

// ExecuteRemoveFromAllLists removes an activity from every list that
// contains it. Each removal is attempted independently; a failure on one
// list does not roll back or stop the others. The report names both
// sides so the UI can show exactly what remains.
// PRE: caller is an authenticated subscriber
// POST: Report covers every list that contained the activity
func ExecuteRemoveFromAllLists(ctx context.Context, token, activityID string, deps AddFavoriteDeps) (favorites.RemoveReport, error) {
	if activityID == "" {
		return favorites.RemoveReport{}, errors.New("activity is required")
	}

	lists, err := deps.Client.FetchLists(ctx, token)
	if err != nil {
		return favorites.RemoveReport{}, fmt.Errorf("%w: %v", ErrFavoritesUnavailable, err)
	}

	var report favorites.RemoveReport
	for _, list := range favorites.ListsContaining(lists, activityID) {
		if err := deps.Client.RemoveFromList(ctx, token, list.ID, activityID); err != nil {
			slog.Warn("favorites_event", "event", "remove_failed", "list_id", list.ID, "activity_id", activityID, "error", err)
			report.Failed = append(report.Failed, list.ID)
			continue
		}
		report.Removed = append(report.Removed, list.ID)
	}

	slog.Info("favorites_event", "event", "removed_from_lists", "activity_id", activityID,
		"removed", len(report.Removed), "failed", len(report.Failed))
	return report, nil
}
