package favorites

import (
	"errors"
	"strings"
)

// MaxNameLength bounds user-supplied list names.
const MaxNameLength = 80

// Domain errors
var (
	ErrEmptyName       = errors.New("list name cannot be empty")
	ErrNameTooLong     = errors.New("list name cannot exceed 80 characters")
	ErrEmptyActivityID = errors.New("activity id cannot be empty")
)

// List is a named, ordered set of activity identifiers owned by one user.
// Ownership is enforced by the backend; the portal only ever sees the
// current user's lists.
type List struct {
	ID          string
	Name        string
	ActivityIDs []string
}

// ValidateName checks a user-supplied list name.
// POST: Returns nil if the trimmed name is non-empty and within bounds
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrEmptyName
	}
	if len(trimmed) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}

// Contains reports whether the list holds the given activity.
// INVARIANT: an activity identifier appears at most once per list
func (l List) Contains(activityID string) bool {
	for _, id := range l.ActivityIDs {
		if id == activityID {
			return true
		}
	}
	return false
}

// ListsContaining returns the lists that currently hold the activity.
func ListsContaining(lists []List, activityID string) []List {
	var out []List
	for _, l := range lists {
		if l.Contains(activityID) {
			out = append(out, l)
		}
	}
	return out
}

// AddOutcome is the result of an add-to-list operation. Already-present is
// distinct from failure so the UI can show a non-error message.
type AddOutcome string

// Possible add outcomes.
const (
	Added          AddOutcome = "added"
	AlreadyPresent AddOutcome = "already_present"
)

// RemoveReport summarises a remove-from-all-lists run. Partial failure is
// reported but the lists that succeeded are not rolled back.
type RemoveReport struct {
	Removed []string // list IDs the activity was removed from
	Failed  []string // list IDs where removal errored
}

// Partial reports whether some removals failed while others succeeded.
func (r RemoveReport) Partial() bool {
	return len(r.Failed) > 0 && len(r.Removed) > 0
}
