package activity_test

import (
	"testing"
	"time"

	"tunelingo/internal/domain/activity"
)

// TestActivity_Validate tests validation of Activity.
func TestActivity_Validate(t *testing.T) {
	valid := activity.Activity{
		ID: "act-1", Title: "Golden", Artist: "The Examples",
		Category: activity.CategoryFullSong, Genre: activity.GenrePop,
		Free: true, Locator: "songs/golden", CreatedAt: time.Now(),
	}

	tests := []struct {
		name    string
		mutate  func(a *activity.Activity)
		wantErr error
	}{
		{name: "valid activity", mutate: func(a *activity.Activity) {}, wantErr: nil},
		{name: "empty id", mutate: func(a *activity.Activity) { a.ID = "" }, wantErr: activity.ErrEmptyID},
		{name: "empty title", mutate: func(a *activity.Activity) { a.Title = "  " }, wantErr: activity.ErrEmptyTitle},
		{name: "empty locator", mutate: func(a *activity.Activity) { a.Locator = "" }, wantErr: activity.ErrEmptyLocator},
		{name: "invalid category", mutate: func(a *activity.Activity) { a.Category = "Karaoke" }, wantErr: activity.ErrInvalidCategory},
		{name: "invalid genre", mutate: func(a *activity.Activity) { a.Genre = "Jazz" }, wantErr: activity.ErrInvalidGenre},
		{name: "invalid difficulty", mutate: func(a *activity.Activity) { a.Difficulty = "expert" }, wantErr: activity.ErrInvalidTierLevel},
		{name: "valid difficulty", mutate: func(a *activity.Activity) { a.Difficulty = activity.DifficultyBeginner }, wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid
			tt.mutate(&a)
			if err := a.Validate(); err != tt.wantErr {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestActivity_MatchesText tests the free-text match across all searchable fields.
func TestActivity_MatchesText(t *testing.T) {
	a := activity.Activity{
		ID:          "act-1",
		Title:       "Golden Morning",
		Artist:      "Elvis Example",
		Description: "A gentle warm-up song about sunrise vocabulary.",
		Tags:        []string{"weather", "Greetings"},
	}

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{name: "empty query matches", query: "", want: true},
		{name: "title substring", query: "golden", want: true},
		{name: "title mixed case", query: "GoLdEn", want: true},
		{name: "artist substring", query: "elvis", want: true},
		{name: "description substring", query: "sunrise", want: true},
		{name: "tag substring", query: "greet", want: true},
		{name: "no match", query: "dinosaur", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.MatchesText(tt.query); got != tt.want {
				t.Errorf("MatchesText(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}
