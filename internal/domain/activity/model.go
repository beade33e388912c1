package activity

import (
	"errors"
	"strings"
	"time"
)

// Category constants, the four shapes an activity can take.
const (
	CategoryFullSong   = "Full Song"
	CategorySongClips  = "Song Clips"
	CategoryTop20      = "Top 20"
	CategoryVocalsOnly = "Vocals Only"
)

// Genre constants.
const (
	GenrePop     = "Pop"
	GenreRock    = "Rock"
	GenreCountry = "Country"
	GenreHipHop  = "Hip-Hop"
	GenreKids    = "Kids"
	GenreHoliday = "Holiday"
)

// ValidCategories contains all valid category values.
var ValidCategories = []string{CategoryFullSong, CategorySongClips, CategoryTop20, CategoryVocalsOnly}

// ValidGenres contains all valid genre values.
var ValidGenres = []string{GenrePop, GenreRock, GenreCountry, GenreHipHop, GenreKids, GenreHoliday}

// Difficulty levels (optional presentation metadata).
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// ValidDifficulties contains all valid difficulty values.
var ValidDifficulties = []string{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}

// Domain errors
var (
	ErrEmptyID          = errors.New("activity id cannot be empty")
	ErrEmptyTitle       = errors.New("activity title cannot be empty")
	ErrEmptyLocator     = errors.New("activity content locator cannot be empty")
	ErrInvalidCategory  = errors.New("activity category must be one of: Full Song, Song Clips, Top 20, Vocals Only")
	ErrInvalidGenre     = errors.New("activity genre must be one of: Pop, Rock, Country, Hip-Hop, Kids, Holiday")
	ErrInvalidTierLevel = errors.New("activity difficulty must be one of: beginner, intermediate, advanced")
)

// Activity is one learnable content unit (a song/video-based exercise).
// The catalog backend is the source of truth; this portal only reads
// activities, it never mutates them.
type Activity struct {
	ID          string
	Title       string
	Artist      string
	Description string
	Tags        []string
	Category    string // Full Song, Song Clips, Top 20, Vocals Only
	Genre       string // Pop, Rock, Country, Hip-Hop, Kids, Holiday
	Free        bool   // sole gate for anonymous access
	Locator     string // opaque content prefix used by the backend to mint grants; never a browsable URL
	Thumbnail   string
	Duration    int    // seconds; 0 = unknown
	Difficulty  string // optional
	CreatedAt   time.Time
}

// Validate checks if the Activity has valid data.
// PRE: Activity struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Activity) Validate() error {
	if a.ID == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(a.Title) == "" {
		return ErrEmptyTitle
	}
	if a.Locator == "" {
		return ErrEmptyLocator
	}
	if !contains(ValidCategories, a.Category) {
		return ErrInvalidCategory
	}
	if !contains(ValidGenres, a.Genre) {
		return ErrInvalidGenre
	}
	if a.Difficulty != "" && !contains(ValidDifficulties, a.Difficulty) {
		return ErrInvalidTierLevel
	}
	return nil
}

// MatchesText reports whether the activity matches a free-text query.
// The match is a case-insensitive substring test against title, artist,
// description and every tag. An empty query matches everything.
// INVARIANT: Activity fields are not mutated
func (a *Activity) MatchesText(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(a.Title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(a.Artist), q) {
		return true
	}
	if strings.Contains(strings.ToLower(a.Description), q) {
		return true
	}
	for _, tag := range a.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func contains(valid []string, v string) bool {
	for _, s := range valid {
		if s == v {
			return true
		}
	}
	return false
}
