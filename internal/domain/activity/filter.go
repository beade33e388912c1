package activity

import "sort"

// Sort key constants for FilterState.
const (
	SortTitle      = "title"
	SortArtist     = "artist"
	SortNewest     = "newest"
	SortPopularity = "popularity"
)

// FilterAll is the selector value meaning "no category/genre restriction".
const FilterAll = "all"

// ValidSortKeys contains all accepted sort keys.
var ValidSortKeys = []string{SortTitle, SortArtist, SortNewest, SortPopularity}

// FilterState holds the search/filter/sort selections for one viewing
// session. The zero value is NOT the default state — use DefaultFilter,
// whose result reproduces the full, title-sorted catalog.
type FilterState struct {
	Query    string
	Category string // category name or "all"
	Genre    string // genre name or "all"
	FreeOnly bool
	Sort     string // title, artist, newest, popularity
}

// DefaultFilter returns the FilterState every viewing session starts from.
// POST: Apply(catalog, DefaultFilter()) == catalog sorted by title
func DefaultFilter() FilterState {
	return FilterState{
		Query:    "",
		Category: FilterAll,
		Genre:    FilterAll,
		FreeOnly: false,
		Sort:     SortTitle,
	}
}

// Normalize replaces unset or unknown selector values with defaults so a
// FilterState parsed from untrusted query parameters is always applicable.
func (f FilterState) Normalize() FilterState {
	if f.Category == "" {
		f.Category = FilterAll
	}
	if f.Genre == "" {
		f.Genre = FilterAll
	}
	if !contains(ValidSortKeys, f.Sort) {
		f.Sort = SortTitle
	}
	return f
}

// Apply filters and sorts a catalog snapshot. It is a pure function: the
// input slice is never mutated and the result is a fresh slice, so it is
// safe to re-run on every keystroke.
//
// Stages run in a fixed order — text match, category, genre, free-only,
// then a stable sort with identifier tiebreak. The stage order does not
// change the final set but keeps intermediate counts deterministic for UI
// counters.
// POST: every returned activity satisfies all active predicates in f
func Apply(catalog []Activity, f FilterState) []Activity {
	f = f.Normalize()

	result := make([]Activity, 0, len(catalog))
	for _, a := range catalog {
		if !a.MatchesText(f.Query) {
			continue
		}
		if f.Category != FilterAll && a.Category != f.Category {
			continue
		}
		if f.Genre != FilterAll && a.Genre != f.Genre {
			continue
		}
		if f.FreeOnly && !a.Free {
			continue
		}
		result = append(result, a)
	}

	sortActivities(result, f.Sort)
	return result
}

// sortActivities orders activities by the given key. Ties always break on
// identifier so repeated calls with identical inputs produce an identical
// order (required for list-diffing stability in the UI layer).
func sortActivities(list []Activity, key string) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		switch key {
		case SortArtist:
			if a.Artist != b.Artist {
				return a.Artist < b.Artist
			}
		case SortNewest:
			// Descending by creation time; a missing CreatedAt sorts as the
			// oldest possible value.
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		case SortPopularity:
			// No popularity signal exists in the backend yet, so this key
			// must not reorder ties. TODO: wire the backend play-count
			// metric when it ships, keeping the identifier tiebreak.
		default: // SortTitle
			if a.Title != b.Title {
				return a.Title < b.Title
			}
		}
		return a.ID < b.ID
	})
}
