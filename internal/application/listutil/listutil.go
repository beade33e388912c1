// Package listutil parses the query-string state of the admin list
// screens: page, page size, sort column, text search, and exact-match
// filters such as the subscriber status.
package listutil

import (
	"net/url"
	"strconv"
)

// DefaultPerPage is the page size used when the request names none.
const DefaultPerPage = 20

// MaxPerPage caps the page size a request may ask for.
const MaxPerPage = 200

// Spec declares what a particular list screen accepts. Sort columns and
// filter keys not named here are dropped during parsing, so a crafted
// query string never reaches the SQL layer.
type Spec struct {
	SortColumns []string
	FilterKeys  []string
}

// Query is the parsed state of one list request.
type Query struct {
	Page    int
	PerPage int
	Sort    string // empty means the store's default order
	Desc    bool
	Search  string
	Filters map[string]string
}

// Parse reads the list state from URL query values.
// POST: Page >= 1; 1 <= PerPage <= MaxPerPage; Sort is empty or one of
// spec.SortColumns; Filters holds only keys named in spec.FilterKeys
func Parse(q url.Values, spec Spec) Query {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}

	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	sort := q.Get("sort")
	if !contains(spec.SortColumns, sort) {
		sort = ""
	}

	filters := make(map[string]string)
	for _, key := range spec.FilterKeys {
		if v := q.Get(key); v != "" {
			filters[key] = v
		}
	}

	return Query{
		Page:    page,
		PerPage: perPage,
		Sort:    sort,
		Desc:    q.Get("dir") == "desc",
		Search:  q.Get("q"),
		Filters: filters,
	}
}

// PageInfo carries pagination metadata for rendering.
type PageInfo struct {
	Page       int // current page, 1-indexed, clamped to TotalPages
	PerPage    int
	Total      int // total matching rows
	TotalPages int // always >= 1 so page links render on empty lists
}

// Paginate computes pagination metadata for a list of total rows.
// POST: 1 <= Page <= TotalPages; TotalPages >= 1
func Paginate(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return PageInfo{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Offset returns the SQL OFFSET for the current page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

func contains(list []string, v string) bool {
	if v == "" {
		return false
	}
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
