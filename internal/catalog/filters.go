package catalog

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// ListFilters narrows list queries.
type ListFilters struct {
	Page       int
	Limit      int
	Search     string
	Status     *bool
	CategoryID string
}

// ParseListFilters reads filters from query parameters, clamping paging values.
func ParseListFilters(q url.Values) ListFilters {
	f := ListFilters{
		Page:       DefaultPage,
		Limit:      DefaultLimit,
		Search:     strings.TrimSpace(q.Get("search")),
		CategoryID: strings.TrimSpace(q.Get("categoryId")),
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		f.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		f.Limit = min(limit, MaxLimit)
	}
	if status, err := strconv.ParseBool(q.Get("status")); err == nil {
		f.Status = &status
	}
	return f
}

// Offset returns the row offset for the requested page.
func (f ListFilters) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// IsDefault reports whether f is the unfiltered first page, the only shape the list cache stores.
func (f ListFilters) IsDefault() bool {
	return f.Page == DefaultPage && f.Limit == DefaultLimit && f.Search == "" && f.Status == nil && f.CategoryID == ""
}
