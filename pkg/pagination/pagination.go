// Package pagination converts page/limit query parameters into query offsets
// and builds the metadata block returned alongside list responses.
package pagination

import (
	"math"
	"net/http"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Options are the resolved paging parameters for a query.
type Options struct {
	Page  int
	Limit int
	Skip  int
}

// Meta describes where a page sits within the full result set.
type Meta struct {
	CurrentPage  int   `json:"currentPage"`
	ItemsPerPage int   `json:"itemsPerPage"`
	TotalItems   int64 `json:"totalItems"`
	TotalPages   int   `json:"totalPages"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
}

// FromRequest reads "page" and "limit" from the query string. Missing,
// unparsable or zero values fall back to the defaults; a negative page is
// passed through unchanged. The limit is kept within 1..MaxLimit.
func FromRequest(r *http.Request) Options {
	q := r.URL.Query()
	return New(parseOr(q.Get("page"), DefaultPage), parseOr(q.Get("limit"), DefaultLimit))
}

// New builds Options for page and limit. A limit below 1 becomes
// DefaultLimit so a page is never unbounded.
func New(page, limit int) Options {
	switch {
	case limit < 1:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return Options{
		Page:  page,
		Limit: limit,
		Skip:  (page - 1) * limit,
	}
}

// Meta builds the metadata for these options given the total item count.
func (o Options) Meta(totalItems int64) Meta {
	return NewMeta(o.Page, o.Limit, totalItems)
}

// NewMeta builds pagination metadata. totalPages is ceil(totalItems/limit).
func NewMeta(page, limit int, totalItems int64) Meta {
	totalPages := 0
	if limit != 0 && totalItems != 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(limit)))
	}

	return Meta{
		CurrentPage:  page,
		ItemsPerPage: limit,
		TotalItems:   totalItems,
		TotalPages:   totalPages,
		HasNextPage:  page < totalPages,
		HasPrevPage:  page > 1,
	}
}

func parseOr(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n == 0 {
		return def
	}
	return n
}
