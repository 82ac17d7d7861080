// AngelaMos | 2026
// request.go

package core

import (
	"net/http"
	"strconv"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PageParams is a normalized page/page_size pair from a list query.
type PageParams struct {
	Page     int
	PageSize int
}

func PageFromQuery(r *http.Request) PageParams {
	p := PageParams{
		Page:     QueryInt(r, "page", 1),
		PageSize: QueryInt(r, "page_size", defaultPageSize),
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	return p
}

// Bounds returns the slice window for this page over total items.
func (p PageParams) Bounds(total int) (int, int) {
	start := min((p.Page-1)*p.PageSize, total)
	end := min(start+p.PageSize, total)
	return start, end
}

// QueryInt reads an integer query parameter, returning fallback when it is
// absent or not a number.
func QueryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
