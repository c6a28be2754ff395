// internal/app/system/paging/paging.go

// Package paging parses the limit/offset window shared by every list
// endpoint.
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// DefaultLimit is the page size used when the request does not ask for
// one. MaxLimit caps what a request may ask for.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Window is a parsed limit/offset pair, ready for the store filters.
type Window struct {
	Limit  int64
	Offset int64
}

// Parse reads "limit" and "offset" from the request query. Absent or
// malformed values fall back to the defaults; limit is clamped to
// MaxLimit; negative offsets become zero.
func Parse(r *http.Request) Window {
	w := Window{Limit: DefaultLimit}

	if s := query.Get(r, "limit"); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
			w.Limit = n
		}
	}
	if w.Limit > MaxLimit {
		w.Limit = MaxLimit
	}

	if s := query.Get(r, "offset"); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
			w.Offset = n
		}
	}
	return w
}
