package api

import (
	"net/http"
	"strconv"
	"time"
)

const (
	defaultPostLimit = 10
	maxPostLimit     = 50

	defaultUserLimit = 100
	maxUserLimit     = 200
)

// PaginationMeta is embedded in offset-paginated list responses.
type PaginationMeta struct {
	TotalCount int  `json:"totalCount"`
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	HasMore    bool `json:"hasMore"`
}

// parsePostCursor reads the keyset cursor for the post feed: the createdAt
// timestamp of the last post the client has seen, RFC 3339. Missing or
// malformed cursors start from the top of the feed.
func parsePostCursor(r *http.Request) time.Time {
	v := r.URL.Query().Get("cursor")
	if v == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parsePostLimit(r *http.Request) int {
	limit := defaultPostLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxPostLimit {
		limit = maxPostLimit
	}
	return limit
}

// parsePagination reads "limit" and "offset" query parameters for the
// offset-paginated user listing. Missing or invalid values fall back to
// defaults; limit is capped at maxUserLimit.
func parsePagination(r *http.Request) (limit, offset int) {
	q := r.URL.Query()

	limit = defaultUserLimit
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxUserLimit {
		limit = maxUserLimit
	}

	offset = 0
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			offset = n
		}
	}

	return limit, offset
}
