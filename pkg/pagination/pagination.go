package pagination

import (
	"net/http"
	"strconv"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Page carries offset pagination parsed from a request.
type Page struct {
	Limit  int
	Offset int
}

// FromRequest reads limit/offset query params, clamping to sane bounds.
func FromRequest(r *http.Request) Page {
	page := Page{Limit: defaultLimit}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			page.Limit = v
		}
	}
	if page.Limit > maxLimit {
		page.Limit = maxLimit
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			page.Offset = v
		}
	}

	return page
}
