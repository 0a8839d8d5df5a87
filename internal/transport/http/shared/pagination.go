package shared

import (
	"net/http"
	"strconv"
)

const (
	defaultRunPageLimit = 20
	maxRunPageLimit     = 100
)

// RunPage bounds a pay-run history listing.
type RunPage struct {
	Limit  int
	Offset int
}

// ParseRunPage reads limit and offset query parameters. Out-of-range or
// unparseable values fall back to the defaults; the limit caps at 100 so a
// listing never drags the full history across the wire.
func ParseRunPage(r *http.Request) RunPage {
	page := RunPage{Limit: defaultRunPageLimit}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		page.Limit = min(v, maxRunPageLimit)
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		page.Offset = v
	}
	return page
}
