// This file holds helpers for reading gallery query parameters.

package http

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"swingtube/internal/core"
)

// maxSessionIDLen bounds the session parameter; generated ids are shorter.
const maxSessionIDLen = 64

// ParseSelection reads month and year from the query. Missing, unparsable
// or out-of-range values fall back to the current month and year of now.
func ParseSelection(q url.Values, now time.Time) core.Selection {
	sel := core.Selection{
		Month: parseInt(q.Get("month")),
		Year:  parseInt(q.Get("year")),
	}
	return sel.Normalize(now)
}

// SessionParam returns the session id from the query, or "" when it is
// missing or malformed.
func SessionParam(q url.Values) string {
	id := strings.TrimSpace(q.Get("session"))
	if id == "" || len(id) > maxSessionIDLen {
		return ""
	}
	for _, r := range id {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return ""
		}
	}
	return id
}

// parseInt returns 0 for anything that is not a base-10 integer.
func parseInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
