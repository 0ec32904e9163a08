package web

import (
	"net/http"
	"time"
)

// tzCookie carries the viewer's IANA timezone name, set by a small
// client script on first load. The X-Timezone header takes precedence
// so API clients and tests can pin a zone without cookies.
const tzCookie = "tz"

// ViewerLocation resolves the request's timezone. Unknown or absent
// zones fall back to UTC, which leaves timestamps in their wire form.
func ViewerLocation(r *http.Request) *time.Location {
	name := r.Header.Get("X-Timezone")
	if name == "" {
		if c, err := r.Cookie(tzCookie); err == nil {
			name = c.Value
		}
	}
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
