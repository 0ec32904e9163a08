// Package theme owns the persisted light/dark preference and its
// application as a single root-level class on rendered pages.
package theme

import (
	"net/http"

	"github.com/halldor/dagaz/internal/page"
)

// Preference is the persisted theme choice.
type Preference string

// Preference values. Unset means the viewer never chose explicitly.
const (
	Dark  Preference = "dark"
	Light Preference = "light"
	Unset Preference = ""
)

const (
	// CookieName is the single persisted preference key.
	CookieName = "theme"
	// RootClass is the style flag toggled on the document root.
	RootClass = "dark"

	cookieMaxAge = 365 * 24 * 60 * 60
)

// Parse maps a stored string onto a Preference; anything unknown is Unset.
func Parse(s string) Preference {
	switch Preference(s) {
	case Dark:
		return Dark
	case Light:
		return Light
	default:
		return Unset
	}
}

// FromRequest reads the stored preference from the request cookie.
func FromRequest(r *http.Request) Preference {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return Unset
	}
	return Parse(c.Value)
}

// SystemHint reads the client color-scheme hint header, when present.
func SystemHint(r *http.Request) Preference {
	if r.Header.Get("Sec-CH-Prefers-Color-Scheme") == "dark" {
		return Dark
	}
	return Unset
}

// Resolve picks the effective theme: explicit preference, else system hint,
// else light.
func Resolve(stored, hint Preference) Preference {
	if stored != Unset {
		return stored
	}
	if hint != Unset {
		return hint
	}
	return Light
}

// Toggle flips an effective (resolved) theme.
func Toggle(effective Preference) Preference {
	if effective == Dark {
		return Light
	}
	return Dark
}

// SetCookie persists pref as the explicit preference.
func SetCookie(w http.ResponseWriter, pref Preference) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    string(pref),
		Path:     "/",
		MaxAge:   cookieMaxAge,
		SameSite: http.SameSiteLaxMode,
	})
}

// Apply adds or removes RootClass on the document root according to pref.
// Pref must already be resolved; Unset behaves as light.
func Apply(s *page.Surface, pref Preference) {
	root := s.Root()
	if pref == Dark {
		root.AddClass(RootClass)
		return
	}
	root.RemoveClass(RootClass)
}
