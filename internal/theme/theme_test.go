package theme

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/halldor/dagaz/internal/page"
)

func TestParse(t *testing.T) {
	cases := map[string]Preference{
		"dark":  Dark,
		"light": Light,
		"":      Unset,
		"blue":  Unset,
	}
	for in, want := range cases {
		if got := Parse(in); got != want {
			t.Errorf("Parse(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolve(t *testing.T) {
	if got := Resolve(Dark, Light); got != Dark {
		t.Errorf("explicit preference must win, got %q", got)
	}
	if got := Resolve(Unset, Dark); got != Dark {
		t.Errorf("hint must apply when unset, got %q", got)
	}
	if got := Resolve(Unset, Unset); got != Light {
		t.Errorf("default must be light, got %q", got)
	}
}

func TestToggle(t *testing.T) {
	if Toggle(Dark) != Light || Toggle(Light) != Dark {
		t.Error("toggle must flip dark and light")
	}
	if Toggle(Unset) != Dark {
		t.Error("toggling an unresolved theme defaults to dark")
	}
}

func TestFromRequestAndSetCookie(t *testing.T) {
	w := httptest.NewRecorder()
	SetCookie(w, Dark)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	if got := FromRequest(req); got != Dark {
		t.Errorf("round-tripped preference = %q, want dark", got)
	}

	bare := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := FromRequest(bare); got != Unset {
		t.Errorf("no cookie must read unset, got %q", got)
	}
}

func TestSystemHint(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Sec-CH-Prefers-Color-Scheme", "dark")
	if SystemHint(req) != Dark {
		t.Error("dark hint not detected")
	}
	req.Header.Set("Sec-CH-Prefers-Color-Scheme", "light")
	if SystemHint(req) != Unset {
		t.Error("only the dark hint is meaningful")
	}
}

func TestApply(t *testing.T) {
	s, err := page.ParseString(`<html class="h-full"><body></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	Apply(s, Dark)
	if !s.Root().HasClass(RootClass) {
		t.Error("dark class not applied")
	}
	// Applying twice then switching back must leave a clean root.
	Apply(s, Dark)
	Apply(s, Light)
	if s.Root().HasClass(RootClass) {
		t.Error("dark class not removed")
	}
	if !s.Root().HasClass("h-full") {
		t.Error("unrelated root classes must survive")
	}
}
