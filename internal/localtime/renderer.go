// Package localtime converts UTC timestamp placeholders embedded in rendered
// pages into the viewer's local time representation.
package localtime

import (
	"log/slog"
	"time"

	"github.com/halldor/dagaz/internal/page"
)

// Placeholder conventions shared with the templates that emit them.
const (
	// MarkerClass identifies elements eligible for conversion.
	MarkerClass = "datetime-local"
	// PendingClass hides a placeholder until its text has been localized.
	PendingClass = "opacity-0"
	// AttrUTC carries the raw UTC instant (or SentinelNone).
	AttrUTC = "data-utc"
	// AttrProcessed marks a placeholder as already converted.
	AttrProcessed = "data-processed"
	// SentinelNone is the literal emitted when no timestamp exists.
	SentinelNone = "None"
)

const markerSelector = "." + MarkerClass

// Stats summarizes one conversion pass.
type Stats struct {
	Converted int
	Skipped   int
	Failed    int
}

// Renderer localizes timestamp placeholders on a page surface.
type Renderer struct {
	loc    *time.Location
	logger *slog.Logger
}

// NewRenderer creates a renderer targeting the given viewer location.
// A nil location falls back to UTC.
func NewRenderer(loc *time.Location, logger *slog.Logger) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{loc: loc, logger: logger}
}

// Render runs one conversion pass over every placeholder on s, in document
// order. Each eligible placeholder is converted exactly once: its text is
// replaced with the localized form, AttrProcessed is set, and PendingClass
// is removed. Already-processed placeholders are left untouched, so calling
// Render any number of times yields the same final document.
//
// A missing or SentinelNone value is the "no timestamp" state, not an
// error: the placeholder stays hidden and unprocessed. An unparseable value
// is logged at Warn and likewise left unprocessed, so a later pass may
// retry; it never aborts the rest of the batch.
func (r *Renderer) Render(s *page.Surface) Stats {
	var st Stats
	for _, n := range s.Select(markerSelector) {
		if v, _ := n.Attr(AttrProcessed); v == "true" {
			st.Skipped++
			continue
		}
		raw, ok := n.Attr(AttrUTC)
		if !ok || raw == "" || raw == SentinelNone {
			st.Skipped++
			continue
		}
		t, err := ParseUTC(raw)
		if err != nil {
			st.Failed++
			r.logger.Warn("localtime: unparseable timestamp",
				slog.String("value", raw),
				slog.String("error", err.Error()))
			continue
		}
		n.SetText(Format(t, r.loc))
		n.SetAttr(AttrProcessed, "true")
		n.RemoveClass(PendingClass)
		st.Converted++
	}
	return st
}
