// Package web serves the server-rendered tracker pages and runs the
// page-enhancement pipeline over every HTML response.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/halldor/dagaz/internal/localtime"
	"github.com/halldor/dagaz/internal/models"
	"github.com/halldor/dagaz/internal/textfilter"
)

//go:embed templates
var embeddedTemplates embed.FS

// pageNames lists the page templates; each is parsed together with the
// base layout into its own template set.
var pageNames = []string{"list.html", "detail.html"}

// Templates holds the parsed page templates and supports hot reload from
// an optional override directory.
type Templates struct {
	dir string

	mu    sync.RWMutex
	pages map[string]*template.Template
}

// NewTemplates parses the embedded templates, or the ones under dir when
// it is non-empty.
func NewTemplates(dir string) (*Templates, error) {
	t := &Templates{dir: dir}
	if err := t.Reload(); err != nil {
		return nil, err
	}
	return t, nil
}

// Reload re-parses all templates. With an override directory this picks up
// edits on disk; otherwise it is a no-op re-parse of the embedded set.
func (t *Templates) Reload() error {
	var src fs.FS
	if t.dir != "" {
		src = os.DirFS(t.dir)
	} else {
		sub, err := fs.Sub(embeddedTemplates, "templates")
		if err != nil {
			return fmt.Errorf("web: embedded templates: %w", err)
		}
		src = sub
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New("base.html").Funcs(templateFuncs()).ParseFS(src, "base.html", name)
		if err != nil {
			return fmt.Errorf("web: parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	t.mu.Lock()
	t.pages = pages
	t.mu.Unlock()
	return nil
}

// Render executes the named page template with data.
func (t *Templates) Render(w io.Writer, name string, data any) error {
	t.mu.RLock()
	tmpl, ok := t.pages[name]
	t.mu.RUnlock()
	if !ok {
		return fmt.Errorf("web: unknown template %q", name)
	}
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		return fmt.Errorf("web: render %s: %w", name, err)
	}
	return nil
}

// templateFuncs returns the filter set the pages use. The local filter
// emits the timestamp placeholder the enhancement pass converts; it never
// renders viewer-local text itself.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"local":     localPlaceholder,
		"timeago":   func(t time.Time) string { return localtime.TimeAgo(t, time.Now().UTC()) },
		"duephrase": duePhrase,
		"markdown":  textfilter.Markdown,
		"highlight": textfilter.Highlight,
		"overdue": func(v any) bool {
			switch i := v.(type) {
			case models.Item:
				return i.Overdue(time.Now().UTC())
			case *models.Item:
				return i != nil && i.Overdue(time.Now().UTC())
			}
			return false
		},
		"add": func(a, b int) int { return a + b },
	}
}

// localPlaceholder renders a hidden timestamp placeholder carrying the raw
// UTC instant, with a UTC fallback text for clients that never run the
// enhancement pass. Accepts time.Time or *time.Time; absent values render
// nothing, matching the "no timestamp" contract.
func localPlaceholder(v any) template.HTML {
	var ts time.Time
	switch t := v.(type) {
	case time.Time:
		ts = t
	case *time.Time:
		if t == nil {
			return ""
		}
		ts = *t
	default:
		return ""
	}
	if ts.IsZero() {
		return ""
	}
	utc := ts.UTC()
	return template.HTML(fmt.Sprintf(
		`<span class="%s %s" %s="%s">%s UTC</span>`,
		localtime.MarkerClass, localtime.PendingClass,
		localtime.AttrUTC, utc.Format(time.RFC3339),
		utc.Format("02 Jan 2006, 15:04")))
}

// duePhrase turns an optional due date into a short badge text.
func duePhrase(due *time.Time) string {
	if due == nil || due.IsZero() {
		return ""
	}
	days := localtime.DaysUntil(*due, time.Now().UTC())
	switch {
	case days < 0:
		return fmt.Sprintf("%d days late", -days)
	case days == 0:
		return "due today"
	case days == 1:
		return "due tomorrow"
	default:
		return fmt.Sprintf("due in %d days", days)
	}
}
