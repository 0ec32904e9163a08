// Package linkrow builds repeatable name/URL input rows for item forms.
package linkrow

import (
	"fmt"
	"html/template"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/halldor/dagaz/internal/page"
)

// RowClass marks one appended row's subtree; the remove control deletes
// exactly that subtree.
const RowClass = "link-row"

const rowTemplate = `<div class="link-row">
<label>Name <input type="text" name="{{.Prefix}}_name_{{.Index}}" placeholder="e.g. Pipeline"></label>
<label>URL <input type="url" name="{{.Prefix}}_url_{{.Index}}" placeholder="https://"></label>
<button type="button" class="remove-row" onclick="this.closest('.link-row').remove()">Remove</button>
</div>`

// Builder renders link rows, either as standalone fragments or appended
// directly onto a page surface.
type Builder struct {
	tmpl *template.Template
}

// NewBuilder creates a Builder with the row template parsed.
func NewBuilder() *Builder {
	return &Builder{
		tmpl: template.Must(template.New("linkrow").Parse(rowTemplate)),
	}
}

type rowData struct {
	Prefix string
	Index  int
}

// Render writes one row fragment to w. Field names are composed as
// "<prefix>_name_<index>" and "<prefix>_url_<index>".
func (b *Builder) Render(w io.Writer, prefix string, index int) error {
	if err := b.tmpl.Execute(w, rowData{Prefix: prefix, Index: index}); err != nil {
		return fmt.Errorf("linkrow: render: %w", err)
	}
	return nil
}

// RowHTML returns one row fragment as a string.
func (b *Builder) RowHTML(prefix string, index int) (string, error) {
	var sb strings.Builder
	if err := b.Render(&sb, prefix, index); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// AddRow appends one new row to the container with the given id. The row
// index continues from the rows already present, so repeated calls produce
// distinct field names.
func (b *Builder) AddRow(s *page.Surface, containerID, prefix string) error {
	container, ok := s.ByID(containerID)
	if !ok {
		return fmt.Errorf("linkrow: container %q not found", containerID)
	}
	next := len(s.Select("#" + containerID + " ." + RowClass))
	frag, err := b.RowHTML(prefix, next)
	if err != nil {
		return err
	}
	container.AppendHTML(frag)
	return nil
}

// Pair is one submitted name/URL row.
type Pair struct {
	Name string
	URL  string
}

// Pairs collects the rows submitted under prefix from a parsed form. Every
// "<prefix>_name_<N>" key present is read, in ascending N, so rows removed
// client-side leave gaps without losing the rows after them. Duplicate
// indexes keep all their values, zipped positionally with the matching URL
// key. Rows left entirely blank are skipped.
func Pairs(form url.Values, prefix string) []Pair {
	namePrefix := prefix + "_name_"
	var indexes []int
	for key := range form {
		rest, ok := strings.CutPrefix(key, namePrefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		indexes = append(indexes, n)
	}
	sort.Ints(indexes)

	var out []Pair
	for _, n := range indexes {
		idx := strconv.Itoa(n)
		names := form[namePrefix+idx]
		urls := form[prefix+"_url_"+idx]
		for i, name := range names {
			link := ""
			if i < len(urls) {
				link = urls[i]
			}
			name = strings.TrimSpace(name)
			link = strings.TrimSpace(link)
			if name == "" && link == "" {
				continue
			}
			out = append(out, Pair{Name: name, URL: link})
		}
	}
	return out
}
