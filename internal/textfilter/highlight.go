package textfilter

import (
	"html/template"
	"regexp"
	"strings"
)

const markOpen = `<mark class="search-hit">`

// Highlight wraps every case-insensitive occurrence of the search query's
// words in <mark> tags. Words are matched independently and regex
// metacharacters in the query are treated literally. The surrounding text
// is HTML-escaped.
func Highlight(text, query string) template.HTML {
	escaped := template.HTML(template.HTMLEscapeString(text))
	if text == "" || query == "" {
		return escaped
	}
	words := strings.Fields(query)
	if len(words) == 0 {
		return escaped
	}

	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	re, err := regexp.Compile(`(?i)(` + strings.Join(quoted, "|") + `)`)
	if err != nil {
		return escaped
	}

	var b strings.Builder
	last := 0
	for _, m := range re.FindAllStringIndex(text, -1) {
		b.WriteString(template.HTMLEscapeString(text[last:m[0]]))
		b.WriteString(markOpen)
		b.WriteString(template.HTMLEscapeString(text[m[0]:m[1]]))
		b.WriteString(`</mark>`)
		last = m[1]
	}
	b.WriteString(template.HTMLEscapeString(text[last:]))
	return template.HTML(b.String())
}
