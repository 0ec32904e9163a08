package web

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/halldor/dagaz/internal/checksum"
	"github.com/halldor/dagaz/internal/localtime"
	"github.com/halldor/dagaz/internal/page"
	"github.com/halldor/dagaz/internal/theme"
)

// Enhancer rewrites successful HTML responses before they reach the
// client: it applies the viewer's theme class to the document root,
// converts timestamp placeholders to the viewer's local time, and
// attaches a content ETag. Non-HTML and non-200 responses pass through
// untouched, as does anything the HTML parser rejects.
func Enhancer(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			buf := &responseBuffer{header: make(http.Header), status: http.StatusOK}
			next.ServeHTTP(buf, r)

			if !buf.enhanceable() {
				buf.flush(w)
				return
			}

			surface, err := page.Parse(bytes.NewReader(buf.body.Bytes()))
			if err != nil {
				logger.Warn("page enhancement skipped", "path", r.URL.Path, "error", err)
				buf.flush(w)
				return
			}

			pref := theme.Resolve(theme.FromRequest(r), theme.SystemHint(r))
			theme.Apply(surface, pref)

			loc := ViewerLocation(r)
			stats := localtime.NewRenderer(loc, logger).Render(surface)
			if stats.Failed > 0 {
				logger.Warn("timestamps left unconverted",
					"path", r.URL.Path, "failed", stats.Failed)
			}

			out, err := surface.HTML()
			if err != nil {
				logger.Warn("page render failed", "path", r.URL.Path, "error", err)
				buf.flush(w)
				return
			}

			etag := checksum.ETag([]byte(out))
			if r.Header.Get("If-None-Match") == etag {
				// RFC 9110 §15.4.5: the 304 carries the validator too.
				w.Header().Set("ETag", etag)
				w.WriteHeader(http.StatusNotModified)
				return
			}

			copyHeader(w.Header(), buf.header)
			w.Header().Set("ETag", etag)
			w.Header().Set("Content-Length", strconv.Itoa(len(out)))
			w.WriteHeader(buf.status)
			w.Write([]byte(out))
		})
	}
}

// responseBuffer captures a handler's response so it can be rewritten
// before anything reaches the network.
type responseBuffer struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (b *responseBuffer) Header() http.Header { return b.header }

func (b *responseBuffer) WriteHeader(status int) { b.status = status }

func (b *responseBuffer) Write(p []byte) (int, error) { return b.body.Write(p) }

func (b *responseBuffer) enhanceable() bool {
	if b.status != http.StatusOK {
		return false
	}
	ct := b.header.Get("Content-Type")
	return ct == "" || strings.HasPrefix(ct, "text/html")
}

// flush replays the captured response unchanged.
func (b *responseBuffer) flush(w http.ResponseWriter) {
	copyHeader(w.Header(), b.header)
	w.WriteHeader(b.status)
	w.Write(b.body.Bytes())
}

func copyHeader(dst, src http.Header) {
	for k, vv := range src {
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}
