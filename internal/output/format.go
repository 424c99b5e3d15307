// Package output renders extracted videos as newline-delimited text and
// writes it to a file or stdout.
package output

import (
	"fmt"
	"strings"

	"panopto-urls/internal/httputil"
	"panopto-urls/internal/media"
)

// Options controls the rendered form.
type Options struct {
	// Xargs prefixes each URL with curl directives, so the output can be piped
	// to `xargs -n 3 curl -L` (or `-n 5` when a cookie is set).
	Xargs      bool
	Cookie     string
	CookieName string
}

// Lines renders entries in order. It never fails; entries must already have
// passed the url/title cardinality check.
func Lines(entries []media.VideoEntry, opts Options) []string {
	perEntry := 1
	if opts.Xargs {
		perEntry = 2
		if opts.Cookie != "" {
			perEntry = 3
		}
	}

	lines := make([]string, 0, len(entries)*perEntry)
	for _, e := range entries {
		if opts.Xargs {
			lines = append(lines, fmt.Sprintf(`-o "%s.mp4"`, httputil.SanitizeFilename(e.Title)))
			if opts.Cookie != "" {
				lines = append(lines, fmt.Sprintf(`-H "Cookie: %s=%s"`, opts.CookieName, opts.Cookie))
			}
		}
		lines = append(lines, e.URL)
	}
	return lines
}

// Format joins Lines with a newline after every line.
func Format(entries []media.VideoEntry, opts Options) string {
	lines := Lines(entries, opts)
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
