package httputil

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DisallowedTitleChars are stripped from titles before they become file names.
	DisallowedTitleChars = `/\?%*:|"><,'()+#`

	// LegacyDisallowedTitleChars is the older set that kept '#'.
	LegacyDisallowedTitleChars = `/\?%*:|"><,'()+`
)

var (
	titleSanitizer       = NewTitleSanitizer(false)
	pathSeparatorReplace = strings.NewReplacer("/", "_", "\\", "_")
)

// ValidateURL checks that a URL is well-formed and uses HTTPS.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("only HTTPS URLs are allowed, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	return nil
}

// TitleSanitizer turns display titles into filesystem-safe tokens.
type TitleSanitizer struct {
	disallowed string
}

// NewTitleSanitizer returns a sanitizer. keepHash selects the legacy character set
// in which '#' survives.
func NewTitleSanitizer(keepHash bool) TitleSanitizer {
	if keepHash {
		return TitleSanitizer{disallowed: LegacyDisallowedTitleChars}
	}
	return TitleSanitizer{disallowed: DisallowedTitleChars}
}

// Sanitize removes disallowed characters, then maps spaces to underscores and
// periods to hyphens. Removal must happen first.
func (s TitleSanitizer) Sanitize(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		if strings.ContainsRune(s.disallowed, r) {
			continue
		}
		switch r {
		case ' ':
			b.WriteByte('_')
		case '.':
			b.WriteByte('-')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SanitizeTitle sanitizes a title with the default character set.
func SanitizeTitle(title string) string {
	return titleSanitizer.Sanitize(title)
}

// SanitizeFilename replaces any remaining path separators with underscores.
// Applied as a last pass before a title is used as an output file name.
func SanitizeFilename(name string) string {
	return pathSeparatorReplace.Replace(name)
}
