// Package media defines shared types for the panopto-urls application.
package media

import "time"

// Route identifies which parser handles an input URL.
type Route int

const (
	Unroutable Route = iota
	Feed
	Page
)

func (r Route) String() string {
	switch r {
	case Feed:
		return "feed"
	case Page:
		return "page"
	default:
		return "unroutable"
	}
}

// ParseRoute is the inverse of Route.String.
func ParseRoute(s string) Route {
	switch s {
	case "feed":
		return Feed
	case "page":
		return Page
	default:
		return Unroutable
	}
}

// VideoEntry is a single downloadable video extracted from a feed or viewer page.
type VideoEntry struct {
	URL   string // Absolute or scheme-relative media URL
	Title string // Sanitized, filesystem-safe title
}

// Run is a recorded extraction, as stored in the run history.
type Run struct {
	ID        string
	URL       string // Input feed or viewer URL
	Route     Route
	Entries   []VideoEntry
	Count     int // len(Entries) at record time; set when Entries is not loaded
	CreatedAt time.Time
}
