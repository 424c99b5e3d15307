package provider

import (
	"fmt"
	"net/url"

	"panopto-urls/internal/media"
)

const (
	// FeedPath is the podcast feed endpoint.
	FeedPath = "/Panopto/Podcast/Podcast.ashx"

	// PagePath is the single-session viewer page.
	PagePath = "/Panopto/Pages/Viewer.aspx"

	// LoginPath is where unauthenticated viewer requests are redirected.
	LoginPath = "/Panopto/Pages/Auth/Login.aspx"
)

// RouteTable maps the two known URL paths to their parsers.
// Matching is exact: no prefixes, no case folding.
type RouteTable struct {
	FeedPath string
	PagePath string
}

// DefaultRoutes returns the Panopto route table.
func DefaultRoutes() RouteTable {
	return RouteTable{FeedPath: FeedPath, PagePath: PagePath}
}

// Classify returns the route for rawURL. Query and fragment are ignored.
func (t RouteTable) Classify(rawURL string) media.Route {
	u, err := url.Parse(rawURL)
	if err != nil {
		return media.Unroutable
	}
	switch u.Path {
	case t.FeedPath:
		return media.Feed
	case t.PagePath:
		return media.Page
	default:
		return media.Unroutable
	}
}

// Route is Classify with an error for unroutable input.
func (t RouteTable) Route(rawURL string) (media.Route, error) {
	route := t.Classify(rawURL)
	if route == media.Unroutable {
		return route, fmt.Errorf("%w: %q is neither a podcast feed (%s) nor a viewer page (%s)",
			ErrUnroutable, rawURL, t.FeedPath, t.PagePath)
	}
	return route, nil
}
