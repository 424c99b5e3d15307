// Package provider extracts video URLs and titles from Panopto podcast feeds
// and viewer pages.
package provider

import (
	"context"

	"github.com/charmbracelet/log"

	"panopto-urls/internal/httputil"
	"panopto-urls/internal/media"
)

// DefaultCookieName is the Panopto session cookie.
const DefaultCookieName = ".ASPXAUTH"

// ParseFunc extracts entries from the document at url. cookie may be empty.
type ParseFunc func(ctx context.Context, url, cookie string) ([]media.VideoEntry, error)

// Options configures a Panopto provider. Zero values fall back to the Panopto defaults.
type Options struct {
	Routes     RouteTable
	LoginPath  string
	CookieName string
	KeepHash   bool // Use the legacy title character set that keeps '#'
}

// Panopto implements feed and viewer-page extraction for one Panopto deployment.
type Panopto struct {
	fetcher    httputil.Fetcher
	routes     RouteTable
	loginPath  string
	cookieName string
	sanitizer  httputil.TitleSanitizer
}

// New creates a Panopto provider that retrieves documents through fetcher.
func New(fetcher httputil.Fetcher, opts Options) *Panopto {
	p := &Panopto{
		fetcher:    fetcher,
		routes:     opts.Routes,
		loginPath:  opts.LoginPath,
		cookieName: opts.CookieName,
		sanitizer:  httputil.NewTitleSanitizer(opts.KeepHash),
	}
	if p.routes.FeedPath == "" {
		p.routes.FeedPath = FeedPath
	}
	if p.routes.PagePath == "" {
		p.routes.PagePath = PagePath
	}
	if p.loginPath == "" {
		p.loginPath = LoginPath
	}
	if p.cookieName == "" {
		p.cookieName = DefaultCookieName
	}
	return p
}

// Routes returns the route table in use.
func (p *Panopto) Routes() RouteTable {
	return p.routes
}

// Select picks the parser for rawURL by its path.
func (p *Panopto) Select(rawURL string) (ParseFunc, media.Route, error) {
	route, err := p.routes.Route(rawURL)
	if err != nil {
		return nil, route, err
	}
	log.Debug("routed", "url", rawURL, "route", route)
	if route == media.Feed {
		return p.ParseFeed, route, nil
	}
	return p.ParsePage, route, nil
}

// Extract routes rawURL and runs the selected parser. The result always
// satisfies len(urls) == len(titles).
func (p *Panopto) Extract(ctx context.Context, rawURL, cookie string) ([]media.VideoEntry, media.Route, error) {
	parse, route, err := p.Select(rawURL)
	if err != nil {
		return nil, route, err
	}

	entries, err := parse(ctx, rawURL, cookie)
	if err != nil {
		return nil, route, err
	}
	return entries, route, nil
}

func (p *Panopto) fetch(ctx context.Context, rawURL, cookie string, opts ...httputil.FetchOption) (*httputil.Response, error) {
	var c *httputil.Cookie
	if cookie != "" {
		c = &httputil.Cookie{Name: p.cookieName, Value: cookie}
	}
	resp, err := p.fetcher.Fetch(ctx, rawURL, c, opts...)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	return resp, nil
}

// pair zips parallel URL and title sequences, refusing to truncate.
func pair(urls, titles []string) ([]media.VideoEntry, error) {
	if len(urls) != len(titles) {
		return nil, &CardinalityError{URLs: urls, Titles: titles}
	}
	entries := make([]media.VideoEntry, len(urls))
	for i := range urls {
		entries[i] = media.VideoEntry{URL: urls[i], Title: titles[i]}
	}
	return entries, nil
}
