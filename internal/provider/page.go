package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"panopto-urls/internal/httputil"
	"panopto-urls/internal/media"
)

// Verdict is the outcome of inspecting a redirect chain.
type Verdict int

const (
	ProceedWithDocument Verdict = iota
	RequiresLogin
)

func (v Verdict) String() string {
	if v == RequiresLogin {
		return "requires login"
	}
	return "proceed"
}

// ClassifyRedirects inspects only the first hop: a temporary redirect whose
// Location path is loginPath means the session is missing or expired.
func ClassifyRedirects(chain []httputil.Redirect, loginPath string) Verdict {
	if len(chain) == 0 {
		return ProceedWithDocument
	}

	first := chain[0]
	switch first.StatusCode {
	case http.StatusFound, http.StatusSeeOther, http.StatusTemporaryRedirect:
	default:
		return ProceedWithDocument
	}

	loc, err := url.Parse(first.Location)
	if err != nil {
		return ProceedWithDocument
	}
	if loc.Path == loginPath {
		return RequiresLogin
	}
	return ProceedWithDocument
}

// ParsePage fetches a viewer page with the session cookie attached and reads
// its og:video and og:title metadata. A redirect to the login page ends the
// fetch there; the login page itself is never requested.
func (p *Panopto) ParsePage(ctx context.Context, url, cookie string) ([]media.VideoEntry, error) {
	resp, err := p.fetch(ctx, url, cookie, httputil.StopRedirectsWhen(func(chain []httputil.Redirect) bool {
		return ClassifyRedirects(chain, p.loginPath) == RequiresLogin
	}))
	if err != nil {
		return nil, err
	}

	if ClassifyRedirects(resp.Redirects, p.loginPath) == RequiresLogin {
		return nil, &LoginRequiredError{URL: url, Location: resp.Redirects[0].Location}
	}
	if !resp.OK() {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	entries, err := parseViewerDocument(resp.Body, resp.ContentType, p.sanitizer)
	if err != nil {
		return nil, fmt.Errorf("parsing viewer page %s: %w", url, err)
	}

	log.Debug("parsed viewer page", "url", url, "videos", len(entries))
	return entries, nil
}

// parseViewerDocument pairs og:video and og:title tags by position. A page
// normally carries one of each; unequal counts are rejected rather than zipped.
func parseViewerDocument(body []byte, contentType string, s httputil.TitleSanitizer) ([]media.VideoEntry, error) {
	r, err := httputil.HTMLReader(body, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPage, err)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPage, err)
	}

	urls := metaContents(doc, "og:video")
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: no og:video metadata", ErrMalformedPage)
	}

	titles := metaContents(doc, "og:title")
	for i := range titles {
		titles[i] = s.Sanitize(titles[i])
	}

	return pair(urls, titles)
}

// metaContents returns the content attribute of every <meta property=prop>
// that has one, in document order.
func metaContents(doc *goquery.Document, prop string) []string {
	var out []string
	doc.Find("meta[property]").Each(func(_ int, m *goquery.Selection) {
		if m.AttrOr("property", "") != prop {
			return
		}
		if content, ok := m.Attr("content"); ok {
			out = append(out, content)
		}
	})
	return out
}
