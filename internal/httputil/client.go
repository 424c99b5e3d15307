// Package httputil provides a hardened HTTP client, redirect-aware fetching
// and title sanitization utilities.
package httputil

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/net/publicsuffix"
)

const (
	// DefaultUserAgent is sent with every request unless overridden.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/121.0"

	// DefaultTimeout bounds a single fetch, redirects included.
	DefaultTimeout = 30 * time.Second

	maxBodySize  = 50 * 1024 * 1024
	maxRedirects = 10
)

// ErrResponseTooLarge is returned when a body exceeds the fetcher's size cap.
var ErrResponseTooLarge = errors.New("response too large")

// NewClient creates a hardened HTTP client with secure defaults.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			ForceAttemptHTTP2:   true,
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
			DisableCompression:  false,
			MaxIdleConnsPerHost: 5,
		},
	}
}

// Redirect is one hop of a redirect chain.
type Redirect struct {
	StatusCode int
	Location   string // Raw Location header, possibly relative
}

// Response is the result of a fetch after all redirects were followed.
type Response struct {
	FinalURL    string
	StatusCode  int
	Redirects   []Redirect // In the order they were received
	Body        []byte
	ContentType string // Declared Content-Type, including any charset parameter
}

// OK reports whether the final status is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Cookie is a named session cookie attached to outbound requests.
type Cookie struct {
	Name  string
	Value string
}

// FetchOption adjusts a single fetch.
type FetchOption func(*fetchOptions)

type fetchOptions struct {
	stop func(chain []Redirect) bool
}

// StopRedirectsWhen ends the redirect chain as soon as stop reports true for
// the hops recorded so far. The redirect response itself is then returned.
func StopRedirectsWhen(stop func(chain []Redirect) bool) FetchOption {
	return func(o *fetchOptions) {
		o.stop = stop
	}
}

// Fetcher retrieves documents.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, cookie *Cookie, opts ...FetchOption) (*Response, error)
}

// HTTPFetcher is a Fetcher backed by net/http.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

// NewFetcher wraps client. The client is copied per fetch, so its Jar and
// CheckRedirect are never modified.
func NewFetcher(client *http.Client, userAgent string) *HTTPFetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPFetcher{client: client, userAgent: userAgent, maxBody: maxBodySize}
}

// Fetch performs a GET request, follows redirects and records every hop.
// A non-2xx final status is not an error here; callers decide.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string, cookie *Cookie, opts ...FetchOption) (*Response, error) {
	var o fetchOptions
	for _, opt := range opts {
		opt(&o)
	}

	if err := ValidateURL(rawURL); err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing URL: %w", err)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	if cookie != nil && cookie.Value != "" {
		jar.SetCookies(u, []*http.Cookie{{
			Name:   cookie.Name,
			Value:  cookie.Value,
			Path:   "/",
			Secure: true,
		}})
	}

	var redirects []Redirect
	client := *f.client
	client.Jar = jar
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if req.Response != nil {
			redirects = append(redirects, Redirect{
				StatusCode: req.Response.StatusCode,
				Location:   req.Response.Header.Get("Location"),
			})
		}
		if o.stop != nil && o.stop(redirects) {
			return http.ErrUseLastResponse
		}
		if len(via) >= maxRedirects {
			return errors.New("stopped after 10 redirects")
		}
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	log.Debug("fetching", "url", rawURL, "cookie", cookie != nil && cookie.Value != "")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if int64(len(body)) > f.maxBody {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, f.maxBody)
	}

	log.Debug("fetched", "url", resp.Request.URL.String(), "status", resp.StatusCode,
		"redirects", len(redirects), "bytes", len(body))

	return &Response{
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		Redirects:   redirects,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}
