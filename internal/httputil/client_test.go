package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestFetchRecordsRedirectChain(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/middle", http.StatusFound)
	})
	mux.HandleFunc("/middle", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/end", http.StatusTemporaryRedirect)
	})
	mux.HandleFunc("/end", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("done"))
	})
	ts := httptest.NewTLSServer(mux)
	defer ts.Close()

	f := NewFetcher(ts.Client(), "")
	resp, err := f.Fetch(context.Background(), ts.URL+"/start", nil)
	require.NoError(t, err)

	assert.True(t, resp.OK())
	assert.Equal(t, ts.URL+"/end", resp.FinalURL)
	assert.Equal(t, "done", string(resp.Body))
	assert.Equal(t, "text/plain; charset=utf-8", resp.ContentType)
	assert.Equal(t, []Redirect{
		{StatusCode: http.StatusFound, Location: "/middle"},
		{StatusCode: http.StatusTemporaryRedirect, Location: "/end"},
	}, resp.Redirects)
}

func TestFetchSendsCookieAcrossRedirects(t *testing.T) {
	var seen []string
	mux := http.NewServeMux()
	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(".ASPXAUTH"); err == nil {
			seen = append(seen, "a="+c.Value)
		}
		http.Redirect(w, r, "/b/c", http.StatusFound)
	})
	mux.HandleFunc("/b/c", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(".ASPXAUTH"); err == nil {
			seen = append(seen, "c="+c.Value)
		}
	})
	ts := httptest.NewTLSServer(mux)
	defer ts.Close()

	f := NewFetcher(ts.Client(), "")
	_, err := f.Fetch(context.Background(), ts.URL+"/a", &Cookie{Name: ".ASPXAUTH", Value: "abc123"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a=abc123", "c=abc123"}, seen)
}

func TestFetchWithoutCookie(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Cookies())
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	resp, err := NewFetcher(ts.Client(), "").Fetch(context.Background(), ts.URL, &Cookie{Name: ".ASPXAUTH"})
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, resp.Redirects)
}

func TestFetchRejectsPlainHTTP(t *testing.T) {
	_, err := NewFetcher(NewClient(0), "").Fetch(context.Background(), "http://example.com/", nil)
	assert.Error(t, err)
}

func TestFetchHonorsContext(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFetcher(ts.Client(), "").Fetch(ctx, ts.URL, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestToUTF8XML(t *testing.T) {
	latin1, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(`<?xml version="1.0" encoding="ISO-8859-1"?><rss><t>Café</t></rss>`))
	require.NoError(t, err)

	tests := []struct {
		name        string
		body        []byte
		contentType string
		expected    string
	}{
		{
			"utf-8 passthrough",
			[]byte(`<?xml version="1.0" encoding="UTF-8"?><rss><t>Café</t></rss>`),
			"application/rss+xml; charset=utf-8",
			`<?xml version="1.0" encoding="UTF-8"?><rss><t>Café</t></rss>`,
		},
		{
			"declared latin-1",
			latin1,
			"application/xml; charset=iso-8859-1",
			`<?xml version="1.0" encoding="UTF-8"?><rss><t>Café</t></rss>`,
		},
		{
			"bom stripped",
			append([]byte("\xef\xbb\xbf"), []byte(`<rss/>`)...),
			"",
			`<rss/>`,
		},
		{
			"utf-8 guessed without declaration",
			[]byte(`<rss><t>Café</t></rss>`),
			"",
			`<rss><t>Café</t></rss>`,
		},
		{
			"prolog utf-8 with bare content type",
			[]byte(`<?xml version="1.0" encoding="UTF-8"?><rss><d>` + strings.Repeat("a", 1200) + `</d><t>Café – Week 1</t></rss>`),
			"application/rss+xml",
			`<?xml version="1.0" encoding="UTF-8"?><rss><d>` + strings.Repeat("a", 1200) + `</d><t>Café – Week 1</t></rss>`,
		},
		{
			"prolog latin-1 with bare content type",
			latin1,
			"text/xml",
			`<?xml version="1.0" encoding="UTF-8"?><rss><t>Café</t></rss>`,
		},
		{
			"content type charset wins over prolog",
			[]byte(`<?xml version="1.0" encoding="ISO-8859-1"?><rss><t>Café</t></rss>`),
			"application/xml; charset=utf-8",
			`<?xml version="1.0" encoding="UTF-8"?><rss><t>Café</t></rss>`,
		},
		{
			"invalid utf-8 without declaration is guessed",
			[]byte("<rss><t>Caf\xe9</t></rss>"),
			"",
			`<rss><t>Café</t></rss>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToUTF8XML(tt.body, tt.contentType)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestFetchStopsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/viewer", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusFound)
	})
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		t.Error("login page should not be requested")
	})
	ts := httptest.NewTLSServer(mux)
	defer ts.Close()

	stop := StopRedirectsWhen(func(chain []Redirect) bool {
		return chain[0].Location == "/login"
	})
	resp, err := NewFetcher(ts.Client(), "").Fetch(context.Background(), ts.URL+"/viewer", nil, stop)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, []Redirect{{StatusCode: http.StatusFound, Location: "/login"}}, resp.Redirects)
}

func TestFetchBodyLimit(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 16)))
	}))
	defer ts.Close()

	f := NewFetcher(ts.Client(), "")

	f.maxBody = 16
	resp, err := f.Fetch(context.Background(), ts.URL, nil)
	require.NoError(t, err)
	assert.Len(t, resp.Body, 16)

	f.maxBody = 15
	_, err = f.Fetch(context.Background(), ts.URL, nil)
	assert.ErrorIs(t, err, ErrResponseTooLarge)
}
