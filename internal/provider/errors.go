package provider

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnroutable          = errors.New("unroutable URL")
	ErrFetch               = errors.New("fetch failed")
	ErrLoginRequired       = errors.New("login required")
	ErrMalformedFeed       = errors.New("malformed feed")
	ErrMalformedPage       = errors.New("malformed viewer page")
	ErrMissingEnclosure    = errors.New("item has no enclosure url")
	ErrMissingTitle        = errors.New("item has no title")
	ErrCardinalityMismatch = errors.New("url and title counts differ")
)

// FetchError reports a failed retrieval: a transport error or a non-2xx status.
type FetchError struct {
	URL        string
	StatusCode int // Zero when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetch}
	}
	return []error{ErrFetch, e.Err}
}

// LoginRequiredError reports that a viewer page redirected to the login page.
type LoginRequiredError struct {
	URL      string
	Location string // Location header of the first redirect
}

func (e *LoginRequiredError) Error() string {
	return fmt.Sprintf("%s redirected to the login page (%s); sign in with a browser, copy the "+
		"session cookie and pass it with -c/--cookie", e.URL, e.Location)
}

func (e *LoginRequiredError) Unwrap() error { return ErrLoginRequired }

// ItemError locates a feed item that is missing a required field.
type ItemError struct {
	Index int // Zero-based position among the feed's items
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("feed item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// CardinalityError carries both sequences so a mismatch can be diagnosed.
type CardinalityError struct {
	URLs   []string
	Titles []string
}

func (e *CardinalityError) Error() string {
	return fmt.Sprintf("%v: %d urls [%s], %d titles [%s]", ErrCardinalityMismatch,
		len(e.URLs), strings.Join(e.URLs, ", "), len(e.Titles), strings.Join(e.Titles, ", "))
}

func (e *CardinalityError) Unwrap() error { return ErrCardinalityMismatch }
