package provider

import (
	"bytes"
	"context"
	"fmt"

	"github.com/antchfx/xmlquery"
	"github.com/charmbracelet/log"

	"panopto-urls/internal/httputil"
	"panopto-urls/internal/media"
)

// ParseFeed fetches a podcast feed and returns its items in document order.
func (p *Panopto) ParseFeed(ctx context.Context, url, cookie string) ([]media.VideoEntry, error) {
	resp, err := p.fetch(ctx, url, cookie)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	entries, err := parseFeedDocument(resp.Body, resp.ContentType, p.sanitizer)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %s: %w", url, err)
	}

	log.Debug("parsed feed", "url", url, "items", len(entries))
	return entries, nil
}

// parseFeedDocument reads every root/*/item. Each item must carry an
// enclosure url and a title element; the first item lacking either fails the
// whole document.
func parseFeedDocument(body []byte, contentType string, s httputil.TitleSanitizer) ([]media.VideoEntry, error) {
	data, err := httputil.ToUTF8XML(body, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
	}

	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
	}

	root := firstChildElement(doc, "")
	if root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformedFeed)
	}

	var urls, titles []string
	index := 0
	for group := root.FirstChild; group != nil; group = group.NextSibling {
		if group.Type != xmlquery.ElementNode {
			continue
		}
		for item := group.FirstChild; item != nil; item = item.NextSibling {
			if !isElement(item, "item") {
				continue
			}

			u, err := enclosureURL(item)
			if err != nil {
				return nil, &ItemError{Index: index, Err: err}
			}
			title, err := itemTitle(item)
			if err != nil {
				return nil, &ItemError{Index: index, Err: err}
			}

			urls = append(urls, u)
			titles = append(titles, s.Sanitize(title))
			index++
		}
	}

	return pair(urls, titles)
}

func enclosureURL(item *xmlquery.Node) (string, error) {
	enclosure := firstChildElement(item, "enclosure")
	if enclosure == nil {
		return "", ErrMissingEnclosure
	}
	for _, attr := range enclosure.Attr {
		if attr.Name.Local == "url" && attr.Name.Space == "" {
			return attr.Value, nil
		}
	}
	return "", ErrMissingEnclosure
}

// itemTitle treats an empty <title/> as an empty title; only a missing element is an error.
func itemTitle(item *xmlquery.Node) (string, error) {
	title := firstChildElement(item, "title")
	if title == nil {
		return "", ErrMissingTitle
	}
	return title.InnerText(), nil
}

// firstChildElement returns the first non-namespaced child element named name,
// or the first child element of any name when name is empty.
func firstChildElement(n *xmlquery.Node, name string) *xmlquery.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if name == "" && c.Type == xmlquery.ElementNode {
			return c
		}
		if name != "" && isElement(c, name) {
			return c
		}
	}
	return nil
}

// isElement reports whether n is an element with the given local name and no
// namespace, so itunes:title never stands in for title.
func isElement(n *xmlquery.Node, name string) bool {
	return n.Type == xmlquery.ElementNode && n.Data == name && n.Prefix == "" && n.NamespaceURI == ""
}
