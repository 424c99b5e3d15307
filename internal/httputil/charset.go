package httputil

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
)

var (
	utf8BOM = []byte("\xef\xbb\xbf")

	// xmlDeclEncoding captures everything in the XML prolog up to the encoding value.
	xmlDeclEncoding = regexp.MustCompile(`^(\s*<\?xml[^?]*?\bencoding\s*=\s*)["']([^"']*)["']`)
)

// ToUTF8XML converts an XML body to UTF-8. The encoding is taken from the
// Content-Type charset, then from the prolog's encoding pseudo-attribute. With
// neither, the body is UTF-8 unless its bytes say otherwise, in which case the
// encoding is guessed. The prolog is rewritten to UTF-8 so the XML decoder does
// not decode twice.
func ToUTF8XML(body []byte, contentType string) ([]byte, error) {
	body = bytes.TrimPrefix(body, utf8BOM)

	enc, name := xmlEncoding(body, contentType)
	if name != "utf-8" {
		decoded, err := enc.NewDecoder().Bytes(body)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
		body = bytes.TrimPrefix(decoded, utf8BOM)
	}

	return xmlDeclEncoding.ReplaceAll(body, []byte(`${1}"UTF-8"`)), nil
}

func xmlEncoding(body []byte, contentType string) (encoding.Encoding, string) {
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		if enc, name := charset.Lookup(params["charset"]); enc != nil {
			return enc, name
		}
	}

	if m := xmlDeclEncoding.FindSubmatch(body); m != nil {
		if enc, name := charset.Lookup(strings.TrimSpace(string(m[2]))); enc != nil {
			return enc, name
		}
	}

	if utf8.Valid(body) {
		return encoding.Nop, "utf-8"
	}

	enc, name, _ := charset.DetermineEncoding(body, "")
	return enc, name
}

// HTMLReader returns a UTF-8 reader over an HTML body, honoring the declared
// charset, then <meta> hints, then a guess.
func HTMLReader(body []byte, contentType string) (io.Reader, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("detecting charset: %w", err)
	}
	return r, nil
}
