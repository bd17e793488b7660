package request

import (
	"fmt"
	"net/http"
	"sort"
	"unicode/utf8"

	"golang.org/x/net/http/httpguts"
)

// Descriptor describes the request a Task will issue.
type Descriptor struct {
	Method string
	URL    string
	Header map[string]string
	Body   string
}

// Get describes a GET request.
func Get(url string) Descriptor {
	return Descriptor{Method: http.MethodGet, URL: url}
}

// Post describes a POST request with body.
func Post(url, body string) Descriptor {
	return Descriptor{Method: http.MethodPost, URL: url, Body: body}
}

// WithHeader returns a copy of d with the header set.
func (d Descriptor) WithHeader(name, value string) Descriptor {
	hdr := make(map[string]string, len(d.Header)+1)
	for k, v := range d.Header {
		hdr[k] = v
	}
	hdr[name] = value
	d.Header = hdr
	return d
}

// EncodingError reports a header that cannot be sent as text.
type EncodingError struct {
	Header string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("unparsable request header %q: not representable as text", e.Header)
}

// validateHeaders returns an EncodingError for the first offending header
// in name order.
func validateHeaders(hdr map[string]string) error {
	names := make([]string, 0, len(hdr))
	for k := range hdr {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, k := range names {
		v := hdr[k]
		if !utf8.ValidString(k) || !httpguts.ValidHeaderFieldName(k) {
			return &EncodingError{Header: k}
		}
		if !utf8.ValidString(v) || !httpguts.ValidHeaderFieldValue(v) {
			return &EncodingError{Header: k}
		}
	}
	return nil
}
