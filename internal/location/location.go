// Package location provides the Location value type and URL parsing helpers.
package location

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNotAbsolute is returned when a URL has no scheme or host.
var ErrNotAbsolute = errors.New("url is not absolute")

// Location is a snapshot of a browser location. It is never mutated; every
// navigation produces a fresh value.
type Location struct {
	Href     string
	Origin   string
	Protocol string // scheme with trailing ":"
	Host     string // hostname[:port]
	Hostname string
	Port     string
	Pathname string
	Search   string // "" or "?query"
	Hash     string // "" or "#fragment"
}

// Parse builds a Location from an absolute URL the way window.location
// reports its fields.
func Parse(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("failed to parse url %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return Location{}, fmt.Errorf("%w: %q", ErrNotAbsolute, raw)
	}
	return fromURL(u), nil
}

// Resolve resolves ref against base, as a browser does for a relative URL
// passed to history.pushState.
func Resolve(base, ref string) (Location, error) {
	b, err := url.Parse(base)
	if err != nil {
		return Location{}, fmt.Errorf("failed to parse base url %q: %w", base, err)
	}
	r, err := url.Parse(ref)
	if err != nil {
		return Location{}, fmt.Errorf("failed to parse url %q: %w", ref, err)
	}
	u := b.ResolveReference(r)
	if u.Scheme == "" || u.Host == "" {
		return Location{}, fmt.Errorf("%w: %q", ErrNotAbsolute, u.String())
	}
	return fromURL(u), nil
}

func fromURL(u *url.URL) Location {
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" && u.Opaque == "" {
		u.Path = "/"
	}

	loc := Location{
		Href:     u.String(),
		Protocol: u.Scheme + ":",
		Host:     u.Host,
		Hostname: u.Hostname(),
		Port:     u.Port(),
		Pathname: u.EscapedPath(),
		Origin:   u.Scheme + "://" + u.Host,
	}
	if u.RawQuery != "" {
		loc.Search = "?" + u.RawQuery
	}
	if f := u.EscapedFragment(); f != "" {
		loc.Hash = "#" + f
	}
	return loc
}

// WithHash returns the location with its fragment replaced. The leading "#"
// is optional; an empty hash removes the fragment.
func (l Location) WithHash(hash string) (Location, error) {
	u, err := url.Parse(l.Href)
	if err != nil {
		return Location{}, fmt.Errorf("failed to parse href %q: %w", l.Href, err)
	}
	hash = strings.TrimPrefix(hash, "#")
	u.Fragment = ""
	u.RawFragment = ""
	if hash != "" {
		frag, err := url.PathUnescape(hash)
		if err != nil {
			frag = hash
		}
		u.Fragment = frag
	}
	return fromURL(u), nil
}

// SameOrigin reports whether both locations share scheme, host and port.
func (l Location) SameOrigin(other Location) bool {
	return l.Origin == other.Origin
}

// String returns the href.
func (l Location) String() string {
	return l.Href
}
