// Package endpoints builds and matches absolute URLs for the well-known
// Swaptacular endpoints.
//
// The available endpoints are:
//
//	authority  /authority
//	debtor     /debtors/<i64:debtorId>
//	creditor   /creditors/<i64:creditorId>
//
// Path parameters are signed 64-bit integers in their unsigned decimal
// "slug" form (see the i64 package). The site's URL scheme comes from
// the SWPT_URL_SCHEME configuration value (default "http"), and the
// domain name (and maybe port) from SWPT_SERVER_NAME.
package endpoints

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	swpterrors "github.com/swaptacular/swptlib/core/errors"
	"github.com/swaptacular/swptlib/core/i64"
	"github.com/swaptacular/swptlib/internal/config"
)

// Configuration keys consulted by this package.
const (
	SchemeKey     = "SWPT_URL_SCHEME"
	ServerNameKey = "SWPT_SERVER_NAME"
)

var (
	// ErrMatch indicates that an URL does not match the endpoint.
	ErrMatch = errors.New("URL does not match the endpoint")
	// ErrBuild indicates that an URL can not be built for the endpoint.
	ErrBuild = errors.New("cannot build URL for the endpoint")
)

// Args holds the path parameters of an endpoint, by name.
type Args map[string]int64

var slugSegment = regexp.MustCompile(`^(` + i64.SlugPattern + `)$`)

// A rule maps an endpoint name to a path template. Segments starting
// with ":" are i64 path parameters.
type rule struct {
	endpoint string
	segments []string
}

var rules = []rule{
	{"authority", []string{"authority"}},
	{"debtor", []string{"debtors", ":debtorId"}},
	{"creditor", []string{"creditors", ":creditorId"}},
}

// URLScheme returns the site's URL scheme, or "http" if not configured.
func URLScheme() string {
	if s := config.Lookup(SchemeKey); s != "" {
		return s
	}
	return "http"
}

// ServerName returns the site's domain name (and maybe port), or ""
// if not configured.
func ServerName() string {
	return config.Lookup(ServerNameKey)
}

// MatchURL tries to match an absolute URL to the given endpoint,
// returning the path parameters extracted from the URL. Returns
// ErrMatch if the URL does not match.
func MatchURL(endpoint, absoluteURL string) (Args, error) {
	u, err := url.Parse(absoluteURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMatch, absoluteURL)
	}
	if u.Scheme != URLScheme() || u.Host == "" || u.Host != ServerName() {
		return nil, fmt.Errorf("%w: %s", ErrMatch, absoluteURL)
	}
	for _, r := range rules {
		if r.endpoint != endpoint {
			continue
		}
		args, ok := r.match(u.Path)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMatch, absoluteURL)
		}
		return args, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrMatch, absoluteURL)
}

// BuildURL tries to build an absolute URL for the given endpoint and
// path parameters. Returns ErrBuild for an unknown endpoint or wrong
// parameters, and a configuration error if SWPT_SERVER_NAME is not set.
func BuildURL(endpoint string, args Args) (string, error) {
	serverName := ServerName()
	if serverName == "" {
		return "", swpterrors.NewConfig(ServerNameKey, "not set")
	}
	for _, r := range rules {
		if r.endpoint != endpoint {
			continue
		}
		path, err := r.build(args)
		if err != nil {
			return "", err
		}
		u := url.URL{Scheme: URLScheme(), Host: serverName, Path: path}
		return u.String(), nil
	}
	return "", fmt.Errorf("%w: %s", ErrBuild, endpoint)
}

func (r rule) match(path string) (Args, bool) {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(parts) != len(r.segments) {
		return nil, false
	}
	args := Args{}
	for i, seg := range r.segments {
		if !strings.HasPrefix(seg, ":") {
			if parts[i] != seg {
				return nil, false
			}
			continue
		}
		if !slugSegment.MatchString(parts[i]) {
			return nil, false
		}
		value, err := i64.FromSlug(parts[i])
		if err != nil {
			return nil, false
		}
		args[seg[1:]] = value
	}
	return args, true
}

func (r rule) build(args Args) (string, error) {
	var b strings.Builder
	params := 0
	for _, seg := range r.segments {
		b.WriteByte('/')
		if !strings.HasPrefix(seg, ":") {
			b.WriteString(seg)
			continue
		}
		value, ok := args[seg[1:]]
		if !ok {
			return "", fmt.Errorf("%w: missing argument %s", ErrBuild, seg[1:])
		}
		b.WriteString(i64.ToSlug(value))
		params++
	}
	if params != len(args) {
		return "", fmt.Errorf("%w: unexpected arguments", ErrBuild)
	}
	return b.String(), nil
}
