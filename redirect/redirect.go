// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package redirect holds the protocol knowledge the robust client needs
// to follow HTTP redirects itself instead of leaving them to the
// transport: which statuses are followed, how the Location header is
// found, how a WebDAV Destination header is carried over to the new
// server, and the Path recording the hops taken.
package redirect

import (
	"net/http"
	"net/url"
	"strings"
)

// MaxRedirections is the maximum number of redirect hops followed for
// one logical request. After the last hop the most recent response is
// classified as is, even if it is itself a redirect.
const MaxRedirections = 3

// WebDAVPaths lists the server-side WebDAV endpoint path prefixes, most
// specific first. They are used to split a WebDAV URL into the server
// base and the resource path when rewriting a Destination header.
var WebDAVPaths = []string{
	"/remote.php/dav",
	"/remote.php/webdav",
}

// IsRedirect reports whether status is one of the redirect statuses the
// client follows: 301 (Moved Permanently), 302 (Found), or 307
// (Temporary Redirect).
//
// Other 3xx statuses, including 308, are not followed and are
// classified like any other status.
func IsRedirect(status int) bool {
	return status == http.StatusMovedPermanently ||
		status == http.StatusFound ||
		status == http.StatusTemporaryRedirect
}

// Location returns the value of the Location header in h, matching the
// header name case-insensitively, or the empty string if there is no
// Location header.
func Location(h http.Header) string {
	return lookup(h, "Location")
}

// Destination returns the value of the WebDAV Destination header in h,
// matching the header name case-insensitively, or the empty string if
// there is no Destination header.
func Destination(h http.Header) string {
	return lookup(h, "Destination")
}

// Resolve resolves location, which may be relative, against the URL of
// the request that was redirected.
func Resolve(base *url.URL, location string) (*url.URL, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, err
	}
	if base == nil {
		return u, nil
	}
	return base.ResolveReference(u), nil
}

// RewriteDestination computes the Destination header to send with a
// redirected WebDAV MOVE or COPY request.
//
// The redirection base is location with its WebDAV path suffix (and
// anything after it) removed. The resource path is the tail of
// destination starting at its own WebDAV path. The result is the
// redirection base followed by the resource path:
//
//	destination: https://old/remote.php/dav/files/u/a/b.txt
//	location:    https://new/remote.php/dav/files/
//	result:      https://new/remote.php/dav/files/u/a/b.txt
//
// If location contains no WebDAV path, the redirection base is its
// scheme and host. If destination contains no WebDAV path, its whole
// path (and query) is used as the resource path.
func RewriteDestination(destination, location string) string {
	base := location
	if i := lastWebDAVIndex(location); i >= 0 {
		base = location[:i]
	} else if u, err := url.Parse(location); err == nil && u.Host != "" {
		base = u.Scheme + "://" + u.Host
	}

	tail := ""
	if i := firstWebDAVIndex(destination); i >= 0 {
		tail = destination[i:]
	} else if u, err := url.Parse(destination); err == nil {
		tail = u.RequestURI()
	}

	return strings.TrimSuffix(base, "/") + tail
}

func lastWebDAVIndex(s string) int {
	for _, p := range WebDAVPaths {
		if i := strings.LastIndex(s, p); i >= 0 {
			return i
		}
	}
	return -1
}

func firstWebDAVIndex(s string) int {
	for _, p := range WebDAVPaths {
		if i := strings.Index(s, p); i >= 0 {
			return i
		}
	}
	return -1
}

func lookup(h http.Header, name string) string {
	if v := h.Get(name); v != "" {
		return v
	}
	for k, vs := range h {
		if strings.EqualFold(k, name) && len(vs) > 0 {
			return vs[0]
		}
	}
	return ""
}
