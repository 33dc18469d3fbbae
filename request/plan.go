// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	urlpkg "net/url"
	"strings"
	"time"

	"github.com/gogama/davx/failure"
	"github.com/gogama/davx/redirect"
	"golang.org/x/net/http/httpguts"
)

const nilCtxMsg = "davx/request: nil context"

// A Plan is the method descriptor of one logical WebDAV or OCS call:
// verb, target URL, headers (including any WebDAV Destination), a
// pre-buffered body so the call can be reissued, and how the outcome
// should be judged.
//
// Executing a Plan makes one or more physical attempts: the initial
// request, one per redirect hop followed, and at most one IPv4
// fallback reissue.
type Plan struct {
	// Method is the HTTP or WebDAV verb. NewPlan defaults it to GET.
	Method string

	// URL is the target. Its Host is also the Host header sent.
	URL *urlpkg.URL

	// Header holds the request headers: credentials, Depth, the
	// Destination of a MOVE or COPY, and so on.
	Header http.Header

	// Body is sent as-is on every attempt. Nil or empty means no body.
	Body []byte

	// Timeout bounds each physical attempt. Zero leaves it to the
	// client's timeout policy.
	Timeout time.Duration

	// SuccessCodes are the statuses classified as success. Empty means
	// any 2xx.
	SuccessCodes []int

	// NoFollow disables redirect following. A redirect response is then
	// classified like any other.
	NoFollow bool

	ctx context.Context
}

// NewPlan is NewPlanWithContext with the background context.
func NewPlan(method, url string, body interface{}) (*Plan, error) {
	return NewPlanWithContext(context.Background(), method, url, body)
}

// NewPlanWithContext returns a plan for method and url. The body may be
// of any type accepted by BodyBytes and is buffered immediately.
//
// The method must be an RFC 7230 token. A url which does not parse
// gives an error wrapping failure.ErrMalformedURL.
func NewPlanWithContext(ctx context.Context, method, url string, body interface{}) (*Plan, error) {
	if ctx == nil {
		return nil, errors.New(nilCtxMsg)
	}
	if method == "" {
		method = http.MethodGet
	}
	if !validMethod(method) {
		return nil, fmt.Errorf("davx/request: invalid method %q", method)
	}
	u, err := urlpkg.Parse(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", failure.ErrMalformedURL, err)
	}
	// RFC 3986 section 6.2.3: an empty port is the default port.
	u.Host = strings.TrimSuffix(u.Host, ":")
	b, err := BodyBytes(body)
	if err != nil {
		return nil, err
	}
	return &Plan{
		Method: method,
		URL:    u,
		Header: make(http.Header),
		Body:   b,
		ctx:    ctx,
	}, nil
}

// Context returns the context governing the whole call, across redirect
// hops and the fallback. It is never nil.
func (p *Plan) Context() context.Context {
	if p.ctx == nil {
		return context.Background()
	}
	return p.ctx
}

// WithContext returns a shallow copy of p using ctx, which must not be
// nil.
func (p *Plan) WithContext(ctx context.Context) *Plan {
	if ctx == nil {
		panic(nilCtxMsg)
	}
	p2 := *p
	p2.ctx = ctx
	return &p2
}

// Clone returns a copy of p whose URL and Header can be changed without
// touching p. Body and SuccessCodes are shared and must not be mutated.
func (p *Plan) Clone() *Plan {
	p2 := *p
	if p.URL != nil {
		u := *p.URL
		if p.URL.User != nil {
			user := *p.URL.User
			u.User = &user
		}
		p2.URL = &u
	}
	p2.Header = p.Header.Clone()
	if p2.Header == nil {
		p2.Header = make(http.Header)
	}
	return &p2
}

// Destination returns the WebDAV Destination header, matching the name
// case-insensitively, or "".
func (p *Plan) Destination() string {
	return redirect.Destination(p.Header)
}

// SetDestination replaces the Destination header, whatever the case of
// the existing name.
func (p *Plan) SetDestination(destination string) {
	for k := range p.Header {
		if strings.EqualFold(k, "Destination") {
			delete(p.Header, k)
		}
	}
	p.Header.Set("Destination", destination)
}

// Succeeded reports whether status counts as success for this plan.
func (p *Plan) Succeeded(status int) bool {
	if len(p.SuccessCodes) == 0 {
		return status >= 200 && status < 300
	}
	for _, s := range p.SuccessCodes {
		if s == status {
			return true
		}
	}
	return false
}

// SetBasicAuth sets the Authorization header for HTTP Basic
// authentication.
func (p *Plan) SetBasicAuth(username, password string) {
	if p.Header == nil {
		p.Header = make(http.Header)
	}
	r := http.Request{Header: p.Header}
	r.SetBasicAuth(username, password)
}

// ToRequest returns the HTTP request for one attempt of p, bound to
// ctx. The request shares p's URL and Header.
func (p *Plan) ToRequest(ctx context.Context) *http.Request {
	r := &http.Request{
		Method:     p.Method,
		URL:        p.URL,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     p.Header,
		Host:       p.URL.Host,
	}
	if n := len(p.Body); n > 0 {
		body := p.Body
		r.Body = io.NopCloser(bytes.NewReader(body))
		r.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
		r.ContentLength = int64(n)
	}
	return r.WithContext(ctx)
}

// validMethod reports whether method is an RFC 7230 token, which covers
// the WebDAV extension methods as well as the HTTP ones.
func validMethod(method string) bool {
	return strings.IndexFunc(method, func(r rune) bool {
		return !httpguts.IsTokenRune(r)
	}) == -1
}
