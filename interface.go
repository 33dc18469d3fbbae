// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package davx

import (
	"net/http"
	"net/url"

	"github.com/gogama/davx/request"
)

// Doer executes a request plan, following redirects and making the
// network-family fallback, and returns the final execution state.
//
// Client is the standard Doer. Execute and Decode accept any Doer, so
// callers may substitute a fake in tests or wrap a Client with extra
// behavior.
type Doer interface {
	Do(p *request.Plan) (*request.Execution, error)
}

// IdleCloser is implemented by a Doer or HTTPDoer that can close
// idle keep-alive connections without interrupting ones in use.
type IdleCloser interface {
	CloseIdleConnections()
}

// Send builds a plan for method and url and executes it with d. Each
// header value in header is added to the plan. The body may be of any
// type accepted by request.BodyBytes.
//
// If the plan cannot be built, Send returns a nil execution and the
// error without calling d.
func Send(d Doer, method, url string, header http.Header, body interface{}) (*request.Execution, error) {
	p, err := request.NewPlan(method, url, body)
	if err != nil {
		return nil, err
	}
	for name, values := range header {
		for _, v := range values {
			p.Header.Add(name, v)
		}
	}
	return d.Do(p)
}

// Get sends a GET to url with d.
func Get(d Doer, url string) (*request.Execution, error) {
	return Send(d, "GET", url, nil, nil)
}

// Head sends a HEAD to url with d.
func Head(d Doer, url string) (*request.Execution, error) {
	return Send(d, "HEAD", url, nil, nil)
}

// Post sends a POST to url with d.
func Post(d Doer, url, contentType string, body interface{}) (*request.Execution, error) {
	return Send(d, "POST", url, contentTypeHeader(contentType), body)
}

// PostForm sends a POST to url with d, with data form encoded as the
// body.
func PostForm(d Doer, url string, data url.Values) (*request.Execution, error) {
	return Post(d, url, request.FormContentType, data)
}

// Put sends a PUT to url with d, uploading body.
func Put(d Doer, url, contentType string, body interface{}) (*request.Execution, error) {
	return Send(d, "PUT", url, contentTypeHeader(contentType), body)
}

// Delete sends a DELETE to url with d.
func Delete(d Doer, url string) (*request.Execution, error) {
	return Send(d, "DELETE", url, nil, nil)
}

func contentTypeHeader(contentType string) http.Header {
	if contentType == "" {
		return nil
	}
	return http.Header{"Content-Type": {contentType}}
}
