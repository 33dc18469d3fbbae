// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"net/http"
	"time"

	"github.com/gogama/davx/failure"
	"github.com/gogama/davx/redirect"
)

// An Execution is the evolving state of one logical call: a Plan plus
// every physical attempt made for it, across redirect hops and the
// network-family fallback. The client creates it, updates it as the
// call progresses, and returns it once the call ends.
//
// Event handlers, timeout policies and fallback deciders receive the
// Execution while it is in flight. They may attach their own data with
// SetValue and may adjust the outgoing http.Request in a BeforeAttempt
// handler (for example to sign it), but the remaining exported fields
// drive the client's own logic and should be treated as read-only.
type Execution struct {
	// Plan is the plan being executed, exactly as the caller passed it.
	// Never nil.
	Plan *Plan

	// Current is the plan the next or most recent attempt is made from.
	// It starts as a clone of Plan. Following a redirect replaces its
	// URL with the redirect location and rewrites its Destination
	// header to match.
	Current *Plan

	// Start is set when execution starts and End when it ends.
	Start time.Time
	End   time.Time

	// Attempt is the zero-based index of the current, or last, physical
	// attempt. Each redirect hop and the fallback attempt add one.
	Attempt int

	// AttemptTimeouts counts attempts which timed out. A plan timeout
	// is not counted unless it coincides with an attempt timeout.
	AttemptTimeouts int

	// Request is the HTTP request of the current, or last, attempt.
	Request *http.Request

	// Response is the response to the last attempt, or nil if the last
	// attempt failed or an attempt is underway.
	Response *http.Response

	// Err is the error from the last attempt, always a *url.Error when
	// non-nil. Once the execution ends it equals the error returned to
	// the caller.
	Err error

	// Body is the buffered response body of the last attempt. It may be
	// partial if reading failed, in which case Err is set too.
	Body []byte

	// Redirects is the trail of statuses received and locations
	// followed.
	Redirects redirect.Path

	// MissingLocation reports that the last response had a redirect
	// status without a Location header. Such a response ends the
	// execution and classifies as not found.
	MissingLocation bool

	// Fallback is set once the IPv4 fallback attempt has been made. It
	// never reverts, so the fallback happens at most once.
	Fallback bool

	values map[interface{}]interface{}
}

// StatusCode returns the status code of Response, or 0 if there is no
// response.
func (e *Execution) StatusCode() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.StatusCode
}

// FinalStatus returns the status code the execution outcome is
// classified by: StatusCode, except that a redirect response without a
// Location header counts as 404 Not Found.
func (e *Execution) FinalStatus() int {
	if e.MissingLocation {
		return http.StatusNotFound
	}
	return e.StatusCode()
}

// Header returns the headers of Response, or a nil header if there is
// no response. The nil header is safe to read.
func (e *Execution) Header() http.Header {
	if e.Response == nil {
		return nil
	}
	return e.Response.Header
}

// Host returns the host name the current attempt targets, without any
// port. This is the key used for network-family preferences.
func (e *Execution) Host() string {
	if e.Current == nil || e.Current.URL == nil {
		return ""
	}
	return e.Current.URL.Hostname()
}

// Duration returns how long the execution has run: zero before it
// starts, time elapsed since Start while in flight, and End minus Start
// once it ends.
func (e *Execution) Duration() time.Duration {
	switch {
	case !e.Started():
		return 0
	case !e.Ended():
		return time.Since(e.Start)
	default:
		return e.End.Sub(e.Start)
	}
}

// Started reports whether Start is set.
func (e *Execution) Started() bool {
	return !e.Start.IsZero()
}

// Ended reports whether End is set. An ended execution no longer
// changes.
func (e *Execution) Ended() bool {
	return !e.End.IsZero()
}

// Timeout reports whether Err is currently a timeout, from either an
// attempt timeout or the plan's own deadline.
func (e *Execution) Timeout() bool {
	return e.Kind() == failure.Timeout
}

// Kind returns the failure kind of Err, or failure.None if Err is nil.
func (e *Execution) Kind() failure.Kind {
	return failure.Categorize(e.Err)
}

// SetValue stores a value on the execution under key, replacing any
// previous value. The key must be comparable and non-nil, and should be
// an unexported type owned by the caller so that handlers from
// different packages cannot collide.
func (e *Execution) SetValue(key, value interface{}) {
	if key == nil {
		panic("davx/request: nil key")
	}
	if e.values == nil {
		e.values = make(map[interface{}]interface{})
	}
	e.values[key] = value
}

// Value returns the value stored under key, or nil.
func (e *Execution) Value(key interface{}) interface{} {
	return e.values[key]
}
