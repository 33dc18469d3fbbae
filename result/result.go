// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package result

import (
	"crypto/x509"
	"fmt"
	"strings"

	"github.com/gogama/davx/failure"
)

const (
	payloadOfFailureMsg = "davx/result: payload of unsuccessful result"
	payloadTwiceMsg     = "davx/result: payload already set"
)

// A Result is the classified outcome of one logical request, with an
// optional payload of type T.
//
// Results are immutable apart from the payload, which may be set once
// with SetPayload. A Result must not be copied after the payload is
// set.
type Result[T any] struct {
	success      bool
	code         Code
	httpCode     int
	httpPhrase   string
	err          error
	location     string
	authenticate []string
	message      string

	payload    T
	hasPayload bool
}

// Success reports whether the request succeeded. If it did, Code is
// one of the OK codes.
func (r *Result[T]) Success() bool {
	return r.success
}

// Code returns the result code. It is always set, even when Err is
// non-nil.
func (r *Result[T]) Code() Code {
	return r.code
}

// HTTPCode returns the HTTP status of the final response, or zero if
// no response was received.
func (r *Result[T]) HTTPCode() int {
	return r.httpCode
}

// HTTPPhrase returns the reason phrase of the final response.
func (r *Result[T]) HTTPPhrase() string {
	return r.httpPhrase
}

// Err returns the error the request failed with, if any.
func (r *Result[T]) Err() error {
	return r.err
}

// RedirectedLocation returns the location the server redirected to,
// if any.
func (r *Result[T]) RedirectedLocation() string {
	return r.location
}

// AuthenticateHeaders returns the values of all WWW-Authenticate
// headers of the final response.
func (r *Result[T]) AuthenticateHeaders() []string {
	return append([]string(nil), r.authenticate...)
}

// Message returns a free text description of the outcome: the message
// of a server exception, or the error text.
func (r *Result[T]) Message() string {
	return r.message
}

// HasPayload reports whether a payload has been set.
func (r *Result[T]) HasPayload() bool {
	return r.hasPayload
}

// Payload returns the payload. It panics if the request did not
// succeed.
func (r *Result[T]) Payload() T {
	if !r.success {
		panic(payloadOfFailureMsg)
	}
	return r.payload
}

// SetPayload sets the payload. It panics if the request did not
// succeed or if the payload was already set.
func (r *Result[T]) SetPayload(payload T) {
	if !r.success {
		panic(payloadOfFailureMsg)
	}
	if r.hasPayload {
		panic(payloadTwiceMsg)
	}
	r.payload = payload
	r.hasPayload = true
}

// IsIdPRedirection reports whether the server redirected to a single
// sign-on identity provider instead of serving the request.
func (r *Result[T]) IsIdPRedirection() bool {
	return r.code == Unauthorized && isIdP(r.location)
}

// IsSSLRecoverable reports whether the request failed on a server
// certificate the user may choose to trust.
func (r *Result[T]) IsSSLRecoverable() bool {
	return r.code == SSLRecoverablePeerUnverified
}

// Certificates returns the server certificate chain of a certificate
// validation failure, or nil.
func (r *Result[T]) Certificates() []*x509.Certificate {
	return failure.Certificates(r.err)
}

// String returns a one-line description of the result suitable for
// logging.
func (r *Result[T]) String() string {
	var b strings.Builder
	b.WriteString(r.code.String())
	if r.httpCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d", r.httpCode)
		if r.httpPhrase != "" {
			b.WriteByte(' ')
			b.WriteString(r.httpPhrase)
		}
		b.WriteByte(')')
	}
	if r.location != "" {
		fmt.Fprintf(&b, " location=%q", r.location)
	}
	if r.err != nil {
		fmt.Fprintf(&b, ": %v", r.err)
	} else if r.message != "" {
		fmt.Fprintf(&b, ": %s", r.message)
	}
	return b.String()
}

// Convert returns a Result with the same classification as r and no
// payload.
func Convert[U, T any](r *Result[T]) *Result[U] {
	return &Result[U]{
		success:      r.success,
		code:         r.code,
		httpCode:     r.httpCode,
		httpPhrase:   r.httpPhrase,
		err:          r.err,
		location:     r.location,
		authenticate: r.authenticate,
		message:      r.message,
	}
}

// Failed returns a copy of r, without payload, which is unsuccessful
// with the given code and error. The HTTP status and headers of r are
// kept. Callers use it when a response the server reported as a
// success carries an application level failure.
func (r *Result[T]) Failed(code Code, err error) *Result[T] {
	f := Convert[T](r)
	f.success = false
	f.code = code
	f.err = err
	if err != nil {
		f.message = err.Error()
	}
	return f
}

func isIdP(location string) bool {
	l := strings.ToLower(location)
	return strings.Contains(l, "saml") || strings.Contains(l, "wayf")
}
