// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package result

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gogama/davx/exception"
	"github.com/gogama/davx/failure"
	"github.com/gogama/davx/redirect"
	"github.com/gogama/davx/request"
	"go.uber.org/zap"
)

var statusCodes = map[int]Code{
	http.StatusUnauthorized:        Unauthorized,
	http.StatusForbidden:           Forbidden,
	http.StatusNotFound:            FileNotFound,
	http.StatusConflict:            Conflict,
	http.StatusInternalServerError: InstanceNotConfigured,
	http.StatusServiceUnavailable:  MaintenanceMode,
	http.StatusInsufficientStorage: QuotaExceeded,
}

// kindCodes maps every failure kind to its code. Kinds missing from
// the table classify as UnknownError.
var kindCodes = [failure.NumKinds]Code{
	failure.None:                   UnknownError,
	failure.Cancelled:              Cancelled,
	failure.NoRoute:                NoNetworkConnection,
	failure.ConnRefused:            HostNotAvailable,
	failure.Socket:                 WrongConnection,
	failure.Timeout:                Timeout,
	failure.MalformedURL:           IncorrectAddress,
	failure.UnknownHost:            HostNotAvailable,
	failure.AccountNotFound:        AccountNotFound,
	failure.Account:                AccountException,
	failure.CertificateRecoverable: SSLRecoverablePeerUnverified,
	failure.Certificate:            SSLError,
	failure.TLS:                    SSLError,
	failure.Runtime:                HostNotAvailable,
	failure.LocalFileMissing:       LocalFileNotFound,
	failure.Other:                  UnknownError,
}

// CodeOfStatus returns the code for an HTTP status. If success is true
// the code is OK whatever the status.
func CodeOfStatus(success bool, status int) Code {
	if success {
		return OK
	}
	if c, ok := statusCodes[status]; ok {
		return c
	}
	return UnhandledHTTPCode
}

// CodeOfKind returns the code for a failure kind.
func CodeOfKind(k failure.Kind) Code {
	if k < 0 || int(k) >= failure.NumKinds {
		return UnknownError
	}
	return kindCodes[k]
}

// FromStatus classifies an outcome from the success flag and the HTTP
// status alone.
func FromStatus[T any](success bool, httpCode int, phrase string) *Result[T] {
	return &Result[T]{
		success:    success,
		code:       CodeOfStatus(success, httpCode),
		httpCode:   httpCode,
		httpPhrase: phrase,
	}
}

// FromHeader classifies an outcome like FromStatus, and also records
// the Location and WWW-Authenticate headers. A Location pointing at a
// single sign-on identity provider makes the outcome Unauthorized.
func FromHeader[T any](success bool, httpCode int, phrase string, h http.Header) *Result[T] {
	r := FromStatus[T](success, httpCode, phrase)
	r.authenticate = values(h, "WWW-Authenticate")
	r.redirectedTo(redirect.Location(h))
	return r
}

// FromBody classifies an outcome like FromHeader, and also inspects
// the body of an unsuccessful 4xx response for a server exception
// naming an invalid path or a virus. The exception message, if any,
// becomes the result message. Body parse failures are logged on log,
// which may be nil.
func FromBody[T any](success bool, httpCode int, phrase string, h http.Header, body []byte, log *zap.Logger) *Result[T] {
	r := FromHeader[T](success, httpCode, phrase, h)
	if success || httpCode < 400 || httpCode >= 500 || len(body) == 0 {
		return r
	}
	x := exception.Parse(body, log)
	switch {
	case x.IsInvalidCharacter():
		r.code = InvalidCharacterDetectInServer
	case x.IsVirus():
		r.code = VirusDetected
	}
	if x.Message != "" {
		r.message = x.Message
	}
	return r
}

// FromError classifies a failed request from its error.
func FromError[T any](err error) *Result[T] {
	r := &Result[T]{
		code: CodeOfKind(failure.Categorize(err)),
		err:  err,
	}
	if err != nil {
		r.message = err.Error()
	}
	return r
}

// FromCode returns a result with the given code. The result is
// successful if the code is one of the OK codes.
func FromCode[T any](code Code) *Result[T] {
	return &Result[T]{
		success: code.IsOK(),
		code:    code,
	}
}

// FromExecution classifies a finished execution.
//
// An execution that ended in error is classified by FromError.
// Otherwise the final response is classified by FromBody, with success
// decided by the plan's success codes. A redirect without a Location
// header is classified by FromHeader as a failed 404, ignoring its
// body. If the final response has no Location header, the last
// redirect followed is reported as the redirected location.
func FromExecution[T any](e *request.Execution, log *zap.Logger) *Result[T] {
	if e.Err != nil {
		return FromError[T](e.Err)
	}
	p := e.Current
	if p == nil {
		p = e.Plan
	}
	status := e.FinalStatus()
	var r *Result[T]
	if e.MissingLocation {
		// The body belongs to the redirect response, not to a 404.
		r = FromHeader[T](false, status, phrase(e), e.Header())
	} else {
		r = FromBody[T](p.Succeeded(status), status, phrase(e), e.Header(), e.Body, log)
	}
	if r.location == "" {
		r.redirectedTo(e.Redirects.LastLocation())
	}
	return r
}

func (r *Result[T]) redirectedTo(location string) {
	if location == "" {
		return
	}
	r.location = location
	if isIdP(location) {
		r.success = false
		r.code = Unauthorized
	}
}

func phrase(e *request.Execution) string {
	if e.MissingLocation || e.Response == nil {
		return http.StatusText(e.FinalStatus())
	}
	s := strings.TrimPrefix(e.Response.Status, strconv.Itoa(e.Response.StatusCode))
	s = strings.TrimSpace(s)
	if s == "" {
		return http.StatusText(e.Response.StatusCode)
	}
	return s
}

func values(h http.Header, name string) []string {
	var vs []string
	for k, v := range h {
		if strings.EqualFold(k, name) {
			vs = append(vs, v...)
		}
	}
	return vs
}
