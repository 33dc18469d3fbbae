// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package ocs builds request plans for the server's OCS JSON API and
// decodes its response envelope:
//
//	{"ocs": {"meta": {"status": "ok", "statuscode": 200, "message": "OK"},
//	         "data": {...}}}
//
// An envelope whose meta status is not "ok" is a failure even when the
// HTTP status is 200.
package ocs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gogama/davx"
	"github.com/gogama/davx/request"
	"github.com/gogama/davx/result"
)

// A Version is an OCS API version.
type Version int

const (
	// V1 reports success in the envelope with status code 100 and
	// always answers HTTP 200.
	V1 Version = 1
	// V2 reports success in the envelope with status code 200 and
	// mirrors failures in the HTTP status.
	V2 Version = 2
)

// APIRequestHeader must be present, set to "true", on every OCS
// request. The server rejects OCS requests without it as a CSRF
// precaution.
const APIRequestHeader = "OCS-APIRequest"

// Meta is the meta block of an OCS envelope.
type Meta struct {
	Status       string `json:"status"`
	StatusCode   int    `json:"statuscode"`
	Message      string `json:"message"`
	TotalItems   string `json:"totalitems,omitempty"`
	ItemsPerPage string `json:"itemsperpage,omitempty"`
}

// OK reports whether the meta block reports success.
func (m Meta) OK() bool {
	return strings.EqualFold(m.Status, "ok")
}

// envelope is the outer document of every OCS JSON response. The data
// is decoded only once the meta block reports success, since failures
// carry an empty array in place of the data object.
type envelope struct {
	OCS struct {
		Meta Meta            `json:"meta"`
		Data json.RawMessage `json:"data"`
	} `json:"ocs"`
}

// ErrNoEnvelope indicates a response body that is not an OCS envelope.
var ErrNoEnvelope = errors.New("davx/ocs: response is not an OCS envelope")

// An Error is an OCS envelope reporting failure.
type Error struct {
	Meta Meta
}

func (err *Error) Error() string {
	if err.Meta.Message == "" {
		return fmt.Sprintf("ocs: status %q (%d)", err.Meta.Status, err.Meta.StatusCode)
	}
	return fmt.Sprintf("ocs: status %q (%d): %s", err.Meta.Status, err.Meta.StatusCode, err.Meta.Message)
}

// Code returns the result code of the failure.
func (err *Error) Code() result.Code {
	switch err.Meta.StatusCode {
	case 997, http.StatusUnauthorized:
		return result.Unauthorized
	case http.StatusForbidden:
		return result.Forbidden
	case 998, http.StatusNotFound:
		return result.FileNotFound
	case http.StatusConflict:
		return result.Conflict
	case http.StatusInsufficientStorage:
		return result.QuotaExceeded
	default:
		return result.UnhandledHTTPCode
	}
}

// NewPlan returns a plan for the OCS endpoint at path below the server
// base URL, for example "cloud/capabilities" or
// "apps/files_sharing/api/v1/shares". The response is requested in
// JSON. Parameter body may be of any type accepted by request.NewPlan;
// a url.Values body is form encoded.
//
// The plan succeeds on 200. A V2 failure status is classified from the
// HTTP status like any other response.
func NewPlan(method, base string, v Version, path string, query url.Values, body interface{}) (*request.Plan, error) {
	if v != V1 && v != V2 {
		return nil, fmt.Errorf("davx/ocs: invalid version %d", v)
	}
	q := url.Values{}
	for k, vs := range query {
		q[k] = append([]string(nil), vs...)
	}
	q.Set("format", "json")
	u := fmt.Sprintf("%s/ocs/v%d.php/%s?%s",
		strings.TrimSuffix(base, "/"), v, strings.TrimPrefix(path, "/"), q.Encode())

	p, err := request.NewPlan(method, u, body)
	if err != nil {
		return nil, err
	}
	p.Header.Set(APIRequestHeader, "true")
	p.Header.Set("Accept", "application/json")
	if _, ok := body.(url.Values); ok {
		p.Header.Set("Content-Type", request.FormContentType)
	}
	p.SuccessCodes = []int{http.StatusOK}
	return p, nil
}

// Get returns a GET plan for the OCS endpoint at path.
func Get(base string, v Version, path string, query url.Values) (*request.Plan, error) {
	return NewPlan("GET", base, v, path, query, nil)
}

// Unmarshal decodes an OCS envelope and returns its data. If the
// envelope reports failure the returned error is an *Error.
func Unmarshal[T any](b []byte) (T, error) {
	var env envelope
	var data T
	if err := sonic.Unmarshal(b, &env); err != nil {
		return data, err
	}
	meta := env.OCS.Meta
	if meta.Status == "" && meta.StatusCode == 0 {
		return data, ErrNoEnvelope
	}
	if !meta.OK() {
		return data, &Error{Meta: meta}
	}
	if len(env.OCS.Data) == 0 || string(env.OCS.Data) == "null" {
		return data, nil
	}
	err := sonic.Unmarshal(env.OCS.Data, &data)
	return data, err
}

// Execute executes p using d and decodes the OCS envelope of a
// successful response into the result payload. An envelope reporting
// failure yields an unsuccessful result whose code is derived from the
// envelope status code and whose error is an *Error.
func Execute[T any](d davx.Doer, p *request.Plan) *result.Result[T] {
	r := davx.Decode(d, p, Unmarshal[T])
	var ocsErr *Error
	if errors.As(r.Err(), &ocsErr) {
		return r.Failed(ocsErr.Code(), r.Err())
	}
	return r
}
