// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package ocs

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gogama/davx"
	"github.com/gogama/davx/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capabilities struct {
	Version struct {
		Major  int    `json:"major"`
		String string `json:"string"`
	} `json:"version"`
}

func TestNewPlan(t *testing.T) {
	t.Run("get", func(t *testing.T) {
		p, err := Get("https://cloud.example.com/", V1, "/cloud/capabilities", url.Values{"x": {"y"}})
		require.NoError(t, err)
		assert.Equal(t, "GET", p.Method)
		assert.Equal(t, "https://cloud.example.com/ocs/v1.php/cloud/capabilities?format=json&x=y", p.URL.String())
		assert.Equal(t, "true", p.Header.Get(APIRequestHeader))
		assert.Equal(t, "application/json", p.Header.Get("Accept"))
		assert.True(t, p.Succeeded(200))
		assert.False(t, p.Succeeded(201))
	})
	t.Run("form body", func(t *testing.T) {
		q := url.Values{"format": {"xml"}}
		p, err := NewPlan("POST", "https://h", V2, "apps/files_sharing/api/v1/shares", q,
			url.Values{"path": {"/a b"}, "shareType": {"3"}})
		require.NoError(t, err)
		assert.Equal(t, "https://h/ocs/v2.php/apps/files_sharing/api/v1/shares?format=json", p.URL.String())
		assert.Equal(t, "path=%2Fa+b&shareType=3", string(p.Body))
		assert.Equal(t, "application/x-www-form-urlencoded", p.Header.Get("Content-Type"))
		assert.Equal(t, url.Values{"format": {"xml"}}, q)
	})
	t.Run("invalid version", func(t *testing.T) {
		p, err := Get("https://h", Version(3), "cloud/user", nil)
		assert.Nil(t, p)
		assert.EqualError(t, err, "davx/ocs: invalid version 3")
	})
}

func TestUnmarshal(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		c, err := Unmarshal[capabilities]([]byte(`{"ocs":{"meta":{"status":"ok","statuscode":100,"message":"OK"},` +
			`"data":{"version":{"major":28,"string":"28.0.1"}}}}`))
		require.NoError(t, err)
		assert.Equal(t, 28, c.Version.Major)
		assert.Equal(t, "28.0.1", c.Version.String)
	})
	t.Run("failure", func(t *testing.T) {
		_, err := Unmarshal[capabilities]([]byte(`{"ocs":{"meta":{"status":"failure","statuscode":998,"message":"Not found"},"data":[]}}`))
		var ocsErr *Error
		require.ErrorAs(t, err, &ocsErr)
		assert.Equal(t, 998, ocsErr.Meta.StatusCode)
		assert.Equal(t, result.FileNotFound, ocsErr.Code())
		assert.EqualError(t, err, `ocs: status "failure" (998): Not found`)
	})
	t.Run("not an envelope", func(t *testing.T) {
		_, err := Unmarshal[capabilities]([]byte(`{"version":1}`))
		assert.ErrorIs(t, err, ErrNoEnvelope)
	})
	t.Run("not JSON", func(t *testing.T) {
		_, err := Unmarshal[capabilities]([]byte(`<html>`))
		assert.Error(t, err)
	})
}

func TestError_Code(t *testing.T) {
	testCases := []struct {
		status int
		code   result.Code
	}{
		{997, result.Unauthorized},
		{401, result.Unauthorized},
		{403, result.Forbidden},
		{998, result.FileNotFound},
		{404, result.FileNotFound},
		{409, result.Conflict},
		{507, result.QuotaExceeded},
		{996, result.UnhandledHTTPCode},
	}
	for _, testCase := range testCases {
		err := &Error{Meta: Meta{Status: "failure", StatusCode: testCase.status}}
		assert.Equal(t, testCase.code, err.Code(), "status %d", testCase.status)
	}
}

func TestExecute(t *testing.T) {
	testCases := []struct {
		name     string
		status   int
		body     string
		success  bool
		code     result.Code
		httpCode int
	}{
		{
			name:     "ok",
			status:   200,
			body:     `{"ocs":{"meta":{"status":"ok","statuscode":200,"message":"OK"},"data":{"version":{"major":29,"string":"29.0.0"}}}}`,
			success:  true,
			code:     result.OK,
			httpCode: 200,
		},
		{
			name:     "envelope failure",
			status:   200,
			body:     `{"ocs":{"meta":{"status":"failure","statuscode":997,"message":"Unauthorised"},"data":[]}}`,
			code:     result.Unauthorized,
			httpCode: 200,
		},
		{
			name:     "HTTP failure",
			status:   404,
			body:     `{"ocs":{"meta":{"status":"failure","statuscode":404,"message":""},"data":[]}}`,
			code:     result.FileNotFound,
			httpCode: 404,
		},
		{
			name:     "maintenance",
			status:   503,
			body:     `<html>maintenance</html>`,
			code:     result.MaintenanceMode,
			httpCode: 503,
		},
		{
			name:     "not JSON",
			status:   200,
			body:     `<html>login</html>`,
			code:     result.UnknownError,
			httpCode: 200,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get(APIRequestHeader) != "true" || r.URL.Query().Get("format") != "json" {
					w.WriteHeader(http.StatusPreconditionFailed)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(testCase.status)
				_, _ = io.WriteString(w, testCase.body)
			}))
			defer server.Close()
			p, err := Get(server.URL, V2, "cloud/capabilities", nil)
			require.NoError(t, err)

			r := Execute[capabilities](&davx.Client{}, p)

			assert.Equal(t, testCase.success, r.Success(), r.String())
			assert.Equal(t, testCase.code, r.Code())
			assert.Equal(t, testCase.httpCode, r.HTTPCode())
			if testCase.success {
				assert.Equal(t, 29, r.Payload().Version.Major)
			}
		})
	}
}
