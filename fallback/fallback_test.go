// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fallback

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"syscall"
	"testing"

	"github.com/gogama/davx/netpref"
	"github.com/gogama/davx/request"
	"github.com/stretchr/testify/assert"
)

func TestDefaultDecider(t *testing.T) {
	t.Run("server errors", func(t *testing.T) {
		for _, code := range []int{500, 502, 503, 504, 507, 599} {
			e := request.Execution{
				Response: &http.Response{StatusCode: code},
			}
			t.Run(fmt.Sprintf("code=%d", code), func(t *testing.T) {
				assert.True(t, DefaultDecider(&e))
				e.Fallback = true
				assert.False(t, DefaultDecider(&e))
			})
		}
	})
	t.Run("other statuses", func(t *testing.T) {
		for _, code := range []int{200, 207, 301, 401, 404, 409, 499} {
			e := request.Execution{
				Response: &http.Response{StatusCode: code},
			}
			assert.False(t, DefaultDecider(&e), "code=%d", code)
		}
	})
	t.Run("connect errors", func(t *testing.T) {
		for i, ce := range connectErrs {
			e := request.Execution{Err: ce}
			t.Run(fmt.Sprintf("connectErrs[%d]=%v", i, ce), func(t *testing.T) {
				assert.True(t, DefaultDecider(&e))
				e.Fallback = true
				assert.False(t, DefaultDecider(&e))
			})
		}
	})
	t.Run("other errors", func(t *testing.T) {
		for i, oe := range otherErrs {
			e := request.Execution{Err: oe}
			t.Run(fmt.Sprintf("otherErrs[%d]=%v", i, oe), func(t *testing.T) {
				assert.False(t, DefaultDecider(&e))
			})
		}
	})
}

func TestNever(t *testing.T) {
	e := request.Execution{Response: &http.Response{StatusCode: 503}}
	assert.False(t, Never(&e))
	var d Decider = Never
	assert.False(t, d.Decide(&e))
}

func TestDeciderAnd(t *testing.T) {
	true_ := DeciderFunc(func(_ *request.Execution) bool { return true })
	false_ := DeciderFunc(func(_ *request.Execution) bool { return false })
	assert.True(t, true_.And(true_)(&request.Execution{}))
	assert.False(t, true_.And(false_)(&request.Execution{}))
	assert.False(t, false_.And(true_)(&request.Execution{}))
	assert.False(t, false_.And(false_)(&request.Execution{}))
}

func TestDeciderOr(t *testing.T) {
	true_ := DeciderFunc(func(_ *request.Execution) bool { return true })
	false_ := DeciderFunc(func(_ *request.Execution) bool { return false })
	assert.True(t, true_.Or(true_)(&request.Execution{}))
	assert.True(t, true_.Or(false_)(&request.Execution{}))
	assert.True(t, false_.Or(true_)(&request.Execution{}))
	assert.False(t, false_.Or(false_)(&request.Execution{}))
}

func TestTriggerOf(t *testing.T) {
	assert.Equal(t, NoTrigger, TriggerOf(&request.Execution{}))
	assert.Equal(t, ServerErrorTrigger, TriggerOf(&request.Execution{
		Response: &http.Response{StatusCode: 500},
	}))
	assert.Equal(t, ConnectTrigger, TriggerOf(&request.Execution{
		Err: connectErrs[0],
		// Fallback state is ignored.
		Fallback: true,
	}))
	assert.Equal(t, "none", NoTrigger.String())
	assert.Equal(t, "server_error", ServerErrorTrigger.String())
	assert.Equal(t, "connect", ConnectTrigger.String())
}

func TestSwitch(t *testing.T) {
	prefs := netpref.New()
	assert.True(t, Switch(prefs, "cloud.example.com"))
	assert.Equal(t, netpref.IPv4, prefs.Get("cloud.example.com"))
	assert.False(t, Switch(prefs, "cloud.example.com"))
	assert.False(t, Switch(prefs, "CLOUD.example.com:443"))
	assert.True(t, Switch(prefs, "other.example.com"))
}

var (
	connectErrs = []error{
		&url.Error{Op: "Get", URL: "https://h", Err: syscall.ECONNREFUSED},
		&url.Error{Op: "Get", URL: "https://h", Err: syscall.ETIMEDOUT},
		&url.Error{Op: "Propfind", URL: "https://h", Err: context.DeadlineExceeded},
		&url.Error{Op: "Get", URL: "https://h", Err: &net.OpError{
			Op:  "dial",
			Net: "tcp",
			Err: &os.SyscallError{Syscall: "connect", Err: syscall.ENETUNREACH},
		}},
	}
	otherErrs = []error{
		nil,
		errors.New("not a connect error"),
		&url.Error{Op: "Get", URL: "https://h", Err: context.Canceled},
		&url.Error{Op: "Get", URL: "https://h", Err: &net.DNSError{Err: "no such host", Name: "h"}},
		&url.Error{Op: "Get", URL: "https://h", Err: &net.OpError{
			Op:  "read",
			Net: "tcp",
			Err: &os.SyscallError{Syscall: "read", Err: syscall.ECONNRESET},
		}},
	}
)
