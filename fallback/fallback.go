// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fallback

import (
	"github.com/gogama/davx/failure"
	"github.com/gogama/davx/netpref"
	"github.com/gogama/davx/request"
)

// A Decider decides if the network-family fallback should be attempted.
//
// Implementations of Decider must be safe for concurrent use by
// multiple goroutines.
type Decider interface {
	Decide(e *request.Execution) bool
}

// The DeciderFunc type is an adapter to allow the use of ordinary
// functions as fallback deciders. It implements the Decider interface,
// and also provides the logical composition methods And and Or.
type DeciderFunc func(e *request.Execution) bool

// Decide returns true if the fallback should be attempted, and false
// otherwise, after examining the current execution state.
func (f DeciderFunc) Decide(e *request.Execution) bool {
	return f(e)
}

// And composes two deciders into a new decider which returns true if
// both sub-deciders return true. Short-circuit logic is used, so g is
// not evaluated if f returns false.
func (f DeciderFunc) And(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) && g(e)
	}
}

// Or composes two deciders into a new decider which returns true if
// either sub-decider returns true. Short-circuit logic is used, so g is
// not evaluated if f returns true.
func (f DeciderFunc) Or(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) || g(e)
	}
}

var (
	// Once returns true until the fallback attempt has been made.
	Once DeciderFunc = func(e *request.Execution) bool {
		return !e.Fallback
	}

	// ServerError returns true if the most recent attempt received a
	// response with a 5xx status.
	ServerError DeciderFunc = func(e *request.Execution) bool {
		s := e.StatusCode()
		return s >= 500 && s <= 599
	}

	// ConnectErr returns true if the most recent attempt failed to
	// connect or timed out.
	ConnectErr DeciderFunc = connectErr

	// Never disables the fallback.
	Never DeciderFunc = func(_ *request.Execution) bool {
		return false
	}

	// DefaultDecider allows one fallback attempt, triggered by a server
	// error or a connect failure.
	DefaultDecider = Once.And(ServerError.Or(ConnectErr))
)

func connectErr(e *request.Execution) bool {
	if e.Err == nil {
		return false
	}
	switch failure.Categorize(e.Err) {
	case failure.Timeout, failure.ConnRefused:
		return true
	case failure.Cancelled, failure.UnknownHost:
		return false
	default:
		return failure.DuringDial(e.Err)
	}
}

// A Trigger names the condition that caused a fallback.
type Trigger int

const (
	// NoTrigger means the execution state does not warrant a fallback.
	NoTrigger Trigger = iota
	// ServerErrorTrigger means the server answered with a 5xx status.
	ServerErrorTrigger
	// ConnectTrigger means the connection failed or timed out.
	ConnectTrigger
)

// String returns a short lower-case name suitable for log fields and
// metric labels.
func (t Trigger) String() string {
	switch t {
	case ServerErrorTrigger:
		return "server_error"
	case ConnectTrigger:
		return "connect"
	default:
		return "none"
	}
}

// TriggerOf returns the condition in e that would trigger a fallback
// under DefaultDecider, ignoring whether the fallback already happened.
func TriggerOf(e *request.Execution) Trigger {
	switch {
	case ServerError(e):
		return ServerErrorTrigger
	case ConnectErr(e):
		return ConnectTrigger
	default:
		return NoTrigger
	}
}

// Switch moves host from IPv6 to IPv4 in prefs. It returns true if the
// host was preferring IPv6, meaning a fallback attempt is worthwhile,
// and false if the host already preferred IPv4.
//
// Concurrent switches of the same host race; both may return true.
func Switch(prefs *netpref.Preferences, host string) bool {
	if !prefs.PreferIPv6(host) {
		return false
	}
	prefs.Set(host, netpref.IPv4)
	return true
}
