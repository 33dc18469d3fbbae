// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"time"

	"github.com/gogama/davx/request"
)

// A Policy chooses the timeout of the next physical attempt of a plan
// execution. It is consulted before the initial attempt, before each
// redirect hop and before the fallback attempt.
//
// Implementations must be safe for concurrent use.
type Policy interface {
	Timeout(e *request.Execution) time.Duration
}

// Func adapts an ordinary function to the Policy interface.
type Func func(e *request.Execution) time.Duration

// Timeout returns f(e).
func (f Func) Timeout(e *request.Execution) time.Duration {
	return f(e)
}

// DefaultTimeout is the attempt timeout used when neither the plan nor
// the client sets one.
const DefaultTimeout = 60 * time.Second

// DefaultPolicy uses the plan's Timeout when set, and DefaultTimeout
// otherwise.
var DefaultPolicy = FromPlan(Fixed(DefaultTimeout))

// Infinite never times out.
var Infinite Policy = Fixed(1<<63 - 1)

type fixed time.Duration

func (d fixed) Timeout(*request.Execution) time.Duration {
	return time.Duration(d)
}

// Fixed returns a policy which always returns d.
func Fixed(d time.Duration) Policy {
	return fixed(d)
}

type adaptive struct {
	usual time.Duration
	after []time.Duration
}

// Adaptive returns a policy which lengthens the timeout after attempts
// time out.
//
// While the last attempt did not time out, usual is returned. After the
// n-th timeout in the execution, after[n-1] is returned, or the last
// element of after once n exceeds its length.
//
//	// 10s normally; 30s for the reissue after a timed out attempt.
//	p := Adaptive(10*time.Second, 30*time.Second)
func Adaptive(usual time.Duration, after ...time.Duration) Policy {
	return adaptive{usual, after}
}

func (p adaptive) Timeout(e *request.Execution) time.Duration {
	if len(p.after) == 0 || e.AttemptTimeouts == 0 || !e.Timeout() {
		return p.usual
	}
	i := e.AttemptTimeouts - 1
	if i >= len(p.after) {
		i = len(p.after) - 1
	}
	return p.after[i]
}

// ForFallback returns a policy which defers to fallback once the
// execution has made its IPv4 fallback, and to normal before.
func ForFallback(normal, fallback Policy) Policy {
	return Func(func(e *request.Execution) time.Duration {
		if e.Fallback {
			return fallback.Timeout(e)
		}
		return normal.Timeout(e)
	})
}

// FromPlan returns a policy which uses the Timeout of the plan being
// executed when positive, and defers to other otherwise.
func FromPlan(other Policy) Policy {
	return Func(func(e *request.Execution) time.Duration {
		plan := e.Current
		if plan == nil {
			plan = e.Plan
		}
		if plan != nil && plan.Timeout > 0 {
			return plan.Timeout
		}
		return other.Timeout(e)
	})
}
