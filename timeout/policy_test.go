// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/gogama/davx/request"
	"github.com/stretchr/testify/assert"
)

func timedOut(n int) *request.Execution {
	return &request.Execution{
		AttemptTimeouts: n,
		Err:             &url.Error{Op: "Propfind", URL: "https://cloud.example.com/", Err: context.DeadlineExceeded},
	}
}

func TestDefaultPolicy(t *testing.T) {
	testCases := []struct {
		name string
		e    *request.Execution
		want time.Duration
	}{
		{"empty execution", &request.Execution{}, DefaultTimeout},
		{"plan without timeout", &request.Execution{Plan: &request.Plan{}}, DefaultTimeout},
		{"plan timeout", &request.Execution{Plan: &request.Plan{Timeout: 15 * time.Second}}, 15 * time.Second},
		{"after timeouts", timedOut(4), DefaultTimeout},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, DefaultPolicy.Timeout(testCase.e))
		})
	}
	assert.Equal(t, time.Minute, DefaultTimeout)
}

func TestFromPlan(t *testing.T) {
	other := Func(func(*request.Execution) time.Duration { return 42 * time.Millisecond })
	p := FromPlan(other)
	testCases := []struct {
		name    string
		plan    *request.Plan
		current *request.Plan
		want    time.Duration
	}{
		{"no plan", nil, nil, 42 * time.Millisecond},
		{"plan only", &request.Plan{Timeout: 2 * time.Second}, nil, 2 * time.Second},
		{"current wins", &request.Plan{Timeout: 2 * time.Second}, &request.Plan{Timeout: 9 * time.Second}, 9 * time.Second},
		{"current zero", &request.Plan{Timeout: 2 * time.Second}, &request.Plan{}, 42 * time.Millisecond},
		{"current negative", &request.Plan{Timeout: 2 * time.Second}, &request.Plan{Timeout: -time.Second}, 42 * time.Millisecond},
		{"plan negative", &request.Plan{Timeout: -time.Second}, nil, 42 * time.Millisecond},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			e := &request.Execution{Plan: testCase.plan, Current: testCase.current}
			assert.Equal(t, testCase.want, p.Timeout(e))
		})
	}
	t.Run("redirect hop keeps timeout", func(t *testing.T) {
		plan := &request.Plan{Method: "MOVE", Timeout: 8 * time.Second}
		e := &request.Execution{Plan: plan, Current: plan.Clone()}
		assert.Equal(t, 8*time.Second, p.Timeout(e))
	})
}

func TestFixedAndInfinite(t *testing.T) {
	for _, e := range []*request.Execution{{}, timedOut(1), {Attempt: 3, Fallback: true}} {
		assert.Equal(t, 250*time.Millisecond, Fixed(250*time.Millisecond).Timeout(e))
		assert.Equal(t, time.Duration(1<<63-1), Infinite.Timeout(e))
	}
}

func TestAdaptive(t *testing.T) {
	t.Run("nothing after", func(t *testing.T) {
		assert.Equal(t, 3*time.Second, Adaptive(3*time.Second).Timeout(timedOut(2)))
	})
	p := Adaptive(time.Second, 4*time.Second, 16*time.Second)
	testCases := []struct {
		name string
		e    *request.Execution
		want time.Duration
	}{
		{"first attempt", &request.Execution{}, time.Second},
		{"one timeout", timedOut(1), 4 * time.Second},
		{"two timeouts", timedOut(2), 16 * time.Second},
		{"past the end", timedOut(7), 16 * time.Second},
		{"last attempt not a timeout", &request.Execution{
			AttemptTimeouts: 2,
			Err:             &url.Error{Op: "Get", URL: "https://cloud.example.com/", Err: context.Canceled},
		}, time.Second},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, p.Timeout(testCase.e))
		})
	}
}

func TestForFallback(t *testing.T) {
	p := ForFallback(Fixed(2*time.Second), FromPlan(Fixed(20*time.Second)))
	e := &request.Execution{Plan: &request.Plan{}}
	assert.Equal(t, 2*time.Second, p.Timeout(e))
	e.Fallback = true
	assert.Equal(t, 20*time.Second, p.Timeout(e))
	e.Plan.Timeout = 5 * time.Second
	assert.Equal(t, 5*time.Second, p.Timeout(e))
}

func TestFunc(t *testing.T) {
	var seen *request.Execution
	f := Func(func(e *request.Execution) time.Duration {
		seen = e
		return time.Duration(e.Attempt) * time.Second
	})
	e := &request.Execution{Attempt: 5}
	assert.Equal(t, 5*time.Second, f.Timeout(e))
	assert.Same(t, e, seen)
}
