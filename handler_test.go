// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package davx

import (
	"testing"

	"github.com/gogama/davx/request"
	"github.com/stretchr/testify/assert"
)

func TestHandlerGroup(t *testing.T) {
	t.Run("zero value", func(t *testing.T) {
		var g HandlerGroup
		for _, evt := range Events() {
			assert.Equal(t, 0, g.Len(evt))
		}
		assert.NotPanics(t, func() { g.run(BeforeAttempt, &request.Execution{}) })
	})
	t.Run("nil group", func(t *testing.T) {
		var g *HandlerGroup
		assert.Equal(t, 0, g.Len(AfterAttempt))
		assert.NotPanics(t, func() { g.run(AfterAttempt, &request.Execution{}) })
	})
	t.Run("invalid", func(t *testing.T) {
		var g HandlerGroup
		h := HandlerFunc(func(Event, *request.Execution) {})
		assert.PanicsWithValue(t, "davx: nil handler", func() { g.PushBack(BeforeRedirect, nil) })
		assert.PanicsWithValue(t, "davx: unknown event Event(99)", func() {
			g.Add(h, BeforeRedirect, Event(99))
		})
		assert.Equal(t, 0, g.Len(BeforeRedirect), "no chain changes on panic")
		assert.Equal(t, 0, g.Len(Event(-3)))
	})
	t.Run("order", func(t *testing.T) {
		var g HandlerGroup
		var got []string
		named := func(name string) Handler {
			return HandlerFunc(func(evt Event, _ *request.Execution) {
				got = append(got, name+"."+evt.Name())
			})
		}
		g.Add(named("metrics"), AfterAttempt, BeforeFallback)
		g.PushBack(BeforeFallback, named("log"))
		assert.Equal(t, 1, g.Len(AfterAttempt))
		assert.Equal(t, 2, g.Len(BeforeFallback))

		e := &request.Execution{}
		g.run(BeforeRedirect, e)
		g.run(BeforeFallback, e)
		g.run(AfterAttempt, e)

		assert.Equal(t, []string{
			"metrics.BeforeFallback",
			"log.BeforeFallback",
			"metrics.AfterAttempt",
		}, got)
	})
	t.Run("execution passed through", func(t *testing.T) {
		var g HandlerGroup
		var seen *request.Execution
		g.PushBack(AfterExecutionEnd, HandlerFunc(func(_ Event, e *request.Execution) {
			seen = e
		}))
		e := &request.Execution{Attempt: 2, Fallback: true}
		g.run(AfterExecutionEnd, e)
		assert.Same(t, e, seen)
	})
}
