// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package davx

import (
	"github.com/gogama/davx/request"
)

// A HandlerGroup holds one handler chain per event. The zero value is
// an empty group ready to use, and a nil *HandlerGroup runs nothing.
//
// Handlers run synchronously on the goroutine executing the plan, in
// the order they were added. A HandlerGroup must not be modified while
// a Client is using it.
type HandlerGroup struct {
	chains [numEvents][]Handler
}

// PushBack appends h to the chain for evt.
func (g *HandlerGroup) PushBack(evt Event, h Handler) {
	g.Add(h, evt)
}

// Add appends h to the chain of each listed event. It panics if h is
// nil or an event is unknown, before changing any chain.
func (g *HandlerGroup) Add(h Handler, evts ...Event) {
	if h == nil {
		panic("davx: nil handler")
	}
	for _, evt := range evts {
		if !evt.valid() {
			panic("davx: unknown event " + evt.Name())
		}
	}
	for _, evt := range evts {
		g.chains[evt] = append(g.chains[evt], h)
	}
}

// Len returns the number of handlers in the chain for evt.
func (g *HandlerGroup) Len(evt Event) int {
	if g == nil || !evt.valid() {
		return 0
	}
	return len(g.chains[evt])
}

func (g *HandlerGroup) run(evt Event, e *request.Execution) {
	if g == nil {
		return
	}
	for _, h := range g.chains[evt] {
		h.Handle(evt, e)
	}
}

// A Handler observes an event during plan execution. Handlers may read
// the execution and may set its Err field to abort it, but must not
// close the response body.
type Handler interface {
	Handle(Event, *request.Execution)
}

// HandlerFunc adapts an ordinary function to the Handler interface.
type HandlerFunc func(Event, *request.Execution)

// Handle calls f(evt, e).
func (f HandlerFunc) Handle(evt Event, e *request.Execution) {
	f(evt, e)
}
