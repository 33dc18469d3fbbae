// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package davx

import "strconv"

// An Event identifies the event type when installing or running a
// Handler. Install event handlers in a Client to extend it with custom
// functionality.
type Event int

const (
	// BeforeExecutionStart identifies the event that occurs before the
	// plan execution starts.
	//
	// When Client fires BeforeExecutionStart, the execution is
	// non-nil but the only fields that have been set are the plan and
	// its working copy, Current.
	BeforeExecutionStart Event = iota
	// BeforeAttempt identifies the event that occurs before each
	// physical HTTP request attempt: the initial attempt, each redirect
	// hop, and the fallback attempt.
	//
	// When Client fires BeforeAttempt, the execution's request field is
	// set to the HTTP request that WILL BE sent after all BeforeAttempt
	// handlers have finished. Handlers may modify the request, but
	// should clone its URL and Header first, as these reference the
	// same-named fields of the execution's Current plan.
	BeforeAttempt
	// BeforeReadBody identifies the event that occurs after an attempt
	// has resulted in an HTTP response but before the response body is
	// read and buffered.
	BeforeReadBody
	// AfterAttemptTimeout identifies the event that occurs after an
	// attempt failed because of a timeout error.
	//
	// When Client fires AfterAttemptTimeout, the execution's error field
	// is set to the timeout error, and its attempt timeout counter has
	// been incremented.
	AfterAttemptTimeout
	// AfterAttempt identifies the event that occurs after an attempt
	// is concluded, regardless of whether it concluded successfully or
	// not. It fires before the client decides whether to fall back or
	// follow a redirect.
	AfterAttempt
	// BeforeRedirect identifies the event that occurs when the client
	// has decided to follow a redirect.
	//
	// When Client fires BeforeRedirect, the execution still holds the
	// redirect response, its Current plan has been rewritten for the
	// redirect location, and the location has been added to its
	// Redirects path.
	BeforeRedirect
	// BeforeFallback identifies the event that occurs when the client
	// has switched the target host to IPv4 and is about to reissue the
	// attempt.
	//
	// When Client fires BeforeFallback, the execution still holds the
	// response or error that triggered the fallback, and its Fallback
	// field is true.
	BeforeFallback
	// AfterPlanTimeout identifies the event that occurs after the
	// deadline of the plan's context is exceeded.
	AfterPlanTimeout
	// AfterExecutionEnd identifies the event that occurs after the plan
	// execution ends.
	//
	// When Client fires AfterExecutionEnd, the execution is in the same
	// state it was in after the final attempt EXCEPT that the end time
	// is set.
	AfterExecutionEnd
	// numEvents is the number of event types.
	numEvents = iota
)

var eventNames = [numEvents]string{
	"BeforeExecutionStart",
	"BeforeAttempt",
	"BeforeReadBody",
	"AfterAttemptTimeout",
	"AfterAttempt",
	"BeforeRedirect",
	"BeforeFallback",
	"AfterPlanTimeout",
	"AfterExecutionEnd",
}

// Events returns every event type in the order a plan execution would
// first fire it.
func Events() []Event {
	evts := make([]Event, numEvents)
	for i := range evts {
		evts[i] = Event(i)
	}
	return evts
}

func (evt Event) valid() bool {
	return evt >= 0 && int(evt) < numEvents
}

// Name returns the name of the event, or "Event(n)" for an unknown one.
func (evt Event) Name() string {
	if !evt.valid() {
		return "Event(" + strconv.Itoa(int(evt)) + ")"
	}
	return eventNames[evt]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
