// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package davx

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gogama/davx/failure"
	"github.com/gogama/davx/fallback"
	"github.com/gogama/davx/netpref"
	"github.com/gogama/davx/redirect"
	"github.com/gogama/davx/request"
	"github.com/gogama/davx/timeout"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader is the header carrying the identifier the client
// assigns to every logical request.
const RequestIDHeader = "X-Request-ID"

// An HTTPDoer implements a Do method in the same manner as the GoLang
// standard library http.Client from the net/http package.
//
// The HTTPDoer must not follow redirects itself, since the robust
// client follows them with WebDAV-aware rewriting. NewHTTPDoer returns
// a suitable implementation.
type HTTPDoer interface {
	// Do sends an HTTP request and returns an HTTP response.
	//
	// The Do method must follow the contract documented on the GoLang
	// standard library http.Client from the net/http package.
	Do(r *http.Request) (*http.Response, error)
}

// A Client is a robust WebDAV and OCS client. Its zero value is a valid
// configuration.
//
// The zero value client uses a Transport built by NewHTTPDoer on first
// use, dialing with the client's own Preferences, as the HTTPDoer,
// timeout.DefaultPolicy as the timeout policy, fallback.DefaultDecider
// as the fallback decider, its own empty netpref.Preferences, no event
// handlers, and no logging.
//
// Client's HTTPDoer typically has an internal state (cached TCP
// connections) so Client instances should be reused instead of created
// as needed. Client is safe for concurrent use by multiple goroutines,
// but must not be copied after first use.
//
// On top of the HTTP request features provided by the HTTPDoer, Client
// adds the following features:
//
// • Client reads and buffers the entire HTTP response body into a
// []byte (returned as the Execution.Body field), which also drains the
// connection before a redirect hop reuses it;
//
// • Client follows 301, 302, and 307 redirects, at most
// redirect.MaxRedirections times, rewriting the WebDAV Destination
// header of MOVE and COPY requests for the new location;
//
// • Client reissues a request once over IPv4 when the first attempt
// fails in a way that suggests broken IPv6 connectivity;
//
// • Client sets individual attempt timeouts using a customizable
// timeout policy;
//
// • Client recovers from panics raised during the execution and
// reports them as an error; and
//
// • Client invokes user-provided handler functions at designated
// plug-in points, allowing new features to be mixed in from outside
// libraries.
type Client struct {
	// HTTPDoer specifies the mechanics of sending HTTP requests and
	// receiving responses.
	//
	// If HTTPDoer is nil, the client builds a Transport with
	// NewHTTPDoer that dials with the client's Preferences.
	HTTPDoer HTTPDoer
	// TimeoutPolicy specifies how to set timeouts on individual
	// attempts.
	//
	// If TimeoutPolicy is nil, timeout.DefaultPolicy is used.
	TimeoutPolicy timeout.Policy
	// FallbackDecider decides when to reissue a failed attempt over
	// IPv4. The fallback happens at most once per execution whatever
	// the decider says.
	//
	// If FallbackDecider is nil, fallback.DefaultDecider is used.
	FallbackDecider fallback.Decider
	// Preferences records the preferred address family per host. The
	// client attaches it to the context of every attempt, where a
	// Transport without Preferences of its own finds it when dialing.
	// A custom HTTPDoer must dial with it for the fallback to change
	// the address family.
	//
	// If Preferences is nil, the client allocates its own on first use.
	Preferences *netpref.Preferences
	// Handlers allows custom handler chains to be invoked when
	// designated events occur during execution of a request plan.
	//
	// If Handlers is nil, no custom handlers will be run.
	Handlers *HandlerGroup
	// Logger receives debug logs of redirects and informational logs
	// of fallbacks.
	//
	// If Logger is nil, nothing is logged.
	Logger *zap.Logger

	prefsOnce   sync.Once
	prefs       *netpref.Preferences
	doerOnce    sync.Once
	defaultDoer HTTPDoer
}

// Do executes a request plan and returns the final execution state,
// following redirects and the network-family fallback as needed.
//
// The Execution returned is never nil. It reflects the final attempt
// made: the response to the last redirect hop followed, or to the
// fallback attempt, or the error the final attempt ended with.
//
// An error is returned if the final attempt resulted in an error, or
// if the plan's context was cancelled or its deadline exceeded. A
// non-2XX status code does not result in an error. Any returned error
// is of type *url.Error and is the same value as the Err field of the
// Execution. A panic raised by the HTTPDoer or a handler is recovered
// and returned as a *url.Error wrapping a *failure.PanicError.
//
// Do never modifies p. Attempts are made from the execution's Current
// plan, a clone of p which is rewritten as redirects are followed, and
// which carries a RequestIDHeader unless p already has one.
//
// Use package result to classify the returned Execution, or call
// Execute to do both at once.
func (c *Client) Do(p *request.Plan) (*request.Execution, error) {
	x := executor{
		doer:     c.doer(),
		timeout:  c.TimeoutPolicy,
		decider:  c.FallbackDecider,
		prefs:    c.preferences(),
		handlers: c.Handlers,
		log:      c.Logger,
	}
	if x.timeout == nil {
		x.timeout = timeout.DefaultPolicy
	}
	if x.decider == nil {
		x.decider = fallback.DefaultDecider
	}
	if x.log == nil {
		x.log = zap.NewNop()
	}

	e := &request.Execution{
		Plan:    p,
		Current: p.Clone(),
	}
	if e.Current.Header.Get(RequestIDHeader) == "" {
		e.Current.Header.Set(RequestIDHeader, uuid.NewString())
	}

	x.protect(e, func() {
		x.handlers.run(BeforeExecutionStart, e)
		e.Start = time.Now()
		x.execute(e)
	})

	if e.Start.IsZero() {
		e.Start = time.Now()
	}
	e.End = time.Now()
	x.protect(e, func() {
		x.handlers.run(AfterExecutionEnd, e)
	})
	return e, e.Err
}

type executor struct {
	doer     HTTPDoer
	timeout  timeout.Policy
	decider  fallback.Decider
	prefs    *netpref.Preferences
	handlers *HandlerGroup
	log      *zap.Logger
}

// execute runs the initial attempt, the fallback attempt if the
// initial attempt warrants it, and then follows redirects.
func (x *executor) execute(e *request.Execution) {
	x.attempt(e)
	if x.planDone(e) {
		return
	}
	x.fallback(e)

	for !e.Current.NoFollow && e.Err == nil && redirect.IsRedirect(e.StatusCode()) {
		if x.planDone(e) {
			return
		}
		location := redirect.Location(e.Header())
		if location == "" {
			x.log.Debug("redirect without location",
				zap.String("url", e.Current.URL.String()),
				zap.Int("status", e.StatusCode()))
			e.MissingLocation = true
			return
		}
		if e.Redirects.Full() {
			x.log.Debug("redirect limit reached",
				zap.String("url", e.Current.URL.String()),
				zap.Int("hops", e.Redirects.Hops()))
			return
		}
		if !x.redirect(e, location) {
			return
		}
		x.attempt(e)
		if x.planDone(e) {
			return
		}
		if e.Err != nil {
			x.fallback(e)
		}
	}
}

// redirect rewrites the execution's Current plan for location and
// records the hop. It returns false if location is unusable, in which
// case the execution's error is set.
func (x *executor) redirect(e *request.Execution, location string) bool {
	from := e.Current.URL
	to, err := redirect.Resolve(from, location)
	if err != nil {
		e.Err = urlErrorWrap(e.Current, &url.Error{Op: "parse", URL: location, Err: err})
		e.Response = nil
		e.Body = nil
		return false
	}
	e.Redirects.AddLocation(to.String())

	next := e.Current.Clone()
	next.URL = to
	if dest := next.Destination(); dest != "" {
		next.SetDestination(redirect.RewriteDestination(dest, to.String()))
	}
	e.Current = next

	x.log.Debug("following redirect",
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.Int("status", e.StatusCode()),
		zap.Int("hop", e.Redirects.Hops()))
	x.handlers.run(BeforeRedirect, e)
	e.Attempt++
	return true
}

// fallback switches the host of the current attempt to IPv4 and
// reissues the attempt, if the decider allows it and the host was
// preferring IPv6. At most one fallback is made per execution.
func (x *executor) fallback(e *request.Execution) {
	if e.Fallback || !x.decider.Decide(e) {
		return
	}
	host := e.Host()
	if !fallback.Switch(x.prefs, host) {
		return
	}
	e.Fallback = true
	x.log.Info("falling back to IPv4",
		zap.String("host", host),
		zap.Stringer("trigger", fallback.TriggerOf(e)),
		zap.Int("status", e.StatusCode()),
		zap.Error(e.Err))
	x.handlers.run(BeforeFallback, e)
	if e.Response != nil {
		e.Redirects.Retract()
	}
	// An idle keep-alive connection to the host would be reused
	// without dialing, so the new family would never take effect.
	if ic, ok := x.doer.(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
	e.Attempt++
	x.attempt(e)
}

// attempt makes one physical attempt from the execution's Current plan.
func (x *executor) attempt(e *request.Execution) {
	p := e.Current
	d := x.timeout.Timeout(e)
	e.Request = nil
	e.Response = nil
	e.Err = nil
	e.Body = nil

	ctx, cancel := context.WithTimeout(netpref.NewContext(p.Context(), x.prefs), d)
	defer cancel()
	e.Request = p.ToRequest(ctx)
	x.handlers.run(BeforeAttempt, e)
	resp, err := x.doer.Do(e.Request)
	if err != nil {
		e.Err = urlErrorWrap(p, err)
	} else {
		e.Response = resp
		e.Redirects.AddStatus(resp.StatusCode)
		readBody(p, e, x.handlers)
	}

	if e.Timeout() {
		e.AttemptTimeouts++
		x.handlers.run(AfterAttemptTimeout, e)
	}
	x.handlers.run(AfterAttempt, e)
}

// planDone reports whether the plan's context is done, in which case
// the execution ends with the context error.
func (x *executor) planDone(e *request.Execution) bool {
	err := e.Plan.Context().Err()
	if err == nil {
		return false
	}
	if err == context.DeadlineExceeded {
		x.handlers.run(AfterPlanTimeout, e)
	}
	if e.Err == nil {
		e.Err = urlErrorWrap(e.Current, err)
	}
	return true
}

// protect runs f, converting a panic into the execution's error.
func (x *executor) protect(e *request.Execution, f func()) {
	defer func() {
		if r := recover(); r != nil {
			if e.Response != nil && e.Response.Body != nil {
				_ = e.Response.Body.Close()
			}
			e.Response = nil
			e.Body = nil
			e.Err = urlErrorWrap(e.Current, &failure.PanicError{Value: r})
			x.log.Error("panic during execution",
				zap.String("url", e.Current.URL.String()),
				zap.Any("panic", r))
		}
	}()
	f()
}

func readBody(p *request.Plan, e *request.Execution, handlers *HandlerGroup) {
	defer func() {
		_ = e.Response.Body.Close()
	}()
	handlers.run(BeforeReadBody, e)
	var err error
	e.Body, err = io.ReadAll(e.Response.Body)
	if err != nil {
		e.Err = urlErrorWrap(p, err)
	}
}

// Get issues a GET to the specified URL, using the same policies
// followed by Do.
func (c *Client) Get(url string) (*request.Execution, error) {
	return Get(c, url)
}

// Head issues a HEAD to the specified URL, using the same policies
// followed by Do.
func (c *Client) Head(url string) (*request.Execution, error) {
	return Head(c, url)
}

// Post issues a POST to the specified URL, using the same policies
// followed by Do.
func (c *Client) Post(url, contentType string, body interface{}) (*request.Execution, error) {
	return Post(c, url, contentType, body)
}

// PostForm issues a POST to the specified URL, with data's keys and
// values URL-encoded as the request body.
func (c *Client) PostForm(url string, data url.Values) (*request.Execution, error) {
	return PostForm(c, url, data)
}

// Put issues a PUT to the specified URL, using the same policies
// followed by Do.
func (c *Client) Put(url, contentType string, body interface{}) (*request.Execution, error) {
	return Put(c, url, contentType, body)
}

// Delete issues a DELETE to the specified URL, using the same policies
// followed by Do.
func (c *Client) Delete(url string) (*request.Execution, error) {
	return Delete(c, url)
}

// CloseIdleConnections invokes the same method on the client's
// underlying HTTPDoer.
//
// If the HTTPDoer has no CloseIdleConnections method, this method does
// nothing.
func (c *Client) CloseIdleConnections() {
	doer := c.doer()
	if ic, ok := doer.(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}

func (c *Client) doer() HTTPDoer {
	if c.HTTPDoer != nil {
		return c.HTTPDoer
	}
	c.doerOnce.Do(func() {
		c.defaultDoer = newTransport(TransportConfig{Preferences: c.preferences()})
	})
	return c.defaultDoer
}

func (c *Client) preferences() *netpref.Preferences {
	if c.Preferences != nil {
		return c.Preferences
	}
	c.prefsOnce.Do(func() {
		c.prefs = netpref.New()
	})
	return c.prefs
}

func useLastResponse(_ *http.Request, _ []*http.Request) error {
	return http.ErrUseLastResponse
}

func urlErrorWrap(p *request.Plan, err error) error {
	if _, ok := err.(*url.Error); ok {
		return err
	}

	return &url.Error{
		Op:  urlErrorOp(p.Method),
		URL: p.URL.String(),
		Err: err,
	}
}

// urlErrorOp is lifted verbatim from net/http/client.go
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
