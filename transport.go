// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package davx

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/gogama/davx/netpref"
	"golang.org/x/net/http2"
	"golang.org/x/time/rate"
)

// DefaultConnectTimeout is the dial timeout NewHTTPDoer uses when the
// config does not set one.
const DefaultConnectTimeout = 60 * time.Second

// TransportConfig configures the HTTPDoer built by NewHTTPDoer. The
// zero value is a valid configuration.
type TransportConfig struct {
	// Preferences is consulted on every dial to choose the address
	// family. If nil, the Preferences a Client attaches to the request
	// context are used, and without those every host prefers IPv6.
	Preferences *netpref.Preferences
	// ConnectTimeout bounds dialing a connection. If zero,
	// DefaultConnectTimeout is used.
	ConnectTimeout time.Duration
	// TLSConfig is the TLS configuration used for HTTPS. If nil, the
	// default configuration is used.
	TLSConfig *tls.Config
	// InsecureSkipVerify disables server certificate verification.
	InsecureSkipVerify bool
	// HTTP2 enables HTTP/2 over TLS.
	HTTP2 bool
	// RateLimit caps the number of physical requests per second. Zero
	// means unlimited.
	RateLimit float64
	// Burst is the rate limiter burst size. If zero, one is used.
	Burst int
	// UserAgent is sent on requests that do not carry a User-Agent.
	UserAgent string
	// MaxIdleConnsPerHost bounds the idle connection pool per host. If
	// zero, the net/http default is used.
	MaxIdleConnsPerHost int
}

// A Transport is an HTTPDoer that never follows redirects, dials with
// the address family recorded in its Preferences, and optionally rate
// limits requests.
type Transport struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	prefs     *netpref.Preferences
	dial      dialFunc
}

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// NewHTTPDoer returns a Transport for use as the HTTPDoer of a Client.
func NewHTTPDoer(cfg TransportConfig) (*Transport, error) {
	t := newTransport(cfg)
	if cfg.HTTP2 {
		if err := http2.ConfigureTransport(t.client.Transport.(*http.Transport)); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func newTransport(cfg TransportConfig) *Transport {
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	dialer := &net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}

	tlsConfig := cfg.TLSConfig
	if tlsConfig == nil {
		tlsConfig = &tls.Config{}
	} else {
		tlsConfig = tlsConfig.Clone()
	}
	if cfg.InsecureSkipVerify {
		tlsConfig.InsecureSkipVerify = true
	}

	t := &Transport{
		userAgent: cfg.UserAgent,
		prefs:     cfg.Preferences,
		dial:      dialer.DialContext,
	}
	t.client = &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           t.dialContext,
			TLSClientConfig:       tlsConfig,
			TLSHandshakeTimeout:   connectTimeout,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
			IdleConnTimeout:       90 * time.Second,
			ExpectContinueTimeout: time.Second,
		},
		CheckRedirect: useLastResponse,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return t
}

// Do waits for the rate limiter, if any, then sends r without following
// redirects.
func (t *Transport) Do(r *http.Request) (*http.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(r.Context()); err != nil {
			return nil, err
		}
	}
	if t.userAgent != "" && r.Header.Get("User-Agent") == "" {
		r = r.Clone(r.Context())
		if r.Header == nil {
			r.Header = make(http.Header)
		}
		r.Header.Set("User-Agent", t.userAgent)
	}
	return t.client.Do(r)
}

// CloseIdleConnections closes the idle connections of the underlying
// transport.
func (t *Transport) CloseIdleConnections() {
	t.client.CloseIdleConnections()
}

// dialContext dials addr with the address family recorded for its host,
// in the transport's own Preferences or else in those carried by ctx.
// Client attaches its Preferences to every attempt context.
func (t *Transport) dialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	prefs := t.prefs
	if prefs == nil {
		prefs = netpref.FromContext(ctx)
	}
	if prefs != nil {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}
		network = prefs.Network(network, host)
	}
	return t.dial(ctx, network, addr)
}
