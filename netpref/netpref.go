// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package netpref records, per host name, which IP address family the
// robust client should prefer when connecting.
//
// Every host starts out preferring IPv6. When a request to the host
// fails in a way that suggests broken IPv6 connectivity, the client
// switches the host to IPv4 and reissues the request once. The choice
// is a best-effort heuristic: it is shared by all requests made with
// the same Preferences, it is never switched back automatically, and
// concurrent writers simply race with last-write-wins semantics.
package netpref

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/net/idna"
)

// A Family is an IP address family.
type Family int

const (
	// IPv6 prefers IPv6 addresses, falling back to IPv4 per RFC 6555.
	IPv6 Family = iota
	// IPv4 connects over IPv4 only.
	IPv4
)

// String returns "IPv6" or "IPv4".
func (f Family) String() string {
	if f == IPv4 {
		return "IPv4"
	}
	return "IPv6"
}

// Preferences is a concurrency-safe map from host name to preferred
// address family. The zero value is ready to use and prefers IPv6 for
// every host.
//
// Preferences are owned by whoever creates them, typically one robust
// client per session, so tests can use a fresh instance per case.
type Preferences struct {
	mu    sync.RWMutex
	hosts map[string]Family
}

// New returns an empty Preferences.
func New() *Preferences {
	return &Preferences{}
}

// Get returns the preferred family for host.
func (p *Preferences) Get(host string) Family {
	k := Key(host)
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.hosts[k]
}

// PreferIPv6 reports whether host currently prefers IPv6.
func (p *Preferences) PreferIPv6(host string) bool {
	return p.Get(host) == IPv6
}

// Set records f as the preferred family for host.
func (p *Preferences) Set(host string, f Family) {
	k := Key(host)
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.hosts == nil {
		p.hosts = make(map[string]Family)
	}
	if f == IPv6 {
		delete(p.hosts, k)
		return
	}
	p.hosts[k] = f
}

// Reset forgets every recorded preference.
func (p *Preferences) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hosts = nil
}

// Len returns the number of hosts with a non-default preference.
func (p *Preferences) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.hosts)
}

// Network returns the network to pass to a dialer for connecting to
// host. If host prefers IPv4, the IPv4-only variant of network is
// returned ("tcp4" for "tcp"). Otherwise network is returned unchanged.
func (p *Preferences) Network(network, host string) string {
	if p.Get(host) != IPv4 {
		return network
	}
	switch network {
	case "tcp", "tcp6":
		return "tcp4"
	case "udp", "udp6":
		return "udp4"
	default:
		return network
	}
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying p. A dialer without its own
// Preferences uses the ones carried by the dial context.
func NewContext(ctx context.Context, p *Preferences) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the Preferences carried by ctx, or nil.
func FromContext(ctx context.Context) *Preferences {
	p, _ := ctx.Value(contextKey{}).(*Preferences)
	return p
}

// Key returns the normalized form of host used as the map key: the
// port is removed, internationalized names are converted to their ASCII
// (punycode) form, and the result is lower-cased.
func Key(host string) string {
	host = stripPort(host)
	if a, err := idna.Lookup.ToASCII(host); err == nil {
		host = a
	}
	return strings.ToLower(host)
}

func stripPort(host string) string {
	if strings.HasPrefix(host, "[") {
		if i := strings.Index(host, "]"); i > 0 {
			return host[1:i]
		}
		return host
	}
	if strings.Count(host, ":") == 1 {
		return host[:strings.Index(host, ":")]
	}
	return host
}
