// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package netpref

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreferences(t *testing.T) {
	t.Run("zero value", func(t *testing.T) {
		var p Preferences
		assert.True(t, p.PreferIPv6("cloud.example.com"))
		assert.Equal(t, IPv6, p.Get("cloud.example.com"))
		assert.Equal(t, 0, p.Len())
	})
	t.Run("set and reset", func(t *testing.T) {
		p := New()
		p.Set("cloud.example.com", IPv4)
		assert.False(t, p.PreferIPv6("cloud.example.com"))
		assert.False(t, p.PreferIPv6("CLOUD.example.com:443"))
		assert.True(t, p.PreferIPv6("other.example.com"))
		assert.Equal(t, 1, p.Len())
		p.Set("cloud.example.com", IPv6)
		assert.True(t, p.PreferIPv6("cloud.example.com"))
		assert.Equal(t, 0, p.Len())
		p.Set("a", IPv4)
		p.Set("b", IPv4)
		p.Reset()
		assert.Equal(t, 0, p.Len())
		assert.True(t, p.PreferIPv6("a"))
	})
	t.Run("isolated instances", func(t *testing.T) {
		p1, p2 := New(), New()
		p1.Set("h", IPv4)
		assert.False(t, p1.PreferIPv6("h"))
		assert.True(t, p2.PreferIPv6("h"))
	})
}

func TestPreferences_Network(t *testing.T) {
	p := New()
	assert.Equal(t, "tcp", p.Network("tcp", "h:443"))
	p.Set("h", IPv4)
	assert.Equal(t, "tcp4", p.Network("tcp", "h"))
	assert.Equal(t, "tcp4", p.Network("tcp6", "h"))
	assert.Equal(t, "udp4", p.Network("udp", "h"))
	assert.Equal(t, "unix", p.Network("unix", "h"))
}

func TestPreferences_Concurrent(t *testing.T) {
	p := New()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			host := fmt.Sprintf("host%d", i%4)
			for j := 0; j < 100; j++ {
				if j%2 == 0 {
					p.Set(host, IPv4)
				} else {
					_ = p.PreferIPv6(host)
				}
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 4, p.Len())
}

func TestContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	p := New()
	ctx := NewContext(context.Background(), p)
	assert.Same(t, p, FromContext(ctx))
	child, cancel := context.WithCancel(ctx)
	defer cancel()
	assert.Same(t, p, FromContext(child))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "cloud.example.com", Key("Cloud.Example.COM"))
	assert.Equal(t, "cloud.example.com", Key("cloud.example.com:8443"))
	assert.Equal(t, "::1", Key("[::1]:443"))
	assert.Equal(t, "::1", Key("[::1]"))
	assert.Equal(t, "fe80::1", Key("fe80::1"))
	assert.Equal(t, "xn--bcher-kva.example", Key("bücher.example"))
}

func TestFamily_String(t *testing.T) {
	assert.Equal(t, "IPv6", IPv6.String())
	assert.Equal(t, "IPv4", IPv4.String())
}
