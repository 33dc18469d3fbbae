// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package redirect

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRedirect(t *testing.T) {
	for _, s := range []int{301, 302, 307} {
		assert.True(t, IsRedirect(s), "status %d", s)
	}
	for _, s := range []int{0, 200, 207, 300, 303, 304, 308, 404, 500} {
		assert.False(t, IsRedirect(s), "status %d", s)
	}
}

func TestLocation(t *testing.T) {
	t.Run("canonical", func(t *testing.T) {
		h := http.Header{}
		h.Set("location", "https://new/")
		assert.Equal(t, "https://new/", Location(h))
	})
	t.Run("non-canonical key", func(t *testing.T) {
		h := http.Header{"LOCATION": {"https://upper/"}}
		assert.Equal(t, "https://upper/", Location(h))
		h = http.Header{"location": {"https://lower/"}}
		assert.Equal(t, "https://lower/", Location(h))
	})
	t.Run("missing", func(t *testing.T) {
		assert.Empty(t, Location(nil))
		assert.Empty(t, Location(http.Header{"Content-Type": {"text/xml"}}))
		assert.Empty(t, Location(http.Header{"location": {}}))
	})
}

func TestDestination(t *testing.T) {
	assert.Equal(t, "https://h/x", Destination(http.Header{"destination": {"https://h/x"}}))
	assert.Equal(t, "https://h/y", Destination(http.Header{"Destination": {"https://h/y"}}))
	assert.Empty(t, Destination(http.Header{}))
}

func TestResolve(t *testing.T) {
	base, err := url.Parse("https://old/remote.php/dav/files/u/a.txt")
	require.NoError(t, err)

	u, err := Resolve(base, "/login")
	require.NoError(t, err)
	assert.Equal(t, "https://old/login", u.String())

	u, err = Resolve(base, "https://new/remote.php/dav/files/")
	require.NoError(t, err)
	assert.Equal(t, "https://new/remote.php/dav/files/", u.String())

	u, err = Resolve(nil, "https://only/")
	require.NoError(t, err)
	assert.Equal(t, "https://only/", u.String())

	_, err = Resolve(base, "http://[::1")
	assert.Error(t, err)
}

func TestRewriteDestination(t *testing.T) {
	testCases := []struct {
		name        string
		destination string
		location    string
		expected    string
	}{
		{
			name:        "new server",
			destination: "https://old/remote.php/dav/files/u/a/b.txt",
			location:    "https://new/remote.php/dav/files/",
			expected:    "https://new/remote.php/dav/files/u/a/b.txt",
		},
		{
			name:        "sub directory install",
			destination: "https://old/remote.php/dav/files/u/a.txt",
			location:    "https://new/cloud/remote.php/dav/files/u/a.txt",
			expected:    "https://new/cloud/remote.php/dav/files/u/a.txt",
		},
		{
			name:        "legacy endpoint",
			destination: "http://old/remote.php/webdav/x/y",
			location:    "https://new/remote.php/webdav/x",
			expected:    "https://new/remote.php/webdav/x/y",
		},
		{
			name:        "location without dav path",
			destination: "https://old/remote.php/dav/files/u/b.txt",
			location:    "https://new/index.php",
			expected:    "https://new/remote.php/dav/files/u/b.txt",
		},
		{
			name:        "destination without dav path",
			destination: "https://old/files/b.txt?x=1",
			location:    "https://new/remote.php/dav/",
			expected:    "https://new/files/b.txt?x=1",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, RewriteDestination(testCase.destination, testCase.location))
		})
	}
}

func TestPath(t *testing.T) {
	t.Run("zero value", func(t *testing.T) {
		var p Path
		assert.Equal(t, 0, p.Hops())
		assert.False(t, p.Full())
		assert.Equal(t, 0, p.LastStatus())
		assert.Empty(t, p.LastLocation())
		assert.Empty(t, p.LastPermanentLocation())
		assert.Empty(t, p.Statuses())
		assert.Empty(t, p.Locations())
	})
	t.Run("capped", func(t *testing.T) {
		var p Path
		p.AddStatus(301)
		assert.True(t, p.AddLocation("https://a/"))
		p.AddStatus(302)
		assert.True(t, p.AddLocation("https://b/"))
		p.AddStatus(307)
		assert.True(t, p.AddLocation("https://c/"))
		p.AddStatus(302)
		assert.True(t, p.Full())
		assert.False(t, p.AddLocation("https://d/"))
		assert.Equal(t, MaxRedirections, p.Hops())
		assert.Equal(t, 302, p.LastStatus())
		assert.Equal(t, "https://c/", p.LastLocation())
		assert.Equal(t, "https://a/", p.LastPermanentLocation())
		assert.Equal(t, []int{301, 302, 307, 302}, p.Statuses())
		assert.Equal(t, []string{"https://a/", "https://b/", "https://c/"}, p.Locations())
	})
	t.Run("retract", func(t *testing.T) {
		var p Path
		p.Retract()
		p.AddStatus(503)
		p.Retract()
		p.AddStatus(301)
		p.AddLocation("https://a/")
		p.AddStatus(200)
		assert.Equal(t, []int{301, 200}, p.Statuses())
		assert.Equal(t, "https://a/", p.LastPermanentLocation())
	})
	t.Run("copies", func(t *testing.T) {
		var p Path
		p.AddStatus(302)
		p.AddLocation("https://a/")
		s := p.Statuses()
		s[0] = 999
		l := p.Locations()
		l[0] = "mutated"
		assert.Equal(t, 302, p.LastStatus())
		assert.Equal(t, "https://a/", p.LastLocation())
	})
}
