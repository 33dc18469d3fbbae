// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package davx provides a robust WebDAV and OCS client which follows
redirects itself, falls back from IPv6 to IPv4 when a server looks
unreachable, and classifies every outcome into a closed set of result
codes.

Create a Client to begin making requests.

	client := &davx.Client{}
	e, err := client.Get("https://cloud.example.com/status.php")
	...

Most callers build a request plan, often with package webdav or package
ocs, and execute it into a classified result:

	p, err := webdav.Propfind("https://cloud.example.com/remote.php/dav/files/u/", webdav.Depth1, nil)
	...
	r := davx.Execute[any](client, p)
	if !r.Success() {
		log.Printf("listing failed: %s", r)
	}

For a client whose network-family fallback actually changes the address
family dialed, share one netpref.Preferences between the client and its
transport:

	prefs := netpref.New()
	doer, err := davx.NewHTTPDoer(davx.TransportConfig{
		Preferences: prefs,
		HTTP2:       true,
	})
	...
	client := &davx.Client{
		HTTPDoer:    doer,
		Preferences: prefs,
		Logger:      logger,
	}

For control over the client's individual attempt timeouts, set a custom
timeout policy using package timeout:

	client := &davx.Client{
		TimeoutPolicy: timeout.Fixed(10*time.Second),
	}

To hook into the fine-grained details of the client's request execution
logic, install a handler into the appropriate handler chain:

	handlers := &davx.HandlerGroup{}
	handlers.PushBack(davx.BeforeRedirect, davx.HandlerFunc(
		func(_ davx.Event, e *request.Execution) {
			log.Printf("Hop %d to %s", e.Redirects.Hops(), e.Current.URL)
		}),
	)
	client := &davx.Client{
		Handlers: handlers,
	}

Package metrics provides ready-made handlers exporting Prometheus
metrics.

Any Doer, not just Client, can be passed to Execute and Decode. The
Send, Get, Head, Post, PostForm, Put and Delete functions build a plan
and execute it with a Doer in one call.
*/
package davx
