// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the core types Plan (describes a logical WebDAV
or OCS request) and Execution (describes the execution of a Plan). These
two types are the currency between the robust client, its event
handlers, and the result classifier.

A Plan is a method descriptor: the verb, target URL, headers (including
an optional WebDAV Destination header), a pre-buffered body, the
per-attempt timeout, and the statuses that count as success. Plans are
created once per logical call by the caller:

	p, err := request.NewPlan("PROPFIND", "https://cloud.example.com/remote.php/dav/files/u/", body)
	...
	p.Header.Set("Depth", "1")
	p.SuccessCodes = []int{207}
	e, err := client.Do(p)
	...

A Plan is never modified by the client. When a redirect is followed the
client works on a copy, Execution.Current, whose URL and Destination
header are rewritten for the new location.

An Execution represents the state of one logical call: the physical
attempt currently in flight (the initial request, each redirect hop, and
the network-family fallback reissue are all attempts), the most recent
response and body or error, and the redirect Path. Execution is the
input type for timeout policies, fallback deciders, and event handlers,
and the output of the client's Do method. The result package turns a
finished Execution into a classified Result.
*/
package request
