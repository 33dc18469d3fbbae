// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package result classifies the outcome of a logical WebDAV or OCS request
into an immutable Result carrying a Code from a closed set.

A Result is built exactly once per logical request, from whichever
evidence is available: a success flag and HTTP status (FromStatus), the
response headers (FromHeader), a transport error (FromError), or the
response body of a 4xx response (FromBody). FromExecution picks the
right path for a finished request.Execution and is what the robust
client uses.

Classification rules, in the order they are applied:

	success flag set            -> OK, regardless of the status
	401, 403, 404, 409          -> Unauthorized, Forbidden, FileNotFound, Conflict
	500, 503, 507               -> InstanceNotConfigured, MaintenanceMode, QuotaExceeded
	any other status            -> UnhandledHTTPCode
	Location has saml or wayf   -> Unauthorized
	4xx body, invalid path      -> InvalidCharacterDetectInServer
	4xx body, virus             -> VirusDetected

Errors are classified by their failure.Kind through a fixed table.

The typed payload of a Result is set once, by the operation that owns
it, after success is confirmed. Reading or setting the payload of a
failed Result panics.
*/
package result
