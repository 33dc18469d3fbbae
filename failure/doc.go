// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package failure reduces an error from WebDAV or OCS request execution
// to a single Kind, the closed set of failure categories the result
// classifier dispatches on.
//
// Categorize is computed once per error, at the boundary where the
// execution ends. It looks through the whole chain of wrapped causes
// (including joined errors), so errors wrapped by net/http, by
// *url.Error, or by the caller's own types are categorized the same way
// as the bare cause.
//
// The package also defines the typed errors that session-level callers
// use to report account and certificate problems, and the PanicError
// wrapper used when a transport panics.
package failure
