// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package fallback decides when a request should be reissued over IPv4
after a failure that suggests broken IPv6 connectivity.

The robust client consults a Decider after the first attempt of each
execution. If the decider returns true, the client calls Switch to move
the target host from IPv6 to IPv4 in its netpref.Preferences. If the
host was preferring IPv6, the request is reissued exactly once. If the
host already preferred IPv4, there is nothing to fall back to and the
original outcome stands.

DefaultDecider triggers on a 5xx response or on a connect or timeout
failure, at most once per execution. Compose custom deciders with
DeciderFunc.And and DeciderFunc.Or, or install Never to disable the
fallback altogether.
*/
package fallback
