// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package redirect

import "net/http"

// A Path records the redirect hops taken while executing one logical
// request: the status of every response received, and the location of
// every redirect followed.
//
// The zero value is an empty path, ready to use. A Path never records
// more than MaxRedirections locations.
type Path struct {
	statuses  []int
	locations []string
}

// AddStatus records the status of a response received along the path.
func (p *Path) AddStatus(status int) {
	p.statuses = append(p.statuses, status)
}

// Retract removes the most recently recorded status. It is used when
// the attempt that received the status is reissued.
func (p *Path) Retract() {
	if len(p.statuses) > 0 {
		p.statuses = p.statuses[:len(p.statuses)-1]
	}
}

// AddLocation records a followed redirect location. It reports false,
// and records nothing, if the path already holds MaxRedirections
// locations.
func (p *Path) AddLocation(location string) bool {
	if len(p.locations) >= MaxRedirections {
		return false
	}
	p.locations = append(p.locations, location)
	return true
}

// Hops returns the number of redirects followed.
func (p *Path) Hops() int {
	return len(p.locations)
}

// Full reports whether the maximum number of redirects has been
// followed.
func (p *Path) Full() bool {
	return len(p.locations) >= MaxRedirections
}

// LastStatus returns the most recently recorded status, or zero if no
// status has been recorded.
func (p *Path) LastStatus() int {
	if len(p.statuses) == 0 {
		return 0
	}
	return p.statuses[len(p.statuses)-1]
}

// LastLocation returns the most recently followed location, or the
// empty string if no redirect was followed.
func (p *Path) LastLocation() string {
	if len(p.locations) == 0 {
		return ""
	}
	return p.locations[len(p.locations)-1]
}

// LastPermanentLocation returns the location of the most recent redirect
// received with status 301 (Moved Permanently), or the empty string if
// there was none. Callers may use it to update a stored server address.
func (p *Path) LastPermanentLocation() string {
	// statuses[i] is the status of the response that redirected to
	// locations[i].
	for i := len(p.locations) - 1; i >= 0; i-- {
		if i < len(p.statuses) && p.statuses[i] == http.StatusMovedPermanently {
			return p.locations[i]
		}
	}
	return ""
}

// Statuses returns a copy of the recorded statuses, oldest first.
func (p *Path) Statuses() []int {
	return append([]int(nil), p.statuses...)
}

// Locations returns a copy of the followed locations, oldest first.
func (p *Path) Locations() []string {
	return append([]string(nil), p.locations...)
}
