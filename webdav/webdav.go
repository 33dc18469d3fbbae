// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package webdav builds request plans for the WebDAV methods a file
// sync client uses. Each constructor sets the headers the method needs
// and the statuses that count as success, so the plans can be handed
// straight to davx.Execute.
package webdav

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gogama/davx/request"
)

// A Depth is the value of the WebDAV Depth header.
type Depth string

const (
	// Depth0 applies a method to the resource only.
	Depth0 Depth = "0"
	// Depth1 applies a method to the resource and its immediate
	// members.
	Depth1 Depth = "1"
	// DepthInfinity applies a method to the resource and all its
	// descendants.
	DepthInfinity Depth = "infinity"
)

// FilesPath is the path of the WebDAV files endpoint below the server
// base URL.
const FilesPath = "/remote.php/dav/files/"

const xmlContentType = "application/xml; charset=utf-8"

// AllProp is the PROPFIND body sent when the caller supplies none.
const AllProp = `<?xml version="1.0" encoding="utf-8"?>` +
	`<d:propfind xmlns:d="DAV:"><d:allprop/></d:propfind>`

// FilesURL returns the WebDAV URL of the file at path, which is
// relative to the files root of user, on the server at base. Each path
// segment is escaped.
func FilesURL(base, user, path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimSuffix(base, "/") + FilesPath + url.PathEscape(user) + "/" + strings.Join(segments, "/")
}

// Propfind returns a plan listing the properties of the resource at u.
// If body is nil, all properties are requested. The plan succeeds on
// 207 (Multi-Status).
func Propfind(u string, depth Depth, body interface{}) (*request.Plan, error) {
	if body == nil {
		body = AllProp
	}
	p, err := request.NewPlan("PROPFIND", u, body)
	if err != nil {
		return nil, err
	}
	p.Header.Set("Depth", string(depth))
	p.Header.Set("Content-Type", xmlContentType)
	p.SuccessCodes = []int{http.StatusMultiStatus}
	return p, nil
}

// Mkcol returns a plan creating the collection at u. The plan succeeds
// on 201 (Created).
func Mkcol(u string) (*request.Plan, error) {
	p, err := request.NewPlan("MKCOL", u, nil)
	if err != nil {
		return nil, err
	}
	p.SuccessCodes = []int{http.StatusCreated}
	return p, nil
}

// Move returns a plan moving the resource at src to dst. The plan
// succeeds on 201 (Created) and 204 (No Content).
//
// If the request is redirected, the Destination header follows the
// redirect to the new server.
func Move(src, dst string, overwrite bool) (*request.Plan, error) {
	return transfer("MOVE", src, dst, overwrite)
}

// Copy returns a plan copying the resource at src to dst. The plan
// succeeds on 201 (Created) and 204 (No Content).
func Copy(src, dst string, overwrite bool) (*request.Plan, error) {
	return transfer("COPY", src, dst, overwrite)
}

func transfer(method, src, dst string, overwrite bool) (*request.Plan, error) {
	p, err := request.NewPlan(method, src, nil)
	if err != nil {
		return nil, err
	}
	p.SetDestination(dst)
	if overwrite {
		p.Header.Set("Overwrite", "T")
	} else {
		p.Header.Set("Overwrite", "F")
	}
	p.SuccessCodes = []int{http.StatusCreated, http.StatusNoContent}
	return p, nil
}

// Put returns a plan uploading body to u. Parameter body may be of any
// type accepted by request.NewPlan. The plan succeeds on 200, 201 and
// 204.
func Put(u, contentType string, body interface{}) (*request.Plan, error) {
	p, err := request.NewPlan("PUT", u, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		p.Header.Set("Content-Type", contentType)
	}
	p.SuccessCodes = []int{http.StatusOK, http.StatusCreated, http.StatusNoContent}
	return p, nil
}

// Get returns a plan downloading the resource at u. The plan succeeds
// on 200.
func Get(u string) (*request.Plan, error) {
	p, err := request.NewPlan("GET", u, nil)
	if err != nil {
		return nil, err
	}
	p.SuccessCodes = []int{http.StatusOK}
	return p, nil
}

// Delete returns a plan deleting the resource at u. The plan succeeds
// on 200 and 204.
func Delete(u string) (*request.Plan, error) {
	p, err := request.NewPlan("DELETE", u, nil)
	if err != nil {
		return nil, err
	}
	p.SuccessCodes = []int{http.StatusOK, http.StatusNoContent}
	return p, nil
}
