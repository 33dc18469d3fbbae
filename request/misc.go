// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"errors"
	"io"
	"net/url"
)

// FormContentType is the Content-Type of a url.Values body.
const FormContentType = "application/x-www-form-urlencoded"

const badBodyTypeMsg = "davx/request: invalid body type (use nil, string, " +
	"[]byte, url.Values, io.Reader or io.ReadCloser)"

// BodyBytes buffers a plan body given as nil, a string, a []byte,
// url.Values (form encoded), an io.Reader, or an io.ReadCloser.
//
// Readers are read to EOF. A ReadCloser is closed even if reading
// fails, and the first read or close error is returned with a nil
// slice.
func BodyBytes(body interface{}) ([]byte, error) {
	switch x := body.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(x), nil
	case []byte:
		return x, nil
	case url.Values:
		return []byte(x.Encode()), nil
	case io.ReadCloser:
		return drain(x, x.Close)
	case io.Reader:
		return drain(x, nil)
	default:
		return nil, errors.New(badBodyTypeMsg)
	}
}

func drain(r io.Reader, closeFn func() error) ([]byte, error) {
	b, err := io.ReadAll(r)
	if closeFn != nil {
		if cerr := closeFn(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}
