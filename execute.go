// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package davx

import (
	"errors"
	"fmt"

	"github.com/gogama/davx/failure"
	"github.com/gogama/davx/request"
	"github.com/gogama/davx/result"
	"go.uber.org/zap"
)

// Execute executes p using d and classifies the outcome. It is the
// single entry point for operations that need a classified result
// rather than the raw execution.
//
// Execute never returns nil and never panics on a failed execution.
// The returned result has no payload; see Decode.
func Execute[T any](d Doer, p *request.Plan) *result.Result[T] {
	_, r := execute[T](d, p)
	return r
}

// Decode executes p using d like Execute and, if the outcome is a
// success, decodes the response body into the result payload using
// decode. A decoding error makes the result a failure carrying the
// error and the HTTP status of the response.
func Decode[T any](d Doer, p *request.Plan, decode func([]byte) (T, error)) *result.Result[T] {
	e, r := execute[T](d, p)
	if !r.Success() {
		return r
	}
	v, err := decode(e.Body)
	if err != nil {
		err = fmt.Errorf("davx: decoding %s %s response: %w", p.Method, p.URL.Redacted(), err)
		return r.Failed(result.CodeOfKind(failure.Categorize(err)), err)
	}
	r.SetPayload(v)
	return r
}

func execute[T any](d Doer, p *request.Plan) (*request.Execution, *result.Result[T]) {
	e, err := d.Do(p)
	if e == nil {
		if err == nil {
			err = errors.New("davx: nil execution")
		}
		return nil, result.FromError[T](err)
	}
	return e, result.FromExecution[T](e, loggerOf(d))
}

func loggerOf(d Doer) *zap.Logger {
	if c, ok := d.(*Client); ok && c.Logger != nil {
		return c.Logger
	}
	return nil
}
