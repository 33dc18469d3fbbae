// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package failure

import (
	"crypto/x509"
	"errors"
	"fmt"
)

var (
	// ErrAccountNotFound indicates the account a request was prepared
	// for no longer exists in the caller's account store.
	ErrAccountNotFound = errors.New("davx/failure: account not found")
	// ErrAccount indicates any other problem with the caller's account
	// or credentials before the request could be sent.
	ErrAccount = errors.New("davx/failure: account error")
	// ErrCertificate indicates the server certificate could not be
	// validated.
	ErrCertificate = errors.New("davx/failure: certificate validation failed")
	// ErrPanic indicates the transport panicked while executing a
	// request.
	ErrPanic = errors.New("davx/failure: panic during request execution")
	// ErrMalformedURL indicates the request URL could not be used.
	ErrMalformedURL = errors.New("davx/failure: malformed url")
)

// AccountError reports a problem with a named account.
//
// Wrap ErrAccountNotFound as the Cause to have the error categorized as
// AccountNotFound rather than Account.
type AccountError struct {
	Account string
	Cause   error
}

func (err *AccountError) Is(target error) bool {
	return target == ErrAccount
}

func (err *AccountError) Error() string {
	if err.Cause == nil {
		return fmt.Sprintf("%s: %q", ErrAccount.Error(), err.Account)
	}
	return fmt.Sprintf("%s: %q: %v", ErrAccount.Error(), err.Account, err.Cause)
}

func (err *AccountError) Unwrap() error {
	return err.Cause
}

// CertificateError reports a server certificate validation failure
// detected by a custom trust manager.
//
// Recoverable marks failures the user can resolve by explicitly trusting
// the presented certificate chain (unknown authority, host name
// mismatch, expiry). Unrecoverable failures cannot be fixed that way.
type CertificateError struct {
	Certificates []*x509.Certificate
	Recoverable  bool
	Cause        error
}

func (err *CertificateError) Is(target error) bool {
	return target == ErrCertificate
}

func (err *CertificateError) Error() string {
	if err.Cause == nil {
		return ErrCertificate.Error()
	}
	return fmt.Sprintf("%s: %v", ErrCertificate.Error(), err.Cause)
}

func (err *CertificateError) Unwrap() error {
	return err.Cause
}

// PanicError carries the value recovered from a panic raised while a
// request was being executed.
type PanicError struct {
	Value interface{}
}

func (err *PanicError) Is(target error) bool {
	return target == ErrPanic
}

func (err *PanicError) Error() string {
	return fmt.Sprintf("%s: %v", ErrPanic.Error(), err.Value)
}

// Unwrap returns the panic value if it is itself an error, and nil
// otherwise.
func (err *PanicError) Unwrap() error {
	if cause, ok := err.Value.(error); ok {
		return cause
	}
	return nil
}
