// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package failure

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io/fs"
	"net"
	"net/url"
	"runtime"
	"strings"
	"syscall"
)

// A Kind is the failure category of an error, as reported by
// Categorize. The set of kinds is closed: every error, including nil,
// maps to exactly one Kind.
type Kind int

const (
	// None is the kind of a nil error.
	None Kind = iota
	// Cancelled indicates the caller cancelled the plan context.
	Cancelled
	// NoRoute indicates the remote host or network is unreachable
	// (EHOSTUNREACH, ENETUNREACH).
	NoRoute
	// ConnRefused indicates the remote host refused the connection
	// (ECONNREFUSED).
	ConnRefused
	// Socket indicates any other network-level failure, for example a
	// connection reset or a failed read on an established connection.
	Socket
	// Timeout indicates a timeout of any variety: dial, TLS handshake,
	// response header, body read, DNS, or plan deadline.
	Timeout
	// MalformedURL indicates the request URL is unusable.
	MalformedURL
	// UnknownHost indicates the host name could not be resolved.
	UnknownHost
	// AccountNotFound indicates the account the request was prepared
	// for does not exist.
	AccountNotFound
	// Account indicates any other account or credential problem.
	Account
	// CertificateRecoverable indicates a server certificate validation
	// failure the user can resolve by trusting the certificate.
	CertificateRecoverable
	// Certificate indicates a server certificate validation failure
	// that cannot be resolved by trusting the certificate.
	Certificate
	// TLS indicates a TLS protocol failure with no certificate cause.
	TLS
	// Runtime indicates a panic or runtime error with no certificate
	// cause.
	Runtime
	// LocalFileMissing indicates a local file needed by the request
	// (typically an upload source) does not exist.
	LocalFileMissing
	// Other indicates an error that fits no other kind.
	Other

	kindSentinel

	// NumKinds is the number of distinct kinds.
	NumKinds = int(kindSentinel)
)

var kindNames = []string{
	"None",
	"Cancelled",
	"NoRoute",
	"ConnRefused",
	"Socket",
	"Timeout",
	"MalformedURL",
	"UnknownHost",
	"AccountNotFound",
	"Account",
	"CertificateRecoverable",
	"Certificate",
	"TLS",
	"Runtime",
	"LocalFileMissing",
	"Other",
}

// Kinds returns every Kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, NumKinds)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// String returns the name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= NumKinds {
		return "Kind(?)"
	}
	return kindNames[k]
}

// Categorize returns the failure kind of err.
//
// The checks run in a fixed order and the first match wins:
// cancellation, no route, connection refused, timeout, malformed URL,
// unknown host, account not found, account, certificate (recoverable
// or not), TLS, runtime, missing local file, socket. Anything left is
// Other.
//
// Timeout is checked before the generic socket kind because a Go
// *net.OpError covers both; a timed-out dial is a Timeout, not a
// Socket failure.
func Categorize(err error) Kind {
	switch {
	case err == nil:
		return None
	case errors.Is(err, context.Canceled):
		return Cancelled
	case hasErrno(err, syscall.EHOSTUNREACH, syscall.ENETUNREACH):
		return NoRoute
	case hasErrno(err, syscall.ECONNREFUSED):
		return ConnRefused
	case isTimeout(err):
		return Timeout
	case isMalformedURL(err):
		return MalformedURL
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return UnknownHost
	}
	if errors.Is(err, ErrAccountNotFound) {
		return AccountNotFound
	}
	if errors.Is(err, ErrAccount) {
		return Account
	}
	if k, ok := certificateKind(err); ok {
		return k
	}
	if isTLS(err) {
		return TLS
	}
	if isRuntime(err) {
		return Runtime
	}
	if errors.Is(err, fs.ErrNotExist) {
		return LocalFileMissing
	}
	if isSocket(err) {
		return Socket
	}

	return Other
}

// DuringDial reports whether err, or any of its causes, is a
// *net.OpError raised while dialing, i.e. before a connection to the
// remote host was established.
func DuringDial(err error) bool {
	return walk(err, func(e error) bool {
		opErr, ok := e.(*net.OpError)
		return ok && opErr.Op == "dial"
	})
}

type hasTimeout interface {
	Timeout() bool
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return walk(err, func(e error) bool {
		t, ok := e.(hasTimeout)
		return ok && t.Timeout()
	})
}

func hasErrno(err error, targets ...syscall.Errno) bool {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return false
	}
	for _, target := range targets {
		if errno == target {
			return true
		}
	}
	return false
}

func isMalformedURL(err error) bool {
	if errors.Is(err, ErrMalformedURL) {
		return true
	}
	return walk(err, func(e error) bool {
		if urlErr, ok := e.(*url.Error); ok && urlErr.Op == "parse" {
			return true
		}
		if _, ok := e.(url.EscapeError); ok {
			return true
		}
		if _, ok := e.(url.InvalidHostError); ok {
			return true
		}
		// net/http reports unusable URLs with unexported error values.
		msg := e.Error()
		return strings.HasPrefix(msg, "unsupported protocol scheme") ||
			strings.HasPrefix(msg, "http: no Host in request URL")
	})
}

func certificateKind(err error) (Kind, bool) {
	var certErr *CertificateError
	if errors.As(err, &certErr) {
		if certErr.Recoverable {
			return CertificateRecoverable, true
		}
		return Certificate, true
	}

	var unknownAuthority x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthority) {
		return recoverableIf(unknownAuthority.Cert != nil), true
	}
	var hostname x509.HostnameError
	if errors.As(err, &hostname) {
		return recoverableIf(hostname.Certificate != nil), true
	}
	var invalid x509.CertificateInvalidError
	if errors.As(err, &invalid) {
		return recoverableIf(invalid.Cert != nil), true
	}

	var verification *tls.CertificateVerificationError
	if errors.As(err, &verification) {
		return recoverableIf(len(verification.UnverifiedCertificates) > 0), true
	}

	var (
		systemRoots x509.SystemRootsError
		critical    x509.UnhandledCriticalExtension
		constraint  x509.ConstraintViolationError
		algorithm   x509.InsecureAlgorithmError
	)
	if errors.As(err, &systemRoots) || errors.As(err, &critical) ||
		errors.As(err, &constraint) || errors.As(err, &algorithm) {
		return Certificate, true
	}

	return None, false
}

// Certificates returns the server certificate chain carried by a
// certificate validation failure in err, leaf first, or nil if err
// carries none. Callers use it to ask the user whether to trust a
// CertificateRecoverable failure.
func Certificates(err error) []*x509.Certificate {
	var certErr *CertificateError
	if errors.As(err, &certErr) && len(certErr.Certificates) > 0 {
		return certErr.Certificates
	}
	var verification *tls.CertificateVerificationError
	if errors.As(err, &verification) && len(verification.UnverifiedCertificates) > 0 {
		return verification.UnverifiedCertificates
	}
	var unknownAuthority x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthority) && unknownAuthority.Cert != nil {
		return []*x509.Certificate{unknownAuthority.Cert}
	}
	var hostname x509.HostnameError
	if errors.As(err, &hostname) && hostname.Certificate != nil {
		return []*x509.Certificate{hostname.Certificate}
	}
	var invalid x509.CertificateInvalidError
	if errors.As(err, &invalid) && invalid.Cert != nil {
		return []*x509.Certificate{invalid.Cert}
	}
	return nil
}

func recoverableIf(hasCert bool) Kind {
	if hasCert {
		return CertificateRecoverable
	}
	return Certificate
}

func isTLS(err error) bool {
	var recordHeader tls.RecordHeaderError
	var alert tls.AlertError
	return errors.As(err, &recordHeader) || errors.As(err, &alert)
}

func isRuntime(err error) bool {
	var runtimeErr runtime.Error
	return errors.Is(err, ErrPanic) || errors.As(err, &runtimeErr)
}

func isSocket(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) ||
		hasErrno(err, syscall.ECONNRESET, syscall.ECONNABORTED, syscall.EPIPE)
}

// walk applies f to err and each error in its chain of causes, depth
// first, and reports whether f returned true for any of them.
func walk(err error, f func(error) bool) bool {
	for err != nil {
		if f(err) {
			return true
		}
		switch x := err.(type) {
		case interface{ Unwrap() error }:
			err = x.Unwrap()
		case interface{ Unwrap() []error }:
			for _, e := range x.Unwrap() {
				if walk(e, f) {
					return true
				}
			}
			return false
		default:
			return false
		}
	}
	return false
}
