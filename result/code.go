// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package result

import "strconv"

// A Code classifies the outcome of a logical request. The set of codes
// is closed. The zero value is UnknownError.
type Code int

const (
	// UnknownError is the outcome when no other code applies.
	UnknownError Code = iota

	OK
	OKSSL
	OKNoSSL

	// Transport failures.
	NoNetworkConnection
	HostNotAvailable
	WrongConnection
	Timeout
	IncorrectAddress

	// TLS failures.
	SSLError
	SSLRecoverablePeerUnverified

	// Protocol and server outcomes.
	Unauthorized
	Forbidden
	FileNotFound
	Conflict
	QuotaExceeded
	MaintenanceMode
	InstanceNotConfigured
	UnhandledHTTPCode

	// Outcomes derived from the response body.
	InvalidCharacterDetectInServer
	VirusDetected

	// Local and session failures.
	LocalFileNotFound
	AccountNotFound
	AccountException
	Cancelled

	codeSentinel
)

var codeNames = [...]string{
	UnknownError:                   "UNKNOWN_ERROR",
	OK:                             "OK",
	OKSSL:                          "OK_SSL",
	OKNoSSL:                        "OK_NO_SSL",
	NoNetworkConnection:            "NO_NETWORK_CONNECTION",
	HostNotAvailable:               "HOST_NOT_AVAILABLE",
	WrongConnection:                "WRONG_CONNECTION",
	Timeout:                        "TIMEOUT",
	IncorrectAddress:               "INCORRECT_ADDRESS",
	SSLError:                       "SSL_ERROR",
	SSLRecoverablePeerUnverified:   "SSL_RECOVERABLE_PEER_UNVERIFIED",
	Unauthorized:                   "UNAUTHORIZED",
	Forbidden:                      "FORBIDDEN",
	FileNotFound:                   "FILE_NOT_FOUND",
	Conflict:                       "CONFLICT",
	QuotaExceeded:                  "QUOTA_EXCEEDED",
	MaintenanceMode:                "MAINTENANCE_MODE",
	InstanceNotConfigured:          "INSTANCE_NOT_CONFIGURED",
	UnhandledHTTPCode:              "UNHANDLED_HTTP_CODE",
	InvalidCharacterDetectInServer: "INVALID_CHARACTER_DETECT_IN_SERVER",
	VirusDetected:                  "VIRUS_DETECTED",
	LocalFileNotFound:              "LOCAL_FILE_NOT_FOUND",
	AccountNotFound:                "ACCOUNT_NOT_FOUND",
	AccountException:               "ACCOUNT_EXCEPTION",
	Cancelled:                      "CANCELLED",
}

// Codes returns every code, in declaration order.
func Codes() []Code {
	cs := make([]Code, codeSentinel)
	for i := range cs {
		cs[i] = Code(i)
	}
	return cs
}

// String returns the upper snake case name of the code, for example
// "FILE_NOT_FOUND".
func (c Code) String() string {
	if c < 0 || c >= codeSentinel {
		return "Code(" + strconv.Itoa(int(c)) + ")"
	}
	return codeNames[c]
}

// IsOK reports whether c is one of the success codes.
func (c Code) IsOK() bool {
	return c == OK || c == OKSSL || c == OKNoSSL
}

// ParseCode returns the code named s, as produced by String.
func ParseCode(s string) (Code, bool) {
	for i, name := range codeNames {
		if name == s {
			return Code(i), true
		}
	}
	return UnknownError, false
}
