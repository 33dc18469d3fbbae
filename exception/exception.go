// Copyright 2021 The davx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package exception extracts the exception class and message from the
// small XML error documents a WebDAV server sends with 4xx responses:
//
//	<?xml version="1.0" encoding="utf-8"?>
//	<d:error xmlns:d="DAV:" xmlns:s="http://sabredav.org/ns">
//	  <s:exception>OCA\DAV\Connector\Sabre\Exception\UnsupportedMediaType</s:exception>
//	  <s:message>Virus Eicar-Test-Signature is detected in the file</s:message>
//	</d:error>
//
// Parsing is forward-only and never fails: empty, malformed, or
// unrelated input yields an empty Exception.
package exception

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

const (
	// InvalidPath is the exception class of a generic invalid path.
	InvalidPath = `OC\Connector\Sabre\Exception\InvalidPath`
	// InvalidPathUpload is the exception class of an invalid path
	// detected during upload.
	InvalidPathUpload = `OCP\Files\InvalidPathException`
	// UnsupportedMediaType is the exception class the server uses to
	// report, among other things, a virus found in an upload.
	UnsupportedMediaType = `OCA\DAV\Connector\Sabre\Exception\UnsupportedMediaType`

	davNS   = "DAV:"
	sabreNS = "http://sabredav.org/ns"
)

var errNoError = errors.New("davx/exception: no error element")

// An Exception is the exception class and message reported in a
// server error document. The zero value means no exception was found.
type Exception struct {
	Class   string
	Message string
}

// Empty reports whether neither a class nor a message was found.
func (x Exception) Empty() bool {
	return x.Class == "" && x.Message == ""
}

// IsInvalidCharacter reports whether the server rejected a path because
// of invalid characters.
func (x Exception) IsInvalidCharacter() bool {
	return strings.EqualFold(x.Class, InvalidPath) ||
		strings.EqualFold(x.Class, InvalidPathUpload)
}

// IsVirus reports whether the server rejected an upload because its
// antivirus found a virus. Both the class and the message must match.
func (x Exception) IsVirus() bool {
	return strings.EqualFold(x.Class, UnsupportedMediaType) &&
		strings.HasPrefix(x.Message, "Virus")
}

// Parse scans body for an error document. Any parse failure is logged
// at debug level on log, which may be nil, and an empty Exception is
// returned.
func Parse(body []byte, log *zap.Logger) Exception {
	x, err := parse(body)
	if err != nil {
		if log != nil {
			log.Debug("unable to parse error body", zap.Error(err), zap.Int("size", len(body)))
		}
		return Exception{}
	}
	return x
}

func parse(body []byte) (Exception, error) {
	d := xml.NewDecoder(bytes.NewReader(body))
	d.CharsetReader = charset.NewReaderLabel
	if err := seekError(d); err != nil {
		return Exception{}, err
	}
	var x Exception
	depth := 0
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return Exception{}, io.ErrUnexpectedEOF
		} else if err != nil {
			return Exception{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth != 1 || !matchNS(t.Name, sabreNS, "s") {
				continue
			}
			switch strings.ToLower(t.Name.Local) {
			case "exception":
				if x.Class, err = text(d); err != nil {
					return Exception{}, err
				}
				depth--
			case "message":
				if x.Message, err = text(d); err != nil {
					return Exception{}, err
				}
				depth--
			}
		case xml.EndElement:
			if depth == 0 {
				return x, nil
			}
			depth--
		}
	}
}

// seekError advances d past the start of the error element.
func seekError(d *xml.Decoder) error {
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return errNoError
		} else if err != nil {
			return err
		}
		if t, ok := tok.(xml.StartElement); ok {
			if strings.EqualFold(t.Name.Local, "error") && matchNS(t.Name, davNS, "d") {
				return nil
			}
		}
	}
}

// text reads the character data of the current element up to its end
// tag, skipping any nested elements.
func text(d *xml.Decoder) (string, error) {
	var sb strings.Builder
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			if depth == 0 {
				sb.Write(t)
			}
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				return strings.TrimSpace(sb.String()), nil
			}
			depth--
		}
	}
}

// matchNS reports whether n is in namespace ns. The decoder resolves
// declared prefixes to their URI; an undeclared prefix is left as is,
// so the conventional prefix is accepted too.
func matchNS(n xml.Name, ns, prefix string) bool {
	return strings.EqualFold(n.Space, ns) || strings.EqualFold(n.Space, prefix)
}
