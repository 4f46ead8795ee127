// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package exc

import (
	"fmt"

	"gopkg.microglot.org/inputseq.go/internal/syntax"
)

type Exception interface {
	error
	Code() string
	Message() string
	Location() Location
}

// Location identifies where an exception occurred. URI is empty for a single
// compiled string and names the source (a census cell and field, a schema
// file) when exceptions from several inputs are aggregated.
type Location struct {
	syntax.Location
	URI string
}

type exc struct {
	code     string
	message  string
	location Location
}

func (e *exc) Error() string {
	if e.location.URI != "" {
		return fmt.Sprintf("%s:%d -- %s: %s", e.location.URI, e.location.Column(), e.code, e.message)
	}
	return fmt.Sprintf("position %d -- %s: %s", e.location.Column(), e.code, e.message)
}

func (e *exc) Code() string {
	return e.code
}

func (e *exc) Message() string {
	return e.message
}

func (e *exc) Location() Location {
	return e.location
}

type excUnwrap struct {
	Exception
	cause error
}

func (e *excUnwrap) Unwrap() error {
	return e.cause
}

func New(location Location, code string, message string) Exception {
	return &exc{
		location: location,
		message:  message,
		code:     code,
	}
}

func Wrap(location Location, code string, err error) Exception {
	if err == nil {
		return nil
	}
	if e, ok := err.(Exception); ok {
		return &excUnwrap{
			Exception: New(location, code, e.Message()),
			cause:     e,
		}
	}
	return &excUnwrap{
		cause:     err,
		Exception: New(location, code, err.Error()),
	}
}

func WrapUnknown(location Location, err error) Exception {
	return Wrap(location, CodeUnknownFatal, err)
}

// Relocate returns e with its URI replaced. It is used to attribute
// exceptions from one compilation to a named source.
func Relocate(e Exception, uri string) Exception {
	loc := e.Location()
	loc.URI = uri
	return &excUnwrap{
		Exception: New(loc, e.Code(), e.Message()),
		cause:     e,
	}
}
