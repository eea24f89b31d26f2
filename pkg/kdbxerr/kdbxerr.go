// Copyright 2016 The Sandpass Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package kdbxerr defines the error kinds shared across every layer of the
// container, so that a caller can test for a single failure taxonomy
// regardless of which package raised it.
package kdbxerr // import "github.com/kdbxvault/kdbx/pkg/kdbxerr"

import "fmt"

// Kind classifies a failure from the container.
type Kind int

const (
	// HeaderInvalid means the header is malformed or missing a required field.
	HeaderInvalid Kind = iota + 1
	// UnsupportedCipher means the header names a cipher other than AES-256.
	UnsupportedCipher
	// UnsupportedStreamCipher means the header names a per-field stream
	// cipher other than NONE or SALSA20.
	UnsupportedStreamCipher
	// BadCredential means the supplied credential failed to recover the
	// start-bytes canary.
	BadCredential
	// IntegrityFailure means a hashed block, header digest, or cache
	// envelope header-hash did not match its expected value.
	IntegrityFailure
	// DecompressFailure means the GZIP payload was malformed.
	DecompressFailure
	// ParseFailure means the decrypted payload was not valid XML or JSON.
	ParseFailure
	// KeyFileInvalid means a key file did not match any recognized form.
	KeyFileInvalid
	// EmptyDatabase means a projection carried neither a name nor groups.
	EmptyDatabase
	// PrepareFailure means randomness was unavailable or a generated seed
	// had the wrong size.
	PrepareFailure
	// IOFailure wraps an underlying I/O error from a reader or writer.
	IOFailure
)

func (k Kind) String() string {
	switch k {
	case HeaderInvalid:
		return "HeaderInvalid"
	case UnsupportedCipher:
		return "UnsupportedCipher"
	case UnsupportedStreamCipher:
		return "UnsupportedStreamCipher"
	case BadCredential:
		return "BadCredential"
	case IntegrityFailure:
		return "IntegrityFailure"
	case DecompressFailure:
		return "DecompressFailure"
	case ParseFailure:
		return "ParseFailure"
	case KeyFileInvalid:
		return "KeyFileInvalid"
	case EmptyDatabase:
		return "EmptyDatabase"
	case PrepareFailure:
		return "PrepareFailure"
	case IOFailure:
		return "IOFailure"
	default:
		return "Unknown"
	}
}

// Error is the single error type returned by every fallible operation in
// the container. It carries a Kind plus a short human-readable reason and
// never includes secret material.
type Error struct {
	Kind   Kind
	Reason string
	err    error // wrapped cause, if any
}

// New creates an Error of the given kind with a reason string.
func New(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

// Wrap creates an Error of the given kind that wraps an underlying error.
// The underlying error's text becomes the reason.
func Wrap(kind Kind, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Reason: err.Error(), err: err}
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Unwrap exposes the underlying cause, if one was attached via Wrap, so
// callers can use errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.err
}

// Is reports whether target is an *Error with the same Kind, so that
// errors.Is(err, kdbxerr.New(kdbxerr.BadCredential, "")) works as a kind test.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}
