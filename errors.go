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

package kdbx

import "github.com/kdbxvault/kdbx/pkg/kdbxerr"

// Error is the single error type returned by every fallible operation
// exposed by this package; every internal layer produces the same type.
type Error = kdbxerr.Error

// Kind classifies an Error.
type Kind = kdbxerr.Kind

// Error kinds, re-exported for callers that want to switch on kind without
// importing the internal kdbxerr package directly.
const (
	ErrHeaderInvalid          = kdbxerr.HeaderInvalid
	ErrUnsupportedCipher      = kdbxerr.UnsupportedCipher
	ErrUnsupportedStreamCipher = kdbxerr.UnsupportedStreamCipher
	ErrBadCredential          = kdbxerr.BadCredential
	ErrIntegrityFailure       = kdbxerr.IntegrityFailure
	ErrDecompressFailure      = kdbxerr.DecompressFailure
	ErrParseFailure           = kdbxerr.ParseFailure
	ErrKeyFileInvalid         = kdbxerr.KeyFileInvalid
	ErrEmptyDatabase          = kdbxerr.EmptyDatabase
	ErrPrepareFailure         = kdbxerr.PrepareFailure
	ErrIOFailure              = kdbxerr.IOFailure
)
