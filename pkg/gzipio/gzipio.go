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

// Package gzipio decompresses an in-memory GZIP buffer, translating any
// failure (bad magic, unsupported method, truncated stream, CRC/ISIZE
// mismatch) into the container's error taxonomy instead of panicking.
package gzipio // import "github.com/kdbxvault/kdbx/pkg/gzipio"

import (
	"bytes"
	"compress/gzip"
	"io/ioutil"

	"github.com/kdbxvault/kdbx/pkg/kdbxerr"
)

// Decompress gunzips the full contents of b.
func Decompress(b []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, kdbxerr.Wrap(kdbxerr.DecompressFailure, err)
	}
	defer zr.Close()
	out, err := ioutil.ReadAll(zr)
	if err != nil {
		return nil, kdbxerr.Wrap(kdbxerr.DecompressFailure, err)
	}
	return out, nil
}

// Compress gzips b at the default compression level.
func Compress(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(b); err != nil {
		return nil, kdbxerr.Wrap(kdbxerr.DecompressFailure, err)
	}
	if err := zw.Close(); err != nil {
		return nil, kdbxerr.Wrap(kdbxerr.DecompressFailure, err)
	}
	return buf.Bytes(), nil
}
