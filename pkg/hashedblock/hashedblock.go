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

// Package hashedblock reads and writes the self-describing sequence of
// SHA-256-authenticated blocks that wraps the plaintext payload inside a
// kdbx container.
package hashedblock // import "github.com/kdbxvault/kdbx/pkg/hashedblock"

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"io"

	"github.com/kdbxvault/kdbx/pkg/kdbxerr"
)

// BlockSize is the fixed payload size the writer emits for every block
// except possibly the last.
const BlockSize = 1 << 20

// Reader consumes a hashed-block stream, verifying each block's digest and
// presenting the concatenated payload as a plain io.Reader.
type Reader struct {
	r         io.Reader
	permissive bool
	index     uint32
	cur       bytes.Reader
	done      bool
	corrupted bool
}

// NewReader returns a reader over r that stops at the first integrity
// failure (strict mode, the default).
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// NewPermissiveReader returns a reader that continues past integrity
// failures for diagnostic purposes instead of stopping. This mode must
// never be the default and must be explicit at the call site.
func NewPermissiveReader(r io.Reader) *Reader {
	return &Reader{r: r, permissive: true}
}

// IsCorrupted reports whether any block failed its integrity check so far.
func (r *Reader) IsCorrupted() bool {
	return r.corrupted
}

func (r *Reader) Read(p []byte) (int, error) {
	for {
		if r.cur.Len() > 0 {
			return r.cur.Read(p)
		}
		if r.done {
			return 0, io.EOF
		}
		if err := r.nextBlock(); err != nil {
			return 0, err
		}
	}
}

func (r *Reader) nextBlock() error {
	var head [4 + sha256.Size + 4]byte
	if _, err := io.ReadFull(r.r, head[:]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return kdbxerr.Wrap(kdbxerr.IOFailure, err)
	}
	idx := binary.LittleEndian.Uint32(head[:4])
	var digest [sha256.Size]byte
	copy(digest[:], head[4:4+sha256.Size])
	length := binary.LittleEndian.Uint32(head[4+sha256.Size:])

	if idx != r.index {
		if r.permissive {
			r.corrupted = true
		} else {
			return kdbxerr.New(kdbxerr.IntegrityFailure, "hashed block index out of sequence")
		}
	}
	r.index++

	if length == 0 {
		r.done = true
		return nil
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r.r, payload); err != nil {
		return kdbxerr.Wrap(kdbxerr.IOFailure, err)
	}
	sum := sha256.Sum256(payload)
	if sum != digest {
		if r.permissive {
			r.corrupted = true
		} else {
			return kdbxerr.New(kdbxerr.IntegrityFailure, "hashed block digest mismatch")
		}
	}
	r.cur = *bytes.NewReader(payload)
	return nil
}

// Writer emits a hashed-block stream from sequential writes, buffering up
// to BlockSize bytes before flushing a block record. Close writes any
// partial final block followed by the zero-length terminator.
type Writer struct {
	w     io.Writer
	index uint32
	buf   []byte
	err   error
}

// NewWriter returns a writer that frames everything written to it as
// SHA-256-authenticated blocks of up to BlockSize bytes, written to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, buf: make([]byte, 0, BlockSize)}
}

func (w *Writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	n := len(p)
	for len(p) > 0 {
		room := BlockSize - len(w.buf)
		c := room
		if c > len(p) {
			c = len(p)
		}
		w.buf = append(w.buf, p[:c]...)
		p = p[c:]
		if len(w.buf) == BlockSize {
			if err := w.flush(); err != nil {
				w.err = err
				return n - len(p), err
			}
		}
	}
	return n, nil
}

func (w *Writer) flush() error {
	if len(w.buf) == 0 {
		return nil
	}
	if err := w.writeBlock(w.buf); err != nil {
		return err
	}
	w.buf = w.buf[:0]
	return nil
}

func (w *Writer) writeBlock(payload []byte) error {
	sum := sha256.Sum256(payload)
	var head [4 + sha256.Size + 4]byte
	binary.LittleEndian.PutUint32(head[:4], w.index)
	copy(head[4:4+sha256.Size], sum[:])
	binary.LittleEndian.PutUint32(head[4+sha256.Size:], uint32(len(payload)))
	w.index++
	if _, err := w.w.Write(head[:]); err != nil {
		return kdbxerr.Wrap(kdbxerr.IOFailure, err)
	}
	if _, err := w.w.Write(payload); err != nil {
		return kdbxerr.Wrap(kdbxerr.IOFailure, err)
	}
	return nil
}

// Close flushes any buffered payload and writes the zero-length terminator
// block. It does not close the underlying writer.
func (w *Writer) Close() error {
	if w.err != nil {
		return w.err
	}
	if err := w.flush(); err != nil {
		w.err = err
		return err
	}
	var head [4 + sha256.Size + 4]byte
	binary.LittleEndian.PutUint32(head[:4], w.index)
	// digest of an empty payload
	sum := sha256.Sum256(nil)
	copy(head[4:4+sha256.Size], sum[:])
	if _, err := w.w.Write(head[:]); err != nil {
		return kdbxerr.Wrap(kdbxerr.IOFailure, err)
	}
	return nil
}
