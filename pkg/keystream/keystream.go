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

// Package keystream provides the Salsa20 byte stream used to decrypt
// per-field protected values. The stream is seeded once per database open
// and consumed strictly left to right as the XML is walked; there is no
// seek operation.
package keystream // import "github.com/kdbxvault/kdbx/pkg/keystream"

import (
	"crypto/sha256"

	"golang.org/x/crypto/salsa20/salsa"
)

// fixedIV is the constant 8-byte nonce every kdbx v3 reader seeds Salsa20
// with; only the key varies per database.
var fixedIV = [8]byte{0xe8, 0x30, 0x09, 0x4b, 0x97, 0x20, 0x5d, 0x2a}

const blockSize = 64

// Reader produces a monotonic Salsa20 keystream.
type Reader struct {
	key     [32]byte
	counter uint64
	buf     []byte // unconsumed tail of the most recently generated block
}

// New seeds a Reader from the header's per-field-protection key. The
// 32-byte Salsa20 key is SHA-256(fieldProtectionKey), per the container's
// key-derivation convention.
func New(fieldProtectionKey []byte) *Reader {
	r := &Reader{key: sha256.Sum256(fieldProtectionKey)}
	return r
}

// NextBytes returns the next n bytes of keystream.
func (r *Reader) NextBytes(n int) []byte {
	out := make([]byte, n)
	pos := 0
	if len(r.buf) > 0 {
		c := copy(out, r.buf)
		r.buf = r.buf[c:]
		pos = c
	}
	for pos < n {
		block := r.nextBlock()
		c := copy(out[pos:], block)
		pos += c
		if c < len(block) {
			r.buf = block[c:]
		}
	}
	return out
}

func (r *Reader) nextBlock() []byte {
	var counterBytes [16]byte
	copy(counterBytes[:8], fixedIV[:])
	putUint64LE(counterBytes[8:], r.counter)
	r.counter++

	zero := make([]byte, blockSize)
	out := make([]byte, blockSize)
	salsa.XORKeyStream(out, zero, &counterBytes, &r.key)
	return out
}

func putUint64LE(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * uint(i)))
	}
}
