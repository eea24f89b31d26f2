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

// Package blockcrypt provides the AES-256 block primitives used by the
// container: CBC encryption/decryption with PKCS#7 padding, and the
// ECB "grind" used to cost-harden a key.
package blockcrypt // import "github.com/kdbxvault/kdbx/pkg/blockcrypt"

import (
	"crypto/aes"
	"crypto/cipher"
	"io"

	"github.com/kdbxvault/kdbx/pkg/cipherio"
	"github.com/kdbxvault/kdbx/pkg/padding"
)

// KeySize is the AES-256 key size in bytes.
const KeySize = 32

// BlockSize is the AES block size in bytes.
const BlockSize = aes.BlockSize

// NewCBCReader returns a reader that decrypts r with AES-256-CBC under key
// and iv, stripping PKCS#7 padding at end of stream.
func NewCBCReader(r io.Reader, key, iv []byte) (io.Reader, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	mode := cipher.NewCBCDecrypter(block, iv)
	return cipherio.NewReader(r, mode, padding.PKCS7), nil
}

// NewCBCWriter returns a writer that encrypts writes with AES-256-CBC under
// key and iv, appending PKCS#7 padding when closed.
func NewCBCWriter(w io.Writer, key, iv []byte) (io.WriteCloser, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	mode := cipher.NewCBCEncrypter(block, iv)
	return cipherio.NewWriter(w, mode, padding.PKCS7), nil
}

// GrindECB repeatedly AES-ECB-encrypts a 16-byte block under key, rounds
// times, feeding each round's output back in as the next round's input.
// It is used to cost-harden half of a composite key during transform.
func GrindECB(key []byte, block [BlockSize]byte, rounds uint64) ([BlockSize]byte, error) {
	c, err := aes.NewCipher(key)
	if err != nil {
		return [BlockSize]byte{}, err
	}
	b := block
	for i := uint64(0); i < rounds; i++ {
		c.Encrypt(b[:], b[:])
	}
	return b, nil
}
