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

// Package kdbxcontainer orchestrates the kdbx v3 binary container: header
// parsing, key derivation, CBC decryption, hashed-block framing, and
// optional GZIP decompression, in both directions.
package kdbxcontainer // import "github.com/kdbxvault/kdbx/pkg/kdbxcontainer"

import (
	"bytes"
	"crypto/rand"
	"io"
	"io/ioutil"

	"github.com/kdbxvault/kdbx/pkg/blockcrypt"
	"github.com/kdbxvault/kdbx/pkg/credential"
	"github.com/kdbxvault/kdbx/pkg/gzipio"
	"github.com/kdbxvault/kdbx/pkg/hashedblock"
	"github.com/kdbxvault/kdbx/pkg/kdbxerr"
	"github.com/kdbxvault/kdbx/pkg/kdbxheader"
	"github.com/kdbxvault/kdbx/pkg/keytransform"
)

// Payload is the result of a successful Decrypt.
type Payload struct {
	Bytes      []byte
	HeaderHash [32]byte
	Header     *kdbxheader.Header
}

// Decrypt parses, authenticates, and decrypts a kdbx v3 container.
func Decrypt(r io.Reader, cred credential.Composite) (*Payload, error) {
	h, err := kdbxheader.Parse(r)
	if err != nil {
		return nil, err
	}
	if err := h.Check(); err != nil {
		return nil, err
	}

	aesKey, err := keytransform.Derive(cred.Hash(), h.MasterSeed, h.TransformSeed, h.Rounds)
	if err != nil {
		return nil, kdbxerr.Wrap(kdbxerr.PrepareFailure, err)
	}

	cbcReader, err := blockcrypt.NewCBCReader(r, aesKey[:], h.EncryptionIV[:])
	if err != nil {
		return nil, kdbxerr.Wrap(kdbxerr.PrepareFailure, err)
	}
	plain, err := ioutil.ReadAll(cbcReader)
	if err != nil {
		return nil, kdbxerr.New(kdbxerr.BadCredential, "failed to decrypt container body")
	}
	if len(plain) < len(h.StartBytes) || !bytes.Equal(plain[:len(h.StartBytes)], h.StartBytes[:]) {
		return nil, kdbxerr.New(kdbxerr.BadCredential, "start bytes do not match header")
	}
	body := plain[len(h.StartBytes):]

	hbr := hashedblock.NewReader(bytes.NewReader(body))
	unframed, err := ioutil.ReadAll(hbr)
	if err != nil {
		return nil, err
	}
	if hbr.IsCorrupted() {
		return nil, kdbxerr.New(kdbxerr.IntegrityFailure, "hashed block stream corrupted")
	}

	out := unframed
	if h.Compression == kdbxheader.CompressionGzip {
		out, err = gzipio.Decompress(unframed)
		if err != nil {
			return nil, err
		}
	}

	return &Payload{Bytes: out, HeaderHash: h.Digest(), Header: h}, nil
}

// Encrypt builds a fresh header, derives the key, and writes an encrypted
// kdbx v3 container of plaintext to w. Compression and per-field
// protection are always NONE, matching the cache envelope's own use of
// this container; this core never emits GZIP-compressed output.
//
// Header seeds are drawn from crypto/rand.Reader. Use EncryptFrom to
// supply a different source, such as a deterministic one in tests.
func Encrypt(w io.Writer, plaintext []byte, cred credential.Composite, rounds uint64) ([32]byte, error) {
	return EncryptFrom(w, plaintext, cred, rounds, rand.Reader)
}

// EncryptFrom behaves like Encrypt but draws header seed material from src
// instead of crypto/rand.Reader.
func EncryptFrom(w io.Writer, plaintext []byte, cred credential.Composite, rounds uint64, src io.Reader) ([32]byte, error) {
	h, err := PrepareHeader(rounds, src)
	if err != nil {
		return [32]byte{}, err
	}
	if err := EncryptWithHeader(w, plaintext, cred, h); err != nil {
		return [32]byte{}, err
	}
	return h.Digest(), nil
}

// PrepareHeader builds a fresh header with seed material drawn from src and
// serializes it, so its Digest is available before any container body is
// written. A caller that must record the header hash somewhere the body
// itself depends on (the cache envelope's own JSON payload) calls this
// first, then passes the same header to EncryptWithHeader rather than
// letting Encrypt generate an independent one — two separate headers would
// produce two different digests.
func PrepareHeader(rounds uint64, src io.Reader) (*kdbxheader.Header, error) {
	h := &kdbxheader.Header{
		Compression:  kdbxheader.CompressionNone,
		StreamCipher: kdbxheader.StreamNone,
		Rounds:       rounds,
	}
	if err := randomize(h, src); err != nil {
		return nil, err
	}
	if _, err := kdbxheader.Serialize(h); err != nil {
		return nil, kdbxerr.Wrap(kdbxerr.PrepareFailure, err)
	}
	return h, nil
}

// EncryptWithHeader writes plaintext to w as a kdbx v3 container under h, a
// header already produced by PrepareHeader, instead of generating a fresh
// one of its own.
func EncryptWithHeader(w io.Writer, plaintext []byte, cred credential.Composite, h *kdbxheader.Header) error {
	raw, err := kdbxheader.Serialize(h)
	if err != nil {
		return kdbxerr.Wrap(kdbxerr.PrepareFailure, err)
	}
	if _, err := w.Write(raw); err != nil {
		return kdbxerr.Wrap(kdbxerr.IOFailure, err)
	}

	aesKey, err := keytransform.Derive(cred.Hash(), h.MasterSeed, h.TransformSeed, h.Rounds)
	if err != nil {
		return kdbxerr.Wrap(kdbxerr.PrepareFailure, err)
	}

	var framed bytes.Buffer
	hbw := hashedblock.NewWriter(&framed)
	if _, err := hbw.Write(plaintext); err != nil {
		return kdbxerr.Wrap(kdbxerr.IOFailure, err)
	}
	if err := hbw.Close(); err != nil {
		return kdbxerr.Wrap(kdbxerr.IOFailure, err)
	}

	cbcWriter, err := blockcrypt.NewCBCWriter(w, aesKey[:], h.EncryptionIV[:])
	if err != nil {
		return kdbxerr.Wrap(kdbxerr.PrepareFailure, err)
	}
	if _, err := cbcWriter.Write(h.StartBytes[:]); err != nil {
		return kdbxerr.Wrap(kdbxerr.IOFailure, err)
	}
	if _, err := cbcWriter.Write(framed.Bytes()); err != nil {
		return kdbxerr.Wrap(kdbxerr.IOFailure, err)
	}
	if err := cbcWriter.Close(); err != nil {
		return kdbxerr.Wrap(kdbxerr.IOFailure, err)
	}
	return nil
}

func randomize(h *kdbxheader.Header, src io.Reader) error {
	if _, err := io.ReadFull(src, h.MasterSeed[:]); err != nil {
		return kdbxerr.Wrap(kdbxerr.PrepareFailure, err)
	}
	if _, err := io.ReadFull(src, h.TransformSeed[:]); err != nil {
		return kdbxerr.Wrap(kdbxerr.PrepareFailure, err)
	}
	if _, err := io.ReadFull(src, h.EncryptionIV[:]); err != nil {
		return kdbxerr.Wrap(kdbxerr.PrepareFailure, err)
	}
	if _, err := io.ReadFull(src, h.ProtectionKey[:]); err != nil {
		return kdbxerr.Wrap(kdbxerr.PrepareFailure, err)
	}
	if _, err := io.ReadFull(src, h.StartBytes[:]); err != nil {
		return kdbxerr.Wrap(kdbxerr.PrepareFailure, err)
	}
	return nil
}
