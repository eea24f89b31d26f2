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

// Package kdbxheader parses and serializes the bit-exact kdbx v3 header:
// two magic numbers, a version field, and a sequence of TLV records
// terminated by an end-of-header record.
package kdbxheader // import "github.com/kdbxvault/kdbx/pkg/kdbxheader"

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"io"

	"github.com/kdbxvault/kdbx/pkg/kdbxerr"
)

var magic1 = [4]byte{0x03, 0xd9, 0xa2, 0x9a}
var magic2 = [4]byte{0x67, 0xfb, 0x4b, 0xb5}

// aesCipherID is the only cipher OID recognized; every other 16-byte value
// yields UnsupportedCipher.
var aesCipherID = [16]byte{
	0x31, 0xc1, 0xf2, 0xe6, 0xbf, 0x71, 0x43, 0x50,
	0xbe, 0x58, 0x05, 0x21, 0x6a, 0xfc, 0x5a, 0xff,
}

// Compression flags.
type Compression uint32

const (
	CompressionNone Compression = 0
	CompressionGzip Compression = 1
)

// StreamCipher identifies the per-field protection algorithm.
type StreamCipher uint32

const (
	StreamNone   StreamCipher = 0
	streamRC4    StreamCipher = 1 // recognized but rejected
	StreamSalsa20 StreamCipher = 2
)

// field IDs.
const (
	fieldEndOfHeader  = 0
	fieldComment      = 1
	fieldCipherID     = 2
	fieldCompression  = 3
	fieldMasterSeed   = 4
	fieldTransformSeed = 5
	fieldRounds       = 6
	fieldEncryptionIV = 7
	fieldProtectKey   = 8
	fieldStartBytes   = 9
	fieldStreamID     = 10
)

const fileVersion = 0x00030001 // major=3, minor=1

// Header is the fully parsed kdbx v3 header.
type Header struct {
	MasterSeed        [32]byte
	TransformSeed     [32]byte
	Rounds            uint64
	EncryptionIV      [16]byte
	ProtectionKey     [32]byte
	StartBytes        [32]byte
	Compression       Compression
	StreamCipher      StreamCipher
	haveCipher        bool
	haveCompression   bool
	haveMasterSeed    bool
	haveTransformSeed bool
	haveRounds        bool
	haveIV            bool
	haveProtectKey    bool
	haveStartBytes    bool
	haveStreamID      bool

	// raw holds the exact bytes consumed while parsing (or produced while
	// serializing), used to compute Digest.
	raw []byte
}

// Digest returns SHA-256 of the header's own exact byte form, valid only
// after a successful Parse or Serialize.
func (h *Header) Digest() [32]byte {
	return sha256.Sum256(h.raw)
}

// Check ensures all mandatory fields are present and the compression/stream
// tags are recognized. Field lengths are enforced by Parse, not here.
func (h *Header) Check() error {
	switch {
	case !h.haveCipher:
		return kdbxerr.New(kdbxerr.HeaderInvalid, "missing cipher id")
	case !h.haveCompression:
		return kdbxerr.New(kdbxerr.HeaderInvalid, "missing compression flag")
	case !h.haveMasterSeed:
		return kdbxerr.New(kdbxerr.HeaderInvalid, "missing master seed")
	case !h.haveTransformSeed:
		return kdbxerr.New(kdbxerr.HeaderInvalid, "missing transform seed")
	case !h.haveRounds:
		return kdbxerr.New(kdbxerr.HeaderInvalid, "missing round count")
	case !h.haveIV:
		return kdbxerr.New(kdbxerr.HeaderInvalid, "missing encryption IV")
	case !h.haveProtectKey:
		return kdbxerr.New(kdbxerr.HeaderInvalid, "missing per-field protection key")
	case !h.haveStartBytes:
		return kdbxerr.New(kdbxerr.HeaderInvalid, "missing start bytes")
	case !h.haveStreamID:
		return kdbxerr.New(kdbxerr.HeaderInvalid, "missing per-field stream tag")
	}
	if h.Compression != CompressionNone && h.Compression != CompressionGzip {
		return kdbxerr.New(kdbxerr.HeaderInvalid, "unrecognized compression flag")
	}
	if h.StreamCipher != StreamNone && h.StreamCipher != StreamSalsa20 {
		return kdbxerr.New(kdbxerr.HeaderInvalid, "unrecognized per-field stream tag")
	}
	return nil
}

// Parse reads a header from r. A rejected cipher or per-field stream tag is
// reported with kind UnsupportedCipher/UnsupportedStreamCipher, so callers
// can distinguish it from HeaderInvalid.
func Parse(r io.Reader) (*Header, error) {
	var buf bytes.Buffer
	tr := io.TeeReader(r, &buf)

	var m1, m2 [4]byte
	if _, err := io.ReadFull(tr, m1[:]); err != nil {
		return nil, kdbxerr.Wrap(kdbxerr.HeaderInvalid, err)
	}
	if m1 != magic1 {
		return nil, kdbxerr.New(kdbxerr.HeaderInvalid, "bad magic 1")
	}
	if _, err := io.ReadFull(tr, m2[:]); err != nil {
		return nil, kdbxerr.Wrap(kdbxerr.HeaderInvalid, err)
	}
	if m2 != magic2 {
		return nil, kdbxerr.New(kdbxerr.HeaderInvalid, "bad magic 2")
	}

	var verBytes [4]byte
	if _, err := io.ReadFull(tr, verBytes[:]); err != nil {
		return nil, kdbxerr.Wrap(kdbxerr.HeaderInvalid, err)
	}
	version := binary.LittleEndian.Uint32(verBytes[:])
	if major := version >> 16; major > 3 {
		return nil, kdbxerr.New(kdbxerr.HeaderInvalid, "unsupported file format major version")
	}

	h := &Header{}
	var cipherID [16]byte
	var haveCipherID bool

	for {
		var idByte [1]byte
		if _, err := io.ReadFull(tr, idByte[:]); err != nil {
			return nil, kdbxerr.Wrap(kdbxerr.HeaderInvalid, err)
		}
		var lenBytes [2]byte
		if _, err := io.ReadFull(tr, lenBytes[:]); err != nil {
			return nil, kdbxerr.Wrap(kdbxerr.HeaderInvalid, err)
		}
		length := binary.LittleEndian.Uint16(lenBytes[:])
		value := make([]byte, length)
		if _, err := io.ReadFull(tr, value); err != nil {
			return nil, kdbxerr.Wrap(kdbxerr.HeaderInvalid, err)
		}

		switch idByte[0] {
		case fieldEndOfHeader:
			h.raw = buf.Bytes()
			if !haveCipherID {
				return nil, kdbxerr.New(kdbxerr.HeaderInvalid, "missing cipher id")
			}
			if cipherID != aesCipherID {
				return nil, kdbxerr.New(kdbxerr.UnsupportedCipher, "cipher id is not AES-256")
			}
			h.haveCipher = true
			if h.haveStreamID && h.StreamCipher != StreamNone && h.StreamCipher != StreamSalsa20 {
				return nil, kdbxerr.New(kdbxerr.UnsupportedStreamCipher, "per-field stream cipher is not NONE or SALSA20")
			}
			return h, nil
		case fieldComment:
			// ignored
		case fieldCipherID:
			if length != 16 {
				return nil, kdbxerr.New(kdbxerr.HeaderInvalid, "cipher id must be 16 bytes")
			}
			copy(cipherID[:], value)
			haveCipherID = true
		case fieldCompression:
			if length != 4 {
				return nil, kdbxerr.New(kdbxerr.HeaderInvalid, "compression flag must be 4 bytes")
			}
			h.Compression = Compression(binary.LittleEndian.Uint32(value))
			h.haveCompression = true
		case fieldMasterSeed:
			if length != 32 {
				return nil, kdbxerr.New(kdbxerr.HeaderInvalid, "master seed must be 32 bytes")
			}
			copy(h.MasterSeed[:], value)
			h.haveMasterSeed = true
		case fieldTransformSeed:
			if length != 32 {
				return nil, kdbxerr.New(kdbxerr.HeaderInvalid, "transform seed must be 32 bytes")
			}
			copy(h.TransformSeed[:], value)
			h.haveTransformSeed = true
		case fieldRounds:
			if length != 8 {
				return nil, kdbxerr.New(kdbxerr.HeaderInvalid, "round count must be 8 bytes")
			}
			h.Rounds = binary.LittleEndian.Uint64(value)
			h.haveRounds = true
		case fieldEncryptionIV:
			if length != 16 {
				return nil, kdbxerr.New(kdbxerr.HeaderInvalid, "encryption IV must be 16 bytes")
			}
			copy(h.EncryptionIV[:], value)
			h.haveIV = true
		case fieldProtectKey:
			if length != 32 {
				return nil, kdbxerr.New(kdbxerr.HeaderInvalid, "per-field protection key must be 32 bytes")
			}
			copy(h.ProtectionKey[:], value)
			h.haveProtectKey = true
		case fieldStartBytes:
			if length != 32 {
				return nil, kdbxerr.New(kdbxerr.HeaderInvalid, "start bytes must be 32 bytes")
			}
			copy(h.StartBytes[:], value)
			h.haveStartBytes = true
		case fieldStreamID:
			if length != 4 {
				return nil, kdbxerr.New(kdbxerr.HeaderInvalid, "per-field stream tag must be 4 bytes")
			}
			tag := StreamCipher(binary.LittleEndian.Uint32(value))
			if tag == streamRC4 {
				return nil, kdbxerr.New(kdbxerr.UnsupportedStreamCipher, "RC4 per-field stream is not supported")
			}
			h.StreamCipher = tag
			h.haveStreamID = true
		default:
			// unrecognized field IDs are ignored, matching the format's
			// own forward-compatibility convention
		}
	}
}

// Serialize returns h's TLV form and records h.raw / h.Digest.
func Serialize(h *Header) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(magic1[:])
	buf.Write(magic2[:])
	var verBytes [4]byte
	binary.LittleEndian.PutUint32(verBytes[:], fileVersion)
	buf.Write(verBytes[:])

	writeField(&buf, fieldCipherID, aesCipherID[:])
	writeField(&buf, fieldCompression, le32(uint32(h.Compression)))
	writeField(&buf, fieldMasterSeed, h.MasterSeed[:])
	writeField(&buf, fieldTransformSeed, h.TransformSeed[:])
	writeField(&buf, fieldRounds, le64(h.Rounds))
	writeField(&buf, fieldEncryptionIV, h.EncryptionIV[:])
	writeField(&buf, fieldProtectKey, h.ProtectionKey[:])
	writeField(&buf, fieldStartBytes, h.StartBytes[:])
	writeField(&buf, fieldStreamID, le32(uint32(h.StreamCipher)))
	writeField(&buf, fieldEndOfHeader, nil)

	h.raw = buf.Bytes()
	h.haveCipher = true
	h.haveCompression = true
	h.haveMasterSeed = true
	h.haveTransformSeed = true
	h.haveRounds = true
	h.haveIV = true
	h.haveProtectKey = true
	h.haveStartBytes = true
	h.haveStreamID = true
	return h.raw, nil
}

func writeField(buf *bytes.Buffer, id byte, value []byte) {
	buf.WriteByte(id)
	var lenBytes [2]byte
	binary.LittleEndian.PutUint16(lenBytes[:], uint16(len(value)))
	buf.Write(lenBytes[:])
	buf.Write(value)
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func le64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}
