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

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"io"

	"github.com/kdbxvault/kdbx/pkg/credential"
	"github.com/kdbxvault/kdbx/pkg/kdbxcontainer"
	"github.com/kdbxvault/kdbx/pkg/kdbxerr"
)

// EnvelopeType identifies what kind of database an envelope wraps.
type EnvelopeType int

const (
	// EnvelopeNone means the envelope carries no database (db omitted).
	EnvelopeNone EnvelopeType = 1
	// EnvelopeKdbx means the envelope's db field is a projected Database.
	EnvelopeKdbx EnvelopeType = 2
)

// envelopeRounds is the fixed round count used for every cache envelope,
// matching the reference value; cache envelopes favor fast reload over
// the cost-hardening a primary database needs.
const envelopeRounds = 128

// Envelope is a cache envelope: a JSON projection of a Database wrapped in
// its own kdbx container, used to skip the expensive key transform on
// subsequent list-style queries against the primary file.
type Envelope struct {
	Version    int
	Type       EnvelopeType
	DBFile     string // lowercase hex digest of the primary file's bytes
	KeyFile    string // lowercase hex digest of the key file's bytes, or ""
	HeaderHash string // base64 header hash of the envelope's own outer kdbx
	DB         *Database
}

type envelopeJSON struct {
	Version    int    `json:"version"`
	Type       int    `json:"type"`
	DBFile     string `json:"dbfile"`
	KeyFile    string `json:"keyfile,omitempty"`
	HeaderHash string `json:"headerhash,omitempty"`
	DB         json.RawMessage `json:"db,omitempty"`
}

// CachePassword derives a reduced-strength password suitable for use as
// the cache envelope's own credential: the first half of the input
// password's characters, or the whole string if it is shorter than 4
// characters. The primary database credential is always the full
// password.
func CachePassword(password string) string {
	chars := []rune(password)
	if len(chars) < 4 {
		return password
	}
	return string(chars[:len(chars)/2])
}

// SerializeEnvelope builds a cache envelope for db, keyed by cred, and
// encrypts it as a kdbx container.
func SerializeEnvelope(dbFileDigest, keyFileDigest []byte, db *Database, cred credential.Composite, filter Filter) ([]byte, error) {
	env := envelopeJSON{
		Version: 1,
		Type:    int(EnvelopeKdbx),
		DBFile:  hex.EncodeToString(dbFileDigest),
	}
	if keyFileDigest != nil {
		env.KeyFile = hex.EncodeToString(keyFileDigest)
	}
	if db != nil {
		proj, err := Project(db, filter)
		if err != nil {
			return nil, err
		}
		env.DB = proj
	} else {
		env.Type = int(EnvelopeNone)
	}

	// The header's digest depends only on the header's own bytes, which are
	// fixed as soon as PrepareHeader runs; compute it up front and embed it
	// in the JSON before that same header is used to write the container,
	// rather than encrypting once to learn the digest and again to produce
	// the bytes actually returned (two Encrypt calls would draw independent
	// random seeds and so never agree on a digest).
	h, err := kdbxcontainer.PrepareHeader(envelopeRounds, rand.Reader)
	if err != nil {
		return nil, err
	}
	digest := h.Digest()
	env.HeaderHash = base64.StdEncoding.EncodeToString(digest[:])

	plain, err := json.Marshal(env)
	if err != nil {
		return nil, kdbxerr.Wrap(kdbxerr.ParseFailure, err)
	}

	var buf bytes.Buffer
	if err := kdbxcontainer.EncryptWithHeader(&buf, plain, cred, h); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DeserializeEnvelope decrypts and JSON-decodes a cache envelope, verifying
// that its stored header-hash matches the outer container's own digest.
func DeserializeEnvelope(r io.Reader, cred credential.Composite) (*Envelope, error) {
	payload, err := kdbxcontainer.Decrypt(r, cred)
	if err != nil {
		return nil, err
	}
	var raw envelopeJSON
	if err := json.Unmarshal(payload.Bytes, &raw); err != nil {
		return nil, kdbxerr.Wrap(kdbxerr.ParseFailure, err)
	}

	wantHash := base64.StdEncoding.EncodeToString(payload.HeaderHash[:])
	if raw.HeaderHash != wantHash {
		return nil, kdbxerr.New(kdbxerr.IntegrityFailure, "stored header hash does not match outer container")
	}

	env := &Envelope{
		Version:    raw.Version,
		Type:       EnvelopeType(raw.Type),
		DBFile:     raw.DBFile,
		KeyFile:    raw.KeyFile,
		HeaderHash: raw.HeaderHash,
	}
	if env.Type == EnvelopeKdbx && len(raw.DB) > 0 {
		db, err := LoadProjection(raw.DB)
		if err != nil {
			return nil, err
		}
		env.DB = db
	}
	return env, nil
}
