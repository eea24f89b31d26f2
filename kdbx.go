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
	"io"

	"github.com/kdbxvault/kdbx/pkg/credential"
	"github.com/kdbxvault/kdbx/pkg/kdbxcontainer"
	"github.com/kdbxvault/kdbx/pkg/kdbxerr"
	"github.com/kdbxvault/kdbx/pkg/kdbxheader"
	"github.com/kdbxvault/kdbx/pkg/keyfile"
	"github.com/kdbxvault/kdbx/pkg/keystream"
)

// buildCredential assembles the composite credential from an Options value,
// reading and parsing the key file if one was supplied.
func buildCredential(opts Options) (credential.Composite, error) {
	cred := credential.FromPassword(opts.Password)
	if opts.KeyFile != nil {
		b, err := io.ReadAll(opts.KeyFile)
		if err != nil {
			return credential.Composite{}, kdbxerr.Wrap(kdbxerr.IOFailure, err)
		}
		h, err := keyfile.Parse(b)
		if err != nil {
			return credential.Composite{}, err
		}
		cred = cred.WithKeyFile(h)
	}
	return cred, nil
}

// OpenPrimary decrypts and parses a kdbx v3 file into a Database.
func OpenPrimary(r io.Reader, opts Options) (*Database, error) {
	cred, err := buildCredential(opts)
	if err != nil {
		return nil, err
	}
	payload, err := kdbxcontainer.Decrypt(r, cred)
	if err != nil {
		return nil, err
	}

	var db *Database
	if payload.Header.StreamCipher == kdbxheader.StreamSalsa20 {
		db, err = LoadXML(payload.Bytes, keystream.New(payload.Header.ProtectionKey[:]))
	} else {
		// An untyped nil, so the cursor sees that no keystream is configured.
		db, err = LoadXML(payload.Bytes, nil)
	}
	if err != nil {
		return nil, err
	}
	if len(db.HeaderHash) > 0 && !bytes.Equal(db.HeaderHash, payload.HeaderHash[:]) {
		return nil, kdbxerr.New(kdbxerr.IntegrityFailure, "Meta/HeaderHash does not match the container header")
	}
	return db, nil
}

// DecryptKdbx authenticates and decrypts a raw kdbx v3 container, without
// interpreting its payload as an XML document.
func DecryptKdbx(r io.Reader, cred credential.Composite) (*kdbxcontainer.Payload, error) {
	return kdbxcontainer.Decrypt(r, cred)
}

// EncryptKdbx wraps plaintext in a fresh kdbx v3 container under cred,
// using opts.KeyRounds (or DefaultRounds) and opts.Rand (or
// crypto/rand.Reader) for the header's seed material.
func EncryptKdbx(plaintext []byte, cred credential.Composite, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if opts.Rand != nil {
		_, err = kdbxcontainer.EncryptFrom(&buf, plaintext, cred, opts.rounds(), opts.Rand)
	} else {
		_, err = kdbxcontainer.Encrypt(&buf, plaintext, cred, opts.rounds())
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
