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

// Package credential composes the hashes of one or more key sources
// (password, key file) into the single 32-byte secret C8's key transform
// consumes.
package credential // import "github.com/kdbxvault/kdbx/pkg/credential"

import "crypto/sha256"

// Composite is an ordered list of 32-byte secrets.
type Composite struct {
	members [][32]byte
}

// Add appends a member hash to the composite.
func (c *Composite) Add(h [32]byte) {
	c.members = append(c.members, h)
}

// Len reports the number of members so far.
func (c *Composite) Len() int {
	return len(c.members)
}

// Hash returns SHA-256 of the concatenation of every member hash, in the
// order they were added.
func (c *Composite) Hash() [32]byte {
	h := sha256.New()
	for _, m := range c.members {
		h.Write(m[:])
	}
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// FromPassword builds a single-member composite from a UTF-8 password,
// hashed with SHA-256.
func FromPassword(password string) Composite {
	var c Composite
	c.Add(sha256.Sum256([]byte(password)))
	return c
}

// WithKeyFile returns a copy of c with an additional member hash appended,
// as produced by pkg/keyfile.
func (c Composite) WithKeyFile(keyHash [32]byte) Composite {
	c.Add(keyHash)
	return c
}
