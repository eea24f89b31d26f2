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

import "io"

// DefaultRounds is the round count used when Options.KeyRounds is zero.
const DefaultRounds = 60000

// Options configures OpenPrimary and EncryptKdbx. The zero Options is valid and opens
// with an empty password and no key file.
type Options struct {
	// Password is the user-supplied textual password. May be empty if a
	// KeyFile is supplied instead.
	Password string

	// KeyFile, if non-nil, is read in full and parsed by pkg/keyfile to
	// contribute an additional composite-key member.
	KeyFile io.Reader

	// Rand is the source of randomness for Encrypt's fresh seeds. If nil,
	// crypto/rand.Reader is used.
	Rand io.Reader

	// KeyRounds is the cost-hardening round count passed to the key
	// transform during Encrypt. If zero, DefaultRounds is used.
	KeyRounds uint64
}

func (o Options) rounds() uint64 {
	if o.KeyRounds == 0 {
		return DefaultRounds
	}
	return o.KeyRounds
}
