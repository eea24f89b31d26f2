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

// Package keytransform derives the AES key used to decrypt a kdbx
// container's body from the composite credential hash, the header's
// transform seed, and a cost-hardening round count.
package keytransform // import "github.com/kdbxvault/kdbx/pkg/keytransform"

import (
	"crypto/sha256"
	"sync"

	"github.com/kdbxvault/kdbx/pkg/blockcrypt"
)

// Derive computes the AES-256 key for the container body:
//
//	t := compositeHash
//	repeat rounds times: t := AES-ECB-encrypt(key=transformSeed, block=t)
//	finalKey := SHA-256(t)
//	return SHA-256(masterSeed || finalKey)
//
// The 32-byte running value is treated as two independent 16-byte blocks,
// each ground through its own ECB chain; the two chains are independent of
// each other so they run on separate goroutines.
func Derive(compositeHash, masterSeed, transformSeed [32]byte, rounds uint64) ([32]byte, error) {
	var half1, half2 [blockcrypt.BlockSize]byte
	copy(half1[:], compositeHash[:16])
	copy(half2[:], compositeHash[16:])

	var wg sync.WaitGroup
	var err1, err2 error
	wg.Add(2)
	go func() {
		defer wg.Done()
		half1, err1 = blockcrypt.GrindECB(transformSeed[:], half1, rounds)
	}()
	go func() {
		defer wg.Done()
		half2, err2 = blockcrypt.GrindECB(transformSeed[:], half2, rounds)
	}()
	wg.Wait()
	if err1 != nil {
		return [32]byte{}, err1
	}
	if err2 != nil {
		return [32]byte{}, err2
	}

	var t [32]byte
	copy(t[:16], half1[:])
	copy(t[16:], half2[:])

	finalKey := sha256.Sum256(t[:])
	combined := make([]byte, 0, 64)
	combined = append(combined, masterSeed[:]...)
	combined = append(combined, finalKey[:]...)
	return sha256.Sum256(combined), nil
}
