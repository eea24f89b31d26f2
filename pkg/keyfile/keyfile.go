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

// Package keyfile recognizes the three key-file forms a kdbx credential
// may be augmented with: an XML wrapper, a raw 32-byte binary file, or a
// 64-character hex file.
package keyfile // import "github.com/kdbxvault/kdbx/pkg/keyfile"

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/xml"

	"github.com/kdbxvault/kdbx/pkg/kdbxerr"
)

type xmlKeyFile struct {
	XMLName xml.Name `xml:"KeyFile"`
	Key     struct {
		Data string `xml:"Data"`
	} `xml:"Key"`
}

// Parse recognizes b as an XML, binary, or hex key file, in that order,
// and returns its 32-byte secret. The first form that matches wins.
func Parse(b []byte) ([32]byte, error) {
	if h, ok := parseXML(b); ok {
		return h, nil
	}
	if h, ok := parseBinary(b); ok {
		return h, nil
	}
	if h, ok := parseHex(b); ok {
		return h, nil
	}
	return [32]byte{}, kdbxerr.New(kdbxerr.KeyFileInvalid, "key file did not match XML, binary, or hex form")
}

func parseXML(b []byte) ([32]byte, bool) {
	var kf xmlKeyFile
	if err := xml.Unmarshal(b, &kf); err != nil {
		return [32]byte{}, false
	}
	data, err := base64.StdEncoding.DecodeString(kf.Key.Data)
	if err != nil || len(data) != 32 {
		return [32]byte{}, false
	}
	var h [32]byte
	copy(h[:], data)
	return h, true
}

func parseBinary(b []byte) ([32]byte, bool) {
	if len(b) != 32 {
		return [32]byte{}, false
	}
	var h [32]byte
	copy(h[:], b)
	return h, true
}

func parseHex(b []byte) ([32]byte, bool) {
	if len(b) != 64 {
		return [32]byte{}, false
	}
	decoded := make([]byte, 32)
	if _, err := hex.Decode(decoded, b); err != nil {
		return [32]byte{}, false
	}
	var h [32]byte
	copy(h[:], decoded)
	return h, true
}
