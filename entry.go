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
	"strconv"

	"github.com/kdbxvault/kdbx/pkg/protectedxml"
	"github.com/kdbxvault/kdbx/pkg/uuids"
)

// Entry is one password record: a UUID, optional icon references, tags,
// a mapping of arbitrary string fields, a separately-tracked password, and
// an ordered list of historical versions of itself. History-of-history is
// always empty; only one level of history is recognized.
type Entry struct {
	UUID           uuids.UUID
	IconID         int
	HasCustomIcon  bool
	CustomIconUUID uuids.UUID
	Tags           string
	Password       Value
	Strings        map[string]Value
	History        []*Entry
}

func parseEntry(cur *protectedxml.Cursor) *Entry {
	e := &Entry{Strings: make(map[string]Value)}
	depth := cur.Depth()
	for cur.Read(depth) {
		switch {
		case cur.IsElement("UUID"):
			t, _ := cur.ReadTextInside(false)
			if u, err := uuids.ParseBase64(t.Reveal()); err == nil {
				e.UUID = u
			}
		case cur.IsElement("IconID"):
			t, _ := cur.ReadTextInside(false)
			if n, err := strconv.Atoi(t.Reveal()); err == nil {
				e.IconID = n
			}
		case cur.IsElement("CustomIconUUID"):
			t, _ := cur.ReadTextInside(false)
			if u, err := uuids.ParseBase64(t.Reveal()); err == nil {
				e.CustomIconUUID = u
				e.HasCustomIcon = true
			}
		case cur.IsElement("Tags"):
			t, _ := cur.ReadTextInside(false)
			e.Tags = t.Reveal()
		case cur.IsElement("String"):
			key, val := parseStringField(cur)
			if key == "Password" {
				e.Password = val
			} else if key != "" {
				e.Strings[key] = val
			}
		case cur.IsElement("History"):
			historyDepth := cur.Depth()
			for cur.Read(historyDepth) {
				if cur.IsElement("Entry") {
					h := parseEntry(cur)
					h.History = nil
					e.History = append(e.History, h)
				}
			}
		}
	}
	if e.Password == nil {
		e.Password = PlainValue("")
	}
	return e
}

func parseStringField(cur *protectedxml.Cursor) (key string, val Value) {
	depth := cur.Depth()
	val = PlainValue("")
	for cur.Read(depth) {
		switch {
		case cur.IsElement("Key"):
			t, _ := cur.ReadTextInside(false)
			key = t.Reveal()
		case cur.IsElement("Value"):
			t, _ := cur.ReadTextInside(true)
			if t.Protected {
				val = ProtectedValue{Cipher: t.Cipher, Keystream: t.Keystream}
			} else {
				val = PlainValue(t.Plain)
			}
		}
	}
	return key, val
}
