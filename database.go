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

// Package kdbx opens and models KeePass 2.x kdbx v3 password databases,
// and reads/writes a sanitized cache envelope built on the same container
// format. It never writes the primary kdbx format; only the cache
// envelope is writable.
package kdbx // import "github.com/kdbxvault/kdbx"

import (
	"bytes"
	"encoding/base64"

	"github.com/kdbxvault/kdbx/pkg/kdbxerr"
	"github.com/kdbxvault/kdbx/pkg/protectedxml"
	"github.com/kdbxvault/kdbx/pkg/uuids"
)

// Database is the in-memory model of a kdbx document: its name, any
// custom icon images, and the top-level groups of its hierarchy.
type Database struct {
	Name        string
	CustomIcons map[uuids.UUID][]byte
	Groups      []*Group

	// HeaderHash is the value recorded in Meta/HeaderHash, consumed during
	// load-time verification against the outer container's own digest.
	HeaderHash []byte
}

// LoadXML parses the decrypted KeePassFile document in r, decrypting
// protected fields with ks (which may be nil if the container's per-field
// stream tag is NONE).
func LoadXML(r []byte, ks protectedxml.Keystream) (*Database, error) {
	cur := protectedxml.New(bytes.NewReader(r), ks)
	if !cur.Read(0) || !cur.IsElement("KeePassFile") {
		return nil, kdbxerr.New(kdbxerr.ParseFailure, "missing KeePassFile root element")
	}
	rootDepth := cur.Depth()

	db := &Database{CustomIcons: make(map[uuids.UUID][]byte)}
	for cur.Read(rootDepth) {
		switch {
		case cur.IsElement("Meta"):
			parseMeta(cur, db)
		case cur.IsElement("Root"):
			parseRootElement(cur, db)
		}
	}

	if db.Name == "" && len(db.Groups) == 0 {
		return nil, kdbxerr.New(kdbxerr.EmptyDatabase, "database has neither a name nor any groups")
	}
	return db, nil
}

func parseMeta(cur *protectedxml.Cursor, db *Database) {
	depth := cur.Depth()
	for cur.Read(depth) {
		switch {
		case cur.IsElement("HeaderHash"):
			t, _ := cur.ReadTextInside(false)
			if b, err := base64.StdEncoding.DecodeString(t.Reveal()); err == nil {
				db.HeaderHash = b
			}
		case cur.IsElement("DatabaseName"):
			t, _ := cur.ReadTextInside(false)
			db.Name = t.Reveal()
		case cur.IsElement("CustomIcons"):
			parseCustomIcons(cur, db)
		}
	}
}

func parseCustomIcons(cur *protectedxml.Cursor, db *Database) {
	depth := cur.Depth()
	for cur.Read(depth) {
		if !cur.IsElement("Icon") {
			continue
		}
		iconDepth := cur.Depth()
		var id uuids.UUID
		var data []byte
		for cur.Read(iconDepth) {
			switch {
			case cur.IsElement("UUID"):
				t, _ := cur.ReadTextInside(false)
				if u, err := uuids.ParseBase64(t.Reveal()); err == nil {
					id = u
				}
			case cur.IsElement("Data"):
				t, _ := cur.ReadTextInside(false)
				if b, err := base64.StdEncoding.DecodeString(t.Reveal()); err == nil {
					data = b
				}
			}
		}
		db.CustomIcons[id] = data
	}
}

func parseRootElement(cur *protectedxml.Cursor, db *Database) {
	depth := cur.Depth()
	for cur.Read(depth) {
		if cur.IsElement("Group") {
			db.Groups = append(db.Groups, parseGroup(cur))
		}
	}
}

// GetPassword performs a depth-first search of the group hierarchy and
// returns the first matching entry's revealed password.
func (db *Database) GetPassword(id uuids.UUID) (string, bool) {
	for _, g := range db.Groups {
		if e := findEntry(g, id); e != nil {
			return e.Password.Reveal(), true
		}
	}
	return "", false
}

func findEntry(g *Group, id uuids.UUID) *Entry {
	for _, e := range g.Entries {
		if e.UUID == id {
			return e
		}
	}
	for _, sub := range g.Groups {
		if e := findEntry(sub, id); e != nil {
			return e
		}
	}
	return nil
}
