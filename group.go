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

// Group is a named container of child groups and entries. Children are
// owned downward only; no back-pointer to the parent group is kept, since
// no read path in this package needs one.
type Group struct {
	UUID           uuids.UUID
	Name           string
	IconID         int
	HasCustomIcon  bool
	CustomIconUUID uuids.UUID
	Groups         []*Group
	Entries        []*Entry
}

func parseGroup(cur *protectedxml.Cursor) *Group {
	g := &Group{}
	depth := cur.Depth()
	for cur.Read(depth) {
		switch {
		case cur.IsElement("UUID"):
			t, _ := cur.ReadTextInside(false)
			if u, err := uuids.ParseBase64(t.Reveal()); err == nil {
				g.UUID = u
			}
		case cur.IsElement("Name"):
			t, _ := cur.ReadTextInside(false)
			g.Name = t.Reveal()
		case cur.IsElement("IconID"):
			t, _ := cur.ReadTextInside(false)
			if n, err := strconv.Atoi(t.Reveal()); err == nil {
				g.IconID = n
			}
		case cur.IsElement("CustomIconUUID"):
			t, _ := cur.ReadTextInside(false)
			if u, err := uuids.ParseBase64(t.Reveal()); err == nil {
				g.CustomIconUUID = u
				g.HasCustomIcon = true
			}
		case cur.IsElement("Group"):
			g.Groups = append(g.Groups, parseGroup(cur))
		case cur.IsElement("Entry"):
			g.Entries = append(g.Entries, parseEntry(cur))
		}
	}
	return g
}
