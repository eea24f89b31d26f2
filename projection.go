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
	"encoding/json"

	"github.com/kdbxvault/kdbx/pkg/kdbxerr"
	"github.com/kdbxvault/kdbx/pkg/uuids"
)

// currentProjectionVersion is the only version this package produces.
// Version 0 is still accepted on load (see loadEntryProjection).
const currentProjectionVersion = 1

type entryProjection struct {
	UUID         string            `json:"uuid,omitempty"`
	Icon         int               `json:"icon,omitempty"`
	Tags         string            `json:"tags,omitempty"`
	Password     string            `json:"password,omitempty"`
	StringFields map[string]string `json:"StringFields,omitempty"`
	History      []entryProjection `json:"history,omitempty"`

	// Version 0 flattened these three keys at the top level instead of
	// nesting them under StringFields. Loaders must accept both.
	Title    string `json:"title,omitempty"`
	Username string `json:"username,omitempty"`
	URL      string `json:"url,omitempty"`
}

type groupProjection struct {
	UUID    string            `json:"uuid,omitempty"`
	Name    string            `json:"name,omitempty"`
	Icon    int               `json:"icon,omitempty"`
	Groups  []groupProjection `json:"groups,omitempty"`
	Entries []entryProjection `json:"entries,omitempty"`
}

type databaseProjection struct {
	Version int               `json:"version"`
	Name    string            `json:"name,omitempty"`
	Groups  []groupProjection `json:"groups,omitempty"`
}

// Project renders db as a JSON-ready projection under filter. The result
// always carries the current projection version.
func Project(db *Database, filter Filter) ([]byte, error) {
	p := databaseProjection{Version: currentProjectionVersion, Name: db.Name}
	for _, g := range db.Groups {
		if gp, ok := projectGroup(g, filter); ok {
			p.Groups = append(p.Groups, gp)
		}
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, kdbxerr.Wrap(kdbxerr.ParseFailure, err)
	}
	return b, nil
}

func projectGroup(g *Group, filter Filter) (groupProjection, bool) {
	if !filter.acceptGroup(g) {
		return groupProjection{}, false
	}
	gp := groupProjection{UUID: g.UUID.Base64(), Name: g.Name}
	if filter.AcceptIcons {
		gp.Icon = g.IconID
	}
	for _, sub := range g.Groups {
		if sp, ok := projectGroup(sub, filter); ok {
			gp.Groups = append(gp.Groups, sp)
		}
	}
	for _, e := range g.Entries {
		if ep, ok := projectEntry(e, filter); ok {
			gp.Entries = append(gp.Entries, ep)
		}
	}
	return gp, true
}

func projectEntry(e *Entry, filter Filter) (entryProjection, bool) {
	if !filter.acceptEntry(e) {
		return entryProjection{}, false
	}
	ep := entryProjection{UUID: e.UUID.Base64(), StringFields: make(map[string]string)}
	if filter.AcceptIcons {
		ep.Icon = e.IconID
	}
	if filter.AcceptTags {
		ep.Tags = e.Tags
	}
	if filter.AcceptPasswords && e.Password != nil {
		ep.Password = e.Password.Reveal()
	}
	for k, v := range e.Strings {
		if filter.acceptStringKey(k) {
			ep.StringFields[k] = v.Reveal()
		}
	}
	if len(ep.StringFields) == 0 {
		ep.StringFields = nil
	}
	if filter.AcceptHistory {
		for _, h := range e.History {
			if hp, ok := projectEntry(h, filter); ok {
				ep.History = append(ep.History, hp)
			}
		}
	}
	return ep, true
}

// LoadProjection reconstructs a Database from JSON produced by Project, or
// from the earlier (version 0) flattened shape.
func LoadProjection(b []byte) (*Database, error) {
	var p databaseProjection
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, kdbxerr.Wrap(kdbxerr.ParseFailure, err)
	}
	if p.Name == "" && len(p.Groups) == 0 {
		return nil, kdbxerr.New(kdbxerr.EmptyDatabase, "projection has neither a name nor any groups")
	}
	db := &Database{Name: p.Name, CustomIcons: make(map[uuids.UUID][]byte)}
	for _, gp := range p.Groups {
		db.Groups = append(db.Groups, loadGroupProjection(gp, p.Version))
	}
	return db, nil
}

func loadGroupProjection(gp groupProjection, version int) *Group {
	g := &Group{Name: gp.Name, IconID: gp.Icon}
	if u, err := uuids.ParseBase64(gp.UUID); err == nil {
		g.UUID = u
	}
	for _, sub := range gp.Groups {
		g.Groups = append(g.Groups, loadGroupProjection(sub, version))
	}
	for _, ep := range gp.Entries {
		g.Entries = append(g.Entries, loadEntryProjection(ep, version))
	}
	return g
}

func loadEntryProjection(ep entryProjection, version int) *Entry {
	e := &Entry{IconID: ep.Icon, Tags: ep.Tags, Strings: make(map[string]Value)}
	if u, err := uuids.ParseBase64(ep.UUID); err == nil {
		e.UUID = u
	}
	if ep.Password != "" {
		e.Password = PlainValue(ep.Password)
	} else {
		e.Password = PlainValue("")
	}
	if version == 0 {
		if ep.Title != "" {
			e.Strings["Title"] = PlainValue(ep.Title)
		}
		if ep.Username != "" {
			e.Strings["UserName"] = PlainValue(ep.Username)
		}
		if ep.URL != "" {
			e.Strings["URL"] = PlainValue(ep.URL)
		}
	}
	for k, v := range ep.StringFields {
		e.Strings[k] = PlainValue(v)
	}
	for _, hp := range ep.History {
		e.History = append(e.History, loadEntryProjection(hp, version))
	}
	return e
}
