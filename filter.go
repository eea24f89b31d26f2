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

// Filter decides what a projection includes. The zero Filter accepts
// nothing; use DefaultFilter for the "everything except passwords"
// behavior cache envelopes use.
type Filter struct {
	AcceptGroup     func(*Group) bool
	AcceptEntry     func(*Entry) bool
	AcceptHistory   bool
	AcceptTags      bool
	AcceptIcons     bool
	AcceptPasswords bool
	AcceptStringKey func(key string) bool
}

// DefaultFilter accepts every group, entry, history entry, tag, icon
// reference, and string field, but never passwords.
func DefaultFilter() Filter {
	return Filter{
		AcceptGroup:     func(*Group) bool { return true },
		AcceptEntry:     func(*Entry) bool { return true },
		AcceptHistory:   true,
		AcceptTags:      true,
		AcceptIcons:     true,
		AcceptPasswords: false,
		AcceptStringKey: func(string) bool { return true },
	}
}

func (f Filter) acceptGroup(g *Group) bool {
	if f.AcceptGroup == nil {
		return false
	}
	return f.AcceptGroup(g)
}

func (f Filter) acceptEntry(e *Entry) bool {
	if f.AcceptEntry == nil {
		return false
	}
	return f.AcceptEntry(e)
}

func (f Filter) acceptStringKey(key string) bool {
	if f.AcceptStringKey == nil {
		return false
	}
	return f.AcceptStringKey(key)
}
