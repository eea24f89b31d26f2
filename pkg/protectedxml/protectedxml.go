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

// Package protectedxml is a small depth-aware cursor over a UTF-8 XML
// document, driven by its own state machine rather than encoding/xml's
// struct-tag unmarshaling, so that per-field protected values can be
// decrypted on demand as the document is walked in strict order. The
// keystream is monotonic, so the walk must never reshuffle into a DOM.
package protectedxml // import "github.com/kdbxvault/kdbx/pkg/protectedxml"

import (
	"encoding/base64"
	"encoding/xml"
	"io"
	"strings"

	"github.com/kdbxvault/kdbx/pkg/kdbxerr"
)

// Keystream supplies sequential bytes for decrypting protected values.
type Keystream interface {
	NextBytes(n int) []byte
}

type state int

const (
	goOn state = iota
	stop
	doNotRead
)

// Cursor walks an XML document in document order, tracking nesting depth
// and exposing just enough surface to reconstruct a kdbx entry tree:
// Read to descend to the next child element, IsElement to test its name,
// and ReadTextInside to pull (and possibly decrypt) its text content.
type Cursor struct {
	dec   *xml.Decoder
	ks    Keystream
	depth int
	st    state
	tok   xml.StartElement
}

// New creates a cursor over r. ks may be nil, meaning no per-field
// keystream is configured (as when the header's stream tag is NONE).
func New(r io.Reader, ks Keystream) *Cursor {
	return &Cursor{dec: xml.NewDecoder(r), ks: ks, st: goOn}
}

// Depth reports the nesting depth of the element the cursor currently sits
// on (valid only immediately after Read returns true).
func (c *Cursor) Depth() int {
	return c.depth
}

// Read advances to the next ELEMENT node whose depth is strictly greater
// than parentDepth, skipping text, comments, and closing tags at this
// layer. It returns false once the enclosing element's own end tag (or the
// end of the document) is reached.
func (c *Cursor) Read(parentDepth int) bool {
	if c.st == doNotRead {
		c.st = goOn
		return c.depth > parentDepth
	}
	if c.st == stop {
		return false
	}
	for {
		tok, err := c.dec.Token()
		if err != nil {
			c.st = stop
			return false
		}
		switch t := tok.(type) {
		case xml.StartElement:
			c.depth++
			c.tok = t
			if c.depth > parentDepth {
				return true
			}
		case xml.EndElement:
			c.depth--
			if c.depth <= parentDepth {
				return false
			}
		}
	}
}

// IsElement reports whether the cursor's current element has the given
// name, compared case-insensitively, namespace ignored.
func (c *Cursor) IsElement(name string) bool {
	return strings.EqualFold(c.tok.Name.Local, name)
}

// Attr returns the value of the named attribute on the current element,
// and whether it was present.
func (c *Cursor) Attr(name string) (string, bool) {
	for _, a := range c.tok.Attr {
		if strings.EqualFold(a.Name.Local, name) {
			return a.Value, true
		}
	}
	return "", false
}

// Text is the result of ReadTextInside: either a cleartext string, or a
// protected value's ciphertext paired with the exact keystream slice that
// was consumed to (potentially) decrypt it.
type Text struct {
	Protected bool
	Plain     string
	Cipher    []byte
	Keystream []byte
}

// Reveal XORs Cipher and Keystream to recover the plaintext of a protected
// Text. It is a no-op (returning Plain) for a non-protected Text.
func (t Text) Reveal() string {
	if !t.Protected {
		return t.Plain
	}
	out := make([]byte, len(t.Cipher))
	for i := range out {
		out[i] = t.Cipher[i] ^ t.Keystream[i]
	}
	return string(out)
}

// ReadTextInside reads the current element's first child if it is a TEXT
// node. If the element carries attribute Protected="True" and protectedOK
// is true, the text is base64-decoded and that many bytes are consumed
// from the keystream; an empty protected value consumes no keystream. If
// no keystream is configured, the raw decoded bytes are returned as
// cleartext instead (a conservative permissive fallback) — callers must
// gate protectedOK on whether that fallback is acceptable in context.
func (c *Cursor) ReadTextInside(protectedOK bool) (Text, error) {
	protectedAttr, _ := c.Attr("Protected")
	protected := protectedOK && strings.EqualFold(protectedAttr, "true")

	tok, err := c.dec.Token()
	if err != nil {
		return Text{}, kdbxerr.Wrap(kdbxerr.ParseFailure, err)
	}

	var raw string
	switch t := tok.(type) {
	case xml.CharData:
		raw = string(t)
		end, err := c.dec.Token()
		if err != nil {
			return Text{}, kdbxerr.Wrap(kdbxerr.ParseFailure, err)
		}
		if _, ok := end.(xml.EndElement); !ok {
			return Text{}, kdbxerr.New(kdbxerr.ParseFailure, "expected closing tag after text node")
		}
		c.depth--
	case xml.EndElement:
		raw = ""
		c.depth--
	case xml.StartElement:
		// The element has nested children rather than a text node; leave
		// it for the next Read call instead of consuming it here.
		c.depth++
		c.tok = t
		c.st = doNotRead
		return Text{}, nil
	default:
		return Text{}, kdbxerr.New(kdbxerr.ParseFailure, "unexpected node inside element")
	}

	if !protected {
		return Text{Plain: raw}, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return Text{}, kdbxerr.Wrap(kdbxerr.ParseFailure, err)
	}
	if len(decoded) == 0 {
		return Text{Protected: true}, nil
	}
	if c.ks == nil {
		// permissive fallback: no keystream configured, hand back cleartext
		return Text{Plain: string(decoded)}, nil
	}
	return Text{
		Protected: true,
		Cipher:    decoded,
		Keystream: c.ks.NextBytes(len(decoded)),
	}, nil
}
