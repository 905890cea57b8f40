// Copyright 2025 The Rivaas Authors
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

package generator

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

type elementKind uint8

const (
	elementNone elementKind = iota
	elementID
	elementAttrs
)

// Element is what a URL is generated for: an id, a set of attributes, or
// nothing at all.
type Element struct {
	kind  elementKind
	id    any
	attrs map[string]any
}

// None is the empty element, used for routes without fields.
var None = Element{}

// ID returns an element identified by its primary key.
func ID(id any) Element {
	if id == nil {
		return None
	}

	return Element{kind: elementID, id: id}
}

// Attrs returns an element described by attributes. Relationship fields are
// looked up by their dotted path, e.g. "category.slug".
func Attrs(attrs map[string]any) Element {
	if attrs == nil {
		return None
	}

	return Element{kind: elementAttrs, attrs: maps.Clone(attrs)}
}

// IsNone reports whether the element carries nothing.
func (e Element) IsNone() bool {
	return e.kind == elementNone
}

// ID returns the element id. For attribute elements it is the value stored
// under primary, if any.
func (e Element) ID(primary string) (any, bool) {
	switch e.kind {
	case elementID:
		return e.id, true
	case elementAttrs:
		v, ok := e.attrs[primary]
		return v, ok && v != nil
	default:
		return nil, false
	}
}

// Attr returns an attribute value.
func (e Element) Attr(name string) (any, bool) {
	if e.kind != elementAttrs {
		return nil, false
	}
	v, ok := e.attrs[name]

	return v, ok && v != nil
}

// Attrs returns a copy of the attributes, nil for other elements.
func (e Element) Attrs() map[string]any {
	return maps.Clone(e.attrs)
}

// Key returns an unambiguous encoding of the element: keys and values are
// quoted and carry their dynamic type, so distinct elements never share a
// key.
func (e Element) Key() string {
	var b strings.Builder
	switch e.kind {
	case elementID:
		b.WriteString("id:")
		writeValue(&b, e.id)
	case elementAttrs:
		b.WriteString("attrs:")
		for _, k := range slices.Sorted(maps.Keys(e.attrs)) {
			b.WriteString(strconv.Quote(k))
			b.WriteByte('=')
			writeValue(&b, e.attrs[k])
			b.WriteByte(';')
		}
	default:
		b.WriteString("none")
	}

	return b.String()
}

func writeValue(b *strings.Builder, v any) {
	fmt.Fprintf(b, "%T:%s", v, strconv.Quote(cast.ToString(v)))
}

// String returns a readable representation for logs and errors.
func (e Element) String() string {
	switch e.kind {
	case elementID:
		return "id:" + cast.ToString(e.id)
	case elementAttrs:
		keys := slices.Sorted(maps.Keys(e.attrs))
		var b strings.Builder
		b.WriteString("attrs:")
		for i, k := range keys {
			if i > 0 {
				b.WriteByte('&')
			}
			fmt.Fprintf(&b, "%s=%v", k, e.attrs[k])
		}
		return b.String()
	default:
		return "none"
	}
}
