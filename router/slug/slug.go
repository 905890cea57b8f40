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

package slug

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// DefaultScripts are the extended scripts kept when no script is configured.
var DefaultScripts = []string{"Cyrillic", "Han"}

// Normalizer turns values into slugs. It is immutable and safe for
// concurrent use.
type Normalizer struct {
	scripts []*unicode.RangeTable
}

// Option configures a Normalizer.
type Option func(*Normalizer) error

// WithScripts replaces the extended scripts. Names are Unicode script names
// as found in [unicode.Scripts], e.g. "Greek" or "Arabic".
func WithScripts(names ...string) Option {
	return func(n *Normalizer) error {
		tables := make([]*unicode.RangeTable, 0, len(names))
		for _, name := range names {
			table, ok := unicode.Scripts[name]
			if !ok {
				return fmt.Errorf("slug: unknown script %q", name)
			}
			tables = append(tables, table)
		}
		n.scripts = tables

		return nil
	}
}

// New creates a normalizer.
func New(opts ...Option) (*Normalizer, error) {
	n := &Normalizer{}
	if err := WithScripts(DefaultScripts...)(n); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(n); err != nil {
			return nil, err
		}
	}

	return n, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *Normalizer {
	n, err := New(opts...)
	if err != nil {
		panic(err)
	}

	return n
}

// Normalize returns the slug of s.
func (n *Normalizer) Normalize(s string, lowercase bool) string {
	s = norm.NFC.String(s)
	if lowercase {
		s = strings.ToLower(s)
	}

	var b strings.Builder
	b.Grow(len(s))
	dash := true // suppresses leading dashes
	for _, r := range s {
		switch {
		case unicode.IsSpace(r), r == '-':
			if !dash {
				b.WriteByte('-')
				dash = true
			}
		case n.allowed(r):
			b.WriteRune(r)
			dash = false
		}
	}

	return strings.TrimRight(b.String(), "-")
}

func (n *Normalizer) allowed(r rune) bool {
	switch {
	case r == '_':
		return true
	case r < unicode.MaxASCII:
		return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9'
	default:
		return unicode.IsOneOf(n.scripts, r)
	}
}
