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

package compiler

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"rivaas.dev/prettyurl/resolver"
)

// Escaped characters are replaced with these bytes while a pattern is
// split, so they are never read as separators.
const (
	escColon = '\x00'
	escDot   = '\x01'
)

// fieldPattern matches the value of a field inside a URL segment.
const fieldPattern = `([^/]+)`

// Options are the compile-time options of a route.
type Options struct {
	// Entity is the resolved entity of the route, nil for routes without data.
	Entity *resolver.Entity

	// CaseSensitive makes static text and the route expression case-sensitive.
	CaseSensitive bool

	// Lowercase lowercases generated field values.
	Lowercase bool

	// Tags select routes during generation.
	Tags map[string]string

	// Relationships, when not empty, is the set of relationship names the
	// pattern may use.
	Relationships []string

	// Raw lists fields whose generated values are not slugified.
	Raw []string
}

// DefaultOptions returns case-sensitive, lowercasing options.
func DefaultOptions() Options {
	return Options{CaseSensitive: true, Lowercase: true}
}

// Compile compiles pattern into a route for controller.
//
// Example:
//
//	route, err := compiler.Compile("/people/:first-:last", "PersonController", compiler.DefaultOptions())
func Compile(pattern, controller string, opts Options) (*Route, error) {
	if strings.TrimSpace(controller) == "" {
		return nil, &PatternError{Pattern: pattern, Pos: -1, Err: ErrEmptyController}
	}

	protected, err := protect(pattern)
	if err != nil {
		return nil, err
	}

	r := &Route{
		pattern:    pattern,
		controller: controller,
		options:    cloneOptions(opts),
	}
	if opts.Entity != nil {
		entity := *opts.Entity
		r.entity = &entity
	}

	fragments := make([]string, 0, strings.Count(protected, "/")+1)
	for raw := range strings.SplitSeq(strings.Trim(strings.TrimSpace(protected), "/"), "/") {
		if raw == "" {
			continue
		}

		var seg Segment
		if strings.ContainsRune(raw, ':') {
			seg, err = compileDynamic(pattern, raw, opts)
			if err != nil {
				return nil, err
			}
		} else {
			literal := unprotect(raw)
			seg = Segment{Kind: SegmentStatic, Value: literal, Pattern: regexp.QuoteMeta(literal)}
		}

		fragments = append(fragments, seg.Pattern)
		r.segments = append(r.segments, seg)
	}

	expr := "^/" + strings.Join(fragments, "/") + "(/.*)?$"
	if !opts.CaseSensitive {
		expr = "(?i)" + expr
	}
	r.regex, err = regexp.Compile(expr)
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Pos: -1, Err: fmt.Errorf("%w: %w", ErrMalformedPattern, err)}
	}

	if r.entity != nil {
		for i := range r.segments {
			if err := r.segments[i].compileID(r.entity.Primary, opts.CaseSensitive); err != nil {
				return nil, &PatternError{Pattern: pattern, Pos: -1, Err: fmt.Errorf("%w: %w", ErrMalformedPattern, err)}
			}
		}
	}

	return r, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(pattern, controller string, opts Options) *Route {
	r, err := Compile(pattern, controller, opts)
	if err != nil {
		panic(err)
	}

	return r
}

// compileDynamic compiles one dynamic segment.
func compileDynamic(pattern, raw string, opts Options) (Segment, error) {
	seg := Segment{Kind: SegmentDynamic, Value: unprotect(raw)}
	fragments := make([]string, 0, strings.Count(raw, "-")+1)

	for sub := range strings.SplitSeq(raw, "-") {
		pos := strings.Index(pattern, unprotect(sub))

		switch {
		case strings.HasPrefix(sub, ":"):
			part, err := compileField(pattern, pos, sub[1:], opts)
			if err != nil {
				return Segment{}, err
			}
			seg.Parts = append(seg.Parts, part)
			fragments = append(fragments, fieldPattern+regexp.QuoteMeta(part.Suffix))

		case strings.ContainsRune(sub, ':'):
			return Segment{}, malformed(pattern, pos, "':' must start a field in %q", unprotect(sub))

		case sub == "":
			return Segment{}, malformed(pattern, pos, "empty literal in segment %q", seg.Value)

		default:
			literal := unprotect(sub)
			seg.Parts = append(seg.Parts, Part{Kind: PartStatic, Value: literal})
			fragments = append(fragments, regexp.QuoteMeta(literal))
		}
	}

	seg.Pattern = strings.Join(fragments, "-")

	return seg, nil
}

// compileField parses the body of a field part, without the leading ':'.
func compileField(pattern string, pos int, body string, opts Options) (Part, error) {
	head, tail := body, ""
	if i := strings.IndexByte(body, escDot); i >= 0 {
		head, tail = body[:i], body[i:]
	}
	if strings.ContainsRune(body, ':') || strings.ContainsRune(head, escColon) {
		return Part{}, malformed(pattern, pos, "unexpected ':' in field %q", unprotect(body))
	}

	part := Part{Kind: PartField, Name: head, Suffix: unprotect(tail)}
	if rel, name, ok := strings.Cut(head, "."); ok {
		if rel == "" {
			return Part{}, malformed(pattern, pos, "empty relationship in field %q", unprotect(body))
		}
		if len(opts.Relationships) > 0 && !slices.Contains(opts.Relationships, rel) {
			return Part{}, &PatternError{Pattern: pattern, Pos: pos, Err: fmt.Errorf("%w: %s", ErrUndeclaredRelationship, rel)}
		}
		part.Relationships = []string{rel}
		part.Name = name
	}

	for hop := range strings.SplitSeq(part.Name, ".") {
		if hop == "" {
			return Part{}, malformed(pattern, pos, "empty field name in %q", unprotect(body))
		}
	}

	return part, nil
}

// protect replaces escaped ':' and '.' with placeholder bytes.
func protect(pattern string) (string, error) {
	if strings.ContainsAny(pattern, string([]rune{escColon, escDot})) {
		return "", malformed(pattern, -1, "control characters are not allowed")
	}

	var b strings.Builder
	b.Grow(len(pattern))
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 == len(pattern) {
			return "", malformed(pattern, i, "unterminated escape")
		}
		i++
		switch pattern[i] {
		case ':':
			b.WriteByte(escColon)
		case '.':
			b.WriteByte(escDot)
		default:
			return "", malformed(pattern, i-1, "invalid escape %q", pattern[i-1:i+1])
		}
	}

	return b.String(), nil
}

// unprotect turns placeholder bytes back into the characters they stand for.
func unprotect(s string) string {
	if !strings.ContainsAny(s, string([]rune{escColon, escDot})) {
		return s
	}

	return strings.NewReplacer(string(escColon), ":", string(escDot), ".").Replace(s)
}

func cloneOptions(opts Options) Options {
	opts.Tags = maps.Clone(opts.Tags)
	opts.Relationships = slices.Clone(opts.Relationships)
	opts.Raw = slices.Clone(opts.Raw)
	opts.Entity = nil

	return opts
}
