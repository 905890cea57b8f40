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
	"maps"
	"regexp"
	"slices"
	"strings"

	"rivaas.dev/prettyurl/resolver"
)

// SegmentKind distinguishes static from dynamic segments.
type SegmentKind uint8

const (
	// SegmentStatic is a literal segment.
	SegmentStatic SegmentKind = iota
	// SegmentDynamic is a segment with at least one field.
	SegmentDynamic
)

// String returns "static" or "dynamic".
func (k SegmentKind) String() string {
	if k == SegmentDynamic {
		return "dynamic"
	}

	return "static"
}

// PartKind distinguishes literal text from fields inside a dynamic segment.
type PartKind uint8

const (
	// PartStatic is literal text between dashes.
	PartStatic PartKind = iota
	// PartField is a data-bound field.
	PartField
)

// Part is one dash-separated piece of a dynamic segment.
type Part struct {
	Kind PartKind

	// Value is the literal text of a static part.
	Value string

	// Name is the field name. Dots separate further relationship hops.
	Name string

	// Relationships is the relationship the field is reached through, empty
	// for fields of the route's own entity.
	Relationships []string

	// Suffix is literal text that follows the value in the URL.
	Suffix string
}

// IsRelationship reports whether the field is resolved through a relationship.
func (p Part) IsRelationship() bool {
	return len(p.Relationships) > 0
}

// Path returns the dotted field name including its relationship.
func (p Part) Path() string {
	if !p.IsRelationship() {
		return p.Name
	}

	return strings.Join(p.Relationships, ".") + "." + p.Name
}

// RelationshipField converts the part for the resolver.
func (p Part) RelationshipField() resolver.RelationshipField {
	return resolver.RelationshipField{Chain: slices.Clone(p.Relationships), Field: p.Name}
}

// Segment is one '/'-separated unit of a pattern.
type Segment struct {
	Kind SegmentKind

	// Value is the literal of a static segment, or the template text of a
	// dynamic one.
	Value string

	// Parts are the dash-separated parts of a dynamic segment.
	Parts []Part

	// Pattern is the regular expression fragment of the segment.
	Pattern string

	id *regexp.Regexp
}

// Fields returns the number of field parts.
func (s Segment) Fields() int {
	n := 0
	for _, p := range s.Parts {
		if p.Kind == PartField {
			n++
		}
	}

	return n
}

// Literals returns the number of static parts.
func (s Segment) Literals() int {
	return len(s.Parts) - s.Fields()
}

// OnlyRelationships reports whether every field of the segment is reached
// through a relationship.
func (s Segment) OnlyRelationships() bool {
	fields := 0
	for _, p := range s.Parts {
		if p.Kind != PartField {
			continue
		}
		if !p.IsRelationship() {
			return false
		}
		fields++
	}

	return fields > 0
}

// ExtractID returns the primary key embedded in a URL segment when the
// segment carries the entity's primary key as a plain field and the URL
// holds digits at that position.
func (s Segment) ExtractID(urlSegment string) (string, bool) {
	if s.id == nil {
		return "", false
	}
	m := s.id.FindStringSubmatch(urlSegment)
	if m == nil {
		return "", false
	}

	return m[1], true
}

// compileID builds the primary key shortcut expression.
func (s *Segment) compileID(primary string, caseSensitive bool) error {
	if s.Kind != SegmentDynamic || primary == "" {
		return nil
	}

	found := false
	fragments := make([]string, 0, len(s.Parts))
	for _, p := range s.Parts {
		switch {
		case p.Kind == PartStatic:
			fragments = append(fragments, regexp.QuoteMeta(p.Value))
		case !found && !p.IsRelationship() && p.Name == primary:
			fragments = append(fragments, `(\d+)`+regexp.QuoteMeta(p.Suffix))
			found = true
		default:
			fragments = append(fragments, `[^/]+`+regexp.QuoteMeta(p.Suffix))
		}
	}
	if !found {
		return nil
	}

	expr := "^" + strings.Join(fragments, "-") + "$"
	if !caseSensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return err
	}
	s.id = re

	return nil
}

// Route is a compiled pattern bound to a controller. Routes are immutable
// once compiled; slices returned by accessors must not be modified.
type Route struct {
	pattern    string
	controller string
	entity     *resolver.Entity
	segments   []Segment
	regex      *regexp.Regexp
	options    Options
}

// Pattern returns the pattern the route was compiled from.
func (r *Route) Pattern() string { return r.pattern }

// Controller returns the controller identifier.
func (r *Route) Controller() string { return r.controller }

// Entity returns the resolved entity, if the route has one.
func (r *Route) Entity() (resolver.Entity, bool) {
	if r.entity == nil {
		return resolver.Entity{}, false
	}

	return *r.entity, true
}

// Segments returns the compiled segments.
func (r *Route) Segments() []Segment { return r.segments }

// Regex returns the compiled route expression.
func (r *Route) Regex() *regexp.Regexp { return r.regex }

// Options returns a copy of the compile options.
func (r *Route) Options() Options {
	opts := cloneOptions(r.options)
	opts.Entity = r.entity

	return opts
}

// CaseSensitive reports whether static text is compared case-sensitively.
func (r *Route) CaseSensitive() bool { return r.options.CaseSensitive }

// Lowercase reports whether generated values are lowercased.
func (r *Route) Lowercase() bool { return r.options.Lowercase }

// Tags returns a copy of the route tags.
func (r *Route) Tags() map[string]string { return maps.Clone(r.options.Tags) }

// IsRaw reports whether generated values of the field skip slugification.
// The field is given by name or dotted path.
func (r *Route) IsRaw(field string) bool {
	return slices.Contains(r.options.Raw, field)
}

// MatchesTags reports whether every requested tag is set on the route with
// the same value. An empty request matches every route.
func (r *Route) MatchesTags(tags map[string]string) bool {
	for k, v := range tags {
		got, ok := r.options.Tags[k]
		if !ok || got != v {
			return false
		}
	}

	return true
}

// Fields returns the field names in pattern order. Relationship fields are
// returned in dotted form.
func (r *Route) Fields() []string {
	var fields []string
	for _, s := range r.segments {
		for _, p := range s.Parts {
			if p.Kind == PartField {
				fields = append(fields, p.Path())
			}
		}
	}

	return fields
}

// Relationships returns the distinct relationship names used by the pattern.
func (r *Route) Relationships() []string {
	var rels []string
	for _, s := range r.segments {
		for _, p := range s.Parts {
			for _, rel := range p.Relationships {
				if !slices.Contains(rels, rel) {
					rels = append(rels, rel)
				}
			}
		}
	}

	return rels
}

// String returns "pattern -> controller".
func (r *Route) String() string {
	return r.pattern + " -> " + r.controller
}

// Compare orders routes by specificity. It returns a negative number when a
// should be tried before b, a positive number when b comes first, and zero
// when the order is left to the caller (use a stable sort).
func Compare(a, b *Route) int {
	if len(a.segments) != len(b.segments) {
		return len(b.segments) - len(a.segments)
	}
	for i := range a.segments {
		ka, kb := a.segments[i].Kind, b.segments[i].Kind
		if ka != kb {
			return int(ka) - int(kb)
		}
	}

	return 0
}
