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

package matcher

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"rivaas.dev/prettyurl/resolver"
	"rivaas.dev/prettyurl/router/compiler"
)

var (
	// ErrNoResolver indicates a route that needs data lookups on a matcher
	// without a resolver.
	ErrNoResolver = errors.New("matcher: route needs a resolver")

	// ErrNoEntity indicates a route with fields but no entity to look them up in.
	ErrNoEntity = errors.New("matcher: route with fields has no entity")
)

// Result is a successful match.
type Result struct {
	// ID is the primary key of the matched row. It is nil for routes without
	// dynamic segments.
	ID any

	// Row is the row found by the lookup, nil when the id was read from the
	// URL directly.
	Row resolver.Row

	// Params holds the URL text captured for each field, keyed by dotted path.
	Params map[string]string
}

// Matcher matches URL paths against routes.
type Matcher struct {
	resolver resolver.Resolver
}

// New creates a matcher. The resolver may be nil when no route needs data.
func New(r resolver.Resolver) *Matcher {
	return &Matcher{resolver: r}
}

// fieldValue is the URL text assigned to one field.
type fieldValue struct {
	part  compiler.Part
	words []string
}

// candidate is one way to read a dynamic segment.
type candidate []fieldValue

// Match matches path against route.
func (m *Matcher) Match(ctx context.Context, path string, route *compiler.Route) (Result, bool, error) {
	path = cleanPath(path)
	segs := route.Segments()

	urlSegs := splitPath(path)
	if len(urlSegs) < len(segs) || !route.Regex().MatchString(path) {
		return Result{}, false, nil
	}
	for i, s := range urlSegs {
		if u, err := url.PathUnescape(s); err == nil {
			urlSegs[i] = u
		}
	}

	cs := route.CaseSensitive()
	for i, s := range segs {
		if s.Kind == compiler.SegmentStatic && !equalText(urlSegs[i], s.Value, cs) {
			return Result{}, false, nil
		}
	}

	entity, hasEntity := route.Entity()
	dynamic := false
	for i, s := range segs {
		if s.Kind != compiler.SegmentDynamic {
			continue
		}
		dynamic = true
		if raw, ok := s.ExtractID(urlSegs[i]); ok {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
				return Result{ID: id, Params: map[string]string{entity.Primary: raw}}, true, nil
			}
		}
	}
	if !dynamic {
		return Result{}, true, nil
	}
	if !hasEntity {
		return Result{}, false, fmt.Errorf("%w: %s", ErrNoEntity, route.Pattern())
	}
	if m.resolver == nil {
		return Result{}, false, fmt.Errorf("%w: %s", ErrNoResolver, route.Pattern())
	}

	params := make(map[string]string)
	var (
		deferred []fieldValue
		lookups  []iter.Seq[candidate]
	)
	for i, s := range segs {
		if s.Kind != compiler.SegmentDynamic {
			continue
		}
		readings := segmentReadings(s, urlSegs[i], cs)
		first := firstReadings(readings, 2)
		switch {
		case len(first) == 0:
			return Result{}, false, nil
		case len(first) == 1 && s.OnlyRelationships():
			deferred = append(deferred, first[0]...)
			first[0].record(params)
		default:
			lookups = append(lookups, readings)
		}
	}

	constraints := make([]resolver.Query, 0, len(deferred))
	for _, fv := range deferred {
		q, ok, err := m.resolver.RelationshipForMatch(ctx, entity, fv.relationshipField())
		if err != nil || !ok {
			return Result{}, false, err
		}
		constraints = append(constraints, q)
	}
	accumulated := m.resolver.MergeQueries(constraints...)

	var row resolver.Row
	for _, cands := range lookups {
		found := false
		for cand := range cands {
			q, ok, err := m.candidateQuery(ctx, entity, cand)
			if err != nil {
				return Result{}, false, err
			}
			if !ok {
				continue
			}
			merged := m.resolver.MergeQueries(accumulated, q)
			r, err := m.resolver.Fetch(ctx, entity, nil, merged)
			if err != nil {
				return Result{}, false, err
			}
			if r != nil {
				accumulated, row, found = merged, r, true
				cand.record(params)
				break
			}
		}
		if !found {
			return Result{}, false, nil
		}
	}

	if len(lookups) == 0 {
		r, err := m.resolver.Fetch(ctx, entity, nil, accumulated)
		if err != nil || r == nil {
			return Result{}, false, err
		}
		row = r
	}

	id, ok := row[m.resolver.Primary(entity)]
	if !ok || id == nil {
		return Result{}, false, nil
	}

	return Result{ID: id, Row: row, Params: params}, true, nil
}

// candidateQuery turns one reading of a segment into a query: own fields
// become LIKE filters, relationship fields go through the resolver.
func (m *Matcher) candidateQuery(ctx context.Context, entity resolver.Entity, cand candidate) (resolver.Query, bool, error) {
	var (
		own  resolver.Query
		rels []resolver.Query
	)
	for _, fv := range cand {
		if fv.part.IsRelationship() {
			q, ok, err := m.resolver.RelationshipForMatch(ctx, entity, fv.relationshipField())
			if err != nil || !ok {
				return resolver.Query{}, false, err
			}
			rels = append(rels, q)
			continue
		}
		own.Filters = append(own.Filters, resolver.Filter{
			Field: fv.part.Name,
			Op:    resolver.OpLike,
			Value: resolver.LikeValue(fv.words...),
		})
	}

	return m.resolver.MergeQueries(append(rels, own)...), true, nil
}

func (fv fieldValue) relationshipField() resolver.RelationshipField {
	f := fv.part.RelationshipField()
	f.Op = resolver.OpLike
	f.Value = resolver.LikeValue(fv.words...)

	return f
}

func (c candidate) record(params map[string]string) {
	for _, fv := range c {
		params[fv.part.Path()] = strings.Join(fv.words, "-")
	}
}

// segmentReadings yields the readings of text against a dynamic segment,
// in partition order. Readings where literals or suffixes do not line up
// are skipped. Readings are built only as they are consumed.
func segmentReadings(seg compiler.Segment, text string, cs bool) iter.Seq[candidate] {
	return func(yield func(candidate) bool) {
		words := strings.Split(text, "-")
		for sizes := range Compositions(len(words)-seg.Literals(), seg.Fields()) {
			if cand, ok := assign(seg.Parts, words, sizes, cs); ok && !yield(cand) {
				return
			}
		}
	}
}

// firstReadings returns at most limit readings from seq.
func firstReadings(seq iter.Seq[candidate], limit int) []candidate {
	out := make([]candidate, 0, limit)
	for cand := range seq {
		out = append(out, cand)
		if len(out) == limit {
			break
		}
	}

	return out
}

// assign distributes words over parts using sizes for the fields.
func assign(parts []compiler.Part, words []string, sizes []int, cs bool) (candidate, bool) {
	cand := make(candidate, 0, len(sizes))
	next, field := 0, 0
	for _, p := range parts {
		if p.Kind == compiler.PartStatic {
			if next >= len(words) || !equalText(words[next], p.Value, cs) {
				return nil, false
			}
			next++
			continue
		}

		n := sizes[field]
		field++
		group := slices.Clone(words[next : next+n])
		next += n

		if p.Suffix != "" {
			last := group[n-1]
			if len(last) < len(p.Suffix) || !equalText(last[len(last)-len(p.Suffix):], p.Suffix, cs) {
				return nil, false
			}
			group[n-1] = last[:len(last)-len(p.Suffix)]
		}
		if strings.Join(group, "") == "" {
			return nil, false
		}
		cand = append(cand, fieldValue{part: p, words: group})
	}

	return cand, true
}

func equalText(a, b string, caseSensitive bool) bool {
	if caseSensitive {
		return a == b
	}

	return strings.EqualFold(a, b)
}

// cleanPath drops the query and fragment and makes the path absolute.
func cleanPath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return path
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}

	return strings.Split(trimmed, "/")
}
