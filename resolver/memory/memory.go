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

package memory

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/spf13/cast"

	"rivaas.dev/prettyurl/resolver"
)

var _ resolver.Resolver = (*Store)(nil)

type table struct {
	primary string
	rows    []resolver.Row
}

// Store is an in-memory resolver.
type Store struct {
	mu        sync.RWMutex
	tables    map[string]*table
	models    map[string]string
	relations map[string]map[string]resolver.Relation

	fetches atomic.Int64
}

// Option configures a Store.
type Option func(*Store)

// WithTable registers a table with its primary key and initial rows.
func WithTable(name, primary string, rows ...resolver.Row) Option {
	return func(s *Store) {
		s.tables[name] = &table{primary: primary, rows: slices.Clone(rows)}
	}
}

// WithModel maps a model name onto a table. Model names are
// case-insensitive.
func WithModel(model, tableName string) Option {
	return func(s *Store) {
		s.models[strings.ToLower(model)] = tableName
	}
}

// WithRelation declares the relationship name on the owning table.
// Empty ForeignKey defaults to name+"_id", empty References to the related
// table's primary key.
func WithRelation(owner, name string, rel resolver.Relation) Option {
	return func(s *Store) {
		if s.relations[owner] == nil {
			s.relations[owner] = make(map[string]resolver.Relation)
		}
		s.relations[owner][name] = rel
	}
}

// New creates a store.
func New(opts ...Option) *Store {
	s := &Store{
		tables:    make(map[string]*table),
		models:    make(map[string]string),
		relations: make(map[string]map[string]resolver.Relation),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Insert appends rows to an existing table.
func (s *Store) Insert(tableName string, rows ...resolver.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[tableName]
	if !ok {
		return resolver.NewConfigurationError(tableName, "insert", resolver.ErrUnknownTable)
	}
	t.rows = append(t.rows, rows...)

	return nil
}

// Fetches returns how many times Fetch has been called.
func (s *Store) Fetches() int64 {
	return s.fetches.Load()
}

// ParseEntity implements [resolver.Resolver].
func (s *Store) ParseEntity(_ context.Context, ref resolver.EntityRef) (resolver.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entity := resolver.Entity{Model: ref.Model, Table: ref.Table, Primary: ref.Primary}
	if entity.Table == "" && entity.Model != "" {
		tableName, ok := s.models[strings.ToLower(entity.Model)]
		if !ok {
			return resolver.Entity{}, resolver.NewConfigurationError(ref.String(), "parse-entity", resolver.ErrUnknownModel)
		}
		entity.Table = tableName
	}
	if entity.Table == "" {
		return resolver.Entity{}, resolver.NewConfigurationError(ref.String(), "parse-entity", resolver.ErrNoTable)
	}

	t, ok := s.tables[entity.Table]
	if !ok {
		return resolver.Entity{}, resolver.NewConfigurationError(entity.Table, "parse-entity", resolver.ErrUnknownTable)
	}
	if entity.Primary == "" {
		entity.Primary = t.primary
	}
	if entity.Primary == "" {
		return resolver.Entity{}, resolver.NewConfigurationError(entity.Table, "parse-entity", resolver.ErrNoPrimaryKey)
	}

	return entity, nil
}

// Primary implements [resolver.Resolver].
func (s *Store) Primary(entity resolver.Entity) string {
	return entity.Primary
}

// Fetch implements [resolver.Resolver].
func (s *Store) Fetch(ctx context.Context, entity resolver.Entity, id any, q resolver.Query) (resolver.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.fetches.Add(1)

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tables[entity.Table]
	if !ok {
		return nil, resolver.NewConfigurationError(entity.Table, "fetch", resolver.ErrUnknownTable)
	}

	filters, err := compileFilters(q.Filters)
	if err != nil {
		return nil, err
	}

	for _, row := range sortedRows(t.rows, entity.Primary) {
		if id != nil && !equal(row[entity.Primary], id) {
			continue
		}
		bound, ok := s.bind(row, q.Joins)
		if !ok {
			continue
		}
		if filters.match(bound) {
			return row, nil
		}
	}

	return nil, nil
}

// MergeQueries implements [resolver.Resolver].
func (s *Store) MergeQueries(queries ...resolver.Query) resolver.Query {
	return resolver.Merge(queries...)
}

// RelationshipForMatch implements [resolver.Resolver].
func (s *Store) RelationshipForMatch(_ context.Context, entity resolver.Entity, field resolver.RelationshipField) (resolver.Query, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hops, column := field.Path()
	var q resolver.Query
	from, current := "", entity.Table
	for i, hop := range hops {
		rel, _, err := s.relation(current, hop)
		if err != nil {
			return resolver.Query{}, false, err
		}
		alias := resolver.Alias(hops, i+1)
		q.Joins = append(q.Joins, resolver.Join{
			Alias:      alias,
			Table:      rel.Table,
			From:       from,
			ForeignKey: rel.ForeignKey,
			References: rel.References,
		})
		from, current = alias, rel.Table
	}

	op := field.Op
	if op == "" {
		op = resolver.OpEq
	}
	q.Filters = append(q.Filters, resolver.Filter{Table: from, Field: column, Op: op, Value: field.Value})

	return q, true, nil
}

// RelationshipForGeneration implements [resolver.Resolver].
func (s *Store) RelationshipForGeneration(ctx context.Context, entity resolver.Entity, row resolver.Row, field resolver.RelationshipField) (any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hops, column := field.Path()
	current := entity.Table
	for _, hop := range hops {
		rel, declared, err := s.relation(current, hop)
		if err != nil {
			return nil, false, err
		}
		fk, ok := foreignKey(row, rel.ForeignKey, hop, declared)
		if !ok {
			return nil, false, nil
		}
		row = s.lookup(rel.Table, rel.References, fk)
		if row == nil {
			return nil, false, nil
		}
		current = rel.Table
	}

	value, ok := row[column]
	if !ok || value == nil {
		return nil, false, nil
	}

	return value, true, nil
}

// relation returns the relation for name on owner with defaults filled in.
// The caller must hold s.mu.
func (s *Store) relation(owner, name string) (resolver.Relation, bool, error) {
	rel, declared := s.relations[owner][name]
	if rel.Table == "" {
		rel.Table = name
	}
	target, ok := s.tables[rel.Table]
	if !ok {
		return resolver.Relation{}, false, resolver.NewConfigurationError(
			owner, "relationship", fmt.Errorf("%w: %s", resolver.ErrUnknownRelationship, name))
	}
	if rel.ForeignKey == "" {
		rel.ForeignKey = name + "_id"
	}
	if rel.References == "" {
		rel.References = target.primary
	}

	return rel, declared, nil
}

// lookup returns the first row of tableName whose column equals value.
// The caller must hold s.mu.
func (s *Store) lookup(tableName, column string, value any) resolver.Row {
	t, ok := s.tables[tableName]
	if !ok {
		return nil
	}
	for _, row := range t.rows {
		if equal(row[column], value) {
			return row
		}
	}

	return nil
}

// bind resolves the joins for row, keyed by alias. Rows without a related
// row for every join are dropped, like an inner join.
func (s *Store) bind(row resolver.Row, joins []resolver.Join) (map[string]resolver.Row, bool) {
	bound := map[string]resolver.Row{"": row}
	for _, j := range joins {
		src, ok := bound[j.From]
		if !ok {
			return nil, false
		}
		fk, ok := src[j.ForeignKey]
		if !ok {
			fk, ok = src[strings.TrimSuffix(j.ForeignKey, "_id")]
		}
		if !ok || fk == nil {
			return nil, false
		}
		related := s.lookup(j.Table, j.References, fk)
		if related == nil {
			return nil, false
		}
		bound[j.Alias] = related
	}

	return bound, true
}

// foreignKey reads the foreign key of a relationship from row. Conventional
// relationships fall back to a column named after the relationship.
func foreignKey(row resolver.Row, column, name string, declared bool) (any, bool) {
	if v, ok := row[column]; ok && v != nil {
		return v, true
	}
	if declared {
		return nil, false
	}
	v, ok := row[name]

	return v, ok && v != nil
}

type compiledFilter struct {
	resolver.Filter
	like *regexp.Regexp
}

type filterSet []compiledFilter

func compileFilters(filters []resolver.Filter) (filterSet, error) {
	out := make(filterSet, 0, len(filters))
	for _, f := range filters {
		cf := compiledFilter{Filter: f}
		if f.Op == resolver.OpLike {
			re, err := likePattern(cast.ToString(f.Value))
			if err != nil {
				return nil, err
			}
			cf.like = re
		}
		out = append(out, cf)
	}

	return out, nil
}

func (fs filterSet) match(bound map[string]resolver.Row) bool {
	for _, f := range fs {
		row, ok := bound[f.Table]
		if !ok {
			return false
		}
		value, ok := row[f.Field]
		if !ok || value == nil {
			return false
		}
		switch f.Op {
		case resolver.OpLike:
			if !f.like.MatchString(cast.ToString(value)) {
				return false
			}
		default:
			if !equal(value, f.Value) {
				return false
			}
		}
	}

	return true
}

// likePattern converts a LIKE pattern into an anchored regular expression.
func likePattern(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString(`(?is)^`)
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			b.WriteString(regexp.QuoteMeta(string(r)))
			escaped = false
		case r == '\\':
			escaped = true
		case r == '%':
			b.WriteString(`.*`)
		case r == '_':
			b.WriteString(`.`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString(`$`)

	return regexp.Compile(b.String())
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return cast.ToString(a) == cast.ToString(b)
}

// sortedRows returns rows ordered by primary key, numerically when both
// keys are numbers.
func sortedRows(rows []resolver.Row, primary string) []resolver.Row {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b resolver.Row) int {
		ai, aerr := cast.ToInt64E(a[primary])
		bi, berr := cast.ToInt64E(b[primary])
		if aerr == nil && berr == nil {
			switch {
			case ai < bi:
				return -1
			case ai > bi:
				return 1
			default:
				return 0
			}
		}

		return strings.Compare(cast.ToString(a[primary]), cast.ToString(b[primary]))
	})

	return out
}
