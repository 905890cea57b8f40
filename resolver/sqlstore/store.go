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

package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	sq "github.com/Masterminds/squirrel"

	"rivaas.dev/prettyurl/resolver"
)

const mainAlias = "m"

var _ resolver.Resolver = (*Store)(nil)

// tableInfo is the cached catalog entry of a table.
type tableInfo struct {
	columns map[string]struct{}
	primary string
}

func (t *tableInfo) has(column string) bool {
	_, ok := t.columns[column]
	return ok
}

// Store is a SQL-backed resolver.
type Store struct {
	db      *sql.DB
	dialect Dialect
	builder sq.StatementBuilderType

	models    map[string]string
	relations map[string]map[string]resolver.Relation

	mu     sync.RWMutex
	tables map[string]*tableInfo
}

// Option configures a Store.
type Option func(*Store)

// WithDialect sets the SQL dialect for query generation.
// Default: DialectSQLite.
func WithDialect(d Dialect) Option {
	return func(s *Store) {
		s.dialect = d
	}
}

// WithModel maps a model name onto a table. Model names are
// case-insensitive.
func WithModel(model, table string) Option {
	return func(s *Store) {
		s.models[strings.ToLower(model)] = table
	}
}

// WithRelation declares a relationship on the owning table. Empty fields
// are filled in by convention.
func WithRelation(owner, name string, rel resolver.Relation) Option {
	return func(s *Store) {
		if s.relations[owner] == nil {
			s.relations[owner] = make(map[string]resolver.Relation)
		}
		s.relations[owner][name] = rel
	}
}

// New creates a SQL resolver over db.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{
		db:        db,
		models:    make(map[string]string),
		relations: make(map[string]map[string]resolver.Relation),
		tables:    make(map[string]*tableInfo),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.builder = sq.StatementBuilder.PlaceholderFormat(s.dialect.placeholder())

	return s
}

// ParseEntity implements [resolver.Resolver].
func (s *Store) ParseEntity(ctx context.Context, ref resolver.EntityRef) (resolver.Entity, error) {
	entity := resolver.Entity{Model: ref.Model, Table: ref.Table, Primary: ref.Primary}
	if entity.Table == "" && entity.Model != "" {
		table, ok := s.models[strings.ToLower(entity.Model)]
		if !ok {
			return resolver.Entity{}, resolver.NewConfigurationError(ref.String(), "parse-entity", resolver.ErrUnknownModel)
		}
		entity.Table = table
	}
	if entity.Table == "" {
		return resolver.Entity{}, resolver.NewConfigurationError(ref.String(), "parse-entity", resolver.ErrNoTable)
	}

	info, err := s.table(ctx, entity.Table)
	if err != nil {
		return resolver.Entity{}, err
	}
	if entity.Primary == "" {
		entity.Primary = info.primary
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

// MergeQueries implements [resolver.Resolver].
func (s *Store) MergeQueries(queries ...resolver.Query) resolver.Query {
	return resolver.Merge(queries...)
}

// Fetch implements [resolver.Resolver].
func (s *Store) Fetch(ctx context.Context, entity resolver.Entity, id any, q resolver.Query) (resolver.Row, error) {
	query, args, err := s.selectQuery(entity, id, q)
	if err != nil {
		return nil, resolver.NewConfigurationError(entity.Table, "fetch", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: fetch %s: %w", entity.Table, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	return scanRow(rows)
}

// selectQuery builds the SELECT for Fetch.
func (s *Store) selectQuery(entity resolver.Entity, id any, q resolver.Query) (string, []any, error) {
	table, err := s.dialect.quote(entity.Table)
	if err != nil {
		return "", nil, err
	}
	pk, err := s.dialect.column("", entity.Primary)
	if err != nil {
		return "", nil, err
	}

	b := s.builder.Select(mainAlias + ".*").From(table + " AS " + mainAlias)
	for _, j := range q.Joins {
		clause, err := s.joinClause(j)
		if err != nil {
			return "", nil, err
		}
		b = b.Join(clause)
	}
	if id != nil {
		b = b.Where(sq.Eq{pk: id})
	}
	for _, f := range q.Filters {
		col, err := s.dialect.column(f.Table, f.Field)
		if err != nil {
			return "", nil, err
		}
		switch f.Op {
		case resolver.OpLike:
			b = b.Where(s.dialect.like(col), f.Value)
		default:
			b = b.Where(sq.Eq{col: f.Value})
		}
	}

	return b.OrderBy(pk).Limit(1).ToSql()
}

func (s *Store) joinClause(j resolver.Join) (string, error) {
	table, err := s.dialect.quote(j.Table)
	if err != nil {
		return "", err
	}
	if !identifierPattern.MatchString(j.Alias) {
		return "", fmt.Errorf("%w: alias %q", resolver.ErrInvalidIdentifier, j.Alias)
	}
	remote, err := s.dialect.column(j.Alias, j.References)
	if err != nil {
		return "", err
	}
	local, err := s.dialect.column(j.From, j.ForeignKey)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s AS %s ON %s = %s", table, j.Alias, remote, local), nil
}

// RelationshipForMatch implements [resolver.Resolver].
func (s *Store) RelationshipForMatch(ctx context.Context, entity resolver.Entity, field resolver.RelationshipField) (resolver.Query, bool, error) {
	hops, column := field.Path()
	var q resolver.Query
	from, current := "", entity.Table
	for i, hop := range hops {
		rel, err := s.relation(ctx, current, hop)
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
	hops, column := field.Path()
	current := entity.Table
	for _, hop := range hops {
		rel, err := s.relation(ctx, current, hop)
		if err != nil {
			return nil, false, err
		}
		fk := row[rel.ForeignKey]
		if fk == nil {
			return nil, false, nil
		}
		related, err := s.Fetch(ctx, resolver.Entity{Table: rel.Table, Primary: rel.References}, fk, resolver.Query{})
		if err != nil || related == nil {
			return nil, false, err
		}
		row, current = related, rel.Table
	}

	value, ok := row[column]
	if !ok || value == nil {
		return nil, false, nil
	}

	return value, true, nil
}

// relation resolves a relationship of owner with defaults filled in from
// the catalog.
func (s *Store) relation(ctx context.Context, owner, name string) (resolver.Relation, error) {
	rel := s.relations[owner][name]
	if rel.Table == "" {
		rel.Table = name
	}

	fail := func(err error) (resolver.Relation, error) {
		return resolver.Relation{}, resolver.NewConfigurationError(owner, "relationship",
			fmt.Errorf("%w: %s: %w", resolver.ErrUnknownRelationship, name, err))
	}

	target, err := s.table(ctx, rel.Table)
	if err != nil {
		return fail(err)
	}
	if rel.ForeignKey == "" {
		info, err := s.table(ctx, owner)
		if err != nil {
			return fail(err)
		}
		switch {
		case info.has(name + "_id"):
			rel.ForeignKey = name + "_id"
		case info.has(name):
			rel.ForeignKey = name
		default:
			return fail(errors.New("no foreign key column"))
		}
	}
	if rel.References == "" {
		rel.References = target.primary
	}
	if rel.References == "" {
		return fail(resolver.ErrNoPrimaryKey)
	}

	return rel, nil
}

// table returns the cached catalog entry for name.
func (s *Store) table(ctx context.Context, name string) (*tableInfo, error) {
	s.mu.RLock()
	info, ok := s.tables[name]
	s.mu.RUnlock()
	if ok {
		return info, nil
	}

	info, err := s.loadTable(ctx, name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.tables[name] = info
	s.mu.Unlock()

	return info, nil
}

func (s *Store) loadTable(ctx context.Context, name string) (*tableInfo, error) {
	if _, err := s.dialect.quote(name); err != nil {
		return nil, resolver.NewConfigurationError(name, "describe", err)
	}

	var (
		query string
		args  []any
		err   error
	)
	switch s.dialect {
	case DialectSQLite:
		query, args, err = s.builder.Select("name", "pk").
			From("pragma_table_info(?)").
			OrderBy("cid").
			ToSql()
		args = append([]any{name}, args...)
	default:
		query, args, err = s.builder.Select("c.column_name", "CASE WHEN tc.constraint_type = 'PRIMARY KEY' THEN 1 ELSE 0 END").
			From("information_schema.columns c").
			LeftJoin("information_schema.key_column_usage k ON k.table_name = c.table_name AND k.column_name = c.column_name AND k.table_schema = c.table_schema").
			LeftJoin("information_schema.table_constraints tc ON tc.constraint_name = k.constraint_name AND tc.table_name = k.table_name AND tc.constraint_type = 'PRIMARY KEY'").
			Where(sq.Eq{"c.table_name": name}).
			OrderBy("c.ordinal_position").
			ToSql()
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: describe %s: %w", name, err)
	}
	defer rows.Close()

	info := &tableInfo{columns: make(map[string]struct{})}
	for rows.Next() {
		var (
			column string
			pk     int
		)
		if err := rows.Scan(&column, &pk); err != nil {
			return nil, err
		}
		info.columns[column] = struct{}{}
		if pk > 0 && info.primary == "" {
			info.primary = column
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(info.columns) == 0 {
		return nil, resolver.NewConfigurationError(name, "describe", resolver.ErrUnknownTable)
	}

	return info, nil
}

func scanRow(rows *sql.Rows) (resolver.Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	row := make(resolver.Row, len(columns))
	for i, col := range columns {
		if b, ok := values[i].([]byte); ok {
			row[col] = string(b)
			continue
		}
		row[col] = values[i]
	}

	return row, nil
}
