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

package resolver

import (
	"context"
	"strings"
)

// Resolver provides entity metadata and data lookups.
//
// Implementations must return (nil, nil) from Fetch when no row matches:
// a missing row is an ordinary miss, not an error. Errors are reserved for
// misconfiguration and backend failures.
type Resolver interface {
	// ParseEntity resolves a declared entity into a table and primary key.
	ParseEntity(ctx context.Context, ref EntityRef) (Entity, error)

	// Primary returns the primary key field of the entity.
	Primary(entity Entity) string

	// Fetch returns the first row of the entity matching id (when non-nil)
	// and the query. Rows are ordered by primary key.
	Fetch(ctx context.Context, entity Entity, id any, q Query) (Row, error)

	// RelationshipForMatch translates a relationship field captured from a
	// URL into joins and filters over the entity.
	RelationshipForMatch(ctx context.Context, entity Entity, field RelationshipField) (Query, bool, error)

	// MergeQueries combines queries in argument order.
	MergeQueries(queries ...Query) Query

	// RelationshipForGeneration walks the relationship path starting at row
	// and returns the value of the final field.
	RelationshipForGeneration(ctx context.Context, entity Entity, row Row, field RelationshipField) (any, bool, error)
}

// EntityRef is an entity as declared on a route. Either Model or Table must
// be set; Primary is optional and discovered when empty.
type EntityRef struct {
	Model   string `config:"model" json:"model,omitempty"`
	Table   string `config:"table" json:"table,omitempty"`
	Primary string `config:"primary" json:"primary,omitempty"`
}

// ParseEntityRef builds a reference from its short string form. A plain name
// is a model; "table:name" selects a table directly.
func ParseEntityRef(s string) EntityRef {
	s = strings.TrimSpace(s)
	if table, ok := strings.CutPrefix(s, "table:"); ok {
		return EntityRef{Table: table}
	}

	return EntityRef{Model: s}
}

// IsZero reports whether no entity is declared.
func (r EntityRef) IsZero() bool {
	return r.Model == "" && r.Table == "" && r.Primary == ""
}

// String returns a readable form used in errors and logs.
func (r EntityRef) String() string {
	switch {
	case r.Table != "":
		return r.Table
	case r.Model != "":
		return r.Model
	default:
		return "<none>"
	}
}

// Entity is a resolved entity descriptor.
type Entity struct {
	Model   string
	Table   string
	Primary string
}

// String returns the table name.
func (e Entity) String() string {
	return e.Table
}

// Row is a single record keyed by column name.
type Row map[string]any

// Relation describes how a relationship name maps onto tables. The owning
// table holds ForeignKey; References is the referenced column of Table,
// usually its primary key.
type Relation struct {
	Table      string `config:"table"`
	ForeignKey string `config:"foreign_key"`
	References string `config:"references"`
}

// RelationshipField is a field reached through one or more relationships.
type RelationshipField struct {
	Chain []string
	Field string

	// Op and Value are set when matching; they constrain the final field.
	Op    Op
	Value any
}

// Path splits the field into relationship hops and the final column.
func (f RelationshipField) Path() (hops []string, column string) {
	parts := strings.Split(f.Field, ".")
	hops = make([]string, 0, len(f.Chain)+len(parts)-1)
	hops = append(hops, f.Chain...)
	hops = append(hops, parts[:len(parts)-1]...)

	return hops, parts[len(parts)-1]
}

// String returns the dotted form, e.g. "category.parent.slug".
func (f RelationshipField) String() string {
	hops, column := f.Path()
	return strings.Join(append(hops, column), ".")
}

// Alias returns the join alias for the first n hops of a path.
func Alias(hops []string, n int) string {
	return "r_" + strings.Join(hops[:n], "__")
}
