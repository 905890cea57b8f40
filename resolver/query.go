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

import "strings"

// Op is a filter comparison.
type Op string

const (
	// OpEq requires equality.
	OpEq Op = "="

	// OpLike is a SQL LIKE comparison: '%' matches any run of characters,
	// '_' matches one character, '\' escapes the next character.
	// Comparisons are case-insensitive.
	OpLike Op = "LIKE"
)

// Filter constrains a column. Table is a join alias, or empty for the
// entity's own table.
type Filter struct {
	Table string
	Field string
	Op    Op
	Value any
}

// Join links a related table into a query. From is the alias holding the
// foreign key (empty for the entity table).
type Join struct {
	Alias      string
	Table      string
	From       string
	ForeignKey string
	References string
}

// Query is a set of joins and filters. The zero value matches every row.
type Query struct {
	Joins   []Join
	Filters []Filter
}

// IsZero reports whether the query has no joins and no filters.
func (q Query) IsZero() bool {
	return len(q.Joins) == 0 && len(q.Filters) == 0
}

// Where returns a copy of q with the filters appended.
func (q Query) Where(filters ...Filter) Query {
	return Merge(q, Query{Filters: filters})
}

// Merge concatenates queries in order. Joins are de-duplicated by alias,
// keeping the first occurrence; filters are kept as given.
func Merge(queries ...Query) Query {
	var out Query
	seen := make(map[string]struct{})
	for _, q := range queries {
		for _, j := range q.Joins {
			if _, ok := seen[j.Alias]; ok {
				continue
			}
			seen[j.Alias] = struct{}{}
			out.Joins = append(out.Joins, j)
		}
		out.Filters = append(out.Filters, q.Filters...)
	}

	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikeValue builds a LIKE pattern from slug words: every word must appear in
// order, anything may sit between or around them.
func LikeValue(words ...string) string {
	var b strings.Builder
	b.WriteByte('%')
	for _, w := range words {
		if w == "" {
			continue
		}
		b.WriteString(likeEscaper.Replace(w))
		b.WriteByte('%')
	}

	return b.String()
}
