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
	"fmt"
	"regexp"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"rivaas.dev/prettyurl/resolver"
)

// Dialect represents the SQL dialect for query generation.
type Dialect int

const (
	// DialectSQLite uses SQLite syntax (? placeholders).
	DialectSQLite Dialect = iota
	// DialectPostgreSQL uses PostgreSQL syntax ($1, $2 placeholders).
	DialectPostgreSQL
	// DialectMySQL uses MySQL syntax (? placeholders, backtick quoting).
	DialectMySQL
)

// ParseDialect maps a database/sql driver name onto a dialect.
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "postgres", "postgresql", "pgx":
		return DialectPostgreSQL, nil
	case "mysql":
		return DialectMySQL, nil
	default:
		return 0, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
}

// String returns the dialect name.
func (d Dialect) String() string {
	switch d {
	case DialectPostgreSQL:
		return "postgresql"
	case DialectMySQL:
		return "mysql"
	default:
		return "sqlite"
	}
}

func (d Dialect) placeholder() sq.PlaceholderFormat {
	if d == DialectPostgreSQL {
		return sq.Dollar
	}

	return sq.Question
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// quote quotes an identifier. Only plain identifiers are accepted, table and
// column names come from configuration and are never interpolated raw.
func (d Dialect) quote(ident string) (string, error) {
	if !identifierPattern.MatchString(ident) {
		return "", fmt.Errorf("%w: %q", resolver.ErrInvalidIdentifier, ident)
	}
	if d == DialectMySQL {
		return "`" + ident + "`", nil
	}

	return `"` + ident + `"`, nil
}

// column returns alias.column with the column quoted.
func (d Dialect) column(alias, name string) (string, error) {
	q, err := d.quote(name)
	if err != nil {
		return "", err
	}
	if alias == "" {
		alias = mainAlias
	}

	return alias + "." + q, nil
}

// like returns the LIKE predicate with an escape clause for the dialect.
// LIKE is case-insensitive on SQLite and MySQL; PostgreSQL needs ILIKE.
func (d Dialect) like(col string) string {
	switch d {
	case DialectPostgreSQL:
		return col + ` ILIKE ? ESCAPE '\'`
	case DialectMySQL:
		return col + ` LIKE ? ESCAPE '\\'`
	default:
		return col + ` LIKE ? ESCAPE '\'`
	}
}
