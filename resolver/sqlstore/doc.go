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

// Package sqlstore provides a [resolver.Resolver] backed by database/sql.
//
// Queries are built with squirrel and work with any database/sql driver for
// SQLite, PostgreSQL or MySQL; pick the matching [Dialect] with
// [WithDialect]. Table metadata (columns and primary key) is read from the
// database catalog on first use and cached for the lifetime of the store.
//
// Relationships are belongs-to links. Declare them with [WithRelation], or
// rely on the convention: relationship "category" on table "articles" uses
// the column "category_id" (or "category") and the table "category".
//
//	db, _ := sql.Open("sqlite", "file:blog.db")
//	store := sqlstore.New(db,
//	    sqlstore.WithDialect(sqlstore.DialectSQLite),
//	    sqlstore.WithModel("Article", "articles"),
//	    sqlstore.WithRelation("articles", "category", resolver.Relation{Table: "categories"}),
//	)
package sqlstore
