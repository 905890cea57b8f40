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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"rivaas.dev/prettyurl/resolver"
)

const schema = `
CREATE TABLE sections (id INTEGER PRIMARY KEY, slug TEXT NOT NULL);
CREATE TABLE categories (id INTEGER PRIMARY KEY, slug TEXT NOT NULL, section_id INTEGER);
CREATE TABLE authors (id INTEGER PRIMARY KEY, name TEXT NOT NULL);
CREATE TABLE articles (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	category_id INTEGER,
	author INTEGER
);
CREATE TABLE logs (message TEXT);
INSERT INTO sections VALUES (1, 'blog');
INSERT INTO categories VALUES (10, 'news', 1), (11, 'tech', 1);
INSERT INTO authors VALUES (5, 'Ada');
INSERT INTO articles VALUES
	(1, 'Hello World', 11, 5),
	(2, 'Second Post', 10, 5),
	(3, 'Hello Again', 10, NULL);
`

func openDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(schema)
	require.NoError(t, err)

	return db
}

func newStore(t *testing.T) *Store {
	t.Helper()

	return New(openDB(t),
		WithDialect(DialectSQLite),
		WithModel("Article", "articles"),
		WithRelation("articles", "category", resolver.Relation{Table: "categories"}),
		WithRelation("categories", "section", resolver.Relation{Table: "sections"}),
		WithRelation("articles", "author", resolver.Relation{Table: "authors"}),
	)
}

func TestParseEntity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newStore(t)

	entity, err := store.ParseEntity(ctx, resolver.EntityRef{Model: "Article"})
	require.NoError(t, err)
	assert.Equal(t, resolver.Entity{Model: "Article", Table: "articles", Primary: "id"}, entity)
	assert.Equal(t, "id", store.Primary(entity))

	_, err = store.ParseEntity(ctx, resolver.EntityRef{Model: "Missing"})
	require.ErrorIs(t, err, resolver.ErrUnknownModel)

	_, err = store.ParseEntity(ctx, resolver.EntityRef{Table: "missing"})
	require.ErrorIs(t, err, resolver.ErrUnknownTable)

	_, err = store.ParseEntity(ctx, resolver.EntityRef{Table: "logs"})
	require.ErrorIs(t, err, resolver.ErrNoPrimaryKey)

	_, err = store.ParseEntity(ctx, resolver.EntityRef{Table: "articles; DROP TABLE articles"})
	require.ErrorIs(t, err, resolver.ErrInvalidIdentifier)
}

func TestFetch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newStore(t)
	articles := resolver.Entity{Table: "articles", Primary: "id"}

	row, err := store.Fetch(ctx, articles, 2, resolver.Query{})
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "Second Post", row["title"])
	assert.EqualValues(t, 10, row["category_id"])

	like := resolver.Query{Filters: []resolver.Filter{{Field: "title", Op: resolver.OpLike, Value: resolver.LikeValue("HELLO")}}}
	row, err = store.Fetch(ctx, articles, nil, like)
	require.NoError(t, err)
	assert.EqualValues(t, 1, row["id"], "first by primary key, case-insensitive")

	row, err = store.Fetch(ctx, articles, 99, resolver.Query{})
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestFetchWithRelationship(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newStore(t)
	articles := resolver.Entity{Table: "articles", Primary: "id"}

	rel, ok, err := store.RelationshipForMatch(ctx, articles, resolver.RelationshipField{
		Chain: []string{"category"}, Field: "slug", Op: resolver.OpLike, Value: resolver.LikeValue("news"),
	})
	require.NoError(t, err)
	require.True(t, ok)

	title := resolver.Query{Filters: []resolver.Filter{{Field: "title", Op: resolver.OpLike, Value: resolver.LikeValue("hello")}}}
	row, err := store.Fetch(ctx, articles, nil, store.MergeQueries(rel, title))
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.EqualValues(t, 3, row["id"])
}

func TestMultiHopRelationship(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newStore(t)
	articles := resolver.Entity{Table: "articles", Primary: "id"}
	field := resolver.RelationshipField{Chain: []string{"category"}, Field: "section.slug", Op: resolver.OpEq, Value: "blog"}

	q, ok, err := store.RelationshipForMatch(ctx, articles, field)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, q.Joins, 2)

	row, err := store.Fetch(ctx, articles, nil, q)
	require.NoError(t, err)
	assert.EqualValues(t, 1, row["id"])

	v, ok, err := store.RelationshipForGeneration(ctx, articles, row, field)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "blog", v)
}

func TestRelationshipForGeneration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newStore(t)
	articles := resolver.Entity{Table: "articles", Primary: "id"}
	author := resolver.RelationshipField{Chain: []string{"author"}, Field: "name"}

	v, ok, err := store.RelationshipForGeneration(ctx, articles, resolver.Row{"id": 1, "author": int64(5)}, author)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Ada", v)

	_, ok, err = store.RelationshipForGeneration(ctx, articles, resolver.Row{"id": 3, "author": nil}, author)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConventionalRelationship(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openDB(t)
	_, err := db.Exec(`CREATE TABLE category (id INTEGER PRIMARY KEY, name TEXT); INSERT INTO category VALUES (10, 'News');`)
	require.NoError(t, err)

	store := New(db)
	articles := resolver.Entity{Table: "articles", Primary: "id"}

	q, ok, err := store.RelationshipForMatch(ctx, articles, resolver.RelationshipField{
		Chain: []string{"category"}, Field: "name", Op: resolver.OpLike, Value: resolver.LikeValue("news"),
	})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "category_id", q.Joins[0].ForeignKey)

	row, err := store.Fetch(ctx, articles, nil, q)
	require.NoError(t, err)
	assert.EqualValues(t, 2, row["id"])

	_, _, err = store.RelationshipForMatch(ctx, articles, resolver.RelationshipField{Chain: []string{"publisher"}, Field: "name"})
	require.ErrorIs(t, err, resolver.ErrUnknownRelationship)
}

func TestSelectQueryDialects(t *testing.T) {
	t.Parallel()

	entity := resolver.Entity{Table: "articles", Primary: "id"}
	q := resolver.Query{
		Joins:   []resolver.Join{{Alias: "r_category", Table: "categories", ForeignKey: "category_id", References: "id"}},
		Filters: []resolver.Filter{{Table: "r_category", Field: "slug", Op: resolver.OpLike, Value: "%news%"}},
	}

	tests := []struct {
		dialect Dialect
		want    string
	}{
		{
			dialect: DialectSQLite,
			want:    `SELECT m.* FROM "articles" AS m JOIN "categories" AS r_category ON r_category."id" = m."category_id" WHERE m."id" = ? AND r_category."slug" LIKE ? ESCAPE '\' ORDER BY m."id" LIMIT 1`,
		},
		{
			dialect: DialectPostgreSQL,
			want:    `SELECT m.* FROM "articles" AS m JOIN "categories" AS r_category ON r_category."id" = m."category_id" WHERE m."id" = $1 AND r_category."slug" ILIKE $2 ESCAPE '\' ORDER BY m."id" LIMIT 1`,
		},
		{
			dialect: DialectMySQL,
			want:    "SELECT m.* FROM `articles` AS m JOIN `categories` AS r_category ON r_category.`id` = m.`category_id` WHERE m.`id` = ? AND r_category.`slug` LIKE ? ESCAPE '\\\\' ORDER BY m.`id` LIMIT 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.String(), func(t *testing.T) {
			t.Parallel()

			store := New(nil, WithDialect(tt.dialect))
			query, args, err := store.selectQuery(entity, 7, q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, query)
			assert.Equal(t, []any{7, "%news%"}, args)
		})
	}
}

func TestParseDialect(t *testing.T) {
	t.Parallel()

	d, err := ParseDialect("sqlite")
	require.NoError(t, err)
	assert.Equal(t, DialectSQLite, d)

	d, err = ParseDialect("pgx")
	require.NoError(t, err)
	assert.Equal(t, DialectPostgreSQL, d)

	_, err = ParseDialect("oracle")
	require.Error(t, err)
}
