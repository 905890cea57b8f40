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

package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureSchema = `
CREATE TABLE categories (id INTEGER PRIMARY KEY, slug TEXT NOT NULL);
CREATE TABLE articles (id INTEGER PRIMARY KEY, title TEXT NOT NULL, category_id INTEGER);
INSERT INTO categories VALUES (10, 'news'), (11, 'tech');
INSERT INTO articles VALUES (1, 'Hello World', 11), (2, 'Second Post', 10), (3, 'Hello Again', 10);
`

const fixtureConfig = `
base_path: /site
logging:
  level: warn
database:
  driver: sqlite
  dsn: %s
models:
  Article: articles
relations:
  - owner: articles
    name: category
    table: categories
routes:
  - pattern: /about
    controller: AboutController
  - pattern: /:category.slug/:title
    controller: ArticleController
    options:
      entity: Article
      relationships: [category]
`

// fixture writes a sqlite database and a config file pointing at it and
// returns the config path.
func fixture(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "prettyurl.db")

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(fixtureSchema)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	cfgPath := filepath.Join(dir, "prettyurl.yaml")
	content := bytes.ReplaceAll([]byte(fixtureConfig), []byte("%s"), []byte(dbPath))
	require.NoError(t, os.WriteFile(cfgPath, content, 0o600))

	return cfgPath
}

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--env-prefix="))
	err = cmd.ExecuteContext(context.Background())

	return out.String(), errOut.String(), err
}

func TestVersion(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)

	out, _, err = run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Go version:")
}

func TestRoutes(t *testing.T) {
	t.Parallel()

	cfg := fixture(t)

	out, _, err := run(t, "routes", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Pattern")
	assert.Contains(t, out, "/:category.slug/:title")
	assert.Contains(t, out, "ArticleController")
	assert.Contains(t, out, "articles")
	assert.Contains(t, out, "AboutController")
	assert.NotContains(t, out, "\x1b[", "buffers get plain text")

	out, _, err = run(t, "routes", "--config", cfg, "--controller", "AboutController")
	require.NoError(t, err)
	assert.Contains(t, out, "/about")
	assert.NotContains(t, out, "ArticleController")

	out, _, err = run(t, "routes", "--config", cfg, "--tag", "lang=fr")
	require.NoError(t, err)
	assert.Contains(t, out, "no routes")
}

func TestMatch(t *testing.T) {
	t.Parallel()

	cfg := fixture(t)

	out, _, err := run(t, "match", "/news/hello-again", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "ArticleController")
	assert.Contains(t, out, "articles")
	assert.Contains(t, out, "3")

	out, _, err = run(t, "match", "/news/hello-again", "--config", cfg, "--json")
	require.NoError(t, err)
	var res matchResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "ArticleController", res.Controller)
	assert.EqualValues(t, 3, res.ID)
	assert.Equal(t, "articles", res.Entity)

	out, _, err = run(t, "match", "/site/about", "--config", cfg, "--strip-base-path")
	require.NoError(t, err)
	assert.Contains(t, out, "AboutController")

	_, _, err = run(t, "match", "/tech/hello-again", "--config", cfg)
	require.ErrorContains(t, err, `no route matches "/tech/hello-again"`)
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	cfg := fixture(t)

	out, _, err := run(t, "generate", "ArticleController", "1", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "/site/tech/hello-world\n", out)

	out, _, err = run(t, "generate", "ArticleController", "2", "--config", cfg, "--base-path", "")
	require.NoError(t, err)
	assert.Equal(t, "/news/second-post\n", out)

	out, _, err = run(t, "generate", "AboutController", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "/site/about\n", out)

	_, _, err = run(t, "generate", "ArticleController", "99", "--config", cfg)
	require.ErrorContains(t, err, "no route of ArticleController generates a URL for id:99")

	_, _, err = run(t, "generate", "ArticleController", "1", "--attr", "title=x", "--config", cfg)
	require.ErrorContains(t, err, "mutually exclusive")
}

func TestConfigErrors(t *testing.T) {
	t.Parallel()

	_, _, err := run(t, "routes", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	cfg := fixture(t)
	_, _, err = run(t, "routes", "--config", cfg, "--log-level", "loud")
	require.Error(t, err)
}

func TestElement(t *testing.T) {
	t.Parallel()

	el, err := element(nil, nil)
	require.NoError(t, err)
	assert.True(t, el.IsNone())

	el, err = element([]string{"42"}, nil)
	require.NoError(t, err)
	id, ok := el.ID("id")
	require.True(t, ok)
	assert.Equal(t, int64(42), id)

	el, err = element([]string{"abc"}, nil)
	require.NoError(t, err)
	id, _ = el.ID("id")
	assert.Equal(t, "abc", id)

	el, err = element(nil, map[string]string{"category.slug": "news"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"category.slug": "news"}, el.Attrs())

	_, err = element([]string{"1"}, map[string]string{"a": "b"})
	require.Error(t, err)
}
