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

package router

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"rivaas.dev/prettyurl/resolver"
	"rivaas.dev/prettyurl/resolver/memory"
	"rivaas.dev/prettyurl/router/compiler"
	"rivaas.dev/prettyurl/router/generator"
)

var articles = resolver.EntityRef{Table: "articles"}

func newStore() *memory.Store {
	return memory.New(
		memory.WithTable("articles", "id",
			resolver.Row{"id": 1, "title": "Hello World", "category_id": 11},
			resolver.Row{"id": 2, "title": "Second Post", "category_id": 10},
			resolver.Row{"id": 3, "title": "Hello, Again!", "category_id": 10},
		),
		memory.WithTable("categories", "id",
			resolver.Row{"id": 10, "slug": "news"},
			resolver.Row{"id": 11, "slug": "tech"},
		),
		memory.WithTable("people", "id",
			resolver.Row{"id": 7, "first": "John Paul", "last": "Doe"},
		),
		memory.WithModel("Person", "people"),
		memory.WithRelation("articles", "category", resolver.Relation{Table: "categories"}),
	)
}

func newRouter(t *testing.T, store resolver.Resolver, opts ...Option) *Router {
	t.Helper()

	r, err := New(append([]Option{WithResolver(store)}, opts...)...)
	require.NoError(t, err)

	return r
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := newRouter(t, newStore())
	require.NoError(t, r.AddRoutes(
		Declaration{Pattern: "/blog/:category.slug/:title", Controller: "ArticleController", Options: DeclarationOptions{Entity: articles}},
		Declaration{Pattern: "/people/:first-:last", Controller: "PersonController", Options: DeclarationOptions{Entity: resolver.EntityRef{Model: "Person"}}},
	))

	cases := []struct {
		controller string
		id         int
		url        string
	}{
		{"ArticleController", 1, "/blog/tech/hello-world"},
		{"ArticleController", 2, "/blog/news/second-post"},
		{"ArticleController", 3, "/blog/news/hello-again"},
		{"PersonController", 7, "/people/john-paul-doe"},
	}
	for _, c := range cases {
		url, ok, err := r.Generate(ctx, c.controller, generator.ID(c.id))
		require.NoError(t, err)
		require.True(t, ok, c.url)
		assert.Equal(t, c.url, url)

		m, ok, err := r.Match(ctx, url)
		require.NoError(t, err)
		require.True(t, ok, url)
		assert.Equal(t, c.controller, m.Controller)
		assert.EqualValues(t, c.id, m.ID)
	}
}

func TestMatchResult(t *testing.T) {
	t.Parallel()

	r := newRouter(t, newStore())
	require.NoError(t, r.AddRoute("/blog/:category.slug/:title", "ArticleController", DeclarationOptions{
		Entity: articles,
		Tags:   map[string]string{"lang": "en"},
	}))

	m, ok, err := r.Match(context.Background(), "/blog/news/second-post")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "ArticleController", m.Controller)
	assert.EqualValues(t, 2, m.ID)
	assert.Equal(t, "articles", m.Entity.Table)
	assert.Equal(t, "id", m.Entity.Primary)
	assert.Equal(t, map[string]string{"lang": "en"}, m.Tags)
	assert.Equal(t, map[string]string{"category.slug": "news", "title": "second-post"}, m.Params)
	assert.Equal(t, "/blog/:category.slug/:title", m.Route.Pattern())
}

func TestMatchMiss(t *testing.T) {
	t.Parallel()

	var kinds []EventKind
	r := newRouter(t, newStore(), WithEventHandler(EventHandlerFunc(func(e Event) { kinds = append(kinds, e.Kind) })))
	require.NoError(t, r.AddRoute("/articles/:title", "ArticleController", DeclarationOptions{Entity: articles}))

	_, ok, err := r.Match(context.Background(), "/articles/missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = r.Match(context.Background(), "/other")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, []EventKind{EventTableLoaded, EventMiss, EventMiss}, kinds)
}

func TestSpecificityOrder(t *testing.T) {
	t.Parallel()

	r := newRouter(t, newStore())
	require.NoError(t, r.AddRoutes(
		Declaration{Pattern: "/a/:id", Controller: "Short", Options: DeclarationOptions{Entity: articles}},
		Declaration{Pattern: "/a/:title/:id", Controller: "Dynamic", Options: DeclarationOptions{Entity: articles}},
		Declaration{Pattern: "/a/b/:id", Controller: "Static", Options: DeclarationOptions{Entity: articles}},
	))

	routes, err := r.Routes(context.Background())
	require.NoError(t, err)
	require.Len(t, routes, 3)
	assert.Equal(t, "Static", routes[0].Controller())
	assert.Equal(t, "Dynamic", routes[1].Controller())
	assert.Equal(t, "Short", routes[2].Controller())

	m, ok, err := r.Match(context.Background(), "/a/b/5")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Static", m.Controller)
	assert.EqualValues(t, 5, m.ID)
}

func TestStableOrderForEqualSpecificity(t *testing.T) {
	t.Parallel()

	r := newRouter(t, nil)
	require.NoError(t, r.AddRoutes(
		Declaration{Pattern: "/first", Controller: "A"},
		Declaration{Pattern: "/second", Controller: "B"},
		Declaration{Pattern: "/third", Controller: "C"},
	))

	routes, err := r.Routes(context.Background())
	require.NoError(t, err)
	got := make([]string, 0, len(routes))
	for _, route := range routes {
		got = append(got, route.Controller())
	}
	assert.Equal(t, []string{"A", "B", "C"}, got)
}

func TestDuplicateRoute(t *testing.T) {
	t.Parallel()

	r := newRouter(t, newStore())
	require.NoError(t, r.AddRoutes(
		Declaration{Pattern: "/articles/:title", Controller: "A", Options: DeclarationOptions{Entity: articles}},
		Declaration{Pattern: "/articles/:name", Controller: "B", Options: DeclarationOptions{Entity: articles}},
	))

	err := r.Load(context.Background())
	require.ErrorIs(t, err, ErrDuplicateRoute)

	var routeErr *RouteError
	require.ErrorAs(t, err, &routeErr)
	assert.Equal(t, "/articles/:name", routeErr.Pattern)
	assert.Equal(t, "B", routeErr.Controller)

	_, _, err = r.Match(context.Background(), "/articles/x")
	require.ErrorIs(t, err, ErrDuplicateRoute, "the table stays unloaded")
}

func TestSamePatternDifferentCaseSensitivity(t *testing.T) {
	t.Parallel()

	r := newRouter(t, nil)
	require.NoError(t, r.AddRoutes(
		Declaration{Pattern: "/About", Controller: "Exact"},
		Declaration{Pattern: "/About", Controller: "Loose", Options: DeclarationOptions{CaseSensitive: Bool(false)}},
	))
	require.NoError(t, r.Load(context.Background()))

	m, ok, err := r.Match(context.Background(), "/about")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Loose", m.Controller)

	m, ok, err = r.Match(context.Background(), "/About")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Exact", m.Controller)
}

func TestGenerateTags(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := newRouter(t, newStore())
	require.NoError(t, r.AddRoute("/en/:title", "ArticleController", DeclarationOptions{
		Entity: articles,
		Tags:   map[string]string{"lang": "en"},
	}))

	url, ok, err := r.Generate(ctx, "ArticleController", generator.ID(2))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/en/second-post", url)

	url, ok, err = r.Generate(ctx, "ArticleController", generator.ID(2), Tags(map[string]string{"lang": "en"}))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/en/second-post", url)

	_, ok, err = r.Generate(ctx, "ArticleController", generator.ID(2), Tags(map[string]string{"lang": "fr"}))
	require.NoError(t, err)
	assert.False(t, ok)

	routes, err := r.RoutesForController(ctx, "ArticleController", map[string]string{"lang": "fr"})
	require.NoError(t, err)
	assert.Empty(t, routes)
}

func TestGenerateFallsThroughRoutes(t *testing.T) {
	t.Parallel()

	r := newRouter(t, newStore())
	require.NoError(t, r.AddRoutes(
		Declaration{Pattern: "/a/:subtitle", Controller: "ArticleController", Options: DeclarationOptions{Entity: articles}},
		Declaration{Pattern: "/b/:title", Controller: "ArticleController", Options: DeclarationOptions{Entity: articles}},
	))

	url, ok, err := r.Generate(context.Background(), "ArticleController", generator.ID(1))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/b/hello-world", url)

	_, ok, err = r.Generate(context.Background(), "Unknown", generator.None)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBasePath(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := newRouter(t, newStore(), WithBasePath("/site/"))
	require.NoError(t, r.AddRoutes(
		Declaration{Pattern: "/articles/:id", Controller: "ArticleController", Options: DeclarationOptions{Entity: articles}},
		Declaration{Pattern: "/", Controller: "HomeController"},
	))

	url, ok, err := r.Generate(ctx, "ArticleController", generator.ID(1))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/site/articles/1", url)

	url, ok, err = r.Generate(ctx, "ArticleController", generator.ID(1), BasePath("/other"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/other/articles/1", url)

	url, ok, err = r.Generate(ctx, "HomeController", generator.None)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/site/", url)
}

type countingCache struct {
	Cache
	mu   sync.Mutex
	hits int
}

func (c *countingCache) Get(key uint64) (any, bool) {
	v, ok := c.Cache.Get(key)
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
	}

	return v, ok
}

func TestCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newStore()
	cache := &countingCache{Cache: NewLRUCache(16, time.Minute)}
	r := newRouter(t, store, WithCache(cache))
	require.NoError(t, r.AddRoute("/articles/:title", "ArticleController", DeclarationOptions{Entity: articles}))

	first, ok, err := r.Match(ctx, "/articles/second-post")
	require.NoError(t, err)
	require.True(t, ok)
	fetches := store.Fetches()

	second, ok, err := r.Match(ctx, "/articles/second-post")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, fetches, store.Fetches(), "served from cache")
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, first.ID, second.ID)

	second.Params["title"] = "mutated"
	third, _, _ := r.Match(ctx, "/articles/second-post")
	assert.Equal(t, "second-post", third.Params["title"], "cached results are copied")

	_, _, err = r.Match(ctx, "/articles/second-post", SkipCache())
	require.NoError(t, err)
	assert.Greater(t, store.Fetches(), fetches)

	_, ok, err = r.Match(ctx, "/articles/missing")
	require.NoError(t, err)
	require.False(t, ok)
	_, _, _ = r.Match(ctx, "/articles/missing")
	assert.Equal(t, 2, cache.hits, "misses are not cached")

	url, ok, err := r.Generate(ctx, "ArticleController", generator.ID(1))
	require.NoError(t, err)
	require.True(t, ok)
	before := store.Fetches()
	again, _, _ := r.Generate(ctx, "ArticleController", generator.ID(1))
	assert.Equal(t, url, again)
	assert.Equal(t, before, store.Fetches())

	r.Invalidate()
	_, _, _ = r.Generate(ctx, "ArticleController", generator.ID(1))
	assert.Greater(t, store.Fetches(), before, "invalidate purges the cache")
}

func TestCacheKeysAreUnambiguous(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := newRouter(t, newStore(), WithCache(NewLRUCache(16, time.Minute)))
	require.NoError(t, r.AddRoutes(
		Declaration{Pattern: "/p/:author", Controller: "PageController", Options: DeclarationOptions{Entity: articles}},
		Declaration{Pattern: "/x", Controller: "TagController", Options: DeclarationOptions{Tags: map[string]string{"a": "1", "b": "2"}}},
		Declaration{Pattern: "/y", Controller: "TagController", Options: DeclarationOptions{Tags: map[string]string{"a": "1\x00b=2"}}},
	))

	url, ok, err := r.Generate(ctx, "PageController", generator.Attrs(map[string]any{"author": "a&title=b"}))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/p/atitleb", url)

	url, ok, err = r.Generate(ctx, "PageController", generator.Attrs(map[string]any{"author": "a", "title": "b"}))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/p/a", url, "attribute values cannot forge another element's key")

	url, ok, err = r.Generate(ctx, "TagController", generator.None, Tags(map[string]string{"a": "1\x00b=2"}))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/y", url)

	url, ok, err = r.Generate(ctx, "TagController", generator.None, Tags(map[string]string{"a": "1", "b": "2"}))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/x", url, "tag values cannot forge another tag set's key")
}

func TestWithoutCache(t *testing.T) {
	t.Parallel()

	store := newStore()
	r := newRouter(t, store, WithoutCache())
	require.NoError(t, r.AddRoute("/articles/:title", "ArticleController", DeclarationOptions{Entity: articles}))

	_, _, err := r.Match(context.Background(), "/articles/second-post")
	require.NoError(t, err)
	n := store.Fetches()
	_, _, err = r.Match(context.Background(), "/articles/second-post")
	require.NoError(t, err)
	assert.Equal(t, 2*n, store.Fetches())
}

type hookProvider struct {
	decls []Declaration
}

func (p hookProvider) Routes(context.Context) ([]Declaration, error) {
	return p.decls, nil
}

func (hookProvider) PreMatchURL(_ context.Context, url string) (string, error) {
	return strings.TrimPrefix(url, "/en"), nil
}

func (hookProvider) PostGenerateURL(_ context.Context, url string, req GenerateRequest) (string, error) {
	if lang, ok := req.Tags["lang"]; ok {
		return url + "?lang=" + lang, nil
	}

	return url, nil
}

func TestProviderHooks(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := hookProvider{decls: []Declaration{{
		Pattern:    "/articles/:id",
		Controller: "ArticleController",
		Options:    DeclarationOptions{Entity: articles, Tags: map[string]string{"lang": "en"}},
	}}}
	r := newRouter(t, newStore(), WithProviders(p), WithBasePath("/base"))

	m, ok, err := r.Match(ctx, "/en/articles/3")
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 3, m.ID)

	url, ok, err := r.Generate(ctx, "ArticleController", generator.ID(3), Tags(map[string]string{"lang": "en"}))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/base/articles/3?lang=en", url, "base path is applied before post-processing")
}

func TestProviderError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	r := newRouter(t, nil, WithProviders(ProviderFunc(func(context.Context) ([]Declaration, error) {
		return nil, boom
	})))

	require.ErrorIs(t, r.Load(context.Background()), boom)
}

func TestReentrantLoad(t *testing.T) {
	t.Parallel()

	var r *Router
	var inner error
	r = newRouter(t, nil, WithProviders(ProviderFunc(func(ctx context.Context) ([]Declaration, error) {
		_, _, inner = r.Match(ctx, "/x")
		return []Declaration{{Pattern: "/x", Controller: "X"}}, nil
	})))

	require.NoError(t, r.Load(context.Background()))
	require.ErrorIs(t, inner, ErrTableLoading)
}

func TestConfigurationErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	tests := []struct {
		name  string
		store resolver.Resolver
		decl  Declaration
		want  error
	}{
		{
			name: "entity without resolver",
			decl: Declaration{Pattern: "/a/:title", Controller: "A", Options: DeclarationOptions{Entity: articles}},
			want: ErrNoResolver,
		},
		{
			name:  "unknown table",
			store: newStore(),
			decl:  Declaration{Pattern: "/a/:title", Controller: "A", Options: DeclarationOptions{Entity: resolver.EntityRef{Table: "nope"}}},
			want:  resolver.ErrUnknownTable,
		},
		{
			name:  "unknown model",
			store: newStore(),
			decl:  Declaration{Pattern: "/a/:title", Controller: "A", Options: DeclarationOptions{Entity: resolver.EntityRef{Model: "Nope"}}},
			want:  resolver.ErrUnknownModel,
		},
		{
			name:  "malformed pattern",
			store: newStore(),
			decl:  Declaration{Pattern: `/a/:ti\tle`, Controller: "A"},
			want:  compiler.ErrMalformedPattern,
		},
		{
			name:  "undeclared relationship",
			store: newStore(),
			decl: Declaration{Pattern: "/a/:author.name", Controller: "A", Options: DeclarationOptions{
				Entity:        articles,
				Relationships: []string{"category"},
			}},
			want: compiler.ErrUndeclaredRelationship,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var opts []Option
			if tt.store != nil {
				opts = append(opts, WithResolver(tt.store))
			}
			r, err := New(append(opts, WithRoutes(tt.decl))...)
			require.NoError(t, err)

			err = r.Load(ctx)
			require.ErrorIs(t, err, tt.want)

			var routeErr *RouteError
			require.ErrorAs(t, err, &routeErr)
			assert.Equal(t, tt.decl.Pattern, routeErr.Pattern)
		})
	}
}

func TestInvalidDeclarations(t *testing.T) {
	t.Parallel()

	r := newRouter(t, nil)
	require.ErrorIs(t, r.AddRoute("", "A", DeclarationOptions{}), ErrInvalidDeclaration)
	require.ErrorIs(t, r.AddRoute("/a", "", DeclarationOptions{}), ErrInvalidDeclaration)
	require.ErrorIs(t, r.AddRoute("/a", "A", DeclarationOptions{Raw: []string{""}}), ErrInvalidDeclaration)

	routes, err := r.Routes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, routes, "nothing is added on error")

	_, err = New(WithRoutes(Declaration{Pattern: "/a"}))
	require.ErrorIs(t, err, ErrInvalidDeclaration)
	assert.Panics(t, func() { MustNew(WithRoutes(Declaration{Controller: "A"})) })
}

func TestClearRoutes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := hookProvider{decls: []Declaration{{Pattern: "/provided", Controller: "P"}}}
	r := newRouter(t, nil, WithProviders(p))
	require.NoError(t, r.AddRoute("/static", "S", DeclarationOptions{}))

	routes, err := r.Routes(ctx)
	require.NoError(t, err)
	assert.Len(t, routes, 2)

	r.ClearRoutes()
	routes, err = r.Routes(ctx)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "P", routes[0].Controller())

	_, ok, err := r.Match(ctx, "/static")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestActive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := newRouter(t, nil)
	require.NoError(t, r.AddRoutes(
		Declaration{Pattern: "/a", Controller: "A"},
		Declaration{Pattern: "/b", Controller: "B"},
	))

	_, ok := r.Active()
	assert.False(t, ok)

	_, _, err := r.Match(ctx, "/a")
	require.NoError(t, err)
	_, ok = r.Active()
	assert.False(t, ok, "only Activate marks a match")

	_, _, err = r.Match(ctx, "/b", Activate())
	require.NoError(t, err)
	m, ok := r.Active()
	require.True(t, ok)
	assert.Equal(t, "B", m.Controller)

	r.Invalidate()
	_, ok = r.Active()
	assert.False(t, ok)
}

func TestEvents(t *testing.T) {
	t.Parallel()

	var events []Event
	r := newRouter(t, newStore(), WithoutCache(), WithEventHandler(EventHandlerFunc(func(e Event) { events = append(events, e) })))
	require.NoError(t, r.AddRoute("/articles/:id", "ArticleController", DeclarationOptions{Entity: articles}))

	_, _, err := r.Generate(context.Background(), "ArticleController", generator.ID(1), Tags(map[string]string{}))
	require.NoError(t, err)
	_, _, err = r.Match(context.Background(), "/articles/1")
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, EventTableLoaded, events[0].Kind)
	assert.Equal(t, 1, events[0].Fields["routes"])

	assert.Equal(t, EventGenerate, events[1].Kind)
	require.NotNil(t, events[1].Request)
	assert.Equal(t, "ArticleController", events[1].Request.Controller)
	assert.Equal(t, "id:1", events[1].Request.Element.String())

	assert.Equal(t, EventMatch, events[2].Kind)
	assert.Equal(t, "/articles/1", events[2].URL)
}

func TestEventsOnCacheHit(t *testing.T) {
	t.Parallel()

	var events []Event
	r := newRouter(t, newStore(), WithCache(NewLRUCache(16, time.Minute)), WithEventHandler(EventHandlerFunc(func(e Event) { events = append(events, e) })))
	require.NoError(t, r.AddRoute("/articles/:title", "ArticleController", DeclarationOptions{Entity: articles}))

	ctx := context.Background()
	for range 2 {
		_, ok, err := r.Match(ctx, "/articles/second-post")
		require.NoError(t, err)
		require.True(t, ok)
	}

	require.Len(t, events, 3)
	assert.Equal(t, EventTableLoaded, events[0].Kind)
	for _, e := range events[1:] {
		assert.Equal(t, EventMatch, e.Kind, "cached and fresh matches emit the same event")
		assert.Equal(t, "ArticleController", e.Controller)
		assert.Equal(t, "/articles/second-post", e.URL)
		assert.Equal(t, 2, e.Fields["id"])
		assert.Equal(t, "/articles/:title", e.Fields["pattern"])
	}
}

type fakeRecorder struct {
	mu       sync.Mutex
	matches  []string
	generate []string
	lookups  []bool
	routes   int
	resolver map[string]int
}

func (f *fakeRecorder) RecordMatch(_ context.Context, outcome string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matches = append(f.matches, outcome)
}

func (f *fakeRecorder) RecordGenerate(_ context.Context, outcome string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generate = append(f.generate, outcome)
}

func (f *fakeRecorder) RecordCacheLookup(_ context.Context, _ string, hit bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups = append(f.lookups, hit)
}

func (f *fakeRecorder) RecordTableLoad(_ context.Context, routes int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes = routes
}

func (f *fakeRecorder) RecordResolverCall(_ context.Context, op string, _ time.Duration, _ error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resolver == nil {
		f.resolver = make(map[string]int)
	}
	f.resolver[op]++
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rec := &fakeRecorder{}
	r := newRouter(t, newStore(), WithRecorder(rec))
	require.NoError(t, r.AddRoute("/articles/:title", "ArticleController", DeclarationOptions{Entity: articles}))

	_, _, err := r.Match(ctx, "/articles/second-post")
	require.NoError(t, err)
	_, _, err = r.Match(ctx, "/articles/second-post")
	require.NoError(t, err)
	_, _, err = r.Match(ctx, "/articles/missing")
	require.NoError(t, err)
	_, _, err = r.Generate(ctx, "ArticleController", generator.ID(99))
	require.NoError(t, err)

	assert.Equal(t, []string{OutcomeHit, OutcomeHit, OutcomeMiss}, rec.matches)
	assert.Equal(t, []string{OutcomeMiss}, rec.generate)
	assert.Equal(t, []bool{false, true, false, false}, rec.lookups)
	assert.Equal(t, 1, rec.routes)
	assert.Equal(t, 1, rec.resolver["parse_entity"])
	assert.Positive(t, rec.resolver["fetch"])
}

func TestTracing(t *testing.T) {
	t.Parallel()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	r := newRouter(t, newStore(), WithTracerProvider(tp))
	require.NoError(t, r.AddRoute("/articles/:title", "ArticleController", DeclarationOptions{Entity: articles}))

	_, ok, err := r.Match(context.Background(), "/articles/second-post")
	require.NoError(t, err)
	require.True(t, ok)

	names := make(map[string]bool)
	var match sdktrace.ReadOnlySpan
	for _, s := range sr.Ended() {
		names[s.Name()] = true
		if s.Name() == "prettyurl.Match" {
			match = s
		}
	}
	assert.True(t, names["prettyurl.LoadTable"])
	assert.True(t, names["prettyurl.resolver.parse_entity"])
	assert.True(t, names["prettyurl.resolver.fetch"])
	require.NotNil(t, match)

	for _, s := range sr.Ended() {
		if s.Name() == "prettyurl.resolver.fetch" {
			assert.Equal(t, match.SpanContext().SpanID(), s.Parent().SpanID(), "resolver spans are children of the call")
		}
	}
}

func TestLogging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := newRouter(t, newStore(), WithLogger(logger))
	require.NoError(t, r.AddRoute("/articles/:title", "ArticleController", DeclarationOptions{Entity: articles}))

	_, _, err := r.Match(context.Background(), "/articles/missing")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"route table loaded"`)
	assert.Contains(t, out, `"routes":1`)
	assert.Contains(t, out, `"msg":"no route matched"`)
}

func TestConcurrentFirstUse(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	builds := 0
	p := ProviderFunc(func(context.Context) ([]Declaration, error) {
		mu.Lock()
		builds++
		mu.Unlock()
		time.Sleep(10 * time.Millisecond)
		return []Declaration{{Pattern: "/articles/:id", Controller: "ArticleController", Options: DeclarationOptions{Entity: articles}}}, nil
	})
	r := newRouter(t, newStore(), WithProviders(p))

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			_, ok, err := r.Match(context.Background(), "/articles/1", SkipCache())
			assert.NoError(t, err)
			assert.True(t, ok)
		})
	}
	wg.Wait()

	assert.Equal(t, 1, builds)
}

func TestCanceledCallerDoesNotFailSharedLoad(t *testing.T) {
	t.Parallel()

	started, release := make(chan struct{}), make(chan struct{})
	var once sync.Once
	p := ProviderFunc(func(ctx context.Context) ([]Declaration, error) {
		once.Do(func() { close(started) })
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []Declaration{{Pattern: "/about", Controller: "AboutController"}}, nil
	})
	r := newRouter(t, nil, WithProviders(p))

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() { first <- r.Load(ctx) }()
	<-started
	cancel()

	second := make(chan error, 1)
	go func() {
		_, _, err := r.Match(context.Background(), "/about")
		second <- err
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)

	require.NoError(t, <-first, "the build ignores the starting caller's cancellation")
	require.NoError(t, <-second)

	m, ok, err := r.Match(context.Background(), "/about")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "AboutController", m.Controller)
}
