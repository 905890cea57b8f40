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
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/singleflight"

	"rivaas.dev/prettyurl/resolver"
	"rivaas.dev/prettyurl/router/compiler"
	"rivaas.dev/prettyurl/router/generator"
	"rivaas.dev/prettyurl/router/matcher"
	"rivaas.dev/prettyurl/router/slug"
	"rivaas.dev/prettyurl/telemetry/semconv"
)

const tracerName = "rivaas.dev/prettyurl/router"

// Router owns a route table and dispatches match and generate calls to it.
//
// The table is built lazily from the providers and static declarations on
// first use and rebuilt after Invalidate. Match and Generate hold no lock
// while they run; a Router is meant to be owned by one request at a time,
// except for the cache and the table build, which are safe to share.
//
// Example:
//
//	r := router.MustNew(router.WithResolver(store))
//	_ = r.AddRoute("/blog/:category.slug/:title", "ArticleController",
//	    router.DeclarationOptions{Entity: resolver.EntityRef{Table: "articles"}})
//
//	m, ok, err := r.Match(ctx, "/blog/news/hello-world")
//	url, ok, err := r.Generate(ctx, "ArticleController", generator.ID(m.ID))
type Router struct {
	rawResolver    resolver.Resolver
	resolver       resolver.Resolver
	providers      []Provider
	logger         *slog.Logger
	events         EventHandler
	cache          Cache
	noCache        bool
	basePath       string
	normalizer     *slug.Normalizer
	recorder       Recorder
	tracerProvider trace.TracerProvider
	tracer         trace.Tracer

	matcher   *matcher.Matcher
	generator *generator.Generator

	mu         sync.Mutex
	static     []Declaration
	table      *Table
	generation uint64
	group      singleflight.Group

	active atomic.Pointer[Match]
}

// Match is a successful match.
type Match struct {
	// Route is the matched route.
	Route *compiler.Route

	// Controller is the controller of the route.
	Controller string

	// ID is the primary key of the matched row, nil for routes without data.
	ID any

	// Entity is the entity of the route, zero when it has none.
	Entity resolver.Entity

	// Tags are the route's tags.
	Tags map[string]string

	// Params is the URL text captured per field.
	Params map[string]string

	// Row is the matched row when a lookup found it.
	Row resolver.Row
}

func (m Match) clone() Match {
	m.Tags = maps.Clone(m.Tags)
	m.Params = maps.Clone(m.Params)
	m.Row = maps.Clone(m.Row)

	return m
}

// New creates a router.
//
// Returns an error when a static declaration is invalid.
func New(opts ...Option) (*Router, error) {
	r := &Router{}
	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	if r.recorder == nil {
		r.recorder = noopRecorder{}
	}
	if r.tracerProvider == nil {
		r.tracerProvider = noop.NewTracerProvider()
	}
	r.tracer = r.tracerProvider.Tracer(tracerName)
	if r.cache == nil && !r.noCache {
		r.cache = NewLRUCache(DefaultCacheSize, DefaultCacheTTL)
	}
	if r.normalizer == nil {
		r.normalizer = slug.MustNew()
	}
	if r.rawResolver != nil {
		r.resolver = &observedResolver{Resolver: r.rawResolver, tracer: r.tracer, recorder: r.recorder}
	}

	r.matcher = matcher.New(r.resolver)
	r.generator = generator.New(r.resolver, generator.WithNormalizer(r.normalizer))

	for _, d := range r.static {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("router configuration validation failed: %w", err)
		}
	}

	return r, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *Router {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("router.MustNew: %v", err))
	}

	return r
}

// AddRoute declares a route and invalidates the table.
func (r *Router) AddRoute(pattern, controller string, opts DeclarationOptions) error {
	return r.AddRoutes(Declaration{Pattern: pattern, Controller: controller, Options: opts})
}

// AddRoutes declares routes and invalidates the table. Nothing is added
// when any declaration is invalid.
func (r *Router) AddRoutes(decls ...Declaration) error {
	for _, d := range decls {
		if err := d.Validate(); err != nil {
			return err
		}
	}

	r.mu.Lock()
	r.static = append(r.static, decls...)
	r.mu.Unlock()
	r.Invalidate()

	return nil
}

// ClearRoutes drops every static declaration and invalidates the table.
// Provider routes come back on the next build.
func (r *Router) ClearRoutes() {
	r.mu.Lock()
	r.static = nil
	r.mu.Unlock()
	r.Invalidate()
}

// Invalidate discards the route table and the cached results. The table is
// rebuilt on next use.
func (r *Router) Invalidate() {
	r.mu.Lock()
	r.table = nil
	r.generation++
	r.mu.Unlock()

	if r.cache != nil {
		r.cache.Purge()
	}
	r.active.Store(nil)
}

// Load builds the route table now instead of on first use. Configuration
// errors such as duplicate routes surface here.
func (r *Router) Load(ctx context.Context) error {
	_, err := r.load(ctx)
	return err
}

// Routes returns every route in the order they are tried.
func (r *Router) Routes(ctx context.Context) ([]*compiler.Route, error) {
	t, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	return t.Routes(), nil
}

// RoutesForController returns the routes of controller that carry all of
// tags, in the order generation tries them.
func (r *Router) RoutesForController(ctx context.Context, controller string, tags map[string]string) ([]*compiler.Route, error) {
	t, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	return t.ForController(controller, tags), nil
}

// Active returns the last match made with Activate.
func (r *Router) Active() (Match, bool) {
	m := r.active.Load()
	if m == nil {
		return Match{}, false
	}

	return m.clone(), true
}

// Match matches url against the route table. Routes are tried in
// specificity order and the first that matches wins.
//
// A URL that matches nothing is not an error: Match returns false.
// Errors report misconfiguration and resolver failures.
func (r *Router) Match(ctx context.Context, url string, opts ...CallOption) (Match, bool, error) {
	cfg := newCallConfig(opts)
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "prettyurl.Match", trace.WithAttributes(attribute.String(semconv.URL, url)))

	m, ok, err := r.match(ctx, url, cfg)

	r.recorder.RecordMatch(ctx, outcome(ok, err), time.Since(start))
	span.SetAttributes(attribute.Bool(semconv.Matched, ok))
	if ok {
		span.SetAttributes(attribute.String(semconv.Controller, m.Controller))
	}
	endSpan(span, err)

	return m, ok, err
}

func (r *Router) match(ctx context.Context, url string, cfg callConfig) (Match, bool, error) {
	t, err := r.load(ctx)
	if err != nil {
		return Match{}, false, err
	}
	if url, err = r.preMatch(ctx, url); err != nil {
		return Match{}, false, err
	}

	var key uint64
	useCache := r.cache != nil && !cfg.skipCache
	if useCache {
		key = matchKey(url)
		if v, ok := r.cache.Get(key); ok {
			r.recorder.RecordCacheLookup(ctx, CacheOpMatch, true)
			r.logger.DebugContext(ctx, "match cache hit", "url", url)
			m := v.(Match)
			r.activate(cfg, m)
			r.emitMatch(url, m)
			return m.clone(), true, nil
		}
		r.recorder.RecordCacheLookup(ctx, CacheOpMatch, false)
	}

	for _, route := range t.routes {
		res, ok, err := r.matcher.Match(ctx, url, route)
		if err != nil {
			return Match{}, false, fmt.Errorf("router: match %q with %q: %w", url, route.Pattern(), err)
		}
		if !ok {
			continue
		}

		m := Match{
			Route:      route,
			Controller: route.Controller(),
			ID:         res.ID,
			Tags:       route.Tags(),
			Params:     res.Params,
			Row:        res.Row,
		}
		m.Entity, _ = route.Entity()

		if useCache {
			r.cache.Add(key, m.clone())
		}
		r.activate(cfg, m)
		r.emitMatch(url, m)

		return m, true, nil
	}

	r.logger.DebugContext(ctx, "no route matched", "url", url)
	r.emit(Event{Kind: EventMiss, URL: url})

	return Match{}, false, nil
}

func (r *Router) emitMatch(url string, m Match) {
	r.emit(Event{Kind: EventMatch, Controller: m.Controller, URL: url, Fields: map[string]any{"id": m.ID, "pattern": m.Route.Pattern()}})
}

// Generate returns the URL of el for controller. Routes of the controller
// that carry the requested tags are tried in table order and the first URL
// produced wins. The base path is prefixed before post-processors run.
//
// When no route can produce a URL, Generate returns false.
func (r *Router) Generate(ctx context.Context, controller string, el generator.Element, opts ...CallOption) (string, bool, error) {
	cfg := newCallConfig(opts)
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "prettyurl.Generate", trace.WithAttributes(
		attribute.String(semconv.Controller, controller),
		attribute.String(semconv.Element, el.String()),
	))

	url, ok, err := r.generate(ctx, controller, el, cfg)

	r.recorder.RecordGenerate(ctx, outcome(ok, err), time.Since(start))
	span.SetAttributes(attribute.Bool(semconv.Generated, ok))
	endSpan(span, err)

	return url, ok, err
}

func (r *Router) generate(ctx context.Context, controller string, el generator.Element, cfg callConfig) (string, bool, error) {
	t, err := r.load(ctx)
	if err != nil {
		return "", false, err
	}

	req := GenerateRequest{Controller: controller, Element: el, Tags: maps.Clone(cfg.tags)}
	r.emit(Event{Kind: EventGenerate, Controller: controller, Request: &req})

	basePath := r.basePath
	if cfg.basePath != nil {
		basePath = *cfg.basePath
	}

	var key uint64
	useCache := r.cache != nil && !cfg.skipCache
	if useCache {
		key = generateKey(controller, el, cfg.tags, basePath)
		if v, ok := r.cache.Get(key); ok {
			r.recorder.RecordCacheLookup(ctx, CacheOpGenerate, true)
			r.logger.DebugContext(ctx, "generate cache hit", "controller", controller)
			return v.(string), true, nil
		}
		r.recorder.RecordCacheLookup(ctx, CacheOpGenerate, false)
	}

	for _, route := range t.ForController(controller, cfg.tags) {
		url, ok, err := r.generator.Generate(ctx, route, el)
		if err != nil {
			return "", false, fmt.Errorf("router: generate %s with %q: %w", controller, route.Pattern(), err)
		}
		if !ok {
			continue
		}

		url = basePath + url
		if url, err = r.postGenerate(ctx, url, req); err != nil {
			return "", false, err
		}
		if useCache {
			r.cache.Add(key, url)
		}

		return url, true, nil
	}

	r.logger.DebugContext(ctx, "no route generated", "controller", controller, "element", el.String())
	r.emit(Event{Kind: EventMiss, Controller: controller, Request: &req})

	return "", false, nil
}

func (r *Router) preMatch(ctx context.Context, url string) (string, error) {
	for _, p := range r.providers {
		pre, ok := p.(URLPreprocessor)
		if !ok {
			continue
		}
		var err error
		if url, err = pre.PreMatchURL(ctx, url); err != nil {
			return "", fmt.Errorf("router: pre-match hook: %w", err)
		}
	}

	return url, nil
}

func (r *Router) postGenerate(ctx context.Context, url string, req GenerateRequest) (string, error) {
	for _, p := range r.providers {
		post, ok := p.(URLPostprocessor)
		if !ok {
			continue
		}
		var err error
		if url, err = post.PostGenerateURL(ctx, url, req); err != nil {
			return "", fmt.Errorf("router: post-generate hook: %w", err)
		}
	}

	return url, nil
}

func (r *Router) activate(cfg callConfig, m Match) {
	if cfg.activate {
		m = m.clone()
		r.active.Store(&m)
	}
}

func (r *Router) emit(e Event) {
	if r.events != nil {
		r.events.OnEvent(e)
	}
}
