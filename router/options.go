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
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"rivaas.dev/prettyurl/resolver"
	"rivaas.dev/prettyurl/router/slug"
)

// Option configures a Router.
type Option func(*Router)

// WithResolver sets the resolver used for entities and data lookups.
// Routes without entities work without one.
func WithResolver(res resolver.Resolver) Option {
	return func(r *Router) {
		r.rawResolver = res
	}
}

// WithProviders adds route providers. They are asked for their routes, in
// order, each time the table is built.
//
// Example:
//
//	r := router.MustNew(
//	    router.WithResolver(store),
//	    router.WithProviders(router.ProviderFunc(func(ctx context.Context) ([]router.Declaration, error) {
//	        return []router.Declaration{{Pattern: "/blog/:title", Controller: "ArticleController"}}, nil
//	    })),
//	)
func WithProviders(providers ...Provider) Option {
	return func(r *Router) {
		r.providers = append(r.providers, providers...)
	}
}

// WithRoutes adds static route declarations, loaded after the providers'.
func WithRoutes(decls ...Declaration) Option {
	return func(r *Router) {
		r.static = append(r.static, decls...)
	}
}

// WithLogger sets the logger. The router logs table builds at info level
// and misses and cache hits at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithEventHandler sets the handler receiving router events.
func WithEventHandler(handler EventHandler) Option {
	return func(r *Router) {
		r.events = handler
	}
}

// WithCache replaces the default result cache.
func WithCache(cache Cache) Option {
	return func(r *Router) {
		r.cache = cache
	}
}

// WithoutCache disables result caching.
func WithoutCache() Option {
	return func(r *Router) {
		r.cache = nil
		r.noCache = true
	}
}

// WithBasePath prefixes every generated URL with basePath.
func WithBasePath(basePath string) Option {
	return func(r *Router) {
		r.basePath = strings.TrimRight(basePath, "/")
	}
}

// WithNormalizer sets the slug normalizer used for generated values.
func WithNormalizer(n *slug.Normalizer) Option {
	return func(r *Router) {
		r.normalizer = n
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(rec Recorder) Option {
	return func(r *Router) {
		r.recorder = rec
	}
}

// WithTracerProvider sets the tracer provider used for spans around match,
// generate, table builds and resolver calls.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Router) {
		r.tracerProvider = tp
	}
}

// CallOption configures a single Match or Generate call.
type CallOption func(*callConfig)

type callConfig struct {
	tags      map[string]string
	basePath  *string
	skipCache bool
	activate  bool
}

func newCallConfig(opts []CallOption) callConfig {
	var cfg callConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// Tags restricts generation to routes carrying all of tags.
func Tags(tags map[string]string) CallOption {
	return func(c *callConfig) {
		c.tags = tags
	}
}

// BasePath overrides the router's base path for one generation.
func BasePath(basePath string) CallOption {
	return func(c *callConfig) {
		p := strings.TrimRight(basePath, "/")
		c.basePath = &p
	}
}

// SkipCache bypasses the result cache for one call.
func SkipCache() CallOption {
	return func(c *callConfig) {
		c.skipCache = true
	}
}

// Activate marks a successful match as the router's active match.
func Activate() CallOption {
	return func(c *callConfig) {
		c.activate = true
	}
}
