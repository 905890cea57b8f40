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
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"rivaas.dev/prettyurl/resolver"
	"rivaas.dev/prettyurl/router/compiler"
	"rivaas.dev/prettyurl/telemetry/semconv"
)

// Table is a built route table: compiled routes in specificity order.
// A Table is immutable.
type Table struct {
	routes       []*compiler.Route
	byController map[string][]*compiler.Route
}

func newTable(routes []*compiler.Route) *Table {
	t := &Table{routes: routes, byController: make(map[string][]*compiler.Route)}
	for _, route := range routes {
		t.byController[route.Controller()] = append(t.byController[route.Controller()], route)
	}

	return t
}

// Routes returns the routes in the order they are tried.
func (t *Table) Routes() []*compiler.Route {
	return slices.Clone(t.routes)
}

// Len returns the number of routes.
func (t *Table) Len() int {
	return len(t.routes)
}

// ForController returns the routes of controller carrying all of tags, in
// table order.
func (t *Table) ForController(controller string, tags map[string]string) []*compiler.Route {
	routes := t.byController[controller]
	out := make([]*compiler.Route, 0, len(routes))
	for _, route := range routes {
		if route.MatchesTags(tags) {
			out = append(out, route)
		}
	}

	return out
}

// loadingKey marks a context as belonging to a table build of one router.
type loadingKey struct{ r *Router }

// load returns the route table, building it on first use.
func (r *Router) load(ctx context.Context) (*Table, error) {
	if ctx.Value(loadingKey{r}) != nil {
		return nil, ErrTableLoading
	}

	r.mu.Lock()
	t, gen := r.table, r.generation
	r.mu.Unlock()
	if t != nil {
		return t, nil
	}

	v, err, _ := r.group.Do(fmt.Sprint(gen), func() (any, error) {
		r.mu.Lock()
		t := r.table
		r.mu.Unlock()
		if t != nil {
			return t, nil
		}

		// The build is shared by every waiting caller, so one caller
		// canceling must not fail it for the others.
		return r.build(context.WithValue(context.WithoutCancel(ctx), loadingKey{r}, true), gen)
	})
	if err != nil {
		return nil, err
	}

	return v.(*Table), nil
}

// build compiles every declaration into a new table and stores it unless
// the router was invalidated in the meantime.
func (r *Router) build(ctx context.Context, gen uint64) (_ *Table, err error) {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "prettyurl.LoadTable")
	defer func() { endSpan(span, err) }()

	decls, err := r.declarations(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "route table build failed", "error", err)
		return nil, err
	}

	routes := make([]*compiler.Route, 0, len(decls))
	seen := make(map[string]string, len(decls))
	for _, d := range decls {
		route, err := r.compile(ctx, d)
		if err != nil {
			r.logger.ErrorContext(ctx, "route table build failed", "pattern", d.Pattern, "controller", d.Controller, "error", err)
			return nil, err
		}

		expr := route.Regex().String()
		if prev, dup := seen[expr]; dup {
			err := &RouteError{Pattern: d.Pattern, Controller: d.Controller, Err: fmt.Errorf("%w: same expression as %q", ErrDuplicateRoute, prev)}
			r.logger.ErrorContext(ctx, "route table build failed", "pattern", d.Pattern, "controller", d.Controller, "error", err)
			return nil, err
		}
		seen[expr] = d.Pattern
		routes = append(routes, route)
	}
	slices.SortStableFunc(routes, compiler.Compare)

	t := newTable(routes)
	r.mu.Lock()
	if r.generation == gen {
		r.table = t
	}
	r.mu.Unlock()

	elapsed := time.Since(start)
	span.SetAttributes(attribute.Int(semconv.Routes, t.Len()))
	r.recorder.RecordTableLoad(ctx, t.Len(), elapsed)
	r.logger.InfoContext(ctx, "route table loaded", "routes", t.Len(), "duration", elapsed)
	r.emit(Event{Kind: EventTableLoaded, Fields: map[string]any{"routes": t.Len()}})

	return t, nil
}

// declarations collects provider routes followed by the static ones.
func (r *Router) declarations(ctx context.Context) ([]Declaration, error) {
	var decls []Declaration
	for _, p := range r.providers {
		ds, err := p.Routes(ctx)
		if err != nil {
			return nil, fmt.Errorf("router: provider routes: %w", err)
		}
		decls = append(decls, ds...)
	}

	r.mu.Lock()
	decls = append(decls, r.static...)
	r.mu.Unlock()

	return decls, nil
}

// compile resolves the entity of d and compiles its pattern.
func (r *Router) compile(ctx context.Context, d Declaration) (*compiler.Route, error) {
	wrap := func(err error) error {
		return &RouteError{Pattern: d.Pattern, Controller: d.Controller, Err: err}
	}

	if err := d.Validate(); err != nil {
		return nil, wrap(err)
	}

	var entity *resolver.Entity
	if ref := d.Options.Entity; !ref.IsZero() {
		if r.resolver == nil {
			return nil, wrap(ErrNoResolver)
		}
		e, err := r.resolver.ParseEntity(ctx, ref)
		if err != nil {
			return nil, wrap(err)
		}
		entity = &e
	}

	route, err := compiler.Compile(d.Pattern, d.Controller, d.Options.compilerOptions(entity))
	if err != nil {
		return nil, wrap(err)
	}

	return route, nil
}
