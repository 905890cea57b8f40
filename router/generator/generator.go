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

package generator

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cast"

	"rivaas.dev/prettyurl/resolver"
	"rivaas.dev/prettyurl/router/compiler"
	"rivaas.dev/prettyurl/router/slug"
)

var (
	// ErrNoResolver indicates a route that needs data lookups on a generator
	// without a resolver.
	ErrNoResolver = errors.New("generator: route needs a resolver")

	// ErrNoEntity indicates a route whose fields need an entity it does not have.
	ErrNoEntity = errors.New("generator: route fields need an entity")
)

// Generator builds URLs for routes.
type Generator struct {
	resolver resolver.Resolver
	slug     *slug.Normalizer
	basePath string
}

// Option configures a Generator.
type Option func(*Generator)

// WithBasePath prefixes every generated URL.
func WithBasePath(basePath string) Option {
	return func(g *Generator) {
		g.basePath = strings.TrimRight(basePath, "/")
	}
}

// WithNormalizer sets the slug normalizer.
func WithNormalizer(n *slug.Normalizer) Option {
	return func(g *Generator) {
		g.slug = n
	}
}

// New creates a generator. The resolver may be nil when no route needs data.
func New(r resolver.Resolver, opts ...Option) *Generator {
	g := &Generator{resolver: r}
	for _, opt := range opts {
		opt(g)
	}
	if g.slug == nil {
		g.slug = slug.MustNew()
	}

	return g
}

// piece is one dash-separated output of a dynamic segment: either text, or
// a relationship field waiting for the second pass.
type piece struct {
	text    string
	pending *compiler.Part
}

type rowKey struct {
	table string
	id    string
}

// call holds the state of one Generate call.
type call struct {
	*Generator
	ctx       context.Context
	route     *compiler.Route
	el        Element
	entity    resolver.Entity
	hasEntity bool
	rows      map[rowKey]resolver.Row
	main      resolver.Row
}

// Generate returns the URL of el on route.
func (g *Generator) Generate(ctx context.Context, route *compiler.Route, el Element) (string, bool, error) {
	c := &call{Generator: g, ctx: ctx, route: route, el: el, rows: make(map[rowKey]resolver.Row)}
	c.entity, c.hasEntity = route.Entity()

	segs := route.Segments()
	out := make([][]piece, len(segs))
	pending := false
	for i, s := range segs {
		if s.Kind == compiler.SegmentStatic {
			out[i] = []piece{{text: s.Value}}
			continue
		}
		for _, p := range s.Parts {
			if p.Kind == compiler.PartStatic {
				out[i] = append(out[i], piece{text: p.Value})
				continue
			}
			pc, ok, err := c.field(p)
			if err != nil || !ok {
				return "", false, err
			}
			pending = pending || pc.pending != nil
			out[i] = append(out[i], pc)
		}
	}

	if pending {
		ok, err := c.resolvePending(out)
		if err != nil || !ok {
			return "", false, err
		}
	}

	var b strings.Builder
	b.WriteString(g.basePath)
	if len(out) == 0 {
		b.WriteByte('/')
	}
	for _, pieces := range out {
		b.WriteByte('/')
		for j, pc := range pieces {
			if j > 0 {
				b.WriteByte('-')
			}
			b.WriteString(pc.text)
		}
	}

	return b.String(), true, nil
}

// field resolves a field during the first pass.
func (c *call) field(p compiler.Part) (piece, bool, error) {
	primary := ""
	if c.hasEntity {
		primary = c.entity.Primary
	}

	if !p.IsRelationship() && primary != "" && p.Name == primary {
		if id, ok := c.el.ID(primary); ok {
			return c.render(p, id)
		}
	}
	if v, ok := c.el.Attr(p.Path()); ok {
		return c.render(p, v)
	}
	if err := c.requireData(); err != nil {
		return piece{}, false, err
	}
	if p.IsRelationship() {
		part := p
		return piece{pending: &part}, true, nil
	}

	id, ok := c.el.ID(primary)
	if !ok {
		return piece{}, false, nil
	}
	row, err := c.fetch(id)
	if err != nil || row == nil {
		return piece{}, false, err
	}
	c.main = row

	v, ok := row[p.Name]
	if !ok || v == nil {
		return piece{}, false, nil
	}

	return c.render(p, v)
}

// resolvePending fills every pending marker from the main row.
func (c *call) resolvePending(out [][]piece) (bool, error) {
	row, err := c.mainRow()
	if err != nil || row == nil {
		return false, err
	}

	for i := range out {
		for j := range out[i] {
			p := out[i][j].pending
			if p == nil {
				continue
			}
			v, ok, err := c.resolver.RelationshipForGeneration(c.ctx, c.entity, row, p.RelationshipField())
			if err != nil || !ok {
				return false, err
			}
			pc, ok, _ := c.render(*p, v)
			if !ok {
				return false, nil
			}
			out[i][j] = pc
		}
	}

	return true, nil
}

// mainRow returns the row relationships are walked from: a row already
// fetched, else the row of the element id, else the attributes.
func (c *call) mainRow() (resolver.Row, error) {
	if c.main != nil {
		return c.main, nil
	}
	if id, ok := c.el.ID(c.entity.Primary); ok {
		row, err := c.fetch(id)
		if err != nil {
			return nil, err
		}
		c.main = row
		return row, nil
	}
	if attrs := c.el.Attrs(); attrs != nil {
		return resolver.Row(attrs), nil
	}

	return nil, nil
}

// fetch returns the entity row for id, memoized for the call.
func (c *call) fetch(id any) (resolver.Row, error) {
	key := rowKey{table: c.entity.Table, id: cast.ToString(id)}
	if row, ok := c.rows[key]; ok {
		return row, nil
	}

	row, err := c.resolver.Fetch(c.ctx, c.entity, id, resolver.Query{})
	if err != nil {
		return nil, err
	}
	c.rows[key] = row

	return row, nil
}

func (c *call) requireData() error {
	if !c.hasEntity {
		return fmt.Errorf("%w: %s", ErrNoEntity, c.route.Pattern())
	}
	if c.resolver == nil {
		return fmt.Errorf("%w: %s", ErrNoResolver, c.route.Pattern())
	}

	return nil
}

// render turns a value into URL text. Values that render empty fail the
// route.
func (c *call) render(p compiler.Part, v any) (piece, bool, error) {
	s, err := cast.ToStringE(v)
	if err != nil {
		return piece{}, false, nil
	}

	if c.route.IsRaw(p.Name) || c.route.IsRaw(p.Path()) {
		s = url.PathEscape(s)
	} else {
		s = c.slug.Normalize(s, c.route.Lowercase())
	}
	if s == "" {
		return piece{}, false, nil
	}

	return piece{text: s + p.Suffix}, true, nil
}
