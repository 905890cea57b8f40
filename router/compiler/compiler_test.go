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

package compiler

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/prettyurl/resolver"
)

var articles = &resolver.Entity{Table: "articles", Primary: "id"}

func TestCompile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		pattern   string
		opts      Options
		wantRegex string
		wantKinds []SegmentKind
	}{
		{
			name:      "static",
			pattern:   "/about/team",
			opts:      DefaultOptions(),
			wantRegex: `^/about/team(/.*)?$`,
			wantKinds: []SegmentKind{SegmentStatic, SegmentStatic},
		},
		{
			name:      "root",
			pattern:   "/",
			opts:      DefaultOptions(),
			wantRegex: `^/(/.*)?$`,
			wantKinds: nil,
		},
		{
			name:      "repeated slashes collapse",
			pattern:   "//pages///:name/",
			opts:      DefaultOptions(),
			wantRegex: `^/pages/([^/]+)(/.*)?$`,
			wantKinds: []SegmentKind{SegmentStatic, SegmentDynamic},
		},
		{
			name:      "multi-field segment",
			pattern:   "/people/:first-:last",
			opts:      DefaultOptions(),
			wantRegex: `^/people/([^/]+)-([^/]+)(/.*)?$`,
			wantKinds: []SegmentKind{SegmentStatic, SegmentDynamic},
		},
		{
			name:      "literal between fields",
			pattern:   "/p/:id-post-:title",
			opts:      DefaultOptions(),
			wantRegex: `^/p/([^/]+)-post-([^/]+)(/.*)?$`,
			wantKinds: []SegmentKind{SegmentStatic, SegmentDynamic},
		},
		{
			name:      "escaped dot suffix",
			pattern:   `/reports/:name\.json`,
			opts:      DefaultOptions(),
			wantRegex: `^/reports/([^/]+)\.json(/.*)?$`,
			wantKinds: []SegmentKind{SegmentStatic, SegmentDynamic},
		},
		{
			name:      "static text is quoted",
			pattern:   "/v1.0/files",
			opts:      DefaultOptions(),
			wantRegex: `^/v1\.0/files(/.*)?$`,
			wantKinds: []SegmentKind{SegmentStatic, SegmentStatic},
		},
		{
			name:      "escaped colon in static segment",
			pattern:   `/a\:b`,
			opts:      DefaultOptions(),
			wantRegex: `^/a:b(/.*)?$`,
			wantKinds: []SegmentKind{SegmentStatic},
		},
		{
			name:      "case-insensitive",
			pattern:   "/Blog/:title",
			opts:      Options{CaseSensitive: false},
			wantRegex: `(?i)^/Blog/([^/]+)(/.*)?$`,
			wantKinds: []SegmentKind{SegmentStatic, SegmentDynamic},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			route, err := Compile(tt.pattern, "Controller", tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRegex, route.Regex().String())

			var kinds []SegmentKind
			for _, s := range route.Segments() {
				kinds = append(kinds, s.Kind)
			}
			assert.Equal(t, tt.wantKinds, kinds)
		})
	}
}

func TestCompileParts(t *testing.T) {
	t.Parallel()

	route := MustCompile(`/blog/:category.slug/:title-:id/:name\.tar.gz`, "ArticleController", DefaultOptions())
	segs := route.Segments()
	require.Len(t, segs, 4)

	assert.Equal(t, Segment{Kind: SegmentStatic, Value: "blog", Pattern: "blog"}, segs[0])

	require.Len(t, segs[1].Parts, 1)
	assert.Equal(t, Part{Kind: PartField, Name: "slug", Relationships: []string{"category"}}, segs[1].Parts[0])
	assert.True(t, segs[1].OnlyRelationships())

	require.Len(t, segs[2].Parts, 2)
	assert.Equal(t, "title", segs[2].Parts[0].Name)
	assert.Equal(t, "id", segs[2].Parts[1].Name)
	assert.Equal(t, 2, segs[2].Fields())
	assert.Equal(t, 0, segs[2].Literals())
	assert.False(t, segs[2].OnlyRelationships())

	require.Len(t, segs[3].Parts, 1)
	assert.Equal(t, "name", segs[3].Parts[0].Name)
	assert.Equal(t, ".tar.gz", segs[3].Parts[0].Suffix)
}

func TestCompileMultiHopField(t *testing.T) {
	t.Parallel()

	route := MustCompile("/:category.parent.slug/:title", "C", DefaultOptions())
	part := route.Segments()[0].Parts[0]

	assert.Equal(t, []string{"category"}, part.Relationships, "one relationship level per field")
	assert.Equal(t, "parent.slug", part.Name)
	assert.Equal(t, "category.parent.slug", part.Path())

	hops, column := part.RelationshipField().Path()
	assert.Equal(t, []string{"category", "parent"}, hops)
	assert.Equal(t, "slug", column)
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		pattern    string
		controller string
		opts       Options
		wantErr    error
	}{
		{name: "empty controller", pattern: "/a", controller: " ", wantErr: ErrEmptyController},
		{name: "unterminated escape", pattern: `/a/:name\`, controller: "C", wantErr: ErrMalformedPattern},
		{name: "invalid escape", pattern: `/a/:na\me`, controller: "C", wantErr: ErrMalformedPattern},
		{name: "empty field", pattern: "/a/:", controller: "C", wantErr: ErrMalformedPattern},
		{name: "empty relationship", pattern: "/a/:.name", controller: "C", wantErr: ErrMalformedPattern},
		{name: "empty field after relationship", pattern: "/a/:rel.", controller: "C", wantErr: ErrMalformedPattern},
		{name: "empty hop", pattern: "/a/:rel.x..y", controller: "C", wantErr: ErrMalformedPattern},
		{name: "colon inside literal", pattern: "/a/x:y", controller: "C", wantErr: ErrMalformedPattern},
		{name: "colon inside field", pattern: "/a/:x:y", controller: "C", wantErr: ErrMalformedPattern},
		{name: "trailing dash", pattern: "/a/:x-", controller: "C", wantErr: ErrMalformedPattern},
		{name: "control character", pattern: "/a/\x00", controller: "C", wantErr: ErrMalformedPattern},
		{
			name:       "undeclared relationship",
			pattern:    "/:author.name/:title",
			controller: "C",
			opts:       Options{Relationships: []string{"category"}},
			wantErr:    ErrUndeclaredRelationship,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Compile(tt.pattern, tt.controller, tt.opts)
			require.ErrorIs(t, err, tt.wantErr)

			var perr *PatternError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.pattern, perr.Pattern)
		})
	}
}

func TestMustCompilePanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { MustCompile("/a", "", DefaultOptions()) })
}

func TestDeclaredRelationshipAllowed(t *testing.T) {
	t.Parallel()

	route, err := Compile("/:category.slug", "C", Options{Relationships: []string{"category"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"category"}, route.Relationships())
}

func TestRouteRegexMatching(t *testing.T) {
	t.Parallel()

	suffix := MustCompile(`/reports/:name\.json`, "C", DefaultOptions())
	assert.True(t, suffix.Regex().MatchString("/reports/report.json"))
	assert.False(t, suffix.Regex().MatchString("/reports/report.xml"))
	assert.True(t, suffix.Regex().MatchString("/reports/report.json/extra"))

	insensitive := MustCompile("/Blog/:title", "C", Options{})
	assert.True(t, insensitive.Regex().MatchString("/blog/hello"))

	sensitive := MustCompile("/Blog/:title", "C", DefaultOptions())
	assert.False(t, sensitive.Regex().MatchString("/blog/hello"))
}

func TestExtractID(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.Entity = articles
	route := MustCompile(`/a/:id-:title/:title/:category.id/:id\.html`, "C", opts)
	segs := route.Segments()

	id, ok := segs[1].ExtractID("42-hello-world")
	require.True(t, ok)
	assert.Equal(t, "42", id)

	_, ok = segs[1].ExtractID("hello-world")
	assert.False(t, ok)

	_, ok = segs[2].ExtractID("42")
	assert.False(t, ok, "segment without the primary key")

	_, ok = segs[3].ExtractID("42")
	assert.False(t, ok, "relationship id is not the route's primary key")

	id, ok = segs[4].ExtractID("7.html")
	require.True(t, ok)
	assert.Equal(t, "7", id)

	noEntity := MustCompile("/a/:id", "C", DefaultOptions())
	_, ok = noEntity.Segments()[1].ExtractID("42")
	assert.False(t, ok, "no entity, no primary key")
}

func TestMatchesTags(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.Tags = map[string]string{"lang": "en", "area": "public"}
	route := MustCompile("/a", "C", opts)

	assert.True(t, route.MatchesTags(nil))
	assert.True(t, route.MatchesTags(map[string]string{}))
	assert.True(t, route.MatchesTags(map[string]string{"lang": "en"}))
	assert.True(t, route.MatchesTags(map[string]string{"lang": "en", "area": "public"}))
	assert.False(t, route.MatchesTags(map[string]string{"lang": "fr"}))
	assert.False(t, route.MatchesTags(map[string]string{"missing": "x"}))

	untagged := MustCompile("/b", "C", DefaultOptions())
	assert.False(t, untagged.MatchesTags(map[string]string{"lang": "en"}))
}

func TestRouteIntrospection(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.Tags = map[string]string{"lang": "en"}
	opts.Raw = []string{"code"}
	opts.Entity = articles
	route := MustCompile("/:category.slug/:code-:title/:category.name", "ArticleController", opts)

	assert.Equal(t, []string{"category.slug", "code", "title", "category.name"}, route.Fields())
	assert.Equal(t, []string{"category"}, route.Relationships())
	assert.True(t, route.IsRaw("code"))
	assert.False(t, route.IsRaw("title"))
	assert.Equal(t, "ArticleController", route.Controller())

	entity, ok := route.Entity()
	require.True(t, ok)
	assert.Equal(t, "articles", entity.Table)

	tags := route.Tags()
	tags["lang"] = "fr"
	assert.Equal(t, "en", route.Tags()["lang"], "tags are copied")

	opts.Tags["lang"] = "de"
	assert.Equal(t, "en", route.Tags()["lang"], "compile copies options")
}

func TestCompare(t *testing.T) {
	t.Parallel()

	short := MustCompile("/a/:x", "short", DefaultOptions())
	long := MustCompile("/a/b/:x", "long", DefaultOptions())
	dynamicFirst := MustCompile("/:x/b", "dynamicFirst", DefaultOptions())
	staticFirst := MustCompile("/a/:x", "staticFirst", DefaultOptions())
	other := MustCompile("/c/:x", "other", DefaultOptions())

	routes := []*Route{short, dynamicFirst, long, staticFirst, other}
	slices.SortStableFunc(routes, Compare)

	var order []string
	for _, r := range routes {
		order = append(order, r.Controller())
	}
	assert.Equal(t, []string{"long", "short", "staticFirst", "other", "dynamicFirst"}, order)
	assert.Zero(t, Compare(short, other))
}
