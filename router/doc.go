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

// Package router maps pretty URLs to controllers and entities and back.
//
// A Router owns a route table built from declarations. Each declaration
// names a pattern, a controller and optionally an entity:
//
//	/blog/:category.slug/:title    -> ArticleController (articles)
//	/people/:first-:last           -> PersonController (people)
//	/reports/:name\.json           -> ReportController (reports)
//
// Fields start with ':'. A dot introduces a relationship, so
// ":category.slug" is the slug of the article's category. Escaped dots and
// colons are literal text; an escaped dot after a field starts a literal
// suffix such as a file extension.
//
// Matching a URL tries routes from the most specific to the least: routes
// with more segments first, then routes with static segments where others
// have fields. Slug text is resolved into a row through a
// [resolver.Resolver]; a segment with several fields tries every split of
// its words, in a fixed order, until one finds a row.
//
// Generating a URL takes an element (an id, attributes, or nothing), reads
// each field from it or from the entity's row, walks relationships, and
// normalizes the values into slugs.
//
// Results of both directions are cached by default. The cache never
// affects results; call Invalidate when routes or data change.
//
// Sub-packages hold the engine parts: compiler compiles patterns, matcher
// and generator implement the two directions, and slug normalizes values.
package router
