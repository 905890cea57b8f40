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

// Package compiler turns pretty URL patterns into compiled routes.
//
// A pattern is a list of '/'-separated segments. A segment without ':' is
// static and must appear verbatim in the URL. A segment containing ':' is
// dynamic: it is split on '-' into parts, and every part starting with ':'
// is a field bound to entity data.
//
//	/blog/:category.slug/:title-:id
//
// Here "blog" is static, the second segment is a single field reached
// through the "category" relationship, and the third segment holds two
// fields joined by a literal dash.
//
// # Fields
//
// A field name may be prefixed with one relationship name and a dot
// (":category.slug"). Further dots belong to the field name and are walked
// as extra relationship hops by the resolver (":category.parent.slug").
//
// An escaped dot ends the field name and starts a literal suffix that must
// follow the captured value in the URL:
//
//	/reports/:name\.json    matches /reports/q3-sales.json
//
// An escaped colon is a literal ':'. A backslash followed by anything else
// is a malformed pattern.
//
// # Regular expressions
//
// Every field compiles to a "one or more non-slash characters" group,
// static text is quoted, parts are joined with '-' and segments with '/'.
// The route expression is anchored at the start and accepts an optional
// trailing "/..." continuation. Routes declared case-insensitive compile to
// a case-insensitive expression.
//
// # Specificity
//
// [Compare] orders routes for matching: more segments first, then, at the
// first position where two routes differ in segment kind, static before
// dynamic.
package compiler
