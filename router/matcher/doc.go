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

// Package matcher resolves URL paths against compiled routes.
//
// Matching a route is all-or-nothing and runs in stages:
//
//  1. Fast rejection: fewer URL segments than route segments, or a URL that
//     does not satisfy the route expression, fails immediately.
//  2. Every static segment is compared with its literal.
//  3. A dynamic segment holding the entity's primary key as a plain field
//     returns the numeric id found at that position without any lookup.
//  4. Segments made only of relationship fields become constraints: they
//     are translated through the resolver and merged in pattern order.
//  5. The remaining dynamic segments are looked up through the resolver
//     under those constraints. A segment with F fields and N words is tried
//     with every split of the words into F contiguous groups, in the order
//     produced by [Partitions]; the first split that finds a row wins.
//
// A miss anywhere returns false with a nil error. Errors are reserved for
// misconfiguration, such as a dynamic route without an entity, and for
// resolver failures.
package matcher
