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

// Package generator builds URLs from compiled routes.
//
// Generation walks the route segments in two passes. The first pass emits
// static text and resolves every field it can, in this order:
//
//  1. the entity's primary key, from the element's id;
//  2. a value from the element's attributes;
//  3. for relationship fields, a pending marker resolved later;
//  4. a column of the entity row, fetched by id through the resolver.
//
// The second pass establishes the main row (the row fetched in step 4, or
// fetched by id, or the attributes themselves) and asks the resolver to walk
// each pending relationship from it.
//
// Values are slugified unless the route lists the field as raw. Row
// fetches are memoized per call by entity and id, so several segments
// reading the same record cost one lookup.
//
// An unobtainable value fails the route with (false, nil). Errors are only
// returned for resolver failures and misconfiguration.
package generator
