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

package semconv

// Service metadata, set once on loggers and telemetry resources.
const (
	// ServiceName identifies the service emitting the telemetry.
	ServiceName = "service.name"

	// ServiceVersion is the version of the service emitting the telemetry.
	ServiceVersion = "service.version"
)

// Trace correlation keys added to log records.
const (
	TraceID = "trace_id"
	SpanID  = "span_id"
)

// Span attributes of match, generation and table loading.
const (
	// URL is the path being matched, without the base path.
	URL = "prettyurl.url"

	// Controller is the controller a URL matched or was generated for.
	Controller = "prettyurl.controller"

	// Element is the stable string form of a generation element.
	Element = "prettyurl.element"

	// Matched reports whether a match call found a route.
	Matched = "prettyurl.matched"

	// Generated reports whether a generate call produced a URL.
	Generated = "prettyurl.generated"

	// Routes is the number of routes in a loaded table.
	Routes = "prettyurl.routes"
)

// Span attributes of resolver calls.
const (
	// Entity is the table a resolver call reads.
	Entity = "prettyurl.entity"

	// Field is the relationship field being resolved.
	Field = "prettyurl.field"

	// Found reports whether a lookup returned a row.
	Found = "prettyurl.found"

	Joins   = "prettyurl.joins"
	Filters = "prettyurl.filters"
)

// Metric dimensions.
const (
	// Outcome is "hit", "miss" or "error".
	Outcome = "outcome"

	// Op is the cache or resolver operation.
	Op = "op"

	// Result is the cache lookup result, "hit" or "miss".
	Result = "result"

	// Error reports whether a resolver call failed.
	Error = "error"
)
