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

// Package logging builds the structured [slog.Logger] used by prettyurl
// services and tools.
//
// # Basic Usage
//
//	logger := logging.MustNew(
//	    logging.WithConsoleHandler(),
//	    logging.WithServiceName("prettyurl"),
//	)
//	r := router.MustNew(
//	    router.WithLogger(logger.Logger()),
//	    router.WithEventHandler(logging.Events(logger.Logger())),
//	)
//
// # Trace Correlation
//
// Records logged with a context carrying an OpenTelemetry span get trace_id
// and span_id attributes. The router logs with the request context, so its
// records join the spans of the match or generation that produced them.
//
// # Sensitive Data Redaction
//
// Values of the keys password, token, secret, dsn and authorization are
// replaced before they reach the output. Further rewriting can be added
// with [WithReplaceAttr].
package logging
