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

// Package semconv defines the attribute keys shared by prettyurl's logs,
// metrics and traces.
//
// Service and trace correlation keys follow OpenTelemetry semantic
// conventions. Routing keys are namespaced under "prettyurl." on spans;
// metric dimensions are kept short since the instrument name already
// carries the namespace.
//
//	span.SetAttributes(attribute.String(semconv.URL, url))
//	counter.Add(ctx, 1, metric.WithAttributes(attribute.String(semconv.Outcome, "hit")))
//	logger.Info("started", semconv.ServiceName, "prettyurl")
package semconv
