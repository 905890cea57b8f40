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

// Package metrics records router measurements with OpenTelemetry.
//
// A [Recorder] implements the router's recorder interface and exports
// through Prometheus (default), OTLP or stdout:
//
//	recorder := metrics.MustNew(metrics.WithServiceName("prettyurl"))
//	defer recorder.Shutdown(context.Background())
//
//	r := router.MustNew(router.WithRecorder(recorder))
//	http.Handle("/metrics", recorder.Handler())
//
// # Instruments
//
//	prettyurl.matches              counter    outcome=hit|miss|error
//	prettyurl.match.duration       histogram  outcome
//	prettyurl.generations          counter    outcome
//	prettyurl.generate.duration    histogram  outcome
//	prettyurl.cache.lookups        counter    op=match|generate, result=hit|miss
//	prettyurl.table.routes         gauge
//	prettyurl.table.load.duration  histogram
//	prettyurl.resolver.duration    histogram  op, error
//	prettyurl.resolver.errors      counter    op
//
// The global meter provider is left alone unless [WithGlobalMeterProvider]
// is given.
package metrics
