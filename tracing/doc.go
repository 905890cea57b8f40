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

// Package tracing configures the OpenTelemetry tracer provider handed to
// the router.
//
// The router opens a span per match, generation and table build, with
// child spans for resolver calls. Tracing builds the provider those spans
// go to:
//
//	tracer := tracing.MustNew(
//	    tracing.WithOTLP("http://localhost:4318"),
//	    tracing.WithSampleRate(0.1),
//	)
//	defer tracer.Shutdown(context.Background())
//
//	r := router.MustNew(router.WithTracerProvider(tracer.TracerProvider()))
//
// The default provider records nothing.
package tracing
