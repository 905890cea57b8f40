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

package router

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rivaas.dev/prettyurl/resolver"
	"rivaas.dev/prettyurl/telemetry/semconv"
)

// Outcomes reported to a Recorder.
const (
	OutcomeHit   = "hit"
	OutcomeMiss  = "miss"
	OutcomeError = "error"
)

// Cache operations reported to a Recorder.
const (
	CacheOpMatch    = "match"
	CacheOpGenerate = "generate"
)

// Recorder receives router measurements. The metrics package provides an
// OpenTelemetry implementation. All methods must be safe for concurrent use.
type Recorder interface {
	RecordMatch(ctx context.Context, outcome string, d time.Duration)
	RecordGenerate(ctx context.Context, outcome string, d time.Duration)
	RecordCacheLookup(ctx context.Context, op string, hit bool)
	RecordTableLoad(ctx context.Context, routes int, d time.Duration)
	RecordResolverCall(ctx context.Context, op string, d time.Duration, err error)
}

type noopRecorder struct{}

func (noopRecorder) RecordMatch(context.Context, string, time.Duration)               {}
func (noopRecorder) RecordGenerate(context.Context, string, time.Duration)            {}
func (noopRecorder) RecordCacheLookup(context.Context, string, bool)                  {}
func (noopRecorder) RecordTableLoad(context.Context, int, time.Duration)              {}
func (noopRecorder) RecordResolverCall(context.Context, string, time.Duration, error) {}

func outcome(ok bool, err error) string {
	switch {
	case err != nil:
		return OutcomeError
	case ok:
		return OutcomeHit
	default:
		return OutcomeMiss
	}
}

// endSpan records err on span and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// observedResolver wraps a resolver with spans and call timings.
type observedResolver struct {
	resolver.Resolver
	tracer   trace.Tracer
	recorder Recorder
}

func (o *observedResolver) start(ctx context.Context, op string, entity string) (context.Context, trace.Span, time.Time) {
	ctx, span := o.tracer.Start(ctx, "prettyurl.resolver."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String(semconv.Entity, entity)),
	)

	return ctx, span, time.Now()
}

func (o *observedResolver) finish(ctx context.Context, span trace.Span, op string, start time.Time, err error) {
	o.recorder.RecordResolverCall(ctx, op, time.Since(start), err)
	endSpan(span, err)
}

func (o *observedResolver) ParseEntity(ctx context.Context, ref resolver.EntityRef) (resolver.Entity, error) {
	ctx, span, start := o.start(ctx, "parse_entity", ref.String())
	entity, err := o.Resolver.ParseEntity(ctx, ref)
	o.finish(ctx, span, "parse_entity", start, err)

	return entity, err
}

func (o *observedResolver) Fetch(ctx context.Context, entity resolver.Entity, id any, q resolver.Query) (resolver.Row, error) {
	ctx, span, start := o.start(ctx, "fetch", entity.Table)
	row, err := o.Resolver.Fetch(ctx, entity, id, q)
	span.SetAttributes(
		attribute.Bool(semconv.Found, row != nil),
		attribute.Int(semconv.Joins, len(q.Joins)),
		attribute.Int(semconv.Filters, len(q.Filters)),
	)
	o.finish(ctx, span, "fetch", start, err)

	return row, err
}

func (o *observedResolver) RelationshipForMatch(ctx context.Context, entity resolver.Entity, field resolver.RelationshipField) (resolver.Query, bool, error) {
	ctx, span, start := o.start(ctx, "relationship_for_match", entity.Table)
	span.SetAttributes(attribute.String(semconv.Field, field.String()))
	q, ok, err := o.Resolver.RelationshipForMatch(ctx, entity, field)
	o.finish(ctx, span, "relationship_for_match", start, err)

	return q, ok, err
}

func (o *observedResolver) RelationshipForGeneration(ctx context.Context, entity resolver.Entity, row resolver.Row, field resolver.RelationshipField) (any, bool, error) {
	ctx, span, start := o.start(ctx, "relationship_for_generation", entity.Table)
	span.SetAttributes(attribute.String(semconv.Field, field.String()))
	v, ok, err := o.Resolver.RelationshipForGeneration(ctx, entity, row, field)
	o.finish(ctx, span, "relationship_for_generation", start, err)

	return v, ok, err
}
