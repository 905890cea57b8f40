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

package tracing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"rivaas.dev/prettyurl/telemetry/semconv"
)

// Provider represents the available tracing providers.
type Provider string

const (
	// NoopProvider records nothing (default).
	NoopProvider Provider = "none"
	// StdoutProvider writes spans to a writer (development/testing).
	StdoutProvider Provider = "stdout"
	// OTLPProvider exports spans to an OTLP HTTP collector.
	OTLPProvider Provider = "otlp"
)

// ParseProvider parses a provider name. The empty name is [NoopProvider].
func ParseProvider(name string) (Provider, error) {
	switch p := Provider(name); p {
	case "", "noop":
		return NoopProvider, nil
	case NoopProvider, StdoutProvider, OTLPProvider:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported tracing provider: %q", name)
	}
}

// Tracer owns a tracer provider and its exporter.
type Tracer struct {
	provider       Provider
	serviceName    string
	serviceVersion string
	sampleRate     float64
	otlpEndpoint   string
	stdoutWriter   io.Writer
	registerGlobal bool
	logger         *slog.Logger

	tracerProvider trace.TracerProvider
	sdkProvider    *sdktrace.TracerProvider
	isShuttingDown atomic.Bool
}

// New creates a Tracer. OTLP exporters connect lazily, so New does not
// block on the collector.
func New(opts ...Option) (*Tracer, error) {
	t := &Tracer{
		provider:       NoopProvider,
		serviceName:    "prettyurl",
		serviceVersion: "dev",
		sampleRate:     1,
		logger:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(t)
	}

	if err := t.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := t.initializeProvider(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	return t, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *Tracer {
	t, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize tracing: %v", err))
	}

	return t
}

func (t *Tracer) validate() error {
	if t.serviceName == "" {
		return errors.New("service name cannot be empty")
	}
	if t.sampleRate < 0 || t.sampleRate > 1 {
		return fmt.Errorf("sample rate must be between 0 and 1, got %v", t.sampleRate)
	}
	if t.provider == OTLPProvider && t.otlpEndpoint == "" {
		t.logger.Warn("OTLP endpoint not specified, will use default", "default", "http://localhost:4318")
		t.otlpEndpoint = "http://localhost:4318"
	}

	return nil
}

func (t *Tracer) initializeProvider(ctx context.Context) error {
	var exporter sdktrace.SpanExporter
	switch t.provider {
	case NoopProvider:
		t.tracerProvider = noop.NewTracerProvider()
		return nil
	case StdoutProvider:
		opts := []stdouttrace.Option{stdouttrace.WithPrettyPrint()}
		if t.stdoutWriter != nil {
			opts = append(opts, stdouttrace.WithWriter(t.stdoutWriter))
		}
		exp, err := stdouttrace.New(opts...)
		if err != nil {
			return fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		exporter = exp
	case OTLPProvider:
		exp, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(t.otlpEndpoint))
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		exporter = exp
	default:
		return fmt.Errorf("unsupported tracing provider: %s", t.provider)
	}

	res := resource.NewSchemaless(
		attribute.String(semconv.ServiceName, t.serviceName),
		attribute.String(semconv.ServiceVersion, t.serviceVersion),
	)
	t.sdkProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(t.sampleRate))),
	)
	t.tracerProvider = t.sdkProvider

	if t.registerGlobal {
		t.logger.Debug("Setting global OpenTelemetry tracer provider", "provider", string(t.provider))
		otel.SetTracerProvider(t.sdkProvider)
	}
	t.logger.Info("Tracing initialized", "provider", string(t.provider), "service", t.serviceName)

	return nil
}

// TracerProvider returns the provider to hand to the router.
func (t *Tracer) TracerProvider() trace.TracerProvider {
	return t.tracerProvider
}

// Provider returns the configured provider.
func (t *Tracer) Provider() Provider {
	return t.provider
}

// ForceFlush exports finished spans still held by the batcher.
func (t *Tracer) ForceFlush(ctx context.Context) error {
	if t.sdkProvider == nil || t.isShuttingDown.Load() {
		return nil
	}
	if err := t.sdkProvider.ForceFlush(ctx); err != nil {
		return fmt.Errorf("tracer force flush: %w", err)
	}

	return nil
}

// Shutdown flushes and stops the provider. It is idempotent.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if !t.isShuttingDown.CompareAndSwap(false, true) || t.sdkProvider == nil {
		return nil
	}
	if err := t.sdkProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("tracer provider shutdown: %w", err)
	}

	return nil
}

// TraceID returns the trace ID of the span in ctx, or "".
func TraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}

	return ""
}

// SpanID returns the span ID of the span in ctx, or "".
func SpanID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasSpanID() {
		return sc.SpanID().String()
	}

	return ""
}
