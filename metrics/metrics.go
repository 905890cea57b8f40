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

package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"rivaas.dev/prettyurl/router"
	"rivaas.dev/prettyurl/telemetry/semconv"
)

// Provider represents the available metrics providers.
type Provider string

const (
	// PrometheusProvider exposes metrics through [Recorder.Handler] (default).
	PrometheusProvider Provider = "prometheus"
	// OTLPProvider pushes metrics to an OTLP HTTP collector.
	OTLPProvider Provider = "otlp"
	// StdoutProvider writes metrics to a writer (development/testing).
	StdoutProvider Provider = "stdout"
)

// ParseProvider parses a provider name.
func ParseProvider(name string) (Provider, error) {
	switch p := Provider(name); p {
	case PrometheusProvider, OTLPProvider, StdoutProvider:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported metrics provider: %q", name)
	}
}

// DefaultDurationBuckets are the histogram boundaries, in seconds, of every
// duration instrument. Route work is usually sub-millisecond; resolver
// calls reach into database latencies.
var DefaultDurationBuckets = []float64{
	0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1,
}

const meterName = "rivaas.dev/prettyurl/metrics"

var _ router.Recorder = (*Recorder)(nil)

// Recorder records router measurements. All methods are safe for
// concurrent use.
type Recorder struct {
	meterProvider      metric.MeterProvider
	prometheusRegistry *promclient.Registry
	prometheusHandler  http.Handler
	logger             *slog.Logger

	matches          metric.Int64Counter
	matchDuration    metric.Float64Histogram
	generations      metric.Int64Counter
	generateDuration metric.Float64Histogram
	cacheLookups     metric.Int64Counter
	tableRoutes      metric.Int64Gauge
	tableLoad        metric.Float64Histogram
	resolverDuration metric.Float64Histogram
	resolverErrors   metric.Int64Counter

	provider            Provider
	providerSetCount    int
	serviceName         string
	serviceVersion      string
	otlpEndpoint        string
	exportInterval      time.Duration
	durationBuckets     []float64
	stdoutWriter        io.Writer
	customMeterProvider bool
	registerGlobal      bool

	isShuttingDown atomic.Bool
}

// New creates a [Recorder]. Returns an error if the provider fails to
// initialize.
func New(opts ...Option) (*Recorder, error) {
	r := &Recorder{
		provider:        PrometheusProvider,
		serviceName:     "prettyurl",
		serviceVersion:  "dev",
		exportInterval:  30 * time.Second,
		durationBuckets: DefaultDurationBuckets,
		logger:          slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := r.initializeProvider(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	if err := r.initializeInstruments(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return r, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *Recorder {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize metrics: %v", err))
	}

	return r
}

func (r *Recorder) validate() error {
	if r.providerSetCount > 1 {
		return errors.New("conflicting provider options: only one of WithPrometheus, WithOTLP, or WithStdout can be used")
	}
	if r.serviceName == "" {
		return errors.New("service name cannot be empty")
	}
	if len(r.durationBuckets) == 0 {
		return errors.New("duration buckets cannot be empty")
	}
	if r.provider == OTLPProvider && r.otlpEndpoint == "" {
		r.logger.Warn("OTLP endpoint not specified, will use default", "default", "http://localhost:4318")
		r.otlpEndpoint = "http://localhost:4318"
	}

	return nil
}

// Handler returns the Prometheus scrape handler, or an error for the other
// providers.
func (r *Recorder) Handler() (http.Handler, error) {
	if r.prometheusHandler == nil {
		return nil, fmt.Errorf("metrics handler not available for provider %q", r.provider)
	}

	return r.prometheusHandler, nil
}

// Provider returns the configured provider.
func (r *Recorder) Provider() Provider {
	return r.provider
}

// MeterProvider returns the meter provider instruments are created from.
func (r *Recorder) MeterProvider() metric.MeterProvider {
	return r.meterProvider
}

// ForceFlush exports pending measurements of push providers.
func (r *Recorder) ForceFlush(ctx context.Context) error {
	if r.isShuttingDown.Load() {
		return nil
	}
	if mp, ok := r.meterProvider.(*sdkmetric.MeterProvider); ok && !r.customMeterProvider {
		if err := mp.ForceFlush(ctx); err != nil {
			return fmt.Errorf("metrics force flush: %w", err)
		}
	}

	return nil
}

// Shutdown flushes and stops the meter provider. Providers passed with
// [WithMeterProvider] are left to their owner. Shutdown is idempotent.
func (r *Recorder) Shutdown(ctx context.Context) error {
	if !r.isShuttingDown.CompareAndSwap(false, true) {
		return nil
	}
	if r.customMeterProvider {
		return nil
	}

	mp, ok := r.meterProvider.(*sdkmetric.MeterProvider)
	if !ok {
		return nil
	}
	if err := mp.ForceFlush(ctx); err != nil {
		r.logger.Warn("metrics flush warning", "error", err)
	}
	if err := mp.Shutdown(ctx); err != nil {
		return fmt.Errorf("meter provider shutdown: %w", err)
	}

	return nil
}

// RecordMatch implements the router recorder.
func (r *Recorder) RecordMatch(ctx context.Context, outcome string, d time.Duration) {
	attrs := metric.WithAttributes(attribute.String(semconv.Outcome, outcome))
	r.matches.Add(ctx, 1, attrs)
	r.matchDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordGenerate implements the router recorder.
func (r *Recorder) RecordGenerate(ctx context.Context, outcome string, d time.Duration) {
	attrs := metric.WithAttributes(attribute.String(semconv.Outcome, outcome))
	r.generations.Add(ctx, 1, attrs)
	r.generateDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordCacheLookup implements the router recorder.
func (r *Recorder) RecordCacheLookup(ctx context.Context, op string, hit bool) {
	result := router.OutcomeMiss
	if hit {
		result = router.OutcomeHit
	}
	r.cacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String(semconv.Op, op),
		attribute.String(semconv.Result, result),
	))
}

// RecordTableLoad implements the router recorder.
func (r *Recorder) RecordTableLoad(ctx context.Context, routes int, d time.Duration) {
	r.tableRoutes.Record(ctx, int64(routes))
	r.tableLoad.Record(ctx, d.Seconds())
}

// RecordResolverCall implements the router recorder.
func (r *Recorder) RecordResolverCall(ctx context.Context, op string, d time.Duration, err error) {
	r.resolverDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String(semconv.Op, op),
		attribute.Bool(semconv.Error, err != nil),
	))
	if err != nil {
		r.resolverErrors.Add(ctx, 1, metric.WithAttributes(attribute.String(semconv.Op, op)))
	}
}

func (r *Recorder) initializeInstruments() error {
	meter := r.meterProvider.Meter(meterName)
	buckets := metric.WithExplicitBucketBoundaries(r.durationBuckets...)

	var err, e error
	r.matches, e = meter.Int64Counter("prettyurl.matches",
		metric.WithDescription("URL matches by outcome"))
	err = errors.Join(err, e)
	r.matchDuration, e = meter.Float64Histogram("prettyurl.match.duration",
		metric.WithDescription("Duration of URL matches"), metric.WithUnit("s"), buckets)
	err = errors.Join(err, e)
	r.generations, e = meter.Int64Counter("prettyurl.generations",
		metric.WithDescription("URL generations by outcome"))
	err = errors.Join(err, e)
	r.generateDuration, e = meter.Float64Histogram("prettyurl.generate.duration",
		metric.WithDescription("Duration of URL generations"), metric.WithUnit("s"), buckets)
	err = errors.Join(err, e)
	r.cacheLookups, e = meter.Int64Counter("prettyurl.cache.lookups",
		metric.WithDescription("Result cache lookups by operation and result"))
	err = errors.Join(err, e)
	r.tableRoutes, e = meter.Int64Gauge("prettyurl.table.routes",
		metric.WithDescription("Routes in the last loaded route table"))
	err = errors.Join(err, e)
	r.tableLoad, e = meter.Float64Histogram("prettyurl.table.load.duration",
		metric.WithDescription("Duration of route table builds"), metric.WithUnit("s"), buckets)
	err = errors.Join(err, e)
	r.resolverDuration, e = meter.Float64Histogram("prettyurl.resolver.duration",
		metric.WithDescription("Duration of resolver calls"), metric.WithUnit("s"), buckets)
	err = errors.Join(err, e)
	r.resolverErrors, e = meter.Int64Counter("prettyurl.resolver.errors",
		metric.WithDescription("Failed resolver calls"))
	err = errors.Join(err, e)

	if err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	return nil
}
