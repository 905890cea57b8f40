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

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	_ "modernc.org/sqlite"

	"rivaas.dev/prettyurl/config"
	"rivaas.dev/prettyurl/logging"
	"rivaas.dev/prettyurl/metrics"
	"rivaas.dev/prettyurl/resolver/sqlstore"
	"rivaas.dev/prettyurl/router"
	"rivaas.dev/prettyurl/tracing"
)

const serviceName = "prettyurl"

// stack is everything a command needs to talk to the router.
type stack struct {
	settings config.Settings
	logger   *logging.Logger
	recorder *metrics.Recorder
	tracer   *tracing.Tracer
	db       *sql.DB
	router   *router.Router
}

// newStack loads configuration and builds the router with its resolver and
// observability. Log and telemetry output goes to diag. The caller must
// Close the stack.
func newStack(ctx context.Context, g *globalFlags, diag io.Writer) (_ *stack, err error) {
	cfg, err := loadConfig(ctx, g)
	if err != nil {
		return nil, err
	}

	s := &stack{settings: cfg.Settings()}
	defer func() {
		if err != nil {
			_ = s.Close(context.WithoutCancel(ctx))
		}
	}()

	if s.logger, err = newLogger(s.settings.Logging, g, diag); err != nil {
		return nil, err
	}
	log := s.logger.Logger()

	if s.recorder, err = newRecorder(s.settings.Metrics, log, diag); err != nil {
		return nil, err
	}
	if s.tracer, err = newTracer(s.settings.Tracing, log, diag); err != nil {
		return nil, err
	}

	opts, err := config.RouterOptions(s.settings)
	if err != nil {
		return nil, err
	}
	opts = append(opts,
		router.WithProviders(config.Provider(cfg)),
		router.WithLogger(log),
		router.WithEventHandler(logging.Events(log)),
		router.WithTracerProvider(s.tracer.TracerProvider()),
	)
	if s.recorder != nil {
		opts = append(opts, router.WithRecorder(s.recorder))
	}

	if s.settings.Database.DSN != "" {
		store, err := s.openStore()
		if err != nil {
			return nil, err
		}
		opts = append(opts, router.WithResolver(store))
	}

	if s.router, err = router.New(opts...); err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}

	return s, nil
}

func loadConfig(ctx context.Context, g *globalFlags) (*config.Config, error) {
	var opts []config.Option
	for _, path := range g.configFiles {
		opts = append(opts, config.WithFile(path))
	}
	if g.consulKey != "" {
		opts = append(opts, config.WithConsul(g.consulKey))
	}
	if g.envPrefix != "" {
		opts = append(opts, config.WithEnv(g.envPrefix))
	}

	cfg, err := config.New(opts...)
	if err != nil {
		return nil, err
	}
	if err := cfg.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

func newLogger(s config.LoggingSettings, g *globalFlags, out io.Writer) (*logging.Logger, error) {
	levelName, formatName := s.Level, s.Format
	if g.logLevel != "" {
		levelName = g.logLevel
	}
	if g.logFormat != "" {
		formatName = g.logFormat
	}

	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseHandlerType(formatName)
	if err != nil {
		return nil, err
	}

	return logging.New(
		logging.WithHandlerType(format),
		logging.WithLevel(level),
		logging.WithOutput(out),
		logging.WithServiceName(serviceName),
		logging.WithServiceVersion(version),
	)
}

// newRecorder returns nil when metrics are disabled.
func newRecorder(s config.MetricsSettings, log *slog.Logger, out io.Writer) (*metrics.Recorder, error) {
	opts := []metrics.Option{
		metrics.WithServiceName(serviceName),
		metrics.WithServiceVersion(version),
		metrics.WithLogger(log),
	}

	switch s.Provider {
	case "", "none":
		return nil, nil
	case "prometheus":
		opts = append(opts, metrics.WithPrometheus())
	case "otlp":
		opts = append(opts, metrics.WithOTLP(s.Endpoint))
	case "stdout":
		opts = append(opts, metrics.WithStdout(out))
	default:
		return nil, fmt.Errorf("unsupported metrics provider %q", s.Provider)
	}

	return metrics.New(opts...)
}

func newTracer(s config.TracingSettings, log *slog.Logger, out io.Writer) (*tracing.Tracer, error) {
	opts := []tracing.Option{
		tracing.WithServiceName(serviceName),
		tracing.WithServiceVersion(version),
		tracing.WithSampleRate(s.SampleRate),
		tracing.WithLogger(log),
	}

	provider, err := tracing.ParseProvider(s.Provider)
	if err != nil {
		return nil, err
	}
	switch provider {
	case tracing.NoopProvider:
		opts = append(opts, tracing.WithNoop())
	case tracing.StdoutProvider:
		opts = append(opts, tracing.WithStdout(out))
	case tracing.OTLPProvider:
		opts = append(opts, tracing.WithOTLP(s.Endpoint))
	}

	return tracing.New(opts...)
}

func (s *stack) openStore() (*sqlstore.Store, error) {
	driver, err := config.DriverName(s.settings)
	if err != nil {
		return nil, err
	}
	storeOpts, err := config.StoreOptions(s.settings)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, s.settings.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", s.settings.Database.Driver, err)
	}
	s.db = db

	return sqlstore.New(db, storeOpts...), nil
}

// Close flushes telemetry and releases the database.
func (s *stack) Close(ctx context.Context) error {
	var errs []error
	if s.tracer != nil {
		errs = append(errs, s.tracer.Shutdown(ctx))
	}
	if s.recorder != nil {
		errs = append(errs, s.recorder.Shutdown(ctx))
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}

	return errors.Join(errs...)
}
