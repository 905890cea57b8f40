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

package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"rivaas.dev/prettyurl/resolver"
	"rivaas.dev/prettyurl/router"
)

// Settings is the bound configuration of a prettyurl deployment.
type Settings struct {
	BasePath  string               `config:"base_path"`
	Cache     CacheSettings        `config:"cache"`
	Slug      SlugSettings         `config:"slug"`
	Logging   LoggingSettings      `config:"logging"`
	Metrics   MetricsSettings      `config:"metrics"`
	Tracing   TracingSettings      `config:"tracing"`
	Database  DatabaseSettings     `config:"database"`
	Models    map[string]string    `config:"models" validate:"omitempty,dive,keys,required,endkeys,required"`
	Relations []RelationSettings   `config:"relations" validate:"dive"`
	Routes    []router.Declaration `config:"routes" validate:"-"`
}

// CacheSettings configure the router's result cache.
type CacheSettings struct {
	Enabled bool          `config:"enabled"`
	TTL     time.Duration `config:"ttl"`
	Size    int           `config:"size" validate:"gte=0"`
}

// SlugSettings configure value normalization.
type SlugSettings struct {
	Scripts []string `config:"scripts"`
}

// LoggingSettings configure the logger.
type LoggingSettings struct {
	Level  string `config:"level" validate:"oneof=debug info warn error"`
	Format string `config:"format" validate:"oneof=json text console"`
}

// MetricsSettings configure the metrics provider.
type MetricsSettings struct {
	Provider string `config:"provider" validate:"oneof=none prometheus otlp stdout"`
	Endpoint string `config:"endpoint" validate:"required_if=Provider otlp"`
}

// TracingSettings configure the tracer provider.
type TracingSettings struct {
	Provider   string  `config:"provider" validate:"oneof=none otlp stdout"`
	Endpoint   string  `config:"endpoint" validate:"required_if=Provider otlp"`
	SampleRate float64 `config:"sample_rate" validate:"gte=0,lte=1"`
}

// DatabaseSettings name the database the SQL resolver reads.
type DatabaseSettings struct {
	Driver string `config:"driver" validate:"oneof=sqlite postgres mysql"`
	DSN    string `config:"dsn"`
}

// RelationSettings declare a relationship of an owning table for the SQL
// resolver. Empty fields take the resolver's conventions.
type RelationSettings struct {
	Owner      string `config:"owner" validate:"required"`
	Name       string `config:"name" validate:"required"`
	Table      string `config:"table"`
	ForeignKey string `config:"foreign_key"`
	References string `config:"references"`
}

// Relation returns the resolver form of the relation.
func (r RelationSettings) Relation() resolver.Relation {
	return resolver.Relation{Table: r.Table, ForeignKey: r.ForeignKey, References: r.References}
}

// defaults is the bottom configuration layer.
func defaults() map[string]any {
	return map[string]any{
		"base_path": "",
		"cache": map[string]any{
			"enabled": true,
			"ttl":     router.DefaultCacheTTL.String(),
			"size":    router.DefaultCacheSize,
		},
		"logging": map[string]any{
			"level":  "info",
			"format": "json",
		},
		"metrics": map[string]any{
			"provider": "none",
		},
		"tracing": map[string]any{
			"provider":    "none",
			"sample_rate": 1.0,
		},
		"database": map[string]any{
			"driver": "sqlite",
		},
	}
}

var (
	settingsValidator     *validator.Validate
	settingsValidatorOnce sync.Once
)

func validatorInstance() *validator.Validate {
	settingsValidatorOnce.Do(func() {
		settingsValidator = validator.New(validator.WithRequiredStructEnabled())
		settingsValidator.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("config"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}

			return name
		})
	})

	return settingsValidator
}

// Validate checks the settings and every route declaration. All problems
// are reported together.
func (s *Settings) Validate() error {
	var errs error
	if err := validatorInstance().Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			field := strings.TrimPrefix(fe.Namespace(), "Settings.")
			errs = errors.Join(errs, &Error{
				Source:    "settings",
				Field:     field,
				Operation: "validate",
				Err:       fmt.Errorf("failed %q check on value %v", fe.Tag(), fe.Value()),
			})
		}
	}
	for i, d := range s.Routes {
		if err := d.Validate(); err != nil {
			errs = errors.Join(errs, &Error{
				Source:    "settings",
				Field:     fmt.Sprintf("routes[%d]", i),
				Operation: "validate",
				Err:       err,
			})
		}
	}

	return errs
}
