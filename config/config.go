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
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"reflect"
	"strings"
	"sync"

	"dario.cat/mergo"
	"github.com/go-viper/mapstructure/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spf13/cast"

	"rivaas.dev/prettyurl/config/codec"
	"rivaas.dev/prettyurl/config/source"
	"rivaas.dev/prettyurl/resolver"
)

// Option configures a Config.
type Option func(c *Config) error

// Config loads layered configuration into [Settings]. Sources are merged in
// the order they were added, on top of the built-in defaults, so later
// sources override earlier ones. Keys are case-insensitive.
//
// Config is safe for concurrent use.
type Config struct {
	mu         sync.RWMutex
	sources    []Source
	schema     *jsonschema.Schema
	validators []func(map[string]any) error
	values     map[string]any
	settings   *Settings
}

// WithSource adds a custom source.
func WithSource(src Source) Option {
	return func(c *Config) error {
		if src == nil {
			return NewError("source", "add", errors.New("source is nil"))
		}
		c.sources = append(c.sources, src)

		return nil
	}
}

// WithFile adds a file source. The format is detected from the extension
// and the path is expanded with [os.ExpandEnv].
func WithFile(path string) Option {
	return func(c *Config) error {
		path = os.ExpandEnv(path)
		format, err := detectFormat(path)
		if err != nil {
			return NewError("file-source", "detect-format", err)
		}

		return WithFileAs(path, format)(c)
	}
}

// WithFileAs adds a file source decoded as t.
func WithFileAs(path string, t codec.Type) Option {
	return func(c *Config) error {
		dec, err := codec.Get(t)
		if err != nil {
			return NewError("file-source", "get-decoder", err)
		}
		c.sources = append(c.sources, source.NewFile(os.ExpandEnv(path), dec))

		return nil
	}
}

// WithContent adds an in-memory document decoded as t.
func WithContent(data []byte, t codec.Type) Option {
	return func(c *Config) error {
		dec, err := codec.Get(t)
		if err != nil {
			return NewError("content-source", "get-decoder", err)
		}
		c.sources = append(c.sources, source.NewContent(data, dec))

		return nil
	}
}

// WithEnv adds the environment variables starting with prefix. A double
// underscore nests: PRETTYURL_CACHE__TTL sets cache.ttl.
func WithEnv(prefix string) Option {
	return func(c *Config) error {
		c.sources = append(c.sources, source.NewEnv(prefix))
		return nil
	}
}

// WithConsul adds a Consul key, decoded by the format of its extension.
// It is skipped when CONSUL_HTTP_ADDR is not set, so development works
// without a Consul agent.
func WithConsul(key string) Option {
	return func(c *Config) error {
		if os.Getenv("CONSUL_HTTP_ADDR") == "" {
			return nil
		}
		key = os.ExpandEnv(key)
		format, err := detectFormat(key)
		if err != nil {
			return NewError("consul-source", "detect-format", err)
		}

		return WithConsulAs(key, format)(c)
	}
}

// WithConsulAs adds a Consul key decoded as t. Like [WithConsul] it is
// skipped without CONSUL_HTTP_ADDR.
func WithConsulAs(key string, t codec.Type) Option {
	return func(c *Config) error {
		if os.Getenv("CONSUL_HTTP_ADDR") == "" {
			return nil
		}
		dec, err := codec.Get(t)
		if err != nil {
			return NewError("consul-source", "get-decoder", err)
		}
		src, err := source.NewConsul(os.ExpandEnv(key), dec, nil)
		if err != nil {
			return NewError("consul-source", "create-client", err)
		}
		c.sources = append(c.sources, src)

		return nil
	}
}

// WithJSONSchema replaces the built-in schema merged values are checked
// against.
func WithJSONSchema(schema []byte) Option {
	return func(c *Config) error {
		s, err := compileSchema("custom.json", schema)
		if err != nil {
			return NewError("json-schema", "compile", err)
		}
		c.schema = s

		return nil
	}
}

// WithValidator adds a check run on the merged values before binding.
func WithValidator(fn func(map[string]any) error) Option {
	return func(c *Config) error {
		if fn != nil {
			c.validators = append(c.validators, fn)
		}
		return nil
	}
}

// New returns a Config. Option errors are joined; the partially built
// Config is returned alongside them.
func New(opts ...Option) (*Config, error) {
	c := &Config{values: map[string]any{}}

	var errs error
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(c); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	if c.schema == nil {
		s, err := compileSchema("settings.json", settingsSchema)
		if err != nil {
			errs = errors.Join(errs, NewError("json-schema", "compile", err))
		}
		c.schema = s
	}

	return c, errs
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *Config {
	c, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("config: failed to create config: %v", err))
	}

	return c
}

// Load reads every source, merges them over the defaults, validates the
// result and binds it to [Settings]. The previous state is kept when any
// step fails.
func (c *Config) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	values, err := c.merge(ctx)
	if err != nil {
		return err
	}

	if c.schema != nil {
		if err = c.schema.Validate(values); err != nil {
			return NewError("json-schema", "validate", err)
		}
	}

	for i, fn := range c.validators {
		if err = runValidator(fn, values); err != nil {
			return NewError(fmt.Sprintf("custom-validator[%d]", i), "validate", err)
		}
	}

	settings := &Settings{}
	if err = decode(values, settings); err != nil {
		return NewError("binding", "bind", err)
	}
	if err = settings.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	c.values = values
	c.settings = settings
	c.mu.Unlock()

	return nil
}

// MustLoad is like Load but panics on error.
func (c *Config) MustLoad(ctx context.Context) {
	if err := c.Load(ctx); err != nil {
		panic(err)
	}
}

// Settings returns the settings bound by the last successful Load, or the
// defaults when nothing was loaded yet.
func (c *Config) Settings() Settings {
	c.mu.RLock()
	s := c.settings
	c.mu.RUnlock()

	if s == nil {
		s = &Settings{}
		_ = decode(defaults(), s)
	}

	return *s
}

// Values returns a shallow copy of the merged values.
func (c *Config) Values() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return maps.Clone(c.values)
}

func (c *Config) merge(ctx context.Context) (map[string]any, error) {
	values := normalizeKeys(defaults())
	for i, src := range c.sources {

		conf, err := src.Load(ctx)
		if err != nil {
			return nil, NewError(fmt.Sprintf("source[%d]", i), "load", err)
		}
		if conf == nil {
			continue
		}

		if err = mergo.Map(&values, normalizeKeys(conf), mergo.WithOverride); err != nil {
			return nil, NewError(fmt.Sprintf("source[%d]", i), "merge", err)
		}
	}

	return values, nil
}

func runValidator(fn func(map[string]any) error, values map[string]any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("validator panic: %v", r)
		}
	}()

	return fn(values)
}

// normalizeKeys lowercases keys at every depth, including maps held in
// slices.
func normalizeKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = normalizeValue(v)
	}

	return out
}

func normalizeValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return normalizeKeys(v)
	case map[any]any:
		return normalizeKeys(cast.ToStringMap(v))
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = normalizeValue(e)
		}
		return out
	default:
		return v
	}
}

func decode(values map[string]any, out *Settings) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "config",
		WeaklyTypedInput: true,
		Result:           out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			entityRefHook,
			stringMapHook,
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err = dec.Decode(values); err != nil {
		return fmt.Errorf("failed to decode configuration: %w", err)
	}

	return nil
}

var (
	entityRefType = reflect.TypeFor[resolver.EntityRef]()
	stringMapType = reflect.TypeFor[map[string]string]()
)

// entityRefHook accepts the short entity form: "Article" or "table:posts".
func entityRefHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != entityRefType {
		return data, nil
	}

	return resolver.ParseEntityRef(data.(string)), nil
}

// stringMapHook accepts a JSON object or "k=v,k2=v2" where a string map is
// expected, as environment variables and Consul casters produce strings.
func stringMapHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != stringMapType {
		return data, nil
	}

	s := strings.TrimSpace(data.(string))
	if s == "" {
		return map[string]string{}, nil
	}
	if strings.HasPrefix(s, "{") {
		m, err := cast.ToStringMapStringE(s)
		if err != nil {
			return nil, fmt.Errorf("invalid map %q: %w", s, err)
		}
		return m, nil
	}

	m := make(map[string]string)
	for pair := range strings.SplitSeq(s, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid map entry %q: want key=value", pair)
		}
		m[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}

	return m, nil
}
