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

	"rivaas.dev/prettyurl/router/generator"
)

// Provider supplies route declarations. Providers are asked for their
// routes every time the route table is built.
type Provider interface {
	Routes(ctx context.Context) ([]Declaration, error)
}

// ProviderFunc is a function adapter for Provider.
type ProviderFunc func(ctx context.Context) ([]Declaration, error)

// Routes implements Provider.
func (f ProviderFunc) Routes(ctx context.Context) ([]Declaration, error) {
	return f(ctx)
}

// URLPreprocessor is implemented by providers that rewrite URLs before
// they are matched.
type URLPreprocessor interface {
	PreMatchURL(ctx context.Context, url string) (string, error)
}

// URLPostprocessor is implemented by providers that rewrite generated URLs.
type URLPostprocessor interface {
	PostGenerateURL(ctx context.Context, url string, req GenerateRequest) (string, error)
}

// GenerateRequest describes a generation call, as seen by post-processors
// and event handlers.
type GenerateRequest struct {
	Controller string
	Element    generator.Element
	Tags       map[string]string
}
