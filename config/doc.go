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

// Package config loads the settings of a prettyurl deployment from layered
// sources: files (YAML, JSON, TOML), environment variables and Consul.
//
// Sources are merged in order over built-in defaults, checked against a JSON
// Schema and bound to [Settings]:
//
//	cfg := config.MustNew(
//	    config.WithFile("prettyurl.yaml"),
//	    config.WithConsul("prettyurl/config.yaml"),
//	    config.WithEnv("PRETTYURL_"),
//	)
//	if err := cfg.Load(ctx); err != nil {
//	    return err
//	}
//	opts, err := config.RouterOptions(cfg.Settings())
//
// Routes declared under "routes" are served to a router by [Provider].
package config
