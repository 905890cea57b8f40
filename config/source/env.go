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

package source

import (
	"context"
	"fmt"
	"os"
	"strings"

	"rivaas.dev/prettyurl/config/codec"
)

// Env loads configuration from environment variables sharing a prefix.
// The prefix is stripped and the rest is decoded by [codec.Env]:
//
//	PRETTYURL_BASE_PATH=/site     -> base_path = "/site"
//	PRETTYURL_CACHE__TTL=30s      -> cache.ttl = "30s"
type Env struct {
	prefix  string
	environ func() []string
}

// NewEnv returns an environment source for prefix.
func NewEnv(prefix string) *Env {
	return &Env{prefix: prefix, environ: os.Environ}
}

// Load implements the config source interface.
func (e *Env) Load(context.Context) (map[string]any, error) {
	env := e.environ()
	lines := make([]string, 0, len(env))
	for _, kv := range env {
		if rest, ok := strings.CutPrefix(kv, e.prefix); ok {
			lines = append(lines, rest)
		}
	}

	var conf map[string]any
	if err := (codec.Env{}).Decode([]byte(strings.Join(lines, "\n")), &conf); err != nil {
		return nil, fmt.Errorf("failed to decode environment variables: %w", err)
	}

	return conf, nil
}
