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

package codec

import (
	"bytes"
	"strings"
)

// TypeEnv decodes KEY=VALUE lines.
const TypeEnv Type = "env"

// EnvSeparator separates nesting levels in variable names. A single
// underscore stays part of the key, so BASE_PATH is "base_path" and
// CACHE__TTL is "cache.ttl".
const EnvSeparator = "__"

func init() {
	Register(TypeEnv, Env{})
}

// Env decodes environment variable lines into nested maps. Keys are
// lowercased; values are kept as strings.
type Env struct{}

// Decode implements Decoder.
func (Env) Decode(data []byte, v any) error {
	ptr, err := asMap("env", v)
	if err != nil {
		return err
	}

	conf := make(map[string]any)
	for line := range bytes.SplitSeq(data, []byte("\n")) {
		key, value, ok := strings.Cut(string(line), "=")
		if !ok {
			continue
		}

		var parts []string
		for part := range strings.SplitSeq(strings.ToLower(strings.TrimSpace(key)), EnvSeparator) {
			if part = strings.Trim(part, "_"); part != "" {
				parts = append(parts, part)
			}
		}
		if len(parts) == 0 {
			continue
		}

		current := conf
		for _, part := range parts[:len(parts)-1] {
			next, ok := current[part].(map[string]any)
			if !ok {
				next = make(map[string]any)
				current[part] = next
			}
			current = next
		}
		current[parts[len(parts)-1]] = strings.TrimSpace(value)
	}
	*ptr = conf

	return nil
}
