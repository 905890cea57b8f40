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
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Get returns the merged value at a dot-separated, case-insensitive path,
// or nil.
func (c *Config) Get(key string) any {
	if c == nil {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var cur any = c.values
	for part := range strings.SplitSeq(strings.ToLower(key), ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		if cur, ok = m[part]; !ok {
			return nil
		}
	}

	return cur
}

// String returns the value at key as a string.
func (c *Config) String(key string) string {
	return cast.ToString(c.Get(key))
}

// Int returns the value at key as an int.
func (c *Config) Int(key string) int {
	return cast.ToInt(c.Get(key))
}

// Bool returns the value at key as a bool.
func (c *Config) Bool(key string) bool {
	return cast.ToBool(c.Get(key))
}

// Duration returns the value at key as a duration.
func (c *Config) Duration(key string) time.Duration {
	return cast.ToDuration(c.Get(key))
}

// StringSlice returns the value at key as a string slice.
func (c *Config) StringSlice(key string) []string {
	return cast.ToStringSlice(c.Get(key))
}

// StringOr returns the value at key as a string, or def when unset.
func (c *Config) StringOr(key, def string) string {
	v := c.Get(key)
	if v == nil {
		return def
	}

	return cast.ToString(v)
}
