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
	"encoding/json"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
)

// Document types.
const (
	TypeJSON Type = "json"
	TypeYAML Type = "yaml"
	TypeTOML Type = "toml"
)

func init() {
	Register(TypeJSON, JSON{})
	Register(TypeYAML, YAML{})
	Register(TypeTOML, TOML{})
}

// JSON decodes JSON documents.
type JSON struct{}

// Decode implements Decoder.
func (JSON) Decode(data []byte, v any) error {
	ptr, err := asMap("json", v)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, ptr)
}

// YAML decodes YAML documents.
type YAML struct{}

// Decode implements Decoder. An empty document decodes to an empty map.
func (YAML) Decode(data []byte, v any) error {
	ptr, err := asMap("yaml", v)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		*ptr = make(map[string]any)
		return nil
	}
	if err := yaml.Unmarshal(data, ptr); err != nil {
		return err
	}
	if *ptr == nil {
		*ptr = make(map[string]any)
	}

	return nil
}

// TOML decodes TOML documents.
type TOML struct{}

// Decode implements Decoder.
func (TOML) Decode(data []byte, v any) error {
	ptr, err := asMap("toml", v)
	if err != nil {
		return err
	}

	return toml.Unmarshal(data, ptr)
}
