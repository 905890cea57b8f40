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
	"errors"
	"fmt"
	"sync"
)

// Type identifies a decoder.
type Type string

// ErrUnknownType is returned by Get for a type nobody registered.
var ErrUnknownType = errors.New("codec: unknown type")

// Decoder turns an encoded document into a Go value. Document decoders
// expect a *map[string]any; casters expect a *any.
// Implementations must be safe for concurrent use.
type Decoder interface {
	Decode(data []byte, v any) error
}

var (
	mu       sync.RWMutex
	decoders = make(map[Type]Decoder)
)

// Register makes a decoder available under t, replacing any previous one.
func Register(t Type, d Decoder) {
	mu.Lock()
	defer mu.Unlock()

	decoders[t] = d
}

// Get returns the decoder registered under t.
func Get(t Type) (Decoder, error) {
	mu.RLock()
	defer mu.RUnlock()

	d, ok := decoders[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}

	return d, nil
}

// asMap returns the map target of a document decoder.
func asMap(codec string, v any) (*map[string]any, error) {
	ptr, ok := v.(*map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected *map[string]any, got %T", codec, v)
	}

	return ptr, nil
}
