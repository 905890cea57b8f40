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
	"fmt"

	"github.com/spf13/cast"
)

// Caster types decode a single value, e.g. one Consul key.
const (
	TypeCastString    Type = "cast-string"
	TypeCastBool      Type = "cast-bool"
	TypeCastInt       Type = "cast-int"
	TypeCastDuration  Type = "cast-duration"
	TypeCastStringMap Type = "cast-string-map"
)

func init() {
	Register(TypeCastString, Caster{kind: TypeCastString})
	Register(TypeCastBool, Caster{kind: TypeCastBool})
	Register(TypeCastInt, Caster{kind: TypeCastInt})
	Register(TypeCastDuration, Caster{kind: TypeCastDuration})
	Register(TypeCastStringMap, Caster{kind: TypeCastStringMap})
}

// Caster decodes a single value into a *any.
type Caster struct {
	kind Type
}

// Decode implements Decoder.
func (c Caster) Decode(data []byte, v any) error {
	ptr, ok := v.(*any)
	if !ok {
		return fmt.Errorf("%s: expected *any, got %T", c.kind, v)
	}

	value := string(data)
	var err error
	switch c.kind {
	case TypeCastBool:
		*ptr, err = cast.ToBoolE(value)
	case TypeCastInt:
		*ptr, err = cast.ToIntE(value)
	case TypeCastDuration:
		*ptr, err = cast.ToDurationE(value)
	case TypeCastStringMap:
		*ptr, err = cast.ToStringMapStringE(value)
	default:
		*ptr = value
	}

	return err
}
