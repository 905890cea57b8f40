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
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"rivaas.dev/prettyurl/resolver"
	"rivaas.dev/prettyurl/router/compiler"
)

// Declaration is a route as declared by a provider or in configuration.
type Declaration struct {
	Pattern    string             `config:"pattern" json:"pattern" validate:"required"`
	Controller string             `config:"controller" json:"controller" validate:"required"`
	Options    DeclarationOptions `config:"options" json:"options"`
}

// DeclarationOptions are the per-route options of a declaration. Nil
// booleans take the defaults: case-sensitive and lowercased.
type DeclarationOptions struct {
	Entity        resolver.EntityRef `config:"entity" json:"entity"`
	Relationships []string           `config:"relationships" json:"relationships,omitempty" validate:"omitempty,dive,required"`
	CaseSensitive *bool              `config:"case_sensitive" json:"case_sensitive,omitempty"`
	Lowercase     *bool              `config:"lowercase" json:"lowercase,omitempty"`
	Tags          map[string]string  `config:"tags" json:"tags,omitempty" validate:"omitempty,dive,keys,required,endkeys"`
	Raw           []string           `config:"raw" json:"raw,omitempty" validate:"omitempty,dive,required"`
}

var (
	declValidator     *validator.Validate
	declValidatorOnce sync.Once
)

func validatorInstance() *validator.Validate {
	declValidatorOnce.Do(func() {
		declValidator = validator.New(validator.WithRequiredStructEnabled())
		declValidator.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("config"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}

			return name
		})
	})

	return declValidator
}

// Validate checks the declaration for missing or empty values.
func (d Declaration) Validate() error {
	err := validatorInstance().Struct(d)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidDeclaration, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		ns := e.Namespace()
		if _, rest, ok := strings.Cut(ns, "."); ok {
			ns = rest
		}
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", ns, e.Tag()))
	}

	return fmt.Errorf("%w %q: %s", ErrInvalidDeclaration, d.Pattern, strings.Join(msgs, "; "))
}

// compilerOptions converts the declaration options for the compiler.
func (o DeclarationOptions) compilerOptions(entity *resolver.Entity) compiler.Options {
	opts := compiler.DefaultOptions()
	opts.Entity = entity
	if o.CaseSensitive != nil {
		opts.CaseSensitive = *o.CaseSensitive
	}
	if o.Lowercase != nil {
		opts.Lowercase = *o.Lowercase
	}
	opts.Tags = o.Tags
	opts.Relationships = o.Relationships
	opts.Raw = o.Raw

	return opts
}

// Bool returns a pointer to b, for the optional flags of DeclarationOptions.
func Bool(b bool) *bool {
	return &b
}
