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

package resolver

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownModel indicates that a declared model has no table.
	ErrUnknownModel = errors.New("unknown model")

	// ErrUnknownTable indicates that a table does not exist in the backend.
	ErrUnknownTable = errors.New("unknown table")

	// ErrNoTable indicates that an entity declares neither a model nor a table.
	ErrNoTable = errors.New("entity must define a table or model")

	// ErrNoPrimaryKey indicates that a table has no primary key.
	ErrNoPrimaryKey = errors.New("table has no primary key")

	// ErrUnknownRelationship indicates that a relationship cannot be mapped
	// to a related table.
	ErrUnknownRelationship = errors.New("unknown relationship")

	// ErrInvalidIdentifier indicates a table or column name that is not a
	// plain identifier.
	ErrInvalidIdentifier = errors.New("invalid identifier")
)

// ConfigurationError reports an entity or relationship that cannot be
// resolved. It is fatal: retrying does not help.
type ConfigurationError struct {
	Entity string // entity or table involved
	Op     string // "parse-entity", "relationship", ...
	Err    error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("resolver: %s %q: %v", e.Op, e.Entity, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NewConfigurationError wraps err for the given entity and operation.
func NewConfigurationError(entity, op string, err error) *ConfigurationError {
	return &ConfigurationError{Entity: entity, Op: op, Err: err}
}
