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

package compiler

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedPattern indicates a pattern that cannot be compiled.
	ErrMalformedPattern = errors.New("malformed pattern")

	// ErrEmptyController indicates a route without a controller.
	ErrEmptyController = errors.New("controller must not be empty")

	// ErrUndeclaredRelationship indicates a field whose relationship is not in
	// the route's relationship allow-list.
	ErrUndeclaredRelationship = errors.New("undeclared relationship")
)

// PatternError describes where a pattern failed to compile.
type PatternError struct {
	Pattern string
	Pos     int // byte offset in Pattern, -1 when unknown
	Err     error
}

// Error implements the error interface.
func (e *PatternError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("compiler: pattern %q at %d: %v", e.Pattern, e.Pos, e.Err)
	}

	return fmt.Sprintf("compiler: pattern %q: %v", e.Pattern, e.Err)
}

// Unwrap returns the underlying error.
func (e *PatternError) Unwrap() error {
	return e.Err
}

func malformed(pattern string, pos int, format string, args ...any) error {
	return &PatternError{
		Pattern: pattern,
		Pos:     pos,
		Err:     fmt.Errorf("%w: %s", ErrMalformedPattern, fmt.Sprintf(format, args...)),
	}
}
