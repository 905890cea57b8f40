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
)

var (
	// ErrDuplicateRoute indicates two routes that compile to the same expression.
	ErrDuplicateRoute = errors.New("duplicate route")

	// ErrNoResolver indicates a route that declares an entity on a router
	// without a resolver.
	ErrNoResolver = errors.New("route declares an entity but the router has no resolver")

	// ErrTableLoading indicates a router call made while the route table is
	// being built by the same call chain, e.g. from a provider.
	ErrTableLoading = errors.New("route table is loading")

	// ErrInvalidDeclaration indicates a route declaration that fails validation.
	ErrInvalidDeclaration = errors.New("invalid route declaration")
)

// RouteError is a fatal error building the route table. It names the
// declaration that caused it.
type RouteError struct {
	Pattern    string
	Controller string
	Err        error
}

// Error implements the error interface.
func (e *RouteError) Error() string {
	return fmt.Sprintf("route %q (%s): %v", e.Pattern, e.Controller, e.Err)
}

// Unwrap returns the underlying error.
func (e *RouteError) Unwrap() error {
	return e.Err
}
