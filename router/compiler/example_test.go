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

package compiler_test

import (
	"fmt"

	"rivaas.dev/prettyurl/router/compiler"
)

// ExampleCompile demonstrates compiling a pattern with two fields in one segment.
func ExampleCompile() {
	route, err := compiler.Compile("/people/:first-:last", "PersonController", compiler.DefaultOptions())
	if err != nil {
		panic(err)
	}

	fmt.Println("Regex:", route.Regex())
	fmt.Println("Fields:", route.Fields())
	// Output:
	// Regex: ^/people/([^/]+)-([^/]+)(/.*)?$
	// Fields: [first last]
}

// ExampleCompile_suffix demonstrates a literal suffix after a field.
func ExampleCompile_suffix() {
	route := compiler.MustCompile(`/reports/:name\.json`, "ReportController", compiler.DefaultOptions())

	fmt.Println(route.Regex().MatchString("/reports/report.json"))
	fmt.Println(route.Segments()[1].Parts[0].Suffix)
	// Output:
	// true
	// .json
}
