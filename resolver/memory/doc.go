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

// Package memory provides an in-process [resolver.Resolver].
//
// Tables are plain row slices held in memory, relationships are belongs-to
// links declared with [WithRelation] or derived by convention: a
// relationship "category" points at the table "category" through the
// column "category_id" (or "category" when the row has no "category_id").
//
// LIKE filters follow SQL semantics, case-insensitively. The store is safe
// for concurrent use and is mostly used in tests and small deployments
// where routes point at a fixed data set.
//
//	store := memory.New(
//	    memory.WithTable("articles", "id",
//	        resolver.Row{"id": 1, "title": "Hello World", "category_id": 3},
//	    ),
//	    memory.WithTable("categories", "id", resolver.Row{"id": 3, "slug": "news"}),
//	    memory.WithRelation("articles", "category", resolver.Relation{Table: "categories"}),
//	    memory.WithModel("Article", "articles"),
//	)
package memory
