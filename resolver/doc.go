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

// Package resolver defines the data-resolution boundary used by the pretty
// URL engine.
//
// The engine never talks to a database directly. Everything it needs to know
// about entities, rows and relationships goes through the [Resolver]
// interface, which is bound once when a router is constructed.
//
// # Entities
//
// An [EntityRef] is what route declarations carry: a model name, or a table
// with an optional primary key. [Resolver.ParseEntity] turns it into an
// [Entity] with both table and primary key known, or fails with a
// [ConfigurationError].
//
// # Queries
//
// Lookups are expressed as a [Query]: an ordered list of joins plus filters.
// Relationship fields contribute joins through
// [Resolver.RelationshipForMatch]; several queries are combined with
// [Resolver.MergeQueries], for which [Merge] is the reference behaviour.
//
// # Relationship paths
//
// A relationship field carries a chain of relationship names and a field.
// Unescaped dots inside the field name are further hops, so the chain
// ["category"] with field "parent.slug" walks category, then parent, and
// reads slug. [RelationshipField.Path] returns the expanded hops.
//
// Implementations live in sub-packages: [rivaas.dev/prettyurl/resolver/memory]
// keeps tables in process, [rivaas.dev/prettyurl/resolver/sqlstore] queries a
// database/sql connection.
package resolver
