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

// Package slug normalises field values into URL-safe slugs.
//
// Normalisation runs in a fixed order:
//
//  1. Unicode NFC composition, so "e" + combining accent and "é" agree.
//  2. Lowercasing, when requested.
//  3. Every whitespace run becomes a single '-'.
//  4. Characters outside ASCII letters and digits, the configured extended
//     scripts, '_' and '-' are dropped.
//  5. Runs of '-' collapse to one, leading and trailing dashes are trimmed.
//
// The default extended scripts are Cyrillic and Han. Normalising an already
// normalised value returns it unchanged.
package slug
