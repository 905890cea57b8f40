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

package matcher

import (
	"iter"
	"slices"
)

// Partitions returns every ordered composition of words into fields
// positive parts. Each composition lists how many consecutive words go to
// each field.
//
// Compositions are produced by choosing the size of the first group, from
// 1 to words-fields+1, and recursing on the rest, so
// Partitions(3, 2) is [[1 2] [2 1]]. It returns nil when fields is not
// positive or exceeds words.
func Partitions(words, fields int) [][]int {
	var out [][]int
	for sizes := range Compositions(words, fields) {
		out = append(out, slices.Clone(sizes))
	}

	return out
}

// Compositions yields the compositions of Partitions one at a time, in the
// same order. The yielded slice is reused between iterations; callers that
// keep it must copy it.
func Compositions(words, fields int) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		if fields <= 0 || fields > words {
			return
		}

		sizes := make([]int, fields)
		var walk func(pos, left int) bool
		walk = func(pos, left int) bool {
			if pos == fields-1 {
				sizes[pos] = left
				return yield(sizes)
			}
			for first := 1; first <= left-(fields-1-pos); first++ {
				sizes[pos] = first
				if !walk(pos+1, left-first) {
					return false
				}
			}

			return true
		}
		walk(0, words)
	}
}
