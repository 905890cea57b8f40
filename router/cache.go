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
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"rivaas.dev/prettyurl/router/generator"
)

const (
	// DefaultCacheSize is the number of results kept by the default cache.
	DefaultCacheSize = 1024

	// DefaultCacheTTL is how long the default cache keeps a result.
	DefaultCacheTTL = 5 * time.Minute
)

// Cache stores match and generation results. Implementations must be safe
// for concurrent use. The cache only holds successes; it is never consulted
// for correctness and must be invalidated when routes or data change.
type Cache interface {
	Get(key uint64) (any, bool)
	Add(key uint64, value any)
	Purge()
}

// lruCache is the default Cache: a bounded LRU with a fixed TTL.
type lruCache struct {
	lru *expirable.LRU[uint64, any]
}

// NewLRUCache returns a thread-safe cache holding at most size results for
// ttl each. Zero values take the defaults.
func NewLRUCache(size int, ttl time.Duration) Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &lruCache{lru: expirable.NewLRU[uint64, any](size, nil, ttl)}
}

func (c *lruCache) Get(key uint64) (any, bool) {
	return c.lru.Get(key)
}

func (c *lruCache) Add(key uint64, value any) {
	c.lru.Add(key, value)
}

func (c *lruCache) Purge() {
	c.lru.Purge()
}

// Cache key namespaces keep match and generation keys apart.
const (
	keyMatch    = "match"
	keyGenerate = "generate"
)

func matchKey(url string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(keyMatch)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(url)

	return d.Sum64()
}

func generateKey(controller string, el generator.Element, tags map[string]string, basePath string) uint64 {
	d := xxhash.New()
	for _, s := range []string{keyGenerate, controller, el.Key(), basePath} {
		_, _ = d.WriteString(strconv.Quote(s))
	}
	for _, k := range slices.Sorted(maps.Keys(tags)) {
		_, _ = d.WriteString(strconv.Quote(k))
		_, _ = d.WriteString("=")
		_, _ = d.WriteString(strconv.Quote(tags[k]))
	}

	return d.Sum64()
}
