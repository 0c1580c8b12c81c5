// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package httpclient

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alphadose/haxmap"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
)

// cacheEntryMeta is the sidecar metadata persisted alongside every cached
// response body. The cache's on-disk schema is intentionally opaque to
// callers: they get bytes back, never a file path.
type cacheEntryMeta struct {
	Key         string    `json:"key"`
	Size        int64     `json:"size"`
	FetchedAt   time.Time `json:"fetched_at"`
	ContentType string    `json:"content_type"`
	Status      int       `json:"status"`
}

// Cache is a content-addressed on-disk key/value store with a size cap.
// It is safe for concurrent use: the in-memory index is a haxmap, and
// on-disk writes are serialized per-cache through mu to keep eviction
// bookkeeping consistent.
type Cache struct {
	root     string
	maxBytes int64

	index *haxmap.Map[string, cacheEntryMeta]
	mu    sync.Mutex
}

// NewCache opens (creating if necessary) a content-addressed cache rooted at
// dir, capped at maxBytes on disk.
func NewCache(dir string, maxBytes int64) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("httpclient: create cache dir: %w", err)
	}

	c := &Cache{
		root:     dir,
		maxBytes: maxBytes,
		index:    haxmap.New[string, cacheEntryMeta](),
	}

	if err := c.loadIndex(); err != nil {
		return nil, err
	}

	return c, nil
}

// Key computes the deterministic cache key for a request: SHA-256 of a
// canonical serialization of method, url, and sorted params.
func Key(method, url string, params map[string]string) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(method))
	b.WriteByte('\n')
	b.WriteString(url)
	b.WriteByte('\n')

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
		b.WriteByte('&')
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) bodyPath(key string) string {
	return filepath.Join(c.root, key+".body")
}

func (c *Cache) metaPath(key string) string {
	return filepath.Join(c.root, key+".meta.json")
}

// Get returns the cached body and metadata for key, or ok=false on a miss.
func (c *Cache) Get(key string) (body []byte, status int, contentType string, ok bool) {
	meta, found := c.index.Get(key)
	if !found {
		return nil, 0, "", false
	}

	data, err := os.ReadFile(c.bodyPath(key))
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache index entry present but body file missing")
		c.index.Del(key)
		return nil, 0, "", false
	}

	return data, meta.Status, meta.ContentType, true
}

// Put stores body under key, then evicts oldest entries if the cache
// exceeds its size cap.
func (c *Cache) Put(key string, body []byte, status int, contentType string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.WriteFile(c.bodyPath(key), body, 0o644); err != nil {
		return fmt.Errorf("httpclient: write cache body: %w", err)
	}

	meta := cacheEntryMeta{
		Key:         key,
		Size:        int64(len(body)),
		FetchedAt:   time.Now().UTC(),
		ContentType: contentType,
		Status:      status,
	}

	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("httpclient: marshal cache sidecar: %w", err)
	}
	if err := os.WriteFile(c.metaPath(key), metaBytes, 0o644); err != nil {
		return fmt.Errorf("httpclient: write cache sidecar: %w", err)
	}

	c.index.Set(key, meta)

	c.evictIfOverCap()

	return nil
}

func (c *Cache) totalBytes() int64 {
	var total int64
	c.index.ForEach(func(_ string, meta cacheEntryMeta) bool {
		total += meta.Size
		return true
	})
	return total
}

// Stat returns the entry count and total size of the cache.
func (c *Cache) Stat() (entries int, totalBytes int64) {
	c.index.ForEach(func(_ string, meta cacheEntryMeta) bool {
		entries++
		totalBytes += meta.Size
		return true
	})
	return entries, totalBytes
}

// Purge removes every entry from the cache, on disk and in memory.
func (c *Cache) Purge() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0)
	c.index.ForEach(func(k string, _ cacheEntryMeta) bool {
		keys = append(keys, k)
		return true
	})

	for _, k := range keys {
		_ = os.Remove(c.bodyPath(k))
		_ = os.Remove(c.metaPath(k))
		c.index.Del(k)
	}

	return nil
}

// evictIfOverCap removes the oldest-fetched entries until the cache is back
// under its size cap. Caller must hold mu.
func (c *Cache) evictIfOverCap() {
	if c.maxBytes <= 0 {
		return
	}

	total := c.totalBytes()
	if total <= c.maxBytes {
		return
	}

	type entry struct {
		key  string
		meta cacheEntryMeta
	}
	entries := make([]entry, 0)
	c.index.ForEach(func(k string, m cacheEntryMeta) bool {
		entries = append(entries, entry{key: k, meta: m})
		return true
	})

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].meta.FetchedAt.Before(entries[j].meta.FetchedAt)
	})

	evicted := 0
	for _, e := range entries {
		if total <= c.maxBytes {
			break
		}
		_ = os.Remove(c.bodyPath(e.key))
		_ = os.Remove(c.metaPath(e.key))
		c.index.Del(e.key)
		total -= e.meta.Size
		evicted++
	}

	if evicted > 0 {
		log.Debug().Int("evicted", evicted).Str("size", humanize.Bytes(uint64(total))).Msg("evicted oldest cache entries over size cap")
	}
}

// loadIndex walks the cache root and rebuilds the in-memory index from
// sidecar metadata files left by a previous process.
func (c *Cache) loadIndex() error {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		return fmt.Errorf("httpclient: read cache dir: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".meta.json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(c.root, name))
		if err != nil {
			log.Warn().Err(err).Str("file", name).Msg("could not read cache sidecar, skipping")
			continue
		}

		var meta cacheEntryMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			log.Warn().Err(err).Str("file", name).Msg("could not parse cache sidecar, skipping")
			continue
		}

		c.index.Set(meta.Key, meta)
	}

	return nil
}
