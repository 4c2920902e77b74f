// Copyright 2025 Poiesic Systems
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

package ingestion

import (
	"context"
	"log/slog"
	"sync"

	"github.com/poiesic/lexis/core"
	"github.com/poiesic/lexis/corpus"
)

// Builder builds an embedded index from a loaded document.
// *Pipeline implements Builder.
type Builder interface {
	Build(ctx context.Context, doc *corpus.Document) (*core.Index, error)
}

// cacheKey identifies a cached index by corpus file and encoder.
type cacheKey struct {
	path  string
	model string
}

type entry struct {
	key     cacheKey
	ready   chan struct{} // closed once index or err is set
	index   *core.Index
	err     error
	refs    int
	evicted bool
}

// Cache lazily builds and reference-counts embedded indexes.
//
// The first Acquire for a (corpus path, model) pair loads and embeds the
// corpus; concurrent callers wait for that single build. Built indexes stay
// cached until Invalidate or InvalidateAll; there is no staleness detection.
// Failed builds are not cached.
type Cache struct {
	builder Builder
	model   string
	mu      sync.Mutex
	entries map[cacheKey]*entry
	logger  *slog.Logger
}

// CacheStats is a snapshot of cache occupancy.
type CacheStats struct {
	Entries    int // cached or in-flight indexes
	References int // live handles across all entries
}

// NewCache creates a cache that builds indexes with builder.
// model is the encoder identity half of every cache key.
func NewCache(builder Builder, model string) (*Cache, error) {
	if builder == nil {
		return nil, ErrBuilderRequired
	}
	if model == "" {
		return nil, ErrModelRequired
	}
	return &Cache{
		builder: builder,
		model:   model,
		entries: make(map[cacheKey]*entry),
		logger:  slog.Default().With("component", "index-cache"),
	}, nil
}

// Handle is a counted reference to a cached index.
// The index stays valid until Release, even across invalidation.
type Handle struct {
	cache *Cache
	entry *entry
	once  sync.Once
}

// Index returns the referenced index.
func (h *Handle) Index() *core.Index {
	return h.entry.index
}

// Release drops the reference. Calling it more than once is a no-op.
func (h *Handle) Release() {
	h.once.Do(func() {
		h.cache.release(h.entry)
	})
}

// Acquire returns a handle to the index for the corpus at path, building it
// on first use. Missing files return an error wrapping
// corpus.ErrCorpusUnavailable; corpora without passages return ErrEmptyCorpus.
func (c *Cache) Acquire(ctx context.Context, path string) (*Handle, error) {
	abs, err := corpus.AbsPath(path)
	if err != nil {
		return nil, err
	}
	key := cacheKey{path: abs, model: c.model}

	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{key: key, ready: make(chan struct{})}
		c.entries[key] = e
	}
	e.refs++
	c.mu.Unlock()

	if !ok {
		c.build(ctx, e)
	} else {
		select {
		case <-e.ready:
		case <-ctx.Done():
			c.release(e)
			return nil, ctx.Err()
		}
	}

	if e.err != nil {
		c.release(e)
		return nil, e.err
	}
	return &Handle{cache: c, entry: e}, nil
}

// build runs in the first caller's goroutine. The build ignores that
// caller's cancellation since other callers may be waiting on it.
func (c *Cache) build(ctx context.Context, e *entry) {
	logger := c.logger.With("path", e.key.path, "model", e.key.model)
	logger.Info("loading corpus")

	var index *core.Index
	doc, err := corpus.Load(e.key.path)
	if err == nil {
		index, err = c.builder.Build(context.WithoutCancel(ctx), doc)
	}

	c.mu.Lock()
	e.index, e.err = index, err
	if err != nil {
		logger.Warn("index build failed", "err", err)
		if c.entries[e.key] == e {
			delete(c.entries, e.key)
		}
		e.evicted = true
	}
	c.mu.Unlock()
	close(e.ready)
}

func (c *Cache) release(e *entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e.refs--
	if e.refs <= 0 && e.evicted {
		e.index = nil
	}
}

// Invalidate drops the cached index for the corpus at path.
// Live handles keep their index until released.
func (c *Cache) Invalidate(path string) {
	abs, err := corpus.AbsPath(path)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if key.path == abs {
			c.evictLocked(key, e)
		}
	}
}

// InvalidateAll drops every cached index.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		c.evictLocked(key, e)
	}
}

func (c *Cache) evictLocked(key cacheKey, e *entry) {
	delete(c.entries, key)
	e.evicted = true
	if e.refs <= 0 {
		e.index = nil
	}
	c.logger.Info("index invalidated", "path", key.path, "model", key.model, "references", e.refs)
}

// Stats returns a snapshot of cache occupancy.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := CacheStats{Entries: len(c.entries)}
	for _, e := range c.entries {
		stats.References += e.refs
	}
	return stats
}
