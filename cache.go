package folio

import (
	"sync"
	"time"
)

// IndexCache keeps the most recent Index of a content directory and rebuilds
// it once it is older than ttl or has been invalidated.
type IndexCache struct {
	mu      sync.RWMutex
	idx     *Index
	fetched time.Time
	ttl     time.Duration
	store   *Store
	opts    []BuildOption
	metrics *Metrics
}

// NewIndexCache creates an IndexCache backed by the given Store.
// A ttl of zero rebuilds on every read.
func NewIndexCache(s *Store, ttl time.Duration, opts ...BuildOption) *IndexCache {
	return &IndexCache{store: s, ttl: ttl, opts: opts}
}

// WithMetrics records every rebuild on m.
func (c *IndexCache) WithMetrics(m *Metrics) *IndexCache {
	c.metrics = m
	return c
}

func (c *IndexCache) valid() bool {
	return c.idx != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate drops the cached index so the next read triggers a fresh build.
func (c *IndexCache) Invalidate() {
	c.mu.Lock()
	c.idx = nil
	c.mu.Unlock()
}

func (c *IndexCache) load() error {
	if c.valid() {
		return nil
	}
	idx, err := Build(c.store, c.opts...)
	c.metrics.observeBuild(idx, err)
	if err != nil {
		return err
	}
	c.idx = idx
	c.fetched = time.Now()
	return nil
}

// Index returns a fresh index, building one if needed. It tries a read lock
// first and only takes the write lock when a rebuild is due.
func (c *IndexCache) Index() (*Index, error) {
	c.mu.RLock()
	if c.valid() {
		idx := c.idx
		c.mu.RUnlock()
		return idx, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, err
	}
	return c.idx, nil
}
