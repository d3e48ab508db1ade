package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/joshuapare/voxstore/internal/metrics"
	"github.com/joshuapare/voxstore/region"
)

// Eviction reasons, used as the metrics label.
const (
	reasonCapacity = "capacity"
	reasonIdle     = "idle"
	reasonClose    = "close"
)

type handle struct {
	f        *region.File
	lastUsed time.Time
}

// handleCache keeps open region files keyed by region coordinate. It is
// owned by the worker goroutine.
type handleCache struct {
	lru *lru.Cache[region.RegionPos, *handle]
	log *slog.Logger

	// reason labels the evictions the next cache call triggers.
	reason string
	errs   []error
}

func newHandleCache(size int, log *slog.Logger) (*handleCache, error) {
	c := &handleCache{log: log, reason: reasonCapacity}
	l, err := lru.NewWithEvict(size, c.evicted)
	if err != nil {
		return nil, fmt.Errorf("region cache: %w", err)
	}
	c.lru = l
	return c, nil
}

func (c *handleCache) evicted(pos region.RegionPos, h *handle) {
	err := errors.Join(h.f.Flush(), h.f.Close())
	metrics.Evicted(c.reason)
	if err == nil {
		c.log.Debug("region closed", "region", pos, "reason", c.reason)
		return
	}
	if c.reason == reasonClose {
		c.errs = append(c.errs, fmt.Errorf("close region %d,%d: %w", pos.X, pos.Z, err))
		return
	}
	c.log.Warn("close evicted region", "region", pos, "reason", c.reason, "err", err)
}

func (c *handleCache) get(pos region.RegionPos, now time.Time) (*region.File, bool) {
	h, ok := c.lru.Get(pos)
	if !ok {
		return nil, false
	}
	h.lastUsed = now
	return h.f, true
}

func (c *handleCache) add(pos region.RegionPos, f *region.File, now time.Time) {
	c.reason = reasonCapacity
	c.lru.Add(pos, &handle{f: f, lastUsed: now})
	metrics.SetOpenRegions(c.lru.Len())
}

// sweep closes every handle unused for at least idle.
func (c *handleCache) sweep(now time.Time, idle time.Duration) int {
	c.reason = reasonIdle
	n := 0
	for _, pos := range c.lru.Keys() {
		h, ok := c.lru.Peek(pos)
		if ok && now.Sub(h.lastUsed) >= idle {
			c.lru.Remove(pos)
			n++
		}
	}
	c.reason = reasonCapacity
	metrics.SetOpenRegions(c.lru.Len())
	return n
}

// closeAll closes every handle and returns the joined failures.
func (c *handleCache) closeAll() error {
	c.reason = reasonClose
	c.lru.Purge()
	metrics.SetOpenRegions(0)
	return errors.Join(c.errs...)
}

func (c *handleCache) size() int { return c.lru.Len() }
