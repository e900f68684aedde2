package media

import (
	"context"
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"courseprogress/internal/storage"
)

// DurationStore persists probe results between runs.
type DurationStore interface {
	GetDuration(path string) (*storage.DurationRecord, error)
	PutDuration(r *storage.DurationRecord) error
}

// CachedProbe remembers successful measurements in memory and, when a store
// is configured, on disk. Entries are keyed by path and discarded once the
// file's size or modification time changes. Failed probes are never cached so
// a fixed file is measured again on the next run.
type CachedProbe struct {
	next   DurationProbe
	store  DurationStore
	memory *lru.Cache[string, storage.DurationRecord]
	logger zerolog.Logger
}

// NewCachedProbe wraps next. store may be nil for a memory-only cache.
func NewCachedProbe(next DurationProbe, store DurationStore, capacity int, logger zerolog.Logger) (*CachedProbe, error) {
	memory, err := lru.New[string, storage.DurationRecord](capacity)
	if err != nil {
		return nil, err
	}
	return &CachedProbe{
		next:   next,
		store:  store,
		memory: memory,
		logger: logger,
	}, nil
}

func (c *CachedProbe) Probe(ctx context.Context, path string) ProbeResult {
	info, err := os.Stat(path)
	if err != nil {
		return c.next.Probe(ctx, path)
	}

	if rec, ok := c.lookup(path, info); ok {
		return Measured(rec.Seconds)
	}

	result := c.next.Probe(ctx, path)
	if result.Measured() {
		c.record(path, info, result.Seconds)
	}
	return result
}

// Len returns the number of entries held in memory.
func (c *CachedProbe) Len() int {
	return c.memory.Len()
}

func (c *CachedProbe) lookup(path string, info os.FileInfo) (storage.DurationRecord, bool) {
	if rec, ok := c.memory.Get(path); ok {
		if rec.Matches(info.Size(), info.ModTime()) {
			return rec, true
		}
		c.memory.Remove(path)
	}

	if c.store == nil {
		return storage.DurationRecord{}, false
	}

	rec, err := c.store.GetDuration(path)
	if err != nil {
		c.logger.Warn().Err(err).Str("file", path).Msg("duration cache read failed")
		return storage.DurationRecord{}, false
	}
	if rec == nil || !rec.Matches(info.Size(), info.ModTime()) {
		return storage.DurationRecord{}, false
	}

	c.memory.Add(path, *rec)
	c.logger.Debug().Str("file", path).Msg("duration from cache")
	return *rec, true
}

func (c *CachedProbe) record(path string, info os.FileInfo, seconds float64) {
	rec := storage.DurationRecord{
		Path:     path,
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		Seconds:  seconds,
		ProbedAt: time.Now(),
	}
	c.memory.Add(path, rec)

	if c.store == nil {
		return
	}
	if err := c.store.PutDuration(&rec); err != nil {
		c.logger.Warn().Err(err).Str("file", path).Msg("duration cache write failed")
	}
}
