package fileindex

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// ReaderCache is an opt-in, bounded, time-to-live cache of constructed
// Readers keyed by (blob identity, column, kind), so a long-lived scan
// session that repeatedly calls ReadColumnIndex for the same file across
// many row-group batches does not re-parse the per-column head on every
// call (§C.3 supplement, not part of spec.md). Disabled by default: a
// Container with a nil ReaderCache behaves exactly as before.
type ReaderCache struct {
	cache *ttlcache.Cache[string, Reader]
}

// NewReaderCache starts a cache evicting entries ttl after they were last
// set or last returned by a cache hit (ttlcache's Get extends an item's TTL
// by default).
func NewReaderCache(ttl time.Duration) *ReaderCache {
	c := ttlcache.New[string, Reader](ttlcache.WithTTL[string, Reader](ttl))
	go c.Start()
	return &ReaderCache{cache: c}
}

// Stop shuts down the cache's background eviction goroutine.
func (rc *ReaderCache) Stop() {
	if rc != nil {
		rc.cache.Stop()
	}
}

func readerCacheKey(blobID, column, kind string) string {
	return blobID + "\x00" + column + "\x00" + kind
}

// getOrBuild returns the cached reader for (blobID, column, kind) if
// present, else calls build and caches the result; a nil receiver always
// calls build, so callers need not branch on whether caching is enabled.
func (rc *ReaderCache) getOrBuild(blobID, column, kind string, build func() (Reader, error)) (Reader, error) {
	if rc == nil {
		return build()
	}
	key := readerCacheKey(blobID, column, kind)
	if item := rc.cache.Get(key); item != nil {
		return item.Value(), nil
	}
	r, err := build()
	if err != nil {
		return nil, err
	}
	rc.cache.Set(key, r, ttlcache.DefaultTTL)
	return r, nil
}
