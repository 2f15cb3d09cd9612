package source

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"ccview.dev/cli/internal/core/config"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache defaults
const (
	DefaultTTL        = 10 * time.Minute
	DefaultMaxEntries = 256
)

const pathSep = "\x00"

type cacheKey struct {
	configKey string
	paths     string
}

func newCacheKey(configKey string, searchPaths []string) cacheKey {
	return cacheKey{configKey: configKey, paths: strings.Join(searchPaths, pathSep)}
}

// searches reports whether path was one of the files consulted for the entry
func (k cacheKey) searches(path string) bool {
	for _, p := range strings.Split(k.paths, pathSep) {
		if p == path {
			return true
		}
	}
	return false
}

// CacheStats reports cache effectiveness since the tracker was created
type CacheStats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Entries int    `json:"entries"`
}

// Tracker answers source lookups through a Locator and keeps successful
// answers in a bounded cache whose entries expire after a fixed window.
// Expired or evicted entries behave exactly like misses.
//
// Concurrent lookups for the same key are not deduplicated; each completion
// stores its result and the last one wins.
type Tracker struct {
	locator    Locator
	ttl        time.Duration
	maxEntries int

	mu         sync.RWMutex
	enabled    bool
	generation uint64
	cache      *expirable.LRU[cacheKey, Location]

	hits   atomic.Uint64
	misses atomic.Uint64
}

// TrackerOption configures a Tracker
type TrackerOption func(*Tracker)

// WithTTL sets how long a cached location stays valid. Non-positive values
// keep DefaultTTL.
func WithTTL(ttl time.Duration) TrackerOption {
	return func(t *Tracker) {
		t.ttl = ttl
	}
}

// WithMaxEntries bounds the number of cached locations
func WithMaxEntries(n int) TrackerOption {
	return func(t *Tracker) {
		t.maxEntries = n
	}
}

// WithEnabled sets the initial tracking state
func WithEnabled(enabled bool) TrackerOption {
	return func(t *Tracker) {
		t.enabled = enabled
	}
}

// NewTracker creates a tracker delegating lookups to locator
func NewTracker(locator Locator, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		locator:    locator,
		ttl:        DefaultTTL,
		maxEntries: DefaultMaxEntries,
		enabled:    true,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.maxEntries <= 0 {
		t.maxEntries = DefaultMaxEntries
	}
	if t.ttl <= 0 {
		t.ttl = DefaultTTL
	}
	// The expiry goroutine started here lives as long as the process, so
	// long-lived owners should Reconfigure a tracker rather than replace it.
	t.cache = expirable.NewLRU[cacheKey, Location](t.maxEntries, nil, t.ttl)
	return t
}

// TraceSource returns the defining location of key. A nil location with a nil
// error means not found. When tracking is disabled it returns not found
// without consulting the locator. Locator failures, including panics, are
// returned as *TraceError.
func (t *Tracker) TraceSource(ctx context.Context, key string, searchPaths []string) (*Location, error) {
	t.mu.RLock()
	enabled, generation := t.enabled, t.generation
	t.mu.RUnlock()
	if !enabled {
		return nil, nil
	}

	if err := config.ValidateKey(key); err != nil {
		return nil, err
	}

	ck := newCacheKey(key, searchPaths)
	if loc, ok := t.cache.Get(ck); ok {
		t.hits.Add(1)
		return &loc, nil
	}
	t.misses.Add(1)

	loc, err := t.locate(ctx, key, searchPaths)
	if err != nil {
		return nil, &TraceError{Key: key, Err: err}
	}
	if loc == nil {
		return nil, nil
	}

	stored := *loc
	t.mu.RLock()
	if t.enabled && t.generation == generation {
		t.cache.Add(ck, stored)
	}
	t.mu.RUnlock()

	return &stored, nil
}

func (t *Tracker) locate(ctx context.Context, key string, searchPaths []string) (loc *Location, err error) {
	defer func() {
		if r := recover(); r != nil {
			loc, err = nil, fmt.Errorf("locator panic: %v", r)
		}
	}()
	if t.locator == nil {
		return nil, fmt.Errorf("no locator configured")
	}
	paths := append([]string(nil), searchPaths...)
	return t.locator.Locate(ctx, key, paths)
}

// SetTrackingEnabled toggles tracking. Disabling clears the cache before
// returning, and lookups still in flight will not repopulate it.
func (t *Tracker) SetTrackingEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !enabled {
		t.generation++
		t.cache.Purge()
	}
	t.enabled = enabled
}

// IsTrackingEnabled reports whether tracking is on
func (t *Tracker) IsTrackingEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Invalidate drops every cached location for key and returns how many were removed
func (t *Tracker) Invalidate(key string) int {
	removed := 0
	for _, ck := range t.cache.Keys() {
		if ck.configKey == key && t.cache.Remove(ck) {
			removed++
		}
	}
	return removed
}

// InvalidatePath drops every cached location that points into path, and every
// location found by a search that consulted path, since an edit there can
// change which file answers first.
func (t *Tracker) InvalidatePath(path string) int {
	removed := 0
	for _, ck := range t.cache.Keys() {
		loc, ok := t.cache.Peek(ck)
		if !ok {
			continue
		}
		if (loc.FilePath == path || ck.searches(path)) && t.cache.Remove(ck) {
			removed++
		}
	}
	return removed
}

// TTL returns how long cached locations stay valid
func (t *Tracker) TTL() time.Duration {
	return t.ttl
}

// Reconfigure applies new cache bounds to t in place. It reports false
// without changing anything when ttl differs from the current window, in
// which case the caller needs a new tracker. On success the cache is empty.
func (t *Tracker) Reconfigure(ttl time.Duration, maxEntries int) bool {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if ttl != t.ttl {
		return false
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.generation++
	t.cache.Purge()
	if maxEntries != t.maxEntries {
		t.cache.Resize(maxEntries)
		t.maxEntries = maxEntries
	}
	return true
}

// ClearCache drops every cached location
func (t *Tracker) ClearCache() {
	t.cache.Purge()
}

// CacheSize returns the number of live cached locations
func (t *Tracker) CacheSize() int {
	return t.cache.Len()
}

// Peek returns a cached location without consulting the locator or
// refreshing recency
func (t *Tracker) Peek(key string, searchPaths []string) (*Location, bool) {
	loc, ok := t.cache.Peek(newCacheKey(key, searchPaths))
	if !ok {
		return nil, false
	}
	return &loc, true
}

// Stats returns hit and miss counters along with the current cache size
func (t *Tracker) Stats() CacheStats {
	return CacheStats{
		Hits:    t.hits.Load(),
		Misses:  t.misses.Load(),
		Entries: t.cache.Len(),
	}
}
