// Package matchcache holds the two bounded caches behind the matching
// orchestrator: per-game content payloads and per-play match results, each
// with TTL and size-based eviction, plus the per-game used-clip sets. All
// operations are safe for concurrent use.
package matchcache

import (
	"sync"
	"time"

	"dinger/internal/metrics"
	"dinger/internal/scoring"
	"dinger/internal/statsapi"
)

// Key identifies one play's cached match result.
type Key struct {
	GamePK     int64
	AtBatIndex int
	PlayIndex  int
}

// Options bound the cache tiers. Zero fields fall back to the defaults.
type Options struct {
	ContentTTL time.Duration
	ResultTTL  time.Duration
	MaxContent int
	MaxResults int
}

const (
	defaultContentTTL = 5 * time.Minute
	defaultResultTTL  = time.Hour
	defaultMaxContent = 20
	defaultMaxResults = 100
)

func (o Options) normalized() Options {
	if o.ContentTTL <= 0 {
		o.ContentTTL = defaultContentTTL
	}
	if o.ResultTTL <= 0 {
		o.ResultTTL = defaultResultTTL
	}
	if o.MaxContent <= 0 {
		o.MaxContent = defaultMaxContent
	}
	if o.MaxResults <= 0 {
		o.MaxResults = defaultMaxResults
	}
	return o
}

type contentEntry struct {
	content  *statsapi.GameContent
	inserted time.Time
	seq      uint64
}

type resultEntry struct {
	result   scoring.MatchResult
	inserted time.Time
	seq      uint64
}

// Cache is the shared cache state for one matcher instance.
type Cache struct {
	mu      sync.Mutex
	opts    Options
	now     func() time.Time
	seq     uint64
	content map[int64]contentEntry
	results map[Key]resultEntry
	used    map[int64]map[string]bool
}

// New creates an empty cache with the given bounds.
func New(opts Options) *Cache {
	return &Cache{
		opts:    opts.normalized(),
		now:     time.Now,
		content: make(map[int64]contentEntry),
		results: make(map[Key]resultEntry),
		used:    make(map[int64]map[string]bool),
	}
}

// Content returns the cached payload for a game, expiring it lazily.
func (c *Cache) Content(gamePK int64) (*statsapi.GameContent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.content[gamePK]
	if !ok || c.now().Sub(entry.inserted) > c.opts.ContentTTL {
		if ok {
			delete(c.content, gamePK)
		}
		metrics.CacheMisses.WithLabelValues("content").Inc()
		return nil, false
	}
	metrics.CacheHits.WithLabelValues("content").Inc()
	return entry.content, true
}

// PutContent stores a game's payload, evicting the oldest-inserted entries
// once the tier exceeds its bound.
func (c *Cache) PutContent(content *statsapi.GameContent) {
	if content == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	c.content[content.GamePK] = contentEntry{content: content, inserted: c.now(), seq: c.seq}
	for len(c.content) > c.opts.MaxContent {
		delete(c.content, c.oldestContent())
	}
}

// Result returns the cached match outcome for a play key, expiring it lazily.
// A cached "no match" (nil Video) is returned like any other result.
func (c *Cache) Result(key Key) (scoring.MatchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.results[key]
	if !ok || c.now().Sub(entry.inserted) > c.opts.ResultTTL {
		if ok {
			delete(c.results, key)
		}
		metrics.CacheMisses.WithLabelValues("result").Inc()
		return scoring.MatchResult{}, false
	}
	metrics.CacheHits.WithLabelValues("result").Inc()
	return entry.result, true
}

// PutResult stores a play's match outcome, evicting oldest-inserted entries
// beyond the bound.
func (c *Cache) PutResult(key Key, result scoring.MatchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	c.results[key] = resultEntry{result: result, inserted: c.now(), seq: c.seq}
	for len(c.results) > c.opts.MaxResults {
		delete(c.results, c.oldestResult())
	}
}

// UsedSnapshot returns a copy of the used-clip id set for a game. The copy
// may be freely mutated by the caller.
func (c *Cache) UsedSnapshot(gamePK int64) map[string]bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := make(map[string]bool, len(c.used[gamePK]))
	for id := range c.used[gamePK] {
		snapshot[id] = true
	}
	return snapshot
}

// TryMarkUsed atomically claims a clip for a game. It reports false when
// the clip was already claimed, letting concurrent matchers detect the loss
// and rank again.
func (c *Cache) TryMarkUsed(gamePK int64, videoID string) bool {
	if videoID == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	set, ok := c.used[gamePK]
	if !ok {
		set = make(map[string]bool)
		c.used[gamePK] = set
	}
	if set[videoID] {
		return false
	}
	set[videoID] = true
	return true
}

// MarkUsed records that a clip has been surfaced for a game.
func (c *Cache) MarkUsed(gamePK int64, videoID string) {
	if videoID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	set, ok := c.used[gamePK]
	if !ok {
		set = make(map[string]bool)
		c.used[gamePK] = set
	}
	set[videoID] = true
}

// ResetGame drops a game's content entry, every cached result keyed to it,
// and its used-clip set. Called when a game restarts or tracking moves to a
// new game.
func (c *Cache) ResetGame(gamePK int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.content, gamePK)
	delete(c.used, gamePK)
	for key := range c.results {
		if key.GamePK == gamePK {
			delete(c.results, key)
		}
	}
}

// Sweep purges expired entries from both tiers. Suitable for a periodic
// background pass; all expiry also happens lazily on access.
func (c *Cache) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for gamePK, entry := range c.content {
		if now.Sub(entry.inserted) > c.opts.ContentTTL {
			delete(c.content, gamePK)
		}
	}
	for key, entry := range c.results {
		if now.Sub(entry.inserted) > c.opts.ResultTTL {
			delete(c.results, key)
		}
	}
}

// Len reports the entry counts of the content and result tiers.
func (c *Cache) Len() (contentEntries, resultEntries int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.content), len(c.results)
}

func (c *Cache) oldestContent() int64 {
	var oldestKey int64
	var oldestSeq uint64
	first := true
	for key, entry := range c.content {
		if first || entry.seq < oldestSeq {
			oldestKey, oldestSeq, first = key, entry.seq, false
		}
	}
	return oldestKey
}

func (c *Cache) oldestResult() Key {
	var oldestKey Key
	var oldestSeq uint64
	first := true
	for key, entry := range c.results {
		if first || entry.seq < oldestSeq {
			oldestKey, oldestSeq, first = key, entry.seq, false
		}
	}
	return oldestKey
}
