package matchcache

import (
	"testing"
	"time"

	"dinger/internal/scoring"
	"dinger/internal/statsapi"
)

func newTestCache(opts Options) (*Cache, *time.Time) {
	cache := New(opts)
	current := time.Date(2026, 8, 30, 19, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return current }
	return cache, &current
}

func content(gamePK int64) *statsapi.GameContent {
	return &statsapi.GameContent{GamePK: gamePK}
}

func TestContentTTLExpiry(t *testing.T) {
	cache, clock := newTestCache(Options{ContentTTL: time.Minute})
	cache.PutContent(content(1))

	if _, ok := cache.Content(1); !ok {
		t.Fatal("fresh entry missing")
	}

	*clock = clock.Add(2 * time.Minute)
	if _, ok := cache.Content(1); ok {
		t.Error("expired entry still served")
	}
	if contentEntries, _ := cache.Len(); contentEntries != 0 {
		t.Error("expired entry not purged on access")
	}
}

func TestContentSizeEvictionOldestFirst(t *testing.T) {
	cache, _ := newTestCache(Options{MaxContent: 2})
	cache.PutContent(content(1))
	cache.PutContent(content(2))
	cache.PutContent(content(3))

	if _, ok := cache.Content(1); ok {
		t.Error("oldest entry should have been evicted")
	}
	for _, gamePK := range []int64{2, 3} {
		if _, ok := cache.Content(gamePK); !ok {
			t.Errorf("game %d evicted, want kept", gamePK)
		}
	}
}

func TestResultRoundTripIncludingNoMatch(t *testing.T) {
	cache, _ := newTestCache(Options{})
	key := Key{GamePK: 1, AtBatIndex: 4, PlayIndex: 0}

	// A "no match" outcome is cached like any other result.
	cache.PutResult(key, scoring.MatchResult{Score: 0.12})

	result, ok := cache.Result(key)
	if !ok {
		t.Fatal("cached no-match result missing")
	}
	if result.Matched() {
		t.Error("no-match result should carry no video")
	}
	if result.Score != 0.12 {
		t.Errorf("score = %v", result.Score)
	}

	if _, ok := cache.Result(Key{GamePK: 1, AtBatIndex: 5, PlayIndex: 0}); ok {
		t.Error("unrelated key should miss")
	}
}

func TestResultSizeEviction(t *testing.T) {
	cache, _ := newTestCache(Options{MaxResults: 3})
	for i := 0; i < 5; i++ {
		cache.PutResult(Key{GamePK: 1, AtBatIndex: i}, scoring.MatchResult{Score: float64(i)})
	}

	if _, resultEntries := cache.Len(); resultEntries != 3 {
		t.Fatalf("result entries = %d, want 3", resultEntries)
	}
	for i := 0; i < 2; i++ {
		if _, ok := cache.Result(Key{GamePK: 1, AtBatIndex: i}); ok {
			t.Errorf("entry %d should have been evicted oldest-first", i)
		}
	}
	for i := 2; i < 5; i++ {
		if _, ok := cache.Result(Key{GamePK: 1, AtBatIndex: i}); !ok {
			t.Errorf("entry %d evicted, want kept", i)
		}
	}
}

func TestUsedSetIsolationAndSnapshot(t *testing.T) {
	cache, _ := newTestCache(Options{})
	cache.MarkUsed(1, "clip-a")

	snapshot := cache.UsedSnapshot(1)
	if !snapshot["clip-a"] {
		t.Error("snapshot missing marked clip")
	}

	// Mutating the snapshot must not leak into the cache.
	snapshot["clip-b"] = true
	if cache.UsedSnapshot(1)["clip-b"] {
		t.Error("snapshot mutation leaked into cache")
	}

	if len(cache.UsedSnapshot(2)) != 0 {
		t.Error("used sets must be scoped per game")
	}
}

func TestTryMarkUsedClaimsOnce(t *testing.T) {
	cache, _ := newTestCache(Options{})

	if !cache.TryMarkUsed(1, "clip-a") {
		t.Fatal("first claim should succeed")
	}
	if cache.TryMarkUsed(1, "clip-a") {
		t.Error("second claim of the same clip should fail")
	}
	if !cache.TryMarkUsed(1, "clip-b") {
		t.Error("different clip should still be claimable")
	}
	if !cache.TryMarkUsed(2, "clip-a") {
		t.Error("claims must be scoped per game")
	}
	if cache.TryMarkUsed(1, "") {
		t.Error("empty clip id must not be claimable")
	}
	if !cache.UsedSnapshot(1)["clip-a"] {
		t.Error("claimed clip missing from snapshot")
	}
}

func TestResetGame(t *testing.T) {
	cache, _ := newTestCache(Options{})
	cache.PutContent(content(1))
	cache.PutContent(content(2))
	cache.PutResult(Key{GamePK: 1, AtBatIndex: 0}, scoring.MatchResult{Score: 0.9})
	cache.PutResult(Key{GamePK: 2, AtBatIndex: 0}, scoring.MatchResult{Score: 0.9})
	cache.MarkUsed(1, "clip-a")

	cache.ResetGame(1)

	if _, ok := cache.Content(1); ok {
		t.Error("reset game content survived")
	}
	if _, ok := cache.Result(Key{GamePK: 1, AtBatIndex: 0}); ok {
		t.Error("reset game result survived")
	}
	if len(cache.UsedSnapshot(1)) != 0 {
		t.Error("reset game used set survived")
	}

	if _, ok := cache.Content(2); !ok {
		t.Error("other game's content dropped by reset")
	}
	if _, ok := cache.Result(Key{GamePK: 2, AtBatIndex: 0}); !ok {
		t.Error("other game's result dropped by reset")
	}
}

func TestSweepPurgesExpired(t *testing.T) {
	cache, clock := newTestCache(Options{ContentTTL: time.Minute, ResultTTL: time.Minute})
	cache.PutContent(content(1))
	cache.PutResult(Key{GamePK: 1}, scoring.MatchResult{})

	*clock = clock.Add(2 * time.Minute)
	cache.PutContent(content(2))
	cache.Sweep()

	contentEntries, resultEntries := cache.Len()
	if contentEntries != 1 {
		t.Errorf("content entries = %d, want only the fresh one", contentEntries)
	}
	if resultEntries != 0 {
		t.Errorf("result entries = %d, want 0", resultEntries)
	}
}
