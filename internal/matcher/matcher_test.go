package matcher

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"dinger/internal/history"
	"dinger/internal/matchcache"
	"dinger/internal/scoring"
	"dinger/internal/statsapi"
)

type fakeFetcher struct {
	mu      sync.Mutex
	calls   int
	content *statsapi.GameContent
	err     error
}

func (f *fakeFetcher) FetchGameContent(ctx context.Context, gamePK int64) (*statsapi.GameContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.content, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []history.Entry
}

func (r *fakeRecorder) Record(_ context.Context, entry history.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func clip(id, title string) statsapi.Highlight {
	return statsapi.Highlight{
		ID:        id,
		Title:     title,
		Category:  "video",
		Playbacks: []statsapi.Playback{{Name: "FLASH_2500K_1280X720", URL: "https://cdn.example/" + id + ".mp4"}},
	}
}

func pool(clips ...statsapi.Highlight) *statsapi.GameContent {
	return &statsapi.GameContent{GamePK: 745123, Highlights: clips}
}

var riveraPlay = scoring.Play{
	Description: "Alex Rivera singles to center, Sam Lee scores.",
	AtBatIndex:  3,
}

func TestFindVideoForPlayDescriptionStrategy(t *testing.T) {
	fetcher := &fakeFetcher{content: pool(
		clip("mound-visit-1", "Pitching change"),
		clip("alex-rivera-rbi-single", "Rivera RBI single"),
	)}
	m := New(fetcher, matchcache.New(matchcache.Options{}))

	result := m.FindVideoForPlay(context.Background(), 745123, riveraPlay)
	if !result.Matched() {
		t.Fatal("expected a match")
	}
	if result.Video.ID != "alex-rivera-rbi-single" {
		t.Errorf("matched %q", result.Video.ID)
	}
	if result.Strategy != StrategyDescription {
		t.Errorf("strategy = %q, want description", result.Strategy)
	}
	if result.Score <= 0.5 {
		t.Errorf("score = %.3f, want > 0.5", result.Score)
	}
}

func TestFindVideoForPlayCachesResultAndSkipsRefetch(t *testing.T) {
	fetcher := &fakeFetcher{content: pool(clip("alex-rivera-rbi-single", "Rivera RBI single"))}
	m := New(fetcher, matchcache.New(matchcache.Options{}))

	first := m.FindVideoForPlay(context.Background(), 745123, riveraPlay)
	second := m.FindVideoForPlay(context.Background(), 745123, riveraPlay)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached result diverged:\n%+v\n%+v", first, second)
	}
	if fetcher.callCount() != 1 {
		t.Errorf("fetch count = %d, want 1", fetcher.callCount())
	}
}

func TestFindVideoForPlayCachesNoMatch(t *testing.T) {
	fetcher := &fakeFetcher{content: pool(clip("mound-visit-1", "Pitching change"))}
	m := New(fetcher, matchcache.New(matchcache.Options{}))

	first := m.FindVideoForPlay(context.Background(), 745123, riveraPlay)
	if first.Matched() {
		t.Fatal("expected no match")
	}

	// The futile outcome is cached too; no further fetches or rescoring.
	m.FindVideoForPlay(context.Background(), 745123, riveraPlay)
	if fetcher.callCount() != 1 {
		t.Errorf("fetch count = %d, want 1", fetcher.callCount())
	}
}

func TestFindVideoForPlayFetchFailureDegrades(t *testing.T) {
	fetcher := &fakeFetcher{err: &statsapi.ExhaustedError{GamePK: 745123, Attempts: 3, Err: errors.New("boom")}}
	m := New(fetcher, matchcache.New(matchcache.Options{}))

	result := m.FindVideoForPlay(context.Background(), 745123, riveraPlay)
	if result.Matched() {
		t.Fatal("fetch failure must degrade to no match")
	}

	// Failure outcome is cached; the gateway is not hammered again.
	m.FindVideoForPlay(context.Background(), 745123, riveraPlay)
	if fetcher.callCount() != 1 {
		t.Errorf("fetch count = %d, want 1", fetcher.callCount())
	}
}

func TestFindVideoForPlayCancellationLeavesNoCacheWrites(t *testing.T) {
	fetcher := &fakeFetcher{content: pool(clip("alex-rivera-rbi-single", "Rivera RBI single"))}
	m := New(fetcher, matchcache.New(matchcache.Options{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if result := m.FindVideoForPlay(ctx, 745123, riveraPlay); result.Matched() {
		t.Fatal("cancelled request should report no match")
	}

	// The abandoned call must not have cached a bogus no-match.
	result := m.FindVideoForPlay(context.Background(), 745123, riveraPlay)
	if !result.Matched() {
		t.Fatal("fresh request after cancellation should match")
	}
}

func TestFindVideoForPlayUsedExclusionAcrossPlays(t *testing.T) {
	fetcher := &fakeFetcher{content: pool(
		clip("alex-rivera-rbi-single", "Rivera RBI single"),
		clip("rivera-single-center", "Alex Rivera singles to center"),
	)}
	m := New(fetcher, matchcache.New(matchcache.Options{}))

	secondPlay := riveraPlay
	secondPlay.AtBatIndex = 8

	first := m.FindVideoForPlay(context.Background(), 745123, riveraPlay)
	second := m.FindVideoForPlay(context.Background(), 745123, secondPlay)
	if !first.Matched() || !second.Matched() {
		t.Fatal("both plays should match")
	}
	if first.Video.ID == second.Video.ID {
		t.Errorf("second play reused %q while an alternative existed", first.Video.ID)
	}
}

// gateFetcher holds every fetch open until released, so overlapping requests
// observe the used set before either has claimed a clip.
type gateFetcher struct {
	content *statsapi.GameContent
	arrived chan struct{}
	release chan struct{}
}

func (f *gateFetcher) FetchGameContent(ctx context.Context, gamePK int64) (*statsapi.GameContent, error) {
	f.arrived <- struct{}{}
	<-f.release
	return f.content, nil
}

func TestFindVideoForPlayConcurrentPlaysGetDistinctClips(t *testing.T) {
	fetcher := &gateFetcher{
		content: pool(
			clip("alex-rivera-rbi-single", "Rivera RBI single"),
			clip("rivera-single-center", "Alex Rivera singles to center"),
		),
		arrived: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	m := New(fetcher, matchcache.New(matchcache.Options{}))

	secondPlay := riveraPlay
	secondPlay.AtBatIndex = 8

	results := make(chan scoring.MatchResult, 2)
	for _, play := range []scoring.Play{riveraPlay, secondPlay} {
		go func() {
			results <- m.FindVideoForPlay(context.Background(), 745123, play)
		}()
	}
	<-fetcher.arrived
	<-fetcher.arrived
	close(fetcher.release)

	first, second := <-results, <-results
	if !first.Matched() || !second.Matched() {
		t.Fatal("both plays should match")
	}
	if first.Video.ID == second.Video.ID {
		t.Errorf("both plays surfaced %q while an alternative existed", first.Video.ID)
	}
}

func TestFindVideoForPlayTemporalStrategy(t *testing.T) {
	playTime := time.Date(2026, 8, 30, 19, 10, 0, 0, time.UTC)
	near := clip("random-b2", "Bullpen warms up")
	near.PublishedAt = playTime.Add(40 * time.Second)
	far := clip("random-c3", "Seventh inning stretch")
	far.PublishedAt = playTime.Add(10 * time.Minute)

	fetcher := &fakeFetcher{content: pool(near, far)}
	m := New(fetcher, matchcache.New(matchcache.Options{}))

	play := scoring.Play{Description: "Walks on four pitches.", AtBatIndex: 2, Timestamp: playTime}
	result := m.FindVideoForPlay(context.Background(), 745123, play)
	if !result.Matched() {
		t.Fatal("expected temporal match")
	}
	if result.Strategy != StrategyTemporal {
		t.Errorf("strategy = %q, want temporal", result.Strategy)
	}
	if result.Video.ID != "random-b2" {
		t.Errorf("matched %q, want the nearest clip inside the window", result.Video.ID)
	}
}

func TestFindVideoForPlayRelaxedStrategy(t *testing.T) {
	fetcher := &fakeFetcher{content: pool(clip("clip-a1", "Force out ends the inning"))}
	m := New(fetcher, matchcache.New(matchcache.Options{}))

	play := scoring.Play{Description: "Garcia grounds into a force out, Lee scores.", AtBatIndex: 5}
	result := m.FindVideoForPlay(context.Background(), 745123, play)
	if !result.Matched() {
		t.Fatal("expected relaxed-threshold match")
	}
	if result.Strategy != StrategyRelaxed {
		t.Errorf("strategy = %q, want relaxed", result.Strategy)
	}
	if result.Score >= 0.4 {
		t.Errorf("score = %.3f, expected below the primary threshold", result.Score)
	}
}

func TestFindVideoForPlayCategoryFallback(t *testing.T) {
	fetcher := &fakeFetcher{content: pool(clip("clip-a1", "Force out ends the inning"))}
	m := New(fetcher, matchcache.New(matchcache.Options{}),
		WithPolicy(Policy{MinScore: 0.5, RelaxedMinScore: 0.5}))

	play := scoring.Play{Description: "Garcia grounds into a force out, Lee scores.", AtBatIndex: 5}
	result := m.FindVideoForPlay(context.Background(), 745123, play)
	if !result.Matched() {
		t.Fatal("expected category fallback match")
	}
	if result.Strategy != StrategyCategory {
		t.Errorf("strategy = %q, want category", result.Strategy)
	}
}

func TestFindVideoForPlayEmptyPool(t *testing.T) {
	fetcher := &fakeFetcher{content: pool()}
	m := New(fetcher, matchcache.New(matchcache.Options{}))

	if result := m.FindVideoForPlay(context.Background(), 745123, riveraPlay); result.Matched() {
		t.Error("empty pool must yield no match")
	}
}

func TestResetGameAllowsRematch(t *testing.T) {
	fetcher := &fakeFetcher{content: pool(clip("alex-rivera-rbi-single", "Rivera RBI single"))}
	m := New(fetcher, matchcache.New(matchcache.Options{}))

	m.FindVideoForPlay(context.Background(), 745123, riveraPlay)
	m.ResetGame(745123)

	result := m.FindVideoForPlay(context.Background(), 745123, riveraPlay)
	if !result.Matched() {
		t.Fatal("expected rematch after reset")
	}
	if fetcher.callCount() != 2 {
		t.Errorf("fetch count = %d, want refetch after reset", fetcher.callCount())
	}
}

func TestFindVideoForPlayRecordsHistory(t *testing.T) {
	fetcher := &fakeFetcher{content: pool(clip("alex-rivera-rbi-single", "Rivera RBI single"))}
	recorder := &fakeRecorder{}
	m := New(fetcher, matchcache.New(matchcache.Options{}), WithRecorder(recorder))

	m.FindVideoForPlay(context.Background(), 745123, riveraPlay)

	if len(recorder.entries) != 1 {
		t.Fatalf("recorded entries = %d, want 1", len(recorder.entries))
	}
	entry := recorder.entries[0]
	if entry.VideoID != "alex-rivera-rbi-single" || entry.GamePK != 745123 || entry.AtBatIndex != 3 {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Strategy != StrategyDescription {
		t.Errorf("strategy = %q", entry.Strategy)
	}
}
