package ranking

import (
	"testing"

	"dinger/internal/scoring"
	"dinger/internal/statsapi"
)

func clip(id, title string) statsapi.Highlight {
	return statsapi.Highlight{
		ID:        id,
		Title:     title,
		Category:  "video",
		Playbacks: []statsapi.Playback{{Name: "FLASH_2500K_1280X720", URL: "https://cdn.example/" + id + ".mp4"}},
	}
}

var riveraPlay = scoring.Play{Description: "Alex Rivera singles to center, Sam Lee scores."}

func TestRankSelectsBestCandidate(t *testing.T) {
	pool := []statsapi.Highlight{
		clip("mound-visit-1", "Pitching change"),
		clip("alex-rivera-rbi-single", "Rivera RBI single"),
	}
	used := make(map[string]bool)

	result := Rank(riveraPlay, pool, used, DefaultMinScore)
	if result == nil {
		t.Fatal("expected a match")
	}
	if result.Video.ID != "alex-rivera-rbi-single" {
		t.Errorf("matched %q", result.Video.ID)
	}
	if !used["alex-rivera-rbi-single"] {
		t.Error("winning id not marked used")
	}
	if used["mound-visit-1"] {
		t.Error("losing id must not be marked used")
	}
}

func TestRankRejectsBelowThreshold(t *testing.T) {
	pool := []statsapi.Highlight{clip("mound-visit-1", "Pitching change")}
	if result := Rank(riveraPlay, pool, nil, DefaultMinScore); result != nil {
		t.Errorf("expected no match, got %q at %.3f", result.Video.ID, result.Score)
	}
}

func TestRankUsedExclusionThenFallback(t *testing.T) {
	pool := []statsapi.Highlight{clip("alex-rivera-rbi-single", "Rivera RBI single")}
	used := make(map[string]bool)

	first := Rank(riveraPlay, pool, used, DefaultMinScore)
	if first == nil {
		t.Fatal("first rank should match")
	}

	// Pool is exhausted; reuse of the only qualifying clip is permitted.
	second := Rank(riveraPlay, pool, used, DefaultMinScore)
	if second == nil {
		t.Fatal("exhausted pool should fall back to reuse")
	}
	if second.Video.ID != first.Video.ID {
		t.Errorf("fallback matched %q, want %q", second.Video.ID, first.Video.ID)
	}
}

func TestRankSkipsUsedWhenAlternativesExist(t *testing.T) {
	pool := []statsapi.Highlight{
		clip("alex-rivera-rbi-single", "Rivera RBI single"),
		clip("rivera-single-center", "Alex Rivera singles to center"),
	}
	used := map[string]bool{"alex-rivera-rbi-single": true}

	result := Rank(riveraPlay, pool, used, DefaultMinScore)
	if result == nil {
		t.Fatal("expected a match")
	}
	if result.Video.ID != "rivera-single-center" {
		t.Errorf("matched %q, want the unused clip", result.Video.ID)
	}
}

func TestRankFiltersUnusableClips(t *testing.T) {
	animated := clip("alex-rivera-rbi-single", "Rivera RBI single")
	animated.Animated = true
	noPlayback := clip("rivera-single-center", "Alex Rivera singles to center")
	noPlayback.Playbacks = nil
	article := clip("rivera-recap", "Alex Rivera singles to center, Sam Lee scores")
	article.Category = "article"

	pool := []statsapi.Highlight{animated, noPlayback, article}
	if result := Rank(riveraPlay, pool, nil, DefaultMinScore); result != nil {
		t.Errorf("unusable pool produced match %q", result.Video.ID)
	}
}

func TestRankStableTieBreak(t *testing.T) {
	pool := []statsapi.Highlight{
		clip("rivera-rbi-single-a", "Rivera RBI single"),
		clip("rivera-rbi-single-b", "Rivera RBI single"),
	}
	result := Rank(riveraPlay, pool, nil, 0.1)
	if result == nil {
		t.Fatal("expected a match")
	}
	if result.Video.ID != "rivera-rbi-single-a" {
		t.Errorf("tie went to %q, want first-seen clip", result.Video.ID)
	}
}

func TestRankEmptyPool(t *testing.T) {
	if result := Rank(riveraPlay, nil, nil, DefaultMinScore); result != nil {
		t.Error("empty pool must return no match")
	}
}
