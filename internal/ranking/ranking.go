// Package ranking filters a candidate clip pool, scores every survivor, and
// applies the acceptance threshold. Clips already used for the current game
// are excluded unless that would empty the pool, in which case reuse beats
// returning nothing.
package ranking

import (
	"sort"

	"dinger/internal/scoring"
	"dinger/internal/statsapi"
)

// DefaultMinScore is the acceptance threshold applied when the caller
// provides none.
const DefaultMinScore = 0.4

// Rank returns the best acceptable match for the play, or nil when the top
// candidate scores below minScore. On acceptance the winning clip's id is
// recorded in used. Ties keep pool order, so the first-seen clip wins.
func Rank(play scoring.Play, pool []statsapi.Highlight, used map[string]bool, minScore float64) *scoring.MatchResult {
	if minScore <= 0 {
		minScore = DefaultMinScore
	}

	candidates := Usable(pool)
	if len(candidates) == 0 {
		return nil
	}

	filtered := withoutUsed(candidates, used)
	if len(filtered) == 0 {
		// Every usable clip has been surfaced already. Reuse is preferred
		// over a missing highlight.
		filtered = candidates
	}

	type scored struct {
		clip   statsapi.Highlight
		result scoring.MatchResult
	}
	results := make([]scored, 0, len(filtered))
	for _, clip := range filtered {
		results = append(results, scored{clip: clip, result: scoring.Score(play, clip)})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].result.Score > results[j].result.Score
	})

	best := results[0]
	if best.result.Score < minScore {
		return nil
	}

	if used != nil {
		used[best.clip.ID] = true
	}
	result := best.result
	result.Video = &best.clip
	return &result
}

// Usable drops animated clips, non-video content, and clips with nothing to
// play back.
func Usable(pool []statsapi.Highlight) []statsapi.Highlight {
	kept := make([]statsapi.Highlight, 0, len(pool))
	for _, clip := range pool {
		if clip.Animated {
			continue
		}
		if clip.Category != "" && clip.Category != "video" {
			continue
		}
		if len(clip.Playbacks) == 0 {
			continue
		}
		kept = append(kept, clip)
	}
	return kept
}

func withoutUsed(pool []statsapi.Highlight, used map[string]bool) []statsapi.Highlight {
	if len(used) == 0 {
		return pool
	}
	kept := make([]statsapi.Highlight, 0, len(pool))
	for _, clip := range pool {
		if used[clip.ID] {
			continue
		}
		kept = append(kept, clip)
	}
	return kept
}
