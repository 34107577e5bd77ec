package matcher

import (
	"time"

	"dinger/internal/logging"
	"dinger/internal/playclass"
	"dinger/internal/ranking"
	"dinger/internal/scoring"
	"dinger/internal/statsapi"
	"dinger/internal/textnorm"
)

// Strategy names, in the order they are attempted.
const (
	StrategyDescription = "description"
	StrategyTemporal    = "temporal"
	StrategyRelaxed     = "relaxed"
	StrategyCategory    = "category"
)

// runStrategies ranks the pool and accepts the first result whose clip can
// be claimed for the game. Losing a claim to a concurrent request for the
// same game re-ranks against the refreshed used set; the loop is bounded by
// the pool size because every lost claim shrinks the unclaimed pool.
func (m *Matcher) runStrategies(gamePK int64, play scoring.Play, pool []statsapi.Highlight) scoring.MatchResult {
	for attempt := 0; attempt <= len(pool); attempt++ {
		used := m.cache.UsedSnapshot(gamePK)
		result := m.attemptStrategies(gamePK, play, pool, cloneSet(used))
		if result == nil {
			return noMatch(play)
		}
		if used[result.Video.ID] {
			// Deliberate reuse after pool exhaustion; the id is already claimed.
			return *result
		}
		if m.cache.TryMarkUsed(gamePK, result.Video.ID) {
			return *result
		}
		m.logger.Debug("clip claimed by a concurrent request, ranking again",
			logging.Int64(logging.FieldGamePK, gamePK),
			logging.String(logging.FieldVideoID, result.Video.ID))
	}
	return noMatch(play)
}

// attemptStrategies tries each matching strategy in order and short-circuits
// on the first accepted result. Order matters: full-threshold description
// scoring first, then temporal proximity, then relaxed-threshold scoring,
// then the category fallback.
func (m *Matcher) attemptStrategies(gamePK int64, play scoring.Play, pool []statsapi.Highlight, used map[string]bool) *scoring.MatchResult {
	type strategy struct {
		name string
		run  func() *scoring.MatchResult
	}
	strategies := []strategy{
		{StrategyDescription, func() *scoring.MatchResult {
			return ranking.Rank(play, pool, used, m.policy.MinScore)
		}},
		{StrategyTemporal, func() *scoring.MatchResult {
			return m.temporalMatch(play, pool, used)
		}},
		{StrategyRelaxed, func() *scoring.MatchResult {
			return ranking.Rank(play, pool, used, m.policy.RelaxedMinScore)
		}},
		{StrategyCategory, func() *scoring.MatchResult {
			return categoryMatch(play, pool, used)
		}},
	}

	for _, s := range strategies {
		if result := s.run(); result != nil {
			result.Strategy = s.name
			return result
		}
		m.logger.Debug("strategy produced no match",
			logging.Int64(logging.FieldGamePK, gamePK),
			logging.String(logging.FieldStrategy, s.name),
			logging.Error(ErrBelowThreshold))
	}
	return nil
}

func cloneSet(set map[string]bool) map[string]bool {
	clone := make(map[string]bool, len(set))
	for id := range set {
		clone[id] = true
	}
	return clone
}

// temporalMatch accepts the clip published nearest the play's timestamp,
// provided the gap fits inside the policy window. Plays without timestamps
// never match temporally.
func (m *Matcher) temporalMatch(play scoring.Play, pool []statsapi.Highlight, used map[string]bool) *scoring.MatchResult {
	if play.Timestamp.IsZero() {
		return nil
	}

	candidates := withoutUsed(ranking.Usable(pool), used)
	var best *statsapi.Highlight
	var bestGap time.Duration
	for i := range candidates {
		clip := &candidates[i]
		if clip.PublishedAt.IsZero() {
			continue
		}
		gap := clip.PublishedAt.Sub(play.Timestamp)
		if gap < 0 {
			gap = -gap
		}
		if gap > m.policy.TemporalWindow {
			continue
		}
		if best == nil || gap < bestGap {
			best, bestGap = clip, gap
		}
	}
	if best == nil {
		return nil
	}

	result := scoring.Score(play, *best)
	result.Video = best
	return &result
}

// categoryMatch falls back to the first clip whose metadata carries the
// play category's full keyword pattern.
func categoryMatch(play scoring.Play, pool []statsapi.Highlight, used map[string]bool) *scoring.MatchResult {
	category := playclass.Classify(play.Description)
	pattern := category.VideoPattern()
	if len(pattern) == 0 {
		return nil
	}

	candidates := withoutUsed(ranking.Usable(pool), used)
	for i := range candidates {
		clip := &candidates[i]
		tokens := tokenSet(textnorm.SlugTokens(clip.ID + " " + clip.Title))
		if !containsAll(tokens, pattern) {
			continue
		}
		result := scoring.Score(play, *clip)
		result.Video = clip
		return &result
	}
	return nil
}

func classifyCategory(play scoring.Play) playclass.Category {
	return playclass.Classify(play.Description)
}

// withoutUsed excludes already-surfaced clips, falling back to the full set
// when exclusion would leave nothing.
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
	if len(kept) == 0 {
		return pool
	}
	return kept
}

func tokenSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		set[token] = true
	}
	return set
}

func containsAll(tokens map[string]bool, words []string) bool {
	for _, word := range words {
		if !tokens[word] {
			return false
		}
	}
	return true
}
