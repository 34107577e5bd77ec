// Package matcher is the top-level matching orchestrator. It ties the fetch
// gateway, the cache tiers, and the candidate ranker into FindVideoForPlay,
// trying an ordered chain of strategies and degrading every internal failure
// to a "no match" result.
package matcher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dinger/internal/history"
	"dinger/internal/logging"
	"dinger/internal/matchcache"
	"dinger/internal/metrics"
	"dinger/internal/scoring"
	"dinger/internal/statsapi"
)

// Result states surfaced in logs. Neither is ever returned to the caller.
var (
	ErrNoCandidatePool = errors.New("game content has no usable highlight clips")
	ErrBelowThreshold  = errors.New("best candidate scored below the acceptance threshold")
)

// Policy carries the matching thresholds and the temporal acceptance window.
type Policy struct {
	MinScore        float64
	RelaxedMinScore float64
	TemporalWindow  time.Duration
}

// DefaultPolicy returns the standard matching policy.
func DefaultPolicy() Policy {
	return Policy{
		MinScore:        0.4,
		RelaxedMinScore: 0.25,
		TemporalWindow:  90 * time.Second,
	}
}

func (p Policy) normalized() Policy {
	defaults := DefaultPolicy()
	if p.MinScore <= 0 {
		p.MinScore = defaults.MinScore
	}
	if p.RelaxedMinScore <= 0 {
		p.RelaxedMinScore = defaults.RelaxedMinScore
	}
	if p.RelaxedMinScore > p.MinScore {
		p.RelaxedMinScore = p.MinScore
	}
	if p.TemporalWindow <= 0 {
		p.TemporalWindow = defaults.TemporalWindow
	}
	return p
}

// Recorder persists accepted match decisions.
type Recorder interface {
	Record(ctx context.Context, entry history.Entry) error
}

// Matcher matches plays to highlight clips for any number of games. One
// instance owns the cache tiers and used-clip state for the process.
type Matcher struct {
	fetcher  statsapi.Fetcher
	cache    *matchcache.Cache
	policy   Policy
	logger   *slog.Logger
	recorder Recorder
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithPolicy overrides the default matching policy.
func WithPolicy(policy Policy) Option {
	return func(m *Matcher) { m.policy = policy.normalized() }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) {
		if logger != nil {
			m.logger = logging.NewComponentLogger(logger, "matcher")
		}
	}
}

// WithRecorder persists accepted matches to the given store. Recording
// failures are logged, never surfaced.
func WithRecorder(recorder Recorder) Option {
	return func(m *Matcher) { m.recorder = recorder }
}

// New creates a Matcher over the given gateway and cache.
func New(fetcher statsapi.Fetcher, cache *matchcache.Cache, opts ...Option) *Matcher {
	m := &Matcher{
		fetcher: fetcher,
		cache:   cache,
		policy:  DefaultPolicy(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FindVideoForPlay resolves the highlight clip depicting the play, or a
// "no match" result (nil Video). It never returns an error: fetch failures,
// empty pools, and below-threshold pools all degrade to "no match" with the
// cause logged. Results, including "no match", are cached per play key; a
// cancelled request leaves no partial cache writes behind.
func (m *Matcher) FindVideoForPlay(ctx context.Context, gamePK int64, play scoring.Play) scoring.MatchResult {
	key := matchcache.Key{GamePK: gamePK, AtBatIndex: play.AtBatIndex, PlayIndex: play.PlayIndex}
	if cached, ok := m.cache.Result(key); ok {
		return cached
	}

	content, err := m.gameContent(ctx, gamePK)
	if err != nil {
		if ctx.Err() != nil {
			// Abandoned request: report no match but do not poison the cache.
			return noMatch(play)
		}
		m.logger.Warn("game content unavailable",
			logging.Int64(logging.FieldGamePK, gamePK),
			logging.Error(err))
		return m.finish(ctx, key, gamePK, play, noMatch(play))
	}

	if len(content.Highlights) == 0 {
		m.logger.Info("no candidate pool",
			logging.Int64(logging.FieldGamePK, gamePK),
			logging.Error(ErrNoCandidatePool))
		return m.finish(ctx, key, gamePK, play, noMatch(play))
	}

	result := m.runStrategies(gamePK, play, content.Highlights)
	if ctx.Err() != nil {
		return result
	}
	return m.finish(ctx, key, gamePK, play, result)
}

// ResetGame clears all cached state for a game.
func (m *Matcher) ResetGame(gamePK int64) {
	m.cache.ResetGame(gamePK)
	m.logger.Info("game state reset", logging.Int64(logging.FieldGamePK, gamePK))
}

// Sweep purges expired cache entries.
func (m *Matcher) Sweep() {
	m.cache.Sweep()
}

func (m *Matcher) gameContent(ctx context.Context, gamePK int64) (*statsapi.GameContent, error) {
	if content, ok := m.cache.Content(gamePK); ok {
		return content, nil
	}
	content, err := m.fetcher.FetchGameContent(ctx, gamePK)
	if err != nil {
		return nil, err
	}
	m.cache.PutContent(content)
	return content, nil
}

// finish caches the result, records accepted matches, and bumps the outcome
// counter. The winning clip was already claimed used inside runStrategies.
func (m *Matcher) finish(ctx context.Context, key matchcache.Key, gamePK int64, play scoring.Play, result scoring.MatchResult) scoring.MatchResult {
	m.cache.PutResult(key, result)

	if !result.Matched() {
		metrics.MatchOutcomes.WithLabelValues("none").Inc()
		return result
	}

	metrics.MatchOutcomes.WithLabelValues(result.Strategy).Inc()
	m.logger.Info("matched play to highlight",
		logging.Int64(logging.FieldGamePK, gamePK),
		logging.String(logging.FieldVideoID, result.Video.ID),
		logging.String(logging.FieldStrategy, result.Strategy),
		logging.Float64(logging.FieldScore, result.Score))

	if m.recorder != nil {
		entry := history.Entry{
			GamePK:     gamePK,
			AtBatIndex: play.AtBatIndex,
			PlayIndex:  play.PlayIndex,
			VideoID:    result.Video.ID,
			Score:      result.Score,
			Category:   result.Category.String(),
			Strategy:   result.Strategy,
		}
		if err := m.recorder.Record(ctx, entry); err != nil {
			m.logger.Warn("history record failed", logging.Error(err))
		}
	}
	return result
}

func noMatch(play scoring.Play) scoring.MatchResult {
	return scoring.MatchResult{Category: classifyCategory(play)}
}
