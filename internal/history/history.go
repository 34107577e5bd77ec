// Package history persists match decisions to a local sqlite database so
// past matches survive restarts and can be inspected from the CLI.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"dinger/internal/logging"
)

// Entry is one recorded match decision.
type Entry struct {
	ID         int64
	GamePK     int64
	AtBatIndex int
	PlayIndex  int
	VideoID    string
	Score      float64
	Category   string
	Strategy   string
	MatchedAt  time.Time
}

// Store is an append-only sqlite-backed match log.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS matches (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	game_pk INTEGER NOT NULL,
	at_bat_index INTEGER NOT NULL,
	play_index INTEGER NOT NULL,
	video_id TEXT NOT NULL,
	score REAL NOT NULL,
	category TEXT NOT NULL,
	strategy TEXT NOT NULL,
	matched_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_matches_game ON matches(game_pk);
`

// Open creates or opens the history database at path, applying WAL pragmas
// and the schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}

	return &Store{
		db:     db,
		logger: logging.NewComponentLogger(logger, "history"),
	}, nil
}

// Record appends one match decision.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	if entry.MatchedAt.IsZero() {
		entry.MatchedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO matches (game_pk, at_bat_index, play_index, video_id, score, category, strategy, matched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.GamePK, entry.AtBatIndex, entry.PlayIndex, entry.VideoID,
		entry.Score, entry.Category, entry.Strategy, entry.MatchedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record match: %w", err)
	}
	s.logger.Debug("recorded match",
		logging.Int64(logging.FieldGamePK, entry.GamePK),
		logging.String(logging.FieldVideoID, entry.VideoID),
		logging.String(logging.FieldStrategy, entry.Strategy))
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, game_pk, at_bat_index, play_index, video_id, score, category, strategy, matched_at
		 FROM matches ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var matchedAt string
		if err := rows.Scan(&entry.ID, &entry.GamePK, &entry.AtBatIndex, &entry.PlayIndex,
			&entry.VideoID, &entry.Score, &entry.Category, &entry.Strategy, &matchedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339, matchedAt); err == nil {
			entry.MatchedAt = ts
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// GameEntries returns every recorded decision for one game, oldest first.
func (s *Store) GameEntries(ctx context.Context, gamePK int64) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, game_pk, at_bat_index, play_index, video_id, score, category, strategy, matched_at
		 FROM matches WHERE game_pk = ? ORDER BY id ASC`, gamePK)
	if err != nil {
		return nil, fmt.Errorf("query game history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var matchedAt string
		if err := rows.Scan(&entry.ID, &entry.GamePK, &entry.AtBatIndex, &entry.PlayIndex,
			&entry.VideoID, &entry.Score, &entry.Category, &entry.Strategy, &matchedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339, matchedAt); err == nil {
			entry.MatchedAt = ts
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
