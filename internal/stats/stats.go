package stats

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS results (
	game_id     TEXT PRIMARY KEY,
	won         INTEGER NOT NULL,
	attempts    INTEGER NOT NULL,
	word        TEXT NOT NULL,
	finished_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// Store records finished games in SQLite.
type Store struct {
	db *sql.DB
}

// Open creates the database file (and its parent directory) if missing and
// applies the schema.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordResult stores a terminal game. Repeated records for the same game
// are ignored, so re-resolving a finished game stays idempotent.
func (s *Store) RecordResult(ctx context.Context, gameID string, won bool, attempts int, word string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO results (game_id, won, attempts, word)
		VALUES (?, ?, ?, ?)`,
		gameID, won, attempts, word,
	)
	return err
}

type Summary struct {
	Played int `json:"played"`
	Won    int `json:"won"`
	Lost   int `json:"lost"`
}

func (s *Store) Summary(ctx context.Context) (Summary, error) {
	var sum Summary
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1), COALESCE(SUM(won), 0) FROM results`,
	).Scan(&sum.Played, &sum.Won)
	if err != nil {
		return Summary{}, err
	}
	sum.Lost = sum.Played - sum.Won
	return sum, nil
}

// Recent lists the latest finished games, newest first.
type Result struct {
	GameID     string    `json:"gameId"`
	Won        bool      `json:"won"`
	Attempts   int       `json:"attempts"`
	Word       string    `json:"word"`
	FinishedAt time.Time `json:"finishedAt"`
}

func (s *Store) Recent(ctx context.Context, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT game_id, won, attempts, word, finished_at
		FROM results ORDER BY finished_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.GameID, &r.Won, &r.Attempts, &r.Word, &r.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
