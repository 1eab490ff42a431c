// Package store handles SQLite persistence of chat history and list fetches.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/agromind/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for history data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS chat_turns (
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TEXT NOT NULL,
			PRIMARY KEY (session_id, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS list_fetches (
			id INTEGER PRIMARY KEY,
			session_id TEXT NOT NULL,
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL,
			records INTEGER NOT NULL,
			error TEXT NOT NULL,
			fetched_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at);`,
		`CREATE INDEX IF NOT EXISTS idx_list_fetches_session ON list_fetches(session_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// StartSession registers a session id. Registering the same id twice is a no-op.
func (s *Store) StartSession(ctx context.Context, id string, startedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO sessions (id, started_at) VALUES (?, ?)`,
		id, startedAt.Format(time.RFC3339Nano))
	return err
}

// AppendTurn stores the turn at position seq of a session log.
func (s *Store) AppendTurn(ctx context.Context, sessionID string, seq int, turn model.ChatTurn, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_turns (session_id, seq, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		sessionID, seq, string(turn.Role), turn.Content, at.Format(time.RFC3339Nano))
	return err
}

// SaveSession stores a whole session log in one transaction.
func (s *Store) SaveSession(ctx context.Context, sessionID string, startedAt time.Time, turns []model.ChatTurn) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO sessions (id, started_at) VALUES (?, ?)`,
		sessionID, startedAt.Format(time.RFC3339Nano)); err != nil {
		return err
	}

	if len(turns) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO chat_turns (session_id, seq, role, content, created_at) VALUES (?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		now := time.Now().Format(time.RFC3339Nano)
		for i, turn := range turns {
			if _, err = stmt.ExecContext(ctx, sessionID, i, string(turn.Role), turn.Content, now); err != nil {
				return err
			}
		}
	}

	err = tx.Commit()
	return err
}

// ListSessions returns the most recent sessions first, with their turn counts.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]model.SessionSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.started_at, COUNT(t.seq)
		FROM sessions s
		LEFT JOIN chat_turns t ON t.session_id = s.id
		GROUP BY s.id, s.started_at
		ORDER BY s.started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.SessionSummary
	for rows.Next() {
		var summary model.SessionSummary
		var startedAt string
		if err := rows.Scan(&summary.SessionID, &startedAt, &summary.Turns); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, err
		}
		summary.StartedAt = parsed
		result = append(result, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListTurns returns a session log in order.
func (s *Store) ListTurns(ctx context.Context, sessionID string) ([]model.ChatTurn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content FROM chat_turns WHERE session_id = ? ORDER BY seq ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var turns []model.ChatTurn
	for rows.Next() {
		var role string
		var turn model.ChatTurn
		if err := rows.Scan(&role, &turn.Content); err != nil {
			return nil, err
		}
		turn.Role = model.Role(role)
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return turns, nil
}

// InsertFetch records the outcome of a list fetch.
func (s *Store) InsertFetch(ctx context.Context, f model.FetchLog) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO list_fetches (session_id, start_date, end_date, records, error, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		f.SessionID, f.Start, f.End, f.Records, f.Err, f.FetchedAt.Format(time.RFC3339Nano))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListFetches returns the fetch log of a session, oldest first.
func (s *Store) ListFetches(ctx context.Context, sessionID string) ([]model.FetchLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, start_date, end_date, records, error, fetched_at
		FROM list_fetches WHERE session_id = ? ORDER BY id ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.FetchLog
	for rows.Next() {
		var f model.FetchLog
		var fetchedAt string
		if err := rows.Scan(&f.SessionID, &f.Start, &f.End, &f.Records, &f.Err, &fetchedAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, fetchedAt)
		if err != nil {
			return nil, err
		}
		f.FetchedAt = parsed
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
