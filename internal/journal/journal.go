// Package journal is stackd's optional operation log.
//
// Every device operation (attach, detach, push, pop, resize) can be
// appended as one row in a SQLite database, with the store's depth and
// capacity after the operation. The journal is observability, not
// persistence: nothing is ever read back into the live store. Replay
// exists so an operator can verify that the log is arithmetically
// consistent with the stack discipline.
package journal

import (
	"database/sql"
	"fmt"

	_ "embed"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Journal wraps the SQLite database holding the event log.
type Journal struct {
	db *sql.DB
}

// Open creates or opens the journal database at path. ":memory:" gives
// a throwaway in-memory journal for tests.
//
// The connection is configured the same way for every open, and opening
// an existing journal is idempotent:
//   - WAL mode, so trace/verify reads don't block the recorder
//   - NORMAL synchronous mode
//   - 5-second busy timeout
//   - a single connection, since SQLite allows one writer at a time
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect journal: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}
