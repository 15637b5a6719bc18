package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens a SQLite database connection and configures pragmas.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", p, err)
		}
	}

	return db, nil
}

// schema is the full database schema. The partial unique index on matches is
// what makes CreateMatch an atomic check-and-insert: at most one ACTIVE row
// may exist per (lost, found) pair.
const schema = `
CREATE TABLE IF NOT EXISTS postings (
    id                INTEGER PRIMARY KEY,
    title             TEXT NOT NULL,
    description       TEXT NOT NULL DEFAULT '',
    category          TEXT NOT NULL,
    post_type         TEXT NOT NULL CHECK (post_type IN ('LOST', 'FOUND')),
    status            TEXT NOT NULL DEFAULT 'PENDING_APPROVAL',
    location          TEXT NOT NULL,
    detailed_location TEXT NOT NULL DEFAULT '',
    lost_found_time   DATETIME NOT NULL,
    created_at        DATETIME NOT NULL,
    approved          INTEGER NOT NULL DEFAULT 0,
    owner_id          INTEGER NOT NULL,
    total_weight      INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_postings_auto_match
    ON postings(post_type, total_weight, location);

CREATE INDEX IF NOT EXISTS idx_postings_owner
    ON postings(owner_id);

CREATE TABLE IF NOT EXISTS matches (
    id               INTEGER PRIMARY KEY,
    lost_posting_id  INTEGER NOT NULL REFERENCES postings(id),
    found_posting_id INTEGER NOT NULL REFERENCES postings(id),
    match_weight     REAL NOT NULL,
    matched_at       DATETIME NOT NULL,
    status           TEXT NOT NULL DEFAULT 'ACTIVE'
        CHECK (status IN ('ACTIVE', 'COMPLETED', 'EXPIRED', 'CANCELLED')),
    completed_at     DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_matches_active_pair
    ON matches(lost_posting_id, found_posting_id) WHERE status = 'ACTIVE';

CREATE TABLE IF NOT EXISTS notifications (
    id         INTEGER PRIMARY KEY,
    user_id    INTEGER NOT NULL,
    type       TEXT NOT NULL,
    title      TEXT NOT NULL,
    message    TEXT NOT NULL,
    match_id   INTEGER REFERENCES matches(id),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    read       INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_notifications_user
    ON notifications(user_id, created_at DESC);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
