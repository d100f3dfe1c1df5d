// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// dialect is "postgres" or "sqlite".
func CreateSchema(db *sql.DB, dialect string) error {
	ddl := postgresSchema
	if dialect == "sqlite" {
		ddl = sqliteSchema
	}

	_, err := db.Exec(ddl)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const postgresSchema = `
-- Creators (poll owners)
CREATE TABLE IF NOT EXISTS creator (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

-- Polls
CREATE TABLE IF NOT EXISTS poll (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    poll_type TEXT NOT NULL DEFAULT 'single_choice' CHECK (poll_type IN ('single_choice', 'multiple_choice')),
    allow_anonymous BOOLEAN NOT NULL DEFAULT TRUE,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    expires_at TIMESTAMP,
    creator_id TEXT REFERENCES creator(id),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_poll_creator_id ON poll(creator_id);
CREATE INDEX IF NOT EXISTS idx_poll_created_at ON poll(created_at);

-- Options
CREATE TABLE IF NOT EXISTS poll_option (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    label TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_poll_option_poll_id ON poll_option(poll_id);

-- Controlled voter roster
CREATE TABLE IF NOT EXISTS voter (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    email TEXT NOT NULL,
    temp_password_hash TEXT NOT NULL,
    anon_id TEXT NOT NULL,
    has_voted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
    UNIQUE (poll_id, email),
    UNIQUE (poll_id, anon_id)
);

CREATE INDEX IF NOT EXISTS idx_voter_poll_id ON voter(poll_id);

-- Vote ledger
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    option_id TEXT NOT NULL REFERENCES poll_option(id) ON DELETE CASCADE,
    anon_id TEXT NOT NULL,
    voter_id TEXT REFERENCES voter(id),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    UNIQUE (option_id, anon_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_option_id ON vote(option_id);
CREATE INDEX IF NOT EXISTS idx_vote_anon_id ON vote(anon_id);
`

// sqliteSchema mirrors the postgres DDL for the sqlite database type.
// TIMESTAMP decltypes keep time.Time scanning working under modernc/sqlite.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS creator (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS poll (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    poll_type TEXT NOT NULL DEFAULT 'single_choice' CHECK (poll_type IN ('single_choice', 'multiple_choice')),
    allow_anonymous BOOLEAN NOT NULL DEFAULT TRUE,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    expires_at TIMESTAMP,
    creator_id TEXT REFERENCES creator(id),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_poll_creator_id ON poll(creator_id);
CREATE INDEX IF NOT EXISTS idx_poll_created_at ON poll(created_at);

CREATE TABLE IF NOT EXISTS poll_option (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    label TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_poll_option_poll_id ON poll_option(poll_id);

CREATE TABLE IF NOT EXISTS voter (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    email TEXT NOT NULL,
    temp_password_hash TEXT NOT NULL,
    anon_id TEXT NOT NULL,
    has_voted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (poll_id, email),
    UNIQUE (poll_id, anon_id)
);

CREATE INDEX IF NOT EXISTS idx_voter_poll_id ON voter(poll_id);

CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    option_id TEXT NOT NULL REFERENCES poll_option(id) ON DELETE CASCADE,
    anon_id TEXT NOT NULL,
    voter_id TEXT REFERENCES voter(id),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (option_id, anon_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_option_id ON vote(option_id);
CREATE INDEX IF NOT EXISTS idx_vote_anon_id ON vote(anon_id);
`
