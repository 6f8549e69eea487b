package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS post_it__users (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	password      TEXT NOT NULL,
	is_first_time BOOLEAN NOT NULL DEFAULT TRUE,
	role          TEXT NOT NULL DEFAULT 'user',
	is_restricted BOOLEAN NOT NULL DEFAULT FALSE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS username_idx ON post_it__users (username);

CREATE TABLE IF NOT EXISTS post_it__posts (
	id          TEXT PRIMARY KEY,
	content     TEXT NOT NULL,
	metadata    JSONB,
	attachments JSONB NOT NULL DEFAULT '[]',
	status      TEXT NOT NULL DEFAULT 'pending',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	author_id   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS author_id_idx ON post_it__posts (author_id);
CREATE INDEX IF NOT EXISTS created_at_idx ON post_it__posts (created_at);
CREATE INDEX IF NOT EXISTS status_idx ON post_it__posts (status);
`

// EnsureSchema creates the required tables and indexes if they do not exist.
// It is safe to call on every startup (all statements use IF NOT EXISTS).
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaSQL)
	return err
}
