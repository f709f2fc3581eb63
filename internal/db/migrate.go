package db

import (
	"context"
	"database/sql"
)

// userMigration brings the wiki's users table to the OAuth-only shape:
// token and fullname columns are added and the password column is dropped.
// Every statement is idempotent.
const userMigration = `
CREATE TABLE IF NOT EXISTS users (
    id text PRIMARY KEY,
    name text NOT NULL,
    email text NOT NULL,
    slug text NOT NULL,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

ALTER TABLE users DROP COLUMN IF EXISTS password;
ALTER TABLE users ADD COLUMN IF NOT EXISTS access_token text NULL;
ALTER TABLE users ADD COLUMN IF NOT EXISTS refresh_token text NULL;
ALTER TABLE users ADD COLUMN IF NOT EXISTS token_expires timestamptz NULL;
ALTER TABLE users ADD COLUMN IF NOT EXISTS fullname text NULL;

CREATE UNIQUE INDEX IF NOT EXISTS users_slug_unique
ON users (slug);

CREATE TABLE IF NOT EXISTS role_user (
    user_id text NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    role_id bigint NOT NULL,
    PRIMARY KEY (user_id, role_id)
);
`

func RunUserMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, userMigration)
	return err
}
