package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

var promoterTables = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		user_name TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL DEFAULT '',
		password TEXT NOT NULL,
		slack_id TEXT,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS content_items (
		id BIGSERIAL PRIMARY KEY,
		url TEXT NOT NULL,
		title VARCHAR(250) NOT NULL,
		scraped_body TEXT,
		excerpt TEXT,
		author_copy TEXT,
		image_url TEXT,
		publish_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		context TEXT,
		campaign_tag TEXT,
		submitted_by_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT content_items_url_key UNIQUE (url)
	)`,
	`CREATE TABLE IF NOT EXISTS shares (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		content_id BIGINT NOT NULL REFERENCES content_items(id) ON DELETE CASCADE,
		platform TEXT NOT NULL,
		post_content TEXT NOT NULL,
		post_url TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS platform_credentials (
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		platform TEXT NOT NULL,
		platform_user_id TEXT,
		access_token TEXT,
		refresh_token TEXT,
		access_token_expires_at TIMESTAMPTZ,
		scope TEXT,
		authorized BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, platform)
	)`,
	`CREATE TABLE IF NOT EXISTS scrape_jobs (
		id BIGSERIAL PRIMARY KEY,
		content_id BIGINT NOT NULL REFERENCES content_items(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		notify_recipient TEXT,
		status TEXT NOT NULL DEFAULT 'queued',
		attempts INT NOT NULL DEFAULT 0,
		run_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_error TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS scrape_jobs_due_idx ON scrape_jobs (status, run_at)`,
	`CREATE INDEX IF NOT EXISTS shares_content_idx ON shares (content_id)`,
}

// EnsurePromoterSchema creates the tables if needed and adds columns introduced after the first release.
// Safe to call at startup.
func EnsurePromoterSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, ddl := range promoterTables {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	checks := []struct {
		table  string
		column string
		ddl    string
	}{
		{"content_items", "campaign_tag", "ALTER TABLE content_items ADD COLUMN campaign_tag TEXT"},
		{"users", "slack_id", "ALTER TABLE users ADD COLUMN slack_id TEXT"},
	}
	for _, c := range checks {
		exists, err := columnExists(ctx, db, c.table, c.column)
		if err != nil {
			return err
		}
		if !exists {
			if _, err := db.ExecContext(ctx, c.ddl); err != nil {
				return fmt.Errorf("adding column %s.%s failed: %w", c.table, c.column, err)
			}
		}
	}
	return ensureURLUnique(ctx, db)
}

// ensureURLUnique adds the url unique constraint to tables created before it existed.
func ensureURLUnique(ctx context.Context, db *sql.DB) error {
	row := db.QueryRowContext(ctx, `SELECT 1 FROM information_schema.table_constraints WHERE table_name=$1 AND constraint_type='UNIQUE' AND constraint_name=$2`, "content_items", "content_items_url_key")
	var one int
	if err := row.Scan(&one); err != nil {
		if err != sql.ErrNoRows {
			return err
		}
		if _, err := db.ExecContext(ctx, `ALTER TABLE content_items ADD CONSTRAINT content_items_url_key UNIQUE (url)`); err != nil {
			return fmt.Errorf("adding url unique constraint failed: %w", err)
		}
	}
	return nil
}

func columnExists(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	row := db.QueryRowContext(ctx, `SELECT 1 FROM information_schema.columns WHERE table_name=$1 AND column_name=$2`, table, column)
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
