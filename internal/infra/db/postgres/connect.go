package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS workspace_profiles (
  owner        TEXT PRIMARY KEY,
  profile_json JSONB NOT NULL,
  updated_at   TIMESTAMPTZ NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS workspace_clients (
  id           UUID PRIMARY KEY,
  owner        TEXT NOT NULL,
  company_key  TEXT NOT NULL,
  profile_json JSONB NOT NULL,
  updated_at   TIMESTAMPTZ NOT NULL,
  UNIQUE (owner, company_key)
)`,
	`CREATE TABLE IF NOT EXISTS workspace_history (
  id           UUID PRIMARY KEY,
  owner        TEXT NOT NULL,
  item_type    TEXT NOT NULL,
  client_name  TEXT NOT NULL,
  payload_json JSONB NOT NULL,
  created_at   TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_workspace_history_owner ON workspace_history (owner, created_at DESC)`,
}

func Migrate(ctx context.Context, db *sql.DB) error {
	for _, q := range schema {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// dashToEmpty undoes stringOrDash on read.
func dashToEmpty(s string) string {
	if s == "-" {
		return ""
	}
	return s
}
