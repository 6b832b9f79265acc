package mysql

import (
	"context"
	"database/sql"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS workspace_profiles (
  owner        VARCHAR(100) NOT NULL PRIMARY KEY,
  profile_json JSON NOT NULL,
  updated_at   DATETIME(6) NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS workspace_clients (
  id           CHAR(36) NOT NULL PRIMARY KEY,
  owner        VARCHAR(100) NOT NULL,
  company_key  VARCHAR(255) NOT NULL,
  profile_json JSON NOT NULL,
  updated_at   DATETIME(6) NOT NULL,
  UNIQUE KEY uq_owner_company (owner, company_key)
)`,
	`CREATE TABLE IF NOT EXISTS workspace_history (
  id           CHAR(36) NOT NULL PRIMARY KEY,
  owner        VARCHAR(100) NOT NULL,
  item_type    VARCHAR(16) NOT NULL,
  client_name  VARCHAR(255) NOT NULL,
  payload_json JSON NOT NULL,
  created_at   DATETIME(6) NOT NULL,
  KEY idx_owner_created (owner, created_at)
)`,
}

// Migrate creates the workspace tables when missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, q := range schema {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}
