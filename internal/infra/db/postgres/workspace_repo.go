package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/teampulse-turbo/internal/domain/negotiation"
	"github.com/bryanwahyu/teampulse-turbo/internal/domain/workspace"
)

type WorkspaceRepository struct {
	db *sql.DB
}

func NewWorkspaceRepository(db *sql.DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

func (r *WorkspaceRepository) SaveProfile(ctx context.Context, owner string, p negotiation.Profile) error {
	const q = `
INSERT INTO workspace_profiles (owner, profile_json, updated_at)
VALUES ($1,$2,$3)
ON CONFLICT (owner) DO UPDATE SET
  profile_json=EXCLUDED.profile_json,
  updated_at=EXCLUDED.updated_at;
`
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q, owner, data, time.Now().UTC())
	return err
}

func (r *WorkspaceRepository) GetProfile(ctx context.Context, owner string) (negotiation.Profile, error) {
	var p negotiation.Profile
	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT profile_json FROM workspace_profiles WHERE owner=$1`, owner).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return p, nil
	}
	if err != nil {
		return p, err
	}
	return p, json.Unmarshal(data, &p)
}

func (r *WorkspaceRepository) UpsertClient(ctx context.Context, c workspace.Client) (workspace.Client, error) {
	const q = `
INSERT INTO workspace_clients (id, owner, company_key, profile_json, updated_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (owner, company_key) DO UPDATE SET
  profile_json=EXCLUDED.profile_json,
  updated_at=EXCLUDED.updated_at
RETURNING id;
`
	data, err := json.Marshal(c.Profile)
	if err != nil {
		return c, err
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now().UTC()
	}
	err = r.db.QueryRowContext(ctx, q, c.ID, c.Owner, c.Profile.Key(), data, c.UpdatedAt).Scan(&c.ID)
	return c, err
}

func (r *WorkspaceRepository) ListClients(ctx context.Context, owner string) ([]workspace.Client, error) {
	const q = `
SELECT id, profile_json, updated_at
FROM workspace_clients
WHERE owner=$1
ORDER BY updated_at DESC, id DESC;
`
	rows, err := r.db.QueryContext(ctx, q, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []workspace.Client{}
	for rows.Next() {
		c := workspace.Client{Owner: owner}
		var data []byte
		if err := rows.Scan(&c.ID, &data, &c.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &c.Profile); err != nil {
			return nil, fmt.Errorf("client %s: %w", c.ID, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *WorkspaceRepository) DeleteClient(ctx context.Context, owner, id string) error {
	// id column is UUID, anything else can not match
	if _, err := uuid.Parse(id); err != nil {
		return workspace.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM workspace_clients WHERE owner=$1 AND id=$2`, owner, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return workspace.ErrNotFound
	}
	return nil
}

func (r *WorkspaceRepository) AddHistory(ctx context.Context, item workspace.HistoryItem) error {
	const ins = `
INSERT INTO workspace_history (id, owner, item_type, client_name, payload_json, created_at)
VALUES ($1,$2,$3,$4,$5,$6);
`
	const trim = `
DELETE FROM workspace_history
WHERE owner=$1 AND id NOT IN (
  SELECT id FROM workspace_history WHERE owner=$1 ORDER BY created_at DESC, id DESC LIMIT $2
);
`
	payload := []byte(item.Payload)
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	createdAt := item.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, ins, item.ID, item.Owner, string(item.Type), stringOrDash(item.ClientName), payload, createdAt); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, trim, item.Owner, workspace.MaxHistory); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *WorkspaceRepository) ListHistory(ctx context.Context, owner string) ([]workspace.HistoryItem, error) {
	const q = `
SELECT id, item_type, client_name, payload_json, created_at
FROM workspace_history
WHERE owner=$1
ORDER BY created_at DESC, id DESC
LIMIT $2;
`
	rows, err := r.db.QueryContext(ctx, q, owner, workspace.MaxHistory)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []workspace.HistoryItem{}
	for rows.Next() {
		it := workspace.HistoryItem{Owner: owner}
		var typ string
		var payload []byte
		if err := rows.Scan(&it.ID, &typ, &it.ClientName, &payload, &it.CreatedAt); err != nil {
			return nil, err
		}
		it.Type = workspace.ItemType(typ)
		it.ClientName = dashToEmpty(it.ClientName)
		it.Payload = json.RawMessage(payload)
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *WorkspaceRepository) ClearHistory(ctx context.Context, owner string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM workspace_history WHERE owner=$1`, owner)
	return err
}
