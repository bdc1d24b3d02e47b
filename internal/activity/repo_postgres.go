package activity

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PostgresRepo stores records in the activity_logs table.
//
// The table is insert-only; nothing in this package updates or deletes rows.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Migrate(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS activity_logs (
  id          TEXT PRIMARY KEY,
  type        TEXT NOT NULL,
  category    TEXT NOT NULL DEFAULT '',
  action      TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  occurred_at TIMESTAMPTZ NOT NULL,
  status      TEXT NOT NULL,
  severity    TEXT NOT NULL,
  user_name   TEXT NOT NULL DEFAULT '',
  ip          TEXT NOT NULL DEFAULT '',
  resource    TEXT NOT NULL DEFAULT '',
  duration_ms BIGINT,
  metadata    JSONB
);
CREATE INDEX IF NOT EXISTS activity_logs_occurred_at_idx ON activity_logs (occurred_at DESC);
`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

func (r *PostgresRepo) Append(ctx context.Context, rec Record) error {
	const q = `
INSERT INTO activity_logs (
  id, type, category, action, description, occurred_at, status, severity,
  user_name, ip, resource, duration_ms, metadata
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
)
`
	var meta any
	if len(rec.Metadata) > 0 {
		raw, err := json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("activity: encode metadata: %w", err)
		}
		meta = string(raw)
	}
	var dur any
	if rec.DurationMs != nil {
		dur = *rec.DurationMs
	}

	_, err := r.db.ExecContext(ctx, q,
		rec.ID,
		rec.Type,
		rec.Category,
		rec.Action,
		rec.Description,
		rec.Timestamp,
		rec.Status,
		rec.Severity,
		rec.User,
		rec.IP,
		rec.Resource,
		dur,
		meta,
	)
	return err
}

func (r *PostgresRepo) List(ctx context.Context) ([]Record, error) {
	const q = `
SELECT id, type, category, action, description, occurred_at, status, severity,
       user_name, ip, resource, duration_ms, metadata
FROM activity_logs
ORDER BY occurred_at DESC, id
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		var (
			rec  Record
			dur  sql.NullInt64
			meta []byte
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.Type,
			&rec.Category,
			&rec.Action,
			&rec.Description,
			&rec.Timestamp,
			&rec.Status,
			&rec.Severity,
			&rec.User,
			&rec.IP,
			&rec.Resource,
			&dur,
			&meta,
		); err != nil {
			return nil, err
		}
		if dur.Valid {
			v := dur.Int64
			rec.DurationMs = &v
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &rec.Metadata); err != nil {
				return nil, fmt.Errorf("activity: decode metadata for %s: %w", rec.ID, err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
