package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"adminboard/pkg/utils"
)

// Dialect selects placeholder style and DDL for the SQL backend.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// SQL stores keys in a single kv_store table. It works on SQLite and Postgres.
type SQL struct {
	db      *sql.DB
	dialect Dialect
	clock   func() time.Time
}

func NewSQL(db *sql.DB, dialect Dialect) *SQL {
	return &SQL{db: db, dialect: dialect, clock: time.Now}
}

// Migrate creates the kv_store table when missing.
func (s *SQL) Migrate(ctx context.Context) error {
	ts := "TIMESTAMP"
	if s.dialect == DialectPostgres {
		ts = "TIMESTAMPTZ"
	}
	q := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS kv_store (
  store_key   TEXT PRIMARY KEY,
  store_value TEXT NOT NULL,
  updated_at  %s NOT NULL
)`, ts)
	_, err := s.db.ExecContext(ctx, q)
	return err
}

func (s *SQL) Get(ctx context.Context, key string) (string, error) {
	q := s.rebind(`SELECT store_value FROM kv_store WHERE store_key = ?`)
	var v string
	if err := s.db.QueryRowContext(ctx, q, key).Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return v, nil
}

func (s *SQL) Set(ctx context.Context, key, value string) error {
	q := s.rebind(`
INSERT INTO kv_store (store_key, store_value, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (store_key)
DO UPDATE SET store_value = excluded.store_value, updated_at = excluded.updated_at`)
	_, err := s.db.ExecContext(ctx, q, key, value, s.clock().UTC())
	return err
}

// Delete removes all keys in one transaction.
func (s *SQL) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	q := s.rebind(`DELETE FROM kv_store WHERE store_key = ?`)
	return utils.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		for _, k := range keys {
			if _, err := tx.ExecContext(ctx, q, k); err != nil {
				return err
			}
		}
		return nil
	})
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *SQL) rebind(q string) string {
	if s.dialect != DialectPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
