package kvstore

import (
	"context"
	"database/sql"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"adminboard/pkg/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestSQL_GetMissingKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewSQL(db, DialectPostgres)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT store_value FROM kv_store WHERE store_key = $1`)).
		WithArgs("auth_user").
		WillReturnError(sql.ErrNoRows)

	_, err = s.Get(context.Background(), "auth_user")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQL_SetUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Unix(1700000000, 0).UTC()
	s := NewSQL(db, DialectSQLite)
	s.clock = func() time.Time { return now }

	mock.ExpectExec(`INSERT INTO kv_store .* ON CONFLICT \(store_key\)`).
		WithArgs("auth_token", "tok", now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.Set(context.Background(), "auth_token", "tok"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQL_DeleteRunsInOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewSQL(db, DialectPostgres)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM kv_store WHERE store_key = $1`)).
		WithArgs("auth_user").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM kv_store WHERE store_key = $1`)).
		WithArgs("auth_token").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, s.Delete(context.Background(), "auth_user", "auth_token"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQL_Rebind(t *testing.T) {
	pg := NewSQL(nil, DialectPostgres)
	require.Equal(t, "a = $1 AND b = $2", pg.rebind("a = ? AND b = ?"))

	lite := NewSQL(nil, DialectSQLite)
	require.Equal(t, "a = ?", lite.rebind("a = ?"))
}

func TestSQL_SQLiteContract(t *testing.T) {
	db, err := utils.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		if strings.Contains(err.Error(), "CGO_ENABLED") {
			t.Skip("sqlite3 driver needs cgo")
		}
		require.NoError(t, err)
	}
	defer db.Close()

	s := NewSQL(db, DialectSQLite)
	require.NoError(t, s.Migrate(context.Background()))
	exerciseStore(t, s)
}
