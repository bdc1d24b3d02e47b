package activity

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepo_Append(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepo(db)
	rec := Record{
		ID: "r1", Type: TypeAPI, Category: "API", Action: "API Request", Timestamp: testNow,
		Status: StatusSuccess, Severity: SeverityLow, User: "u", IP: "1.2.3.4", Resource: "/api",
		DurationMs: ms(12), Metadata: map[string]any{"k": "v"},
	}

	mock.ExpectExec(`INSERT INTO activity_logs`).
		WithArgs("r1", TypeAPI, "API", "API Request", "", testNow, StatusSuccess, SeverityLow,
			"u", "1.2.3.4", "/api", int64(12), `{"k":"v"}`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Append(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cols := []string{"id", "type", "category", "action", "description", "occurred_at", "status", "severity",
		"user_name", "ip", "resource", "duration_ms", "metadata"}
	rows := sqlmock.NewRows(cols).
		AddRow("r2", "auth", "Authentication", "User Login", "", testNow, "success", "low", "a@b.com", "", "/session", nil, nil).
		AddRow("r1", "api", "API", "API Request", "", testNow, "error", "high", "", "", "/api", int64(40), []byte(`{"k":"v"}`))

	mock.ExpectQuery(regexp.QuoteMeta(`FROM activity_logs`)).WillReturnRows(rows)

	out, err := NewPostgresRepo(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, TypeAuth, out[0].Type)
	require.Nil(t, out[0].DurationMs)
	require.Nil(t, out[0].Metadata)
	require.Equal(t, int64(40), *out[1].DurationMs)
	require.Equal(t, "v", out[1].Metadata["k"])
	require.NoError(t, mock.ExpectationsWereMet())
}
