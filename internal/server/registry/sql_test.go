package registry

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const selectRe = `(?s)^SELECT\s+user_name,\s*licence_key,\s*validation_time\s+FROM\s+licences\s+ORDER\s+BY\s+user_name$`

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestQueryEntries(t *testing.T) {
	db, mock := newMock(t)

	rows := sqlmock.NewRows([]string{"user_name", "licence_key", "validation_time"}).
		AddRow("alice", nil, int64(5)).
		AddRow("bob", "pinned", int64(0))
	mock.ExpectQuery(selectRe).WillReturnRows(rows)

	got, err := queryEntries(context.Background(), db)
	require.NoError(t, err)

	want := []Entry{
		{UserID: "alice", LeaseDuration: 5 * time.Second},
		{UserID: "bob", Key: "pinned"},
	}
	assert.Empty(t, cmp.Diff(want, got))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryEntries_RejectsOverflowingValidationTime(t *testing.T) {
	db, mock := newMock(t)

	rows := sqlmock.NewRows([]string{"user_name", "licence_key", "validation_time"}).
		AddRow("alice", nil, int64(18446744074))
	mock.ExpectQuery(selectRe).WillReturnRows(rows)

	_, err := queryEntries(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "licence alice: validation time 18446744074 exceeds maximum")
}

func TestQueryEntries_DBError(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(selectRe).WillReturnError(errors.New("db down"))

	_, err := queryEntries(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: db down")
}

func TestLoadFromDB_CommitsReadTransaction(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(selectRe).WillReturnRows(
		sqlmock.NewRows([]string{"user_name", "licence_key", "validation_time"}).AddRow("alice", nil, int64(5)))
	mock.ExpectCommit()

	r, err := loadFromDB(context.Background(), db, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadFromDB_RollsBackOnScanError(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(selectRe).WillReturnRows(
		sqlmock.NewRows([]string{"user_name", "licence_key", "validation_time"}).AddRow("alice", nil, "not-a-number"))
	mock.ExpectRollback()

	_, err := loadFromDB(context.Background(), db, nil)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSource_SQLiteEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")
	src := NewSQLSource(DriverSQLite, path)

	r, err := src.Load(context.Background())
	require.NoError(t, err, "first load migrates an empty schema")
	assert.Zero(t, r.Len())

	db, err := sql.Open(DriverSQLite, path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`INSERT INTO licences (user_name, licence_key, validation_time) VALUES ('alice', NULL, 5), ('bob', 'k', 0)`)
	require.NoError(t, err)

	r, err = src.Load(context.Background())
	require.NoError(t, err)
	want := []Entry{
		{UserID: "alice", LeaseDuration: 5 * time.Second},
		{UserID: "bob", Key: "k"},
	}
	assert.Empty(t, cmp.Diff(want, r.Entries()))
}

func TestSQLSource_MigrationFailure(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })
	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("migration boom")
	}

	_, err := NewSQLSource(DriverSQLite, filepath.Join(t.TempDir(), "r.db")).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration boom")
}
