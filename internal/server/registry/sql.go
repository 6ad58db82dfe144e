package registry

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/mls/internal/dbx"
	"github.com/dmitrijs2005/mls/internal/server/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// database/sql driver names for the supported SQL registries.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

const selectLicences = `SELECT user_name, licence_key, validation_time FROM licences ORDER BY user_name`

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// SQLSource reads the registry from the licences table. The schema is
// migrated with goose before the first read.
type SQLSource struct {
	driver string
	dsn    string
}

func NewSQLSource(driver, dsn string) *SQLSource {
	return &SQLSource{driver: driver, dsn: dsn}
}

func (s *SQLSource) Load(ctx context.Context) (*Registry, error) {
	db, err := sql.Open(s.driver, s.dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}

	if err := s.migrate(ctx, db); err != nil {
		return nil, fmt.Errorf("db migrate: %w", err)
	}

	return loadFromDB(ctx, db, &sql.TxOptions{ReadOnly: s.driver == DriverPostgres})
}

func (s *SQLSource) migrate(ctx context.Context, db *sql.DB) error {
	dialect := "postgres"
	if s.driver == DriverSQLite {
		dialect = "sqlite3"
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func loadFromDB(ctx context.Context, db *sql.DB, opts *sql.TxOptions) (*Registry, error) {
	var entries []Entry
	err := dbx.WithTx(ctx, db, opts, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		entries, err = queryEntries(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return New(entries)
}

func queryEntries(ctx context.Context, db dbx.DBTX) ([]Entry, error) {
	rows, err := db.QueryContext(ctx, selectLicences)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			user    string
			key     sql.NullString
			seconds int64
		)
		if err := rows.Scan(&user, &key, &seconds); err != nil {
			return nil, fmt.Errorf("db scan: %w", err)
		}
		d, err := DurationFromSeconds(seconds)
		if err != nil {
			return nil, fmt.Errorf("licence %s: %w", user, err)
		}
		entries = append(entries, Entry{
			UserID:        user,
			Key:           key.String,
			LeaseDuration: d,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db rows: %w", err)
	}
	return entries, nil
}
