package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/drfdemo/userapi/internal/config"
)

// Options describes how to reach the record store
type Options struct {
	Driver         string // config.DriverPostgres or config.DriverSQLite
	DSN            string // PostgreSQL URL or SQLite file path
	MaxConnections int
}

// OptionsFromConfig builds Options from the loaded configuration
func OptionsFromConfig() Options {
	dbConfig := config.Database()
	opts := Options{
		Driver:         dbConfig.Driver,
		MaxConnections: dbConfig.MaxOpenConnections,
	}
	switch dbConfig.Driver {
	case config.DriverPostgres:
		opts.DSN = config.Postgres().DSN()
	case config.DriverSQLite:
		opts.DSN = config.SQLite().Path
	}
	return opts
}

// Open initializes a bun database for the configured driver
func Open(opts Options) (*bun.DB, error) {
	switch opts.Driver {
	case config.DriverPostgres:
		return openPostgres(opts.DSN, opts.MaxConnections), nil
	case config.DriverSQLite:
		return openSQLite(opts.DSN)
	default:
		return nil, fmt.Errorf("driver %q has no SQL database", opts.Driver)
	}
}

func openPostgres(databaseURL string, maxConnections int) *bun.DB {
	if maxConnections <= 0 {
		maxConnections = 10
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(databaseURL)))
	sqldb.SetMaxOpenConns(maxConnections)
	sqldb.SetMaxIdleConns(maxConnections / 2)
	sqldb.SetConnMaxLifetime(time.Hour)

	return bun.NewDB(sqldb, pgdialect.New())
}

func openSQLite(path string) (*bun.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	sqldb, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite serializes writers anyway
	sqldb.SetMaxOpenConns(1)

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}
