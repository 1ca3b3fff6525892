package database

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/drfdemo/userapi/internal/users"
)

// UserIndexes lists the secondary indexes on the users table
var UserIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_users_name ON users (name)`,
	`CREATE INDEX IF NOT EXISTS idx_users_age ON users (age)`,
}

// CreateTables creates all necessary tables if they do not exist yet
func CreateTables(ctx context.Context, db *bun.DB) error {
	models := []interface{}{
		(*users.UserSchema)(nil),
	}

	for _, model := range models {
		_, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table for model %T: %w", model, err)
		}
	}

	return nil
}

// CreateIndexes creates all secondary indexes
func CreateIndexes(ctx context.Context, db *bun.DB) error {
	for _, indexSQL := range UserIndexes {
		_, err := db.ExecContext(ctx, indexSQL)
		if err != nil {
			return fmt.Errorf("failed to create index with SQL %q: %w", indexSQL, err)
		}
	}

	return nil
}

// Migrate creates tables and indexes. Safe to run repeatedly.
func Migrate(ctx context.Context, db *bun.DB) error {
	if err := CreateTables(ctx, db); err != nil {
		return err
	}
	return CreateIndexes(ctx, db)
}
