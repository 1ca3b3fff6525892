package users

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/uptrace/bun"
)

// UserSchema represents the users table schema
type UserSchema struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name,type:varchar(100),notnull" json:"name"`
	Age  int    `bun:"age,type:integer,notnull" json:"age"`
}

// SQLStore implements UserStore on top of bun. It works with any dialect the
// database package opens (PostgreSQL or SQLite).
type SQLStore struct {
	db *bun.DB
}

// NewSQLStore creates a new SQL-backed user store
func NewSQLStore(db *bun.DB) *SQLStore {
	return &SQLStore{db: db}
}

// CreateUser inserts the user and sets the ID assigned by the database
func (s *SQLStore) CreateUser(ctx context.Context, user *User) error {
	row := UserToUserSchema(user)
	row.ID = 0

	_, err := s.db.NewInsert().
		Model(&row).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if isConstraintViolation(err) {
			return NewStorageConstraintError("create", err)
		}
		return NewStorageQueryError("create", err)
	}

	*user = *UserSchemaToUser(row)
	return nil
}

// GetUser retrieves a user by ID
func (s *SQLStore) GetUser(ctx context.Context, id int64) (*User, error) {
	row := new(UserSchema)
	err := s.db.NewSelect().Model(row).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewUserNotFoundError(id)
		}
		return nil, NewStorageQueryError("get", err)
	}
	return UserSchemaToUser(*row), nil
}

// UpdateUser overwrites name and age of the row with the user's ID
func (s *SQLStore) UpdateUser(ctx context.Context, user *User) error {
	row := UserToUserSchema(user)
	result, err := s.db.NewUpdate().
		Model(&row).
		Column("name", "age").
		WherePK().
		Exec(ctx)
	if err != nil {
		if isConstraintViolation(err) {
			return NewStorageConstraintError("update", err)
		}
		return NewStorageQueryError("update", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return NewStorageQueryError("update", err)
	}
	if rowsAffected == 0 {
		return NewUserNotFoundError(user.ID)
	}
	return nil
}

// DeleteUser removes a user row
func (s *SQLStore) DeleteUser(ctx context.Context, id int64) error {
	result, err := s.db.NewDelete().
		Model((*UserSchema)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return NewStorageQueryError("delete", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return NewStorageQueryError("delete", err)
	}
	if rowsAffected == 0 {
		return NewUserNotFoundError(id)
	}
	return nil
}

// ListUsers returns all users ordered by ID
func (s *SQLStore) ListUsers(ctx context.Context) ([]*User, error) {
	var rows []UserSchema
	err := s.db.NewSelect().Model(&rows).Order("id ASC").Scan(ctx)
	if err != nil {
		return nil, NewStorageQueryError("list", err)
	}
	return schemasToUsers(rows), nil
}

// RecentUsers returns all users, newest first
func (s *SQLStore) RecentUsers(ctx context.Context) ([]*User, error) {
	var rows []UserSchema
	err := s.db.NewSelect().Model(&rows).Order("id DESC").Scan(ctx)
	if err != nil {
		return nil, NewStorageQueryError("recent", err)
	}
	return schemasToUsers(rows), nil
}

// CountUsers returns the number of stored users
func (s *SQLStore) CountUsers(ctx context.Context) (int, error) {
	count, err := s.db.NewSelect().Model((*UserSchema)(nil)).Count(ctx)
	if err != nil {
		return 0, NewStorageQueryError("count", err)
	}
	return count, nil
}

func isConstraintViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "violates") ||
		strings.Contains(msg, "constraint failed")
}

// Helper conversion functions
func UserSchemaToUser(schema UserSchema) *User {
	return &User{
		ID:   schema.ID,
		Name: schema.Name,
		Age:  schema.Age,
	}
}

func UserToUserSchema(user *User) UserSchema {
	return UserSchema{
		ID:   user.ID,
		Name: user.Name,
		Age:  user.Age,
	}
}

func schemasToUsers(rows []UserSchema) []*User {
	out := make([]*User, 0, len(rows))
	for _, row := range rows {
		out = append(out, UserSchemaToUser(row))
	}
	return out
}
