package users

import (
	"context"
)

// UserStore defines the interface for user storage operations
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id int64) (*User, error)
	UpdateUser(ctx context.Context, user *User) error
	DeleteUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context) ([]*User, error)

	// read-only views used by the console
	RecentUsers(ctx context.Context) ([]*User, error)
	CountUsers(ctx context.Context) (int, error)
}

// UserService defines the interface for user service operations.
// Create and Update take the raw decoded request body.
type UserService interface {
	ListUsers(ctx context.Context) ([]*User, error)
	CreateUser(ctx context.Context, raw map[string]any) (*User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	UpdateUser(ctx context.Context, id int64, raw map[string]any) (*User, error)
	DeleteUser(ctx context.Context, id int64) error
}
