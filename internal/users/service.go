package users

import (
	"context"
	"fmt"
)

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	store UserStore
}

// NewUserService creates a new user service instance
func NewUserService(store UserStore) *UserServiceImpl {
	return &UserServiceImpl{
		store: store,
	}
}

// ListUsers returns every user in store order
func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]*User, error) {
	return s.store.ListUsers(ctx)
}

// CreateUser validates the raw body and stores a new user. Nothing is written
// when validation fails.
func (s *UserServiceImpl) CreateUser(ctx context.Context, raw map[string]any) (*User, error) {
	input, err := Validate(raw)
	if err != nil {
		return nil, err
	}

	user := input.ToUser()
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetUser retrieves a user by id
func (s *UserServiceImpl) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.store.GetUser(ctx, id)
}

// UpdateUser replaces name and age of an existing user. A missing user is
// reported before the body is looked at.
func (s *UserServiceImpl) UpdateUser(ctx context.Context, id int64, raw map[string]any) (*User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	input, err := Validate(raw)
	if err != nil {
		return nil, err
	}

	input.Apply(user)
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// DeleteUser removes a user permanently
func (s *UserServiceImpl) DeleteUser(ctx context.Context, id int64) error {
	return s.store.DeleteUser(ctx, id)
}
