package users

import (
	"context"
	"sort"
	"sync"
)

// InMemoryStore implements UserStore interface with in-memory storage.
// IDs are never reused within the lifetime of the store.
type InMemoryStore struct {
	mu     sync.RWMutex
	users  map[int64]User
	nextID int64
}

// NewInMemoryStore creates a new in-memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		users:  make(map[int64]User),
		nextID: 1,
	}
}

// CreateUser stores the user under a fresh ID
func (s *InMemoryStore) CreateUser(ctx context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.ID = s.nextID
	s.nextID++
	s.users[user.ID] = *user
	return nil
}

// GetUser returns a copy of the stored user
func (s *InMemoryStore) GetUser(ctx context.Context, id int64) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[id]
	if !exists {
		return nil, NewUserNotFoundError(id)
	}
	return &user, nil
}

// UpdateUser replaces the stored user with the same ID
func (s *InMemoryStore) UpdateUser(ctx context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.ID]; !exists {
		return NewUserNotFoundError(user.ID)
	}
	s.users[user.ID] = *user
	return nil
}

// DeleteUser removes a user
func (s *InMemoryStore) DeleteUser(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[id]; !exists {
		return NewUserNotFoundError(id)
	}
	delete(s.users, id)
	return nil
}

// ListUsers returns all users ordered by ID
func (s *InMemoryStore) ListUsers(ctx context.Context) ([]*User, error) {
	return s.sorted(func(a, b int64) bool { return a < b }), nil
}

// RecentUsers returns all users, newest first
func (s *InMemoryStore) RecentUsers(ctx context.Context) ([]*User, error) {
	return s.sorted(func(a, b int64) bool { return a > b }), nil
}

func (s *InMemoryStore) sorted(less func(a, b int64) bool) []*User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*User, 0, len(s.users))
	for _, user := range s.users {
		u := user
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i].ID, out[j].ID) })
	return out
}

// CountUsers returns the number of stored users
func (s *InMemoryStore) CountUsers(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}
