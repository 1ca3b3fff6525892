package users

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*UserServiceImpl, *InMemoryStore) {
	store := NewInMemoryStore()
	return NewUserService(store), store
}

func TestCreateThenRetrieveReturnsSameRecord(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	created, err := service.CreateUser(ctx, map[string]any{"name": "Alice", "age": float64(28)})
	require.NoError(t, err)
	assert.Equal(t, &User{ID: 1, Name: "Alice", Age: 28}, created)

	got, err := service.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestInvalidCreateWritesNothing(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService()

	_, err := service.CreateUser(ctx, map[string]any{"name": "", "age": "not_a_number"})
	require.Error(t, err)
	_, ok := AsValidationError(err)
	assert.True(t, ok)

	count, err := store.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestUpdateReplacesFields(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	created, err := service.CreateUser(ctx, map[string]any{"name": "Alice", "age": 28})
	require.NoError(t, err)

	updated, err := service.UpdateUser(ctx, created.ID, map[string]any{"name": "Alice", "age": 29})
	require.NoError(t, err)
	assert.Equal(t, &User{ID: created.ID, Name: "Alice", Age: 29}, updated)

	got, err := service.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 29, got.Age)
}

func TestUpdateMissingUserIsNotFoundWhateverTheBody(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	for _, raw := range []map[string]any{
		{"name": "Valid", "age": 1},
		{"name": "", "age": "bad"},
		{},
	} {
		_, err := service.UpdateUser(ctx, 99, raw)
		assert.True(t, IsNotFound(err), "body %v: got %v", raw, err)
	}
}

func TestInvalidUpdateLeavesRecordUnchanged(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	created, err := service.CreateUser(ctx, map[string]any{"name": "Alice", "age": 28})
	require.NoError(t, err)

	_, err = service.UpdateUser(ctx, created.ID, map[string]any{"name": "Alice"})
	validationErr, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, FieldErrors{"age": {MsgRequired}}, validationErr.Fields)

	got, err := service.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestDeleteThenRetrieveIsNotFound(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	created, err := service.CreateUser(ctx, map[string]any{"name": "Alice", "age": 28})
	require.NoError(t, err)

	require.NoError(t, service.DeleteUser(ctx, created.ID))

	_, err = service.GetUser(ctx, created.ID)
	assert.True(t, IsNotFound(err))
	assert.True(t, IsNotFound(service.DeleteUser(ctx, created.ID)))
}

func TestListAfterDeleteKeepsOrder(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	for _, name := range []string{"One", "Two", "Three"} {
		_, err := service.CreateUser(ctx, map[string]any{"name": name, "age": 1})
		require.NoError(t, err)
	}
	require.NoError(t, service.DeleteUser(ctx, 2))

	list, err := service.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(1), list[0].ID)
	assert.Equal(t, int64(3), list[1].ID)
}

type failingStore struct {
	*InMemoryStore
	err error
}

func (f *failingStore) CreateUser(ctx context.Context, user *User) error {
	return f.err
}

func TestCreateWrapsStorageFailures(t *testing.T) {
	storageErr := NewStorageQueryError("create", errors.New("disk full"))
	service := NewUserService(&failingStore{InMemoryStore: NewInMemoryStore(), err: storageErr})

	_, err := service.CreateUser(context.Background(), map[string]any{"name": "Alice", "age": 28})
	require.Error(t, err)
	assert.ErrorIs(t, err, storageErr)
	assert.False(t, IsNotFound(err))
}
