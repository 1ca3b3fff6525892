package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/drfdemo/userapi/internal/users"
)

func TestPlan(t *testing.T) {
	assert.Empty(t, Plan(0))
	assert.Empty(t, Plan(-3))

	planned := Plan(DefaultCount)
	require.Len(t, planned, DefaultCount)
	assert.Equal(t, SampleUser{Name: "Alice Johnson", Age: 28}, planned[0])

	planned = Plan(12)
	require.Len(t, planned, 12)
	assert.Equal(t, SampleUsers[9], planned[9])
	assert.Equal(t, SampleUser{Name: "Sample User 11", Age: 30}, planned[10])
	assert.Equal(t, SampleUser{Name: "Sample User 12", Age: 31}, planned[11])
}

func TestRunCreatesAndSkipsExisting(t *testing.T) {
	ctx := context.Background()
	store := users.NewInMemoryStore()
	seeder := NewSeeder(store, zap.NewNop())

	result, err := seeder.Run(ctx, Options{Count: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Created)
	assert.Equal(t, 3, result.Total)
	assert.Empty(t, result.Skipped)

	result, err = seeder.Run(ctx, Options{Count: 4})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, []string{"Alice Johnson", "Bob Smith", "Charlie Brown"}, result.Skipped)
	assert.Equal(t, 4, result.Total)
}

func TestRunClear(t *testing.T) {
	ctx := context.Background()
	store := users.NewInMemoryStore()
	require.NoError(t, store.CreateUser(ctx, &users.User{Name: "Someone Else", Age: 60}))

	result, err := NewSeeder(store, zap.NewNop()).Run(ctx, Options{Count: 2, Clear: true})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Deleted)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 2, result.Total)

	list, err := store.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// ids keep increasing after a clear
	assert.Equal(t, int64(2), list[0].ID)
}
