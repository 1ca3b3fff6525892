package users_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/drfdemo/userapi/internal/config"
	"github.com/drfdemo/userapi/internal/database"
	"github.com/drfdemo/userapi/internal/users"
)

func openSQLiteDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := database.Open(database.Options{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(context.Background(), db))
	return db
}

func openPostgresDB(t *testing.T) *bun.DB {
	t.Helper()

	dsn := os.Getenv("USERAPI_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("USERAPI_TEST_POSTGRES_DSN not set, skipping PostgreSQL store tests")
	}

	ctx := context.Background()
	db, err := database.Open(database.Options{Driver: config.DriverPostgres, DSN: dsn, MaxConnections: 4})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	if err := db.PingContext(ctx); err != nil {
		t.Skipf("PostgreSQL not reachable, skipping: %v", err)
	}
	_, err = db.NewDropTable().Model((*users.UserSchema)(nil)).IfExists().Exec(ctx)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(ctx, db))
	return db
}

func TestSQLStore(t *testing.T) {
	backends := map[string]func(*testing.T) *bun.DB{
		"sqlite":   openSQLiteDB,
		"postgres": openPostgresDB,
	}

	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			runStoreSuite(t, users.NewSQLStore(open(t)))
		})
	}
}

func TestInMemoryStoreSuite(t *testing.T) {
	runStoreSuite(t, users.NewInMemoryStore())
}

// runStoreSuite exercises behavior every UserStore must share
func runStoreSuite(t *testing.T, store users.UserStore) {
	ctx := context.Background()

	t.Run("CreateAssignsIDs", func(t *testing.T) {
		alice := &users.User{Name: "Alice Johnson", Age: 28}
		require.NoError(t, store.CreateUser(ctx, alice))
		assert.Equal(t, int64(1), alice.ID)

		bob := &users.User{Name: "Bob Smith", Age: 35}
		require.NoError(t, store.CreateUser(ctx, bob))
		assert.Equal(t, int64(2), bob.ID)

		charlie := &users.User{Name: "Charlie Brown", Age: 22}
		require.NoError(t, store.CreateUser(ctx, charlie))
		assert.Equal(t, int64(3), charlie.ID)
	})

	t.Run("GetReturnsStoredFields", func(t *testing.T) {
		got, err := store.GetUser(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, &users.User{ID: 1, Name: "Alice Johnson", Age: 28}, got)

		_, err = store.GetUser(ctx, 999)
		assert.True(t, users.IsNotFound(err))
	})

	t.Run("UpdateReplacesNameAndAge", func(t *testing.T) {
		require.NoError(t, store.UpdateUser(ctx, &users.User{ID: 1, Name: "Alice Johnson", Age: 29}))

		got, err := store.GetUser(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 29, got.Age)

		err = store.UpdateUser(ctx, &users.User{ID: 999, Name: "Nobody", Age: 1})
		assert.True(t, users.IsNotFound(err))
	})

	t.Run("RecentUsersNewestFirst", func(t *testing.T) {
		recent, err := store.RecentUsers(ctx)
		require.NoError(t, err)
		require.Len(t, recent, 3)
		assert.Equal(t, []int64{3, 2, 1}, []int64{recent[0].ID, recent[1].ID, recent[2].ID})
	})

	t.Run("DeleteRemovesOnlyThatUser", func(t *testing.T) {
		require.NoError(t, store.DeleteUser(ctx, 2))
		assert.True(t, users.IsNotFound(store.DeleteUser(ctx, 2)))

		list, err := store.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, int64(1), list[0].ID)
		assert.Equal(t, int64(3), list[1].ID)

		count, err := store.CountUsers(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("IDsAreNotReused", func(t *testing.T) {
		require.NoError(t, store.DeleteUser(ctx, 3))

		dana := &users.User{Name: "Diana Prince", Age: 30}
		require.NoError(t, store.CreateUser(ctx, dana))
		assert.Equal(t, int64(4), dana.ID)
	})
}
