package console

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/drfdemo/userapi/internal/database"
	"github.com/drfdemo/userapi/internal/users"
)

func setupConsole(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := users.NewInMemoryStore()
	ctx := context.Background()
	for _, u := range []*users.User{
		{Name: "Alice Johnson", Age: 28},
		{Name: "Bob Smith", Age: 35},
		{Name: "Malice <script>", Age: 35},
	} {
		require.NoError(t, store.CreateUser(ctx, u))
	}

	healthManager := database.NewHealthManager(zap.NewNop())
	healthManager.AddChecker(database.NewStoreHealthChecker(store))

	router := gin.New()
	NewConsoleService(store, healthManager, zap.NewNop(), "User Administration").SetupRoutes(router)
	return router
}

type usersResponse struct {
	Users []users.Representation `json:"users"`
	Count int                    `json:"count"`
}

func getJSON(t *testing.T, router http.Handler, path string, out any) int {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil && w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w.Code
}

func TestConsoleUsersNewestFirst(t *testing.T) {
	router := setupConsole(t)

	var resp usersResponse
	require.Equal(t, http.StatusOK, getJSON(t, router, "/console/api/users", &resp))
	assert.Equal(t, 3, resp.Count)
	require.Len(t, resp.Users, 3)
	assert.Equal(t, int64(3), resp.Users[0].ID)
	assert.Equal(t, int64(1), resp.Users[2].ID)
}

func TestConsolePageEscapesNames(t *testing.T) {
	router := setupConsole(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/console/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	body := w.Body.String()
	assert.Contains(t, body, "User Administration")
	assert.Contains(t, body, "3 users, newest first")
	assert.Contains(t, body, "Malice &lt;script&gt;")
	assert.NotContains(t, body, "Malice <script>")
}

func TestConsoleIsReadOnly(t *testing.T) {
	router := setupConsole(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/console/api/users", nil))
	assert.NotEqual(t, http.StatusOK, w.Code)
}

func TestConsoleHealth(t *testing.T) {
	router := setupConsole(t)

	var resp struct {
		Health map[string]any `json:"health"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, router, "/console/api/health", &resp))
	assert.Equal(t, "healthy", resp.Health["status"])
	assert.Equal(t, "healthy", resp.Health["user_store"])
}

func TestConsoleStaticAssets(t *testing.T) {
	router := setupConsole(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/console/static/console.css", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
