package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/drfdemo/userapi/internal/database"
	"github.com/drfdemo/userapi/internal/users"
)

// AppState holds the services the HTTP handlers depend on
type AppState struct {
	UserService    users.UserService
	HealthManager  *database.HealthManager
	Logger         *zap.Logger
	BasePath       string // e.g. "" or "/api"
	MaxRequestSize int64
}

// NewRouter builds the gin engine with every user route registered
func NewRouter(as *AppState) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(RequestID())
	router.Use(Recovery(as.Logger))
	router.Use(RequestLogger(as.Logger))
	router.Use(cors.Default())
	router.Use(BodyLimit(as.MaxRequestSize))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": MsgNotFound})
	})
	router.NoMethod(methodNotAllowed)

	router.GET("/health", healthCheck(as))

	base := router.Group(as.BasePath)
	{
		userRoutes := base.Group("/users")
		{
			userRoutes.GET("/", listUsers(as))         // List
			userRoutes.POST("/create", createUser(as)) // Create

			// "create" would otherwise be taken for an id by the routes below
			userRoutes.Match([]string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch}, "/create", methodNotAllowed)

			userRoutes.GET("/:id/", getUser(as))       // Retrieve
			userRoutes.PUT("/:id/", updateUser(as))    // Update (full replace)
			userRoutes.DELETE("/:id/", deleteUser(as)) // Delete
		}
	}

	return router
}

func methodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{
		"detail": fmt.Sprintf("Method %q not allowed.", c.Request.Method),
	})
}

func healthCheck(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		if as.HealthManager == nil {
			c.JSON(http.StatusOK, gin.H{
				"status":    "healthy",
				"timestamp": time.Now().Format(time.RFC3339),
			})
			return
		}

		results := as.HealthManager.RuntimeHealthCheck(c.Request.Context())
		services := gin.H{}
		healthy := true
		for name, err := range results {
			if err != nil {
				healthy = false
				services[name] = err.Error()
				continue
			}
			services[name] = "healthy"
		}

		status, code := "healthy", http.StatusOK
		if !healthy {
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"services":  services,
		})
	}
}
