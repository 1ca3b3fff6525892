package console

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/drfdemo/userapi/internal/database"
	"github.com/drfdemo/userapi/internal/users"
)

//go:embed static/*
var staticFiles embed.FS

//go:embed templates/*
var templateFiles embed.FS

var consoleTemplate = template.Must(template.ParseFS(templateFiles, "templates/console.html"))

// ConsoleService serves the read-only user administration pages
type ConsoleService struct {
	UserStore     users.UserStore
	HealthManager *database.HealthManager
	Logger        *zap.Logger
	Title         string
}

// NewConsoleService creates a new console service
func NewConsoleService(
	userStore users.UserStore,
	healthManager *database.HealthManager,
	logger *zap.Logger,
	title string,
) *ConsoleService {
	return &ConsoleService{
		UserStore:     userStore,
		HealthManager: healthManager,
		Logger:        logger,
		Title:         title,
	}
}

// SetupRoutes sets up the console routes
func (cs *ConsoleService) SetupRoutes(router *gin.Engine) {
	// the embedded tree is rooted at "static/"
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		cs.Logger.Error("Failed to create static sub-filesystem", zap.Error(err))
		return
	}
	router.StaticFS("/console/static", http.FS(staticFS))

	consoleGroup := router.Group("/console")
	{
		consoleGroup.GET("/", cs.serveConsole)
		consoleGroup.GET("/api/users", cs.getUsers)
		consoleGroup.GET("/api/health", cs.getHealth)
	}
}

// listing is what both the page and the JSON endpoint render
type listing struct {
	Title string
	Users []users.Representation
	Count int
}

func (cs *ConsoleService) buildListing(c *gin.Context) (*listing, error) {
	recent, err := cs.UserStore.RecentUsers(c.Request.Context())
	if err != nil {
		return nil, err
	}
	return &listing{
		Title: cs.Title,
		Users: users.SerializeMany(recent),
		Count: len(recent),
	}, nil
}

// serveConsole serves the main console page
func (cs *ConsoleService) serveConsole(c *gin.Context) {
	data, err := cs.buildListing(c)
	if err != nil {
		cs.Logger.Error("Failed to list users for console", zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to list users")
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := consoleTemplate.Execute(c.Writer, data); err != nil {
		cs.Logger.Error("Failed to execute console template", zap.Error(err))
	}
}

// getUsers returns the user listing as JSON
func (cs *ConsoleService) getUsers(c *gin.Context) {
	data, err := cs.buildListing(c)
	if err != nil {
		cs.Logger.Error("Failed to list users for console", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users": data.Users,
		"count": data.Count,
	})
}

// getHealth returns system health information
func (cs *ConsoleService) getHealth(c *gin.Context) {
	health := gin.H{
		"status":  "healthy",
		"console": true,
	}

	if cs.HealthManager != nil {
		for name, err := range cs.HealthManager.RuntimeHealthCheck(c.Request.Context()) {
			if err != nil {
				health["status"] = "degraded"
				health[name] = err.Error()
				continue
			}
			health[name] = "healthy"
		}
	}

	c.JSON(http.StatusOK, gin.H{"health": health})
}
