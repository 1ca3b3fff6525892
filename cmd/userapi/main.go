package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/drfdemo/userapi/internal/api"
	"github.com/drfdemo/userapi/internal/config"
	"github.com/drfdemo/userapi/internal/console"
	"github.com/drfdemo/userapi/internal/database"
	"github.com/drfdemo/userapi/internal/seed"
	"github.com/drfdemo/userapi/internal/users"
)

var flagConfig string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "userapi",
	Short:         "User records CRUD service",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagConfig != "" {
			os.Setenv("USERAPI_CONFIG_FILE", flagConfig)
		}
		config.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to the YAML config file (default: userapi.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the users table and indexes if missing",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

var (
	flagSeedCount int
	flagSeedClear bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create sample user data for testing and demonstration",
	Args:  cobra.NoArgs,
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&flagSeedCount, "count", seed.DefaultCount, "number of sample users to create")
	seedCmd.Flags().BoolVar(&flagSeedClear, "clear", false, "delete all existing users before creating sample data")
}

// storeHandle is an opened record store plus whatever must be closed with it
type storeHandle struct {
	Store users.UserStore
	DB    *bun.DB // nil for the memory driver
}

func (h *storeHandle) Close() error {
	if h.DB == nil {
		return nil
	}
	return h.DB.Close()
}

func openStore(ctx context.Context, logger *zap.Logger, migrate bool) (*storeHandle, error) {
	dbConfig := config.Database()
	if dbConfig.Driver == config.DriverMemory {
		logger.Warn("Using in-memory user store; data is lost on exit")
		return &storeHandle{Store: users.NewInMemoryStore()}, nil
	}

	logger.Info("Database configuration", zap.String("driver", dbConfig.Driver))

	db, err := database.Open(database.OptionsFromConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if migrate {
		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return &storeHandle{Store: users.NewSQLStore(db), DB: db}, nil
}

func newHealthManager(logger *zap.Logger, handle *storeHandle) *database.HealthManager {
	healthManager := database.NewHealthManager(logger)
	if handle.DB != nil {
		healthManager.AddChecker(database.NewDatabaseHealthChecker(handle.DB))
	}
	healthManager.AddChecker(database.NewStoreHealthChecker(handle.Store))
	return healthManager
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := initLogger()
	defer logger.Sync()

	ctx := context.Background()
	handle, err := openStore(ctx, logger, config.Database().AutoMigrate)
	if err != nil {
		return err
	}
	defer handle.Close()

	healthManager := newHealthManager(logger, handle)
	if err := healthManager.StartupHealthCheck(ctx); err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	httpConfig := config.Http()
	router := api.NewRouter(&api.AppState{
		UserService:    users.NewUserService(handle.Store),
		HealthManager:  healthManager,
		Logger:         logger,
		BasePath:       httpConfig.BasePath,
		MaxRequestSize: httpConfig.MaxRequestSize,
	})

	if consoleConfig := config.Console(); consoleConfig.Enabled {
		console.NewConsoleService(handle.Store, healthManager, logger, consoleConfig.Title).SetupRoutes(router)
	}

	server := &http.Server{
		Addr:              httpConfig.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := setupSignalHandler(server, logger, time.Duration(httpConfig.ShutdownTimeout)*time.Second)

	logger.Info("Starting user API server",
		zap.String("address", server.Addr),
		zap.String("base_path", httpConfig.BasePath))

	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	<-done
	logger.Info("Server shutdown complete")
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	logger := initLogger()
	defer logger.Sync()

	if config.Database().Driver == config.DriverMemory {
		return fmt.Errorf("nothing to migrate for the memory driver")
	}

	handle, err := openStore(cmd.Context(), logger, true)
	if err != nil {
		return err
	}
	defer handle.Close()

	logger.Info("Migrations applied", zap.String("driver", config.Database().Driver))
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	logger := initLogger()
	defer logger.Sync()

	handle, err := openStore(cmd.Context(), logger, true)
	if err != nil {
		return err
	}
	defer handle.Close()

	result, err := seed.NewSeeder(handle.Store, logger).Run(cmd.Context(), seed.Options{
		Count: flagSeedCount,
		Clear: flagSeedClear,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.Deleted > 0 {
		fmt.Fprintf(out, "Deleted %d existing users\n", result.Deleted)
	}
	if result.Created == 0 {
		fmt.Fprintln(out, "No new users were created")
		return nil
	}
	fmt.Fprintf(out, "Successfully created %d sample users!\n", result.Created)
	fmt.Fprintf(out, "Total users in database: %d\n", result.Total)
	return nil
}

func initLogger() *zap.Logger {
	logConfig := config.Logger()

	var cfg zap.Config
	if logConfig.Format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	switch logConfig.Level {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	return logger
}

func setupSignalHandler(server *http.Server, logger *zap.Logger, timeout time.Duration) chan struct{} {
	done := make(chan struct{}, 1)

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signalCh

		logger.Info("Shutting down server...")

		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Error during server shutdown", zap.Error(err))
		}

		done <- struct{}{}
	}()

	return done
}
