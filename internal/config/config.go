package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// this is a pointer so that if someone attempts to use it before loading it will
// panic and force them to load it first.
// it is also private so that it cannot be modified after loading.
var _loaded *Config

// Supported values for database.driver.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config is the main configuration structure
type Config struct {
	Common Common `yaml:"common"`
}

// Load loads the configuration following proper precedence: defaults → config file → environment variables
func Load() {
	_loaded = cloneDefault()

	configFile := os.Getenv("USERAPI_CONFIG_FILE")
	if configFile == "" {
		configFile = "userapi.yaml"
	}

	if err := LoadFromFile(configFile); err != nil {
		log.Printf("Failed to load config file: %v, using defaults", err)
	} else {
		log.Printf("Loaded config from file: %s", configFile)
	}

	ApplyEnvOverrides()
}

// LoadDefault installs the built-in defaults without reading a file or the
// environment. Tests use it.
func LoadDefault() {
	_loaded = cloneDefault()
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := cloneDefault()

	// Merge YAML values over defaults
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config file: %w", err)
	}

	_loaded = cfg
	return nil
}

// Validate checks values that cannot be defaulted sensibly.
func (c *Config) Validate() error {
	switch c.Common.Database.Driver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unknown database driver %q (want postgres, sqlite or memory)", c.Common.Database.Driver)
	}
	if c.Common.Http.Port <= 0 || c.Common.Http.Port > 65535 {
		return fmt.Errorf("http port %d out of range", c.Common.Http.Port)
	}
	if bp := c.Common.Http.BasePath; bp != "" && !strings.HasPrefix(bp, "/") {
		return fmt.Errorf("http base_path %q must start with '/'", bp)
	}
	return nil
}

// set sane defaults for all of the config options. when loading the config from
// the file, any options that are not set will be set to these defaults.
var defaultConfig = Config{
	Common: Common{
		Log: logConfig{
			Level:  "info",
			Format: "json",
		},
		Http: httpConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			BasePath:        "",
			MaxRequestSize:  1048576,
			ShutdownTimeout: 30,
		},
		Database: databaseConfig{
			Driver:             DriverSQLite,
			MaxOpenConnections: 10,
			AutoMigrate:        true,
		},
		Postgres: postgresConfig{
			User:     "postgres",
			Password: "postgres",
			Host:     "localhost",
			Port:     5432,
			Database: "userapi",
			SSLMode:  "disable",
		},
		SQLite: sqliteConfig{
			Path: "userapi.db",
		},
		Console: consoleConfig{
			Enabled: true,
			Title:   "User Administration",
		},
	},
}

func cloneDefault() *Config {
	cfg := defaultConfig
	return &cfg
}

type Common struct {
	Log      logConfig      `yaml:"log"`
	Http     httpConfig     `yaml:"http"`
	Database databaseConfig `yaml:"database"`
	Postgres postgresConfig `yaml:"postgres"`
	SQLite   sqliteConfig   `yaml:"sqlite"`
	Console  consoleConfig  `yaml:"console"`
}

type logConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type httpConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	BasePath        string `yaml:"base_path"`
	MaxRequestSize  int64  `yaml:"max_request_size"`
	ShutdownTimeout int    `yaml:"shutdown_timeout"` // seconds
}

func (c httpConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type databaseConfig struct {
	Driver             string `yaml:"driver"` // "postgres", "sqlite" or "memory"
	MaxOpenConnections int    `yaml:"max_open_connections"`
	AutoMigrate        bool   `yaml:"auto_migrate"`
}

type postgresConfig struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

func (c postgresConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return u.String()
}

type sqliteConfig struct {
	Path string `yaml:"path"`
}

type consoleConfig struct {
	Enabled bool   `yaml:"enabled"`
	Title   string `yaml:"title"`
}

// there should be a getter for each top level field in the config struct.
// these getters will panic if the config has not been loaded.

func Logger() logConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Log
}

func Http() httpConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Http
}

func Database() databaseConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Database
}

func Postgres() postgresConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Postgres
}

func SQLite() sqliteConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.SQLite
}

func Console() consoleConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Console
}

func ApplyEnvOverrides() {
	if _loaded == nil {
		return
	}

	if logLevel := os.Getenv("USERAPI_LOG_LEVEL"); logLevel != "" {
		_loaded.Common.Log.Level = logLevel
	}
	if logFormat := os.Getenv("USERAPI_LOG_FORMAT"); logFormat != "" {
		_loaded.Common.Log.Format = logFormat
	}

	if httpHost := os.Getenv("USERAPI_HTTP_HOST"); httpHost != "" {
		_loaded.Common.Http.Host = httpHost
	}
	if httpPort := os.Getenv("USERAPI_HTTP_PORT"); httpPort != "" {
		if port, err := strconv.Atoi(httpPort); err == nil {
			_loaded.Common.Http.Port = port
		}
	}
	if basePath, ok := os.LookupEnv("USERAPI_HTTP_BASE_PATH"); ok {
		_loaded.Common.Http.BasePath = basePath
	}

	if driver := os.Getenv("USERAPI_DB_DRIVER"); driver != "" {
		_loaded.Common.Database.Driver = driver
	}
	if autoMigrate := os.Getenv("USERAPI_DB_AUTO_MIGRATE"); autoMigrate != "" {
		if enabled, err := strconv.ParseBool(autoMigrate); err == nil {
			_loaded.Common.Database.AutoMigrate = enabled
		}
	}

	if dbHost := os.Getenv("USERAPI_DB_HOST"); dbHost != "" {
		_loaded.Common.Postgres.Host = dbHost
	}
	if dbPort := os.Getenv("USERAPI_DB_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			_loaded.Common.Postgres.Port = port
		}
	}
	if dbUser := os.Getenv("USERAPI_DB_USER"); dbUser != "" {
		_loaded.Common.Postgres.User = dbUser
	}
	if dbPassword := os.Getenv("USERAPI_DB_PASSWORD"); dbPassword != "" {
		_loaded.Common.Postgres.Password = dbPassword
	}
	if dbName := os.Getenv("USERAPI_DB_NAME"); dbName != "" {
		_loaded.Common.Postgres.Database = dbName
	}

	if sqlitePath := os.Getenv("USERAPI_SQLITE_PATH"); sqlitePath != "" {
		_loaded.Common.SQLite.Path = sqlitePath
	}

	if consoleEnabled := os.Getenv("USERAPI_CONSOLE_ENABLED"); consoleEnabled != "" {
		if enabled, err := strconv.ParseBool(consoleEnabled); err == nil {
			_loaded.Common.Console.Enabled = enabled
		}
	}
}
