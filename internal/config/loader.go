package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const maxConfigFileSize = 1024 * 1024 // 1MB

// envKeys maps the recognized environment variables to config keys.
// Anything not listed here is ignored.
var envKeys = map[string]string{
	"HOST":                  "server.host",
	"PORT":                  "server.port",
	"PUBLIC_DIR":            "server.public_dir",
	"SHUTDOWN_TIMEOUT":      "server.shutdown_timeout",
	"TLS_DIR":               "server.tls_dir",
	"DB_DRIVER":             "database.driver",
	"DB_HOST":               "database.host",
	"DB_PORT":               "database.port",
	"DB_USER":               "database.user",
	"DB_PASSWORD":           "database.password",
	"DB_NAME":               "database.name",
	"DB_PATH":               "database.path",
	"DB_SSLMODE":            "database.sslmode",
	"UPLOAD_SINK":           "upload.sink",
	"UPLOAD_DIR":            "upload.dir",
	"STAGING_DIR":           "upload.staging_dir",
	"UPLOAD_FOLDER":         "upload.folder",
	"CLOUDINARY_CLOUD_NAME": "cloudinary.cloud_name",
	"CLOUDINARY_API_KEY":    "cloudinary.api_key",
	"CLOUDINARY_API_SECRET": "cloudinary.api_secret",
	"SESSION_SECRET":        "session.secret",
	"SESSION_TTL":           "session.ttl",
	"SESSION_STORE":         "session.store",
	"SESSION_SWEEP":         "session.sweep_interval",
	"COOKIE_SECURE":         "session.cookie_secure",
	"REDIS_ADDR":            "session.redis_addr",
	"REDIS_PASSWORD":        "session.redis_password",
	"ADMIN_USERNAME":        "admin.username",
	"ADMIN_PASSWORD":        "admin.password",
	"LOGIN_MAX_ATTEMPTS":    "admin.max_attempts",
	"LOGIN_LOCKOUT":         "admin.lockout",
	"LOG_LEVEL":             "log.level",
	"LOG_FORMAT":            "log.format",
}

// Load reads configuration from the YAML file at path (skipped when path is
// empty), then overrides it with environment variables, applies defaults and
// validates the result.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (PORT, DB_HOST, SESSION_SECRET, ...)
//  2. YAML config file
//  3. Hardcoded defaults
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		return envKeys[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.PublicDir == "" {
		cfg.Server.PublicDir = "public"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverSQLite
	}
	if cfg.Database.Driver == DriverSQLite && cfg.Database.Path == "" {
		cfg.Database.Path = "./laludev.db"
	}
	if cfg.Database.Port == 0 {
		switch cfg.Database.Driver {
		case DriverMySQL:
			cfg.Database.Port = 3306
		case DriverPostgres:
			cfg.Database.Port = 5432
		}
	}
	if cfg.Database.Driver == DriverPostgres && cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	if cfg.Upload.Sink == "" {
		cfg.Upload.Sink = SinkCloudinary
	}
	if cfg.Upload.Dir == "" {
		cfg.Upload.Dir = "uploads"
	}
	if cfg.Upload.StagingDir == "" {
		cfg.Upload.StagingDir = "uploads/tmp"
	}
	if cfg.Upload.Folder == "" {
		cfg.Upload.Folder = "projetos"
	}

	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 24 * time.Hour
	}
	if cfg.Session.Store == "" {
		cfg.Session.Store = StoreMemory
	}
	if cfg.Session.SweepInterval == 0 {
		cfg.Session.SweepInterval = 10 * time.Minute
	}

	if cfg.Admin.Username == "" {
		cfg.Admin.Username = "admin"
	}
	if cfg.Admin.Lockout == 0 {
		cfg.Admin.Lockout = 15 * time.Minute
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}
