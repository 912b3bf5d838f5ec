// Package config loads laludev configuration from an optional YAML file and
// the process environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config holds the complete application configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Upload     UploadConfig     `koanf:"upload"`
	Cloudinary CloudinaryConfig `koanf:"cloudinary"`
	Session    SessionConfig    `koanf:"session"`
	Admin      AdminConfig      `koanf:"admin"`
	Log        LogConfig        `koanf:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	PublicDir       string        `koanf:"public_dir"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// TLSDir enables HTTPS with a self-signed certificate kept there.
	TLSDir          string        `koanf:"tls_dir"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects and addresses the relational store.
// Path is only used by the sqlite driver, SSLMode only by postgres.
type DatabaseConfig struct {
	Driver   string `koanf:"driver"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password Secret `koanf:"password"`
	Name     string `koanf:"name"`
	Path     string `koanf:"path"`
	SSLMode  string `koanf:"sslmode"`
}

// UploadConfig controls where project images are staged and hosted.
type UploadConfig struct {
	Sink       string `koanf:"sink"`
	Dir        string `koanf:"dir"`
	StagingDir string `koanf:"staging_dir"`
	Folder     string `koanf:"folder"`
}

// CloudinaryConfig holds the image hosting credentials.
type CloudinaryConfig struct {
	CloudName    string `koanf:"cloud_name"`
	APIKey       string `koanf:"api_key"`
	APISecret    Secret `koanf:"api_secret"`
	UploadPrefix string `koanf:"upload_prefix"`
}

// SessionConfig controls the administrator session gate.
type SessionConfig struct {
	Secret        Secret        `koanf:"secret"`
	TTL           time.Duration `koanf:"ttl"`
	Store         string        `koanf:"store"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
	CookieSecure  bool          `koanf:"cookie_secure"`
	RedisAddr     string        `koanf:"redis_addr"`
	RedisPassword Secret        `koanf:"redis_password"`
}

// AdminConfig holds the bootstrap administrator account.
// MaxAttempts logins from one address within Lockout block it for Lockout.
// Zero disables login throttling.
type AdminConfig struct {
	Username    string        `koanf:"username"`
	Password    Secret        `koanf:"password"`
	MaxAttempts int           `koanf:"max_attempts"`
	Lockout     time.Duration `koanf:"lockout"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"

	SinkCloudinary = "cloudinary"
	SinkLocal      = "local"

	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Validate reports every missing or invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout must be positive: %s (SHUTDOWN_TIMEOUT)", c.Server.ShutdownTimeout))
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			errs = append(errs, errors.New("database.path is required for sqlite (DB_PATH)"))
		}
	case DriverMySQL, DriverPostgres:
		if c.Database.Host == "" {
			errs = append(errs, errors.New("database.host is required (DB_HOST)"))
		}
		if c.Database.User == "" {
			errs = append(errs, errors.New("database.user is required (DB_USER)"))
		}
		if c.Database.Name == "" {
			errs = append(errs, errors.New("database.name is required (DB_NAME)"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported database.driver %q", c.Database.Driver))
	}

	switch c.Upload.Sink {
	case SinkCloudinary:
		if c.Cloudinary.CloudName == "" || c.Cloudinary.APIKey == "" || !c.Cloudinary.APISecret.IsSet() {
			errs = append(errs, errors.New("cloudinary credentials are required (CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY, CLOUDINARY_API_SECRET)"))
		}
	case SinkLocal:
	default:
		errs = append(errs, fmt.Errorf("unsupported upload.sink %q", c.Upload.Sink))
	}

	if !c.Session.Secret.IsSet() {
		errs = append(errs, errors.New("session.secret is required (SESSION_SECRET)"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, fmt.Errorf("session.ttl must be positive: %s", c.Session.TTL))
	}
	if c.Session.SweepInterval <= 0 {
		errs = append(errs, fmt.Errorf("session.sweep_interval must be positive: %s (SESSION_SWEEP)", c.Session.SweepInterval))
	}
	switch c.Session.Store {
	case StoreMemory:
	case StoreRedis:
		if c.Session.RedisAddr == "" {
			errs = append(errs, errors.New("session.redis_addr is required for the redis store (REDIS_ADDR)"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported session.store %q", c.Session.Store))
	}

	if strings.TrimSpace(c.Admin.Username) == "" {
		errs = append(errs, errors.New("admin.username is required (ADMIN_USERNAME)"))
	}
	if !c.Admin.Password.IsSet() {
		errs = append(errs, errors.New("admin.password is required (ADMIN_PASSWORD)"))
	}
	if c.Admin.MaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("admin.max_attempts must not be negative: %d (LOGIN_MAX_ATTEMPTS)", c.Admin.MaxAttempts))
	}
	if c.Admin.Lockout <= 0 {
		errs = append(errs, fmt.Errorf("admin.lockout must be positive: %s (LOGIN_LOCKOUT)", c.Admin.Lockout))
	}

	return errors.Join(errs...)
}
