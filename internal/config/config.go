// Package config provides centralized configuration management for the book
// import server and its terminal client. Values come from environment
// variables with defaults, and are validated on startup so misconfiguration
// fails fast.
package config

import (
	"strconv"
	"time"
)

// Store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Temp storage backends.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config holds all server configuration.
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Upload   UploadConfig
	S3       S3Config
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8000)
	Port int `env:"SERVER_PORT" default:"8000"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"5m"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout bounds a single request through the chi Timeout middleware.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"5m"`
}

// StoreConfig selects and configures the book store.
type StoreConfig struct {
	// Driver is "mongo" or "postgres" (default: mongo)
	Driver string `env:"STORE_DRIVER" default:"mongo"`

	MongoURI        string `env:"MONGO_URI" envAlt:"MONGODB_URI" default:"mongodb://127.0.0.1:27017/?directConnection=true&serverSelectionTimeoutMS=2000"`
	MongoDatabase   string `env:"MONGO_DATABASE" default:"author-book-db"`
	MongoCollection string `env:"MONGO_COLLECTION" default:"books"`

	// DatabaseURL is the PostgreSQL connection string, required for the postgres driver.
	DatabaseURL     string        `env:"DATABASE_URL" envAlt:"DB_URL"`
	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// ConnectTimeout bounds the initial connect + ping.
	ConnectTimeout time.Duration `env:"STORE_CONNECT_TIMEOUT" default:"10s"`
}

// UploadConfig holds spreadsheet upload settings.
type UploadConfig struct {
	// MaxFileSize is the maximum accepted request body in bytes (default: 32MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"33554432"`

	MaxConcurrent int           `env:"UPLOAD_MAX_CONCURRENT" default:"5"`
	MaxWaitTime   time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`
	Timeout       time.Duration `env:"UPLOAD_TIMEOUT" default:"2m"`

	// Storage is where uploads wait while they are processed: "local" or "s3".
	Storage string `env:"UPLOAD_STORAGE" default:"local"`

	// TempDir is the directory used by local storage.
	TempDir string `env:"UPLOAD_TEMP_DIR" default:"uploads"`

	// Retention is how long a failed upload's temp file is kept before the
	// sweeper removes it. Zero disables the sweeper.
	Retention     time.Duration `env:"UPLOAD_RETENTION" default:"24h"`
	SweepInterval time.Duration `env:"UPLOAD_SWEEP_INTERVAL" default:"1h"`
}

// S3Config holds S3-compatible object storage settings for UPLOAD_STORAGE=s3.
type S3Config struct {
	Bucket          string `env:"AWS_BUCKET"`
	Region          string `env:"AWS_REGION" default:"auto"`
	Endpoint        string `env:"AWS_ENDPOINT"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	Prefix          string `env:"AWS_PREFIX" default:"uploads/"`
	UsePathStyle    bool   `env:"AWS_USE_PATH_STYLE" default:"false"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute applies to every route.
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// UploadLimit is requests per minute for POST /upload.
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"10"`

	// RedisURL switches the upload limiter to a shared Redis token bucket.
	RedisURL string `env:"REDIS_URL"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// AllowedOrigins are the CORS origins allowed to call the API.
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`

	RequireAPIKey bool     `env:"REQUIRE_API_KEY" default:"false"`
	APIKeys       []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// ClientConfig configures the terminal preview client.
type ClientConfig struct {
	// APIURL is the server base URL; the upload endpoint is APIURL + "upload".
	APIURL string `env:"BOOKIMPORT_API_URL" envAlt:"NEXT_PUBLIC_API_URL" default:"http://localhost:8000/"`

	APIKey  string        `env:"BOOKIMPORT_API_KEY"`
	Timeout time.Duration `env:"BOOKIMPORT_TIMEOUT" default:"2m"`

	LogFile  string `env:"BOOKIMPORT_LOG_FILE" default:"bookimport.log"`
	LogLevel string `env:"LOG_LEVEL" default:"info"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
