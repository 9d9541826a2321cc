package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	// AppName is reported to the server as application_name.
	AppName            string
	ConnectTimeoutSec  int
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
	ConnMaxIdleTimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// RedisConfig holds settings for the optional Redis-backed progress tracker.
// An empty Addr selects the in-memory tracker.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	EntryTTL time.Duration
}

// AuthConfig holds credential and token settings.
type AuthConfig struct {
	JWTSecret   string
	TokenTTL    time.Duration
	Issuer      string
	AllowSignup bool
	// LoginRatePerMinute and LoginBurst bound login attempts per client.
	LoginRatePerMinute float64
	LoginBurst         int
}

// UploadConfig holds limits for file uploads and download links.
type UploadConfig struct {
	// MaxSizeBytes bounds a single file; a non-positive value disables the check.
	MaxSizeBytes  int64
	PartSizeBytes uint64
	URLExpiry     time.Duration
	// PublicBaseURL, when set, is used to build permanent download URLs
	// instead of presigned ones (e.g. a public bucket behind a CDN).
	PublicBaseURL string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	TimeZone string
	LogLevel string
	Database DatabaseConfig
	MinIO    MinIOConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Upload   UploadConfig
}

// Location resolves TimeZone, falling back to UTC when it is empty or unknown.
func (c *AppConfig) Location() *time.Location {
	if c.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"),
		TimeZone: getEnv("APP_TIMEZONE", "UTC"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			AppName:            getEnv("DB_APPLICATION_NAME", "filedrive"),
			ConnectTimeoutSec:  getEnvInt("DB_CONNECT_TIMEOUT_SEC", 5),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
			ConnMaxIdleTimeSec: getEnvInt("DB_CONN_MAX_IDLE_TIME_SEC", 60),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			EntryTTL: getEnvDuration("REDIS_PROGRESS_TTL", 24*time.Hour),
		},
		Auth: AuthConfig{
			JWTSecret:          getEnv("JWT_SECRET", ""),
			TokenTTL:           getEnvDuration("JWT_TTL", 24*time.Hour),
			Issuer:             getEnv("JWT_ISSUER", "filedrive"),
			AllowSignup:        getEnvBool("AUTH_ALLOW_SIGNUP", false),
			LoginRatePerMinute: getEnvFloat("AUTH_LOGIN_RATE_PER_MINUTE", 10),
			LoginBurst:         getEnvInt("AUTH_LOGIN_BURST", 5),
		},
		Upload: UploadConfig{
			MaxSizeBytes:  getEnvInt64("UPLOAD_MAX_SIZE_BYTES", 5<<30),
			PartSizeBytes: uint64(getEnvInt64("UPLOAD_PART_SIZE_BYTES", 16<<20)),
			URLExpiry:     getEnvDuration("UPLOAD_URL_EXPIRY", 7*24*time.Hour),
			PublicBaseURL: getEnv("UPLOAD_PUBLIC_BASE_URL", ""),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
