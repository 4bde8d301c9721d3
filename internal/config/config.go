package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Email    EmailConfig
	Avatar   AvatarConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port            string
	Env             string // dev or prod
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	TrustedOrigins  []string // origins allowed to submit forms cross-site
}

type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	ChannelBinding string // "require" for Neon DB, empty for local
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	// Symmetric key for account tokens (must be 32 bytes)
	TokenKey         []byte
	TokenFormat      string // paseto or jwt
	TokenLifetime    time.Duration
	SessionDuration  time.Duration
	RememberDuration time.Duration
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	FromAddress  string
	BaseURL      string // Absolute site URL used in emailed links
}

type AvatarConfig struct {
	Backend        string // disk or s3
	Dir            string
	DefaultImage   string
	Size           int
	MaxUploadBytes int64

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	PublicURL   string // Base URL the avatar files are served from
}

type LogConfig struct {
	Level string
	File  string
}

// Load reads configuration from environment variables
// Call godotenv.Load() before this if using .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Env:             getEnv("APP_ENV", "dev"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			TrustedOrigins:  getSliceEnv("TRUSTED_ORIGINS", nil),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "blog"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			ChannelBinding: getEnv("DB_CHANNEL_BINDING", ""),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			TokenKey:         []byte(getEnv("TOKEN_KEY", "")),
			TokenFormat:      strings.ToLower(getEnv("TOKEN_FORMAT", "paseto")),
			TokenLifetime:    getDurationEnv("TOKEN_LIFETIME", 30*time.Minute),
			SessionDuration:  getDurationEnv("SESSION_DURATION", 24*time.Hour),
			RememberDuration: getDurationEnv("REMEMBER_DURATION", 30*24*time.Hour),
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", "localhost"),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPUser:     getEnv("SMTP_USER", ""),
			SMTPPassword: getEnv("SMTP_PASS", ""),
			FromAddress:  getEnv("MAIL_FROM", ""),
			BaseURL:      strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),
		},
		Avatar: AvatarConfig{
			Backend:        strings.ToLower(getEnv("AVATAR_BACKEND", "disk")),
			Dir:            getEnv("AVATAR_DIR", "static/profile_pics"),
			DefaultImage:   getEnv("AVATAR_DEFAULT", "default.jpg"),
			Size:           getIntEnv("AVATAR_SIZE", 125),
			MaxUploadBytes: int64(getIntEnv("AVATAR_MAX_UPLOAD_BYTES", 4<<20)),
			S3Bucket:       getEnv("AVATAR_S3_BUCKET", ""),
			S3Region:       getEnv("AVATAR_S3_REGION", "us-east-1"),
			S3Endpoint:     getEnv("AVATAR_S3_ENDPOINT", ""),
			S3AccessKey:    getEnv("AVATAR_S3_ACCESS_KEY", ""),
			S3SecretKey:    getEnv("AVATAR_S3_SECRET_KEY", ""),
			PublicURL:      strings.TrimRight(getEnv("AVATAR_PUBLIC_URL", "/static/profile_pics"), "/"),
		},
		Log: LogConfig{
			Level: strings.ToLower(getEnv("LOG_LEVEL", "info")),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if cfg.Email.FromAddress == "" {
		cfg.Email.FromAddress = cfg.Email.SMTPUser
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks settings that would otherwise fail at first use
func (c *Config) Validate() error {
	// Both token formats use a 32 byte symmetric key
	if len(c.Auth.TokenKey) != 32 {
		return fmt.Errorf("TOKEN_KEY must be exactly 32 bytes, got %d", len(c.Auth.TokenKey))
	}

	switch c.Auth.TokenFormat {
	case "paseto", "jwt":
	default:
		return fmt.Errorf("TOKEN_FORMAT must be paseto or jwt, got %q", c.Auth.TokenFormat)
	}

	switch c.Avatar.Backend {
	case "disk":
	case "s3":
		if c.Avatar.S3Bucket == "" {
			return fmt.Errorf("AVATAR_S3_BUCKET is required for the s3 avatar backend")
		}
	default:
		return fmt.Errorf("AVATAR_BACKEND must be disk or s3, got %q", c.Avatar.Backend)
	}

	if c.Avatar.Size <= 0 {
		return fmt.Errorf("AVATAR_SIZE must be positive, got %d", c.Avatar.Size)
	}

	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)

	// Add channel_binding if configured (required for Neon DB)
	if c.ChannelBinding != "" {
		connStr += fmt.Sprintf(" channel_binding=%s", c.ChannelBinding)
	}

	return connStr
}

// Address returns Redis connection address (host:port)
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDevelopment returns true if the environment is set to dev
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "dev"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// getDurationEnv accepts Go duration strings ("30m") or plain seconds ("1800")
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if d, err := time.ParseDuration(value); err == nil {
		return d
	}

	seconds, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return time.Duration(seconds) * time.Second
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Split by comma and trim whitespace
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
