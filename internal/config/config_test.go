package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TOKEN_KEY", testKey)
	t.Setenv("SMTP_USER", "blog@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, "paseto", cfg.Auth.TokenFormat)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenLifetime)
	assert.Equal(t, "disk", cfg.Avatar.Backend)
	assert.Equal(t, 125, cfg.Avatar.Size)
	assert.Equal(t, "default.jpg", cfg.Avatar.DefaultImage)
	assert.Equal(t, "blog@example.com", cfg.Email.FromAddress, "sender falls back to the SMTP user")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TOKEN_KEY", testKey)
	t.Setenv("TOKEN_FORMAT", "JWT")
	t.Setenv("TOKEN_LIFETIME", "1800")
	t.Setenv("SESSION_DURATION", "2h")
	t.Setenv("TRUSTED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("BASE_URL", "https://blog.example/")
	t.Setenv("AVATAR_BACKEND", "s3")
	t.Setenv("AVATAR_S3_BUCKET", "avatars")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "jwt", cfg.Auth.TokenFormat)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenLifetime)
	assert.Equal(t, 2*time.Hour, cfg.Auth.SessionDuration)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.TrustedOrigins)
	assert.Equal(t, "https://blog.example", cfg.Email.BaseURL)
	assert.Equal(t, "s3", cfg.Avatar.Backend)
	assert.Equal(t, 0, cfg.Redis.DB)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Auth:   AuthConfig{TokenKey: []byte(testKey), TokenFormat: "paseto"},
			Avatar: AvatarConfig{Backend: "disk", Size: 125},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"short key", func(c *Config) { c.Auth.TokenKey = []byte("short") }, "TOKEN_KEY"},
		{"unknown format", func(c *Config) { c.Auth.TokenFormat = "xml" }, "TOKEN_FORMAT"},
		{"s3 without bucket", func(c *Config) { c.Avatar.Backend = "s3" }, "AVATAR_S3_BUCKET"},
		{"unknown backend", func(c *Config) { c.Avatar.Backend = "ftp" }, "AVATAR_BACKEND"},
		{"zero size", func(c *Config) { c.Avatar.Size = 0 }, "AVATAR_SIZE"},
	}

	require.NoError(t, valid().Validate())

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tc.want), err.Error())
		})
	}
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "blog", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=blog sslmode=disable", c.ConnectionString())

	c.ChannelBinding = "require"
	assert.True(t, strings.HasSuffix(c.ConnectionString(), " channel_binding=require"))
}
