package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:       AppConfig{Environment: "development"},
		Logger:    LoggerConfig{Level: "info"},
		Database:  DatabaseConfig{Path: "/data/bookprepper.db"},
		RateLimit: RateLimitConfig{RequestsPerMinute: 60, Burst: 10},
		Cache:     CacheConfig{StatsTTL: time.Minute},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env
			if tt.valid {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestValidate_ProductionRequiresSecret(t *testing.T) {
	cfg := validConfig()
	cfg.App.Environment = "production"
	assert.Error(t, cfg.Validate())

	cfg.Auth.JWTSecret = "0123456789abcdef0123456789abcdef"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cfg := validConfig()
	cfg.Logger.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Database.Path = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.RateLimit.Burst = 0
	assert.Error(t, cfg.Validate())
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("LOG_LEVEL=debug\nSERVER_PORT=7000\nRATE_LIMIT_RPM=30\n"), 0o600))

	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DATABASE_PATH", filepath.Join(dir, "db.sqlite"))
	t.Setenv("ADMIN_EMAILS", "Admin@Example.com, curator@example.com")
	t.Setenv("STATS_CACHE_TTL", "5m")

	cfg, err := Load([]string{"-env-file", envFile, "-rate-limit-rpm", "120"})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level, ".env value used when env is unset")
	assert.Equal(t, "9000", cfg.Server.Port, "env beats .env")
	assert.Equal(t, 120, cfg.RateLimit.RequestsPerMinute, "flag beats .env")
	assert.Equal(t, 5*time.Minute, cfg.Cache.StatsTTL)
	assert.Equal(t, filepath.Join(dir, "db.sqlite"), cfg.Database.Path)
	assert.True(t, cfg.Auth.IsAdminEmail("ADMIN@example.com"))
	assert.False(t, cfg.Auth.IsAdminEmail("reader@example.com"))
	assert.True(t, cfg.Search.Enabled)

	// godotenv sets variables process-wide.
	t.Cleanup(func() {
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("RATE_LIMIT_RPM")
	})
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	t.Setenv("DATABASE_PATH", ":memory:")
	cfg, err := Load([]string{"-env-file", filepath.Join(t.TempDir(), "absent.env")})
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.Database.Path)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("DATABASE_PATH", ":memory:")
	_, err := Load([]string{"-env-file", "", "-read-timeout", "soon"})
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/books.db", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "books.db"), got)

	got, err = expandPath("", "/default.db")
	require.NoError(t, err)
	assert.Equal(t, "/default.db", got)

	got, err = expandPath("/a/../b.db", "")
	require.NoError(t, err)
	assert.Equal(t, "/b.db", got)
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("BP_TEST_KEY", "from-env")
	assert.Equal(t, "from-flag", getConfigValue("from-flag", "BP_TEST_KEY", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "BP_TEST_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "BP_TEST_UNSET", "default"))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b ,"))
	assert.Nil(t, splitList(""))
}
