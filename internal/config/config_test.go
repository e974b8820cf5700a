package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:     AppConfig{Environment: "development"},
		Logger:  LoggerConfig{Level: "info"},
		Storage: StorageConfig{DataPath: "/some/path"},
		Auth:    AuthConfig{RatePerMinute: 20},
		Reading: ReadingConfig{Timezone: "UTC"},
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
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_LogLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "INFO"} {
		cfg := validConfig()
		cfg.Logger.Level = level
		assert.NoError(t, cfg.Validate(), level)
	}

	cfg := validConfig()
	cfg.Logger.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestValidate_Timezone(t *testing.T) {
	cfg := validConfig()
	cfg.Reading.Timezone = "Asia/Seoul"
	assert.NoError(t, cfg.Validate())

	cfg.Reading.Timezone = "Mars/Olympus_Mons"
	assert.Error(t, cfg.Validate())
}

func TestValidate_EmptyDataPath(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.DataPath = ""
	assert.Error(t, cfg.Validate())
}

func TestReadingLocation_Local(t *testing.T) {
	loc, err := ReadingConfig{Timezone: "Local"}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = ReadingConfig{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestAllowedOrigins(t *testing.T) {
	assert.Equal(t, []string{"http://localhost:5173"}, ServerConfig{}.AllowedOrigins())
	assert.Equal(t,
		[]string{"http://localhost:5173", "https://booklens.example"},
		ServerConfig{FrontendURL: "https://booklens.example"}.AllowedOrigins(),
	)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{"ENV", "LOG_LEVEL", "LOG_FILE", "DATA_PATH", "SERVER_PORT", "ACCESS_TOKEN_DURATION", "READING_TIMEZONE", "AUTH_RATE_PER_MINUTE", "FRONTEND_URL"} {
		t.Setenv(key, "")
	}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := Load(fs, []string{"-env-file", filepath.Join(t.TempDir(), "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, 20, cfg.Auth.RatePerMinute)
	assert.Equal(t, "Local", cfg.Reading.Timezone)
	assert.True(t, filepath.IsAbs(cfg.Storage.DataPath))
	assert.Equal(t, "data", filepath.Base(cfg.Storage.DataPath))
}

func TestLoad_FlagBeatsEnv(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DATA_PATH", dataDir)

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := Load(fs, []string{"-port", "9100", "-env-file", filepath.Join(dataDir, "none.env")})
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, dataDir, cfg.Storage.DataPath)
	assert.Equal(t, filepath.Join(dataDir, "booklens.db"), cfg.Storage.DatabasePath())
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("DATA_PATH", t.TempDir())
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	_, err := Load(fs, []string{"-access-token-duration", "forever", "-env-file", ""})
	assert.Error(t, err)
}

func TestLoad_InvalidAuthRate(t *testing.T) {
	t.Setenv("DATA_PATH", t.TempDir())
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	_, err := Load(fs, []string{"-auth-rate", "lots", "-env-file", ""})
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nBOOKLENS_TEST_KEY=\"quoted value\"\n\nBOOKLENS_TEST_OTHER=plain\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("BOOKLENS_TEST_KEY", "")
	t.Setenv("BOOKLENS_TEST_OTHER", "already-set")

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "quoted value", os.Getenv("BOOKLENS_TEST_KEY"))
	assert.Equal(t, "already-set", os.Getenv("BOOKLENS_TEST_OTHER"))
}

func TestLoadEnvFile_InvalidLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NOT_A_PAIR\n"), 0o600))
	assert.Error(t, loadEnvFile(path))
}
