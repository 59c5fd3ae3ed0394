package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
source:
  host: ce-db
  name: clientexec
  user: ce
  password: secret
  timezone: America/Chicago
destination:
  host: blesta-db
  name: blesta
  user: blesta
  company_id: 2
  encryption_key: 0123456789abcdef0123
legacy:
  passphrase: legacy-pass
migration:
  debug: true
logging:
  level: debug
  format: json
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cemigrate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "ce-db", cfg.Source.Host)
	assert.Equal(t, 3306, cfg.Source.Port)
	assert.True(t, cfg.Source.ReadOnly, "source is always read-only")
	assert.Equal(t, 5*time.Minute, cfg.Source.ConnMaxLifetime)
	assert.Equal(t, int64(2), cfg.Destination.CompanyID)
	assert.Equal(t, "US", cfg.Destination.DefaultCountry)
	assert.Equal(t, "USD", cfg.Destination.DefaultCurrency)
	assert.Equal(t, "en_us", cfg.Destination.Language)
	assert.False(t, cfg.Destination.ReadOnly)
	assert.Equal(t, "legacy-pass", cfg.Legacy.Passphrase)
	assert.True(t, cfg.Migration.Debug)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("CEMIGRATE_SOURCE_HOST", "override-host")
	t.Setenv("CEMIGRATE_DESTINATION_COMPANY_ID", "7")
	t.Setenv("CEMIGRATE_LOGGING_LEVEL", "warn")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "override-host", cfg.Source.Host)
	assert.Equal(t, int64(7), cfg.Destination.CompanyID)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, int64(1), cfg.Destination.CompanyID)
	assert.Error(t, cfg.Validate(), "hosts are not defaulted")
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CEMIGRATE_LEGACY_PASSPHRASE=from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("CEMIGRATE_LEGACY_PASSPHRASE") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Legacy.Passphrase)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := &Config{
		Source:      SourceConfig{Timezone: "Mars/Olympus"},
		Destination: DestinationConfig{EncryptionKey: "short", DefaultCountry: "USA", DefaultCurrency: "US"},
		Logging:     LoggingConfig{Level: "loud", Format: "xml"},
	}
	err := cfg.Validate()
	require.Error(t, err)

	for _, want := range []string{
		"source.host", "source.name", "source.timezone", "destination.host", "destination.name",
		"destination.company_id", "destination.encryption_key", "destination.default_country",
		"destination.default_currency", "logging.level", "logging.format",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidateRejectsLevelsTheLoggerIgnores(t *testing.T) {
	for _, level := range []string{"trace", "fatal", "panic"} {
		cfg := validSourceConfig()
		cfg.Logging.Level = level
		err := cfg.ValidateSource()
		require.Error(t, err, level)
		assert.Contains(t, err.Error(), "logging.level")
	}
	for _, level := range []string{"debug", "INFO", "warn", "warning", "error"} {
		cfg := validSourceConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.ValidateSource(), level)
	}
}

func TestValidateSourceIgnoresDestination(t *testing.T) {
	cfg := validSourceConfig()
	assert.NoError(t, cfg.ValidateSource())

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "destination.host")
	assert.Contains(t, err.Error(), "destination.encryption_key")
}

func validSourceConfig() *Config {
	cfg := &Config{Logging: LoggingConfig{Level: "info", Format: "text"}}
	cfg.Source.Host = "ce.example.com"
	cfg.Source.Name = "clientexec"
	cfg.Source.Timezone = "UTC"
	return cfg
}

func TestSourceLocation(t *testing.T) {
	loc, err := (&SourceConfig{}).Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (stand-in for testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(prev)) })
}
