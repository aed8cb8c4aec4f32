package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load([]string{"--env", writeFile(t, ".env", "")})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.API.URL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, ResultsAPI, cfg.Results.Backend)
	assert.False(t, cfg.Offline())
}

func TestLoad_Precedence(t *testing.T) {
	yamlPath := writeFile(t, "coursedeck.yaml", `
api:
  url: http://yaml:8000
  timeout: 2s
results:
  backend: memory
email: yaml@example.com
course: 3
report: yaml.csv
`)

	t.Setenv("COURSEDECK_EMAIL", "env@example.com")
	t.Setenv("COURSEDECK_COURSE", "4")

	cfg, err := Load([]string{"--config", yamlPath, "--course", "5", "--env", writeFile(t, ".env", "")})
	require.NoError(t, err)

	assert.Equal(t, "http://yaml:8000", cfg.API.URL, "yaml over default")
	assert.Equal(t, 2*time.Second, cfg.API.Timeout)
	assert.Equal(t, ResultsMemory, cfg.Results.Backend)
	assert.Equal(t, "env@example.com", cfg.Email, "env over yaml")
	assert.Equal(t, 5, cfg.CourseID, "flag over env")
	assert.Equal(t, "yaml.csv", cfg.Report)
}

func TestLoad_DotEnv(t *testing.T) {
	t.Cleanup(func() {
		_ = os.Unsetenv("COURSEDECK_PASSWORD")
		_ = os.Unsetenv("COURSEDECK_API_URL")
	})

	envPath := writeFile(t, ".env", "COURSEDECK_PASSWORD=secret\nCOURSEDECK_API_URL=http://dotenv:9000\n")

	cfg, err := Load([]string{"--env", envPath})
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, "http://dotenv:9000", cfg.API.URL)
}

func TestLoad_MissingRequiredDotEnv(t *testing.T) {
	_, err := Load([]string{"--env", filepath.Join(t.TempDir(), "missing.env")})
	assert.Error(t, err)
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("COURSEDECK_COURSE", "first")

	_, err := Load([]string{"--env", writeFile(t, ".env", "")})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"unknown results", func(c *Config) { c.Results.Backend = "s3" }, true},
		{"postgres without dsn", func(c *Config) { c.Results.Backend = ResultsPostgres }, true},
		{"postgres with dsn", func(c *Config) {
			c.Results.Backend = ResultsPostgres
			c.Results.DSN = "postgres://localhost/coursedeck"
		}, false},
		{"empty api", func(c *Config) { c.API.URL = "" }, true},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }, true},
		{"offline without pdf", func(c *Config) {
			c.QuizFile = "quiz.json"
			c.Results.Backend = ResultsMemory
		}, true},
		{"offline to api", func(c *Config) {
			c.QuizFile = "quiz.json"
			c.File = "slides.pdf"
		}, true},
		{"offline", func(c *Config) {
			c.QuizFile = "quiz.json"
			c.File = "slides.pdf"
			c.Results.Backend = ResultsMemory
			c.API.URL = ""
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
