package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xcro3dile/voices-of-independence/internal/domain/entities"
)

// chdir moves into an empty directory so no stray voices.yaml or .env is read.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t)

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/api/independence-rag", cfg.Backend.URL)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 5, cfg.Query.Limit)
	assert.Equal(t, "historian", cfg.Query.DefaultMode)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "voices.log", cfg.Log.File)
	assert.False(t, cfg.Log.Production)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "./inbox", cfg.Inbox.Dir)
	assert.Equal(t, "./answers", cfg.Inbox.OutboxDir)
	assert.Equal(t, entities.PersonaHistorian, cfg.DefaultPersona())
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := chdir(t)
	content := "backend:\n  url: http://rag.local/api\n  timeout: 5s\nquery:\n  limit: 3\n  default_mode: time_traveler\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "voices.yaml"), []byte(content), 0644))

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "http://rag.local/api", cfg.Backend.URL)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 3, cfg.Query.Limit)
	assert.Equal(t, entities.PersonaTimeTraveler, cfg.DefaultPersona())
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t)
	t.Setenv("VOICES_QUERY_DEFAULT_MODE", "founding_father")
	t.Setenv("VOICES_QUERY_LIMIT", "8")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Query.Limit)
	assert.Equal(t, entities.PersonaFoundingFather, cfg.DefaultPersona())
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	chdir(t)

	_, err := Load("/nonexistent/voices.yaml")

	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Backend: BackendConfig{URL: "http://localhost:8000/api/independence-rag", Timeout: time.Second},
			Query:   QueryConfig{Limit: 5, DefaultMode: "historian"},
		}
	}

	tests := map[string]func(c *Config){
		"empty url":     func(c *Config) { c.Backend.URL = " " },
		"relative url":  func(c *Config) { c.Backend.URL = "api/rag" },
		"zero limit":    func(c *Config) { c.Query.Limit = 0 },
		"unknown mode":  func(c *Config) { c.Query.DefaultMode = "pirate" },
		"negative wait": func(c *Config) { c.Backend.Timeout = -time.Second },
	}

	c := valid()
	assert.NoError(t, c.Validate())

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
