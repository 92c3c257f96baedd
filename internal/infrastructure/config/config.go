// Package config loads client settings from defaults, an optional
// voices.yaml, a .env file and VOICES_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/0xcro3dile/voices-of-independence/internal/domain/entities"
)

// Config holds all configuration for the client.
type Config struct {
	Backend BackendConfig `mapstructure:"backend"`
	Query   QueryConfig   `mapstructure:"query"`
	Log     LogConfig     `mapstructure:"log"`
	Server  ServerConfig  `mapstructure:"server"`
	Inbox   InboxConfig   `mapstructure:"inbox"`
}

// BackendConfig points at the retrieval backend.
type BackendConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// QueryConfig sets per-submission defaults.
type QueryConfig struct {
	Limit       int    `mapstructure:"limit"`
	DefaultMode string `mapstructure:"default_mode"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	Production bool   `mapstructure:"production"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// InboxConfig is used by the watch command.
type InboxConfig struct {
	Dir       string `mapstructure:"dir"`
	OutboxDir string `mapstructure:"outbox_dir"`
}

// Load reads configuration. An empty path searches for voices.yaml in the
// working directory, ./config and $HOME/.voices; a missing file is not an error.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("voices")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".voices"))
		}
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("VOICES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend.url", "http://localhost:8000/api/independence-rag")
	v.SetDefault("backend.timeout", 30*time.Second)
	v.SetDefault("query.limit", entities.DefaultLimit)
	v.SetDefault("query.default_mode", string(entities.DefaultPersona))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "voices.log")
	v.SetDefault("log.production", false)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("inbox.dir", "./inbox")
	v.SetDefault("inbox.outbox_dir", "./answers")
}

// Validate rejects settings the session cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Backend.URL) == "" {
		return errors.New("backend.url is required")
	}
	if _, err := url.ParseRequestURI(c.Backend.URL); err != nil {
		return fmt.Errorf("backend.url: %w", err)
	}
	if c.Query.Limit <= 0 {
		return fmt.Errorf("query.limit must be positive, got %d", c.Query.Limit)
	}
	if _, err := entities.ParsePersona(c.Query.DefaultMode); err != nil {
		return fmt.Errorf("query.default_mode: %w", err)
	}
	if c.Backend.Timeout < 0 {
		return fmt.Errorf("backend.timeout must not be negative")
	}
	return nil
}

// DefaultPersona returns the validated default mode.
func (c *Config) DefaultPersona() entities.Persona {
	p, err := entities.ParsePersona(c.Query.DefaultMode)
	if err != nil {
		return entities.DefaultPersona
	}
	return p
}
