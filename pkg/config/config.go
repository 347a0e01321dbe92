// Package config loads VisorX settings from defaults, an optional TOML file,
// a .env file and the process environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/papercomputeco/visorx/pkg/chatclient"
	"github.com/papercomputeco/visorx/pkg/imageenc"
)

// ErrMissingAPIKey is returned by Validate when no credential is configured.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY (or API_KEY) environment variable not set")

// Config is the VisorX configuration.
type Config struct {
	// Address to listen on (e.g., ":8080")
	ListenAddr string `toml:"listen"`

	// Remote model identifier
	Model string `toml:"model"`

	// APIKey is the Gemini API credential. It is only read from the
	// environment, never from the config file.
	APIKey string `toml:"-"`

	// Locale of user-facing strings ("es" or "en")
	Locale string `toml:"locale"`

	// UseMock replaces the remote service with an offline echo provider
	UseMock bool `toml:"use_mock"`

	// Debug enables debug logging
	Debug bool `toml:"debug"`

	// MaxImageBytes bounds attached images
	MaxImageBytes int64 `toml:"max_image_bytes"`

	// LogFile receives logs of the terminal UI, which owns stdout
	LogFile string `toml:"log_file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ListenAddr:    ":8080",
		Model:         chatclient.DefaultModel,
		Locale:        "es",
		MaxImageBytes: imageenc.DefaultMaxBytes,
	}
}

// Load builds the configuration. path may be empty. A missing .env file is
// not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	_ = godotenv.Load(".env")

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.APIKey = firstEnv("GEMINI_API_KEY", "API_KEY")

	if v := os.Getenv("VISORX_LISTEN"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("VISORX_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("VISORX_LOCALE"); v != "" {
		c.Locale = v
	}
	if v := os.Getenv("VISORX_LOG_FILE"); v != "" {
		c.LogFile = v
	}

	var err error
	if c.UseMock, err = boolEnv("VISORX_USE_MOCK", c.UseMock); err != nil {
		return err
	}
	if c.Debug, err = boolEnv("VISORX_DEBUG", c.Debug); err != nil {
		return err
	}
	if v := os.Getenv("VISORX_MAX_IMAGE_BYTES"); v != "" {
		n, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil {
			return fmt.Errorf("VISORX_MAX_IMAGE_BYTES: %w", perr)
		}
		c.MaxImageBytes = n
	}
	return nil
}

// Validate checks the configuration before any session is started. The
// credential is only required when talking to the remote service.
func (c Config) Validate() error {
	if !c.UseMock && strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.Model == "" {
		return errors.New("model must not be empty")
	}
	if c.MaxImageBytes <= 0 {
		return errors.New("max_image_bytes must be positive")
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
