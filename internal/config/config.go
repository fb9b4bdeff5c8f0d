// Package config loads paytoken settings from a YAML file, a .env file and
// PAYMENTDATA_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	paymentdata "github.com/paymentdata/client-go"
)

const (
	EnvironmentProduction = "production"
	EnvironmentTest       = "test"
)

// DefaultPaths are tried in order when no config path is given.
var DefaultPaths = []string{"paytoken.yaml", "configs/paytoken.yaml"}

// Config holds paytoken settings.
type Config struct {
	RecipientID      string        `yaml:"recipientId"`
	PrivateKeys      []string      `yaml:"privateKeys"`
	Environment      string        `yaml:"environment"`
	KeyDirectoryURL  string        `yaml:"keyDirectoryUrl"`
	KeyDirectoryFile string        `yaml:"keyDirectoryFile"`
	Timeout          time.Duration `yaml:"timeout"`
	Retries          *int          `yaml:"retries"`
	DefaultKeyTTL    time.Duration `yaml:"defaultKeyTtl"`
	LogLevel         string        `yaml:"logLevel"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Environment: EnvironmentProduction,
		LogLevel:    "warn",
	}
}

// LoadDotEnv loads variables from .env files into the process environment.
// Variables already set are kept and missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// Load reads configPath, or the first of DefaultPaths that exists, then
// applies environment overrides. An explicit path must exist.
func Load(configPath string) (Config, error) {
	cfg := Default()

	candidates := DefaultPaths
	if configPath != "" {
		candidates = []string{configPath}
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			if configPath == "" && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return cfg, fmt.Errorf("read config: %w", err)
		}

		var parsed Config
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		Merge(&cfg, parsed)
		break
	}

	if err := ApplyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Merge copies the fields set in src over dst.
func Merge(dst *Config, src Config) {
	if src.RecipientID != "" {
		dst.RecipientID = src.RecipientID
	}
	if src.PrivateKeys != nil {
		dst.PrivateKeys = src.PrivateKeys
	}
	if src.Environment != "" {
		dst.Environment = src.Environment
	}
	if src.KeyDirectoryURL != "" {
		dst.KeyDirectoryURL = src.KeyDirectoryURL
	}
	if src.KeyDirectoryFile != "" {
		dst.KeyDirectoryFile = src.KeyDirectoryFile
	}
	if src.Timeout != 0 {
		dst.Timeout = src.Timeout
	}
	if src.Retries != nil {
		dst.Retries = src.Retries
	}
	if src.DefaultKeyTTL != 0 {
		dst.DefaultKeyTTL = src.DefaultKeyTTL
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
}

// ApplyEnvOverrides applies PAYMENTDATA_* variables to cfg.
func ApplyEnvOverrides(cfg *Config) error {
	if v := env("PAYMENTDATA_RECIPIENT_ID"); v != "" {
		cfg.RecipientID = v
	}
	if v := env("PAYMENTDATA_PRIVATE_KEYS"); v != "" {
		var keys []string
		for _, k := range strings.Split(v, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
		cfg.PrivateKeys = keys
	}
	if v := env("PAYMENTDATA_ENVIRONMENT"); v != "" {
		cfg.Environment = v
	}
	if v := env("PAYMENTDATA_KEY_DIRECTORY_URL"); v != "" {
		cfg.KeyDirectoryURL = v
	}
	if v := env("PAYMENTDATA_KEY_DIRECTORY_FILE"); v != "" {
		cfg.KeyDirectoryFile = v
	}
	if v := env("PAYMENTDATA_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("PAYMENTDATA_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	if v := env("PAYMENTDATA_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PAYMENTDATA_RETRIES: %w", err)
		}
		cfg.Retries = &n
	}
	if v := env("PAYMENTDATA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

func env(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}

// Validate checks the settings needed to unseal tokens.
func (c Config) Validate() error {
	if strings.TrimSpace(c.RecipientID) == "" {
		return paymentdata.ErrMissingRecipientID
	}
	if len(c.PrivateKeys) == 0 {
		return paymentdata.ErrNoPrivateKeys
	}
	switch c.Environment {
	case EnvironmentProduction, EnvironmentTest:
	default:
		return fmt.Errorf("unknown environment %q", c.Environment)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelWarn, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return level, nil
}

// RecipientOptions translates the settings into recipient options.
func (c Config) RecipientOptions(logger *slog.Logger) ([]paymentdata.Option, error) {
	opts := []paymentdata.Option{paymentdata.WithLogger(logger)}

	if c.Environment == EnvironmentTest {
		opts = append(opts, paymentdata.WithTestEnvironment())
	}
	if c.KeyDirectoryURL != "" {
		opts = append(opts, paymentdata.WithKeyDirectoryURL(c.KeyDirectoryURL))
	}
	if c.KeyDirectoryFile != "" {
		data, err := os.ReadFile(c.KeyDirectoryFile)
		if err != nil {
			return nil, fmt.Errorf("read key directory: %w", err)
		}
		opts = append(opts, paymentdata.WithKeyDirectoryJSON(data))
	}
	if c.Timeout > 0 {
		opts = append(opts, paymentdata.WithTimeout(c.Timeout))
	}
	if c.Retries != nil {
		opts = append(opts, paymentdata.WithRetries(*c.Retries))
	}
	if c.DefaultKeyTTL > 0 {
		opts = append(opts, paymentdata.WithDefaultKeyTTL(c.DefaultKeyTTL))
	}
	return opts, nil
}
