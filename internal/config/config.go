// Package config resolves settings from the config file, PEADZ_*
// environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/metcalfc/peadz/internal/catalog"
	"github.com/metcalfc/peadz/internal/state"
)

// Config is the effective configuration.
type Config struct {
	DataDir       string            `yaml:"data_dir"`
	StateDir      string            `yaml:"state_dir"`
	DefaultFolder string            `yaml:"default_folder"`
	BookMode      bool              `yaml:"book_mode"`
	MarksBackend  state.Backend     `yaml:"marks_backend"`
	MarkKey       state.KeyStrategy `yaml:"mark_key"`
	LogLevel      string            `yaml:"log_level"`
	LogFile       string            `yaml:"log_file"`
	ConfigFile    string            `yaml:"config_file,omitempty"`
}

// Load reads cfgFile, or ~/.config/peadz/config.yaml when cfgFile is empty.
// A missing default config file is not an error.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(defaultConfigDir())
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("PEADZ")
	v.AutomaticEnv()

	v.SetDefault("data_dir", catalog.Dir())
	v.SetDefault("state_dir", state.Dir())
	v.SetDefault("default_folder", "Unfiled")
	v.SetDefault("book_mode", true)
	v.SetDefault("marks_backend", string(state.BackendJSON))
	v.SetDefault("mark_key", string(state.KeyBaseName))
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_file", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	keyStrategy, err := state.ParseKeyStrategy(v.GetString("mark_key"))
	if err != nil {
		return nil, err
	}
	backend := state.Backend(v.GetString("marks_backend"))
	switch backend {
	case state.BackendJSON, state.BackendBadger, state.BackendPreferences:
	default:
		return nil, fmt.Errorf("unknown marks_backend %q (want json, badger or preferences)", backend)
	}
	if _, err := logrus.ParseLevel(v.GetString("log_level")); err != nil {
		return nil, err
	}

	return &Config{
		DataDir:       v.GetString("data_dir"),
		StateDir:      v.GetString("state_dir"),
		DefaultFolder: v.GetString("default_folder"),
		BookMode:      v.GetBool("book_mode"),
		MarksBackend:  backend,
		MarkKey:       keyStrategy,
		LogLevel:      v.GetString("log_level"),
		LogFile:       v.GetString("log_file"),
		ConfigFile:    v.ConfigFileUsed(),
	}, nil
}

func defaultConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "peadz")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "peadz")
}

// CatalogPath is the library file inside DataDir.
func (c *Config) CatalogPath() string {
	return filepath.Join(c.DataDir, catalog.FileName)
}

// NewLogger builds the application logger. Output goes to LogFile when set,
// else to fallback. The returned closer releases the log file.
func (c *Config) NewLogger(fallback io.Writer) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logger.SetLevel(level)

	if c.LogFile == "" {
		logger.SetOutput(fallback)
		return logger, io.NopCloser(nil), nil
	}

	f, err := OpenLogFile(c.LogFile)
	if err != nil {
		return nil, nil, err
	}
	logger.SetOutput(f)
	return logger, f, nil
}

// OpenLogFile opens path for appending, creating parent dirs.
func OpenLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
