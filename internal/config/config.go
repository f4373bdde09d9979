// Package config loads issueflow's application settings. Values come from,
// in increasing precedence: built-in defaults, an optional YAML file,
// ISSUEFLOW_* environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FileName is the config file looked up in the working directory.
const FileName = "issueflow.yaml"

// EnvPrefix prefixes every environment override, e.g. ISSUEFLOW_HTTP_ADDR.
const EnvPrefix = "ISSUEFLOW"

// Config holds all application settings.
type Config struct {
	DBPath      string
	BusyTimeout time.Duration

	HTTP HTTPConfig
	Log  LogConfig

	// WatchFile is a project config file to re-import on change while
	// serving. Empty disables the watcher.
	WatchFile     string
	WatchProject  string
	WatchDebounce time.Duration

	// Source is the config file that was read, empty when none was found.
	Source string
}

type HTTPConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"db":         "db",
	"addr":       "http.addr",
	"log-level":  "log.level",
	"log-format": "log.format",
	"log-file":   "log.file",
	"watch":      "config.watch",
	"project":    "config.project",
}

// DefaultDBPath is ~/.issueflow/issueflow.db, or a file in the working
// directory when no home directory is available.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "issueflow.db"
	}
	return filepath.Join(home, ".issueflow", "issueflow.db")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db", DefaultDBPath())
	v.SetDefault("busy-timeout", "5s")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown-timeout", "10s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max-size", 50)
	v.SetDefault("log.max-backups", 3)
	v.SetDefault("log.max-age", 28)
	v.SetDefault("config.watch", "")
	v.SetDefault("config.project", "")
	v.SetDefault("config.debounce", "300ms")
}

// Load builds the configuration. configFile, when non-empty, must exist;
// otherwise issueflow.yaml in the working directory and then
// ~/.issueflow/config.yaml are tried. flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if configFile == "" {
		configFile = locateConfigFile()
	} else if _, err := os.Stat(configFile); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	if configFile != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		DBPath:      v.GetString("db"),
		BusyTimeout: v.GetDuration("busy-timeout"),
		HTTP: HTTPConfig{
			Addr:            v.GetString("http.addr"),
			ShutdownTimeout: v.GetDuration("http.shutdown-timeout"),
		},
		Log: LogConfig{
			Level:      v.GetString("log.level"),
			Format:     v.GetString("log.format"),
			File:       v.GetString("log.file"),
			MaxSizeMB:  v.GetInt("log.max-size"),
			MaxBackups: v.GetInt("log.max-backups"),
			MaxAgeDays: v.GetInt("log.max-age"),
		},
		WatchFile:     v.GetString("config.watch"),
		WatchProject:  v.GetString("config.project"),
		WatchDebounce: v.GetDuration("config.debounce"),
		Source:        v.ConfigFileUsed(),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings that would only fail later at startup.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("db path is empty"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q: want text or json", c.Log.Format))
	}
	if c.WatchFile != "" && c.WatchDebounce <= 0 {
		errs = append(errs, fmt.Errorf("config.debounce must be positive, got %s", c.WatchDebounce))
	}
	return errors.Join(errs...)
}

func locateConfigFile() string {
	if cwd, err := os.Getwd(); err == nil {
		path := filepath.Join(cwd, FileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".issueflow", "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
