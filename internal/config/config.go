package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Defaults for every configurable value.
const (
	DefaultListen      = ":8080"
	DefaultDocRoot     = "."
	DefaultFallbackDir = "www"
	DefaultServerName  = "tinywebd (very own server)"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
)

// Config is the complete tinywebd configuration.
type Config struct {
	Listen            string        `mapstructure:"listen"`
	DocRoot           string        `mapstructure:"doc_root"`
	FallbackDir       string        `mapstructure:"fallback_dir"`
	ServerName        string        `mapstructure:"server_name"`
	RestrictTraversal bool          `mapstructure:"restrict_traversal"`
	Logging           LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Listen:      DefaultListen,
		DocRoot:     DefaultDocRoot,
		FallbackDir: DefaultFallbackDir,
		ServerName:  DefaultServerName,
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// flagKeys maps config keys to the CLI flags that override them.
var flagKeys = map[string]string{
	"listen":             "listen",
	"doc_root":           "root",
	"fallback_dir":       "fallback-dir",
	"server_name":        "server-name",
	"restrict_traversal": "restrict-traversal",
	"logging.level":      "log-level",
	"logging.format":     "log-format",
}

// Load reads tinywebd.yaml from dir (or the current directory when dir is
// empty) and overlays any set CLI flags. Precedence: flags > file > defaults.
// A missing config file is not an error; the defaults apply.
func Load(dir string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("listen", DefaultListen)
	v.SetDefault("doc_root", DefaultDocRoot)
	v.SetDefault("fallback_dir", DefaultFallbackDir)
	v.SetDefault("server_name", DefaultServerName)
	v.SetDefault("restrict_traversal", false)
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)

	v.SetConfigName("tinywebd")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	} else {
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values the server cannot start with.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return &Error{Field: "listen", Message: "listen address must not be empty"}
	}
	info, err := os.Stat(c.DocRoot)
	if err != nil {
		return &Error{Field: "doc_root", Message: fmt.Sprintf("document root %q is not accessible", c.DocRoot)}
	}
	if !info.IsDir() {
		return &Error{Field: "doc_root", Message: fmt.Sprintf("document root %q is not a directory", c.DocRoot)}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &Error{Field: "logging.level", Message: fmt.Sprintf("unknown log level %q", c.Logging.Level)}
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return &Error{Field: "logging.format", Message: fmt.Sprintf("unknown log format %q", c.Logging.Format)}
	}
	return nil
}

// Error represents a configuration error.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
