// Package config loads the chat server settings from the environment and an
// optional dotenv file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr          string        `env:"CHAT_ADDR" envDefault:"0.0.0.0:3000"`
	MetricsAddr   string        `env:"CHAT_METRICS_ADDR" envDefault:":9090"`
	LogLevel      string        `env:"CHAT_LOG_LEVEL" envDefault:"info"`
	LogFormat     string        `env:"CHAT_LOG_FORMAT" envDefault:"json"`
	MailboxSize   int           `env:"CHAT_MAILBOX_SIZE" envDefault:"128"`
	MaxLineLength int           `env:"CHAT_MAX_LINE_LENGTH" envDefault:"8192"`
	WriteTimeout  time.Duration `env:"CHAT_WRITE_TIMEOUT" envDefault:"10s"`
}

// Load reads envFile into the process environment when it exists, without
// overriding variables that are already set, then parses Config from the
// environment.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("listen address is required")
	}
	if c.MailboxSize <= 0 {
		return fmt.Errorf("mailbox size must be positive, got %d", c.MailboxSize)
	}
	if c.MaxLineLength <= 0 {
		return fmt.Errorf("max line length must be positive, got %d", c.MaxLineLength)
	}
	if c.WriteTimeout < 0 {
		return fmt.Errorf("write timeout must not be negative, got %s", c.WriteTimeout)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// Logger builds the process logger described by LogLevel and LogFormat.
func (c Config) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return slog.New(slog.NewJSONHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}
