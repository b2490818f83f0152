package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	PlatformTelegram = "telegram"
	PlatformDiscord  = "discord"
)

type Config struct {
	Platform    string `env:"BOT_PLATFORM" envDefault:"telegram"`
	BotToken    string `env:"BOT_TOKEN"`
	TargetID    string `env:"BOT_TARGET_ID"`
	DBPath      string `env:"DB_PATH" envDefault:"./data/bot.db"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	MetricsAddr string `env:"METRICS_ADDR"`
	DiceSeed    int64  `env:"DICE_SEED"`
}

// ConfigError means the process cannot start with the given environment.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Msg)
}

// LoadConfig reads a .env file when present and then the process environment.
// It does not require a token; call Validate before connecting to a platform.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.Platform = strings.ToLower(strings.TrimSpace(cfg.Platform))
	return cfg, nil
}

// Validate checks what serve needs: a credential, a known platform and a
// well-formed target.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BotToken) == "" {
		return &ConfigError{Field: "BOT_TOKEN", Msg: "is not set (check your .env)"}
	}

	switch c.Platform {
	case PlatformTelegram:
		if c.TargetID != "" {
			if _, err := c.TelegramChatID(); err != nil {
				return &ConfigError{Field: "BOT_TARGET_ID", Msg: "must be a numeric chat id"}
			}
		}
	case PlatformDiscord:
	default:
		return &ConfigError{Field: "BOT_PLATFORM", Msg: fmt.Sprintf("unknown platform %q", c.Platform)}
	}
	return nil
}

// TelegramChatID parses TargetID as a Telegram chat id.
func (c *Config) TelegramChatID() (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(c.TargetID), 10, 64)
}
