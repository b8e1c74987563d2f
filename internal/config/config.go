package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all medtick configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Clock    ClockConfig    `koanf:"clock"`
	Notify   NotifyConfig   `koanf:"notify"`
}

type ServerConfig struct {
	Bind string `koanf:"bind"`
	Port int    `koanf:"port"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

type ClockConfig struct {
	IntervalSeconds int `koanf:"interval_seconds"`
}

type NotifyConfig struct {
	FeedSize int            `koanf:"feed_size"`
	Telegram TelegramConfig `koanf:"telegram"`
	Sound    SoundConfig    `koanf:"sound"`
	Haptic   HapticConfig   `koanf:"haptic"`
}

type TelegramConfig struct {
	BotToken string `koanf:"bot_token"`
	ChatID   string `koanf:"chat_id"`
}

type SoundConfig struct {
	Command string `koanf:"command"` // player binary, e.g. "paplay"
	File    string `koanf:"file"`
}

type HapticConfig struct {
	Command string   `koanf:"command"` // empty means no haptic capability
	Args    []string `koanf:"args"`
}

// DefaultConfigPath returns ~/.medtick/config.yaml.
func DefaultConfigPath() string {
	return "~/.medtick/config.yaml"
}

// Load builds the configuration from defaults, an optional YAML file,
// and MEDTICK_ environment overrides (MEDTICK_SERVER_PORT=9000 sets
// server.port).
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath == "" {
		configPath = DefaultConfigPath()
	}
	configPath = expandPath(configPath)
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("MEDTICK_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "MEDTICK_")), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	// Underscored keys don't survive the env mapping above; handle the
	// telegram credentials explicitly.
	if tok := os.Getenv("MEDTICK_TELEGRAM_BOT_TOKEN"); tok != "" {
		k.Set("notify.telegram.bot_token", tok)
	}
	if id := os.Getenv("MEDTICK_TELEGRAM_CHAT_ID"); id != "" {
		k.Set("notify.telegram.chat_id", id)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Database.Path = expandPath(cfg.Database.Path)
	return &cfg, nil
}

// Validate checks for values that cannot be worked around at runtime.
func (c *Config) Validate() error {
	if c.Clock.IntervalSeconds <= 0 {
		return fmt.Errorf("clock interval must be positive, got %d", c.Clock.IntervalSeconds)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
