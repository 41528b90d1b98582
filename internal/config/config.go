package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	// Server holds the remote catalog server settings.
	Server ServerConfig `koanf:"server"`

	// Playback holds local playback settings.
	Playback PlaybackConfig `koanf:"playback"`

	// Downloads holds offline download settings.
	Downloads DownloadsConfig `koanf:"downloads"`

	Theme    string `koanf:"theme"`     // "dark", "light", or "system"
	LogLevel string `koanf:"log_level"` // logrus level name (default: "info")
}

// ServerConfig holds the remote server connection settings.
type ServerConfig struct {
	URL      string `koanf:"url"`      // e.g. "https://music.example.com/"
	Username string `koanf:"username"` // prefilled login hint, never the password
}

// PlaybackConfig holds playback settings.
type PlaybackConfig struct {
	StreamingQuality string  `koanf:"streaming_quality"` // "low", "high", "lossless"
	Speed            float64 `koanf:"speed"`             // initial playback speed (default: 1.0)
}

// DownloadsConfig holds offline download settings.
type DownloadsConfig struct {
	Quality        string `koanf:"quality"`      // "low", "high", "lossless"
	AutoOnWifi     *bool  `koanf:"auto_on_wifi"` // auto-download liked songs on wifi (default: false)
	MaxConcurrency int    `koanf:"max_concurrency"`
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range configPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	// The base URL always carries a trailing slash so stream and cover
	// paths can be appended directly.
	if c.Server.URL != "" && !strings.HasSuffix(c.Server.URL, "/") {
		c.Server.URL += "/"
	}
	if c.Playback.StreamingQuality == "" {
		c.Playback.StreamingQuality = "high"
	}
	if c.Playback.Speed <= 0 {
		c.Playback.Speed = 1.0
	}
	if c.Downloads.Quality == "" {
		c.Downloads.Quality = c.Playback.StreamingQuality
	}
	if c.Downloads.MaxConcurrency <= 0 {
		c.Downloads.MaxConcurrency = 2
	}
	if c.Theme == "" {
		c.Theme = "system"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) validate() error {
	switch c.Playback.StreamingQuality {
	case "low", "high", "lossless":
	default:
		return fmt.Errorf("invalid streaming_quality %q", c.Playback.StreamingQuality)
	}
	switch c.Downloads.Quality {
	case "low", "high", "lossless":
	default:
		return fmt.Errorf("invalid downloads quality %q", c.Downloads.Quality)
	}
	return nil
}

func configPaths() []string {
	paths := []string{}

	// 1. ~/.config/cadence/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "cadence", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

// HasServer returns true if a remote server is configured.
func (c *Config) HasServer() bool {
	return c.Server.URL != ""
}

// AutoDownloadOnWifi returns the auto-download setting with its default applied.
func (c *Config) AutoDownloadOnWifi() bool {
	if c.Downloads.AutoOnWifi == nil {
		return false
	}
	return *c.Downloads.AutoOnWifi
}
