//nolint:goconst // test cases intentionally repeat strings for readability
package config

import "testing"

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.Playback.StreamingQuality != "high" {
		t.Errorf("streaming quality = %q, want high", cfg.Playback.StreamingQuality)
	}
	if cfg.Playback.Speed != 1.0 {
		t.Errorf("speed = %v, want 1.0", cfg.Playback.Speed)
	}
	if cfg.Downloads.Quality != "high" {
		t.Errorf("downloads quality = %q, want high (inherits streaming)", cfg.Downloads.Quality)
	}
	if cfg.Downloads.MaxConcurrency != 2 {
		t.Errorf("max concurrency = %d, want 2", cfg.Downloads.MaxConcurrency)
	}
	if cfg.Theme != "system" {
		t.Errorf("theme = %q, want system", cfg.Theme)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q, want info", cfg.LogLevel)
	}
	if cfg.AutoDownloadOnWifi() {
		t.Error("auto download should default to false")
	}
}

func TestApplyDefaults_ServerURLTrailingSlash(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "adds trailing slash", url: "https://music.example.com", want: "https://music.example.com/"},
		{name: "keeps existing slash", url: "https://music.example.com/", want: "https://music.example.com/"},
		{name: "empty stays empty", url: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Server: ServerConfig{URL: tt.url}}
			cfg.applyDefaults()
			if cfg.Server.URL != tt.want {
				t.Errorf("url = %q, want %q", cfg.Server.URL, tt.want)
			}
		})
	}
}

func TestValidate_Quality(t *testing.T) {
	cfg := &Config{Playback: PlaybackConfig{StreamingQuality: "ultra"}}
	cfg.applyDefaults()
	if err := cfg.validate(); err == nil {
		t.Error("expected error for invalid streaming quality")
	}

	cfg = &Config{Playback: PlaybackConfig{StreamingQuality: "lossless"}}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConfigPaths(t *testing.T) {
	paths := configPaths()

	if len(paths) == 0 {
		t.Fatal("configPaths() returned empty slice")
	}
	if last := paths[len(paths)-1]; last != "config.toml" {
		t.Errorf("last config path = %q, want config.toml", last)
	}
}

func TestHasServer(t *testing.T) {
	cfg := &Config{}
	if cfg.HasServer() {
		t.Error("HasServer() should be false without URL")
	}
	cfg.Server.URL = "https://music.example.com/"
	if !cfg.HasServer() {
		t.Error("HasServer() should be true with URL")
	}
}
