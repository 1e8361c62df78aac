package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
)

type Config struct {
	LogLevel   string           `json:"log_level"`
	Server     ServerConfig     `json:"server"`
	Relay      RelayConfig      `json:"relay"`
	Recordings RecordingsConfig `json:"recordings"`
}

// ServerConfig controls the optional localhost HTTP API.
type ServerConfig struct {
	Enabled bool   `json:"enabled"`
	Address string `json:"address"`
}

// RelayConfig controls the translation-API relay endpoint.
type RelayConfig struct {
	AllowedHosts   []string `json:"allowed_hosts"`
	TimeoutSeconds int      `json:"timeout_seconds"`
}

// RecordingsConfig controls where saved recordings land on disk.
type RecordingsConfig struct {
	Dir string `json:"dir"`
}

// Load reads the config from disk or returns defaults
func Load() (*Config, error) {
	path := configPath()

	cfg := &Config{
		LogLevel: "info",
		Server: ServerConfig{
			Enabled: true,
			Address: "127.0.0.1:4829",
		},
		Relay: RelayConfig{
			AllowedHosts:   []string{"api-free.deepl.com", "api.deepl.com"},
			TimeoutSeconds: 30,
		},
		Recordings: RecordingsConfig{
			Dir: defaultRecordingsDir(),
		},
	}

	// Load existing config if it exists
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path := configPath()

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// configPath returns the platform-specific config file path
func configPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("APPDATA")
	default: // linux
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.config"
		}
	}

	return filepath.Join(base, "voicetray", "config.json")
}

// defaultRecordingsDir returns the platform-specific directory saved
// recordings default to.
func defaultRecordingsDir() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("LOCALAPPDATA")
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.local/share"
		}
	}

	return filepath.Join(base, "voicetray", "recordings")
}
