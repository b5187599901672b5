package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all latchkey configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	MQTT    MQTTConfig    `toml:"mqtt"`
	Tracker TrackerConfig `toml:"tracker"`
	Notify  NotifyConfig  `toml:"notify"`
}

type ServerConfig struct {
	Bind string `toml:"bind"`
	Port int    `toml:"port"`
}

type StorageConfig struct {
	Backend string `toml:"backend"` // "sqlite" or "file"
	Path    string `toml:"path"`    // sqlite database path
	Dir     string `toml:"dir"`     // file backend state directory
}

type MQTTConfig struct {
	Enabled  bool   `toml:"enabled"`
	Broker   string `toml:"broker"`
	Topic    string `toml:"topic"`
	ClientID string `toml:"client_id"`
}

type TrackerConfig struct {
	ExitRoom           string `toml:"exit_room"`
	ExitTimeoutSeconds int    `toml:"exit_timeout_seconds"`
	CooldownSeconds    int    `toml:"cooldown_seconds"`
}

type NotifyConfig struct {
	WebhookURL string `toml:"webhook_url"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37877,
		},
		Storage: StorageConfig{
			Backend: "sqlite",
			Path:    "", // resolved at runtime via store.DefaultDBPath()
		},
		MQTT: MQTTConfig{
			Enabled:  false,
			Broker:   "tcp://localhost:1883",
			Topic:    "ble/#",
			ClientID: "latchkey",
		},
		Tracker: TrackerConfig{
			ExitRoom:           "Front Door",
			ExitTimeoutSeconds: 20,
			CooldownSeconds:    5,
		},
		Notify: NotifyConfig{},
	}
}

// DefaultPath returns the default config path: ~/.latchkey/config.toml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".latchkey", "config.toml"), nil
}

// Load reads a TOML config file on top of the defaults. A missing file is not
// an error: the daemon runs fine on defaults alone.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
