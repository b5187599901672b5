package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Tracker.ExitRoom != "Front Door" {
		t.Errorf("exit room = %q, want Front Door", cfg.Tracker.ExitRoom)
	}
	if cfg.Tracker.ExitTimeoutSeconds != 20 {
		t.Errorf("exit timeout = %d, want 20", cfg.Tracker.ExitTimeoutSeconds)
	}
	if cfg.Tracker.CooldownSeconds != 5 {
		t.Errorf("cooldown = %d, want 5", cfg.Tracker.CooldownSeconds)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("backend = %q, want sqlite", cfg.Storage.Backend)
	}
	if cfg.MQTT.Topic != "ble/#" {
		t.Errorf("topic = %q, want ble/#", cfg.MQTT.Topic)
	}
	if cfg.ListenAddr() != "127.0.0.1:37877" {
		t.Errorf("listen addr = %q", cfg.ListenAddr())
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Tracker.ExitRoom != "Front Door" {
		t.Errorf("exit room = %q, want default", cfg.Tracker.ExitRoom)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	raw := `
[server]
port = 9999

[storage]
backend = "file"
dir = "/tmp/latchkey-state"

[tracker]
exit_room = "Hallway"
exit_timeout_seconds = 45

[mqtt]
enabled = true
broker = "tcp://hub:1883"
`
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Server.Bind != "127.0.0.1" {
		t.Errorf("bind = %q, want default kept", cfg.Server.Bind)
	}
	if cfg.Storage.Backend != "file" || cfg.Storage.Dir != "/tmp/latchkey-state" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Tracker.ExitRoom != "Hallway" || cfg.Tracker.ExitTimeoutSeconds != 45 {
		t.Errorf("tracker = %+v", cfg.Tracker)
	}
	if cfg.Tracker.CooldownSeconds != 5 {
		t.Errorf("cooldown = %d, want default kept", cfg.Tracker.CooldownSeconds)
	}
	if !cfg.MQTT.Enabled || cfg.MQTT.Broker != "tcp://hub:1883" {
		t.Errorf("mqtt = %+v", cfg.MQTT)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server\nport ="), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}
