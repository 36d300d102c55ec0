package daemon

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.Host != "127.0.0.1" || cfg.API.Port != 8090 {
		t.Errorf("api = %+v, want 127.0.0.1:8090", cfg.API)
	}
	if cfg.Bot.Enabled {
		t.Error("bot enabled by default")
	}
	if cfg.Season.LengthMonths != 3 || cfg.Season.PodiumSize != 3 {
		t.Errorf("season = %+v, want 3 months, podium of 3", cfg.Season)
	}
	if cfg.Schedule.RolloverHour != 0 || cfg.Schedule.DigestHour != 21 {
		t.Errorf("schedule = %+v, want rollover at 0, digest at 21", cfg.Schedule)
	}
	if !cfg.Telemetry.Prometheus {
		t.Error("prometheus disabled by default")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v, want info/json", cfg.Logging)
	}
}

func TestLoadConfig_MissingFileFallsBack(t *testing.T) {
	t.Setenv("CATTIME_HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("CATTIME_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.API.Port = 9999
	cfg.Bot.Enabled = true
	cfg.Bot.ChatID = -100123
	cfg.Season.LengthMonths = 6
	cfg.Schedule.DigestHour = 20
	cfg.Logging.Level = "debug"

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if loaded != cfg {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}
}

func TestLoadConfig_FloorsSeasonValues(t *testing.T) {
	home := t.TempDir()
	t.Setenv("CATTIME_HOME", home)

	toml := "[season]\nlength_months = 0\npodium_size = -1\n"
	if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte(toml), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Season.LengthMonths != 3 || cfg.Season.PodiumSize != 3 {
		t.Errorf("season = %+v, want floored to 3/3", cfg.Season)
	}
}

func TestHome_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CATTIME_HOME", dir)
	if Home() != dir {
		t.Errorf("Home() = %q, want %q", Home(), dir)
	}
}
