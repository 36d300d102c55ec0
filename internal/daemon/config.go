// Package daemon manages the cattime daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all daemon configuration.
type Config struct {
	API       APIConfig       `toml:"api"`
	Bot       BotConfig       `toml:"bot"`
	Season    SeasonConfig    `toml:"season"`
	Schedule  ScheduleConfig  `toml:"schedule"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Logging   LoggingConfig   `toml:"logging"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// BotConfig controls the Telegram transport. The token is never kept
// in the toml file; it comes from the environment (.env is honored).
type BotConfig struct {
	Enabled bool  `toml:"enabled"`
	ChatID  int64 `toml:"chat_id"` // shared group chat for announcements
	Debug   bool  `toml:"debug"`
}

// SeasonConfig controls the rank ladder.
type SeasonConfig struct {
	LengthMonths int `toml:"length_months"`
	PodiumSize   int `toml:"podium_size"`
}

// ScheduleConfig controls the daily jobs.
type ScheduleConfig struct {
	RolloverHour int `toml:"rollover_hour"` // local hour for season rollover
	DigestHour   int `toml:"digest_hour"`   // local hour for the daily digest
}

// TelemetryConfig controls metrics exposure.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Output string `toml:"output"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8090,
		},
		Bot: BotConfig{
			Enabled: false,
		},
		Season: SeasonConfig{
			LengthMonths: 3,
			PodiumSize:   3,
		},
		Schedule: ScheduleConfig{
			RolloverHour: 0,
			DigestHour:   21,
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// LoadConfig reads config from $CATTIME_HOME/config.toml, falling back
// to defaults. A .env file in the working directory is loaded first so
// CATTIME_BOT_TOKEN can live there during development.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	path := filepath.Join(Home(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Season.LengthMonths <= 0 {
		cfg.Season.LengthMonths = 3
	}
	if cfg.Season.PodiumSize <= 0 {
		cfg.Season.PodiumSize = 3
	}

	return cfg, nil
}

// SaveConfig writes the config to $CATTIME_HOME/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(Home(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// BotToken returns the Telegram token from the environment.
func BotToken() string {
	return os.Getenv("CATTIME_BOT_TOKEN")
}

// Home returns the cattime data directory.
func Home() string {
	if env := os.Getenv("CATTIME_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cattime")
}
