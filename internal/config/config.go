package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/handover/internal/protocol/handover"
)

// DefaultEnableSetting is the settings key that turns the secondary radio on.
const DefaultEnableSetting = "bluetooth.enabled"

// EngineConfig configures one handover engine instance.
type EngineConfig struct {
	DeviceName     string
	RadioAddress   string
	RadioEnabled   bool
	EnableSetting  string
	ReplyTimeout   time.Duration
	CollisionSeed  uint64
	LogLevel       string
	MetricsEnabled bool
}

type fileConfig struct {
	DeviceName    string `toml:"device_name"`
	RadioAddress  string `toml:"radio_address"`
	RadioEnabled  bool   `toml:"radio_enabled"`
	EnableSetting string `toml:"enable_setting"`
	ReplyTimeout  string `toml:"reply_timeout"`
	CollisionSeed uint64 `toml:"collision_seed"`
	Log           struct {
		Level string `toml:"level"`
	} `toml:"log"`
	Metrics struct {
		Enabled bool `toml:"enabled"`
	} `toml:"metrics"`
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		DeviceName:     "handover.local",
		RadioAddress:   "00:00:00:00:00:00",
		RadioEnabled:   false,
		EnableSetting:  DefaultEnableSetting,
		ReplyTimeout:   0,
		LogLevel:       "info",
		MetricsEnabled: true,
	}
}

// LoadEngineConfig overlays the keys defined in path onto the defaults.
func LoadEngineConfig(path string) (EngineConfig, error) {
	cfg := DefaultEngineConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return EngineConfig{}, fmt.Errorf("config parse failed (%s): unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("device_name") {
		cfg.DeviceName = strings.TrimSpace(raw.DeviceName)
	}
	if meta.IsDefined("radio_address") {
		cfg.RadioAddress = strings.TrimSpace(raw.RadioAddress)
	}
	if meta.IsDefined("radio_enabled") {
		cfg.RadioEnabled = raw.RadioEnabled
	}
	if meta.IsDefined("enable_setting") {
		cfg.EnableSetting = strings.TrimSpace(raw.EnableSetting)
	}
	if meta.IsDefined("reply_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ReplyTimeout))
		if err != nil {
			return EngineConfig{}, fmt.Errorf("parse reply_timeout: %w", err)
		}
		cfg.ReplyTimeout = d
	}
	if meta.IsDefined("collision_seed") {
		cfg.CollisionSeed = raw.CollisionSeed
	}
	if meta.IsDefined("log", "level") {
		cfg.LogLevel = strings.TrimSpace(raw.Log.Level)
	}
	if meta.IsDefined("metrics", "enabled") {
		cfg.MetricsEnabled = raw.Metrics.Enabled
	}

	if err := cfg.Validate(); err != nil {
		return EngineConfig{}, err
	}
	return cfg, nil
}

func (c EngineConfig) Validate() error {
	if strings.TrimSpace(c.DeviceName) == "" {
		return fmt.Errorf("engine config missing device_name")
	}
	if _, err := handover.ParseAddress(c.RadioAddress); err != nil {
		return fmt.Errorf("engine config radio_address: %w", err)
	}
	if strings.TrimSpace(c.EnableSetting) == "" {
		return fmt.Errorf("engine config missing enable_setting")
	}
	if c.ReplyTimeout < 0 {
		return fmt.Errorf("engine config reply_timeout must not be negative")
	}
	return nil
}
