package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/handover/internal/protocol/handover"
	"github.com/danmuck/handover/internal/testutil/testlog"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadEngineConfigTemplate(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "engine.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := LoadEngineConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.RadioAddress != "00:11:22:33:44:55" {
		t.Fatalf("unexpected radio address: %q", cfg.RadioAddress)
	}
	if cfg.ReplyTimeout != 30*time.Second {
		t.Fatalf("unexpected reply timeout: %v", cfg.ReplyTimeout)
	}
	if cfg.EnableSetting != DefaultEnableSetting {
		t.Fatalf("unexpected enable setting: %q", cfg.EnableSetting)
	}
	if !cfg.MetricsEnabled || cfg.LogLevel != "info" {
		t.Fatalf("unexpected log/metrics: %+v", cfg)
	}
}

func TestLoadEngineConfigKeepsDefaultsForMissingKeys(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, "radio_address = \"aa:bb:cc:dd:ee:ff\"\n[log]\nlevel = \"debug\"\n")
	cfg, err := LoadEngineConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	def := DefaultEngineConfig()
	if cfg.DeviceName != def.DeviceName || cfg.EnableSetting != def.EnableSetting {
		t.Fatalf("expected defaults preserved: %+v", cfg)
	}
	if cfg.ReplyTimeout != 0 || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
}

func TestLoadEngineConfigRejectsBadValues(t *testing.T) {
	testlog.Start(t)
	cases := map[string]string{
		"bad address":  "radio_address = \"not-an-address\"\n",
		"bad duration": "radio_address = \"aa:bb:cc:dd:ee:ff\"\nreply_timeout = \"soon\"\n",
		"unknown key":  "radio_address = \"aa:bb:cc:dd:ee:ff\"\nmystery = 1\n",
		"empty name":   "radio_address = \"aa:bb:cc:dd:ee:ff\"\ndevice_name = \" \"\n",
	}
	for name, body := range cases {
		if _, err := LoadEngineConfig(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	_, err := LoadEngineConfig(writeConfig(t, "radio_address = \"zz\"\n"))
	if !errors.Is(err, handover.ErrMalformedAddress) {
		t.Fatalf("expected ErrMalformedAddress, got %v", err)
	}
}

func TestWriteTemplateRefusesOverwrite(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, "existing = true\n")
	err := WriteTemplate(path, false)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected already exists error, got %v", err)
	}
	if err := WriteTemplate(path, true); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestOrchestratorConfig(t *testing.T) {
	c := DefaultEngineConfig()
	c.ReplyTimeout = 30 * time.Second
	c.CollisionSeed = 7
	c.MetricsEnabled = false

	got := OrchestratorConfig(c)
	if got.EnableSetting != DefaultEnableSetting || got.ReplyTimeout != 30*time.Second || got.CollisionSeed != 7 || got.Metrics {
		t.Fatalf("unexpected orchestrator config: %+v", got)
	}
}
