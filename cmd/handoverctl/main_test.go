package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/handover/internal/config"
	"github.com/danmuck/handover/internal/orchestrator"
	"github.com/danmuck/handover/internal/testutil/testlog"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestEncodeSelectDecodesBack(t *testing.T) {
	testlog.Start(t)

	encoded, err := execute(t, "encode", "select", "--address", "AA:BB:CC:DD:EE:FF", "--power", "activating")
	if err != nil {
		t.Fatalf("encode select: %v", err)
	}
	out, err := execute(t, "decode", "-o", "yaml", strings.TrimSpace(encoded))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	var view decodeView
	if err := yaml.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("unmarshal yaml: %v\n%s", err, out)
	}
	if view.Kind != "select" || view.Bluetooth == nil || view.Bluetooth.Address != "AA:BB:CC:DD:EE:FF" {
		t.Fatalf("unexpected view: %+v", view)
	}
	if len(view.Carriers) != 1 || view.Carriers[0].PowerState != "activating" {
		t.Fatalf("unexpected carriers: %+v", view.Carriers)
	}
}

func TestEncodeRequestWithCollision(t *testing.T) {
	testlog.Start(t)

	encoded, err := execute(t, "encode", "request", "--address", "00:11:22:33:44:55", "--collision", "4660")
	if err != nil {
		t.Fatalf("encode request: %v", err)
	}
	raw, err := parseHex(encoded)
	if err != nil {
		t.Fatalf("parse hex: %v", err)
	}
	view, err := decodeHandover(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Kind != "request" || view.Collision == nil || *view.Collision != 0x1234 {
		t.Fatalf("unexpected view: %+v", view)
	}
}

func TestDecodeTextOutput(t *testing.T) {
	testlog.Start(t)

	out, err := execute(t, "decode", "91 02 0a 48 73 12 d1 02 04 61 63 01 01 30 00",
		"5a 20 08 01", "6170706c69636174696f6e2f766e642e626c7565746f6f74682e65702e6f6f62", "30 0800 ffeeddccbbaa")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, want := range []string{"kind", "select", "bluetooth.address", "AA:BB:CC:DD:EE:FF"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDecodeRejectsBadInput(t *testing.T) {
	testlog.Start(t)

	if _, err := execute(t, "decode", "zz"); err == nil {
		t.Fatalf("expected hex error")
	}
	if _, err := execute(t, "decode", "d1 01 01 54 00"); err == nil {
		t.Fatalf("expected handover error")
	}
	if _, err := execute(t, "encode", "select", "--address", "AA:BB"); err == nil {
		t.Fatalf("expected malformed address error")
	}
	if _, err := parsePowerState("sleepy"); err == nil {
		t.Fatalf("expected power state error")
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "engine.toml")

	if _, err := execute(t, "config", "init", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := execute(t, "config", "init", path); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
	out, err := execute(t, "config", "validate", path)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.HasPrefix(out, "ok:") {
		t.Fatalf("unexpected validate output: %q", out)
	}
}

func TestRunSimulationTransfers(t *testing.T) {
	testlog.Start(t)
	cfg := config.DefaultEngineConfig()
	cfg.RadioAddress = "00:11:22:33:44:55"
	cfg.CollisionSeed = 42

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := runSimulation(ctx, cfg, []byte("payload"))
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if c.Status != orchestrator.StatusSuccess || c.RequestID == "" || c.Session == "" {
		t.Fatalf("unexpected completion: %+v", c)
	}
}
