package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/5hells/icm/internal/testutil/testlog"
)

func TestParseFlags(t *testing.T) {
	opts, help, err := parseFlags([]string{"--config", "a.toml", "--socket", "/tmp/x.sock", "--metrics-addr", ":9000"})
	if err != nil || help {
		t.Fatalf("parse: help=%v err=%v", help, err)
	}
	if opts.configPath != "a.toml" || opts.socket != "/tmp/x.sock" || opts.metricsAddr != ":9000" {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if _, _, err := parseFlags([]string{"stray"}); err == nil {
		t.Fatalf("expected error for positional argument")
	}
	if _, help, _ := parseFlags([]string{"--help"}); !help {
		t.Fatalf("expected help")
	}
}

func TestLoadConfigExampleAndOverrides(t *testing.T) {
	testlog.Start(t)
	cfg, err := loadConfig(options{configPath: "ex.config.toml"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Socket != "/tmp/icm-example.sock" {
		t.Fatalf("unexpected socket %q", cfg.Socket)
	}
	if cfg.Session.WriteTimeout != 2*time.Second || cfg.ConnectAttempts != 3 {
		t.Fatalf("unexpected session: %+v attempts=%d", cfg.Session, cfg.ConnectAttempts)
	}
	if cfg.Server.Launch || cfg.Server.FrameRate != 500 || cfg.Server.FrameBurst != 64 {
		t.Fatalf("unexpected server: %+v", cfg.Server)
	}
	if len(cfg.Server.Monitors) != 2 || cfg.Server.Monitors[1].Scale != 1.25 || cfg.Server.Monitors[0].Scale != 1 {
		t.Fatalf("unexpected monitors: %+v", cfg.Server.Monitors)
	}

	cfg, err = loadConfig(options{configPath: "ex.config.toml", socket: "/tmp/other.sock", metricsAddr: ":1"})
	if err != nil {
		t.Fatalf("load with overrides: %v", err)
	}
	if cfg.Socket != "/tmp/other.sock" || cfg.Server.MetricsAddr != ":1" {
		t.Fatalf("flags did not override: socket=%q metrics=%q", cfg.Socket, cfg.Server.MetricsAddr)
	}
}

func TestLoadConfigWithoutFileUsesDefaults(t *testing.T) {
	t.Setenv("ICM_SOCKET", "/tmp/env.sock")
	cfg, err := loadConfig(options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Socket != "/tmp/env.sock" {
		t.Fatalf("unexpected socket %q", cfg.Socket)
	}
	if len(cfg.Server.Monitors) != 1 {
		t.Fatalf("expected default monitor, got %d", len(cfg.Server.Monitors))
	}
}

func TestReloadLogLevel(t *testing.T) {
	testlog.Start(t)
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	path := filepath.Join(t.TempDir(), "icmd.toml")
	if err := os.WriteFile(path, []byte("socket = \"/tmp/r.sock\"\n[log]\nlevel = \"error\"\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	reloadLogLevel(path, zerolog.Nop())
	if zerolog.GlobalLevel() != zerolog.ErrorLevel {
		t.Fatalf("expected error level, got %s", zerolog.GlobalLevel())
	}

	if err := os.WriteFile(path, []byte("[log]\nlevel = \"loud\"\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	reloadLogLevel(path, zerolog.Nop())
	if zerolog.GlobalLevel() != zerolog.ErrorLevel {
		t.Fatalf("invalid reload must keep level, got %s", zerolog.GlobalLevel())
	}
}

func TestWriteConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "icmd.toml")
	if err := run([]string{"--write-config", path}); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("template missing: %v", err)
	}
	if err := run([]string{"--write-config", path}); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
	if err := run([]string{"--write-config", path, "--force"}); err != nil {
		t.Fatalf("forced overwrite: %v", err)
	}
}
