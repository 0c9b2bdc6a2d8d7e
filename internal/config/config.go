package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/5hells/icm/internal/logging"
	"github.com/5hells/icm/internal/protocol"
	"github.com/5hells/icm/internal/protocol/session"
)

const (
	EnvSocket      = "ICM_SOCKET"
	DefaultSocket  = "icm.sock"
	fallbackSocket = "/tmp/icm.sock"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Socket          string
	Log             LogConfig
	Session         session.Config
	ConnectAttempts int
	Server          ServerConfig
}

type LogConfig struct {
	Level string
	JSON  bool
}

type ServerConfig struct {
	MetricsAddr string
	// FrameRate limits inbound frames per second per connection; zero
	// disables limiting.
	FrameRate  float64
	FrameBurst int
	// Launch allows LaunchApp to start processes.
	Launch   bool
	Monitors []Monitor
}

type Monitor struct {
	Name           string  `toml:"name"`
	X              int32   `toml:"x"`
	Y              int32   `toml:"y"`
	Width          uint32  `toml:"width"`
	Height         uint32  `toml:"height"`
	PhysicalWidth  uint32  `toml:"physical_width"`
	PhysicalHeight uint32  `toml:"physical_height"`
	RefreshRate    uint32  `toml:"refresh_rate"`
	Scale          float32 `toml:"scale"`
	Primary        bool    `toml:"primary"`
	Disabled       bool    `toml:"disabled"`
}

type fileConfig struct {
	Socket string `toml:"socket"`
	Log    struct {
		Level string `toml:"level"`
		JSON  bool   `toml:"json"`
	} `toml:"log"`
	Session struct {
		DialTimeout     string `toml:"dial_timeout"`
		ReadTimeout     string `toml:"read_timeout"`
		WriteTimeout    string `toml:"write_timeout"`
		MaxPayloadBytes uint32 `toml:"max_payload_bytes"`
		ConnectAttempts int    `toml:"connect_attempts"`
	} `toml:"session"`
	Server struct {
		MetricsAddr string    `toml:"metrics_addr"`
		FrameRate   float64   `toml:"frame_rate"`
		FrameBurst  int       `toml:"frame_burst"`
		Launch      bool      `toml:"launch"`
		Monitors    []Monitor `toml:"monitors"`
	} `toml:"server"`
}

// DefaultSocketPath resolves the socket from ICM_SOCKET, then
// $XDG_RUNTIME_DIR, then /tmp.
func DefaultSocketPath() string {
	if v := strings.TrimSpace(os.Getenv(EnvSocket)); v != "" {
		return v
	}
	if dir := strings.TrimSpace(os.Getenv("XDG_RUNTIME_DIR")); dir != "" {
		return filepath.Join(dir, DefaultSocket)
	}
	return fallbackSocket
}

func Default() Config {
	return Config{
		Socket:          DefaultSocketPath(),
		Log:             LogConfig{Level: "info"},
		Session:         session.DefaultConfig(),
		ConnectAttempts: 5,
		Server: ServerConfig{
			MetricsAddr: "",
			FrameRate:   2000,
			FrameBurst:  256,
			Launch:      true,
			Monitors: []Monitor{{
				Name:           "ICM-0",
				Width:          1920,
				Height:         1080,
				PhysicalWidth:  527,
				PhysicalHeight: 296,
				RefreshRate:    60,
				Scale:          1,
				Primary:        true,
			}},
		},
	}
}

// Load applies the keys present in path on top of Default and validates
// the result.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: unknown key %q in %s", ErrInvalid, undecoded[0].String(), path)
	}

	if meta.IsDefined("socket") {
		cfg.Socket = strings.TrimSpace(raw.Socket)
	}
	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.TrimSpace(raw.Log.Level)
	}
	if meta.IsDefined("log", "json") {
		cfg.Log.JSON = raw.Log.JSON
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"dial_timeout", raw.Session.DialTimeout, &cfg.Session.DialTimeout},
		{"read_timeout", raw.Session.ReadTimeout, &cfg.Session.ReadTimeout},
		{"write_timeout", raw.Session.WriteTimeout, &cfg.Session.WriteTimeout},
	}
	for _, d := range durations {
		if !meta.IsDefined("session", d.key) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return Config{}, fmt.Errorf("parse session.%s: %w", d.key, err)
		}
		*d.dst = v
	}
	if meta.IsDefined("session", "max_payload_bytes") {
		cfg.Session.Limits.MaxPayloadBytes = raw.Session.MaxPayloadBytes
	}
	if meta.IsDefined("session", "connect_attempts") {
		cfg.ConnectAttempts = raw.Session.ConnectAttempts
	}

	if meta.IsDefined("server", "metrics_addr") {
		cfg.Server.MetricsAddr = strings.TrimSpace(raw.Server.MetricsAddr)
	}
	if meta.IsDefined("server", "frame_rate") {
		cfg.Server.FrameRate = raw.Server.FrameRate
	}
	if meta.IsDefined("server", "frame_burst") {
		cfg.Server.FrameBurst = raw.Server.FrameBurst
	}
	if meta.IsDefined("server", "launch") {
		cfg.Server.Launch = raw.Server.Launch
	}
	if meta.IsDefined("server", "monitors") {
		cfg.Server.Monitors = raw.Server.Monitors
		for i := range cfg.Server.Monitors {
			if cfg.Server.Monitors[i].Scale == 0 {
				cfg.Server.Monitors[i].Scale = 1
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Socket) == "" {
		return fmt.Errorf("%w: socket is required", ErrInvalid)
	}
	if _, ok := logging.ParseLevel(c.Log.Level); !ok {
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	if c.Session.DialTimeout < 0 || c.Session.ReadTimeout < 0 || c.Session.WriteTimeout < 0 {
		return fmt.Errorf("%w: session timeouts must not be negative", ErrInvalid)
	}
	if c.Session.Limits.MaxPayloadBytes == 0 {
		return fmt.Errorf("%w: session.max_payload_bytes must be positive", ErrInvalid)
	}
	if c.ConnectAttempts < 1 {
		return fmt.Errorf("%w: session.connect_attempts must be at least 1", ErrInvalid)
	}
	if c.Server.FrameRate < 0 {
		return fmt.Errorf("%w: server.frame_rate must not be negative", ErrInvalid)
	}
	if c.Server.FrameRate > 0 && c.Server.FrameBurst < 1 {
		return fmt.Errorf("%w: server.frame_burst must be at least 1 when frame_rate is set", ErrInvalid)
	}
	primaries := 0
	for i, m := range c.Server.Monitors {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("monitor[%d] invalid: %w", i, err)
		}
		if m.Primary {
			primaries++
		}
	}
	if primaries > 1 {
		return fmt.Errorf("%w: %d monitors marked primary", ErrInvalid, primaries)
	}
	return nil
}

func (m Monitor) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if len(m.Name) > protocol.MonitorNameLen {
		return fmt.Errorf("%w: name %q exceeds %d bytes", ErrInvalid, m.Name, protocol.MonitorNameLen)
	}
	if m.Width == 0 || m.Height == 0 {
		return fmt.Errorf("%w: width and height are required", ErrInvalid)
	}
	if m.Scale <= 0 {
		return fmt.Errorf("%w: scale must be positive", ErrInvalid)
	}
	return nil
}
