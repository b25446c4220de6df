// Package config provides YAML-based configuration loading for the khet
// binaries.
package config

import (
	"fmt"
	"time"
)

// KhetConfig contains all configuration for the khet commands.
type KhetConfig struct {
	Board   BoardConfig   `yaml:"board"`
	Beam    BeamConfig    `yaml:"beam"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
}

// BoardConfig selects which boards are available and which one opens first.
type BoardConfig struct {
	Default string `yaml:"default"`    // Board id used when none is given
	Dir     string `yaml:"boards_dir"` // Extra YAML boards; empty for built-ins only
	Mode    string `yaml:"mode"`       // "sandbox" or "duel"
}

// BeamConfig controls how a fired beam is shown in the terminal.
type BeamConfig struct {
	DisplayTicks int `yaml:"display_ticks"` // Ticks the beam stays visible
	FPS          int `yaml:"fps"`           // Simulation ticks per second
}

// ServerConfig contains network settings for the serve and web commands.
type ServerConfig struct {
	SSHAddr     string        `yaml:"ssh_addr"`
	HostKey     string        `yaml:"host_key"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	HTTPAddr    string        `yaml:"http_addr"`
	PingPeriod  time.Duration `yaml:"ping_period"` // Websocket keepalive interval
}

// StorageConfig locates the shot history database.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// Validate checks values that would make the commands misbehave.
func (c KhetConfig) Validate() error {
	if c.Board.Default == "" {
		return fmt.Errorf("board.default must not be empty")
	}
	switch c.Board.Mode {
	case "sandbox", "duel":
	default:
		return fmt.Errorf("board.mode must be sandbox or duel, got %q", c.Board.Mode)
	}
	if c.Beam.DisplayTicks <= 0 {
		return fmt.Errorf("beam.display_ticks must be positive, got %d", c.Beam.DisplayTicks)
	}
	if c.Beam.FPS <= 0 || c.Beam.FPS > 120 {
		return fmt.Errorf("beam.fps must be in 1..120, got %d", c.Beam.FPS)
	}
	if c.Server.PingPeriod < 0 || c.Server.IdleTimeout < 0 {
		return fmt.Errorf("server durations must not be negative")
	}
	return nil
}
