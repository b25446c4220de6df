package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/khet.yaml
var defaultKhetYAML []byte

// DefaultKhetConfig returns the built-in configuration.
func DefaultKhetConfig() KhetConfig {
	return KhetConfig{
		Board: BoardConfig{
			Default: "classic",
			Dir:     "",
			Mode:    "sandbox",
		},
		Beam: BeamConfig{
			DisplayTicks: 45, // 1.5s at 30 FPS
			FPS:          30,
		},
		Server: ServerConfig{
			SSHAddr:     ":2222",
			HostKey:     ".ssh/khet_ed25519",
			IdleTimeout: 30 * time.Minute,
			HTTPAddr:    ":8080",
			PingPeriod:  54 * time.Second,
		},
		Storage: StorageConfig{
			DBPath: "~/.khet/shots.db",
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultKhetYAML
}
