package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/khet/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start SSH server for remote play",
	Long: `Start an SSH server so others can play khet remotely.

Players connect with a regular SSH client and get the full menu:
mode and board selection, play and shot history.

Examples:
  khet serve
  khet serve --ssh :2222
  khet serve --ssh 0.0.0.0:22 --host-key /etc/khet/host_key
  khet serve --idle-timeout 1h

Connect with:
  ssh -p 2222 localhost`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH listen address (default from config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to SSH host key (auto-generated if missing)")
	serveCmd.Flags().DurationVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout, e.g. 30m (default from config)")
}

func runServe(_ *cobra.Command, _ []string) {
	sshCfg := tui.DefaultSSHServerConfig()
	sshCfg.DBPath = cfg.Storage.DBPath
	if cfg.Server.SSHAddr != "" {
		sshCfg.Address = cfg.Server.SSHAddr
	}
	if cfg.Server.HostKey != "" {
		sshCfg.HostKeyPath = cfg.Server.HostKey
	}
	if cfg.Server.IdleTimeout > 0 {
		sshCfg.IdleTimeout = cfg.Server.IdleTimeout
	}

	if flagSSHAddr != "" {
		sshCfg.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		sshCfg.HostKeyPath = flagHostKey
	}
	if flagIdleTimeout > 0 {
		sshCfg.IdleTimeout = flagIdleTimeout
	}

	sshCfg.Runtime = runtimeConfig("")

	server, err := tui.NewSSHServer(sshCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating SSH server: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Khet SSH server starting on %s\n", sshCfg.Address)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()
	fmt.Printf("Connect with: ssh -p %s localhost\n", portOf(sshCfg.Address))
	fmt.Println()

	if err := server.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

// portOf returns the port of a listen address, or the address itself.
func portOf(addr string) string {
	if _, port, err := net.SplitHostPort(addr); err == nil {
		return port
	}
	return addr
}
