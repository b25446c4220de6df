package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/khet/internal/transport/websocket"
)

var (
	flagHTTPAddr string
	flagVerbose  bool
)

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Serve boards and beams over HTTP and websocket",
	Long: `Start an HTTP server for browser and script clients.

Routes:
  GET  /boards                 List boards
  GET  /boards/:id             Board snapshot
  POST /boards/:id/fire/:gun   Fire a laser and return its path
  GET  /ws/:id                 Websocket room for a board

Clients in the same room see each other's shots and rotations. A client
can reset the room to the board as loaded, or save the live board into
the boards directory (--boards or board.boards_dir).

Examples:
  khet web
  khet web --http :9000
  khet web --verbose`,
	Run: runWeb,
}

func init() {
	webCmd.Flags().StringVar(&flagHTTPAddr, "http", "", "HTTP listen address (default from config)")
	webCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log every request")
}

func runWeb(_ *cobra.Command, _ []string) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "khet-web",
	})
	if flagVerbose {
		logger.SetLevel(log.DebugLevel)
	}

	addr := cfg.Server.HTTPAddr
	if flagHTTPAddr != "" {
		addr = flagHTTPAddr
	}

	store := openStore()
	defer func() {
		if store != nil {
			store.Close()
		}
	}()

	hub := websocket.NewHub(websocket.Options{
		Loader:     boardLoader(),
		Store:      shotSaver(store),
		Logger:     logger,
		PingPeriod: cfg.Server.PingPeriod,
		SaveDir:    cfg.Board.Dir,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go hub.Run(ctx)

	server := &http.Server{
		Addr:              addr,
		Handler:           hub.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}
