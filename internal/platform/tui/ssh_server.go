package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/khet/internal/core"
	"github.com/vovakirdan/khet/internal/multiplayer"
	"github.com/vovakirdan/khet/internal/registry"
	"github.com/vovakirdan/khet/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":2222").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.khet/host_key.
	HostKeyPath string

	// DBPath is the path to the shot history database.
	DBPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// LobbyTimeout is how long a hosted online duel waits for a joiner.
	LobbyTimeout time.Duration

	// Runtime is the per-session game config; the screen size is taken
	// from each session's PTY.
	Runtime core.RuntimeConfig
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:      ":2222",
		DBPath:       "~/.khet/shots.db",
		IdleTimeout:  30 * time.Minute,
		LobbyTimeout: multiplayer.DefaultCoordinatorConfig().LobbyTimeout,
		Runtime:      core.DefaultConfig(),
	}
}

// SSHServer wraps a Wish SSH server serving the khet menu. Sessions on
// the same server can pair up for online duels.
type SSHServer struct {
	config      SSHServerConfig
	server      *ssh.Server
	store       *storage.Store
	logger      *log.Logger
	sessions    *multiplayer.SessionRegistry
	coordinator *multiplayer.Coordinator
	nextID      atomic.Uint64
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "khet-ssh",
	})

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open shot database", "error", err)
		// Continue without storage
		store = nil
	}

	srv := &SSHServer{
		config:   cfg,
		store:    store,
		logger:   logger,
		sessions: multiplayer.NewSessionRegistry(),
	}

	// Online duels render at the default size so both players see the
	// same frame
	coordCfg := multiplayer.DefaultCoordinatorConfig()
	coordCfg.LobbyTimeout = cfg.LobbyTimeout
	coordCfg.Runtime = cfg.Runtime
	coordCfg.Runtime.ScreenW = core.DefaultConfig().ScreenW
	coordCfg.Runtime.ScreenH = core.DefaultConfig().ScreenH
	srv.coordinator = multiplayer.NewCoordinator(coordCfg, nil, srv.sessions)
	if store != nil {
		srv.coordinator.SetShotSaver(store)
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".khet", "host_key")
	}

	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	srv.coordinator.Start()
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	cfg := s.config.Runtime
	cfg.ScreenW = pty.Window.Width
	cfg.ScreenH = pty.Window.Height

	id := multiplayer.SessionID(fmt.Sprintf("%s-%d", sshSession.User(), s.nextID.Add(1)))
	events := multiplayer.NewChannelSession(id, 128)
	s.sessions.Register(events)
	go func() {
		<-sshSession.Context().Done()
		s.coordinator.Send(multiplayer.SessionDisconnectedMsg{SessionID: id})
		s.sessions.Unregister(id)
		events.Close()
	}()

	model := NewSessionModel(s.store, cfg, sshSession.User()).WithOnline(s.coordinator, events)

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.coordinator.Stop()
	if s.store != nil {
		s.store.Close()
	}

	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// sessionScreen is the screen a SessionModel is currently showing.
type sessionScreen int

const (
	screenMenu sessionScreen = iota
	screenGame
	screenHistory
	screenOnline
)

// SessionModel manages a full session: menu -> game, history or online
// duel -> menu. This is the top-level model used for SSH sessions.
type SessionModel struct {
	store    *storage.Store
	config   core.RuntimeConfig
	username string
	current  sessionScreen
	menu     MenuModel
	game     *Model
	history  *HistoryModel
	online   *OnlineModel
	quitting bool

	// Online duels; nil when the session plays offline only
	coordinator MatchCoordinator
	events      *multiplayer.ChannelSession
}

// NewSessionModel creates a new session model. store may be nil.
func NewSessionModel(store *storage.Store, cfg core.RuntimeConfig, username string) SessionModel {
	return SessionModel{
		store:    store,
		config:   cfg,
		username: username,
		menu:     NewMenuModel(cfg),
	}
}

// WithOnline enables online duels. Events sent to the session by the
// coordinator arrive as messages for the online screen.
func (m SessionModel) WithOnline(coordinator MatchCoordinator, events *multiplayer.ChannelSession) SessionModel {
	m.coordinator = coordinator
	m.events = events
	m.menu = m.menu.WithOnline()
	return m
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return tea.Batch(m.menu.Init(), m.waitForEvent())
}

// waitForEvent reads the next coordinator event. Exactly one read is
// outstanding for the life of the session.
func (m SessionModel) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	events := m.events
	return func() tea.Msg {
		select {
		case evt := <-events.Events():
			return evt
		case <-events.Done():
			return nil
		}
	}
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	if evt, ok := msg.(multiplayer.SessionEvent); ok {
		var cmd tea.Cmd
		model := tea.Model(m)
		if m.current == screenOnline {
			model, cmd = m.updateOnline(evt)
		}
		next := model.(SessionModel)
		return next, tea.Batch(cmd, next.waitForEvent())
	}

	switch m.current {
	case screenGame:
		return m.updateGame(msg)
	case screenHistory:
		return m.updateHistory(msg)
	case screenOnline:
		return m.updateOnline(msg)
	default:
		return m.updateMenu(msg)
	}
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.menu.WantsHistory() {
		history := NewHistoryModel(m.historySource(), m.config.ScreenW, m.config.ScreenH)
		m.history = &history
		m.current = screenHistory
		return m, history.Init()
	}

	if selected := m.menu.Selected(); selected != nil {
		if selected.ModeID == OnlineModeID {
			m.config = m.menu.Config()
			if m.coordinator == nil || m.events == nil {
				return m.backToMenu()
			}
			online := NewOnlineModel(m.config.BoardID, m.events.ID(), m.coordinator, m.config.ScreenW, m.config.ScreenH)
			m.online = &online
			m.current = screenOnline
			return m, online.Init()
		}

		game, err := registry.Create(selected.ModeID)
		if err != nil {
			// Menu only lists registered modes
			return m, nil
		}

		m.config = m.menu.Config()
		gameModel := NewModel(game, m.shotSaver(), m.config)
		m.game = &gameModel
		m.current = screenGame

		return m, m.game.Init()
	}

	return m, cmd
}

// updateGame handles updates when a board is being played.
func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.game.Update(msg)
	if gameModel, ok := newModel.(Model); ok {
		m.game = &gameModel
	}

	if m.game.BackToMenu() {
		return m.backToMenu()
	}

	if m.game.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	return m, cmd
}

// updateHistory handles updates when the shot history is open.
func (m SessionModel) updateHistory(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.history.Update(msg)
	if historyModel, ok := newModel.(HistoryModel); ok {
		m.history = &historyModel
	}

	if m.history.IsGoingBack() {
		return m.backToMenu()
	}

	if m.history.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	return m, cmd
}

// updateOnline handles updates during the online duel flow.
func (m SessionModel) updateOnline(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.online.Update(msg)
	if onlineModel, ok := newModel.(OnlineModel); ok {
		m.online = &onlineModel
	}

	if m.online.BackToMenu() {
		return m.backToMenu()
	}

	if m.online.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	return m, cmd
}

func (m SessionModel) backToMenu() (tea.Model, tea.Cmd) {
	m.current = screenMenu
	m.game = nil
	m.history = nil
	m.online = nil
	m.menu = NewMenuModel(m.config)
	if m.coordinator != nil {
		m.menu = m.menu.WithOnline()
	}
	return m, m.menu.Init()
}

// shotSaver avoids handing a typed nil store to the game model.
func (m SessionModel) shotSaver() storage.ShotSaver {
	if m.store == nil {
		return nil
	}
	return m.store
}

func (m SessionModel) historySource() ShotHistory {
	if m.store == nil {
		return nil
	}
	return m.store
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.current {
	case screenGame:
		return m.game.View()
	case screenHistory:
		return m.history.View()
	case screenOnline:
		return m.online.View()
	default:
		return m.menu.View()
	}
}
