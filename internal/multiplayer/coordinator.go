package multiplayer

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
	"sync"
	"time"

	platformcore "github.com/vovakirdan/khet/internal/core"
	"github.com/vovakirdan/khet/internal/registry"
	"github.com/vovakirdan/khet/internal/storage"
)

// codeLength is the number of characters in a join code.
const codeLength = 6

// Lobby is a hosted duel waiting for an opponent.
type Lobby struct {
	Code      string
	BoardID   string
	Host      SessionHandle
	CreatedAt time.Time
}

// CoordinatorConfig holds coordinator settings.
type CoordinatorConfig struct {
	LobbyTimeout  time.Duration // How long a lobby waits for a joiner
	CleanupPeriod time.Duration // How often expired lobbies are swept
	Runtime       platformcore.RuntimeConfig
}

// DefaultCoordinatorConfig returns sensible defaults.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		LobbyTimeout:  5 * time.Minute,
		CleanupPeriod: 30 * time.Second,
		Runtime:       platformcore.DefaultConfig(),
	}
}

// GameFactory creates the game a match runs.
type GameFactory func(cfg platformcore.RuntimeConfig) (registry.Game, error)

// DuelFactory creates a duel from the registry and loads cfg.BoardID.
func DuelFactory(cfg platformcore.RuntimeConfig) (registry.Game, error) {
	game, err := registry.Create("duel")
	if err != nil {
		return nil, err
	}
	game.Reset(cfg)
	return game, nil
}

// Coordinator owns lobbies and running matches.
type Coordinator struct {
	config   CoordinatorConfig
	factory  GameFactory
	sessions *SessionRegistry
	store    storage.ShotSaver // Optional

	mu      sync.RWMutex
	lobbies map[string]*Lobby
	matches map[MatchID]*OnlineMatch

	sessionLobby map[SessionID]string
	sessionMatch map[SessionID]MatchID

	msgChan  chan CoordinatorMessage
	done     chan struct{}
	stopOnce sync.Once
}

// NewCoordinator creates a coordinator. A nil factory means DuelFactory.
func NewCoordinator(cfg CoordinatorConfig, factory GameFactory, sessions *SessionRegistry) *Coordinator {
	if factory == nil {
		factory = DuelFactory
	}
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = DefaultCoordinatorConfig().CleanupPeriod
	}
	return &Coordinator{
		config:       cfg,
		factory:      factory,
		sessions:     sessions,
		lobbies:      make(map[string]*Lobby),
		matches:      make(map[MatchID]*OnlineMatch),
		sessionLobby: make(map[SessionID]string),
		sessionMatch: make(map[SessionID]MatchID),
		msgChan:      make(chan CoordinatorMessage, 256),
		done:         make(chan struct{}),
	}
}

// SetShotSaver records every shot fired in online matches.
func (c *Coordinator) SetShotSaver(store storage.ShotSaver) {
	c.store = store
}

// Start begins background processing.
func (c *Coordinator) Start() {
	go c.processMessages()
	go c.cleanupLoop()
}

// Stop ends background processing and every running match.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		defer c.mu.Unlock()
		for _, m := range c.matches {
			m.Stop()
		}
	})
}

// Send queues a message for the coordinator.
func (c *Coordinator) Send(msg CoordinatorMessage) {
	select {
	case c.msgChan <- msg:
	case <-c.done:
	}
}

func (c *Coordinator) processMessages() {
	for {
		select {
		case msg := <-c.msgChan:
			c.handleMessage(msg)
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) handleMessage(msg CoordinatorMessage) {
	switch m := msg.(type) {
	case CreateLobbyMsg:
		c.handleCreateLobby(m)
	case JoinLobbyMsg:
		c.handleJoinLobby(m)
	case CancelLobbyMsg:
		c.handleCancelLobby(m)
	case LeaveMatchMsg:
		c.handleLeaveMatch(m)
	case PlayerInputMsg:
		c.handlePlayerInput(m)
	case SessionDisconnectedMsg:
		c.handleSessionDisconnected(m)
	}
}

func (c *Coordinator) handleCreateLobby(msg CreateLobbyMsg) {
	session, ok := c.sessions.Get(msg.SessionID)
	if !ok {
		return
	}

	c.mu.Lock()
	if c.busyLocked(msg.SessionID) {
		c.mu.Unlock()
		session.Send(LobbyErrorEvent{Message: "Already in a lobby or match"})
		return
	}

	boardID := msg.BoardID
	if boardID == "" {
		boardID = c.config.Runtime.BoardID
	}
	code := c.generateUniqueCode()
	c.lobbies[code] = &Lobby{
		Code:      code,
		BoardID:   boardID,
		Host:      session,
		CreatedAt: time.Now(),
	}
	c.sessionLobby[msg.SessionID] = code
	c.mu.Unlock()

	session.Send(LobbyCreatedEvent{Code: code, BoardID: boardID})
}

func (c *Coordinator) handleJoinLobby(msg JoinLobbyMsg) {
	session, ok := c.sessions.Get(msg.SessionID)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busyLocked(msg.SessionID) {
		session.Send(LobbyErrorEvent{Message: "Already in a lobby or match"})
		return
	}

	code := strings.ToUpper(strings.TrimSpace(msg.Code))
	lobby, exists := c.lobbies[code]
	if !exists {
		session.Send(LobbyErrorEvent{Message: "Lobby not found"})
		return
	}
	if lobby.Host.ID() == msg.SessionID {
		session.Send(LobbyErrorEvent{Message: "Cannot join your own lobby"})
		return
	}

	c.startMatchLocked(lobby, session)
}

// startMatchLocked turns a lobby into a running match. c.mu must be held.
func (c *Coordinator) startMatchLocked(lobby *Lobby, joiner SessionHandle) {
	delete(c.lobbies, lobby.Code)
	delete(c.sessionLobby, lobby.Host.ID())

	cfg := c.config.Runtime
	cfg.BoardID = lobby.BoardID

	game, err := c.factory(cfg)
	if err != nil {
		msg := LobbyErrorEvent{Message: fmt.Sprintf("Failed to start duel: %v", err)}
		lobby.Host.Send(msg)
		joiner.Send(msg)
		return
	}

	matchID := MatchID(fmt.Sprintf("match-%s-%d", lobby.Code, time.Now().UnixNano()))
	match := NewOnlineMatch(matchID, lobby.Code, game, lobby.Host, joiner, cfg, c.store)

	c.matches[matchID] = match
	c.sessionMatch[lobby.Host.ID()] = matchID
	c.sessionMatch[joiner.ID()] = matchID

	lobby.Host.Send(MatchStartedEvent{MatchID: matchID, Side: SideSilver, Code: lobby.Code, BoardID: lobby.BoardID})
	joiner.Send(MatchStartedEvent{MatchID: matchID, Side: SideRed, Code: lobby.Code, BoardID: lobby.BoardID})

	go match.Run(func(result MatchResult) {
		c.handleMatchEnded(result)
	})
}

func (c *Coordinator) handleMatchEnded(result MatchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	match, exists := c.matches[result.MatchID]
	if !exists {
		return
	}
	delete(c.matches, result.MatchID)
	delete(c.sessionMatch, match.silver.ID())
	delete(c.sessionMatch, match.red.ID())

	evt := MatchEndedEvent{
		MatchID: result.MatchID,
		Reason:  result.Reason,
		Winner:  result.Winner,
		Shots:   result.Shots,
	}
	match.silver.Send(evt)
	match.red.Send(evt)
}

func (c *Coordinator) handleCancelLobby(msg CancelLobbyMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lobby, exists := c.lobbies[msg.Code]
	if !exists || lobby.Host.ID() != msg.SessionID {
		return
	}
	delete(c.lobbies, msg.Code)
	delete(c.sessionLobby, msg.SessionID)
}

func (c *Coordinator) handleLeaveMatch(msg LeaveMatchMsg) {
	c.mu.RLock()
	match, exists := c.matches[msg.MatchID]
	c.mu.RUnlock()

	if exists {
		match.PlayerDisconnected(msg.SessionID)
	}
}

func (c *Coordinator) handlePlayerInput(msg PlayerInputMsg) {
	c.mu.RLock()
	match, exists := c.matches[msg.MatchID]
	c.mu.RUnlock()

	if exists {
		match.SendInput(msg.Side, msg.Input)
	}
}

func (c *Coordinator) handleSessionDisconnected(msg SessionDisconnectedMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if code, inLobby := c.sessionLobby[msg.SessionID]; inLobby {
		delete(c.lobbies, code)
		delete(c.sessionLobby, msg.SessionID)
	}
	if matchID, inMatch := c.sessionMatch[msg.SessionID]; inMatch {
		if match, exists := c.matches[matchID]; exists {
			match.PlayerDisconnected(msg.SessionID)
		}
	}
}

// busyLocked reports whether a session already hosts a lobby or plays a
// match. c.mu must be held.
func (c *Coordinator) busyLocked(id SessionID) bool {
	_, inLobby := c.sessionLobby[id]
	_, inMatch := c.sessionMatch[id]
	return inLobby || inMatch
}

func (c *Coordinator) cleanupLoop() {
	ticker := time.NewTicker(c.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanupExpiredLobbies(time.Now())
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) cleanupExpiredLobbies(now time.Time) {
	if c.config.LobbyTimeout <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for code, lobby := range c.lobbies {
		if now.Sub(lobby.CreatedAt) > c.config.LobbyTimeout {
			lobby.Host.Send(LobbyErrorEvent{Message: "Lobby expired"})
			delete(c.sessionLobby, lobby.Host.ID())
			delete(c.lobbies, code)
		}
	}
}

func (c *Coordinator) generateUniqueCode() string {
	for {
		code := generateJoinCode()
		if _, exists := c.lobbies[code]; !exists {
			return code
		}
	}
}

// generateJoinCode returns a random code of base32 letters and digits.
func generateJoinCode() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%06X", time.Now().UnixNano()&0xFFFFFF)
	}
	return base32.StdEncoding.EncodeToString(b)[:codeLength]
}

// Lobby returns a waiting lobby by code.
func (c *Coordinator) Lobby(code string) (*Lobby, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.lobbies[strings.ToUpper(code)]
	return l, ok
}

// Match returns a running match.
func (c *Coordinator) Match(id MatchID) (*OnlineMatch, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.matches[id]
	return m, ok
}

// LobbyCount returns the number of waiting lobbies.
func (c *Coordinator) LobbyCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lobbies)
}

// MatchCount returns the number of running matches.
func (c *Coordinator) MatchCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.matches)
}
