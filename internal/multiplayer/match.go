package multiplayer

import (
	"sync"
	"time"

	platformcore "github.com/vovakirdan/khet/internal/core"
	"github.com/vovakirdan/khet/internal/games/khet/core"
	"github.com/vovakirdan/khet/internal/registry"
	"github.com/vovakirdan/khet/internal/storage"
)

// MatchResult is the outcome of a finished match.
type MatchResult struct {
	MatchID MatchID
	Reason  MatchEndReason
	Winner  Side
	Shots   int
	Ticks   uint64
}

// OnlineMatch runs one duel between two sessions. The match goroutine is
// the only one touching the game.
type OnlineMatch struct {
	id      MatchID
	code    string
	boardID string
	game    registry.Game
	store   storage.ShotSaver // Optional

	silver SessionHandle
	red    SessionHandle

	inputs  chan playerInput
	pending platformcore.InputFrame

	width    int
	height   int
	tick     uint64
	tickRate int
	done     chan struct{}
	doneOnce sync.Once

	disconnects chan SessionID
}

type playerInput struct {
	side  Side
	input platformcore.InputFrame
}

// NewOnlineMatch creates a match. game must already be Reset with cfg.
func NewOnlineMatch(
	id MatchID,
	code string,
	game registry.Game,
	silver, red SessionHandle,
	cfg platformcore.RuntimeConfig,
	store storage.ShotSaver,
) *OnlineMatch {
	tickRate := cfg.TickRate
	if tickRate <= 0 {
		tickRate = platformcore.DefaultConfig().TickRate
	}
	return &OnlineMatch{
		id:          id,
		code:        code,
		boardID:     cfg.BoardID,
		game:        game,
		store:       store,
		silver:      silver,
		red:         red,
		inputs:      make(chan playerInput, 64),
		pending:     platformcore.NewInputFrame(),
		width:       cfg.ScreenW,
		height:      cfg.ScreenH,
		tickRate:    tickRate,
		done:        make(chan struct{}),
		disconnects: make(chan SessionID, 2),
	}
}

// ID returns the match identifier.
func (m *OnlineMatch) ID() MatchID {
	return m.id
}

// Code returns the join code the match was created from.
func (m *OnlineMatch) Code() string {
	return m.code
}

// BoardID returns the board being played.
func (m *OnlineMatch) BoardID() string {
	return m.boardID
}

// SendInput queues keys from one side. Never blocks; input is dropped
// when the queue is full.
func (m *OnlineMatch) SendInput(side Side, input platformcore.InputFrame) {
	select {
	case m.inputs <- playerInput{side: side, input: input}:
	default:
	}
}

// PlayerDisconnected ends the match in favor of the other side.
func (m *OnlineMatch) PlayerDisconnected(sessionID SessionID) {
	select {
	case m.disconnects <- sessionID:
	default:
	}
}

// Run is the authoritative match loop. onComplete is called once with the
// result unless the match is stopped first.
func (m *OnlineMatch) Run(onComplete func(MatchResult)) {
	defer m.Stop()

	ticker := time.NewTicker(time.Second / time.Duration(m.tickRate))
	defer ticker.Stop()

	go m.monitorSessions()

	// Both players see the board before the first move
	m.broadcastFrame()

	for {
		select {
		case <-ticker.C:
			result, over := m.runTick()
			if over {
				if onComplete != nil {
					onComplete(result)
				}
				return
			}

		case sessionID := <-m.disconnects:
			if onComplete != nil {
				onComplete(m.forfeit(sessionID))
			}
			return

		case <-m.done:
			return
		}
	}
}

func (m *OnlineMatch) runTick() (MatchResult, bool) {
	m.drainInputs()

	res := m.game.Step(m.pending)
	m.pending.Clear()
	m.tick++

	if res.Shot != nil && m.store != nil {
		//nolint:errcheck // History is best effort during a match
		m.store.SaveShot(*res.Shot)
	}

	m.broadcastFrame()

	if res.State.GameOver {
		winner, _ := core.ParseColor(res.State.Winner)
		return MatchResult{
			MatchID: m.id,
			Reason:  MatchEndReasonCompleted,
			Winner:  winner,
			Shots:   res.State.Shots,
			Ticks:   m.tick,
		}, true
	}
	return MatchResult{}, false
}

// drainInputs merges queued keys from the side to move into pending and
// discards the rest.
func (m *OnlineMatch) drainInputs() {
	mover := m.mover()
	for {
		select {
		case pi := <-m.inputs:
			if pi.side != mover {
				continue
			}
			for _, a := range seatAllowed {
				if pi.input.Has(a) {
					m.pending.Set(a)
				}
			}
		default:
			return
		}
	}
}

// mover returns the side whose turn it is.
func (m *OnlineMatch) mover() Side {
	side, ok := core.ParseColor(m.game.State().Turn)
	if !ok {
		return SideNone
	}
	return side
}

func (m *OnlineMatch) broadcastFrame() {
	screen := platformcore.NewScreen(m.width, m.height)
	m.game.Render(screen)
	evt := SnapshotEvent{
		MatchID: m.id,
		Tick:    m.tick,
		Snapshot: Snapshot{
			Screen: screen,
			State:  m.game.State(),
		},
	}
	m.silver.Send(evt)
	m.red.Send(evt)
}

func (m *OnlineMatch) forfeit(sessionID SessionID) MatchResult {
	winner := SideSilver
	if sessionID == m.silver.ID() {
		winner = SideRed
	}
	return MatchResult{
		MatchID: m.id,
		Reason:  MatchEndReasonDisconnect,
		Winner:  winner,
		Shots:   m.game.State().Shots,
		Ticks:   m.tick,
	}
}

func (m *OnlineMatch) monitorSessions() {
	select {
	case <-m.silver.Done():
		m.PlayerDisconnected(m.silver.ID())
	case <-m.red.Done():
		m.PlayerDisconnected(m.red.ID())
	case <-m.done:
	}
}

// Stop ends the match loop without reporting a result.
func (m *OnlineMatch) Stop() {
	m.doneOnce.Do(func() {
		close(m.done)
	})
}
