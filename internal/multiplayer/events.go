package multiplayer

import platformcore "github.com/vovakirdan/khet/internal/core"

// SessionEvent is sent from the coordinator or a match to a session.
type SessionEvent interface {
	sessionEvent()
}

// LobbyCreatedEvent reports the join code of a new lobby.
type LobbyCreatedEvent struct {
	Code    string
	BoardID string
}

func (LobbyCreatedEvent) sessionEvent() {}

// LobbyErrorEvent reports a failed lobby operation.
type LobbyErrorEvent struct {
	Message string
}

func (LobbyErrorEvent) sessionEvent() {}

// LobbyPlayerLeftEvent tells the host the joiner went away before the
// match started.
type LobbyPlayerLeftEvent struct {
	Code string
}

func (LobbyPlayerLeftEvent) sessionEvent() {}

// MatchStartedEvent is sent to both players when the duel begins.
type MatchStartedEvent struct {
	MatchID MatchID
	Side    Side
	Code    string
	BoardID string
}

func (MatchStartedEvent) sessionEvent() {}

// MatchEndedEvent is sent to both players when the match is over.
type MatchEndedEvent struct {
	MatchID MatchID
	Reason  MatchEndReason
	Winner  Side // SideNone when nobody won
	Shots   int
}

func (MatchEndedEvent) sessionEvent() {}

// MatchEndReason describes why a match or lobby ended.
type MatchEndReason int

const (
	MatchEndReasonCompleted  MatchEndReason = iota // A pharaoh was struck
	MatchEndReasonDisconnect                       // Opponent disconnected
	MatchEndReasonCancelled                        // Match was stopped
	MatchEndReasonHostLeft                         // Host closed the lobby
)

func (r MatchEndReason) String() string {
	switch r {
	case MatchEndReasonCompleted:
		return "Pharaoh struck"
	case MatchEndReasonDisconnect:
		return "Opponent disconnected"
	case MatchEndReasonCancelled:
		return "Match cancelled"
	case MatchEndReasonHostLeft:
		return "Host left"
	default:
		return "Unknown"
	}
}

// SnapshotEvent carries the latest frame of a match.
type SnapshotEvent struct {
	MatchID  MatchID
	Tick     uint64
	Snapshot Snapshot
}

func (SnapshotEvent) sessionEvent() {}

// CoordinatorMessage is sent from a session to the coordinator.
type CoordinatorMessage interface {
	coordinatorMessage()
}

// CreateLobbyMsg opens a lobby for a board.
type CreateLobbyMsg struct {
	SessionID SessionID
	BoardID   string
}

func (CreateLobbyMsg) coordinatorMessage() {}

// JoinLobbyMsg joins a lobby by code.
type JoinLobbyMsg struct {
	SessionID SessionID
	Code      string
}

func (JoinLobbyMsg) coordinatorMessage() {}

// CancelLobbyMsg closes a hosted lobby.
type CancelLobbyMsg struct {
	SessionID SessionID
	Code      string
}

func (CancelLobbyMsg) coordinatorMessage() {}

// LeaveMatchMsg forfeits a running match.
type LeaveMatchMsg struct {
	SessionID SessionID
	MatchID   MatchID
}

func (LeaveMatchMsg) coordinatorMessage() {}

// PlayerInputMsg forwards one tick of keys to a match.
type PlayerInputMsg struct {
	MatchID MatchID
	Side    Side
	Input   platformcore.InputFrame
}

func (PlayerInputMsg) coordinatorMessage() {}

// SessionDisconnectedMsg is sent when an SSH session ends.
type SessionDisconnectedMsg struct {
	SessionID SessionID
}

func (SessionDisconnectedMsg) coordinatorMessage() {}
