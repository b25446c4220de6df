package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/khet/internal/core"
	"github.com/vovakirdan/khet/internal/multiplayer"
)

// OnlineModeID is the menu id of the online duel entry.
const OnlineModeID = "online"

// joinCodeLength matches the codes handed out by the coordinator.
const joinCodeLength = 6

// OnlineState is a step of the online duel flow.
type OnlineState int

const (
	OnlineStateChooseMode    OnlineState = iota // Host or join
	OnlineStateHostWaiting                      // Lobby open, waiting for a joiner
	OnlineStateJoinEnterCode                    // Typing a join code
	OnlineStateJoinWaiting                      // Join sent, waiting for the match
	OnlineStateInMatch                          // Playing
	OnlineStateMatchEnded                       // Result on screen
)

// MatchCoordinator is the part of the coordinator a session talks to.
type MatchCoordinator interface {
	Send(msg multiplayer.CoordinatorMessage)
}

// OnlineModel walks a session through hosting or joining a duel and then
// shows the match frames. Coordinator events are delivered by the owner
// of the model as ordinary messages.
type OnlineModel struct {
	state       OnlineState
	width       int
	height      int
	keyMapper   *KeyMapper
	boardID     string
	sessionID   multiplayer.SessionID
	coordinator MatchCoordinator

	lobbyCode string
	codeInput string
	errMsg    string

	matchID multiplayer.MatchID
	side    multiplayer.Side
	frame   *core.Screen
	status  core.GameState
	result  *multiplayer.MatchEndedEvent

	backToMenu bool
	quitting   bool
}

// NewOnlineModel creates the online flow for one session. boardID is the
// board a hosted lobby will use.
func NewOnlineModel(
	boardID string,
	sessionID multiplayer.SessionID,
	coordinator MatchCoordinator,
	width, height int,
) OnlineModel {
	return OnlineModel{
		state:       OnlineStateChooseMode,
		width:       width,
		height:      height,
		keyMapper:   NewKeyMapper(),
		boardID:     boardID,
		sessionID:   sessionID,
		coordinator: coordinator,
	}
}

// Init initializes the model.
func (m OnlineModel) Init() tea.Cmd {
	return nil
}

// Update handles keys and coordinator events.
func (m OnlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case multiplayer.LobbyCreatedEvent:
		if m.state == OnlineStateChooseMode {
			m.lobbyCode = msg.Code
			m.errMsg = ""
			m.state = OnlineStateHostWaiting
		}

	case multiplayer.LobbyErrorEvent:
		m.errMsg = msg.Message
		switch m.state {
		case OnlineStateHostWaiting:
			m.state = OnlineStateChooseMode
			m.lobbyCode = ""
		case OnlineStateJoinWaiting:
			m.state = OnlineStateJoinEnterCode
		}

	case multiplayer.MatchStartedEvent:
		if m.state == OnlineStateHostWaiting || m.state == OnlineStateJoinWaiting {
			m.matchID = msg.MatchID
			m.side = msg.Side
			m.lobbyCode = msg.Code
			m.errMsg = ""
			m.state = OnlineStateInMatch
		}

	case multiplayer.SnapshotEvent:
		if msg.MatchID == m.matchID && m.state == OnlineStateInMatch {
			m.frame = msg.Snapshot.Screen
			m.status = msg.Snapshot.State
		}

	case multiplayer.MatchEndedEvent:
		if msg.MatchID == m.matchID && m.state == OnlineStateInMatch {
			result := msg
			m.result = &result
			m.state = OnlineStateMatchEnded
		}
	}

	return m, nil
}

func (m OnlineModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	switch m.state {
	case OnlineStateChooseMode:
		switch msg.String() {
		case "h", "H", "1":
			m.errMsg = ""
			m.coordinator.Send(multiplayer.CreateLobbyMsg{SessionID: m.sessionID, BoardID: m.boardID})
		case "j", "J", "2":
			m.errMsg = ""
			m.codeInput = ""
			m.state = OnlineStateJoinEnterCode
		case "esc", "b":
			m.backToMenu = true
		case "q":
			return m.quit()
		}

	case OnlineStateHostWaiting:
		switch msg.String() {
		case "esc", "b":
			m.coordinator.Send(multiplayer.CancelLobbyMsg{SessionID: m.sessionID, Code: m.lobbyCode})
			m.backToMenu = true
		case "q":
			return m.quit()
		}

	case OnlineStateJoinEnterCode:
		return m.handleCodeKey(msg)

	case OnlineStateInMatch:
		switch msg.String() {
		case "esc", "b":
			m.coordinator.Send(multiplayer.LeaveMatchMsg{SessionID: m.sessionID, MatchID: m.matchID})
			m.backToMenu = true
			return m, nil
		}
		// Each key gets its own frame; the match goroutine reads it later
		frame := core.NewInputFrame()
		if m.keyMapper.MapKeyToFrame(msg, &frame) {
			return m.quit()
		}
		if !frame.Empty() {
			m.coordinator.Send(multiplayer.PlayerInputMsg{MatchID: m.matchID, Side: m.side, Input: frame})
		}

	case OnlineStateMatchEnded:
		switch msg.String() {
		case "enter", " ", "esc", "b":
			m.backToMenu = true
		case "q":
			return m.quit()
		}
	}

	return m, nil
}

func (m OnlineModel) handleCodeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "esc":
		m.state = OnlineStateChooseMode
		m.errMsg = ""
	case "enter":
		if len(m.codeInput) == joinCodeLength {
			m.errMsg = ""
			m.state = OnlineStateJoinWaiting
			m.coordinator.Send(multiplayer.JoinLobbyMsg{SessionID: m.sessionID, Code: m.codeInput})
		}
	case "backspace":
		if m.codeInput != "" {
			m.codeInput = m.codeInput[:len(m.codeInput)-1]
		}
	default:
		if len(key) == 1 && len(m.codeInput) < joinCodeLength {
			c := strings.ToUpper(key)[0]
			if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
				m.codeInput += string(c)
			}
		}
	}
	return m, nil
}

// quit leaves any lobby or match before ending the program.
func (m OnlineModel) quit() (tea.Model, tea.Cmd) {
	switch m.state {
	case OnlineStateHostWaiting:
		m.coordinator.Send(multiplayer.CancelLobbyMsg{SessionID: m.sessionID, Code: m.lobbyCode})
	case OnlineStateInMatch:
		m.coordinator.Send(multiplayer.LeaveMatchMsg{SessionID: m.sessionID, MatchID: m.matchID})
	}
	m.quitting = true
	return m, tea.Quit
}

// View renders the current step.
func (m OnlineModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case OnlineStateHostWaiting:
		return m.page("HOSTING DUEL",
			fmt.Sprintf("Board: %s", m.boardID),
			"Share this code with your opponent:",
			"",
			fmt.Sprintf("[ %s ]", m.lobbyCode),
			"",
			"You play silver and move first.",
			"Waiting for an opponent...",
		) + m.footer("Esc: Cancel  |  Q: Quit")

	case OnlineStateJoinEnterCode:
		code := m.codeInput
		if len(code) < joinCodeLength {
			code += "_" + strings.Repeat(" ", joinCodeLength-len(code)-1)
		}
		return m.page("JOIN DUEL",
			"Enter the code from your opponent:",
			"",
			fmt.Sprintf("[ %s ]", code),
		) + m.footer("Enter: Join  |  Esc: Back")

	case OnlineStateJoinWaiting:
		return m.page("CONNECTING",
			fmt.Sprintf("Joining %s...", m.codeInput),
		) + m.footer("Please wait")

	case OnlineStateInMatch:
		return m.viewMatch()

	case OnlineStateMatchEnded:
		return m.viewResult()

	default:
		return m.page("ONLINE DUEL",
			"[H] Host a duel",
			"[J] Join a duel",
		) + m.footer("Esc: Back  |  Q: Quit")
	}
}

func (m OnlineModel) viewMatch() string {
	var b strings.Builder
	if m.frame != nil {
		b.WriteString(RenderScreen(m.frame))
		b.WriteString("\n")
	} else {
		b.WriteString("\n")
		b.WriteString(centerText("Waiting for the board...", m.width, 0))
		b.WriteString("\n")
	}

	turn := "Opponent's turn"
	if m.status.Turn == m.side.String() {
		turn = "Your turn"
	}
	line := fmt.Sprintf("You are %s  |  %s  |  Code %s  |  Esc: Leave", m.side, turn, m.lobbyCode)
	b.WriteString(menuDimStyle.Render(line))
	return b.String()
}

func (m OnlineModel) viewResult() string {
	headline := "DUEL OVER"
	detail := ""
	if m.result != nil {
		switch m.result.Winner {
		case multiplayer.SideNone:
			detail = m.result.Reason.String()
		case m.side:
			headline = "YOU WIN"
			detail = m.result.Reason.String()
		default:
			headline = "YOU LOSE"
			detail = m.result.Reason.String()
		}
		detail = fmt.Sprintf("%s after %d shots", detail, m.result.Shots)
	}
	return m.page(headline, detail) + m.footer("Enter: Menu  |  Q: Quit")
}

func (m OnlineModel) page(title string, lines ...string) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(menuTitleStyle.Render(title), m.width, len(title)))
	b.WriteString("\n\n")
	for _, l := range lines {
		b.WriteString(centerText(l, m.width, 0))
		b.WriteString("\n")
	}
	if m.errMsg != "" {
		b.WriteString("\n")
		msg := "Error: " + m.errMsg
		b.WriteString(centerText(menuWarnStyle.Render(msg), m.width, len(msg)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m OnlineModel) footer(controls string) string {
	return "\n" + centerText(menuDimStyle.Render(controls), m.width, len(controls)) + "\n"
}

// State returns the current step.
func (m OnlineModel) State() OnlineState {
	return m.state
}

// BackToMenu reports whether the player left the online flow.
func (m OnlineModel) BackToMenu() bool {
	return m.backToMenu
}

// IsQuitting reports whether the player ended the session.
func (m OnlineModel) IsQuitting() bool {
	return m.quitting
}

// LobbyCode returns the code of the hosted or joined lobby.
func (m OnlineModel) LobbyCode() string {
	return m.lobbyCode
}

// Side returns the color this session plays.
func (m OnlineModel) Side() multiplayer.Side {
	return m.side
}
