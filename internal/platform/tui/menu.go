package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/khet/internal/core"
	"github.com/vovakirdan/khet/internal/games/khet/levels"
	"github.com/vovakirdan/khet/internal/registry"
)

// MenuItem represents a selectable play mode in the menu.
type MenuItem struct {
	ModeID string
	Title  string
}

// BoardItem is one board offered by the picker.
type BoardItem struct {
	ID   string
	Name string
}

var (
	menuTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	menuSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	menuDimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	menuWarnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
)

// MenuModel is the Bubble Tea model for the mode and board picker.
type MenuModel struct {
	items       []MenuItem
	boards      []BoardItem
	cursor      int
	board       int
	width       int
	height      int
	config      core.RuntimeConfig
	keyMapper   *KeyMapper
	loadErr     error
	quitting    bool
	selected    *MenuItem // Set when user selects a mode
	openHistory bool      // True if user pressed Tab for shot history
}

// NewMenuModel creates a new menu model. Boards come from the built-in set
// plus cfg.BoardsDir; the board named by cfg.BoardID is preselected.
func NewMenuModel(cfg core.RuntimeConfig) MenuModel {
	modes := registry.List()
	items := make([]MenuItem, 0, len(modes))
	for _, g := range modes {
		items = append(items, MenuItem{ModeID: g.ID, Title: g.Title})
	}

	m := MenuModel{
		items:     items,
		width:     cfg.ScreenW,
		height:    cfg.ScreenH,
		config:    cfg,
		keyMapper: NewKeyMapper(),
	}

	lvls, err := levels.NewLoader(cfg.BoardsDir).LoadAll()
	if err != nil {
		m.loadErr = err
	}
	for i, l := range lvls {
		name := l.Name
		if name == "" {
			name = l.ID
		}
		m.boards = append(m.boards, BoardItem{ID: l.ID, Name: name})
		if l.ID == cfg.BoardID {
			m.board = i
		}
	}

	return m
}

// WithOnline adds the online duel entry after the local modes.
func (m MenuModel) WithOnline() MenuModel {
	m.items = append(m.items, MenuItem{ModeID: OnlineModeID, Title: "Online Duel"})
	return m
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionPrevBoard:
		if len(m.boards) > 0 {
			m.board = core.Wrap(m.board-1, len(m.boards))
		}

	case MenuActionNextBoard:
		if len(m.boards) > 0 {
			m.board = core.Wrap(m.board+1, len(m.boards))
		}

	case MenuActionSelect:
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
			return m, tea.Quit // Exit menu to start game
		}

	case MenuActionHistory:
		m.openHistory = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(menuTitleStyle.Render("K H E T"), m.width, 7))
	b.WriteString("\n\n")
	b.WriteString(centerText("Select a mode", m.width, 0))
	b.WriteString("\n\n")

	for i, item := range m.items {
		line := "  " + item.Title
		if i == m.cursor {
			line = menuSelectedStyle.Render("> " + item.Title)
		}
		b.WriteString(centerText(line, m.width, len(item.Title)+2))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if board, ok := m.selectedBoard(); ok {
		line := fmt.Sprintf("< Board: %s >", board.Name)
		b.WriteString(centerText(line, m.width, 0))
	} else {
		b.WriteString(centerText(menuWarnStyle.Render("no boards available"), m.width, 19))
	}
	b.WriteString("\n")
	if m.loadErr != nil {
		b.WriteString(centerText(menuWarnStyle.Render(m.loadErr.Error()), m.width, len(m.loadErr.Error())))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Mode  |  Left/Right: Board  |  Enter: Play  |  Tab: History  |  Q: Quit"
	b.WriteString(centerText(menuDimStyle.Render(controls), m.width, len(controls)))
	b.WriteString("\n")

	return b.String()
}

func (m MenuModel) selectedBoard() (BoardItem, bool) {
	if len(m.boards) == 0 {
		return BoardItem{}, false
	}
	return m.boards[m.board], true
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsHistory returns true if user requested the shot history.
func (m MenuModel) WantsHistory() bool {
	return m.openHistory
}

// Config returns the runtime config with the picked board and the latest
// window size.
func (m MenuModel) Config() core.RuntimeConfig {
	cfg := m.config
	if board, ok := m.selectedBoard(); ok {
		cfg.BoardID = board.ID
	}
	return cfg
}

// centerText centers text within the given width. visible is the printed
// width of text when it carries ANSI styling; 0 means len(text).
func centerText(text string, width, visible int) string {
	if visible == 0 {
		visible = len(text)
	}
	if visible >= width {
		return text
	}
	padding := (width - visible) / 2
	return strings.Repeat(" ", padding) + text
}

// MenuResult holds the result of running the menu.
type MenuResult struct {
	ModeID       string
	BoardID      string
	Config       core.RuntimeConfig
	WantsHistory bool
	Quit         bool
}

// RunMenu runs the menu and returns the selection result.
func RunMenu(cfg core.RuntimeConfig) (MenuResult, error) {
	model := NewMenuModel(cfg)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return MenuResult{Config: cfg}, err
	}

	m, ok := finalModel.(MenuModel)
	if !ok {
		return MenuResult{Config: cfg, Quit: true}, nil
	}

	result := MenuResult{
		Config: m.Config(),
	}
	result.BoardID = result.Config.BoardID

	if m.WantsHistory() {
		result.WantsHistory = true
		return result, nil
	}

	if m.IsQuitting() {
		result.Quit = true
		return result, nil
	}

	if m.Selected() != nil {
		result.ModeID = m.Selected().ModeID
	} else {
		result.Quit = true
	}

	return result, nil
}
