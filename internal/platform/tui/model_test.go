package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/khet/internal/core"
	_ "github.com/vovakirdan/khet/internal/games/khet"
	"github.com/vovakirdan/khet/internal/registry"
	"github.com/vovakirdan/khet/internal/storage"
)

type recordingSaver struct {
	shots []core.Shot
}

func (r *recordingSaver) SaveShot(shot core.Shot) (int64, error) {
	r.shots = append(r.shots, shot)
	return int64(len(r.shots)), nil
}

func newTestModel(t *testing.T, mode string, saver storage.ShotSaver) Model {
	t.Helper()
	game, err := registry.Create(mode)
	if err != nil {
		t.Fatalf("Create(%s) failed: %v", mode, err)
	}
	m := NewModel(game, saver, core.DefaultConfig())
	m.Init()
	return m
}

func press(t *testing.T, m Model, msg tea.KeyMsg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func tick(t *testing.T, m Model) Model {
	t.Helper()
	next, _ := m.Update(TickMsg{})
	return next.(Model)
}

func TestModelSavesFiredShot(t *testing.T) {
	saver := &recordingSaver{}
	m := newTestModel(t, "sandbox", saver)

	m = press(t, m, runeKey('f'))
	m = tick(t, m)

	if len(saver.shots) != 1 {
		t.Fatalf("expected 1 saved shot, got %d", len(saver.shots))
	}
	if saver.shots[0].BoardID != "classic" || saver.shots[0].Color != "silver" {
		t.Errorf("unexpected shot %+v", saver.shots[0])
	}
	if m.State().Shots != 1 {
		t.Errorf("expected 1 shot in state, got %d", m.State().Shots)
	}

	// Input is consumed by the tick
	m = tick(t, m)
	if len(saver.shots) != 1 {
		t.Errorf("expected no further shots, got %d", len(saver.shots))
	}
}

func TestModelWithoutStore(t *testing.T) {
	m := newTestModel(t, "sandbox", nil)
	m = press(t, m, runeKey(' '))
	m = tick(t, m)
	if m.State().Shots != 1 {
		t.Errorf("expected shot without store, got %+v", m.State())
	}
}

func TestModelRestartResetsBoard(t *testing.T) {
	m := newTestModel(t, "sandbox", nil)
	m = press(t, m, runeKey('f'))
	m = tick(t, m)

	m = press(t, m, runeKey('r'))
	m = tick(t, m)
	if m.State().Shots != 0 {
		t.Errorf("expected restart to clear shots, got %d", m.State().Shots)
	}
}

func TestModelQuitAndBack(t *testing.T) {
	m := newTestModel(t, "sandbox", nil)

	// Back is ignored while playing
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.BackToMenu() {
		t.Error("back should need a paused or finished round")
	}
	m = tick(t, m)

	m = press(t, m, runeKey('p'))
	m = tick(t, m)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.BackToMenu() {
		t.Error("expected back to menu while paused")
	}

	m = newTestModel(t, "sandbox", nil)
	_, cmd := m.Update(runeKey('q'))
	if cmd == nil {
		t.Error("expected quit command")
	}
}

func TestModelView(t *testing.T) {
	m := newTestModel(t, "duel", nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(Model)

	if !strings.Contains(m.View(), "Khet Duel") {
		t.Error("expected duel title in view")
	}
}

func TestMenuSelectsModeAndBoard(t *testing.T) {
	menu := NewMenuModel(core.DefaultConfig())

	if len(menu.items) != 2 {
		t.Fatalf("expected sandbox and duel, got %v", menu.items)
	}
	if b, ok := menu.selectedBoard(); !ok || b.ID != "classic" {
		t.Fatalf("expected classic preselected, got %v", b)
	}

	next, _ := menu.Update(tea.KeyMsg{Type: tea.KeyRight})
	menu = next.(MenuModel)
	next, _ = menu.Update(tea.KeyMsg{Type: tea.KeyDown})
	menu = next.(MenuModel)
	next, _ = menu.Update(tea.KeyMsg{Type: tea.KeyEnter})
	menu = next.(MenuModel)

	if menu.Selected() == nil || menu.Selected().ModeID != "sandbox" {
		t.Fatalf("expected sandbox selected, got %+v", menu.Selected())
	}
	if menu.Config().BoardID != "djed-loop" {
		t.Errorf("expected djed-loop, got %s", menu.Config().BoardID)
	}
}

func TestSessionFlow(t *testing.T) {
	s := NewSessionModel(nil, core.DefaultConfig(), "tester")

	next, _ := s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	s = next.(SessionModel)
	if s.current != screenGame || s.game == nil {
		t.Fatal("expected game screen after selecting a mode")
	}

	next, _ = s.Update(runeKey('p'))
	s = next.(SessionModel)
	next, _ = s.Update(TickMsg{})
	s = next.(SessionModel)
	next, _ = s.Update(tea.KeyMsg{Type: tea.KeyEsc})
	s = next.(SessionModel)
	if s.current != screenMenu {
		t.Fatal("expected menu after backing out of a paused game")
	}

	next, _ = s.Update(tea.KeyMsg{Type: tea.KeyTab})
	s = next.(SessionModel)
	if s.current != screenHistory {
		t.Fatal("expected history screen")
	}
	if !strings.Contains(s.View(), "No shots recorded yet") {
		t.Error("expected empty history without a store")
	}
}
