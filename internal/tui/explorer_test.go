package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/san-kum/effectsim/internal/fallout"
	"github.com/san-kum/effectsim/internal/tables"
	"github.com/san-kum/effectsim/internal/viz"
)

func newTestModel(t *testing.T) model {
	t.Helper()
	log, _ := logtest.NewNullLogger()
	cat, err := tables.Default(log)
	if err != nil {
		t.Fatal(err)
	}
	tabs, err := fallout.LoadTables(cat)
	if err != nil {
		t.Fatal(err)
	}
	sc := fallout.Scenario{YieldKt: 500, Wind: fallout.Wind{Speed: 8, Direction: 270}}
	m, err := NewExplorer(sc, fallout.Symmetric(150e3, 30e3, 31, 13), tabs, viz.ThemeDefault)
	if err != nil {
		t.Fatal(err)
	}
	return m.(model)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m model, keys ...string) model {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(model)
	}
	return m
}

func TestExplorerStartsAtPeak(t *testing.T) {
	m := newTestModel(t)
	_, pi, pj := fallout.Peak(m.field.Dose)
	if m.ci != pi || m.cj != pj {
		t.Errorf("expected cursor at peak (%d, %d), got (%d, %d)", pi, pj, m.ci, m.cj)
	}
}

func TestExplorerCursorClamps(t *testing.T) {
	m := newTestModel(t)
	for i := 0; i < 50; i++ {
		m = press(m, "left")
	}
	if m.ci != 0 {
		t.Errorf("expected cursor at column 0, got %d", m.ci)
	}
	m = press(m, "l", "k")
	if m.ci != 1 {
		t.Errorf("expected cursor at column 1, got %d", m.ci)
	}
}

func TestExplorerQuantityAndTime(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "tab")
	if fallout.Quantities[m.quantity].Name != fallout.QuantityERD {
		t.Errorf("expected erd after dose, got %s", fallout.Quantities[m.quantity].Name)
	}
	m = press(m, "tab")
	if m.quantity != 0 {
		t.Errorf("expected wrap to first quantity, got %d", m.quantity)
	}

	m.quantity = 2
	full, _ := m.values()
	m = press(m, "[", "[", "[")
	early, _ := m.values()
	if m.playTime() >= 720 {
		t.Fatalf("expected earlier time, got %g", m.playTime())
	}
	if early[m.cj][m.ci] > full[m.cj][m.ci] {
		t.Error("expected less dose earlier")
	}
}

func TestExplorerReconfigure(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "c")
	if m.state != stateConfig {
		t.Fatal("expected config state")
	}

	// yield is the first parameter
	m = press(m, "enter")
	for range m.editBuf {
		m = press(m, "backspace")
	}
	m = press(m, "2", "0", "0", "0", "enter", "s")
	if m.state != stateField || m.field.Scenario.YieldKt != 2000 {
		t.Errorf("expected re-evaluated 2000 kt field, got %g", m.field.Scenario.YieldKt)
	}

	m = press(m, "c", "enter")
	for range m.editBuf {
		m = press(m, "backspace")
	}
	m = press(m, "0", "enter", "s")
	if m.state != stateConfig || !errors.Is(m.err, fallout.ErrInvalidParameters) {
		t.Errorf("expected invalid yield to stay in config, got %v", m.err)
	}
	if m.field.Scenario.YieldKt != 2000 {
		t.Error("expected previous field kept")
	}
	if !strings.Contains(m.View(), "yield") {
		t.Error("expected error shown in config view")
	}
}

func TestExplorerView(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	m = next.(model)
	v := m.View()
	if !strings.Contains(v, "◎") {
		t.Error("expected cursor marker")
	}
	if !strings.Contains(v, "500 kt") {
		t.Error("expected scenario title")
	}
}

func TestRampBand(t *testing.T) {
	for band := 0; band < 5; band++ {
		r := rune(".:-=+*#%@"[band*9/5])
		if got := rampBand(r, 5); got != band {
			t.Errorf("band %d: got %d", band, got)
		}
	}
	if rampBand(' ', 5) != -1 {
		t.Error("expected blank outside bands")
	}
}
