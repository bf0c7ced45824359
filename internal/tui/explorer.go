package tui

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/effectsim/internal/fallout"
	"github.com/san-kum/effectsim/internal/viz"
)

type state int

const (
	stateField state = iota
	stateConfig
)

// times the playback steps through, h
var timeSteps = []float64{1, 2, 3, 6, 12, 24, 48, 96, 168, 336, 720}

var paramNames = []string{"yield_kt", "wind_mps", "wind_from_deg", "shear", "hob_m", "horizon_h"}

type model struct {
	state state

	scenario fallout.Scenario
	grid     fallout.Grid
	tabs     fallout.Tables
	field    *fallout.Field
	err      error

	quantity int
	ci, cj   int // cursor node
	step     int // index into timeSteps
	playing  bool

	paramCursor int
	editing     bool
	editBuf     string

	theme  viz.Theme
	styles viz.Styles
	width  int
	height int
}

// NewExplorer evaluates sc over grid and returns the explorer model.
func NewExplorer(sc fallout.Scenario, grid fallout.Grid, tabs fallout.Tables, theme viz.Theme) (tea.Model, error) {
	m := model{
		scenario: sc,
		grid:     grid,
		tabs:     tabs,
		quantity: 2, // dose
		step:     len(timeSteps) - 1,
		theme:    theme,
		styles:   viz.NewStyles(theme),
		width:    100,
		height:   36,
	}
	if err := m.evaluate(); err != nil {
		return nil, err
	}
	_, m.ci, m.cj = fallout.Peak(m.field.Dose)
	return m, nil
}

func (m *model) evaluate() error {
	f, err := fallout.Evaluate(m.scenario, m.grid, m.tabs)
	if err != nil {
		return err
	}
	m.field = f
	m.scenario = f.Scenario
	return nil
}

func (m model) Init() tea.Cmd { return nil }

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(400*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == stateConfig {
			return m.configKey(msg)
		}
		return m.fieldKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if !m.playing {
			return m, nil
		}
		if m.step >= len(timeSteps)-1 {
			m.playing = false
			return m, nil
		}
		m.step++
		return m, tick()
	}
	return m, nil
}

func (m model) fieldKey(msg tea.KeyMsg) (model, tea.Cmd) {
	nx, ny := m.field.Nx(), m.field.Ny()
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "left", "h":
		m.ci = max(m.ci-1, 0)
	case "right", "l":
		m.ci = min(m.ci+1, nx-1)
	case "up", "k":
		m.cj = min(m.cj+1, ny-1)
	case "down", "j":
		m.cj = max(m.cj-1, 0)
	case "tab":
		m.quantity = (m.quantity + 1) % len(fallout.Quantities)
	case "[":
		m.step = max(m.step-1, 0)
	case "]":
		m.step = min(m.step+1, len(timeSteps)-1)
	case "p":
		_, m.ci, m.cj = fallout.Peak(m.field.Dose)
	case " ":
		m.playing = !m.playing
		if m.playing {
			if m.step >= len(timeSteps)-1 {
				m.step = 0
			}
			return m, tick()
		}
	case "c":
		m.state = stateConfig
		m.playing = false
	}
	return m, nil
}

func (m model) params() []float64 {
	sc := m.scenario
	return []float64{sc.YieldKt, sc.Wind.Speed, sc.Wind.Direction, sc.Shear, sc.HeightOfBurst, sc.Horizon}
}

func (m *model) setParam(i int, v float64) {
	sc := &m.scenario
	switch paramNames[i] {
	case "yield_kt":
		sc.YieldKt = v
	case "wind_mps":
		sc.Wind.Speed = v
	case "wind_from_deg":
		sc.Wind.Direction = v
	case "shear":
		sc.Shear = v
	case "hob_m":
		sc.HeightOfBurst = v
	case "horizon_h":
		sc.Horizon = v
	}
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			v, err := strconv.ParseFloat(m.editBuf, 64)
			if err != nil {
				m.err = fmt.Errorf("%s: %w", paramNames[m.paramCursor], err)
			} else {
				m.setParam(m.paramCursor, v)
			}
			m.editing = false
			m.editBuf = ""
		case "esc":
			m.editing = false
			m.editBuf = ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 {
				c := s[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == 'e' {
					m.editBuf += s
				}
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "q":
		m.scenario = m.field.Scenario
		m.err = nil
		m.state = stateField
	case "up", "k":
		m.paramCursor = max(m.paramCursor-1, 0)
	case "down", "j":
		m.paramCursor = min(m.paramCursor+1, len(paramNames)-1)
	case "enter", " ":
		m.editing = true
		m.editBuf = strconv.FormatFloat(m.params()[m.paramCursor], 'g', -1, 64)
	case "s":
		if err := m.evaluate(); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.ci = min(m.ci, m.field.Nx()-1)
		m.cj = min(m.cj, m.field.Ny()-1)
		m.state = stateField
	}
	return m, nil
}

// playTime is the playback time in hours, capped at the horizon.
func (m model) playTime() float64 {
	return math.Min(timeSteps[m.step], m.field.Scenario.Horizon)
}

// values returns the displayed matrix; dose follows the playback time.
func (m model) values() ([][]float64, string) {
	f := m.field
	q := fallout.Quantities[m.quantity]
	if q.Name != fallout.QuantityDose {
		v, _ := f.Quantity(q.Name)
		return v, q.Unit
	}
	t := m.playTime()
	out := make([][]float64, f.Ny())
	for j := range out {
		out[j] = make([]float64, f.Nx())
		for i := range out[j] {
			out[j][i] = f.DoseAt(i, j, t)
		}
	}
	return out, q.Unit
}

func (m model) View() string {
	if m.state == stateConfig {
		return m.viewConfig()
	}
	return m.viewField()
}

func (m model) mapSize() (w, h int) {
	return max(m.width-4, 20), max(m.height-10, 8)
}

func (m model) viewField() string {
	f := m.field
	q, unit := m.values()
	name := fallout.Quantities[m.quantity].Name
	w, h := m.mapSize()

	var levels []float64
	if name == fallout.QuantityArrival {
		levels = []float64{0.5, 1, 2, 6, 24, 96}
	} else {
		peak, _, _ := fallout.Peak(q)
		levels = viz.DecadeLevels(peak, 5)
	}

	rows := strings.Split(strings.TrimSuffix(viz.Shade(f.X, f.Y, q, levels, w, h), "\n"), "\n")
	col := (m.ci*2 + 1) * w / (f.Nx() * 2)
	row := h - 1 - (m.cj*2+1)*h/(f.Ny()*2)

	var b strings.Builder
	sc := f.Scenario
	b.WriteString(m.styles.Title.Render(fmt.Sprintf("%g kt  wind %.1f m/s from %g°  %s (%s)", sc.YieldKt, sc.Wind.Speed, sc.Wind.Direction, name, unit)))
	b.WriteString("\n")
	for r, line := range rows {
		b.WriteString(m.renderRow(line, r == row, col, levels))
		b.WriteByte('\n')
	}

	x, y := f.X[m.ci], f.Y[m.cj]
	b.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s   %s %s\n",
		m.styles.Label.Render("node"), m.styles.Value.Render(fmt.Sprintf("(%.1f, %.1f) km", x/1e3, y/1e3)),
		m.styles.Label.Render("t"), m.styles.Value.Render(fmt.Sprintf("%g h", m.playTime())),
		m.styles.Label.Render("value"), m.styles.Value.Render(fmt.Sprintf("%.4g", q[m.cj][m.ci])),
		m.styles.Label.Render("arrival"), m.styles.Value.Render(fmt.Sprintf("%.2f h", f.Arrival[m.cj][m.ci])),
	))
	b.WriteString(viz.Legend(levels, unit, m.theme) + "\n")
	if f.LowReliability {
		b.WriteString(m.styles.Warning.Render("low reliability below 100 kt") + "\n")
	}
	b.WriteString(m.styles.Hint.Render("←↑↓→ move  tab quantity  [ ] time  space play  p peak  c configure  q quit"))
	return b.String()
}

// renderRow colours a shaded row, marking the cursor.
func (m model) renderRow(line string, cursorRow bool, col int, levels []float64) string {
	runes := []rune(line)
	var b strings.Builder
	for k, r := range runes {
		if cursorRow && k == col {
			b.WriteString(m.styles.Error.Render("◎"))
			continue
		}
		band := rampBand(r, len(levels))
		if band < 0 {
			b.WriteRune(r)
			continue
		}
		b.WriteString(lipgloss.NewStyle().Foreground(m.theme.Band(band, len(levels))).Render(string(r)))
	}
	return b.String()
}

// rampBand recovers the band of a Shade character.
func rampBand(r rune, n int) int {
	const ramp = ".:-=+*#%@"
	k := strings.IndexRune(ramp, r)
	if k < 0 || n == 0 {
		return -1
	}
	for band := n - 1; band >= 0; band-- {
		if band*len(ramp)/n <= k {
			return band
		}
	}
	return -1
}

func (m model) viewConfig() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("scenario") + "\n\n")

	vals := m.params()
	for i, name := range paramNames {
		val := fmt.Sprintf("%10.4g", vals[i])
		if m.editing && i == m.paramCursor {
			val = fmt.Sprintf("%10s", m.editBuf+"▋")
		}
		if i == m.paramCursor {
			b.WriteString("  ▸ " + m.styles.Value.Render(fmt.Sprintf("%-14s%s", name, val)) + "\n")
		} else {
			b.WriteString("    " + m.styles.Label.Render(fmt.Sprintf("%-14s%s", name, val)) + "\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n" + m.styles.Error.Render(describe(m.err)) + "\n")
	}
	b.WriteString("\n" + m.styles.Hint.Render("↑↓ select  enter edit  s evaluate  esc back"))
	return b.String()
}

func describe(err error) string {
	var se *fallout.StageError
	if errors.As(err, &se) {
		return fmt.Sprintf("%s: %v", se.Stage, se.Wrapped)
	}
	return err.Error()
}

// RunExplorer opens the explorer full screen.
func RunExplorer(sc fallout.Scenario, grid fallout.Grid, tabs fallout.Tables, theme viz.Theme) error {
	m, err := NewExplorer(sc, grid, tabs, theme)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
