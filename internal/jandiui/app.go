// Package jandiui is the bubbletea terminal UI for the activity calendar and
// the topic statistics drilldown.
package jandiui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/blogjandi/jandi/internal/calendar"
	"github.com/blogjandi/jandi/internal/jandiui/state"
	"github.com/blogjandi/jandi/internal/jandiui/styles"
	"github.com/blogjandi/jandi/internal/source"
	"github.com/blogjandi/jandi/internal/topics"
)

const defaultLoadTimeout = 30 * time.Second

type ViewID string

const (
	ViewCalendar ViewID = "calendar"
	ViewStats    ViewID = "stats"
)

var viewSwitchKeys = map[string]ViewID{
	"c": ViewCalendar,
	"s": ViewStats,
}

// Config wires the UI to its collaborators.
type Config struct {
	Source  source.Source
	Palette *topics.Palette
	Locale  calendar.Locale
	Months  int
	Theme   string
	// State restores and records the session. Nil keeps it in memory.
	State *state.Manager
	// Now overrides the clock.
	Now func() time.Time
}

// Model is the root bubbletea model.
type Model struct {
	src   source.Source
	theme styles.Theme
	now   func() time.Time
	state *state.Manager

	width  int
	height int

	loading bool
	lastErr error

	active ViewID
	views  map[ViewID]viewModel
}

type viewModel interface {
	Update(msg tea.Msg) tea.Cmd
	View(width, height int, theme styles.Theme) string
}

// dashboardLoadedMsg carries the initial events and stats to every view.
type dashboardLoadedMsg struct {
	today     time.Time
	dashboard source.Dashboard
	err       error
}

// NewModel builds the UI model.
func NewModel(cfg Config) (*Model, error) {
	normalized, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	m := &Model{
		src:     normalized.Source,
		theme:   styles.Lookup(normalized.Theme),
		now:     normalized.Now,
		state:   normalized.State,
		loading: true,
		active:  ViewCalendar,
		views:   make(map[ViewID]viewModel, 2),
	}
	m.views[ViewCalendar] = newCalendarView(normalized)
	m.views[ViewStats] = newStatsView(normalized)
	if last := ViewID(normalized.State.Snapshot().LastView); m.views[last] != nil {
		m.active = last
	}
	return m, nil
}

// Run starts the program and blocks until it exits.
func Run(cfg Config) error {
	model, err := NewModel(cfg)
	if err != nil {
		return err
	}
	defer model.Close()

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

// Close ends every view session and flushes the saved state. In-flight
// fetches are discarded.
func (m *Model) Close() error {
	for _, view := range m.views {
		if closer, ok := view.(interface{ Close() }); ok {
			closer.Close()
		}
	}
	m.recordState()
	return m.state.Close()
}

// recordState copies the active view, cursor and selection into the state
// manager. Saves are debounced.
func (m *Model) recordState() {
	m.state.SetLastView(string(m.active))
	if cal, ok := m.views[ViewCalendar].(*calendarView); ok && cal.loaded {
		m.state.SetCursor(cal.cursor)
	}
	if stats, ok := m.views[ViewStats].(*statsView); ok && stats.loaded {
		if category := stats.selectedCategory(); category != "" {
			m.state.SetLastCategory(category)
		}
	}
}

func (m *Model) Init() tea.Cmd {
	return m.loadCmd()
}

func (m *Model) loadCmd() tea.Cmd {
	src := m.src
	today := m.now()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), defaultLoadTimeout)
		defer cancel()
		dash, err := source.LoadDashboard(ctx, src, today)
		return dashboardLoadedMsg{today: today, dashboard: dash, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		return m, nil
	case dashboardLoadedMsg:
		m.loading = false
		m.lastErr = typed.err
		cmds := make([]tea.Cmd, 0, len(m.views))
		for _, view := range m.views {
			cmds = append(cmds, view.Update(typed))
		}
		return m, tea.Batch(cmds...)
	case tea.KeyMsg:
		cmd, handled := m.handleGlobalKey(typed)
		if !handled {
			if active := m.views[m.active]; active != nil {
				cmd = active.Update(msg)
			}
		}
		m.recordState()
		return m, cmd
	}

	if active := m.views[m.active]; active != nil {
		return m, active.Update(msg)
	}
	return m, nil
}

func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit, true
	case "tab":
		if m.active == ViewCalendar {
			m.active = ViewStats
		} else {
			m.active = ViewCalendar
		}
		return nil, true
	case "r":
		if m.loading {
			return nil, true
		}
		m.loading = true
		return m.loadCmd(), true
	}
	if next, ok := viewSwitchKeys[msg.String()]; ok {
		m.active = next
		return nil, true
	}
	return nil, false
}

func (m *Model) View() string {
	header := m.renderHeader()
	footer := m.renderFooter()
	contentHeight := max(0, m.height-lipgloss.Height(header)-lipgloss.Height(footer))

	var body string
	switch {
	case m.loading:
		body = m.theme.Muted().Render("불러오는 중...")
	case m.lastErr != nil:
		body = m.theme.Error().Render(errorText(m.lastErr))
	default:
		if active := m.views[m.active]; active != nil {
			body = active.View(m.width, contentHeight, m.theme)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m *Model) renderHeader() string {
	tabs := []ViewID{ViewCalendar, ViewStats}
	parts := make([]string, 0, len(tabs))
	for _, id := range tabs {
		label := tabLabel(id)
		if id == m.active {
			parts = append(parts, m.theme.Selected().Render("["+label+"]"))
		} else {
			parts = append(parts, m.theme.Muted().Render(" "+label+" "))
		}
	}
	return m.theme.Title().Render("jandi") + "  " + strings.Join(parts, " ")
}

func (m *Model) renderFooter() string {
	hint := "tab: switch  r: reload  q: quit"
	return lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Chrome.Footer)).Render(hint)
}

func tabLabel(id ViewID) string {
	switch id {
	case ViewStats:
		return "주제 통계"
	default:
		return "잔디"
	}
}

func errorText(err error) string {
	if errors.Is(err, source.ErrUnauthorized) {
		return "인증이 필요합니다. api.token을 설정하세요. (" + err.Error() + ")"
	}
	return "데이터를 불러오지 못했습니다: " + err.Error()
}

func (c Config) normalize() (Config, error) {
	if c.Source == nil {
		return Config{}, fmt.Errorf("source is required")
	}
	if c.Palette == nil {
		palette := topics.Default
		c.Palette = &palette
	}
	if c.Months <= 0 {
		c.Months = calendar.DefaultMonths
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.State == nil {
		c.State = state.New("")
	}
	if strings.TrimSpace(c.Theme) == "" {
		c.Theme = styles.DefaultTheme.Name
	}
	if _, ok := styles.Themes[c.Theme]; !ok {
		return Config{}, fmt.Errorf("invalid theme %q", c.Theme)
	}
	return c, nil
}
