package jandiui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/blogjandi/jandi/internal/drilldown"
	"github.com/blogjandi/jandi/internal/jandiui/styles"
	"github.com/blogjandi/jandi/internal/source"
	"github.com/blogjandi/jandi/internal/topics"
)

const maxBarWidth = 24

// postsLoadedMsg delivers one drilldown fetch back to the UI goroutine.
type postsLoadedMsg struct {
	result drilldown.Result
}

func fetchCmd(fetch drilldown.Fetch) tea.Cmd {
	if fetch == nil {
		return nil
	}
	return func() tea.Msg {
		return postsLoadedMsg{result: fetch()}
	}
}

type statsView struct {
	palette   topics.Palette
	drilldown *drilldown.Drilldown

	overview drilldown.Overview
	noStats  bool
	loaded   bool

	selected int
	top      int
	// restore is the category to reselect after a load.
	restore string
}

func newStatsView(cfg Config) *statsView {
	return &statsView{
		palette:   *cfg.Palette,
		drilldown: drilldown.New(cfg.Source, *cfg.Palette),
		restore:   cfg.State.Snapshot().LastCategory,
	}
}

// Close ends the drilldown session.
func (v *statsView) Close() {
	v.drilldown.Close()
}

func (v *statsView) Update(msg tea.Msg) tea.Cmd {
	switch typed := msg.(type) {
	case dashboardLoadedMsg:
		v.applyLoaded(typed)
		return nil
	case postsLoadedMsg:
		v.drilldown.Apply(typed.result)
		return nil
	case tea.KeyMsg:
		return v.handleKey(typed)
	}
	return nil
}

func (v *statsView) applyLoaded(msg dashboardLoadedMsg) {
	if msg.err != nil {
		return
	}
	// A reload starts a new session; pending fetches from the old one are dropped.
	v.drilldown.Close()
	stats := msg.dashboard.Stats
	v.noStats = errors.Is(msg.dashboard.StatsErr, source.ErrNotFound)
	v.drilldown.SetSummaries(stats.Categories, stats.Count)
	v.overview = drilldown.BuildOverview(stats, v.palette)
	v.selected = 0
	for i, row := range v.drilldown.Rows() {
		if row.Category == v.restore {
			v.selected = i
			break
		}
	}
	v.top = 0
	v.loaded = true
}

func (v *statsView) selectedCategory() string {
	rows := v.drilldown.Rows()
	if v.selected < 0 || v.selected >= len(rows) {
		return ""
	}
	return rows[v.selected].Category
}

func (v *statsView) handleKey(msg tea.KeyMsg) tea.Cmd {
	rows := v.drilldown.Rows()
	if len(rows) == 0 {
		return nil
	}
	switch msg.String() {
	case "up", "k":
		v.selected = clampInt(v.selected-1, 0, len(rows)-1)
	case "down", "j":
		v.selected = clampInt(v.selected+1, 0, len(rows)-1)
	case "enter", " ":
		v.selected = clampInt(v.selected, 0, len(rows)-1)
		v.restore = rows[v.selected].Category
		return fetchCmd(v.drilldown.Toggle(v.restore))
	}
	v.restore = rows[v.selected].Category
	return nil
}

func (v *statsView) View(width, height int, theme styles.Theme) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if !v.loaded {
		return theme.Muted().Render("불러오는 중...")
	}
	innerW := styles.PanelInnerWidth(width)
	innerH := max(1, height-2)

	if v.noStats {
		body := theme.Muted().Render("아직 통계 데이터가 없습니다.")
		return styles.PanelStyle(theme, true).Width(width - 2).Render(body)
	}

	cards := v.renderCards(innerW, theme)
	listH := max(1, innerH-lipgloss.Height(cards)-2)
	list := v.renderRows(innerW, listH, theme)
	hint := theme.Muted().Render(truncate("↑/↓: select  enter: posts", innerW))

	content := lipgloss.JoinVertical(lipgloss.Left, cards, "", list, hint)
	return styles.PanelStyle(theme, true).Width(width - 2).MaxHeight(height).Render(content)
}

func (v *statsView) renderCards(width int, theme styles.Theme) string {
	ov := v.overview
	cards := []struct{ title, value, detail string }{
		{"전체 글", fmt.Sprintf("%d", ov.TotalPosts), ov.Joined},
		{"활동 기간", fmt.Sprintf("%d일", ov.ActiveDays), "첫 글부터 오늘까지"},
		{"최다 주제", ov.TopCategory, ov.TopDetail},
	}

	cardW := max(12, (width-styles.LayoutGap*(len(cards)-1))/len(cards)-2)
	if cardW*len(cards) > width {
		lines := make([]string, 0, len(cards))
		for _, c := range cards {
			lines = append(lines, fmt.Sprintf("%s: %s  %s", c.title, theme.Title().Render(c.value), theme.Muted().Render(c.detail)))
		}
		return strings.Join(lines, "\n")
	}

	rendered := make([]string, 0, len(cards)*2)
	for i, c := range cards {
		body := lipgloss.JoinVertical(lipgloss.Left,
			theme.Muted().Render(c.title),
			theme.Title().Render(truncate(c.value, cardW)),
			theme.Muted().Render(truncate(c.detail, cardW)),
		)
		if i > 0 {
			rendered = append(rendered, strings.Repeat(" ", styles.LayoutGap))
		}
		rendered = append(rendered, styles.CardStyle(theme, cardW).Render(body))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (v *statsView) renderRows(width, height int, theme styles.Theme) string {
	rows := v.drilldown.Rows()
	if len(rows) == 0 {
		return theme.Muted().Render("데이터 없음")
	}

	maxCount := 0
	for _, row := range rows {
		maxCount = max(maxCount, row.Count)
	}
	barW := min(maxBarWidth, max(0, width-40))

	lines := make([]string, 0, len(rows)*2)
	selectedLine := 0
	for i, row := range rows {
		if i == v.selected {
			selectedLine = len(lines)
		}
		lines = append(lines, v.renderRow(row, i == v.selected, barW, maxCount, theme))
		if row.Expanded {
			lines = append(lines, v.renderPosts(row, width, theme)...)
		}
	}

	v.top = scrollTop(v.top, selectedLine, height, len(lines))
	end := min(len(lines), v.top+height)
	visible := lines[v.top:end]
	for i := range visible {
		visible[i] = truncate(visible[i], width)
	}
	return strings.Join(visible, "\n")
}

func (v *statsView) renderRow(row drilldown.Row, selected bool, barW, maxCount int, theme styles.Theme) string {
	marker := "▸"
	if row.Expanded {
		marker = "▾"
	}
	swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(row.Hex)).Render("■")
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color(row.Hex)).Render(renderBar(row.Count, maxCount, barW, "█"))
	name := padRight(truncate(row.Name, 14), 14)
	if selected {
		name = theme.Selected().Render(name)
	}
	return fmt.Sprintf("%s %2d. %s %s %4d %s %5.1f%%", marker, row.Rank, swatch, name, row.Count, bar, row.Percentage)
}

func (v *statsView) renderPosts(row drilldown.Row, width int, theme styles.Theme) []string {
	const indent = "     "
	switch row.State {
	case drilldown.StateLoading:
		return []string{indent + theme.Muted().Render("불러오는 중...")}
	case drilldown.StateEmpty, drilldown.StateAbsent:
		return []string{indent + theme.Muted().Render("게시글이 없습니다.")}
	}
	lines := make([]string, 0, len(row.Posts))
	for _, post := range row.Posts {
		title := post.Title
		if strings.TrimSpace(title) == "" {
			title = post.URL
		}
		meta := theme.Muted().Render(fmt.Sprintf("%s  %s", post.Date, post.Platform))
		line := fmt.Sprintf("%s· %s  %s", indent, truncate(title, max(10, width-len(indent)-24)), meta)
		lines = append(lines, line)
	}
	return lines
}

// scrollTop keeps the selected line inside a window of height lines.
func scrollTop(top, selected, height, total int) int {
	if height <= 0 || total <= height {
		return 0
	}
	if selected < top {
		top = selected
	}
	if selected >= top+height {
		top = selected - height + 1
	}
	return clampInt(top, 0, total-height)
}
