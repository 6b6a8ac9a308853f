package jandiui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/blogjandi/jandi/internal/calendar"
	"github.com/blogjandi/jandi/internal/jandiui/styles"
	"github.com/blogjandi/jandi/internal/models"
	"github.com/blogjandi/jandi/internal/topics"
)

type calendarView struct {
	builder calendar.Builder
	palette topics.Palette
	locale  calendar.Locale

	grid      calendar.Grid
	summaries []models.CategorySummary
	cursor    time.Time
	loaded    bool
}

func newCalendarView(cfg Config) *calendarView {
	v := &calendarView{
		builder: calendar.Builder{Months: cfg.Months, Palette: cfg.Palette, Locale: cfg.Locale},
		palette: *cfg.Palette,
		locale:  cfg.Locale,
	}
	if day, ok := cfg.State.Snapshot().CursorDate(); ok {
		v.cursor = day
	}
	return v
}

func (v *calendarView) Update(msg tea.Msg) tea.Cmd {
	switch typed := msg.(type) {
	case dashboardLoadedMsg:
		v.applyLoaded(typed)
		return nil
	case tea.KeyMsg:
		return v.handleKey(typed)
	}
	return nil
}

func (v *calendarView) applyLoaded(msg dashboardLoadedMsg) {
	if msg.err != nil {
		return
	}
	v.grid = v.builder.Build(msg.dashboard.Events, msg.today)
	v.summaries = msg.dashboard.Stats.Categories
	if v.cursor.IsZero() || !v.inGrid(v.cursor) {
		v.cursor = v.grid.End
	}
	v.loaded = true
}

func (v *calendarView) handleKey(msg tea.KeyMsg) tea.Cmd {
	if !v.loaded {
		return nil
	}
	switch msg.String() {
	case "left", "h":
		v.moveCursor(-7)
	case "right", "l":
		v.moveCursor(7)
	case "up", "k":
		v.moveCursor(-1)
	case "down", "j":
		v.moveCursor(1)
	case "home", "g":
		v.cursor = v.grid.Start
	case "end", "G":
		v.cursor = v.grid.End
	}
	return nil
}

func (v *calendarView) moveCursor(days int) {
	next := v.cursor.AddDate(0, 0, days)
	if v.inGrid(next) {
		v.cursor = next
	}
}

func (v *calendarView) inGrid(day time.Time) bool {
	_, _, ok := v.grid.Position(day)
	return ok
}

func (v *calendarView) renderer(theme styles.Theme) GridRenderer {
	return GridRenderer{Theme: theme, Palette: v.palette, Locale: v.locale, Color: true}
}

func (v *calendarView) View(width, height int, theme styles.Theme) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if !v.loaded {
		return theme.Muted().Render("불러오는 중...")
	}

	innerW := styles.PanelInnerWidth(width)
	r := v.renderer(theme)

	lines := []string{
		theme.Title().Render(v.title()),
		"",
		r.Render(v.grid, v.cursor, innerW),
		"",
	}
	if cell, ok := v.grid.Cell(v.cursor); ok {
		lines = append(lines, truncate(r.TooltipText(cell), innerW))
	}
	if legend := r.Legend(v.summaries); legend != "" {
		lines = append(lines, "", legend)
	}
	lines = append(lines, theme.Muted().Render(r.IntensityScale(v.scaleCategory())))
	lines = append(lines, theme.Muted().Render(truncate("←/→: week  ↑/↓: day  g/G: first/last", innerW)))

	content := strings.Join(lines, "\n")
	return styles.PanelStyle(theme, true).Width(width - 2).MaxHeight(height).Render(content)
}

func (v *calendarView) title() string {
	total := 0
	active := 0
	for _, cell := range v.grid.Cells() {
		total += cell.Total
		if !cell.Empty() {
			active++
		}
	}
	if v.locale == calendar.LocaleEnglish {
		return fmt.Sprintf("%d posts on %d days since %s", total, active, v.grid.Start.Format("Jan 2, 2006"))
	}
	return fmt.Sprintf("%s부터 %d일 동안 %d개의 글", v.locale.LongDate(v.grid.Start), active, total)
}

// scaleCategory picks the colour for the intensity key: the selected day's
// category, else the user's top category.
func (v *calendarView) scaleCategory() string {
	if cell, ok := v.grid.Cell(v.cursor); ok && !cell.Empty() {
		return cell.Category
	}
	if len(v.summaries) > 0 {
		return v.summaries[0].Category
	}
	return ""
}
