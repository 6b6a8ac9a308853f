package jandiui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	ansitrunc "github.com/muesli/reflow/truncate"

	"github.com/blogjandi/jandi/internal/calendar"
	"github.com/blogjandi/jandi/internal/jandiui/styles"
	"github.com/blogjandi/jandi/internal/models"
	"github.com/blogjandi/jandi/internal/topics"
)

const cellWidth = 2

// plainSteps draws intensity without colour, indexed by step.
var plainSteps = [topics.Steps + 1]string{"·", "░", "▒", "▓", "█"}

// GridRenderer draws a calendar.Grid as text.
type GridRenderer struct {
	Theme   styles.Theme
	Palette topics.Palette
	Locale  calendar.Locale
	// Color enables true-colour cells; otherwise intensity is drawn with shade glyphs.
	Color bool
	// Renderer styles coloured cells. Nil uses the stdout renderer.
	Renderer *lipgloss.Renderer
}

func (r GridRenderer) style() lipgloss.Style {
	if r.Renderer != nil {
		return r.Renderer.NewStyle()
	}
	return lipgloss.NewStyle()
}

// Render draws the grid with month labels on top and weekday labels on the
// left. When the grid is wider than width the oldest weeks are dropped.
// A non-zero cursor highlights that day.
func (r GridRenderer) Render(grid calendar.Grid, cursor time.Time, width int) string {
	labelW := r.dayLabelWidth()
	first := visibleFrom(len(grid.Weeks), labelW, width)

	var out strings.Builder
	out.WriteString(r.monthRow(grid, first, labelW))
	for day := 0; day < 7; day++ {
		out.WriteByte('\n')
		out.WriteString(padRight(r.dayLabel(time.Weekday(day)), labelW))
		for w := first; w < len(grid.Weeks); w++ {
			week := grid.Weeks[w]
			if day >= len(week) {
				out.WriteString(strings.Repeat(" ", cellWidth))
				continue
			}
			cell := week[day]
			selected := !cursor.IsZero() && cell.Date.Equal(models.DateOf(cursor))
			out.WriteString(r.cell(cell, selected))
		}
	}
	return out.String()
}

// VisibleWeeks reports how many trailing weeks fit in width.
func (r GridRenderer) VisibleWeeks(total, width int) int {
	return total - visibleFrom(total, r.dayLabelWidth(), width)
}

func visibleFrom(total, labelW, width int) int {
	if width <= 0 {
		return 0
	}
	fit := max(1, (width-labelW)/cellWidth)
	return max(0, total-fit)
}

func (r GridRenderer) dayLabelWidth() int {
	w := 0
	for d := time.Sunday; d <= time.Saturday; d++ {
		w = max(w, lipgloss.Width(r.Locale.Weekday(d)))
	}
	return w + 1
}

// dayLabel shows Monday, Wednesday and Friday only.
func (r GridRenderer) dayLabel(d time.Weekday) string {
	if d%2 == 0 {
		return ""
	}
	return r.Theme.Muted().Render(r.Locale.Weekday(d))
}

func (r GridRenderer) monthRow(grid calendar.Grid, first, labelW int) string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", labelW))
	col := 0
	for _, ml := range grid.MonthLabels {
		if ml.Week < first || ml.Label == "" {
			continue
		}
		x := (ml.Week - first) * cellWidth
		if x < col {
			continue
		}
		b.WriteString(strings.Repeat(" ", x-col))
		b.WriteString(r.Theme.Muted().Render(ml.Label))
		col = x + lipgloss.Width(ml.Label) + 1
		b.WriteByte(' ')
	}
	return strings.TrimRight(b.String(), " ")
}

func (r GridRenderer) cell(cell calendar.Cell, selected bool) string {
	if !r.Color {
		glyph := plainSteps[min(max(cell.Step, 0), topics.Steps)]
		if selected {
			glyph = "@"
		}
		return glyph + " "
	}
	style := r.style().Foreground(lipgloss.Color(r.cellHex(cell)))
	if selected {
		style = style.Reverse(true)
	}
	return style.Render("■") + " "
}

func (r GridRenderer) cellHex(cell calendar.Cell) string {
	if cell.Empty() {
		return r.Theme.Cells.Empty
	}
	return r.Palette.Shade(cell.Category, cell.Step, r.Theme.Cells.Background)
}

// Legend lists the summary's categories with their colour swatch.
func (r GridRenderer) Legend(summaries []models.CategorySummary) string {
	if len(summaries) == 0 {
		return ""
	}
	parts := make([]string, 0, len(summaries))
	for _, s := range summaries {
		swatch := "■"
		if r.Color {
			swatch = r.style().Foreground(lipgloss.Color(r.Palette.Hex(s.Category))).Render(swatch)
		}
		parts = append(parts, swatch+" "+r.Palette.DisplayName(s.Category))
	}
	return strings.Join(parts, "  ")
}

// IntensityScale draws the less-to-more key for a category.
func (r GridRenderer) IntensityScale(category string) string {
	var b strings.Builder
	for step := 0; step <= topics.Steps; step++ {
		c := calendar.Cell{Category: category, Step: step}
		if step > 0 {
			c.Events = []models.PostEvent{{Category: category, Count: step}}
			c.Total = step
		}
		b.WriteString(r.cell(c, false))
	}
	if r.Locale == calendar.LocaleEnglish {
		return "Less " + b.String() + "More"
	}
	return "적음 " + b.String() + "많음"
}

// TooltipText describes a day: date, post count and up to three categories.
func (r GridRenderer) TooltipText(cell calendar.Cell) string {
	date := r.Locale.LongDate(cell.Date)
	tip, ok := cell.Tooltip()
	if !ok {
		return date + "  " + r.Locale.PostCount(0)
	}
	parts := make([]string, 0, len(tip.TopCategories))
	for _, c := range tip.TopCategories {
		parts = append(parts, fmt.Sprintf("%s %d", r.Palette.DisplayName(c.Category), c.Count))
	}
	return fmt.Sprintf("%s  %s  (%s)", date, r.Locale.PostCount(tip.Total), strings.Join(parts, ", "))
}

// truncate shortens s to limit cells with a "..." tail. Escape sequences
// are kept whole and a cut inside a styled span resets the style.
func truncate(s string, limit int) string {
	const tail = "..."
	if limit <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= limit {
		return s
	}
	if limit <= len(tail) {
		return strings.Repeat(".", limit)
	}
	return ansitrunc.StringWithTail(s, uint(limit), tail)
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func renderBar(value, maxValue, width int, fill string) string {
	if width <= 0 {
		return ""
	}
	if maxValue <= 0 || value <= 0 {
		return strings.Repeat(" ", width)
	}
	n := int(float64(value) / float64(maxValue) * float64(width))
	n = min(max(n, 1), width)
	return strings.Repeat(fill, n) + strings.Repeat(" ", width-n)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
