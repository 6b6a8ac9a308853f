package jandiui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/require"

	"github.com/blogjandi/jandi/internal/calendar"
	"github.com/blogjandi/jandi/internal/jandiui/styles"
	"github.com/blogjandi/jandi/internal/models"
	"github.com/blogjandi/jandi/internal/topics"
)

func plainRenderer(locale calendar.Locale) GridRenderer {
	return GridRenderer{Theme: styles.DefaultTheme, Palette: topics.Default, Locale: locale}
}

func smallGrid(locale calendar.Locale) calendar.Grid {
	events := []models.PostEvent{
		{Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Category: "tech", Count: 5},
		{Date: time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC), Category: "life", Count: 1},
	}
	return calendar.Builder{Months: 1, Locale: locale}.Build(events, time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
}

func TestGridRendererPlain(t *testing.T) {
	r := plainRenderer(calendar.LocaleEnglish)
	grid := smallGrid(calendar.LocaleEnglish)
	require.Len(t, grid.Weeks, 5)

	lines := strings.Split(r.Render(grid, time.Time{}, 200), "\n")
	require.Len(t, lines, 8)
	// May starts inside April's label, so only April is drawn.
	require.Equal(t, "    Apr", lines[0])
	require.Equal(t, "    · ░ · · · ", lines[1])
	require.Equal(t, "Mon · · · · · ", lines[2])
	require.Equal(t, "    · · · · · ", lines[3])
	require.Equal(t, "Wed · · · · · ", lines[4])
	require.Equal(t, "    · · · · █ ", lines[7])
}

func TestGridRendererDropsOldestWeeks(t *testing.T) {
	r := plainRenderer(calendar.LocaleEnglish)
	grid := smallGrid(calendar.LocaleEnglish)

	lines := strings.Split(r.Render(grid, time.Time{}, 10), "\n")
	require.Equal(t, "    · · @ ", strings.Split(r.Render(grid, grid.End.AddDate(0, 0, -6), 10), "\n")[1])
	require.Equal(t, "    · · █ ", lines[7])
	require.Equal(t, 3, r.VisibleWeeks(len(grid.Weeks), 10))
}

func TestGridRendererKoreanLabels(t *testing.T) {
	r := plainRenderer(calendar.LocaleKorean)
	grid := smallGrid(calendar.LocaleKorean)

	lines := strings.Split(r.Render(grid, time.Time{}, 200), "\n")
	require.Equal(t, "   4월", lines[0])
	require.True(t, strings.HasPrefix(lines[2], "월 "))
	require.True(t, strings.HasPrefix(lines[6], "금 "))
}

func TestGridRendererText(t *testing.T) {
	r := plainRenderer(calendar.LocaleEnglish)
	grid := smallGrid(calendar.LocaleEnglish)

	cell, ok := grid.Cell(grid.End)
	require.True(t, ok)
	require.Equal(t, "June 1, 2024  5 posts  (기술/개발 5)", r.TooltipText(cell))

	empty, ok := grid.Cell(time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	require.Equal(t, "May 6, 2024  0 posts", r.TooltipText(empty))

	require.Equal(t, "■ 기술/개발  ■ 일상/라이프", r.Legend([]models.CategorySummary{
		{Category: "tech", Count: 5}, {Category: "life", Count: 1},
	}))
	require.Empty(t, r.Legend(nil))
	require.Equal(t, "Less · ░ ▒ ▓ █ More", r.IntensityScale("tech"))
}

func TestTextHelpers(t *testing.T) {
	require.Equal(t, "abc...", truncate("abcdefghij", 6))
	require.Equal(t, "short", truncate("short", 6))
	require.Equal(t, "", truncate("x", 0))
	require.Equal(t, "..", truncate("abcdef", 2))
	require.Equal(t, "가나...", truncate("가나다라마바", 7))
	require.Equal(t, "ab  ", padRight("ab", 4))
	require.Equal(t, "#    ", renderBar(1, 10, 5, "#"))
	require.Equal(t, "#####", renderBar(10, 10, 5, "#"))
	require.Equal(t, "     ", renderBar(0, 10, 5, "#"))
}

func TestForcedColourKeepsIntensitySteps(t *testing.T) {
	renderer, color, width, err := outputMode(&bytes.Buffer{}, "always")
	require.NoError(t, err)
	require.True(t, color)
	require.Equal(t, defaultPrintWidth, width)

	r := plainRenderer(calendar.LocaleEnglish)
	r.Color = true
	r.Renderer = renderer

	stepCell := func(step int) calendar.Cell {
		if step == 0 {
			return calendar.Cell{}
		}
		return calendar.Cell{
			Category: "tech",
			Step:     step,
			Total:    step,
			Events:   []models.PostEvent{{Category: "tech", Count: step}},
		}
	}
	seen := map[string]int{}
	for step := 0; step <= topics.Steps; step++ {
		seen[r.cell(stepCell(step), false)] = step
	}
	require.Len(t, seen, topics.Steps+1, "every step must render differently")
	require.NotEqual(t, r.cell(stepCell(1), false), r.cell(stepCell(4), false))
	require.Contains(t, r.cell(stepCell(4), false), "\x1b[")
}

func TestOutputModeOnPlainStream(t *testing.T) {
	_, color, _, err := outputMode(&bytes.Buffer{}, "auto")
	require.NoError(t, err)
	require.False(t, color)

	_, color, _, err = outputMode(&bytes.Buffer{}, "never")
	require.NoError(t, err)
	require.False(t, color)

	_, _, _, err = outputMode(&bytes.Buffer{}, "rainbow")
	require.ErrorContains(t, err, `invalid --color "rainbow"`)
}

func TestTruncateKeepsEscapeSequencesWhole(t *testing.T) {
	styled := "\x1b[31m" + strings.Repeat("가", 10) + "\x1b[0m tail"
	got := truncate(styled, 8)
	require.Equal(t, "\x1b[31m가가...\x1b[0m", got)
	require.LessOrEqual(t, lipgloss.Width(got), 8)

	// A cut after the styled span needs no reset.
	line := "\x1b[2m·\x1b[0m " + strings.Repeat("x", 20)
	got = truncate(line, 10)
	require.Equal(t, "\x1b[2m·\x1b[0m xxxxx...", got)
}
