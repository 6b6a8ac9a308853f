// Package calendar builds the week-aligned activity grid from dated post events.
package calendar

import (
	"time"

	"github.com/blogjandi/jandi/internal/models"
	"github.com/blogjandi/jandi/internal/topics"
)

// DefaultMonths is how far back the grid reaches from today.
const DefaultMonths = 12

const daysPerWeek = 7

// Cell is one calendar day of the grid.
type Cell struct {
	Date   time.Time
	Events []models.PostEvent

	// Category is the dominant category, empty when the day has no events.
	Category string
	Family   topics.Family
	Total    int
	// Step is min(Total, topics.Steps); 0 for an empty day.
	Step int
}

// Empty reports whether the day has no posts.
func (c Cell) Empty() bool {
	return len(c.Events) == 0
}

// Week is up to seven consecutive cells starting on Sunday.
type Week []Cell

// MonthLabel marks a week column. Label is empty when the column has none.
type MonthLabel struct {
	Week  int
	Label string
}

// Grid is the render-ready calendar.
type Grid struct {
	Start       time.Time
	End         time.Time
	Weeks       []Week
	MonthLabels []MonthLabel
}

// Builder builds grids. The zero value uses DefaultMonths, the default
// palette and Korean labels.
type Builder struct {
	Months  int
	Palette *topics.Palette
	Locale  Locale
}

// Build builds a grid with the default builder.
func Build(events []models.PostEvent, today time.Time) Grid {
	return Builder{}.Build(events, today)
}

// StartDate returns the Sunday on or before today minus months.
func StartDate(today time.Time, months int) time.Time {
	back := subMonths(models.DateOf(today), months)
	return back.AddDate(0, 0, -int(back.Weekday()))
}

// Build lays out every date from StartDate to today inclusive in weeks.
// Events are matched to cells by exact date; events outside the range are ignored.
func (b Builder) Build(events []models.PostEvent, today time.Time) Grid {
	months := b.Months
	if months <= 0 {
		months = DefaultMonths
	}
	palette := topics.Default
	if b.Palette != nil {
		palette = *b.Palette
	}

	end := models.DateOf(today)
	start := StartDate(end, months)

	byDate := make(map[string][]models.PostEvent, len(events))
	for _, ev := range events {
		key := ev.DateKey()
		byDate[key] = append(byDate[key], ev)
	}

	grid := Grid{Start: start, End: end}
	week := make(Week, 0, daysPerWeek)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		week = append(week, newCell(day, byDate[day.Format(models.DateLayout)], palette))
		if len(week) == daysPerWeek {
			grid.Weeks = append(grid.Weeks, week)
			week = make(Week, 0, daysPerWeek)
		}
	}
	if len(week) > 0 {
		grid.Weeks = append(grid.Weeks, week)
	}

	grid.MonthLabels = monthLabels(grid.Weeks, b.Locale)
	return grid
}

func newCell(day time.Time, events []models.PostEvent, palette topics.Palette) Cell {
	cell := Cell{Date: day, Events: events}
	if len(events) == 0 {
		return cell
	}
	totals := categoryTotals(events)
	cell.Category = totals[0].Category
	cell.Family = palette.Lookup(cell.Category)
	for _, ev := range events {
		cell.Total += ev.Count
	}
	cell.Step = min(cell.Total, topics.Steps)
	return cell
}

// monthLabels labels the first week and every week whose first day falls on
// the 1st to 7th of a month.
func monthLabels(weeks []Week, locale Locale) []MonthLabel {
	out := make([]MonthLabel, len(weeks))
	for i, week := range weeks {
		out[i].Week = i
		if len(week) == 0 {
			continue
		}
		first := week[0].Date
		if i == 0 || first.Day() <= daysPerWeek {
			out[i].Label = locale.ShortMonth(first.Month())
		}
	}
	return out
}

// Cells returns every cell in date order.
func (g Grid) Cells() []Cell {
	out := make([]Cell, 0, len(g.Weeks)*daysPerWeek)
	for _, week := range g.Weeks {
		out = append(out, week...)
	}
	return out
}

// Cell returns the cell for date, if it is inside the grid.
func (g Grid) Cell(date time.Time) (Cell, bool) {
	week, day, ok := g.Position(date)
	if !ok {
		return Cell{}, false
	}
	return g.Weeks[week][day], true
}

// Position returns the week and weekday index of date.
func (g Grid) Position(date time.Time) (int, int, bool) {
	date = models.DateOf(date)
	if date.Before(g.Start) || date.After(g.End) {
		return 0, 0, false
	}
	offset := int(date.Sub(g.Start).Hours()/24 + 0.5)
	week, day := offset/daysPerWeek, offset%daysPerWeek
	if week >= len(g.Weeks) || day >= len(g.Weeks[week]) {
		return 0, 0, false
	}
	return week, day, true
}

// subMonths moves back n calendar months, clamping the day to the target
// month's length (Mar 31 minus one month is the last day of February).
func subMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m-time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	return time.Date(first.Year(), first.Month(), min(d, last), 0, 0, 0, 0, time.UTC)
}
