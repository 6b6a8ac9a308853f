package calendar

import (
	"sort"
	"time"

	"github.com/blogjandi/jandi/internal/models"
)

const tooltipCategories = 3

// CategoryCount is a category's summed count on one day.
type CategoryCount struct {
	Category string
	Count    int
}

// Tooltip describes a hovered day.
type Tooltip struct {
	Date          time.Time
	Total         int
	TopCategories []CategoryCount
}

// Tooltip returns hover data for a non-empty cell.
func (c Cell) Tooltip() (Tooltip, bool) {
	if c.Empty() {
		return Tooltip{}, false
	}
	totals := categoryTotals(c.Events)
	if len(totals) > tooltipCategories {
		totals = totals[:tooltipCategories]
	}
	return Tooltip{Date: c.Date, Total: c.Total, TopCategories: totals}, true
}

// categoryTotals sums counts per category, highest first. Equal sums keep the
// order in which the category first appeared.
func categoryTotals(events []models.PostEvent) []CategoryCount {
	index := make(map[string]int, len(events))
	out := make([]CategoryCount, 0, len(events))
	for _, ev := range events {
		i, ok := index[ev.Category]
		if !ok {
			i = len(out)
			index[ev.Category] = i
			out = append(out, CategoryCount{Category: ev.Category})
		}
		out[i].Count += ev.Count
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}
