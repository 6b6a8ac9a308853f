package drilldown

import (
	"fmt"
	"sort"

	"github.com/blogjandi/jandi/internal/models"
	"github.com/blogjandi/jandi/internal/topics"
)

// Row is one render-ready line of the statistics panel.
type Row struct {
	Rank       int
	Category   string
	Name       string
	Hex        string
	Count      int
	Percentage float64

	Expanded bool
	State    State
	Posts    []models.Post
}

// Percentage returns count as a share of total, 0 when total is 0.
func Percentage(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

// shareTotal is the denominator for category shares: the delivered post
// count, or the summed category counts when no post count was delivered.
func shareTotal(summaries []models.CategorySummary, total int) int {
	if total > 0 {
		return total
	}
	sum := 0
	for _, s := range summaries {
		sum += s.Count
	}
	return sum
}

// BuildRows sorts summaries by count, highest first, keeping input order for
// ties, and computes each category's share of total (see shareTotal).
func BuildRows(summaries []models.CategorySummary, total int, palette topics.Palette) []Row {
	total = shareTotal(summaries, total)
	rows := make([]Row, 0, len(summaries))
	for _, s := range summaries {
		f := palette.Lookup(s.Category)
		rows = append(rows, Row{
			Category:   s.Category,
			Name:       f.Name,
			Hex:        f.Hex,
			Count:      s.Count,
			Percentage: Percentage(s.Count, total),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Count > rows[j].Count
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

// Rows returns the panel rows with each category's expansion and cache state.
func (d *Drilldown) Rows() []Row {
	d.mu.Lock()
	defer d.mu.Unlock()

	rows := BuildRows(d.summaries, d.total, d.palette)
	for i := range rows {
		_, rows[i].Expanded = d.expanded[rows[i].Category]
		if e, ok := d.cache[rows[i].Category]; ok {
			rows[i].State = e.state
			rows[i].Posts = append([]models.Post(nil), e.posts...)
		}
	}
	return rows
}

// Overview is the summary card strip above the breakdown.
type Overview struct {
	TotalPosts int
	ActiveDays int
	Joined     string

	// TopCategory is "-" when there are no categories.
	TopCategory string
	TopDetail   string
}

// BuildOverview derives the summary cards. The top category is the first
// entry as delivered by the backend.
func BuildOverview(stats models.UserStats, palette topics.Palette) Overview {
	out := Overview{
		TotalPosts:  stats.Count,
		ActiveDays:  stats.Duration,
		Joined:      "전체 기간",
		TopCategory: "-",
		TopDetail:   "데이터 없음",
	}
	if joined, ok := stats.CreatedDate(); ok {
		out.Joined = joined.Format("2006.01.02") + " 가입"
	}
	if len(stats.Categories) > 0 {
		top := stats.Categories[0]
		out.TopCategory = palette.DisplayName(top.Category)
		out.TopDetail = fmt.Sprintf("%d개의 글 (%.1f%%)", top.Count, Percentage(top.Count, shareTotal(stats.Categories, stats.Count)))
	}
	return out
}
