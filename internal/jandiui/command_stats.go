package jandiui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/blogjandi/jandi/internal/drilldown"
	"github.com/blogjandi/jandi/internal/source"
	"github.com/blogjandi/jandi/internal/topics"
)

func newStatsCmd(root *rootOptions) *cobra.Command {
	var expand []string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print topic statistics",
		Long:  "Print overview cards and per-category counts. --expand lists a category's posts.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, err := openSource(ctx, root.cfg)
			if err != nil {
				return err
			}
			defer src.Close()

			stats, err := src.Stats(ctx)
			if errors.Is(err, source.ErrNotFound) {
				return writeLines(cmd.OutOrStdout(), "아직 통계 데이터가 없습니다.")
			}
			if err != nil {
				return err
			}

			d := drilldown.New(src, topics.Default)
			defer d.Close()
			d.SetSummaries(stats.Categories, stats.Count)
			expandCategories(ctx, d, expand)

			return printStats(cmd.OutOrStdout(), drilldown.BuildOverview(stats, topics.Default), d.Rows())
		},
	}
	cmd.Flags().StringSliceVar(&expand, "expand", nil, "categories whose posts to list")
	return cmd
}

// expandCategories expands each category and runs its fetch in place.
func expandCategories(ctx context.Context, d *drilldown.Drilldown, categories []string) {
	for _, category := range categories {
		if d.Expanded(category) {
			continue
		}
		if fetch := d.Toggle(category); fetch != nil {
			if ctx.Err() != nil {
				return
			}
			d.Apply(fetch())
		}
	}
}

func printStats(w io.Writer, ov drilldown.Overview, rows []drilldown.Row) error {
	lines := []string{
		fmt.Sprintf("전체 글     %d  (%s)", ov.TotalPosts, ov.Joined),
		fmt.Sprintf("활동 기간   %d일", ov.ActiveDays),
		fmt.Sprintf("최다 주제   %s  %s", ov.TopCategory, ov.TopDetail),
		"",
	}
	maxCount := 0
	for _, row := range rows {
		maxCount = max(maxCount, row.Count)
	}
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("%2d. %s %4d %s %5.1f%%",
			row.Rank, padRight(row.Name, 14), row.Count, renderBar(row.Count, maxCount, 20, "#"), row.Percentage))
		if !row.Expanded {
			continue
		}
		if len(row.Posts) == 0 {
			lines = append(lines, "      게시글이 없습니다.")
			continue
		}
		for _, post := range row.Posts {
			lines = append(lines, fmt.Sprintf("      %s  %s  %s", post.Date, post.Title, post.URL))
		}
	}
	return writeLines(w, lines...)
}
