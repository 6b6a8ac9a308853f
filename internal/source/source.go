// Package source provides the data collaborators the calendar and the
// statistics panel read from.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/blogjandi/jandi/internal/models"
)

// Source errors.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// PostFetcher loads the full post list for one category.
type PostFetcher interface {
	FetchPostsForCategory(ctx context.Context, category string) ([]models.Post, error)
}

// Source supplies everything the dashboard needs.
type Source interface {
	PostFetcher
	// Events returns per-day category counts up to and including day.
	Events(ctx context.Context, day time.Time) ([]models.PostEvent, error)
	// Stats returns the per-category summary for the signed-in user.
	Stats(ctx context.Context) (models.UserStats, error)
	// Close releases any held resources.
	Close() error
}

// Dashboard is the initial data set for one view session.
type Dashboard struct {
	Events []models.PostEvent
	Stats  models.UserStats
	// StatsErr is set when the user has no stats yet; the grid still renders.
	StatsErr error
}

// LoadDashboard fetches events and stats concurrently. A missing stats
// record is not fatal.
func LoadDashboard(ctx context.Context, src Source, today time.Time) (Dashboard, error) {
	var out Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		events, err := src.Events(gctx, today)
		if err != nil {
			return fmt.Errorf("load events: %w", err)
		}
		out.Events = events
		return nil
	})
	g.Go(func() error {
		stats, err := src.Stats(gctx)
		if errors.Is(err, ErrNotFound) {
			out.StatsErr = err
			return nil
		}
		if err != nil {
			return fmt.Errorf("load stats: %w", err)
		}
		out.Stats = stats
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return out, nil
}
