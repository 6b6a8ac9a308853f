package source

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/blogjandi/jandi/internal/db"
	"github.com/blogjandi/jandi/internal/models"
)

// ArchiveSource reads one user's posts from the local sqlite archive.
type ArchiveSource struct {
	db     *db.DB
	posts  *db.PostRepository
	userID uuid.UUID
	// Months bounds how far back Events reaches.
	months int
	now    func() time.Time
}

// NewArchiveSource opens the archive at path for userID.
func NewArchiveSource(ctx context.Context, path string, userID uuid.UUID, months int) (*ArchiveSource, error) {
	store, err := db.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return newArchiveSource(store, userID, months), nil
}

func newArchiveSource(store *db.DB, userID uuid.UUID, months int) *ArchiveSource {
	if months <= 0 {
		months = 12
	}
	return &ArchiveSource{
		db:     store,
		posts:  db.NewPostRepository(store),
		userID: userID,
		months: months,
		now:    time.Now,
	}
}

// Events aggregates archived posts per day and category, from the first of
// the month `months` back up to and including day.
func (s *ArchiveSource) Events(ctx context.Context, day time.Time) ([]models.PostEvent, error) {
	if day.IsZero() {
		day = s.now()
	}
	to := models.DateOf(day)
	// One spare month covers the week-alignment shift before the range start.
	from := time.Date(to.Year(), to.Month()-time.Month(s.months+1), 1, 0, 0, 0, 0, time.UTC)
	return s.posts.EventsBetween(ctx, s.userID, from, to)
}

// Stats derives the summary the backend would report from the archive.
func (s *ArchiveSource) Stats(ctx context.Context) (models.UserStats, error) {
	first, ok, err := s.posts.FirstPostDate(ctx, s.userID)
	if err != nil {
		return models.UserStats{}, err
	}
	if !ok {
		return models.UserStats{}, fmt.Errorf("user %s has no archived posts: %w", s.userID, ErrNotFound)
	}
	summaries, err := s.posts.CategorySummaries(ctx, s.userID)
	if err != nil {
		return models.UserStats{}, err
	}
	total := 0
	for _, c := range summaries {
		total += c.Count
	}
	return models.UserStats{
		Duration:   models.DaysBetween(first, s.now()),
		Categories: summaries,
		Count:      total,
		CreatedAt:  first.Format(models.DateLayout),
	}, nil
}

// FetchPostsForCategory lists archived posts in category, newest first.
func (s *ArchiveSource) FetchPostsForCategory(ctx context.Context, category string) ([]models.Post, error) {
	return s.posts.ListByCategory(ctx, s.userID, category)
}

// Import stores posts for the source's user.
func (s *ArchiveSource) Import(ctx context.Context, posts []models.Post) (int, error) {
	return s.posts.Upsert(ctx, s.userID, posts)
}

// Close closes the archive database.
func (s *ArchiveSource) Close() error {
	return s.db.Close()
}
