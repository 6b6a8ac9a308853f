package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/blogjandi/jandi/internal/models"
)

// ErrInvalidPost is returned when a post is missing required fields.
var ErrInvalidPost = errors.New("invalid post")

// PostRepository handles archived post persistence.
type PostRepository struct {
	db *DB
}

type postExecer interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}

// NewPostRepository creates a new PostRepository.
func NewPostRepository(db *DB) *PostRepository {
	return &PostRepository{db: db}
}

// Upsert stores posts for one user in a single transaction. Posts are keyed
// by (url, user, platform); re-importing a post replaces its fields.
func (r *PostRepository) Upsert(ctx context.Context, userID uuid.UUID, posts []models.Post) (int, error) {
	if userID == uuid.Nil {
		return 0, fmt.Errorf("%w: user id is required", ErrInvalidPost)
	}
	validation := &models.ValidationErrors{}
	for i := range posts {
		validation.Add(fmt.Sprintf("posts[%d]", i), posts[i].Validate())
	}
	if err := validation.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidPost, err)
	}

	err := r.db.TransactionWithRetry(ctx, 0, 0, func(tx *sql.Tx) error {
		for _, post := range posts {
			if err := r.upsertWithExecutor(ctx, tx, userID, post); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(posts), nil
}

func (r *PostRepository) upsertWithExecutor(ctx context.Context, execer postExecer, userID uuid.UUID, post models.Post) error {
	_, err := execer.ExecContext(ctx, `
		INSERT INTO posts (url, user_id, platform, date, category, title)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (url, user_id, platform) DO UPDATE SET
			date = excluded.date,
			category = excluded.category,
			title = excluded.title
	`,
		strings.TrimSpace(post.URL),
		userID.String(),
		strings.TrimSpace(post.Platform),
		strings.TrimSpace(post.Date),
		strings.TrimSpace(post.Category),
		post.Title,
	)
	if err != nil {
		return fmt.Errorf("failed to store post %s: %w", post.URL, err)
	}
	return nil
}

// EventsBetween aggregates posts into per-day category counts for the
// inclusive calendar range [from, to], newest day first.
func (r *PostRepository) EventsBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.PostEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date, category, COUNT(*)
		FROM posts
		WHERE user_id = ? AND date >= ? AND date <= ?
		GROUP BY date, category
		ORDER BY date DESC, category
	`, userID.String(), from.Format(models.DateLayout), to.Format(models.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.PostEvent
	for rows.Next() {
		var (
			date     string
			category string
			count    int
		)
		if err := rows.Scan(&date, &category, &count); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		day, err := models.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("archived post has bad date: %w", err)
		}
		events = append(events, models.PostEvent{Date: day, Category: category, Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}

// CategorySummaries returns post counts per category, largest first.
func (r *PostRepository) CategorySummaries(ctx context.Context, userID uuid.UUID) ([]models.CategorySummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, COUNT(*) AS n
		FROM posts
		WHERE user_id = ?
		GROUP BY category
		ORDER BY n DESC, category
	`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query category summaries: %w", err)
	}
	defer rows.Close()

	var summaries []models.CategorySummary
	for rows.Next() {
		var s models.CategorySummary
		if err := rows.Scan(&s.Category, &s.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category summaries: %w", err)
	}
	return summaries, nil
}

// ListByCategory returns one category's posts, newest first.
func (r *PostRepository) ListByCategory(ctx context.Context, userID uuid.UUID, category string) ([]models.Post, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT url, category, date, title, platform
		FROM posts
		WHERE user_id = ? AND category = ?
		ORDER BY date DESC, title
	`, userID.String(), category)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.URL, &p.Category, &p.Date, &p.Title, &p.Platform); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}
	return posts, nil
}

// FirstPostDate returns the date of the user's earliest archived post.
// ok is false when the user has no posts.
func (r *PostRepository) FirstPostDate(ctx context.Context, userID uuid.UUID) (time.Time, bool, error) {
	var first sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT MIN(date) FROM posts WHERE user_id = ?`, userID.String()).Scan(&first)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query first post date: %w", err)
	}
	if !first.Valid || first.String == "" {
		return time.Time{}, false, nil
	}
	day, err := models.ParseDate(first.String)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("archived post has bad date: %w", err)
	}
	return day, true, nil
}

// Count returns the number of posts archived for the user.
func (r *PostRepository) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE user_id = ?`, userID.String()).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return n, nil
}
