package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/blogjandi/jandi/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenInMemory(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func day(s string) time.Time {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedPosts() []models.Post {
	return []models.Post{
		{URL: "https://velog.io/@me/1", Platform: "velog", Date: "2024-06-01", Category: "tech", Title: "goroutines"},
		{URL: "https://velog.io/@me/2", Platform: "velog", Date: "2024-06-01", Category: "tech", Title: "channels"},
		{URL: "https://me.tistory.com/3", Platform: "tistory", Date: "2024-06-01", Category: "life", Title: "walk"},
		{URL: "https://me.tistory.com/4", Platform: "tistory", Date: "2024-05-20", Category: "food", Title: "ramen"},
		{URL: "https://velog.io/@me/5", Platform: "velog", Date: "2023-01-02", Category: "tech", Title: "old"},
	}
}

func TestPostRepositoryUpsertAndAggregate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	user := uuid.New()

	n, err := repo.Upsert(ctx, user, seedPosts())
	require.NoError(t, err)
	require.Equal(t, 5, n)

	events, err := repo.EventsBetween(ctx, user, day("2024-01-01"), day("2024-06-30"))
	require.NoError(t, err)
	require.Equal(t, []models.PostEvent{
		{Date: day("2024-06-01"), Category: "life", Count: 1},
		{Date: day("2024-06-01"), Category: "tech", Count: 2},
		{Date: day("2024-05-20"), Category: "food", Count: 1},
	}, events)

	summaries, err := repo.CategorySummaries(ctx, user)
	require.NoError(t, err)
	require.Equal(t, []models.CategorySummary{
		{Category: "tech", Count: 3},
		{Category: "food", Count: 1},
		{Category: "life", Count: 1},
	}, summaries)

	count, err := repo.Count(ctx, user)
	require.NoError(t, err)
	require.Equal(t, 5, count)

	first, ok, err := repo.FirstPostDate(ctx, user)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, first.Equal(day("2023-01-02")))
}

func TestPostRepositoryUpsertReplacesByKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	user := uuid.New()

	_, err := repo.Upsert(ctx, user, seedPosts()[:1])
	require.NoError(t, err)

	renamed := seedPosts()[0]
	renamed.Title = "goroutines, revised"
	renamed.Category = "review"
	_, err = repo.Upsert(ctx, user, []models.Post{renamed})
	require.NoError(t, err)

	count, err := repo.Count(ctx, user)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	posts, err := repo.ListByCategory(ctx, user, "review")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Equal(t, "goroutines, revised", posts[0].Title)

	// Same URL on another platform is a distinct post.
	other := seedPosts()[0]
	other.Platform = "tistory"
	_, err = repo.Upsert(ctx, user, []models.Post{other})
	require.NoError(t, err)
	count, err = repo.Count(ctx, user)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestPostRepositoryListByCategoryNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	user := uuid.New()

	_, err := repo.Upsert(ctx, user, seedPosts())
	require.NoError(t, err)

	posts, err := repo.ListByCategory(ctx, user, "tech")
	require.NoError(t, err)
	require.Len(t, posts, 3)
	require.Equal(t, "2024-06-01", posts[0].Date)
	require.Equal(t, "channels", posts[0].Title)
	require.Equal(t, "goroutines", posts[1].Title)
	require.Equal(t, "2023-01-02", posts[2].Date)

	none, err := repo.ListByCategory(ctx, user, "travel")
	require.NoError(t, err)
	require.NotNil(t, none)
	require.Empty(t, none)
}

func TestPostRepositoryIsolatesUsers(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	_, err := repo.Upsert(ctx, alice, seedPosts())
	require.NoError(t, err)

	summaries, err := repo.CategorySummaries(ctx, bob)
	require.NoError(t, err)
	require.Empty(t, summaries)

	_, ok, err := repo.FirstPostDate(ctx, bob)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPostRepositoryRejectsInvalidPosts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	user := uuid.New()

	tests := []struct {
		name string
		post models.Post
	}{
		{"missing url", models.Post{Platform: "velog", Date: "2024-06-01", Category: "tech"}},
		{"missing platform", models.Post{URL: "u", Date: "2024-06-01", Category: "tech"}},
		{"missing category", models.Post{URL: "u", Platform: "velog", Date: "2024-06-01"}},
		{"bad date", models.Post{URL: "u", Platform: "velog", Date: "06/01/2024", Category: "tech"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Upsert(ctx, user, []models.Post{seedPosts()[0], tt.post})
			require.True(t, errors.Is(err, ErrInvalidPost), "got %v", err)
		})
	}

	_, err := repo.Upsert(ctx, uuid.Nil, seedPosts())
	require.ErrorIs(t, err, ErrInvalidPost)

	// Nothing from a rejected batch is stored.
	count, err := repo.Count(ctx, user)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestPostRepositoryReportsEveryInvalidPost(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)

	posts := seedPosts()
	posts[1].Date = "2024/06/01"
	posts[3].URL = " "
	_, err := repo.Upsert(context.Background(), uuid.New(), posts)
	require.ErrorIs(t, err, ErrInvalidPost)
	require.ErrorIs(t, err, models.ErrInvalidDate)
	require.ErrorIs(t, err, models.ErrMissingField)

	var list *models.ValidationErrors
	require.ErrorAs(t, err, &list)
	require.Len(t, list.Errors, 2)
	require.Equal(t, "posts[1].date", list.Errors[0].Field)
	require.Equal(t, "posts[3].url", list.Errors[1].Field)
}

func TestOpenCreatesFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "posts.db")
	ctx := context.Background()

	db, err := Open(ctx, path)
	require.NoError(t, err)
	require.Equal(t, path, db.Path())
	_, err = NewPostRepository(db).Upsert(ctx, uuid.New(), seedPosts()[:2])
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Schema creation is idempotent on reopen.
	db, err = Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()
	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n))
	require.Equal(t, 2, n)

	_, err = Open(ctx, "")
	require.Error(t, err)
}
