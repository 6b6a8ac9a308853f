package drilldown

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blogjandi/jandi/internal/logging"
	"github.com/blogjandi/jandi/internal/models"
	"github.com/blogjandi/jandi/internal/topics"
)

type stubFetcher struct {
	mu    sync.Mutex
	calls map[string]int
	gates map[string]chan struct{}
	posts map[string][]models.Post
	errs  map[string]error
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		calls: make(map[string]int),
		gates: make(map[string]chan struct{}),
		posts: make(map[string][]models.Post),
		errs:  make(map[string]error),
	}
}

func (s *stubFetcher) gate(category string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{})
	s.gates[category] = ch
	return ch
}

func (s *stubFetcher) FetchPostsForCategory(ctx context.Context, category string) ([]models.Post, error) {
	s.mu.Lock()
	s.calls[category]++
	gate := s.gates[category]
	posts := s.posts[category]
	err := s.errs[category]
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return posts, err
}

func (s *stubFetcher) callCount(category string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[category]
}

func post(category, title string) models.Post {
	return models.Post{
		URL:      "https://blog.example.com/" + title,
		Category: category,
		Date:     "2024-06-01",
		Title:    title,
		Platform: "velog",
	}
}

func TestToggleFetchesOnceAcrossCollapse(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.posts["tech"] = []models.Post{post("tech", "a"), post("tech", "b")}
	d := New(fetcher, topics.Default)

	fetch := d.Toggle("tech")
	require.NotNil(t, fetch)
	require.True(t, d.Expanded("tech"))
	require.Equal(t, StateLoading, d.State("tech"))
	_, ok := d.Posts("tech")
	require.False(t, ok)

	require.True(t, d.Apply(fetch()))
	require.Equal(t, StatePopulated, d.State("tech"))

	require.Nil(t, d.Toggle("tech"))
	require.False(t, d.Expanded("tech"))
	require.Equal(t, StatePopulated, d.State("tech"), "collapse leaves the cache alone")

	require.Nil(t, d.Toggle("tech"))
	require.True(t, d.Expanded("tech"))

	posts, ok := d.Posts("tech")
	require.True(t, ok)
	require.Len(t, posts, 2)
	require.Equal(t, 1, fetcher.callCount("tech"))
}

func TestToggleWhileLoadingDoesNotRefetch(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.posts["life"] = []models.Post{post("life", "walk")}
	d := New(fetcher, topics.Default)

	fetch := d.Toggle("life")
	require.NotNil(t, fetch)
	require.Nil(t, d.Toggle("life")) // collapse
	require.Nil(t, d.Toggle("life")) // expand again, still loading
	require.Equal(t, StateLoading, d.State("life"))

	require.True(t, d.Apply(fetch()))
	require.Equal(t, StatePopulated, d.State("life"))
	require.Equal(t, 1, fetcher.callCount("life"))
}

func TestIndependentCategoriesResolveOutOfOrder(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.posts["tech"] = []models.Post{post("tech", "go")}
	fetcher.posts["food"] = []models.Post{post("food", "noodles"), post("food", "rice")}
	gateA := fetcher.gate("tech")
	gateB := fetcher.gate("food")
	d := New(fetcher, topics.Default)

	fetchA := d.Toggle("tech")
	fetchB := d.Toggle("food")
	require.NotNil(t, fetchA)
	require.NotNil(t, fetchB)

	results := make(chan Result, 2)
	go func() { results <- fetchA() }()
	go func() { results <- fetchB() }()

	close(gateB)
	first := <-results
	require.Equal(t, "food", first.Category)
	require.True(t, d.Apply(first))
	require.Equal(t, StatePopulated, d.State("food"))
	require.Equal(t, StateLoading, d.State("tech"))

	close(gateA)
	second := <-results
	require.True(t, d.Apply(second))

	techPosts, ok := d.Posts("tech")
	require.True(t, ok)
	require.Equal(t, []models.Post{post("tech", "go")}, techPosts)
	foodPosts, ok := d.Posts("food")
	require.True(t, ok)
	require.Len(t, foodPosts, 2)
}

func TestFailedFetchIsCachedAsEmptyAndLogged(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() { logging.Init(logging.DefaultConfig()) })

	fetcher := newStubFetcher()
	fetcher.errs["review"] = errors.New("HTTP error! status: 500")
	fetcher.posts["tech"] = []models.Post{post("tech", "ok")}
	d := New(fetcher, topics.Default)

	failing := d.Toggle("review")
	other := d.Toggle("tech")
	require.True(t, d.Apply(failing()))
	require.True(t, d.Apply(other()))

	require.Equal(t, StateEmpty, d.State("review"))
	posts, ok := d.Posts("review")
	require.True(t, ok)
	require.Empty(t, posts)
	require.Equal(t, StatePopulated, d.State("tech"))
	require.Contains(t, buf.String(), "failed to fetch posts")
	require.Contains(t, buf.String(), `"category":"review"`)

	// The failure is cached like an empty category.
	require.Nil(t, d.Toggle("review"))
	require.Nil(t, d.Toggle("review"))
	require.Equal(t, 1, fetcher.callCount("review"))
}

func TestEmptyFetchIsPopulatedEmpty(t *testing.T) {
	d := New(newStubFetcher(), topics.Default)
	fetch := d.Toggle("travel")
	require.True(t, d.Apply(fetch()))
	require.Equal(t, StateEmpty, d.State("travel"))
}

func TestCloseDiscardsLateResults(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.posts["tech"] = []models.Post{post("tech", "late")}
	gate := fetcher.gate("tech")
	d := New(fetcher, topics.Default)

	fetch := d.Toggle("tech")
	done := make(chan Result, 1)
	go func() { done <- fetch() }()

	d.Close()
	res := <-done
	require.ErrorIs(t, res.Err, context.Canceled)
	require.False(t, d.Apply(res))
	require.Equal(t, StateAbsent, d.State("tech"))
	require.False(t, d.Expanded("tech"))
	close(gate)

	// A fetch from the previous session that succeeds is discarded too.
	d2 := New(newStubFetcher(), topics.Default)
	stale := d2.Toggle("life")
	d2.Close()
	require.False(t, d2.Apply(stale()))
}

func TestApplyIgnoresUnknownCategory(t *testing.T) {
	d := New(newStubFetcher(), topics.Default)
	fetch := d.Toggle("tech")
	res := fetch()
	res.Category = "food"
	require.False(t, d.Apply(res))
	require.Equal(t, StateLoading, d.State("tech"))
}

func TestNilFetcherResolvesEmpty(t *testing.T) {
	d := New(nil, topics.Default)
	require.Nil(t, d.Toggle("tech"))
	require.Equal(t, StateEmpty, d.State("tech"))
}

func TestStateString(t *testing.T) {
	require.Equal(t, "absent", StateAbsent.String())
	require.Equal(t, "loading", StateLoading.String())
	require.Equal(t, "populated", StatePopulated.String())
	require.Equal(t, "empty", StateEmpty.String())
}
