// Package drilldown manages the expandable per-category post lists of the
// topic statistics panel.
//
// Expansion and cache state are tracked separately. Each category's cache
// entry moves absent -> loading -> populated (or empty) exactly once per
// session; collapsing never touches the cache.
package drilldown

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/blogjandi/jandi/internal/logging"
	"github.com/blogjandi/jandi/internal/models"
	"github.com/blogjandi/jandi/internal/topics"
)

// PostFetcher loads the full post list for one category.
type PostFetcher interface {
	FetchPostsForCategory(ctx context.Context, category string) ([]models.Post, error)
}

// State is a category's cache state.
type State int

const (
	StateAbsent State = iota
	StateLoading
	StatePopulated
	// StateEmpty covers a fetch that returned nothing and a fetch that failed.
	StateEmpty
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StatePopulated:
		return "populated"
	case StateEmpty:
		return "empty"
	default:
		return "absent"
	}
}

type entry struct {
	state State
	posts []models.Post
}

// Result is the outcome of one fetch, handed back to Apply.
type Result struct {
	Category string
	Posts    []models.Post
	Err      error

	session uint64
}

// Fetch performs a pending load. It blocks on the fetcher and never mutates
// the drilldown; pass its Result to Apply.
type Fetch func() Result

// Drilldown holds expansion and cache state for one view session.
type Drilldown struct {
	fetcher PostFetcher
	palette topics.Palette
	log     zerolog.Logger

	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	session  uint64
	expanded map[string]struct{}
	cache    map[string]*entry

	summaries []models.CategorySummary
	total     int
}

// New creates a drilldown backed by fetcher.
func New(fetcher PostFetcher, palette topics.Palette) *Drilldown {
	d := &Drilldown{
		fetcher:  fetcher,
		palette:  palette,
		log:      logging.Component("drilldown"),
		expanded: make(map[string]struct{}, 8),
		cache:    make(map[string]*entry, 8),
	}
	d.ctx, d.cancel = context.WithCancel(context.Background())
	d.session = 1
	return d
}

// SetSummaries replaces the server-supplied category counts. total is the
// post count shares are taken of; 0 uses the summed counts.
func (d *Drilldown) SetSummaries(summaries []models.CategorySummary, total int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.summaries = append([]models.CategorySummary(nil), summaries...)
	d.total = total
}

// Toggle collapses an expanded category or expands a collapsed one. When an
// expansion finds no cache entry the category moves to loading and the
// returned Fetch must be run, typically off the UI goroutine. A nil Fetch
// means there is nothing to load.
func (d *Drilldown) Toggle(category string) Fetch {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.expanded[category]; ok {
		delete(d.expanded, category)
		return nil
	}
	d.expanded[category] = struct{}{}

	// A loading entry counts as present, so an in-flight fetch is never duplicated.
	if _, ok := d.cache[category]; ok {
		return nil
	}
	d.cache[category] = &entry{state: StateLoading}

	if d.fetcher == nil {
		d.cache[category] = &entry{state: StateEmpty}
		return nil
	}

	fetcher := d.fetcher
	ctx := d.ctx
	session := d.session
	return func() Result {
		posts, err := fetcher.FetchPostsForCategory(ctx, category)
		return Result{Category: category, Posts: posts, Err: err, session: session}
	}
}

// Apply stores a fetch result. It reports false when the result belongs to a
// closed session or to a category that is no longer loading.
func (d *Drilldown) Apply(res Result) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if res.session != d.session {
		d.log.Debug().Str("category", res.Category).Msg("discarding result from closed session")
		return false
	}
	e, ok := d.cache[res.Category]
	if !ok || e.state != StateLoading {
		return false
	}

	if res.Err != nil {
		d.log.Warn().Err(res.Err).Str("category", res.Category).Msg("failed to fetch posts")
		d.cache[res.Category] = &entry{state: StateEmpty}
		return true
	}
	if len(res.Posts) == 0 {
		d.cache[res.Category] = &entry{state: StateEmpty}
		return true
	}
	d.cache[res.Category] = &entry{
		state: StatePopulated,
		posts: append([]models.Post(nil), res.Posts...),
	}
	return true
}

// Close ends the session. Results of fetches still in flight are discarded
// and their contexts are cancelled. Expansion and cache state are reset.
func (d *Drilldown) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cancel()
	d.ctx, d.cancel = context.WithCancel(context.Background())
	d.session++
	d.expanded = make(map[string]struct{}, 8)
	d.cache = make(map[string]*entry, 8)
}

// Expanded reports whether category is expanded.
func (d *Drilldown) Expanded(category string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.expanded[category]
	return ok
}

// State returns category's cache state.
func (d *Drilldown) State(category string) State {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.cache[category]; ok {
		return e.state
	}
	return StateAbsent
}

// Posts returns the cached posts for category. ok is false until the
// category has finished loading.
func (d *Drilldown) Posts(category string) ([]models.Post, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.cache[category]
	if !ok || e.state == StateLoading {
		return nil, false
	}
	return append([]models.Post(nil), e.posts...), true
}
