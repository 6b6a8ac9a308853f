package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/blogjandi/jandi/internal/logging"
	"github.com/blogjandi/jandi/internal/models"
)

const defaultHTTPTimeout = 10 * time.Second

// HTTPConfig configures the backend client.
type HTTPConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	// Client overrides the underlying HTTP client.
	Client *http.Client
}

// HTTPError is a non-2xx backend response.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Unwrap maps well-known statuses to sentinel errors.
func (e *HTTPError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// HTTPSource reads from the jandi backend REST API.
type HTTPSource struct {
	base   *url.URL
	token  string
	client *http.Client
}

// NewHTTPSource creates a backend client.
func NewHTTPSource(cfg HTTPConfig) (*HTTPSource, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, fmt.Errorf("base url is required")
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url scheme %q", base.Scheme)
	}

	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &HTTPSource{
		base:   base,
		token:  strings.TrimSpace(cfg.Token),
		client: client,
	}, nil
}

// Events calls GET /api/jandi?date=YYYY-MM-DD.
func (s *HTTPSource) Events(ctx context.Context, day time.Time) ([]models.PostEvent, error) {
	q := url.Values{}
	if !day.IsZero() {
		q.Set("date", day.Format(models.DateLayout))
	}
	var records []models.JandiRecord
	if err := s.get(ctx, "/api/jandi", q, &records); err != nil {
		return nil, err
	}
	return models.ParseEvents(records)
}

// Stats calls GET /api/user/stats.
func (s *HTTPSource) Stats(ctx context.Context) (models.UserStats, error) {
	var stats models.UserStats
	if err := s.get(ctx, "/api/user/stats", nil, &stats); err != nil {
		return models.UserStats{}, err
	}
	return stats, nil
}

// FetchPostsForCategory calls GET /api/user/posts?category=.
func (s *HTTPSource) FetchPostsForCategory(ctx context.Context, category string) ([]models.Post, error) {
	q := url.Values{}
	q.Set("category", category)
	var posts []models.Post
	if err := s.get(ctx, "/api/user/posts", q, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Close is a no-op; idle connections belong to the shared client.
func (s *HTTPSource) Close() error {
	return nil
}

func (s *HTTPSource) get(ctx context.Context, path string, query url.Values, out any) error {
	u := *s.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	log := logging.ComponentFrom(ctx, "source.http")
	started := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("url", logging.RedactURL(u.String())).Msg("request failed")
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(started)).
		Msg("backend request")

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newHTTPError(resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func newHTTPError(status int, body []byte) *HTTPError {
	var payload struct {
		Message string          `json:"message"`
		Detail  json.RawMessage `json:"detail"`
	}
	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		msg = payload.Message
		if msg == "" && len(payload.Detail) > 0 {
			var detail string
			if json.Unmarshal(payload.Detail, &detail) == nil {
				msg = detail
			}
		}
	}
	if msg == "" {
		msg = fmt.Sprintf("HTTP error! status: %d", status)
	}
	return &HTTPError{Status: status, Message: logging.Redact(msg)}
}

// IsUnauthorized reports whether err came from a rejected token.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
