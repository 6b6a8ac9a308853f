// Package models defines the core data types for the blog activity calendar.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Post validation errors.
var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidCount    = errors.New("count must be at least 1")
	ErrMissingCategory = errors.New("category is required")
	ErrMissingField    = errors.New("is required")
)

// PostEvent is one or more posts aggregated for a day and category.
// Count is additive across events that share a date.
type PostEvent struct {
	Date     time.Time
	Category string
	Count    int
}

// DateKey returns the event's date in DateLayout.
func (e PostEvent) DateKey() string {
	return e.Date.Format(DateLayout)
}

// JandiRecord is the backend wire shape of a PostEvent.
type JandiRecord struct {
	Date  string `json:"date"`
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// Post is a single published blog post.
type Post struct {
	URL      string `json:"url"`
	Category string `json:"category"`
	Date     string `json:"date"`
	Title    string `json:"title"`
	Platform string `json:"platform"`
}

// Validate reports every missing or malformed field. Title is optional.
func (p Post) Validate() error {
	validation := &ValidationErrors{}
	if strings.TrimSpace(p.URL) == "" {
		validation.Add("url", ErrMissingField)
	}
	if strings.TrimSpace(p.Platform) == "" {
		validation.Add("platform", ErrMissingField)
	}
	if strings.TrimSpace(p.Category) == "" {
		validation.Add("category", ErrMissingCategory)
	}
	if _, err := ParseDate(p.Date); err != nil {
		validation.Add("date", err)
	}
	return validation.Err()
}

// CategorySummary is a server-aggregated post count for one category.
type CategorySummary struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// UserStats is the signed-in user's summary payload.
type UserStats struct {
	// Duration is the number of days since the account was created.
	Duration   int               `json:"duration"`
	Categories []CategorySummary `json:"category"`
	Count      int               `json:"count"`
	CreatedAt  string            `json:"created_at"`
}

// CreatedDate parses CreatedAt. Both plain dates and RFC3339 timestamps are accepted.
func (s UserStats) CreatedDate() (time.Time, bool) {
	raw := strings.TrimSpace(s.CreatedAt)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return DateOf(t), true
	}
	if len(raw) > len(DateLayout) {
		raw = raw[:len(DateLayout)]
	}
	t, err := ParseDate(raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DateOf truncates t to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole days from a to b, never negative.
func DaysBetween(a, b time.Time) int {
	days := int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// ParseEvents converts backend records to PostEvents.
// All invalid records are reported together.
func ParseEvents(records []JandiRecord) ([]PostEvent, error) {
	out := make([]PostEvent, 0, len(records))
	validation := &ValidationErrors{}
	for i, rec := range records {
		field := fmt.Sprintf("records[%d]", i)
		date, err := ParseDate(rec.Date)
		if err != nil {
			validation.Add(field+".date", err)
			continue
		}
		if strings.TrimSpace(rec.Topic) == "" {
			validation.Add(field+".topic", ErrMissingCategory)
			continue
		}
		if rec.Count < 1 {
			validation.Add(field+".count", ErrInvalidCount)
			continue
		}
		out = append(out, PostEvent{Date: date, Category: rec.Topic, Count: rec.Count})
	}
	if err := validation.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
