// Package state persists the TUI session between runs: the last active view,
// the calendar cursor and the selected statistics category.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/blogjandi/jandi/internal/models"
)

const (
	CurrentVersion = 1

	defaultDebounce = 1 * time.Second
)

type TUIState struct {
	Version      int    `json:"version"`
	LastView     string `json:"last_view,omitempty"`     // last active view
	Cursor       string `json:"cursor,omitempty"`        // calendar cursor, YYYY-MM-DD
	LastCategory string `json:"last_category,omitempty"` // selected statistics row
}

// CursorDate parses Cursor. ok is false when unset or malformed.
func (s TUIState) CursorDate() (time.Time, bool) {
	if s.Cursor == "" {
		return time.Time{}, false
	}
	d, err := models.ParseDate(s.Cursor)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// Manager loads and writes TUIState with debounced saves. A Manager with an
// empty path keeps state in memory only.
type Manager struct {
	path     string
	lockPath string

	mu       sync.Mutex
	state    TUIState
	dirty    bool
	timer    *time.Timer
	debounce time.Duration
}

func New(path string) *Manager {
	path = strings.TrimSpace(path)
	lockPath := ""
	if path != "" {
		lockPath = path + ".lock"
	}
	return &Manager{
		path:     path,
		lockPath: lockPath,
		state:    TUIState{Version: CurrentVersion},
		debounce: defaultDebounce,
	}
}

func (m *Manager) Path() string { return m.path }

func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.path == "" {
		return nil
	}

	loaded, err := m.loadLocked()
	if err != nil {
		return err
	}
	m.state = loaded
	m.dirty = false
	return nil
}

func (m *Manager) Snapshot() TUIState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) SetLastView(view string) {
	m.update(func(s *TUIState) bool {
		view = strings.TrimSpace(view)
		if s.LastView == view {
			return false
		}
		s.LastView = view
		return true
	})
}

func (m *Manager) SetCursor(day time.Time) {
	m.update(func(s *TUIState) bool {
		cursor := ""
		if !day.IsZero() {
			cursor = day.Format(models.DateLayout)
		}
		if s.Cursor == cursor {
			return false
		}
		s.Cursor = cursor
		return true
	})
}

func (m *Manager) SetLastCategory(category string) {
	m.update(func(s *TUIState) bool {
		if s.LastCategory == category {
			return false
		}
		s.LastCategory = category
		return true
	})
}

func (m *Manager) update(fn func(*TUIState) bool) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if fn(&m.state) {
		m.markDirtyLocked()
	}
}

func (m *Manager) Close() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	needsSave := m.dirty
	m.mu.Unlock()
	if !needsSave {
		return nil
	}
	return m.SaveNow()
}

func (m *Manager) SaveNow() error {
	m.mu.Lock()
	if m.path == "" {
		m.dirty = false
		m.mu.Unlock()
		return nil
	}
	state := m.state
	m.dirty = false
	m.mu.Unlock()

	state.Version = CurrentVersion
	if err := withFileLock(m.lockPath, func() error {
		return writeAtomicJSON(m.path, state)
	}); err != nil {
		m.mu.Lock()
		m.dirty = true
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *Manager) markDirtyLocked() {
	m.dirty = true
	if m.path == "" {
		return
	}
	if m.timer == nil {
		m.timer = time.AfterFunc(m.debounce, func() {
			_ = m.SaveNow()
		})
		return
	}
	_ = m.timer.Reset(m.debounce)
}

func (m *Manager) loadLocked() (TUIState, error) {
	var out TUIState
	if err := withFileLock(m.lockPath, func() error {
		payload, err := os.ReadFile(m.path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				out = TUIState{Version: CurrentVersion}
				return nil
			}
			return err
		}
		if len(payload) == 0 {
			out = TUIState{Version: CurrentVersion}
			return nil
		}
		return json.Unmarshal(payload, &out)
	}); err != nil {
		return TUIState{}, fmt.Errorf("load tui state: %w", err)
	}

	if out.Version <= 0 {
		out.Version = CurrentVersion
	}
	return out, nil
}

func withFileLock(lockPath string, fn func() error) error {
	if strings.TrimSpace(lockPath) == "" {
		return fn()
	}
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("lock %s: %w", lockPath, err)
	}
	defer func() {
		_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	}()
	return fn()
}

func writeAtomicJSON(path string, state TUIState) error {
	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
